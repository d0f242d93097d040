package ledger

import (
	"log/slog"
	"time"
)

// SessionSubmittedEvent announces a newly stored session record.
type SessionSubmittedEvent struct {
	ID          SessionID `json:"id"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// RevealRequestedEvent announces an outbound decryption request.
type RevealRequestedEvent struct {
	Kind      RequestKind `json:"kind"`
	RequestID RequestID   `json:"request_id"`
	Context   ContextKey  `json:"context"`
}

// RevealDeliveredEvent announces a verified and committed oracle result.
type RevealDeliveredEvent struct {
	Kind      RequestKind `json:"kind"`
	RequestID RequestID   `json:"request_id"`
	Context   ContextKey  `json:"context"`
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) SessionSubmitted(SessionSubmittedEvent) {}
func (NopNotifier) RevealRequested(RevealRequestedEvent)   {}
func (NopNotifier) RevealDelivered(RevealDeliveredEvent)   {}

// LogNotifier emits notifications as structured log records.
type LogNotifier struct {
	Log *slog.Logger
}

func (n LogNotifier) SessionSubmitted(e SessionSubmittedEvent) {
	n.Log.Info("session submitted", "id", uint64(e.ID), "submittedAt", e.SubmittedAt)
}

func (n LogNotifier) RevealRequested(e RevealRequestedEvent) {
	n.Log.Info("reveal requested", "kind", string(e.Kind), "requestID", string(e.RequestID), "context", string(e.Context))
}

func (n LogNotifier) RevealDelivered(e RevealDeliveredEvent) {
	n.Log.Info("reveal delivered", "kind", string(e.Kind), "requestID", string(e.RequestID), "context", string(e.Context))
}
