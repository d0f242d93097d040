package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/voltaic-labs/gridveil/ledger"
)

// WebhookNotifier delivers ledger notifications to a subscriber endpoint
// as JSON POSTs. Delivery is fire and forget; a failed POST is logged and
// dropped, never retried, so a slow subscriber cannot stall the ledger.
type WebhookNotifier struct {
	endpoint string
	client   *http.Client
	log      *slog.Logger
}

// NewWebhookNotifier creates a notifier posting to the given endpoint.
func NewWebhookNotifier(endpoint string, log *slog.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
		log:      log,
	}
}

type webhookEnvelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

func (n *WebhookNotifier) post(event string, payload any) {
	go func() {
		body, err := json.Marshal(webhookEnvelope{Event: event, Payload: payload})
		if err != nil {
			n.log.Error("could not marshal webhook payload", "event", event, "err", err)
			return
		}

		resp, err := n.client.Post(n.endpoint, "application/json", bytes.NewReader(body))
		if err != nil {
			n.log.Error("could not deliver webhook", "event", event, "err", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			n.log.Error("webhook rejected", "event", event, "err", fmt.Errorf("unexpected status %d", resp.StatusCode))
		}
	}()
}

func (n *WebhookNotifier) SessionSubmitted(e ledger.SessionSubmittedEvent) {
	n.post("session-submitted", e)
}

func (n *WebhookNotifier) RevealRequested(e ledger.RevealRequestedEvent) {
	n.post("reveal-requested", e)
}

func (n *WebhookNotifier) RevealDelivered(e ledger.RevealDeliveredEvent) {
	n.post("reveal-delivered", e)
}
