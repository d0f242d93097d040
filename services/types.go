package services

import (
	"time"

	"github.com/voltaic-labs/gridveil/ledger"
)

// SubmitSessionRequest carries one encrypted session record. Ciphertext
// fields are base64-encoded by encoding/json.
type SubmitSessionRequest struct {
	StationID      []byte `json:"station_id"`
	StartBucket    []byte `json:"start_bucket"`
	DurationBucket []byte `json:"duration_bucket"`
	Energy         []byte `json:"energy"`
}

// SubmitSessionResponse returns the assigned sequence number.
type SubmitSessionResponse struct {
	ID ledger.SessionID `json:"id"`
}

// SessionResponse returns a stored session record.
type SessionResponse struct {
	ID             ledger.SessionID `json:"id"`
	StationID      []byte           `json:"station_id"`
	StartBucket    []byte           `json:"start_bucket"`
	DurationBucket []byte           `json:"duration_bucket"`
	Energy         []byte           `json:"energy"`
	SubmittedAt    time.Time        `json:"submitted_at"`
}

// AccumulateRequest carries one window contribution.
type AccumulateRequest struct {
	CountDelta  []byte `json:"count_delta"`
	EnergyDelta []byte `json:"energy_delta"`
}

// WindowResponse returns a window's encrypted aggregate.
type WindowResponse struct {
	Initialized  bool   `json:"initialized"`
	TotalEnergy  []byte `json:"total_energy,omitempty"`
	SessionCount []byte `json:"session_count,omitempty"`
}

// LoadBalanceRequest carries the caller-supplied encrypted priority.
type LoadBalanceRequest struct {
	Priority []byte `json:"priority"`
}

// SiteSuggestionRequest carries the caller identity and the regional
// ciphertexts to reveal.
type SiteSuggestionRequest struct {
	Caller       string `json:"caller"`
	Demand       []byte `json:"demand"`
	StationCount []byte `json:"station_count"`
}

// RevealResponse returns the oracle request id a reveal resolves under.
type RevealResponse struct {
	RequestID ledger.RequestID `json:"request_id"`
}

// OracleCallbackRequest is the oracle-initiated delivery payload.
type OracleCallbackRequest struct {
	RequestID  ledger.RequestID `json:"request_id"`
	Cleartexts []byte           `json:"cleartexts"`
	Proof      []byte           `json:"proof"`
}

// ResultResponse returns a revealed result, or revealed=false while the
// request is still pending.
type ResultResponse struct {
	Label    string `json:"label"`
	Payload  string `json:"payload"`
	Revealed bool   `json:"revealed"`
}
