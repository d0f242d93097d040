package ledger

import (
	"time"
)

// Ciphertext is an opaque encrypted integer. The ledger moves ciphertexts
// between stores and the oracle but never interprets their contents; only
// the CiphertextAlgebra implementation understands the encoding.
type Ciphertext []byte

// Clone returns an independent copy of the ciphertext.
func (ct Ciphertext) Clone() Ciphertext {
	out := make(Ciphertext, len(ct))
	copy(out, ct)
	return out
}

// OracleHandle is the serialized form of a ciphertext as handed to the
// decryption oracle.
type OracleHandle []byte

// SessionID is the sequence number assigned to an encrypted session record.
// IDs start at 1 and are strictly increasing; they are never reused.
type SessionID uint64

// RequestID identifies an outbound decryption request. It is assigned by
// the oracle and guaranteed fresh and unique within the system's history.
type RequestID string

// WindowKey groups session contributions into one aggregation bucket,
// typically derived from a time-bucket start.
type WindowKey string

// RegionKey identifies a geographic region for site-suggestion requests.
type RegionKey string

// ContextKey is the namespaced key a decryption request originated from.
// Window and region keys map into disjoint namespaces so a callback can
// never be routed to the wrong table.
type ContextKey string

// Context returns the window key in the window namespace.
func (k WindowKey) Context() ContextKey { return ContextKey("window/" + string(k)) }

// Context returns the region key in the region namespace.
func (k RegionKey) Context() ContextKey { return ContextKey("region/" + string(k)) }

// RequestKind distinguishes the three decryption request call sites. They
// share identical mechanics and differ only in ciphertext arity, key
// namespace and the notification they emit.
type RequestKind string

const (
	ForecastRequest       RequestKind = "forecast"
	LoadBalanceRequest    RequestKind = "load-balance"
	SiteSuggestionRequest RequestKind = "site-suggestion"
)

// Caller identifies the party invoking a privileged operation. The ledger
// does not interpret callers beyond handing them to the authorization
// policy.
type Caller string

// EncryptedSession is one submitted charging session record. It is created
// once by session intake and immutable thereafter.
type EncryptedSession struct {
	ID             SessionID  `json:"id"`
	StationID      Ciphertext `json:"station_id"`
	StartBucket    Ciphertext `json:"start_bucket"`
	DurationBucket Ciphertext `json:"duration_bucket"`
	Energy         Ciphertext `json:"energy"`
	SubmittedAt    time.Time  `json:"submitted_at"`
}

// WindowMetrics is the running homomorphic aggregate for one window.
// While Initialized is false the ciphertext fields hold no meaningful
// value. The first contribution sets them; every later contribution
// replaces them with the homomorphic sum of old and new. Fields only ever
// become more aggregated, never reset.
type WindowMetrics struct {
	TotalEnergy  Ciphertext `json:"total_energy"`
	SessionCount Ciphertext `json:"session_count"`
	Initialized  bool       `json:"initialized"`
}

// Correlation routes an oracle callback back to its originating context.
// The kind records which callback entry point was registered at request
// time and therefore which notification the delivery emits.
type Correlation struct {
	Kind    RequestKind `json:"kind"`
	Context ContextKey  `json:"context"`
}

// RevealedResult is the cleartext summary committed after a verified
// oracle callback. Once Revealed is true the result is final.
type RevealedResult struct {
	Label    string `json:"label"`
	Payload  string `json:"payload"`
	Revealed bool   `json:"revealed"`
}

// CallbackRef names the verifier entry point the oracle must route a
// decryption result to. It is passed to the oracle at request time.
type CallbackRef string

const (
	ForecastCallback       CallbackRef = "forecast-revealed"
	LoadBalanceCallback    CallbackRef = "load-balance-revealed"
	SiteSuggestionCallback CallbackRef = "site-suggestion-revealed"
)

// callbackFor maps a request kind to its oracle callback reference.
func callbackFor(kind RequestKind) CallbackRef {
	switch kind {
	case ForecastRequest:
		return ForecastCallback
	case LoadBalanceRequest:
		return LoadBalanceCallback
	case SiteSuggestionRequest:
		return SiteSuggestionCallback
	}
	return CallbackRef(kind)
}
