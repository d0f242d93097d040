package ledger

import (
	"context"
)

// CiphertextAlgebra is the opaque ciphertext arithmetic the ledger
// aggregates with. Two widths are supported, matching the oracle's
// ciphertext types: the narrow width carries session counts, the wide
// width carries energy sums that must survive many additions without
// overflowing.
//
// Implementations must treat their inputs as immutable and return fresh
// ciphertexts.
type CiphertextAlgebra interface {
	// AddNarrow homomorphically adds two narrow ciphertexts.
	AddNarrow(a, b Ciphertext) (Ciphertext, error)

	// AddWide homomorphically adds two wide ciphertexts.
	AddWide(a, b Ciphertext) (Ciphertext, error)

	// SerializeForOracle converts a ciphertext into the opaque handle
	// format the oracle's request entry point accepts.
	SerializeForOracle(ct Ciphertext) (OracleHandle, error)
}

// DecryptionOracle is the external service that decrypts ciphertexts off
// the critical path. RequestDecryption must return a fresh RequestID and
// never block on the decryption itself; the result arrives later through
// an oracle-initiated call to the ledger's Deliver entry point, routed by
// the callback reference supplied here.
//
// The cleartexts the oracle eventually delivers must be ordered exactly
// as the handles were ordered in the request. That ordering is the
// contract between the broker and the decode path.
type DecryptionOracle interface {
	// RequestDecryption submits an ordered list of ciphertext handles for
	// asynchronous decryption and returns the oracle-assigned request id.
	RequestDecryption(ctx context.Context, handles []OracleHandle, callback CallbackRef) (RequestID, error)

	// VerifyProof checks the proof of correct decryption for a delivered
	// result. A nil return means the cleartexts are authentic.
	VerifyProof(ctx context.Context, id RequestID, cleartexts, proof []byte) error
}

// AuthorizationPolicy gates privileged broker operations. Policies are
// injected at construction; the ledger never inlines authorization
// decisions.
type AuthorizationPolicy interface {
	// Authorize returns nil if the caller may perform privileged requests.
	Authorize(caller Caller) error
}

// Notifier receives fire-and-forget notifications for off-system
// indexing. Implementations must not block the caller; no acknowledgement
// is awaited.
type Notifier interface {
	SessionSubmitted(e SessionSubmittedEvent)
	RevealRequested(e RevealRequestedEvent)
	RevealDelivered(e RevealDeliveredEvent)
}

// Store is the persisted state surface of the ledger: sequential session
// records, per-window aggregates, per-request correlations and revealed
// results. The ledger serializes all access, so implementations need no
// internal locking; they do need to be fail-fast, since a store error
// aborts the operation before any notification fires.
type Store interface {
	// InsertSession persists a session record and assigns the next
	// sequence number, starting at 1 and strictly increasing.
	InsertSession(s *EncryptedSession) (SessionID, error)

	// Session returns a stored session record, reporting presence.
	Session(id SessionID) (*EncryptedSession, bool, error)

	// Window returns the aggregate for a window key, reporting presence.
	Window(key WindowKey) (*WindowMetrics, bool, error)

	// PutWindow stores the aggregate for a window key.
	PutWindow(key WindowKey, m *WindowMetrics) error

	// PutCorrelation records the routing entry for an outbound request.
	PutCorrelation(id RequestID, c Correlation) error

	// Correlation returns the routing entry for a request id, reporting
	// presence. An absent entry means the id was never issued here.
	Correlation(id RequestID) (Correlation, bool, error)

	// PutResult commits a revealed result, overwriting any prior value.
	PutResult(id RequestID, r *RevealedResult) error

	// Result returns the revealed result for a request id, reporting
	// presence.
	Result(id RequestID) (*RevealedResult, bool, error)
}
