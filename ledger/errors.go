package ledger

import "errors"

var (
	// ErrNoMetricsForWindow is returned when a decryption request targets a
	// window that has received no contributions. Caller error, not
	// retryable without first accumulating data.
	ErrNoMetricsForWindow = errors.New("no metrics recorded for window")

	// ErrUnknownRequest is returned when a callback names a request id with
	// no recorded correlation, meaning the id was never issued by this
	// ledger.
	ErrUnknownRequest = errors.New("unknown decryption request")

	// ErrInvalidProof is returned when the oracle's proof check rejects a
	// delivered result. Nothing is committed.
	ErrInvalidProof = errors.New("decryption proof verification failed")

	// ErrDecode is returned when delivered cleartexts are not a well-formed
	// [label, payload] pair. Nothing is committed.
	ErrDecode = errors.New("malformed cleartext payload")

	// ErrRepeatDelivery is returned for a second delivery of an already
	// revealed request when Config.RejectRepeatDelivery is set.
	ErrRepeatDelivery = errors.New("result already delivered for request")

	// ErrUnauthorized is returned when the authorization policy rejects the
	// caller of a privileged request.
	ErrUnauthorized = errors.New("caller not authorized")
)
