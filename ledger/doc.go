// Package ledger implements the GridVeil metering core: homomorphic
// aggregation of encrypted charging sessions and the asynchronous
// decryption-request-correlation engine that reveals aggregates through
// an external oracle.
//
// The ledger never sees plaintext. Untrusted parties submit one encrypted
// session record per call, the window aggregator folds encrypted deltas
// into per-window running sums under homomorphic addition, and summaries
// are revealed on demand by handing ciphertexts to a decryption oracle.
// The oracle answers on a separate, oracle-initiated call that carries a
// proof of correct decryption; the ledger correlates that callback to the
// originating window or region, verifies the proof, and commits the
// cleartext result to durable storage.
//
// Per request identifier the state machine is:
//
//	Unissued -> Pending (correlation recorded) -> Revealed (result committed)
//
// There is no expiry or cancellation: a request the oracle never answers
// stays pending. Every public entry point runs to completion under one
// lock, so mutations are totally ordered and no partial state is ever
// visible, including to a callback racing the request that issued it.
//
// The cryptographic machinery lives behind two interfaces, CiphertextAlgebra
// and DecryptionOracle, implemented by the fhe package. The ledger itself
// never branches on ciphertext contents.
package ledger
