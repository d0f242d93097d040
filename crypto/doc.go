// Package crypto provides the signing primitives used to authenticate
// decryption oracle results.
//
// An oracle signs sha3-256 digests of (request id, cleartexts) with an
// Ed25519 private key; verifiers hold only the public key. The types here
// wrap the standard library primitives with hex-friendly, immutable
// representations suitable for logging and configuration.
package crypto
