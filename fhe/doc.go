// Package fhe adapts the Lattigo BGV scheme to the ledger's opaque
// ciphertext boundary.
//
// The ledger works with two ciphertext widths. Counts travel in the
// narrow width (16-bit plaintext modulus); energy totals travel in the
// wide width (26-bit plaintext modulus) so that sums across many
// contributions do not wrap. Each width is its own BGV parameter set; a
// one-byte tag in front of the serialized ciphertext records which set a
// blob belongs to, and the algebra refuses to mix them.
//
// The package also ships a LocalOracle: an in-process decryption oracle
// that holds the secret keys, decrypts off the request path, signs a
// sha3-256 digest of (request id, cleartexts) with Ed25519 and delivers
// the result to a bound callback. It serves tests, demos and
// single-operator deployments; a production multi-party oracle plugs into
// the same ledger.DecryptionOracle interface.
package fhe
