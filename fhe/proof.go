package fhe

import (
	"fmt"

	"golang.org/x/crypto/sha3"

	"github.com/voltaic-labs/gridveil/crypto"
	"github.com/voltaic-labs/gridveil/ledger"
)

// ProofDigest computes the sha3-256 digest an oracle signs: the request
// id, a zero separator, then the encoded cleartexts. The separator keeps
// (id, cleartexts) pairs from colliding across boundaries.
func ProofDigest(id ledger.RequestID, cleartexts []byte) []byte {
	h := sha3.New256()
	h.Write([]byte(id))
	h.Write([]byte{0})
	h.Write(cleartexts)
	return h.Sum(nil)
}

// SignProof produces the decryption proof for a delivered result.
func SignProof(key crypto.PrivateKey, id ledger.RequestID, cleartexts []byte) ([]byte, error) {
	sig, err := crypto.Sign(key, ProofDigest(id, cleartexts))
	if err != nil {
		return nil, fmt.Errorf("signing proof: %w", err)
	}
	return sig.Bytes(), nil
}

// VerifyProofSignature checks a decryption proof against the oracle's
// public key.
func VerifyProofSignature(key crypto.PublicKey, id ledger.RequestID, cleartexts, proof []byte) error {
	if !crypto.NewSignature(proof).Verify(key, ProofDigest(id, cleartexts)) {
		return fmt.Errorf("proof signature does not verify for request %q", string(id))
	}
	return nil
}
