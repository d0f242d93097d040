package fhe

import (
	"fmt"

	"github.com/tuneinsight/lattigo/v5/core/rlwe"
	"github.com/tuneinsight/lattigo/v5/he/heint"

	"github.com/voltaic-labs/gridveil/ledger"
)

// Encryptor produces ledger ciphertexts from plaintext values. Producers
// hold only the public keys; values are encoded into the first plaintext
// slot.
type Encryptor struct {
	params    Params
	narrowEnc *rlwe.Encryptor
	wideEnc   *rlwe.Encryptor
	narrowEcd *heint.Encoder
	wideEcd   *heint.Encoder
}

// NewEncryptor creates an encryptor from the public half of a key set.
func NewEncryptor(params Params, keys *KeySet) (*Encryptor, error) {
	if keys == nil || keys.NarrowPK == nil || keys.WidePK == nil {
		return nil, fmt.Errorf("key set must carry both public keys")
	}
	return &Encryptor{
		params:    params,
		narrowEnc: heint.NewEncryptor(params.Narrow, keys.NarrowPK),
		wideEnc:   heint.NewEncryptor(params.Wide, keys.WidePK),
		narrowEcd: heint.NewEncoder(params.Narrow),
		wideEcd:   heint.NewEncoder(params.Wide),
	}, nil
}

// EncryptNarrow encrypts a value in the narrow width. The value must be
// below the narrow plaintext modulus.
func (e *Encryptor) EncryptNarrow(value uint64) (ledger.Ciphertext, error) {
	return e.encrypt(WidthNarrow, e.params.Narrow, e.narrowEcd, e.narrowEnc, value)
}

// EncryptWide encrypts a value in the wide width. The value must be below
// the wide plaintext modulus.
func (e *Encryptor) EncryptWide(value uint64) (ledger.Ciphertext, error) {
	return e.encrypt(WidthWide, e.params.Wide, e.wideEcd, e.wideEnc, value)
}

func (e *Encryptor) encrypt(w Width, params heint.Parameters, ecd *heint.Encoder, enc *rlwe.Encryptor, value uint64) (ledger.Ciphertext, error) {
	if value >= params.PlaintextModulus() {
		return nil, fmt.Errorf("value %d exceeds %s plaintext modulus %d", value, w, params.PlaintextModulus())
	}

	pt := heint.NewPlaintext(params, params.MaxLevel())
	if err := ecd.Encode([]uint64{value}, pt); err != nil {
		return nil, fmt.Errorf("encoding %s value: %w", w, err)
	}

	ct, err := enc.EncryptNew(pt)
	if err != nil {
		return nil, fmt.Errorf("encrypting %s value: %w", w, err)
	}
	return wrap(w, ct)
}
