package fhe

import (
	"fmt"

	"github.com/tuneinsight/lattigo/v5/core/rlwe"
	"github.com/tuneinsight/lattigo/v5/he/heint"

	"github.com/voltaic-labs/gridveil/ledger"
)

// A serialized ciphertext is one width tag byte followed by the Lattigo
// binary encoding. The tag lets the algebra and the oracle dispatch to
// the right parameter set without trusting the caller to keep widths
// straight.

// wrap serializes a ciphertext under its width tag.
func wrap(w Width, ct *rlwe.Ciphertext) (ledger.Ciphertext, error) {
	body, err := ct.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshaling %s ciphertext: %w", w, err)
	}
	out := make([]byte, 0, 1+len(body))
	out = append(out, byte(w))
	out = append(out, body...)
	return ledger.Ciphertext(out), nil
}

// unwrap parses the width tag and deserializes the ciphertext body.
func unwrap(data ledger.Ciphertext) (Width, *rlwe.Ciphertext, error) {
	if len(data) < 2 {
		return 0, nil, fmt.Errorf("ciphertext envelope too short (%d bytes)", len(data))
	}
	w := Width(data[0])
	if w != WidthNarrow && w != WidthWide {
		return 0, nil, fmt.Errorf("unknown ciphertext width 0x%02x", data[0])
	}

	ct := new(rlwe.Ciphertext)
	if err := ct.UnmarshalBinary(data[1:]); err != nil {
		return 0, nil, fmt.Errorf("unmarshaling %s ciphertext: %w", w, err)
	}
	return w, ct, nil
}

// Algebra implements ledger.CiphertextAlgebra over the BGV scheme. It
// holds no key material; homomorphic addition needs only the public
// parameters.
type Algebra struct {
	params     Params
	narrowEval *heint.Evaluator
	wideEval   *heint.Evaluator
}

// NewAlgebra creates an algebra for the given parameter sets.
func NewAlgebra(params Params) *Algebra {
	return &Algebra{
		params:     params,
		narrowEval: heint.NewEvaluator(params.Narrow, nil),
		wideEval:   heint.NewEvaluator(params.Wide, nil),
	}
}

// AddNarrow homomorphically adds two narrow ciphertexts.
func (a *Algebra) AddNarrow(x, y ledger.Ciphertext) (ledger.Ciphertext, error) {
	return a.add(WidthNarrow, a.narrowEval, x, y)
}

// AddWide homomorphically adds two wide ciphertexts.
func (a *Algebra) AddWide(x, y ledger.Ciphertext) (ledger.Ciphertext, error) {
	return a.add(WidthWide, a.wideEval, x, y)
}

func (a *Algebra) add(w Width, eval *heint.Evaluator, x, y ledger.Ciphertext) (ledger.Ciphertext, error) {
	wx, ctx, err := unwrap(x)
	if err != nil {
		return nil, fmt.Errorf("left operand: %w", err)
	}
	wy, cty, err := unwrap(y)
	if err != nil {
		return nil, fmt.Errorf("right operand: %w", err)
	}
	if wx != w || wy != w {
		return nil, fmt.Errorf("width mismatch: want %s, got %s + %s", w, wx, wy)
	}

	sum, err := eval.AddNew(ctx, cty)
	if err != nil {
		return nil, fmt.Errorf("homomorphic add: %w", err)
	}
	return wrap(w, sum)
}

// SerializeForOracle validates the envelope and returns the opaque handle
// handed to the decryption oracle. The handle format is the envelope
// itself; validation here keeps malformed blobs from reaching the oracle.
func (a *Algebra) SerializeForOracle(ct ledger.Ciphertext) (ledger.OracleHandle, error) {
	if _, _, err := unwrap(ct); err != nil {
		return nil, err
	}
	out := make([]byte, len(ct))
	copy(out, ct)
	return ledger.OracleHandle(out), nil
}
