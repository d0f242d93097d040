package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tuneinsight/lattigo/v5/he/heint"

	"github.com/voltaic-labs/gridveil/crypto"
	"github.com/voltaic-labs/gridveil/fhe"
	"github.com/voltaic-labs/gridveil/ledger"
)

// Insecure test parameters: logN=10 with the short prime chain from the
// Lattigo test suite. Fast to generate, not secure, test use only.
var (
	insecureQ = []uint64{0x3fffffa8001, 0x1000090001}
	insecureP = []uint64{0x7fffffd8001}

	// TestNarrowLiteral is the narrow-width test parameter set.
	TestNarrowLiteral = heint.ParametersLiteral{
		LogN:             10,
		Q:                insecureQ,
		P:                insecureP,
		PlaintextModulus: 0x10001,
	}

	// TestWideLiteral is the wide-width test parameter set.
	TestWideLiteral = heint.ParametersLiteral{
		LogN:             10,
		Q:                insecureQ,
		P:                insecureP,
		PlaintextModulus: 0x3ee0001,
	}
)

// TestParams builds the insecure parameter bundle.
func TestParams(t *testing.T) fhe.Params {
	t.Helper()
	params, err := fhe.NewParams(TestNarrowLiteral, TestWideLiteral)
	require.NoError(t, err)
	return params
}

// Fixture bundles everything a ledger test needs: parameters, keys, the
// algebra, a producer-side encryptor and a local oracle.
type Fixture struct {
	Params    fhe.Params
	Keys      *fhe.KeySet
	Algebra   *fhe.Algebra
	Encryptor *fhe.Encryptor
	Oracle    *fhe.LocalOracle
}

// NewFixture generates keys and wires up a complete homomorphic test
// environment with the insecure parameters.
func NewFixture(t *testing.T, opts ...fhe.OracleOption) *Fixture {
	t.Helper()

	params := TestParams(t)
	keys := fhe.GenKeySet(params)

	enc, err := fhe.NewEncryptor(params, keys.Public())
	require.NoError(t, err)

	_, signingKey, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	oracle, err := fhe.NewLocalOracle(params, keys, signingKey, opts...)
	require.NoError(t, err)

	return &Fixture{
		Params:    params,
		Keys:      keys,
		Algebra:   fhe.NewAlgebra(params),
		Encryptor: enc,
		Oracle:    oracle,
	}
}

// EncryptNarrow encrypts a narrow value, failing the test on error.
func (f *Fixture) EncryptNarrow(t *testing.T, v uint64) ledger.Ciphertext {
	t.Helper()
	ct, err := f.Encryptor.EncryptNarrow(v)
	require.NoError(t, err)
	return ct
}

// EncryptWide encrypts a wide value, failing the test on error.
func (f *Fixture) EncryptWide(t *testing.T, v uint64) ledger.Ciphertext {
	t.Helper()
	ct, err := f.Encryptor.EncryptWide(v)
	require.NoError(t, err)
	return ct
}
