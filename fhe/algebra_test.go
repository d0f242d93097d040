package fhe_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voltaic-labs/gridveil/fhe"
	"github.com/voltaic-labs/gridveil/ledger"
	"github.com/voltaic-labs/gridveil/testutil"
)

// decryptValue routes a ciphertext through the oracle to recover its
// plaintext slot, using a raw renderer so the value comes back verbatim.
func decryptValue(t *testing.T, f *testutil.Fixture, ct ledger.Ciphertext) string {
	t.Helper()

	var got string
	f.Oracle.Bind(func(ctx context.Context, id ledger.RequestID, cleartexts, proof []byte) error {
		_, payload, err := ledger.DecodeCleartexts(cleartexts)
		require.NoError(t, err)
		got = payload
		return nil
	})

	handle, err := f.Algebra.SerializeForOracle(ct)
	require.NoError(t, err)
	_, err = f.Oracle.RequestDecryption(context.Background(), []ledger.OracleHandle{handle}, "raw")
	require.NoError(t, err)
	require.NoError(t, f.Oracle.Flush(context.Background()))
	return got
}

func TestAddWideRoundTrip(t *testing.T) {
	f := testutil.NewFixture(t)

	a := f.EncryptWide(t, 10)
	b := f.EncryptWide(t, 15)

	sum, err := f.Algebra.AddWide(a, b)
	require.NoError(t, err)
	require.Equal(t, "25", decryptValue(t, f, sum))
}

func TestAddNarrowRoundTrip(t *testing.T) {
	f := testutil.NewFixture(t)

	a := f.EncryptNarrow(t, 1)
	b := f.EncryptNarrow(t, 1)

	sum, err := f.Algebra.AddNarrow(a, b)
	require.NoError(t, err)
	require.Equal(t, "2", decryptValue(t, f, sum))
}

func TestAddRejectsWidthMismatch(t *testing.T) {
	f := testutil.NewFixture(t)

	narrow := f.EncryptNarrow(t, 1)
	wide := f.EncryptWide(t, 10)

	_, err := f.Algebra.AddWide(wide, narrow)
	require.Error(t, err)
	require.Contains(t, err.Error(), "width mismatch")

	_, err = f.Algebra.AddNarrow(narrow, wide)
	require.Error(t, err)
	require.Contains(t, err.Error(), "width mismatch")
}

func TestAddDoesNotMutateOperands(t *testing.T) {
	f := testutil.NewFixture(t)

	a := f.EncryptWide(t, 7)
	b := f.EncryptWide(t, 3)
	aCopy := a.Clone()

	_, err := f.Algebra.AddWide(a, b)
	require.NoError(t, err)
	require.Equal(t, aCopy, a)
}

func TestSerializeForOracleRejectsGarbage(t *testing.T) {
	f := testutil.NewFixture(t)

	_, err := f.Algebra.SerializeForOracle(ledger.Ciphertext{})
	require.Error(t, err)

	_, err = f.Algebra.SerializeForOracle(ledger.Ciphertext{0xFF, 0x01, 0x02})
	require.Error(t, err)
}

func TestEncryptorRejectsOverflow(t *testing.T) {
	f := testutil.NewFixture(t)

	_, err := f.Encryptor.EncryptNarrow(uint64(f.Params.Narrow.PlaintextModulus()))
	require.Error(t, err)

	_, err = f.Encryptor.EncryptWide(uint64(f.Params.Wide.PlaintextModulus()))
	require.Error(t, err)
}

func TestDefaultParams(t *testing.T) {
	params, err := fhe.DefaultParams()
	require.NoError(t, err)
	require.Equal(t, uint64(0x10001), params.Narrow.PlaintextModulus())
	require.Equal(t, uint64(0x3ee0001), params.Wide.PlaintextModulus())
}
