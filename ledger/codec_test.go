package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodecRoundTrip(t *testing.T) {
	data := EncodeCleartexts("forecast", "demand=25kWh/2sessions")

	label, payload, err := DecodeCleartexts(data)
	require.NoError(t, err)
	require.Equal(t, "forecast", label)
	require.Equal(t, "demand=25kWh/2sessions", payload)
}

func TestCodecEmptyStrings(t *testing.T) {
	label, payload, err := DecodeCleartexts(EncodeCleartexts("", ""))
	require.NoError(t, err)
	require.Equal(t, "", label)
	require.Equal(t, "", payload)
}

func TestDecodeRejectsWrongArity(t *testing.T) {
	for _, data := range [][]byte{
		EncodeCleartexts(),
		EncodeCleartexts("one"),
		EncodeCleartexts("a", "b", "c"),
	} {
		_, _, err := DecodeCleartexts(data)
		require.ErrorIs(t, err, ErrDecode)
	}
}

func TestDecodeRejectsTruncation(t *testing.T) {
	data := EncodeCleartexts("forecast", "payload")
	for cut := 1; cut < len(data); cut++ {
		_, _, err := DecodeCleartexts(data[:cut])
		require.ErrorIs(t, err, ErrDecode, "cut at %d", cut)
	}
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	data := append(EncodeCleartexts("a", "b"), 0x00)
	_, _, err := DecodeCleartexts(data)
	require.ErrorIs(t, err, ErrDecode)
}

func TestDecodeRejectsEmptyInput(t *testing.T) {
	_, _, err := DecodeCleartexts(nil)
	require.ErrorIs(t, err, ErrDecode)
}
