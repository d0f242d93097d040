package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyPairRoundTrip(t *testing.T) {
	pub, priv, err := GenerateKeyPair()
	require.NoError(t, err)

	derived, err := priv.PublicKey()
	require.NoError(t, err)
	require.True(t, pub.Equal(derived))

	parsed, err := NewPublicKeyFromString(pub.String())
	require.NoError(t, err)
	require.True(t, pub.Equal(parsed))
}

func TestSignAndVerify(t *testing.T) {
	pub, priv, err := GenerateKeyPair()
	require.NoError(t, err)

	data := []byte("request-1|cleartexts")
	sig, err := Sign(priv, data)
	require.NoError(t, err)
	require.True(t, sig.Verify(pub, data))

	// Tampered data must not verify.
	require.False(t, sig.Verify(pub, []byte("request-2|cleartexts")))

	// A different key must not verify.
	otherPub, _, err := GenerateKeyPair()
	require.NoError(t, err)
	require.False(t, sig.Verify(otherPub, data))
}

func TestSignRejectsShortKey(t *testing.T) {
	_, err := Sign(PrivateKey([]byte("short")), []byte("data"))
	require.Error(t, err)
}
