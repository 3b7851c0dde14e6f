package sigsuite

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEd25519SignVerifyRoundTrip(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	suite := Ed25519{}
	msg := []byte("canonical manifest bytes")

	sig, err := suite.Sign(priv, msg)
	require.NoError(t, err)
	assert.True(t, suite.Verify(pub, msg, sig))
}

func TestEd25519VerifyRejectsTamperedMessage(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	suite := Ed25519{}
	sig, err := suite.Sign(priv, []byte("original"))
	require.NoError(t, err)
	assert.False(t, suite.Verify(pub, []byte("tampered"), sig))
}

func TestDetectByKeySizeInfersLegacy(t *testing.T) {
	suite, err := DetectByKeySize(ed25519.PublicKeySize)
	require.NoError(t, err)
	assert.Equal(t, IDLegacy, suite.ID())
}

func TestDetectRejectsKeySizeMismatch(t *testing.T) {
	_, err := Detect(IDLegacy, 1312)
	require.Error(t, err)
}

func TestConstantTimeEqual(t *testing.T) {
	assert.True(t, ConstantTimeEqual([]byte("abc"), []byte("abc")))
	assert.False(t, ConstantTimeEqual([]byte("abc"), []byte("abd")))
	assert.False(t, ConstantTimeEqual([]byte("abc"), []byte("abcd")))
}
