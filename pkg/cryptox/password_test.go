package cryptox

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func useTempPepper(t *testing.T) {
	t.Helper()
	pepper = ""
	SetPepperPath(filepath.Join(t.TempDir(), "pepper"))
	t.Cleanup(func() { pepper = "" })
}

func TestHashAndVerifyPassword(t *testing.T) {
	useTempPepper(t)

	hash, err := HashPassword("Sup3rSecret!")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	require.NoError(t, VerifyPassword("Sup3rSecret!", hash))
	require.ErrorIs(t, VerifyPassword("wrong", hash), ErrPasswordMismatch)
}

func TestHashesAreSalted(t *testing.T) {
	useTempPepper(t)

	h1, err := HashPassword("same-password")
	require.NoError(t, err)
	h2, err := HashPassword("same-password")
	require.NoError(t, err)

	require.NotEqual(t, h1, h2)
}

func TestVerifyPasswordRejectsMalformedHashes(t *testing.T) {
	useTempPepper(t)

	for _, encoded := range []string{
		"",
		"not-a-hash",
		"$bcrypt$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=19456,t=2,p=1$!!!$aGFzaA",
	} {
		require.Error(t, VerifyPassword("anything", encoded))
	}
}

func TestGenerateOTP(t *testing.T) {
	otp, err := GenerateOTP(6)
	require.NoError(t, err)
	require.Len(t, otp, 6)
	for _, r := range otp {
		require.True(t, r >= '0' && r <= '9')
	}

	_, err = GenerateOTP(0)
	require.Error(t, err)
}

func TestGenerateToken(t *testing.T) {
	tok, err := GenerateToken(TokenSize256)
	require.NoError(t, err)
	require.Len(t, tok, 43) // 32 bytes base64url, no padding

	_, err = GenerateToken(0)
	require.Error(t, err)
}
