package jwtx_test

import (
	"crypto/rand"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ls-softworks/comitte/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func newTestCodec(t *testing.T) *jwtx.Codec {
	t.Helper()

	secret := make([]byte, jwtx.MinSecretBytes)
	_, err := rand.Read(secret)
	require.NoError(t, err)

	codec, err := jwtx.NewCodec(secret, "comitte")
	require.NoError(t, err)
	return codec
}

func testClaims(ttl time.Duration) jwtx.Claims {
	return jwtx.NewAccessClaims(
		"alice",
		42,
		"Alice A", "alice@example.com", "0400000001",
		[]int64{1, 2},
		[]string{"ROLE_MEMBER", "ROLE_ADMIN"},
		[]string{"COMITTE_READ", "COMITTE_WRITE"},
		ttl,
		"comitte",
		time.Now().UTC(),
	)
}

func TestCodecRoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	token, err := codec.Issue(testClaims(time.Minute))
	require.NoError(t, err)

	decoded, err := codec.Decode(token)
	require.NoError(t, err)

	require.Equal(t, "alice", decoded.Subject)
	require.Equal(t, int64(42), decoded.MemberID)
	require.Equal(t, "Alice A", decoded.Name)
	require.Equal(t, "alice@example.com", decoded.Email)
	require.Equal(t, "0400000001", decoded.Mobile)
	require.Equal(t, []int64{1, 2}, decoded.RoleIDs)
	require.Equal(t, []string{"ROLE_MEMBER", "ROLE_ADMIN"}, decoded.RoleNames)
	require.Equal(t, []string{"COMITTE_READ", "COMITTE_WRITE"}, decoded.AuthorityNames)
}

func TestCodecSubject(t *testing.T) {
	codec := newTestCodec(t)

	token, err := codec.Issue(testClaims(time.Minute))
	require.NoError(t, err)

	subject, err := codec.Subject(token)
	require.NoError(t, err)
	require.Equal(t, "alice", subject)
}

func TestCodecRejectsTamperedTokens(t *testing.T) {
	codec := newTestCodec(t)

	token, err := codec.Issue(testClaims(time.Minute))
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	t.Run("flipped signature byte", func(t *testing.T) {
		sig, err := base64.RawURLEncoding.DecodeString(parts[2])
		require.NoError(t, err)
		sig[0] ^= 0x01

		tampered := parts[0] + "." + parts[1] + "." + base64.RawURLEncoding.EncodeToString(sig)
		_, err = codec.Decode(tampered)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	t.Run("flipped payload byte", func(t *testing.T) {
		payload, err := base64.RawURLEncoding.DecodeString(parts[1])
		require.NoError(t, err)
		// Flip inside the subject value, not structural JSON.
		payload[len(payload)/2] ^= 0x01

		tampered := parts[0] + "." + base64.RawURLEncoding.EncodeToString(payload) + "." + parts[2]
		_, err = codec.Decode(tampered)
		require.Error(t, err)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := codec.Decode("not-a-token")
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})
}

func TestCodecRejectsExpiredTokens(t *testing.T) {
	codec := newTestCodec(t)

	token, err := codec.Issue(testClaims(-time.Minute))
	require.NoError(t, err)

	_, err = codec.Decode(token)
	require.ErrorIs(t, err, jwtx.ErrExpired)
}

func TestCodecRejectsForeignAlgorithm(t *testing.T) {
	codec := newTestCodec(t)

	// A token signed HS256 with the same secret must not decode: the codec
	// pins HS512 before ever touching the key.
	secret := make([]byte, jwtx.MinSecretBytes)
	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, testClaims(time.Minute)).SignedString(secret)
	require.NoError(t, err)

	_, err = codec.Decode(foreign)
	require.Error(t, err)
}

func TestCodecRejectsIssuerMismatch(t *testing.T) {
	secret := make([]byte, jwtx.MinSecretBytes)
	_, err := rand.Read(secret)
	require.NoError(t, err)

	minter, err := jwtx.NewCodec(secret, "someone-else")
	require.NoError(t, err)
	verifier, err := jwtx.NewCodec(secret, "comitte")
	require.NoError(t, err)

	claims := testClaims(time.Minute)
	claims.Issuer = "someone-else"
	token, err := minter.Issue(claims)
	require.NoError(t, err)

	_, err = verifier.Decode(token)
	require.ErrorIs(t, err, jwtx.ErrIssuer)
}

func TestNewCodecRejectsWeakSecret(t *testing.T) {
	_, err := jwtx.NewCodec(make([]byte, 16), "comitte")
	require.ErrorIs(t, err, jwtx.ErrWeakSecret)
}

func TestNewCodecBase64(t *testing.T) {
	t.Run("valid secret", func(t *testing.T) {
		raw := make([]byte, jwtx.MinSecretBytes)
		_, err := rand.Read(raw)
		require.NoError(t, err)

		codec, err := jwtx.NewCodecBase64(base64.StdEncoding.EncodeToString(raw), "comitte")
		require.NoError(t, err)
		require.NotNil(t, codec)
	})

	t.Run("invalid encoding", func(t *testing.T) {
		_, err := jwtx.NewCodecBase64("%%%not-base64%%%", "comitte")
		require.ErrorIs(t, err, jwtx.ErrWeakSecret)
	})
}
