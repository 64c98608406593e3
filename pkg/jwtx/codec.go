package jwtx

import (
	"encoding/base64"
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrAlgMismatch = errors.New("jwtx: algorithm mismatch")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrIssuer      = errors.New("jwtx: issuer mismatch")

	// ErrWeakSecret reports a signing secret shorter than the HS512 block
	// requirement. This only ever fires at construction time.
	ErrWeakSecret = errors.New("jwtx: signing secret too short")
)

// MinSecretBytes is the minimum decoded secret length we accept for HS512.
// RFC 7518 requires a key at least as long as the hash output (64 bytes).
const MinSecretBytes = 64

// Codec issues and verifies HS512-signed access tokens. The secret is
// process-wide configuration, loaded once at startup; a misconfigured
// secret fails construction, never a per-request call.
type Codec struct {
	secret []byte
	issuer string
}

// NewCodec builds a Codec from raw secret bytes.
func NewCodec(secret []byte, issuer string) (*Codec, error) {
	if len(secret) < MinSecretBytes {
		return nil, ErrWeakSecret
	}
	return &Codec{secret: secret, issuer: issuer}, nil
}

// NewCodecBase64 builds a Codec from a base64 (std encoding) secret string,
// which is how the secret is carried in configuration.
func NewCodecBase64(encoded, issuer string) (*Codec, error) {
	secret, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.Join(ErrWeakSecret, err)
	}
	return NewCodec(secret, issuer)
}

// Issuer returns the iss value this codec stamps and verifies.
func (c *Codec) Issuer() string { return c.issuer }

// Issue signs the claims and returns the compact token string. Signing only
// fails on an unusable key, which NewCodec has already ruled out, so an
// error here is genuinely exceptional.
func (c *Codec) Issue(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(c.secret)
}

// Decode verifies signature, expiry and issuer, and returns the embedded
// claims. It never consults session state; revocation and inactivity are a
// separate check layered by the authentication gate.
func (c *Codec) Decode(token string) (Claims, error) {
	var claims Claims

	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS512 {
			return nil, ErrAlgMismatch
		}
		return c.secret, nil
	})
	if err != nil {
		return Claims{}, mapParseError(err)
	}

	if err := claims.ValidateIssuer(c.issuer); err != nil {
		return Claims{}, err
	}

	return claims, nil
}

// Subject is a convenience projection of the subject claim.
func (c *Codec) Subject(token string) (string, error) {
	claims, err := c.Decode(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// mapParseError normalises golang-jwt errors onto our sentinel set so
// callers never match on library internals.
func mapParseError(err error) error {
	switch {
	case errors.Is(err, ErrAlgMismatch):
		return ErrAlgMismatch
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	default:
		return errors.Join(ErrMalformed, err)
	}
}
