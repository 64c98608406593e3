package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ls-softworks/comitte/pkg/jwtx"
	"github.com/ls-softworks/comitte/pkg/sessionx"
	"github.com/ls-softworks/comitte/pkg/slogx"
)

// User-facing 401 messages. Signature and malformed failures deliberately
// share one message so the response never acts as an oracle for the signing
// scheme.
const (
	MsgAuthRequired     = "Authentication required. Please provide a valid token."
	MsgTokenInvalidated = "Token has been invalidated. Please login again."
	MsgSessionInactive  = "Session expired due to inactivity. Please login again."
	MsgTokenInvalid     = "Invalid or expired token."
)

// ErrNoBearer reports a missing or malformed Authorization header.
var ErrNoBearer = errors.New("httpx: missing bearer token")

// ExtractBearer pulls the bearer token out of the Authorization header.
func ExtractBearer(r *http.Request) (string, error) {
	authz := r.Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		return "", ErrNoBearer
	}

	token := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
	if token == "" {
		return "", ErrNoBearer
	}
	return token, nil
}

// AuthnMiddleware is the request gate. For every request outside the public
// allowlist it requires a bearer token, checks revocation and inactivity
// against the session tracker, decodes the token, and populates the request
// identity context before refreshing the token's activity.
//
// The checks run in a fixed order and short-circuit on the first applicable
// outcome; every failure, including anything unexpected, becomes a uniform
// 401. The gate never fails open.
func AuthnMiddleware(codec *jwtx.Codec, sessions *sessionx.Tracker, publicPrefixes []string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicPath(r.URL.Path, publicPrefixes) {
				next.ServeHTTP(w, r)
				return
			}

			ctx, failure := authenticate(r, codec, sessions)
			if failure != "" {
				writeBearerError(w, failure)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// authenticate runs the ordered token checks for one request. It returns
// either a context carrying the resolved identity or the 401 message to
// send. A panic anywhere in here is treated as an authentication failure.
func authenticate(
	r *http.Request,
	codec *jwtx.Codec,
	sessions *sessionx.Tracker,
) (ctx context.Context, failure string) {
	ctx = r.Context()
	log := slogx.FromContext(ctx)

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("authentication panicked, failing closed", "panic", rec)
			ctx, failure = r.Context(), MsgAuthRequired
		}
	}()

	token, err := ExtractBearer(r)
	if err != nil {
		return ctx, MsgAuthRequired
	}

	if sessions.IsRevoked(token) {
		log.Warn("revoked token presented", "path", r.URL.Path)
		return ctx, MsgTokenInvalidated
	}

	// IsExpired revokes the token as a side effect when the window has
	// lapsed, so the next attempt is rejected as revoked.
	if sessions.IsExpired(token) {
		log.Warn("session lapsed through inactivity", "path", r.URL.Path)
		return ctx, MsgSessionInactive
	}

	claims, err := codec.Decode(token)
	if err != nil {
		log.Warn("token decode failed", "err", err)
		return ctx, MsgTokenInvalid
	}

	sessions.Touch(token)
	return WithIdentity(ctx, IdentityFromClaims(claims)), ""
}

func isPublicPath(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// RFC 6750-ish error response for bearer auth failures.
func writeBearerError(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": msg})
}
