package httpx

import (
	"net/http"
	"strings"
)

// RequireAny admits the request only when the caller's identity holds at
// least one of the named roles or authorities. Role names carry the
// "ROLE_" prefix (e.g. "ROLE_ADMIN"); authority names do not.
func RequireAny(names ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				writeBearerError(w, MsgAuthRequired)
				return
			}

			if !id.HasAny(names...) {
				writeForbidden(w, names...)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeForbidden(w http.ResponseWriter, required ...string) {
	w.Header().
		Set("WWW-Authenticate", `Bearer error="insufficient_scope", scope="`+strings.Join(required, " ")+`"`)
	WriteJSON(w, http.StatusForbidden, map[string]string{
		"error": "Insufficient role or authority for this operation.",
	})
}
