package http

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/ls-softworks/comitte/internal/comitte/domain"
	"github.com/ls-softworks/comitte/internal/comitte/service"
	"github.com/ls-softworks/comitte/pkg/comittesdk"
	"github.com/ls-softworks/comitte/pkg/httpx"
	"github.com/ls-softworks/comitte/pkg/slogx"
)

// msgLoginFailed deliberately does not say whether the identifier or the
// password was wrong.
const msgLoginFailed = "Invalid username/email or password"

// LoginHandler serves POST /v1/auth/login.
type LoginHandler struct {
	AuthService *service.AuthService
	Validate    *validator.Validate
}

// ServeHTTP godoc
//
//	@Summary		Login
//	@Description	Authenticates a member by username or email and issues a bearer token.
//	@Description	Failures return a single generic message so the endpoint does not reveal which accounts exist.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		comittesdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	comittesdk.LoginResponse
//	@Failure		400		{object}	comittesdk.ValidationErrorResponse
//	@Failure		401		{object}	comittesdk.ErrorResponse
//	@Router			/v1/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req comittesdk.LoginRequest
	if !decodeJSON(w, r, h.Validate, &req) {
		return
	}

	token, member, err := h.AuthService.Login(ctx, req.UsernameOrEmail, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpx.WriteJSON(w, http.StatusUnauthorized, comittesdk.ErrorResponse{Error: msgLoginFailed})
			return
		}
		slogx.FromContext(ctx).Error("login failed", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, comittesdk.ErrorResponse{Error: "Internal server error"})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, comittesdk.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   h.AuthService.TokenLifetime().Milliseconds(),
		User:        memberToSummary(member),
	})
}

// LogoutHandler serves POST /v1/auth/logout. The route sits on the public
// allowlist so a token that is already dead still gets the acknowledgement;
// revocation is idempotent.
type LogoutHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Logout
//	@Description	Revokes the presented bearer token. Repeating the call, or calling it with an expired or missing token, returns the same acknowledgement.
//	@Tags			Auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	comittesdk.LogoutResponse
//	@Router			/v1/auth/logout [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token, _ := httpx.ExtractBearer(r)
	at := h.AuthService.Logout(r.Context(), token)

	httpx.WriteJSON(w, http.StatusOK, comittesdk.LogoutResponse{
		Message:   "Logged out successfully",
		Timestamp: at.UnixMilli(),
	})
}

// SessionStatusHandler serves GET /v1/auth/session-status. Also public so a
// lapsed session reports active=false instead of a 401.
type SessionStatusHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Session status
//	@Description	Reports whether the presented token still maps to a live session and how many seconds remain before it lapses through inactivity.
//	@Description	Checking the status counts as activity and refreshes the session.
//	@Tags			Auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	comittesdk.SessionStatusResponse
//	@Router			/v1/auth/session-status [get].
func (h *SessionStatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token, _ := httpx.ExtractBearer(r)

	active, remaining := h.AuthService.SessionStatus(r.Context(), token)

	resp := comittesdk.SessionStatusResponse{Active: active}
	if active {
		resp.RemainingSeconds = remaining
		resp.Message = "Session is active"
	} else {
		resp.Message = "Session has expired or been invalidated"
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}

func memberToSummary(m domain.Member) comittesdk.UserSummary {
	return comittesdk.UserSummary{
		MemberID:       m.ID,
		Username:       m.Username,
		Email:          m.Email,
		Name:           m.Name,
		Mobile:         m.Mobile,
		RoleIDs:        m.RoleIDs(),
		RoleNames:      m.RoleNames(),
		AuthorityNames: m.AuthorityNames(),
	}
}
