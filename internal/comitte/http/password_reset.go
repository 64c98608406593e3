package http

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/ls-softworks/comitte/internal/comitte/service"
	"github.com/ls-softworks/comitte/pkg/comittesdk"
	"github.com/ls-softworks/comitte/pkg/httpx"
	"github.com/ls-softworks/comitte/pkg/slogx"
)

// PasswordResetRequestHandler serves POST /v1/password/request. The response
// is the same whether or not the identifier matched an account.
type PasswordResetRequestHandler struct {
	ResetService *service.PasswordResetService
	Validate     *validator.Validate
}

// ServeHTTP godoc
//
//	@Summary		Request password reset
//	@Description	Issues a single-use reset credential and delivers it to the member. Unknown identifiers get the same acknowledgement as known ones.
//	@Tags			Password
//	@Accept			json
//	@Produce		json
//	@Param			request	body		comittesdk.PasswordResetRequest	true	"Account identifier"
//	@Success		200		{object}	comittesdk.MessageResponse
//	@Failure		400		{object}	comittesdk.ValidationErrorResponse
//	@Router			/v1/password/request [post].
func (h *PasswordResetRequestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req comittesdk.PasswordResetRequest
	if !decodeJSON(w, r, h.Validate, &req) {
		return
	}

	if err := h.ResetService.Request(ctx, req.UsernameOrEmail); err != nil {
		slogx.FromContext(ctx).Error("password reset request failed", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, comittesdk.ErrorResponse{Error: "Internal server error"})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, comittesdk.MessageResponse{
		Message: "If the account exists, reset instructions have been sent",
	})
}

// PasswordResetHandler serves POST /v1/password/reset.
type PasswordResetHandler struct {
	ResetService *service.PasswordResetService
	Validate     *validator.Validate
}

// ServeHTTP godoc
//
//	@Summary		Complete password reset
//	@Description	Consumes a reset credential (emailed token, or identifier plus OTP) and sets the new password.
//	@Tags			Password
//	@Accept			json
//	@Produce		json
//	@Param			request	body		comittesdk.PasswordUpdateRequest	true	"Reset credential and new password"
//	@Success		200		{object}	comittesdk.MessageResponse
//	@Failure		400		{object}	comittesdk.ValidationErrorResponse
//	@Failure		401		{object}	comittesdk.ErrorResponse
//	@Router			/v1/password/reset [post].
func (h *PasswordResetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req comittesdk.PasswordUpdateRequest
	if !decodeJSON(w, r, h.Validate, &req) {
		return
	}

	err := h.ResetService.Redeem(ctx, req.Token, req.UsernameOrEmail, req.OTP, req.NewPassword)
	if err != nil {
		if errors.Is(err, service.ErrResetTokenInvalid) {
			httpx.WriteJSON(w, http.StatusUnauthorized, comittesdk.ErrorResponse{
				Error: "Invalid or expired reset credential",
			})
			return
		}
		slogx.FromContext(ctx).Error("password reset failed", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, comittesdk.ErrorResponse{Error: "Internal server error"})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, comittesdk.MessageResponse{Message: "Password updated"})
}
