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

// RegisterHandler serves POST /v1/auth/register.
type RegisterHandler struct {
	AuthService *service.AuthService
	Validate    *validator.Validate
}

// ServeHTTP godoc
//
//	@Summary		Register
//	@Description	Creates a member account with the default MEMBER role.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		comittesdk.RegisterRequest	true	"New member profile"
//	@Success		201		{object}	comittesdk.MemberResponse
//	@Failure		400		{object}	comittesdk.ValidationErrorResponse
//	@Failure		409		{object}	comittesdk.ErrorResponse
//	@Router			/v1/auth/register [post].
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req comittesdk.RegisterRequest
	if !decodeJSON(w, r, h.Validate, &req) {
		return
	}

	member, err := h.AuthService.Register(ctx, req.Username, req.Email, req.Mobile, req.Name, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyRegistered) {
			httpx.WriteJSON(w, http.StatusConflict, comittesdk.ErrorResponse{
				Error: "Username, email or mobile already registered",
			})
			return
		}
		slogx.FromContext(ctx).Error("registration failed", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, comittesdk.ErrorResponse{Error: "Internal server error"})
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, comittesdk.MemberResponse{
		MemberID: member.ID,
		Username: member.Username,
		Email:    member.Email,
		Name:     member.Name,
		Mobile:   member.Mobile,
	})
}
