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

// ProfileHandler serves /v1/me. The gate has already authenticated the
// request, so the identity is always present.
type ProfileHandler struct {
	AuthService *service.AuthService
	Validate    *validator.Validate
}

// HandleGet godoc
//
//	@Summary		Current member profile
//	@Description	Returns the authenticated member's profile as recorded in the store, including roles granted since the token was issued.
//	@Tags			Profile
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	comittesdk.UserSummary
//	@Failure		401	{object}	comittesdk.ErrorResponse
//	@Router			/v1/me [get].
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := httpx.IdentityFromContext(ctx)
	if !ok {
		httpx.WriteJSON(w, http.StatusUnauthorized, comittesdk.ErrorResponse{Error: httpx.MsgAuthRequired})
		return
	}

	member, err := h.AuthService.Profile(ctx, id.MemberID)
	if err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			httpx.WriteJSON(w, http.StatusNotFound, comittesdk.ErrorResponse{Error: "Member not found"})
			return
		}
		slogx.FromContext(ctx).Error("profile lookup failed", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, comittesdk.ErrorResponse{Error: "Internal server error"})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, memberToSummary(member))
}

// HandlePut godoc
//
//	@Summary		Update profile
//	@Description	Updates the authenticated member's name or mobile. Blank fields keep their current value. The change is attributed to the acting member.
//	@Tags			Profile
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		comittesdk.UpdateProfileRequest	true	"Fields to change"
//	@Success		200		{object}	comittesdk.MemberResponse
//	@Failure		400		{object}	comittesdk.ValidationErrorResponse
//	@Failure		401		{object}	comittesdk.ErrorResponse
//	@Router			/v1/me [put].
func (h *ProfileHandler) HandlePut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actorID, ok := httpx.ActorID(ctx)
	if !ok {
		httpx.WriteJSON(w, http.StatusUnauthorized, comittesdk.ErrorResponse{Error: httpx.MsgAuthRequired})
		return
	}

	var req comittesdk.UpdateProfileRequest
	if !decodeJSON(w, r, h.Validate, &req) {
		return
	}

	member, err := h.AuthService.UpdateProfile(ctx, actorID, req.Name, "", req.Mobile, actorID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMemberNotFound):
			httpx.WriteJSON(w, http.StatusNotFound, comittesdk.ErrorResponse{Error: "Member not found"})
		case errors.Is(err, service.ErrAlreadyRegistered):
			httpx.WriteJSON(w, http.StatusConflict, comittesdk.ErrorResponse{Error: "Mobile already registered"})
		default:
			slogx.FromContext(ctx).Error("profile update failed", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, comittesdk.ErrorResponse{Error: "Internal server error"})
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, comittesdk.MemberResponse{
		MemberID: member.ID,
		Username: member.Username,
		Email:    member.Email,
		Name:     member.Name,
		Mobile:   member.Mobile,
	})
}
