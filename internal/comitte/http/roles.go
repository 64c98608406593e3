package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/ls-softworks/comitte/internal/comitte/service"
	"github.com/ls-softworks/comitte/pkg/comittesdk"
	"github.com/ls-softworks/comitte/pkg/httpx"
	"github.com/ls-softworks/comitte/pkg/slogx"
)

// AssignRoleHandler serves POST /v1/members/{id}/roles. The route is behind
// RequireAny("ROLE_ADMIN"), so only admins reach it.
type AssignRoleHandler struct {
	AuthService *service.AuthService
	Validate    *validator.Validate
}

// ServeHTTP godoc
//
//	@Summary		Assign role
//	@Description	Grants a role to a member. The grant is attributed to the acting admin. Granting a role the member already holds is a no-op.
//	@Tags			Roles
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		int								true	"Member id"
//	@Param			request	body		comittesdk.AssignRoleRequest	true	"Role to grant"
//	@Success		200		{object}	comittesdk.MessageResponse
//	@Failure		400		{object}	comittesdk.ValidationErrorResponse
//	@Failure		403		{object}	comittesdk.ErrorResponse
//	@Failure		404		{object}	comittesdk.ErrorResponse
//	@Router			/v1/members/{id}/roles [post].
func (h *AssignRoleHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actorID, ok := httpx.ActorID(ctx)
	if !ok {
		httpx.WriteJSON(w, http.StatusUnauthorized, comittesdk.ErrorResponse{Error: httpx.MsgAuthRequired})
		return
	}

	memberID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, comittesdk.ValidationErrorResponse{
			Code:    "invalid_path",
			Message: "Member id must be numeric.",
		})
		return
	}

	var req comittesdk.AssignRoleRequest
	if !decodeJSON(w, r, h.Validate, &req) {
		return
	}

	if err := h.AuthService.AssignRole(ctx, memberID, req.RoleName, actorID); err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			httpx.WriteJSON(w, http.StatusNotFound, comittesdk.ErrorResponse{Error: "Member or role not found"})
			return
		}
		slogx.FromContext(ctx).Error("role assignment failed", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, comittesdk.ErrorResponse{Error: "Internal server error"})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, comittesdk.MessageResponse{Message: "Role assigned"})
}
