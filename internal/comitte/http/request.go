package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/ls-softworks/comitte/pkg/comittesdk"
	"github.com/ls-softworks/comitte/pkg/httpx"
)

// decodeJSON parses the request body into dst and runs struct validation.
// On failure it writes the error response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v *validator.Validate, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, comittesdk.ValidationErrorResponse{
			Code:    "invalid_body",
			Message: "Request body could not be parsed.",
		})
		return false
	}

	if err := v.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		details := map[string]string{}
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				details[fe.Field()] = fe.Tag()
			}
		}
		httpx.WriteJSON(w, http.StatusBadRequest, comittesdk.ValidationErrorResponse{
			Code:    "validation_failed",
			Message: "Request validation failed.",
			Details: details,
		})
		return false
	}
	return true
}
