package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/harborline/bms/internal/auth/service"
	"github.com/harborline/bms/internal/auth/store"
	"github.com/harborline/bms/pkg/httpx"
	"github.com/harborline/bms/pkg/slogx"
)

// Envelope is the uniform response shape for every endpoint.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

func writeOK(w http.ResponseWriter, message string, data any) {
	httpx.WriteJSON(w, http.StatusOK, Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func writeCreated(w http.ResponseWriter, message string, data any) {
	httpx.WriteJSON(w, http.StatusCreated, Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func writeError(w http.ResponseWriter, code int, message string) {
	httpx.WriteJSON(w, code, Envelope{
		Success: false,
		Message: message,
	})
}

// writeServiceError translates service-layer sentinels into HTTP responses.
// The login messages are part of the API contract: unknown and unconfirmed
// accounts share one message, bad passwords get another.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownAccount):
		writeError(w, http.StatusUnauthorized, "Invalid username or email.")
	case errors.Is(err, service.ErrInvalidPassword):
		writeError(w, http.StatusUnauthorized, "Invalid password.")
	case errors.Is(err, service.ErrInvalidRefresh):
		writeError(w, http.StatusUnauthorized, "Invalid or expired refresh token.")
	case errors.Is(err, service.ErrInvalidOTP):
		writeError(w, http.StatusBadRequest, "Invalid or expired code.")
	case errors.Is(err, service.ErrAccountExists):
		writeError(w, http.StatusConflict, "Username or email is already registered.")
	case errors.Is(err, service.ErrInvalidUsername):
		writeError(w, http.StatusBadRequest, "Username must be 3-50 characters with no spaces.")
	case errors.Is(err, service.ErrInvalidEmail):
		writeError(w, http.StatusBadRequest, "Invalid email address.")
	case errors.Is(err, service.ErrWeakPassword):
		writeError(w, http.StatusBadRequest, "Password must be at least 8 characters.")
	case errors.Is(err, service.ErrInvalidBusinessName):
		writeError(w, http.StatusBadRequest, "Business name is required.")
	case errors.Is(err, service.ErrInvalidRole):
		writeError(w, http.StatusBadRequest, "Unknown role.")
	case errors.Is(err, service.ErrNotAssociated):
		writeError(w, http.StatusForbidden, "You are not associated with this business.")
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "Your role does not permit this operation.")
	case errors.Is(err, service.ErrAlreadyMember):
		writeError(w, http.StatusConflict, "User is already a member of this business.")
	case errors.Is(err, service.ErrSuperOwnerExists):
		writeError(w, http.StatusConflict, "This business already has a super owner.")
	case errors.Is(err, service.ErrCannotRemoveSuperOwner):
		writeError(w, http.StatusForbidden, "The super owner cannot be removed.")
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found.")
	default:
		slogx.FromContext(r.Context()).Error("unhandled service error", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error.")
	}
}

// decodeJSON reads the request body into dst, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed request body.")
		return false
	}
	return true
}
