package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	mW "github.com/underbudget/backend/internal/middleware"
	"github.com/underbudget/backend/internal/services"
)

const maxBodyBytes = 1_048_576

// decodeJSON reads a single JSON object into dst. Unknown fields are
// ignored and an empty body decodes as an empty object, leaving required
// field checks to the service.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		services.SendErrorResponse(w, services.MsgInvalidRequest, http.StatusBadRequest, nil)
		return false
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, services.MsgInvalidRequest, http.StatusBadRequest, nil)
		return false
	}
	return true
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, err error) {
	status, msg := services.StatusFor(err)
	services.SendErrorResponse(w, msg, status, nil)
}

// currentUser returns the authenticated caller or answers 401.
func currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := mW.UserIDFromContext(r.Context())
	if !ok {
		services.SendErrorResponse(w, services.MsgUnauthorized, http.StatusUnauthorized, nil)
	}
	return userID, ok
}
