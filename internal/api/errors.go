package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/silens-indexer/internal/logging"
	"github.com/silens-indexer/internal/service"
)

// errorBody is the wire shape of every API error
type errorBody struct {
	Error string `json:"error"`
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response
func respondError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, errorBody{Error: message})
}

// respondServiceError maps service errors onto HTTP statuses. Unknown errors
// are logged and masked as a generic 500.
func respondServiceError(w http.ResponseWriter, err error) {
	var notFoundErr *service.NotFoundError
	if errors.As(err, &notFoundErr) {
		respondError(w, http.StatusNotFound, notFoundErr.Error())
		return
	}

	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		respondError(w, http.StatusBadRequest, validationErr.Error())
		return
	}

	logging.WithComponent("api").WithError(err).Error("Request failed")
	respondError(w, http.StatusInternalServerError, "Internal server error")
}
