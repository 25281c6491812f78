package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	s3component "github.com/edgee-cloud/amazon-s3-component"
)

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errCode,
		Message: message,
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// HandleError writes appropriate error response based on error type.
// Settings errors carry the exact message the caller must see, so it is
// passed through unchanged.
func HandleError(w http.ResponseWriter, err error) {
	var maxBytes *http.MaxBytesError

	switch {
	case errors.Is(err, s3component.ErrMissingField):
		slog.Debug("request rejected", "error", err)
		WriteError(w, http.StatusBadRequest, "missing_field", err.Error())
	case errors.As(err, &maxBytes):
		slog.Debug("request rejected", "error", err)
		WriteError(w, http.StatusRequestEntityTooLarge, "body_too_large", "Request body too large")
	case errors.Is(err, s3component.ErrInvalidInput) && !errors.Is(err, s3component.ErrSigning):
		slog.Debug("request rejected", "error", err)
		WriteError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, s3component.ErrUnauthorized):
		slog.Debug("request rejected", "error", err)
		WriteError(w, http.StatusForbidden, "unauthorized", err.Error())
	case errors.Is(err, ErrDestinationNotFound):
		WriteError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		slog.Error("request error", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}
