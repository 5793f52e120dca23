package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/peterbokern/makibeans/internal/app/query"
	"github.com/peterbokern/makibeans/internal/domain"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// JSON sends a JSON response
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends an error response
func Error(w http.ResponseWriter, status int, err error) {
	errorType := "error"
	switch status {
	case http.StatusNotFound:
		errorType = "not_found"
	case http.StatusBadRequest:
		errorType = "bad_request"
	case http.StatusConflict:
		errorType = "conflict"
	case http.StatusInternalServerError:
		errorType = "internal_server_error"
	}

	JSON(w, status, ErrorResponse{
		Error:   errorType,
		Message: err.Error(),
	})
}

// StatusFor maps domain and query errors to HTTP status codes
func StatusFor(err error) int {
	switch {
	case errors.Is(err, query.ErrInvalidFilter),
		errors.Is(err, domain.ErrUnknownRef),
		errors.Is(err, domain.ErrInvalidProductName),
		errors.Is(err, domain.ErrInvalidVariantPrice),
		errors.Is(err, domain.ErrInvalidVariantStock),
		errors.Is(err, domain.ErrInvalidVariantSKU),
		errors.Is(err, domain.ErrInvalidAttributeValue):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateSKU):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// FromError sends an error response with the status StatusFor picks
func FromError(w http.ResponseWriter, err error) {
	Error(w, StatusFor(err), err)
}
