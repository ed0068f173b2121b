package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/rezkam/gtf/internal/domain"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []ErrorField `json:"details"`
}

// ErrorField describes a field-specific error.
type ErrorField struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// Error sends a generic error response.
func Error(w http.ResponseWriter, code, message string, statusCode int) {
	write(w, statusCode, ErrorResponse{
		Error: ErrorDetail{Code: code, Message: message, Details: []ErrorField{}},
	})
}

// BadRequest sends a 400 Bad Request error.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, "INVALID_REQUEST", message, http.StatusBadRequest)
}

// ValidationError sends a 400 validation error with field details.
func ValidationError(w http.ResponseWriter, field, issue string) {
	write(w, http.StatusBadRequest, ErrorResponse{
		Error: ErrorDetail{
			Code:    "VALIDATION_ERROR",
			Message: "validation failed",
			Details: []ErrorField{{Field: field, Issue: issue}},
		},
	})
}

// NotFound sends a 404 Not Found error.
func NotFound(w http.ResponseWriter, resource string) {
	Error(w, "NOT_FOUND", resource+" not found", http.StatusNotFound)
}

// Conflict sends a 409 Conflict error.
func Conflict(w http.ResponseWriter, code, message string) {
	Error(w, code, message, http.StatusConflict)
}

// InternalError sends a 500 Internal Server Error.
// The cause is logged; the client gets a generic message.
func InternalError(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		slog.ErrorContext(r.Context(), "Internal server error", "error", err)
	}
	Error(w, "INTERNAL_ERROR", "an internal error occurred", http.StatusInternalServerError)
}

// FromDomainError maps domain errors to HTTP responses.
func FromDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	// Validation errors (400)
	case errors.Is(err, domain.ErrTitleRequired):
		ValidationError(w, "title", "required field missing")
	case errors.Is(err, domain.ErrTitleTooLong):
		ValidationError(w, "title", "must be 255 characters or less")
	case errors.Is(err, domain.ErrInvalidPriority):
		ValidationError(w, "priority", "must be one of high, medium, low")
	case errors.Is(err, domain.ErrInvalidDate):
		ValidationError(w, "date", "must be YYYY-MM-DD")
	case errors.Is(err, domain.ErrInvalidSuggestionStatus):
		ValidationError(w, "zoya_status", "invalid suggestion status")
	case errors.Is(err, domain.ErrEmptyUpdateMask):
		ValidationError(w, "update_mask", "at least one field is required")
	case errors.Is(err, domain.ErrUnknownUpdateField):
		ValidationError(w, "update_mask", err.Error())
	case errors.Is(err, domain.ErrInvalidOrder):
		ValidationError(w, "order", "must be >= 0")
	case errors.Is(err, domain.ErrInvalidDepartment):
		ValidationError(w, "department", "key is required")
	case errors.Is(err, domain.ErrInvalidReminder):
		ValidationError(w, "when", err.Error())
	case errors.Is(err, domain.ErrDuplicateTaskID), errors.Is(err, domain.ErrTaskIDRequired):
		ValidationError(w, "id", err.Error())

	// Not found errors (404)
	case errors.Is(err, domain.ErrTaskNotFound):
		NotFound(w, "task")

	// Workflow state errors (409)
	case errors.Is(err, domain.ErrNotSuggestible):
		Conflict(w, "NOT_SUGGESTIBLE", err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		Conflict(w, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, domain.ErrNotReminder):
		Conflict(w, "NOT_REMINDER", err.Error())

	// Unknown errors (500)
	default:
		InternalError(w, r, err)
	}
}
