package utils

import (
	"errors"
	"net/http"
)

// Domain-level errors used by the service layer to provide
// fine-grained failure reasons.
var (
	ErrNotFound     = errors.New("not_found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidState = errors.New("invalid_state")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation_error")

	// For concurrency conflicts
	ErrRowVersionConflict = errors.New("row_version_conflict")

	ErrNoRowsUpdated = errors.New("no_rows_updated")
)

// AppError for structured error handling from services to controllers.
type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{StatusCode: status, Code: code, Message: message, Err: err}
}

// HandleAppError centralizes responding to AppErrors. Bare sentinel errors
// from the service layer are mapped to their canonical status/code here so
// controllers never compare strings.
func HandleAppError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		RespondErrorWithCode(w, appErr.StatusCode, appErr.Code, appErr.Message, nil, appErr.Err)
		return
	}

	switch {
	case errors.Is(err, ErrNotFound):
		RespondErrorWithCode(w, http.StatusNotFound, ErrCodeNotFound, "Resource not found", nil, err)
	case errors.Is(err, ErrUnauthorized):
		RespondErrorWithCode(w, http.StatusForbidden, ErrCodeUnauthorized, "Not allowed to perform this action", nil, err)
	case errors.Is(err, ErrInvalidState):
		RespondErrorWithCode(w, http.StatusConflict, ErrCodeInvalidState, "Operation not legal in the current state", nil, err)
	case errors.Is(err, ErrConflict), errors.Is(err, ErrRowVersionConflict):
		RespondErrorWithCode(w, http.StatusConflict, ErrCodeConflict, "Conflicting concurrent change", nil, err)
	case errors.Is(err, ErrValidation):
		RespondErrorWithCode(w, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil, err)
	default:
		RespondErrorWithCode(w, http.StatusInternalServerError, ErrCodeInternal, "An unexpected error occurred", nil, err)
	}
}
