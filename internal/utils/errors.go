package utils

import "fmt"

type AppError struct {
	Code    string
	Message string
	Origin  error // Original error that caused this error, if any
}

func (appErr *AppError) Error() string {
	if appErr.Origin != nil {
		return appErr.Message + ": " + appErr.Origin.Error()
	}
	return appErr.Message
}

func (appErr *AppError) Unwrap() error {
	return appErr.Origin
}

// Standard error codes for the application
const (
	// Bad input shape or content (empty content, invalid email, short password)
	ErrValidation = "VALIDATION_ERROR"

	// Referenced post/user/id does not exist
	ErrNotFound = "NOT_FOUND"

	// Missing/invalid caller identity, or a forbidden action such as self-follow
	ErrUnauthorized = "UNAUTHORIZED"

	// Duplicate username/email on register, duplicate follow edge
	ErrConflict = "CONFLICT"

	// Backend I/O failure; opaque to callers, no partial state exposed
	ErrStore = "STORE_ERROR"

	// Cache backend failure; logged and swallowed, never blocks a mutation
	ErrCache = "CACHE_ERROR"
)

// Error creation helper functions
func NewAppError(code string, message string, originalErr error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Origin:  originalErr,
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{Code: ErrValidation, Message: message}
}

func NewNotFoundError(what string) *AppError {
	return &AppError{Code: ErrNotFound, Message: what + " not found"}
}

func NewUnauthorizedError(reason string) *AppError {
	return &AppError{Code: ErrUnauthorized, Message: "Unauthorized: " + reason}
}

func NewConflictError(message string) *AppError {
	return &AppError{Code: ErrConflict, Message: message}
}

func NewStoreError(op string, originalErr error) *AppError {
	return &AppError{
		Code:    ErrStore,
		Message: fmt.Sprintf("store operation %s failed", op),
		Origin:  originalErr,
	}
}

func NewCacheError(op string, originalErr error) *AppError {
	return &AppError{
		Code:    ErrCache,
		Message: fmt.Sprintf("cache operation %s failed", op),
		Origin:  originalErr,
	}
}

// Helper method to check if an error is of a specific type
func IsErrorCode(err error, code string) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == code
	}
	return false
}

// AppErrorToHTTPStatus converts an AppError code to an HTTP status code.
func AppErrorToHTTPStatus(errorCode string) int {
	switch errorCode {
	case ErrValidation:
		return 400 // http.StatusBadRequest
	case ErrUnauthorized:
		return 401 // http.StatusUnauthorized
	case ErrNotFound:
		return 404 // http.StatusNotFound
	case ErrConflict:
		return 409 // http.StatusConflict
	case ErrStore, ErrCache:
		return 500 // http.StatusInternalServerError
	default:
		return 500 // http.StatusInternalServerError for unknown errors
	}
}
