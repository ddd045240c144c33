package errs

import (
	"errors"
	"fmt"
	"net/http"

	"roomchat/internal/pkg/logx"
)

// CustomError is the error type returned across package boundaries.
// It carries a business code, a user-facing message, and the HTTP status it maps to.
type CustomError struct {
	// Code is the business error code (see constants definition).
	Code int

	// Message is the user-friendly error description.
	Message string

	// Status is the HTTP status code corresponding to this error.
	Status int

	// cause is the underlying error, kept for logs and never rendered.
	cause error
}

// Error implements the error interface.
func (e *CustomError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("Error Code %d (HTTP %d): %s: %v", e.Code, e.Status, e.Message, e.cause)
	}
	return fmt.Sprintf("Error Code %d (HTTP %d): %s", e.Code, e.Status, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (e *CustomError) Unwrap() error {
	return e.cause
}

// NewError builds a *CustomError from a predefined code.
// Unknown codes are logged and collapse to ErrUnknown.
func NewError(code int) *CustomError {
	template, ok := errorMap[code]
	if !ok {
		logx.Error(
			fmt.Errorf("attempted to create an error with an unknown code in errorMap"),
			"Unknown error code requested",
			"requested_code", code,
		)
		template = errorMap[ErrUnknown]
	}

	customErr := template
	if customErr.Status == 0 {
		customErr.Status = http.StatusOK
	}

	return &customErr
}

// Wrap builds a *CustomError from code and records cause for logging.
// The rendered code and message are identical to NewError(code).
func Wrap(code int, cause error) *CustomError {
	customErr := NewError(code)
	customErr.cause = cause
	return customErr
}

// As extracts the *CustomError from err's chain. Errors without one are
// reported as ErrUnknown, logging the original error.
func As(err error) *CustomError {
	if err == nil {
		return nil
	}

	var customErr *CustomError
	if errors.As(err, &customErr) {
		return customErr
	}

	logx.Error(err, "Handling unclassified error as ErrUnknown")
	return Wrap(ErrUnknown, err)
}

// CodeOf returns the business code carried by err, 0 for nil, or ErrUnknown.
func CodeOf(err error) int {
	if err == nil {
		return 0
	}

	var customErr *CustomError
	if errors.As(err, &customErr) {
		return customErr.Code
	}
	return ErrUnknown
}

// Is reports whether err carries the given business code.
func Is(err error, code int) bool {
	return err != nil && CodeOf(err) == code
}
