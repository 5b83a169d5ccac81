package errors

import (
	"fmt"
)

// DocError is the structured error type for docarc.
// It provides rich context for error handling, logging, and adapter mapping.
type DocError struct {
	// Code is the unique error code (e.g., "ERR_201_ARCHIVE_NOT_FOUND").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (NotFound, Malformed, Unavailable, ...).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *DocError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *DocError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with DocError.
func (e *DocError) Is(target error) bool {
	if t, ok := target.(*DocError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *DocError) WithDetail(key, value string) *DocError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
// Returns the error for method chaining.
func (e *DocError) WithSuggestion(suggestion string) *DocError {
	e.Suggestion = suggestion
	return e
}

// New creates a new DocError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *DocError {
	return &DocError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a DocError from an existing error.
// The error's message becomes the DocError message.
func Wrap(code string, err error) *DocError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// NotFound creates a not-found error for an archive, symbol, article, or
// browse path. The category is forced regardless of the code's numeric
// range: callers translate these into nil/empty results at the adapter
// boundary.
func NotFound(code, message string) *DocError {
	e := New(code, message, nil)
	e.Category = CategoryNotFound
	return e
}

// Malformed creates an error for an unparsable document or index file.
func Malformed(message string, cause error) *DocError {
	return New(ErrCodeDocumentMalformed, message, cause)
}

// Unavailable creates an error for an embedding provider that is not loaded.
func Unavailable(message string) *DocError {
	return New(ErrCodeModelNotLoaded, message, nil).
		WithSuggestion("load the embedding model before calling embed or search")
}

// IOError creates an error for an unreadable root or directory.
func IOError(message string, cause error) *DocError {
	return New(ErrCodeRootUnreadable, message, cause)
}

// ValidationError creates an input validation error.
func ValidationError(message string, cause error) *DocError {
	return New(ErrCodeInvalidInput, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *DocError {
	return New(ErrCodeInternal, message, cause)
}

// IsNotFound reports whether err carries the NotFound category.
func IsNotFound(err error) bool {
	return GetCategory(err) == CategoryNotFound
}

// IsUnavailable reports whether err carries the Unavailable category.
func IsUnavailable(err error) bool {
	return GetCategory(err) == CategoryUnavailable
}

// IsRetryable checks if an error is retryable.
// Returns true if the error is a DocError with Retryable flag set.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if de, ok := err.(*DocError); ok {
		return de.Retryable
	}
	return false
}

// IsFatal checks if an error has fatal severity.
// Fatal errors abort the current operation.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if de, ok := err.(*DocError); ok {
		return de.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from a DocError.
// Returns empty string if not a DocError.
func GetCode(err error) string {
	if de, ok := err.(*DocError); ok {
		return de.Code
	}
	return ""
}

// GetCategory extracts the category from a DocError.
// Returns empty string if not a DocError.
func GetCategory(err error) Category {
	if de, ok := err.(*DocError); ok {
		return de.Category
	}
	return ""
}
