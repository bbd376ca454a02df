package errors

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Sentinel errors for the failure classes the application distinguishes.
// Errors are marked with one of these via the builder's Mark call and
// matched again with errors.Is at the HTTP boundary.
var (
	// ErrNotFound covers a missing resource and, deliberately, an
	// ownership mismatch: a caller probing for someone else's invoice
	// receives the same signal as for an invoice that does not exist.
	ErrNotFound = new(ErrCodeNotFound, "resource not found")

	// ErrValidation covers malformed input caught at configuration time.
	ErrValidation = new(ErrCodeValidation, "validation error")

	// ErrBlobNotFound is a recoverable fetch failure for a blob key the
	// database claims exists. Callers treat it as a cache miss.
	ErrBlobNotFound = new(ErrCodeBlobNotFound, "blob not found")

	// ErrStorage is a fatal failure to persist a blob or its metadata.
	ErrStorage = new(ErrCodeStorage, "storage error")

	// ErrGeneration means the PDF library could not parse or render.
	ErrGeneration = new(ErrCodeGeneration, "document generation failed")

	// ErrDatabase covers unexpected database failures.
	ErrDatabase = new(ErrCodeDatabase, "database error")

	// ErrSystem is the catch-all for internal failures.
	ErrSystem = new(ErrCodeSystemError, "system error")

	// maps errors to http status codes
	statusCodeMap = map[error]int{
		ErrNotFound:     http.StatusNotFound,
		ErrValidation:   http.StatusBadRequest,
		ErrBlobNotFound: http.StatusInternalServerError,
		ErrStorage:      http.StatusInternalServerError,
		ErrGeneration:   http.StatusInternalServerError,
		ErrDatabase:     http.StatusInternalServerError,
		ErrSystem:       http.StatusInternalServerError,
	}
)

const (
	ErrCodeNotFound     = "not_found"
	ErrCodeValidation   = "validation_error"
	ErrCodeBlobNotFound = "blob_not_found"
	ErrCodeStorage      = "storage_error"
	ErrCodeGeneration   = "generation_error"
	ErrCodeDatabase     = "database_error"
	ErrCodeSystemError  = "system_error"
)

// InternalError represents a domain error
type InternalError struct {
	Code    string // Machine-readable error code
	Message string // Human-readable error message
	Err     error  // Underlying error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is implements error matching for wrapped errors
func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}

	return e.Code == t.Code
}

func new(code string, message string) *InternalError {
	return &InternalError{
		Code:    code,
		Message: message,
	}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsBlobNotFound checks if an error is a recoverable blob fetch failure
func IsBlobNotFound(err error) bool {
	return errors.Is(err, ErrBlobNotFound)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// HTTPStatusFromErr returns the HTTP status code for a marked error.
// Unrecognised errors map to 500.
func HTTPStatusFromErr(err error) int {
	for sentinel, status := range statusCodeMap {
		if errors.Is(err, sentinel) {
			return status
		}
	}
	return http.StatusInternalServerError
}
