package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// Ledger error taxonomy. All of these are caller/input errors and are never
// retried by the core. Only ErrStorageUnavailable is transient.
var (
	ErrDuplicateAccountCode   = fmt.Errorf("%w: account code already exists", ErrDuplicate)
	ErrAccountNotFound        = fmt.Errorf("%w: account", ErrNotFound)
	ErrUnknownLineAccount     = fmt.Errorf("%w referenced by journal line", ErrAccountNotFound)
	ErrAccountInactive        = errors.New("account is inactive")
	ErrParentNotFound         = errors.New("parent account not found")
	ErrCyclicHierarchy        = errors.New("account hierarchy would contain a cycle")
	ErrCrossTenantAccess      = errors.New("resource belongs to a different tenant")
	ErrUnbalancedEntry        = errors.New("journal entry debits and credits do not balance")
	ErrEmptyEntry             = errors.New("journal entry must have at least two lines")
	ErrInvalidStateTransition = errors.New("invalid journal entry state transition")
	ErrNotPosted              = errors.New("journal entry is not posted")
	ErrAlreadyReversed        = errors.New("journal entry has already been reversed")
	ErrEntryNotFound          = fmt.Errorf("%w: journal entry", ErrNotFound)
	ErrStorageUnavailable     = errors.New("storage unavailable")
)

// AppError carries an HTTP status alongside a wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError builds an AppError with the given status code.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewStorageError wraps an infrastructure failure so callers can retry it.
func NewStorageError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusServiceUnavailable,
		Message: message,
		Err:     errors.Join(ErrStorageUnavailable, err),
	}
}

// IsRetryable reports whether err is a transient storage failure.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}

// HTTPStatus maps an error from the core to an HTTP status code.
func HTTPStatus(err error) int {
	var appErr *AppError
	switch {
	case errors.Is(err, ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrCrossTenantAccess):
		return http.StatusForbidden
	case errors.Is(err, ErrUnknownLineAccount):
		// the entry exists; its content is what is wrong
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate),
		errors.Is(err, ErrInvalidStateTransition),
		errors.Is(err, ErrNotPosted),
		errors.Is(err, ErrAlreadyReversed),
		errors.Is(err, ErrCyclicHierarchy):
		return http.StatusConflict
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrUnbalancedEntry),
		errors.Is(err, ErrEmptyEntry),
		errors.Is(err, ErrParentNotFound),
		errors.Is(err, ErrAccountInactive):
		return http.StatusUnprocessableEntity
	case errors.As(err, &appErr):
		return appErr.Code
	default:
		return http.StatusInternalServerError
	}
}
