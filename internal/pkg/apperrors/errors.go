package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenUsed          = errors.New("token already used")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrAccountNotActive   = errors.New("account is not activated")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// Account errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// School / roster errors
var (
	ErrSchoolNotFound    = errors.New("school not found")
	ErrStudentNotFound   = errors.New("student not found")
	ErrClassNotFound     = errors.New("class not found")
	ErrGuardianLimit     = errors.New("student already has two guardians")
	ErrGuardianNotParent = errors.New("guardian account must have the parent role")
)

// Messaging errors
var (
	// ErrEmptyAudience means the audience target exists but resolves to no
	// active guardian accounts. Distinct from ErrResourceNotFound.
	ErrEmptyAudience = errors.New("audience has no active recipients")

	// ErrConversationAccess covers every membership and tenancy violation on
	// a conversation. Missing, cross-tenant and non-member all look the same
	// to the caller so existence never leaks.
	ErrConversationAccess = errors.New("conversation access denied")

	ErrConversationClosed = errors.New("conversation is closed")

	// ErrPersistence wraps storage failures surfaced by the aggregate
	// builder. The transaction has been rolled back; no partial state
	// remains.
	ErrPersistence = errors.New("storage failure")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// NewValidationError creates a new custom error for invalid input with a message
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// NewPersistenceError wraps a storage-layer failure
func NewPersistenceError(err error) error {
	return &CustomError{
		Err:     ErrPersistence,
		Message: "storage failure: " + err.Error(),
	}
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err       error
	Message   string
	StatusMsg string
	Code      string
	Details   map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}
