package apperrors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")

	// Domain rule errors
	ErrBusinessRule = errors.New("business rule violated")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrAccountDisabled    = errors.New("account is disabled")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
)

// Entity errors. All wrap ErrResourceNotFound so errors.Is can match both
// the specific entity and the generic class.
var (
	ErrUserNotFound       = fmt.Errorf("user: %w", ErrResourceNotFound)
	ErrStudentNotFound    = fmt.Errorf("student: %w", ErrResourceNotFound)
	ErrTeacherNotFound    = fmt.Errorf("teacher: %w", ErrResourceNotFound)
	ErrExamNotFound       = fmt.Errorf("exam: %w", ErrResourceNotFound)
	ErrAssignmentNotFound = fmt.Errorf("exam assignment: %w", ErrResourceNotFound)
	ErrQuestionNotFound   = fmt.Errorf("exam question: %w", ErrResourceNotFound)
	ErrResponseNotFound   = fmt.Errorf("exam response: %w", ErrResourceNotFound)
	ErrRegradeNotFound    = fmt.Errorf("regrade request: %w", ErrResourceNotFound)
)

// CustomError represents application-specific errors with additional context.
// Entity carries the domain entity the error refers to so the transport layer
// and the logs can name it without parsing the message.
type CustomError struct {
	Err     error
	Message string
	Entity  string
	Details map[string]interface{}
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

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// NewNotFoundError creates a not-found error for the given entity
func NewNotFoundError(sentinel error, entity, message string) *CustomError {
	return &CustomError{
		Err:     sentinel,
		Message: message,
		Entity:  entity,
	}
}

// NewAlreadyExistsError creates a conflict error for the given entity
func NewAlreadyExistsError(entity, message string) *CustomError {
	return &CustomError{
		Err:     ErrResourceAlreadyExists,
		Message: message,
		Entity:  entity,
	}
}

// NewBusinessRuleError creates an error for a violated domain precondition
func NewBusinessRuleError(entity, message string) *CustomError {
	return &CustomError{
		Err:     ErrBusinessRule,
		Message: message,
		Entity:  entity,
	}
}

// NewForbiddenError creates an error for ownership or permission violations
func NewForbiddenError(entity, message string) *CustomError {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
		Entity:  entity,
	}
}

// NewValidationError creates an error for malformed input
func NewValidationError(entity, message string) *CustomError {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
		Entity:  entity,
	}
}

// EntityOf returns the entity tag of err when it carries one.
func EntityOf(err error) string {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Entity
	}
	return ""
}

// Is returns whether target matches err or any of the errors in errList.
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
