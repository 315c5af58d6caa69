package errors

import (
	stderrors "errors"
	"fmt"
)

// Application error types organized by category for better error handling

type ErrorType int

// Domain errors - rule violations and missing records
const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeValidation
	ErrorTypeNotFound

	// Infrastructure errors - weather source, store and messaging transport
	ErrorTypeUnavailable
	ErrorTypeDatabase
	ErrorTypeDispatch

	// System errors - setup and liveness
	ErrorTypeConfiguration
	ErrorTypeStall
)

// String returns the string representation of error type
func (e ErrorType) String() string {
	switch e {
	case ErrorTypeValidation:
		return "VALIDATION_ERROR"
	case ErrorTypeNotFound:
		return "NOT_FOUND_ERROR"
	case ErrorTypeUnavailable:
		return "UNAVAILABLE_ERROR"
	case ErrorTypeDatabase:
		return "DATABASE_ERROR"
	case ErrorTypeDispatch:
		return "DISPATCH_ERROR"
	case ErrorTypeConfiguration:
		return "CONFIGURATION_ERROR"
	case ErrorTypeStall:
		return "STALL_ERROR"
	default:
		return "UNKNOWN_ERROR"
	}
}

const (
	ValidationError    = ErrorTypeValidation
	NotFoundError      = ErrorTypeNotFound
	UnavailableError   = ErrorTypeUnavailable
	DatabaseError      = ErrorTypeDatabase
	DispatchError      = ErrorTypeDispatch
	ConfigurationError = ErrorTypeConfiguration
	StallError         = ErrorTypeStall
)

type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type.String(), e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type.String(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(errorType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
	}
}

func Wrap(errorType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// Domain error constructors
func NewValidationError(message string) *AppError {
	return New(ValidationError, message)
}

func NewNotFoundError(message string) *AppError {
	return New(NotFoundError, message)
}

// Infrastructure error constructors
func NewUnavailableError(message string, cause error) *AppError {
	return Wrap(UnavailableError, message, cause)
}

func NewDatabaseError(message string, cause error) *AppError {
	return Wrap(DatabaseError, message, cause)
}

func NewDispatchError(message string, cause error) *AppError {
	return Wrap(DispatchError, message, cause)
}

// System error constructors
func NewConfigurationError(message string, cause error) *AppError {
	return Wrap(ConfigurationError, message, cause)
}

func NewStallError(message string) *AppError {
	return New(StallError, message)
}

// TypeOf returns the type of the first AppError in err's chain.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeUnknown
}

func IsNotFoundError(err error) bool {
	return TypeOf(err) == NotFoundError
}

func IsValidationError(err error) bool {
	return TypeOf(err) == ValidationError
}

func IsUnavailableError(err error) bool {
	return TypeOf(err) == UnavailableError
}

func IsDatabaseError(err error) bool {
	return TypeOf(err) == DatabaseError
}

func IsDispatchError(err error) bool {
	return TypeOf(err) == DispatchError
}

func IsConfigurationError(err error) bool {
	return TypeOf(err) == ConfigurationError
}

func IsStallError(err error) bool {
	return TypeOf(err) == StallError
}
