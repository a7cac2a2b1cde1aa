package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode is the machine-readable error kind returned to API clients
type ErrorCode string

const (
	ErrCodeDatabaseQuery ErrorCode = "DATABASE_QUERY"

	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"
	// ErrCodeConflict covers work already in flight and state transitions
	// the resource cannot make yet
	ErrCodeConflict ErrorCode = "CONFLICT"

	ErrCodeValidation   ErrorCode = "VALIDATION"
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"

	// Feeds, transcription, text and image generation
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE"
	ErrCodeAPIRateLimit    ErrorCode = "API_RATE_LIMIT"

	ErrCodeInternal ErrorCode = "INTERNAL"
	// ErrCodeServiceDown means a collaborator is disabled, unconfigured or
	// cannot accept work
	ErrCodeServiceDown ErrorCode = "SERVICE_DOWN"
)

var httpCodes = map[ErrorCode]int{
	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeAlreadyExists:   http.StatusConflict,
	ErrCodeConflict:        http.StatusConflict,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeMissingField:    http.StatusBadRequest,
	ErrCodeExternalService: http.StatusBadGateway,
	ErrCodeAPIRateLimit:    http.StatusTooManyRequests,
	ErrCodeServiceDown:     http.StatusServiceUnavailable,
}

// AppError is an error that knows how it should be reported over HTTP
type AppError struct {
	Code     ErrorCode              `json:"code"`
	Message  string                 `json:"message"`
	Details  map[string]interface{} `json:"details,omitempty"`
	Cause    error                  `json:"-"`
	HTTPCode int                    `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetail records a key that is echoed in the error response
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// GetHTTPCode returns the explicit status, or the default for the code
func (e *AppError) GetHTTPCode() int {
	if e.HTTPCode != 0 {
		return e.HTTPCode
	}
	return statusFor(e.Code)
}

func statusFor(code ErrorCode) int {
	if status, ok := httpCodes[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPCode: statusFor(code)}
}

func Wrap(cause error, code ErrorCode, message string) *AppError {
	return New(code, message).WithCause(cause)
}

// NotFound reports a missing podcast, episode, analysis or digest
func NotFound(resource string, id interface{}) *AppError {
	return New(ErrCodeNotFound, resource+" not found").
		WithDetail("resource", resource).
		WithDetail("id", id)
}

func AlreadyExists(resource string, id interface{}) *AppError {
	return New(ErrCodeAlreadyExists, resource+" already exists").
		WithDetail("resource", resource).
		WithDetail("id", id)
}

// Conflict reports an operation rejected because of the resource's current state
func Conflict(resource string, reason string) *AppError {
	return New(ErrCodeConflict, resource+" "+reason).
		WithDetail("resource", resource)
}

// InFlight reports a job that already holds the resource in this process
func InFlight(resource string, id interface{}) *AppError {
	return Conflict(resource, "is already being processed").
		WithDetail("id", id).
		WithDetail("state", "in_flight")
}

func ValidationError(field string, reason string) *AppError {
	return New(ErrCodeValidation, fmt.Sprintf("validation failed for field '%s': %s", field, reason)).
		WithDetail("field", field).
		WithDetail("reason", reason)
}

func MissingFieldError(field string) *AppError {
	return New(ErrCodeMissingField, fmt.Sprintf("required field '%s' is missing", field)).
		WithDetail("field", field)
}

func DatabaseError(operation string, cause error) *AppError {
	return Wrap(cause, ErrCodeDatabaseQuery, "database "+operation+" failed").
		WithDetail("operation", operation)
}

// ExternalServiceError wraps a failure of a feed host or generation API
func ExternalServiceError(service string, cause error) *AppError {
	return Wrap(cause, ErrCodeExternalService, fmt.Sprintf("external service '%s' error", service)).
		WithDetail("service", service)
}

// Unavailable reports a collaborator that is disabled or cannot take work
func Unavailable(what string, cause error) *AppError {
	err := New(ErrCodeServiceDown, what+" is unavailable").WithDetail("service", what)
	if cause != nil {
		err.Cause = cause
	}
	return err
}

// As finds the first AppError in err's chain
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func Is(err error, code ErrorCode) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

// GetCode returns the code of the first AppError in err's chain, or INTERNAL
func GetCode(err error) ErrorCode {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return ErrCodeInternal
}

func GetHTTPCode(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.GetHTTPCode()
	}
	return http.StatusInternalServerError
}
