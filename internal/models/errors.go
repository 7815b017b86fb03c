package models

import (
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeExternal   ErrorType = "external"
	ErrorTypeInternal   ErrorType = "internal"
	ErrorTypeTimeout    ErrorType = "timeout"
)

// Error codes surfaced by the chat pipeline. The two AI stages carry distinct
// codes so callers can tell "nothing was generated" apart from "data was
// fetched but formatting failed".
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeAIServiceError   = "AI_SERVICE_ERROR"
	CodeAIFormatError    = "AI_FORMAT_ERROR"
	CodeAIEmptyResponse  = "AI_EMPTY_RESPONSE"
	CodeCrustDataError   = "CRUSTDATA_ERROR"
	CodeRedisError       = "REDIS_ERROR"
	CodeNotConfigured    = "NOT_CONFIGURED"
	CodeSerialization    = "SERIALIZATION_FAILED"
	CodeWorkstreamLookup = "WORKSTREAM_NOT_FOUND"
)

type AppError struct {
	Type     ErrorType      `json:"type"`
	Code     string         `json:"code"`
	Message  string         `json:"message"`
	Cause    error          `json:"-"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

func (e *AppError) WithMetadata(key string, value any) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]any)
	}
	e.Metadata[key] = value
	return e
}

func (e *AppError) HTTPStatus() int {
	switch e.Type {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Details returns the wrapped cause text for diagnostics, if any.
func (e *AppError) Details() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return ""
}

func newError(errType ErrorType, code, message string) *AppError {
	return &AppError{Type: errType, Code: code, Message: message}
}

func NewValidationError(code, message string) *AppError {
	return newError(ErrorTypeValidation, code, message)
}

func NewExternalError(code, message string) *AppError {
	return newError(ErrorTypeExternal, code, message)
}

func NewInternalError(code, message string) *AppError {
	return newError(ErrorTypeInternal, code, message)
}

func NewTimeoutError(code, message string) *AppError {
	return newError(ErrorTypeTimeout, code, message)
}

func WrapExternalError(service string, err error) *AppError {
	return NewExternalError(service+"_ERROR", fmt.Sprintf("%s request failed", service)).WithCause(err)
}
