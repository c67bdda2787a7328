// Package errors provides standardized error handling for mission workflows and their BPMN integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Business errors. Always surfaced to the caller, never retried.
const (
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrCodeForbidden        ErrorCode = "FORBIDDEN"
	ErrCodeInvalidState     ErrorCode = "INVALID_STATE"
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
)

// Technical errors.
const (
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeCacheOperationFailed     ErrorCode = "CACHE_OPERATION_FAILED"
	ErrCodeSearchIndexFailed        ErrorCode = "SEARCH_INDEX_FAILED"
	ErrCodeExternalService          ErrorCode = "EXTERNAL_SERVICE_UNAVAILABLE"

	ErrCodeSideEffectFailed       ErrorCode = "SIDE_EFFECT_FAILED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeEmailSendFailed        ErrorCode = "EMAIL_SEND_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
}

// Is reports a match when target is a StandardError carrying the same code,
// so the sentinels below work with errors.Is.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = map[string]interface{}{}
	}
	e.Metadata[key] = value
	return e
}

// Sentinels for errors.Is comparisons.
var (
	ErrNotFound         = &StandardError{Code: ErrCodeNotFound}
	ErrForbidden        = &StandardError{Code: ErrCodeForbidden}
	ErrInvalidState     = &StandardError{Code: ErrCodeInvalidState}
	ErrValidationFailed = &StandardError{Code: ErrCodeValidationFailed}
)

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewNotFoundError reports a missing campaign, application or submission.
func NewNotFoundError(resource, id string) *StandardError {
	return newError(ErrCodeNotFound, fmt.Sprintf("%s not found", resource), fmt.Sprintf("id: %s", id), false, nil).
		WithMetadata("resource", resource).
		WithMetadata("id", id)
}

// NewForbiddenError reports a caller that does not own the resource.
func NewForbiddenError(details string) *StandardError {
	return newError(ErrCodeForbidden, "Caller is not the owner of the resource", details, false, nil)
}

// NewInvalidStateError reports the violated precondition.
func NewInvalidStateError(details string) *StandardError {
	return newError(ErrCodeInvalidState, "Operation not allowed in the current state", details, false, nil)
}

// NewValidationFailedError creates a non-retryable input validation error.
func NewValidationFailedError(details string) *StandardError {
	return newError(ErrCodeValidationFailed, "Input validation failed", details, false, nil)
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true, err)
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(operation string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, "Database query execution error",
		fmt.Sprintf("operation: %s, error: %s", operation, err.Error()), true, err)
}

// NewDatabaseInsertFailedError creates a retryable database insert error.
func NewDatabaseInsertFailedError(operation string, err error) *StandardError {
	return newError(ErrCodeDatabaseInsertFailed, "Database insert operation failed",
		fmt.Sprintf("operation: %s, error: %s", operation, err.Error()), true, err)
}

// NewCacheOperationFailedError creates a retryable Redis error.
func NewCacheOperationFailedError(operation string, err error) *StandardError {
	return newError(ErrCodeCacheOperationFailed, "Cache operation failed",
		fmt.Sprintf("operation: %s, error: %s", operation, err.Error()), true, err)
}

// NewSearchIndexFailedError creates a retryable Elasticsearch error.
func NewSearchIndexFailedError(operation string, err error) *StandardError {
	return newError(ErrCodeSearchIndexFailed, "Search index operation failed",
		fmt.Sprintf("operation: %s, error: %s", operation, err.Error()), true, err)
}

// NewExternalServiceError creates a retryable error for an unreachable dependency such as the broker.
func NewExternalServiceError(service string, err error) *StandardError {
	return newError(ErrCodeExternalService, "External service unavailable",
		fmt.Sprintf("service: %s, error: %s", service, err.Error()), true, err).
		WithMetadata("service", service)
}

// NewSideEffectFailedError wraps a notification or email failure. It is logged, never surfaced.
func NewSideEffectFailedError(kind string, err error) *StandardError {
	return newError(ErrCodeSideEffectFailed, "Side effect dispatch failed",
		fmt.Sprintf("kind: %s, error: %s", kind, err.Error()), false, err)
}

// NewNotificationSendFailedError creates a notification delivery error.
func NewNotificationSendFailedError(kind string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification delivery failed",
		fmt.Sprintf("kind: %s, error: %s", kind, err.Error()), true, err)
}

// NewEmailSendFailedError creates an email delivery error.
func NewEmailSendFailedError(template string, err error) *StandardError {
	return newError(ErrCodeEmailSendFailed, "Email delivery failed",
		fmt.Sprintf("template: %s, error: %s", template, err.Error()), true, err)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeCacheOperationFailed,
		ErrCodeSearchIndexFailed,
		ErrCodeExternalService:
		return 3
	case ErrCodeNotificationSendFailed, ErrCodeEmailSendFailed:
		return 2
	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandardError unwraps err into a StandardError, wrapping unknown errors as INTERNAL_ERROR.
func AsStandardError(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false, err)
}

// CodeOf returns the code carried by err, or INTERNAL_ERROR.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	return AsStandardError(err).Code
}

// IsBusinessError reports whether the code belongs to the caller-facing taxonomy.
func IsBusinessError(code ErrorCode) bool {
	switch code {
	case ErrCodeNotFound, ErrCodeForbidden, ErrCodeInvalidState, ErrCodeValidationFailed:
		return true
	}
	return false
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case IsBusinessError(code):
		return "BUSINESS"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	case strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "NOTIFICATION") || strings.Contains(codeStr, "EMAIL") || strings.Contains(codeStr, "SIDE_EFFECT"):
		return "SIDE_EFFECT"
	default:
		return "OTHER"
	}
}
