package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a machine-readable error code
type ErrorCode string

const (
	// Flow errors (FLOW_*)
	ErrorCodeFlowUnknown      ErrorCode = "FLOW_UNKNOWN"
	ErrorCodeFlowFieldUnknown ErrorCode = "FLOW_FIELD_UNKNOWN"

	// Validation errors (VALIDATION_*)
	ErrorCodeValidationFailed       ErrorCode = "VALIDATION_FAILED"
	ErrorCodeValidationMissingField ErrorCode = "VALIDATION_MISSING_FIELD"
	ErrorCodeValidationTxnID        ErrorCode = "VALIDATION_TXNID_INVALID"
	ErrorCodeValidationPhone        ErrorCode = "VALIDATION_PHONE_INVALID"
	ErrorCodeValidationEmail        ErrorCode = "VALIDATION_EMAIL_INVALID"
	ErrorCodeValidationDateWindow   ErrorCode = "VALIDATION_DATE_WINDOW"
	ErrorCodeValidationSplitTotal   ErrorCode = "VALIDATION_SPLIT_TOTAL"

	// Sub-document errors (SUBDOC_*)
	ErrorCodeSubDocSplitEmpty  ErrorCode = "SUBDOC_SPLIT_EMPTY"
	ErrorCodeSubDocCartInvalid ErrorCode = "SUBDOC_CART_INVALID"
	ErrorCodeSubDocEncoding    ErrorCode = "SUBDOC_ENCODING_FAILED"

	// Credential errors (CRED_*)
	ErrorCodeCredentialsIncomplete ErrorCode = "CRED_INCOMPLETE"

	// Internal errors (INTERNAL_*)
	ErrorCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// DomainError represents a structured domain error with error code and context
type DomainError struct {
	Err     error
	Details map[string]interface{}
	Code    ErrorCode
	Message string
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// WithDetail adds a detail field to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(code ErrorCode, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// WrapError wraps an existing error with a domain error code
func WrapError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Err:     err,
	}
}

// IsDomainError checks if an error is a DomainError with the given code
func IsDomainError(err error, code ErrorCode) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error, returns empty string if
// not a DomainError
func GetErrorCode(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// ValidationError represents a single-field input validation failure
type ValidationError struct {
	Field   FieldName
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field FieldName, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
