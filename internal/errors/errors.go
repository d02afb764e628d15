// Package errors provides structured error types for the Glue metastore adapter.
// All errors include a category, code, message, and retryable flag so callers
// can classify failures without inspecting SDK-specific types.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors by origin.
type ErrorCategory string

const (
	ErrCategoryValidation ErrorCategory = "VALIDATION"
	ErrCategoryMetastore  ErrorCategory = "METASTORE"
	ErrCategoryRemote     ErrorCategory = "REMOTE"
	ErrCategoryStorage    ErrorCategory = "STORAGE"
)

// Error codes for each category.
const (
	// Validation codes
	CodeMissingRequiredField = "MISSING_REQUIRED_FIELD"
	CodeInvalidPartitionName = "INVALID_PARTITION_NAME"
	CodeColumnExists         = "COLUMN_EXISTS"
	CodeColumnNotFound       = "COLUMN_NOT_FOUND"

	// Metastore codes
	CodeNotSupported     = "HIVE_METASTORE_ERROR"
	CodeDatabaseNotFound = "DATABASE_NOT_FOUND"
	CodeTableNotFound    = "TABLE_NOT_FOUND"

	// Remote codes
	CodeEntityNotFound         = "ENTITY_NOT_FOUND"
	CodeAlreadyExists          = "ALREADY_EXISTS"
	CodeInvalidInput           = "INVALID_INPUT"
	CodeAccessDenied           = "ACCESS_DENIED"
	CodeThrottled              = "THROTTLED"
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"
	CodeOperationTimeout       = "OPERATION_TIMEOUT"
	CodeServiceFailure         = "SERVICE_FAILURE"
	CodeRemoteFailure          = "REMOTE_FAILURE"

	// Storage codes
	CodeDeleteFailed = "DELETE_FAILED"
)

// MetastoreError is the structured error type used throughout the adapter.
type MetastoreError struct {
	Category  ErrorCategory
	Code      string
	Message   string
	Details   map[string]interface{}
	Cause     error
	Retryable bool
}

// Error returns a formatted error string.
func (e *MetastoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *MetastoreError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *MetastoreError) Is(target error) bool {
	var t *MetastoreError
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new MetastoreError.
func New(category ErrorCategory, code, message string) *MetastoreError {
	return &MetastoreError{
		Category:  category,
		Code:      code,
		Message:   message,
		Retryable: isRetryable(category, code),
	}
}

// Wrap creates a new MetastoreError wrapping an existing error.
func Wrap(category ErrorCategory, code, message string, cause error) *MetastoreError {
	return &MetastoreError{
		Category:  category,
		Code:      code,
		Message:   message,
		Cause:     cause,
		Retryable: isRetryable(category, code),
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *MetastoreError) WithDetails(details map[string]interface{}) *MetastoreError {
	cp := *e
	cp.Details = details
	return &cp
}

// IsRetryable checks whether an error (or its chain) is retryable.
func IsRetryable(err error) bool {
	var me *MetastoreError
	if errors.As(err, &me) {
		return me.Retryable
	}
	return false
}

// GetCategory extracts the error category from an error chain.
// Returns empty string if the error is not a MetastoreError.
func GetCategory(err error) ErrorCategory {
	var me *MetastoreError
	if errors.As(err, &me) {
		return me.Category
	}
	return ""
}

// GetCode extracts the error code from an error chain.
// Returns empty string if the error is not a MetastoreError.
func GetCode(err error) string {
	var me *MetastoreError
	if errors.As(err, &me) {
		return me.Code
	}
	return ""
}

// IsNotSupported reports whether err is a not-supported metastore error.
func IsNotSupported(err error) bool {
	return errors.Is(err, New(ErrCategoryMetastore, CodeNotSupported, ""))
}

// IsNotFound reports whether err signals a missing database, table, partition or column.
func IsNotFound(err error) bool {
	switch GetCode(err) {
	case CodeEntityNotFound, CodeDatabaseNotFound, CodeTableNotFound, CodeColumnNotFound:
		return true
	default:
		return false
	}
}

func isRetryable(category ErrorCategory, code string) bool {
	if category != ErrCategoryRemote {
		return false
	}
	switch code {
	case CodeThrottled, CodeOperationTimeout, CodeConcurrentModification, CodeServiceFailure:
		return true
	default:
		return false
	}
}

// Convenience constructors for common errors.

func NewValidationError(code, message string) *MetastoreError {
	return New(ErrCategoryValidation, code, message)
}

// NewMissingFieldError reports a required field absent from an entity.
func NewMissingFieldError(entity, field string) *MetastoreError {
	return New(ErrCategoryValidation, CodeMissingRequiredField,
		fmt.Sprintf("%s is missing required field %s", entity, field)).
		WithDetails(map[string]interface{}{"entity": entity, "field": field})
}

// NewNotSupportedError reports an operation the Glue backend does not implement.
func NewNotSupportedError(operation string) *MetastoreError {
	return New(ErrCategoryMetastore, CodeNotSupported, fmt.Sprintf("%s() not supported.", operation))
}

func NewRemoteError(code, message string, cause error) *MetastoreError {
	return Wrap(ErrCategoryRemote, code, message, cause)
}

func NewStorageError(code, message string, cause error) *MetastoreError {
	return Wrap(ErrCategoryStorage, code, message, cause)
}
