package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Desktop detection
	ErrDesktopNotFound ErrorCode = "DESKTOP_NOT_FOUND"

	// Version resolution
	ErrUnparseable ErrorCode = "UNPARSEABLE"
	ErrOutOfRange  ErrorCode = "OUT_OF_RANGE"

	// Compatibility mapping
	ErrUnsupported ErrorCode = "UNSUPPORTED"

	// External commands and downloads
	ErrCommand    ErrorCode = "COMMAND"
	ErrDownload   ErrorCode = "DOWNLOAD"
	ErrFileCreate ErrorCode = "FILE_CREATE"
)

// WinifyError represents a structured error with code and details
type WinifyError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *WinifyError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *WinifyError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *WinifyError) Is(target error) bool {
	var targetErr *WinifyError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new WinifyError with the given code and message
func New(code ErrorCode, message string) *WinifyError {
	return &WinifyError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new WinifyError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *WinifyError {
	return &WinifyError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a WinifyError
func Wrap(err error, code ErrorCode, message string) *WinifyError {
	if err == nil {
		return nil
	}
	return &WinifyError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *WinifyError {
	if err == nil {
		return nil
	}
	return &WinifyError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *WinifyError) WithDetail(key string, value interface{}) *WinifyError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var winifyErr *WinifyError
	if errors.As(err, &winifyErr) {
		return winifyErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a WinifyError
func GetErrorCode(err error) ErrorCode {
	var winifyErr *WinifyError
	if errors.As(err, &winifyErr) {
		return winifyErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a WinifyError
func GetErrorDetails(err error) map[string]interface{} {
	var winifyErr *WinifyError
	if errors.As(err, &winifyErr) {
		return winifyErr.Details
	}
	return nil
}
