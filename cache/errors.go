package cache

import (
	"fmt"
)

// ErrorCode represents a specific error type for cache operations.
type ErrorCode string

const (
	// ErrCodeCacheError covers every store-interaction failure: connection
	// failure, malformed query, serialization failure. A cache miss is not an
	// error; it is the normal absent result of Get.
	ErrCodeCacheError ErrorCode = "CACHE_ERROR"
)

// Error represents a structured error for cache operations. The operation and
// key carry enough context for callers to log the failure; callers should
// treat any returned Error as "the cache is currently unavailable", never as a
// semantic signal about the key's presence.
type Error struct {
	Code    ErrorCode
	Op      string
	Key     string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Op)
	if e.Key != "" {
		msg = fmt.Sprintf("%s key=%q", msg, e.Key)
	}
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(op, key, message string, cause error) *Error {
	return &Error{
		Code:    ErrCodeCacheError,
		Op:      op,
		Key:     key,
		Message: message,
		Cause:   cause,
	}
}
