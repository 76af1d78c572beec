package errors

import (
	"errors"
	"fmt"
)

// Category groups errors by subsystem
type Category string

const (
	CategoryConfig      Category = "config"
	CategoryTransport   Category = "transport"
	CategoryStorage     Category = "storage"
	CategorySession     Category = "session"
	CategoryMaterialize Category = "materialize"
	CategoryPermission  Category = "permission"
)

// ChatError is the structured error type for the project
type ChatError struct {
	Category  Category
	Code      string
	Message   string
	Retryable bool
	Cause     error
}

func (e *ChatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Category, e.Code, e.Message)
}

func (e *ChatError) Unwrap() error {
	return e.Cause
}

func (e *ChatError) Is(target error) bool {
	t, ok := target.(*ChatError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Category == t.Category
}

// IsRetryable checks whether an error is retryable.
// Returns false for nil errors or non-ChatError types.
func IsRetryable(err error) bool {
	var ce *ChatError
	if errors.As(err, &ce) {
		return ce.Retryable
	}
	return false
}

// GetCategory extracts the error category from a ChatError.
// Returns an empty Category for nil errors or non-ChatError types.
func GetCategory(err error) Category {
	var ce *ChatError
	if errors.As(err, &ce) {
		return ce.Category
	}
	return ""
}

// GetUserMessage returns a user-friendly message for the error.
// For ChatError it returns the Message field, followed by the cause when present;
// for other errors it returns Error().
func GetUserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ce *ChatError
	if errors.As(err, &ce) {
		if ce.Cause != nil {
			return ce.Message + ": " + ce.Cause.Error()
		}
		return ce.Message
	}
	return err.Error()
}
