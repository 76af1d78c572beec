package errors

import "fmt"

// ConfigLoadFailed creates an error for when configuration loading fails.
func ConfigLoadFailed(path string, cause error) *ChatError {
	return &ChatError{
		Category:  CategoryConfig,
		Code:      "config_load_failed",
		Message:   fmt.Sprintf("failed to load config from %q", path),
		Retryable: false,
		Cause:     cause,
	}
}

// ConfigInvalid creates an error for a configuration value that fails validation.
func ConfigInvalid(field, reason string) *ChatError {
	return &ChatError{
		Category:  CategoryConfig,
		Code:      "config_invalid",
		Message:   fmt.Sprintf("invalid %s: %s", field, reason),
		Retryable: false,
	}
}

// MissingCredential creates an error for when no API key is available.
func MissingCredential(provider string) *ChatError {
	return &ChatError{
		Category:  CategoryConfig,
		Code:      "missing_credential",
		Message:   fmt.Sprintf("no API key set for %s", provider),
		Retryable: false,
	}
}

// TransportStatus creates an error for a non-2xx response from the completion API.
func TransportStatus(status int, body string) *ChatError {
	return &ChatError{
		Category:  CategoryTransport,
		Code:      "transport_status",
		Message:   fmt.Sprintf("completion API returned %d: %s", status, body),
		Retryable: status == 429 || status >= 500,
	}
}

// TransportFailed creates an error for when the completion request could not be made.
func TransportFailed(cause error) *ChatError {
	return &ChatError{
		Category:  CategoryTransport,
		Code:      "transport_failed",
		Message:   "completion request failed",
		Retryable: true,
		Cause:     cause,
	}
}

// StoreReadFailed creates an error for when a persisted value cannot be read.
func StoreReadFailed(key string, cause error) *ChatError {
	return &ChatError{
		Category:  CategoryStorage,
		Code:      "store_read_failed",
		Message:   fmt.Sprintf("failed to read %q", key),
		Retryable: false,
		Cause:     cause,
	}
}

// StoreWriteFailed creates an error for when a value cannot be persisted.
func StoreWriteFailed(key string, cause error) *ChatError {
	return &ChatError{
		Category:  CategoryStorage,
		Code:      "store_write_failed",
		Message:   fmt.Sprintf("failed to store %q", key),
		Retryable: false,
		Cause:     cause,
	}
}

// SessionCorrupt creates an error for persisted history that is not parseable.
// Callers treat it as empty history; it is only surfaced in logs.
func SessionCorrupt(key string, cause error) *ChatError {
	return &ChatError{
		Category:  CategorySession,
		Code:      "session_corrupt",
		Message:   fmt.Sprintf("history under %q is not valid JSON", key),
		Retryable: false,
		Cause:     cause,
	}
}

// PathResolutionFailed creates an error for a target path that cannot be resolved or is refused.
func PathResolutionFailed(path string, cause error) *ChatError {
	return &ChatError{
		Category:  CategoryMaterialize,
		Code:      "path_resolution_failed",
		Message:   fmt.Sprintf("cannot resolve path %s", path),
		Retryable: false,
		Cause:     cause,
	}
}

// ConfirmationFailed creates an error for when asking the user for confirmation fails.
func ConfirmationFailed(path string, cause error) *ChatError {
	return &ChatError{
		Category:  CategoryPermission,
		Code:      "confirmation_failed",
		Message:   fmt.Sprintf("could not confirm overwrite of %s", path),
		Retryable: false,
		Cause:     cause,
	}
}

// WriteFailed creates an error for when writing the file fails.
func WriteFailed(path string, cause error) *ChatError {
	return &ChatError{
		Category:  CategoryMaterialize,
		Code:      "write_failed",
		Message:   fmt.Sprintf("Failed to create file %s", path),
		Retryable: false,
		Cause:     cause,
	}
}

// OpenFailed creates an error for when a written file cannot be surfaced to the user.
func OpenFailed(path string, cause error) *ChatError {
	return &ChatError{
		Category:  CategoryMaterialize,
		Code:      "open_failed",
		Message:   fmt.Sprintf("created %s but could not open it", path),
		Retryable: false,
		Cause:     cause,
	}
}
