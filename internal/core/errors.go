package core

// Error codes for domain errors.
const (
	ErrCodeInvalidInput = "invalid_input"
	ErrCodeNotJoined    = "not_joined"
	ErrCodeEmptyMessage = "empty_message"
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
