package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a CLI error. Transport and RemoteStatus failures are hard
// errors for the call they occurred on; Soft failures carry an upstream
// application-level message and are rendered instead of raised.
type Kind int

const (
	KindInternal Kind = iota
	KindUsage
	KindConfig
	KindTransport
	KindRemoteStatus
	KindSoft
)

// Error is a typed CLI error.
type Error struct {
	Kind    Kind
	Message string
	Cause   error

	// Set for KindRemoteStatus: the HTTP status and raw response body, kept
	// because upstream APIs put their diagnostics in failed-response bodies.
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Soft builds an application-level failure that dispatch renders as
// {error: message} with a zero exit code.
func Soft(message string) *Error {
	return &Error{Kind: KindSoft, Message: message}
}

// RemoteStatus builds a non-2xx failure retaining the response body text.
func RemoteStatus(status int, body string) *Error {
	return &Error{
		Kind:       KindRemoteStatus,
		Message:    fmt.Sprintf("HTTP %d: %s", status, body),
		StatusCode: status,
		Body:       body,
	}
}

func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// IsSoft reports whether err is an upstream application-level failure that
// should be rendered rather than terminate the process.
func IsSoft(err error) bool {
	e, ok := As(err)
	return ok && e.Kind == KindSoft
}

// SoftMessage extracts the renderable message from a soft error.
func SoftMessage(err error) string {
	if e, ok := As(err); ok {
		return e.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// ExitCode maps an error to the process exit code: 0 on success, 1 on any
// unhandled failure.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
