package apperrors

import (
	"errors"
	"fmt"
)

// ConfigurationError indicates a missing or placeholder setting. It is fatal:
// the server refuses to start and no operation may be attempted.
type ConfigurationError struct {
	Setting string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s %s", e.Setting, e.Reason)
}

// ValidationError indicates a missing required field or a value outside a
// closed option set. Recoverable; surfaced to the caller as a form-level
// message.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// AuthReason distinguishes authentication failure sub-cases so the caller can
// map each to a specific user-facing message.
type AuthReason string

const (
	ReasonInvalidCredentials AuthReason = "invalid_credentials"
	ReasonEmailNotVerified   AuthReason = "email_not_verified"
)

// AuthenticationError indicates a failed credential exchange.
type AuthenticationError struct {
	Reason AuthReason
}

func (e *AuthenticationError) Error() string {
	switch e.Reason {
	case ReasonEmailNotVerified:
		return "authentication error: email not verified"
	default:
		return "authentication error: invalid email or password"
	}
}

// RemoteOperationError wraps any failure from the backing store during a
// domain or file operation. The underlying message is passed through
// verbatim; no retries are performed.
type RemoteOperationError struct {
	Op  string
	Err error
}

func (e *RemoteOperationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteOperationError) Unwrap() error { return e.Err }

// Remote wraps err as a RemoteOperationError, or returns nil if err is nil.
func Remote(op string, err error) error {
	if err == nil {
		return nil
	}
	return &RemoteOperationError{Op: op, Err: err}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsAuthentication reports whether err is an AuthenticationError, returning
// the failure reason when it is.
func IsAuthentication(err error) (AuthReason, bool) {
	var ae *AuthenticationError
	if errors.As(err, &ae) {
		return ae.Reason, true
	}
	return "", false
}

// IsRemote reports whether err is a RemoteOperationError.
func IsRemote(err error) bool {
	var re *RemoteOperationError
	return errors.As(err, &re)
}
