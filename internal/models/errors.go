package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies engine failures
type ErrorKind string

const (
	KindNotAuthenticated        ErrorKind = "not_authenticated"
	KindSessionExpired          ErrorKind = "session_expired"
	KindAuthenticationTimeout   ErrorKind = "authentication_timeout"
	KindResourceNotFound        ErrorKind = "resource_not_found"
	KindValidationFailed        ErrorKind = "validation_failed"
	KindSubmissionRejected      ErrorKind = "submission_rejected"
	KindAmbiguousResult         ErrorKind = "ambiguous_result"
	KindIntrospectionFailed     ErrorKind = "introspection_failed"
	KindTransientRequestFailure ErrorKind = "transient_request_failure"
	KindBrowserClosed           ErrorKind = "browser_closed"
)

// EngineError is an expected failure surfaced by the engine.
// errors.Is matches on Kind, so the sentinels below work as targets.
type EngineError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *EngineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *EngineError) Unwrap() error { return e.Err }

func (e *EngineError) Is(target error) bool {
	var t *EngineError
	if errors.As(target, &t) {
		return t.Kind == e.Kind
	}
	return false
}

var (
	ErrNotAuthenticated      = &EngineError{Kind: KindNotAuthenticated, Message: "not authenticated: please login first"}
	ErrSessionExpired        = &EngineError{Kind: KindSessionExpired, Message: "session expired: please login again"}
	ErrAuthenticationTimeout = &EngineError{Kind: KindAuthenticationTimeout, Message: "authentication timeout"}
	ErrBrowserClosed         = &EngineError{Kind: KindBrowserClosed, Message: "browser closed"}
)

// NewEngineError builds an EngineError of the given kind
func NewEngineError(kind ErrorKind, err error, format string, args ...any) *EngineError {
	return &EngineError{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the ErrorKind of err, or "" when err is not an EngineError.
func KindOf(err error) ErrorKind {
	var e *EngineError
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
