package client

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed odds API call so callers can tell
// "retry later" from "fix credentials" from "provider format changed".
type ErrorKind string

const (
	KindNetwork   ErrorKind = "network"
	KindAuth      ErrorKind = "auth"
	KindRateLimit ErrorKind = "rate_limit"
	KindParse     ErrorKind = "parse"
	KindStatus    ErrorKind = "status"
)

// Sentinels for errors.Is checks against a *FetchError.
var (
	ErrNetwork   = errors.New("odds api unreachable")
	ErrAuth      = errors.New("odds api rejected credentials")
	ErrRateLimit = errors.New("odds api rate limit exceeded")
	ErrParse     = errors.New("odds api response could not be parsed")
	ErrStatus    = errors.New("odds api returned an unexpected status")
)

// FetchError is returned by every Client call that fails.
type FetchError struct {
	Kind   ErrorKind
	Status int    // HTTP status, 0 for network and parse failures on 2xx
	Path   string // request path without credentials
	Err    error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("odds api %s error on %s", e.Kind, e.Path)
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's kind.
func (e *FetchError) Is(target error) bool {
	return target == sentinel(e.Kind)
}

// Retryable reports whether waiting and running again may succeed.
func (e *FetchError) Retryable() bool {
	return e.Kind == KindNetwork || e.Kind == KindRateLimit
}

func sentinel(kind ErrorKind) error {
	switch kind {
	case KindNetwork:
		return ErrNetwork
	case KindAuth:
		return ErrAuth
	case KindRateLimit:
		return ErrRateLimit
	case KindParse:
		return ErrParse
	default:
		return ErrStatus
	}
}
