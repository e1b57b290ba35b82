package domain

import (
	"errors"
	"strings"
)

var (
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrAuthorizationDenied  = errors.New("access denied")
	ErrNotFound             = errors.New("not found")
	ErrValidation           = errors.New("validation failed")
	ErrRequestFailed        = errors.New("request failed")
	ErrRejected             = errors.New("rejected by backend")
	ErrNotImplemented       = errors.New("not implemented")
	ErrDuplicateSubmission  = errors.New("duplicate submission")
	ErrSuperseded           = errors.New("superseded by a newer request")
)

// AuthError carries the user-visible reason a login failed.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "Login failed"
	}
	return e.Message
}

func (e *AuthError) Unwrap() error { return ErrAuthenticationFailed }

// ValidationError lists the client-side checks a payload failed.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return ErrValidation.Error()
	}
	return strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid builds a ValidationError from one or more messages.
func Invalid(problems ...string) error {
	return &ValidationError{Problems: problems}
}

// RejectedError is a well-formed backend envelope with success=false.
type RejectedError struct {
	Status  int
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return "Request failed"
	}
	return e.Message
}

func (e *RejectedError) Unwrap() error { return ErrRejected }
