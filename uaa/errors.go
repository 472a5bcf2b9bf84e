package uaa

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a bearer token was not accepted.
// Kinds are for logs and diagnostics; callers outside the gate never see them.
type ErrorKind string

const (
	KindMissingCredential   ErrorKind = "missing_credential"
	KindMalformed           ErrorKind = "malformed"
	KindSignatureInvalid    ErrorKind = "signature_invalid"
	KindExpired             ErrorKind = "expired"
	KindKeyNotFound         ErrorKind = "key_not_found"
	KindUpstreamUnavailable ErrorKind = "upstream_unavailable"
	KindConfiguration       ErrorKind = "configuration_error"
)

// VerificationError is the failure half of a verification result
type VerificationError struct {
	Kind ErrorKind
	Err  error
}

// Error implements the error interface
func (e *VerificationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

// Unwrap implements errors.Unwrap
func (e *VerificationError) Unwrap() error {
	return e.Err
}

// Is matches any VerificationError of the same kind
func (e *VerificationError) Is(target error) bool {
	t, ok := target.(*VerificationError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newError(kind ErrorKind, err error) *VerificationError {
	return &VerificationError{Kind: kind, Err: err}
}

var (
	ErrMissingCredential   = &VerificationError{Kind: KindMissingCredential}
	ErrMalformed           = &VerificationError{Kind: KindMalformed}
	ErrSignatureInvalid    = &VerificationError{Kind: KindSignatureInvalid}
	ErrExpired             = &VerificationError{Kind: KindExpired}
	ErrKeyNotFound         = &VerificationError{Kind: KindKeyNotFound}
	ErrUpstreamUnavailable = &VerificationError{Kind: KindUpstreamUnavailable}
	ErrConfiguration       = &VerificationError{Kind: KindConfiguration}
)

// KindOf returns the ErrorKind carried by err, or "" when err is not a VerificationError
func KindOf(err error) ErrorKind {
	var vErr *VerificationError
	if errors.As(err, &vErr) {
		return vErr.Kind
	}
	return ""
}
