// Package common defines shared constants and sentinel errors used across
// client and server layers of didkeeper. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"strings"
)

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Identity errors.
	ErrNoIdentity        = errors.New("no identity")
	ErrInvalidDID        = errors.New("invalid DID format")
	ErrInvalidPrivateKey = errors.New("invalid private key format")

	// Cryptographic errors.
	ErrRandomUnavailable = errors.New("secure random source unavailable")
	ErrSigningFailed     = errors.New("signing failed")
	ErrInvalidAssertion  = errors.New("invalid signed assertion")

	// Session errors. Expired is detected locally before a request is sent,
	// rejected is reported by the server.
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrSessionExpired   = errors.New("session expired")
	ErrSessionRejected  = errors.New("session expired, please re-authenticate")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Storage errors.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// IsSessionInvalid reports whether err means the local session can no longer
// be used and a new login is required.
func IsSessionInvalid(err error) bool {
	return errors.Is(err, ErrSessionExpired) || errors.Is(err, ErrSessionRejected)
}

// ValidationError lists the malformed fields of an identity import.
type ValidationError struct {
	Fields []error
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Error())
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Unwrap exposes the per-field sentinels to errors.Is.
func (e *ValidationError) Unwrap() []error {
	return e.Fields
}
