// Package common defines shared constants and sentinel errors used across
// the gateway server and its terminal client. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal           = errors.New("internal error")
	ErrorValidation         = errors.New("validation error")
	ErrorInvalidCredentials = errors.New("invalid username or password")

	// Request gate errors.
	ErrorUnauthenticated = errors.New("missing bearer token")
	ErrorForbidden       = errors.New("invalid or expired token")

	// Token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Downstream collaborators (public API, Ethereum node).
	ErrorUpstream = errors.New("upstream unavailable")
)
