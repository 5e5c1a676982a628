package model

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthenticationRequired is returned when a persistence or provider
	// call is attempted without a signed-in user.
	ErrAuthenticationRequired = errors.New("authentication required")

	// ErrInvalidRequest is returned for malformed URL or payload construction.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrValidation is the base error for malformed entities and for remote
	// documents skipped during a read.
	ErrValidation = errors.New("validation error")

	// ErrFederatedAuth distinguishes federated sign-in failures from the
	// generic authentication error.
	ErrFederatedAuth = errors.New("federated sign-in failed")

	// ErrNotFound is returned when a remote document does not exist.
	ErrNotFound = errors.New("not found")
)

// ProviderAPIError is a non-success HTTP response from a conferencing
// provider. It is surfaced to the caller as a retryable condition.
type ProviderAPIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *ProviderAPIError) Error() string {
	return fmt.Sprintf("%s api error: status %d: %s", e.Provider, e.StatusCode, e.Message)
}

// PersistenceError is a remote document-store read or write failure.
type PersistenceError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *PersistenceError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// NetworkError is a transport-level failure (e.g. offline).
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
