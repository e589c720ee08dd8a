package questrade

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures on authenticated API calls.
type ErrorKind int

const (
	// KindTransport covers network-level failures and unexpected server responses.
	KindTransport ErrorKind = iota

	// KindDecode covers responses whose body could not be parsed.
	KindDecode

	// KindUnauthorized covers 401/403 responses. The access token has expired or
	// been revoked server-side; the next call will perform one refresh exchange.
	KindUnauthorized

	// KindNotFound covers 404 responses, e.g. an account number that does not
	// belong to the authenticated user.
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindDecode:
		return "decode"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// AuthError is returned when no session is held or the refresh-token exchange
// fails. The exchange is never retried internally: a refresh token is single-use,
// and a failed one must be replaced out-of-band before the client is usable again.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("questrade auth: %s: %v", e.Reason, e.Err)
	}
	return "questrade auth: " + e.Reason
}

func (e *AuthError) Unwrap() error { return e.Err }

// APIError is returned by authenticated account and market calls.
type APIError struct {
	Kind    ErrorKind
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("questrade api [%s %d]: %s", e.Kind, e.Status, msg)
	}
	return fmt.Sprintf("questrade api [%s]: %s", e.Kind, msg)
}

func (e *APIError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is an APIError with kind NotFound.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == KindNotFound
}

// IsUnauthorized reports whether err is an APIError with kind Unauthorized.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == KindUnauthorized
}

// IsAuthError reports whether err is an AuthError from the token exchange.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}
