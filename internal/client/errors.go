package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Error categories. Every error returned by HTTPClient matches exactly one
// of ErrNetwork, ErrServer or ErrMalformedResponse via errors.Is, except
// context cancellation which is passed through unchanged.
var (
	ErrNetwork           = errors.New("network failure")
	ErrServer            = errors.New("server failure")
	ErrMalformedResponse = errors.New("malformed response")

	// ErrUnauthenticated marks a 401. It also matches ErrServer.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// APIError represents a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// Is makes APIError match ErrServer, and ErrUnauthenticated for a 401.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrServer:
		return true
	case ErrUnauthenticated:
		return e.StatusCode == http.StatusUnauthorized
	}
	return false
}

// NetworkError wraps a transport failure (DNS, refused connection, timeout).
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// MalformedError reports a 2xx body that does not have the expected shape.
type MalformedError struct {
	Reason string
	Err    error
}

func (e *MalformedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed response: %s: %v", e.Reason, e.Err)
	}
	return "malformed response: " + e.Reason
}

func (e *MalformedError) Unwrap() error { return e.Err }

func (e *MalformedError) Is(target error) bool { return target == ErrMalformedResponse }

// Kind is the category of a failure, for display and logging.
type Kind string

const (
	KindNone            Kind = ""
	KindNetwork         Kind = "network"
	KindServer          Kind = "server"
	KindUnauthenticated Kind = "unauthenticated"
	KindMalformed       Kind = "malformed"
	KindCanceled        Kind = "canceled"
	KindOther           Kind = "other"
)

// Classify maps err to its Kind.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, context.Canceled):
		return KindCanceled
	case errors.Is(err, ErrUnauthenticated):
		return KindUnauthenticated
	case errors.Is(err, ErrServer):
		return KindServer
	case errors.Is(err, ErrMalformedResponse):
		return KindMalformed
	case errors.Is(err, ErrNetwork):
		return KindNetwork
	}
	return KindOther
}
