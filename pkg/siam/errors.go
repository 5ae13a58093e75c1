package siam

import (
	"context"
	"errors"
	"net"
	"syscall"

	"github.com/aussiebroadwan/authgate/pkg/slogx"
)

// ErrGateway matches every error returned by this package. The kinds below
// narrow it down; only ErrBadCredentials is the end user's fault.
var ErrGateway = errors.New("siam: gateway error")

var (
	ErrTimeout        = errors.New("siam: gateway timeout")
	ErrConnection     = errors.New("siam: cannot connect to gateway")
	ErrRequest        = errors.New("siam: gateway request failed")
	ErrResponse       = errors.New("siam: unexpected gateway response")
	ErrBadCredentials = errors.New("siam: invalid credentials")
)

// Error is a classified gateway failure.
type Error struct {
	Kind    error  // one of ErrTimeout, ErrConnection, ErrRequest, ErrResponse, ErrBadCredentials
	Request string // protocol request, e.g. "verify_credentials"
	Detail  string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Request != "" {
		msg += " [" + e.Request + "]"
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return target == ErrGateway || target == e.Kind
}

// KindOf returns the kind of a gateway error, or nil for anything else.
func KindOf(err error) error {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	return nil
}

// raise builds the error and logs it at critical level. Every gateway error
// goes through here exactly once, so callers must not log it again.
func raise(ctx context.Context, kind error, request, detail string, cause error) *Error {
	err := &Error{Kind: kind, Request: request, Detail: detail, Err: cause}
	slogx.Critical(ctx, slogx.FromContext(ctx), "siam gateway failure",
		"kind", outcome(kind),
		"request", request,
		"err", err.Error(),
	)
	return err
}

// classify maps a failed round trip onto the error taxonomy.
func classify(err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return ErrTimeout
	case isConnectionError(err):
		return ErrConnection
	default:
		return ErrRequest
	}
}

func isConnectionError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH)
}

func outcome(kind error) string {
	switch kind {
	case nil:
		return "ok"
	case ErrTimeout:
		return "timeout"
	case ErrConnection:
		return "connection"
	case ErrRequest:
		return "request"
	case ErrResponse:
		return "response"
	case ErrBadCredentials:
		return "bad_credentials"
	default:
		return "unknown"
	}
}
