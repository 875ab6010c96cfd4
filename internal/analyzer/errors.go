package analyzer

import (
	"errors"
	"net/http"

	"google.golang.org/grpc/codes"
)

// Kind classifies analysis failures for transports.
type Kind string

// Failure kinds.
const (
	// KindInput is a missing, malformed, denylisted or unreachable URL.
	KindInput Kind = "input"

	// KindTimeout is a site that did not answer the reachability probe in time.
	KindTimeout Kind = "timeout"

	// KindUpstream is a failed or malformed performance provider response.
	KindUpstream Kind = "upstream"

	// KindConfig is a missing provider credential.
	KindConfig Kind = "config"

	// KindInternal is anything else.
	KindInternal Kind = "internal"
)

// HTTPStatus maps the kind to a response status. Client-side problems are
// 400, everything else is 500.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindInput, KindTimeout:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// GRPCCode maps the kind to a gRPC status code.
func (k Kind) GRPCCode() codes.Code {
	switch k {
	case KindInput, KindTimeout:
		return codes.InvalidArgument
	case KindUpstream:
		return codes.Unavailable
	case KindConfig:
		return codes.FailedPrecondition
	default:
		return codes.Internal
	}
}

// Error is a classified analysis failure. Its message is safe to show to
// callers; Op names the failing step for logs.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// Input errors.
const (
	ErrMissingURL  = constError("URL is required")
	ErrInvalidURL  = constError("invalid URL")
	ErrTestDomain  = constError("test domains are not allowed")
	ErrSiteTooSlow = constError("site too slow to respond")
	ErrNotFound    = constError("site unreachable or does not exist")
	ErrUnreachable = constError("site unreachable")
)
