package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/escala/internal/adapters/feed"
	"github.com/okian/escala/internal/adapters/repository"
	service "github.com/okian/escala/internal/app"
	"github.com/okian/escala/internal/domain/squad"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
)

// Error annotates a failure with the handler operation and its kind.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err == nil:
		return e.Op + ": " + e.Kind.Error()
	case e.Kind == nil:
		return e.Op + ": " + e.Err.Error()
	default:
		return e.Op + ": " + e.Kind.Error() + ": " + e.Err.Error()
	}
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// NewKind returns an error of the given kind with no further cause.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// WrapKind tags err with op and kind.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// Wrap tags err with op only.
func Wrap(op string, err error) error {
	return &Error{Op: op, Err: err}
}

// classify maps an error to its HTTP status and response code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, squad.ErrUnknownFormation):
		return http.StatusBadRequest, "unknown_formation"
	case errors.Is(err, squad.ErrInvalidBudget):
		return http.StatusBadRequest, "invalid_budget"
	case errors.Is(err, service.ErrEmptyBatch), errors.Is(err, service.ErrBatchTooLarge):
		return http.StatusBadRequest, "invalid_batch"
	case errors.Is(err, repository.ErrInvalidLimit):
		return http.StatusBadRequest, "invalid_limit"
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "roster_not_found"
	case errors.Is(err, squad.ErrDegenerateSquad):
		return http.StatusUnprocessableEntity, "degenerate_squad"
	case errors.Is(err, feed.ErrUpstream):
		return http.StatusBadGateway, "upstream_unavailable"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "not_ready"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
