// Package timeout bounds slow external operations with a hard deadline.
package timeout

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/kdprince200-netizen/equiherds-sub003/pkg/errors"
)

// result pairs a value with the error produced alongside it.
type result[T any] struct {
	value T
	err   error
}

// Do runs fn with a hard upper bound of limit. The child context passed to fn
// is cancelled when the limit elapses, and the caller gets a timeout error
// immediately; a late completion from fn is discarded. Callers that hold
// external state (locks, leases) must release it themselves after a timeout.
func Do[T any](ctx context.Context, op string, limit time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if limit <= 0 {
		return zero, apperrors.New(apperrors.CodeInternal, fmt.Sprintf("timeout limit for %s must be positive", op))
	}

	child, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	out := make(chan result[T], 1)
	go func() {
		value, err := fn(child)
		out <- result[T]{value: value, err: err}
	}()

	select {
	case res := <-out:
		return res.value, res.err
	case <-child.Done():
		if ctx.Err() != nil {
			return zero, apperrors.Wrap(apperrors.CodeTimeout, ctx.Err(), fmt.Sprintf("%s cancelled", op))
		}
		return zero, apperrors.New(apperrors.CodeTimeout, fmt.Sprintf("%s exceeded %s deadline", op, limit)).
			WithDetails(map[string]any{"operation": op, "limit": limit.String()})
	}
}

// Run is Do for operations that return only an error.
func Run(ctx context.Context, op string, limit time.Duration, fn func(context.Context) error) error {
	_, err := Do(ctx, op, limit, func(child context.Context) (struct{}, error) {
		return struct{}{}, fn(child)
	})
	return err
}
