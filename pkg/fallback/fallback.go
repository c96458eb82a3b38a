// Package fallback evaluates an ordered list of alternatives and stops at
// the first one that succeeds.
package fallback

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoSteps is returned when a chain has nothing to evaluate.
var ErrNoSteps = errors.New("fallback: no steps")

// Step is one named alternative.
type Step[T any] struct {
	Name  string
	Fetch func(context.Context) (T, error)
}

// Result reports which step produced the value.
type Result[T any] struct {
	Value T
	// Index of the succeeding step; 0 means the primary.
	Index int
	Name  string
}

// UsedFallback reports whether a step after the primary produced the value.
func (r Result[T]) UsedFallback() bool {
	return r.Index > 0
}

// First runs steps in order and returns the first success. Context
// cancellation stops the chain; other failures move on to the next step.
// When every step fails the joined errors are returned.
func First[T any](ctx context.Context, steps ...Step[T]) (Result[T], error) {
	if len(steps) == 0 {
		return Result[T]{}, ErrNoSteps
	}

	var errs []error
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return Result[T]{}, err
		}
		value, err := step.Fetch(ctx)
		if err == nil {
			return Result[T]{Value: value, Index: i, Name: step.Name}, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", step.Name, err))
	}
	return Result[T]{}, errors.Join(errs...)
}
