// Package safeexec runs store and API calls behind a fault barrier: failures
// are classified, reported once, and replaced by a fallback. Nothing is
// retried and nothing escapes to the caller.
package safeexec

import (
	"context"
	"fmt"

	"time-tracker/internal/apperr"
)

type Executor struct {
	reporter apperr.Reporter
}

func New(reporter apperr.Reporter) *Executor {
	return &Executor{reporter: reporter}
}

// Run reports whether fn completed without error.
func (e *Executor) Run(ctx context.Context, op string, fn func(ctx context.Context) error) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.report(ctx, op, fmt.Errorf("panic: %v", r))
			ok = false
		}
	}()
	if err := fn(ctx); err != nil {
		e.report(ctx, op, err)
		return false
	}
	return true
}

// Value returns fn's result, or fallback if fn fails.
func Value[T any](ctx context.Context, e *Executor, op string, fallback T, fn func(ctx context.Context) (T, error)) T {
	var out T
	if !e.Run(ctx, op, func(ctx context.Context) error {
		v, err := fn(ctx)
		out = v
		return err
	}) {
		return fallback
	}
	return out
}

// List is Value with an empty, non-nil slice as fallback.
func List[T any](ctx context.Context, e *Executor, op string, fn func(ctx context.Context) ([]T, error)) []T {
	out := Value(ctx, e, op, []T{}, fn)
	if out == nil {
		return []T{}
	}
	return out
}

func (e *Executor) report(ctx context.Context, op string, err error) {
	switch apperr.Classify(err) {
	case apperr.KindDatabase:
		e.reporter.HandleDatabaseError(ctx, err, op)
	case apperr.KindAPI:
		apiErr, _ := apperr.AsAPI(err)
		e.reporter.HandleAPIError(ctx, apiErr, op)
	case apperr.KindValidation:
		vErr, _ := apperr.AsValidation(err)
		e.reporter.HandleValidationError(ctx, vErr, op)
	default:
		e.reporter.HandleException(ctx, err, op)
	}
}
