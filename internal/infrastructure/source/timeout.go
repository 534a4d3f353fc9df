// Package source holds the SourceAdapter implementations and decorators.
package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coinprices-service/internal/application"
	"coinprices-service/internal/domain"
)

// Timeout bounds how long one adapter may take. The wrapped Fetch runs on its
// own goroutine so an adapter that ignores ctx still cannot stall a run.
type Timeout struct {
	A application.SourceAdapter
	D time.Duration
}

// WithTimeout wraps a with a deadline of d. d <= 0 returns a unchanged.
func WithTimeout(a application.SourceAdapter, d time.Duration) application.SourceAdapter {
	if d <= 0 {
		return a
	}
	return &Timeout{A: a, D: d}
}

func (t *Timeout) Name() string { return t.A.Name() }

type fetchResult struct {
	quotes []domain.Quote
	err    error
}

func (t *Timeout) Fetch(ctx context.Context) ([]domain.Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, t.D)
	defer cancel()

	done := make(chan fetchResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fetchResult{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		qs, err := t.A.Fetch(ctx)
		done <- fetchResult{quotes: qs, err: err}
	}()

	select {
	case res := <-done:
		return res.quotes, res.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s: timed out after %s: %w", t.A.Name(), t.D, ctx.Err())
		}
		return nil, fmt.Errorf("%s: %w", t.A.Name(), ctx.Err())
	}
}
