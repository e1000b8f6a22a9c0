package model

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrCallLimitExceeded is returned once a Limited model has used its budget.
var ErrCallLimitExceeded = errors.New("exceeded max model calls")

// Limiter enforces a maximum number of allowed model calls per run.
type Limiter struct {
	max   int
	count int
	mu    sync.Mutex
}

// NewLimiter creates a new limiter with a max number of calls.
// If max == 0, unlimited calls are allowed.
func NewLimiter(max int) *Limiter {
	return &Limiter{max: max}
}

// Increment increases the call counter and returns an error if the limit is exceeded.
func (ml *Limiter) Increment() error {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	ml.count++
	if ml.max > 0 && ml.count > ml.max {
		return fmt.Errorf("%w: %d", ErrCallLimitExceeded, ml.max)
	}

	return nil
}

// Count returns the current number of calls made.
func (ml *Limiter) Count() int {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	return ml.count
}

// Remaining returns how many calls are left before hitting the limit.
func (ml *Limiter) Remaining() int {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	if ml.max == 0 {
		return -1 // unlimited
	}

	return ml.max - ml.count
}

// Limited wraps a Model so every Generate call is counted against a Limiter.
type Limited struct {
	Model
	limiter *Limiter
}

// WithLimit returns a Model that fails with ErrCallLimitExceeded once
// limiter is exhausted.
func WithLimit(m Model, limiter *Limiter) *Limited {
	return &Limited{Model: m, limiter: limiter}
}

// Generate implements Model.
func (l *Limited) Generate(ctx context.Context, req Request) (Response, error) {
	if err := l.limiter.Increment(); err != nil {
		return Response{}, err
	}
	return l.Model.Generate(ctx, req)
}
