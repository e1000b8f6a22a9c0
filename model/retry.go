package model

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/hupe1980/ensemble/logging"
)

// ErrTransient marks failures worth retrying (rate limits, overloaded or
// unavailable upstreams, network timeouts).
var ErrTransient = errors.New("transient model failure")

type transientError struct{ err error }

func (e *transientError) Error() string        { return e.err.Error() }
func (e *transientError) Unwrap() error        { return e.err }
func (e *transientError) Is(target error) bool { return target == ErrTransient }

// MarkTransient wraps err so that errors.Is(err, ErrTransient) reports true.
func MarkTransient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransientStatus reports whether an HTTP status code denotes a retryable failure.
func IsTransientStatus(code int) bool {
	return code == 408 || code == 409 || code == 429 || code >= 500
}

// IsTransient reports whether err should be retried.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTransient) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// RetryOptions configures bounded exponential backoff.
type RetryOptions struct {
	// MaxAttempts is the total number of attempts including the first one.
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64
	Logger         logging.Logger
}

// Retrying wraps a Model retrying transient failures.
type Retrying struct {
	Model
	opts  RetryOptions
	sleep func(ctx context.Context, d time.Duration) error
}

// WithRetry wraps m with bounded retries for transient failures.
// Defaults: 3 attempts, 500ms initial backoff doubling up to 8s.
func WithRetry(m Model, optFns ...func(o *RetryOptions)) *Retrying {
	opts := RetryOptions{
		MaxAttempts:    3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     8 * time.Second,
		Multiplier:     2,
		Logger:         logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	opts.Logger = logging.OrNoOp(opts.Logger)
	return &Retrying{Model: m, opts: opts, sleep: sleepContext}
}

// Generate implements Model.
func (r *Retrying) Generate(ctx context.Context, req Request) (Response, error) {
	backoff := r.opts.InitialBackoff
	var lastErr error
	for attempt := 1; attempt <= r.opts.MaxAttempts; attempt++ {
		resp, err := r.Model.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil || !IsTransient(err) || attempt == r.opts.MaxAttempts {
			break
		}
		r.opts.Logger.Warn("Retrying model call", "attempt", attempt, "backoff", backoff, "error", err.Error())
		if err := r.sleep(ctx, backoff); err != nil {
			return Response{}, err
		}
		backoff = time.Duration(float64(backoff) * r.opts.Multiplier)
		if r.opts.MaxBackoff > 0 && backoff > r.opts.MaxBackoff {
			backoff = r.opts.MaxBackoff
		}
	}
	return Response{}, lastErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
