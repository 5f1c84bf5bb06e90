package delivery

import (
	"context"
	"errors"
	"math"
	"time"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = time.Second
	defaultMultiplier  = 2.0
	defaultMaxDelay    = 30 * time.Second
)

var (
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")
	ErrNegativeBaseDelay  = errors.New("base delay must not be negative")
	ErrInvalidMultiplier  = errors.New("multiplier must be at least 1")
)

// RetryPolicy is the backoff schedule for one delivery job. The wait before attempt n+1
// is BaseDelay * Multiplier^(n-1), capped by MaxDelay when MaxDelay is positive.
type RetryPolicy struct {
	MaxAttempts int           `envconfig:"DELIVERY_MAX_ATTEMPTS" default:"3" yaml:"maxAttempts"`
	BaseDelay   time.Duration `envconfig:"DELIVERY_BASE_DELAY" default:"1s" yaml:"baseDelay"`
	Multiplier  float64       `envconfig:"DELIVERY_MULTIPLIER" default:"2" yaml:"multiplier"`
	MaxDelay    time.Duration `envconfig:"DELIVERY_MAX_DELAY" default:"30s" yaml:"maxDelay"`
}

type RetryOption func(*RetryPolicy) error

func NewRetryPolicy(opts ...RetryOption) (RetryPolicy, error) {
	p := DefaultRetryPolicy()
	for _, opt := range opts {
		if err := opt(&p); err != nil {
			return RetryPolicy{}, err
		}
	}
	return p, nil
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: defaultMaxAttempts,
		BaseDelay:   defaultBaseDelay,
		Multiplier:  defaultMultiplier,
		MaxDelay:    defaultMaxDelay,
	}
}

func WithMaxAttempts(attempts int) RetryOption {
	return func(p *RetryPolicy) error {
		if attempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		p.MaxAttempts = attempts
		return nil
	}
}

func WithBaseDelay(delay time.Duration) RetryOption {
	return func(p *RetryPolicy) error {
		if delay < 0 {
			return ErrNegativeBaseDelay
		}
		p.BaseDelay = delay
		return nil
	}
}

func WithMultiplier(m float64) RetryOption {
	return func(p *RetryPolicy) error {
		if m < 1 {
			return ErrInvalidMultiplier
		}
		p.Multiplier = m
		return nil
	}
}

func WithMaxDelay(delay time.Duration) RetryOption {
	return func(p *RetryPolicy) error {
		p.MaxDelay = delay
		return nil
	}
}

func (p RetryPolicy) Validate() error {
	switch {
	case p.MaxAttempts <= 0:
		return ErrInvalidMaxAttempts
	case p.BaseDelay < 0:
		return ErrNegativeBaseDelay
	case p.Multiplier < 1:
		return ErrInvalidMultiplier
	}
	return nil
}

// Delay is the wait after the given failed attempt (1-based).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	d := float64(p.BaseDelay) * math.Pow(p.Multiplier, float64(attempt-1))
	if p.MaxDelay > 0 && d > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	return time.Duration(d)
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}
