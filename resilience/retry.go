package resilience

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	apperrors "github.com/kbukum/routekit/errors"
)

// ErrMaxRetriesExceeded is joined with the last error once every attempt
// has failed.
var ErrMaxRetriesExceeded = errors.New("max retries exceeded")

// RetryConfig configures Retry. Zero numeric fields take the values of
// DefaultRetryConfig; Jitter zero means no jitter.
type RetryConfig struct {
	MaxAttempts    int           `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff" mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff" mapstructure:"max_backoff"`
	BackoffFactor  float64       `yaml:"backoff_factor" mapstructure:"backoff_factor"`
	// Jitter spreads each delay by up to this fraction in either direction.
	Jitter float64 `yaml:"jitter" mapstructure:"jitter"`

	RetryIf func(error) bool                                    `yaml:"-" mapstructure:"-"`
	OnRetry func(attempt int, err error, backoff time.Duration) `yaml:"-" mapstructure:"-"`
}

// DefaultRetryConfig makes 3 attempts, doubling from 100ms with 10% jitter.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     10 * time.Second,
		BackoffFactor:  2.0,
		Jitter:         0.1,
		RetryIf:        DefaultRetryIf,
	}
}

// DefaultRetryIf gives up on cancellation, on errors marked fatal and on
// AppErrors that are not retryable. Anything else is retried.
func DefaultRetryIf(err error) bool {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case apperrors.IsFatal(err):
		return false
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr.Retryable
	}
	return true
}

func (cfg RetryConfig) normalize() RetryConfig {
	def := DefaultRetryConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = def.InitialBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = def.MaxBackoff
	}
	if cfg.BackoffFactor <= 0 {
		cfg.BackoffFactor = def.BackoffFactor
	}
	if cfg.RetryIf == nil {
		cfg.RetryIf = def.RetryIf
	}
	return cfg
}

// Retry runs fn until it succeeds, RetryIf rejects its error, attempts run
// out or ctx is done. attempt counts from 1.
func Retry[T any](ctx context.Context, cfg RetryConfig, fn func(ctx context.Context, attempt int) (T, error)) (T, error) {
	cfg = cfg.normalize()
	var zero T
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		out, err := fn(ctx, attempt)
		switch {
		case err == nil:
			return out, nil
		case !cfg.RetryIf(err):
			return zero, err
		case attempt >= cfg.MaxAttempts:
			return zero, errors.Join(ErrMaxRetriesExceeded, err)
		}

		wait := Backoff(attempt, cfg)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, wait)
		}
		if err := sleep(ctx, wait); err != nil {
			return zero, err
		}
	}
}

// RetryFunc is Retry for functions without a result.
func RetryFunc(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context, attempt int) error) error {
	_, err := Retry(ctx, cfg, func(ctx context.Context, attempt int) (struct{}, error) {
		return struct{}{}, fn(ctx, attempt)
	})
	return err
}

// Backoff is the delay after the given failed attempt:
// InitialBackoff * BackoffFactor^(attempt-1), jittered, capped at MaxBackoff.
func Backoff(attempt int, cfg RetryConfig) time.Duration {
	cfg = cfg.normalize()
	d := float64(cfg.InitialBackoff) * math.Pow(cfg.BackoffFactor, float64(attempt-1))
	if cfg.Jitter > 0 {
		d *= 1 + cfg.Jitter*(2*rand.Float64()-1)
	}
	d = math.Min(d, float64(cfg.MaxBackoff))
	if d <= 0 {
		return cfg.InitialBackoff
	}
	return time.Duration(d)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
