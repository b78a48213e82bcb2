package llm

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"
)

// RetryProvider retries temporary failures with exponential backoff. A
// schema mismatch is retried at most once; a rate limit waits for the
// vendor's Retry-After hint when there is one.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
}

func WithRetry(p Provider, cfg RetryConfig) Provider {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &RetryProvider{inner: p, config: cfg}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	invalidSeen := false

	for attempt := 1; ; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}

		var inv *ErrInvalidResponse
		isInvalid := errors.As(err, &inv)
		if !Temporary(err) || attempt == r.config.MaxAttempts || (isInvalid && invalidSeen) {
			return nil, err
		}
		invalidSeen = invalidSeen || isInvalid

		wait := r.delay(attempt, err)
		slog.Debug("llm request retry",
			"model", r.inner.ModelID(),
			"attempt", attempt,
			"wait", wait,
			"err", err)

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// delay returns the pause after the given 1-based attempt: InitialWait
// grown by Multiplier per attempt, capped at MaxWait, with ±20% jitter.
func (r *RetryProvider) delay(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	wait := float64(r.config.InitialWait)
	for i := 1; i < attempt && wait < float64(r.config.MaxWait); i++ {
		wait *= r.config.Multiplier
	}
	wait = min(wait, float64(r.config.MaxWait))
	wait *= 0.8 + 0.4*rand.Float64()
	return time.Duration(wait)
}
