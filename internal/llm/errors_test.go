package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromStatus(t *testing.T) {
	cause := errors.New("vendor said no")
	tests := []struct {
		status    int
		want      any
		temporary bool
	}{
		{http.StatusTooManyRequests, new(*ErrRateLimit), true},
		{http.StatusInternalServerError, new(*ErrProviderUnavailable), true},
		{http.StatusServiceUnavailable, new(*ErrProviderUnavailable), true},
		{http.StatusUnauthorized, new(*ErrRequestRejected), false},
		{http.StatusNotFound, new(*ErrRequestRejected), false},
		{0, new(*ErrProviderUnavailable), true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			err := fromStatus(tt.status, 0, cause)
			assert.ErrorAs(t, err, tt.want)
			assert.ErrorIs(t, err, cause)
			assert.Equal(t, tt.temporary, Temporary(err))
		})
	}
}

func TestTemporary(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain network error", errors.New("connection reset"), true},
		{"rate limit", &ErrRateLimit{}, true},
		{"unavailable", &ErrProviderUnavailable{}, true},
		{"invalid response", &ErrInvalidResponse{Err: errors.New("x")}, true},
		{"truncated", &ErrMaxTokensExceeded{}, false},
		{"rejected", &ErrRequestRejected{StatusCode: 400}, false},
		{"wrapped rejection", fmt.Errorf("insight: %w", &ErrRequestRejected{StatusCode: 401}), false},
		{"canceled", context.Canceled, false},
		{"deadline inside unavailable", &ErrProviderUnavailable{Err: context.DeadlineExceeded}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Temporary(tt.err))
		})
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	header := func(v string) http.Header {
		h := http.Header{}
		if v != "" {
			h.Set("Retry-After", v)
		}
		return h
	}

	assert.Equal(t, 7*time.Second, parseRetryAfter(header("7"), now))
	assert.Equal(t, 90*time.Second, parseRetryAfter(header(now.Add(90*time.Second).Format(http.TimeFormat)), now))
	assert.Zero(t, parseRetryAfter(header(""), now))
	assert.Zero(t, parseRetryAfter(header("0"), now))
	assert.Zero(t, parseRetryAfter(header("bald"), now))
	assert.Zero(t, parseRetryAfter(header(now.Add(-time.Minute).Format(http.TimeFormat)), now))
}

func TestErrRateLimitMessage(t *testing.T) {
	assert.Equal(t, "rate limited, retry after 2s: 429", (&ErrRateLimit{RetryAfter: 2 * time.Second, Err: errors.New("429")}).Error())
	assert.Equal(t, "rate limited: 429", (&ErrRateLimit{Err: errors.New("429")}).Error())
}
