package provider

import (
	"context"
	"math"
	"net/http"
	"time"

	"syncme/core/logger"
)

// BackoffConfig controls retry behavior for provider HTTP calls. Tests
// inject a zero-delay config so retry paths run instantly.
type BackoffConfig struct {
	BaseDelay   time.Duration
	Multiplier  float64
	MaxDelay    time.Duration
	MaxAttempts int
}

func DefaultBackoff() BackoffConfig {
	return BackoffConfig{
		BaseDelay:   time.Second,
		Multiplier:  2,
		MaxDelay:    60 * time.Second,
		MaxAttempts: 3,
	}
}

// Delay returns the wait before retry number attempt (0-based).
func (b BackoffConfig) Delay(attempt int) time.Duration {
	d := time.Duration(float64(b.BaseDelay) * math.Pow(b.Multiplier, float64(attempt)))
	if d > b.MaxDelay {
		return b.MaxDelay
	}
	return d
}

// doWithRetry issues the request built by build, retrying on 429 with
// exponential backoff and re-authenticating once on 401 via reauth. The
// request is rebuilt on every attempt so a refreshed token is picked up.
func doWithRetry(ctx context.Context, client *http.Client, backoff BackoffConfig, build func() (*http.Request, error), reauth func(ctx context.Context) error) (*http.Response, error) {
	reauthed := false

	for attempt := 0; ; attempt++ {
		req, err := build()
		if err != nil {
			return nil, err
		}

		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests && attempt < backoff.MaxAttempts:
			resp.Body.Close()
			delay := backoff.Delay(attempt)
			logger.Warn("Provider:RateLimited", "attempt", attempt, "delay", delay.String())
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		case resp.StatusCode == http.StatusUnauthorized && !reauthed && reauth != nil:
			resp.Body.Close()
			reauthed = true
			if err := reauth(ctx); err != nil {
				return nil, err
			}
		default:
			return resp, nil
		}
	}
}
