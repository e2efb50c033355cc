package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zeroBackoff() BackoffConfig {
	return BackoffConfig{BaseDelay: 0, Multiplier: 2, MaxDelay: 0, MaxAttempts: 3}
}

func TestDelayGrowsExponentially(t *testing.T) {
	b := DefaultBackoff()

	assert.Equal(t, time.Second, b.Delay(0))
	assert.Equal(t, 2*time.Second, b.Delay(1))
	assert.Equal(t, 4*time.Second, b.Delay(2))
	assert.Equal(t, 32*time.Second, b.Delay(5))
	// capped past attempt 6
	assert.Equal(t, 60*time.Second, b.Delay(6))
	assert.Equal(t, 60*time.Second, b.Delay(10))
}

func TestDoWithRetryRecoversFromRateLimit(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	build := func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, srv.URL, nil)
	}

	resp, err := doWithRetry(context.Background(), srv.Client(), zeroBackoff(), build, nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, calls)
}

func TestDoWithRetryGivesUpAfterMaxAttempts(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	build := func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, srv.URL, nil)
	}

	resp, err := doWithRetry(context.Background(), srv.Client(), zeroBackoff(), build, nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	// the final 429 is returned to the caller
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, 4, calls)
}

func TestDoWithRetryReauthenticatesOnce(t *testing.T) {
	var calls, reauths int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	token := "stale"
	build := func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		return req, nil
	}
	reauth := func(_ context.Context) error {
		reauths++
		token = "fresh"
		return nil
	}

	resp, err := doWithRetry(context.Background(), srv.Client(), zeroBackoff(), build, reauth)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, reauths)
}

func TestDoWithRetryUnauthorizedTwiceStops(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	build := func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, srv.URL, nil)
	}
	reauth := func(_ context.Context) error { return nil }

	resp, err := doWithRetry(context.Background(), srv.Client(), zeroBackoff(), build, reauth)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, 2, calls)
}
