package repository

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

// ClientConfig holds the upstream HTTP client settings.
type ClientConfig struct {
	Timeout      time.Duration
	MaxIdleConns int
	IdleTimeout  time.Duration
}

// NewHTTPClient builds the *http.Client used for upstream calls, with pool
// defaults sized for a small front end.
func NewHTTPClient(cfg ClientConfig) *http.Client {
	if cfg.MaxIdleConns <= 0 {
		cfg.MaxIdleConns = 20
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 90 * time.Second
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConns,
		IdleConnTimeout:     cfg.IdleTimeout,
	}
	return &http.Client{Timeout: cfg.Timeout, Transport: transport}
}

// Pinger is satisfied by ActivityRepository.
type Pinger interface {
	Ping(ctx context.Context) error
}

// WaitForUpstream pings the API up to attempts times, sleeping delay between
// tries, so the board does not start against an API container that is still
// booting. onRetry, if set, is told about each failed attempt.
func WaitForUpstream(ctx context.Context, p Pinger, attempts int, delay time.Duration, onRetry func(attempt int, err error)) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = p.Ping(ctx); err == nil {
			return nil
		}
		if onRetry != nil {
			onRetry(attempt, err)
		}
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("upstream not ready after %d attempts: %w", attempts, err)
}
