// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package fetch retrieves raw HTML from third-party comic sites politely.

Every request start is spaced by at least the configured minimum delay per
hostname. The slot is reserved before the network call, so concurrent callers
targeting one host are serialized at that spacing while callers targeting
different hosts never wait on each other.

There are no retries: a failed fetch is reported once and the caller decides.
*/
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("komikflow/crawler/fetch")

// Browser-like request headers. Indonesian is preferred since every
// supported source is an Indonesian-language site.
const (
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	acceptHeader   = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"
	acceptLanguage = "id-ID,id;q=0.9,en-US;q=0.8,en;q=0.7"
)

const defaultTimeout = 30 * time.Second

// # Errors

// NetworkError reports a transport-level failure (DNS, TLS, reset, timeout).
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPStatusError reports a response outside the 2xx range.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// # Fetcher

// Fetcher is a rate-limited HTML client. It is safe for concurrent use.
type Fetcher struct {
	client   *resty.Client
	minDelay time.Duration
	logger   *slog.Logger

	mu    sync.Mutex
	hosts map[string]*hostSlot

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// Option customizes a [Fetcher].
type Option func(*Fetcher)

// WithTransport replaces the HTTP transport (tests use an in-memory round tripper).
func WithTransport(transport http.RoundTripper) Option {
	return func(fetcher *Fetcher) {
		fetcher.client.SetTransport(transport)
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(fetcher *Fetcher) {
		fetcher.client.SetTimeout(timeout)
	}
}

// WithClock replaces the time source and the wait used for spacing.
func WithClock(now func() time.Time, sleep func(context.Context, time.Duration) error) Option {
	return func(fetcher *Fetcher) {
		fetcher.now = now
		fetcher.sleep = sleep
	}
}

// New creates a [Fetcher] enforcing minDelay between request starts per host.
func New(minDelay time.Duration, logger *slog.Logger, opts ...Option) *Fetcher {
	client := resty.New().
		SetTimeout(defaultTimeout).
		SetHeaders(map[string]string{
			"User-Agent":      userAgent,
			"Accept":          acceptHeader,
			"Accept-Language": acceptLanguage,
		})

	fetcher := &Fetcher{
		client:   client,
		minDelay: minDelay,
		logger:   logger,
		hosts:    make(map[string]*hostSlot),
		now:      time.Now,
		sleep:    sleepContext,
	}

	for _, opt := range opts {
		opt(fetcher)
	}

	return fetcher
}

/*
Fetch waits for the host's next slot and returns the response body as text.

Parameters:
  - ctx: context.Context (cancellation also aborts the wait)
  - rawURL: string (absolute URL)

Returns:
  - string: the response body
  - error: *NetworkError or *HTTPStatusError
*/
func (fetcher *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return "", &NetworkError{URL: rawURL, Err: fmt.Errorf("invalid url")}
	}
	host := strings.ToLower(parsed.Hostname())

	ctx, span := tracer.Start(ctx, "fetch.Fetch", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("http.host", host), attribute.String("http.url", rawURL))

	waited, err := fetcher.wait(ctx, host)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", &NetworkError{URL: rawURL, Err: err}
	}

	started := fetcher.now()
	res, err := fetcher.client.R().SetContext(ctx).Get(rawURL)
	if err != nil {
		err = &NetworkError{URL: rawURL, Err: err}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	span.SetAttributes(attribute.Int("http.status_code", res.StatusCode()))
	fetcher.logger.DebugContext(ctx, "fetch_completed",
		slog.String("host", host),
		slog.String("url", rawURL),
		slog.Int("status", res.StatusCode()),
		slog.Duration("waited", waited),
		slog.Duration("latency", fetcher.now().Sub(started)),
	)

	if !res.IsSuccess() {
		err := &HTTPStatusError{URL: rawURL, StatusCode: res.StatusCode()}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	return res.String(), nil
}

// hostSlot is the spacing state of one host. mu orders clock reads together
// with reservations, so reservation times never go backwards.
type hostSlot struct {
	mu      sync.Mutex
	limiter *rate.Limiter
}

// wait reserves the next start slot for host and sleeps until it arrives.
func (fetcher *Fetcher) wait(ctx context.Context, host string) (time.Duration, error) {
	slot := fetcher.slot(host)

	slot.mu.Lock()
	now := fetcher.now()
	reservation := slot.limiter.ReserveN(now, 1)
	slot.mu.Unlock()

	if !reservation.OK() {
		return 0, fmt.Errorf("rate limiter refused reservation for %s", host)
	}

	delay := reservation.DelayFrom(now)
	if delay <= 0 {
		return 0, nil
	}

	if err := fetcher.sleep(ctx, delay); err != nil {
		// Return the unused slot.
		slot.mu.Lock()
		reservation.CancelAt(fetcher.now())
		slot.mu.Unlock()
		return 0, err
	}

	return delay, nil
}

func (fetcher *Fetcher) slot(host string) *hostSlot {
	fetcher.mu.Lock()
	defer fetcher.mu.Unlock()

	slot, ok := fetcher.hosts[host]
	if !ok {
		slot = &hostSlot{limiter: rate.NewLimiter(rate.Every(fetcher.minDelay), 1)}
		fetcher.hosts[host] = slot
	}
	return slot
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
