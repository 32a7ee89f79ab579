package internal

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/jamesprial/go-wrapblox/internal/metrics"
	pkgerrs "github.com/jamesprial/go-wrapblox/pkg/errors"
	"github.com/jamesprial/go-wrapblox/pkg/types"
)

// HTTPDoer sends a single HTTP request. *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RateLimitConfig throttles requests on the client side before they reach the upstream.
type RateLimitConfig struct {
	// RequestsPerMinute caps steady-state throughput. Defaults to 60 if zero.
	RequestsPerMinute float64
	// Burst allows short spikes above the steady-state rate. Defaults to 10 if zero.
	Burst int
}

const (
	DefaultRequestsPerMinute = 60
	DefaultRateLimitBurst    = 10
	SecondsPerMinute         = 60.0

	// DefaultRateLimitBackoff is the pause before re-requesting a page that returned 429.
	DefaultRateLimitBackoff = time.Second

	csrfHeader   = "X-Csrf-Token"
	apiKeyHeader = "x-api-key"
	csrfAttempts = 2
)

var allowedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// DispatcherConfig wires a Dispatcher. Endpoints and Credentials are required.
type DispatcherConfig struct {
	HTTPClient  HTTPDoer
	UserAgent   string
	Endpoints   *EndpointTable
	Credentials *Credentials
	// Cache stores GET responses. A nil cache gets a fresh one with DefaultCacheTTL.
	Cache  *TimedCache[string, json.RawMessage]
	Logger zerolog.Logger
	// RateLimit enables a client-side throttle when non-nil.
	RateLimit *RateLimitConfig
	// CircuitBreaker enables a breaker around the transport when non-nil.
	CircuitBreaker *CircuitBreakerConfig
	// RateLimitBackoff is the wait between 429 retries during pagination.
	RateLimitBackoff time.Duration
}

// Dispatcher performs single endpoint calls: URL composition, caching,
// credential headers and the CSRF handshake.
type Dispatcher struct {
	client    HTTPDoer
	userAgent string
	endpoints *EndpointTable
	creds     *Credentials
	cache     *TimedCache[string, json.RawMessage]
	logger    zerolog.Logger
	limiter   *rate.Limiter
	breaker   *transportBreaker
	backoff   time.Duration
}

// NewDispatcher returns a Dispatcher for cfg.
// If cfg.HTTPClient is nil, http.DefaultClient is used.
func NewDispatcher(cfg DispatcherConfig) (*Dispatcher, error) {
	if cfg.Endpoints == nil {
		return nil, &pkgerrs.ConfigurationError{Field: "endpoints", Message: "endpoint table is required"}
	}
	if cfg.Credentials == nil {
		return nil, &pkgerrs.ConfigurationError{Field: "credentials", Message: "credentials are required"}
	}

	d := &Dispatcher{
		client:    cfg.HTTPClient,
		userAgent: cfg.UserAgent,
		endpoints: cfg.Endpoints,
		creds:     cfg.Credentials,
		cache:     cfg.Cache,
		logger:    cfg.Logger,
		backoff:   cfg.RateLimitBackoff,
	}
	if d.client == nil {
		d.client = http.DefaultClient
	}
	if d.cache == nil {
		d.cache = NewTimedCache[string, json.RawMessage](DefaultCacheTTL)
	}
	if d.backoff <= 0 {
		d.backoff = DefaultRateLimitBackoff
	}
	if cfg.RateLimit != nil {
		d.limiter = buildLimiter(*cfg.RateLimit)
	}
	if cfg.CircuitBreaker != nil {
		d.breaker = newTransportBreaker(*cfg.CircuitBreaker, cfg.Logger)
	}

	return d, nil
}

// Cache returns the response cache shared by every call on this dispatcher.
func (d *Dispatcher) Cache() *TimedCache[string, json.RawMessage] {
	return d.cache
}

// Credentials returns the credential store used for outgoing headers.
func (d *Dispatcher) Credentials() *Credentials {
	return d.creds
}

// Fetch performs one endpoint call and returns the raw JSON body.
// A successful call with an empty body (or 204) returns nil and no error.
func (d *Dispatcher) Fetch(ctx context.Context, method, apiGroup, path string, opts *types.RequestOptions) (json.RawMessage, error) {
	method = strings.ToUpper(method)
	if !allowedMethods[method] {
		return nil, &pkgerrs.ConfigurationError{Field: "method", Message: fmt.Sprintf("unsupported method %q", method)}
	}
	if opts == nil {
		opts = &types.RequestOptions{}
	}

	base, err := d.endpoints.Resolve(apiGroup)
	if err != nil {
		return nil, err
	}
	url := composeURL(base, path, opts.Query)

	logger := d.logger.With().
		Str("request_id", shortRequestID()).
		Str("method", method).
		Str("url", url).
		Logger()

	cacheable := method == http.MethodGet
	if cacheable && opts.UseCache() {
		cached, ok := d.cache.Get(url)
		metrics.RecordCacheLookup(ok)
		if ok {
			logger.Debug().Msg("cache hit")
			return cloneRaw(cached), nil
		}
	}

	var payload []byte
	if opts.Body != nil {
		payload, err = json.Marshal(opts.Body)
		if err != nil {
			return nil, &pkgerrs.ClientError{Operation: "encode request body", Err: err}
		}
	}

	var (
		resp *http.Response
		body []byte
	)
	for attempt := 1; attempt <= csrfAttempts; attempt++ {
		resp, body, err = d.roundTrip(ctx, logger, method, apiGroup, url, payload, opts)
		if err != nil {
			return nil, err
		}

		forbidden := resp.StatusCode == http.StatusForbidden
		refreshed := d.creds.ObserveCSRF(resp.Header.Get(csrfHeader), forbidden)
		if refreshed {
			logger.Debug().Bool("forbidden", forbidden).Msg("stored csrf token")
		}
		if !(forbidden && refreshed) {
			break
		}
		if attempt < csrfAttempts {
			metrics.CSRFRetries.Inc()
			logger.Debug().Msg("retrying with new csrf token")
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &pkgerrs.RequestError{
			Method:     method,
			URL:        url,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Response:   resp,
			Body:       body,
		}
	}

	if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	if !json.Valid(body) {
		return nil, &pkgerrs.ParseError{Operation: method + " " + url, Message: "response body is not valid JSON"}
	}

	raw := json.RawMessage(body)
	if cacheable {
		d.cache.Set(url, cloneRaw(raw))
	}
	return raw, nil
}

func (d *Dispatcher) roundTrip(ctx context.Context, logger zerolog.Logger, method, apiGroup, url string, payload []byte, opts *types.RequestOptions) (*http.Response, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, nil, &pkgerrs.ClientError{Operation: "build request", Err: err}
	}
	d.applyHeaders(req, opts)

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return nil, nil, &pkgerrs.ClientError{Operation: "wait for rate limiter", Err: err}
		}
	}

	start := time.Now()
	var resp *http.Response
	if d.breaker != nil {
		resp, err = d.breaker.do(func() (*http.Response, error) { return d.client.Do(req) })
	} else {
		resp, err = d.client.Do(req)
	}
	if err != nil {
		metrics.RecordTransportError(apiGroup)
		logger.Debug().Err(err).Msg("request failed")
		return nil, nil, &pkgerrs.ClientError{Operation: method + " " + url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &pkgerrs.ClientError{Operation: "read response body", Err: err}
	}

	elapsed := time.Since(start)
	metrics.RecordRequest(apiGroup, method, resp.StatusCode, elapsed)
	logger.Debug().Int("status", resp.StatusCode).Dur("duration", elapsed).Msg("request finished")

	return resp, body, nil
}

func (d *Dispatcher) applyHeaders(req *http.Request, opts *types.RequestOptions) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}
	if token := firstNonEmpty(opts.CSRFToken, d.creds.CSRFToken()); token != "" {
		req.Header.Set(csrfHeader, token)
	}
	if session := firstNonEmpty(opts.SessionToken, d.creds.SessionToken()); session != "" {
		req.Header.Set("Cookie", sessionCookie(session))
	}
	if key := d.creds.APIKey(); key != "" {
		req.Header.Set(apiKeyHeader, key)
	}
}

func composeURL(base, path string, query types.Params) string {
	url := base + path
	encoded := query.Encode()
	if encoded == "" {
		return url
	}
	if strings.Contains(path, "?") {
		return url + "&" + encoded
	}
	return url + "?" + encoded
}

func buildLimiter(cfg RateLimitConfig) *rate.Limiter {
	requestsPerMinute := cfg.RequestsPerMinute
	if requestsPerMinute <= 0 {
		requestsPerMinute = DefaultRequestsPerMinute
	}

	burst := cfg.Burst
	if burst <= 0 {
		burst = DefaultRateLimitBurst
	}

	return rate.NewLimiter(rate.Limit(requestsPerMinute/SecondsPerMinute), burst)
}

func shortRequestID() string {
	return uuid.NewString()[:8]
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	return append(json.RawMessage(nil), raw...)
}
