package internal

import (
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/jamesprial/go-wrapblox/internal/metrics"
)

// CircuitBreakerConfig enables a circuit breaker around the HTTP transport.
// Transport errors and 5xx responses count as failures.
type CircuitBreakerConfig struct {
	// Name labels log lines and metrics. Defaults to "wrapblox-api".
	Name string
	// MaxRequests is the number of trial requests allowed while half-open. Defaults to 1.
	MaxRequests uint32
	// Interval resets the failure counts while closed. Zero never resets.
	Interval time.Duration
	// Timeout is how long the breaker stays open. Defaults to 30 seconds.
	Timeout time.Duration
	// ConsecutiveFailures trips the breaker. Defaults to 5.
	ConsecutiveFailures uint32
}

const (
	defaultBreakerName     = "wrapblox-api"
	defaultBreakerTimeout  = 30 * time.Second
	defaultBreakerFailures = 5
)

var errServerFailure = errors.New("upstream server error")

type transportBreaker struct {
	cb *gobreaker.CircuitBreaker[*http.Response]
}

func newTransportBreaker(cfg CircuitBreakerConfig, logger zerolog.Logger) *transportBreaker {
	if cfg.Name == "" {
		cfg.Name = defaultBreakerName
	}
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultBreakerTimeout
	}
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = defaultBreakerFailures
	}

	metrics.CircuitBreakerState.WithLabelValues(cfg.Name).Set(0)

	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	return &transportBreaker{cb: cb}
}

// do runs roundTrip under the breaker. A 5xx response is returned to the
// caller as a response, not an error, but still counts as a failure.
func (b *transportBreaker) do(roundTrip func() (*http.Response, error)) (*http.Response, error) {
	var resp *http.Response
	_, err := b.cb.Execute(func() (*http.Response, error) {
		r, err := roundTrip()
		if err != nil {
			return nil, err
		}
		resp = r
		if r.StatusCode >= http.StatusInternalServerError {
			return r, errServerFailure
		}
		return r, nil
	})
	if errors.Is(err, errServerFailure) {
		return resp, nil
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (b *transportBreaker) state() gobreaker.State {
	return b.cb.State()
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
