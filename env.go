package wrapblox

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"

	pkgerrs "github.com/jamesprial/go-wrapblox/pkg/errors"
)

type envConfig struct {
	SessionToken      string            `env:"WRAPBLOX_SESSION_TOKEN"`
	APIKey            string            `env:"WRAPBLOX_API_KEY"`
	UserAgent         string            `env:"WRAPBLOX_USER_AGENT" envDefault:"go-wrapblox/0.1"`
	CacheTTL          time.Duration     `env:"WRAPBLOX_CACHE_TTL" envDefault:"5m"`
	RateLimitBackoff  time.Duration     `env:"WRAPBLOX_RATE_LIMIT_BACKOFF" envDefault:"1s"`
	RequestsPerMinute float64           `env:"WRAPBLOX_REQUESTS_PER_MINUTE"`
	LogLevel          string            `env:"WRAPBLOX_LOG_LEVEL" envDefault:"info"`
	LogFormat         string            `env:"WRAPBLOX_LOG_FORMAT" envDefault:"console"`
	Endpoints         map[string]string `env:"WRAPBLOX_ENDPOINTS" envKeyValSeparator:"="`
}

// ConfigFromEnv builds a Config from WRAPBLOX_* environment variables:
//
//	WRAPBLOX_SESSION_TOKEN        session cookie value
//	WRAPBLOX_API_KEY              x-api-key header value
//	WRAPBLOX_USER_AGENT           user agent (default go-wrapblox/0.1)
//	WRAPBLOX_CACHE_TTL            cache ttl as a Go duration (default 5m)
//	WRAPBLOX_RATE_LIMIT_BACKOFF   wait after a 429 during pagination (default 1s)
//	WRAPBLOX_REQUESTS_PER_MINUTE  enables the client-side throttle when > 0
//	WRAPBLOX_LOG_LEVEL            zerolog level (default info)
//	WRAPBLOX_LOG_FORMAT           console or json (default console)
//	WRAPBLOX_ENDPOINTS            comma separated Group=baseURL overrides
//
// The logger writes to stderr.
func ConfigFromEnv() (*Config, error) {
	ec, err := env.ParseAs[envConfig]()
	if err != nil {
		return nil, &pkgerrs.ConfigurationError{Field: "environment", Message: err.Error()}
	}

	level, err := zerolog.ParseLevel(strings.ToLower(ec.LogLevel))
	if err != nil {
		return nil, &pkgerrs.ConfigurationError{Field: "WRAPBLOX_LOG_LEVEL", Message: fmt.Sprintf("invalid level %q", ec.LogLevel)}
	}

	var logger zerolog.Logger
	switch ec.LogFormat {
	case "json":
		logger = zerolog.New(os.Stderr)
	case "console", "":
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	default:
		return nil, &pkgerrs.ConfigurationError{Field: "WRAPBLOX_LOG_FORMAT", Message: fmt.Sprintf("unknown format %q", ec.LogFormat)}
	}
	logger = logger.Level(level).With().Timestamp().Logger()

	cfg := &Config{
		SessionToken:     ec.SessionToken,
		APIKey:           ec.APIKey,
		UserAgent:        ec.UserAgent,
		CacheTTL:         ec.CacheTTL,
		RateLimitBackoff: ec.RateLimitBackoff,
		Endpoints:        ec.Endpoints,
		Logger:           &logger,
	}
	if ec.RequestsPerMinute > 0 {
		cfg.RateLimit = &RateLimitConfig{RequestsPerMinute: ec.RequestsPerMinute}
	}
	return cfg, nil
}
