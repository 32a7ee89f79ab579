package wrapblox

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/jamesprial/go-wrapblox/internal"
	pkgerrs "github.com/jamesprial/go-wrapblox/pkg/errors"
	"github.com/jamesprial/go-wrapblox/pkg/types"
)

const (
	// DefaultUserAgent is the default user agent string
	DefaultUserAgent = "go-wrapblox/0.1"
	// DefaultTimeout is the default HTTP client timeout
	DefaultTimeout = 30 * time.Second
	// DefaultCacheTTL is how long GET responses are served from cache
	DefaultCacheTTL = internal.DefaultCacheTTL
	// DefaultRateLimitBackoff is the wait before re-requesting a page that returned 429
	DefaultRateLimitBackoff = internal.DefaultRateLimitBackoff
)

// API group names accepted by FetchEndpoint and FetchEndpointList.
const (
	Users           = internal.Users
	Thumbnails      = internal.Thumbnails
	Friends         = internal.Friends
	Presence        = internal.Presence
	Groups          = internal.Groups
	GroupsV2        = internal.GroupsV2
	Games           = internal.Games
	GamesV2         = internal.GamesV2
	Badges          = internal.Badges
	BadgesV2        = internal.BadgesV2
	Inventory       = internal.Inventory
	InventoryV2     = internal.InventoryV2
	AccountSettings = internal.AccountSettings
	PremiumFeatures = internal.PremiumFeatures
	Auth            = internal.Auth
	AuthV2          = internal.AuthV2
	AuthV3          = internal.AuthV3
	Avatar          = internal.Avatar
	AvatarV2        = internal.AvatarV2
	AvatarV3        = internal.AvatarV3
)

// ErrNotFound is returned by lookups whose response was successful but empty,
// such as a username that matches no account.
var ErrNotFound = errors.New("not found")

// RateLimitConfig throttles outgoing requests on the client side.
type RateLimitConfig = internal.RateLimitConfig

// CircuitBreakerConfig enables a circuit breaker around the HTTP transport.
type CircuitBreakerConfig = internal.CircuitBreakerConfig

// Config holds the configuration for the client. Every field is optional.
//
// Example for an authenticated client:
//
//	config := &Config{
//		SessionToken: os.Getenv("ROBLOSECURITY"),
//		UserAgent:    "myapp/1.0",
//		CacheTTL:     time.Minute,
//	}
type Config struct {
	// SessionToken is the .ROBLOSECURITY cookie value sent with every request.
	// Login can set or replace it later.
	SessionToken string

	// APIKey is forwarded as the x-api-key header when set.
	APIKey string

	// UserAgent identifies your application.
	// Defaults to DefaultUserAgent if not specified.
	UserAgent string `validate:"max=256"`

	// HTTPClient to use for requests.
	// Defaults to a client with DefaultTimeout if not specified.
	HTTPClient *http.Client `validate:"-"`

	// Endpoints adds or overrides API group base URLs. Useful for pointing a
	// group at a proxy or a test server.
	Endpoints map[string]string

	// CacheTTL is how long GET responses stay cached.
	// Defaults to DefaultCacheTTL if zero.
	CacheTTL time.Duration `validate:"gte=0"`

	// RateLimitBackoff is the pause between retries when a paginated request gets 429.
	// Defaults to DefaultRateLimitBackoff if zero.
	RateLimitBackoff time.Duration `validate:"gte=0"`

	// RateLimit enables a client-side throttle. Disabled when nil.
	RateLimit *RateLimitConfig

	// CircuitBreaker enables a circuit breaker around the transport. Disabled when nil.
	CircuitBreaker *CircuitBreakerConfig

	// Logger for structured diagnostics. Defaults to a disabled logger.
	Logger *zerolog.Logger `validate:"-"`
}

// Client is the Roblox API client. It is safe for concurrent use.
type Client struct {
	dispatcher *internal.Dispatcher
	config     *Config
	logger     zerolog.Logger

	mu   sync.RWMutex
	self *types.User
}

// NewClient creates a new client with the provided configuration.
// A nil config uses every default. NewClient performs no network calls.
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		config = &Config{}
	}
	if err := internal.ValidateStruct("config", config); err != nil {
		return nil, err
	}

	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = DefaultCacheTTL
	}
	if config.RateLimitBackoff == 0 {
		config.RateLimitBackoff = DefaultRateLimitBackoff
	}

	logger := zerolog.Nop()
	if config.Logger != nil {
		logger = *config.Logger
	}

	table, err := internal.NewEndpointTable(config.Endpoints)
	if err != nil {
		return nil, err
	}

	dispatcher, err := internal.NewDispatcher(internal.DispatcherConfig{
		HTTPClient:       config.HTTPClient,
		UserAgent:        config.UserAgent,
		Endpoints:        table,
		Credentials:      internal.NewCredentials(config.SessionToken, config.APIKey),
		Cache:            internal.NewTimedCache[string, json.RawMessage](config.CacheTTL),
		Logger:           logger,
		RateLimit:        config.RateLimit,
		CircuitBreaker:   config.CircuitBreaker,
		RateLimitBackoff: config.RateLimitBackoff,
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		dispatcher: dispatcher,
		config:     config,
		logger:     logger,
	}, nil
}

// FetchEndpoint performs one call against apiGroup and returns the raw JSON body.
//
// GET responses are cached by full URL for the configured TTL; set
// opts.BypassCache to force a network call. A 403 that carries a new CSRF
// token is retried once with that token. Non-2xx responses are returned as
// *errors.RequestError. An empty successful body returns nil and no error.
func (c *Client) FetchEndpoint(ctx context.Context, method, apiGroup, path string, opts *types.RequestOptions) (json.RawMessage, error) {
	return c.dispatcher.Fetch(ctx, method, apiGroup, path, opts)
}

// FetchEndpointList retrieves a cursor-paginated endpoint and returns the
// concatenated data items, at most policy.MaxResults of them. A nil policy
// uses types.DefaultPagingPolicy. Pages answered with 429 are retried after
// the configured backoff; any other error discards what was gathered.
func (c *Client) FetchEndpointList(ctx context.Context, method, apiGroup, path string, opts *types.RequestOptions, policy *types.PagingPolicy) ([]json.RawMessage, error) {
	return c.dispatcher.FetchList(ctx, method, apiGroup, path, opts, pagingPolicy(policy))
}

// ClearCache drops every cached response.
func (c *Client) ClearCache() {
	c.dispatcher.Cache().Clear()
}

// SetCacheTTL changes how long cached responses stay visible.
func (c *Client) SetCacheTTL(ttl time.Duration) {
	c.dispatcher.Cache().SetTTL(ttl)
}

// CacheTTL returns the current cache time-to-live.
func (c *Client) CacheTTL() time.Duration {
	return c.dispatcher.Cache().TTL()
}

// Login validates token against the authenticated-user endpoint, then stores
// it as the session credential for later calls and records the account as Self.
// On failure the previous session is kept.
func (c *Client) Login(ctx context.Context, token string) (*types.User, error) {
	if token == "" {
		return nil, &pkgerrs.ConfigurationError{Field: "token", Message: "session token cannot be empty"}
	}

	user, err := c.AuthenticatedUser(ctx, token)
	if err != nil {
		return nil, err
	}

	c.dispatcher.Credentials().SetSessionToken(token)

	c.mu.Lock()
	c.self = user
	c.mu.Unlock()

	c.logger.Info().Int64("user_id", user.ID).Str("name", user.Name).Msg("logged in")
	return user, nil
}

// Self returns the account recorded by the last successful Login.
func (c *Client) Self() (*types.User, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.self == nil {
		return nil, &pkgerrs.StateError{Operation: "Self", Message: "not logged in, call Login first"}
	}
	return c.self, nil
}

// AuthenticatedUser resolves the account behind token without changing the
// client's stored session. Pass an empty token to use the stored session.
func (c *Client) AuthenticatedUser(ctx context.Context, token string) (*types.User, error) {
	raw, err := c.dispatcher.Fetch(ctx, http.MethodGet, Users, "/users/authenticated", &types.RequestOptions{
		BypassCache:  true,
		SessionToken: token,
	})
	if err != nil {
		return nil, &pkgerrs.ClientError{Operation: "get authenticated user", Err: err}
	}

	auth, err := decode[types.AuthenticatedUser](raw, "get authenticated user")
	if err != nil {
		return nil, err
	}

	return c.getUser(ctx, auth.ID, &types.RequestOptions{SessionToken: token})
}

// IsNotFound reports whether err means the requested entity does not exist,
// either because the API answered 404 or because a lookup matched nothing.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || pkgerrs.IsNotFound(err)
}

func (c *Client) requireSession(operation string) error {
	if c.dispatcher.Credentials().SessionToken() == "" {
		return &pkgerrs.StateError{Operation: operation, Message: "no session token, call Login first"}
	}
	return nil
}

func pagingPolicy(policy *types.PagingPolicy) types.PagingPolicy {
	if policy == nil {
		return types.DefaultPagingPolicy()
	}
	return *policy
}

// fetchInto performs a call and decodes the body into T.
func fetchInto[T any](ctx context.Context, c *Client, operation, method, apiGroup, path string, opts *types.RequestOptions) (*T, error) {
	raw, err := c.dispatcher.Fetch(ctx, method, apiGroup, path, opts)
	if err != nil {
		return nil, &pkgerrs.ClientError{Operation: operation, Err: err}
	}
	return decode[T](raw, operation)
}

// fetchListInto retrieves a paginated list and decodes every item into T.
func fetchListInto[T any](ctx context.Context, c *Client, operation, apiGroup, path string, opts *types.RequestOptions, policy *types.PagingPolicy) ([]T, error) {
	raws, err := c.dispatcher.FetchList(ctx, http.MethodGet, apiGroup, path, opts, pagingPolicy(policy))
	if err != nil {
		return nil, &pkgerrs.ClientError{Operation: operation, Err: err}
	}

	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, &pkgerrs.ParseError{Operation: operation, Err: err}
		}
		out = append(out, item)
	}
	return out, nil
}

func decode[T any](raw json.RawMessage, operation string) (*T, error) {
	if raw == nil {
		return nil, &pkgerrs.ParseError{Operation: operation, Message: "empty response body"}
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &pkgerrs.ParseError{Operation: operation, Err: err}
	}
	return &out, nil
}
