// Package wrapblox provides a Go client for the Roblox web APIs.
//
// # Overview
//
// Every Roblox web API lives under its own base URL (users, friends, groups,
// badges and so on). The client maps a short API group name to that base URL,
// attaches the session cookie and CSRF token to each request, serves repeated
// GET requests from a time-based cache, and walks cursor-paginated lists.
//
// # Quick Start
//
//	client, err := wrapblox.NewClient(&wrapblox.Config{
//		UserAgent: "myapp/1.0",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	user, err := client.GetUser(ctx, 1)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(user.Name)
//
// Configuration can also be read from WRAPBLOX_* environment variables:
//
//	cfg, err := wrapblox.ConfigFromEnv()
//	client, err := wrapblox.NewClient(cfg)
//
// # Raw Endpoint Calls
//
// FetchEndpoint issues a single call against any API group and returns the
// decoded JSON body untouched. Query parameters are sorted and URL-encoded;
// slice values are joined with commas.
//
//	raw, err := client.FetchEndpoint(ctx, http.MethodGet, wrapblox.GamesV2,
//		"/games", &types.RequestOptions{
//			Query: types.Params{"universeIds": []int64{1, 2}},
//		})
//
// A 204 response or an empty body yields a nil result and a nil error.
//
// # Sessions and CSRF
//
// Calls that change state require a session. Supply it through Config.SessionToken
// or Login, or per call with RequestOptions.SessionToken. The client learns the
// x-csrf-token header from any response and retries a request once when the
// upstream answers 403 with a fresh token.
//
//	me, err := client.Login(ctx, os.Getenv("ROBLOSECURITY"))
//
// # Caching
//
// Successful GET responses are cached by full URL for Config.CacheTTL
// (five minutes by default). Set RequestOptions.BypassCache to force a network
// call; the fresh response still replaces the cached entry. ClearCache drops
// everything and SetCacheTTL changes the lifetime of existing entries too.
//
// # Pagination
//
// Paginated endpoints return a data array and a nextPageCursor. FetchEndpointList
// follows the cursor until MaxResults items are collected or the cursor runs out:
//
//	items, err := client.FetchEndpointList(ctx, http.MethodGet, wrapblox.Badges,
//		"/users/1/badges", nil, &types.PagingPolicy{MaxResults: 250, PerPage: types.PerPage100})
//
// PerPage must be one of 10, 25, 50 or 100. A 429 on any page waits
// Config.RateLimitBackoff and retries that page with the same cursor. Any other
// failure aborts the walk and discards what was collected.
//
// For large lists, a ListIterator fetches one page at a time:
//
//	it := client.NewUserBadgeIterator(ctx, 1)
//	for it.HasNext() {
//		badge, err := it.Next()
//		if err == wrapblox.ErrIteratorDone {
//			break
//		}
//		if err != nil {
//			return err
//		}
//		fmt.Println(badge.Name)
//	}
//
// # Error Handling
//
// Errors are typed and live in pkg/errors. Typed helpers such as GetUser wrap
// the underlying failure in a ClientError naming the operation, so match with
// errors.As:
//
//	_, err := client.GetUser(ctx, 1)
//	var reqErr *pkgerrs.RequestError
//	if errors.As(err, &reqErr) {
//		detail, _ := reqErr.Format() // one "code: message" line per upstream error
//	}
//
// ConfigurationError reports a bad method, an unknown API group or an invalid
// paging policy before any network call. ParseError reports a body that is not
// valid JSON. StateError reports an operation that needs a session.
//
// IsNotFound reports a 404 or an empty lookup result.
//
// # Throttling and Circuit Breaking
//
// Config.RateLimit enables a client-side token bucket and Config.CircuitBreaker
// stops calling an upstream that keeps failing with 5xx. Both are off unless set.
//
// # Logging and Metrics
//
// The client logs through zerolog. Pass a logger in Config.Logger; requests are
// logged at debug level with a short request id. Prometheus collectors are
// registered under the wrapblox_ prefix.
package wrapblox
