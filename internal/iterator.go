package internal

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"

	"github.com/jamesprial/go-wrapblox/internal/metrics"
	pkgerrs "github.com/jamesprial/go-wrapblox/pkg/errors"
	"github.com/jamesprial/go-wrapblox/pkg/types"
)

// ErrNoMorePages is returned by NextPage after the last page has been read.
var ErrNoMorePages = errors.New("no more pages available")

// PageIterator walks a cursor-paginated endpoint one page at a time.
// A 429 response is retried after the dispatcher's rate-limit backoff
// without advancing the cursor. Any other error ends the iteration.
type PageIterator struct {
	d        *Dispatcher
	method   string
	apiGroup string
	path     string
	opts     *types.RequestOptions
	perPage  int
	cursor   string
	hasMore  bool
	err      error
}

// NewPageIterator creates an iterator over method apiGroup path, requesting perPage items at a time.
func (d *Dispatcher) NewPageIterator(method, apiGroup, path string, opts *types.RequestOptions, perPage int) *PageIterator {
	return &PageIterator{
		d:        d,
		method:   method,
		apiGroup: apiGroup,
		path:     path,
		opts:     opts,
		perPage:  perPage,
		hasMore:  true,
	}
}

// HasMore reports whether another page may be requested.
func (it *PageIterator) HasMore() bool {
	return it.err == nil && it.hasMore
}

// Cursor returns the cursor the next request will send, or "" for the first page.
func (it *PageIterator) Cursor() string {
	return it.cursor
}

// Err returns the error that stopped the iteration, if any.
func (it *PageIterator) Err() error {
	return it.err
}

// NextPage fetches the next page and advances the cursor.
func (it *PageIterator) NextPage(ctx context.Context) (*types.Page, error) {
	if it.err != nil {
		return nil, it.err
	}
	if !it.hasMore {
		return nil, ErrNoMorePages
	}

	opts := it.opts.Clone()
	opts.Query["limit"] = it.perPage
	if it.cursor != "" {
		opts.Query["cursor"] = it.cursor
	}

	fetch := func() (*types.Page, error) {
		raw, err := it.d.Fetch(ctx, it.method, it.apiGroup, it.path, opts)
		if err != nil {
			if pkgerrs.IsRateLimited(err) {
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}

		page := &types.Page{}
		if raw == nil {
			return page, nil
		}
		if err := json.Unmarshal(raw, page); err != nil {
			return nil, backoff.Permanent(&pkgerrs.ParseError{Operation: "decode page", Err: err})
		}
		return page, nil
	}

	notify := func(err error, wait time.Duration) {
		metrics.RateLimitBackoffs.WithLabelValues(it.apiGroup).Inc()
		it.d.logger.Debug().
			Str("api_group", it.apiGroup).
			Str("path", it.path).
			Str("cursor", it.cursor).
			Dur("wait", wait).
			Msg("rate limited, retrying page")
	}

	policy := backoff.WithContext(backoff.NewConstantBackOff(it.d.backoff), ctx)
	page, err := backoff.RetryNotifyWithData(fetch, policy, notify)
	if err != nil {
		it.err = err
		return nil, err
	}

	it.cursor = page.NextCursor()
	if it.cursor == "" {
		it.hasMore = false
	}
	return page, nil
}

// FetchList retrieves up to policy.MaxResults items from a paginated endpoint,
// flattening each page's data array. If any page fails with an error other
// than 429, the items gathered so far are discarded and the error returned.
func (d *Dispatcher) FetchList(ctx context.Context, method, apiGroup, path string, opts *types.RequestOptions, policy types.PagingPolicy) ([]json.RawMessage, error) {
	if err := ValidatePagingPolicy(policy); err != nil {
		return nil, err
	}

	it := d.NewPageIterator(method, apiGroup, path, opts, policy.PerPage)
	results := make([]json.RawMessage, 0, min(policy.MaxResults, policy.PerPage))

	for it.HasMore() && len(results) < policy.MaxResults {
		page, err := it.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		results = append(results, page.Data...)
	}

	if len(results) > policy.MaxResults {
		results = results[:policy.MaxResults]
	}
	return results, nil
}
