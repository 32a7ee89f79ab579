package wrapblox

import (
	"context"
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/jamesprial/go-wrapblox/internal"
	pkgerrs "github.com/jamesprial/go-wrapblox/pkg/errors"
	"github.com/jamesprial/go-wrapblox/pkg/types"
)

// ErrIteratorDone is returned by Next once every item has been consumed.
var ErrIteratorDone = errors.New("no more items available")

// ListIterator walks a cursor-paginated GET endpoint one item at a time,
// fetching the next page only when the buffered one is exhausted.
//
// Example usage:
//
//	it := client.NewUserBadgeIterator(ctx, 1).WithPageSize(types.PerPage25)
//	for it.HasNext() {
//		badge, err := it.Next()
//		if err != nil {
//			break
//		}
//		fmt.Println(badge.Name)
//	}
type ListIterator[T any] struct {
	ctx       context.Context
	client    *Client
	apiGroup  string
	path      string
	opts      *types.RequestOptions
	pages     *internal.PageIterator
	perPage   int
	buffer    []json.RawMessage
	bufferIdx int
	err       error
}

// NewListIterator creates an iterator over a paginated endpoint whose items decode into T.
// Pages hold 100 items unless changed with WithPageSize.
func NewListIterator[T any](ctx context.Context, c *Client, apiGroup, path string, opts *types.RequestOptions) *ListIterator[T] {
	return &ListIterator[T]{
		ctx:      ctx,
		client:   c,
		apiGroup: apiGroup,
		path:     path,
		opts:     opts,
		perPage:  types.PerPage100,
	}
}

// WithPageSize sets the number of items requested per page. It must be one
// of 10, 25, 50 or 100 and must be called before the first Next.
func (it *ListIterator[T]) WithPageSize(perPage int) *ListIterator[T] {
	it.perPage = perPage
	return it
}

// HasNext returns true if there are more items to iterate through.
func (it *ListIterator[T]) HasNext() bool {
	if it.err != nil {
		return false
	}
	return it.bufferIdx < len(it.buffer) || it.pages == nil || it.pages.HasMore()
}

// Next returns the next item in the iteration.
func (it *ListIterator[T]) Next() (*T, error) {
	if it.err != nil {
		return nil, it.err
	}

	for it.bufferIdx >= len(it.buffer) {
		if err := it.fill(); err != nil {
			return nil, err
		}
	}

	raw := it.buffer[it.bufferIdx]
	it.bufferIdx++

	var item T
	if err := json.Unmarshal(raw, &item); err != nil {
		it.err = &pkgerrs.ParseError{Operation: "decode list item", Err: err}
		return nil, it.err
	}
	return &item, nil
}

// Err returns the error that stopped the iteration, if any.
func (it *ListIterator[T]) Err() error {
	return it.err
}

func (it *ListIterator[T]) fill() error {
	if it.pages == nil {
		policy := types.PagingPolicy{MaxResults: 1, PerPage: it.perPage}
		if err := internal.ValidatePagingPolicy(policy); err != nil {
			it.err = err
			return err
		}
		it.pages = it.client.dispatcher.NewPageIterator(http.MethodGet, it.apiGroup, it.path, it.opts, it.perPage)
	}

	if !it.pages.HasMore() {
		return ErrIteratorDone
	}

	page, err := it.pages.NextPage(it.ctx)
	if err != nil {
		it.err = &pkgerrs.ClientError{Operation: "list " + it.apiGroup + it.path, Err: err}
		return it.err
	}

	it.buffer = page.Data
	it.bufferIdx = 0
	return nil
}
