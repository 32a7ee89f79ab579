package internal

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrs "github.com/jamesprial/go-wrapblox/pkg/errors"
	"github.com/jamesprial/go-wrapblox/pkg/types"
	"github.com/jamesprial/go-wrapblox/test_helpers"
)

const badgesPath = "/Badges/users/1/badges"

func item(id int) map[string]int {
	return map[string]int{"id": id}
}

func ids(t *testing.T, raws []json.RawMessage) []int {
	t.Helper()
	out := make([]int, 0, len(raws))
	for _, raw := range raws {
		var v struct {
			ID int `json:"id"`
		}
		require.NoError(t, json.Unmarshal(raw, &v))
		out = append(out, v.ID)
	}
	return out
}

func TestFetchList_AccumulatesAcrossPages(t *testing.T) {
	ms := test_helpers.NewMockServer()
	defer ms.Close()
	ms.Script(http.MethodGet, badgesPath,
		test_helpers.Page("c2", item(1), item(2)),
		test_helpers.Page("c3", item(3), item(4)),
		test_helpers.Page("", item(5)),
	)

	d := newTestDispatcher(t, ms, nil)
	got, err := d.FetchList(context.Background(), http.MethodGet, Badges, "/users/1/badges", nil,
		types.PagingPolicy{MaxResults: 100, PerPage: types.PerPage10})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3, 4, 5}, ids(t, got))

	log := ms.GetRequestLog()
	require.Len(t, log, 3)
	assert.Equal(t, "10", log[0].Query.Get("limit"))
	assert.False(t, log[0].Query.Has("cursor"))
	assert.Equal(t, "c2", log[1].Query.Get("cursor"))
	assert.Equal(t, "c3", log[2].Query.Get("cursor"))
}

func TestFetchList_TruncatesToMaxResults(t *testing.T) {
	ms := test_helpers.NewMockServer()
	defer ms.Close()

	page1 := make([]any, 10)
	page2 := make([]any, 10)
	for i := range 10 {
		page1[i] = item(i)
		page2[i] = item(10 + i)
	}
	ms.Script(http.MethodGet, badgesPath,
		test_helpers.Page("c2", page1...),
		test_helpers.Page("c3", page2...),
		test_helpers.Page("", item(99)),
	)

	d := newTestDispatcher(t, ms, nil)
	got, err := d.FetchList(context.Background(), http.MethodGet, Badges, "/users/1/badges", nil,
		types.PagingPolicy{MaxResults: 15, PerPage: types.PerPage10})
	require.NoError(t, err)

	assert.Len(t, got, 15)
	assert.Equal(t, 2, ms.TotalCalls(), "stops once the limit is reached")
}

func TestFetchList_StopsWithoutCursor(t *testing.T) {
	ms := test_helpers.NewMockServer()
	defer ms.Close()
	ms.Script(http.MethodGet, badgesPath, test_helpers.Page("", item(1), item(2), item(3)))

	d := newTestDispatcher(t, ms, nil)
	got, err := d.FetchList(context.Background(), http.MethodGet, Badges, "/users/1/badges", nil,
		types.PagingPolicy{MaxResults: 100, PerPage: types.PerPage100})
	require.NoError(t, err)

	assert.Len(t, got, 3)
	assert.Equal(t, 1, ms.TotalCalls())
}

func TestFetchList_RetriesRateLimitedPage(t *testing.T) {
	ms := test_helpers.NewMockServer()
	defer ms.Close()
	ms.Script(http.MethodGet, badgesPath,
		test_helpers.Page("c2", item(1)),
		test_helpers.Text(http.StatusTooManyRequests, `{"errors":[{"code":0,"message":"Too many requests"}]}`),
		test_helpers.Page("c3", item(2)),
		test_helpers.Page("", item(3)),
	)

	d := newTestDispatcher(t, ms, nil)
	got, err := d.FetchList(context.Background(), http.MethodGet, Badges, "/users/1/badges", nil,
		types.PagingPolicy{MaxResults: 100, PerPage: types.PerPage10})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, ids(t, got))

	log := ms.GetRequestLog()
	require.Len(t, log, 4)
	assert.Equal(t, "c2", log[1].Query.Get("cursor"))
	assert.Equal(t, "c2", log[2].Query.Get("cursor"), "rate-limited page is re-requested with the same cursor")
	assert.Equal(t, "c3", log[3].Query.Get("cursor"))
}

func TestFetchList_OtherErrorDiscardsResults(t *testing.T) {
	ms := test_helpers.NewMockServer()
	defer ms.Close()
	ms.Script(http.MethodGet, badgesPath,
		test_helpers.Page("c2", item(1)),
		test_helpers.Text(http.StatusInternalServerError, ``),
	)

	d := newTestDispatcher(t, ms, nil)
	got, err := d.FetchList(context.Background(), http.MethodGet, Badges, "/users/1/badges", nil,
		types.PagingPolicy{MaxResults: 100, PerPage: types.PerPage10})

	assert.Nil(t, got)
	assert.Equal(t, http.StatusInternalServerError, pkgerrs.StatusCode(err))
	assert.Equal(t, 2, ms.TotalCalls())
}

func TestFetchList_InvalidPolicy(t *testing.T) {
	ms := test_helpers.NewMockServer()
	defer ms.Close()

	d := newTestDispatcher(t, ms, nil)

	for _, policy := range []types.PagingPolicy{
		{MaxResults: 0, PerPage: 10},
		{MaxResults: 10, PerPage: 20},
	} {
		_, err := d.FetchList(context.Background(), http.MethodGet, Badges, "/users/1/badges", nil, policy)
		var cfgErr *pkgerrs.ConfigurationError
		assert.ErrorAs(t, err, &cfgErr)
	}
	assert.Equal(t, 0, ms.TotalCalls())
}

func TestFetchList_KeepsCallerQuery(t *testing.T) {
	ms := test_helpers.NewMockServer()
	defer ms.Close()
	ms.Script(http.MethodGet, badgesPath, test_helpers.Page("", item(1)))

	d := newTestDispatcher(t, ms, nil)
	opts := &types.RequestOptions{Query: types.Params{"sortOrder": "Desc"}}
	_, err := d.FetchList(context.Background(), http.MethodGet, Badges, "/users/1/badges", opts,
		types.PagingPolicy{MaxResults: 5, PerPage: types.PerPage25})
	require.NoError(t, err)

	q := ms.GetRequestLog()[0].Query
	assert.Equal(t, "Desc", q.Get("sortOrder"))
	assert.Equal(t, "25", q.Get("limit"))
	assert.Len(t, opts.Query, 1, "caller query is not modified")
}

func TestPageIterator_CancelDuringBackoff(t *testing.T) {
	ms := test_helpers.NewMockServer()
	defer ms.Close()
	ms.Script(http.MethodGet, badgesPath, test_helpers.Text(http.StatusTooManyRequests, ``))

	d := newTestDispatcher(t, ms, func(cfg *DispatcherConfig) {
		cfg.RateLimitBackoff = time.Hour
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	it := d.NewPageIterator(http.MethodGet, Badges, "/users/1/badges", nil, types.PerPage10)
	_, err := it.NextPage(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
	assert.False(t, it.HasMore())
	assert.Equal(t, 1, ms.TotalCalls())
}

func TestPageIterator_Exhaustion(t *testing.T) {
	ms := test_helpers.NewMockServer()
	defer ms.Close()
	ms.Script(http.MethodGet, badgesPath,
		test_helpers.Page("next", item(1)),
		test_helpers.Page("", item(2)),
	)

	d := newTestDispatcher(t, ms, nil)
	it := d.NewPageIterator(http.MethodGet, Badges, "/users/1/badges", nil, types.PerPage10)
	ctx := context.Background()

	assert.Equal(t, "", it.Cursor())
	page, err := it.NextPage(ctx)
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
	assert.Equal(t, "next", it.Cursor())
	assert.True(t, it.HasMore())

	_, err = it.NextPage(ctx)
	require.NoError(t, err)
	assert.False(t, it.HasMore())

	_, err = it.NextPage(ctx)
	assert.ErrorIs(t, err, ErrNoMorePages)
	assert.NoError(t, it.Err())
}
