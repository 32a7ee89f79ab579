package adversarial_tests

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wrapblox "github.com/jamesprial/go-wrapblox"
	pkgerrs "github.com/jamesprial/go-wrapblox/pkg/errors"
	"github.com/jamesprial/go-wrapblox/pkg/types"
	"github.com/jamesprial/go-wrapblox/test_helpers"
)

func TestMalformedBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "truncated object", body: `{"id":1,"name":"a`},
		{name: "trailing garbage", body: `{"id":1} trailing`},
		{name: "html error page", body: `<html><body>Bad Gateway</body></html>`},
		{name: "bare word", body: `undefined`},
		{name: "unbalanced array", body: `[[[[`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms := test_helpers.NewMockServer()
			defer ms.Close()
			ms.Script(http.MethodGet, "/Users/users/1", test_helpers.Text(http.StatusOK, tt.body))

			client := newClient(t, ms)
			_, err := client.FetchEndpoint(context.Background(), http.MethodGet, wrapblox.Users, "/users/1", nil)
			var parseErr *pkgerrs.ParseError
			assert.ErrorAs(t, err, &parseErr)

			// nothing invalid may land in the cache
			ms.Script(http.MethodGet, "/Users/users/1", test_helpers.Text(http.StatusOK, `{"id":1}`))
			raw, err := client.FetchEndpoint(context.Background(), http.MethodGet, wrapblox.Users, "/users/1", nil)
			require.NoError(t, err)
			assert.JSONEq(t, `{"id":1}`, string(raw))
		})
	}
}

func TestDeeplyNestedBodyIsReturnedVerbatim(t *testing.T) {
	depth := 500
	body := strings.Repeat("[", depth) + strings.Repeat("]", depth)

	ms := test_helpers.NewMockServer()
	defer ms.Close()
	ms.Script(http.MethodGet, "/Users/nested", test_helpers.Text(http.StatusOK, body))

	client := newClient(t, ms)
	raw, err := client.FetchEndpoint(context.Background(), http.MethodGet, wrapblox.Users, "/nested", nil)
	require.NoError(t, err)
	assert.Equal(t, body, string(raw))
}

func TestTypedDecodeMismatch(t *testing.T) {
	ms := test_helpers.NewMockServer()
	defer ms.Close()
	ms.Script(http.MethodGet, "/Users/users/1", test_helpers.Text(http.StatusOK, `{"id":"one","name":42}`))

	client := newClient(t, ms)
	_, err := client.GetUser(context.Background(), 1)
	var parseErr *pkgerrs.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestMalformedPages(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "data is an object", body: `{"nextPageCursor":null,"data":{"id":1}}`},
		{name: "cursor is a number", body: `{"nextPageCursor":5,"data":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms := test_helpers.NewMockServer()
			defer ms.Close()
			ms.Script(http.MethodGet, "/Badges/users/1/badges", test_helpers.Text(http.StatusOK, tt.body))

			client := newClient(t, ms)
			items, err := client.FetchEndpointList(context.Background(), http.MethodGet, wrapblox.Badges, "/users/1/badges", nil, nil)
			var parseErr *pkgerrs.ParseError
			assert.ErrorAs(t, err, &parseErr)
			assert.Nil(t, items)
			assert.Equal(t, 1, ms.TotalCalls())
		})
	}
}

func TestPageWithoutDataEndsWalk(t *testing.T) {
	ms := test_helpers.NewMockServer()
	defer ms.Close()
	ms.Script(http.MethodGet, "/Badges/users/1/badges", test_helpers.Text(http.StatusOK, `{}`))

	client := newClient(t, ms)
	items, err := client.FetchEndpointList(context.Background(), http.MethodGet, wrapblox.Badges, "/users/1/badges", nil,
		&types.PagingPolicy{MaxResults: 10, PerPage: types.PerPage10})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestHostileQueryValuesAreEscaped(t *testing.T) {
	ms := test_helpers.NewMockServer()
	defer ms.Close()
	ms.Script(http.MethodGet, "/Users/users/search", test_helpers.Text(http.StatusOK, `{"data":[]}`))

	client := newClient(t, ms)
	hostile := "a&b=c#frag?x= y"
	_, err := client.FetchEndpoint(context.Background(), http.MethodGet, wrapblox.Users, "/users/search",
		&types.RequestOptions{Query: types.Params{"keyword": hostile}})
	require.NoError(t, err)

	log := ms.GetRequestLog()
	require.Len(t, log, 1)
	assert.Equal(t, hostile, log[0].Query.Get("keyword"))
	assert.Len(t, log[0].Query, 1)
}
