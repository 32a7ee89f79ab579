package main

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesprial/go-wrapblox/test_helpers"
)

func run(t *testing.T, ms *test_helpers.MockServer, args ...string) (string, error) {
	t.Helper()
	t.Setenv("WRAPBLOX_LOG_LEVEL", "disabled")
	t.Setenv("WRAPBLOX_RATE_LIMIT_BACKOFF", "1ms")

	var out bytes.Buffer
	cmd := newRootCmd(&out)
	full := append([]string{
		"--endpoint", "Users=" + ms.URL() + "/Users",
		"--endpoint", "Badges=" + ms.URL() + "/Badges",
		"--endpoint", "GroupsV2=" + ms.URL() + "/GroupsV2",
		"--endpoint", "Groups=" + ms.URL() + "/Groups",
	}, args...)
	cmd.SetArgs(full)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestGetCommand(t *testing.T) {
	ms := test_helpers.NewMockServer()
	defer ms.Close()
	ms.Script(http.MethodGet, "/Users/users/search", test_helpers.Text(http.StatusOK, `{"data":[{"id":1}]}`))

	out, err := run(t, ms, "get", "Users", "/users/search", "-q", "keyword=builder", "-q", "limit=10")
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[{"id":1}]}`, out)

	q := ms.GetRequestLog()[0].Query
	assert.Equal(t, "builder", q.Get("keyword"))
	assert.Equal(t, "10", q.Get("limit"))
}

func TestGetCommand_PostWithBody(t *testing.T) {
	ms := test_helpers.NewMockServer()
	defer ms.Close()
	ms.Script(http.MethodPost, "/Users/usernames/users", test_helpers.Text(http.StatusOK, `{"data":[]}`))

	_, err := run(t, ms, "get", "Users", "/usernames/users", "-X", "POST", "-d", `{"usernames":["a"]}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"usernames":["a"]}`, ms.GetRequestLog()[0].Body)
}

func TestGetCommand_ErrorDetail(t *testing.T) {
	ms := test_helpers.NewMockServer()
	defer ms.Close()

	_, err := run(t, ms, "get", "Users", "/users/0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0: NotFound")
}

func TestListCommand(t *testing.T) {
	ms := test_helpers.NewMockServer()
	defer ms.Close()
	ms.Script(http.MethodGet, "/Badges/users/1/badges",
		test_helpers.Page("c2", map[string]int{"id": 1}, map[string]int{"id": 2}),
		test_helpers.Page("", map[string]int{"id": 3}),
	)

	out, err := run(t, ms, "list", "Badges", "/users/1/badges", "--max", "2", "--per-page", "10")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1},{"id":2}]`, out)
	assert.Equal(t, 1, ms.TotalCalls())
}

func TestListCommand_BadPageSize(t *testing.T) {
	ms := test_helpers.NewMockServer()
	defer ms.Close()

	_, err := run(t, ms, "list", "Badges", "/users/1/badges", "--per-page", "7")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PerPage")
}

func TestUserCommand(t *testing.T) {
	ms := test_helpers.NewMockServer()
	defer ms.Close()
	ms.Script(http.MethodPost, "/Users/usernames/users", test_helpers.Text(http.StatusOK, `{"data":[{"id":5}]}`))
	ms.Script(http.MethodGet, "/Users/users/5", test_helpers.Text(http.StatusOK, `{"id":5,"name":"builderman"}`))

	out, err := run(t, ms, "user", "builderman")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "builderman"`)

	out, err = run(t, ms, "user", "5")
	require.NoError(t, err)
	assert.Contains(t, out, `"id": 5`)

	_, err = run(t, ms, "user", "not a name")
	assert.ErrorContains(t, err, "neither a user id")
}

func TestGroupCommand(t *testing.T) {
	ms := test_helpers.NewMockServer()
	defer ms.Close()
	ms.Script(http.MethodGet, "/GroupsV2/groups", test_helpers.Text(http.StatusOK, `{"data":[{"id":7,"name":"Makers"}]}`))
	ms.Script(http.MethodGet, "/Groups/groups/7/roles", test_helpers.Text(http.StatusOK, `{"groupId":7,"roles":[{"id":1,"name":"Guest","rank":0}]}`))

	out, err := run(t, ms, "group", "7")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "Makers"`)

	out, err = run(t, ms, "group", "7", "--roles")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "Guest"`)

	_, err = run(t, ms, "group", "abc")
	assert.Error(t, err)
}

func TestParseQuery(t *testing.T) {
	params, err := parseQuery([]string{"a=1", "b=x=y"})
	require.NoError(t, err)
	assert.Equal(t, "1", params["a"])
	assert.Equal(t, "x=y", params["b"])

	_, err = parseQuery([]string{"novalue"})
	assert.Error(t, err)

	params, err = parseQuery(nil)
	require.NoError(t, err)
	assert.Nil(t, params)
}
