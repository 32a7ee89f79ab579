package types

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParams_Encode(t *testing.T) {
	var nilPtr *int
	seven := 7

	tests := []struct {
		name   string
		params Params
		want   string
	}{
		{name: "nil map", params: nil, want: ""},
		{name: "empty map", params: Params{}, want: ""},
		{name: "sorted keys", params: Params{"b": 2, "a": "x"}, want: "a=x&b=2"},
		{name: "nil value omitted", params: Params{"a": 1, "b": nil}, want: "a=1"},
		{name: "nil pointer omitted", params: Params{"a": nilPtr, "c": true}, want: "c=true"},
		{name: "pointer dereferenced", params: Params{"n": &seven}, want: "n=7"},
		{name: "slice joined", params: Params{"ids": []int64{1, 2, 3}}, want: "ids=1%2C2%2C3"},
		{name: "nil slice omitted", params: Params{"ids": []string(nil)}, want: ""},
		{name: "escaped value", params: Params{"q": "a b&c"}, want: "q=a+b%26c"},
		{name: "all undefined", params: Params{"a": nil}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.params.Encode())
		})
	}
}

func TestRequestOptions_Clone(t *testing.T) {
	var nilOpts *RequestOptions
	clone := nilOpts.Clone()
	require.NotNil(t, clone)
	assert.True(t, clone.UseCache())
	assert.NotNil(t, clone.Query)

	orig := &RequestOptions{BypassCache: true, CSRFToken: "tok", Query: Params{"a": 1}}
	clone = orig.Clone()
	clone.Query["limit"] = 10

	assert.Len(t, orig.Query, 1)
	assert.Equal(t, "tok", clone.CSRFToken)
	assert.False(t, clone.UseCache())
}

func TestDefaultPagingPolicy(t *testing.T) {
	p := DefaultPagingPolicy()
	assert.Equal(t, 100, p.MaxResults)
	assert.Equal(t, PerPage100, p.PerPage)
}

func TestPage_Decode(t *testing.T) {
	body := `{"previousPageCursor":null,"nextPageCursor":"abc","data":[{"id":1},{"id":2}]}`

	var page Page
	require.NoError(t, json.Unmarshal([]byte(body), &page))
	assert.Nil(t, page.PreviousPageCursor)
	assert.Equal(t, "abc", page.NextCursor())
	assert.Len(t, page.Data, 2)
	assert.JSONEq(t, `{"id":2}`, string(page.Data[1]))

	var last Page
	require.NoError(t, json.Unmarshal([]byte(`{"data":[]}`), &last))
	assert.Equal(t, "", last.NextCursor())

	var nilPage *Page
	assert.Equal(t, "", nilPage.NextCursor())
}

func TestUser_AccountAge(t *testing.T) {
	created := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	u := &User{Created: created}

	assert.Equal(t, 10, u.AccountAge(created.Add(10*24*time.Hour)))
	assert.Equal(t, 11, u.AccountAge(created.Add(10*24*time.Hour+time.Minute)))
	assert.Equal(t, 0, (&User{}).AccountAge(created))
}

func TestFriend_DecodeEmbeddedUser(t *testing.T) {
	body := `{"id":42,"name":"builder","displayName":"Builder","isOnline":true,"friendFrequentScore":3,"created":"2019-05-01T12:00:00Z"}`

	var f Friend
	require.NoError(t, json.Unmarshal([]byte(body), &f))
	assert.Equal(t, int64(42), f.ID)
	assert.Equal(t, "builder", f.Name)
	assert.True(t, f.IsOnline)
	assert.Equal(t, 3, f.FriendFrequentScore)
	assert.Equal(t, 2019, f.Created.Year())
}

func TestGroup_DecodeOptionalShout(t *testing.T) {
	body := `{"id":7,"name":"Makers","owner":{"userId":1,"username":"root"},"shout":null,"memberCount":12}`

	var g Group
	require.NoError(t, json.Unmarshal([]byte(body), &g))
	require.NotNil(t, g.Owner)
	assert.Equal(t, "root", g.Owner.Username)
	assert.Nil(t, g.Shout)
	assert.Equal(t, 12, g.MemberCount)
}
