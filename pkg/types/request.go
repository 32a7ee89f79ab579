package types

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"
)

// RequestOptions carries the per-call settings for a single endpoint call.
// The zero value reads the cache, uses the client's stored credentials and
// sends no query string and no body.
type RequestOptions struct {
	// BypassCache skips the cache lookup. Successful GET responses are still stored.
	BypassCache bool

	// SessionToken overrides the client's session credential for this call only.
	SessionToken string

	// CSRFToken overrides the client's CSRF token for this call only.
	CSRFToken string

	// Query holds query-string parameters. Nil values are omitted.
	Query Params

	// Body is JSON-encoded and sent as the request body when non-nil.
	Body any
}

// UseCache reports whether the cache may be consulted for this call.
func (o *RequestOptions) UseCache() bool {
	return o == nil || !o.BypassCache
}

// Clone returns a copy whose Query map can be modified without touching the original.
func (o *RequestOptions) Clone() *RequestOptions {
	if o == nil {
		return &RequestOptions{Query: make(Params, 2)}
	}
	clone := *o
	clone.Query = make(Params, len(o.Query)+2)
	for k, v := range o.Query {
		clone.Query[k] = v
	}
	return &clone
}

// Params is a set of query parameters. Values are formatted with fmt;
// slices and arrays are joined with commas; nil values and nil pointers are skipped.
type Params map[string]any

// Encode serializes the defined parameters in key order.
func (p Params) Encode() string {
	if len(p) == 0 {
		return ""
	}

	values := url.Values{}
	for key, value := range p {
		formatted, ok := formatParam(value)
		if !ok {
			continue
		}
		values.Set(key, formatted)
	}
	return values.Encode()
}

func formatParam(value any) (string, bool) {
	if value == nil {
		return "", false
	}

	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return "", false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return "", false
		}
		parts := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			if s, ok := formatParam(rv.Index(i).Interface()); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ","), true
	default:
		return fmt.Sprint(rv.Interface()), true
	}
}

// PagingPolicy bounds a paginated retrieval.
type PagingPolicy struct {
	// MaxResults caps the number of items returned.
	MaxResults int `validate:"gte=1"`
	// PerPage is the page size sent as the limit parameter.
	PerPage int `validate:"oneof=10 25 50 100"`
}

// Allowed page sizes for paginated endpoints.
const (
	PerPage10  = 10
	PerPage25  = 25
	PerPage50  = 50
	PerPage100 = 100
)

// DefaultPagingPolicy returns up to 100 results, 100 per page.
func DefaultPagingPolicy() PagingPolicy {
	return PagingPolicy{MaxResults: 100, PerPage: PerPage100}
}
