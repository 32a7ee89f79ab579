// Package test_helpers provides a scripted upstream stub for exercising the
// dispatcher and client against real HTTP round trips.
package test_helpers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// MockServer is an httptest server that answers each "METHOD /path" route
// from a script of responses. Each call consumes the next response; the last
// response repeats once the script is exhausted.
type MockServer struct {
	server *httptest.Server

	mu         sync.Mutex
	routes     map[string][]*MockResponse
	served     map[string]int
	defaultRes *MockResponse
	requestLog []RequestEntry
}

// RequestEntry records one request received by the stub.
type RequestEntry struct {
	Method       string
	Path         string
	Query        url.Values
	Headers      http.Header
	Body         string
	Timestamp    time.Time
	ResponseCode int
}

// MockResponse defines one scripted reply.
type MockResponse struct {
	Status  int
	Body    string
	Headers map[string]string
	Delay   time.Duration
}

// NewMockServer starts a stub whose unscripted routes answer 404.
func NewMockServer() *MockServer {
	ms := &MockServer{
		routes: make(map[string][]*MockResponse),
		served: make(map[string]int),
		defaultRes: &MockResponse{
			Status: http.StatusNotFound,
			Body:   `{"errors":[{"code":0,"message":"NotFound"}]}`,
		},
	}
	ms.server = httptest.NewServer(http.HandlerFunc(ms.serveHTTP))
	return ms
}

// URL returns the base URL of the stub.
func (ms *MockServer) URL() string {
	return ms.server.URL
}

// Close shuts down the stub.
func (ms *MockServer) Close() {
	ms.server.Close()
}

// Script replaces the responses for method and path.
func (ms *MockServer) Script(method, path string, responses ...*MockResponse) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	key := method + " " + path
	ms.routes[key] = responses
	ms.served[key] = 0
}

// SetDefaultResponse configures the reply for unscripted routes.
func (ms *MockServer) SetDefaultResponse(response *MockResponse) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.defaultRes = response
}

// GetRequestLog returns a copy of every request received so far.
func (ms *MockServer) GetRequestLog() []RequestEntry {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return append([]RequestEntry{}, ms.requestLog...)
}

// GetCallCount returns how many times method and path were requested.
func (ms *MockServer) GetCallCount(method, path string) int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.served[method+" "+path]
}

// TotalCalls returns the number of requests received on any route.
func (ms *MockServer) TotalCalls() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return len(ms.requestLog)
}

// ClearLog forgets recorded requests and rewinds every script.
func (ms *MockServer) ClearLog() {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.requestLog = ms.requestLog[:0]
	clear(ms.served)
}

func (ms *MockServer) serveHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	key := r.Method + " " + r.URL.Path

	ms.mu.Lock()
	resp := ms.defaultRes
	if script, ok := ms.routes[key]; ok && len(script) > 0 {
		idx := min(ms.served[key], len(script)-1)
		resp = script[idx]
	}
	ms.served[key]++
	ms.requestLog = append(ms.requestLog, RequestEntry{
		Method:       r.Method,
		Path:         r.URL.Path,
		Query:        r.URL.Query(),
		Headers:      r.Header.Clone(),
		Body:         string(body),
		Timestamp:    time.Now(),
		ResponseCode: resp.Status,
	})
	ms.mu.Unlock()

	if resp.Delay > 0 {
		select {
		case <-time.After(resp.Delay):
		case <-r.Context().Done():
			return
		}
	}

	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(resp.Status)
	if resp.Body != "" {
		_, _ = io.WriteString(w, resp.Body)
	}
}

// JSON builds a response whose body is v encoded as JSON.
func JSON(status int, v any) *MockResponse {
	body, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return &MockResponse{Status: status, Body: string(body)}
}

// Text builds a response with a literal body.
func Text(status int, body string) *MockResponse {
	return &MockResponse{Status: status, Body: body}
}

// WithHeader returns a copy of r carrying an extra response header.
func (r *MockResponse) WithHeader(key, value string) *MockResponse {
	clone := *r
	clone.Headers = make(map[string]string, len(r.Headers)+1)
	for k, v := range r.Headers {
		clone.Headers[k] = v
	}
	clone.Headers[key] = value
	return &clone
}

// Page builds a cursor-paginated envelope. An empty next cursor marks the last page.
func Page(next string, items ...any) *MockResponse {
	envelope := map[string]any{
		"previousPageCursor": nil,
		"nextPageCursor":     nil,
		"data":               items,
	}
	if items == nil {
		envelope["data"] = []any{}
	}
	if next != "" {
		envelope["nextPageCursor"] = next
	}
	return JSON(http.StatusOK, envelope)
}

// Endpoints maps each api group to a prefix on the stub, so that group
// "Users" with path "/users/1" is served at "/Users/users/1".
func (ms *MockServer) Endpoints(groups ...string) map[string]string {
	out := make(map[string]string, len(groups))
	for _, g := range groups {
		out[g] = ms.URL() + "/" + g
	}
	return out
}
