package helpers

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

// ChaosMode defines the type of chaos to inject
type ChaosMode int

const (
	// ChaosNone forwards requests to the wrapped transport
	ChaosNone ChaosMode = iota

	// ChaosConnectionReset fails the round trip before any response
	ChaosConnectionReset

	// ChaosPartialRead returns headers and then fails mid-body
	ChaosPartialRead

	// ChaosEmptyBody answers 200 with no body
	ChaosEmptyBody

	// ChaosInvalidJSON answers 200 with a truncated JSON document
	ChaosInvalidJSON

	// ChaosStatus answers with ChaosConfig.StatusCode
	ChaosStatus

	// ChaosSlowResponse waits ChaosConfig.Delay or until the request is cancelled
	ChaosSlowResponse
)

// ErrConnectionReset is returned by ChaosConnectionReset and ChaosPartialRead.
var ErrConnectionReset = errors.New("connection reset by peer")

// ChaosConfig configures the chaos transport behavior
type ChaosConfig struct {
	Mode ChaosMode

	// StatusCode is used by ChaosStatus
	StatusCode int

	// Delay is used by ChaosSlowResponse
	Delay time.Duration

	// FailFirst limits chaos to the first N requests; later requests pass
	// through. Zero means every request.
	FailFirst int

	// Header is added to every synthesized response
	Header http.Header
}

// ChaosTransport is an http.RoundTripper that injects failures in front of
// another transport.
type ChaosTransport struct {
	next     http.RoundTripper
	config   ChaosConfig
	requests atomic.Int64
}

// NewChaosTransport wraps next, or http.DefaultTransport when next is nil.
func NewChaosTransport(next http.RoundTripper, config ChaosConfig) *ChaosTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &ChaosTransport{next: next, config: config}
}

// Client returns an http.Client using this transport.
func (c *ChaosTransport) Client() *http.Client {
	return &http.Client{Transport: c}
}

// Requests reports how many round trips were attempted.
func (c *ChaosTransport) Requests() int {
	return int(c.requests.Load())
}

// RoundTrip implements http.RoundTripper.
func (c *ChaosTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	n := c.requests.Add(1)
	if c.config.FailFirst > 0 && n > int64(c.config.FailFirst) {
		return c.next.RoundTrip(req)
	}

	switch c.config.Mode {
	case ChaosConnectionReset:
		return nil, ErrConnectionReset
	case ChaosPartialRead:
		return c.respond(req, http.StatusOK, &partialReadCloser{data: []byte(`{"data":[{"id":1},`)}), nil
	case ChaosEmptyBody:
		return c.respond(req, http.StatusOK, io.NopCloser(bytes.NewReader(nil))), nil
	case ChaosInvalidJSON:
		return c.respond(req, http.StatusOK, io.NopCloser(strings.NewReader(`{"id": 1, "name": "trunc`))), nil
	case ChaosStatus:
		return c.respond(req, c.config.StatusCode, io.NopCloser(strings.NewReader(`{"errors":[{"code":0,"message":"chaos"}]}`))), nil
	case ChaosSlowResponse:
		select {
		case <-time.After(c.config.Delay):
			return c.next.RoundTrip(req)
		case <-req.Context().Done():
			return nil, req.Context().Err()
		}
	default:
		return c.next.RoundTrip(req)
	}
}

func (c *ChaosTransport) respond(req *http.Request, status int, body io.ReadCloser) *http.Response {
	header := make(http.Header)
	for k, v := range c.config.Header {
		header[k] = v
	}
	return &http.Response{
		Status:     http.StatusText(status),
		StatusCode: status,
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     header,
		Body:       body,
		Request:    req,
	}
}

// partialReadCloser yields data once and then fails.
type partialReadCloser struct {
	data []byte
	read bool
}

func (p *partialReadCloser) Read(buf []byte) (int, error) {
	if p.read {
		return 0, ErrConnectionReset
	}
	p.read = true
	return copy(buf, p.data), nil
}

func (p *partialReadCloser) Close() error {
	return nil
}
