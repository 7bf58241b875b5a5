package networking

import (
	"context"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// recordingTransport returns a canned response and remembers every wire
// request it was handed.
type recordingTransport struct {
	mu       sync.Mutex
	requests []*WireRequest
	respond  func(req *WireRequest) (*RawResponse, error)
}

func (r *recordingTransport) Send(_ context.Context, req *WireRequest) (*RawResponse, error) {
	r.mu.Lock()
	r.requests = append(r.requests, req)
	r.mu.Unlock()
	if r.respond == nil {
		return &RawResponse{StatusCode: 200, Header: map[string]string{}, URL: req.URL}, nil
	}
	return r.respond(req)
}

func (r *recordingTransport) last(t *testing.T) *WireRequest {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.requests, "transport was never called")
	return r.requests[len(r.requests)-1]
}

func (r *recordingTransport) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

func respondWith(status int, header map[string]string, body string) func(*WireRequest) (*RawResponse, error) {
	return func(req *WireRequest) (*RawResponse, error) {
		return &RawResponse{StatusCode: status, Header: header, Body: []byte(body), URL: req.URL}, nil
	}
}

func newTestClient(t *testing.T, transport TransportClient, opts ...Option) *Client {
	t.Helper()
	all := append([]Option{WithBaseURL("https://api.example.com"), WithTransport(transport)}, opts...)
	c, err := NewClient(all...)
	require.NoError(t, err)
	return c
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

// MockLogger
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(msg string, args ...any) {
	m.Called(msg, args)
}

func (m *MockLogger) Info(msg string, args ...any) {
	m.Called(msg, args)
}

func (m *MockLogger) Warn(msg string, args ...any) {
	m.Called(msg, args)
}

func (m *MockLogger) Error(msg string, args ...any) {
	m.Called(msg, args)
}
