package networking

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// TransportClient performs the bytes-over-the-wire part of a call. It is
// supplied by the host: the client never opens connections itself.
//
// Send must honour ctx cancellation and, when req.Timeout is non-zero, bound
// the exchange by it. A returned error always means no usable response.
type TransportClient interface {
	Send(ctx context.Context, req *WireRequest) (*RawResponse, error)
}

// TransportFunc adapts a function to a TransportClient.
type TransportFunc func(ctx context.Context, req *WireRequest) (*RawResponse, error)

// Send implements TransportClient.
func (f TransportFunc) Send(ctx context.Context, req *WireRequest) (*RawResponse, error) {
	return f(ctx, req)
}

// RawResponse is what the transport received.
type RawResponse struct {
	// StatusCode is zero when the reply carried no protocol status.
	StatusCode int
	// Header holds one value per key; the last value wins on collision.
	Header map[string]string
	Body   []byte
	// URL is the final URL after any redirects.
	URL *url.URL
}

// HasStatus reports whether the response carries a protocol status code.
func (r *RawResponse) HasStatus() bool {
	return r != nil && r.StatusCode > 0
}

// FlattenHeader converts a multi-valued header into a single-valued map,
// keeping the last value of each key.
func FlattenHeader(h http.Header) map[string]string {
	if h == nil {
		return nil
	}
	out := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) == 0 {
			continue
		}
		out[k] = v[len(v)-1]
	}
	return out
}

var errNilWireRequest = errors.New("wire request or its url is nil")

// HTTPTransport is a TransportClient backed by a *http.Client.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport returns a transport using client. A nil client gets an
// independent transport cloned from http.DefaultTransport, so the global
// default is never shared or mutated.
func NewHTTPTransport(client *http.Client) *HTTPTransport {
	if client == nil {
		client = &http.Client{Transport: cloneDefaultTransport()}
	}
	return &HTTPTransport{client: client}
}

// Client returns the underlying *http.Client.
func (t *HTTPTransport) Client() *http.Client {
	return t.client
}

// Send implements TransportClient.
func (t *HTTPTransport) Send(ctx context.Context, req *WireRequest) (*RawResponse, error) {
	if req == nil || req.URL == nil {
		return nil, errNilWireRequest
	}
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("new http request: %w", err)
	}
	httpReq.Header = req.Header.Clone()
	if httpReq.Header == nil {
		httpReq.Header = make(http.Header)
	}
	if host := httpReq.Header.Get("Host"); host != "" {
		httpReq.Host = host
		httpReq.Header.Del("Host")
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	finalURL := req.URL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL
	}
	return &RawResponse{
		StatusCode: resp.StatusCode,
		Header:     FlattenHeader(resp.Header),
		Body:       data,
		URL:        finalURL,
	}, nil
}

func cloneDefaultTransport() http.RoundTripper {
	if t, ok := http.DefaultTransport.(*http.Transport); ok && t != nil {
		return t.Clone()
	}
	return http.DefaultTransport
}
