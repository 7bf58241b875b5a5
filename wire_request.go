package networking

import (
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// WireRequest is the materialised, transport-ready form of a Request.
//
// Transformers must not mutate the WireRequest they receive; they return a
// modified Clone instead.
type WireRequest struct {
	URL     *url.URL
	Method  string
	Header  http.Header
	Body    []byte
	Timeout time.Duration
}

// Clone returns a deep copy of r.
func (r *WireRequest) Clone() *WireRequest {
	if r == nil {
		return nil
	}
	c := &WireRequest{
		Method:  r.Method,
		Header:  r.Header.Clone(),
		Timeout: r.Timeout,
	}
	if c.Header == nil {
		c.Header = make(http.Header)
	}
	if r.URL != nil {
		u := *r.URL
		if r.URL.User != nil {
			user := *r.URL.User
			u.User = &user
		}
		c.URL = &u
	}
	if r.Body != nil {
		c.Body = append([]byte(nil), r.Body...)
	}
	return c
}

// buildWireRequest resolves req against baseURL. It has no side effects.
func buildWireRequest(baseURL *url.URL, req Request, verb Verb) (*WireRequest, error) {
	if baseURL == nil {
		return nil, &InvalidRequestError{Reason: "base url is nil"}
	}
	if !verb.Valid() {
		return nil, &InvalidRequestError{Reason: string(verb), Cause: ErrUnsupportedVerb}
	}

	u, err := joinPath(baseURL, req.Path)
	if err != nil {
		return nil, &InvalidRequestError{Reason: "path " + req.Path, Cause: err}
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, &InvalidRequestError{Reason: "url has no scheme or host: " + u.String()}
	}
	if len(req.Query) > 0 {
		u.RawQuery = encodeQuery(req.Query)
	}
	// Round-trip the result so a URL the transport could not parse is caught here.
	if _, err := url.Parse(u.String()); err != nil {
		return nil, &InvalidRequestError{Reason: "url does not resolve", Cause: err}
	}

	return &WireRequest{
		URL:     u,
		Method:  verb.Method(),
		Header:  make(http.Header),
		Timeout: req.Timeout,
	}, nil
}

// joinPath appends p to the path of base with exactly one slash between them.
// Segments are kept as written: "." and ".." are not resolved and repeated
// slashes are not collapsed. p is taken as an already escaped path, the same
// way url.JoinPath treats its elements.
func joinPath(base *url.URL, p string) (*url.URL, error) {
	u := *base
	if p == "" {
		return &u, nil
	}

	escaped := strings.TrimSuffix(base.EscapedPath(), "/") + "/" + strings.TrimPrefix(p, "/")
	unescaped, err := url.PathUnescape(escaped)
	if err != nil {
		return nil, err
	}
	u.Path = unescaped
	u.RawPath = escaped
	return &u, nil
}

// encodeQuery percent-encodes query parameters sorted by key. A literal '+'
// is always sent as %2B and a space as %20, so servers that decode '+' as a
// space still see the original value.
func encodeQuery(query map[string]string) string {
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(escapeQueryComponent(k))
		b.WriteByte('=')
		b.WriteString(escapeQueryComponent(query[k]))
	}
	return b.String()
}

// escapeQueryComponent escapes s for a query string. url.QueryEscape already
// turns '+' into %2B; only its use of '+' for spaces needs undoing.
func escapeQueryComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
