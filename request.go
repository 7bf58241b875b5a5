package networking

import (
	"strings"
	"time"
)

// Verb is the HTTP method of a call.
type Verb string

const (
	VerbGet    Verb = "GET"
	VerbPut    Verb = "PUT"
	VerbPost   Verb = "POST"
	VerbPatch  Verb = "PATCH"
	VerbDelete Verb = "DELETE"
	VerbHead   Verb = "HEAD"
)

// Valid reports whether v is one of the supported verbs, ignoring case.
func (v Verb) Valid() bool {
	switch Verb(strings.ToUpper(string(v))) {
	case VerbGet, VerbPut, VerbPost, VerbPatch, VerbDelete, VerbHead:
		return true
	}
	return false
}

// Method returns the uppercased wire method.
func (v Verb) Method() string {
	return strings.ToUpper(string(v))
}

// Request describes a single logical call independent of any transport.
//
// Query and Headers are optional; a zero Timeout means the transport default
// applies. Verb is only consulted by Client.Send, the verb-specific methods
// supply their own.
//
// A Request is treated as immutable: the client never writes to its maps.
type Request struct {
	Path    string
	Query   map[string]string
	Headers map[string]string
	Timeout time.Duration
	Verb    Verb
}

// NewRequest returns a Request for path with optional settings applied.
func NewRequest(path string, opts ...RequestOption) Request {
	r := Request{Path: path}
	for _, opt := range opts {
		if opt != nil {
			opt(&r)
		}
	}
	return r
}

// RequestOption configures a Request built with NewRequest.
type RequestOption func(*Request)

// WithQuery sets the query parameters.
func WithQuery(query map[string]string) RequestOption {
	return func(r *Request) { r.Query = query }
}

// WithRequestHeaders sets the per-call headers.
func WithRequestHeaders(headers map[string]string) RequestOption {
	return func(r *Request) { r.Headers = headers }
}

// WithRequestTimeout sets the per-call timeout.
func WithRequestTimeout(d time.Duration) RequestOption {
	return func(r *Request) { r.Timeout = d }
}

// WithVerb sets the verb used by Client.Send.
func WithVerb(v Verb) RequestOption {
	return func(r *Request) { r.Verb = v }
}
