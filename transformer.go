package networking

import (
	"context"
	"fmt"
	"time"
)

// PrerequestTransformer modifies a wire request before it is sent.
//
// Implementations must treat the incoming request as read-only and return a
// replacement (usually req.Clone() with changes applied). Transformers are
// shared by every call of a client and must be safe for concurrent use.
//
// Example:
//
//	// User agent setting
//	userAgent := networking.TransformerFunc(func(ctx context.Context, req *networking.WireRequest) (*networking.WireRequest, error) {
//	    r := req.Clone()
//	    r.Header.Set("User-Agent", "my-app/1.0")
//	    return r, nil
//	})
type PrerequestTransformer interface {
	Transform(ctx context.Context, req *WireRequest) (*WireRequest, error)
}

// TransformerFunc adapts a function to a PrerequestTransformer.
type TransformerFunc func(ctx context.Context, req *WireRequest) (*WireRequest, error)

// Transform implements PrerequestTransformer.
func (f TransformerFunc) Transform(ctx context.Context, req *WireRequest) (*WireRequest, error) {
	return f(ctx, req)
}

// AddHeadersTransformer sets a fixed set of headers, replacing existing values.
type AddHeadersTransformer struct {
	headers map[string]string
}

// NewAddHeadersTransformer copies headers into a new transformer.
func NewAddHeadersTransformer(headers map[string]string) *AddHeadersTransformer {
	h := make(map[string]string, len(headers))
	for k, v := range headers {
		h[k] = v
	}
	return &AddHeadersTransformer{headers: h}
}

// Transform implements PrerequestTransformer.
func (t *AddHeadersTransformer) Transform(_ context.Context, req *WireRequest) (*WireRequest, error) {
	r := req.Clone()
	for k, v := range t.headers {
		r.Header.Set(k, v)
	}
	return r, nil
}

// ContentTypeTransformer sets Content-Type on requests that carry a body and
// do not declare one yet.
type ContentTypeTransformer struct {
	ContentType string
}

// Transform implements PrerequestTransformer.
func (t ContentTypeTransformer) Transform(_ context.Context, req *WireRequest) (*WireRequest, error) {
	if t.ContentType == "" || len(req.Body) == 0 || req.Header.Get("Content-Type") != "" {
		return req, nil
	}
	r := req.Clone()
	r.Header.Set("Content-Type", t.ContentType)
	return r, nil
}

// DefaultTimeoutTransformer gives requests without their own timeout a
// client-wide one.
type DefaultTimeoutTransformer struct {
	Timeout time.Duration
}

// Transform implements PrerequestTransformer.
func (t DefaultTimeoutTransformer) Transform(_ context.Context, req *WireRequest) (*WireRequest, error) {
	if t.Timeout <= 0 || req.Timeout > 0 {
		return req, nil
	}
	r := req.Clone()
	r.Timeout = t.Timeout
	return r, nil
}

// transformChain runs transformers strictly in order, feeding each one the
// previous output. The first failure stops the chain and is returned as a
// TransformError; cancellation of ctx is checked before every step.
func transformChain(ctx context.Context, req *WireRequest, transformers []PrerequestTransformer) (*WireRequest, error) {
	current := req
	for i, t := range transformers {
		if err := ctx.Err(); err != nil {
			return nil, &TransformError{Cause: err}
		}
		next, err := t.Transform(ctx, current)
		if err != nil {
			return nil, &TransformError{Cause: err}
		}
		if next == nil {
			return nil, &TransformError{Cause: fmt.Errorf("transformer %d (%T) returned a nil request", i, t)}
		}
		current = next
	}
	if err := ctx.Err(); err != nil {
		return nil, &TransformError{Cause: err}
	}
	return current, nil
}
