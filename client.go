package networking

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"
)

var errNilRawResponse = errors.New("transport returned no response and no error")

// HTTPResponse is the low-level result of Client.Send.
type HTTPResponse struct {
	StatusCode int
	// Headers are the response headers with Location overlaid by the final
	// response URL.
	Headers map[string]string
	Body    []byte
}

// Client runs calls through the request pipeline:
//
//	encode input -> build wire request -> transformers -> transport
//	-> processors (status range last) -> decode output
//
// A Client is immutable once built and safe for concurrent use.
type Client struct {
	baseURL      *url.URL
	transport    TransportClient
	transformers []PrerequestTransformer
	processors   []ResponseProcessor
	encoder      BodyEncoder
	decoder      BodyDecoder
	statusRange  StatusRange
	logger       Logger
	observers    []registeredObserver
}

// BaseURL returns a copy of the URL every request path is resolved against.
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// AllowedStatusCodes returns the closed range of accepted status codes.
func (c *Client) AllowedStatusCodes() StatusRange {
	return c.statusRange
}

// Do performs req with verb. A non-nil input is encoded as the body. When
// output is non-nil the response body is decoded into it; a nil output skips
// decoding entirely.
//
// Every error returned belongs to the call taxonomy declared in errors.go.
func (c *Client) Do(ctx context.Context, req Request, verb Verb, input, output any) error {
	start := time.Now()
	raw, err := c.execute(ctx, req, verb, input)
	if err == nil && output != nil {
		if decErr := c.decoder.Decode(raw.Body, output); decErr != nil {
			err = &DecodeError{Cause: decErr}
		}
	}
	err = normalizeError(err)
	c.finish(ctx, verb.Method(), c.describeURL(req), start, raw, err)
	return err
}

// Get performs a GET call. See Do for the meaning of input and output.
func (c *Client) Get(ctx context.Context, req Request, input, output any) error {
	return c.Do(ctx, req, VerbGet, input, output)
}

// Put performs a PUT call. See Do for the meaning of input and output.
func (c *Client) Put(ctx context.Context, req Request, input, output any) error {
	return c.Do(ctx, req, VerbPut, input, output)
}

// Post performs a POST call. See Do for the meaning of input and output.
func (c *Client) Post(ctx context.Context, req Request, input, output any) error {
	return c.Do(ctx, req, VerbPost, input, output)
}

// Patch performs a PATCH call. See Do for the meaning of input and output.
func (c *Client) Patch(ctx context.Context, req Request, input, output any) error {
	return c.Do(ctx, req, VerbPatch, input, output)
}

// Delete performs a DELETE call. See Do for the meaning of input and output.
func (c *Client) Delete(ctx context.Context, req Request, input, output any) error {
	return c.Do(ctx, req, VerbDelete, input, output)
}

// Head performs a HEAD call. Responses to HEAD carry no body, so output is
// normally nil.
func (c *Client) Head(ctx context.Context, req Request, input, output any) error {
	return c.Do(ctx, req, VerbHead, input, output)
}

// Call performs req with verb and decodes the response body into a T.
func Call[T any](ctx context.Context, c *Client, verb Verb, req Request, input any) (T, error) {
	var out T
	if err := c.Do(ctx, req, verb, input, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Send performs req with req.Verb and returns the raw envelope instead of a
// decoded value. A request without a verb fails with InvalidRequestError.
func (c *Client) Send(ctx context.Context, req Request, input any) (*HTTPResponse, error) {
	start := time.Now()
	if req.Verb == "" {
		err := &InvalidRequestError{Reason: "send " + req.Path, Cause: ErrMissingVerb}
		c.finish(ctx, "", c.describeURL(req), start, nil, err)
		return nil, err
	}

	raw, err := c.execute(ctx, req, req.Verb, input)
	err = normalizeError(err)
	c.finish(ctx, req.Verb.Method(), c.describeURL(req), start, raw, err)
	if err != nil {
		return nil, err
	}

	headers := make(map[string]string, len(raw.Header)+1)
	for k, v := range raw.Header {
		headers[k] = v
	}
	if raw.URL != nil {
		headers["Location"] = raw.URL.String()
	}
	return &HTTPResponse{
		StatusCode: raw.StatusCode,
		Headers:    headers,
		Body:       raw.Body,
	}, nil
}

// execute runs every stage up to and including response processing.
func (c *Client) execute(ctx context.Context, req Request, verb Verb, input any) (*RawResponse, error) {
	body, err := c.encoder.Encode(input)
	if err != nil {
		return nil, &UnknownError{Cause: fmt.Errorf("encode request body: %w", err)}
	}

	wire, err := buildWireRequest(c.baseURL, req, verb)
	if err != nil {
		return nil, err
	}
	wire.Body = body

	wire, err = transformChain(ctx, wire, c.chainFor(req))
	if err != nil {
		return nil, err
	}
	c.logger.Debug("Prepared request", "method", wire.Method, "url", wire.URL.String())
	c.emit(ctx, EventTypeRequestPrepared, CallEventData{Method: wire.Method, URL: wire.URL.String()})

	raw, err := c.transport.Send(ctx, wire)
	if err != nil {
		return nil, &TransportError{Cause: err}
	}
	if raw == nil {
		return nil, &TransportError{Cause: errNilRawResponse}
	}
	c.logger.Debug("Received response",
		"method", wire.Method,
		"url", wire.URL.String(),
		"status", raw.StatusCode,
		"content_length", len(raw.Body),
	)
	c.emit(ctx, EventTypeResponseReceived, CallEventData{
		Method:     wire.Method,
		URL:        wire.URL.String(),
		StatusCode: raw.StatusCode,
	})

	if err := processChain(ctx, raw.Body, raw, c.processors); err != nil {
		return raw, err
	}
	return raw, nil
}

// chainFor returns the transformer chain of one call: the implicit
// Content-Type step, the client transformers in registration order, then the
// per-call headers last so they win over client-level headers.
func (c *Client) chainFor(req Request) []PrerequestTransformer {
	chain := make([]PrerequestTransformer, 0, len(c.transformers)+2)
	chain = append(chain, ContentTypeTransformer{ContentType: c.encoder.ContentType()})
	chain = append(chain, c.transformers...)
	if len(req.Headers) > 0 {
		chain = append(chain, NewAddHeadersTransformer(req.Headers))
	}
	return chain
}

func (c *Client) describeURL(req Request) string {
	u, err := joinPath(c.baseURL, req.Path)
	if err != nil {
		return c.baseURL.String()
	}
	return u.String()
}

// finish logs the outcome of a call and emits the matching event.
func (c *Client) finish(ctx context.Context, method, url string, start time.Time, raw *RawResponse, err error) {
	duration := time.Since(start)
	data := CallEventData{
		Method:     method,
		URL:        url,
		DurationMS: duration.Milliseconds(),
	}
	if raw != nil {
		data.StatusCode = raw.StatusCode
	}
	if err != nil {
		data.Error = err.Error()
		c.logger.Warn("Call failed",
			"method", method,
			"url", url,
			"status", data.StatusCode,
			"duration_ms", data.DurationMS,
			"error", err,
		)
		c.emit(ctx, EventTypeCallFailed, data)
		return
	}
	c.logger.Debug("Call completed",
		"method", method,
		"url", url,
		"status", data.StatusCode,
		"duration_ms", data.DurationMS,
	)
	c.emit(ctx, EventTypeCallCompleted, data)
}

func (c *Client) emit(ctx context.Context, eventType string, data CallEventData) {
	if len(c.observers) == 0 {
		return
	}
	notifyObservers(ctx, c.logger, c.observers, NewCloudEvent(eventType, EventSource, data, nil))
}
