package networking

import (
	"fmt"
	"maps"
	"net/url"
	"time"
)

// Option represents a functional option for configuring clients
type Option func(*ClientBuilder) error

// ClientBuilder collects the configuration of a Client. Only the base URL is
// mandatory; everything else has a default:
//
//   - JSON request and response codecs
//   - a net/http transport over a private clone of http.DefaultTransport
//   - allowed status codes 200...299
//   - a no-op logger
type ClientBuilder struct {
	baseURL      *url.URL
	encoder      BodyEncoder
	decoder      BodyDecoder
	transport    TransportClient
	transformers []PrerequestTransformer
	processors   []ResponseProcessor
	headers      map[string]string
	statusRange  StatusRange
	timeout      time.Duration
	logger       Logger
	observers    []registeredObserver
	err          error
}

// NewClientBuilder creates a new client builder that can be used to
// configure and construct clients step by step.
func NewClientBuilder() *ClientBuilder {
	return &ClientBuilder{
		headers:     make(map[string]string),
		statusRange: DefaultStatusRange,
	}
}

// NewClient creates a new client with the provided options.
func NewClient(opts ...Option) (*Client, error) {
	b := NewClientBuilder()
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	return b.Build()
}

// WithOption applies opt. The first failing option is reported by Build.
func (b *ClientBuilder) WithOption(opt Option) *ClientBuilder {
	if b.err != nil {
		return b
	}
	if err := opt(b); err != nil {
		b.err = err
	}
	return b
}

// Build constructs the client. Default headers are folded into the
// transformer chain after every explicitly registered transformer, and the
// status range check is appended after every registered processor.
func (b *ClientBuilder) Build() (*Client, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.baseURL == nil {
		return nil, ErrBaseURLRequired
	}
	if err := b.statusRange.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		baseURL:     b.baseURL,
		encoder:     b.encoder,
		decoder:     b.decoder,
		transport:   b.transport,
		statusRange: b.statusRange,
		logger:      b.logger,
		observers:   append([]registeredObserver(nil), b.observers...),
	}
	if c.encoder == nil {
		c.encoder = JSONCodec{}
	}
	if c.decoder == nil {
		c.decoder = JSONCodec{}
	}
	if c.transport == nil {
		c.transport = NewHTTPTransport(nil)
	}
	if c.logger == nil {
		c.logger = NopLogger()
	}

	c.transformers = make([]PrerequestTransformer, 0, len(b.transformers)+2)
	c.transformers = append(c.transformers, b.transformers...)
	if b.timeout > 0 {
		c.transformers = append(c.transformers, DefaultTimeoutTransformer{Timeout: b.timeout})
	}
	if len(b.headers) > 0 {
		c.transformers = append(c.transformers, NewAddHeadersTransformer(b.headers))
	}

	c.processors = make([]ResponseProcessor, 0, len(b.processors)+1)
	c.processors = append(c.processors, b.processors...)
	c.processors = append(c.processors, AllowedStatusRangeProcessor{Range: b.statusRange})

	c.logger.Debug("Built networking client",
		"baseURL", c.baseURL.String(),
		"transformers", len(c.transformers),
		"processors", len(c.processors),
		"allowedStatus", c.statusRange.String(),
	)
	return c, nil
}

// WithBaseURL sets the URL every request path is resolved against. It must
// carry a scheme and a host.
func WithBaseURL(raw string) Option {
	return func(b *ClientBuilder) error {
		u, err := parseBaseURL(raw)
		if err != nil {
			return err
		}
		b.baseURL = u
		return nil
	}
}

// WithConfig applies a Config: base URL, default headers, status range and
// default timeout. cfg is validated on a copy and left untouched.
func WithConfig(cfg *Config) Option {
	return func(b *ClientBuilder) error {
		if cfg == nil {
			return ErrConfigNil
		}
		c := *cfg
		c.DefaultHeaders = maps.Clone(cfg.DefaultHeaders)
		if err := ValidateConfig(&c); err != nil {
			return err
		}
		u, err := parseBaseURL(c.BaseURL)
		if err != nil {
			return err
		}
		b.baseURL = u
		maps.Copy(b.headers, c.DefaultHeaders)
		b.statusRange = c.StatusRange()
		b.timeout = c.Timeout
		return nil
	}
}

// WithEncoder sets the request body encoder.
func WithEncoder(enc BodyEncoder) Option {
	return func(b *ClientBuilder) error {
		if enc == nil {
			return fmt.Errorf("%w: encoder", ErrNilCodec)
		}
		b.encoder = enc
		return nil
	}
}

// WithDecoder sets the response body decoder.
func WithDecoder(dec BodyDecoder) Option {
	return func(b *ClientBuilder) error {
		if dec == nil {
			return fmt.Errorf("%w: decoder", ErrNilCodec)
		}
		b.decoder = dec
		return nil
	}
}

// WithCodec sets both the encoder and the decoder.
func WithCodec(codec Codec) Option {
	return func(b *ClientBuilder) error {
		if codec == nil {
			return ErrNilCodec
		}
		b.encoder = codec
		b.decoder = codec
		return nil
	}
}

// WithJSONCodec uses codec for both directions.
func WithJSONCodec(codec JSONCodec) Option {
	return WithCodec(codec)
}

// WithTransport sets the transport that performs the exchange.
func WithTransport(t TransportClient) Option {
	return func(b *ClientBuilder) error {
		if t == nil {
			return ErrNilTransport
		}
		b.transport = t
		return nil
	}
}

// WithPrerequestTransformer appends transformers to the chain in order.
func WithPrerequestTransformer(transformers ...PrerequestTransformer) Option {
	return func(b *ClientBuilder) error {
		for i, t := range transformers {
			if t == nil {
				return fmt.Errorf("%w: position %d", ErrNilTransformer, i)
			}
		}
		b.transformers = append(b.transformers, transformers...)
		return nil
	}
}

// WithAuthTokenProvider appends an AuthTokenTransformer backed by provider.
func WithAuthTokenProvider(provider AccessTokenProvider) Option {
	return func(b *ClientBuilder) error {
		if provider == nil {
			return fmt.Errorf("%w: token provider", ErrNilTransformer)
		}
		b.transformers = append(b.transformers, NewAuthTokenTransformer(provider))
		return nil
	}
}

// WithResponseProcessor appends processors to the chain in order. The status
// range check always runs after them.
func WithResponseProcessor(processors ...ResponseProcessor) Option {
	return func(b *ClientBuilder) error {
		for i, p := range processors {
			if p == nil {
				return fmt.Errorf("%w: position %d", ErrNilProcessor, i)
			}
		}
		b.processors = append(b.processors, processors...)
		return nil
	}
}

// WithHeaders adds default headers sent with every request. Later calls
// override earlier values of the same header.
func WithHeaders(headers map[string]string) Option {
	return func(b *ClientBuilder) error {
		maps.Copy(b.headers, headers)
		return nil
	}
}

// WithAllowedStatusCodes sets the closed range of accepted status codes.
func WithAllowedStatusCodes(minCode, maxCode int) Option {
	return func(b *ClientBuilder) error {
		r := StatusRange{Min: minCode, Max: maxCode}
		if err := r.Validate(); err != nil {
			return err
		}
		b.statusRange = r
		return nil
	}
}

// WithTimeout sets the timeout of requests that do not carry their own.
func WithTimeout(d time.Duration) Option {
	return func(b *ClientBuilder) error {
		b.timeout = d
		return nil
	}
}

// WithLogger sets the logger for the client
func WithLogger(logger Logger) Option {
	return func(b *ClientBuilder) error {
		b.logger = logger
		return nil
	}
}

// WithObserver registers observer for the given event types, or for every
// event when none are given.
func WithObserver(observer Observer, eventTypes ...string) Option {
	return func(b *ClientBuilder) error {
		if observer == nil {
			return nil
		}
		reg := registeredObserver{observer: observer}
		if len(eventTypes) > 0 {
			reg.eventTypes = make(map[string]struct{}, len(eventTypes))
			for _, et := range eventTypes {
				reg.eventTypes[et] = struct{}{}
			}
		}
		b.observers = append(b.observers, reg)
		return nil
	}
}
