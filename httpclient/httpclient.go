// Package httpclient builds tuned net/http transports for the networking
// client.
//
// It offers connection pool and timeout tuning, optional HTTP/2 enforcement
// and verbose request/response logging, either through the logger or into
// per-transaction files.
//
//	cfg := &httpclient.Config{RequestTimeout: 10 * time.Second, Verbose: true}
//	transport, err := httpclient.New(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	defer transport.Close()
//
//	client, err := networking.NewClient(
//	    networking.WithBaseURL("https://api.example.com"),
//	    networking.WithTransport(transport),
//	)
package httpclient

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/net/http2"

	"github.com/GoCodeAlone/networking"
)

// Transport is a networking.TransportClient over a tuned *http.Client.
// It is safe for concurrent use.
type Transport struct {
	*networking.HTTPTransport
	config     *Config
	base       *http.Transport
	fileLogger *FileLogger
	logger     networking.Logger
}

var _ networking.TransportClient = (*Transport)(nil)

// New validates cfg, applying defaults, and builds the transport. A nil cfg
// uses the defaults; a nil logger discards everything.
func New(cfg *Config, logger networking.Logger) (*Transport, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if logger == nil {
		logger = networking.NopLogger()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		TLSHandshakeTimeout: cfg.TLSTimeout,
		DisableCompression:  cfg.DisableCompression,
		DisableKeepAlives:   cfg.DisableKeepAlives,
		ForceAttemptHTTP2:   true,
	}
	if cfg.ForceHTTP2 {
		if err := http2.ConfigureTransport(base); err != nil {
			return nil, fmt.Errorf("failed to configure http2 transport: %w", err)
		}
	}

	t := &Transport{
		config: cfg,
		base:   base,
		logger: logger,
	}

	var rt http.RoundTripper = base
	if cfg.Verbose {
		if cfg.VerboseOptions.LogToFile {
			fileLogger, err := NewFileLogger(cfg.VerboseOptions.LogFilePath)
			if err != nil {
				logger.Error("Failed to create file logger",
					"path", cfg.VerboseOptions.LogFilePath,
					"error", err,
				)
			} else {
				t.fileLogger = fileLogger
				logger.Info("HTTP client file logging enabled", "path", fileLogger.Dir())
			}
		}
		rt = &loggingTransport{
			transport:      base,
			logger:         logger,
			fileLogger:     t.fileLogger,
			logHeaders:     cfg.VerboseOptions.LogHeaders,
			logBody:        cfg.VerboseOptions.LogBody,
			maxBodyLogSize: cfg.VerboseOptions.MaxBodyLogSize,
		}
	}

	t.HTTPTransport = networking.NewHTTPTransport(&http.Client{
		Transport: rt,
		Timeout:   cfg.RequestTimeout,
	})

	logger.Debug("HTTP client transport created",
		"maxIdleConns", cfg.MaxIdleConns,
		"requestTimeout", cfg.RequestTimeout,
		"forceHTTP2", cfg.ForceHTTP2,
		"verbose", cfg.Verbose,
	)
	return t, nil
}

// Send implements networking.TransportClient.
func (t *Transport) Send(ctx context.Context, req *networking.WireRequest) (*networking.RawResponse, error) {
	return t.HTTPTransport.Send(ctx, req)
}

// Config returns the validated configuration the transport was built from.
func (t *Transport) Config() Config {
	return *t.config
}

// Close releases idle connections.
func (t *Transport) Close() error {
	t.base.CloseIdleConnections()
	t.logger.Debug("HTTP client transport closed")
	return nil
}
