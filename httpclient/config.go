package httpclient

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrLogFilePathRequired is returned when log_to_file is enabled but log_file_path is not specified
	ErrLogFilePathRequired = errors.New("log_file_path must be specified when log_to_file is enabled")
)

// Config tunes the *http.Client behind a Transport: connection pooling,
// timeouts and verbose logging.
//
// Example YAML configuration:
//
//	max_idle_conns: 200
//	max_idle_conns_per_host: 20
//	idle_conn_timeout: 120s
//	request_timeout: 60s
//	tls_timeout: 15s
//	force_http2: true
//	verbose: true
//	verbose_options:
//	  log_headers: true
//	  log_body: true
//	  max_body_log_size: 1024
//
// Example environment variables:
//
//	HTTPCLIENT_MAX_IDLE_CONNS=200
//	HTTPCLIENT_REQUEST_TIMEOUT=60s
//	HTTPCLIENT_VERBOSE=true
type Config struct {
	// MaxIdleConns controls the maximum number of idle (keep-alive) connections across all hosts.
	// Default: 100
	MaxIdleConns int `yaml:"max_idle_conns" json:"max_idle_conns" toml:"max_idle_conns" env:"MAX_IDLE_CONNS"`

	// MaxIdleConnsPerHost controls the maximum idle (keep-alive) connections to keep per-host.
	// Default: 10
	MaxIdleConnsPerHost int `yaml:"max_idle_conns_per_host" json:"max_idle_conns_per_host" toml:"max_idle_conns_per_host" env:"MAX_IDLE_CONNS_PER_HOST"`

	// IdleConnTimeout is how long an idle connection stays in the pool.
	// Default: 90 seconds
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout" json:"idle_conn_timeout" toml:"idle_conn_timeout" env:"IDLE_CONN_TIMEOUT"`

	// RequestTimeout bounds a whole exchange, redirects and body included.
	// A per-request timeout on the wire request still applies on top of it.
	// Default: 30 seconds
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout" toml:"request_timeout" env:"REQUEST_TIMEOUT"`

	// TLSTimeout is the maximum time waiting for TLS handshake.
	// Default: 10 seconds
	TLSTimeout time.Duration `yaml:"tls_timeout" json:"tls_timeout" toml:"tls_timeout" env:"TLS_TIMEOUT"`

	// DisableCompression disables transparent gzip handling.
	DisableCompression bool `yaml:"disable_compression" json:"disable_compression" toml:"disable_compression" env:"DISABLE_COMPRESSION"`

	// DisableKeepAlives uses every connection for a single request only.
	DisableKeepAlives bool `yaml:"disable_keep_alives" json:"disable_keep_alives" toml:"disable_keep_alives" env:"DISABLE_KEEP_ALIVES"`

	// ForceHTTP2 configures the transport for HTTP/2 over TLS even when a
	// custom TLS configuration would otherwise disable it.
	ForceHTTP2 bool `yaml:"force_http2" json:"force_http2" toml:"force_http2" env:"FORCE_HTTP2"`

	// Verbose enables detailed logging of requests and responses.
	Verbose bool `yaml:"verbose" json:"verbose" toml:"verbose" env:"VERBOSE"`

	// VerboseOptions configures the behavior when Verbose is enabled.
	VerboseOptions *VerboseOptions `yaml:"verbose_options" json:"verbose_options" toml:"verbose_options"`
}

// VerboseOptions configures the behavior of verbose logging.
type VerboseOptions struct {
	// LogHeaders includes request and response headers in the dumps.
	// Credentials are masked before they are logged.
	LogHeaders bool `yaml:"log_headers" json:"log_headers" toml:"log_headers" env:"LOG_HEADERS"`

	// LogBody includes request and response bodies in the dumps.
	LogBody bool `yaml:"log_body" json:"log_body" toml:"log_body" env:"LOG_BODY"`

	// MaxBodyLogSize truncates dumps larger than this many bytes. Zero means no limit.
	MaxBodyLogSize int `yaml:"max_body_log_size" json:"max_body_log_size" toml:"max_body_log_size" env:"MAX_BODY_LOG_SIZE"`

	// LogToFile writes each transaction to its own file under LogFilePath
	// instead of the logger.
	LogToFile bool `yaml:"log_to_file" json:"log_to_file" toml:"log_to_file" env:"LOG_TO_FILE"`

	// LogFilePath is the directory transaction files are written to.
	LogFilePath string `yaml:"log_file_path" json:"log_file_path" toml:"log_file_path" env:"LOG_FILE_PATH"`
}

// Validate checks the configuration values and sets sensible defaults.
func (c *Config) Validate() error {
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = 100
	}
	if c.MaxIdleConnsPerHost <= 0 {
		c.MaxIdleConnsPerHost = 10
	}
	if c.IdleConnTimeout == 0 {
		c.IdleConnTimeout = 90 * time.Second
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 30 * time.Second
	}
	if c.TLSTimeout == 0 {
		c.TLSTimeout = 10 * time.Second
	}

	if c.Verbose && c.VerboseOptions == nil {
		c.VerboseOptions = &VerboseOptions{
			LogHeaders:     true,
			LogBody:        true,
			MaxBodyLogSize: 10000,
		}
	}

	if c.Verbose && c.VerboseOptions.LogToFile && c.VerboseOptions.LogFilePath == "" {
		return fmt.Errorf("config validation error: %w", ErrLogFilePathRequired)
	}

	return nil
}
