package networking

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/multierr"
)

// Feeder populates a configuration struct from some source.
type Feeder interface {
	Feed(target any) error
}

// ComplexFeeder can also populate a struct stored under a named key.
type ComplexFeeder interface {
	Feeder
	FeedKey(key string, target any) error
}

// ConfigValidator is implemented by configuration structs that validate
// themselves beyond `required` tags. ValidateConfig calls it after defaults
// have been applied.
type ConfigValidator interface {
	Validate() error
}

// Config is the file/env driven description of a Client.
//
//	base_url: https://api.example.com/v1
//	timeout: 10s
//	default_headers:
//	  Accept: application/json
type Config struct {
	// BaseURL every request path is resolved against.
	BaseURL string `yaml:"base_url" json:"base_url" toml:"base_url" env:"BASE_URL" required:"true" desc:"Base URL every request path is resolved against"`

	// Timeout applied to requests that do not carry their own. Zero keeps
	// the transport default.
	Timeout time.Duration `yaml:"timeout" json:"timeout" toml:"timeout" env:"TIMEOUT" desc:"Default per-request timeout"`

	// DefaultHeaders are added to every request after all registered
	// transformers have run.
	DefaultHeaders map[string]string `yaml:"default_headers" json:"default_headers" toml:"default_headers" desc:"Headers added to every request"`

	AllowedStatusMin int `yaml:"allowed_status_min" json:"allowed_status_min" toml:"allowed_status_min" env:"ALLOWED_STATUS_MIN" default:"200" desc:"Lowest accepted status code"`
	AllowedStatusMax int `yaml:"allowed_status_max" json:"allowed_status_max" toml:"allowed_status_max" env:"ALLOWED_STATUS_MAX" default:"299" desc:"Highest accepted status code"`

	// Verbose enables request and response dumps in transports that support it.
	Verbose bool `yaml:"verbose" json:"verbose" toml:"verbose" env:"VERBOSE" default:"false" desc:"Log request and response dumps"`
}

// StatusRange returns the configured allowed status range.
func (c *Config) StatusRange() StatusRange {
	return StatusRange{Min: c.AllowedStatusMin, Max: c.AllowedStatusMax}
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var err error

	if c.BaseURL == "" {
		err = multierr.Append(err, ErrBaseURLRequired)
	} else if _, parseErr := parseBaseURL(c.BaseURL); parseErr != nil {
		err = multierr.Append(err, parseErr)
	}

	if c.Timeout < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: timeout must not be negative, got %s", ErrConfigInvalid, c.Timeout))
	}

	if rangeErr := c.StatusRange().Validate(); rangeErr != nil {
		err = multierr.Append(err, rangeErr)
	}

	for name := range c.DefaultHeaders {
		if name == "" {
			err = multierr.Append(err, fmt.Errorf("%w: default header name is empty", ErrConfigInvalid))
		}
	}

	return err
}

// UnmarshalJSON accepts Timeout either as a duration string ("10s") or as
// a number of nanoseconds.
func (c *Config) UnmarshalJSON(data []byte) error {
	type plain Config
	aux := struct {
		*plain
		Timeout any `json:"timeout"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	switch v := aux.Timeout.(type) {
	case nil:
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: timeout: %w", ErrConfigInvalid, err)
		}
		c.Timeout = d
	case float64:
		c.Timeout = time.Duration(v)
	default:
		return fmt.Errorf("%w: timeout has type %T", ErrConfigInvalid, v)
	}
	return nil
}

// LoadConfig feeds a Config from feeders in order, so later feeders override
// earlier ones, then applies defaults and validates the result.
func LoadConfig(feeders ...Feeder) (*Config, error) {
	cfg := &Config{}
	for _, f := range feeders {
		if err := f.Feed(cfg); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfigFeederError, err)
		}
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q needs a scheme and a host", ErrInvalidBaseURL, raw)
	}
	return u, nil
}
