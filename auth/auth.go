// Package auth provides token providers and credential transformers for the
// networking client.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/GoCodeAlone/networking"
)

// Auth package errors
var (
	ErrInvalidConfig  = errors.New("invalid auth configuration")
	ErrOAuth2Failed   = errors.New("oauth2 token request failed")
	ErrAPIKeyRequired = errors.New("api key is required")
)

// StaticTokenProvider always returns the same token. An empty token yields
// networking.ErrNoTokenAvailable.
type StaticTokenProvider string

// Token implements networking.AccessTokenProvider.
func (p StaticTokenProvider) Token(context.Context) (string, error) {
	if p == "" {
		return "", networking.ErrNoTokenAvailable
	}
	return string(p), nil
}

// OAuth2TokenProvider adapts an oauth2.TokenSource. Tokens are cached and
// refreshed by the source.
type OAuth2TokenProvider struct {
	source oauth2.TokenSource
}

// NewOAuth2TokenProvider wraps source in an oauth2.ReuseTokenSource so a
// valid token is only fetched once.
func NewOAuth2TokenProvider(source oauth2.TokenSource) *OAuth2TokenProvider {
	return &OAuth2TokenProvider{source: oauth2.ReuseTokenSource(nil, source)}
}

// Token implements networking.AccessTokenProvider.
func (p *OAuth2TokenProvider) Token(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	tok, err := p.source.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrOAuth2Failed, err)
	}
	if tok == nil || tok.AccessToken == "" {
		return "", networking.ErrNoTokenAvailable
	}
	return tok.AccessToken, nil
}

// ClientCredentialsConfig describes an OAuth2 client credentials grant.
type ClientCredentialsConfig struct {
	ClientID     string   `yaml:"client_id" json:"client_id" toml:"client_id" env:"CLIENT_ID"`
	ClientSecret string   `yaml:"client_secret" json:"client_secret" toml:"client_secret" env:"CLIENT_SECRET"`
	TokenURL     string   `yaml:"token_url" json:"token_url" toml:"token_url" env:"TOKEN_URL"`
	Scopes       []string `yaml:"scopes" json:"scopes" toml:"scopes"`
}

// Enabled reports whether any credential has been configured.
func (c *ClientCredentialsConfig) Enabled() bool {
	return c.ClientID != "" || c.ClientSecret != "" || c.TokenURL != ""
}

// Validate reports every missing field at once.
func (c *ClientCredentialsConfig) Validate() error {
	var err error
	if c.ClientID == "" {
		err = multierr.Append(err, fmt.Errorf("%w: client_id is required", ErrInvalidConfig))
	}
	if c.ClientSecret == "" {
		err = multierr.Append(err, fmt.Errorf("%w: client_secret is required", ErrInvalidConfig))
	}
	if c.TokenURL == "" {
		err = multierr.Append(err, fmt.Errorf("%w: token_url is required", ErrInvalidConfig))
	}
	return err
}

// NewClientCredentialsProvider returns a provider running the client
// credentials grant described by cfg. ctx is used for token requests and may
// carry an *http.Client under oauth2.HTTPClient.
func NewClientCredentialsProvider(ctx context.Context, cfg ClientCredentialsConfig) (*OAuth2TokenProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		Scopes:       cfg.Scopes,
	}
	return NewOAuth2TokenProvider(cc.TokenSource(ctx)), nil
}

// APIKeyTransformer sends a static API key in a header. With the
// Authorization header a scheme may be given, e.g. "ApiKey".
type APIKeyTransformer struct {
	Header string
	Scheme string
	Key    string
}

// NewAPIKeyTransformer returns a transformer setting header to key.
func NewAPIKeyTransformer(header, key string) (*APIKeyTransformer, error) {
	if key == "" {
		return nil, ErrAPIKeyRequired
	}
	if header == "" {
		header = "X-API-Key"
	}
	return &APIKeyTransformer{Header: header, Key: key}, nil
}

// Transform implements networking.PrerequestTransformer.
func (t *APIKeyTransformer) Transform(_ context.Context, req *networking.WireRequest) (*networking.WireRequest, error) {
	if t.Key == "" {
		return nil, ErrAPIKeyRequired
	}
	value := t.Key
	if t.Scheme != "" {
		value = strings.TrimSpace(t.Scheme) + " " + t.Key
	}
	r := req.Clone()
	r.Header.Set(t.Header, value)
	return r, nil
}

var (
	_ networking.AccessTokenProvider   = StaticTokenProvider("")
	_ networking.AccessTokenProvider   = (*OAuth2TokenProvider)(nil)
	_ networking.PrerequestTransformer = (*APIKeyTransformer)(nil)
)
