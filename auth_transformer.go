package networking

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// AccessTokenProvider supplies bearer tokens for outgoing requests.
// Token may block (for example on a token endpoint round trip) and should
// honour ctx cancellation.
type AccessTokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// AccessTokenProviderFunc adapts a function to an AccessTokenProvider.
type AccessTokenProviderFunc func(ctx context.Context) (string, error)

// Token implements AccessTokenProvider.
func (f AccessTokenProviderFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}

// AuthTokenTransformer sets "Authorization: Bearer <token>" using a token
// obtained from its provider on every call.
type AuthTokenTransformer struct {
	provider AccessTokenProvider
}

// NewAuthTokenTransformer returns a transformer backed by provider.
func NewAuthTokenTransformer(provider AccessTokenProvider) *AuthTokenTransformer {
	return &AuthTokenTransformer{provider: provider}
}

// Transform implements PrerequestTransformer.
func (t *AuthTokenTransformer) Transform(ctx context.Context, req *WireRequest) (*WireRequest, error) {
	if t.provider == nil {
		return nil, ErrNoTokenAvailable
	}
	token, err := t.provider.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoTokenAvailable, err)
	}
	if strings.TrimSpace(token) == "" {
		return nil, ErrNoTokenAvailable
	}
	r := req.Clone()
	r.Header.Set("Authorization", "Bearer "+token)
	return r, nil
}

// RequestIDHeader is the header set by RequestIDTransformer.
const RequestIDHeader = "X-Request-ID"

// RequestIDTransformer tags each request with a time-ordered UUID unless the
// request already carries one.
type RequestIDTransformer struct{}

// Transform implements PrerequestTransformer.
func (RequestIDTransformer) Transform(_ context.Context, req *WireRequest) (*WireRequest, error) {
	if req.Header.Get(RequestIDHeader) != "" {
		return req, nil
	}
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	r := req.Clone()
	r.Header.Set(RequestIDHeader, id.String())
	return r, nil
}
