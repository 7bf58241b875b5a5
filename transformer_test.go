package networking

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWire(t *testing.T) *WireRequest {
	t.Helper()
	wire, err := buildWireRequest(mustParseURL(t, "https://api.example.com"), Request{Path: "items"}, VerbGet)
	require.NoError(t, err)
	return wire
}

// stepTransformer records that it ran and tags the request with its index.
func stepTransformer(i int, ran *[]int, fail bool) PrerequestTransformer {
	return TransformerFunc(func(_ context.Context, req *WireRequest) (*WireRequest, error) {
		*ran = append(*ran, i)
		if fail {
			return nil, fmt.Errorf("step %d failed", i)
		}
		r := req.Clone()
		r.Header.Add("X-Step", strconv.Itoa(i))
		return r, nil
	})
}

func TestTransformChain_RunsInOrder(t *testing.T) {
	var ran []int
	chain := []PrerequestTransformer{
		stepTransformer(0, &ran, false),
		stepTransformer(1, &ran, false),
		stepTransformer(2, &ran, false),
	}

	out, err := transformChain(context.Background(), newWire(t), chain)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, ran)
	assert.Equal(t, []string{"0", "1", "2"}, out.Header.Values("X-Step"))
}

func TestTransformChain_StopsAtFirstFailure(t *testing.T) {
	const n = 5
	for k := 0; k < n; k++ {
		t.Run(fmt.Sprintf("failing step %d", k), func(t *testing.T) {
			var ran []int
			chain := make([]PrerequestTransformer, n)
			for i := range chain {
				chain[i] = stepTransformer(i, &ran, i == k)
			}

			out, err := transformChain(context.Background(), newWire(t), chain)
			assert.Nil(t, out)
			require.ErrorIs(t, err, ErrTransform)

			var te *TransformError
			require.ErrorAs(t, err, &te)
			assert.EqualError(t, te.Cause, fmt.Sprintf("step %d failed", k))

			want := make([]int, 0, k+1)
			for i := 0; i <= k; i++ {
				want = append(want, i)
			}
			assert.Equal(t, want, ran, "steps after the failing one must not run")
		})
	}
}

func TestTransformChain_DoesNotMutateInput(t *testing.T) {
	wire := newWire(t)
	var ran []int
	_, err := transformChain(context.Background(), wire, []PrerequestTransformer{stepTransformer(0, &ran, false)})
	require.NoError(t, err)
	assert.Empty(t, wire.Header.Values("X-Step"))
}

func TestTransformChain_NilRequestIsAnError(t *testing.T) {
	nilStep := TransformerFunc(func(context.Context, *WireRequest) (*WireRequest, error) {
		return nil, nil
	})
	_, err := transformChain(context.Background(), newWire(t), []PrerequestTransformer{nilStep})
	require.ErrorIs(t, err, ErrTransform)
	assert.Contains(t, err.Error(), "nil request")
}

func TestTransformChain_Cancellation(t *testing.T) {
	t.Run("cancelled before the first step", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		var ran []int

		_, err := transformChain(ctx, newWire(t), []PrerequestTransformer{stepTransformer(0, &ran, false)})
		require.ErrorIs(t, err, ErrTransform)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, ran)
	})

	t.Run("cancelled by a step", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		var ran []int
		cancelling := TransformerFunc(func(_ context.Context, req *WireRequest) (*WireRequest, error) {
			cancel()
			return req, nil
		})

		_, err := transformChain(ctx, newWire(t), []PrerequestTransformer{cancelling, stepTransformer(1, &ran, false)})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, ran)
	})
}

func TestAddHeadersTransformer(t *testing.T) {
	headers := map[string]string{"X-Env": "prod", "Accept": "application/json"}
	tr := NewAddHeadersTransformer(headers)
	headers["X-Env"] = "changed after construction"

	wire := newWire(t)
	wire.Header.Set("Accept", "text/plain")

	out, err := tr.Transform(context.Background(), wire)
	require.NoError(t, err)
	assert.Equal(t, "prod", out.Header.Get("X-Env"))
	assert.Equal(t, []string{"application/json"}, out.Header.Values("Accept"), "existing values are replaced")
	assert.Equal(t, "text/plain", wire.Header.Get("Accept"))
}

func TestContentTypeTransformer(t *testing.T) {
	tr := ContentTypeTransformer{ContentType: "application/json"}

	t.Run("no body", func(t *testing.T) {
		out, err := tr.Transform(context.Background(), newWire(t))
		require.NoError(t, err)
		assert.Empty(t, out.Header.Get("Content-Type"))
	})

	t.Run("body without content type", func(t *testing.T) {
		wire := newWire(t)
		wire.Body = []byte(`{}`)
		out, err := tr.Transform(context.Background(), wire)
		require.NoError(t, err)
		assert.Equal(t, "application/json", out.Header.Get("Content-Type"))
	})

	t.Run("explicit content type wins", func(t *testing.T) {
		wire := newWire(t)
		wire.Body = []byte(`<a/>`)
		wire.Header.Set("Content-Type", "application/xml")
		out, err := tr.Transform(context.Background(), wire)
		require.NoError(t, err)
		assert.Equal(t, "application/xml", out.Header.Get("Content-Type"))
	})
}

func TestDefaultTimeoutTransformer(t *testing.T) {
	tr := DefaultTimeoutTransformer{Timeout: 5 * time.Second}

	out, err := tr.Transform(context.Background(), newWire(t))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, out.Timeout)

	wire := newWire(t)
	wire.Timeout = time.Second
	out, err = tr.Transform(context.Background(), wire)
	require.NoError(t, err)
	assert.Equal(t, time.Second, out.Timeout, "per-request timeout is kept")

	out, err = DefaultTimeoutTransformer{}.Transform(context.Background(), newWire(t))
	require.NoError(t, err)
	assert.Zero(t, out.Timeout)
}

func TestAuthTokenTransformer(t *testing.T) {
	errUpstream := errors.New("token endpoint unreachable")

	tests := []struct {
		name      string
		provider  AccessTokenProvider
		wantAuth  string
		wantError bool
	}{
		{
			name:     "token is sent as bearer",
			provider: AccessTokenProviderFunc(func(context.Context) (string, error) { return "abc123", nil }),
			wantAuth: "Bearer abc123",
		},
		{
			name:      "empty token",
			provider:  AccessTokenProviderFunc(func(context.Context) (string, error) { return "  ", nil }),
			wantError: true,
		},
		{
			name:      "provider failure",
			provider:  AccessTokenProviderFunc(func(context.Context) (string, error) { return "", errUpstream }),
			wantError: true,
		},
		{
			name:      "nil provider",
			provider:  nil,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NewAuthTokenTransformer(tt.provider).Transform(context.Background(), newWire(t))
			if tt.wantError {
				require.ErrorIs(t, err, ErrNoTokenAvailable)
				assert.Nil(t, out)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAuth, out.Header.Get("Authorization"))
		})
	}
}

func TestAuthTokenTransformer_ProviderCauseIsKept(t *testing.T) {
	errUpstream := errors.New("token endpoint unreachable")
	tr := NewAuthTokenTransformer(AccessTokenProviderFunc(func(context.Context) (string, error) { return "", errUpstream }))

	_, err := transformChain(context.Background(), newWire(t), []PrerequestTransformer{tr})
	assert.ErrorIs(t, err, ErrTransform)
	assert.ErrorIs(t, err, ErrNoTokenAvailable)
	assert.ErrorIs(t, err, errUpstream)
}

func TestRequestIDTransformer(t *testing.T) {
	out, err := RequestIDTransformer{}.Transform(context.Background(), newWire(t))
	require.NoError(t, err)
	id, err := uuid.Parse(out.Header.Get(RequestIDHeader))
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())

	wire := newWire(t)
	wire.Header.Set(RequestIDHeader, "caller-chosen")
	out, err = RequestIDTransformer{}.Transform(context.Background(), wire)
	require.NoError(t, err)
	assert.Equal(t, "caller-chosen", out.Header.Get(RequestIDHeader))
}
