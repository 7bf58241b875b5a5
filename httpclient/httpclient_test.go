package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCodeAlone/networking"
)

type logEntry struct {
	level string
	msg   string
	args  []any
}

type testLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *testLogger) add(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, args: args})
}

func (l *testLogger) Info(msg string, args ...any)  { l.add("info", msg, args) }
func (l *testLogger) Error(msg string, args ...any) { l.add("error", msg, args) }
func (l *testLogger) Warn(msg string, args ...any)  { l.add("warn", msg, args) }
func (l *testLogger) Debug(msg string, args ...any) { l.add("debug", msg, args) }

func (l *testLogger) find(msg string) (logEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.msg == msg {
			return e, true
		}
	}
	return logEntry{}, false
}

func (e logEntry) arg(key string) any {
	for i := 0; i+1 < len(e.args); i += 2 {
		if e.args[i] == key {
			return e.args[i+1]
		}
	}
	return nil
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":`+chi.URLParam(r, "id")+`}`)
	})
	r.Post("/items", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write(body)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, srv *httptest.Server, transport *Transport, opts ...networking.Option) *networking.Client {
	t.Helper()
	all := append([]networking.Option{networking.WithBaseURL(srv.URL), networking.WithTransport(transport)}, opts...)
	client, err := networking.NewClient(all...)
	require.NoError(t, err)
	return client
}

func TestNew_Defaults(t *testing.T) {
	transport, err := New(nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = transport.Close() })

	cfg := transport.Config()
	assert.Equal(t, 100, cfg.MaxIdleConns)
	assert.Equal(t, 10, cfg.MaxIdleConnsPerHost)
	assert.Equal(t, 90*time.Second, cfg.IdleConnTimeout)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 10*time.Second, cfg.TLSTimeout)
	assert.Nil(t, cfg.VerboseOptions)

	assert.Equal(t, 30*time.Second, transport.Client().Timeout)
	assert.Same(t, transport.base, transport.Client().Transport)
}

func TestConfig_Validate(t *testing.T) {
	cfg := &Config{Verbose: true}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, &VerboseOptions{LogHeaders: true, LogBody: true, MaxBodyLogSize: 10000}, cfg.VerboseOptions)

	cfg = &Config{Verbose: true, VerboseOptions: &VerboseOptions{LogToFile: true}}
	assert.ErrorIs(t, cfg.Validate(), ErrLogFilePathRequired)

	_, err := New(&Config{Verbose: true, VerboseOptions: &VerboseOptions{LogToFile: true}}, nil)
	assert.ErrorIs(t, err, ErrLogFilePathRequired)
}

func TestNew_ForceHTTP2(t *testing.T) {
	transport, err := New(&Config{ForceHTTP2: true}, nil)
	require.NoError(t, err)
	assert.Contains(t, transport.base.TLSNextProto, "h2")
}

func TestTransport_Send(t *testing.T) {
	srv := newServer(t)
	transport, err := New(&Config{RequestTimeout: 5 * time.Second}, nil)
	require.NoError(t, err)

	var out struct {
		ID int `json:"id"`
	}
	client := newClient(t, srv, transport)
	require.NoError(t, client.Get(context.Background(), networking.NewRequest("items/42"), nil, &out))
	assert.Equal(t, 42, out.ID)
}

func TestTransport_VerboseLogsMaskedDumps(t *testing.T) {
	srv := newServer(t)
	logger := &testLogger{}
	transport, err := New(&Config{Verbose: true}, logger)
	require.NoError(t, err)

	client := newClient(t, srv, transport,
		networking.WithAuthTokenProvider(networking.AccessTokenProviderFunc(func(context.Context) (string, error) {
			return "super-secret-token", nil
		})),
		networking.WithPrerequestTransformer(networking.RequestIDTransformer{}),
	)
	_, err = client.Send(context.Background(),
		networking.NewRequest("items", networking.WithVerb(networking.VerbPost)),
		map[string]string{"name": "widget"},
	)
	require.NoError(t, err)

	out, ok := logger.find("Outgoing request")
	require.True(t, ok)
	details, _ := out.arg("details").(string)
	assert.Contains(t, details, "Authorization: Bearer [REDACTED]")
	assert.NotContains(t, details, "super-secret-token")
	assert.Contains(t, details, `{"name":"widget"}`)
	assert.NotEmpty(t, out.arg("id"))

	in, ok := logger.find("Received response")
	require.True(t, ok)
	assert.Equal(t, "201 Created", in.arg("response"))
	assert.Equal(t, out.arg("id"), in.arg("id"), "request and response share the request id")
}

func TestTransport_VerboseWithoutDetails(t *testing.T) {
	srv := newServer(t)
	logger := &testLogger{}
	transport, err := New(&Config{Verbose: true, VerboseOptions: &VerboseOptions{}}, logger)
	require.NoError(t, err)

	require.NoError(t, newClient(t, srv, transport).Get(context.Background(), networking.NewRequest("items/1"), nil, nil))

	in, ok := logger.find("Received response")
	require.True(t, ok)
	assert.Nil(t, in.arg("details"))
	headers, _ := in.arg("important_headers").(map[string]string)
	assert.Equal(t, "application/json", headers["Content-Type"])
}

func TestTransport_FileLogging(t *testing.T) {
	srv := newServer(t)
	dir := filepath.Join(t.TempDir(), "txn")
	logger := &testLogger{}
	transport, err := New(&Config{
		Verbose: true,
		VerboseOptions: &VerboseOptions{
			LogHeaders:  true,
			LogBody:     true,
			LogToFile:   true,
			LogFilePath: dir,
		},
	}, logger)
	require.NoError(t, err)

	client := newClient(t, srv, transport, networking.WithHeaders(map[string]string{"Authorization": "Basic dXNlcjpwYXNz"}))
	require.NoError(t, client.Get(context.Background(), networking.NewRequest("items/3"), nil, nil))

	entry, ok := logger.find("Received response (logged to file)")
	require.True(t, ok)
	path, _ := entry.arg("file").(string)
	require.NotEmpty(t, path)
	assert.Equal(t, dir, filepath.Dir(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "----- REQUEST -----")
	assert.Contains(t, content, "----- RESPONSE -----")
	assert.Contains(t, content, "Authorization: Basic [REDACTED]")
	assert.Contains(t, content, `{"id":3}`)

	_, logged := logger.find("Outgoing request")
	assert.False(t, logged, "dumps go to the file, not the logger")
}

func TestTransport_RequestFailureIsLogged(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	logger := &testLogger{}
	transport, err := New(&Config{Verbose: true}, logger)
	require.NoError(t, err)

	client, err := networking.NewClient(networking.WithBaseURL(addr), networking.WithTransport(transport))
	require.NoError(t, err)

	err = client.Get(context.Background(), networking.NewRequest("x"), nil, nil)
	require.ErrorIs(t, err, networking.ErrTransport)
	assert.Contains(t, err.Error(), "http request failed")

	entry, ok := logger.find("Request failed")
	require.True(t, ok)
	assert.Equal(t, "error", entry.level)
}

func TestFileLogger_SanitizesNames(t *testing.T) {
	fl, err := NewFileLogger(t.TempDir())
	require.NoError(t, err)

	u, _ := url.Parse("https://api.example.com/a/b?c=d&e=f")
	path, err := fl.LogTransaction("id:1", u.String(), []byte("req"), []byte("resp"), time.Millisecond)
	require.NoError(t, err)

	name := filepath.Base(path)
	assert.True(t, strings.HasPrefix(name, "txn_id_1_https___api.example.com_a_b_c_d_e_f_"), name)
	assert.NotContains(t, name, "/")
}

func TestSmartTruncate(t *testing.T) {
	dump := "GET /items HTTP/1.1\r\nHost: api.example.com\r\nAccept: application/json\r\nX-Noise: " +
		strings.Repeat("n", 200) + "\r\n\r\n" + strings.Repeat("b", 500)

	t.Run("fits", func(t *testing.T) {
		assert.Equal(t, "short", smartTruncate("short", 100))
	})

	t.Run("headers fit, body is cut", func(t *testing.T) {
		got := smartTruncate(dump, 300)
		assert.Len(t, got, 300)
		assert.True(t, strings.HasPrefix(got, "GET /items HTTP/1.1"))
	})

	t.Run("headers too large keep important ones", func(t *testing.T) {
		got := smartTruncate(dump, 50)
		assert.Equal(t, "GET /items HTTP/1.1\nAccept: application/json", got)
	})

	t.Run("truncate marks the cut", func(t *testing.T) {
		lt := &loggingTransport{maxBodyLogSize: 300}
		assert.True(t, strings.HasSuffix(lt.truncate([]byte(dump)), " [truncated]"))
		lt.maxBodyLogSize = 0
		assert.Equal(t, dump, lt.truncate([]byte(dump)))
	})
}
