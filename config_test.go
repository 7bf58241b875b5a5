package networking

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/GoCodeAlone/networking/feeders"
)

func writeConfigFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_FromFiles(t *testing.T) {
	want := &Config{
		BaseURL:          "https://api.example.com/v1",
		Timeout:          10 * time.Second,
		DefaultHeaders:   map[string]string{"Accept": "application/json"},
		AllowedStatusMin: 200,
		AllowedStatusMax: 399,
	}

	tests := []struct {
		name   string
		feeder Feeder
	}{
		{
			name: "yaml",
			feeder: feeders.NewYamlFeeder(writeConfigFile(t, "client.yaml", `
base_url: https://api.example.com/v1
timeout: 10s
default_headers:
  Accept: application/json
allowed_status_max: 399
`)),
		},
		{
			name: "toml",
			feeder: feeders.NewTomlFeeder(writeConfigFile(t, "client.toml", `
base_url = "https://api.example.com/v1"
timeout = "10s"
allowed_status_max = 399

[default_headers]
Accept = "application/json"
`)),
		},
		{
			name: "json",
			feeder: feeders.NewJSONFeeder(writeConfigFile(t, "client.json", `{
  "base_url": "https://api.example.com/v1",
  "timeout": "10s",
  "default_headers": {"Accept": "application/json"},
  "allowed_status_max": 399
}`)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(tt.feeder)
			require.NoError(t, err)
			assert.Equal(t, want, cfg)
		})
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, "client.yaml", "base_url: https://file.example.com\ntimeout: 1s\n")
	t.Setenv("SVC_BASE_URL", "https://env.example.com")
	t.Setenv("SVC_TIMEOUT", "2500ms")
	t.Setenv("SVC_VERBOSE", "true")

	cfg, err := LoadConfig(feeders.NewYamlFeeder(path), feeders.NewAffixedEnvFeeder("svc", ""))
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", cfg.BaseURL)
	assert.Equal(t, 2500*time.Millisecond, cfg.Timeout)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, DefaultStatusRange, cfg.StatusRange())
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Run("feeder failure", func(t *testing.T) {
		_, err := LoadConfig(feeders.NewYamlFeeder(filepath.Join(t.TempDir(), "missing.yaml")))
		assert.ErrorIs(t, err, ErrConfigFeederError)
		assert.ErrorIs(t, err, feeders.ErrFileRead)
	})

	t.Run("required base url", func(t *testing.T) {
		_, err := LoadConfig()
		assert.ErrorIs(t, err, ErrConfigRequiredFieldMissing)
		assert.Contains(t, err.Error(), "BaseURL")
	})
}

func TestConfig_ValidateReportsEveryProblem(t *testing.T) {
	cfg := &Config{
		BaseURL:          "not a url",
		Timeout:          -time.Second,
		AllowedStatusMin: 500,
		AllowedStatusMax: 200,
		DefaultHeaders:   map[string]string{"": "x"},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 4)
	assert.ErrorIs(t, err, ErrInvalidBaseURL)
	assert.ErrorIs(t, err, ErrInvalidStatusRange)
	assert.ErrorIs(t, err, ErrConfigInvalid)
}

func TestConfig_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{name: "duration string", input: `{"timeout":"1m"}`, want: time.Minute},
		{name: "nanoseconds", input: `{"timeout":1500000000}`, want: 1500 * time.Millisecond},
		{name: "absent", input: `{"base_url":"https://x.example.com"}`, want: 0},
		{name: "bad string", input: `{"timeout":"soon"}`, wantErr: true},
		{name: "wrong type", input: `{"timeout":true}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg Config
			err := json.Unmarshal([]byte(tt.input), &cfg)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrConfigInvalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Timeout)
		})
	}
}

func TestConfig_JSONKeepsOtherFields(t *testing.T) {
	var cfg Config
	require.NoError(t, json.Unmarshal([]byte(`{"base_url":"https://x.example.com","verbose":true,"timeout":"3s"}`), &cfg))
	assert.Equal(t, "https://x.example.com", cfg.BaseURL)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
}
