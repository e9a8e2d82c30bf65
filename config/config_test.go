package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvBaseURL, EnvAppName, EnvUserID, EnvTimeout, EnvLogLevel, EnvToken, EnvRate} {
		if v, ok := os.LookupEnv(k); ok {
			require.NoError(t, os.Unsetenv(k))
			t.Cleanup(func() { os.Setenv(k, v) })
		}
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultAppName, cfg.AppName)
	assert.Equal(t, DefaultUserID, cfg.UserID)
}

func TestLoad_FileAndEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "adk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
base_url: http://agents.internal:9000
app_name: story_agent
timeout: 45s
log:
  level: debug
  format: json
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://agents.internal:9000", cfg.BaseURL)
	assert.Equal(t, "story_agent", cfg.AppName)
	assert.Equal(t, DefaultUserID, cfg.UserID)
	assert.Equal(t, 45*time.Second, cfg.Timeout.Duration)
	assert.Equal(t, LogConfig{Level: "debug", Format: "json"}, cfg.Log)

	t.Setenv(EnvUserID, "user_2")
	t.Setenv(EnvTimeout, "2s")
	t.Setenv(EnvLogLevel, "warn")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "user_2", cfg.UserID)
	assert.Equal(t, 2*time.Second, cfg.Timeout.Duration)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("timeout: soon\n"), 0o600))
	_, err := Load(bad)
	assert.Error(t, err)

	t.Setenv(EnvBaseURL, "not a url")
	_, err = Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())

	cfg.BaseURL = "ftp://x"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Timeout.Duration = -time.Second
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Log.Level = "chatty"
	assert.Error(t, cfg.Validate())
}

func TestTokenAndRateLimit(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Nil(t, cfg.TokenSource())
	assert.Nil(t, cfg.Limiter())

	t.Setenv(EnvToken, "secret")
	t.Setenv(EnvRate, "2.5")
	cfg, err = Load("")
	require.NoError(t, err)
	tok, err := cfg.TokenSource().Token()
	require.NoError(t, err)
	assert.Equal(t, "secret", tok.AccessToken)
	l := cfg.Limiter()
	require.NotNil(t, l)
	assert.InDelta(t, 2.5, float64(l.Limit()), 1e-9)
	assert.Equal(t, 2, l.Burst())

	t.Setenv(EnvRate, "fast")
	_, err = Load("")
	assert.Error(t, err)

	cfg = Default()
	cfg.RateLimit = -1
	assert.Error(t, cfg.Validate())
}

func TestDuration_YAMLRoundTrip(t *testing.T) {
	out, err := yaml.Marshal(Config{Timeout: Duration{90 * time.Second}})
	require.NoError(t, err)
	assert.Contains(t, string(out), "timeout: 1m30s")

	var back Config
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, 90*time.Second, back.Timeout.Duration)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := Default()
	cfg.Log = LogConfig{Level: "debug", Format: "json"}
	cfg.NewLogger(&buf).Debug("hello", "k", "v")
	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.Contains(t, buf.String(), `"k":"v"`)
}
