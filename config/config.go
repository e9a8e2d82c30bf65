// Package config loads client settings from a YAML file and the environment.
package config

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/adkclient/logging"
)

// Defaults match a locally started ADK API server hosting the sample agent.
const (
	DefaultBaseURL = "http://127.0.0.1:8000"
	DefaultAppName = "multi_tool_agent"
	DefaultUserID  = "user_1"
)

// Environment variables overriding file values.
const (
	EnvBaseURL  = "ADK_BASE_URL"
	EnvAppName  = "ADK_APP_NAME"
	EnvUserID   = "ADK_USER_ID"
	EnvTimeout  = "ADK_TIMEOUT"
	EnvLogLevel = "ADK_LOG_LEVEL"
	EnvToken    = "ADK_TOKEN"
	EnvRate     = "ADK_RATE_LIMIT"
)

// Duration is a time.Duration written as a Go duration string ("30s") in
// YAML.
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: invalid duration %q: %w", value.Line, s, err)
	}
	d.Duration = v
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) { return d.String(), nil }

// LogConfig selects the log level and format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or text
}

// Config holds the client settings.
type Config struct {
	BaseURL string `yaml:"base_url"`
	AppName string `yaml:"app_name"`
	UserID  string `yaml:"user_id"`
	// Timeout bounds each HTTP call made by the CLI. Zero means no limit.
	Timeout Duration `yaml:"timeout"`
	// Token is sent as a bearer token on every call when set.
	Token string `yaml:"token"`
	// RateLimit caps requests per second. Zero means unlimited.
	RateLimit float64   `yaml:"rate_limit"`
	Log       LogConfig `yaml:"log"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		BaseURL: DefaultBaseURL,
		AppName: DefaultAppName,
		UserID:  DefaultUserID,
		Log:     LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path (YAML) over the defaults, then applies environment
// overrides. An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.fillDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvBaseURL); ok {
		c.BaseURL = v
	}
	if v, ok := lookup(EnvAppName); ok {
		c.AppName = v
	}
	if v, ok := lookup(EnvUserID); ok {
		c.UserID = v
	}
	if v, ok := lookup(EnvLogLevel); ok {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvToken); ok {
		c.Token = v
	}
	if v, ok := lookup(EnvRate); ok {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRate, err)
		}
		c.RateLimit = r
	}
	if v, ok := lookup(EnvTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		c.Timeout.Duration = d
	}
	return nil
}

func (c *Config) fillDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.AppName == "" {
		c.AppName = DefaultAppName
	}
	if c.UserID == "" {
		c.UserID = DefaultUserID
	}
}

// Validate rejects an unusable base URL, negative timeout or rate limit and
// an unknown log level.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base url %q: %w", c.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("invalid base url %q: want http(s)://host[:port]", c.BaseURL)
	}
	if c.Timeout.Duration < 0 {
		return fmt.Errorf("invalid timeout %s", c.Timeout)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("invalid rate limit %g", c.RateLimit)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// TokenSource returns a static source for Token, or nil when none is set.
func (c *Config) TokenSource() oauth2.TokenSource {
	if c.Token == "" {
		return nil
	}
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.Token})
}

// Limiter returns a limiter for RateLimit, or nil when unlimited.
func (c *Config) Limiter() *rate.Limiter {
	if c.RateLimit <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(c.RateLimit), max(1, int(c.RateLimit)))
}

// NewLogger builds the ClientLogger described by the log section.
func (c *Config) NewLogger(w io.Writer) *logging.ClientLogger {
	level, _ := logging.ParseLevel(c.Log.Level)
	cfg := logging.DefaultLoggerConfig()
	cfg.Level = level
	if c.Log.Format != "" {
		cfg.Format = c.Log.Format
	}
	cfg.Output = w
	return logging.NewLogger(cfg)
}
