// Package config carries the harness settings that are not per-run flags:
// where the external origin lives and how patient the HTTP client, the
// browser driver, and startup probing should be. Settings resolve in
// precedence order: built-in defaults, then an optional YAML file, then
// ROUTE_CONTRACT_* environment variables. Command-line flags override all
// of these.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultRequestTimeoutMS = 5000
	defaultBrowserTimeoutMS = 5000
	defaultFetchTimeoutMS   = 5000
	defaultStartupTimeoutMS = 10000
)

// Config is the resolved harness configuration.
type Config struct {
	// ExternalOriginURL is the origin used by the external-fetch routes.
	// When empty the harness starts its own stand-in origin.
	ExternalOriginURL string `yaml:"externalOriginUrl"`
	// RequestTimeoutMS bounds each HTTP request the test client issues.
	RequestTimeoutMS int `yaml:"requestTimeoutMs"`
	// BrowserTimeoutMS bounds each browser navigation and selector wait.
	BrowserTimeoutMS int `yaml:"browserTimeoutMs"`
	// FetchTimeoutMS bounds each fetch performed by route handlers.
	FetchTimeoutMS int `yaml:"fetchTimeoutMs"`
	// StartupTimeoutMS bounds readiness probing of the application under
	// test and of the external origin.
	StartupTimeoutMS int `yaml:"startupTimeoutMs"`
}

// Default returns the configuration used when no file and no environment
// overrides are present.
func Default() Config {
	return Config{
		RequestTimeoutMS: defaultRequestTimeoutMS,
		BrowserTimeoutMS: defaultBrowserTimeoutMS,
		FetchTimeoutMS:   defaultFetchTimeoutMS,
		StartupTimeoutMS: defaultStartupTimeoutMS,
	}
}

// Load resolves the configuration. An empty path means no file is read;
// unset file fields keep their defaults either way.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v, ok := os.LookupEnv("ROUTE_CONTRACT_EXTERNAL_URL"); ok {
		cfg.ExternalOriginURL = v
	}
	for _, override := range []struct {
		name   string
		target *int
	}{
		{"ROUTE_CONTRACT_REQUEST_TIMEOUT_MS", &cfg.RequestTimeoutMS},
		{"ROUTE_CONTRACT_BROWSER_TIMEOUT_MS", &cfg.BrowserTimeoutMS},
		{"ROUTE_CONTRACT_FETCH_TIMEOUT_MS", &cfg.FetchTimeoutMS},
		{"ROUTE_CONTRACT_STARTUP_TIMEOUT_MS", &cfg.StartupTimeoutMS},
	} {
		v, ok := os.LookupEnv(override.name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", override.name, err)
		}
		*override.target = n
	}
	return nil
}

func (c Config) Validate() error {
	if c.ExternalOriginURL != "" {
		parsed, err := url.Parse(c.ExternalOriginURL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("externalOriginUrl %q is not an absolute URL", c.ExternalOriginURL)
		}
	}
	for _, field := range []struct {
		name  string
		value int
	}{
		{"requestTimeoutMs", c.RequestTimeoutMS},
		{"browserTimeoutMs", c.BrowserTimeoutMS},
		{"fetchTimeoutMs", c.FetchTimeoutMS},
		{"startupTimeoutMs", c.StartupTimeoutMS},
	} {
		if field.value <= 0 {
			return fmt.Errorf("%s must be positive", field.name)
		}
	}
	return nil
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

func (c Config) BrowserTimeout() time.Duration {
	return time.Duration(c.BrowserTimeoutMS) * time.Millisecond
}

func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMS) * time.Millisecond
}

func (c Config) StartupTimeout() time.Duration {
	return time.Duration(c.StartupTimeoutMS) * time.Millisecond
}
