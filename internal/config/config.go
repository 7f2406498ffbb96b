// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"sitemate/core/types"
	"sitemate/internal/errors"
	"sitemate/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Pricing contains pricing configuration
	Pricing PricingConfig `json:"pricing"`

	// Completion contains the chat-completions client configuration
	Completion CompletionConfig `json:"completion"`

	// Storage contains project storage configuration
	Storage StorageConfig `json:"storage"`

	// Server contains HTTP server configuration
	Server ServerConfig `json:"server"`

	// Site contains the defaults applied when a request omits them
	Site SiteConfig `json:"site"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// PricingConfig contains pricing-related settings
type PricingConfig struct {
	// Currency is the currency prices are quoted in
	Currency types.Currency `json:"currency"`

	// Mode is static, remote or hybrid
	Mode string `json:"mode"`

	// RatesPath is an optional HCL rate table overlaid on the built-in one
	RatesPath string `json:"rates_path,omitempty"`

	// CacheTTLSeconds is how long to cache prices; zero disables caching
	CacheTTLSeconds int `json:"cache_ttl_seconds"`

	// SearchAppID is the hosted search application ID
	SearchAppID string `json:"search_app_id,omitempty"`

	// SearchAPIKey is the search-only key. Usually set from the environment.
	SearchAPIKey string `json:"-"`

	// SearchIndex is the index name
	SearchIndex string `json:"search_index"`

	// SearchRequestsPerSecond limits outgoing searches
	SearchRequestsPerSecond float64 `json:"search_requests_per_second"`
}

// CacheTTL returns the cache TTL as a duration
func (p PricingConfig) CacheTTL() time.Duration {
	return time.Duration(p.CacheTTLSeconds) * time.Second
}

// CompletionConfig contains chat-completions settings
type CompletionConfig struct {
	// Endpoint is the chat-completions URL
	Endpoint string `json:"endpoint"`

	// Model is the model name
	Model string `json:"model"`

	// APIKey is never written to disk
	APIKey string `json:"-"`

	// TimeoutSeconds bounds one orchestrated request
	TimeoutSeconds int `json:"timeout_seconds"`

	// Temperature is the sampling temperature
	Temperature float64 `json:"temperature"`

	// RequestsPerMinute limits outgoing completions; zero means unlimited
	RequestsPerMinute int `json:"requests_per_minute"`
}

// Timeout returns the completion timeout as a duration
func (c CompletionConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// StorageConfig contains project storage settings
type StorageConfig struct {
	// Backend is file, memory or postgres
	Backend string `json:"backend"`

	// Path is the directory of the file backend
	Path string `json:"path"`

	// DSN is the postgres connection string. Usually set from the environment.
	DSN string `json:"-"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	// Address is the listen address
	Address string `json:"address"`

	// AllowedOrigins is the CORS allow list; empty allows all
	AllowedOrigins []string `json:"allowed_origins,omitempty"`

	// RequestsPerSecond is the per-client rate limit; zero disables it
	RequestsPerSecond float64 `json:"requests_per_second"`

	// Burst is the per-client burst
	Burst int `json:"burst"`
}

// SiteConfig contains the default site context
type SiteConfig struct {
	// Location is the default project location
	Location types.Location `json:"location"`

	// Soil is the default soil condition
	Soil types.SoilType `json:"soil"`
}

// Default returns a default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Version: "1.0",
		Pricing: PricingConfig{
			Currency:                types.NGN,
			Mode:                    "static",
			CacheTTLSeconds:         3600,
			SearchIndex:             "construction_materials",
			SearchRequestsPerSecond: 10,
		},
		Completion: CompletionConfig{
			Endpoint:          "https://api.groq.com/openai/v1/chat/completions",
			Model:             "llama-3.3-70b-versatile",
			TimeoutSeconds:    20,
			Temperature:       0.1,
			RequestsPerMinute: 30,
		},
		Storage: StorageConfig{
			Backend: "file",
			Path:    filepath.Join(homeDir, ".sitemate", "projects"),
		},
		Server: ServerConfig{
			Address:           ":8080",
			RequestsPerSecond: 5,
			Burst:             10,
		},
		Site: SiteConfig{
			Location: types.LocationLekki,
			Soil:     types.SoilFirmSandy,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a file. A missing file yields the defaults.
// Environment overrides are applied afterwards.
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := json.Unmarshal(data, config); err != nil {
				return nil, errors.Wrapf(errors.TypeConfig, err, "invalid config file %s", path)
			}
		case !os.IsNotExist(err):
			return nil, errors.Wrapf(errors.TypeConfig, err, "failed to read config file %s", path)
		}
	}

	config.ApplyEnv(os.LookupEnv)
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadDotEnv reads KEY=value pairs from files into the process environment
// without overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	if err := godotenv.Load(present...); err != nil {
		return errors.Wrap(errors.TypeConfig, "failed to read .env", err)
	}
	return nil
}

// ApplyEnv overlays secrets and deployment settings from lookup
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && v != "" {
				*dst = v
				return
			}
		}
	}
	num := func(dst *int, key string) {
		if v, ok := lookup(key); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				*dst = n
			}
		}
	}

	str(&c.Completion.APIKey, "SITEMATE_COMPLETION_API_KEY", "GROQ_API_KEY")
	str(&c.Completion.Endpoint, "SITEMATE_COMPLETION_ENDPOINT")
	str(&c.Completion.Model, "SITEMATE_COMPLETION_MODEL")
	num(&c.Completion.TimeoutSeconds, "SITEMATE_COMPLETION_TIMEOUT_SECONDS")

	str(&c.Pricing.Mode, "SITEMATE_PRICING_MODE")
	str(&c.Pricing.RatesPath, "SITEMATE_RATES_PATH")
	str(&c.Pricing.SearchAppID, "SITEMATE_SEARCH_APP_ID", "ALGOLIA_APP_ID")
	str(&c.Pricing.SearchAPIKey, "SITEMATE_SEARCH_API_KEY", "ALGOLIA_API_KEY")
	str(&c.Pricing.SearchIndex, "SITEMATE_SEARCH_INDEX", "ALGOLIA_INDEX_NAME")

	str(&c.Storage.Backend, "SITEMATE_STORAGE_BACKEND")
	str(&c.Storage.Path, "SITEMATE_STORAGE_PATH")
	str(&c.Storage.DSN, "SITEMATE_DATABASE_URL", "DATABASE_URL")

	str(&c.Server.Address, "SITEMATE_ADDR")
	if v, ok := lookup("SITEMATE_ALLOWED_ORIGINS"); ok && v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}

	str(&c.Logging.Level, "SITEMATE_LOG_LEVEL")
	str(&c.Logging.Format, "SITEMATE_LOG_FORMAT")
}

// Validate checks values that would otherwise fail deep inside a component
func (c *Config) Validate() error {
	switch c.Pricing.Mode {
	case "static", "remote", "hybrid":
	default:
		return errors.Newf(errors.TypeConfig, "unsupported pricing mode: %s", c.Pricing.Mode)
	}
	switch c.Storage.Backend {
	case "file", "memory", "postgres":
	default:
		return errors.Newf(errors.TypeConfig, "unsupported storage backend: %s", c.Storage.Backend)
	}
	if c.Completion.TimeoutSeconds <= 0 {
		return errors.InvalidInput("completion.timeout_seconds", c.Completion.TimeoutSeconds)
	}
	if c.Pricing.CacheTTLSeconds < 0 {
		return errors.InvalidInput("pricing.cache_ttl_seconds", c.Pricing.CacheTTLSeconds)
	}
	if c.Site.Soil != "" && !c.Site.Soil.IsValid() {
		return errors.InvalidInput("site.soil", c.Site.Soil)
	}
	return nil
}

// Save saves configuration to a file. Secrets are not written.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
