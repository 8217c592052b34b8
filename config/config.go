// Package config provides configuration management for the leetgate
// translation gateway. It covers the HTTP server, the upstream Gemini
// API, logging preferences, and runtime behavior customization.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete gateway configuration.
// It combines server settings, upstream Gemini configuration, logging
// preferences, and route definitions into a single structure.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Gemini    GeminiConfig    `yaml:"gemini"`
	Logging   LoggingConfig   `yaml:"logging"`
	Routes    []RouteConfig   `yaml:"routes"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Queue     QueueConfig     `yaml:"queue"`
}

// ServerConfig holds server-specific configuration for the HTTP server.
// It defines timeouts, limits, and operational parameters.
type ServerConfig struct {
	// Port specifies the HTTP server port (default: 8080)
	Port int `yaml:"port"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body (default: 30s)
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response (default: 45s). The upstream call itself carries no timeout;
	// this bounds only the write of the already-built response.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server will
	// read parsing the request header's keys and values (default: 1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// ShutdownTimeout specifies how long to wait for the server to shutdown
	// gracefully before forcing termination (default: 30s)
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// GeminiConfig holds configuration for the upstream Gemini API.
type GeminiConfig struct {
	// Endpoint is the base URL of the generative language API
	// (default: https://generativelanguage.googleapis.com/v1beta)
	Endpoint string `yaml:"endpoint"`

	// Model is the model identifier embedded in the generateContent URL
	// (default: gemini-1.5-flash)
	Model string `yaml:"model"`

	// APIKeyEnv names the environment variable supplying the API key
	// (default: GEMINI_API_KEY). The key is read per invocation so a
	// rotated value takes effect without a restart, and is never cached.
	APIKeyEnv string `yaml:"api_key_env"`

	// MaxPromptTokens caps the token count of a single prompt.
	// Zero disables the guard.
	MaxPromptTokens int `yaml:"max_prompt_tokens"`

	// CircuitBreaker configures the optional breaker around upstream
	// calls. Disabled by default: out of the box every request maps to
	// exactly one upstream attempt.
	CircuitBreaker *CircuitBreakerConfig `yaml:"circuit_breaker,omitempty"`
}

// CircuitBreakerConfig defines breaker behavior for the upstream client.
type CircuitBreakerConfig struct {
	// Enabled turns the breaker on
	Enabled bool `yaml:"enabled"`

	// MaxRequests is the maximum number of requests allowed to pass
	// through when the breaker is half-open
	MaxRequests uint32 `yaml:"max_requests"`

	// Interval is the cyclic period of the closed state
	Interval time.Duration `yaml:"interval"`

	// Timeout is the period of the open state until it becomes half-open
	Timeout time.Duration `yaml:"timeout"`

	// FailureThreshold is the number of consecutive failures needed to
	// trip the breaker
	FailureThreshold uint32 `yaml:"failure_threshold"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	// Level sets logging verbosity: debug, info, warn, error
	Level string `yaml:"level"`

	// Format specifies log output format: json or text
	Format string `yaml:"format"`
}

// RouteConfig holds route-specific configuration.
type RouteConfig struct {
	// Path is the URL path to match
	Path string `yaml:"path"`

	// Handler specifies which handler to use for this route
	Handler string `yaml:"handler"`

	// Version specifies the API version prefix (e.g., "v1")
	Version string `yaml:"version"`

	// Methods specifies the allowed HTTP methods for this route
	Methods []string `yaml:"methods"`

	// Headers specifies required headers for this route
	Headers map[string]string `yaml:"headers,omitempty"`

	// Middleware specifies the route-specific middleware
	Middleware []string `yaml:"middleware,omitempty"`
}

// RateLimitConfig defines per-client rate limiting for inbound requests.
type RateLimitConfig struct {
	// Enabled determines if rate limiting is active
	Enabled bool `yaml:"enabled"`

	// Requests is the number of requests allowed per window
	Requests int `yaml:"requests"`

	// Window is the period over which Requests are counted
	Window time.Duration `yaml:"window"`
}

// QueueConfig defines the configuration for the admission queue
// middleware. Disabled by default.
type QueueConfig struct {
	// Enabled determines if the queue middleware is active
	Enabled bool `yaml:"enabled"`

	// MaxSize is the maximum number of requests held in the queue
	MaxSize int64 `yaml:"max_size"`
}

// DefaultConfig returns the gateway's default configuration. The
// defaults implement the contract verbatim: no breaker, no queue, and a
// single upstream attempt per request.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    45 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
		},

		Gemini: GeminiConfig{
			Endpoint:        "https://generativelanguage.googleapis.com/v1beta",
			Model:           "gemini-1.5-flash",
			APIKeyEnv:       "GEMINI_API_KEY",
			MaxPromptTokens: 8192,
			CircuitBreaker: &CircuitBreakerConfig{
				Enabled:          false,
				MaxRequests:      1,
				Interval:         30 * time.Second,
				Timeout:          10 * time.Second,
				FailureThreshold: 5,
			},
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},

		Routes: []RouteConfig{
			{
				Path:    "/translate",
				Handler: "translate",
				Version: "v1",
				Methods: []string{"POST", "OPTIONS"},
			},
			{
				Path:    "/translate/english",
				Handler: "english",
				Version: "v1",
				Methods: []string{"POST", "OPTIONS"},
			},
			{
				Path:    "/metrics",
				Handler: "metrics",
				Methods: []string{"GET"},
			},
		},

		RateLimit: RateLimitConfig{
			Enabled:  true,
			Requests: 60,
			Window:   time.Minute,
		},

		Queue: QueueConfig{
			Enabled: false,
			MaxSize: 1000,
		},
	}
}

// LoadFile loads configuration from a YAML file
func LoadFile(filename string) (*Config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// expandEnvVars resolves environment variable references within
// configuration strings. It supports standard ${VAR} substitution and
// the ${VAR:-default} default-value syntax, and recursively resolves
// nested references until no further substitutions are possible.
//
// Example transformations:
//   - "${GEMINI_MODEL}" → "gemini-1.5-flash"
//   - "${PORT:-8080}" → "8080" (if PORT is unset)
func expandEnvVars(s string) string {
	result := os.Expand(s, func(key string) string {
		if i := strings.Index(key, ":-"); i >= 0 {
			envKey := key[:i]
			defaultValue := key[i+2:]

			if val := os.Getenv(envKey); val != "" {
				return val
			}
			return defaultValue
		}

		return os.Getenv(key)
	})

	// Resolve nested references
	prev := ""
	for prev != result {
		prev = result
		result = os.Expand(result, os.Getenv)
	}

	return result
}

// Load loads configuration from an io.Reader
func Load(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables in the YAML
	expandedData := expandEnvVars(string(data))

	// Start with defaults
	config := DefaultConfig()

	// Decode YAML on top of defaults
	dec := yaml.NewDecoder(strings.NewReader(expandedData))
	if err := dec.Decode(config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout < 0 {
		return fmt.Errorf("negative read timeout: %v", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout < 0 {
		return fmt.Errorf("negative write timeout: %v", c.Server.WriteTimeout)
	}
	if c.Server.MaxHeaderBytes < 0 {
		return fmt.Errorf("negative max header bytes: %d", c.Server.MaxHeaderBytes)
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("negative shutdown timeout: %v", c.Server.ShutdownTimeout)
	}

	// Gemini validation
	if c.Gemini.Endpoint == "" {
		return fmt.Errorf("empty Gemini endpoint")
	}
	if c.Gemini.Model == "" {
		return fmt.Errorf("empty Gemini model")
	}
	if c.Gemini.APIKeyEnv == "" {
		return fmt.Errorf("empty Gemini API key variable name")
	}
	if c.Gemini.MaxPromptTokens < 0 {
		return fmt.Errorf("negative max prompt tokens: %d", c.Gemini.MaxPromptTokens)
	}
	if cb := c.Gemini.CircuitBreaker; cb != nil && cb.Enabled {
		if cb.FailureThreshold == 0 {
			return fmt.Errorf("circuit breaker enabled with zero failure threshold")
		}
		if cb.Timeout <= 0 {
			return fmt.Errorf("circuit breaker enabled with non-positive timeout: %v", cb.Timeout)
		}
	}

	// Logging validation
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// Valid levels
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "text":
		// Valid formats
	default:
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	// Route validation
	for i, route := range c.Routes {
		if route.Path == "" {
			return fmt.Errorf("empty path in route %d", i)
		}
		if route.Handler == "" {
			return fmt.Errorf("empty handler in route %d", i)
		}
	}

	// Rate limit validation
	if c.RateLimit.Enabled {
		if c.RateLimit.Requests <= 0 {
			return fmt.Errorf("rate limit enabled with non-positive request count: %d", c.RateLimit.Requests)
		}
		if c.RateLimit.Window <= 0 {
			return fmt.Errorf("rate limit enabled with non-positive window: %v", c.RateLimit.Window)
		}
	}

	// Queue validation
	if c.Queue.Enabled && c.Queue.MaxSize <= 0 {
		return fmt.Errorf("queue enabled with non-positive max size: %d", c.Queue.MaxSize)
	}

	return nil
}
