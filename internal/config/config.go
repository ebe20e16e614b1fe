// Package config provides configuration loading and validation for the
// scanner CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config represents the scanner configuration, loadable from a JSON file
// with environment variables as a fallback layer.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Remote extraction
	APIKey        string  `json:"api_key,omitempty"`        // Gemini API key
	Model         string  `json:"model,omitempty"`          // Gemini model name override
	RemoteTimeout string  `json:"remote_timeout,omitempty"` // Remote call timeout, e.g. "10s"
	RemoteRPS     float64 `json:"remote_rps,omitempty"`     // Outbound extraction calls per second; 0 disables the throttle

	// Career page lookup
	SearchAPIKey   string `json:"search_api_key,omitempty"`   // Google Custom Search API key
	SearchEngineID string `json:"search_engine_id,omitempty"` // Google Custom Search engine ID

	// Feedback
	FeedbackWebhookURL string `json:"feedback_webhook_url,omitempty"` // Webhook receiving feedback

	// Persistence
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL; empty disables history

	// Extraction tuning
	LexiconPath string `json:"lexicon_path,omitempty"` // Extra lexicon JSON file
	MaxLen      int    `json:"max_len,omitempty"`      // Normalizer input cap in runes
	MaxSkills   int    `json:"max_skills,omitempty"`   // Skill list cap
	MaxKeywords int    `json:"max_keywords,omitempty"` // Keyword list cap

	// Server
	Port     int    `json:"port,omitempty"`      // HTTP listen port
	CacheTTL string `json:"cache_ttl,omitempty"` // Scan cache entry lifetime, e.g. "1h"

	// Rate limiting
	RateLimitMax    int    `json:"rate_limit_max_per_window,omitempty"` // Requests per identity per window
	RateLimitWindow string `json:"rate_limit_window,omitempty"`         // Window length, e.g. "1m"
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv builds a Config from environment variables. Used as the
// default layer under any config file.
func FromEnv() Config {
	return Config{
		APIKey:             os.Getenv("GEMINI_API_KEY"),
		Model:              os.Getenv("GEMINI_MODEL"),
		RemoteTimeout:      os.Getenv("REMOTE_TIMEOUT"),
		RemoteRPS:          envFloat("REMOTE_RPS", 0),
		SearchAPIKey:       os.Getenv("GOOGLE_API_KEY"),
		SearchEngineID:     os.Getenv("SEARCH_ENGINE_ID"),
		FeedbackWebhookURL: os.Getenv("FEEDBACK_WEBHOOK_URL"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		LexiconPath:        os.Getenv("LEXICON_PATH"),
		Port:               envInt("PORT", 0),
		CacheTTL:           os.Getenv("CACHE_TTL"),
		RateLimitMax:       envInt("RATE_LIMIT_MAX_PER_WINDOW", 0),
		RateLimitWindow:    os.Getenv("RATE_LIMIT_WINDOW"),
	}
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.MaxLen < 0 {
		return fmt.Errorf("config error: 'max_len' must be non-negative")
	}
	if c.MaxSkills < 0 {
		return fmt.Errorf("config error: 'max_skills' must be non-negative")
	}
	if c.MaxKeywords < 0 {
		return fmt.Errorf("config error: 'max_keywords' must be non-negative")
	}
	if c.RemoteRPS < 0 {
		return fmt.Errorf("config error: 'remote_rps' must be non-negative")
	}
	if c.RateLimitMax < 0 {
		return fmt.Errorf("config error: 'rate_limit_max_per_window' must be non-negative")
	}

	if c.RemoteTimeout != "" {
		if _, err := time.ParseDuration(c.RemoteTimeout); err != nil {
			return fmt.Errorf("config error: invalid 'remote_timeout': %w", err)
		}
	}
	if c.CacheTTL != "" {
		if _, err := time.ParseDuration(c.CacheTTL); err != nil {
			return fmt.Errorf("config error: invalid 'cache_ttl': %w", err)
		}
	}
	if c.RateLimitWindow != "" {
		if _, err := time.ParseDuration(c.RateLimitWindow); err != nil {
			return fmt.Errorf("config error: invalid 'rate_limit_window': %w", err)
		}
	}

	if c.LexiconPath != "" {
		if _, err := os.Stat(c.LexiconPath); os.IsNotExist(err) {
			return fmt.Errorf("config error: lexicon file not found: %s", c.LexiconPath)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. Used to apply env values under config file values.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.RemoteTimeout == "" {
		result.RemoteTimeout = defaults.RemoteTimeout
	}
	if result.SearchAPIKey == "" {
		result.SearchAPIKey = defaults.SearchAPIKey
	}
	if result.SearchEngineID == "" {
		result.SearchEngineID = defaults.SearchEngineID
	}
	if result.FeedbackWebhookURL == "" {
		result.FeedbackWebhookURL = defaults.FeedbackWebhookURL
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.LexiconPath == "" {
		result.LexiconPath = defaults.LexiconPath
	}
	if result.CacheTTL == "" {
		result.CacheTTL = defaults.CacheTTL
	}
	if result.RateLimitWindow == "" {
		result.RateLimitWindow = defaults.RateLimitWindow
	}

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.MaxLen == 0 {
		result.MaxLen = defaults.MaxLen
	}
	if result.MaxSkills == 0 {
		result.MaxSkills = defaults.MaxSkills
	}
	if result.MaxKeywords == 0 {
		result.MaxKeywords = defaults.MaxKeywords
	}
	if result.RateLimitMax == 0 {
		result.RateLimitMax = defaults.RateLimitMax
	}
	if result.RemoteRPS == 0 {
		result.RemoteRPS = defaults.RemoteRPS
	}

	return result
}

// RemoteTimeoutDuration parses RemoteTimeout, returning fallback when
// unset or invalid.
func (c *Config) RemoteTimeoutDuration(fallback time.Duration) time.Duration {
	if c.RemoteTimeout == "" {
		return fallback
	}
	d, err := time.ParseDuration(c.RemoteTimeout)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// CacheTTLDuration parses CacheTTL, returning fallback when unset or
// invalid.
func (c *Config) CacheTTLDuration(fallback time.Duration) time.Duration {
	if c.CacheTTL == "" {
		return fallback
	}
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// RateLimitWindowDuration parses RateLimitWindow, returning fallback
// when unset or invalid.
func (c *Config) RateLimitWindowDuration(fallback time.Duration) time.Duration {
	if c.RateLimitWindow == "" {
		return fallback
	}
	d, err := time.ParseDuration(c.RateLimitWindow)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func envInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func envFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
