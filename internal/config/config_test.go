package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	// Create temp config file
	content := `{
		"api_key": "test-key",
		"remote_timeout": "5s",
		"port": 8080,
		"max_skills": 25,
		"feedback_webhook_url": "https://hooks.example.com/feedback"
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "test-key", cfg.APIKey)
	assert.Equal(t, "5s", cfg.RemoteTimeout)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 25, cfg.MaxSkills)
	assert.Equal(t, "https://hooks.example.com/feedback", cfg.FeedbackWebhookURL)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	content := `{ invalid json }`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("DATABASE_URL", "postgres://localhost/scans")
	t.Setenv("PORT", "9090")
	t.Setenv("REMOTE_RPS", "0.5")
	t.Setenv("RATE_LIMIT_MAX_PER_WINDOW", "60")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")

	cfg := FromEnv()
	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, "postgres://localhost/scans", cfg.DatabaseURL)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 0.5, cfg.RemoteRPS)
	assert.Equal(t, 60, cfg.RateLimitMax)
	assert.Equal(t, "30s", cfg.RateLimitWindow)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "empty config valid", cfg: Config{}},
		{name: "valid durations", cfg: Config{RemoteTimeout: "10s", CacheTTL: "1h"}},
		{name: "negative port", cfg: Config{Port: -1}, wantErr: "'port'"},
		{name: "huge port", cfg: Config{Port: 70000}, wantErr: "'port'"},
		{name: "bad remote timeout", cfg: Config{RemoteTimeout: "soon"}, wantErr: "remote_timeout"},
		{name: "bad cache ttl", cfg: Config{CacheTTL: "forever"}, wantErr: "cache_ttl"},
		{name: "negative max skills", cfg: Config{MaxSkills: -1}, wantErr: "max_skills"},
		{name: "negative remote rps", cfg: Config{RemoteRPS: -1}, wantErr: "remote_rps"},
		{name: "negative rate limit max", cfg: Config{RateLimitMax: -1}, wantErr: "rate_limit_max_per_window"},
		{name: "bad rate limit window", cfg: Config{RateLimitWindow: "often"}, wantErr: "rate_limit_window"},
		{name: "missing lexicon file", cfg: Config{LexiconPath: "/nonexistent/lexicon.json"}, wantErr: "lexicon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{APIKey: "file-key", Port: 8080}
	defaults := Config{
		APIKey:      "env-key",
		DatabaseURL: "postgres://localhost/scans",
		Port:        3000,
		MaxSkills:   20,
	}

	merged := cfg.MergeWithDefaults(defaults)

	assert.Equal(t, "file-key", merged.APIKey, "file value wins over default")
	assert.Equal(t, 8080, merged.Port)
	assert.Equal(t, "postgres://localhost/scans", merged.DatabaseURL, "default fills empty field")
	assert.Equal(t, 20, merged.MaxSkills)
}

func TestDurationAccessors(t *testing.T) {
	cfg := Config{RemoteTimeout: "5s", CacheTTL: "30m"}
	assert.Equal(t, 5*time.Second, cfg.RemoteTimeoutDuration(10*time.Second))
	assert.Equal(t, 30*time.Minute, cfg.CacheTTLDuration(time.Hour))

	empty := Config{}
	assert.Equal(t, 10*time.Second, empty.RemoteTimeoutDuration(10*time.Second))
	assert.Equal(t, time.Hour, empty.CacheTTLDuration(time.Hour))

	invalid := Config{RemoteTimeout: "-3s"}
	assert.Equal(t, 10*time.Second, invalid.RemoteTimeoutDuration(10*time.Second))

	window := Config{RateLimitWindow: "30s"}
	assert.Equal(t, 30*time.Second, window.RateLimitWindowDuration(time.Minute))
	assert.Equal(t, time.Minute, empty.RateLimitWindowDuration(time.Minute))
}
