package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GEMINI_API_KEY", "from-env")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 2000, cfg.Server.MaxMessageLength)
	assert.Equal(t, "gemini", cfg.Assistant.Provider)
	assert.Equal(t, "from-env", cfg.Assistant.APIKey)
	assert.Equal(t, 20, cfg.Assistant.TimeoutSec)
	assert.Equal(t, 5, cfg.NLP.KeywordsTop)
	assert.Equal(t, "local", cfg.Attachments.Backend)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CAMPUS_BUDDY_ASSISTANT_PROVIDER", "mock")
	t.Setenv("CAMPUS_BUDDY_SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "mock", cfg.Assistant.Provider)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Assistant:   AssistantConfig{Provider: "mock", TimeoutSec: 5},
			Attachments: AttachmentsConfig{Backend: "local"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown provider", mutate: func(c *Config) { c.Assistant.Provider = "bard" }, wantErr: true},
		{name: "unknown backend", mutate: func(c *Config) { c.Attachments.Backend = "ftp" }, wantErr: true},
		{name: "s3 without bucket", mutate: func(c *Config) { c.Attachments.Backend = "s3" }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.Assistant.TimeoutSec = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
