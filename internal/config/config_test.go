package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/tkrm/internal/config"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000/api", cfg.API.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.API.Timeout)
	assert.Equal(t, config.ProviderDev, cfg.Identity.Provider)
	assert.Equal(t, "6789", cfg.Identity.CallbackPort)
	assert.Empty(t, cfg.Session.Path)
	assert.Equal(t, ":5000", cfg.DevServer.Addr)
	assert.Equal(t, "tokyo-night", cfg.UI.Theme)
}

func TestLoad_FileWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  base_url: https://tasks.example.com/api
  timeout: 5s
identity:
  provider: google
  client_secrets: /etc/tkrm/credentials.json
logging:
  level: debug
`), 0600))
	t.Setenv("TKRM_API_TIMEOUT", "30s")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://tasks.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, config.ProviderGoogle, cfg.Identity.Provider)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() config.Config {
		return config.Config{
			API:      config.APIConfig{BaseURL: "http://localhost:5000/api", Timeout: time.Second},
			Identity: config.IdentityConfig{Provider: config.ProviderDev},
		}
	}
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{"valid", func(*config.Config) {}, false},
		{"relative url", func(c *config.Config) { c.API.BaseURL = "/api" }, true},
		{"zero timeout", func(c *config.Config) { c.API.Timeout = 0 }, true},
		{"unknown provider", func(c *config.Config) { c.Identity.Provider = "github" }, true},
		{"google without secrets", func(c *config.Config) { c.Identity.Provider = config.ProviderGoogle }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
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
