package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	ProviderDev    = "dev"
	ProviderGoogle = "google"
)

type Config struct {
	API       APIConfig       `yaml:"api"`
	Identity  IdentityConfig  `yaml:"identity"`
	Session   SessionConfig   `yaml:"session"`
	Logging   LoggingConfig   `yaml:"logging"`
	UI        UIConfig        `yaml:"ui"`
	DevServer DevServerConfig `yaml:"devserver"`
}

type APIConfig struct {
	BaseURL string        `yaml:"base_url" env:"TKRM_API_URL" env-default:"http://localhost:5000/api"`
	Timeout time.Duration `yaml:"timeout" env:"TKRM_API_TIMEOUT" env-default:"15s"`
}

type IdentityConfig struct {
	Provider      string `yaml:"provider" env:"TKRM_IDENTITY_PROVIDER" env-default:"dev"`
	ClientSecrets string `yaml:"client_secrets" env:"TKRM_GOOGLE_CLIENT_SECRETS"`
	CallbackPort  string `yaml:"callback_port" env:"TKRM_GOOGLE_CALLBACK_PORT" env-default:"6789"`
}

// SessionConfig controls where the session record lives. An empty path
// keeps it in memory for the lifetime of the process.
type SessionConfig struct {
	Path string `yaml:"path" env:"TKRM_SESSION_PATH"`
}

type LoggingConfig struct {
	File        string `yaml:"file" env:"TKRM_LOG_FILE"`
	Level       string `yaml:"level" env:"TKRM_LOG_LEVEL" env-default:"info"`
	Development bool   `yaml:"development" env:"TKRM_LOG_DEVELOPMENT"`
}

type UIConfig struct {
	Theme string `yaml:"theme" env:"TKRM_THEME" env-default:"tokyo-night"`
}

type DevServerConfig struct {
	Addr string `yaml:"addr" env:"TKRM_DEVSERVER_ADDR" env-default:":5000"`
}

// Load reads the YAML file at path when it exists and applies TKRM_*
// environment overrides and defaults on top. An empty path means
// DefaultPath.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	var cfg Config
	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	case errors.Is(statErr, os.ErrNotExist) && !explicit:
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read config from env: %w", err)
		}
	default:
		return nil, fmt.Errorf("read config %s: %w", path, statErr)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: api.base_url %q is not an absolute URL", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("config: api.timeout must be positive")
	}
	switch c.Identity.Provider {
	case ProviderDev:
	case ProviderGoogle:
		if c.Identity.ClientSecrets == "" {
			return fmt.Errorf("config: identity.client_secrets is required for the google provider")
		}
	default:
		return fmt.Errorf("config: unknown identity.provider %q", c.Identity.Provider)
	}
	return nil
}

// DefaultPath returns $XDG_CONFIG_HOME/tkrm/config.yml
func DefaultPath() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "tkrm", "config.yml"), nil
}
