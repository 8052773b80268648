package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "tkrm dev (commit: none, built: unknown)\n", out.String())
}

func TestLoadConfig_APIURLOverride(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := loadConfig(&flags{apiURL: "http://tasks.internal:8080/api"})
	require.NoError(t, err)
	assert.Equal(t, "http://tasks.internal:8080/api", cfg.API.BaseURL)

	_, err = loadConfig(&flags{apiURL: "not a url"})
	assert.Error(t, err)
}

func TestIdentityProvider(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := loadConfig(&flags{})
	require.NoError(t, err)

	p, err := identityProvider(cfg.Identity)
	require.NoError(t, err)
	assert.Equal(t, "dev", p.Name())
}
