package logger_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/tkrm/internal/logger"
	"go.uber.org/zap"
)

func TestInit_WritesToFile(t *testing.T) {
	prev := logger.Logger
	t.Cleanup(func() { logger.Logger = prev })

	path := filepath.Join(t.TempDir(), "logs", "tkrm.log")
	require.NoError(t, logger.Init(logger.Options{File: path, Level: "debug"}))

	logger.Info("navigation", zap.String("route", "/dashboard"))
	logger.Error("request failed", errors.New("boom"))
	logger.Sync()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"route":"/dashboard"`)
	assert.Contains(t, string(b), `"error":"boom"`)
}

func TestInit_RejectsUnknownLevel(t *testing.T) {
	prev := logger.Logger
	t.Cleanup(func() { logger.Logger = prev })

	assert.Error(t, logger.Init(logger.Options{File: "stderr", Level: "loud"}))
}
