package db_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/tkrm/internal/db"
)

func TestSettings_InMemory(t *testing.T) {
	database, err := db.Open("")
	require.NoError(t, err)
	defer database.Close()

	v, err := database.GetSetting("missing")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, database.SetSetting("k", "one"))
	require.NoError(t, database.SetSetting("k", "two"))
	v, err = database.GetSetting("k")
	require.NoError(t, err)
	assert.Equal(t, "two", v)

	require.NoError(t, database.DeleteSetting("k"))
	v, err = database.GetSetting("k")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestSettings_FilePersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.db")

	first, err := db.Open(path)
	require.NoError(t, err)
	require.NoError(t, first.SetSetting("k", "v"))
	require.NoError(t, first.Close())

	second, err := db.Open(path)
	require.NoError(t, err)
	defer second.Close()
	v, err := second.GetSetting("k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}

func TestSettings_MemoryIsPrivatePerOpen(t *testing.T) {
	a, err := db.Open("")
	require.NoError(t, err)
	defer a.Close()
	b, err := db.Open("")
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, a.SetSetting("k", "v"))
	v, err := b.GetSetting("k")
	require.NoError(t, err)
	assert.Empty(t, v)
}
