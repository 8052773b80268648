package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUse(t *testing.T) {
	t.Cleanup(func() { Current = TokyoNight })

	require.NoError(t, Use("tokyo-day"))
	assert.Equal(t, "Tokyo Day", Current.Name)

	err := Use("solarized")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tokyo-day")
	assert.Equal(t, "Tokyo Day", Current.Name)
}

func TestContentWidth(t *testing.T) {
	assert.Equal(t, 60, ContentWidth(60))
	assert.Equal(t, MaxWidth, ContentWidth(200))
}
