package views

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tgienger/tkrm/internal/api"
	"github.com/tgienger/tkrm/internal/ui/styles"
)

func TestNotice_Expires(t *testing.T) {
	var n Notice
	n.Success("Saved")
	assert.True(t, n.Visible())

	n.Update(noticeExpiredMsg{seq: n.seq})
	assert.False(t, n.Visible())
}

func TestNotice_OldTimerKeepsNewerNotice(t *testing.T) {
	var n Notice
	n.Success("first")
	first := n.seq
	n.Error(&api.ServerError{Op: "x", Status: 500, Message: "second"})

	n.Update(noticeExpiredMsg{seq: first})
	assert.Equal(t, "second", n.Text())
}

func TestNotice_SeparateNoticesDoNotShareTimers(t *testing.T) {
	var a, b Notice
	a.Success("a")
	b.Success("b")

	b.Update(noticeExpiredMsg{seq: a.seq})
	assert.True(t, b.Visible())
}

func TestNotice_View(t *testing.T) {
	s := styles.NewStyles()
	var n Notice
	assert.Empty(t, n.View(s))

	n.Error(&api.NetworkError{Op: "list tasks"})
	assert.Contains(t, n.View(s), "Cannot reach the server")

	n.Dismiss()
	assert.Empty(t, n.View(s))
}
