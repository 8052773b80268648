package views

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tgienger/tkrm/internal/api"
	"github.com/tgienger/tkrm/internal/ui/styles"
)

// NoticeTTL is how long a notice stays up unless dismissed
const NoticeTTL = 3 * time.Second

type noticeKind int

const (
	noticeSuccess noticeKind = iota
	noticeError
)

type noticeExpiredMsg struct {
	seq uint64
}

// sequence numbers are global so timers of different notices never match
var noticeSeq atomic.Uint64

// Notice is a single transient message line
type Notice struct {
	text string
	kind noticeKind
	seq  uint64
}

func (n *Notice) show(kind noticeKind, text string) tea.Cmd {
	n.seq = noticeSeq.Add(1)
	n.kind = kind
	n.text = text
	seq := n.seq
	return tea.Tick(NoticeTTL, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}

// Success shows a confirmation
func (n *Notice) Success(text string) tea.Cmd {
	return n.show(noticeSuccess, text)
}

// Error shows the user-facing text of err
func (n *Notice) Error(err error) tea.Cmd {
	return n.show(noticeError, api.Message(err))
}

func (n *Notice) Dismiss() {
	n.text = ""
}

func (n *Notice) Visible() bool {
	return n.text != ""
}

func (n *Notice) Text() string {
	return n.text
}

// Update clears the notice when its own timer fires. Timers of replaced
// notices do nothing.
func (n *Notice) Update(msg tea.Msg) {
	if m, ok := msg.(noticeExpiredMsg); ok && m.seq == n.seq {
		n.text = ""
	}
}

func (n *Notice) View(s *styles.Styles) string {
	if n.text == "" {
		return ""
	}
	if n.kind == noticeError {
		return s.NoticeError.Render("✗ " + n.text + "  (esc)")
	}
	return s.NoticeSuccess.Render("✓ " + n.text)
}
