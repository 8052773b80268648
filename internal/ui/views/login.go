package views

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/tkrm/internal/logger"
	"github.com/tgienger/tkrm/internal/models"
	"github.com/tgienger/tkrm/internal/ui/keys"
	"github.com/tgienger/tkrm/internal/ui/styles"
	"go.uber.org/zap"
)

// signInTimeout covers the whole identity flow, which may wait on a browser
const signInTimeout = 6 * time.Minute

type authURLMsg struct {
	mount uint64
	url   string
}

type loginResultMsg struct {
	mount   uint64
	session models.Session
	err     error
}

// LoginView asks the identity provider for a credential and exchanges it
// for a session
type LoginView struct {
	deps    Deps
	mount   uint64
	keys    keys.KeyMap
	styles  *styles.Styles
	spinner spinner.Model

	width  int
	height int

	email   textinput.Model
	busy    bool
	authURL string
	notice  Notice
}

func NewLoginView(deps Deps) *LoginView {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 254
	email.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &LoginView{
		deps:    deps,
		mount:   nextMount(),
		keys:    keys.DefaultKeyMap(),
		styles:  styles.NewStyles(),
		spinner: sp,
		email:   email,
	}
}

func (v *LoginView) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, v.spinner.Tick)
}

// Capturing is always true; the email field owns the keyboard
func (v *LoginView) Capturing() bool { return true }

func (v *LoginView) signIn(hint string) tea.Cmd {
	mount, deps := v.mount, v.deps
	urls := make(chan string, 1)

	login := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), signInTimeout)
		defer cancel()
		defer close(urls)

		credential, err := deps.Identity.Credential(ctx, hint, func(u string) {
			select {
			case urls <- u:
			default:
			}
		})
		if err != nil {
			return loginResultMsg{mount: mount, err: err}
		}
		sess, err := deps.API.Login(ctx, credential)
		return loginResultMsg{mount: mount, session: sess, err: err}
	}

	waitURL := func() tea.Msg {
		u, ok := <-urls
		if !ok {
			return nil
		}
		return authURLMsg{mount: mount, url: u}
	}

	return tea.Batch(login, waitURL)
}

func (v *LoginView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case noticeExpiredMsg:
		v.notice.Update(msg)
		return v, nil

	case authURLMsg:
		if msg.mount == v.mount {
			v.authURL = msg.url
		}
		return v, nil

	case loginResultMsg:
		if msg.mount != v.mount {
			return v, nil
		}
		v.busy = false
		v.authURL = ""
		if msg.err != nil {
			logger.Warn("login: failed", zap.String("provider", v.deps.Identity.Name()), zap.Error(msg.err))
			return v, v.notice.Error(msg.err)
		}
		if err := v.deps.Sessions.Write(msg.session); err != nil {
			logger.Error("login: could not store session", err)
			return v, v.notice.Error(err)
		}
		sess := msg.session
		return v, func() tea.Msg { return LoggedIn{Session: sess} }

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Back):
			v.notice.Dismiss()
			return v, nil
		case key.Matches(msg, v.keys.Enter):
			if v.busy {
				return v, nil
			}
			v.busy = true
			return v, v.signIn(strings.TrimSpace(v.email.Value()))
		}
		if v.busy {
			return v, nil
		}
		var cmd tea.Cmd
		v.email, cmd = v.email.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *LoginView) View() string {
	s := v.styles
	width := styles.ContentWidth(v.width)

	rows := []string{
		s.Title.Render("Welcome to TKRM"),
		"",
		s.TitleMuted.Render("Sign in with your " + v.deps.Identity.Name() + " account"),
		"",
		s.InputFocused.Width(clamp(width-12, 20, 44)).Render(v.email.View()),
	}
	if v.busy {
		rows = append(rows, "", v.spinner.View()+" Signing in...")
	}
	if v.authURL != "" {
		rows = append(rows, "", s.Label.Render("Open this link in your browser:"), lipgloss.NewStyle().Width(clamp(width-8, 20, 72)).Render(v.authURL))
	}
	if n := v.notice.View(s); n != "" {
		rows = append(rows, "", n)
	}
	rows = append(rows, helpLine(s, "↵", "sign in", "ctrl+c", "quit"))

	box := s.Box.Padding(1, 3).Render(lipgloss.JoinVertical(lipgloss.Center, rows...))
	return lipgloss.Place(width, max(v.height-2, 12), lipgloss.Center, lipgloss.Center, box)
}
