package views

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/tkrm/internal/auth"
	"github.com/tgienger/tkrm/internal/ui/keys"
	"github.com/tgienger/tkrm/internal/ui/styles"
)

// UnauthorizedView is shown when the session's role may not open a route
type UnauthorizedView struct {
	keys   keys.KeyMap
	styles *styles.Styles
	width  int
	height int
}

func NewUnauthorizedView() *UnauthorizedView {
	return &UnauthorizedView{keys: keys.DefaultKeyMap(), styles: styles.NewStyles()}
}

func (v *UnauthorizedView) Init() tea.Cmd { return nil }

func (v *UnauthorizedView) Capturing() bool { return false }

func (v *UnauthorizedView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width, v.height = msg.Width, msg.Height
	case tea.KeyMsg:
		if key.Matches(msg, v.keys.Enter) {
			return v, func() tea.Msg { return Navigate{Route: auth.RouteDashboard} }
		}
	}
	return v, nil
}

func (v *UnauthorizedView) View() string {
	s := v.styles
	content := lipgloss.JoinVertical(lipgloss.Center,
		s.FieldError.Bold(true).Render("Access Denied. You don't have permission to view this page."),
		"",
		helpLine(s, "↵/D", "dashboard", "L", "logout"),
	)
	return lipgloss.Place(styles.ContentWidth(v.width), max(v.height-4, 6), lipgloss.Center, lipgloss.Center, content)
}
