package ui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/tkrm/internal/api"
	"github.com/tgienger/tkrm/internal/auth"
	"github.com/tgienger/tkrm/internal/logger"
	"github.com/tgienger/tkrm/internal/models"
	"github.com/tgienger/tkrm/internal/ui/keys"
	"github.com/tgienger/tkrm/internal/ui/styles"
	"github.com/tgienger/tkrm/internal/ui/views"
	"go.uber.org/zap"
)

type logoutResultMsg struct {
	err error
}

// App routes between screens. Every navigation goes through the gate,
// which reads the session again each time.
type App struct {
	deps   views.Deps
	gate   *auth.Gate
	keys   keys.KeyMap
	styles *styles.Styles

	route      auth.Route
	screen     views.Screen
	notice     views.Notice
	loggingOut bool

	width  int
	height int
}

// Creates a new application
func NewApp(deps views.Deps, gate *auth.Gate) *App {
	return &App{
		deps:   deps,
		gate:   gate,
		keys:   keys.DefaultKeyMap(),
		styles: styles.NewStyles(),
	}
}

func (a *App) Init() tea.Cmd {
	return a.navigate(auth.RouteDashboard)
}

// Route is the route currently rendered
func (a *App) Route() auth.Route { return a.route }

// Screen is the mounted screen
func (a *App) Screen() views.Screen { return a.screen }

func (a *App) navigate(route auth.Route) tea.Cmd {
	target, decision := a.gate.Resolve(route)
	if decision != auth.Allow {
		logger.Info("gate: redirect",
			zap.String("requested", string(route)),
			zap.String("rendered", string(target)),
			zap.Stringer("decision", decision),
		)
	}

	a.route = target
	a.screen = a.mount(target)

	width, height := a.width, a.height
	return tea.Batch(
		a.screen.Init(),
		func() tea.Msg {
			return tea.WindowSizeMsg{Width: width, Height: height}
		},
	)
}

func (a *App) mount(route auth.Route) views.Screen {
	sess, _ := a.deps.Sessions.Read()

	switch route {
	case auth.RouteDashboard:
		switch sess.Role {
		case models.RoleAdmin:
			return views.NewBoardView(a.deps, views.AdminBoard(), sess)
		case models.RoleManager:
			return views.NewBoardView(a.deps, views.ManagerBoard(), sess)
		case models.RoleEmployee:
			return views.NewEmployeeView(a.deps)
		}
	case auth.RouteAdmin:
		return views.NewBoardView(a.deps, views.AdminBoard(), sess)
	case auth.RouteManager:
		return views.NewBoardView(a.deps, views.ManagerBoard(), sess)
	case auth.RouteEmployee:
		return views.NewEmployeeView(a.deps)
	case auth.RouteTasks:
		return views.NewBoardView(a.deps, views.TasksBoard(), sess)
	case auth.RouteUnauthorized:
		return views.NewUnauthorizedView()
	}
	return views.NewLoginView(a.deps)
}

func (a *App) logout() tea.Cmd {
	a.loggingOut = true
	deps := a.deps
	return func() tea.Msg {
		ctx, cancel := deps.Context()
		defer cancel()
		return logoutResultMsg{err: deps.API.Logout(ctx)}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	a.notice.Update(msg)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// the header takes two lines
		msg.Height = max(0, msg.Height-2)
		_, cmd := a.screen.Update(msg)
		return a, cmd

	case views.Navigate:
		return a, a.navigate(msg.Route)

	case views.LoggedIn:
		logger.Info("ui: signed in", zap.String("user_id", msg.Session.ID), zap.String("role", string(msg.Session.Role)))
		return a, a.navigate(auth.RouteDashboard)

	case logoutResultMsg:
		a.loggingOut = false
		// a rejected credential is already signed out on the backend
		var serr *api.ServerError
		if msg.err != nil && !(errors.As(msg.err, &serr) && serr.Unauthorized()) {
			logger.Warn("ui: logout failed, keeping session", zap.Error(msg.err))
			return a, a.notice.Error(msg.err)
		}
		if err := a.deps.Sessions.Clear(); err != nil {
			logger.Error("ui: could not clear session", err)
			return a, a.notice.Error(err)
		}
		return a, a.navigate(auth.RouteLogin)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if !a.screen.Capturing() {
			if cmd, ok := a.globalKey(msg); ok {
				return a, cmd
			}
		}
	}

	_, cmd := a.screen.Update(msg)
	return a, cmd
}

// globalKey handles navigation shortcuts. It reports false for keys the
// screen should receive.
func (a *App) globalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	routes := []struct {
		binding key.Binding
		route   auth.Route
	}{
		{a.keys.Dashboard, auth.RouteDashboard},
		{a.keys.Admin, auth.RouteAdmin},
		{a.keys.Manager, auth.RouteManager},
		{a.keys.Employee, auth.RouteEmployee},
		{a.keys.Tasks, auth.RouteTasks},
	}
	for _, r := range routes {
		if key.Matches(msg, r.binding) {
			return a.navigate(r.route), true
		}
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return tea.Quit, true
	case key.Matches(msg, a.keys.Logout):
		if a.loggingOut {
			return nil, true
		}
		if _, ok := a.deps.Sessions.Read(); !ok {
			return a.navigate(auth.RouteLogin), true
		}
		return a.logout(), true
	case key.Matches(msg, a.keys.Back) && a.notice.Visible():
		a.notice.Dismiss()
		return nil, true
	}
	return nil, false
}

func (a *App) View() string {
	if a.route == auth.RouteLogin {
		return styles.CenterView(a.screen.View(), a.width, a.height)
	}
	content := lipgloss.JoinVertical(lipgloss.Left, a.renderHeader(), a.screen.View())
	return styles.CenterView(content, a.width, a.height)
}

func (a *App) renderHeader() string {
	s := a.styles

	items := []struct {
		key   string
		label string
		route auth.Route
	}{
		{"D", "Dashboard", auth.RouteDashboard},
		{"A", "Admin", auth.RouteAdmin},
		{"M", "Manager", auth.RouteManager},
		{"E", "Employee", auth.RouteEmployee},
		{"T", "Tasks", auth.RouteTasks},
	}
	var nav []string
	for _, it := range items {
		style := s.NavItem
		if it.route == a.route {
			style = s.NavActive
		}
		nav = append(nav, style.Render(it.key+" "+it.label))
	}

	right := s.NavItem.Render("L Logout")
	if sess, ok := a.deps.Sessions.Read(); ok {
		right = s.User.Render(sess.Name) + " " + s.Role(sess.Role).Render(string(sess.Role)) + " " + right
	}
	if a.loggingOut {
		right = s.TitleMuted.Render("Signing out...")
	}

	line := s.Title.Render("TKRM") + "  " + strings.Join(nav, "")
	gap := styles.ContentWidth(a.width) - lipgloss.Width(line) - lipgloss.Width(right) - 2
	if gap > 0 {
		line += strings.Repeat(" ", gap)
	} else {
		line += "  "
	}
	line += right

	if n := a.notice.View(s); n != "" {
		line += "\n" + n
	}
	return s.Header.Render(line)
}
