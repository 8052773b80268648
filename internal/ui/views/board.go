package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/tkrm/internal/auth"
	"github.com/tgienger/tkrm/internal/logger"
	"github.com/tgienger/tkrm/internal/models"
	"github.com/tgienger/tkrm/internal/taskview"
	"github.com/tgienger/tkrm/internal/ui/keys"
	"github.com/tgienger/tkrm/internal/ui/styles"
	"go.uber.org/zap"
)

// BoardConfig selects what a task board offers
type BoardConfig struct {
	Route    auth.Route
	Title    string
	Subtitle string

	// UserRoles lists the directory section's roles; empty hides it
	UserRoles   []models.Role
	DeleteUsers bool

	AssignRoles     []models.Role
	RequireDeadline bool
	DefaultPriority models.Priority

	// Refetch reloads the list after a create or delete
	Refetch         bool
	ShowCompletedAt bool
}

func AdminBoard() BoardConfig {
	return BoardConfig{
		Route:           auth.RouteAdmin,
		Title:           "Admin Panel",
		Subtitle:        "Manage all users, tasks & assignments.",
		UserRoles:       models.Roles,
		DeleteUsers:     true,
		AssignRoles:     []models.Role{models.RoleEmployee},
		RequireDeadline: true,
		DefaultPriority: models.PriorityMedium,
	}
}

func ManagerBoard() BoardConfig {
	return BoardConfig{
		Route:           auth.RouteManager,
		Title:           "Manager Panel",
		Subtitle:        "Assign and track your team's tasks.",
		UserRoles:       []models.Role{models.RoleEmployee},
		AssignRoles:     []models.Role{models.RoleEmployee},
		RequireDeadline: true,
		DefaultPriority: models.PriorityMedium,
		ShowCompletedAt: true,
	}
}

func TasksBoard() BoardConfig {
	return BoardConfig{
		Route:           auth.RouteTasks,
		Title:           "Admin / Manager Task Panel",
		AssignRoles:     models.Roles,
		DefaultPriority: models.PriorityLow,
		Refetch:         true,
	}
}

type boardFocus int

const (
	focusTasks boardFocus = iota
	focusUsers
)

type confirmKind int

const (
	confirmNone confirmKind = iota
	confirmTask
	confirmUser
)

// BoardView is the task list and create form shared by the Admin panel,
// the Manager panel and the Tasks page
type BoardView struct {
	deps    Deps
	cfg     BoardConfig
	mount   uint64
	self    models.Session
	keys    keys.KeyMap
	styles  *styles.Styles
	spinner spinner.Model

	width  int
	height int

	loading bool
	loaded  bool
	tasks   []models.Task
	users   []models.User

	focus      boardFocus
	cursor     int
	scrollY    int
	userCursor int
	expanded   string

	confirming  confirmKind
	confirmID   string
	confirmName string
	deleting    bool

	form   *TaskForm
	notice Notice
}

func NewBoardView(deps Deps, cfg BoardConfig, self models.Session) *BoardView {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &BoardView{
		deps:    deps,
		cfg:     cfg,
		mount:   nextMount(),
		self:    self,
		keys:    keys.DefaultKeyMap(),
		styles:  styles.NewStyles(),
		spinner: sp,
		loading: true,
		form:    NewTaskForm(cfg.RequireDeadline, cfg.DefaultPriority),
	}
}

func (v *BoardView) Init() tea.Cmd {
	return tea.Batch(v.loadTasks(), v.loadUsers(), v.spinner.Tick)
}

// Capturing is true while the create form is open
func (v *BoardView) Capturing() bool {
	return v.form.Active() || v.confirming != confirmNone
}

func (v *BoardView) showUsers() bool { return len(v.cfg.UserRoles) > 0 }

func (v *BoardView) loadTasks() tea.Cmd {
	mount, api := v.mount, v.deps.API
	return func() tea.Msg {
		ctx, cancel := v.deps.Context()
		defer cancel()
		tasks, err := api.ListTasks(ctx)
		return tasksLoadedMsg{mount: mount, tasks: tasks, err: err}
	}
}

func (v *BoardView) loadUsers() tea.Cmd {
	mount, api := v.mount, v.deps.API
	return func() tea.Msg {
		ctx, cancel := v.deps.Context()
		defer cancel()
		users, err := api.ListUsers(ctx)
		return usersLoadedMsg{mount: mount, users: users, err: err}
	}
}

func (v *BoardView) createTask(fields models.TaskFields) tea.Cmd {
	mount, api := v.mount, v.deps.API
	return func() tea.Msg {
		ctx, cancel := v.deps.Context()
		defer cancel()
		t, err := api.CreateTask(ctx, fields)
		return taskCreatedMsg{mount: mount, task: t, err: err}
	}
}

func (v *BoardView) deleteTask(id string) tea.Cmd {
	mount, api := v.mount, v.deps.API
	return func() tea.Msg {
		ctx, cancel := v.deps.Context()
		defer cancel()
		return taskDeletedMsg{mount: mount, id: id, err: api.DeleteTask(ctx, id)}
	}
}

func (v *BoardView) deleteUser(id string) tea.Cmd {
	mount, api := v.mount, v.deps.API
	return func() tea.Msg {
		ctx, cancel := v.deps.Context()
		defer cancel()
		return userDeletedMsg{mount: mount, id: id, err: api.DeleteUser(ctx, id)}
	}
}

// directory is the user section: the configured roles minus the viewer
func (v *BoardView) directory() []models.User {
	return taskview.UsersWithRole(taskview.RemoveUser(v.users, v.self.ID), v.cfg.UserRoles...)
}

func (v *BoardView) assignable() []models.User {
	return taskview.UsersWithRole(taskview.RemoveUser(v.users, v.self.ID), v.cfg.AssignRoles...)
}

func (v *BoardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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

	case tasksLoadedMsg:
		if msg.mount != v.mount {
			return v, nil
		}
		v.loading = false
		if msg.err != nil {
			logger.Warn("board: task list unavailable", zap.String("route", string(v.cfg.Route)), zap.Error(msg.err))
			// a failed reload keeps what is already on screen
			if !v.loaded {
				v.tasks = nil
			}
			return v, v.notice.Error(msg.err)
		}
		v.loaded = true
		v.tasks = msg.tasks
		v.clampCursor()
		return v, nil

	case usersLoadedMsg:
		if msg.mount != v.mount {
			return v, nil
		}
		if msg.err != nil {
			logger.Warn("board: user list unavailable", zap.String("route", string(v.cfg.Route)), zap.Error(msg.err))
			v.users = nil
			v.form.SetAssignees(nil)
			if v.showUsers() {
				return v, v.notice.Error(msg.err)
			}
			return v, nil
		}
		v.users = msg.users
		v.form.SetAssignees(v.assignable())
		v.clampCursor()
		return v, nil

	case taskCreatedMsg:
		if msg.mount != v.mount {
			return v, nil
		}
		v.form.SetBusy(false)
		if msg.err != nil {
			v.form.SetError(msg.err)
			return v, v.notice.Error(msg.err)
		}
		v.tasks = taskview.Append(v.tasks, msg.task)
		v.form.Close()
		cmds := []tea.Cmd{v.notice.Success("Task assigned successfully")}
		if v.cfg.Refetch {
			cmds = append(cmds, v.loadTasks())
		}
		return v, tea.Batch(cmds...)

	case taskDeletedMsg:
		if msg.mount != v.mount {
			return v, nil
		}
		v.deleting = false
		if msg.err != nil {
			return v, v.notice.Error(msg.err)
		}
		v.tasks = taskview.Remove(v.tasks, msg.id)
		if v.expanded == msg.id {
			v.expanded = ""
		}
		v.clampCursor()
		cmds := []tea.Cmd{v.notice.Success("Task deleted")}
		if v.cfg.Refetch {
			cmds = append(cmds, v.loadTasks())
		}
		return v, tea.Batch(cmds...)

	case userDeletedMsg:
		if msg.mount != v.mount {
			return v, nil
		}
		v.deleting = false
		if msg.err != nil {
			return v, v.notice.Error(msg.err)
		}
		var name string
		for _, u := range v.users {
			if u.ID == msg.id {
				name = u.Name
			}
		}
		v.users = taskview.RemoveUser(v.users, msg.id)
		v.form.SetAssignees(v.assignable())
		v.clampCursor()
		return v, v.notice.Success(fmt.Sprintf("User %q deleted successfully", name))

	case tea.KeyMsg:
		if v.confirming != confirmNone {
			return v.updateConfirm(msg)
		}
		if v.form.Active() {
			fields, cmd := v.form.Update(msg)
			if fields != nil {
				v.form.SetBusy(true)
				return v, tea.Batch(cmd, v.createTask(*fields))
			}
			return v, cmd
		}
		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *BoardView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		if v.notice.Visible() {
			v.notice.Dismiss()
			return v, nil
		}
		if v.expanded != "" {
			v.expanded = ""
		}
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		if v.showUsers() {
			if v.focus == focusTasks {
				v.focus = focusUsers
			} else {
				v.focus = focusTasks
			}
		}
		return v, nil

	case key.Matches(msg, v.keys.Users):
		if v.showUsers() {
			v.focus = focusUsers
		}
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.focus == focusUsers {
			if v.userCursor > 0 {
				v.userCursor--
			}
		} else if v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.focus == focusUsers {
			if v.userCursor < len(v.directory())-1 {
				v.userCursor++
			}
		} else if v.cursor < len(v.tasks)-1 {
			v.cursor++
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.New):
		if v.form.Busy() {
			return v, nil
		}
		return v, v.form.Open()

	case key.Matches(msg, v.keys.Expand):
		if v.focus == focusTasks && len(v.tasks) > 0 {
			id := v.tasks[v.cursor].ID
			if v.expanded == id {
				v.expanded = ""
			} else {
				v.expanded = id
			}
		}
		return v, nil

	case key.Matches(msg, v.keys.Delete):
		if v.deleting {
			return v, nil
		}
		if v.focus == focusUsers {
			users := v.directory()
			if v.cfg.DeleteUsers && len(users) > 0 {
				v.confirming = confirmUser
				v.confirmID = users[v.userCursor].ID
				v.confirmName = users[v.userCursor].Name
			}
			return v, nil
		}
		if len(v.tasks) > 0 {
			v.confirming = confirmTask
			v.confirmID = v.tasks[v.cursor].ID
			v.confirmName = v.tasks[v.cursor].Title
		}
		return v, nil

	case key.Matches(msg, v.keys.Refresh):
		v.loading = true
		return v, tea.Batch(v.loadTasks(), v.loadUsers())
	}

	return v, nil
}

func (v *BoardView) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Confirm):
		kind, id := v.confirming, v.confirmID
		v.confirming = confirmNone
		v.deleting = true
		if kind == confirmUser {
			return v, v.deleteUser(id)
		}
		return v, v.deleteTask(id)
	case key.Matches(msg, v.keys.Cancel):
		v.confirming = confirmNone
	}
	return v, nil
}

func (v *BoardView) clampCursor() {
	v.cursor = clamp(v.cursor, 0, max(0, len(v.tasks)-1))
	v.userCursor = clamp(v.userCursor, 0, max(0, len(v.directory())-1))
	v.ensureVisible()
}

func (v *BoardView) visibleTasks() int {
	// each task takes three lines
	available := v.height - 14
	if v.showUsers() {
		available -= min(len(v.directory()), 6) + 2
	}
	return max(1, available/3)
}

func (v *BoardView) ensureVisible() {
	visible := v.visibleTasks()
	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	} else if v.cursor >= v.scrollY+visible {
		v.scrollY = v.cursor - visible + 1
	}
}

func (v *BoardView) View() string {
	if v.confirming != confirmNone {
		return v.renderConfirm()
	}

	s := v.styles
	width := styles.ContentWidth(v.width)

	var b strings.Builder
	b.WriteString(s.Title.Render(v.cfg.Title))
	if v.cfg.Subtitle != "" {
		b.WriteString("\n" + s.TitleMuted.Render(v.cfg.Subtitle))
	}
	b.WriteString("\n")
	if n := v.notice.View(s); n != "" {
		b.WriteString(n + "\n")
	}

	if v.form.Active() {
		b.WriteString("\n" + v.form.View(s, width, v.spinner.View()))
		return b.String()
	}

	if v.showUsers() {
		b.WriteString(v.renderUsers())
	}

	b.WriteString(s.Section.Render(fmt.Sprintf("Tasks (%d)", len(v.tasks))) + "\n")
	b.WriteString(v.renderTasks(width))
	b.WriteString("\n")

	pairs := []string{"↑/↓", "move", "↵", "notes", "n", "new task", "d", "delete", "r", "refresh"}
	if v.showUsers() {
		pairs = append(pairs, "tab/u", "users")
	}
	b.WriteString(helpLine(s, pairs...))
	return b.String()
}

func (v *BoardView) renderUsers() string {
	s := v.styles
	users := v.directory()
	title := "Users"
	if len(v.cfg.UserRoles) == 1 && v.cfg.UserRoles[0] == models.RoleEmployee {
		title = "Employees"
	}

	var rows []string
	rows = append(rows, s.Section.Render(title))
	if len(users) == 0 {
		rows = append(rows, s.TitleMuted.Render("  No users found."))
	}
	start := max(0, v.userCursor-5)
	for i := start; i < len(users) && i < start+6; i++ {
		u := users[i]
		line := fmt.Sprintf("%s  %s  %s", u.Name, s.TitleMuted.Render(u.Email), s.Role(u.Role).Render(string(u.Role)))
		style := s.ListItem
		if i == v.userCursor && v.focus == focusUsers {
			style = s.ListSelected
		}
		rows = append(rows, style.Render(line))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...) + "\n"
}

func (v *BoardView) renderTasks(width int) string {
	s := v.styles
	if v.loading && len(v.tasks) == 0 {
		return s.TitleMuted.Render(v.spinner.View() + " Loading tasks...")
	}
	if len(v.tasks) == 0 {
		return s.TitleMuted.Render("No tasks found. Press 'n' to assign one.")
	}

	var items []string
	end := min(v.scrollY+v.visibleTasks(), len(v.tasks))
	for i := v.scrollY; i < end; i++ {
		items = append(items, v.renderTask(v.tasks[i], i == v.cursor && v.focus == focusTasks, width))
	}
	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (v *BoardView) renderTask(t models.Task, selected bool, width int) string {
	s := v.styles

	status := s.Ongoing.Render(string(t.Status))
	if t.Status.IsCompleted() {
		status = s.Completed.Render(string(t.Status))
	}
	title := s.ListItem.Render(t.Title)
	if selected {
		title = s.ListSelected.Render("▸ " + t.Title)
	}
	head := fmt.Sprintf("%s  %s • %s", title, s.Priority(t.Priority).Render(string(t.Priority)), status)

	meta := []string{
		"Assigned To: " + taskview.AssigneeName(t, v.users),
		"Created At: " + t.CreatedAt.Local().Format("2 Jan 2006, 15:04"),
	}
	if t.Deadline != nil {
		meta = append(meta, "Deadline: "+t.Deadline.Format("02/01/2006"))
	}
	if v.cfg.ShowCompletedAt && t.Status.IsCompleted() && t.WasUpdated() {
		meta = append(meta, "Completed At: "+t.UpdatedAt.Local().Format("2 Jan 2006, 15:04"))
	}
	lines := []string{head, s.Meta.Render("    " + strings.Join(meta, " · "))}

	if v.expanded == t.ID {
		lines = append(lines, v.renderDetail(t, width))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (v *BoardView) renderDetail(t models.Task, width int) string {
	s := v.styles
	inner := clamp(width-8, 20, 72)

	var rows []string
	if d := renderMarkdown(t.Description, inner); d != "" {
		rows = append(rows, d, "")
	}
	rows = append(rows, s.Label.Render("Notes"))
	if len(t.Notes) == 0 {
		rows = append(rows, s.TitleMuted.Render("No notes available."))
	}
	for _, n := range t.Notes {
		rows = append(rows,
			renderMarkdown(n.Message, inner),
			s.Meta.Render(n.Date.Local().Format("2 Jan 2006, 15:04")),
		)
	}
	return lipgloss.NewStyle().MarginLeft(4).Render(s.Box.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))
}

func (v *BoardView) renderConfirm() string {
	s := v.styles
	width := styles.ContentWidth(v.width)

	var content string
	if v.confirming == confirmUser {
		content = lipgloss.JoinVertical(lipgloss.Center,
			s.Title.Foreground(styles.Current.Error).Render("Delete User Account"),
			"",
			fmt.Sprintf("Are you sure you want to delete %s? This action cannot be undone.", v.confirmName),
			"",
			s.Ongoing.Render("Warning: All tasks assigned to this user will also be affected."),
			"",
			lipgloss.JoinHorizontal(lipgloss.Center,
				s.ButtonDanger.Render(" Y - Delete User "),
				"  ",
				s.Button.Render(" N - Cancel "),
			),
		)
	} else {
		content = lipgloss.JoinVertical(lipgloss.Center,
			s.Title.Foreground(styles.Current.Error).Render("Delete this task?"),
			"",
			s.TitleMuted.Render(v.confirmName),
			"",
			lipgloss.JoinHorizontal(lipgloss.Center,
				s.ButtonPrimary.Render(" Y - Yes "),
				"  ",
				s.Button.Render(" N - No "),
			),
		)
	}

	return lipgloss.Place(width, max(v.height-4, 10),
		lipgloss.Center, lipgloss.Center,
		s.Box.Width(clamp(width-4, 30, 70)).Render(content),
	)
}
