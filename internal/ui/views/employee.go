package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/tkrm/internal/logger"
	"github.com/tgienger/tkrm/internal/models"
	"github.com/tgienger/tkrm/internal/taskview"
	"github.com/tgienger/tkrm/internal/ui/keys"
	"github.com/tgienger/tkrm/internal/ui/styles"
	"go.uber.org/zap"
)

type employeeFocus int

const (
	focusOngoing employeeFocus = iota
	focusCompleted
	focusCalendar
	employeeFocusCount
)

// EmployeeView shows the tasks assigned to the signed-in employee with a
// creation-date calendar
type EmployeeView struct {
	deps    Deps
	mount   uint64
	keys    keys.KeyMap
	styles  *styles.Styles
	spinner spinner.Model

	width  int
	height int

	loading bool
	loaded  bool
	tasks   []models.Task
	pending map[string]bool
	noting  map[string]bool

	focus       employeeFocus
	cursors     [2]int
	month       time.Time
	calendarDay int
	selected    *time.Time

	// note drafts live only as long as the view
	drafts    map[string]string
	noteInput textinput.Model
	noteTask  string

	notice Notice
}

func NewEmployeeView(deps Deps) *EmployeeView {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	input := textinput.New()
	input.Placeholder = "Add a note..."
	input.CharLimit = 1000

	now := deps.now()
	return &EmployeeView{
		deps:        deps,
		mount:       nextMount(),
		keys:        keys.DefaultKeyMap(),
		styles:      styles.NewStyles(),
		spinner:     sp,
		loading:     true,
		pending:     make(map[string]bool),
		noting:      make(map[string]bool),
		month:       taskview.StartOfMonth(now),
		calendarDay: now.Day(),
		drafts:      make(map[string]string),
		noteInput:   input,
	}
}

func (v *EmployeeView) Init() tea.Cmd {
	return tea.Batch(v.loadTasks(), v.spinner.Tick)
}

// Capturing is true while a note is being typed
func (v *EmployeeView) Capturing() bool {
	return v.noteTask != ""
}

func (v *EmployeeView) loadTasks() tea.Cmd {
	mount, api := v.mount, v.deps.API
	return func() tea.Msg {
		ctx, cancel := v.deps.Context()
		defer cancel()
		tasks, err := api.ListTasks(ctx)
		return tasksLoadedMsg{mount: mount, tasks: tasks, err: err}
	}
}

func (v *EmployeeView) toggleStatus(t models.Task) tea.Cmd {
	mount, api := v.mount, v.deps.API
	patch := models.StatusPatch(t.Status.Toggle())
	return func() tea.Msg {
		ctx, cancel := v.deps.Context()
		defer cancel()
		updated, err := api.UpdateTask(ctx, t.ID, patch)
		if err == nil && updated.ID == "" {
			updated = t
			updated.Status = *patch.Status
		}
		return taskUpdatedMsg{mount: mount, id: t.ID, task: updated, err: err}
	}
}

func (v *EmployeeView) appendNote(id, message string) tea.Cmd {
	mount, api := v.mount, v.deps.API
	return func() tea.Msg {
		ctx, cancel := v.deps.Context()
		defer cancel()
		notes, err := api.AppendNote(ctx, id, message)
		return noteAppendedMsg{mount: mount, id: id, notes: notes, err: err}
	}
}

// columns returns the ongoing and completed lists in display order
func (v *EmployeeView) columns() [2][]models.Task {
	ongoing, completed := taskview.PartitionByStatus(v.tasks)
	return [2][]models.Task{ongoing, completed}
}

func (v *EmployeeView) current() (models.Task, bool) {
	if v.focus == focusCalendar {
		return models.Task{}, false
	}
	col := v.columns()[v.focus]
	i := v.cursors[v.focus]
	if i < 0 || i >= len(col) {
		return models.Task{}, false
	}
	return col[i], true
}

func (v *EmployeeView) clampCursors() {
	cols := v.columns()
	for i := range v.cursors {
		v.cursors[i] = clamp(v.cursors[i], 0, max(0, len(cols[i])-1))
	}
}

func (v *EmployeeView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			logger.Warn("employee: task list unavailable", zap.Error(msg.err))
			if !v.loaded {
				v.tasks = nil
			}
			return v, v.notice.Error(msg.err)
		}
		v.loaded = true
		v.tasks = msg.tasks
		v.clampCursors()
		return v, nil

	case taskUpdatedMsg:
		if msg.mount != v.mount {
			return v, nil
		}
		delete(v.pending, msg.id)
		if msg.err != nil {
			return v, v.notice.Error(msg.err)
		}
		updated := msg.task
		updated.ID = msg.id
		updated.Status = updated.Status.Normalize()
		v.tasks = taskview.Replace(v.tasks, updated)
		v.clampCursors()
		return v, nil

	case noteAppendedMsg:
		if msg.mount != v.mount {
			return v, nil
		}
		delete(v.noting, msg.id)
		if msg.err != nil {
			return v, v.notice.Error(msg.err)
		}
		v.tasks = taskview.SetNotes(v.tasks, msg.id, msg.notes)
		delete(v.drafts, msg.id)
		return v, v.notice.Success("Note added")

	case tea.KeyMsg:
		if v.noteTask != "" {
			return v.updateNote(msg)
		}
		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *EmployeeView) updateNote(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := v.noteTask
	switch {
	case key.Matches(msg, v.keys.Back):
		v.drafts[id] = v.noteInput.Value()
		v.noteTask = ""
		v.noteInput.Blur()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		message := strings.TrimSpace(v.noteInput.Value())
		v.noteTask = ""
		v.noteInput.Blur()
		if message == "" {
			delete(v.drafts, id)
			return v, nil
		}
		v.drafts[id] = message
		if v.noting[id] {
			return v, nil
		}
		v.noting[id] = true
		return v, v.appendNote(id, message)
	}

	var cmd tea.Cmd
	v.noteInput, cmd = v.noteInput.Update(msg)
	v.drafts[id] = v.noteInput.Value()
	return v, cmd
}

func (v *EmployeeView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		if v.notice.Visible() {
			v.notice.Dismiss()
		} else {
			v.selected = nil
		}
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.focus = (v.focus + 1) % employeeFocusCount
		return v, nil

	case key.Matches(msg, v.keys.ShiftTab):
		v.focus = (v.focus + employeeFocusCount - 1) % employeeFocusCount
		return v, nil

	case key.Matches(msg, v.keys.PrevMonth):
		v.shiftMonth(-1)
		return v, nil

	case key.Matches(msg, v.keys.NextMonth):
		v.shiftMonth(1)
		return v, nil

	case key.Matches(msg, v.keys.Refresh):
		v.loading = true
		return v, v.loadTasks()
	}

	if v.focus == focusCalendar {
		return v.updateCalendar(msg)
	}

	switch {
	case key.Matches(msg, v.keys.Up):
		if v.cursors[v.focus] > 0 {
			v.cursors[v.focus]--
		}

	case key.Matches(msg, v.keys.Down):
		if v.cursors[v.focus] < len(v.columns()[v.focus])-1 {
			v.cursors[v.focus]++
		}

	case key.Matches(msg, v.keys.Toggle):
		if t, ok := v.current(); ok && !v.pending[t.ID] {
			v.pending[t.ID] = true
			return v, v.toggleStatus(t)
		}

	case key.Matches(msg, v.keys.Note):
		if t, ok := v.current(); ok {
			v.noteTask = t.ID
			v.noteInput.SetValue(v.drafts[t.ID])
			v.noteInput.CursorEnd()
			v.noteInput.Focus()
			return v, textinput.Blink
		}
	}
	return v, nil
}

func (v *EmployeeView) updateCalendar(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	days, _ := taskview.DaysInMonth(v.month)
	switch {
	case key.Matches(msg, v.keys.Left):
		v.moveDay(-1, days)
	case key.Matches(msg, v.keys.Right):
		v.moveDay(1, days)
	case key.Matches(msg, v.keys.Up):
		v.moveDay(-7, days)
	case key.Matches(msg, v.keys.Down):
		v.moveDay(7, days)
	case key.Matches(msg, v.keys.Enter), key.Matches(msg, v.keys.Toggle):
		day := time.Date(v.month.Year(), v.month.Month(), v.calendarDay, 0, 0, 0, 0, v.month.Location())
		v.selected = &day
	}
	return v, nil
}

func (v *EmployeeView) moveDay(delta, days int) {
	next := v.calendarDay + delta
	if next >= 1 && next <= days {
		v.calendarDay = next
	}
}

func (v *EmployeeView) shiftMonth(delta int) {
	v.month = taskview.ShiftMonth(v.month, delta)
	days, _ := taskview.DaysInMonth(v.month)
	v.calendarDay = clamp(v.calendarDay, 1, days)
}

func (v *EmployeeView) View() string {
	s := v.styles
	width := styles.ContentWidth(v.width)

	var b strings.Builder
	b.WriteString(s.Title.Render("Employee panel") + "\n")
	if n := v.notice.View(s); n != "" {
		b.WriteString(n + "\n")
	}

	if v.loading && len(v.tasks) == 0 {
		b.WriteString(s.TitleMuted.Render(v.spinner.View() + " Loading tasks..."))
		return b.String()
	}

	sum := taskview.Summarize(v.tasks)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		s.Box.Render("Total Assigned "+s.Title.Render(fmt.Sprint(sum.Total))),
		" ",
		s.Box.Render("Completed "+s.Completed.Render(fmt.Sprint(sum.Completed))),
		" ",
		s.Box.Render("Pending "+s.Ongoing.Render(fmt.Sprint(sum.Pending))),
	) + "\n")

	cols := v.columns()
	b.WriteString(v.renderColumn(focusOngoing, "Pending / Ongoing Tasks", cols[0], "No pending tasks.", width))
	b.WriteString(v.renderColumn(focusCompleted, "Completed Tasks", cols[1], "No completed tasks yet.", width))
	b.WriteString(s.Section.Render("Task Calendar") + "\n")
	b.WriteString(v.renderCalendar())
	b.WriteString(v.renderSelectedDay())

	if v.noteTask != "" {
		b.WriteString("\n" + s.InputFocused.Width(clamp(width-6, 20, 60)).Render(v.noteInput.View()))
		b.WriteString("\n" + helpLine(s, "↵", "add note", "esc", "keep draft"))
		return b.String()
	}
	b.WriteString("\n" + helpLine(s, "tab", "section", "↑/↓", "move", "space", "toggle status", "c", "note", "[/]", "month", "r", "refresh"))
	return b.String()
}

func (v *EmployeeView) renderColumn(focus employeeFocus, title string, tasks []models.Task, empty string, width int) string {
	s := v.styles
	header := s.Section.Render(title)
	if v.focus == focus {
		header = s.Section.Underline(true).Render(title)
	}

	rows := []string{header}
	if len(tasks) == 0 {
		rows = append(rows, s.TitleMuted.Render("  "+empty))
	}
	now := v.deps.now()
	for i, t := range tasks {
		selected := v.focus == focus && v.cursors[focus] == i
		rows = append(rows, v.renderCard(t, selected, now, width))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...) + "\n"
}

func (v *EmployeeView) renderCard(t models.Task, selected bool, now time.Time, width int) string {
	s := v.styles

	status := s.Ongoing.Render(string(t.Status))
	action := "Mark Completed"
	if t.Status.IsCompleted() {
		status = s.Completed.Render(string(t.Status))
		action = "Mark Ongoing"
	}
	if v.pending[t.ID] {
		action = v.spinner.View() + " saving"
	}

	title := s.ListItem.Render(t.Title)
	if selected {
		title = s.ListSelected.Render("▸ " + t.Title)
	}
	lines := []string{
		fmt.Sprintf("%s  %s", title, status),
		s.Meta.Render("    Assigned " + taskview.RelativeAge(t.CreatedAt, now)),
	}
	if !selected {
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	inner := clamp(width-8, 20, 72)
	if d := renderMarkdown(t.Description, inner); d != "" {
		lines = append(lines, lipgloss.NewStyle().MarginLeft(4).Render(d))
	}
	lines = append(lines, lipgloss.NewStyle().MarginLeft(4).Render(s.Label.Render("Notes")))
	if len(t.Notes) == 0 {
		lines = append(lines, s.TitleMuted.Render("    No notes yet."))
	}
	for _, n := range t.Notes {
		lines = append(lines, "    • "+n.Message)
	}
	if draft := v.drafts[t.ID]; draft != "" && v.noteTask != t.ID {
		lines = append(lines, s.Meta.Render("    draft: "+draft))
	}
	lines = append(lines, s.HelpDesc.Render("    space "+action))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (v *EmployeeView) renderCalendar() string {
	s := v.styles
	days, offset := taskview.DaysInMonth(v.month)
	marks := taskview.BucketByDay(v.tasks, v.month)
	today := v.deps.now()

	var b strings.Builder
	b.WriteString(fmt.Sprintf("  ‹ %s %d ›\n", v.month.Month(), v.month.Year()))
	for _, d := range []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"} {
		b.WriteString(s.Day.Render(d) + "  ")
	}
	b.WriteString("\n")

	col := 0
	for i := 0; i < offset; i++ {
		b.WriteString(s.Day.Render("") + "  ")
		col++
	}
	for day := 1; day <= days; day++ {
		style := s.Day
		date := time.Date(v.month.Year(), v.month.Month(), day, 0, 0, 0, 0, v.month.Location())
		switch {
		case v.focus == focusCalendar && day == v.calendarDay:
			style = s.DaySelected
		case v.selected != nil && taskview.SameDay(date, *v.selected):
			style = s.DaySelected
		case taskview.SameDay(today, date):
			style = s.DayToday
		}

		mark := "  "
		if m, ok := marks[day]; ok {
			p, c := " ", " "
			if m.HasPending {
				p = s.MarkPending.Render("•")
			}
			if m.HasCompleted {
				c = s.MarkComplete.Render("•")
			}
			mark = p + c
		}
		b.WriteString(style.Render(fmt.Sprint(day)) + mark)

		col++
		if col == 7 {
			b.WriteString("\n")
			col = 0
		}
	}
	if col != 0 {
		b.WriteString("\n")
	}
	b.WriteString(s.MarkPending.Render("•") + s.HelpDesc.Render(" Pending/Ongoing Tasks  ") +
		s.MarkComplete.Render("•") + s.HelpDesc.Render(" Completed Tasks") + "\n")
	return b.String()
}

func (v *EmployeeView) renderSelectedDay() string {
	if v.selected == nil {
		return ""
	}
	s := v.styles

	dayTasks := taskview.TasksOnDate(v.tasks, *v.selected)
	rows := []string{s.Section.Render("Tasks for " + v.selected.Format("02/01/2006"))}
	if len(dayTasks) == 0 {
		rows = append(rows, s.TitleMuted.Render("  No tasks for this date."))
		return lipgloss.JoinVertical(lipgloss.Left, rows...) + "\n"
	}

	ongoing, completed := taskview.PartitionByStatus(dayTasks)
	if len(ongoing) > 0 {
		rows = append(rows, s.Ongoing.Render(fmt.Sprintf("  Pending (%d)", len(ongoing))))
		for _, t := range ongoing {
			rows = append(rows, "    "+t.Title+"  "+s.TitleMuted.Render(t.Description))
		}
	}
	if len(completed) > 0 {
		rows = append(rows, s.Completed.Render(fmt.Sprintf("  Completed (%d)", len(completed))))
		for _, t := range completed {
			rows = append(rows, "    "+t.Title+"  "+s.TitleMuted.Render(t.Description))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...) + "\n"
}
