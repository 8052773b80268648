package views

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/tkrm/internal/models"
	"github.com/tgienger/tkrm/internal/ui/keys"
	"github.com/tgienger/tkrm/internal/ui/styles"
)

const (
	fieldTitle = iota
	fieldDesc
	fieldPriority
	fieldDeadline
	fieldAssignee
	fieldSave
	fieldCount
)

// TaskForm collects the fields of a new task
type TaskForm struct {
	keys            keys.KeyMap
	requireDeadline bool
	defaultPriority models.Priority

	open      bool
	busy      bool
	focus     int
	title     textinput.Model
	desc      textarea.Model
	deadline  textinput.Model
	priority  int
	assignees []models.User
	assignee  int // -1 = nobody chosen
	err       string
}

func NewTaskForm(requireDeadline bool, defaultPriority models.Priority) *TaskForm {
	title := textinput.New()
	title.Placeholder = "Task title"
	title.CharLimit = 200

	desc := textarea.New()
	desc.Placeholder = "Description (markdown)"
	desc.CharLimit = 2000
	desc.SetWidth(50)
	desc.SetHeight(3)
	desc.ShowLineNumbers = false

	deadline := textinput.New()
	deadline.Placeholder = "YYYY-MM-DD"
	deadline.CharLimit = len(models.DeadlineLayout)

	f := &TaskForm{
		keys:            keys.DefaultKeyMap(),
		requireDeadline: requireDeadline,
		defaultPriority: defaultPriority,
		title:           title,
		desc:            desc,
		deadline:        deadline,
	}
	f.reset()
	return f
}

func (f *TaskForm) reset() {
	f.focus = fieldTitle
	f.title.Reset()
	f.desc.Reset()
	f.deadline.Reset()
	f.priority = 0
	for i, p := range models.Priorities {
		if p == f.defaultPriority {
			f.priority = i
		}
	}
	f.assignee = -1
	f.err = ""
}

// Open shows an empty form
func (f *TaskForm) Open() tea.Cmd {
	f.reset()
	f.open = true
	f.updateFocus()
	return textinput.Blink
}

func (f *TaskForm) Close() {
	f.open = false
	f.title.Blur()
	f.desc.Blur()
	f.deadline.Blur()
}

func (f *TaskForm) Active() bool { return f.open }

// SetBusy marks a create request in flight. Submissions are ignored
// until it is cleared.
func (f *TaskForm) SetBusy(b bool) { f.busy = b }

func (f *TaskForm) Busy() bool { return f.busy }

// SetAssignees replaces the candidates. The current choice is kept when
// the same user is still present.
func (f *TaskForm) SetAssignees(users []models.User) {
	var current string
	if f.assignee >= 0 && f.assignee < len(f.assignees) {
		current = f.assignees[f.assignee].ID
	}
	f.assignees = users
	f.assignee = -1
	for i, u := range users {
		if u.ID == current {
			f.assignee = i
		}
	}
}

// Fields returns what has been entered so far
func (f *TaskForm) Fields() models.TaskFields {
	fields := models.TaskFields{
		Title:       strings.TrimSpace(f.title.Value()),
		Description: strings.TrimSpace(f.desc.Value()),
		Priority:    models.Priorities[f.priority],
		Deadline:    strings.TrimSpace(f.deadline.Value()),
	}
	if f.assignee >= 0 && f.assignee < len(f.assignees) {
		fields.AssignedTo = f.assignees[f.assignee].ID
	}
	return fields
}

// SetError shows a validation failure inline
func (f *TaskForm) SetError(err error) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		f.err = verr.Error()
		return
	}
	f.err = ""
}

func (f *TaskForm) updateFocus() {
	f.title.Blur()
	f.desc.Blur()
	f.deadline.Blur()
	switch f.focus {
	case fieldTitle:
		f.title.Focus()
	case fieldDesc:
		f.desc.Focus()
	case fieldDeadline:
		f.deadline.Focus()
	}
}

func (f *TaskForm) cycle(field, dir int) {
	switch field {
	case fieldPriority:
		f.priority = (f.priority + dir + len(models.Priorities)) % len(models.Priorities)
	case fieldAssignee:
		if len(f.assignees) == 0 {
			return
		}
		f.assignee = (f.assignee + dir + len(f.assignees)) % len(f.assignees)
	}
}

// submit validates locally. Only valid fields leave the form.
func (f *TaskForm) submit() (*models.TaskFields, tea.Cmd) {
	if f.busy {
		return nil, nil
	}
	fields := f.Fields()
	if err := fields.Validate(f.requireDeadline); err != nil {
		f.SetError(err)
		return nil, nil
	}
	f.err = ""
	return &fields, nil
}

// Update handles a key while the form is open. It returns the fields
// when the user submits a valid form.
func (f *TaskForm) Update(msg tea.KeyMsg) (*models.TaskFields, tea.Cmd) {
	switch {
	case key.Matches(msg, f.keys.Back):
		f.Close()
		return nil, nil

	case key.Matches(msg, f.keys.Submit):
		return f.submit()

	case key.Matches(msg, f.keys.Tab):
		f.focus = (f.focus + 1) % fieldCount
		f.updateFocus()
		return nil, nil

	case key.Matches(msg, f.keys.ShiftTab):
		f.focus = (f.focus + fieldCount - 1) % fieldCount
		f.updateFocus()
		return nil, nil

	case key.Matches(msg, f.keys.Enter):
		switch f.focus {
		case fieldTitle, fieldDeadline, fieldPriority, fieldAssignee:
			f.focus++
			f.updateFocus()
			return nil, nil
		case fieldSave:
			return f.submit()
		}
	}

	if f.focus == fieldPriority || f.focus == fieldAssignee {
		switch msg.String() {
		case "left", "h", "up", "k":
			f.cycle(f.focus, -1)
		case "right", "l", "down", "j", " ":
			f.cycle(f.focus, 1)
		}
		return nil, nil
	}

	var cmd tea.Cmd
	switch f.focus {
	case fieldTitle:
		f.title, cmd = f.title.Update(msg)
	case fieldDesc:
		f.desc, cmd = f.desc.Update(msg)
	case fieldDeadline:
		f.deadline, cmd = f.deadline.Update(msg)
	}
	return nil, cmd
}

func (f *TaskForm) View(s *styles.Styles, width int, spin string) string {
	inputWidth := clamp(width-10, 20, 50)
	f.title.Width = inputWidth - 2
	f.deadline.Width = inputWidth - 2
	f.desc.SetWidth(inputWidth)

	field := func(idx int, label, body string) string {
		style := s.Input
		if f.focus == idx {
			style = s.InputFocused
		}
		return lipgloss.JoinVertical(lipgloss.Left, s.Label.Render(label), style.Width(inputWidth).Render(body))
	}

	priority := s.Priority(models.Priorities[f.priority]).Render("‹ " + string(models.Priorities[f.priority]) + " ›")

	assignee := s.TitleMuted.Render("Select employee")
	if len(f.assignees) == 0 {
		assignee = s.TitleMuted.Render("No one to assign")
	} else if f.assignee >= 0 {
		u := f.assignees[f.assignee]
		assignee = "‹ " + u.Name + " (" + string(u.Role) + ") ›"
	}

	deadlineLabel := "Deadline"
	if f.requireDeadline {
		deadlineLabel += " *"
	}

	saveStyle := s.Button
	if f.focus == fieldSave {
		saveStyle = s.ButtonFocused
	}
	saveLabel := "Assign Task"
	if f.busy {
		saveLabel = spin + " Assigning..."
	}

	rows := []string{
		s.Title.Render("Assign a New Task"),
		"",
		field(fieldTitle, "Title *", f.title.View()),
		field(fieldDesc, "Description", f.desc.View()),
		field(fieldPriority, "Priority", priority),
		field(fieldDeadline, deadlineLabel, f.deadline.View()),
		field(fieldAssignee, "Assign to *", assignee),
		"",
		saveStyle.Render(saveLabel),
	}
	if f.err != "" {
		rows = append(rows, s.FieldError.Render(f.err))
	}
	rows = append(rows, helpLine(s, "tab", "next", "←/→", "choose", "ctrl+s", "save", "esc", "cancel"))
	return s.Box.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// helpLine renders key/description pairs
func helpLine(s *styles.Styles, pairs ...string) string {
	parts := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, s.HelpKey.Render(pairs[i])+" "+s.HelpDesc.Render(pairs[i+1]))
	}
	return s.Help.Render(strings.Join(parts, "  "))
}
