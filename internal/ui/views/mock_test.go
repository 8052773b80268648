package views

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/mock"
	"github.com/tgienger/tkrm/internal/auth"
	"github.com/tgienger/tkrm/internal/models"
)

// MockTaskAPI is a mock of the backend client
type MockTaskAPI struct {
	mock.Mock
}

func (m *MockTaskAPI) Login(ctx context.Context, credential string) (models.Session, error) {
	args := m.Called(ctx, credential)
	return args.Get(0).(models.Session), args.Error(1)
}

func (m *MockTaskAPI) Logout(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTaskAPI) ListTasks(ctx context.Context) ([]models.Task, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Task), args.Error(1)
}

func (m *MockTaskAPI) CreateTask(ctx context.Context, fields models.TaskFields) (models.Task, error) {
	args := m.Called(ctx, fields)
	return args.Get(0).(models.Task), args.Error(1)
}

func (m *MockTaskAPI) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error) {
	args := m.Called(ctx, id, patch)
	return args.Get(0).(models.Task), args.Error(1)
}

func (m *MockTaskAPI) DeleteTask(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskAPI) AppendNote(ctx context.Context, id, message string) ([]models.Note, error) {
	args := m.Called(ctx, id, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Note), args.Error(1)
}

func (m *MockTaskAPI) ListUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockTaskAPI) DeleteUser(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type memSessions struct {
	mu   sync.Mutex
	sess *models.Session
}

func (s *memSessions) Read() (models.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sess == nil {
		return models.Session{}, false
	}
	return *s.sess, true
}

func (s *memSessions) Write(sess models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = &sess
	return nil
}

func (s *memSessions) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = nil
	return nil
}

var (
	testNow = time.Date(2026, time.October, 15, 10, 0, 0, 0, time.UTC)

	adminSession = models.Session{ID: "a1", Name: "Alice Admin", Email: "admin@example.com", Role: models.RoleAdmin, Token: "t-admin"}

	directory = []models.User{
		{ID: "a1", Name: "Alice Admin", Email: "admin@example.com", Role: models.RoleAdmin},
		{ID: "m1", Name: "Morgan Manager", Email: "manager@example.com", Role: models.RoleManager},
		{ID: "e1", Name: "Erin Employee", Email: "erin@example.com", Role: models.RoleEmployee},
		{ID: "e2", Name: "Eli Employee", Email: "eli@example.com", Role: models.RoleEmployee},
	}
)

func newDeps(api *MockTaskAPI) Deps {
	return Deps{
		API:      api,
		Sessions: &memSessions{},
		Identity: auth.DevProvider{},
		Timeout:  time.Second,
		Now:      func() time.Time { return testNow },
	}
}

func sampleTask(id, title string, status models.Status, created time.Time) models.Task {
	return models.Task{
		ID:         id,
		Title:      title,
		Priority:   models.PriorityMedium,
		Status:     status,
		AssignedTo: &models.UserRef{ID: "e1", Name: "Erin Employee"},
		CreatedAt:  created,
		UpdatedAt:  created,
		Notes:      []models.Note{},
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(m tea.Model, s string) {
	for _, r := range s {
		m.Update(runes(string(r)))
	}
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keySpace = tea.KeyMsg{Type: tea.KeySpace}
	keySave  = tea.KeyMsg{Type: tea.KeyCtrlS}
)

// runCmd executes cmd and everything it batches. Commands that block
// longer than a short grace period, such as notice timers, are skipped.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	out := make(chan tea.Msg, 1)
	go func() { out <- cmd() }()

	select {
	case msg := <-out:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var msgs []tea.Msg
			for _, c := range batch {
				msgs = append(msgs, runCmd(c)...)
			}
			return msgs
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(300 * time.Millisecond):
		return nil
	}
}

func findMsg[T any](msgs []tea.Msg) (T, bool) {
	for _, m := range msgs {
		if t, ok := m.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}
