package views

import (
	"context"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tgienger/tkrm/internal/auth"
	"github.com/tgienger/tkrm/internal/models"
)

// TaskAPI is the backend surface the screens use
type TaskAPI interface {
	Login(ctx context.Context, credential string) (models.Session, error)
	Logout(ctx context.Context) error
	ListTasks(ctx context.Context) ([]models.Task, error)
	CreateTask(ctx context.Context, fields models.TaskFields) (models.Task, error)
	UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error)
	DeleteTask(ctx context.Context, id string) error
	AppendNote(ctx context.Context, id, message string) ([]models.Note, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// Sessions is the session store as seen by the screens
type Sessions interface {
	Read() (models.Session, bool)
	Write(models.Session) error
	Clear() error
}

// Deps are shared by every screen
type Deps struct {
	API      TaskAPI
	Sessions Sessions
	Identity auth.IdentityProvider
	Timeout  time.Duration
	Now      func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// Context bounds a single backend call
func (d Deps) Context() (context.Context, context.CancelFunc) {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}

// Screen is a mountable view. Capturing reports whether it is reading
// text input, in which case global shortcuts must not fire.
type Screen interface {
	tea.Model
	Capturing() bool
}

var mounts atomic.Uint64

// nextMount gives each screen instance an id. Async results carry the id
// of the screen that asked for them and are dropped by any other.
func nextMount() uint64 {
	return mounts.Add(1)
}
