package devserver

import (
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tgienger/tkrm/internal/models"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrForbidden   = errors.New("forbidden")
	ErrUnknownUser = errors.New("unknown user")
)

// DevPrefix marks credentials issued by the dev identity provider
const DevPrefix = "dev:"

// Store keeps users, tasks and issued tokens in memory
type Store struct {
	mtx     *sync.RWMutex
	users   map[string]*models.User
	userIDs []string
	tasks   map[string]*models.Task
	taskIDs []string
	tokens  map[string]string
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{
		mtx:     &sync.RWMutex{},
		users:   make(map[string]*models.User),
		userIDs: []string{},
		tasks:   make(map[string]*models.Task),
		taskIDs: []string{},
		tokens:  make(map[string]string),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SeedUsers is the directory NewSeededStore starts with
var SeedUsers = []models.User{
	{Name: "Alice Admin", Email: "admin@example.com", Role: models.RoleAdmin},
	{Name: "Morgan Manager", Email: "manager@example.com", Role: models.RoleManager},
	{Name: "Erin Employee", Email: "erin@example.com", Role: models.RoleEmployee},
	{Name: "Eli Employee", Email: "eli@example.com", Role: models.RoleEmployee},
}

func NewSeededStore() *Store {
	s := NewStore()
	for _, u := range SeedUsers {
		s.AddUser(u)
	}
	return s
}

// AddUser stores u under a fresh id and returns the stored copy
func (s *Store) AddUser(u models.User) models.User {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	u.ID = uuid.NewString()
	s.users[u.ID] = &u
	s.userIDs = append(s.userIDs, u.ID)
	return u
}

// Login exchanges a dev credential for a session with a new token
func (s *Store) Login(credential string) (models.Session, error) {
	email, ok := strings.CutPrefix(strings.TrimSpace(credential), DevPrefix)
	if !ok {
		return models.Session{}, ErrUnknownUser
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	for _, id := range s.userIDs {
		u := s.users[id]
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			token := uuid.NewString()
			s.tokens[token] = u.ID
			return models.Session{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, Token: token}, nil
		}
	}
	return models.Session{}, ErrUnknownUser
}

func (s *Store) Logout(token string) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	delete(s.tokens, token)
}

// UserForToken resolves a bearer token. Tokens of deleted users stop
// resolving.
func (s *Store) UserForToken(token string) (models.User, bool) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	id, ok := s.tokens[token]
	if !ok {
		return models.User{}, false
	}
	u, ok := s.users[id]
	if !ok {
		return models.User{}, false
	}
	return *u, true
}

func (s *Store) Users() []models.User {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	users := make([]models.User, 0, len(s.userIDs))
	for _, id := range s.userIDs {
		users = append(users, *s.users[id])
	}
	return users
}

// DeleteUser removes the user and revokes their tokens. Their tasks keep
// the dangling assignment.
func (s *Store) DeleteUser(id string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.users, id)
	s.userIDs = slices.DeleteFunc(s.userIDs, func(v string) bool { return v == id })
	for token, uid := range s.tokens {
		if uid == id {
			delete(s.tokens, token)
		}
	}
	return nil
}

// Tasks lists what viewer may see: everything, or only their own
// assignments for Employees
func (s *Store) Tasks(viewer models.User) []models.Task {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	tasks := make([]models.Task, 0, len(s.taskIDs))
	for _, id := range s.taskIDs {
		t := s.tasks[id]
		if !canSee(viewer, t) {
			continue
		}
		tasks = append(tasks, s.expand(t))
	}
	return tasks
}

func canSee(viewer models.User, t *models.Task) bool {
	if viewer.Role != models.RoleEmployee {
		return true
	}
	return t.AssignedTo != nil && t.AssignedTo.ID == viewer.ID
}

// expand returns a copy with assignment references resolved to user
// summaries where the user still exists
func (s *Store) expand(t *models.Task) models.Task {
	out := *t
	out.Notes = slices.Clone(t.Notes)
	out.AssignedTo = s.ref(t.AssignedTo)
	out.AssignedBy = s.ref(t.AssignedBy)
	return out
}

func (s *Store) ref(r *models.UserRef) *models.UserRef {
	if r == nil {
		return nil
	}
	if u, ok := s.users[r.ID]; ok {
		return &models.UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
	}
	return &models.UserRef{ID: r.ID}
}

func (s *Store) CreateTask(fields models.TaskFields, by models.User) (models.Task, error) {
	if err := fields.Validate(false); err != nil {
		return models.Task{}, err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.users[fields.AssignedTo]; !ok {
		return models.Task{}, &models.ValidationError{Field: "assignedTo", Reason: "is not a known user"}
	}

	now := s.now()
	t := &models.Task{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(fields.Title),
		Description: fields.Description,
		Priority:    fields.Priority,
		Status:      models.StatusOngoing,
		AssignedTo:  &models.UserRef{ID: fields.AssignedTo},
		AssignedBy:  &models.UserRef{ID: by.ID},
		CreatedAt:   now,
		UpdatedAt:   now,
		Notes:       []models.Note{},
	}
	if t.Priority == "" {
		t.Priority = models.PriorityLow
	}
	if d := strings.TrimSpace(fields.Deadline); d != "" {
		deadline, _ := time.Parse(models.DeadlineLayout, d)
		t.Deadline = &deadline
	}

	s.tasks[t.ID] = t
	s.taskIDs = append(s.taskIDs, t.ID)
	return s.expand(t), nil
}

// UpdateTask applies patch. Employees may only change the status of
// their own tasks.
func (s *Store) UpdateTask(id string, patch models.TaskPatch, viewer models.User) (models.Task, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	t, ok := s.tasks[id]
	if !ok || !canSee(viewer, t) {
		return models.Task{}, ErrNotFound
	}
	if viewer.Role == models.RoleEmployee &&
		(patch.Title != nil || patch.Description != nil || patch.Priority != nil || patch.Deadline != nil) {
		return models.Task{}, ErrForbidden
	}

	next := *t
	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			return models.Task{}, &models.ValidationError{Field: "title", Reason: "is required"}
		}
		next.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		next.Description = *patch.Description
	}
	if patch.Priority != nil {
		if !patch.Priority.Valid() {
			return models.Task{}, &models.ValidationError{Field: "priority", Reason: "must be Low, Medium or High"}
		}
		next.Priority = *patch.Priority
	}
	if patch.Status != nil {
		next.Status = patch.Status.Normalize()
	}
	if patch.Deadline != nil {
		if *patch.Deadline == "" {
			next.Deadline = nil
		} else {
			d, err := time.Parse(models.DeadlineLayout, *patch.Deadline)
			if err != nil {
				return models.Task{}, &models.ValidationError{Field: "deadline", Reason: "must be YYYY-MM-DD"}
			}
			next.Deadline = &d
		}
	}
	next.UpdatedAt = s.now()

	s.tasks[id] = &next
	return s.expand(&next), nil
}

func (s *Store) DeleteTask(id string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(s.tasks, id)
	s.taskIDs = slices.DeleteFunc(s.taskIDs, func(v string) bool { return v == id })
	return nil
}

// AppendNote adds a note and returns the full list
func (s *Store) AppendNote(id, message string, viewer models.User) ([]models.Note, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, &models.ValidationError{Field: "note", Reason: "cannot be empty"}
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	t, ok := s.tasks[id]
	if !ok || !canSee(viewer, t) {
		return nil, ErrNotFound
	}

	next := *t
	next.Notes = append(slices.Clone(t.Notes), models.Note{Message: message, Date: s.now()})
	s.tasks[id] = &next
	return slices.Clone(next.Notes), nil
}
