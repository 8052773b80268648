package models

import (
	"strings"
	"time"
)

// Role determines which routes and actions a user can see
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleManager  Role = "Manager"
	RoleEmployee Role = "Employee"
)

// Roles lists every known role
var Roles = []Role{RoleAdmin, RoleManager, RoleEmployee}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// Priority of a task
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Priorities in display order
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Status is binary: anything that is not Completed is Ongoing
type Status string

const (
	StatusOngoing   Status = "Ongoing"
	StatusCompleted Status = "Completed"
)

func (s Status) IsCompleted() bool { return s == StatusCompleted }

// Toggle flips Completed and Ongoing
func (s Status) Toggle() Status {
	if s.IsCompleted() {
		return StatusOngoing
	}
	return StatusCompleted
}

// Normalize folds every non-Completed value into Ongoing
func (s Status) Normalize() Status {
	if s.IsCompleted() {
		return StatusCompleted
	}
	return StatusOngoing
}

// Session is the authenticated identity held for the current process
type Session struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
	Token string `json:"token"`
}

// Valid reports whether every required field is present. A partial
// session is treated as absent.
func (s Session) Valid() bool {
	return strings.TrimSpace(s.ID) != "" &&
		strings.TrimSpace(s.Name) != "" &&
		s.Role.Valid() &&
		strings.TrimSpace(s.Token) != ""
}

// User is a directory entry used for assignment and user management
type User struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Note is an append-only annotation on a task
type Note struct {
	Message string    `json:"message"`
	Date    time.Time `json:"date"`
}

// Task represents a single unit of work
type Task struct {
	ID          string     `json:"_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    Priority   `json:"priority"`
	Status      Status     `json:"status"`
	AssignedTo  *UserRef   `json:"assignedTo,omitempty"`
	AssignedBy  *UserRef   `json:"assignedBy,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Notes       []Note     `json:"notes"`
}

// WasUpdated reports whether the task changed after creation
func (t Task) WasUpdated() bool {
	return !t.UpdatedAt.IsZero() && !t.UpdatedAt.Equal(t.CreatedAt)
}

// TaskFields are the inputs of the create-task form
type TaskFields struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	AssignedTo  string   `json:"assignedTo"`
	AssignedBy  string   `json:"assignedBy,omitempty"`
	Deadline    string   `json:"deadline,omitempty"` // YYYY-MM-DD
}

// DeadlineLayout is the date format used by the create form
const DeadlineLayout = "2006-01-02"

// Validate checks the required fields before a create request is sent.
// Title and assignee are always required; the deadline only when the
// calling panel asks for it.
func (f TaskFields) Validate(requireDeadline bool) error {
	if strings.TrimSpace(f.Title) == "" {
		return &ValidationError{Field: "title", Reason: "is required"}
	}
	if strings.TrimSpace(f.AssignedTo) == "" {
		return &ValidationError{Field: "assignedTo", Reason: "is required"}
	}
	if f.Priority != "" && !f.Priority.Valid() {
		return &ValidationError{Field: "priority", Reason: "must be Low, Medium or High"}
	}
	deadline := strings.TrimSpace(f.Deadline)
	if deadline == "" {
		if requireDeadline {
			return &ValidationError{Field: "deadline", Reason: "is required"}
		}
		return nil
	}
	if _, err := time.Parse(DeadlineLayout, deadline); err != nil {
		return &ValidationError{Field: "deadline", Reason: "must be YYYY-MM-DD"}
	}
	return nil
}

// TaskPatch carries only the fields being changed
type TaskPatch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	Status      *Status   `json:"status,omitempty"`
	Deadline    *string   `json:"deadline,omitempty"`
}

// StatusPatch builds a patch that only changes the status
func StatusPatch(s Status) TaskPatch {
	return TaskPatch{Status: &s}
}

// ValidationError is a missing or malformed form field
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Reason
}
