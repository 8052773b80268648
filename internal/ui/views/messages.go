package views

import (
	"github.com/tgienger/tkrm/internal/auth"
	"github.com/tgienger/tkrm/internal/models"
)

// Navigate asks the root model to switch routes
type Navigate struct {
	Route auth.Route
}

// LoggedIn is sent after the session has been written
type LoggedIn struct {
	Session models.Session
}

type tasksLoadedMsg struct {
	mount uint64
	tasks []models.Task
	err   error
}

type usersLoadedMsg struct {
	mount uint64
	users []models.User
	err   error
}

type taskCreatedMsg struct {
	mount uint64
	task  models.Task
	err   error
}

type taskDeletedMsg struct {
	mount uint64
	id    string
	err   error
}

type taskUpdatedMsg struct {
	mount uint64
	id    string
	task  models.Task
	err   error
}

type noteAppendedMsg struct {
	mount uint64
	id    string
	notes []models.Note
	err   error
}

type userDeletedMsg struct {
	mount uint64
	id    string
	err   error
}
