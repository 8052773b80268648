package taskview

import "github.com/tgienger/tkrm/internal/models"

// The helpers below apply a confirmed server response to a panel's local
// list. They never modify the input slice.

// Append adds a newly created task to the end of the list
func Append(tasks []models.Task, t models.Task) []models.Task {
	out := make([]models.Task, 0, len(tasks)+1)
	out = append(out, tasks...)
	return append(out, t)
}

// Remove drops the task with the given id
func Remove(tasks []models.Task, id string) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

// Update replaces the task with the given id by fn(task)
func Update(tasks []models.Task, id string, fn func(models.Task) models.Task) []models.Task {
	out := make([]models.Task, len(tasks))
	for i, t := range tasks {
		if t.ID == id {
			t = fn(t)
		}
		out[i] = t
	}
	return out
}

// Replace swaps in the server's copy of a task. A response without notes
// keeps the notes already held.
func Replace(tasks []models.Task, updated models.Task) []models.Task {
	return Update(tasks, updated.ID, func(prev models.Task) models.Task {
		if updated.Notes == nil {
			updated.Notes = prev.Notes
		}
		return updated
	})
}

// SetNotes replaces a task's note list wholesale with the server's copy
func SetNotes(tasks []models.Task, id string, notes []models.Note) []models.Task {
	return Update(tasks, id, func(t models.Task) models.Task {
		t.Notes = append([]models.Note(nil), notes...)
		return t
	})
}

// Find returns the task with the given id
func Find(tasks []models.Task, id string) (models.Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return models.Task{}, false
}

// RemoveUser drops the user with the given id. Tasks assigned to the user
// are left untouched.
func RemoveUser(users []models.User, id string) []models.User {
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		if u.ID != id {
			out = append(out, u)
		}
	}
	return out
}

// UsersWithRole keeps users having one of the given roles
func UsersWithRole(users []models.User, roles ...models.Role) []models.User {
	var out []models.User
	for _, u := range users {
		for _, r := range roles {
			if u.Role == r {
				out = append(out, u)
				break
			}
		}
	}
	return out
}

// AssigneeName resolves a display name for a task's assignee: the
// embedded summary first, then the fetched user list, else "Unknown".
func AssigneeName(t models.Task, users []models.User) string {
	if t.AssignedTo == nil {
		return "Unknown"
	}
	if t.AssignedTo.Resolved() {
		return t.AssignedTo.Name
	}
	for _, u := range users {
		if u.ID == t.AssignedTo.ID {
			return u.Name
		}
	}
	return "Unknown"
}
