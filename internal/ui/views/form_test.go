package views

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/tkrm/internal/models"
)

func TestTaskForm_Defaults(t *testing.T) {
	f := NewTaskForm(false, models.PriorityLow)
	f.Open()

	fields := f.Fields()
	assert.Equal(t, models.PriorityLow, fields.Priority)
	assert.Empty(t, fields.AssignedTo)

	f = NewTaskForm(true, models.PriorityMedium)
	f.Open()
	assert.Equal(t, models.PriorityMedium, f.Fields().Priority)
}

func TestTaskForm_OptionalDeadline(t *testing.T) {
	f := NewTaskForm(false, models.PriorityLow)
	f.SetAssignees(directory[1:2])
	f.Open()

	typeForm(f, "Call back")
	for i := 0; i < fieldAssignee; i++ {
		f.Update(keyTab)
	}
	f.Update(runes("l"))

	fields, _ := f.Update(keySave)
	require.NotNil(t, fields)
	assert.Equal(t, "Call back", fields.Title)
	assert.Equal(t, "m1", fields.AssignedTo)
	assert.Empty(t, fields.Deadline)
}

func TestTaskForm_BadDeadline(t *testing.T) {
	f := NewTaskForm(false, models.PriorityLow)
	f.SetAssignees(directory[2:])
	f.Open()

	typeForm(f, "Call back")
	for i := 0; i < fieldDeadline; i++ {
		f.Update(keyTab)
	}
	typeForm(f, "15/10/2026")
	f.Update(keyTab)
	f.Update(runes("l"))

	fields, _ := f.Update(keySave)
	assert.Nil(t, fields)
	assert.Equal(t, "deadline must be YYYY-MM-DD", f.err)
}

func TestTaskForm_PriorityCycles(t *testing.T) {
	f := NewTaskForm(false, models.PriorityHigh)
	f.Open()
	f.Update(keyTab)
	f.Update(keyTab)

	f.Update(runes("l"))
	assert.Equal(t, models.PriorityLow, f.Fields().Priority)
	f.Update(runes("h"))
	assert.Equal(t, models.PriorityHigh, f.Fields().Priority)
}

func TestTaskForm_SetAssigneesKeepsChoice(t *testing.T) {
	f := NewTaskForm(false, models.PriorityLow)
	f.SetAssignees(directory[2:])
	f.Open()
	f.assignee = 1 // Eli

	f.SetAssignees([]models.User{directory[3], directory[2]})
	assert.Equal(t, "e2", f.Fields().AssignedTo)

	f.SetAssignees(directory[2:3])
	assert.Empty(t, f.Fields().AssignedTo)
}

func TestTaskForm_EscCloses(t *testing.T) {
	f := NewTaskForm(false, models.PriorityLow)
	f.Open()
	require.True(t, f.Active())

	f.Update(keyEsc)
	assert.False(t, f.Active())
}

func typeForm(f *TaskForm, s string) {
	for _, r := range s {
		f.Update(runes(string(r)))
	}
}
