package models_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/tkrm/internal/models"
)

func TestStatus_ToggleIsInvolution(t *testing.T) {
	for _, s := range []models.Status{models.StatusOngoing, models.StatusCompleted} {
		assert.Equal(t, s, s.Toggle().Toggle())
		assert.NotEqual(t, s, s.Toggle())
	}
}

func TestStatus_UnknownIsOngoing(t *testing.T) {
	assert.Equal(t, models.StatusOngoing, models.Status("In Review").Normalize())
	assert.Equal(t, models.StatusOngoing, models.Status("").Normalize())
	assert.Equal(t, models.StatusCompleted, models.Status("In Review").Toggle())
}

func TestSession_Valid(t *testing.T) {
	full := models.Session{ID: "u1", Name: "Ada", Email: "ada@example.com", Role: models.RoleAdmin, Token: "t"}
	assert.True(t, full.Valid())

	tests := []struct {
		name   string
		mutate func(*models.Session)
	}{
		{"missing id", func(s *models.Session) { s.ID = "" }},
		{"missing name", func(s *models.Session) { s.Name = "  " }},
		{"unknown role", func(s *models.Session) { s.Role = "Owner" }},
		{"missing token", func(s *models.Session) { s.Token = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := full
			tt.mutate(&s)
			assert.False(t, s.Valid())
		})
	}
}

func TestTaskFields_Validate(t *testing.T) {
	tests := []struct {
		name            string
		fields          models.TaskFields
		requireDeadline bool
		wantField       string
	}{
		{
			name:            "empty title",
			fields:          models.TaskFields{Title: "", AssignedTo: "u1", Deadline: "2024-01-01"},
			requireDeadline: true,
			wantField:       "title",
		},
		{
			name:      "missing assignee",
			fields:    models.TaskFields{Title: "Ship", Deadline: "2024-01-01"},
			wantField: "assignedTo",
		},
		{
			name:            "missing required deadline",
			fields:          models.TaskFields{Title: "Ship", AssignedTo: "u1"},
			requireDeadline: true,
			wantField:       "deadline",
		},
		{
			name:      "optional deadline",
			fields:    models.TaskFields{Title: "Ship", AssignedTo: "u1"},
			wantField: "",
		},
		{
			name:      "malformed deadline",
			fields:    models.TaskFields{Title: "Ship", AssignedTo: "u1", Deadline: "01/02/2024"},
			wantField: "deadline",
		},
		{
			name:      "unknown priority",
			fields:    models.TaskFields{Title: "Ship", AssignedTo: "u1", Priority: "Urgent"},
			wantField: "priority",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fields.Validate(tt.requireDeadline)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var verr *models.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestUserRef_DecodesIDOrSummary(t *testing.T) {
	var task models.Task
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"t1","title":"A","assignedTo":"u1"}`), &task))
	require.NotNil(t, task.AssignedTo)
	assert.Equal(t, "u1", task.AssignedTo.ID)
	assert.False(t, task.AssignedTo.Resolved())

	require.NoError(t, json.Unmarshal([]byte(`{"_id":"t2","title":"B","assignedTo":{"_id":"u2","name":"bob","email":"b@x"}}`), &task))
	assert.Equal(t, "u2", task.AssignedTo.ID)
	assert.Equal(t, "bob", task.AssignedTo.Name)
	assert.True(t, task.AssignedTo.Resolved())
}

func TestUserRef_EncodesBareIDWhenUnresolved(t *testing.T) {
	b, err := json.Marshal(models.UserRef{ID: "u1"})
	require.NoError(t, err)
	assert.JSONEq(t, `"u1"`, string(b))

	b, err = json.Marshal(models.UserRef{ID: "u1", Name: "Ada"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"_id":"u1","name":"Ada"}`, string(b))
}
