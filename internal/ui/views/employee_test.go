package views

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/tkrm/internal/api"
	"github.com/tgienger/tkrm/internal/models"
	"github.com/tgienger/tkrm/internal/taskview"
)

func loadedEmployee(t *testing.T, tasks []models.Task) (*EmployeeView, *MockTaskAPI) {
	t.Helper()
	mockAPI := new(MockTaskAPI)
	v := NewEmployeeView(newDeps(mockAPI))
	v.Update(tea.WindowSizeMsg{Width: 100, Height: 80})
	v.Update(tasksLoadedMsg{mount: v.mount, tasks: tasks})
	return v, mockAPI
}

func TestEmployeeView_Columns(t *testing.T) {
	v, _ := loadedEmployee(t, []models.Task{
		sampleTask("t1", "Open one", models.StatusOngoing, testNow),
		sampleTask("t2", "Done one", models.StatusCompleted, testNow),
		sampleTask("t3", "Legacy", models.Status("Pending"), testNow),
	})

	cols := v.columns()
	assert.Len(t, cols[0], 2)
	assert.Len(t, cols[1], 1)

	out := v.View()
	assert.Contains(t, out, "Pending / Ongoing Tasks")
	assert.Contains(t, out, "Completed Tasks")
	assert.Contains(t, out, "Task Calendar")
}

func TestEmployeeView_ToggleStatus(t *testing.T) {
	task := sampleTask("t1", "Open one", models.StatusOngoing, testNow)
	v, mockAPI := loadedEmployee(t, []models.Task{task})

	done := task
	done.Status = models.StatusCompleted
	done.UpdatedAt = testNow.Add(time.Hour)
	mockAPI.On("UpdateTask", mock.Anything, "t1", models.StatusPatch(models.StatusCompleted)).Return(done, nil).Once()

	_, cmd := v.Update(keySpace)
	require.NotNil(t, cmd)
	assert.True(t, v.pending["t1"])

	// a second toggle waits for the first to resolve
	_, again := v.Update(keySpace)
	assert.Nil(t, again)

	msg, ok := findMsg[taskUpdatedMsg](runCmd(cmd))
	require.True(t, ok)
	v.Update(msg)

	assert.False(t, v.pending["t1"])
	got, _ := taskview.Find(v.tasks, "t1")
	assert.Equal(t, models.StatusCompleted, got.Status)
	assert.Equal(t, testNow.Add(time.Hour), got.UpdatedAt)
	assert.Len(t, v.columns()[1], 1)
	mockAPI.AssertExpectations(t)
}

func TestEmployeeView_ToggleFailureKeepsStatus(t *testing.T) {
	v, mockAPI := loadedEmployee(t, []models.Task{sampleTask("t1", "Open one", models.StatusOngoing, testNow)})
	mockAPI.On("UpdateTask", mock.Anything, "t1", mock.Anything).Return(models.Task{}, errors.New("boom")).Once()

	_, cmd := v.Update(runes("x"))
	msg, ok := findMsg[taskUpdatedMsg](runCmd(cmd))
	require.True(t, ok)
	v.Update(msg)

	assert.False(t, v.pending["t1"])
	got, _ := taskview.Find(v.tasks, "t1")
	assert.Equal(t, models.StatusOngoing, got.Status)
	assert.Equal(t, "boom", v.notice.Text())
}

func TestEmployeeView_NoteDraftSurvivesCancel(t *testing.T) {
	v, mockAPI := loadedEmployee(t, []models.Task{sampleTask("t1", "Open one", models.StatusOngoing, testNow)})

	v.Update(runes("c"))
	require.True(t, v.Capturing())
	typeText(v, "half done")
	v.Update(keyEsc)

	assert.False(t, v.Capturing())
	assert.Equal(t, "half done", v.drafts["t1"])

	v.Update(runes("c"))
	assert.Equal(t, "half done", v.noteInput.Value())

	notes := []models.Note{{Message: "half done", Date: testNow}}
	mockAPI.On("AppendNote", mock.Anything, "t1", "half done").Return(notes, nil).Once()

	_, cmd := v.Update(keyEnter)
	msg, ok := findMsg[noteAppendedMsg](runCmd(cmd))
	require.True(t, ok)
	v.Update(msg)

	got, _ := taskview.Find(v.tasks, "t1")
	assert.Equal(t, notes, got.Notes)
	assert.Empty(t, v.drafts["t1"])
	assert.Equal(t, "Note added", v.notice.Text())
	mockAPI.AssertExpectations(t)
}

func TestEmployeeView_NoteNotResentWhileInFlight(t *testing.T) {
	v, mockAPI := loadedEmployee(t, []models.Task{sampleTask("t1", "Open one", models.StatusOngoing, testNow)})
	notes := []models.Note{{Message: "on it", Date: testNow}}
	mockAPI.On("AppendNote", mock.Anything, "t1", "on it").Return(notes, nil).Once()

	v.Update(runes("c"))
	typeText(v, "on it")
	_, cmd := v.Update(keyEnter)
	require.NotNil(t, cmd)
	assert.True(t, v.noting["t1"])

	// the draft is still there, but a second submit waits for the first
	v.Update(runes("c"))
	assert.Equal(t, "on it", v.noteInput.Value())
	_, again := v.Update(keyEnter)
	assert.Nil(t, again)

	msg, ok := findMsg[noteAppendedMsg](runCmd(cmd))
	require.True(t, ok)
	v.Update(msg)

	assert.False(t, v.noting["t1"])
	got, _ := taskview.Find(v.tasks, "t1")
	assert.Equal(t, notes, got.Notes)
	mockAPI.AssertNumberOfCalls(t, "AppendNote", 1)
}

func TestEmployeeView_FailedRefreshKeepsList(t *testing.T) {
	v, mockAPI := loadedEmployee(t, []models.Task{sampleTask("t1", "Open one", models.StatusOngoing, testNow)})
	mockAPI.On("ListTasks", mock.Anything).Return(nil, &api.NetworkError{Op: "list tasks", Err: errors.New("connection reset")}).Once()

	_, cmd := v.Update(runes("r"))
	msg, ok := findMsg[tasksLoadedMsg](runCmd(cmd))
	require.True(t, ok)
	v.Update(msg)

	assert.Len(t, v.tasks, 1)
	assert.Equal(t, "Cannot reach the server", v.notice.Text())
}

func TestEmployeeView_FirstLoadErrorShowsEmptyList(t *testing.T) {
	v := NewEmployeeView(newDeps(new(MockTaskAPI)))

	v.Update(tasksLoadedMsg{mount: v.mount, err: errors.New("boom")})
	assert.False(t, v.loading)
	assert.Empty(t, v.tasks)
	assert.Equal(t, "boom", v.notice.Text())
}

func TestEmployeeView_BlankNoteNotSent(t *testing.T) {
	v, mockAPI := loadedEmployee(t, []models.Task{sampleTask("t1", "Open one", models.StatusOngoing, testNow)})

	v.Update(runes("c"))
	typeText(v, "   ")
	_, cmd := v.Update(keyEnter)

	assert.Nil(t, cmd)
	assert.False(t, v.Capturing())
	mockAPI.AssertNotCalled(t, "AppendNote", mock.Anything, mock.Anything, mock.Anything)
}

func TestEmployeeView_NoteFailureKeepsDraft(t *testing.T) {
	v, mockAPI := loadedEmployee(t, []models.Task{sampleTask("t1", "Open one", models.StatusOngoing, testNow)})
	mockAPI.On("AppendNote", mock.Anything, "t1", "later").Return(nil, errors.New("offline")).Once()

	v.Update(runes("c"))
	typeText(v, "later")
	_, cmd := v.Update(keyEnter)
	msg, ok := findMsg[noteAppendedMsg](runCmd(cmd))
	require.True(t, ok)
	v.Update(msg)

	assert.Equal(t, "later", v.drafts["t1"])
	assert.Equal(t, "offline", v.notice.Text())
}

func TestEmployeeView_CalendarSelection(t *testing.T) {
	today := sampleTask("t1", "Today's work", models.StatusOngoing, testNow)
	earlier := sampleTask("t2", "Earlier work", models.StatusCompleted, testNow.AddDate(0, 0, -3))
	v, _ := loadedEmployee(t, []models.Task{today, earlier})

	v.Update(keyTab)
	v.Update(keyTab)
	require.Equal(t, focusCalendar, v.focus)
	assert.Equal(t, 15, v.calendarDay)

	v.Update(keyEnter)
	require.NotNil(t, v.selected)
	out := v.View()
	assert.Contains(t, out, "Tasks for 15/10/2026")
	assert.Contains(t, out, "Pending (1)")

	v.Update(runes("h"))
	v.Update(runes("h"))
	v.Update(runes("h"))
	v.Update(keySpace)
	assert.Contains(t, v.View(), "Completed (1)")

	v.Update(keyEsc)
	assert.Nil(t, v.selected)
}

func TestEmployeeView_MonthNavigation(t *testing.T) {
	v, _ := loadedEmployee(t, nil)
	v.calendarDay = 31

	v.Update(runes("]"))
	assert.Equal(t, time.November, v.month.Month())
	assert.Equal(t, 30, v.calendarDay)

	v.Update(runes("["))
	v.Update(runes("["))
	assert.Equal(t, time.September, v.month.Month())
	assert.Equal(t, 30, v.calendarDay)
}

func TestEmployeeView_DropsLateResults(t *testing.T) {
	v, _ := loadedEmployee(t, []models.Task{sampleTask("t1", "Open one", models.StatusOngoing, testNow)})
	v.pending["t1"] = true

	v.Update(taskUpdatedMsg{mount: v.mount + 1000, id: "t1", task: models.Task{ID: "t1", Status: models.StatusCompleted}})
	got, _ := taskview.Find(v.tasks, "t1")
	assert.Equal(t, models.StatusOngoing, got.Status)
	assert.True(t, v.pending["t1"])
}
