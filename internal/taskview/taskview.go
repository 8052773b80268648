// Package taskview derives what the panels render from a flat task list.
// Every function is pure and recomputed on each render.
package taskview

import (
	"fmt"
	"time"

	"github.com/tgienger/tkrm/internal/models"
)

// PartitionByStatus splits tasks into ongoing and completed, keeping the
// input order inside each half.
func PartitionByStatus(tasks []models.Task) (ongoing, completed []models.Task) {
	for _, t := range tasks {
		if t.Status.IsCompleted() {
			completed = append(completed, t)
		} else {
			ongoing = append(ongoing, t)
		}
	}
	return ongoing, completed
}

// Summary holds the counters shown above the employee board
type Summary struct {
	Total     int
	Completed int
	Pending   int
}

func Summarize(tasks []models.Task) Summary {
	var s Summary
	for _, t := range tasks {
		s.Total++
		if t.Status.IsCompleted() {
			s.Completed++
		} else {
			s.Pending++
		}
	}
	return s
}

// SameDay compares the calendar day of a and b in b's location
func SameDay(a, b time.Time) bool {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// TasksOnDate returns the tasks whose creation day equals date's day.
// The deadline is deliberately ignored.
func TasksOnDate(tasks []models.Task, date time.Time) []models.Task {
	var out []models.Task
	for _, t := range tasks {
		if SameDay(t.CreatedAt, date) {
			out = append(out, t)
		}
	}
	return out
}

// DaysInMonth returns the number of days in month's month and the weekday
// offset (Sunday = 0) of its first day.
func DaysInMonth(month time.Time) (count, firstWeekdayOffset int) {
	first := StartOfMonth(month)
	last := first.AddDate(0, 1, -1)
	return last.Day(), int(first.Weekday())
}

// StartOfMonth returns midnight of the first day of t's month
func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// ShiftMonth moves to the first day of the month delta months away
func ShiftMonth(t time.Time, delta int) time.Time {
	return StartOfMonth(t).AddDate(0, delta, 0)
}

// DayMarks records what kind of tasks were created on a calendar day
type DayMarks struct {
	Tasks        []models.Task
	HasPending   bool
	HasCompleted bool
}

// BucketByDay groups the tasks created in month's month by day of month
func BucketByDay(tasks []models.Task, month time.Time) map[int]*DayMarks {
	buckets := make(map[int]*DayMarks)
	start := StartOfMonth(month)
	loc := start.Location()
	for _, t := range tasks {
		created := t.CreatedAt.In(loc)
		if created.Year() != start.Year() || created.Month() != start.Month() {
			continue
		}
		b, ok := buckets[created.Day()]
		if !ok {
			b = &DayMarks{}
			buckets[created.Day()] = b
		}
		b.Tasks = append(b.Tasks, t)
		if t.Status.IsCompleted() {
			b.HasCompleted = true
		} else {
			b.HasPending = true
		}
	}
	return buckets
}

var ageUnits = []struct {
	name    string
	seconds int64
}{
	{"year", 31536000},
	{"month", 2592000},
	{"day", 86400},
	{"hour", 3600},
	{"minute", 60},
}

// RelativeAge renders the largest whole unit between ts and now,
// e.g. "1 day ago" or "3 hours ago". Under a minute is "just now".
func RelativeAge(ts, now time.Time) string {
	seconds := int64(now.Sub(ts) / time.Second)
	for _, u := range ageUnits {
		n := seconds / u.seconds
		if n > 1 {
			return fmt.Sprintf("%d %ss ago", n, u.name)
		}
		if n == 1 {
			return fmt.Sprintf("1 %s ago", u.name)
		}
	}
	return "just now"
}
