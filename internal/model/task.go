package model

import (
	"sort"
	"strconv"
)

// DefaultReminderDelayDays is the fallback delay between the due-date
// notification and the follow-up reminder.
const DefaultReminderDelayDays = 3

// Task represents a recurring maintenance task
type Task struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Category          string `json:"category"`
	RecurrenceDays    int    `json:"recurrence_days"`
	NextDueDate       Date   `json:"next_due_date"`
	CreatedAt         Date   `json:"created_at"`
	ReminderDelayDays int    `json:"reminder_delay_days"`
}

// Status represents how urgent a task is relative to today
type Status string

const (
	StatusOK       Status = "ok"
	StatusDueToday Status = "due_today"
	StatusOverdue  Status = "overdue"
)

// Priority returns the sort rank of a status (overdue first)
func (s Status) Priority() int {
	switch s {
	case StatusOverdue:
		return 0
	case StatusDueToday:
		return 1
	default:
		return 2
	}
}

// StatusFor computes the status of a due date relative to today.
// Exactly one of the three statuses holds for any (today, due) pair.
func StatusFor(today, due Date) Status {
	switch {
	case due.Before(today):
		return StatusOverdue
	case due == today:
		return StatusDueToday
	default:
		return StatusOK
	}
}

// TaskView is a task annotated with its computed status. It is derived on
// every read relative to "today" and never persisted.
type TaskView struct {
	Task
	Status       Status
	DaysUntilDue int    // display magnitude, always >= 0
	History      []Date // completion dates, most recent first
}

// NewTaskView annotates a task with status and display days for the given
// today. DaysUntilDue is the absolute day distance for overdue and OK, and
// 0 for due-today.
func NewTaskView(t Task, history []Date, today Date) TaskView {
	days := today.DaysUntil(t.NextDueDate)
	if days < 0 {
		days = -days
	}
	sorted := make([]Date, len(history))
	copy(sorted, history)
	sort.Slice(sorted, func(i, j int) bool { return sorted[j].Before(sorted[i]) })
	return TaskView{
		Task:         t,
		Status:       StatusFor(today, t.NextDueDate),
		DaysUntilDue: days,
		History:      sorted,
	}
}

// SortViews orders views by status priority, then by signed days until due
// so the most overdue and the soonest-due tasks come first.
func SortViews(views []TaskView, today Date) {
	sort.SliceStable(views, func(i, j int) bool {
		pi, pj := views[i].Status.Priority(), views[j].Status.Priority()
		if pi != pj {
			return pi < pj
		}
		return today.DaysUntil(views[i].NextDueDate) < today.DaysUntil(views[j].NextDueDate)
	})
}

// RecurrenceLabel renders a recurrence interval as a human description
func RecurrenceLabel(days int) string {
	switch {
	case days == 1:
		return "every day"
	case days == 7:
		return "every week"
	case days == 14:
		return "every 2 weeks"
	case days == 30:
		return "every month"
	case days == 365:
		return "every year"
	case days%365 == 0:
		return pluralEvery(days/365, "year")
	case days%30 == 0:
		return pluralEvery(days/30, "month")
	case days%7 == 0:
		return pluralEvery(days/7, "week")
	default:
		return pluralEvery(days, "day")
	}
}

func pluralEvery(n int, unit string) string {
	if n == 1 {
		return "every " + unit
	}
	return "every " + strconv.Itoa(n) + " " + unit + "s"
}
