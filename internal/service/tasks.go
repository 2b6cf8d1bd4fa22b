// Package service orchestrates the task workflows: completion, form
// validation, derived status views and statistics. The storage transaction
// boundaries live in the db package; the reminder scheduler is a
// best-effort side effect that never fails a data mutation.
package service

import (
	"database/sql"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dori/neverforget/internal/db"
	"github.com/dori/neverforget/internal/model"
)

// Rescheduler is the slice of the reminder scheduler the workflows drive
type Rescheduler interface {
	Schedule(taskID, taskName string, dueDate model.Date)
	Cancel(taskID string)
}

// Service wires the task store to the reminder scheduler
type Service struct {
	db        *db.DB
	scheduler Rescheduler
	logger    *log.Logger
	loc       *time.Location
}

// New creates a task service. scheduler may be nil for short-lived CLI
// invocations where a separate watch process owns the timers.
func New(database *db.DB, scheduler Rescheduler, logger *log.Logger, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{db: database, scheduler: scheduler, logger: logger, loc: loc}
}

// Today returns the current date in the service's location
func (s *Service) Today() model.Date {
	return model.Today(s.loc)
}

// TaskForm carries the user-editable task fields
type TaskForm struct {
	Name              string
	Category          string
	RecurrenceDays    int
	NextDueDate       model.Date // zero value means today + recurrence
	ReminderDelayDays int        // zero means the global setting
}

// ValidateTaskForm checks form fields and returns per-field errors, or nil
// when the form is valid
func ValidateTaskForm(name, category string, recurrenceDays int) *ValidationError {
	errs := make(map[string]string)

	switch {
	case len(name) == 0:
		errs["name"] = "task name is required"
	case len([]rune(name)) > 100:
		errs["name"] = "name cannot exceed 100 characters"
	}

	if category == "" {
		errs["category"] = "category is required"
	}

	switch {
	case recurrenceDays <= 0:
		errs["recurrence"] = "recurrence must be greater than 0"
	case recurrenceDays > 3650:
		errs["recurrence"] = "recurrence exceeds 10 years"
	}

	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Fields: errs}
}

// CreateTask validates the form, persists a new task and schedules its
// notifications
func (s *Service) CreateTask(form TaskForm) (*model.Task, error) {
	if err := ValidateTaskForm(form.Name, form.Category, form.RecurrenceDays); err != nil {
		return nil, err
	}

	today := s.Today()
	due := form.NextDueDate
	if due.IsZero() {
		due = today.AddDays(form.RecurrenceDays)
	}

	delay := form.ReminderDelayDays
	if delay <= 0 {
		var err error
		if delay, err = s.db.ReminderDelayDays(); err != nil {
			return nil, err
		}
	}

	t, err := s.db.CreateTask(form.Name, form.Category, form.RecurrenceDays, due, delay, today)
	if err != nil {
		return nil, err
	}

	s.reschedule(*t)
	return t, nil
}

// UpdateTask validates the form and persists changed fields of an existing
// task, then reschedules its notifications
func (s *Service) UpdateTask(taskID string, form TaskForm) (*model.Task, error) {
	if err := ValidateTaskForm(form.Name, form.Category, form.RecurrenceDays); err != nil {
		return nil, err
	}

	t, err := s.db.GetTask(taskID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrNotFound
	}

	t.Name = form.Name
	t.Category = form.Category
	t.RecurrenceDays = form.RecurrenceDays
	if !form.NextDueDate.IsZero() {
		t.NextDueDate = form.NextDueDate
	}
	if form.ReminderDelayDays > 0 {
		t.ReminderDelayDays = form.ReminderDelayDays
	}

	if err := s.db.UpdateTask(*t); err != nil {
		return nil, err
	}

	s.reschedule(*t)
	return t, nil
}

// Complete records a completion for the given date: one history row plus
// the recomputed due date, atomically, then a best-effort reschedule. Two
// completions on the same date create two history rows on purpose. A task
// deleted in the meantime surfaces as ErrNotFound so notification-driven
// callers can treat it as benign.
func (s *Service) Complete(taskID string, completionDate model.Date) (*model.Task, error) {
	t, err := s.db.CompleteTask(taskID, completionDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	s.reschedule(*t)
	return t, nil
}

// CompleteToday records a completion dated today
func (s *Service) CompleteToday(taskID string) (*model.Task, error) {
	return s.Complete(taskID, s.Today())
}

// DeleteTask removes a task (history cascades) and cancels its pending
// notifications
func (s *Service) DeleteTask(taskID string) error {
	if err := s.db.DeleteTask(taskID); err != nil {
		return err
	}
	if s.scheduler != nil {
		s.scheduler.Cancel(taskID)
	}
	return nil
}

// Views returns every task annotated with status and history, sorted by
// urgency. Must be called again whenever "today" may have changed.
func (s *Service) Views() ([]model.TaskView, error) {
	tasks, err := s.db.GetTasks()
	if err != nil {
		return nil, err
	}

	history, err := s.historyByTask()
	if err != nil {
		return nil, err
	}
	known, err := s.categoryNames()
	if err != nil {
		return nil, err
	}

	today := s.Today()
	views := make([]model.TaskView, 0, len(tasks))
	for _, t := range tasks {
		t.Category = displayCategory(t.Category, known)
		views = append(views, model.NewTaskView(t, history[t.ID], today))
	}
	model.SortViews(views, today)
	return views, nil
}

// View returns a single annotated task
func (s *Service) View(taskID string) (*model.TaskView, error) {
	t, err := s.db.GetTask(taskID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrNotFound
	}

	history, err := s.db.GetHistory(taskID)
	if err != nil {
		return nil, err
	}
	known, err := s.categoryNames()
	if err != nil {
		return nil, err
	}
	t.Category = displayCategory(t.Category, known)

	v := model.NewTaskView(*t, history, s.Today())
	return &v, nil
}

// Overdue returns overdue views, most overdue first
func (s *Service) Overdue() ([]model.TaskView, error) {
	return s.filtered(model.StatusOverdue)
}

// DueToday returns views due today
func (s *Service) DueToday() ([]model.TaskView, error) {
	return s.filtered(model.StatusDueToday)
}

// Upcoming returns views due within the next daysAhead days, soonest first
func (s *Service) Upcoming(daysAhead int) ([]model.TaskView, error) {
	views, err := s.Views()
	if err != nil {
		return nil, err
	}

	today := s.Today()
	limit := today.AddDays(daysAhead)
	var out []model.TaskView
	for _, v := range views {
		if v.NextDueDate.After(today) && !v.NextDueDate.After(limit) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *Service) filtered(status model.Status) ([]model.TaskView, error) {
	views, err := s.Views()
	if err != nil {
		return nil, err
	}
	var out []model.TaskView
	for _, v := range views {
		if v.Status == status {
			out = append(out, v)
		}
	}
	return out, nil
}

// categoryNames returns the set of category names currently in the store
func (s *Service) categoryNames() (map[string]bool, error) {
	cats, err := s.db.GetCategories()
	if err != nil {
		return nil, err
	}
	names := make(map[string]bool, len(cats))
	for _, c := range cats {
		names[c.Name] = true
	}
	return names, nil
}

// displayCategory resolves a stored category name for display. A name that
// no longer exists falls back to the catch-all category, and to the default
// when the catch-all itself was deleted. The stored value is left alone.
func displayCategory(name string, known map[string]bool) string {
	if known[name] {
		return name
	}
	if fallback := model.CategoryOrDefault(name).Name; known[fallback] {
		return fallback
	}
	return model.DefaultCategoryName
}

func (s *Service) historyByTask() (map[string][]model.Date, error) {
	entries, err := s.db.GetAllHistory()
	if err != nil {
		return nil, err
	}
	byTask := make(map[string][]model.Date)
	for _, e := range entries {
		byTask[e.TaskID] = append(byTask[e.TaskID], e.CompletedDate)
	}
	return byTask, nil
}

// reschedule is the best-effort tail of a mutation: scheduling problems are
// logged inside the scheduler, never returned to the workflow caller.
func (s *Service) reschedule(t model.Task) {
	if s.scheduler == nil {
		s.logger.Debug("no scheduler attached, skipping reschedule", "task", t.ID)
		return
	}
	s.scheduler.Schedule(t.ID, t.Name, t.NextDueDate)
}
