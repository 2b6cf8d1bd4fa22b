package service

import (
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dori/neverforget/internal/db"
	"github.com/dori/neverforget/internal/model"
)

// recordingScheduler captures the scheduler calls the workflows make
type recordingScheduler struct {
	scheduled []string
	canceled  []string
}

func (r *recordingScheduler) Schedule(taskID, taskName string, dueDate model.Date) {
	r.scheduled = append(r.scheduled, taskID)
}

func (r *recordingScheduler) Cancel(taskID string) {
	r.canceled = append(r.canceled, taskID)
}

func newTestService(t *testing.T) (*Service, *recordingScheduler) {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	if err := database.DeleteAllTasks(); err != nil {
		t.Fatalf("Failed to clear seed tasks: %v", err)
	}

	sched := &recordingScheduler{}
	svc := New(database, sched, log.New(io.Discard), time.Local)
	return svc, sched
}

func TestValidateTaskForm(t *testing.T) {
	cases := []struct {
		name       string
		taskName   string
		category   string
		recurrence int
		wantField  string
	}{
		{"valid", "Water plants", "Maison", 7, ""},
		{"empty name", "", "Maison", 7, "name"},
		{"name at limit", strings.Repeat("x", 100), "Maison", 7, ""},
		{"name over limit", strings.Repeat("x", 101), "Maison", 7, "name"},
		{"multibyte name at limit", strings.Repeat("é", 100), "Maison", 7, ""},
		{"missing category", "Water plants", "", 7, "category"},
		{"zero recurrence", "Water plants", "Maison", 0, "recurrence"},
		{"negative recurrence", "Water plants", "Maison", -5, "recurrence"},
		{"recurrence at limit", "Water plants", "Maison", 3650, ""},
		{"recurrence over limit", "Water plants", "Maison", 3651, "recurrence"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := ValidateTaskForm(c.taskName, c.category, c.recurrence)
			if c.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected validation error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected %s error, got none", c.wantField)
			}
			if err.Field(c.wantField) == "" {
				t.Errorf("no error recorded for field %s: %v", c.wantField, err.Fields)
			}
		})
	}
}

func TestCreateTaskDefaultsDueDate(t *testing.T) {
	svc, sched := newTestService(t)

	task, err := svc.CreateTask(TaskForm{Name: "Water plants", Category: "Maison", RecurrenceDays: 7})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	want := svc.Today().AddDays(7)
	if task.NextDueDate != want {
		t.Errorf("due date = %s, want %s", task.NextDueDate, want)
	}
	if task.ReminderDelayDays != model.DefaultReminderDelayDays {
		t.Errorf("reminder delay = %d, want %d", task.ReminderDelayDays, model.DefaultReminderDelayDays)
	}
	if len(sched.scheduled) != 1 || sched.scheduled[0] != task.ID {
		t.Errorf("scheduled = %v, want [%s]", sched.scheduled, task.ID)
	}
}

func TestCreateTaskExplicitDueDate(t *testing.T) {
	svc, _ := newTestService(t)

	due := svc.Today().AddDays(3)
	task, err := svc.CreateTask(TaskForm{Name: "Rotate tires", Category: "Voiture", RecurrenceDays: 90, NextDueDate: due})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if task.NextDueDate != due {
		t.Errorf("due date = %s, want %s", task.NextDueDate, due)
	}
}

func TestCreateTaskRejectsInvalid(t *testing.T) {
	svc, sched := newTestService(t)

	_, err := svc.CreateTask(TaskForm{Name: "", Category: "Maison", RecurrenceDays: 7})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if len(sched.scheduled) != 0 {
		t.Error("invalid form reached the scheduler")
	}
}

func TestCompleteAdvancesDueDate(t *testing.T) {
	svc, sched := newTestService(t)

	task, err := svc.CreateTask(TaskForm{Name: "Water plants", Category: "Maison", RecurrenceDays: 7})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	// Complete late: the next due date counts from the completion, not from
	// the old due date
	completion := svc.Today().AddDays(-2)
	updated, err := svc.Complete(task.ID, completion)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	want := completion.AddDays(7)
	if updated.NextDueDate != want {
		t.Errorf("due date = %s, want %s", updated.NextDueDate, want)
	}

	view, err := svc.View(task.ID)
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
	if len(view.History) != 1 || view.History[0] != completion {
		t.Errorf("history = %v, want [%s]", view.History, completion)
	}

	if len(sched.scheduled) != 2 {
		t.Errorf("scheduler calls = %d, want 2 (create + complete)", len(sched.scheduled))
	}
}

func TestCompleteMissingTask(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Complete("nope", svc.Today())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestCompleteDeletedTaskMapsToNotFound(t *testing.T) {
	svc, sched := newTestService(t)

	task, err := svc.CreateTask(TaskForm{Name: "Water plants", Category: "Maison", RecurrenceDays: 7})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	// A notification-driven complete can race a delete; the raw storage
	// error must not leak out of the workflow
	if err := svc.db.DeleteTask(task.ID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}

	_, err = svc.Complete(task.ID, svc.Today())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
	if len(sched.scheduled) != 1 {
		t.Errorf("scheduler calls = %d, want 1 (create only)", len(sched.scheduled))
	}
}

func TestDeleteTaskCancelsReminders(t *testing.T) {
	svc, sched := newTestService(t)

	task, err := svc.CreateTask(TaskForm{Name: "Water plants", Category: "Maison", RecurrenceDays: 7})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	if err := svc.DeleteTask(task.ID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	if len(sched.canceled) != 1 || sched.canceled[0] != task.ID {
		t.Errorf("canceled = %v, want [%s]", sched.canceled, task.ID)
	}
}

func TestViewsSortedByUrgency(t *testing.T) {
	svc, _ := newTestService(t)
	today := svc.Today()

	add := func(name string, due model.Date) {
		t.Helper()
		if _, err := svc.CreateTask(TaskForm{Name: name, Category: "Maison", RecurrenceDays: 30, NextDueDate: due}); err != nil {
			t.Fatalf("CreateTask %q failed: %v", name, err)
		}
	}

	add("upcoming", today.AddDays(10))
	add("overdue", today.AddDays(-5))
	add("today", today)

	views, err := svc.Views()
	if err != nil {
		t.Fatalf("Views failed: %v", err)
	}

	want := []string{"overdue", "today", "upcoming"}
	for i, name := range want {
		if views[i].Name != name {
			t.Fatalf("position %d = %q, want %q", i, views[i].Name, name)
		}
	}
	if views[0].DaysUntilDue != 5 {
		t.Errorf("overdue display days = %d, want 5", views[0].DaysUntilDue)
	}
}

func TestOverdueAndDueTodayFilters(t *testing.T) {
	svc, _ := newTestService(t)
	today := svc.Today()

	for name, due := range map[string]model.Date{
		"overdue":  today.AddDays(-1),
		"today":    today,
		"upcoming": today.AddDays(5),
	} {
		if _, err := svc.CreateTask(TaskForm{Name: name, Category: "Maison", RecurrenceDays: 30, NextDueDate: due}); err != nil {
			t.Fatalf("CreateTask failed: %v", err)
		}
	}

	overdue, err := svc.Overdue()
	if err != nil {
		t.Fatalf("Overdue failed: %v", err)
	}
	if len(overdue) != 1 || overdue[0].Name != "overdue" {
		t.Errorf("Overdue = %v", overdue)
	}

	dueToday, err := svc.DueToday()
	if err != nil {
		t.Fatalf("DueToday failed: %v", err)
	}
	if len(dueToday) != 1 || dueToday[0].Name != "today" {
		t.Errorf("DueToday = %v", dueToday)
	}

	upcoming, err := svc.Upcoming(7)
	if err != nil {
		t.Fatalf("Upcoming failed: %v", err)
	}
	if len(upcoming) != 1 || upcoming[0].Name != "upcoming" {
		t.Errorf("Upcoming = %v", upcoming)
	}
}

func TestViewsFallBackForUnknownCategory(t *testing.T) {
	svc, _ := newTestService(t)

	// Validation only requires a non-empty category, so a quick-add typo
	// can store a name the category table never had
	task, err := svc.CreateTask(TaskForm{Name: "Water plants", Category: "Ancienne", RecurrenceDays: 7})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	views, err := svc.Views()
	if err != nil {
		t.Fatalf("Views failed: %v", err)
	}
	if len(views) != 1 || views[0].Category != "Autre" {
		t.Errorf("views = %+v, want category Autre", views)
	}

	view, err := svc.View(task.ID)
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
	if view.Category != "Autre" {
		t.Errorf("View category = %q, want Autre", view.Category)
	}

	// The stored value stays untouched
	stored, err := svc.db.GetTask(task.ID)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if stored.Category != "Ancienne" {
		t.Errorf("stored category = %q, want Ancienne", stored.Category)
	}

	// With the catch-all gone the default takes over
	if err := svc.db.DeleteCategory("Autre"); err != nil {
		t.Fatalf("DeleteCategory failed: %v", err)
	}
	views, err = svc.Views()
	if err != nil {
		t.Fatalf("Views failed: %v", err)
	}
	if len(views) != 1 || views[0].Category != model.DefaultCategoryName {
		t.Errorf("views after deleting Autre = %+v, want category %s", views, model.DefaultCategoryName)
	}
}

func TestNilSchedulerIsFine(t *testing.T) {
	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	svc := New(database, nil, log.New(io.Discard), time.Local)
	task, err := svc.CreateTask(TaskForm{Name: "No reminders", Category: "Maison", RecurrenceDays: 7})
	if err != nil {
		t.Fatalf("CreateTask with nil scheduler failed: %v", err)
	}
	if err := svc.DeleteTask(task.ID); err != nil {
		t.Fatalf("DeleteTask with nil scheduler failed: %v", err)
	}
}
