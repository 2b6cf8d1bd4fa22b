package db

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dori/neverforget/internal/model"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// openEmptyDB opens a database and removes the seeded starter tasks so
// tests start from a known-empty task table
func openEmptyDB(t *testing.T) *DB {
	t.Helper()
	db := openTestDB(t)
	if err := db.DeleteAllTasks(); err != nil {
		t.Fatalf("Failed to clear seed tasks: %v", err)
	}
	return db
}

func mustCreateTask(t *testing.T, db *DB, name, category string, recurrence int, due model.Date) *model.Task {
	t.Helper()
	task, err := db.CreateTask(name, category, recurrence, due, model.DefaultReminderDelayDays, model.Today(time.Local))
	if err != nil {
		t.Fatalf("Failed to create task %q: %v", name, err)
	}
	return task
}

func TestSeedDefaults(t *testing.T) {
	db := openTestDB(t)

	cats, err := db.GetCategories()
	if err != nil {
		t.Fatalf("GetCategories failed: %v", err)
	}
	if len(cats) != 4 {
		t.Fatalf("seeded %d categories, want 4", len(cats))
	}
	// Non-deletable categories sort first
	if cats[0].Name != "Maison" || cats[0].IsDeletable {
		t.Errorf("first category = %+v, want non-deletable Maison", cats[0])
	}

	count, err := db.TaskCount()
	if err != nil {
		t.Fatalf("TaskCount failed: %v", err)
	}
	if count != 6 {
		t.Errorf("seeded %d tasks, want 6", count)
	}

	nt, err := db.NotificationTime()
	if err != nil {
		t.Fatalf("NotificationTime failed: %v", err)
	}
	if nt != "09:00" {
		t.Errorf("seeded notification time = %q, want 09:00", nt)
	}
}

func TestSeedRunsOnce(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	if err := db.DeleteAllTasks(); err != nil {
		t.Fatalf("Failed to clear tasks: %v", err)
	}
	db.Close()

	// Re-opening must not re-seed the starter tasks
	db, err = Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen database: %v", err)
	}
	defer db.Close()

	count, err := db.TaskCount()
	if err != nil {
		t.Fatalf("TaskCount failed: %v", err)
	}
	if count != 0 {
		t.Errorf("reopen re-seeded %d tasks, want 0", count)
	}
}

func TestTaskCRUD(t *testing.T) {
	db := openEmptyDB(t)
	today := model.Today(time.Local)

	created := mustCreateTask(t, db, "Descale kettle", "Maison", 90, today.AddDays(90))
	if created.ID == "" {
		t.Fatal("created task has no ID")
	}

	got, err := db.GetTask(created.ID)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if got == nil || got.Name != "Descale kettle" || got.RecurrenceDays != 90 {
		t.Fatalf("GetTask = %+v", got)
	}

	got.Name = "Descale the kettle"
	got.RecurrenceDays = 60
	if err := db.UpdateTask(*got); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}

	byName, err := db.GetTaskByName("Descale the kettle")
	if err != nil {
		t.Fatalf("GetTaskByName failed: %v", err)
	}
	if byName == nil || byName.ID != created.ID || byName.RecurrenceDays != 60 {
		t.Fatalf("GetTaskByName = %+v", byName)
	}

	if err := db.DeleteTask(created.ID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	gone, err := db.GetTask(created.ID)
	if err != nil {
		t.Fatalf("GetTask after delete failed: %v", err)
	}
	if gone != nil {
		t.Error("task still present after delete")
	}
}

func TestGetTaskMissingReturnsNil(t *testing.T) {
	db := openEmptyDB(t)

	task, err := db.GetTask("nope")
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if task != nil {
		t.Errorf("GetTask = %+v, want nil", task)
	}

	task, err = db.GetTaskByName("nope")
	if err != nil {
		t.Fatalf("GetTaskByName failed: %v", err)
	}
	if task != nil {
		t.Errorf("GetTaskByName = %+v, want nil", task)
	}
}

func TestCompleteTaskWritesHistoryAndDueDate(t *testing.T) {
	db := openEmptyDB(t)
	today := model.Today(time.Local)

	task := mustCreateTask(t, db, "Water plants", "Maison", 7, today)

	next := today.AddDays(7)
	updated, err := db.CompleteTask(task.ID, today)
	if err != nil {
		t.Fatalf("CompleteTask failed: %v", err)
	}
	if updated.NextDueDate != next {
		t.Errorf("returned due date = %s, want %s", updated.NextDueDate, next)
	}

	got, err := db.GetTask(task.ID)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if got.NextDueDate != next {
		t.Errorf("due date = %s, want %s", got.NextDueDate, next)
	}

	history, err := db.GetHistory(task.ID)
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	if len(history) != 1 || history[0] != today {
		t.Errorf("history = %v, want [%s]", history, today)
	}

	// Same-date completions stack
	if _, err := db.CompleteTask(task.ID, today); err != nil {
		t.Fatalf("second CompleteTask failed: %v", err)
	}
	history, err = db.GetHistory(task.ID)
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	if len(history) != 2 {
		t.Errorf("history length = %d, want 2", len(history))
	}
}

func TestCompleteTaskMissingTask(t *testing.T) {
	db := openEmptyDB(t)
	today := model.Today(time.Local)

	_, err := db.CompleteTask("nope", today)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("CompleteTask on missing task = %v, want sql.ErrNoRows", err)
	}

	// The failed transaction must not leave an orphan history row
	entries, err := db.GetAllHistory()
	if err != nil {
		t.Fatalf("GetAllHistory failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("found %d orphan history rows", len(entries))
	}
}

func TestDeleteTaskCascadesHistory(t *testing.T) {
	db := openEmptyDB(t)
	today := model.Today(time.Local)

	task := mustCreateTask(t, db, "Clean gutters", "Maison", 180, today)
	if _, err := db.CompleteTask(task.ID, today); err != nil {
		t.Fatalf("CompleteTask failed: %v", err)
	}

	if err := db.DeleteTask(task.ID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}

	entries, err := db.GetAllHistory()
	if err != nil {
		t.Fatalf("GetAllHistory failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("history survived task delete: %v", entries)
	}
}

func TestGetHistoryMostRecentFirst(t *testing.T) {
	db := openEmptyDB(t)
	today := model.Today(time.Local)

	task := mustCreateTask(t, db, "Backup laptop", "Autre", 30, today)
	for _, daysAgo := range []int{60, 10, 30} {
		if err := db.AddHistory(task.ID, today.AddDays(-daysAgo)); err != nil {
			t.Fatalf("AddHistory failed: %v", err)
		}
	}

	history, err := db.GetHistory(task.ID)
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	want := []model.Date{today.AddDays(-10), today.AddDays(-30), today.AddDays(-60)}
	for i := range want {
		if history[i] != want[i] {
			t.Fatalf("history[%d] = %s, want %s", i, history[i], want[i])
		}
	}
}

func TestDeleteCategoryReassignsTasks(t *testing.T) {
	db := openEmptyDB(t)
	today := model.Today(time.Local)

	task := mustCreateTask(t, db, "Check chain", "Scooter", 30, today)

	if err := db.DeleteCategory("Scooter"); err != nil {
		t.Fatalf("DeleteCategory failed: %v", err)
	}

	got, err := db.GetTask(task.ID)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if got.Category != model.DefaultCategoryName {
		t.Errorf("category after delete = %q, want %q", got.Category, model.DefaultCategoryName)
	}

	cat, err := db.GetCategory("Scooter")
	if err != nil {
		t.Fatalf("GetCategory failed: %v", err)
	}
	if cat != nil {
		t.Error("category still present after delete")
	}
}

func TestDeleteCategoryRefusesDefault(t *testing.T) {
	db := openEmptyDB(t)

	if err := db.DeleteCategory(model.DefaultCategoryName); err != nil {
		t.Fatalf("DeleteCategory failed: %v", err)
	}

	cat, err := db.GetCategory(model.DefaultCategoryName)
	if err != nil {
		t.Fatalf("GetCategory failed: %v", err)
	}
	if cat == nil {
		t.Error("default category was deleted")
	}
}

func TestSettings(t *testing.T) {
	db := openEmptyDB(t)

	// Seeded value
	nt, err := db.NotificationTime()
	if err != nil {
		t.Fatalf("NotificationTime failed: %v", err)
	}
	if nt != "09:00" {
		t.Errorf("NotificationTime = %q, want 09:00", nt)
	}

	// Absent row falls back to the documented default
	if err := db.DeleteSetting(NotificationTimeKey); err != nil {
		t.Fatalf("DeleteSetting failed: %v", err)
	}
	nt, err = db.NotificationTime()
	if err != nil {
		t.Fatalf("NotificationTime failed: %v", err)
	}
	if nt != DefaultNotificationTime {
		t.Errorf("NotificationTime fallback = %q, want %q", nt, DefaultNotificationTime)
	}

	// Upsert
	if err := db.SetSetting(NotificationTimeKey, "18:30"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	if err := db.SetSetting(NotificationTimeKey, "19:45"); err != nil {
		t.Fatalf("SetSetting upsert failed: %v", err)
	}
	nt, _ = db.NotificationTime()
	if nt != "19:45" {
		t.Errorf("NotificationTime after upsert = %q, want 19:45", nt)
	}

	// Reminder delay defaults to 3 when the row is absent or invalid
	delay, err := db.ReminderDelayDays()
	if err != nil {
		t.Fatalf("ReminderDelayDays failed: %v", err)
	}
	if delay != model.DefaultReminderDelayDays {
		t.Errorf("ReminderDelayDays = %d, want %d", delay, model.DefaultReminderDelayDays)
	}

	if err := db.SetSetting(ReminderDelayDaysKey, "not-a-number"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	delay, err = db.ReminderDelayDays()
	if err != nil {
		t.Fatalf("ReminderDelayDays failed: %v", err)
	}
	if delay != model.DefaultReminderDelayDays {
		t.Errorf("ReminderDelayDays with garbage row = %d, want %d", delay, model.DefaultReminderDelayDays)
	}

	if err := db.SetSetting(ReminderDelayDaysKey, "5"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	delay, _ = db.ReminderDelayDays()
	if delay != 5 {
		t.Errorf("ReminderDelayDays = %d, want 5", delay)
	}
}

func TestWatchSignalsOnMutation(t *testing.T) {
	db := openEmptyDB(t)
	today := model.Today(time.Local)

	ch := db.Watch()
	defer db.Unwatch(ch)

	mustCreateTask(t, db, "Flip mattress", "Maison", 180, today)

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("no watch signal after mutation")
	}
}

func TestGetTasksOrderedByDueDate(t *testing.T) {
	db := openEmptyDB(t)
	today := model.Today(time.Local)

	mustCreateTask(t, db, "later", "Maison", 90, today.AddDays(90))
	mustCreateTask(t, db, "sooner", "Maison", 7, today.AddDays(7))

	tasks, err := db.GetTasks()
	if err != nil {
		t.Fatalf("GetTasks failed: %v", err)
	}
	if len(tasks) != 2 || tasks[0].Name != "sooner" {
		t.Errorf("GetTasks order = %v", taskNames(tasks))
	}
}

func taskNames(tasks []model.Task) []string {
	names := make([]string, len(tasks))
	for i, t := range tasks {
		names[i] = t.Name
	}
	return names
}
