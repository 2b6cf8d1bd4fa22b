package db

import (
	"database/sql"
	"fmt"

	"github.com/dori/neverforget/internal/model"
	"github.com/google/uuid"
)

// GetTasks returns all tasks ordered by due date
func (db *DB) GetTasks() ([]model.Task, error) {
	rows, err := db.Query(`
		SELECT id, name, category, recurrence_days, next_due_date,
		       created_at, reminder_delay_days
		FROM tasks
		ORDER BY next_due_date, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTasks(rows)
}

// GetTasksByCategory returns tasks in a given category
func (db *DB) GetTasksByCategory(category string) ([]model.Task, error) {
	rows, err := db.Query(`
		SELECT id, name, category, recurrence_days, next_due_date,
		       created_at, reminder_delay_days
		FROM tasks
		WHERE category = ?
		ORDER BY next_due_date, name
	`, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTasks(rows)
}

// GetTask returns a single task by ID, or nil if it does not exist
func (db *DB) GetTask(id string) (*model.Task, error) {
	row := db.QueryRow(`
		SELECT id, name, category, recurrence_days, next_due_date,
		       created_at, reminder_delay_days
		FROM tasks WHERE id = ?
	`, id)

	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return t, err
}

// GetTaskByName returns the first task with the given name, or nil
func (db *DB) GetTaskByName(name string) (*model.Task, error) {
	row := db.QueryRow(`
		SELECT id, name, category, recurrence_days, next_due_date,
		       created_at, reminder_delay_days
		FROM tasks WHERE name = ?
		ORDER BY created_at
		LIMIT 1
	`, name)

	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return t, err
}

// CreateTask creates a new task with a fresh id
func (db *DB) CreateTask(name, category string, recurrenceDays int, nextDue model.Date, reminderDelayDays int, createdAt model.Date) (*model.Task, error) {
	t := model.Task{
		ID:                uuid.New().String(),
		Name:              name,
		Category:          category,
		RecurrenceDays:    recurrenceDays,
		NextDueDate:       nextDue,
		CreatedAt:         createdAt,
		ReminderDelayDays: reminderDelayDays,
	}
	if err := db.InsertTask(t); err != nil {
		return nil, err
	}
	return &t, nil
}

// InsertTask inserts a task verbatim (used by import, which preserves ids)
func (db *DB) InsertTask(t model.Task) error {
	_, err := db.Exec(`
		INSERT INTO tasks (id, name, category, recurrence_days, next_due_date, created_at, reminder_delay_days)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.Name, t.Category, t.RecurrenceDays, t.NextDueDate.String(), t.CreatedAt.String(), t.ReminderDelayDays)
	if err != nil {
		return err
	}
	db.notifyWatchers()
	return nil
}

// UpdateTask persists all mutable fields of a task
func (db *DB) UpdateTask(t model.Task) error {
	_, err := db.Exec(`
		UPDATE tasks
		SET name = ?, category = ?, recurrence_days = ?, next_due_date = ?, reminder_delay_days = ?
		WHERE id = ?
	`, t.Name, t.Category, t.RecurrenceDays, t.NextDueDate.String(), t.ReminderDelayDays, t.ID)
	if err != nil {
		return err
	}
	db.notifyWatchers()
	return nil
}

// CompleteTask records a completion: it reads the task's recurrence, moves
// the due date to completedDate + recurrence and appends a history row, all
// in a single transaction, so a concurrent read never sees one without the
// other. Returns sql.ErrNoRows when the task no longer exists. Duplicate
// completions on the same date are allowed.
func (db *DB) CompleteTask(taskID string, completedDate model.Date) (*model.Task, error) {
	var t *model.Task
	err := db.Transaction(func(tx *sql.Tx) error {
		row := tx.QueryRow(`
			SELECT id, name, category, recurrence_days, next_due_date,
			       created_at, reminder_delay_days
			FROM tasks WHERE id = ?
		`, taskID)

		var err error
		if t, err = scanTaskRow(row); err != nil {
			return err
		}
		t.NextDueDate = completedDate.AddDays(t.RecurrenceDays)

		if _, err := tx.Exec(`UPDATE tasks SET next_due_date = ? WHERE id = ?`,
			t.NextDueDate.String(), taskID); err != nil {
			return err
		}

		_, err = tx.Exec(`INSERT INTO task_history (task_id, completed_date) VALUES (?, ?)`,
			taskID, completedDate.String())
		return err
	})
	if err != nil {
		return nil, err
	}
	db.notifyWatchers()
	return t, nil
}

// DeleteTask deletes a task; the history cascade is handled by SQLite
func (db *DB) DeleteTask(id string) error {
	_, err := db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	db.notifyWatchers()
	return nil
}

// DeleteTaskByName deletes every task with the given name
func (db *DB) DeleteTaskByName(name string) error {
	_, err := db.Exec(`DELETE FROM tasks WHERE name = ?`, name)
	if err != nil {
		return err
	}
	db.notifyWatchers()
	return nil
}

// DeleteAllTasks removes every task and, via cascade, all history. Used by
// the destructive import path.
func (db *DB) DeleteAllTasks() error {
	_, err := db.Exec(`DELETE FROM tasks`)
	if err != nil {
		return err
	}
	db.notifyWatchers()
	return nil
}

// TaskCount returns the number of tasks
func (db *DB) TaskCount() (int, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM tasks`).Scan(&count)
	return count, err
}

// AddHistory appends a completion record for a task
func (db *DB) AddHistory(taskID string, completedDate model.Date) error {
	_, err := db.Exec(`INSERT INTO task_history (task_id, completed_date) VALUES (?, ?)`,
		taskID, completedDate.String())
	if err != nil {
		return err
	}
	db.notifyWatchers()
	return nil
}

// GetHistory returns a task's completion dates, most recent first
func (db *DB) GetHistory(taskID string) ([]model.Date, error) {
	rows, err := db.Query(`
		SELECT completed_date FROM task_history
		WHERE task_id = ?
		ORDER BY completed_date DESC
	`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []model.Date
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		d, err := model.ParseDate(s)
		if err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// HistoryEntry pairs a completion date with its owning task
type HistoryEntry struct {
	TaskID        string
	CompletedDate model.Date
}

// GetAllHistory returns every completion record across all tasks
func (db *DB) GetAllHistory() ([]HistoryEntry, error) {
	rows, err := db.Query(`SELECT task_id, completed_date FROM task_history`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var s string
		if err := rows.Scan(&e.TaskID, &s); err != nil {
			return nil, err
		}
		e.CompletedDate, err = model.ParseDate(s)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Helper functions

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTasks(rows *sql.Rows) ([]model.Task, error) {
	var tasks []model.Task
	for rows.Next() {
		t, err := scanTaskRow(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func scanTask(row *sql.Row) (*model.Task, error) {
	return scanTaskRow(row)
}

func scanTaskRow(s scanner) (*model.Task, error) {
	var t model.Task
	var nextDue, createdAt string

	err := s.Scan(
		&t.ID, &t.Name, &t.Category, &t.RecurrenceDays,
		&nextDue, &createdAt, &t.ReminderDelayDays,
	)
	if err != nil {
		return nil, err
	}

	if t.NextDueDate, err = model.ParseDate(nextDue); err != nil {
		return nil, fmt.Errorf("task %s: %w", t.ID, err)
	}
	if t.CreatedAt, err = model.ParseDate(createdAt); err != nil {
		return nil, fmt.Errorf("task %s: %w", t.ID, err)
	}

	return &t, nil
}
