// Package backup serializes tasks and their completion history to a
// versioned JSON document and restores them, either by replacing the whole
// store or by resolving name conflicts task by task.
package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dori/neverforget/internal/db"
	"github.com/dori/neverforget/internal/model"
)

// FormatVersion identifies the export document layout
const FormatVersion = "1.0"

// Document is the top-level export format
type Document struct {
	Version    string       `json:"version"`
	ExportDate string       `json:"exportDate"`
	Tasks      []ExportTask `json:"tasks"`
}

// ExportTask is one task with its completion history, dates only
type ExportTask struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Category       string   `json:"category"`
	RecurrenceDays int      `json:"recurrenceDays"`
	NextDueDate    string   `json:"nextDueDate"`
	History        []string `json:"history"`
}

// Resolution picks what to do with an imported task whose name collides
// with an existing one
type Resolution string

const (
	// ResolutionOverwrite deletes the existing same-named task and imports
	// the incoming one
	ResolutionOverwrite Resolution = "overwrite"
	// ResolutionMerge keeps the existing task and adds only the incoming
	// history dates it does not already have
	ResolutionMerge Resolution = "merge"
	// ResolutionSkip discards the incoming task
	ResolutionSkip Resolution = "skip"
)

// Conflict reports a name collision found during import
type Conflict struct {
	TaskName string
	Existing model.Task
	Imported ExportTask
}

// ImportResult summarizes an import run
type ImportResult struct {
	Imported  int
	Skipped   int
	Conflicts []Conflict
}

// Rescheduler is the notification sweep run around an import
type Rescheduler interface {
	CancelAll()
	RescheduleAll(tasks []model.Task)
}

// Manager performs exports and imports against the task store
type Manager struct {
	db        *db.DB
	scheduler Rescheduler
	logger    *log.Logger
	loc       *time.Location
}

// New creates a backup manager. scheduler may be nil for short-lived CLI
// invocations.
func New(database *db.DB, scheduler Rescheduler, logger *log.Logger, loc *time.Location) *Manager {
	if loc == nil {
		loc = time.Local
	}
	return &Manager{db: database, scheduler: scheduler, logger: logger, loc: loc}
}

// Export builds the document for every task with its full history, most
// recent completion first
func (m *Manager) Export() (*Document, error) {
	tasks, err := m.db.GetTasks()
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	doc := &Document{
		Version:    FormatVersion,
		ExportDate: time.Now().In(m.loc).Format(time.RFC3339),
		Tasks:      make([]ExportTask, 0, len(tasks)),
	}

	for _, t := range tasks {
		history, err := m.db.GetHistory(t.ID)
		if err != nil {
			return nil, fmt.Errorf("export history for %q: %w", t.Name, err)
		}
		dates := make([]string, 0, len(history))
		for _, d := range history {
			dates = append(dates, d.String())
		}
		doc.Tasks = append(doc.Tasks, ExportTask{
			ID:             t.ID,
			Name:           t.Name,
			Category:       t.Category,
			RecurrenceDays: t.RecurrenceDays,
			NextDueDate:    t.NextDueDate.String(),
			History:        dates,
		})
	}

	return doc, nil
}

// FileName builds the timestamped backup file name
func FileName(now time.Time) string {
	return fmt.Sprintf("neverforget_backup_%s_%s.json",
		now.Format("20060102"), now.Format("1504"))
}

// ExportToFile writes the export document to path, or to a timestamped file
// in the current directory when path is empty. Returns the file written.
func (m *Manager) ExportToFile(path string) (string, error) {
	doc, err := m.Export()
	if err != nil {
		return "", err
	}

	if path == "" {
		path = FileName(time.Now().In(m.loc))
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	return path, nil
}

// ReadFile loads and parses an export document. Any read or parse failure
// is a single error; nothing has been applied yet at this point.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	return Parse(data)
}

// Parse decodes an export document and validates its dates up front so a
// malformed file aborts before any row is written
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("import: invalid backup file: %w", err)
	}

	for _, t := range doc.Tasks {
		if _, err := model.ParseDate(t.NextDueDate); err != nil {
			return nil, fmt.Errorf("import: task %q: %w", t.Name, err)
		}
		for _, h := range t.History {
			if _, err := model.ParseDate(h); err != nil {
				return nil, fmt.Errorf("import: task %q history: %w", t.Name, err)
			}
		}
	}

	return &doc, nil
}

// DetectConflicts lists the imported tasks whose names collide with
// existing tasks, so a caller can prompt for resolutions before importing
func (m *Manager) DetectConflicts(doc *Document) ([]Conflict, error) {
	var conflicts []Conflict
	for _, imported := range doc.Tasks {
		existing, err := m.db.GetTaskByName(imported.Name)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			conflicts = append(conflicts, Conflict{
				TaskName: imported.Name,
				Existing: *existing,
				Imported: imported,
			})
		}
	}
	return conflicts, nil
}

// ImportReplace deletes every existing task and imports the document
// verbatim. There is no undo; the data-loss risk of the destructive path is
// accepted and documented.
func (m *Manager) ImportReplace(doc *Document) (*ImportResult, error) {
	if m.scheduler != nil {
		m.scheduler.CancelAll()
	}

	if err := m.db.DeleteAllTasks(); err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}

	result := &ImportResult{}
	for _, t := range doc.Tasks {
		if err := m.importTask(t); err != nil {
			return nil, err
		}
		result.Imported++
	}

	m.rescheduleAll()
	return result, nil
}

// Import applies the document with per-task conflict resolution. A task
// whose name matches an existing one and has no resolution is skipped; the
// conflict is reported so the caller can re-run with explicit choices.
func (m *Manager) Import(doc *Document, resolutions map[string]Resolution) (*ImportResult, error) {
	result := &ImportResult{}

	for _, imported := range doc.Tasks {
		existing, err := m.db.GetTaskByName(imported.Name)
		if err != nil {
			return nil, fmt.Errorf("import: %w", err)
		}

		if existing == nil {
			if err := m.importTask(imported); err != nil {
				return nil, err
			}
			result.Imported++
			continue
		}

		result.Conflicts = append(result.Conflicts, Conflict{
			TaskName: imported.Name,
			Existing: *existing,
			Imported: imported,
		})

		switch resolutions[imported.Name] {
		case ResolutionOverwrite:
			if err := m.db.DeleteTaskByName(imported.Name); err != nil {
				return nil, fmt.Errorf("import: %w", err)
			}
			if err := m.importTask(imported); err != nil {
				return nil, err
			}
			result.Imported++
		case ResolutionMerge:
			if err := m.mergeHistory(*existing, imported); err != nil {
				return nil, err
			}
			result.Imported++
		default:
			// No explicit resolution behaves like skip; silently importing
			// a duplicate name helps nobody.
			result.Skipped++
		}
	}

	m.rescheduleAll()
	return result, nil
}

// importTask inserts one task with a fresh createdAt and the default
// reminder delay, then its history rows. A category the store does not know
// is resolved to an existing one, never inserted verbatim.
func (m *Manager) importTask(t ExportTask) error {
	due, err := model.ParseDate(t.NextDueDate)
	if err != nil {
		return fmt.Errorf("import: task %q: %w", t.Name, err)
	}
	category, err := m.resolveCategory(t.Category)
	if err != nil {
		return fmt.Errorf("import: task %q: %w", t.Name, err)
	}

	task := model.Task{
		ID:                t.ID,
		Name:              t.Name,
		Category:          category,
		RecurrenceDays:    t.RecurrenceDays,
		NextDueDate:       due,
		CreatedAt:         model.Today(m.loc),
		ReminderDelayDays: model.DefaultReminderDelayDays,
	}
	if err := m.db.InsertTask(task); err != nil {
		return fmt.Errorf("import: task %q: %w", t.Name, err)
	}

	for _, h := range t.History {
		d, err := model.ParseDate(h)
		if err != nil {
			return fmt.Errorf("import: task %q history: %w", t.Name, err)
		}
		if err := m.db.AddHistory(t.ID, d); err != nil {
			return fmt.Errorf("import: task %q history: %w", t.Name, err)
		}
	}

	return nil
}

// resolveCategory maps an imported category name to one the store knows:
// the name itself when it exists, the catch-all category when it does not,
// and the non-deletable default when even the catch-all is gone.
func (m *Manager) resolveCategory(name string) (string, error) {
	c, err := m.db.GetCategory(name)
	if err != nil {
		return "", err
	}
	if c != nil {
		return name, nil
	}

	fallback := model.CategoryOrDefault(name).Name
	if c, err = m.db.GetCategory(fallback); err != nil {
		return "", err
	}
	if c == nil {
		return model.DefaultCategoryName, nil
	}
	return fallback, nil
}

// mergeHistory adds only the imported completion dates the existing task
// does not already have. The existing task's own fields are never touched
// by a merge.
func (m *Manager) mergeHistory(existing model.Task, imported ExportTask) error {
	current, err := m.db.GetHistory(existing.ID)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	seen := make(map[string]bool, len(current))
	for _, d := range current {
		seen[d.String()] = true
	}

	for _, h := range imported.History {
		if seen[h] {
			continue
		}
		d, err := model.ParseDate(h)
		if err != nil {
			return fmt.Errorf("import: task %q history: %w", imported.Name, err)
		}
		if err := m.db.AddHistory(existing.ID, d); err != nil {
			return fmt.Errorf("import: %w", err)
		}
		seen[h] = true
	}

	return nil
}

func (m *Manager) rescheduleAll() {
	if m.scheduler == nil {
		return
	}
	tasks, err := m.db.GetTasks()
	if err != nil {
		m.logger.Error("failed to reschedule after import", "err", err)
		return
	}
	m.scheduler.RescheduleAll(tasks)
}
