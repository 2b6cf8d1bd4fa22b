package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dori/neverforget/internal/backup"
	"github.com/dori/neverforget/internal/db"
	"github.com/dori/neverforget/internal/notify"
	"github.com/dori/neverforget/internal/schedule"
	"github.com/dori/neverforget/internal/service"
	"github.com/gofrs/flock"
)

// App holds the application state and dependencies. Everything is
// constructed explicitly here; there is no ambient global state.
type App struct {
	DB        *db.DB
	Notifier  *notify.Notifier
	Scheduler *schedule.Scheduler
	Tasks     *service.Service
	Backup    *backup.Manager
	Logger    *log.Logger
	DataDir   string

	lockFile *flock.Flock
	logFile  *os.File
}

// Config holds application configuration
type Config struct {
	DataDir string
	DBPath  string

	// WithScheduler attaches in-process reminder timers. Short-lived CLI
	// commands leave it off; the TUI and watch mode turn it on.
	WithScheduler bool

	// Lock acquires the single-instance lock. Quick one-shot commands skip
	// it, mirroring the storage layer's own write serialization.
	Lock bool

	// Quiet suppresses desktop notifications
	Quiet bool
}

// DefaultConfig returns the default application configuration. The data
// directory honors NEVERFORGET_DATA_DIR for tests and portable setups;
// NEVERFORGET_QUIET disables desktop notifications.
func DefaultConfig() *Config {
	dataDir := os.Getenv("NEVERFORGET_DATA_DIR")
	if dataDir == "" {
		dataDir = db.DefaultDataDir()
	}
	return &Config{
		DataDir: dataDir,
		DBPath:  filepath.Join(dataDir, "neverforget.db"),
		Quiet:   os.Getenv("NEVERFORGET_QUIET") != "",
	}
}

// New creates a new application instance
func New(cfg *Config) (*App, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	a := &App{
		DataDir:  cfg.DataDir,
		Notifier: notify.NewNotifier(),
	}
	if cfg.Quiet {
		a.Notifier.SetEnabled(false)
	}

	// Logs go to a file so they never corrupt TUI output
	logPath := filepath.Join(cfg.DataDir, "neverforget.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	a.logFile = logFile
	a.Logger = log.NewWithOptions(logFile, log.Options{
		ReportTimestamp: true,
	})

	if cfg.Lock {
		if err := a.acquireLock(); err != nil {
			logFile.Close()
			return nil, err
		}
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		a.releaseLock()
		logFile.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	a.DB = database

	if cfg.WithScheduler {
		a.Scheduler = schedule.New(database, a.Notifier, a.Logger, time.Local)
	}

	var rescheduler service.Rescheduler
	var sweeper backup.Rescheduler
	if a.Scheduler != nil {
		rescheduler = a.Scheduler
		sweeper = a.Scheduler
	}
	a.Tasks = service.New(database, rescheduler, a.Logger, time.Local)
	a.Backup = backup.New(database, sweeper, a.Logger, time.Local)

	return a, nil
}

// StartReminders schedules every task's notifications and starts the daily
// sweep. Only meaningful when the scheduler was enabled.
func (a *App) StartReminders() error {
	if a.Scheduler == nil {
		return nil
	}

	tasks, err := a.DB.GetTasks()
	if err != nil {
		return fmt.Errorf("failed to load tasks for reminders: %w", err)
	}
	a.Scheduler.RescheduleAll(tasks)

	return a.Scheduler.StartDailySweep(a.DB.GetTasks)
}

// acquireLock acquires an exclusive file lock to prevent multiple instances
func (a *App) acquireLock() error {
	lockPath := filepath.Join(a.DataDir, "neverforget.lock")
	a.lockFile = flock.New(lockPath)

	locked, err := a.lockFile.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}

	if !locked {
		return fmt.Errorf("another instance of neverforget is already running")
	}

	return nil
}

// releaseLock releases the file lock
func (a *App) releaseLock() {
	if a.lockFile != nil {
		a.lockFile.Unlock()
	}
}

// Close cleans up application resources
func (a *App) Close() error {
	var errs []error

	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	a.releaseLock()

	if a.logFile != nil {
		a.logFile.Close()
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
