// Package schedule computes absolute fire times for task notifications and
// runs them on in-process timers. A daily cron sweep rebuilds the whole
// timer set so date rollover and restarts never leave stale jobs behind.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dori/neverforget/internal/model"
	"github.com/robfig/cron/v3"
)

// Kind distinguishes the two notification types per task
type Kind string

const (
	KindDue      Kind = "due"
	KindReminder Kind = "reminder"
)

// SnoozeDelays is the fixed menu of snooze options
var SnoozeDelays = map[string]time.Duration{
	"1h": time.Hour,
	"3h": 3 * time.Hour,
	"1d": 24 * time.Hour,
	"3d": 72 * time.Hour,
}

// ParseSnoozeDelay maps a CLI snooze argument to its duration
func ParseSnoozeDelay(s string) (time.Duration, error) {
	d, ok := SnoozeDelays[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("unknown snooze delay %q (use 1h, 3h, 1d or 3d)", s)
	}
	return d, nil
}

// Store is the slice of the task store the scheduler reads
type Store interface {
	GetTask(id string) (*model.Task, error)
	NotificationTime() (string, error)
	ReminderDelayDays() (int, error)
}

// Delivery receives fired notifications
type Delivery interface {
	SendTaskDue(taskID, taskName string, overdue bool) error
	SendTaskReminder(taskID, taskName string, overdue bool) error
}

type job struct {
	kind   Kind
	fireAt time.Time
	timer  *time.Timer
}

// Scheduler owns the pending notification jobs. All failures here are
// logged and never propagated: a task completion must not fail because a
// notification could not be queued.
type Scheduler struct {
	mu   sync.Mutex
	jobs map[string]map[string]*job // task id -> job name

	store   Store
	deliver Delivery
	logger  *log.Logger
	loc     *time.Location

	cron      *cron.Cron
	sweepID   cron.EntryID
	listTasks func() ([]model.Task, error)

	// now is swapped out in tests
	now func() time.Time
}

// New creates a scheduler with no pending jobs
func New(store Store, deliver Delivery, logger *log.Logger, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		jobs:    make(map[string]map[string]*job),
		store:   store,
		deliver: deliver,
		logger:  logger,
		loc:     loc,
		now:     time.Now,
	}
}

// Schedule cancels any pending jobs for the task and enqueues the DUE and
// REMINDER notifications for the given due date. A fire time that is
// already in the past is silently skipped, never back-filled.
func (s *Scheduler) Schedule(taskID, taskName string, dueDate model.Date) {
	s.Cancel(taskID)

	hour, minute, err := s.notificationClock()
	if err != nil {
		s.logger.Error("failed to read notification time", "err", err)
		return
	}

	delay, err := s.store.ReminderDelayDays()
	if err != nil {
		s.logger.Warn("failed to read reminder delay, using default", "err", err)
		delay = model.DefaultReminderDelayDays
	}

	s.enqueue(taskID, "due_"+taskID, KindDue, taskName, dueDate.At(hour, minute, s.loc))
	s.enqueue(taskID, "reminder_"+taskID, KindReminder, taskName,
		dueDate.AddDays(delay).At(hour, minute, s.loc))
}

// Snooze enqueues exactly one reminder at now+delay, independent of the
// task's actual due date, and leaves other pending jobs alone.
func (s *Scheduler) Snooze(taskID, taskName string, delay time.Duration) {
	name := fmt.Sprintf("snooze_%s_%d", taskID, s.now().UnixNano())
	s.enqueue(taskID, name, KindReminder, taskName, s.now().Add(delay))
}

// Cancel removes all pending jobs for a task. It is idempotent and does not
// report an error when nothing was pending.
func (s *Scheduler) Cancel(taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, j := range s.jobs[taskID] {
		j.timer.Stop()
	}
	delete(s.jobs, taskID)
}

// CancelAll removes every pending job
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, byName := range s.jobs {
		for _, j := range byName {
			j.timer.Stop()
		}
	}
	s.jobs = make(map[string]map[string]*job)
}

// RescheduleAll drops every pending job and schedules each task anew. Used
// on startup and after an import sweep.
func (s *Scheduler) RescheduleAll(tasks []model.Task) {
	s.CancelAll()
	for _, t := range tasks {
		s.Schedule(t.ID, t.Name, t.NextDueDate)
	}
}

// PendingCount returns the number of pending jobs for a task
func (s *Scheduler) PendingCount(taskID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs[taskID])
}

// StartDailySweep runs a cron job at the notification time that reschedules
// every task. listTasks is called on each sweep so the set is always fresh.
func (s *Scheduler) StartDailySweep(listTasks func() ([]model.Task, error)) error {
	s.cron = cron.New(cron.WithLocation(s.loc))
	s.listTasks = listTasks

	if err := s.registerSweep(); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// RefreshDailySweep moves the sweep to the notification time currently in
// the store, so a settings change does not wait for a restart. A no-op when
// the sweep was never started.
func (s *Scheduler) RefreshDailySweep() error {
	if s.cron == nil {
		return nil
	}
	return s.registerSweep()
}

// registerSweep adds the sweep entry at the current notification time,
// replacing any previous entry
func (s *Scheduler) registerSweep() error {
	hour, minute, err := s.notificationClock()
	if err != nil {
		return err
	}

	if s.sweepID != 0 {
		s.cron.Remove(s.sweepID)
	}
	spec := fmt.Sprintf("%d %d * * *", minute, hour)
	id, err := s.cron.AddFunc(spec, s.sweep)
	if err != nil {
		return fmt.Errorf("failed to register daily sweep: %w", err)
	}
	s.sweepID = id
	return nil
}

func (s *Scheduler) sweep() {
	tasks, err := s.listTasks()
	if err != nil {
		s.logger.Error("daily sweep failed to list tasks", "err", err)
		return
	}
	s.RescheduleAll(tasks)
}

// Stop cancels all jobs and stops the daily sweep
func (s *Scheduler) Stop() {
	s.CancelAll()
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
}

func (s *Scheduler) enqueue(taskID, name string, kind Kind, taskName string, fireAt time.Time) {
	wait := fireAt.Sub(s.now())
	if wait <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	j := &job{kind: kind, fireAt: fireAt}
	j.timer = time.AfterFunc(wait, func() {
		s.fire(taskID, name, kind, taskName)
	})

	if s.jobs[taskID] == nil {
		s.jobs[taskID] = make(map[string]*job)
	}
	s.jobs[taskID][name] = j
}

// fire re-verifies the task before delivering: a job that outlived its task
// or a completion is a silent no-op.
func (s *Scheduler) fire(taskID, name string, kind Kind, taskName string) {
	s.mu.Lock()
	if byName := s.jobs[taskID]; byName != nil {
		delete(byName, name)
		if len(byName) == 0 {
			delete(s.jobs, taskID)
		}
	}
	s.mu.Unlock()

	task, err := s.store.GetTask(taskID)
	if err != nil {
		s.logger.Error("failed to verify task before notifying", "task", taskID, "err", err)
		return
	}
	if task == nil {
		// Task deleted since scheduling
		return
	}

	today := model.Today(s.loc)
	due := !task.NextDueDate.After(today)
	if kind == KindDue && !due {
		// Completed in the meantime, nothing to announce
		return
	}

	overdue := task.NextDueDate.Before(today)
	switch kind {
	case KindDue:
		err = s.deliver.SendTaskDue(taskID, task.Name, overdue)
	case KindReminder:
		err = s.deliver.SendTaskReminder(taskID, task.Name, overdue)
	}
	if err != nil {
		s.logger.Error("failed to deliver notification", "task", taskID, "kind", kind, "err", err)
	}
}

func (s *Scheduler) notificationClock() (hour, minute int, err error) {
	value, err := s.store.NotificationTime()
	if err != nil {
		return 0, 0, err
	}
	return parseClock(value)
}

// parseClock validates an HH:MM wall-clock string
func parseClock(value string) (hour, minute int, err error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", value)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", value)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", value)
	}
	return hour, minute, nil
}
