package service

import (
	"sort"

	"github.com/dori/neverforget/internal/model"
)

// Stats summarizes the whole task list
type Stats struct {
	TotalTasks           int
	OverdueTasks         int
	TodayTasks           int
	UpcomingTasks        int
	TotalCompletions     int
	CompletionsThisMonth int
	MostCompletedTask    *model.Task
	LeastCompletedTask   *model.Task
}

// TaskStats summarizes a single task's track record
type TaskStats struct {
	TaskID             string
	TaskName           string
	TotalCompletions   int
	LastCompletion     *model.Date
	AverageDaysBetween int // 0 when fewer than two completions
	DaysUntilDue       int // signed
	OnTrack            bool
	RecurrenceDays     int
}

// Stats computes global statistics across all tasks and history
func (s *Service) Stats() (*Stats, error) {
	tasks, err := s.db.GetTasks()
	if err != nil {
		return nil, err
	}
	history, err := s.db.GetAllHistory()
	if err != nil {
		return nil, err
	}

	today := s.Today()
	stats := &Stats{
		TotalTasks:       len(tasks),
		TotalCompletions: len(history),
	}

	for _, t := range tasks {
		switch model.StatusFor(today, t.NextDueDate) {
		case model.StatusOverdue:
			stats.OverdueTasks++
		case model.StatusDueToday:
			stats.TodayTasks++
		default:
			stats.UpcomingTasks++
		}
	}

	counts := make(map[string]int)
	for _, e := range history {
		counts[e.TaskID]++
		if e.CompletedDate.Year == today.Year && e.CompletedDate.Month == today.Month {
			stats.CompletionsThisMonth++
		}
	}

	byID := make(map[string]*model.Task, len(tasks))
	for i := range tasks {
		byID[tasks[i].ID] = &tasks[i]
	}

	var mostID, leastID string
	for id, n := range counts {
		if byID[id] == nil {
			continue
		}
		if mostID == "" || n > counts[mostID] {
			mostID = id
		}
		if leastID == "" || n < counts[leastID] {
			leastID = id
		}
	}
	stats.MostCompletedTask = byID[mostID]
	stats.LeastCompletedTask = byID[leastID]

	return stats, nil
}

// TaskStats computes statistics for one task
func (s *Service) TaskStats(taskID string) (*TaskStats, error) {
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

	today := s.Today()
	daysUntil := today.DaysUntil(t.NextDueDate)

	stats := &TaskStats{
		TaskID:           t.ID,
		TaskName:         t.Name,
		TotalCompletions: len(history),
		DaysUntilDue:     daysUntil,
		OnTrack:          daysUntil >= 0,
		RecurrenceDays:   t.RecurrenceDays,
	}

	if len(history) > 0 {
		last := history[0]
		for _, d := range history[1:] {
			if d.After(last) {
				last = d
			}
		}
		stats.LastCompletion = &last
	}

	if len(history) >= 2 {
		asc := make([]model.Date, len(history))
		copy(asc, history)
		sort.Slice(asc, func(i, j int) bool { return asc[i].Before(asc[j]) })

		total := 0
		for i := 1; i < len(asc); i++ {
			total += asc[i-1].DaysUntil(asc[i])
		}
		stats.AverageDaysBetween = total / (len(asc) - 1)
	}

	return stats, nil
}
