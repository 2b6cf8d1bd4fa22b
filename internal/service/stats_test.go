package service

import (
	"testing"
)

func TestStats(t *testing.T) {
	svc, _ := newTestService(t)
	today := svc.Today()

	often, err := svc.CreateTask(TaskForm{Name: "often", Category: "Maison", RecurrenceDays: 7, NextDueDate: today.AddDays(-2)})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	rare, err := svc.CreateTask(TaskForm{Name: "rare", Category: "Maison", RecurrenceDays: 30, NextDueDate: today})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if _, err := svc.CreateTask(TaskForm{Name: "fresh", Category: "Maison", RecurrenceDays: 30, NextDueDate: today.AddDays(10)}); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	for _, daysAgo := range []int{30, 20, 10} {
		if _, err := svc.Complete(often.ID, today.AddDays(-daysAgo)); err != nil {
			t.Fatalf("Complete failed: %v", err)
		}
	}
	if _, err := svc.Complete(rare.ID, today.AddDays(-15)); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	// Completing moved due dates forward, put them back for the status counts
	due := today.AddDays(-2)
	if _, err := svc.UpdateTask(often.ID, TaskForm{Name: "often", Category: "Maison", RecurrenceDays: 7, NextDueDate: due}); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	if _, err := svc.UpdateTask(rare.ID, TaskForm{Name: "rare", Category: "Maison", RecurrenceDays: 30, NextDueDate: today}); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}

	stats, err := svc.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}

	if stats.TotalTasks != 3 {
		t.Errorf("TotalTasks = %d, want 3", stats.TotalTasks)
	}
	if stats.OverdueTasks != 1 || stats.TodayTasks != 1 || stats.UpcomingTasks != 1 {
		t.Errorf("status counts = %d/%d/%d, want 1/1/1",
			stats.OverdueTasks, stats.TodayTasks, stats.UpcomingTasks)
	}
	if stats.TotalCompletions != 4 {
		t.Errorf("TotalCompletions = %d, want 4", stats.TotalCompletions)
	}
	if stats.MostCompletedTask == nil || stats.MostCompletedTask.ID != often.ID {
		t.Errorf("MostCompletedTask = %+v, want %s", stats.MostCompletedTask, often.ID)
	}
	if stats.LeastCompletedTask == nil || stats.LeastCompletedTask.ID != rare.ID {
		t.Errorf("LeastCompletedTask = %+v, want %s", stats.LeastCompletedTask, rare.ID)
	}
}

func TestTaskStats(t *testing.T) {
	svc, _ := newTestService(t)
	today := svc.Today()

	task, err := svc.CreateTask(TaskForm{Name: "Water plants", Category: "Maison", RecurrenceDays: 10, NextDueDate: today.AddDays(5)})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	for _, daysAgo := range []int{40, 30, 10} {
		if _, err := svc.Complete(task.ID, today.AddDays(-daysAgo)); err != nil {
			t.Fatalf("Complete failed: %v", err)
		}
	}
	// Restore the due date the completions advanced
	if _, err := svc.UpdateTask(task.ID, TaskForm{Name: "Water plants", Category: "Maison", RecurrenceDays: 10, NextDueDate: today.AddDays(5)}); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}

	stats, err := svc.TaskStats(task.ID)
	if err != nil {
		t.Fatalf("TaskStats failed: %v", err)
	}

	if stats.TotalCompletions != 3 {
		t.Errorf("TotalCompletions = %d, want 3", stats.TotalCompletions)
	}
	if stats.LastCompletion == nil || *stats.LastCompletion != today.AddDays(-10) {
		t.Errorf("LastCompletion = %v, want %s", stats.LastCompletion, today.AddDays(-10))
	}
	// Gaps of 10 and 20 days average to 15
	if stats.AverageDaysBetween != 15 {
		t.Errorf("AverageDaysBetween = %d, want 15", stats.AverageDaysBetween)
	}
	if stats.DaysUntilDue != 5 || !stats.OnTrack {
		t.Errorf("DaysUntilDue/OnTrack = %d/%v, want 5/true", stats.DaysUntilDue, stats.OnTrack)
	}
}

func TestTaskStatsMissingTask(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.TaskStats("nope"); err != ErrNotFound {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
