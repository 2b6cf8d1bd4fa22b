package model

import (
	"testing"
	"time"
)

func TestStatusFor(t *testing.T) {
	today := NewDate(2026, time.August, 28)

	cases := []struct {
		due  Date
		want Status
	}{
		{today.AddDays(-1), StatusOverdue},
		{today.AddDays(-300), StatusOverdue},
		{today, StatusDueToday},
		{today.AddDays(1), StatusOK},
		{today.AddDays(90), StatusOK},
	}

	for _, c := range cases {
		if got := StatusFor(today, c.due); got != c.want {
			t.Errorf("StatusFor(due=%s) = %s, want %s", c.due, got, c.want)
		}
	}
}

func TestStatusPriority(t *testing.T) {
	if !(StatusOverdue.Priority() < StatusDueToday.Priority() &&
		StatusDueToday.Priority() < StatusOK.Priority()) {
		t.Error("status priorities out of order")
	}
}

func TestNewTaskViewDisplayDays(t *testing.T) {
	today := NewDate(2026, time.August, 28)

	overdue := NewTaskView(Task{NextDueDate: today.AddDays(-4)}, nil, today)
	if overdue.Status != StatusOverdue || overdue.DaysUntilDue != 4 {
		t.Errorf("overdue view = %s/%d, want overdue/4", overdue.Status, overdue.DaysUntilDue)
	}

	due := NewTaskView(Task{NextDueDate: today}, nil, today)
	if due.Status != StatusDueToday || due.DaysUntilDue != 0 {
		t.Errorf("due-today view = %s/%d, want due_today/0", due.Status, due.DaysUntilDue)
	}

	ok := NewTaskView(Task{NextDueDate: today.AddDays(12)}, nil, today)
	if ok.Status != StatusOK || ok.DaysUntilDue != 12 {
		t.Errorf("ok view = %s/%d, want ok/12", ok.Status, ok.DaysUntilDue)
	}
}

func TestNewTaskViewHistoryMostRecentFirst(t *testing.T) {
	today := NewDate(2026, time.August, 28)
	history := []Date{
		NewDate(2026, time.March, 1),
		NewDate(2026, time.July, 15),
		NewDate(2026, time.January, 2),
	}

	v := NewTaskView(Task{NextDueDate: today}, history, today)
	want := []Date{
		NewDate(2026, time.July, 15),
		NewDate(2026, time.March, 1),
		NewDate(2026, time.January, 2),
	}
	for i := range want {
		if v.History[i] != want[i] {
			t.Fatalf("history[%d] = %s, want %s", i, v.History[i], want[i])
		}
	}
}

func TestSortViews(t *testing.T) {
	today := NewDate(2026, time.August, 28)

	mk := func(name string, due Date) TaskView {
		return NewTaskView(Task{Name: name, NextDueDate: due}, nil, today)
	}

	views := []TaskView{
		mk("soon", today.AddDays(3)),
		mk("today", today),
		mk("later", today.AddDays(30)),
		mk("very overdue", today.AddDays(-10)),
		mk("slightly overdue", today.AddDays(-1)),
	}

	SortViews(views, today)

	want := []string{"very overdue", "slightly overdue", "today", "soon", "later"}
	for i, name := range want {
		if views[i].Name != name {
			t.Fatalf("position %d = %q, want %q", i, views[i].Name, name)
		}
	}
}

func TestRecurrenceLabel(t *testing.T) {
	cases := map[int]string{
		1:   "every day",
		3:   "every 3 days",
		7:   "every week",
		14:  "every 2 weeks",
		21:  "every 3 weeks",
		30:  "every month",
		90:  "every 3 months",
		180: "every 6 months",
		365: "every year",
		730: "every 2 years",
	}
	for days, want := range cases {
		if got := RecurrenceLabel(days); got != want {
			t.Errorf("RecurrenceLabel(%d) = %q, want %q", days, got, want)
		}
	}
}

func TestCategoryOrDefault(t *testing.T) {
	if got := CategoryOrDefault("Voiture"); got.Name != "Voiture" || got.Icon != "🚗" {
		t.Errorf("CategoryOrDefault(Voiture) = %+v", got)
	}
	if got := CategoryOrDefault("Maison"); got.Name != "Maison" || got.IsDeletable {
		t.Errorf("CategoryOrDefault(Maison) = %+v", got)
	}
	// Unknown names land in the catch-all
	if got := CategoryOrDefault("Jardin"); got.Name != "Autre" {
		t.Errorf("CategoryOrDefault(Jardin) = %+v, want Autre", got)
	}
	if got := CategoryOrDefault(""); got.Name != "Autre" {
		t.Errorf("CategoryOrDefault(\"\") = %+v, want Autre", got)
	}
}

func TestSuggestRecurrence(t *testing.T) {
	cases := map[string]int{
		"Maison":  90,
		"Voiture": 30,
		"Scooter": 30,
		"Autre":   60,
		"Garden":  60,
	}
	for category, want := range cases {
		if got := SuggestRecurrence(category); got != want {
			t.Errorf("SuggestRecurrence(%q) = %d, want %d", category, got, want)
		}
	}
}
