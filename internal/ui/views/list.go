package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dori/neverforget/internal/model"
	"github.com/dori/neverforget/internal/schedule"
	"github.com/dori/neverforget/internal/service"
)

// Local message types for the list view
type tasksLoadedMsg struct {
	views []model.TaskView
	err   error
}

type taskActedMsg struct {
	status string
	err    error
}

type taskStatsMsg struct {
	id    string
	stats *service.TaskStats
}

type listMode int

const (
	listModeNormal listMode = iota
	listModeConfirmDelete
	listModeSnooze
)

// snoozeChoices is the fixed menu order; the durations live in the
// schedule package
var snoozeChoices = []string{"1h", "3h", "1d", "3d"}

// ListView shows every task sorted by urgency, with inline completion,
// deletion, snoozing and history expansion
type ListView struct {
	svc    *service.Service
	sched  *schedule.Scheduler
	width  int
	height int

	views  []model.TaskView
	cursor int
	mode   listMode

	// Snooze menu cursor
	snoozeCursor int

	// Task IDs with their history expanded, and their per-task statistics
	expanded map[string]bool
	stats    map[string]*service.TaskStats

	statusMsg string
	errorMsg  string
}

// NewListView creates a new task list view. sched may be nil when reminders
// run in a separate process.
func NewListView(svc *service.Service, sched *schedule.Scheduler) ListView {
	return ListView{
		svc:      svc,
		sched:    sched,
		expanded: make(map[string]bool),
		stats:    make(map[string]*service.TaskStats),
	}
}

// Init loads the task list
func (v ListView) Init() tea.Cmd {
	return v.loadTasks()
}

// SetSize sets the view dimensions
func (v ListView) SetSize(width, height int) ListView {
	v.width = width
	v.height = height
	return v
}

// IsInputMode reports whether a confirm or menu prompt is open
func (v ListView) IsInputMode() bool {
	return v.mode != listModeNormal
}

func (v ListView) loadTasks() tea.Cmd {
	return func() tea.Msg {
		views, err := v.svc.Views()
		return tasksLoadedMsg{views: views, err: err}
	}
}

func (v ListView) loadStats(id string) tea.Cmd {
	return func() tea.Msg {
		stats, err := v.svc.TaskStats(id)
		if err != nil {
			// Statistics are supplemental; the history still renders
			return taskStatsMsg{id: id}
		}
		return taskStatsMsg{id: id, stats: stats}
	}
}

func (v ListView) completeSelected() tea.Cmd {
	task := v.selected()
	if task == nil {
		return nil
	}
	id, name := task.ID, task.Name
	return func() tea.Msg {
		if _, err := v.svc.CompleteToday(id); err != nil {
			return taskActedMsg{err: err}
		}
		return taskActedMsg{status: fmt.Sprintf("Completed %q", name)}
	}
}

func (v ListView) deleteSelected() tea.Cmd {
	task := v.selected()
	if task == nil {
		return nil
	}
	id, name := task.ID, task.Name
	return func() tea.Msg {
		if err := v.svc.DeleteTask(id); err != nil {
			return taskActedMsg{err: err}
		}
		return taskActedMsg{status: fmt.Sprintf("Deleted %q", name)}
	}
}

func (v ListView) snoozeSelected(choice string) tea.Cmd {
	task := v.selected()
	if task == nil {
		return nil
	}
	id, name := task.ID, task.Name
	return func() tea.Msg {
		if v.sched == nil {
			return taskActedMsg{err: fmt.Errorf("reminders are not running in this session")}
		}
		delay, err := schedule.ParseSnoozeDelay(choice)
		if err != nil {
			return taskActedMsg{err: err}
		}
		v.sched.Snooze(id, name, delay)
		return taskActedMsg{status: fmt.Sprintf("Snoozed %q for %s", name, choice)}
	}
}

func (v ListView) selected() *model.TaskView {
	if v.cursor < 0 || v.cursor >= len(v.views) {
		return nil
	}
	return &v.views[v.cursor]
}

// Update handles messages
func (v ListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tasksLoadedMsg:
		if msg.err != nil {
			v.errorMsg = msg.err.Error()
			return v, nil
		}
		v.views = msg.views
		if v.cursor >= len(v.views) {
			v.cursor = len(v.views) - 1
		}
		if v.cursor < 0 {
			v.cursor = 0
		}
		return v, nil

	case taskActedMsg:
		if msg.err != nil {
			v.errorMsg = msg.err.Error()
			return v, nil
		}
		v.statusMsg = msg.status
		// Completions change the per-task statistics
		v.stats = make(map[string]*service.TaskStats)
		return v, v.loadTasks()

	case taskStatsMsg:
		if msg.stats != nil {
			v.stats[msg.id] = msg.stats
		}
		return v, nil

	case tea.KeyMsg:
		v.statusMsg = ""
		v.errorMsg = ""

		switch v.mode {
		case listModeConfirmDelete:
			return v.updateConfirmDelete(msg)
		case listModeSnooze:
			return v.updateSnoozeMenu(msg)
		}
		return v.updateNormal(msg)
	}

	return v, nil
}

func (v ListView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(v.views)-1 {
			v.cursor++
		}
	case "g":
		v.cursor = 0
	case "G":
		if len(v.views) > 0 {
			v.cursor = len(v.views) - 1
		}

	case "a":
		return v, func() tea.Msg { return EditTaskRequest{} }

	case "enter":
		if task := v.selected(); task != nil {
			t := *task
			return v, func() tea.Msg { return EditTaskRequest{Task: &t} }
		}

	case "tab", "c":
		return v, v.completeSelected()

	case "d":
		if v.selected() != nil {
			v.mode = listModeConfirmDelete
		}

	case "z":
		if v.selected() != nil {
			v.mode = listModeSnooze
			v.snoozeCursor = 0
		}

	case " ":
		if task := v.selected(); task != nil {
			v.expanded[task.ID] = !v.expanded[task.ID]
			if v.expanded[task.ID] {
				return v, v.loadStats(task.ID)
			}
		}

	case "r":
		return v, v.loadTasks()
	}

	return v, nil
}

func (v ListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		v.mode = listModeNormal
		return v, v.deleteSelected()
	case "n", "escape", "esc":
		v.mode = listModeNormal
	}
	return v, nil
}

func (v ListView) updateSnoozeMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k", "left", "h":
		if v.snoozeCursor > 0 {
			v.snoozeCursor--
		}
	case "down", "j", "right", "l":
		if v.snoozeCursor < len(snoozeChoices)-1 {
			v.snoozeCursor++
		}
	case "1", "2", "3", "4":
		v.mode = listModeNormal
		return v, v.snoozeSelected(snoozeChoices[int(msg.String()[0]-'1')])
	case "enter":
		v.mode = listModeNormal
		return v, v.snoozeSelected(snoozeChoices[v.snoozeCursor])
	case "escape", "esc":
		v.mode = listModeNormal
	}
	return v, nil
}

// View renders the task list
func (v ListView) View() string {
	if v.width == 0 || v.height == 0 {
		return "Loading..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Tasks"))
	b.WriteString(subtleStyle.Render(fmt.Sprintf("  %d total", len(v.views))))
	b.WriteString("\n\n")

	if len(v.views) == 0 {
		b.WriteString(subtleStyle.Render("No tasks yet. Press 'a' to add one."))
		return b.String()
	}

	for i, task := range v.views {
		b.WriteString(v.renderRow(i, task))
		b.WriteString("\n")

		if v.expanded[task.ID] {
			b.WriteString(v.renderHistory(task))
		}
	}

	switch v.mode {
	case listModeConfirmDelete:
		if task := v.selected(); task != nil {
			b.WriteString("\n")
			b.WriteString(errorStyle.Render(fmt.Sprintf("Delete %q and its history? (y/n)", task.Name)))
		}
	case listModeSnooze:
		b.WriteString("\n")
		b.WriteString(v.renderSnoozeMenu())
	}

	if v.errorMsg != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(v.errorMsg))
	} else if v.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(statusStyle.Render(v.statusMsg))
	}

	return b.String()
}

func (v ListView) renderRow(i int, task model.TaskView) string {
	marker := "  "
	if v.expanded[task.ID] {
		marker = "▾ "
	}

	line := fmt.Sprintf("%s%-14s %-30s %-12s %s  %s",
		marker,
		statusBadge(task),
		truncate(task.Name, 30),
		daysLabel(task),
		subtleStyle.Render(model.RecurrenceLabel(task.RecurrenceDays)),
		subtleStyle.Render(task.Category),
	)

	if i == v.cursor {
		return selectedStyle.Render(line)
	}
	return line
}

func (v ListView) renderHistory(task model.TaskView) string {
	var b strings.Builder
	if len(task.History) == 0 {
		b.WriteString(subtleStyle.Render("    never completed"))
		b.WriteString("\n")
		return b.String()
	}

	shown := task.History
	if len(shown) > 5 {
		shown = shown[:5]
	}
	for _, d := range shown {
		b.WriteString(subtleStyle.Render("    ✓ " + d.String()))
		b.WriteString("\n")
	}
	if rest := len(task.History) - len(shown); rest > 0 {
		b.WriteString(subtleStyle.Render(fmt.Sprintf("    … %d more", rest)))
		b.WriteString("\n")
	}
	if stats := v.stats[task.ID]; stats != nil && stats.AverageDaysBetween > 0 {
		pace := "behind schedule"
		if stats.OnTrack {
			pace = "on track"
		}
		b.WriteString(subtleStyle.Render(fmt.Sprintf(
			"    done %d times · about every %d days · %s",
			stats.TotalCompletions, stats.AverageDaysBetween, pace)))
		b.WriteString("\n")
	}
	return b.String()
}

func (v ListView) renderSnoozeMenu() string {
	items := make([]string, 0, len(snoozeChoices))
	for i, c := range snoozeChoices {
		label := fmt.Sprintf(" %d) %s ", i+1, c)
		if i == v.snoozeCursor {
			label = selectedStyle.Render(label)
		}
		items = append(items, label)
	}
	menu := "Snooze reminder: " + strings.Join(items, " ")
	return panelStyle.Render(menu)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
