package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/neverforget/internal/service"
)

// Local message type for the stats view
type statsLoadedMsg struct {
	stats *service.Stats
	err   error
}

// StatsView shows aggregate completion statistics
type StatsView struct {
	svc    *service.Service
	width  int
	height int

	stats    *service.Stats
	errorMsg string
}

// NewStatsView creates a new stats view
func NewStatsView(svc *service.Service) StatsView {
	return StatsView{svc: svc}
}

// Init loads the statistics
func (v StatsView) Init() tea.Cmd {
	return v.loadStats()
}

// SetSize sets the view dimensions
func (v StatsView) SetSize(width, height int) StatsView {
	v.width = width
	v.height = height
	return v
}

// IsInputMode is always false for the read-only stats view
func (v StatsView) IsInputMode() bool {
	return false
}

func (v StatsView) loadStats() tea.Cmd {
	return func() tea.Msg {
		stats, err := v.svc.Stats()
		return statsLoadedMsg{stats: stats, err: err}
	}
}

// Update handles messages
func (v StatsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statsLoadedMsg:
		if msg.err != nil {
			v.errorMsg = msg.err.Error()
			return v, nil
		}
		v.stats = msg.stats
		return v, nil

	case tea.KeyMsg:
		if msg.String() == "r" {
			return v, v.loadStats()
		}
	}

	return v, nil
}

// View renders the stats view
func (v StatsView) View() string {
	if v.width == 0 || v.height == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Statistics"))
	b.WriteString("\n\n")

	if v.errorMsg != "" {
		b.WriteString(errorStyle.Render(v.errorMsg))
		return b.String()
	}
	if v.stats == nil {
		b.WriteString(subtleStyle.Render("Loading..."))
		return b.String()
	}

	s := v.stats

	cardStyle := panelStyle.Width(18)
	card := func(value, label string) string {
		return cardStyle.Render(
			titleStyle.Render(value) + "\n" + subtleStyle.Render(label))
	}

	row1 := lipgloss.JoinHorizontal(lipgloss.Top,
		card(fmt.Sprintf("%d", s.TotalTasks), "Tasks"),
		card(fmt.Sprintf("%d", s.OverdueTasks), "Overdue"),
		card(fmt.Sprintf("%d", s.TodayTasks), "Due today"),
		card(fmt.Sprintf("%d", s.UpcomingTasks), "Upcoming"),
	)
	b.WriteString(row1)
	b.WriteString("\n")

	row2 := lipgloss.JoinHorizontal(lipgloss.Top,
		card(fmt.Sprintf("%d", s.TotalCompletions), "Completions"),
		card(fmt.Sprintf("%d", s.CompletionsThisMonth), "This month"),
	)
	b.WriteString(row2)
	b.WriteString("\n\n")

	if s.MostCompletedTask != nil {
		b.WriteString(labelStyle.Render("Most done"))
		b.WriteString(s.MostCompletedTask.Name)
		b.WriteString("\n")
	}
	if s.LeastCompletedTask != nil && (s.MostCompletedTask == nil || s.LeastCompletedTask.ID != s.MostCompletedTask.ID) {
		b.WriteString(labelStyle.Render("Least done"))
		b.WriteString(s.LeastCompletedTask.Name)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(subtleStyle.Render("r: refresh"))

	return b.String()
}
