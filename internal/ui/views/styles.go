package views

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/dori/neverforget/internal/model"
)

// Shared palette for all views
var (
	colorSubtle  = lipgloss.Color("243")
	colorPrimary = lipgloss.Color("81")
	colorSuccess = lipgloss.Color("114")
	colorWarning = lipgloss.Color("214")
	colorError   = lipgloss.Color("203")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	subtleStyle = lipgloss.NewStyle().
			Foreground(colorSubtle)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("237"))

	overdueStyle  = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	dueTodayStyle = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	okStyle       = lipgloss.NewStyle().Foreground(colorSuccess)

	errorStyle  = lipgloss.NewStyle().Foreground(colorError)
	statusStyle = lipgloss.NewStyle().Foreground(colorPrimary)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorSubtle).
			Width(14)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// statusBadge renders a task status with its color
func statusBadge(v model.TaskView) string {
	switch v.Status {
	case model.StatusOverdue:
		return overdueStyle.Render("● overdue")
	case model.StatusDueToday:
		return dueTodayStyle.Render("● due today")
	default:
		return okStyle.Render("● ok")
	}
}

// daysLabel renders the display-days figure for a view
func daysLabel(v model.TaskView) string {
	switch v.Status {
	case model.StatusOverdue:
		if v.DaysUntilDue == 1 {
			return "1 day late"
		}
		return strconv.Itoa(v.DaysUntilDue) + " days late"
	case model.StatusDueToday:
		return "today"
	default:
		if v.DaysUntilDue == 1 {
			return "in 1 day"
		}
		return "in " + strconv.Itoa(v.DaysUntilDue) + " days"
	}
}
