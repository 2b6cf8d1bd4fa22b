package views

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dori/neverforget/internal/db"
	"github.com/dori/neverforget/internal/schedule"
)

// Local message types for the settings view
type settingsLoadedMsg struct {
	notificationTime  string
	reminderDelayDays int
	err               error
}

type settingSavedMsg struct {
	status string
	err    error
}

// Settings rows
const (
	settingNotificationTime = iota
	settingReminderDelay
	settingRowCount
)

// SettingsView edits the two app settings: the daily notification time and
// the global reminder delay
type SettingsView struct {
	database *db.DB
	sched    *schedule.Scheduler
	width    int
	height   int

	notificationTime  string
	reminderDelayDays int

	cursor  int
	editing bool
	input   textinput.Model

	statusMsg string
	errorMsg  string
}

// NewSettingsView creates a new settings view. sched may be nil when
// reminders run in a separate process.
func NewSettingsView(database *db.DB, sched *schedule.Scheduler) SettingsView {
	ti := textinput.New()
	ti.CharLimit = 5

	return SettingsView{database: database, sched: sched, input: ti}
}

// Init loads the current settings
func (v SettingsView) Init() tea.Cmd {
	return v.loadSettings()
}

// SetSize sets the view dimensions
func (v SettingsView) SetSize(width, height int) SettingsView {
	v.width = width
	v.height = height
	return v
}

// IsInputMode reports whether a setting is being edited
func (v SettingsView) IsInputMode() bool {
	return v.editing
}

func (v SettingsView) loadSettings() tea.Cmd {
	return func() tea.Msg {
		nt, err := v.database.NotificationTime()
		if err != nil {
			return settingsLoadedMsg{err: err}
		}
		delay, err := v.database.ReminderDelayDays()
		if err != nil {
			return settingsLoadedMsg{err: err}
		}
		return settingsLoadedMsg{notificationTime: nt, reminderDelayDays: delay}
	}
}

func (v SettingsView) saveNotificationTime(raw string) tea.Cmd {
	return func() tea.Msg {
		value := strings.TrimSpace(raw)
		if err := validateClock(value); err != nil {
			return settingSavedMsg{err: err}
		}
		if err := v.database.SetSetting(db.NotificationTimeKey, value); err != nil {
			return settingSavedMsg{err: err}
		}
		if v.sched != nil {
			if err := v.sched.RefreshDailySweep(); err != nil {
				return settingSavedMsg{err: err}
			}
			return settingSavedMsg{status: fmt.Sprintf("Notifications at %s", value)}
		}
		return settingSavedMsg{status: fmt.Sprintf("Notifications at %s, the watch process picks it up on restart", value)}
	}
}

func (v SettingsView) saveReminderDelay(raw string) tea.Cmd {
	return func() tea.Msg {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || n <= 0 {
			return settingSavedMsg{err: fmt.Errorf("reminder delay must be a positive number of days")}
		}
		if err := v.database.SetSetting(db.ReminderDelayDaysKey, strconv.Itoa(n)); err != nil {
			return settingSavedMsg{err: err}
		}
		return settingSavedMsg{status: fmt.Sprintf("Reminders follow up %d days after the due date", n)}
	}
}

// validateClock checks an HH:MM wall-clock string
func validateClock(value string) error {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return fmt.Errorf("time must be HH:MM, like 09:00")
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return fmt.Errorf("hour must be between 00 and 23")
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return fmt.Errorf("minute must be between 00 and 59")
	}
	return nil
}

// Update handles messages
func (v SettingsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case settingsLoadedMsg:
		if msg.err != nil {
			v.errorMsg = msg.err.Error()
			return v, nil
		}
		v.notificationTime = msg.notificationTime
		v.reminderDelayDays = msg.reminderDelayDays
		return v, nil

	case settingSavedMsg:
		if msg.err != nil {
			v.errorMsg = msg.err.Error()
			return v, nil
		}
		v.statusMsg = msg.status
		return v, v.loadSettings()

	case tea.KeyMsg:
		v.statusMsg = ""
		v.errorMsg = ""

		if v.editing {
			return v.updateEditing(msg)
		}

		switch msg.String() {
		case "up", "k":
			if v.cursor > 0 {
				v.cursor--
			}
		case "down", "j":
			if v.cursor < settingRowCount-1 {
				v.cursor++
			}
		case "enter":
			v.editing = true
			switch v.cursor {
			case settingNotificationTime:
				v.input.SetValue(v.notificationTime)
			case settingReminderDelay:
				v.input.SetValue(strconv.Itoa(v.reminderDelayDays))
			}
			v.input.Focus()
			return v, textinput.Blink
		case "r":
			return v, v.loadSettings()
		}
	}

	return v, nil
}

func (v SettingsView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		v.editing = false
		v.input.Blur()
		switch v.cursor {
		case settingNotificationTime:
			return v, v.saveNotificationTime(v.input.Value())
		case settingReminderDelay:
			return v, v.saveReminderDelay(v.input.Value())
		}
		return v, nil
	case "escape", "esc":
		v.editing = false
		v.input.Blur()
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// View renders the settings view
func (v SettingsView) View() string {
	if v.width == 0 || v.height == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Settings"))
	b.WriteString("\n\n")

	rows := []struct {
		label string
		value string
	}{
		{"Notification time", v.notificationTime},
		{"Reminder delay", fmt.Sprintf("%d days", v.reminderDelayDays)},
	}

	for i, row := range rows {
		value := row.value
		if v.editing && i == v.cursor {
			value = v.input.View()
		}
		line := fmt.Sprintf("  %s%s", labelStyle.Render(row.label), value)
		if i == v.cursor && !v.editing {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(subtleStyle.Render("Notifications fire daily at the notification time."))
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render("The reminder delay is the follow-up sent after a missed due date."))
	b.WriteString("\n")

	if v.errorMsg != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(v.errorMsg))
	} else if v.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(statusStyle.Render(v.statusMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(subtleStyle.Render("enter: edit · j/k: navigate"))

	return b.String()
}
