package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/neverforget/internal/app"
	"github.com/dori/neverforget/internal/model"
	"github.com/dori/neverforget/internal/ui/views"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	headerInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Padding(0, 1)

	footerKeyStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	footerDescStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	footerSepStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))

	footerErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	footerStatusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("81"))
)

// RootModel is the main application model that manages views
type RootModel struct {
	app    *app.App
	keys   KeyMap
	help   help.Model
	width  int
	height int

	currentView    View
	listView       views.ListView
	formView       views.FormView
	categoriesView views.CategoriesView
	settingsView   views.SettingsView
	backupView     views.BackupView
	statsView      views.StatsView
	helpVisible    bool

	// Store change notifications; drained by waitForStoreChange
	storeChanges <-chan struct{}

	statusMsg string
	errorMsg  string
}

// NewRootModel creates a new root model
func NewRootModel(application *app.App) RootModel {
	h := help.New()
	h.ShowAll = false

	return RootModel{
		app:            application,
		keys:           DefaultKeyMap(),
		help:           h,
		currentView:    ViewList,
		listView:       views.NewListView(application.Tasks, application.Scheduler),
		formView:       views.NewFormView(application.Tasks, application.DB),
		categoriesView: views.NewCategoriesView(application.DB),
		settingsView:   views.NewSettingsView(application.DB, application.Scheduler),
		backupView:     views.NewBackupView(application.Backup),
		statsView:      views.NewStatsView(application.Tasks),
		storeChanges:   application.DB.Watch(),
	}
}

// Init initializes the model
func (m RootModel) Init() tea.Cmd {
	return tea.Batch(
		m.listView.Init(),
		m.waitForStoreChange(),
		m.tick(),
	)
}

// waitForStoreChange blocks on the store's watch channel and turns each
// signal into a message
func (m RootModel) waitForStoreChange() tea.Cmd {
	ch := m.storeChanges
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return StoreChangedMsg{}
	}
}

// tick fires once a minute so statuses recompute after midnight without any
// user interaction
func (m RootModel) tick() tea.Cmd {
	return tea.Tick(time.Minute, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}

// Update handles messages
func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

		// Reserve space for the header and footer
		contentHeight := m.height - 4
		m.listView = m.listView.SetSize(m.width, contentHeight)
		m.formView = m.formView.SetSize(m.width, contentHeight)
		m.categoriesView = m.categoriesView.SetSize(m.width, contentHeight)
		m.settingsView = m.settingsView.SetSize(m.width, contentHeight)
		m.backupView = m.backupView.SetSize(m.width, contentHeight)
		m.statsView = m.statsView.SetSize(m.width, contentHeight)

	case StoreChangedMsg:
		// Reload the active view and keep listening
		cmds = append(cmds, m.initCurrentView(), m.waitForStoreChange())
		return m, tea.Batch(cmds...)

	case TickMsg:
		cmds = append(cmds, m.tick())
		if m.currentView == ViewList {
			cmds = append(cmds, m.listView.Init())
		}
		return m, tea.Batch(cmds...)

	case views.EditTaskRequest:
		m.formView = m.formView.SetTask(msg.Task)
		m.currentView = ViewForm
		return m, m.formView.Init()

	case views.FormClosed:
		m.currentView = ViewList
		if msg.Saved {
			m.statusMsg = fmt.Sprintf("Saved %q", msg.TaskName)
		}
		return m, m.listView.Init()

	case ErrorMsg:
		m.errorMsg = msg.Err.Error()
		return m, nil

	case StatusMsg:
		m.statusMsg = msg.Message
		return m, nil

	case tea.KeyMsg:
		m.statusMsg = ""
		m.errorMsg = ""

		isInputMode := m.currentViewInputMode()

		// ctrl+c always quits; 'q' only outside input mode
		if key.Matches(msg, m.keys.Quit) {
			if msg.String() == "ctrl+c" || !isInputMode {
				return m, tea.Quit
			}
		}

		if isInputMode {
			break // Fall through to view delegation
		}

		switch {
		case key.Matches(msg, m.keys.Help):
			m.helpVisible = !m.helpVisible
			m.help.ShowAll = m.helpVisible
			return m, nil

		case key.Matches(msg, m.keys.Back):
			if m.helpVisible {
				m.helpVisible = false
				m.help.ShowAll = false
				return m, nil
			}
			if m.currentView == ViewForm {
				m.currentView = ViewList
				return m, m.listView.Init()
			}

		case key.Matches(msg, m.keys.ListView):
			m.currentView = ViewList
			return m, m.listView.Init()
		case key.Matches(msg, m.keys.CategoriesView):
			m.currentView = ViewCategories
			return m, m.categoriesView.Init()
		case key.Matches(msg, m.keys.SettingsView):
			m.currentView = ViewSettings
			return m, m.settingsView.Init()
		case key.Matches(msg, m.keys.BackupView):
			m.currentView = ViewBackup
			return m, m.backupView.Init()
		case key.Matches(msg, m.keys.StatsView):
			m.currentView = ViewStats
			return m, m.statsView.Init()
		}
	}

	// Delegate to the current view
	switch m.currentView {
	case ViewList:
		newView, cmd := m.listView.Update(msg)
		m.listView = newView.(views.ListView)
		cmds = append(cmds, cmd)
	case ViewForm:
		newView, cmd := m.formView.Update(msg)
		m.formView = newView.(views.FormView)
		cmds = append(cmds, cmd)
	case ViewCategories:
		newView, cmd := m.categoriesView.Update(msg)
		m.categoriesView = newView.(views.CategoriesView)
		cmds = append(cmds, cmd)
	case ViewSettings:
		newView, cmd := m.settingsView.Update(msg)
		m.settingsView = newView.(views.SettingsView)
		cmds = append(cmds, cmd)
	case ViewBackup:
		newView, cmd := m.backupView.Update(msg)
		m.backupView = newView.(views.BackupView)
		cmds = append(cmds, cmd)
	case ViewStats:
		newView, cmd := m.statsView.Update(msg)
		m.statsView = newView.(views.StatsView)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m RootModel) currentViewInputMode() bool {
	switch m.currentView {
	case ViewList:
		return m.listView.IsInputMode()
	case ViewForm:
		return m.formView.IsInputMode()
	case ViewCategories:
		return m.categoriesView.IsInputMode()
	case ViewSettings:
		return m.settingsView.IsInputMode()
	case ViewBackup:
		return m.backupView.IsInputMode()
	case ViewStats:
		return m.statsView.IsInputMode()
	}
	return false
}

func (m RootModel) initCurrentView() tea.Cmd {
	switch m.currentView {
	case ViewList:
		return m.listView.Init()
	case ViewForm:
		return nil // never reload a half-edited form underneath the user
	case ViewCategories:
		return m.categoriesView.Init()
	case ViewSettings:
		return m.settingsView.Init()
	case ViewBackup:
		return m.backupView.Init()
	case ViewStats:
		return m.statsView.Init()
	}
	return nil
}

// View renders the UI
func (m RootModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var sections []string
	sections = append(sections, m.renderHeader())

	contentHeight := m.height - 4
	if m.errorMsg != "" || m.statusMsg != "" {
		contentHeight--
	}

	var content string
	if m.helpVisible {
		content = m.renderHelp()
	} else {
		switch m.currentView {
		case ViewList:
			content = m.listView.View()
		case ViewForm:
			content = m.formView.View()
		case ViewCategories:
			content = m.categoriesView.View()
		case ViewSettings:
			content = m.settingsView.View()
		case ViewBackup:
			content = m.backupView.View()
		case ViewStats:
			content = m.statsView.View()
		}
	}

	contentLines := strings.Count(content, "\n") + 1
	if contentLines < contentHeight {
		content += strings.Repeat("\n", contentHeight-contentLines)
	}
	sections = append(sections, content)
	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

// renderHeader renders the header bar
func (m RootModel) renderHeader() string {
	title := headerStyle.Render("neverforget")
	viewIndicator := headerInfoStyle.Render(fmt.Sprintf("[%s]", m.currentView.String()))
	today := headerInfoStyle.Render(model.Today(time.Local).String())

	leftSide := lipgloss.JoinHorizontal(lipgloss.Center, title, viewIndicator)
	gap := m.width - lipgloss.Width(leftSide) - lipgloss.Width(today)
	if gap < 0 {
		gap = 0
	}

	return leftSide + strings.Repeat(" ", gap) + today
}

// renderFooter renders the status line and key hints
func (m RootModel) renderFooter() string {
	hint := func(k, desc string) string {
		return footerKeyStyle.Render(k) + footerDescStyle.Render(" "+desc)
	}
	sep := footerSepStyle.Render(" │ ")

	var statusLine string
	if m.errorMsg != "" {
		statusLine = footerErrorStyle.Render(m.errorMsg)
	} else if m.statusMsg != "" {
		statusLine = footerStatusStyle.Render(m.statusMsg)
	}

	var line1, line2 string
	switch m.currentView {
	case ViewList:
		if m.listView.IsInputMode() {
			line1 = hint("enter", "confirm") + sep + hint("esc", "cancel")
		} else {
			line1 = hint("a", "add") + sep +
				hint("enter", "edit") + sep +
				hint("tab", "done") + sep +
				hint("z", "snooze") + sep +
				hint("d", "del") + sep +
				hint("space", "history")
			line2 = hint("1-5", "views") + sep + hint("?", "help") + sep + hint("q", "quit")
		}
	case ViewForm:
		line1 = hint("enter", "next field") + sep +
			hint("ctrl+s", "save") + sep +
			hint("esc", "cancel")
	case ViewCategories:
		line1 = hint("a", "add") + sep + hint("e", "icon") + sep + hint("d", "delete") + sep + hint("j/k", "navigate")
		line2 = hint("1-5", "views") + sep + hint("?", "help")
	case ViewSettings:
		line1 = hint("enter", "edit") + sep + hint("j/k", "navigate")
		line2 = hint("1-5", "views") + sep + hint("?", "help")
	case ViewBackup:
		line1 = hint("e", "export") + sep + hint("i", "import") + sep + hint("I", "replace all")
		line2 = hint("1-5", "views") + sep + hint("?", "help")
	case ViewStats:
		line1 = hint("r", "refresh")
		line2 = hint("1-5", "views") + sep + hint("?", "help")
	}

	var lines []string
	if statusLine != "" {
		lines = append(lines, statusLine)
	}
	if line1 != "" {
		lines = append(lines, line1)
	}
	if line2 != "" {
		lines = append(lines, line2)
	}
	return strings.Join(lines, "\n")
}

// renderHelp renders the help overlay
func (m RootModel) renderHelp() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81")).MarginBottom(1)
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("114")).MarginTop(1)
	keyStyle := lipgloss.NewStyle().Bold(true).Width(12)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("243"))

	section := func(b *strings.Builder, title string, rows [][]string) {
		b.WriteString(sectionStyle.Render(title))
		b.WriteString("\n")
		for _, kv := range rows {
			b.WriteString(keyStyle.Render(kv[0]))
			b.WriteString(descStyle.Render(kv[1]))
			b.WriteString("\n")
		}
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("NeverForget Help"))
	b.WriteString("\n\n")

	section(&b, "Navigation", [][]string{
		{"↑/k ↓/j", "Move up/down"},
		{"g / G", "Go to top/bottom"},
	})
	section(&b, "Tasks", [][]string{
		{"a", "Add task"},
		{"enter", "Edit task"},
		{"tab / c", "Mark done today"},
		{"z", "Snooze reminder"},
		{"d", "Delete task"},
		{"space", "Show completion history"},
	})
	section(&b, "Views", [][]string{
		{"1", "Task list"},
		{"2", "Categories"},
		{"3", "Settings"},
		{"4", "Backup"},
		{"5", "Statistics"},
	})
	section(&b, "System", [][]string{
		{"r", "Refresh"},
		{"?", "Toggle this help"},
		{"q / ctrl+c", "Quit"},
	})

	b.WriteString("\n")
	b.WriteString(descStyle.Render("Press ? or esc to close"))

	return b.String()
}
