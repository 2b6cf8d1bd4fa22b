package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dori/neverforget/internal/backup"
)

// Local message types for the backup view
type exportDoneMsg struct {
	path string
	err  error
}

type backupReadMsg struct {
	doc       *backup.Document
	conflicts []backup.Conflict
	replace   bool
	err       error
}

type importDoneMsg struct {
	result *backup.ImportResult
	err    error
}

type backupMode int

const (
	backupModeNormal backupMode = iota
	backupModePath
	backupModeConfirmReplace
	backupModeResolve
)

// BackupView exports the task store to JSON and imports backup files, with
// per-task conflict resolution or a full destructive replace
type BackupView struct {
	manager *backup.Manager
	width   int
	height  int

	mode    backupMode
	replace bool
	input   textinput.Model

	// Pending import state
	doc         *backup.Document
	conflicts   []backup.Conflict
	resolutions map[string]backup.Resolution
	cursor      int

	statusMsg string
	errorMsg  string
}

// NewBackupView creates a new backup view
func NewBackupView(manager *backup.Manager) BackupView {
	ti := textinput.New()
	ti.Placeholder = "path/to/neverforget_backup.json"
	ti.CharLimit = 256

	return BackupView{manager: manager, input: ti}
}

// Init is a no-op; the view acts only on demand
func (v BackupView) Init() tea.Cmd {
	return nil
}

// SetSize sets the view dimensions
func (v BackupView) SetSize(width, height int) BackupView {
	v.width = width
	v.height = height
	v.input.Width = width - 4
	return v
}

// IsInputMode reports whether a prompt is open
func (v BackupView) IsInputMode() bool {
	return v.mode != backupModeNormal
}

func (v BackupView) export() tea.Cmd {
	return func() tea.Msg {
		path, err := v.manager.ExportToFile("")
		return exportDoneMsg{path: path, err: err}
	}
}

func (v BackupView) readBackup(path string, replace bool) tea.Cmd {
	return func() tea.Msg {
		doc, err := backup.ReadFile(strings.TrimSpace(path))
		if err != nil {
			return backupReadMsg{err: err}
		}
		if replace {
			return backupReadMsg{doc: doc, replace: true}
		}
		conflicts, err := v.manager.DetectConflicts(doc)
		if err != nil {
			return backupReadMsg{err: err}
		}
		return backupReadMsg{doc: doc, conflicts: conflicts}
	}
}

func (v BackupView) runImport() tea.Cmd {
	doc := v.doc
	resolutions := v.resolutions
	return func() tea.Msg {
		result, err := v.manager.Import(doc, resolutions)
		return importDoneMsg{result: result, err: err}
	}
}

func (v BackupView) runReplace() tea.Cmd {
	doc := v.doc
	return func() tea.Msg {
		result, err := v.manager.ImportReplace(doc)
		return importDoneMsg{result: result, err: err}
	}
}

// Update handles messages
func (v BackupView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case exportDoneMsg:
		if msg.err != nil {
			v.errorMsg = msg.err.Error()
			return v, nil
		}
		v.statusMsg = "Exported to " + msg.path
		return v, nil

	case backupReadMsg:
		if msg.err != nil {
			v.errorMsg = msg.err.Error()
			v.mode = backupModeNormal
			return v, nil
		}
		v.doc = msg.doc
		if msg.replace {
			v.mode = backupModeConfirmReplace
			return v, nil
		}
		if len(msg.conflicts) == 0 {
			v.mode = backupModeNormal
			v.resolutions = nil
			return v, v.runImport()
		}
		v.conflicts = msg.conflicts
		v.resolutions = make(map[string]backup.Resolution, len(msg.conflicts))
		for _, c := range msg.conflicts {
			v.resolutions[c.TaskName] = backup.ResolutionSkip
		}
		v.cursor = 0
		v.mode = backupModeResolve
		return v, nil

	case importDoneMsg:
		v.mode = backupModeNormal
		v.doc = nil
		v.conflicts = nil
		if msg.err != nil {
			v.errorMsg = msg.err.Error()
			return v, nil
		}
		v.statusMsg = fmt.Sprintf("Imported %d tasks, skipped %d", msg.result.Imported, msg.result.Skipped)
		return v, nil

	case tea.KeyMsg:
		v.statusMsg = ""
		v.errorMsg = ""

		switch v.mode {
		case backupModePath:
			return v.updatePath(msg)
		case backupModeConfirmReplace:
			return v.updateConfirmReplace(msg)
		case backupModeResolve:
			return v.updateResolve(msg)
		}
		return v.updateNormal(msg)
	}

	return v, nil
}

func (v BackupView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "e":
		return v, v.export()
	case "i":
		v.mode = backupModePath
		v.replace = false
		v.input.SetValue("")
		v.input.Focus()
		return v, textinput.Blink
	case "I":
		v.mode = backupModePath
		v.replace = true
		v.input.SetValue("")
		v.input.Focus()
		return v, textinput.Blink
	}
	return v, nil
}

func (v BackupView) updatePath(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		v.mode = backupModeNormal
		v.input.Blur()
		return v, v.readBackup(v.input.Value(), v.replace)
	case "escape", "esc":
		v.mode = backupModeNormal
		v.input.Blur()
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v BackupView) updateConfirmReplace(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y":
		v.mode = backupModeNormal
		return v, v.runReplace()
	case "n", "escape", "esc":
		v.mode = backupModeNormal
		v.doc = nil
	}
	return v, nil
}

func (v BackupView) updateResolve(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(v.conflicts)-1 {
			v.cursor++
		}
	case "o":
		v.setResolution(backup.ResolutionOverwrite)
	case "m":
		v.setResolution(backup.ResolutionMerge)
	case "s":
		v.setResolution(backup.ResolutionSkip)
	case " ":
		v.cycleResolution()
	case "enter":
		v.mode = backupModeNormal
		return v, v.runImport()
	case "escape", "esc":
		v.mode = backupModeNormal
		v.doc = nil
		v.conflicts = nil
	}
	return v, nil
}

func (v *BackupView) setResolution(r backup.Resolution) {
	if v.cursor >= 0 && v.cursor < len(v.conflicts) {
		v.resolutions[v.conflicts[v.cursor].TaskName] = r
	}
}

func (v *BackupView) cycleResolution() {
	if v.cursor < 0 || v.cursor >= len(v.conflicts) {
		return
	}
	name := v.conflicts[v.cursor].TaskName
	switch v.resolutions[name] {
	case backup.ResolutionSkip:
		v.resolutions[name] = backup.ResolutionOverwrite
	case backup.ResolutionOverwrite:
		v.resolutions[name] = backup.ResolutionMerge
	default:
		v.resolutions[name] = backup.ResolutionSkip
	}
}

// View renders the backup view
func (v BackupView) View() string {
	if v.width == 0 || v.height == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Backup"))
	b.WriteString("\n\n")

	switch v.mode {
	case backupModePath:
		label := "Import from: "
		if v.replace {
			label = "Replace everything from: "
		}
		b.WriteString(panelStyle.Render(label + v.input.View()))

	case backupModeConfirmReplace:
		n := 0
		if v.doc != nil {
			n = len(v.doc.Tasks)
		}
		b.WriteString(errorStyle.Render(fmt.Sprintf(
			"Delete ALL current tasks and import %d from the backup? There is no undo. (y/n)", n)))

	case backupModeResolve:
		b.WriteString(fmt.Sprintf("%d tasks already exist. Choose what to do with each:\n\n", len(v.conflicts)))
		for i, c := range v.conflicts {
			res := v.resolutions[c.TaskName]
			line := fmt.Sprintf("  %-30s existing due %s, imported due %s  [%s]",
				truncate(c.TaskName, 30),
				c.Existing.NextDueDate, c.Imported.NextDueDate,
				strings.ToUpper(string(res)))
			if i == v.cursor {
				line = selectedStyle.Render(line)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(subtleStyle.Render("o: overwrite · m: merge history · s: skip · space: cycle · enter: apply"))

	default:
		b.WriteString("Export writes every task and its completion history to a JSON file.\n")
		b.WriteString("Import adds tasks from a backup; name collisions ask for a resolution.\n")
		b.WriteString("\n")
		b.WriteString(subtleStyle.Render("e: export · i: import · I: import replacing everything"))
	}

	if v.errorMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(errorStyle.Render(v.errorMsg))
	} else if v.statusMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(statusStyle.Render(v.statusMsg))
	}

	return b.String()
}
