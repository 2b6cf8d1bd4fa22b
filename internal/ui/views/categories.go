package views

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dori/neverforget/internal/db"
	"github.com/dori/neverforget/internal/model"
)

// Local message types for the categories view
type categoriesLoadedMsg struct {
	categories []model.Category
	counts     map[string]int
	err        error
}

type categoryActedMsg struct {
	status string
	err    error
}

type categoriesMode int

const (
	categoriesModeNormal categoriesMode = iota
	categoriesModeAdd
	categoriesModeEditIcon
	categoriesModeConfirmDelete
)

// CategoriesView manages the category list: add, edit icons, delete, task
// counts. Deleting a category moves its tasks to the default category.
type CategoriesView struct {
	database *db.DB
	width    int
	height   int

	categories []model.Category
	counts     map[string]int
	cursor     int
	mode       categoriesMode

	input textinput.Model

	statusMsg string
	errorMsg  string
}

// NewCategoriesView creates a new categories view
func NewCategoriesView(database *db.DB) CategoriesView {
	ti := textinput.New()
	ti.Placeholder = "Garden 🌱  (name, then optional icon)"
	ti.CharLimit = 60

	return CategoriesView{
		database: database,
		counts:   make(map[string]int),
		input:    ti,
	}
}

// Init loads the categories with their task counts
func (v CategoriesView) Init() tea.Cmd {
	return v.loadCategories()
}

// SetSize sets the view dimensions
func (v CategoriesView) SetSize(width, height int) CategoriesView {
	v.width = width
	v.height = height
	v.input.Width = width - 4
	return v
}

// IsInputMode reports whether the add prompt or delete confirm is open
func (v CategoriesView) IsInputMode() bool {
	return v.mode != categoriesModeNormal
}

func (v CategoriesView) loadCategories() tea.Cmd {
	return func() tea.Msg {
		cats, err := v.database.GetCategories()
		if err != nil {
			return categoriesLoadedMsg{err: err}
		}
		counts := make(map[string]int, len(cats))
		for _, c := range cats {
			tasks, err := v.database.GetTasksByCategory(c.Name)
			if err != nil {
				return categoriesLoadedMsg{err: err}
			}
			counts[c.Name] = len(tasks)
		}
		return categoriesLoadedMsg{categories: cats, counts: counts}
	}
}

func (v CategoriesView) addCategory(raw string) tea.Cmd {
	return func() tea.Msg {
		name, icon := splitNameIcon(raw)
		if name == "" {
			return categoryActedMsg{err: fmt.Errorf("category name is required")}
		}
		existing, err := v.database.GetCategory(name)
		if err != nil {
			return categoryActedMsg{err: err}
		}
		if existing != nil {
			return categoryActedMsg{err: fmt.Errorf("category %q already exists", name)}
		}
		if err := v.database.CreateCategory(name, icon); err != nil {
			return categoryActedMsg{err: err}
		}
		return categoryActedMsg{status: fmt.Sprintf("Added category %q", name)}
	}
}

func (v CategoriesView) saveIcon(name, raw string) tea.Cmd {
	return func() tea.Msg {
		if err := v.database.UpdateCategoryIcon(name, strings.TrimSpace(raw)); err != nil {
			return categoryActedMsg{err: err}
		}
		return categoryActedMsg{status: fmt.Sprintf("Updated icon for %q", name)}
	}
}

func (v CategoriesView) deleteSelected() tea.Cmd {
	cat := v.selected()
	if cat == nil {
		return nil
	}
	name := cat.Name
	return func() tea.Msg {
		if err := v.database.DeleteCategory(name); err != nil {
			return categoryActedMsg{err: err}
		}
		return categoryActedMsg{status: fmt.Sprintf("Deleted %q, tasks moved to %s", name, model.DefaultCategoryName)}
	}
}

func (v CategoriesView) selected() *model.Category {
	if v.cursor < 0 || v.cursor >= len(v.categories) {
		return nil
	}
	return &v.categories[v.cursor]
}

// Update handles messages
func (v CategoriesView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case categoriesLoadedMsg:
		if msg.err != nil {
			v.errorMsg = msg.err.Error()
			return v, nil
		}
		v.categories = msg.categories
		v.counts = msg.counts
		if v.cursor >= len(v.categories) {
			v.cursor = len(v.categories) - 1
		}
		if v.cursor < 0 {
			v.cursor = 0
		}
		return v, nil

	case categoryActedMsg:
		if msg.err != nil {
			v.errorMsg = msg.err.Error()
			return v, nil
		}
		v.statusMsg = msg.status
		return v, v.loadCategories()

	case tea.KeyMsg:
		v.statusMsg = ""
		v.errorMsg = ""

		switch v.mode {
		case categoriesModeAdd:
			return v.updateAdd(msg)
		case categoriesModeEditIcon:
			return v.updateEditIcon(msg)
		case categoriesModeConfirmDelete:
			return v.updateConfirmDelete(msg)
		}
		return v.updateNormal(msg)
	}

	return v, nil
}

func (v CategoriesView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(v.categories)-1 {
			v.cursor++
		}
	case "a":
		v.mode = categoriesModeAdd
		v.input.SetValue("")
		v.input.Focus()
		return v, textinput.Blink
	case "e":
		if cat := v.selected(); cat != nil {
			v.mode = categoriesModeEditIcon
			v.input.SetValue(cat.Icon)
			v.input.Focus()
			return v, textinput.Blink
		}
	case "d":
		if cat := v.selected(); cat != nil {
			if !cat.IsDeletable {
				v.errorMsg = fmt.Sprintf("%q is the default category and cannot be deleted", cat.Name)
				return v, nil
			}
			v.mode = categoriesModeConfirmDelete
		}
	case "r":
		return v, v.loadCategories()
	}
	return v, nil
}

func (v CategoriesView) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		v.mode = categoriesModeNormal
		v.input.Blur()
		return v, v.addCategory(v.input.Value())
	case "escape", "esc":
		v.mode = categoriesModeNormal
		v.input.Blur()
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v CategoriesView) updateEditIcon(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		v.mode = categoriesModeNormal
		v.input.Blur()
		if cat := v.selected(); cat != nil {
			return v, v.saveIcon(cat.Name, v.input.Value())
		}
		return v, nil
	case "escape", "esc":
		v.mode = categoriesModeNormal
		v.input.Blur()
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v CategoriesView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		v.mode = categoriesModeNormal
		return v, v.deleteSelected()
	case "n", "escape", "esc":
		v.mode = categoriesModeNormal
	}
	return v, nil
}

// View renders the categories view
func (v CategoriesView) View() string {
	if v.width == 0 || v.height == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Categories"))
	b.WriteString("\n\n")

	for i, cat := range v.categories {
		count := v.counts[cat.Name]
		label := "task"
		if count != 1 {
			label = "tasks"
		}
		line := fmt.Sprintf("  %s %-20s %s", cat.Icon, cat.Name,
			subtleStyle.Render(fmt.Sprintf("%d %s", count, label)))
		if !cat.IsDeletable {
			line += subtleStyle.Render("  (default)")
		}
		if i == v.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	switch v.mode {
	case categoriesModeAdd:
		b.WriteString("\n")
		b.WriteString(panelStyle.Render("New category: " + v.input.View()))
	case categoriesModeEditIcon:
		if cat := v.selected(); cat != nil {
			b.WriteString("\n")
			b.WriteString(panelStyle.Render(fmt.Sprintf("Icon for %q: %s", cat.Name, v.input.View())))
		}
	case categoriesModeConfirmDelete:
		if cat := v.selected(); cat != nil {
			b.WriteString("\n")
			b.WriteString(errorStyle.Render(fmt.Sprintf(
				"Delete %q? Its tasks move to %s. (y/n)", cat.Name, model.DefaultCategoryName)))
		}
	}

	if v.errorMsg != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(v.errorMsg))
	} else if v.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(statusStyle.Render(v.statusMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(subtleStyle.Render("a: add · e: icon · d: delete · j/k: navigate"))

	return b.String()
}

// splitNameIcon splits "Garden 🌱" into name and trailing icon. A last field
// that contains no letters or digits is treated as the icon.
func splitNameIcon(raw string) (name, icon string) {
	fields := strings.Fields(strings.TrimSpace(raw))
	if len(fields) == 0 {
		return "", ""
	}
	last := fields[len(fields)-1]
	if len(fields) > 1 && !hasAlnum(last) {
		return strings.Join(fields[:len(fields)-1], " "), last
	}
	return strings.Join(fields, " "), ""
}

func hasAlnum(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
