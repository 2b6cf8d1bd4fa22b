package views

import (
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dori/neverforget/internal/db"
	"github.com/dori/neverforget/internal/model"
	"github.com/dori/neverforget/internal/service"
)

// Local message types for the form view
type formCategoriesMsg struct {
	categories []model.Category
	err        error
}

type formSavedMsg struct {
	task *model.Task
	err  error
}

// Form field indexes
const (
	fieldName = iota
	fieldCategory
	fieldRecurrence
	fieldDueDate
	fieldReminderDelay
	fieldCount
)

// FormView edits one task, or creates a new one when no task was set
type FormView struct {
	svc      *service.Service
	database *db.DB
	width    int
	height   int

	taskID string // empty when creating
	inputs [fieldCount]textinput.Model
	focus  int

	categories []model.Category

	// Per-field validation errors, keyed like service.ValidationError
	fieldErrs map[string]string
	errorMsg  string
}

// NewFormView creates an empty form view
func NewFormView(svc *service.Service, database *db.DB) FormView {
	v := FormView{svc: svc, database: database}

	name := textinput.New()
	name.Placeholder = "Check smoke detectors"
	name.CharLimit = 100
	v.inputs[fieldName] = name

	category := textinput.New()
	category.Placeholder = model.DefaultCategoryName
	category.CharLimit = 50
	v.inputs[fieldCategory] = category

	recurrence := textinput.New()
	recurrence.Placeholder = "90"
	recurrence.CharLimit = 4
	v.inputs[fieldRecurrence] = recurrence

	due := textinput.New()
	due.Placeholder = "YYYY-MM-DD (blank = today + recurrence)"
	due.CharLimit = 10
	v.inputs[fieldDueDate] = due

	delay := textinput.New()
	delay.Placeholder = "blank = app setting"
	delay.CharLimit = 3
	v.inputs[fieldReminderDelay] = delay

	return v
}

// SetTask prefills the form for editing, or resets it for a new task when
// task is nil
func (v FormView) SetTask(task *model.TaskView) FormView {
	v.fieldErrs = nil
	v.errorMsg = ""
	v.focus = fieldName

	if task == nil {
		v.taskID = ""
		for i := range v.inputs {
			v.inputs[i].SetValue("")
		}
	} else {
		v.taskID = task.ID
		v.inputs[fieldName].SetValue(task.Name)
		v.inputs[fieldCategory].SetValue(task.Category)
		v.inputs[fieldRecurrence].SetValue(strconv.Itoa(task.RecurrenceDays))
		v.inputs[fieldDueDate].SetValue(task.NextDueDate.String())
		v.inputs[fieldReminderDelay].SetValue(strconv.Itoa(task.ReminderDelayDays))
	}

	for i := range v.inputs {
		v.inputs[i].Blur()
	}
	v.inputs[fieldName].Focus()
	return v
}

// Init loads the category list for suggestions
func (v FormView) Init() tea.Cmd {
	return func() tea.Msg {
		cats, err := v.database.GetCategories()
		return formCategoriesMsg{categories: cats, err: err}
	}
}

// SetSize sets the view dimensions
func (v FormView) SetSize(width, height int) FormView {
	v.width = width
	v.height = height
	for i := range v.inputs {
		v.inputs[i].Width = width - 20
	}
	return v
}

// IsInputMode is always true: the form captures every keystroke
func (v FormView) IsInputMode() bool {
	return true
}

func (v FormView) save() tea.Cmd {
	form, err := v.buildForm()
	if err != nil {
		e := err
		return func() tea.Msg { return formSavedMsg{err: e} }
	}

	taskID := v.taskID
	return func() tea.Msg {
		var (
			task *model.Task
			err  error
		)
		if taskID == "" {
			task, err = v.svc.CreateTask(form)
		} else {
			task, err = v.svc.UpdateTask(taskID, form)
		}
		return formSavedMsg{task: task, err: err}
	}
}

// buildForm parses the numeric and date fields. Parse failures surface as
// the same per-field errors the service's validator produces.
func (v FormView) buildForm() (service.TaskForm, error) {
	form := service.TaskForm{
		Name:     strings.TrimSpace(v.inputs[fieldName].Value()),
		Category: strings.TrimSpace(v.inputs[fieldCategory].Value()),
	}

	errs := make(map[string]string)

	if raw := strings.TrimSpace(v.inputs[fieldRecurrence].Value()); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			errs["recurrence"] = "recurrence must be a number of days"
		} else {
			form.RecurrenceDays = n
		}
	}

	if raw := strings.TrimSpace(v.inputs[fieldDueDate].Value()); raw != "" {
		d, err := model.ParseDate(raw)
		if err != nil {
			errs["due"] = "due date must be YYYY-MM-DD"
		} else {
			form.NextDueDate = d
		}
	}

	if raw := strings.TrimSpace(v.inputs[fieldReminderDelay].Value()); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			errs["reminder"] = "reminder delay must be a number of days"
		} else {
			form.ReminderDelayDays = n
		}
	}

	if len(errs) > 0 {
		return form, &service.ValidationError{Fields: errs}
	}
	return form, nil
}

// suggestRecurrence fills the recurrence field from the category when the
// user has not typed one yet
func (v *FormView) suggestRecurrence() {
	if v.taskID != "" || v.inputs[fieldRecurrence].Value() != "" {
		return
	}
	category := strings.TrimSpace(v.inputs[fieldCategory].Value())
	if category == "" {
		return
	}
	v.inputs[fieldRecurrence].Placeholder = strconv.Itoa(model.SuggestRecurrence(category))
}

// Update handles messages
func (v FormView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case formCategoriesMsg:
		if msg.err == nil {
			v.categories = msg.categories
		}
		return v, nil

	case formSavedMsg:
		if msg.err != nil {
			var verr *service.ValidationError
			if errors.As(msg.err, &verr) {
				v.fieldErrs = verr.Fields
				v.errorMsg = ""
			} else {
				v.errorMsg = msg.err.Error()
			}
			return v, nil
		}
		name := ""
		if msg.task != nil {
			name = msg.task.Name
		}
		return v, func() tea.Msg { return FormClosed{Saved: true, TaskName: name} }

	case tea.KeyMsg:
		switch msg.String() {
		case "escape", "esc":
			return v, func() tea.Msg { return FormClosed{} }

		case "ctrl+s":
			return v, v.save()

		case "tab", "down":
			v = v.focusField((v.focus + 1) % fieldCount)
			return v, textinput.Blink

		case "shift+tab", "up":
			v = v.focusField((v.focus + fieldCount - 1) % fieldCount)
			return v, textinput.Blink

		case "enter":
			if v.focus == fieldCount-1 {
				return v, v.save()
			}
			v = v.focusField(v.focus + 1)
			return v, textinput.Blink
		}
	}

	var cmd tea.Cmd
	v.inputs[v.focus], cmd = v.inputs[v.focus].Update(msg)
	if v.focus == fieldCategory {
		v.suggestRecurrence()
	}
	return v, cmd
}

func (v FormView) focusField(i int) FormView {
	v.inputs[v.focus].Blur()
	v.focus = i
	v.inputs[v.focus].Focus()
	return v
}

// View renders the form
func (v FormView) View() string {
	var b strings.Builder

	if v.taskID == "" {
		b.WriteString(titleStyle.Render("New Task"))
	} else {
		b.WriteString(titleStyle.Render("Edit Task"))
	}
	b.WriteString("\n\n")

	fields := []struct {
		label  string
		index  int
		errKey string
	}{
		{"Name", fieldName, "name"},
		{"Category", fieldCategory, "category"},
		{"Every (days)", fieldRecurrence, "recurrence"},
		{"Next due", fieldDueDate, "due"},
		{"Remind after", fieldReminderDelay, "reminder"},
	}

	for _, f := range fields {
		b.WriteString(labelStyle.Render(f.label))
		b.WriteString(v.inputs[f.index].View())
		if msg := v.fieldErr(f.errKey); msg != "" {
			b.WriteString("  ")
			b.WriteString(errorStyle.Render(msg))
		}
		b.WriteString("\n")
	}

	if len(v.categories) > 0 {
		names := make([]string, 0, len(v.categories))
		for _, c := range v.categories {
			names = append(names, c.Icon+" "+c.Name)
		}
		b.WriteString("\n")
		b.WriteString(subtleStyle.Render("Categories: " + strings.Join(names, "  ")))
		b.WriteString("\n")
	}

	if v.errorMsg != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(v.errorMsg))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(subtleStyle.Render("enter: next field · ctrl+s: save · esc: cancel"))

	return b.String()
}

func (v FormView) fieldErr(key string) string {
	if v.fieldErrs == nil {
		return ""
	}
	return v.fieldErrs[key]
}
