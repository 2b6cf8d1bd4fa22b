package ui

// View represents the current active view
type View int

const (
	ViewList View = iota
	ViewForm
	ViewCategories
	ViewSettings
	ViewBackup
	ViewStats
)

// String returns the display name for a view
func (v View) String() string {
	switch v {
	case ViewList:
		return "Tasks"
	case ViewForm:
		return "Edit"
	case ViewCategories:
		return "Categories"
	case ViewSettings:
		return "Settings"
	case ViewBackup:
		return "Backup"
	case ViewStats:
		return "Stats"
	default:
		return "Unknown"
	}
}

// ErrorMsg contains an error to display in the footer
type ErrorMsg struct {
	Err error
}

// StatusMsg contains a status message to display in the footer
type StatusMsg struct {
	Message string
}

// StoreChangedMsg signals that a durable mutation happened; the active view
// reloads its data
type StoreChangedMsg struct{}

// TickMsg fires periodically so statuses recompute when the date rolls over
type TickMsg struct{}
