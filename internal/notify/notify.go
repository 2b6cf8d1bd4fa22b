package notify

import (
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

// Urgency levels for notifications
type Urgency int

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

// Notification represents a desktop notification
type Notification struct {
	Title   string
	Body    string
	Urgency Urgency
	Timeout time.Duration
	Icon    string // Optional icon name
}

// Notifier handles sending desktop notifications
type Notifier struct {
	enabled bool
}

// NewNotifier creates a new notifier
func NewNotifier() *Notifier {
	return &Notifier{
		enabled: true,
	}
}

// SetEnabled enables or disables notifications
func (n *Notifier) SetEnabled(enabled bool) {
	n.enabled = enabled
}

// IsEnabled returns whether notifications are enabled
func (n *Notifier) IsEnabled() bool {
	return n.enabled
}

// Send sends a desktop notification using notify-send
func (n *Notifier) Send(notification Notification) error {
	if !n.enabled {
		return nil
	}

	args := []string{}

	switch notification.Urgency {
	case UrgencyLow:
		args = append(args, "-u", "low")
	case UrgencyCritical:
		args = append(args, "-u", "critical")
	default:
		args = append(args, "-u", "normal")
	}

	if notification.Timeout > 0 {
		args = append(args, "-t", strconv.Itoa(int(notification.Timeout.Milliseconds())))
	}

	if notification.Icon != "" {
		args = append(args, "-i", notification.Icon)
	}

	args = append(args, "-a", "neverforget")

	args = append(args, notification.Title)
	if notification.Body != "" {
		args = append(args, notification.Body)
	}

	cmd := exec.Command("notify-send", args...)
	return cmd.Run()
}

// SendTaskDue notifies that a task reached its due date. The body names the
// two CLI actions a user can take straight from the notification.
func (n *Notifier) SendTaskDue(taskID, taskName string, overdue bool) error {
	title := "Task due today: " + taskName
	urgency := UrgencyNormal
	if overdue {
		title = "Task overdue: " + taskName
		urgency = UrgencyCritical
	}

	return n.Send(Notification{
		Title:   title,
		Body:    actionHint(taskID),
		Urgency: urgency,
		Timeout: 15 * time.Second,
		Icon:    "emblem-important-symbolic",
	})
}

// SendTaskReminder sends the follow-up reminder for a task that is still
// not done after its due date.
func (n *Notifier) SendTaskReminder(taskID, taskName string, overdue bool) error {
	title := "Reminder: " + taskName
	if overdue {
		title = "Still pending: " + taskName
	}

	return n.Send(Notification{
		Title:   title,
		Body:    actionHint(taskID),
		Urgency: UrgencyNormal,
		Timeout: 15 * time.Second,
		Icon:    "alarm-symbolic",
	})
}

func actionHint(taskID string) string {
	return fmt.Sprintf("neverforget complete %s · neverforget snooze %s 1d", taskID, taskID)
}
