package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dori/neverforget/internal/app"
	"github.com/dori/neverforget/internal/backup"
	"github.com/dori/neverforget/internal/model"
	"github.com/dori/neverforget/internal/schedule"
	"github.com/dori/neverforget/internal/service"
	"github.com/dori/neverforget/internal/ui"
)

var (
	version = "0.1.0"
)

func main() {
	// Subcommand handling
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "add":
			handleAdd(os.Args[2:])
			return
		case "list":
			handleList(os.Args[2:])
			return
		case "complete":
			handleComplete(os.Args[2:])
			return
		case "snooze":
			handleSnooze(os.Args[2:])
			return
		case "export":
			handleExport(os.Args[2:])
			return
		case "import":
			handleImport(os.Args[2:])
			return
		case "watch":
			handleWatch()
			return
		case "version":
			fmt.Printf("neverforget v%s\n", version)
			return
		case "help", "-h", "--help":
			printHelp()
			return
		}
	}

	// Run TUI
	if err := runTUI(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	help := `neverforget - recurring task reminders

Usage:
  neverforget                          Start the TUI
  neverforget add <task>               Quick add a task
  neverforget list [--overdue|--today|--upcoming N]
                                       Print tasks by urgency
  neverforget complete <task>          Record a completion dated today
  neverforget snooze <task> <delay>    Re-send a reminder later (1h, 3h, 1d, 3d)
  neverforget export [path]            Write a JSON backup
  neverforget import [flags] <path>    Import a JSON backup
  neverforget watch                    Run reminders in the foreground
  neverforget version                  Show version
  neverforget help                     Show this help

Quick Add Syntax:
  neverforget add "Check smoke detectors @Maison every:180"
  neverforget add "Rotate tires @Voiture every:90 due:2026-10-01"

  Category:    @name       (defaults to Maison)
  Recurrence:  every:<days> (defaults by category)
  First due:   due:YYYY-MM-DD (defaults to today + recurrence)

Import Flags:
  -replace               Delete everything first, then import
  -on-conflict <mode>    overwrite, merge or skip tasks whose name
                         already exists (default skip)

Tasks are matched by ID or exact name. Run 'neverforget list' to see both.`

	fmt.Println(help)
}

// openApp builds a short-lived CLI application: no instance lock and no
// in-process timers
func openApp() *app.App {
	cfg := app.DefaultConfig()
	application, err := app.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return application
}

// findTask resolves a CLI task argument by ID first, then by exact name
func findTask(application *app.App, arg string) *model.Task {
	task, err := application.DB.GetTask(arg)
	if err == nil && task == nil {
		task, err = application.DB.GetTaskByName(arg)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if task == nil {
		fmt.Fprintf(os.Stderr, "No task matches %q. Run 'neverforget list' to see tasks.\n", arg)
		os.Exit(1)
	}
	return task
}

func handleAdd(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: neverforget add <task>")
		fmt.Fprintln(os.Stderr, "Example: neverforget add \"Descale the kettle @Maison every:90\"")
		os.Exit(1)
	}

	form, err := parseQuickAdd(strings.Join(args, " "))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	application := openApp()
	defer application.Close()

	task, err := application.Tasks.CreateTask(form)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Created: %s\n", task.Name)
	fmt.Printf("Category: %s\n", task.Category)
	fmt.Printf("Repeats: %s\n", model.RecurrenceLabel(task.RecurrenceDays))
	fmt.Printf("Next due: %s\n", task.NextDueDate)
}

// parseQuickAdd turns "Rotate tires @Voiture every:90 due:2026-10-01" into a
// task form. Unrecognized words become the task name.
func parseQuickAdd(text string) (service.TaskForm, error) {
	form := service.TaskForm{}
	var nameParts []string

	for _, word := range strings.Fields(text) {
		switch {
		case strings.HasPrefix(word, "@"):
			form.Category = strings.TrimPrefix(word, "@")

		case strings.HasPrefix(strings.ToLower(word), "every:"):
			raw := word[len("every:"):]
			n, err := strconv.Atoi(raw)
			if err != nil {
				return form, fmt.Errorf("invalid recurrence %q, expected every:<days>", word)
			}
			form.RecurrenceDays = n

		case strings.HasPrefix(strings.ToLower(word), "due:"):
			raw := word[len("due:"):]
			d, err := model.ParseDate(raw)
			if err != nil {
				return form, fmt.Errorf("invalid due date %q, expected due:YYYY-MM-DD", word)
			}
			form.NextDueDate = d

		default:
			nameParts = append(nameParts, word)
		}
	}

	form.Name = strings.Join(nameParts, " ")
	if form.Category == "" {
		form.Category = model.DefaultCategoryName
	}
	if form.RecurrenceDays == 0 {
		form.RecurrenceDays = model.SuggestRecurrence(form.Category)
	}
	return form, nil
}

func handleList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	overdueOnly := fs.Bool("overdue", false, "only overdue tasks")
	todayOnly := fs.Bool("today", false, "only tasks due today")
	upcomingDays := fs.Int("upcoming", 0, "only tasks due within the next N days")
	fs.Parse(args)

	application := openApp()
	defer application.Close()

	var (
		views []model.TaskView
		err   error
	)
	switch {
	case *overdueOnly:
		views, err = application.Tasks.Overdue()
	case *todayOnly:
		views, err = application.Tasks.DueToday()
	case *upcomingDays > 0:
		views, err = application.Tasks.Upcoming(*upcomingDays)
	default:
		views, err = application.Tasks.Views()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if len(views) == 0 {
		fmt.Println("No tasks.")
		return
	}

	for _, v := range views {
		marker := " "
		switch v.Status {
		case model.StatusOverdue:
			marker = "!"
		case model.StatusDueToday:
			marker = "*"
		}
		fmt.Printf("%s %-36s  %-30s  %-12s  %s (%s)\n",
			marker, v.ID, v.Name, dueLabel(v), v.Category,
			model.RecurrenceLabel(v.RecurrenceDays))
	}
}

func dueLabel(v model.TaskView) string {
	switch v.Status {
	case model.StatusOverdue:
		if v.DaysUntilDue == 1 {
			return "1 day late"
		}
		return fmt.Sprintf("%d days late", v.DaysUntilDue)
	case model.StatusDueToday:
		return "due today"
	default:
		if v.DaysUntilDue == 1 {
			return "in 1 day"
		}
		return fmt.Sprintf("in %d days", v.DaysUntilDue)
	}
}

func handleComplete(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: neverforget complete <task id or name>")
		os.Exit(1)
	}

	application := openApp()
	defer application.Close()

	task := findTask(application, args[0])
	updated, err := application.Tasks.CompleteToday(task.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Completed: %s\n", updated.Name)
	fmt.Printf("Next due: %s\n", updated.NextDueDate)
}

func handleSnooze(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "Usage: neverforget snooze <task id or name> <1h|3h|1d|3d>")
		os.Exit(1)
	}

	delay, err := schedule.ParseSnoozeDelay(args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	application := openApp()
	defer application.Close()
	task := findTask(application, args[0])

	// One-shot invocations have no background process to hand the timer to,
	// so this command carries it itself. Meant to be run detached:
	//   neverforget snooze "Rotate tires" 1h &
	fmt.Printf("Reminding about %q in %s.\n", task.Name, args[1])
	time.Sleep(delay)

	// Re-verify before notifying, the task may be gone or done by now
	current, err := application.DB.GetTask(task.ID)
	if err != nil || current == nil {
		return
	}
	today := model.Today(time.Local)
	if current.NextDueDate.After(today) {
		return
	}
	overdue := current.NextDueDate.Before(today)
	if err := application.Notifier.SendTaskReminder(current.ID, current.Name, overdue); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func handleExport(args []string) {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}

	application := openApp()
	defer application.Close()

	written, err := application.Backup.ExportToFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Exported to %s\n", written)
}

func handleImport(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	replace := fs.Bool("replace", false, "delete everything first, then import")
	onConflict := fs.String("on-conflict", "skip", "overwrite, merge or skip existing tasks")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: neverforget import [-replace] [-on-conflict <mode>] <path>")
		os.Exit(1)
	}

	doc, err := backup.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	application := openApp()
	defer application.Close()

	var result *backup.ImportResult
	if *replace {
		result, err = application.Backup.ImportReplace(doc)
	} else {
		resolution := backup.Resolution(strings.ToLower(*onConflict))
		switch resolution {
		case backup.ResolutionOverwrite, backup.ResolutionMerge, backup.ResolutionSkip:
		default:
			fmt.Fprintf(os.Stderr, "Error: unknown conflict mode %q (use overwrite, merge or skip)\n", *onConflict)
			os.Exit(1)
		}

		conflicts, derr := application.Backup.DetectConflicts(doc)
		if derr != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", derr)
			os.Exit(1)
		}
		resolutions := make(map[string]backup.Resolution, len(conflicts))
		for _, c := range conflicts {
			resolutions[c.TaskName] = resolution
		}
		result, err = application.Backup.Import(doc, resolutions)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Imported %d tasks, skipped %d.\n", result.Imported, result.Skipped)
	if result.Skipped > 0 {
		fmt.Println("Skipped tasks already exist. Re-run with -on-conflict merge or overwrite.")
	}
}

// handleWatch runs the reminder scheduler in the foreground until
// interrupted. This is the process that actually delivers notifications.
func handleWatch() {
	cfg := app.DefaultConfig()
	cfg.WithScheduler = true
	cfg.Lock = true

	application, err := app.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	if err := application.StartReminders(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Watching for due tasks. Press ctrl+c to stop.")
	if !application.Notifier.IsEnabled() {
		fmt.Println("Desktop notifications are disabled (NEVERFORGET_QUIET is set).")
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
}

func runTUI() error {
	cfg := app.DefaultConfig()
	cfg.WithScheduler = true
	cfg.Lock = true

	application, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	if err := application.StartReminders(); err != nil {
		return err
	}

	p := tea.NewProgram(
		ui.NewRootModel(application),
		tea.WithAltScreen(),
	)

	_, err = p.Run()
	return err
}
