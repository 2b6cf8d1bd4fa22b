package views

import (
	"github.com/dori/neverforget/internal/model"
)

// EditTaskRequest asks the root model to open the form view. Task is nil
// when adding a new task.
type EditTaskRequest struct {
	Task *model.TaskView
}

// FormClosed returns control from the form view to the task list
type FormClosed struct {
	Saved    bool
	TaskName string
}
