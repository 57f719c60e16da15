package domain

import "time"

// TaskStatus enumerates kanban columns for internal tasks.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

// Valid reports whether the status is a known column.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// Task is a lightweight agent-side work item, independent of the ticket
// lifecycle. Like tickets, it carries a friendly immutable ID ("TASK-001").
type Task struct {
	ID          string
	Title       string
	Description *string
	Status      TaskStatus
	Priority    *TicketPriority
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
