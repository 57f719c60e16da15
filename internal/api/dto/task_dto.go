package dto

import (
	"time"

	"github.com/suportehub/helpdesk-service/internal/domain"
)

// CreateTaskRequest payload.
type CreateTaskRequest struct {
	ID          string                 `json:"id"`
	Title       string                 `json:"title"`
	Description *string                `json:"description"`
	Status      *domain.TaskStatus     `json:"status"`
	Priority    *domain.TicketPriority `json:"priority"`
}

// UpdateTaskRequest payload.
type UpdateTaskRequest struct {
	Title       *string                `json:"title"`
	Description *string                `json:"description"`
	Status      *domain.TaskStatus     `json:"status"`
	Priority    *domain.TicketPriority `json:"priority"`
}

// TaskResponse mirrors a task.
type TaskResponse struct {
	ID          string                 `json:"id"`
	Title       string                 `json:"title"`
	Description *string                `json:"description,omitempty"`
	Status      domain.TaskStatus      `json:"status"`
	Priority    *domain.TicketPriority `json:"priority,omitempty"`
	CreatedAt   time.Time              `json:"createdAt"`
	UpdatedAt   time.Time              `json:"updatedAt"`
}
