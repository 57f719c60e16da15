package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/suportehub/helpdesk-service/internal/domain"
	"github.com/suportehub/helpdesk-service/internal/repository"
	apperrors "github.com/suportehub/helpdesk-service/pkg/util"
)

// TaskService manages the agents' internal kanban tasks. Tasks follow the
// same friendly-ID convention as tickets but are otherwise independent of
// the ticket lifecycle.
type TaskService struct {
	tasks repository.TaskRepository
}

// TaskCreateInput describes task creation payload.
type TaskCreateInput struct {
	ID          string
	Title       string
	Description *string
	Status      *domain.TaskStatus
	Priority    *domain.TicketPriority
}

// TaskUpdateInput describes a partial task update.
type TaskUpdateInput struct {
	Title       *string
	Description *string
	Status      *domain.TaskStatus
	Priority    *domain.TicketPriority
}

// NewTaskService constructs the service.
func NewTaskService(tasks repository.TaskRepository) *TaskService {
	return &TaskService{tasks: tasks}
}

// Create registers a new task, rejecting duplicate IDs.
func (s *TaskService) Create(ctx context.Context, input TaskCreateInput) (*domain.Task, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" || strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.NewValidationError("id and title required", nil)
	}

	if _, err := s.tasks.GetByID(ctx, id); err == nil {
		return nil, apperrors.NewDuplicateKey("task id already exists", map[string]any{"task_id": id})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	status := domain.TaskStatusTodo
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": *input.Status})
		}
		status = *input.Status
	}
	if input.Priority != nil && !input.Priority.Valid() {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": *input.Priority})
	}

	task := &domain.Task{
		ID:          id,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Status:      status,
		Priority:    input.Priority,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, apperrors.MapError(err)
	}
	return task, nil
}

// List returns all tasks, newest first.
func (s *TaskService) List(ctx context.Context) ([]domain.Task, error) {
	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tasks, nil
}

// Get fetches a single task.
func (s *TaskService) Get(ctx context.Context, id string) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("task", map[string]any{"task_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return task, nil
}

// Update applies a partial update.
func (s *TaskService) Update(ctx context.Context, id string, input TaskUpdateInput) (*domain.Task, error) {
	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		task.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		task.Description = input.Description
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": *input.Status})
		}
		task.Status = *input.Status
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": *input.Priority})
		}
		task.Priority = input.Priority
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, apperrors.MapError(err)
	}
	return task, nil
}

// Delete removes a task.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	if err := s.tasks.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("task", map[string]any{"task_id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}
