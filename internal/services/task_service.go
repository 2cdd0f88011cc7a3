package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/yukikurage/gestor-tarefas/internal/models"
	"github.com/yukikurage/gestor-tarefas/internal/notify"
	"github.com/yukikurage/gestor-tarefas/internal/policy"
	"github.com/yukikurage/gestor-tarefas/internal/repository"
	"github.com/yukikurage/gestor-tarefas/internal/utils"
)

var (
	ErrTaskNotFound          = errors.New("task not found")
	ErrDescriptionRequired   = errors.New("description is required")
	ErrLocationRequired      = errors.New("location is required")
	ErrInvalidPriority       = errors.New("invalid priority")
	ErrInvalidStatus         = errors.New("invalid status")
	ErrDepartmentUnavailable = errors.New("your account has no valid department")
)

// TaskService handles atividade business logic
type TaskService struct {
	taskRepo repository.TaskRepository
	emitter  notify.Emitter
	log      zerolog.Logger

	// Now is the clock used for deadlines and events.
	Now func() time.Time
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, emitter notify.Emitter, log zerolog.Logger) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		emitter:  emitter,
		log:      log.With().Str("component", "task_service").Logger(),
		Now:      time.Now,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Description string
	Location    string
	Priority    string
	Department  string
	Requester   string
}

// ListTasks returns the page of tasks visible to the principal.
// Members without a valid department see nothing.
func (s *TaskService) ListTasks(ctx context.Context, principal policy.Principal, params utils.PaginationParams) ([]models.Atividade, int64, error) {
	filter := repository.TaskFilter{Pagination: params}

	if !principal.Can(policy.ViewAllTasks) {
		if !principal.HasDepartment {
			return []models.Atividade{}, 0, nil
		}
		department := principal.Department
		filter.Department = &department
	}

	tasks, total, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns a task the principal is allowed to see
func (s *TaskService) GetTask(ctx context.Context, principal policy.Principal, taskID uint64) (*models.Atividade, error) {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if !principal.Can(policy.ViewAllTasks) {
		// tasks of other departments are reported as missing
		if !principal.HasDepartment || task.DepartmentName() != principal.Department {
			return nil, ErrTaskNotFound
		}
	}

	return task, nil
}

// CreateTask validates and stores a new pending task.
// Department members always file tasks for their own department, as themselves.
func (s *TaskService) CreateTask(ctx context.Context, principal policy.Principal, input CreateTaskInput) (*models.Atividade, error) {
	if err := policy.Authorize(principal, policy.CreateTask); err != nil {
		return nil, err
	}

	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, ErrDescriptionRequired
	}
	location := strings.TrimSpace(input.Location)
	if location == "" {
		return nil, ErrLocationRequired
	}

	priority := models.TaskPriority(strings.TrimSpace(input.Priority))
	if priority == "" {
		priority = models.TaskPriorityMedium
	}
	if !priority.Valid() {
		return nil, ErrInvalidPriority
	}

	task := &models.Atividade{
		Description: description,
		Location:    location,
		Priority:    priority,
		Status:      models.TaskStatusPending,
		CreatorID:   principal.UserID,
	}

	if principal.IsAdmin() {
		task.Department = optional(input.Department)
		task.Requester = optional(input.Requester)
	} else {
		if !principal.HasDepartment {
			return nil, ErrDepartmentUnavailable
		}
		department := principal.Department
		requester := principal.Username
		task.Department = &department
		task.Requester = &requester
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.log.Info().
		Uint64("task_id", task.ID).
		Uint64("user_id", principal.UserID).
		Str("department", task.DepartmentName()).
		Msg("task created")

	if !principal.IsAdmin() {
		s.emit(ctx, notify.NewTaskCreated(*task, principal.Username, s.Now()))
	}

	return s.findTask(ctx, task.ID)
}

// UpdateStatus applies a status transition and notifies the task's department
func (s *TaskService) UpdateStatus(ctx context.Context, principal policy.Principal, taskID uint64, newStatus string) (*models.Atividade, error) {
	if err := policy.Authorize(principal, policy.ChangeStatus); err != nil {
		return nil, err
	}

	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	updated, event, err := ApplyTransition(*task, models.TaskStatus(newStatus), principal, s.Now())
	if err != nil {
		return nil, err
	}

	if err := s.taskRepo.Update(ctx, &updated); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}

	s.log.Info().
		Uint64("task_id", updated.ID).
		Str("from", string(task.Status)).
		Str("to", string(updated.Status)).
		Str("actor", principal.Username).
		Msg("task status updated")

	if event != nil {
		s.emit(ctx, *event)
	}

	return &updated, nil
}

// DeleteTask permanently removes a task
func (s *TaskService) DeleteTask(ctx context.Context, principal policy.Principal, taskID uint64) error {
	if err := policy.Authorize(principal, policy.DeleteTask); err != nil {
		return err
	}

	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.log.Info().
		Uint64("task_id", taskID).
		Str("actor", principal.Username).
		Msg("task deleted")
	return nil
}

func (s *TaskService) findTask(ctx context.Context, taskID uint64) (*models.Atividade, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID, "Creator")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// emit hands the event to the emitter; notification failures never fail the request.
func (s *TaskService) emit(ctx context.Context, event notify.Event) {
	if s.emitter == nil {
		return
	}
	if err := s.emitter.Emit(ctx, event); err != nil {
		s.log.Warn().
			Err(err).
			Str("event_id", event.ID.String()).
			Str("room", event.Room).
			Msg("failed to emit notification")
	}
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
