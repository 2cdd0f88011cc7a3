package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yukikurage/gestor-tarefas/internal/dto"
	apierrors "github.com/yukikurage/gestor-tarefas/internal/errors"
	"github.com/yukikurage/gestor-tarefas/internal/middleware"
	"github.com/yukikurage/gestor-tarefas/internal/models"
	"github.com/yukikurage/gestor-tarefas/internal/policy"
	"github.com/yukikurage/gestor-tarefas/internal/services"
	"github.com/yukikurage/gestor-tarefas/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
	log         zerolog.Logger
}

func NewTaskHandler(taskService *services.TaskService, log zerolog.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		log:         log,
	}
}

// ListTasks returns the page of tasks visible to the current user
func (h *TaskHandler) ListTasks(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	tasks, total, err := h.taskService.ListTasks(c.Request.Context(), principal, params)
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, params, total))
}

// NewTaskForm returns what the task form needs; members get their department pre-filled and locked
func (h *TaskHandler) NewTaskForm(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var department *string
	locked := !principal.IsAdmin()
	if locked && principal.HasDepartment {
		name := principal.Department
		department = &name
	}

	c.JSON(http.StatusOK, gin.H{
		"priorities":        models.TaskPriorities,
		"default_priority":  models.TaskPriorityMedium,
		"department":        department,
		"department_locked": locked,
	})
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	type CreateTaskRequest struct {
		Description string `json:"description" form:"description"`
		Location    string `json:"location" form:"location"`
		Priority    string `json:"priority" form:"priority"`
		Department  string `json:"department" form:"department"`
		Requester   string `json:"requester" form:"requester"`
	}

	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBind(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), principal, services.CreateTaskInput{
		Description: req.Description,
		Location:    req.Location,
		Priority:    req.Priority,
		Department:  req.Department,
		Requester:   req.Requester,
	})
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// GetTask returns a task
func (h *TaskHandler) GetTask(c *gin.Context) {
	principal, taskID, ok := h.principalAndTaskID(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), principal, taskID)
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// UpdateStatus moves a task to the status named in the path
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	principal, taskID, ok := h.principalAndTaskID(c)
	if !ok {
		return
	}

	task, err := h.taskService.UpdateStatus(c.Request.Context(), principal, taskID, c.Param("new_status"))
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	principal, taskID, ok := h.principalAndTaskID(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), principal, taskID); err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

func (h *TaskHandler) principalAndTaskID(c *gin.Context) (policy.Principal, uint64, bool) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return policy.Principal{}, 0, false
	}

	taskID, ok := middleware.GetTaskID(c)
	if !ok {
		apierrors.BadRequest(c, "Invalid task ID")
		return policy.Principal{}, 0, false
	}

	return principal, taskID, true
}

func (h *TaskHandler) respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, policy.ErrPermissionDenied):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrDescriptionRequired),
		errors.Is(err, services.ErrLocationRequired),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrDepartmentUnavailable):
		apierrors.BadRequest(c, err.Error())
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		apierrors.InternalError(c)
	}
}
