package notify

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yukikurage/gestor-tarefas/internal/constants"
	"github.com/yukikurage/gestor-tarefas/internal/models"
	"github.com/yukikurage/gestor-tarefas/internal/policy"
)

type Kind string

const (
	KindTaskCreated Kind = "task_created"
	KindTaskUpdated Kind = "task_updated"
)

// Wire names of the events sent to websocket clients.
const (
	NameNewTask        = "new_task_notification"
	NameActivityUpdate = "activity_update_notification"
)

// Payload is the task snapshot delivered to subscribers.
type Payload struct {
	TaskID      uint64 `json:"id"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Department  string `json:"department"`
	CreatedBy   string `json:"created_by"`
	Requester   string `json:"requester"`
	Handler     string `json:"handler"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	CreatedDate string `json:"created_at"`
	Deadline    string `json:"deadline"`
	Message     string `json:"message"`
}

// Event is a notification addressed to a single room.
type Event struct {
	ID        uuid.UUID `json:"id"`
	Kind      Kind      `json:"kind"`
	Room      string    `json:"room"`
	Name      string    `json:"name"`
	Payload   Payload   `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTaskCreated builds the admin room notification for a task created by createdBy.
func NewTaskCreated(task models.Atividade, createdBy string, now time.Time) Event {
	payload := newPayload(task, createdBy)
	payload.Message = fmt.Sprintf("New task created by %s", createdBy)

	return Event{
		ID:        uuid.New(),
		Kind:      KindTaskCreated,
		Room:      constants.AdminRoom,
		Name:      NameNewTask,
		Payload:   payload,
		CreatedAt: now,
	}
}

// NewTaskUpdated builds the department room notification for a task whose status changed.
// It returns nil when the task has no department, since there is no room to address.
func NewTaskUpdated(task models.Atividade, now time.Time) *Event {
	if task.Department == nil || *task.Department == "" {
		return nil
	}

	payload := newPayload(task, task.Creator.Username)
	payload.Message = fmt.Sprintf("Task %d updated to %s", task.ID, task.Status)

	return &Event{
		ID:        uuid.New(),
		Kind:      KindTaskUpdated,
		Room:      policy.DepartmentRoom(*task.Department),
		Name:      NameActivityUpdate,
		Payload:   payload,
		CreatedAt: now,
	}
}

func newPayload(task models.Atividade, createdBy string) Payload {
	deadline := constants.DeadlineNotSet
	if task.Deadline != nil {
		deadline = task.Deadline.Format(constants.DisplayDateLayout)
	}

	return Payload{
		TaskID:      task.ID,
		Description: task.Description,
		Location:    task.Location,
		Department:  task.DepartmentName(),
		CreatedBy:   createdBy,
		Requester:   deref(task.Requester),
		Handler:     deref(task.Handler),
		Priority:    string(task.Priority),
		Status:      string(task.Status),
		CreatedDate: task.CreatedAt.Format(constants.DisplayDateLayout),
		Deadline:    deadline,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
