package services

import (
	"time"

	"github.com/yukikurage/gestor-tarefas/internal/models"
	"github.com/yukikurage/gestor-tarefas/internal/notify"
	"github.com/yukikurage/gestor-tarefas/internal/policy"
)

// deadlineDays is how long a task may stay in progress, by priority.
var deadlineDays = map[models.TaskPriority]int{
	models.TaskPriorityLow:      15,
	models.TaskPriorityMedium:   10,
	models.TaskPriorityHigh:     5,
	models.TaskPriorityCritical: 2,
}

// DeadlineFor returns the deadline of a task of the given priority started at from.
func DeadlineFor(priority models.TaskPriority, from time.Time) (time.Time, error) {
	days, ok := deadlineDays[priority]
	if !ok {
		return time.Time{}, ErrInvalidPriority
	}
	return from.AddDate(0, 0, days), nil
}

// ApplyTransition moves task to newStatus on behalf of actor.
//
// Starting a pending task fixes its deadline from the priority and records the actor as
// handler; every other transition only rewrites the status. The returned event is nil when
// the task has no department to notify. On error the task is returned unchanged.
func ApplyTransition(task models.Atividade, newStatus models.TaskStatus, actor policy.Principal, now time.Time) (models.Atividade, *notify.Event, error) {
	if err := policy.Authorize(actor, policy.ChangeStatus); err != nil {
		return task, nil, err
	}
	if !newStatus.Valid() {
		return task, nil, ErrInvalidStatus
	}

	updated := task
	if task.Status == models.TaskStatusPending && newStatus == models.TaskStatusInProgress {
		deadline, err := DeadlineFor(task.Priority, now)
		if err != nil {
			return task, nil, err
		}
		handler := actor.Username
		updated.Deadline = &deadline
		updated.Handler = &handler
	}
	updated.Status = newStatus

	return updated, notify.NewTaskUpdated(updated, now), nil
}
