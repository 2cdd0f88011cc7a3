package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukikurage/gestor-tarefas/internal/models"
	"github.com/yukikurage/gestor-tarefas/internal/notify"
	"github.com/yukikurage/gestor-tarefas/internal/policy"
)

var (
	adminActor  = policy.Principal{UserID: 1, Username: "alice", Role: models.RoleAdmin}
	memberActor = policy.Principal{UserID: 2, Username: "bob", Role: models.RoleDepartmentMember,
		Department: "Maintenance", HasDepartment: true}
)

func pendingTask(priority models.TaskPriority) models.Atividade {
	department := "Maintenance"
	return models.Atividade{
		ID:          10,
		Description: "Fix the roof",
		Status:      models.TaskStatusPending,
		Priority:    priority,
		Location:    "Block A",
		Department:  &department,
		Creator:     models.User{Username: "bob"},
	}
}

func TestApplyTransition_StartingSetsDeadlineByPriority(t *testing.T) {
	now := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		priority models.TaskPriority
		days     int
	}{
		{models.TaskPriorityLow, 15},
		{models.TaskPriorityMedium, 10},
		{models.TaskPriorityHigh, 5},
		{models.TaskPriorityCritical, 2},
	}

	for _, tt := range tests {
		t.Run(string(tt.priority), func(t *testing.T) {
			updated, event, err := ApplyTransition(pendingTask(tt.priority), models.TaskStatusInProgress, adminActor, now)
			require.NoError(t, err)

			assert.Equal(t, models.TaskStatusInProgress, updated.Status)
			require.NotNil(t, updated.Deadline)
			assert.Equal(t, now.AddDate(0, 0, tt.days), *updated.Deadline)
			require.NotNil(t, updated.Handler)
			assert.Equal(t, "alice", *updated.Handler)

			require.NotNil(t, event)
			assert.Equal(t, "department_Maintenance", event.Room)
			assert.Equal(t, notify.NameActivityUpdate, event.Name)
		})
	}
}

func TestApplyTransition_OverwritesPreviousHandler(t *testing.T) {
	task := pendingTask(models.TaskPriorityLow)
	previous := "someone-else"
	task.Handler = &previous

	updated, _, err := ApplyTransition(task, models.TaskStatusInProgress, adminActor, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "alice", *updated.Handler)
	assert.Equal(t, "someone-else", *task.Handler)
}

func TestApplyTransition_OtherTransitionsKeepDeadline(t *testing.T) {
	deadline := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	handler := "carol"

	for _, from := range []models.TaskStatus{models.TaskStatusInProgress, models.TaskStatusDone, models.TaskStatusCancelled} {
		task := pendingTask(models.TaskPriorityCritical)
		task.Status = from
		task.Deadline = &deadline
		task.Handler = &handler

		updated, _, err := ApplyTransition(task, models.TaskStatusInProgress, adminActor, time.Now())
		require.NoError(t, err)
		assert.Equal(t, deadline, *updated.Deadline, from)
		assert.Equal(t, "carol", *updated.Handler, from)
		assert.Equal(t, models.TaskStatusInProgress, updated.Status)
	}

	task := pendingTask(models.TaskPriorityLow)
	updated, _, err := ApplyTransition(task, models.TaskStatusDone, adminActor, time.Now())
	require.NoError(t, err)
	assert.Nil(t, updated.Deadline)
	assert.Nil(t, updated.Handler)
	assert.Equal(t, models.TaskStatusDone, updated.Status)
}

func TestApplyTransition_Rejections(t *testing.T) {
	task := pendingTask(models.TaskPriorityHigh)

	updated, event, err := ApplyTransition(task, models.TaskStatusInProgress, memberActor, time.Now())
	assert.ErrorIs(t, err, policy.ErrPermissionDenied)
	assert.Equal(t, "not authorized", err.Error())
	assert.Nil(t, event)
	assert.Equal(t, task, updated)

	_, _, err = ApplyTransition(task, models.TaskStatus("Archived"), adminActor, time.Now())
	assert.ErrorIs(t, err, ErrInvalidStatus)

	unknown := pendingTask(models.TaskPriority("Urgent"))
	updated, event, err = ApplyTransition(unknown, models.TaskStatusInProgress, adminActor, time.Now())
	assert.ErrorIs(t, err, ErrInvalidPriority)
	assert.Nil(t, event)
	assert.Equal(t, models.TaskStatusPending, updated.Status)
}

func TestApplyTransition_NoDepartmentNoEvent(t *testing.T) {
	task := pendingTask(models.TaskPriorityMedium)
	task.Department = nil

	updated, event, err := ApplyTransition(task, models.TaskStatusInProgress, adminActor, time.Now())
	require.NoError(t, err)
	assert.Nil(t, event)
	assert.NotNil(t, updated.Deadline)
}
