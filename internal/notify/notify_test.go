package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukikurage/gestor-tarefas/internal/constants"
	"github.com/yukikurage/gestor-tarefas/internal/models"
)

func strPtr(s string) *string { return &s }

func sampleTask() models.Atividade {
	return models.Atividade{
		ID:          42,
		Description: "Fix the projector",
		Status:      models.TaskStatusPending,
		Priority:    models.TaskPriorityHigh,
		Location:    "Room 3",
		Department:  strPtr("Maintenance"),
		Requester:   strPtr("bob"),
		CreatedAt:   time.Date(2025, 2, 7, 9, 30, 0, 0, time.UTC),
		Creator:     models.User{Username: "bob"},
	}
}

func TestNewTaskCreated(t *testing.T) {
	now := time.Now()
	event := NewTaskCreated(sampleTask(), "bob", now)

	assert.Equal(t, KindTaskCreated, event.Kind)
	assert.Equal(t, constants.AdminRoom, event.Room)
	assert.Equal(t, NameNewTask, event.Name)
	assert.NotEmpty(t, event.ID.String())
	assert.Equal(t, now, event.CreatedAt)

	p := event.Payload
	assert.Equal(t, uint64(42), p.TaskID)
	assert.Equal(t, "Maintenance", p.Department)
	assert.Equal(t, "bob", p.CreatedBy)
	assert.Equal(t, "bob", p.Requester)
	assert.Equal(t, "", p.Handler)
	assert.Equal(t, "07/02/2025", p.CreatedDate)
	assert.Equal(t, constants.DeadlineNotSet, p.Deadline)
	assert.Contains(t, p.Message, "bob")
}

func TestNewTaskUpdated(t *testing.T) {
	task := sampleTask()
	deadline := time.Date(2025, 2, 12, 9, 30, 0, 0, time.UTC)
	task.Deadline = &deadline
	task.Status = models.TaskStatusInProgress
	task.Handler = strPtr("alice")

	event := NewTaskUpdated(task, time.Now())
	require.NotNil(t, event)
	assert.Equal(t, KindTaskUpdated, event.Kind)
	assert.Equal(t, "department_Maintenance", event.Room)
	assert.Equal(t, NameActivityUpdate, event.Name)
	assert.Equal(t, "12/02/2025", event.Payload.Deadline)
	assert.Equal(t, "alice", event.Payload.Handler)
	assert.Equal(t, "InProgress", event.Payload.Status)

	task.Department = nil
	assert.Nil(t, NewTaskUpdated(task, time.Now()))
}

type blockingPublisher struct {
	release chan struct{}
	mu      sync.Mutex
	rooms   []string
}

func (p *blockingPublisher) Publish(_ context.Context, room, _ string, _ any) error {
	<-p.release
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rooms = append(p.rooms, room)
	return nil
}

func TestDispatcher_DeliversAndDrainsOnStop(t *testing.T) {
	rec := &Recorder{}
	d := NewDispatcher(rec, DispatcherConfig{BufferSize: 8, WorkerCount: 2}, zerolog.Nop())
	d.Start(context.Background())

	for i := 0; i < 5; i++ {
		require.NoError(t, d.Emit(context.Background(), NewTaskCreated(sampleTask(), "bob", time.Now())))
	}
	d.Stop()

	calls := rec.PublishedCalls()
	require.Len(t, calls, 5)
	for _, call := range calls {
		assert.Equal(t, constants.AdminRoom, call.Room)
		assert.Equal(t, NameNewTask, call.Name)
		assert.IsType(t, Payload{}, call.Payload)
	}

	assert.ErrorIs(t, d.Emit(context.Background(), NewTaskCreated(sampleTask(), "bob", time.Now())), ErrDispatcherStopped)
	d.Stop()
}

func TestDispatcher_DropsWhenBufferFull(t *testing.T) {
	pub := &blockingPublisher{release: make(chan struct{})}
	d := NewDispatcher(pub, DispatcherConfig{BufferSize: 1, WorkerCount: 1}, zerolog.Nop())

	// without workers the single slot fills on the first emit
	event := NewTaskCreated(sampleTask(), "bob", time.Now())
	require.NoError(t, d.Emit(context.Background(), event))
	assert.ErrorIs(t, d.Emit(context.Background(), event), ErrBufferFull)

	d.Start(context.Background())
	close(pub.release)
	d.Stop()

	assert.Len(t, pub.rooms, 1)
}

func TestDispatcher_PublishFailureIsSwallowed(t *testing.T) {
	rec := &Recorder{Err: errors.New("socket closed")}
	d := NewDispatcher(rec, DispatcherConfig{BufferSize: 2, WorkerCount: 0}, zerolog.Nop())
	d.Start(context.Background())

	require.NoError(t, d.Emit(context.Background(), NewTaskCreated(sampleTask(), "bob", time.Now())))
	d.Stop()

	assert.Empty(t, rec.PublishedCalls())
}
