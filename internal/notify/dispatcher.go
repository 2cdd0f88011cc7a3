package notify

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

var (
	ErrBufferFull        = errors.New("notification buffer is full")
	ErrDispatcherStopped = errors.New("notification dispatcher is stopped")
)

// Emitter accepts events for delivery.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// Publisher delivers a named payload to every subscriber of a room.
type Publisher interface {
	Publish(ctx context.Context, room, name string, payload any) error
}

// DispatcherConfig sizes the queue and the worker pool.
type DispatcherConfig struct {
	BufferSize  int
	WorkerCount int
}

// Dispatcher is an Emitter that queues events and publishes them from worker goroutines.
type Dispatcher struct {
	publisher   Publisher
	events      chan Event
	workerCount int
	log         zerolog.Logger

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher. Non-positive sizes fall back to one.
func NewDispatcher(publisher Publisher, cfg DispatcherConfig, log zerolog.Logger) *Dispatcher {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if cfg.WorkerCount <= 0 {
		log.Warn().
			Int("specified_count", cfg.WorkerCount).
			Msg("invalid worker count, using 1")
		cfg.WorkerCount = 1
	}

	return &Dispatcher{
		publisher:   publisher,
		events:      make(chan Event, cfg.BufferSize),
		workerCount: cfg.WorkerCount,
		log:         log.With().Str("component", "notify_dispatcher").Logger(),
	}
}

// Start launches the workers. Publishing uses ctx; cancel it to abandon deliveries in flight.
func (d *Dispatcher) Start(ctx context.Context) {
	d.log.Info().Int("workers", d.workerCount).Msg("starting notification dispatcher")

	for i := 0; i < d.workerCount; i++ {
		d.wg.Add(1)
		go d.worker(ctx, i)
	}
}

// Stop refuses new events, waits for queued ones to be delivered, and returns.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.events)
	d.mu.Unlock()

	d.wg.Wait()
	d.log.Info().Msg("notification dispatcher stopped")
}

// Emit queues the event without blocking.
func (d *Dispatcher) Emit(_ context.Context, event Event) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		return ErrDispatcherStopped
	}

	select {
	case d.events <- event:
		return nil
	default:
		d.log.Warn().
			Str("event_id", event.ID.String()).
			Str("room", event.Room).
			Msg("notification dropped, buffer full")
		return ErrBufferFull
	}
}

func (d *Dispatcher) worker(ctx context.Context, id int) {
	defer d.wg.Done()

	for event := range d.events {
		if err := d.publisher.Publish(ctx, event.Room, event.Name, event.Payload); err != nil {
			d.log.Error().
				Err(err).
				Int("worker", id).
				Str("event_id", event.ID.String()).
				Str("room", event.Room).
				Msg("failed to publish notification")
			continue
		}

		d.log.Debug().
			Int("worker", id).
			Str("event_id", event.ID.String()).
			Str("kind", string(event.Kind)).
			Str("room", event.Room).
			Msg("notification published")
	}
}
