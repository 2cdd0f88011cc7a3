package notify

import (
	"context"
	"sync"
)

// Recorder is an Emitter and Publisher that keeps everything it receives in memory.
// Set Err to make every call fail.
type Recorder struct {
	mu        sync.Mutex
	events    []Event
	published []Published
	Err       error
}

// Published is one Publish call seen by a Recorder.
type Published struct {
	Room    string
	Name    string
	Payload any
}

func (r *Recorder) Emit(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, event)
	return nil
}

func (r *Recorder) Publish(_ context.Context, room, name string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.published = append(r.published, Published{Room: room, Name: name, Payload: payload})
	return nil
}

// Events returns a copy of the emitted events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// PublishedCalls returns a copy of the publish calls.
func (r *Recorder) PublishedCalls() []Published {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Published(nil), r.published...)
}
