package orchestrator

import (
	"sync"
	"time"
)

type EventType string

const (
	EventRunStarted          EventType = "run_started"
	EventItemQueued          EventType = "item_queued"
	EventItemSubmitted       EventType = "item_submitted"
	EventItemOutcome         EventType = "item_outcome"
	EventRecordCompleted     EventType = "record_completed"
	EventRecordPublished     EventType = "record_published"
	EventRecordPublishFailed EventType = "record_publish_failed"
	EventRunFinished         EventType = "run_finished"
)

// Event is a progress notification emitted while a run executes.
type Event struct {
	RunID     string    `json:"run_id"`
	Type      EventType `json:"type"`
	RecordID  string    `json:"record_id,omitempty"`
	Variation int       `json:"variation,omitempty"`
	Message   string    `json:"message,omitempty"`
	Data      any       `json:"data,omitempty"`
	At        time.Time `json:"at"`
}

// EventSink receives run events. Emit is called from the run goroutine and
// must not block for long.
type EventSink interface {
	Emit(Event)
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(Event)

func (f EventSinkFunc) Emit(e Event) { f(e) }

type discard struct{}

func (discard) Emit(Event) {}

// Discard drops every event.
var Discard EventSink = discard{}

// Collector buffers events in memory.
type Collector struct {
	mu     sync.Mutex
	events []Event
}

func (c *Collector) Emit(e Event) {
	c.mu.Lock()
	c.events = append(c.events, e)
	c.mu.Unlock()
}

// Events returns a copy of the buffered events.
func (c *Collector) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

// Count returns how many events of type t were collected.
func (c *Collector) Count(t EventType) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.events {
		if e.Type == t {
			n++
		}
	}
	return n
}
