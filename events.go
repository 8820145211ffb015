package kinetic

import (
	"github.com/akmonengine/kinetic/actor"
)

const (
	ON_SLEEP EventType = iota
	ON_WAKE
	ON_KIND_CHANGE
)

type EventType uint8

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// Sleep/Wake events
type SleepEvent struct {
	Body BodyHandle
}

func (e SleepEvent) Type() EventType { return ON_SLEEP }

type WakeEvent struct {
	Body BodyHandle
}

func (e WakeEvent) Type() EventType { return ON_WAKE }

// KindChangeEvent is emitted when a body is converted between dynamic and
// kinematic through its body flags.
type KindChangeEvent struct {
	Body     BodyHandle
	From, To actor.Kind
}

func (e KindChangeEvent) Type() EventType { return ON_KIND_CHANGE }

// EventListener - callback for events
type EventListener func(event Event)

// Events manager
type Events struct {
	// Listeners by event type
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event

	// Last sleep state reported for each rigid body
	sleepStates map[BodyHandle]bool
}

func NewEvents() Events {
	return Events{
		listeners:   make(map[EventType][]EventListener),
		buffer:      make([]Event, 0, 256),
		sleepStates: make(map[BodyHandle]bool),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

func (e *Events) emit(event Event) {
	e.buffer = append(e.buffer, event)
}

// sleeper is the part of a rigid body the sleep tracking reads.
type sleeper interface {
	IsSleeping() bool
}

type trackedBody struct {
	handle BodyHandle
	body   sleeper
}

// processSleepEvents compares each body with the state reported last time.
// A body seen for the first time is recorded without an event.
func (e *Events) processSleepEvents(bodies []trackedBody) {
	for _, tracked := range bodies {
		h := tracked.handle
		sleeping := tracked.body.IsSleeping()
		trackedState, exists := e.sleepStates[h]
		if !exists {
			e.sleepStates[h] = sleeping
			continue
		}

		if !trackedState && sleeping {
			e.buffer = append(e.buffer, SleepEvent{Body: h})
			e.sleepStates[h] = true
		} else if trackedState && !sleeping {
			e.buffer = append(e.buffer, WakeEvent{Body: h})
			e.sleepStates[h] = false
		}
	}
}

func (e *Events) forget(h BodyHandle) {
	delete(e.sleepStates, h)
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	for _, event := range e.buffer {
		if listeners, ok := e.listeners[event.Type()]; ok {
			for _, listener := range listeners {
				listener(event)
			}
		}
	}
	e.buffer = e.buffer[:0]
}
