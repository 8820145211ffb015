package kinetic

import (
	"testing"

	"github.com/akmonengine/kinetic/actor"
	"github.com/akmonengine/kinetic/arena"
)

type fakeSleeper struct {
	sleeping bool
}

func (f *fakeSleeper) IsSleeping() bool { return f.sleeping }

func testHandle(index int) BodyHandle {
	var a arena.Arena[actor.Body]
	var h BodyHandle
	for range index + 1 {
		h = a.Insert(nil)
	}
	return h
}

type eventCapture struct {
	events []Event
}

func (ec *eventCapture) capture(event Event) {
	ec.events = append(ec.events, event)
}

func (ec *eventCapture) count() int {
	return len(ec.events)
}

// =============================================================================
// Subscribe and Flush Tests
// =============================================================================

func TestEvents_Subscribe(t *testing.T) {
	events := NewEvents()
	capture := &eventCapture{}

	events.Subscribe(ON_SLEEP, capture.capture)
	events.Subscribe(ON_SLEEP, capture.capture)

	if len(events.listeners[ON_SLEEP]) != 2 {
		t.Errorf("Expected 2 listeners for ON_SLEEP, got %d", len(events.listeners[ON_SLEEP]))
	}
	if len(events.listeners[ON_WAKE]) != 0 {
		t.Errorf("Expected no listener for ON_WAKE, got %d", len(events.listeners[ON_WAKE]))
	}
}

func TestEvents_FlushByType(t *testing.T) {
	events := NewEvents()
	sleeps := &eventCapture{}
	wakes := &eventCapture{}
	events.Subscribe(ON_SLEEP, sleeps.capture)
	events.Subscribe(ON_WAKE, wakes.capture)

	h := testHandle(0)
	events.emit(SleepEvent{Body: h})
	events.emit(KindChangeEvent{Body: h, From: actor.KindDynamic, To: actor.KindKinematic})
	events.emit(SleepEvent{Body: h})

	if sleeps.count() != 0 {
		t.Fatalf("Expected no event before flush, got %d", sleeps.count())
	}

	events.flush()

	if sleeps.count() != 2 {
		t.Errorf("Expected 2 sleep events, got %d", sleeps.count())
	}
	if wakes.count() != 0 {
		t.Errorf("Expected 0 wake events, got %d", wakes.count())
	}
	if len(events.buffer) != 0 {
		t.Errorf("Expected empty buffer after flush, got %d", len(events.buffer))
	}

	events.flush()
	if sleeps.count() != 2 {
		t.Errorf("Expected a second flush to send nothing, got %d events", sleeps.count())
	}
}

// =============================================================================
// Sleep Tracking Tests
// =============================================================================

func TestEvents_FirstSightIsSilent(t *testing.T) {
	events := NewEvents()
	capture := &eventCapture{}
	events.Subscribe(ON_SLEEP, capture.capture)
	events.Subscribe(ON_WAKE, capture.capture)

	events.processSleepEvents([]trackedBody{
		{handle: testHandle(0), body: &fakeSleeper{sleeping: true}},
		{handle: testHandle(1), body: &fakeSleeper{sleeping: false}},
	})
	events.flush()

	if capture.count() != 0 {
		t.Errorf("Expected no event for bodies seen the first time, got %d", capture.count())
	}
}

func TestEvents_SleepWakeTransitions(t *testing.T) {
	events := NewEvents()
	capture := &eventCapture{}
	events.Subscribe(ON_SLEEP, capture.capture)
	events.Subscribe(ON_WAKE, capture.capture)

	a, b := testHandle(0), testHandle(1)
	bodyA, bodyB := &fakeSleeper{}, &fakeSleeper{}
	tracked := []trackedBody{{handle: a, body: bodyA}, {handle: b, body: bodyB}}

	events.processSleepEvents(tracked)

	bodyA.sleeping = true
	bodyB.sleeping = true
	events.processSleepEvents(tracked)
	// unchanged states emit nothing
	events.processSleepEvents(tracked)

	bodyB.sleeping = false
	events.processSleepEvents(tracked)
	events.flush()

	want := []Event{SleepEvent{Body: a}, SleepEvent{Body: b}, WakeEvent{Body: b}}
	if capture.count() != len(want) {
		t.Fatalf("Expected %d events, got %d: %v", len(want), capture.count(), capture.events)
	}
	for i := range want {
		if capture.events[i] != want[i] {
			t.Errorf("event %d: expected %v, got %v", i, want[i], capture.events[i])
		}
	}
}

func TestEvents_Forget(t *testing.T) {
	events := NewEvents()
	capture := &eventCapture{}
	events.Subscribe(ON_SLEEP, capture.capture)

	h := testHandle(0)
	body := &fakeSleeper{}
	events.processSleepEvents([]trackedBody{{handle: h, body: body}})
	events.forget(h)

	body.sleeping = true
	events.processSleepEvents([]trackedBody{{handle: h, body: body}})
	events.flush()

	if capture.count() != 0 {
		t.Errorf("Expected a forgotten body to be seen anew, got %d events", capture.count())
	}
}

func TestEventTypes(t *testing.T) {
	tests := []struct {
		event Event
		want  EventType
	}{
		{SleepEvent{}, ON_SLEEP},
		{WakeEvent{}, ON_WAKE},
		{KindChangeEvent{}, ON_KIND_CHANGE},
	}

	for _, tt := range tests {
		if got := tt.event.Type(); got != tt.want {
			t.Errorf("%T.Type() = %d, want %d", tt.event, got, tt.want)
		}
	}
}
