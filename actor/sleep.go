package actor

import "github.com/go-gl/mathgl/mgl64"

// sleepState tracks one body's side of the sleep state machine. The group
// decision is taken by the world at step boundaries.
type sleepState struct {
	linear  float64 // negative: world default
	angular float64 // negative: world default

	wakeCounter int
	sleeping    bool
	// pending marks a body whose group went quiet during the last step. It
	// becomes sleeping at the next step boundary unless something wakes it.
	pending bool
}

func newSleepState(linear, angular float64, wakeCounter int, settings Settings) sleepState {
	if wakeCounter < 0 {
		wakeCounter = settings.SleepFrames
	}
	return sleepState{
		linear:      normalizeThreshold(linear),
		angular:     normalizeThreshold(angular),
		wakeCounter: wakeCounter,
	}
}

func normalizeThreshold(v float64) float64 {
	if v < 0 {
		return -1
	}
	return v
}

// IsSleeping reports whether the body is excluded from integration.
// A body that is sleeping after a step did not move during it.
func (r *Rigid) IsSleeping() bool { return r.sleep.sleeping }

// IsSleepPending reports whether the body will fall asleep at the next step.
func (r *Rigid) IsSleepPending() bool { return r.sleep.pending }

// WakeCounter returns the number of quiet steps left before the body may sleep.
func (r *Rigid) WakeCounter() int { return r.sleep.wakeCounter }

// SleepLinearVelocity returns the effective linear sleep threshold.
func (r *Rigid) SleepLinearVelocity() float64 {
	if r.sleep.linear < 0 {
		return r.settings.SleepLinearVelocity
	}
	return r.sleep.linear
}

// SleepAngularVelocity returns the effective angular sleep threshold.
func (r *Rigid) SleepAngularVelocity() float64 {
	if r.sleep.angular < 0 {
		return r.settings.SleepAngularVelocity
	}
	return r.sleep.angular
}

// SetSleepLinearVelocity sets the linear threshold; negative means world default.
func (r *Rigid) SetSleepLinearVelocity(threshold float64) {
	r.sleep.linear = normalizeThreshold(threshold)
}

// SetSleepAngularVelocity sets the angular threshold; negative means world default.
func (r *Rigid) SetSleepAngularVelocity(threshold float64) {
	r.sleep.angular = normalizeThreshold(threshold)
}

// WakeUp marks the body awake for at least counter steps. A negative
// counter uses the world's sleep frame count. Waking an awake body only
// resets its counter.
func (r *Rigid) WakeUp(counter int) {
	if counter < 0 {
		counter = r.settings.SleepFrames
	}
	r.sleep.sleeping = false
	r.sleep.pending = false
	r.sleep.wakeCounter = counter
}

// PutToSleep sleeps the body now, zeroing its velocities and bypassing the
// thresholds. Putting a sleeping body to sleep again changes nothing.
func (r *Rigid) PutToSleep() {
	r.sleep.sleeping = true
	r.sleep.pending = false
	r.sleep.wakeCounter = 0
	r.linearVelocity = mgl64.Vec3{}
	r.angularVelocity = mgl64.Vec3{}
}

// wake is the implicit wake-up caused by a user mutation.
func (r *Rigid) wake() {
	if r.sleep.sleeping || r.sleep.pending || r.sleep.wakeCounter < r.settings.SleepFrames {
		r.WakeUp(r.settings.SleepFrames)
	}
}

// UpdateWakeCounter is run by the world after integration. It counts the
// body down while both speeds are under their thresholds and resets the
// count otherwise. It reports whether the body is ready to sleep.
func (r *Rigid) UpdateWakeCounter() bool {
	if r.sleep.sleeping {
		return true
	}
	if r.linearVelocity.Len() < r.SleepLinearVelocity() && r.angularVelocity.Len() < r.SleepAngularVelocity() {
		if r.sleep.wakeCounter > 0 {
			r.sleep.wakeCounter--
		}
	} else {
		r.sleep.wakeCounter = r.settings.SleepFrames
	}
	return r.sleep.wakeCounter == 0
}

// MarkSleepPending is run by the world when the body's whole group is ready
// to sleep. Velocities are zeroed now so that nothing changes at the commit.
func (r *Rigid) MarkSleepPending() {
	if r.sleep.sleeping {
		return
	}
	r.sleep.pending = true
	r.linearVelocity = mgl64.Vec3{}
	r.angularVelocity = mgl64.Vec3{}
}

// CommitSleep turns a pending body into a sleeping one. It reports whether
// the state changed.
func (r *Rigid) CommitSleep() bool {
	if !r.sleep.pending {
		return false
	}
	r.sleep.pending = false
	r.sleep.sleeping = true
	return true
}

// WakeByNeighbour wakes the body because its group is active. It reports
// whether the body was sleeping.
func (r *Rigid) WakeByNeighbour() bool {
	wasSleeping := r.sleep.sleeping
	if wasSleeping || r.sleep.pending {
		r.WakeUp(r.settings.SleepFrames)
	}
	return wasSleeping
}
