package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// motionQueue holds at most one target pose for the next step.
type motionQueue struct {
	target  Transform
	pending bool
	// moved is set by the step that consumed a target, until the step ends.
	moved bool
}

// MoveGlobalPose queues the pose the body must reach at the end of the next
// step. A later call before that step replaces the target.
func (k *Kinematic) MoveGlobalPose(target Transform) error {
	if !target.IsFinite() {
		return violation("target pose is not finite")
	}
	k.motion.target = target.Normalized()
	k.motion.pending = true
	k.wake()
	return nil
}

// MoveGlobalPosition queues a target position, keeping the current orientation.
func (k *Kinematic) MoveGlobalPosition(position mgl64.Vec3) error {
	return k.MoveGlobalPose(Transform{Position: position, Rotation: k.pose.Rotation})
}

// MoveGlobalOrientation queues a target orientation, keeping the current position.
func (k *Kinematic) MoveGlobalOrientation(rotation mgl64.Quat) error {
	return k.MoveGlobalPose(Transform{Position: k.pose.Position, Rotation: rotation})
}

// PendingMotion returns the queued target, if any.
func (k *Kinematic) PendingMotion() (Transform, bool) {
	return k.motion.target, k.motion.pending
}

// HasPendingMotion reports whether a target is queued for the next step.
func (k *Kinematic) HasPendingMotion() bool { return k.motion.pending }

// Moved reports whether the current step carried the body to a target.
func (k *Kinematic) Moved() bool { return k.motion.moved }

// Integrate consumes the queued target: the body gets the velocity that
// reaches the target in exactly dt, and its pose is set to the target.
// Without a target, or while sleeping, the body neither moves nor gets a
// velocity.
func (k *Kinematic) Integrate(dt float64) {
	k.motion.moved = false
	if k.sleep.sleeping || !k.motion.pending {
		k.linearVelocity = mgl64.Vec3{}
		k.angularVelocity = mgl64.Vec3{}
		return
	}

	from := k.CMassGlobalPose()
	to := k.motion.target.Mul(k.massLocalPose)

	k.linearVelocity = to.Position.Sub(from.Position).Mul(1.0 / dt)
	k.angularVelocity = angularVelocityBetween(from.Rotation, to.Rotation, dt)

	k.pose = k.motion.target
	k.motion.pending = false
	k.motion.target = Transform{}
	k.motion.moved = true
}

// PutToSleep sleeps the body now and drops any queued target.
func (k *Kinematic) PutToSleep() {
	k.Rigid.PutToSleep()
	k.motion = motionQueue{}
}

// EndStep resets the implied velocity: a kinematic body only moves during
// the step that consumed its target.
func (k *Kinematic) EndStep() {
	k.linearVelocity = mgl64.Vec3{}
	k.angularVelocity = mgl64.Vec3{}
	k.motion.moved = false
}

// angularVelocityBetween returns ω such that rotating from by ω·dt gives to.
func angularVelocityBetween(from, to mgl64.Quat, dt float64) mgl64.Vec3 {
	delta := to.Mul(from.Conjugate()).Normalize()
	// q and -q are the same rotation; take the short way
	if delta.W < 0 {
		delta = delta.Scale(-1)
	}

	sinHalf := delta.V.Len()
	if sinHalf < 1e-12 {
		return mgl64.Vec3{}
	}
	angle := 2 * math.Atan2(sinHalf, delta.W)
	return delta.V.Mul(angle / (sinHalf * dt))
}
