package actor

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Integrate advances an awake body by dt: accumulated forces and gravity,
// then damping, the angular clamp and frozen axes, then the pose.
// A sleeping body is left untouched.
func (d *Dynamic) Integrate(dt float64, gravity mgl64.Vec3) {
	if d.sleep.sleeping {
		return
	}

	// ========== LINEAR ==========
	acceleration := d.forces.force.Mul(1.0 / d.mass)
	if d.flags&BodyFlagDisableGravity == 0 {
		acceleration = acceleration.Add(gravity)
	}
	d.linearVelocity = d.linearVelocity.Add(acceleration.Mul(dt))

	// ========== ANGULAR ==========
	angularAcceleration := d.GlobalInertiaTensorInverse().Mul3x1(d.forces.torque)
	d.angularVelocity = d.angularVelocity.Add(angularAcceleration.Mul(dt))

	// ========== DAMPING ==========
	d.linearVelocity = d.linearVelocity.Mul(expDamping(d.linearDamping, dt))
	d.angularVelocity = d.angularVelocity.Mul(expDamping(d.angularDamping, dt))
	d.angularVelocity = clampLength(d.angularVelocity, d.maxAngularVelocity)

	d.applyFrozenAxes()

	// ========== POSE ==========
	// The mass frame moves; the actor frame follows it.
	com := d.CMassGlobalPosition().Add(d.linearVelocity.Mul(dt))

	rotation := d.pose.rotation()
	if d.angularVelocity != (mgl64.Vec3{}) {
		omegaQuat := mgl64.Quat{V: d.angularVelocity, W: 0}
		qDot := omegaQuat.Mul(rotation).Scale(0.5)
		rotation = rotation.Add(qDot.Scale(dt)).Normalize()
	}

	d.pose.Rotation = rotation
	d.pose.Position = com.Sub(rotation.Rotate(d.massLocalPose.Position))
}

// EndStep clears the accumulated forces. It runs after every step whether the
// body integrated or not.
func (d *Dynamic) EndStep() {
	d.forces.clear()
}

func (d *Dynamic) applyFrozenAxes() {
	for axis := range 3 {
		if d.flags&(BodyFlagFrozenPosX<<axis) != 0 {
			d.linearVelocity[axis] = 0
		}
		if d.flags&(BodyFlagFrozenRotX<<axis) != 0 {
			d.angularVelocity[axis] = 0
		}
	}
}
