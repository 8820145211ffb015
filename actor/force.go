package actor

import (
	"github.com/go-gl/mathgl/mgl64"
)

// ForceMode tells how a force or torque is applied.
type ForceMode uint8

const (
	// ForceModeForce is a continuous force (N) or torque (N·m), integrated
	// over the next step.
	ForceModeForce ForceMode = iota
	// ForceModeImpulse changes momentum now, independently of the timestep.
	ForceModeImpulse
	// ForceModeVelocityChange changes velocity now, ignoring mass.
	ForceModeVelocityChange
	// ForceModeAcceleration is a continuous acceleration, ignoring mass.
	ForceModeAcceleration
)

func (m ForceMode) String() string {
	switch m {
	case ForceModeForce:
		return "force"
	case ForceModeImpulse:
		return "impulse"
	case ForceModeVelocityChange:
		return "velocity-change"
	case ForceModeAcceleration:
		return "acceleration"
	default:
		return "unknown"
	}
}

// accumulator buffers continuous forces until the next integration.
type accumulator struct {
	force  mgl64.Vec3 // world space, N
	torque mgl64.Vec3 // world space, N·m
}

func (a *accumulator) clear() {
	a.force = mgl64.Vec3{}
	a.torque = mgl64.Vec3{}
}

// AccumulatedForce returns the continuous force waiting for the next step.
func (d *Dynamic) AccumulatedForce() mgl64.Vec3 { return d.forces.force }

// AccumulatedTorque returns the continuous torque waiting for the next step.
func (d *Dynamic) AccumulatedTorque() mgl64.Vec3 { return d.forces.torque }

// ClearForces drops the accumulated force and torque.
func (d *Dynamic) ClearForces() {
	d.forces.clear()
}

// AddForce applies a world-space force at the center of mass.
// A non-zero force wakes the body.
func (d *Dynamic) AddForce(force mgl64.Vec3, mode ForceMode) error {
	if err := checkInput(force, mode); err != nil {
		return err
	}
	if force == (mgl64.Vec3{}) {
		return nil
	}
	d.wake()

	switch mode {
	case ForceModeForce:
		d.forces.force = d.forces.force.Add(force)
	case ForceModeAcceleration:
		d.forces.force = d.forces.force.Add(force.Mul(d.mass))
	case ForceModeImpulse:
		d.linearVelocity = d.linearVelocity.Add(force.Mul(1.0 / d.mass))
	case ForceModeVelocityChange:
		d.linearVelocity = d.linearVelocity.Add(force)
	}
	return nil
}

// AddTorque applies a world-space torque.
// A non-zero torque wakes the body.
func (d *Dynamic) AddTorque(torque mgl64.Vec3, mode ForceMode) error {
	if err := checkInput(torque, mode); err != nil {
		return err
	}
	if torque == (mgl64.Vec3{}) {
		return nil
	}
	d.wake()

	switch mode {
	case ForceModeForce:
		d.forces.torque = d.forces.torque.Add(torque)
	case ForceModeAcceleration:
		d.forces.torque = d.forces.torque.Add(d.GlobalInertiaTensor().Mul3x1(torque))
	case ForceModeImpulse:
		d.angularVelocity = d.angularVelocity.Add(d.GlobalInertiaTensorInverse().Mul3x1(torque))
	case ForceModeVelocityChange:
		d.angularVelocity = d.angularVelocity.Add(torque)
	}
	return nil
}

// AddLocalForce applies a force given in the actor frame at the center of mass.
func (d *Dynamic) AddLocalForce(force mgl64.Vec3, mode ForceMode) error {
	return d.AddForce(d.pose.ApplyVector(force), mode)
}

// AddLocalTorque applies a torque given in the actor frame.
func (d *Dynamic) AddLocalTorque(torque mgl64.Vec3, mode ForceMode) error {
	return d.AddTorque(d.pose.ApplyVector(torque), mode)
}

// AddForceAtPos applies a world force at a world position. Off the center of
// mass it also induces a torque (position - com) × force.
func (d *Dynamic) AddForceAtPos(force, position mgl64.Vec3, mode ForceMode) error {
	if err := checkInput(force, mode); err != nil {
		return err
	}
	if !finiteVec(position) {
		return violation("position is not finite")
	}
	torque := position.Sub(d.CMassGlobalPosition()).Cross(force)

	if err := d.AddForce(force, mode); err != nil {
		return err
	}
	return d.AddTorque(torque, mode)
}

// AddForceAtLocalPos applies a world force at a position in the actor frame.
func (d *Dynamic) AddForceAtLocalPos(force, position mgl64.Vec3, mode ForceMode) error {
	return d.AddForceAtPos(force, d.pose.Apply(position), mode)
}

// AddLocalForceAtPos applies an actor-frame force at a world position.
func (d *Dynamic) AddLocalForceAtPos(force, position mgl64.Vec3, mode ForceMode) error {
	return d.AddForceAtPos(d.pose.ApplyVector(force), position, mode)
}

// AddLocalForceAtLocalPos applies an actor-frame force at an actor-frame position.
func (d *Dynamic) AddLocalForceAtLocalPos(force, position mgl64.Vec3, mode ForceMode) error {
	return d.AddForceAtPos(d.pose.ApplyVector(force), d.pose.Apply(position), mode)
}

// SetLinearVelocity wakes the body.
func (d *Dynamic) SetLinearVelocity(velocity mgl64.Vec3) error {
	if !finiteVec(velocity) {
		return violation("linear velocity is not finite")
	}
	d.linearVelocity = velocity
	d.wake()
	return nil
}

// SetAngularVelocity wakes the body.
func (d *Dynamic) SetAngularVelocity(velocity mgl64.Vec3) error {
	if !finiteVec(velocity) {
		return violation("angular velocity is not finite")
	}
	d.angularVelocity = velocity
	d.wake()
	return nil
}

func (d *Dynamic) SetLinearMomentum(momentum mgl64.Vec3) error {
	return d.SetLinearVelocity(momentum.Mul(1.0 / d.mass))
}

func (d *Dynamic) SetAngularMomentum(momentum mgl64.Vec3) error {
	return d.SetAngularVelocity(d.GlobalInertiaTensorInverse().Mul3x1(momentum))
}

func checkInput(v mgl64.Vec3, mode ForceMode) error {
	if mode > ForceModeAcceleration {
		return violation("unknown force mode %d", mode)
	}
	if !finiteVec(v) {
		return violation("%s is not finite", mode)
	}
	return nil
}
