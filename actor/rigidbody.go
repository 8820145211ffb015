package actor

import (
	"fmt"
	"math"

	"github.com/akmonengine/kinetic/mass"
	"github.com/go-gl/mathgl/mgl64"
)

// Kind represents the variant of a body
type Kind uint8

const (
	// KindStatic bodies never move under simulation and have no mass
	KindStatic Kind = iota
	// KindDynamic bodies are affected by forces, gravity, and collisions
	KindDynamic
	// KindKinematic bodies follow targets queued by the user and push
	// dynamic bodies around without being pushed back
	KindKinematic
)

func (k Kind) String() string {
	switch k {
	case KindStatic:
		return "static"
	case KindDynamic:
		return "dynamic"
	case KindKinematic:
		return "kinematic"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Body is one of *Static, *Dynamic or *Kinematic.
// Operations that only make sense for some variants exist only on those types.
type Body interface {
	Kind() Kind
	Name() string
	GlobalPose() Transform
	SetGlobalPose(pose Transform) error
	Group() Group
	SetGroup(group Group)
	RaiseActorFlag(flag ActorFlag)
	ClearActorFlag(flag ActorFlag)
	ReadActorFlag(flag ActorFlag) bool

	isBody()
}

// Settings are the world-wide values a body falls back to.
type Settings struct {
	SleepLinearVelocity  float64
	SleepAngularVelocity float64
	// SleepFrames is the number of quiet steps before a body may sleep.
	SleepFrames        int
	MaxAngularVelocity float64
}

// DefaultSettings returns the settings used when a world has no configuration.
func DefaultSettings() Settings {
	return Settings{
		SleepLinearVelocity:  0.15,
		SleepAngularVelocity: 0.14,
		SleepFrames:          20,
		MaxAngularVelocity:   7,
	}
}

// Actor holds what every body has: a name, a pose, a group and actor flags.
type Actor struct {
	name  string
	pose  Transform
	group Group
	flags ActorFlag

	UserData any
}

func (a *Actor) Name() string        { return a.name }
func (a *Actor) SetName(name string) { a.name = name }

// GlobalPose returns the actor frame in world space.
func (a *Actor) GlobalPose() Transform { return a.pose }

func (a *Actor) GlobalPosition() mgl64.Vec3 { return a.pose.Position }

func (a *Actor) GlobalOrientation() mgl64.Quat { return a.pose.Rotation }

func (a *Actor) Group() Group         { return a.group }
func (a *Actor) SetGroup(group Group) { a.group = group }

func (a *Actor) RaiseActorFlag(flag ActorFlag)     { a.flags |= flag }
func (a *Actor) ClearActorFlag(flag ActorFlag)     { a.flags &^= flag }
func (a *Actor) ReadActorFlag(flag ActorFlag) bool { return flag != 0 && a.flags&flag == flag }

func (a *Actor) setPose(pose Transform) error {
	if !pose.IsFinite() {
		return violation("pose is not finite")
	}
	a.pose = pose.Normalized()
	return nil
}

// Static is an immovable body. It has no mass, velocity or sleep state.
type Static struct {
	Actor
}

func (s *Static) Kind() Kind { return KindStatic }
func (s *Static) isBody()    {}

// SetGlobalPose teleports the static body. Nothing is woken.
func (s *Static) SetGlobalPose(pose Transform) error {
	return s.setPose(pose)
}

// Mass is always zero for a static body.
func (s *Static) Mass() float64 { return 0 }

// Rigid is the state shared by Dynamic and Kinematic bodies.
type Rigid struct {
	Actor

	kind     Kind
	settings Settings

	mass          float64
	massLocalPose Transform
	inertia       mgl64.Vec3

	linearVelocity  mgl64.Vec3
	angularVelocity mgl64.Vec3

	linearDamping      float64
	angularDamping     float64
	maxAngularVelocity float64
	solverIterations   uint32

	flags BodyFlag
	sleep sleepState
}

func (r *Rigid) Kind() Kind { return r.kind }

// SetGlobalPose teleports the body and wakes it. Velocities are kept.
func (r *Rigid) SetGlobalPose(pose Transform) error {
	if err := r.setPose(pose); err != nil {
		return err
	}
	r.wake()
	return nil
}

func (r *Rigid) SetGlobalPosition(position mgl64.Vec3) error {
	pose := r.pose
	pose.Position = position
	return r.SetGlobalPose(pose)
}

func (r *Rigid) SetGlobalOrientation(rotation mgl64.Quat) error {
	pose := r.pose
	pose.Rotation = rotation
	return r.SetGlobalPose(pose)
}

// ========== MASS ==========

func (r *Rigid) Mass() float64 { return r.mass }

// SetMass changes the mass without touching the inertia tensor.
func (r *Rigid) SetMass(m float64) error {
	if !finite(m) || m <= 0 {
		return violation("mass %v must be positive", m)
	}
	r.mass = m
	r.wake()
	return nil
}

// MassSpaceInertiaTensor returns the principal moments in the mass frame.
func (r *Rigid) MassSpaceInertiaTensor() mgl64.Vec3 { return r.inertia }

func (r *Rigid) SetMassSpaceInertiaTensor(inertia mgl64.Vec3) error {
	for i, v := range inertia {
		if !finite(v) || v <= 0 {
			return violation("inertia[%d] %v must be positive", i, v)
		}
	}
	r.inertia = inertia
	r.wake()
	return nil
}

// SetMassProperties applies the result of the mass calculator.
func (r *Rigid) SetMassProperties(p mass.Properties) error {
	if !finite(p.Mass) || p.Mass <= 0 {
		return violation("mass %v must be positive", p.Mass)
	}
	for i, v := range p.Inertia {
		if !finite(v) || v <= 0 {
			return violation("inertia[%d] %v must be positive", i, v)
		}
	}
	r.mass = p.Mass
	r.inertia = p.Inertia
	r.massLocalPose = Transform{Position: p.CenterOfMass, Rotation: p.Orientation}.Normalized()
	r.wake()
	return nil
}

// CMassLocalPose returns the mass frame relative to the actor frame.
func (r *Rigid) CMassLocalPose() Transform { return r.massLocalPose }

// CMassGlobalPose returns the mass frame in world space.
func (r *Rigid) CMassGlobalPose() Transform { return r.pose.Mul(r.massLocalPose) }

func (r *Rigid) CMassGlobalPosition() mgl64.Vec3 { return r.pose.Apply(r.massLocalPose.Position) }

// SetCMassOffsetLocalPose moves the mass frame relative to the actor.
// The actor does not move.
func (r *Rigid) SetCMassOffsetLocalPose(pose Transform) error {
	if !pose.IsFinite() {
		return violation("mass pose is not finite")
	}
	r.massLocalPose = pose.Normalized()
	r.wake()
	return nil
}

func (r *Rigid) SetCMassOffsetLocalPosition(position mgl64.Vec3) error {
	pose := r.massLocalPose
	pose.Position = position
	return r.SetCMassOffsetLocalPose(pose)
}

func (r *Rigid) SetCMassOffsetLocalOrientation(rotation mgl64.Quat) error {
	return r.SetCMassOffsetLocalPose(Transform{Position: r.massLocalPose.Position, Rotation: rotation})
}

// SetCMassOffsetGlobalPose places the mass frame at a world pose without
// moving the actor.
func (r *Rigid) SetCMassOffsetGlobalPose(pose Transform) error {
	if !pose.IsFinite() {
		return violation("mass pose is not finite")
	}
	return r.SetCMassOffsetLocalPose(r.pose.Inverse().Mul(pose))
}

func (r *Rigid) SetCMassOffsetGlobalPosition(position mgl64.Vec3) error {
	return r.SetCMassOffsetLocalPosition(r.pose.InverseApply(position))
}

// SetCMassOffsetGlobalOrientation turns the mass frame to a world orientation
// without moving the actor or the centre of mass.
func (r *Rigid) SetCMassOffsetGlobalOrientation(rotation mgl64.Quat) error {
	return r.SetCMassOffsetGlobalPose(Transform{Position: r.CMassGlobalPosition(), Rotation: rotation})
}

// SetCMassGlobalPose moves the actor so that its mass frame lands on pose.
func (r *Rigid) SetCMassGlobalPose(pose Transform) error {
	if !pose.IsFinite() {
		return violation("mass pose is not finite")
	}
	return r.SetGlobalPose(pose.Normalized().Mul(r.massLocalPose.Inverse()))
}

func (r *Rigid) SetCMassGlobalPosition(position mgl64.Vec3) error {
	offset := r.pose.ApplyVector(r.massLocalPose.Position)
	return r.SetGlobalPosition(position.Sub(offset))
}

// SetCMassGlobalOrientation turns the actor about its centre of mass so that
// the mass frame reaches rotation.
func (r *Rigid) SetCMassGlobalOrientation(rotation mgl64.Quat) error {
	return r.SetCMassGlobalPose(Transform{Position: r.CMassGlobalPosition(), Rotation: rotation})
}

// GlobalInertiaTensor returns the inertia tensor in world axes.
func (r *Rigid) GlobalInertiaTensor() mgl64.Mat3 {
	// I_world = R * I_mass * R^T
	R := r.CMassGlobalPose().Matrix()
	return R.Mul3(mgl64.Diag3(r.inertia)).Mul3(R.Transpose())
}

func (r *Rigid) GlobalInertiaTensorInverse() mgl64.Mat3 {
	var inv mgl64.Vec3
	for i, v := range r.inertia {
		if v > 0 {
			inv[i] = 1 / v
		}
	}
	R := r.CMassGlobalPose().Matrix()
	return R.Mul3(mgl64.Diag3(inv)).Mul3(R.Transpose())
}

// ========== VELOCITY ==========

// LinearVelocity is the world-space velocity of the center of mass.
func (r *Rigid) LinearVelocity() mgl64.Vec3  { return r.linearVelocity }
func (r *Rigid) AngularVelocity() mgl64.Vec3 { return r.angularVelocity }

func (r *Rigid) LinearMomentum() mgl64.Vec3 { return r.linearVelocity.Mul(r.mass) }

func (r *Rigid) AngularMomentum() mgl64.Vec3 {
	return r.GlobalInertiaTensor().Mul3x1(r.angularVelocity)
}

// KineticEnergy returns the translational plus rotational energy.
func (r *Rigid) KineticEnergy() float64 {
	linear := 0.5 * r.mass * r.linearVelocity.Dot(r.linearVelocity)
	angular := 0.5 * r.angularVelocity.Dot(r.AngularMomentum())
	return linear + angular
}

// PointVelocity returns the velocity of a world point moving with the body.
func (r *Rigid) PointVelocity(point mgl64.Vec3) mgl64.Vec3 {
	arm := point.Sub(r.CMassGlobalPosition())
	return r.linearVelocity.Add(r.angularVelocity.Cross(arm))
}

// LocalPointVelocity is PointVelocity for a point given in the actor frame.
func (r *Rigid) LocalPointVelocity(point mgl64.Vec3) mgl64.Vec3 {
	return r.PointVelocity(r.pose.Apply(point))
}

// ========== DAMPING & LIMITS ==========

func (r *Rigid) LinearDamping() float64  { return r.linearDamping }
func (r *Rigid) AngularDamping() float64 { return r.angularDamping }

func (r *Rigid) SetLinearDamping(damping float64) error {
	if !finite(damping) || damping < 0 {
		return violation("linear damping %v must be non-negative", damping)
	}
	r.linearDamping = damping
	return nil
}

func (r *Rigid) SetAngularDamping(damping float64) error {
	if !finite(damping) || damping < 0 {
		return violation("angular damping %v must be non-negative", damping)
	}
	r.angularDamping = damping
	return nil
}

func (r *Rigid) MaxAngularVelocity() float64 { return r.maxAngularVelocity }

// SetMaxAngularVelocity sets the integration clamp. A non-positive value
// restores the world default.
func (r *Rigid) SetMaxAngularVelocity(limit float64) {
	if !(limit > 0) {
		limit = r.settings.MaxAngularVelocity
	}
	r.maxAngularVelocity = limit
}

func (r *Rigid) SolverIterationCount() uint32 { return r.solverIterations }

func (r *Rigid) SetSolverIterationCount(count uint32) error {
	if count == 0 {
		return violation("solver iteration count must be positive")
	}
	r.solverIterations = count
	return nil
}

// ========== FLAGS ==========

// ReadBodyFlag reports whether every bit of flag is raised.
func (r *Rigid) ReadBodyFlag(flag BodyFlag) bool {
	current := r.flags
	if r.kind == KindKinematic {
		current |= BodyFlagKinematic
	}
	return flag != 0 && current&flag == flag
}

// RaiseBodyFlag raises flag and wakes the body.
// BodyFlagKinematic changes the variant and must go through the owning world.
func (r *Rigid) RaiseBodyFlag(flag BodyFlag) error {
	if !flag.Valid() {
		return violation("unknown body flag %#x", uint32(flag))
	}
	if flag&BodyFlagKinematic != 0 {
		return violation("kinematic flag changes the body kind; use the world")
	}
	r.flags |= flag
	r.wake()
	return nil
}

func (r *Rigid) ClearBodyFlag(flag BodyFlag) error {
	if !flag.Valid() {
		return violation("unknown body flag %#x", uint32(flag))
	}
	if flag&BodyFlagKinematic != 0 {
		return violation("kinematic flag changes the body kind; use the world")
	}
	r.flags &^= flag
	r.wake()
	return nil
}

// Dynamic is a body integrated under forces.
//
// Velocity and momentum setters must not be used on bodies held by joints;
// the joint solver owns their velocity. This is not checked here.
type Dynamic struct {
	Rigid
	forces accumulator
}

func (d *Dynamic) isBody() {}

// Kinematic is a body moved only through MoveGlobalPose and friends.
type Kinematic struct {
	Rigid
	motion motionQueue
}

func (k *Kinematic) isBody() {}

// New builds a body from a validated descriptor.
// Errors wrap ErrInvalidDescriptor or mass.ErrDegenerateGeometry; nothing is
// built when an error is returned.
func New(desc Desc, settings Settings) (Body, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	base := Actor{
		name:     desc.Name,
		pose:     desc.GlobalPose.Normalized(),
		group:    desc.Group,
		flags:    desc.Flags,
		UserData: desc.UserData,
	}

	if desc.Body == nil {
		return &Static{Actor: base}, nil
	}

	b := desc.Body
	r := Rigid{
		Actor:            base,
		kind:             desc.Kind(),
		settings:         settings,
		linearVelocity:   b.LinearVelocity,
		angularVelocity:  b.AngularVelocity,
		linearDamping:    b.LinearDamping,
		angularDamping:   b.AngularDamping,
		solverIterations: b.SolverIterationCount,
		flags:            b.Flags &^ BodyFlagKinematic,
	}
	r.SetMaxAngularVelocity(b.MaxAngularVelocity)
	r.sleep = newSleepState(b.SleepLinearVelocity, b.SleepAngularVelocity, b.WakeUpCounter, settings)

	if b.MassSpaceInertia != (mgl64.Vec3{}) {
		r.mass = b.Mass
		r.inertia = b.MassSpaceInertia
		r.massLocalPose = b.MassLocalPose.Normalized()
		// A zero principal moment would make the inverse tensor meaningless.
		for i, v := range r.inertia {
			if v <= 0 {
				return nil, invalid("mass space inertia[%d] must be positive", i)
			}
		}
	} else {
		p, err := mass.FromShapes(MassShapes(desc.Shapes), desc.Density, b.Mass)
		if err != nil {
			return nil, fmt.Errorf("actor %q: %w", desc.Name, err)
		}
		r.mass = p.Mass
		r.inertia = p.Inertia
		r.massLocalPose = Transform{Position: p.CenterOfMass, Rotation: p.Orientation}.Normalized()
	}

	if r.kind == KindKinematic {
		return &Kinematic{Rigid: r}, nil
	}
	return &Dynamic{Rigid: r}, nil
}

// ToKinematic converts d. Velocities and accumulated forces are dropped.
func (d *Dynamic) ToKinematic() *Kinematic {
	r := d.Rigid
	r.kind = KindKinematic
	r.linearVelocity = mgl64.Vec3{}
	r.angularVelocity = mgl64.Vec3{}
	r.wake()
	return &Kinematic{Rigid: r}
}

// ToDynamic converts k. Any queued target is dropped.
func (k *Kinematic) ToDynamic() *Dynamic {
	r := k.Rigid
	r.kind = KindDynamic
	r.linearVelocity = mgl64.Vec3{}
	r.angularVelocity = mgl64.Vec3{}
	r.wake()
	return &Dynamic{Rigid: r}
}

func clampLength(v mgl64.Vec3, limit float64) mgl64.Vec3 {
	if l := v.Len(); l > limit && l > 0 {
		return v.Mul(limit / l)
	}
	return v
}

func expDamping(damping, dt float64) float64 {
	return math.Exp(-damping * dt)
}
