package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Group is the 16 bit actor group read by collision-behaviour policy.
type Group uint16

// Desc describes an actor to create.
//
// A nil Body creates a Static actor. Otherwise the mass is specified in
// exactly one of three ways:
//
//  1. Density == 0, Body.Mass > 0, Body.MassSpaceInertia non-zero: explicit.
//  2. Density > 0, Shapes present, Body.Mass == 0, Body.MassSpaceInertia zero:
//     mass and inertia derived from the shapes.
//  3. Density == 0, Shapes present, Body.Mass > 0, Body.MassSpaceInertia zero:
//     inertia derived from the shapes, scaled to Body.Mass.
type Desc struct {
	Name       string
	GlobalPose Transform
	Body       *BodyDesc
	Density    float64
	Flags      ActorFlag
	Group      Group
	Shapes     []ShapeDesc
	UserData   any
}

// BodyDesc holds the dynamic state of a non-static actor.
// Use NewBodyDesc for defaults; negative sleep thresholds, a negative wake
// counter and a non-positive MaxAngularVelocity select the world defaults.
type BodyDesc struct {
	Mass             float64
	MassLocalPose    Transform
	MassSpaceInertia mgl64.Vec3

	LinearVelocity  mgl64.Vec3
	AngularVelocity mgl64.Vec3

	LinearDamping      float64
	AngularDamping     float64
	MaxAngularVelocity float64

	SleepLinearVelocity  float64
	SleepAngularVelocity float64
	WakeUpCounter        int

	SolverIterationCount uint32
	Flags                BodyFlag
}

// NewBodyDesc returns a BodyDesc with default settings and no mass.
func NewBodyDesc() *BodyDesc {
	return &BodyDesc{
		MassLocalPose:        NewTransform(),
		AngularDamping:       0.05,
		MaxAngularVelocity:   -1,
		SleepLinearVelocity:  -1,
		SleepAngularVelocity: -1,
		WakeUpCounter:        -1,
		SolverIterationCount: 4,
	}
}

// Kind returns the variant New will build from d.
func (d Desc) Kind() Kind {
	switch {
	case d.Body == nil:
		return KindStatic
	case d.Body.Flags&BodyFlagKinematic != 0:
		return KindKinematic
	default:
		return KindDynamic
	}
}

// Validate checks d without building anything. Errors wrap ErrInvalidDescriptor.
func (d Desc) Validate() error {
	if !d.GlobalPose.IsFinite() {
		return invalid("global pose is not finite")
	}
	if math.IsNaN(d.Density) || math.IsInf(d.Density, 0) || d.Density < 0 {
		return invalid("density %v must be finite and non-negative", d.Density)
	}
	for i, s := range d.Shapes {
		if s.Geometry == nil {
			return invalid("shape %d has no geometry", i)
		}
		if !s.LocalPose.IsFinite() {
			return invalid("shape %d local pose is not finite", i)
		}
		if d.Body != nil && s.Geometry.Type() == ShapeTypePlane {
			return invalid("shape %d: planes can only belong to static actors", i)
		}
	}

	if d.Body == nil {
		if len(d.Shapes) == 0 {
			return invalid("static actor needs at least one shape")
		}
		return nil
	}

	if err := d.Body.validate(); err != nil {
		return err
	}

	haveShapes := len(d.Shapes) > 0
	haveDensity := d.Density != 0
	haveMass := d.Body.Mass != 0
	haveTensor := d.Body.MassSpaceInertia != (mgl64.Vec3{})

	switch {
	case !haveDensity && haveMass && haveTensor:
	case haveShapes && haveDensity && !haveMass && !haveTensor:
	case haveShapes && !haveDensity && haveMass && !haveTensor:
	default:
		return invalid("mass specification (shapes=%t density=%t mass=%t inertia=%t) matches none of explicit, density+shapes, mass+shapes",
			haveShapes, haveDensity, haveMass, haveTensor)
	}

	return nil
}

func (b *BodyDesc) validate() error {
	if !finite(b.Mass) || b.Mass < 0 {
		return invalid("mass %v must be finite and non-negative", b.Mass)
	}
	for i, v := range b.MassSpaceInertia {
		if !finite(v) || v < 0 {
			return invalid("mass space inertia[%d] %v must be finite and non-negative", i, v)
		}
	}
	if !b.MassLocalPose.IsFinite() {
		return invalid("mass local pose is not finite")
	}
	if !finiteVec(b.LinearVelocity) || !finiteVec(b.AngularVelocity) {
		return invalid("initial velocity is not finite")
	}
	if !finite(b.LinearDamping) || b.LinearDamping < 0 || !finite(b.AngularDamping) || b.AngularDamping < 0 {
		return invalid("damping must be finite and non-negative")
	}
	if math.IsNaN(b.MaxAngularVelocity) || math.IsNaN(b.SleepLinearVelocity) || math.IsNaN(b.SleepAngularVelocity) {
		return invalid("velocity limits must be numbers")
	}
	if b.SolverIterationCount == 0 {
		return invalid("solver iteration count must be positive")
	}
	if b.Flags&^allBodyFlags != 0 {
		return invalid("unknown body flags %#x", uint32(b.Flags&^allBodyFlags))
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finiteVec(v mgl64.Vec3) bool {
	return finite(v[0]) && finite(v[1]) && finite(v[2])
}
