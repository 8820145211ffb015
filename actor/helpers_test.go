package actor

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// Helper functions
func vec3Equal(a, b mgl64.Vec3, tolerance float64) bool {
	return math.Abs(a.X()-b.X()) < tolerance &&
		math.Abs(a.Y()-b.Y()) < tolerance &&
		math.Abs(a.Z()-b.Z()) < tolerance
}

func floatEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) < tolerance
}

func mat3Equal(a, b mgl64.Mat3, tolerance float64) bool {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if math.Abs(a.At(i, j)-b.At(i, j)) >= tolerance {
				return false
			}
		}
	}
	return true
}

// explicitDesc describes a body with explicit mass and inertia, no damping.
func explicitDesc(mass float64, inertia mgl64.Vec3) Desc {
	body := NewBodyDesc()
	body.Mass = mass
	body.MassSpaceInertia = inertia
	body.AngularDamping = 0
	return Desc{Name: "body", GlobalPose: NewTransform(), Body: body}
}

func newDynamic(t *testing.T, mass float64, inertia mgl64.Vec3) *Dynamic {
	t.Helper()
	b, err := New(explicitDesc(mass, inertia), DefaultSettings())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	d, ok := b.(*Dynamic)
	if !ok {
		t.Fatalf("New() = %T, want *Dynamic", b)
	}
	return d
}

func newKinematic(t *testing.T) *Kinematic {
	t.Helper()
	desc := explicitDesc(1, mgl64.Vec3{1, 1, 1})
	desc.Body.Flags = BodyFlagKinematic
	b, err := New(desc, DefaultSettings())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	k, ok := b.(*Kinematic)
	if !ok {
		t.Fatalf("New() = %T, want *Kinematic", b)
	}
	return k
}

func sphereShape(radius float64, position mgl64.Vec3) ShapeDesc {
	return ShapeDesc{Geometry: &Sphere{Radius: radius}, LocalPose: TransformAt(position)}
}
