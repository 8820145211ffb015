package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Transform is a rigid transform: rotate, then translate.
// A zero Rotation is read as the identity.
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// NewTransform creates an identity transform
func NewTransform() Transform {
	return Transform{
		Position: mgl64.Vec3{0, 0, 0},
		Rotation: mgl64.QuatIdent(),
	}
}

// TransformAt returns a transform with the given position and no rotation.
func TransformAt(position mgl64.Vec3) Transform {
	return Transform{Position: position, Rotation: mgl64.QuatIdent()}
}

// Normalized returns t with a unit rotation.
func (t Transform) Normalized() Transform {
	t.Rotation = t.rotation()
	return t
}

func (t Transform) rotation() mgl64.Quat {
	if t.Rotation.Len() == 0 {
		return mgl64.QuatIdent()
	}
	return t.Rotation.Normalize()
}

// Apply maps a point from the local frame to the parent frame.
func (t Transform) Apply(point mgl64.Vec3) mgl64.Vec3 {
	return t.rotation().Rotate(point).Add(t.Position)
}

// ApplyVector rotates a direction from the local frame to the parent frame.
func (t Transform) ApplyVector(v mgl64.Vec3) mgl64.Vec3 {
	return t.rotation().Rotate(v)
}

// InverseApply maps a point from the parent frame to the local frame.
func (t Transform) InverseApply(point mgl64.Vec3) mgl64.Vec3 {
	return t.rotation().Conjugate().Rotate(point.Sub(t.Position))
}

// InverseApplyVector rotates a direction from the parent frame to the local frame.
func (t Transform) InverseApplyVector(v mgl64.Vec3) mgl64.Vec3 {
	return t.rotation().Conjugate().Rotate(v)
}

// Mul composes t with local: the result maps local's frame straight to t's parent.
func (t Transform) Mul(local Transform) Transform {
	r := t.rotation()
	return Transform{
		Position: r.Rotate(local.Position).Add(t.Position),
		Rotation: r.Mul(local.rotation()).Normalize(),
	}
}

// Inverse returns the transform mapping the parent frame back to the local frame.
func (t Transform) Inverse() Transform {
	inv := t.rotation().Conjugate()
	return Transform{
		Position: inv.Rotate(t.Position.Mul(-1)),
		Rotation: inv,
	}
}

// Matrix returns the rotation part as a 3x3 matrix.
func (t Transform) Matrix() mgl64.Mat3 {
	return t.rotation().Mat4().Mat3()
}

// IsFinite reports whether every component is a finite number and the
// rotation is not degenerate beyond the zero-means-identity convention.
func (t Transform) IsFinite() bool {
	for _, v := range t.Position {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	q := t.Rotation
	for _, v := range [4]float64{q.W, q.V[0], q.V[1], q.V[2]} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// ApproxEqual compares positions and orientations within epsilon.
// q and -q describe the same orientation.
func (t Transform) ApproxEqual(other Transform, epsilon float64) bool {
	if t.Position.Sub(other.Position).Len() > epsilon {
		return false
	}
	a, b := t.rotation(), other.rotation()
	return math.Abs(a.Dot(b)) >= 1-epsilon
}
