// Package mass derives mass, center of mass and principal inertia of a body
// from the volumes of its shapes.
//
// Every shape contributes its volume, its first moment (volume × centroid) and
// its second moment about the origin, all expressed in the actor frame. The
// sums do not depend on shape order. The resulting inertia tensor is
// diagonalised, so the mass frame is both centred on the centroid and aligned
// with the principal axes.
package mass

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrDegenerateGeometry reports a zero or infinite total volume, or an
	// inertia tensor with a non-positive principal value.
	ErrDegenerateGeometry = errors.New("degenerate geometry")
	// ErrInvalidMassSpec reports a density/total mass pair that does not hold
	// exactly one non-zero, non-negative value.
	ErrInvalidMassSpec = errors.New("invalid mass specification")
)

// Geometry is implemented by every shape that has a finite solid volume.
type Geometry interface {
	// Moments returns the volume, the centroid in the geometry frame and the
	// covariance ∫(x-c)(x-c)ᵀ dV about that centroid.
	// ok is false for geometries without a finite volume (planes).
	Moments() (volume float64, centroid mgl64.Vec3, covariance mgl64.Mat3, ok bool)
}

// Shape places a geometry in the actor frame.
type Shape struct {
	Geometry Geometry
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// Properties is the result of FromShapes.
type Properties struct {
	Mass    float64
	Density float64
	Volume  float64

	// CenterOfMass and Orientation form the mass frame relative to the actor.
	CenterOfMass mgl64.Vec3
	Orientation  mgl64.Quat

	// Inertia holds the principal moments, in the mass frame.
	Inertia mgl64.Vec3
	// Tensor is the inertia about the center of mass, in actor-frame axes.
	Tensor mgl64.Mat3
}

// FromShapes computes mass properties of shapes.
// Exactly one of density and totalMass must be non-zero; the other one is
// derived from the total volume.
func FromShapes(shapes []Shape, density, totalMass float64) (Properties, error) {
	if density < 0 || totalMass < 0 || math.IsNaN(density) || math.IsNaN(totalMass) {
		return Properties{}, fmt.Errorf("%w: density=%v totalMass=%v", ErrInvalidMassSpec, density, totalMass)
	}
	if (density == 0) == (totalMass == 0) {
		return Properties{}, fmt.Errorf("%w: exactly one of density (%v) and total mass (%v) must be set", ErrInvalidMassSpec, density, totalMass)
	}
	if len(shapes) == 0 {
		return Properties{}, fmt.Errorf("%w: no shapes", ErrDegenerateGeometry)
	}

	var (
		volume      float64
		firstMoment mgl64.Vec3
		secondAbout mgl64.Mat3 // about the actor origin
	)

	for i, s := range shapes {
		v, c, cov, ok := s.Geometry.Moments()
		if !ok || math.IsInf(v, 0) || math.IsNaN(v) {
			return Properties{}, fmt.Errorf("%w: shape %d has no finite volume", ErrDegenerateGeometry, i)
		}
		if v < 0 {
			return Properties{}, fmt.Errorf("%w: shape %d has negative volume", ErrDegenerateGeometry, i)
		}

		rot := normalizedRotation(s.Rotation)
		R := rot.Mat4().Mat3()
		centroid := rot.Rotate(c).Add(s.Position)

		volume += v
		firstMoment = firstMoment.Add(centroid.Mul(v))
		secondAbout = secondAbout.Add(R.Mul3(cov).Mul3(R.Transpose())).Add(outer(centroid, centroid).Mul(v))
	}

	if volume <= 0 {
		return Properties{}, fmt.Errorf("%w: total volume is zero", ErrDegenerateGeometry)
	}

	if density == 0 {
		density = totalMass / volume
	}
	m := density * volume

	center := firstMoment.Mul(1.0 / volume)
	covariance := secondAbout.Sub(outer(center, center).Mul(volume))
	tensor := mgl64.Ident3().Mul(covariance.Trace()).Sub(covariance).Mul(density)

	principal, orientation, err := Diagonalize(tensor)
	if err != nil {
		return Properties{}, err
	}

	return Properties{
		Mass:         m,
		Density:      density,
		Volume:       volume,
		CenterOfMass: center,
		Orientation:  orientation,
		Inertia:      principal,
		Tensor:       tensor,
	}, nil
}

// Diagonalize returns the principal values of the symmetric tensor and the
// rotation whose columns are the matching principal axes, so that
// tensor = R · diag(principal) · Rᵀ.
func Diagonalize(tensor mgl64.Mat3) (mgl64.Vec3, mgl64.Quat, error) {
	sym := mat.NewSymDense(3, []float64{
		tensor.At(0, 0), tensor.At(0, 1), tensor.At(0, 2),
		tensor.At(1, 0), tensor.At(1, 1), tensor.At(1, 2),
		tensor.At(2, 0), tensor.At(2, 1), tensor.At(2, 2),
	})

	var eig mat.EigenSym
	if ok := eig.Factorize(sym, true); !ok {
		return mgl64.Vec3{}, mgl64.Quat{}, fmt.Errorf("%w: eigen decomposition failed", ErrDegenerateGeometry)
	}

	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	var principal mgl64.Vec3
	for i, v := range values {
		if !(v > 0) || math.IsInf(v, 0) {
			return mgl64.Vec3{}, mgl64.Quat{}, fmt.Errorf("%w: principal inertia %d is %v", ErrDegenerateGeometry, i, v)
		}
		principal[i] = v
	}

	var axes mgl64.Mat3
	for col := range 3 {
		for row := range 3 {
			axes.Set(row, col, vectors.At(row, col))
		}
	}
	// Keep the frame right-handed so it is a proper rotation.
	if axes.Det() < 0 {
		for row := range 3 {
			axes.Set(row, 2, -axes.At(row, 2))
		}
	}

	return principal, mgl64.Mat4ToQuat(axes.Mat4()).Normalize(), nil
}

func outer(a, b mgl64.Vec3) mgl64.Mat3 {
	var m mgl64.Mat3
	for row := range 3 {
		for col := range 3 {
			m.Set(row, col, a[row]*b[col])
		}
	}
	return m
}

func normalizedRotation(q mgl64.Quat) mgl64.Quat {
	if q.Len() == 0 {
		return mgl64.QuatIdent()
	}
	return q.Normalize()
}
