package actor

import (
	"math"

	"github.com/akmonengine/kinetic/mass"
	"github.com/go-gl/mathgl/mgl64"
)

// ShapeType represents the type of collision shape
type ShapeType int

const (
	ShapeTypeSphere ShapeType = iota
	ShapeTypeBox
	ShapeTypeCapsule
	ShapeTypePlane
)

func (t ShapeType) String() string {
	switch t {
	case ShapeTypeSphere:
		return "sphere"
	case ShapeTypeBox:
		return "box"
	case ShapeTypeCapsule:
		return "capsule"
	case ShapeTypePlane:
		return "plane"
	default:
		return "unknown"
	}
}

// Geometry is the shape data the actor core needs: volume moments for mass
// properties and bounds for the owning world. Intersection tests live with
// the collision system.
type Geometry interface {
	mass.Geometry
	Type() ShapeType
	// Bounds returns the world AABB of the geometry placed at pose.
	Bounds(pose Transform) AABB
}

// Shape is a geometry placed in its actor's frame. Shapes are owned by the
// world and referenced by handle from the actors they are attached to.
type Shape struct {
	Name      string
	Geometry  Geometry
	LocalPose Transform
}

// ShapeDesc describes a shape created together with an actor.
type ShapeDesc = Shape

// massShape converts s for the mass calculator.
func (s Shape) massShape() mass.Shape {
	pose := s.LocalPose.Normalized()
	return mass.Shape{Geometry: s.Geometry, Position: pose.Position, Rotation: pose.Rotation}
}

// MassShapes converts shapes for mass.FromShapes.
func MassShapes(shapes []Shape) []mass.Shape {
	out := make([]mass.Shape, len(shapes))
	for i, s := range shapes {
		out[i] = s.massShape()
	}
	return out
}

// Box represents an oriented box collision shape
// The box is defined by its half-extents (half-width, half-height, half-depth)
type Box struct {
	HalfExtents mgl64.Vec3
}

func (b *Box) Type() ShapeType { return ShapeTypeBox }

func (b *Box) Bounds(pose Transform) AABB {
	// Projected half-size is |R| · h
	m := pose.Matrix()
	var extent mgl64.Vec3
	for row := range 3 {
		for col := range 3 {
			extent[row] += math.Abs(m.At(row, col)) * b.HalfExtents[col]
		}
	}

	return AABB{Min: pose.Position.Sub(extent), Max: pose.Position.Add(extent)}
}

func (b *Box) Moments() (float64, mgl64.Vec3, mgl64.Mat3, bool) {
	hx, hy, hz := b.HalfExtents.X(), b.HalfExtents.Y(), b.HalfExtents.Z()
	// Volume = 8 * hx * hy * hz (full dimensions are 2*halfExtents)
	volume := 8.0 * hx * hy * hz

	// ∫x² over [-h, h] per unit cross-section gives V·h²/3
	covariance := mgl64.Diag3(mgl64.Vec3{hx * hx, hy * hy, hz * hz}.Mul(volume / 3.0))

	return volume, mgl64.Vec3{}, covariance, volume > 0
}

// Sphere represents a spherical collision shape
type Sphere struct {
	Radius float64
}

func (s *Sphere) Type() ShapeType { return ShapeTypeSphere }

// Bounds calculates the axis-aligned bounding box for the sphere
func (s *Sphere) Bounds(pose Transform) AABB {
	// Sphere AABB is not affected by rotation, only by position
	radiusVec := mgl64.Vec3{s.Radius, s.Radius, s.Radius}

	return AABB{
		Min: pose.Position.Sub(radiusVec),
		Max: pose.Position.Add(radiusVec),
	}
}

func (s *Sphere) Moments() (float64, mgl64.Vec3, mgl64.Mat3, bool) {
	// Volume of sphere = (4/3) * π * r³
	volume := (4.0 / 3.0) * math.Pi * math.Pow(s.Radius, 3)
	c := volume * s.Radius * s.Radius / 5.0

	return volume, mgl64.Vec3{}, mgl64.Diag3(mgl64.Vec3{c, c, c}), volume > 0
}

// Capsule is a cylinder capped by two hemispheres, its axis along local Y.
// HalfHeight is the half-length of the cylindrical part.
type Capsule struct {
	Radius     float64
	HalfHeight float64
}

func (c *Capsule) Type() ShapeType { return ShapeTypeCapsule }

func (c *Capsule) Bounds(pose Transform) AABB {
	tip := pose.ApplyVector(mgl64.Vec3{0, c.HalfHeight, 0})
	extent := mgl64.Vec3{math.Abs(tip.X()), math.Abs(tip.Y()), math.Abs(tip.Z())}.Add(mgl64.Vec3{c.Radius, c.Radius, c.Radius})

	return AABB{Min: pose.Position.Sub(extent), Max: pose.Position.Add(extent)}
}

func (c *Capsule) Moments() (float64, mgl64.Vec3, mgl64.Mat3, bool) {
	r, h := c.Radius, c.HalfHeight
	r2 := r * r

	cylinder := math.Pi * r2 * 2 * h
	sphere := (4.0 / 3.0) * math.Pi * r2 * r

	// Cylinder: radial r²/4, axial h²/3.
	// Caps: a full sphere split at ±h, each hemisphere centroid 3r/8 beyond the cut.
	radial := cylinder*r2/4 + sphere*r2/5
	axial := cylinder*h*h/3 + sphere*(h*h+0.75*h*r+r2/5)

	volume := cylinder + sphere
	return volume, mgl64.Vec3{}, mgl64.Diag3(mgl64.Vec3{radial, axial, radial}), volume > 0
}

// Plane represents an infinite plane collision shape
// The plane is defined by the equation: Normal · p = Distance, and the solid
// half space is Normal · p < Distance. Planes only belong to static actors.
type Plane struct {
	Normal   mgl64.Vec3 // Plane normal (must be normalized)
	Distance float64    // Plane constant (signed distance from origin)
}

func (p *Plane) Type() ShapeType { return ShapeTypePlane }

func (p *Plane) Bounds(pose Transform) AABB {
	const infinity = 1e10 // grande valeur pour les dimensions infinies

	normal := pose.ApplyVector(p.Normal)
	point := pose.Apply(p.Normal.Mul(p.Distance))

	min := mgl64.Vec3{-infinity, -infinity, -infinity}
	max := mgl64.Vec3{infinity, infinity, infinity}
	// Axis-aligned planes bound the solid side exactly
	for axis := range 3 {
		switch {
		case normal[axis] >= 1-1e-9:
			max[axis] = point[axis]
		case normal[axis] <= -1+1e-9:
			min[axis] = point[axis]
		}
	}

	return AABB{Min: min, Max: max}
}

// Moments reports no finite volume: a plane cannot carry mass.
func (p *Plane) Moments() (float64, mgl64.Vec3, mgl64.Mat3, bool) {
	return math.Inf(1), mgl64.Vec3{}, mgl64.Mat3{}, false
}
