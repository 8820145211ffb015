package actor

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// =============================================================================
// Bounds Tests
// =============================================================================

func TestShapeBounds(t *testing.T) {
	quarterZ := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1})

	tests := []struct {
		name    string
		shape   Geometry
		pose    Transform
		wantMin mgl64.Vec3
		wantMax mgl64.Vec3
	}{
		{
			name:    "sphere at origin",
			shape:   &Sphere{Radius: 1},
			pose:    NewTransform(),
			wantMin: mgl64.Vec3{-1, -1, -1},
			wantMax: mgl64.Vec3{1, 1, 1},
		},
		{
			name:    "sphere translated",
			shape:   &Sphere{Radius: 0.5},
			pose:    TransformAt(mgl64.Vec3{1, 2, 3}),
			wantMin: mgl64.Vec3{0.5, 1.5, 2.5},
			wantMax: mgl64.Vec3{1.5, 2.5, 3.5},
		},
		{
			name:    "box identity",
			shape:   &Box{HalfExtents: mgl64.Vec3{1, 2, 3}},
			pose:    NewTransform(),
			wantMin: mgl64.Vec3{-1, -2, -3},
			wantMax: mgl64.Vec3{1, 2, 3},
		},
		{
			name:    "box quarter turn",
			shape:   &Box{HalfExtents: mgl64.Vec3{1, 2, 3}},
			pose:    Transform{Rotation: quarterZ},
			wantMin: mgl64.Vec3{-2, -1, -3},
			wantMax: mgl64.Vec3{2, 1, 3},
		},
		{
			name:    "box 45 degrees",
			shape:   &Box{HalfExtents: mgl64.Vec3{1, 1, 1}},
			pose:    Transform{Rotation: mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{0, 0, 1})},
			wantMin: mgl64.Vec3{-math.Sqrt2, -math.Sqrt2, -1},
			wantMax: mgl64.Vec3{math.Sqrt2, math.Sqrt2, 1},
		},
		{
			name:    "capsule upright",
			shape:   &Capsule{Radius: 0.5, HalfHeight: 1},
			pose:    NewTransform(),
			wantMin: mgl64.Vec3{-0.5, -1.5, -0.5},
			wantMax: mgl64.Vec3{0.5, 1.5, 0.5},
		},
		{
			name:    "capsule lying",
			shape:   &Capsule{Radius: 0.5, HalfHeight: 1},
			pose:    Transform{Position: mgl64.Vec3{0, 1, 0}, Rotation: quarterZ},
			wantMin: mgl64.Vec3{-1.5, 0.5, -0.5},
			wantMax: mgl64.Vec3{1.5, 1.5, 0.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			box := tt.shape.Bounds(tt.pose)
			if !vec3Equal(box.Min, tt.wantMin, 1e-9) {
				t.Errorf("Min = %v, want %v", box.Min, tt.wantMin)
			}
			if !vec3Equal(box.Max, tt.wantMax, 1e-9) {
				t.Errorf("Max = %v, want %v", box.Max, tt.wantMax)
			}
		})
	}
}

func TestPlaneBounds(t *testing.T) {
	plane := &Plane{Normal: mgl64.Vec3{0, 1, 0}, Distance: 2}
	box := plane.Bounds(NewTransform())

	if box.Max.Y() != 2 {
		t.Errorf("Max.Y = %v, want 2", box.Max.Y())
	}
	if box.Min.Y() > -1e9 || box.Max.X() < 1e9 || box.Min.Z() > -1e9 {
		t.Errorf("plane bounds should be unbounded on the other axes: %v", box)
	}

	tilted := plane.Bounds(Transform{Rotation: mgl64.QuatRotate(0.3, mgl64.Vec3{1, 0, 0})})
	if tilted.Max.Y() < 1e9 {
		t.Error("a tilted plane is unbounded on every axis")
	}
}

// =============================================================================
// Moments Tests
// =============================================================================

func TestShapeMoments(t *testing.T) {
	tests := []struct {
		name       string
		shape      Geometry
		wantVolume float64
		wantCov    mgl64.Vec3
	}{
		{
			name:       "unit sphere",
			shape:      &Sphere{Radius: 1},
			wantVolume: 4.0 / 3.0 * math.Pi,
			wantCov:    mgl64.Vec3{1, 1, 1}.Mul(4.0 / 15.0 * math.Pi),
		},
		{
			name:       "box 2x4x6",
			shape:      &Box{HalfExtents: mgl64.Vec3{1, 2, 3}},
			wantVolume: 48,
			wantCov:    mgl64.Vec3{16, 64, 144},
		},
		{
			name:       "capsule without cylinder is a sphere",
			shape:      &Capsule{Radius: 1, HalfHeight: 0},
			wantVolume: 4.0 / 3.0 * math.Pi,
			wantCov:    mgl64.Vec3{1, 1, 1}.Mul(4.0 / 15.0 * math.Pi),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			volume, centroid, covariance, ok := tt.shape.Moments()
			if !ok {
				t.Fatal("Moments() ok = false")
			}
			if !floatEqual(volume, tt.wantVolume, 1e-9) {
				t.Errorf("volume = %v, want %v", volume, tt.wantVolume)
			}
			if centroid != (mgl64.Vec3{}) {
				t.Errorf("centroid = %v, want origin", centroid)
			}
			if !mat3Equal(covariance, mgl64.Diag3(tt.wantCov), 1e-9) {
				t.Errorf("covariance = %v, want diag %v", covariance, tt.wantCov)
			}
		})
	}
}

func TestPlaneMoments(t *testing.T) {
	if _, _, _, ok := (&Plane{Normal: mgl64.Vec3{0, 1, 0}}).Moments(); ok {
		t.Error("a plane has no finite volume")
	}
}

func TestMassShapes(t *testing.T) {
	shapes := []Shape{
		{Geometry: &Sphere{Radius: 1}, LocalPose: TransformAt(mgl64.Vec3{1, 0, 0})},
		{Geometry: &Box{HalfExtents: mgl64.Vec3{1, 1, 1}}},
	}

	out := MassShapes(shapes)
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	if out[0].Position != (mgl64.Vec3{1, 0, 0}) {
		t.Errorf("Position = %v", out[0].Position)
	}
	// zero rotation is the identity
	if out[1].Rotation != mgl64.QuatIdent() {
		t.Errorf("Rotation = %v, want identity", out[1].Rotation)
	}
}

func TestShapeType_String(t *testing.T) {
	for shape, want := range map[Geometry]string{
		&Sphere{}:  "sphere",
		&Box{}:     "box",
		&Capsule{}: "capsule",
		&Plane{}:   "plane",
	} {
		if got := shape.Type().String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}

// =============================================================================
// AABB Tests
// =============================================================================

func TestAABBOverlaps(t *testing.T) {
	unit := AABB{Min: mgl64.Vec3{0, 0, 0}, Max: mgl64.Vec3{1, 1, 1}}

	tests := []struct {
		name  string
		other AABB
		want  bool
	}{
		{"identical", unit, true},
		{"partial on X", AABB{Min: mgl64.Vec3{0.5, 0, 0}, Max: mgl64.Vec3{2, 1, 1}}, true},
		{"touching faces", AABB{Min: mgl64.Vec3{1, 0, 0}, Max: mgl64.Vec3{2, 1, 1}}, true},
		{"contained", AABB{Min: mgl64.Vec3{0.25, 0.25, 0.25}, Max: mgl64.Vec3{0.75, 0.75, 0.75}}, true},
		{"separated on Y", AABB{Min: mgl64.Vec3{0, 2, 0}, Max: mgl64.Vec3{1, 3, 1}}, false},
		{"separated on Z", AABB{Min: mgl64.Vec3{0, 0, -2}, Max: mgl64.Vec3{1, 1, -1}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := unit.Overlaps(tt.other); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
			if got := tt.other.Overlaps(unit); got != tt.want {
				t.Errorf("Overlaps() symmetry = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAABBUnionCenter(t *testing.T) {
	a := AABB{Min: mgl64.Vec3{0, 0, 0}, Max: mgl64.Vec3{1, 1, 1}}
	b := AABB{Min: mgl64.Vec3{-1, 2, 0.5}, Max: mgl64.Vec3{0, 3, 4}}

	u := a.Union(b)
	if u.Min != (mgl64.Vec3{-1, 0, 0}) || u.Max != (mgl64.Vec3{1, 3, 4}) {
		t.Errorf("Union() = %v", u)
	}
	if u.Center() != (mgl64.Vec3{0, 1.5, 2}) {
		t.Errorf("Center() = %v", u.Center())
	}
}
