package kinetic

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/akmonengine/kinetic/actor"
	"github.com/akmonengine/kinetic/arena"
	"github.com/akmonengine/kinetic/mass"
	"github.com/go-gl/mathgl/mgl64"
)

type (
	BodyHandle  = arena.Handle[actor.Body]
	ShapeHandle = arena.Handle[actor.Shape]
)

// World owns every body and shape and advances them in fixed order.
// It is not safe for concurrent use.
type World struct {
	// Gravity acceleration (m/s², or N/kg)
	Gravity mgl64.Vec3
	Workers int

	Events Events

	settings actor.Settings
	logger   *slog.Logger

	bodies arena.Arena[actor.Body]
	// attached shapes, indexed by body slot
	bodyShapes [][]ShapeHandle

	shapes arena.Arena[actor.Shape]
	// number of bodies holding each shape, indexed by shape slot
	shapeRefs []int

	// islands of the last step, read by IsGroupSleeping
	islands islands
	steps   uint64
}

type Option func(*World)

// WithLogger replaces slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(w *World) {
		w.logger = logger
	}
}

// New returns an empty world. cfg is expected to be valid, see Config.Validate.
func New(cfg Config, opts ...Option) *World {
	w := &World{
		Gravity:  cfg.Gravity,
		Workers:  max(DEFAULT_WORKERS, cfg.Workers),
		Events:   NewEvents(),
		settings: cfg.settings(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Steps returns the number of completed steps.
func (w *World) Steps() uint64 { return w.steps }

// Len returns the number of live bodies.
func (w *World) Len() int { return w.bodies.Len() }

// Handles returns the live bodies in slot order.
func (w *World) Handles() []BodyHandle {
	handles := make([]BodyHandle, 0, w.bodies.Len())
	for h := range w.bodies.All() {
		handles = append(handles, h)
	}
	return handles
}

// ========== BODIES ==========

// Create builds a body from desc; its shapes are created in the world and
// attached to it. Nothing is created when an error is returned.
func (w *World) Create(desc actor.Desc) (BodyHandle, error) {
	body, err := actor.New(desc, w.settings)
	if err != nil {
		w.logger.Debug("body rejected", "name", desc.Name, "error", err)
		return BodyHandle{}, err
	}

	h := w.bodies.Insert(body)
	w.growBodyShapes()

	attached := make([]ShapeHandle, 0, len(desc.Shapes))
	for _, s := range desc.Shapes {
		sh := w.shapes.Insert(s)
		w.growShapeRefs()
		w.shapeRefs[sh.Index()] = 1
		attached = append(attached, sh)
	}
	w.bodyShapes[h.Index()] = attached

	w.logger.Debug("body created", "body", h, "name", desc.Name, "kind", body.Kind(), "shapes", len(attached))
	return h, nil
}

// Release destroys the body. Its shapes are detached and those no other body
// holds are destroyed too.
func (w *World) Release(h BodyHandle) error {
	body, ok := w.bodies.Remove(h)
	if !ok {
		return fmt.Errorf("release %s: %w", h, ErrStaleHandle)
	}

	for _, sh := range w.bodyShapes[h.Index()] {
		w.unref(sh)
	}
	w.bodyShapes[h.Index()] = nil
	w.Events.forget(h)

	w.logger.Debug("body released", "body", h, "name", body.Name())
	return nil
}

// Body returns the body behind h, whatever its kind.
func (w *World) Body(h BodyHandle) (actor.Body, error) {
	body, ok := w.bodies.Get(h)
	if !ok {
		return nil, fmt.Errorf("body %s: %w", h, ErrStaleHandle)
	}
	return body, nil
}

func (w *World) Static(h BodyHandle) (*actor.Static, error) {
	return as[*actor.Static](w, h)
}

func (w *World) Dynamic(h BodyHandle) (*actor.Dynamic, error) {
	return as[*actor.Dynamic](w, h)
}

func (w *World) Kinematic(h BodyHandle) (*actor.Kinematic, error) {
	return as[*actor.Kinematic](w, h)
}

// Rigid returns the part shared by dynamic and kinematic bodies.
func (w *World) Rigid(h BodyHandle) (*actor.Rigid, error) {
	body, err := w.Body(h)
	if err != nil {
		return nil, err
	}
	r := rigidOf(body)
	if r == nil {
		return nil, fmt.Errorf("body %s is %s: %w", h, body.Kind(), actor.ErrContractViolation)
	}
	return r, nil
}

func as[T actor.Body](w *World, h BodyHandle) (T, error) {
	var zero T
	body, err := w.Body(h)
	if err != nil {
		return zero, err
	}
	typed, ok := body.(T)
	if !ok {
		return zero, fmt.Errorf("body %s is %s: %w", h, body.Kind(), actor.ErrContractViolation)
	}
	return typed, nil
}

func rigidOf(body actor.Body) *actor.Rigid {
	switch b := body.(type) {
	case *actor.Dynamic:
		return &b.Rigid
	case *actor.Kinematic:
		return &b.Rigid
	}
	return nil
}

// ========== SHAPES ==========

// CreateShape stores a shape that is not attached to anything yet.
func (w *World) CreateShape(shape actor.Shape) (ShapeHandle, error) {
	if shape.Geometry == nil {
		return ShapeHandle{}, fmt.Errorf("shape %q has no geometry: %w", shape.Name, actor.ErrInvalidDescriptor)
	}
	if !shape.LocalPose.IsFinite() {
		return ShapeHandle{}, fmt.Errorf("shape %q local pose is not finite: %w", shape.Name, actor.ErrInvalidDescriptor)
	}
	sh := w.shapes.Insert(shape)
	w.growShapeRefs()
	w.shapeRefs[sh.Index()] = 0
	return sh, nil
}

// Shape returns the shape behind sh.
func (w *World) Shape(sh ShapeHandle) (actor.Shape, error) {
	shape, ok := w.shapes.Get(sh)
	if !ok {
		return actor.Shape{}, fmt.Errorf("shape %s: %w", sh, ErrStaleHandle)
	}
	return shape, nil
}

// Shapes returns a copy of the shapes attached to h, in attachment order.
func (w *World) Shapes(h BodyHandle) ([]ShapeHandle, error) {
	if !w.bodies.Contains(h) {
		return nil, fmt.Errorf("shapes of %s: %w", h, ErrStaleHandle)
	}
	return append([]ShapeHandle(nil), w.bodyShapes[h.Index()]...), nil
}

// AttachShape appends sh to the shapes of h. Mass properties are not
// recomputed, see UpdateMassFromShapes. Attaching twice is a no-op.
func (w *World) AttachShape(h BodyHandle, sh ShapeHandle) error {
	body, err := w.Body(h)
	if err != nil {
		return err
	}
	shape, err := w.Shape(sh)
	if err != nil {
		return err
	}
	if body.Kind() != actor.KindStatic && shape.Geometry.Type() == actor.ShapeTypePlane {
		return fmt.Errorf("attach plane to %s body %s: %w", body.Kind(), h, actor.ErrContractViolation)
	}

	list := w.bodyShapes[h.Index()]
	for _, attached := range list {
		if attached == sh {
			return nil
		}
	}
	w.bodyShapes[h.Index()] = append(list, sh)
	w.shapeRefs[sh.Index()]++
	w.wake(body)
	return nil
}

// DetachShape removes sh from h. A shape no body holds any more is destroyed.
func (w *World) DetachShape(h BodyHandle, sh ShapeHandle) error {
	body, err := w.Body(h)
	if err != nil {
		return err
	}
	list := w.bodyShapes[h.Index()]
	for i, attached := range list {
		if attached == sh {
			w.bodyShapes[h.Index()] = append(list[:i:i], list[i+1:]...)
			w.unref(sh)
			w.wake(body)
			return nil
		}
	}
	return fmt.Errorf("shape %s is not attached to %s: %w", sh, h, actor.ErrContractViolation)
}

// ReleaseShape destroys a shape that no body holds.
func (w *World) ReleaseShape(sh ShapeHandle) error {
	if !w.shapes.Contains(sh) {
		return fmt.Errorf("release shape %s: %w", sh, ErrStaleHandle)
	}
	if refs := w.shapeRefs[sh.Index()]; refs > 0 {
		return fmt.Errorf("release shape %s held by %d bodies: %w", sh, refs, ErrShapeInUse)
	}
	w.shapes.Remove(sh)
	return nil
}

// UpdateMassFromShapes recomputes the mass, centre of mass and inertia of h
// from its attached shapes. Exactly one of density and totalMass is non-zero.
func (w *World) UpdateMassFromShapes(h BodyHandle, density, totalMass float64) error {
	r, err := w.Rigid(h)
	if err != nil {
		return err
	}
	shapes := w.attachedShapes(h)
	p, err := mass.FromShapes(actor.MassShapes(shapes), density, totalMass)
	if err != nil {
		return fmt.Errorf("body %s: %w", h, err)
	}
	return r.SetMassProperties(p)
}

// Bounds returns the world box around the shapes of h. ok is false for a
// body without shapes.
func (w *World) Bounds(h BodyHandle) (box actor.AABB, ok bool, err error) {
	body, err := w.Body(h)
	if err != nil {
		return actor.AABB{}, false, err
	}
	pose := body.GlobalPose()
	for i, s := range w.attachedShapes(h) {
		b := s.Geometry.Bounds(pose.Mul(s.LocalPose))
		if i == 0 {
			box = b
		} else {
			box = box.Union(b)
		}
		ok = true
	}
	return box, ok, nil
}

func (w *World) attachedShapes(h BodyHandle) []actor.Shape {
	list := w.bodyShapes[h.Index()]
	shapes := make([]actor.Shape, 0, len(list))
	for _, sh := range list {
		if s, ok := w.shapes.Get(sh); ok {
			shapes = append(shapes, s)
		}
	}
	return shapes
}

func (w *World) unref(sh ShapeHandle) {
	if !w.shapes.Contains(sh) {
		return
	}
	w.shapeRefs[sh.Index()]--
	if w.shapeRefs[sh.Index()] <= 0 {
		w.shapeRefs[sh.Index()] = 0
		w.shapes.Remove(sh)
	}
}

func (w *World) growBodyShapes() {
	for len(w.bodyShapes) < w.bodies.Cap() {
		w.bodyShapes = append(w.bodyShapes, nil)
	}
}

func (w *World) growShapeRefs() {
	for len(w.shapeRefs) < w.shapes.Cap() {
		w.shapeRefs = append(w.shapeRefs, 0)
	}
}

// ========== FLAGS ==========

// RaiseBodyFlag raises flag on a rigid body. BodyFlagKinematic turns a
// dynamic body into a kinematic one under the same handle.
func (w *World) RaiseBodyFlag(h BodyHandle, flag actor.BodyFlag) error {
	r, err := w.Rigid(h)
	if err != nil {
		return err
	}
	if !flag.Valid() {
		return fmt.Errorf("body flag %#x: %w", uint32(flag), actor.ErrContractViolation)
	}
	if flag&actor.BodyFlagKinematic != 0 {
		if d, ok := w.mustBody(h).(*actor.Dynamic); ok {
			w.convert(h, d.ToKinematic(), actor.KindDynamic)
			r, _ = w.Rigid(h)
		}
	}
	if rest := flag &^ actor.BodyFlagKinematic; rest != 0 {
		return r.RaiseBodyFlag(rest)
	}
	return nil
}

// ClearBodyFlag clears flag on a rigid body. BodyFlagKinematic turns a
// kinematic body back into a dynamic one.
func (w *World) ClearBodyFlag(h BodyHandle, flag actor.BodyFlag) error {
	r, err := w.Rigid(h)
	if err != nil {
		return err
	}
	if !flag.Valid() {
		return fmt.Errorf("body flag %#x: %w", uint32(flag), actor.ErrContractViolation)
	}
	if flag&actor.BodyFlagKinematic != 0 {
		if k, ok := w.mustBody(h).(*actor.Kinematic); ok {
			w.convert(h, k.ToDynamic(), actor.KindKinematic)
			r, _ = w.Rigid(h)
		}
	}
	if rest := flag &^ actor.BodyFlagKinematic; rest != 0 {
		return r.ClearBodyFlag(rest)
	}
	return nil
}

func (w *World) ReadBodyFlag(h BodyHandle, flag actor.BodyFlag) (bool, error) {
	r, err := w.Rigid(h)
	if err != nil {
		return false, err
	}
	return r.ReadBodyFlag(flag), nil
}

func (w *World) convert(h BodyHandle, body actor.Body, from actor.Kind) {
	w.bodies.Set(h, body)
	w.Events.emit(KindChangeEvent{Body: h, From: from, To: body.Kind()})
	w.logger.Debug("body kind changed", "body", h, "name", body.Name(), "from", from, "to", body.Kind())
}

func (w *World) mustBody(h BodyHandle) actor.Body {
	body, _ := w.bodies.Get(h)
	return body
}

// ========== FORCES ==========

// AddForce applies force at the centre of mass of a dynamic body.
func (w *World) AddForce(h BodyHandle, force mgl64.Vec3, mode actor.ForceMode) error {
	d, err := w.Dynamic(h)
	if err != nil {
		return fmt.Errorf("add force: %w", err)
	}
	return d.AddForce(force, mode)
}

// AddTorque applies torque to a dynamic body.
func (w *World) AddTorque(h BodyHandle, torque mgl64.Vec3, mode actor.ForceMode) error {
	d, err := w.Dynamic(h)
	if err != nil {
		return fmt.Errorf("add torque: %w", err)
	}
	return d.AddTorque(torque, mode)
}

// ========== SLEEP ==========

func (w *World) IsSleeping(h BodyHandle) (bool, error) {
	r, err := w.Rigid(h)
	if err != nil {
		return false, err
	}
	return r.IsSleeping(), nil
}

// IsGroupSleeping reports whether h and every body it was linked to during
// the last step are asleep. A body that is awake never has a sleeping group.
func (w *World) IsGroupSleeping(h BodyHandle) (bool, error) {
	r, err := w.Rigid(h)
	if err != nil {
		return false, err
	}
	if !r.IsSleeping() {
		return false, nil
	}
	for _, m := range w.islands.groupOf(h) {
		body, ok := w.bodies.Get(m.handle)
		if !ok {
			continue
		}
		if other := rigidOf(body); other != nil && !other.IsSleeping() {
			return false, nil
		}
	}
	return true, nil
}

// WakeUp wakes h for at least counter steps; a negative counter uses the
// configured sleep frames.
func (w *World) WakeUp(h BodyHandle, counter int) error {
	r, err := w.Rigid(h)
	if err != nil {
		return err
	}
	r.WakeUp(counter)
	return nil
}

// PutToSleep sleeps h now. A kinematic body also drops its queued target.
func (w *World) PutToSleep(h BodyHandle) error {
	r, err := w.Rigid(h)
	if err != nil {
		return err
	}
	if k, ok := w.mustBody(h).(*actor.Kinematic); ok {
		k.PutToSleep()
		return nil
	}
	r.PutToSleep()
	return nil
}

// wake cancels a committed or pending sleep.
func (w *World) wake(body actor.Body) {
	if r := rigidOf(body); r != nil && (r.IsSleeping() || r.IsSleepPending()) {
		r.WakeUp(-1)
	}
}

// ========== STEP ==========

// Step advances the world by dt seconds. graph lists the contacts and joints
// found for this step; bodies linked together sleep and wake as a group.
func (w *World) Step(dt float64, graph Graph) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return fmt.Errorf("step %v: %w", dt, ErrInvalidTimestep)
	}
	w.Workers = max(DEFAULT_WORKERS, w.Workers)

	isl := w.buildIslands(graph)

	// Phase 1: sleep decisions taken at the end of the last step
	w.resolveIslands(isl)

	// Phase 2: forces, damping, kinematic targets and poses
	w.integrate(dt, isl)

	// Phase 3: sleep evaluation on the new velocities
	w.evaluateSleep(isl)

	// Phase 4: accumulators and kinematic velocities only last one step
	w.endStep(isl)

	w.islands = isl
	w.steps++

	w.Events.processSleepEvents(w.tracked(isl))
	w.Events.flush()
	return nil
}

func (w *World) integrate(dt float64, isl islands) {
	task(w.Workers, isl.dynamics, func(body *actor.Dynamic) {
		body.Integrate(dt, w.Gravity)
	})
	for _, k := range isl.kinematics {
		k.body.Integrate(dt)
	}
}

func (w *World) endStep(isl islands) {
	for _, d := range isl.dynamics {
		d.EndStep()
	}
	for _, k := range isl.kinematics {
		k.body.EndStep()
	}
}

func (w *World) tracked(isl islands) []trackedBody {
	bodies := make([]trackedBody, 0, len(isl.dynamics)+len(isl.kinematics))
	for _, members := range isl.members {
		for _, m := range members {
			bodies = append(bodies, trackedBody{handle: m.handle, body: m.body})
		}
	}
	for _, k := range isl.kinematics {
		bodies = append(bodies, trackedBody{handle: k.handle, body: k.body})
	}
	return bodies
}
