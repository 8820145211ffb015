package kinetic

import (
	"io"
	"log/slog"

	"github.com/akmonengine/kinetic/actor"
	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("unionFind", func() {
	It("starts with every slot alone", func() {
		u := newUnionFind(4)
		for i := range 4 {
			Expect(u.find(i)).To(Equal(i))
		}
	})

	It("roots a group at its smallest slot", func() {
		u := newUnionFind(6)
		u.union(5, 3)
		u.union(3, 4)
		u.union(4, 1)

		for _, i := range []int{1, 3, 4, 5} {
			Expect(u.find(i)).To(Equal(1))
		}
		Expect(u.find(0)).To(Equal(0))
		Expect(u.find(2)).To(Equal(2))
	})

	It("ignores a union inside a group", func() {
		u := newUnionFind(3)
		u.union(0, 1)
		u.union(1, 0)
		Expect(u.find(1)).To(Equal(0))
	})
})

var _ = Describe("islands", func() {
	var w *World

	body := func(desc actor.Desc) BodyHandle {
		h, err := w.Create(desc)
		Expect(err).NotTo(HaveOccurred())
		return h
	}
	dynamic := func() BodyHandle {
		return body(actor.Desc{
			GlobalPose: actor.NewTransform(),
			Body:       actor.NewBodyDesc(),
			Density:    1,
			Shapes:     []actor.ShapeDesc{{Geometry: &actor.Sphere{Radius: 1}, LocalPose: actor.NewTransform()}},
		})
	}
	kinematic := func() BodyHandle {
		desc := actor.NewBodyDesc()
		desc.Flags = actor.BodyFlagKinematic
		return body(actor.Desc{
			GlobalPose: actor.NewTransform(),
			Body:       desc,
			Density:    1,
			Shapes:     []actor.ShapeDesc{{Geometry: &actor.Sphere{Radius: 1}, LocalPose: actor.NewTransform()}},
		})
	}
	static := func() BodyHandle {
		return body(actor.Desc{
			GlobalPose: actor.NewTransform(),
			Shapes:     []actor.ShapeDesc{{Geometry: &actor.Plane{Normal: mgl64.Vec3{0, 1, 0}}, LocalPose: actor.NewTransform()}},
		})
	}
	handles := func(members []islandMember) []BodyHandle {
		var hs []BodyHandle
		for _, m := range members {
			hs = append(hs, m.handle)
		}
		return hs
	}

	BeforeEach(func() {
		cfg := DefaultConfig()
		cfg.Gravity = mgl64.Vec3{}
		w = New(cfg, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	})

	Describe("buildIslands", func() {
		It("keeps unlinked dynamic bodies apart", func() {
			a, b := dynamic(), dynamic()
			isl := w.buildIslands(nil)

			Expect(isl.members).To(HaveLen(2))
			Expect(isl.groupOf(a)).To(HaveLen(1))
			Expect(isl.groupOf(b)).To(HaveLen(1))
			Expect(isl.dynamics).To(HaveLen(2))
		})

		It("joins chains of dynamic links in slot order", func() {
			a, b, c, d := dynamic(), dynamic(), dynamic(), dynamic()
			isl := w.buildIslands(Graph{{A: c, B: b}, {A: a, B: c, Kind: LinkJoint}})

			Expect(isl.members).To(HaveLen(2))
			Expect(handles(isl.groupOf(b))).To(Equal([]BodyHandle{a, b, c}))
			Expect(handles(isl.groupOf(d))).To(Equal([]BodyHandle{d}))
		})

		It("does not join through a static body", func() {
			a, ground, b := dynamic(), static(), dynamic()
			isl := w.buildIslands(Graph{{A: a, B: ground}, {A: ground, B: b}})

			Expect(isl.members).To(HaveLen(2))
			Expect(isl.groupOf(ground)).To(BeNil())
		})

		It("does not join through a kinematic body but records it as a neighbour", func() {
			a, mover, b := dynamic(), kinematic(), dynamic()
			isl := w.buildIslands(Graph{{A: a, B: mover}, {A: mover, B: b}})

			Expect(isl.members).To(HaveLen(2))
			Expect(isl.kinematics).To(HaveLen(1))
			k, err := w.Kinematic(mover)
			Expect(err).NotTo(HaveOccurred())
			Expect(isl.neighbours[isl.of[a.Index()]]).To(ConsistOf(k))
			Expect(isl.neighbours[isl.of[b.Index()]]).To(ConsistOf(k))
		})

		It("drops links to released bodies", func() {
			a, b := dynamic(), dynamic()
			Expect(w.Release(b)).To(Succeed())

			var isl islands
			Expect(func() { isl = w.buildIslands(Graph{{A: a, B: b}}) }).NotTo(Panic())
			Expect(handles(isl.groupOf(a))).To(Equal([]BodyHandle{a}))
			Expect(isl.groupOf(b)).To(BeNil())
		})
	})

	Describe("sleep decisions", func() {
		var a, b BodyHandle
		var da, db *actor.Dynamic

		BeforeEach(func() {
			a, b = dynamic(), dynamic()
			var err error
			da, err = w.Dynamic(a)
			Expect(err).NotTo(HaveOccurred())
			db, err = w.Dynamic(b)
			Expect(err).NotTo(HaveOccurred())
		})

		It("marks a quiet island pending, then commits it", func() {
			graph := Graph{{A: a, B: b}}
			da.WakeUp(1)
			db.WakeUp(1)

			isl := w.buildIslands(graph)
			w.evaluateSleep(isl)
			Expect(da.IsSleepPending()).To(BeTrue())
			Expect(db.IsSleepPending()).To(BeTrue())
			Expect(da.IsSleeping()).To(BeFalse())

			w.resolveIslands(w.buildIslands(graph))
			Expect(da.IsSleeping()).To(BeTrue())
			Expect(db.IsSleeping()).To(BeTrue())
		})

		It("keeps the whole island awake while one member moves", func() {
			graph := Graph{{A: a, B: b}}
			da.WakeUp(1)
			Expect(db.SetLinearVelocity(mgl64.Vec3{1, 0, 0})).To(Succeed())

			w.evaluateSleep(w.buildIslands(graph))
			Expect(da.WakeCounter()).To(Equal(0))
			Expect(da.IsSleepPending()).To(BeFalse())
			Expect(db.IsSleepPending()).To(BeFalse())
		})

		It("wakes a pending island when a member was woken in between", func() {
			graph := Graph{{A: a, B: b}}
			da.WakeUp(1)
			db.WakeUp(1)
			w.evaluateSleep(w.buildIslands(graph))

			db.WakeUp(-1)
			w.resolveIslands(w.buildIslands(graph))
			Expect(da.IsSleepPending()).To(BeFalse())
			Expect(da.IsSleeping()).To(BeFalse())
			Expect(da.WakeCounter()).To(Equal(w.settings.SleepFrames))
		})

		It("holds an island awake while a kinematic neighbour has a target", func() {
			mover := kinematic()
			k, err := w.Kinematic(mover)
			Expect(err).NotTo(HaveOccurred())
			da.PutToSleep()

			Expect(k.MoveGlobalPosition(mgl64.Vec3{1, 0, 0})).To(Succeed())
			w.resolveIslands(w.buildIslands(Graph{{A: mover, B: a}}))

			Expect(da.IsSleeping()).To(BeFalse())
			Expect(db.IsSleeping()).To(BeFalse())
		})

		It("does not sleep an island whose kinematic neighbour moved this step", func() {
			mover := kinematic()
			k, err := w.Kinematic(mover)
			Expect(err).NotTo(HaveOccurred())
			da.WakeUp(1)

			Expect(k.MoveGlobalPosition(mgl64.Vec3{1, 0, 0})).To(Succeed())
			isl := w.buildIslands(Graph{{A: a, B: mover}})
			k.Integrate(1.0 / 60.0)
			w.evaluateSleep(isl)

			Expect(k.Moved()).To(BeTrue())
			Expect(da.IsSleepPending()).To(BeFalse())
		})
	})

	Describe("World.Step", func() {
		It("puts a linked pair to sleep together", func() {
			a, b := dynamic(), dynamic()
			graph := Graph{{A: a, B: b}}

			for range w.settings.SleepFrames + 1 {
				Expect(w.Step(1.0/60.0, graph)).To(Succeed())
			}

			group, err := w.IsGroupSleeping(a)
			Expect(err).NotTo(HaveOccurred())
			Expect(group).To(BeTrue())
			Expect(handles(w.islands.groupOf(b))).To(Equal([]BodyHandle{a, b}))
		})
	})
})
