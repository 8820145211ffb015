package main

import (
	"fmt"
	"log/slog"

	"github.com/akmonengine/kinetic"
	"github.com/akmonengine/kinetic/actor"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
)

const pusherSpeed = 2.0

type scene struct {
	world *kinetic.World

	ground, ball, crate, tail, pusher kinetic.BodyHandle
}

func newScene(cfg kinetic.Config) (*scene, error) {
	s := &scene{world: kinetic.New(cfg, kinetic.WithLogger(slog.Default()))}

	floating := func(name string, position mgl64.Vec3, g actor.Geometry, density float64) actor.Desc {
		body := actor.NewBodyDesc()
		body.Flags = actor.BodyFlagDisableGravity
		return actor.Desc{
			Name:       name,
			GlobalPose: actor.TransformAt(position),
			Body:       body,
			Density:    density,
			Shapes:     []actor.ShapeDesc{{Name: name, Geometry: g, LocalPose: actor.NewTransform()}},
		}
	}

	ground := actor.Desc{
		Name:       "ground",
		GlobalPose: actor.NewTransform(),
		Shapes:     []actor.ShapeDesc{{Name: "ground", Geometry: &actor.Plane{Normal: mgl64.Vec3{0, 1, 0}}, LocalPose: actor.NewTransform()}},
	}

	ball := floating("ball", mgl64.Vec3{0, 4, 0}, &actor.Sphere{Radius: 0.5}, 1000)
	ball.Body.LinearVelocity = mgl64.Vec3{3, 0, 0}
	ball.Body.LinearDamping = 1.5

	crate := floating("crate", mgl64.Vec3{4, 0.5, 0}, &actor.Box{HalfExtents: mgl64.Vec3{0.5, 0.5, 0.5}}, 500)
	crate.Body.LinearDamping = 0.8
	tail := floating("tail", mgl64.Vec3{5.5, 0.5, 0}, &actor.Sphere{Radius: 0.25}, 500)
	tail.Body.LinearDamping = 0.8

	pusher := floating("pusher", mgl64.Vec3{0, 0.5, 0}, &actor.Box{HalfExtents: mgl64.Vec3{0.25, 0.5, 0.5}}, 800)
	pusher.Body.Flags |= actor.BodyFlagKinematic

	for _, c := range []struct {
		handle *kinetic.BodyHandle
		desc   actor.Desc
	}{
		{&s.ground, ground},
		{&s.ball, ball},
		{&s.crate, crate},
		{&s.tail, tail},
		{&s.pusher, pusher},
	} {
		h, err := s.world.Create(c.desc)
		if err != nil {
			return nil, err
		}
		*c.handle = h
	}

	return s, nil
}

// graph links the crate and its tail, and the pusher to the crate while
// their boxes overlap with the pusher behind. Overlapping also hands the pusher's speed to the
// crate, which stands in for a contact solver.
func (s *scene) graph() (kinetic.Graph, error) {
	graph := kinetic.Graph{{A: s.crate, B: s.tail, Kind: kinetic.LinkJoint}}

	pusherBox, _, err := s.world.Bounds(s.pusher)
	if err != nil {
		return nil, err
	}
	crateBox, _, err := s.world.Bounds(s.crate)
	if err != nil {
		return nil, err
	}
	// the pusher only drives the crate from behind
	if !pusherBox.Overlaps(crateBox) || pusherBox.Center().X() > crateBox.Center().X() {
		return graph, nil
	}

	graph = append(graph, kinetic.Link{A: s.pusher, B: s.crate, Kind: kinetic.LinkContact})
	crate, err := s.world.Dynamic(s.crate)
	if err != nil {
		return nil, err
	}
	if dv := pusherSpeed - crate.LinearVelocity().X(); dv > 0 {
		if err := crate.AddForce(mgl64.Vec3{dv, 0, 0}, actor.ForceModeVelocityChange); err != nil {
			return nil, err
		}
	}
	return graph, nil
}

func (s *scene) step(i int) error {
	pusher, err := s.world.Kinematic(s.pusher)
	if err != nil {
		return err
	}
	// the pusher stops after a third of the run
	if i < steps/3 {
		next := pusher.GlobalPosition().Add(mgl64.Vec3{pusherSpeed * dt, 0, 0})
		if err := pusher.MoveGlobalPosition(next); err != nil {
			return err
		}
	}

	graph, err := s.graph()
	if err != nil {
		return err
	}
	return s.world.Step(dt, graph)
}

func runScene(cmd *cobra.Command, args []string) error {
	cfg := kinetic.DefaultConfig()
	if configFile != "" {
		loaded, err := kinetic.LoadConfig(configFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	s, err := newScene(cfg)
	if err != nil {
		return err
	}

	s.world.Events.Subscribe(kinetic.ON_SLEEP, func(event kinetic.Event) {
		e := event.(kinetic.SleepEvent)
		body, _ := s.world.Body(e.Body)
		slog.Info("sleep", "step", s.world.Steps(), "body", body.Name())
	})
	s.world.Events.Subscribe(kinetic.ON_WAKE, func(event kinetic.Event) {
		e := event.(kinetic.WakeEvent)
		body, _ := s.world.Body(e.Body)
		slog.Info("wake", "step", s.world.Steps(), "body", body.Name())
	})

	ballSpeed := make([]float64, 0, steps)
	crateX := make([]float64, 0, steps)
	asleep := make([]float64, 0, steps)

	for i := range steps {
		if err := s.step(i); err != nil {
			return err
		}

		ball, err := s.world.Dynamic(s.ball)
		if err != nil {
			return err
		}
		crate, err := s.world.Dynamic(s.crate)
		if err != nil {
			return err
		}
		ballSpeed = append(ballSpeed, ball.LinearVelocity().Len())
		crateX = append(crateX, crate.GlobalPosition().X())

		sleeping := 0
		for _, h := range []kinetic.BodyHandle{s.ball, s.crate, s.tail, s.pusher} {
			if ok, _ := s.world.IsSleeping(h); ok {
				sleeping++
			}
		}
		asleep = append(asleep, float64(sleeping))
	}

	fmt.Println(title.Render(fmt.Sprintf("%d steps of %.4fs", steps, dt)))
	fmt.Println()
	for _, plot := range []struct {
		data    []float64
		caption string
	}{
		{ballSpeed, "ball speed (m/s)"},
		{crateX, "crate x (m)"},
		{asleep, "sleeping bodies"},
	} {
		fmt.Println(asciigraph.Plot(plot.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(plot.caption),
		))
		fmt.Println()
	}

	return s.report()
}

func (s *scene) report() error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("body", "kind", "position", "speed", "state")

	for _, h := range s.world.Handles() {
		body, err := s.world.Body(h)
		if err != nil {
			return err
		}
		p := body.GlobalPose().Position
		speed, state := "-", "-"
		if r, err := s.world.Rigid(h); err == nil {
			speed = fmt.Sprintf("%.3f", r.LinearVelocity().Len())
			state = good.Render("awake")
			if r.IsSleeping() {
				state = warn.Render("asleep")
			}
		}
		t.Row(body.Name(), body.Kind().String(), fmt.Sprintf("%.2f %.2f %.2f", p.X(), p.Y(), p.Z()), speed, state)
	}

	fmt.Println(t)
	return nil
}
