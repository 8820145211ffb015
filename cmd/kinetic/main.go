package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/akmonengine/kinetic"
	"github.com/akmonengine/kinetic/actor"
	"github.com/akmonengine/kinetic/mass"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/spf13/cobra"
)

var (
	configFile string
	verbose    bool

	dt    float64
	steps int

	radius      float64
	halfHeight  float64
	halfExtents []float64
	density     float64
	totalMass   float64
)

var (
	title = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	label = lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Width(18)
	value = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	good  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	warn  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "kinetic",
		Short:        "rigid body actor core",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	massCmd := &cobra.Command{
		Use:   "mass [sphere|box|capsule]",
		Short: "compute mass properties of a shape",
		Args:  cobra.ExactArgs(1),
		RunE:  massReport,
	}
	massCmd.Flags().Float64Var(&radius, "radius", 1, "sphere or capsule radius")
	massCmd.Flags().Float64Var(&halfHeight, "half-height", 0.5, "capsule half height")
	massCmd.Flags().Float64SliceVar(&halfExtents, "half-extents", []float64{0.5, 0.5, 0.5}, "box half extents x,y,z")
	massCmd.Flags().Float64Var(&density, "density", 1, "density (kg/m³)")
	massCmd.Flags().Float64Var(&totalMass, "mass", 0, "total mass (kg), replaces density")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the demo scene and plot it",
		RunE:  runScene,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().Float64Var(&dt, "dt", 1.0/60.0, "timestep")
	runCmd.Flags().IntVar(&steps, "steps", 240, "number of steps")

	configCmd := &cobra.Command{
		Use:   "config [path]",
		Short: "write the default configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := kinetic.SaveConfig(args[0], kinetic.DefaultConfig()); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}

	rootCmd.AddCommand(massCmd, runCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func geometry(name string) (actor.Geometry, error) {
	switch name {
	case "sphere":
		return &actor.Sphere{Radius: radius}, nil
	case "box":
		if len(halfExtents) != 3 {
			return nil, fmt.Errorf("half-extents needs 3 values, got %d", len(halfExtents))
		}
		return &actor.Box{HalfExtents: mgl64.Vec3{halfExtents[0], halfExtents[1], halfExtents[2]}}, nil
	case "capsule":
		return &actor.Capsule{Radius: radius, HalfHeight: halfHeight}, nil
	default:
		return nil, fmt.Errorf("unknown shape: %s", name)
	}
}

func massReport(cmd *cobra.Command, args []string) error {
	g, err := geometry(args[0])
	if err != nil {
		return err
	}
	d := density
	if totalMass != 0 {
		d = 0
	}

	shape := actor.Shape{Geometry: g, LocalPose: actor.NewTransform()}
	p, err := mass.FromShapes(actor.MassShapes([]actor.Shape{shape}), d, totalMass)
	if err != nil {
		return err
	}

	fmt.Println(title.Render(g.Type().String()))
	row := func(k, v string) {
		fmt.Println(label.Render(k) + value.Render(v))
	}
	row("volume", fmt.Sprintf("%.6f", p.Volume))
	row("density", fmt.Sprintf("%.6f", p.Density))
	row("mass", fmt.Sprintf("%.6f", p.Mass))
	row("center of mass", fmt.Sprintf("%.4f %.4f %.4f", p.CenterOfMass.X(), p.CenterOfMass.Y(), p.CenterOfMass.Z()))
	row("inertia", fmt.Sprintf("%.6f %.6f %.6f", p.Inertia.X(), p.Inertia.Y(), p.Inertia.Z()))
	return nil
}
