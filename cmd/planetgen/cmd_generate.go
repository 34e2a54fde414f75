package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"planetgenerator/core"
	"planetgenerator/export"
	"planetgenerator/planet"
)

type generateFlags struct {
	seed      int64
	radius    float64
	gridSize  int
	boxSize   float64
	isoLevel  float64
	seaLevel  float64
	beachBand float64
	foamBand  float64
	noise     string

	format  string
	out     string
	workers int
	timeout time.Duration
}

func (a *app) generateCmd() *cobra.Command {
	f := &generateFlags{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a planet mesh and print its statistics",
		Long: `Generates one planet from the configured parameters, overridden by any
flags given, prints a summary and optionally writes the mesh.

Example:
  planetgen generate --seed 7 --grid-size 96 --format obj --out planet.obj`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGenerate(cmd, f)
		},
	}

	fl := cmd.Flags()
	fl.Int64Var(&f.seed, "seed", 0, "Seed, reduced modulo 2^32")
	fl.Float64Var(&f.radius, "radius", 0, "Nominal planet radius")
	fl.IntVar(&f.gridSize, "grid-size", 0, "Lattice points per axis (>= 2)")
	fl.Float64Var(&f.boxSize, "box-size", 0, "Side of the sampled cube")
	fl.Float64Var(&f.isoLevel, "iso-level", 0, "Iso value of the extracted surface")
	fl.Float64Var(&f.seaLevel, "sea-level", 0, "Sea level above the radius, world units")
	fl.Float64Var(&f.beachBand, "beach-band", 0, "Half width of the shallow-water band")
	fl.Float64Var(&f.foamBand, "foam-band", 0, "Width of the surf highlight")
	fl.StringVar(&f.noise, "noise", "", "Noise basis: gradient or opensimplex")
	fl.StringVarP(&f.format, "format", "f", "obj", "Output format: obj or json")
	fl.StringVarP(&f.out, "out", "o", "", "Write the mesh to this file, - for stdout")
	fl.IntVar(&f.workers, "workers", 0, "Slices processed in parallel (0 = all CPUs)")
	fl.DurationVar(&f.timeout, "timeout", 5*time.Minute, "Abort generation after this long")
	return cmd
}

// params overlays the flags the user actually set on the configured params.
func (f *generateFlags) params(cmd *cobra.Command, p core.PlanetParams) core.PlanetParams {
	fl := cmd.Flags()
	if fl.Changed("seed") {
		p.Seed = core.SeedFrom(f.seed)
	}
	if fl.Changed("radius") {
		p.Radius = f.radius
	}
	if fl.Changed("grid-size") {
		p.GridSize = f.gridSize
	}
	if fl.Changed("box-size") {
		p.BoxSize = f.boxSize
	}
	if fl.Changed("iso-level") {
		p.IsoLevel = f.isoLevel
	}
	if fl.Changed("sea-level") {
		p.SeaLevelWorld = f.seaLevel
	}
	if fl.Changed("beach-band") {
		p.BeachBand = f.beachBand
	}
	if fl.Changed("foam-band") {
		p.FoamBand = f.foamBand
	}
	if fl.Changed("noise") {
		p.Noise = core.NoiseBasis(f.noise)
	}
	return p
}

func (a *app) runGenerate(cmd *cobra.Command, f *generateFlags) error {
	format := strings.ToLower(f.format)
	if format != "obj" && format != "json" {
		return fmt.Errorf("unknown format %q (want obj or json)", f.format)
	}

	p := f.params(cmd, a.settings.Params())
	palette, err := a.settings.Palette.Parse()
	if err != nil {
		return err
	}

	a.logger.Info("Generating planet",
		zap.Uint32("seed", p.Seed),
		zap.Int("gridSize", p.GridSize),
		zap.Int("approxTriangles", p.ApproximateTriangles()))

	ctx, cancel := context.WithTimeout(cmd.Context(), f.timeout)
	defer cancel()

	gen := planet.NewGenerator(a.logger, planet.WithWorkers(f.workers), planet.WithPalette(palette))
	m, err := gen.Generate(ctx, p)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	stats := planet.Summarize(m, p)
	report := cmd.OutOrStdout()
	if f.out == "-" {
		report = cmd.ErrOrStderr()
	}
	printStats(report, p, stats)

	switch f.out {
	case "":
		return nil
	case "-":
		return writeMesh(cmd.OutOrStdout(), format, m, p, a.settings.Planet.AtmosphereThickness)
	}

	if dir := filepath.Dir(f.out); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	file, err := os.Create(f.out)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if err := writeMesh(file, format, m, p, a.settings.Planet.AtmosphereThickness); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close output: %w", err)
	}
	a.logger.Info("Mesh written", zap.String("path", f.out), zap.String("format", format))
	return nil
}

func writeMesh(w io.Writer, format string, m *core.GeneratedMesh, p core.PlanetParams, atmosphere float64) error {
	if format == "json" {
		return export.WriteJSON(w, export.NewMeshData(m, p, atmosphere))
	}
	return export.WriteOBJ(w, m, fmt.Sprintf("planetgen seed=%d gridSize=%d radius=%g", p.Seed, p.GridSize, p.Radius))
}

func printStats(w io.Writer, p core.PlanetParams, s planet.Stats) {
	fmt.Fprintf(w, "seed %d, grid %d: %d triangles, %d vertices\n", p.Seed, p.GridSize, s.Triangles, s.Vertices)
	if s.Triangles == 0 {
		fmt.Fprintln(w, "empty mesh: no surface at this iso level")
		return
	}
	fmt.Fprintf(w, "surface radius %.4f..%.4f, land %.1f%%\n", s.MinRadius, s.MaxRadius, 100*s.LandFraction)
	fmt.Fprintf(w, "highest point %.4f above radius at %.2f°, %.2f°\n",
		s.Peak.Alt, core.RadiansToDegrees(s.Peak.Lat), core.RadiansToDegrees(s.Peak.Lon))
}
