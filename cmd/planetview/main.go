// Command planetview opens a native window showing a generated planet.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"planetgenerator/config"
	"planetgenerator/core"
	"planetgenerator/logging"
	"planetgenerator/planet"
	"planetgenerator/rendering"
)

func init() {
	// raylib and OpenGL calls must come from the main thread
	runtime.LockOSThread()
}

func main() {
	var (
		configPath string
		verbose    bool
		seed       int64
		gridSize   int
		width      int
		height     int
	)

	root := &cobra.Command{
		Use:          "planetview",
		Short:        "Preview a generated planet in a native window",
		Long:         "Keys: N/P next or previous seed, W toggle water and atmosphere, mouse orbits.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := config.Load(configPath)
			if err != nil {
				return err
			}
			ls := s.Logging
			if verbose {
				ls = ls.Verbose()
			}
			logger, err := logging.New(ls)
			if err != nil {
				return err
			}
			defer logger.Sync()

			fl := cmd.Flags()
			if fl.Changed("seed") {
				s.Planet.Seed = core.SeedFrom(seed)
			}
			if fl.Changed("grid-size") {
				s.Planet.GridSize = gridSize
			}
			if fl.Changed("width") {
				s.Viewer.Width = width
			}
			if fl.Changed("height") {
				s.Viewer.Height = height
			}

			palette, err := s.Palette.Parse()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			gen := planet.NewGenerator(logger, planet.WithWorkers(s.Server.Workers), planet.WithPalette(palette))
			logger.Info("Opening viewer",
				zap.Uint32("seed", s.Planet.Seed),
				zap.Int("gridSize", s.Planet.GridSize),
				zap.Int("approxTriangles", s.ApproximateTriangles()))
			return rendering.NewViewer(logger, gen, s.Params(), s.Viewer, s.Planet.AtmosphereThickness).Run(ctx)
		},
	}

	fl := root.Flags()
	fl.StringVarP(&configPath, "config", "c", config.DefaultPath, "Settings file (YAML or JSON)")
	fl.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	fl.Int64Var(&seed, "seed", 0, "Seed, reduced modulo 2^32")
	fl.IntVar(&gridSize, "grid-size", 0, "Lattice points per axis")
	fl.IntVar(&width, "width", 0, "Window width")
	fl.IntVar(&height, "height", 0, "Window height")

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
