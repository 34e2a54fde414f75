package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"planetgenerator/biome"
	"planetgenerator/core"
	"planetgenerator/terrain"
)

// probePoint is a named position in degrees.
type probePoint struct {
	name     string
	lat, lon float64
}

var defaultProbes = []probePoint{
	{"North Pole", 90, 0},
	{"South Pole", -90, 0},
	{"Equator 0°", 0, 0},
	{"Equator 90°E", 0, 90},
	{"45°N 45°E", 45, 45},
}

func (a *app) probeCmd() *cobra.Command {
	var seed int64
	cmd := &cobra.Command{
		Use:   "probe [lat,lon ...]",
		Short: "Print terrain height and biome at geographic positions",
		Long: `Evaluates the terrain field directly, without meshing, at each position
given in degrees. Without arguments a fixed set of reference points is used.

Example:
  planetgen probe 12.5,-40 33,151`,
		RunE: func(cmd *cobra.Command, args []string) error {
			points := defaultProbes
			if len(args) > 0 {
				points = points[:0:0]
				for _, arg := range args {
					pt, err := parseProbe(arg)
					if err != nil {
						return err
					}
					points = append(points, pt)
				}
			}

			p := a.settings.Params()
			if cmd.Flags().Changed("seed") {
				p.Seed = core.SeedFrom(seed)
			}
			return a.runProbe(cmd.OutOrStdout(), p, points)
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", 0, "Seed, reduced modulo 2^32")
	return cmd
}

func parseProbe(s string) (probePoint, error) {
	latStr, lonStr, ok := strings.Cut(s, ",")
	if !ok {
		return probePoint{}, fmt.Errorf("position %q: want lat,lon in degrees", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return probePoint{}, fmt.Errorf("position %q: latitude: %w", s, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return probePoint{}, fmt.Errorf("position %q: longitude: %w", s, err)
	}
	if lat < -90 || lat > 90 {
		return probePoint{}, fmt.Errorf("position %q: latitude out of range", s)
	}
	return probePoint{name: s, lat: lat, lon: lon}, nil
}

func (a *app) runProbe(w io.Writer, p core.PlanetParams, points []probePoint) error {
	if err := p.Validate(); err != nil {
		return err
	}
	field, err := terrain.ForParams(p)
	if err != nil {
		return err
	}
	palette, err := a.settings.Palette.Parse()
	if err != nil {
		return err
	}
	colors := biome.NewColorizer(p, palette)

	fmt.Fprintf(w, "seed %d, radius %g\n", p.Seed, p.Radius)
	for _, pt := range points {
		g := core.NormalizeCoordinates(core.Geographic{
			Lat: core.DegreesToRadians(pt.lat),
			Lon: core.DegreesToRadians(pt.lon),
		})
		dir := core.GeographicToCartesian(g, 1)
		h := field.Height(dir)
		g.Alt = h
		surface := core.GeographicToCartesian(g, p.Radius)

		kind := "land"
		if h < p.SeaLevelWorld {
			kind = "ocean"
		}
		fmt.Fprintf(w, "%s: height %+.4f (%s) at %.4f %.4f %.4f, color %s\n",
			pt.name, h, kind, surface[0], surface[1], surface[2],
			colors.Color(surface, dir).Hex())
	}
	return nil
}
