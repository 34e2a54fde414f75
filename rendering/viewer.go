// Package rendering is the native preview window: it draws the generated
// triangle soup with its vertex colors through raylib's immediate mode and
// orbits a camera around it.
package rendering

import (
	"context"
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"go.uber.org/zap"

	"planetgenerator/config"
	"planetgenerator/core"
	"planetgenerator/planet"
)

// trianglesPerBatch keeps each Begin/End block well inside rlgl's default
// vertex buffer.
const trianglesPerBatch = 1024

// Viewer owns the window state. It must run on the main OS thread.
type Viewer struct {
	log        *zap.Logger
	gen        *planet.Generator
	settings   config.ViewerSettings
	atmosphere float64

	params    core.PlanetParams
	mesh      *core.GeneratedMesh
	stats     planet.Stats
	showWater bool
}

func NewViewer(log *zap.Logger, gen *planet.Generator, params core.PlanetParams, settings config.ViewerSettings, atmosphere float64) *Viewer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Viewer{
		log:        log,
		gen:        gen,
		settings:   settings,
		atmosphere: atmosphere,
		params:     params,
		showWater:  settings.ShowWater,
	}
}

// Run opens the window and blocks until it is closed or ctx is done.
// N and P step the seed, W toggles the water and atmosphere shells.
func (v *Viewer) Run(ctx context.Context) error {
	if err := v.regenerate(ctx); err != nil {
		return err
	}

	rl.SetConfigFlags(rl.FlagMsaa4xHint)
	rl.InitWindow(int32(v.settings.Width), int32(v.settings.Height), "planetgen")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(v.settings.TargetFPS))

	dist := float32(v.params.Radius * 3)
	camera := rl.Camera3D{
		Position:   rl.NewVector3(0, dist*0.4, dist),
		Target:     rl.NewVector3(0, 0, 0),
		Up:         rl.NewVector3(0, 1, 0),
		Fovy:       45,
		Projection: rl.CameraPerspective,
	}

	for !rl.WindowShouldClose() && ctx.Err() == nil {
		if err := v.handleInput(ctx); err != nil {
			return err
		}
		rl.UpdateCamera(&camera, rl.CameraOrbital)

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)

		rl.BeginMode3D(camera)
		drawMesh(v.mesh)
		if v.showWater {
			v.drawShells()
		}
		rl.EndMode3D()

		v.drawHUD()
		rl.EndDrawing()
	}
	return nil
}

func (v *Viewer) handleInput(ctx context.Context) error {
	switch {
	case rl.IsKeyPressed(rl.KeyN):
		v.params.Seed++
	case rl.IsKeyPressed(rl.KeyP):
		v.params.Seed--
	case rl.IsKeyPressed(rl.KeyW):
		v.showWater = !v.showWater
		return nil
	default:
		return nil
	}
	return v.regenerate(ctx)
}

func (v *Viewer) regenerate(ctx context.Context) error {
	m, err := v.gen.Generate(ctx, v.params)
	if err != nil {
		return fmt.Errorf("generating seed %d: %w", v.params.Seed, err)
	}
	v.mesh = m
	v.stats = planet.Summarize(m, v.params)
	v.log.Info("Planet ready",
		zap.Uint32("seed", v.params.Seed),
		zap.Int("triangles", v.stats.Triangles),
		zap.Float64("landFraction", v.stats.LandFraction))
	return nil
}

func drawMesh(m *core.GeneratedMesh) {
	n := m.VertexCount()
	for start := 0; start < n; start += 3 * trianglesPerBatch {
		end := min(start+3*trianglesPerBatch, n)

		rl.Begin(rl.Triangles)
		for i := start; i < end; i++ {
			k := 3 * i
			rl.Color3f(m.Colors[k], m.Colors[k+1], m.Colors[k+2])
			rl.Normal3f(m.Normals[k], m.Normals[k+1], m.Normals[k+2])
			rl.Vertex3f(m.Positions[k], m.Positions[k+1], m.Positions[k+2])
		}
		rl.End()
	}
}

func (v *Viewer) drawShells() {
	shells := core.ShellsFor(v.params, v.atmosphere)
	origin := rl.NewVector3(0, 0, 0)

	rl.DrawSphere(origin, float32(shells.Water), rl.Fade(rl.SkyBlue, 0.35))
	rl.DrawSphereWires(origin, float32(shells.Atmosphere), 16, 32, rl.Fade(rl.RayWhite, 0.08))
}

func (v *Viewer) drawHUD() {
	s := v.stats
	rl.DrawText(fmt.Sprintf("seed %d  grid %d  triangles %d", v.params.Seed, v.params.GridSize, s.Triangles), 10, 10, 20, rl.RayWhite)
	rl.DrawText(fmt.Sprintf("land %.0f%%  peak %.3f at %.1f, %.1f", s.LandFraction*100, s.Peak.Alt,
		core.RadiansToDegrees(s.Peak.Lat), core.RadiansToDegrees(s.Peak.Lon)), 10, 34, 20, rl.LightGray)
	rl.DrawText("N/P: seed  W: water", 10, int32(v.settings.Height)-30, 18, rl.Gray)
	rl.DrawFPS(int32(v.settings.Width)-90, 10)
}
