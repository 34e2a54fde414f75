package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"planetgenerator/biome"
	"planetgenerator/core"
	"planetgenerator/logging"
)

// DefaultPath is where the CLI looks for settings when no --config is given.
const DefaultPath = "planetgen.yaml"

type Settings struct {
	Planet  PlanetSettings     `yaml:"planet" json:"planet"`
	Terrain core.TerrainConfig `yaml:"terrain" json:"terrain"`
	Palette biome.PaletteHex   `yaml:"palette" json:"palette"`
	Server  ServerSettings     `yaml:"server" json:"server"`
	Viewer  ViewerSettings     `yaml:"viewer" json:"viewer"`
	Logging logging.Settings   `yaml:"logging" json:"logging"`
}

// PlanetSettings are the default generation parameters.
type PlanetSettings struct {
	Seed                uint32          `yaml:"seed" json:"seed"`
	Radius              float64         `yaml:"radius" json:"radius"`
	GridSize            int             `yaml:"gridSize" json:"gridSize"`
	BoxSize             float64         `yaml:"boxSize" json:"boxSize"`
	IsoLevel            float64         `yaml:"isoLevel" json:"isoLevel"`
	SeaLevelWorld       float64         `yaml:"seaLevelWorld" json:"seaLevelWorld"`
	BeachBand           float64         `yaml:"beachBand" json:"beachBand"`
	FoamBand            float64         `yaml:"foamBand" json:"foamBand"`
	Noise               core.NoiseBasis `yaml:"noise" json:"noise"`
	AtmosphereThickness float64         `yaml:"atmosphereThickness" json:"atmosphereThickness"`
}

type ServerSettings struct {
	Port              int `yaml:"port" json:"port"`
	MaxConcurrentJobs int `yaml:"maxConcurrentJobs" json:"maxConcurrentJobs"`
	CacheSize         int `yaml:"cacheSize" json:"cacheSize"`
	Workers           int `yaml:"workers" json:"workers"` // per-generation slice workers, 0 = GOMAXPROCS
	MaxGridSize       int `yaml:"maxGridSize" json:"maxGridSize"`
}

type ViewerSettings struct {
	Width     int  `yaml:"width" json:"width"`
	Height    int  `yaml:"height" json:"height"`
	TargetFPS int  `yaml:"targetFPS" json:"targetFPS"`
	ShowWater bool `yaml:"showWater" json:"showWater"`
}

// Default returns the settings used when no file exists.
func Default() *Settings {
	p := core.DefaultPlanetParams()
	return &Settings{
		Planet: PlanetSettings{
			Seed:                p.Seed,
			Radius:              p.Radius,
			GridSize:            p.GridSize,
			BoxSize:             p.BoxSize,
			IsoLevel:            p.IsoLevel,
			SeaLevelWorld:       p.SeaLevelWorld,
			BeachBand:           p.BeachBand,
			FoamBand:            p.FoamBand,
			Noise:               p.Noise,
			AtmosphereThickness: 0.25,
		},
		Terrain: p.Terrain,
		Palette: biome.DefaultPaletteHex(),
		Server: ServerSettings{
			Port:              8080,
			MaxConcurrentJobs: 2,
			CacheSize:         32,
			MaxGridSize:       160,
		},
		Viewer: ViewerSettings{
			Width:     1280,
			Height:    720,
			TargetFPS: 60,
			ShowWater: true,
		},
		Logging: logging.DefaultSettings(),
	}
}

// Load reads YAML settings from path over the defaults and applies
// environment overrides. A missing file is not an error. JSON files load
// too, since JSON is valid YAML.
func Load(path string) (*Settings, error) {
	s := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := s.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return s, nil
}

// Save writes the settings as YAML, creating the directory if needed.
func (s *Settings) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies PLANETGEN_* environment variables.
func (s *Settings) applyEnvOverrides() error {
	if v := os.Getenv("PLANETGEN_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("PLANETGEN_SEED: %w", err)
		}
		s.Planet.Seed = core.SeedFrom(seed)
	}
	if v := os.Getenv("PLANETGEN_GRID_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PLANETGEN_GRID_SIZE: %w", err)
		}
		s.Planet.GridSize = n
	}
	if v := os.Getenv("PLANETGEN_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PLANETGEN_PORT: %w", err)
		}
		s.Server.Port = port
	}
	if v := os.Getenv("PLANETGEN_LOG_LEVEL"); v != "" {
		s.Logging.Level = v
	}
	return nil
}

// Validate checks the planet parameters, palette and server limits.
func (s *Settings) Validate() error {
	if err := s.Params().Validate(); err != nil {
		return err
	}
	if _, err := s.Palette.Parse(); err != nil {
		return err
	}
	if s.Server.Port < 0 || s.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", s.Server.Port)
	}
	if s.Server.MaxConcurrentJobs < 1 {
		return fmt.Errorf("server maxConcurrentJobs must be >= 1, got %d", s.Server.MaxConcurrentJobs)
	}
	if s.Server.CacheSize < 1 {
		return fmt.Errorf("server cacheSize must be >= 1, got %d", s.Server.CacheSize)
	}
	return nil
}

// Params assembles the generation parameters from the planet and terrain
// sections.
func (s *Settings) Params() core.PlanetParams {
	pl := s.Planet
	return core.PlanetParams{
		Seed:          pl.Seed,
		Radius:        pl.Radius,
		GridSize:      pl.GridSize,
		BoxSize:       pl.BoxSize,
		IsoLevel:      pl.IsoLevel,
		SeaLevelWorld: pl.SeaLevelWorld,
		BeachBand:     pl.BeachBand,
		FoamBand:      pl.FoamBand,
		Noise:         pl.Noise,
		Terrain:       s.Terrain,
	}
}

// ApproximateTriangles estimates the triangle count of the configured planet.
func (s *Settings) ApproximateTriangles() int {
	return s.Params().ApproximateTriangles()
}
