package biome

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette is the fixed set of surface colors the colorizer blends between.
type Palette struct {
	DeepOcean    colorful.Color
	ShallowOcean colorful.Color
	Desert       colorful.Color
	Savanna      colorful.Color
	Forest       colorful.Color
	Rock         colorful.Color
	Snow         colorful.Color
	Foam         colorful.Color
}

// PaletteHex is the configuration form of a Palette, one "#rrggbb" string
// per color.
type PaletteHex struct {
	DeepOcean    string `yaml:"deepOcean" json:"deepOcean"`
	ShallowOcean string `yaml:"shallowOcean" json:"shallowOcean"`
	Desert       string `yaml:"desert" json:"desert"`
	Savanna      string `yaml:"savanna" json:"savanna"`
	Forest       string `yaml:"forest" json:"forest"`
	Rock         string `yaml:"rock" json:"rock"`
	Snow         string `yaml:"snow" json:"snow"`
	Foam         string `yaml:"foam" json:"foam"`
}

func DefaultPaletteHex() PaletteHex {
	return PaletteHex{
		DeepOcean:    "#0b2a5b",
		ShallowOcean: "#2f7fb8",
		Desert:       "#d8c38a",
		Savanna:      "#a6a550",
		Forest:       "#2f6b2a",
		Rock:         "#6e655c",
		Snow:         "#f4f6f8",
		Foam:         "#ffffff",
	}
}

// DefaultPalette is the stock earth-like palette.
func DefaultPalette() Palette {
	p, err := DefaultPaletteHex().Parse()
	if err != nil {
		panic(err)
	}
	return p
}

// Parse converts every hex string. An empty entry keeps the default color.
func (h PaletteHex) Parse() (Palette, error) {
	def := DefaultPaletteHex()
	var p Palette
	entries := []struct {
		name     string
		value    string
		fallback string
		dst      *colorful.Color
	}{
		{"deepOcean", h.DeepOcean, def.DeepOcean, &p.DeepOcean},
		{"shallowOcean", h.ShallowOcean, def.ShallowOcean, &p.ShallowOcean},
		{"desert", h.Desert, def.Desert, &p.Desert},
		{"savanna", h.Savanna, def.Savanna, &p.Savanna},
		{"forest", h.Forest, def.Forest, &p.Forest},
		{"rock", h.Rock, def.Rock, &p.Rock},
		{"snow", h.Snow, def.Snow, &p.Snow},
		{"foam", h.Foam, def.Foam, &p.Foam},
	}
	for _, e := range entries {
		v := e.value
		if v == "" {
			v = e.fallback
		}
		c, err := colorful.Hex(v)
		if err != nil {
			return Palette{}, fmt.Errorf("palette color %s: %w", e.name, err)
		}
		*e.dst = c
	}
	return p, nil
}

// Hex is the inverse of PaletteHex.Parse
func (p Palette) Hex() PaletteHex {
	return PaletteHex{
		DeepOcean:    p.DeepOcean.Hex(),
		ShallowOcean: p.ShallowOcean.Hex(),
		Desert:       p.Desert.Hex(),
		Savanna:      p.Savanna.Hex(),
		Forest:       p.Forest.Hex(),
		Rock:         p.Rock.Hex(),
		Snow:         p.Snow.Hex(),
		Foam:         p.Foam.Hex(),
	}
}
