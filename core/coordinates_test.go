package core

import (
	"math"
	"testing"
)

// TestCoordinateConversions pins the Y-up frame the mesh is generated in
func TestCoordinateConversions(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64 // degrees
		lon     float64 // degrees
		radius  float64
		wantX   float64
		wantY   float64
		wantZ   float64
		epsilon float64
	}{
		{name: "North Pole", lat: 90, lon: 0, radius: 2.35, wantX: 0, wantY: 2.35, wantZ: 0, epsilon: 1e-9},
		{name: "South Pole", lat: -90, lon: 0, radius: 2.35, wantX: 0, wantY: -2.35, wantZ: 0, epsilon: 1e-9},
		{name: "Equator Prime Meridian", lat: 0, lon: 0, radius: 2.35, wantX: 2.35, wantY: 0, wantZ: 0, epsilon: 1e-9},
		{name: "Equator 90E", lat: 0, lon: 90, radius: 2.35, wantX: 0, wantY: 0, wantZ: 2.35, epsilon: 1e-9},
		{
			name:    "45N 45E",
			lat:     45,
			lon:     45,
			radius:  2.0,
			wantX:   1.0, // r * cos(45°) * cos(45°)
			wantY:   math.Sqrt2,
			wantZ:   1.0,
			epsilon: 1e-9,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := Geographic{Lat: DegreesToRadians(tc.lat), Lon: DegreesToRadians(tc.lon)}
			c := GeographicToCartesian(g, tc.radius)

			if math.Abs(c[0]-tc.wantX) > tc.epsilon {
				t.Errorf("X coordinate: got %f, want %f", c[0], tc.wantX)
			}
			if math.Abs(c[1]-tc.wantY) > tc.epsilon {
				t.Errorf("Y coordinate: got %f, want %f", c[1], tc.wantY)
			}
			if math.Abs(c[2]-tc.wantZ) > tc.epsilon {
				t.Errorf("Z coordinate: got %f, want %f", c[2], tc.wantZ)
			}
		})
	}
}

func TestCartesianRoundTrip(t *testing.T) {
	for lat := -80.0; lat <= 80.0; lat += 20 {
		for lon := -170.0; lon <= 170.0; lon += 34 {
			in := Geographic{Lat: DegreesToRadians(lat), Lon: DegreesToRadians(lon), Alt: 0.25}
			out := CartesianToGeographic(GeographicToCartesian(in, 2.35), 2.35)

			if math.Abs(out.Lat-in.Lat) > 1e-9 || math.Abs(out.Lon-in.Lon) > 1e-9 || math.Abs(out.Alt-in.Alt) > 1e-9 {
				t.Fatalf("round trip (%.0f, %.0f): got %+v, want %+v", lat, lon, out, in)
			}
		}
	}
}

func TestCartesianToGeographicOrigin(t *testing.T) {
	g := CartesianToGeographic(GeographicToCartesian(Geographic{Alt: -2.35}, 2.35), 2.35)
	if g.Alt != -2.35 || g.Lat != 0 || g.Lon != 0 {
		t.Errorf("origin: got %+v", g)
	}
}

func TestNormalizeCoordinates(t *testing.T) {
	g := NormalizeCoordinates(Geographic{Lat: 2, Lon: 4 * math.Pi})
	if g.Lat != math.Pi/2 {
		t.Errorf("latitude not clamped: %f", g.Lat)
	}
	if g.Lon < -math.Pi || g.Lon > math.Pi {
		t.Errorf("longitude not wrapped: %f", g.Lon)
	}
}
