package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Geographic is a position on the planet relative to its nominal radius.
// Y points to the north pole, X to 0° longitude, Z to 90°E.
type Geographic struct {
	Lat float64 `json:"lat"` // radians [-π/2, π/2], positive = north
	Lon float64 `json:"lon"` // radians [-π, π], positive = east
	Alt float64 `json:"alt"` // height above the nominal radius, world units
}

// DegreesToRadians converts degrees to radians
func DegreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180.0
}

// RadiansToDegrees converts radians to degrees
func RadiansToDegrees(radians float64) float64 {
	return radians * 180.0 / math.Pi
}

// GeographicToCartesian converts a geographic position to a point in the
// mesh frame.
func GeographicToCartesian(g Geographic, radius float64) mgl64.Vec3 {
	r := radius + g.Alt
	cosLat := math.Cos(g.Lat)

	return mgl64.Vec3{
		r * cosLat * math.Cos(g.Lon),
		r * math.Sin(g.Lat),
		r * cosLat * math.Sin(g.Lon),
	}
}

// CartesianToGeographic converts a point in the mesh frame to geographic
// coordinates.
func CartesianToGeographic(c mgl64.Vec3, radius float64) Geographic {
	r := c.Len()

	// Origin has no direction
	if r < 1e-10 {
		return Geographic{Lat: 0, Lon: 0, Alt: -radius}
	}

	return Geographic{
		Lat: math.Asin(clampUnit(c[1] / r)),
		Lon: math.Atan2(c[2], c[0]),
		Alt: r - radius,
	}
}

// NormalizeCoordinates clamps latitude and wraps longitude into range
func NormalizeCoordinates(g Geographic) Geographic {
	if g.Lat > math.Pi/2 {
		g.Lat = math.Pi / 2
	} else if g.Lat < -math.Pi/2 {
		g.Lat = -math.Pi / 2
	}

	for g.Lon > math.Pi {
		g.Lon -= 2 * math.Pi
	}
	for g.Lon < -math.Pi {
		g.Lon += 2 * math.Pi
	}

	return g
}

func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
