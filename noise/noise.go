package noise

import (
	"fmt"
	"math"

	"github.com/ojrac/opensimplex-go"

	"planetgenerator/core"
)

// Field is a deterministic scalar noise function over R^3 with values in
// [-1, 1]. Implementations are read-only after construction and safe for
// concurrent use.
type Field interface {
	Sample(x, y, z float64) float64
}

// New returns the noise basis selected by basis. An empty basis means
// gradient noise.
func New(basis core.NoiseBasis, seed uint32) (Field, error) {
	switch basis {
	case "", core.NoiseGradient:
		return NewGradient(seed), nil
	case core.NoiseOpenSimplex:
		return NewOpenSimplex(seed), nil
	default:
		return nil, fmt.Errorf("%w: unknown noise basis %q", core.ErrInvalidParameter, basis)
	}
}

// Gradient is Ken Perlin's improved gradient noise with a seed-shuffled
// permutation table.
type Gradient struct {
	perm [512]uint8 // doubled to avoid index wrapping
}

// NewGradient builds the permutation for seed with a Fisher-Yates shuffle
// driven by a hashed Weyl sequence.
func NewGradient(seed uint32) *Gradient {
	var p [256]uint8
	for i := range p {
		p[i] = uint8(i)
	}

	s := NewStream(seed)
	for i := 255; i > 0; i-- {
		j := s.Intn(i + 1)
		p[i], p[j] = p[j], p[i]
	}

	g := &Gradient{}
	for i := range g.perm {
		g.perm[i] = p[i&255]
	}
	return g
}

// Sample evaluates the noise at (x, y, z). The result is 0 on every integer
// lattice point.
func (g *Gradient) Sample(x, y, z float64) float64 {
	fx, fy, fz := math.Floor(x), math.Floor(y), math.Floor(z)
	X := int(fx) & 255
	Y := int(fy) & 255
	Z := int(fz) & 255

	x -= fx
	y -= fy
	z -= fz

	u, v, w := fade(x), fade(y), fade(z)

	p := &g.perm
	a := int(p[X]) + Y
	aa := int(p[a]) + Z
	ab := int(p[a+1]) + Z
	b := int(p[X+1]) + Y
	ba := int(p[b]) + Z
	bb := int(p[b+1]) + Z

	res := lerp(w,
		lerp(v,
			lerp(u, grad(p[aa], x, y, z), grad(p[ba], x-1, y, z)),
			lerp(u, grad(p[ab], x, y-1, z), grad(p[bb], x-1, y-1, z))),
		lerp(v,
			lerp(u, grad(p[aa+1], x, y, z-1), grad(p[ba+1], x-1, y, z-1)),
			lerp(u, grad(p[ab+1], x, y-1, z-1), grad(p[bb+1], x-1, y-1, z-1))))

	return clamp(res)
}

// fade is the quintic 6t^5 - 15t^4 + 10t^3
func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}

// grad dots (x, y, z) with one of the twelve cube-edge gradients.
func grad(hash uint8, x, y, z float64) float64 {
	h := hash & 15

	u := y
	if h < 8 {
		u = x
	}

	var v float64
	switch {
	case h < 4:
		v = y
	case h == 12 || h == 14:
		v = x
	default:
		v = z
	}

	if h&1 != 0 {
		u = -u
	}
	if h&2 != 0 {
		v = -v
	}
	return u + v
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// OpenSimplex wraps opensimplex-go as an alternate basis. It has a softer,
// less grid-aligned look than Gradient.
type OpenSimplex struct {
	n opensimplex.Noise
}

func NewOpenSimplex(seed uint32) *OpenSimplex {
	return &OpenSimplex{n: opensimplex.New(int64(seed))}
}

func (o *OpenSimplex) Sample(x, y, z float64) float64 {
	return clamp(o.n.Eval3(x, y, z))
}
