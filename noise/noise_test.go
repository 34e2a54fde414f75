package noise

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planetgenerator/core"
)

func TestHash32KnownValues(t *testing.T) {
	assert.Equal(t, uint32(0), Hash32(0))
	assert.Equal(t, uint32(0x688990c0), Hash32(1))
	assert.Equal(t, uint32(0xe628c683), Hash32(0xdeadbeef))
}

func TestStreamIsDeterministic(t *testing.T) {
	a, b := NewStream(42), NewStream(42)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Next(), b.Next())
	}

	s := NewStream(0)
	assert.Equal(t, uint32(0x1fce552), s.Next())
}

func TestStreamIntnReducesModulo(t *testing.T) {
	assert.Equal(t, 0x1fce552%256, NewStream(0).Intn(256))
	assert.Equal(t, 0x1fce552%7, NewStream(0).Intn(7))
	assert.Zero(t, NewStream(0).Intn(1))
}

func TestGradientReproducible(t *testing.T) {
	first := NewGradient(1).Sample(0.3, 0.1, 0.4)
	// pinned across runs and builds, not just within this process
	assert.Equal(t, 0.34906173937305596, first)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, NewGradient(1).Sample(0.3, 0.1, 0.4))
	}
}

func TestGradientPermutationIsBijective(t *testing.T) {
	g := NewGradient(99)
	var seen [256]bool
	for i := 0; i < 256; i++ {
		seen[g.perm[i]] = true
		assert.Equal(t, g.perm[i], g.perm[i+256])
	}
	for i, ok := range seen {
		assert.True(t, ok, "value %d missing from permutation", i)
	}
}

func TestGradientZeroOnLattice(t *testing.T) {
	g := NewGradient(5)
	for _, p := range [][3]float64{{0, 0, 0}, {1, 2, 3}, {-4, 7, -1}} {
		assert.Zero(t, g.Sample(p[0], p[1], p[2]))
	}
}

func TestSeedsDiffer(t *testing.T) {
	a, b := NewGradient(7), NewGradient(8)
	differ := false
	for i := 0; i < 64 && !differ; i++ {
		x := float64(i)*0.37 + 0.11
		differ = a.Sample(x, x*0.5, -x) != b.Sample(x, x*0.5, -x)
	}
	assert.True(t, differ)
}

func TestSampleRange(t *testing.T) {
	fields := map[string]Field{
		"gradient":    NewGradient(3),
		"opensimplex": NewOpenSimplex(3),
	}
	for name, f := range fields {
		t.Run(name, func(t *testing.T) {
			nonZero := false
			for i := 0; i < 2000; i++ {
				x := float64(i)*0.173 - 50
				v := f.Sample(x, x*0.71+3, -x*1.3)
				require.GreaterOrEqual(t, v, -1.0)
				require.LessOrEqual(t, v, 1.0)
				nonZero = nonZero || v != 0
			}
			assert.True(t, nonZero)
		})
	}
}

func TestConcurrentSampling(t *testing.T) {
	g := NewGradient(11)
	want := g.Sample(0.5, 0.25, 0.75)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				if g.Sample(0.5, 0.25, 0.75) != want {
					t.Error("concurrent sample changed")
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestNew(t *testing.T) {
	f, err := New("", 1)
	require.NoError(t, err)
	assert.IsType(t, &Gradient{}, f)

	f, err = New(core.NoiseOpenSimplex, 1)
	require.NoError(t, err)
	assert.IsType(t, &OpenSimplex{}, f)

	_, err = New("worley", 1)
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
}
