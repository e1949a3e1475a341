// Package grids provides the coordinate axes shared by scattering data
// fields: frequency, temperature and the four angular grids, together with
// the particle-type classification derived from the angular grid sizes.
package grids

import (
	"fmt"
	"math"
	"sort"
)

// Grid is an ordered, strictly ascending sequence of coordinate values along
// one physical axis. Grids are shared by reference between fields and must
// never be mutated after construction.
type Grid []float64

// New validates that values are strictly ascending and returns them as a
// Grid. The slice is not copied; the caller hands over ownership.
func New(values []float64) (Grid, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("grid must contain at least one value")
	}
	for i := 1; i < len(values); i++ {
		if values[i] <= values[i-1] {
			return nil, fmt.Errorf("grid values must be strictly ascending: value %g at index %d follows %g", values[i], i, values[i-1])
		}
	}
	return Grid(values), nil
}

// MustNew is New for statically known grids; it panics on invalid input.
func MustNew(values []float64) Grid {
	g, err := New(values)
	if err != nil {
		panic(err)
	}
	return g
}

// Uniform returns n evenly spaced values covering [lo, hi). The endpoint is
// excluded, matching the layout of periodic azimuth grids.
func Uniform(lo, hi float64, n int) Grid {
	g := make(Grid, n)
	step := (hi - lo) / float64(n)
	for i := range g {
		g[i] = lo + float64(i)*step
	}
	return g
}

// Linspace returns n evenly spaced values covering [lo, hi] inclusive.
func Linspace(lo, hi float64, n int) Grid {
	if n == 1 {
		return Grid{lo}
	}
	g := make(Grid, n)
	step := (hi - lo) / float64(n-1)
	for i := range g {
		g[i] = lo + float64(i)*step
	}
	g[n-1] = hi
	return g
}

// Len returns the number of grid points.
func (g Grid) Len() int { return len(g) }

// Min returns the first (smallest) grid value.
func (g Grid) Min() float64 { return g[0] }

// Max returns the last (largest) grid value.
func (g Grid) Max() float64 { return g[len(g)-1] }

// Contains reports whether x lies within the closed span of the grid.
func (g Grid) Contains(x float64) bool {
	return x >= g[0] && x <= g[len(g)-1]
}

// Interval locates the interpolation interval for x: the returned index i
// satisfies g[i] <= x <= g[i+1] for interior x. For x outside the span the
// boundary interval is returned; callers decide whether extrapolating from
// it is allowed.
func (g Grid) Interval(x float64) int {
	i := sort.SearchFloat64s(g, x)
	switch {
	case i <= 0:
		return 0
	case i >= len(g):
		return len(g) - 2
	default:
		return i - 1
	}
}

// Equal reports whether two grids hold identical values.
func (g Grid) Equal(other Grid) bool {
	if len(g) != len(other) {
		return false
	}
	for i := range g {
		if g[i] != other[i] {
			return false
		}
	}
	return true
}

// Cosines returns the elementwise cosine of the grid, used to weight zenith
// axes with the solid-angle measure.
func (g Grid) Cosines() []float64 {
	out := make([]float64, len(g))
	for i, v := range g {
		out[i] = math.Cos(v)
	}
	return out
}

// ParticleType classifies scattering data by the symmetries its angular
// grids can represent.
type ParticleType int

const (
	// Random particles scatter independently of incoming direction and of
	// the scattering azimuth: only the relative scattering angle matters.
	Random ParticleType = iota
	// AzimuthallyRandom particles are rotationally symmetric about the
	// incoming azimuth but resolve the full scattering geometry.
	AzimuthallyRandom
	// General particles resolve all four angular dimensions.
	General
)

// String returns the classification name.
func (t ParticleType) String() string {
	switch t {
	case Random:
		return "random"
	case AzimuthallyRandom:
		return "azimuthally-random"
	case General:
		return "general"
	}
	return fmt.Sprintf("ParticleType(%d)", int(t))
}

// Classify derives the particle type from the angular grid sizes. The
// scattering zenith size never influences the classification.
func Classify(nLonInc, nLatInc, nLonScat, _ int) ParticleType {
	if nLonInc == 1 && nLatInc == 1 && nLonScat == 1 {
		return Random
	}
	if nLonInc == 1 {
		return AzimuthallyRandom
	}
	return General
}

// AngularSizes records the angular grid sizes a field was constructed with,
// together with the particle type they imply. The classification is fixed at
// construction time.
type AngularSizes struct {
	NLonInc  int
	NLatInc  int
	NLonScat int
	NLatScat int
	Type     ParticleType
}

// Sizes builds the shared size record for the given angular grid lengths.
func Sizes(nLonInc, nLatInc, nLonScat, nLatScat int) AngularSizes {
	return AngularSizes{
		NLonInc:  nLonInc,
		NLatInc:  nLatInc,
		NLonScat: nLonScat,
		NLatScat: nLatScat,
		Type:     Classify(nLonInc, nLatInc, nLonScat, nLatScat),
	}
}
