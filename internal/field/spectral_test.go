package field

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/scatfield/internal/grids"
	"github.com/banshee-data/scatfield/internal/sht"
	"github.com/banshee-data/scatfield/internal/tensor"
)

// randomSpectral fills a spectral field with random coefficients. Order-0
// coefficients are kept real so the field synthesizes to real data.
func randomSpectral(t *testing.T, freq, temp, lonInc, latInc grids.Grid, tr *sht.Transform, ne int, seed int64) *Spectral {
	t.Helper()
	s := EmptySpectral(freq, temp, lonInc, latInc, tr, ne)
	rng := rand.New(rand.NewSource(seed))
	fixed := make([]int, 5)
	coeffs := make([]complex128, tr.NumCoeffs())
	for it := tensor.Indices(freq.Len(), temp.Len(), lonInc.Len(), latInc.Len(), ne); it.Next(); {
		copy(fixed, it.Coords())
		for m := 0; m <= tr.MMax(); m++ {
			for l := m; l <= tr.LMax(); l++ {
				if m == 0 {
					coeffs[tr.CoeffIndex(l, m)] = complex(rng.NormFloat64(), 0)
				} else {
					coeffs[tr.CoeffIndex(l, m)] = complex(rng.NormFloat64(), rng.NormFloat64())
				}
			}
		}
		tensor.SetVectorAt(s.Data(), axCoeffScat, fixed, coeffs)
	}
	return s
}

func spectralTestGrids(nf, nt, nli, nlai int) (freq, temp, lonInc, latInc grids.Grid) {
	freq = grids.Linspace(10e9, 100e9, nf)
	temp = grids.Linspace(210, 280, nt)
	lonInc = grids.Uniform(0, 2*math.Pi, nli)
	latInc = grids.Linspace(0.1, math.Pi-0.1, nlai)
	return freq, temp, lonInc, latInc
}

func assertComplexSliceInDelta(t *testing.T, want, got []complex128, tol float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for k := range want {
		assert.InDelta(t, real(want[k]), real(got[k]), tol, "coefficient %d", k)
		assert.InDelta(t, imag(want[k]), imag(got[k]), tol, "coefficient %d", k)
	}
}

func TestGriddedSpectralRoundTrip(t *testing.T) {
	t.Parallel()
	tr, err := sht.NewForGrid(8, 8)
	require.NoError(t, err)
	freq, temp, lonInc, latInc := spectralTestGrids(2, 1, 1, 2)
	s := randomSpectral(t, freq, temp, lonInc, latInc, tr, 2, 1)

	g, err := s.ToGridded()
	require.NoError(t, err)
	assert.Equal(t, tr.LonGrid(), g.LonScatGrid())
	assert.Equal(t, tr.LatGrid(), g.LatScatGrid())

	// The default anti-aliasing truncation of the native grid matches the
	// source transform, so analysis recovers the coefficients.
	s2, err := g.ToSpectral()
	require.NoError(t, err)
	require.Equal(t, tr.NumCoeffs(), s2.Transform().NumCoeffs())
	assertComplexSliceInDelta(t, s.Data().Data(), s2.Data().Data(), 1e-10)

	g2, err := s2.ToGridded()
	require.NoError(t, err)
	for i, want := range g.Data().Data() {
		assert.InDelta(t, want, g2.Data().Data()[i], 1e-10)
	}
}

func TestSpectralIntegrateShortcut(t *testing.T) {
	t.Parallel()
	tr, err := sht.New(3, 2, 8, 5)
	require.NoError(t, err)
	freq, temp, lonInc, latInc := spectralTestGrids(1, 1, 1, 2)
	s := randomSpectral(t, freq, temp, lonInc, latInc, tr, 2, 2)

	integrals := s.IntegrateScatteringAngles()
	for it := tensor.Indices(integrals.Shape()...); it.Next(); {
		c := it.Coords()
		c00 := s.Data().At(c[0], c[1], c[2], c[3], 0, c[4])
		assert.InDelta(t, math.Sqrt(4*math.Pi)*real(c00), integrals.At(c...), 1e-12)
	}
}

func TestSpectralNormalize(t *testing.T) {
	t.Parallel()
	tr, err := sht.New(3, 2, 8, 5)
	require.NoError(t, err)
	freq, temp, lonInc, latInc := spectralTestGrids(2, 1, 1, 2)
	s := randomSpectral(t, freq, temp, lonInc, latInc, tr, 2, 3)

	// Positive degree-0 coefficients except one slice with a zero
	// integral; remember one of its higher coefficients.
	for it := tensor.Indices(2, 1, 1, 2, 2); it.Next(); {
		c := it.Coords()
		idx := []int{c[0], c[1], c[2], c[3], 0, c[4]}
		s.Data().Set(complex(1.5+float64(c[0]), 0), idx...)
	}
	for e := 0; e < 2; e++ {
		s.Data().Set(0, 1, 0, 0, 1, 0, e)
	}
	kept := s.Data().At(1, 0, 0, 1, 2, 0)

	const target = 1.0
	s.Normalize(target)
	integrals := s.IntegrateScatteringAngles()

	for it := tensor.Indices(2, 1, 1, 2, 2); it.Next(); {
		c := it.Coords()
		if c[0] == 1 && c[3] == 1 {
			assert.Equal(t, 0.0, integrals.At(c...), "zero-integral slice stays zero")
			continue
		}
		assert.InDelta(t, target, integrals.At(c...), 1e-12)
	}
	assert.Equal(t, kept, s.Data().At(1, 0, 0, 1, 2, 0), "zero-integral slice left unscaled")
}

func TestSpectralAddDifferentTruncations(t *testing.T) {
	t.Parallel()
	big, err := sht.New(4, 2, 8, 10)
	require.NoError(t, err)
	small, err := sht.New(2, 1, 4, 6)
	require.NoError(t, err)
	freq, temp, lonInc, latInc := spectralTestGrids(1, 1, 1, 2)

	a := EmptySpectral(freq, temp, lonInc, latInc, big, 1)
	for i := range a.Data().Data() {
		a.Data().Data()[i] = 1
	}
	b := EmptySpectral(freq, temp, lonInc, latInc, small, 1)
	for i := range b.Data().Data() {
		b.Data().Data()[i] = complex(0, 1)
	}

	require.NoError(t, a.AddAssign(b))
	for m := 0; m <= big.MMax(); m++ {
		for l := m; l <= big.LMax(); l++ {
			want := complex128(1)
			if m <= small.MMax() && l <= small.LMax() {
				want = complex(1, 1)
			}
			assert.Equal(t, want, a.Data().At(0, 0, 0, 0, big.CoeffIndex(l, m), 0), "l=%d m=%d", l, m)
		}
	}
}

func TestSpectralToSpectralTruncation(t *testing.T) {
	t.Parallel()
	small, err := sht.New(2, 1, 4, 6)
	require.NoError(t, err)
	big, err := sht.New(4, 3, 12, 10)
	require.NoError(t, err)
	freq, temp, lonInc, latInc := spectralTestGrids(1, 2, 1, 1)
	s := randomSpectral(t, freq, temp, lonInc, latInc, small, 2, 4)

	padded, err := s.ToSpectral(big)
	require.NoError(t, err)
	for m := 0; m <= big.MMax(); m++ {
		for l := m; l <= big.LMax(); l++ {
			got := padded.Data().At(0, 1, 0, 0, big.CoeffIndex(l, m), 1)
			if m <= small.MMax() && l <= small.LMax() {
				assert.Equal(t, s.Data().At(0, 1, 0, 0, small.CoeffIndex(l, m), 1), got)
			} else {
				assert.Equal(t, complex128(0), got, "padding is zero at l=%d m=%d", l, m)
			}
		}
	}

	back, err := padded.ToSpectral(small)
	require.NoError(t, err)
	assert.Equal(t, s.Data().Data(), back.Data().Data())
}

func TestSpectralSetData(t *testing.T) {
	t.Parallel()
	tr, err := sht.New(2, 1, 4, 6)
	require.NoError(t, err)
	freq, temp, lonInc, latInc := spectralTestGrids(2, 2, 1, 2)
	dst := EmptySpectral(freq, temp, lonInc, latInc, tr, 2)

	srcFreq, srcTemp, _, _ := spectralTestGrids(1, 1, 1, 2)
	src := randomSpectral(t, srcFreq, srcTemp, lonInc, latInc, tr, 2, 5)
	require.NoError(t, dst.SetData(0, 1, src))

	fixed := []int{0, 1, 0, 1, 1}
	want := tensor.VectorAt(src.Data(), axCoeffScat, []int{0, 0, 0, 1, 1})
	assert.Equal(t, want, tensor.VectorAt(dst.Data(), axCoeffScat, fixed))

	multi := randomSpectral(t, freq, srcTemp, lonInc, latInc, tr, 2, 6)
	assert.ErrorIs(t, dst.SetData(0, 0, multi), ErrDimensionMismatch)
}

func TestSpectralFullySpectralRoundTrip(t *testing.T) {
	t.Parallel()
	incTr, err := sht.New(2, 2, 8, 5)
	require.NoError(t, err)
	scatTr, err := sht.New(3, 1, 4, 7)
	require.NoError(t, err)

	freq := grids.Linspace(10e9, 100e9, 2)
	temp := grids.Linspace(210, 280, 1)

	// Band-limited incoming dependency by construction: start in the
	// fully spectral domain.
	fs := EmptyFullySpectral(freq, temp, incTr, scatTr, 2)
	rng := rand.New(rand.NewSource(8))
	for i := range fs.Data().Data() {
		fs.Data().Data()[i] = complex(rng.NormFloat64(), rng.NormFloat64())
	}

	s, err := fs.ToSpectral()
	require.NoError(t, err)
	assert.Equal(t, incTr.LonGrid(), s.LonIncGrid())
	assert.Equal(t, incTr.LatGrid(), s.LatIncGrid())

	fs2, err := s.ToFullySpectralWith(incTr)
	require.NoError(t, err)
	assertComplexSliceInDelta(t, fs.Data().Data(), fs2.Data().Data(), 1e-10)

	s2, err := fs2.ToSpectral()
	require.NoError(t, err)
	assertComplexSliceInDelta(t, s.Data().Data(), s2.Data().Data(), 1e-10)
}

func TestSpectralToGriddedWith(t *testing.T) {
	t.Parallel()
	tr, err := sht.New(2, 2, 8, 5)
	require.NoError(t, err)
	coarse, err := sht.New(1, 1, 4, 3)
	require.NoError(t, err)
	freq, temp, lonInc, latInc := spectralTestGrids(1, 1, 1, 1)

	// A pure degree-0 field re-expands exactly at any truncation.
	s := EmptySpectral(freq, temp, lonInc, latInc, tr, 1)
	for it := tensor.Indices(1, 1, 1, 1, 1); it.Next(); {
		s.Data().Set(complex(2*math.Sqrt(math.Pi), 0), 0, 0, 0, 0, 0, 0)
	}

	g, err := s.ToGriddedWith(coarse)
	require.NoError(t, err)
	assert.Equal(t, 4, g.LonScatGrid().Len())
	assert.Equal(t, 3, g.LatScatGrid().Len())
	for _, v := range g.Data().Data() {
		assert.InDelta(t, 1.0, v, 1e-12)
	}
}
