// Package sht provides the spherical harmonics transform capability the
// scattering data fields convert through: analysis (spatial to spectral),
// synthesis (spectral to spatial), and truncation-aware coefficient
// addition. The implementation is a direct quadrature-based transform, not
// an optimized kernel; it is exact for band-limited fields sampled on the
// transform's native grid.
//
// Conventions: spherical harmonics are orthonormal with Condon-Shortley
// phase, so the degree-0 coefficient of a field f equals the solid-angle
// integral of f divided by sqrt(4*pi). The native angular grid is uniform
// in azimuth over [0, 2*pi) and Gauss-Legendre in cos(zenith).
package sht

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/scatfield/internal/grids"
	"github.com/banshee-data/scatfield/internal/quadrature"
)

// Transform holds the truncation and native grid of one spherical
// harmonics expansion. Transforms are immutable after construction and may
// be shared between any number of fields.
type Transform struct {
	lMax, mMax int
	nLon, nLat int

	lonGrid grids.Grid
	latGrid grids.Grid
	cosLat  []float64 // cos(latGrid), Gauss-Legendre nodes
	weights []float64 // Gauss-Legendre weights aligned with latGrid

	// plm[j] holds the normalized associated Legendre values at latitude
	// j, indexed like the real coefficient layout (m-major, l ascending).
	plm [][]float64

	fft  *fourier.FFT
	cfft *fourier.CmplxFFT
}

// New constructs a transform with the given truncation and native grid
// sizes. The grid must be able to represent the truncation without
// aliasing: nLat >= lMax+1 and nLon >= 2*mMax+1.
func New(lMax, mMax, nLon, nLat int) (*Transform, error) {
	if lMax < 0 || mMax < 0 || mMax > lMax {
		return nil, fmt.Errorf("sht: invalid truncation lMax=%d mMax=%d", lMax, mMax)
	}
	if nLat < lMax+1 {
		return nil, fmt.Errorf("sht: %d latitudes cannot resolve degree %d (need >= %d)", nLat, lMax, lMax+1)
	}
	if nLon < 2*mMax+1 {
		return nil, fmt.Errorf("sht: %d longitudes cannot resolve order %d (need >= %d)", nLon, mMax, 2*mMax+1)
	}

	nodes, glWeights, err := quadrature.GaussLegendre(nLat)
	if err != nil {
		return nil, err
	}

	t := &Transform{
		lMax:    lMax,
		mMax:    mMax,
		nLon:    nLon,
		nLat:    nLat,
		lonGrid: grids.Uniform(0, 2*math.Pi, nLon),
		latGrid: make(grids.Grid, nLat),
		cosLat:  make([]float64, nLat),
		weights: make([]float64, nLat),
		plm:     make([][]float64, nLat),
		fft:     fourier.NewFFT(nLon),
		cfft:    fourier.NewCmplxFFT(nLon),
	}
	// Ascending zenith angles correspond to descending cos(zenith).
	for j := 0; j < nLat; j++ {
		x := nodes[nLat-1-j]
		t.latGrid[j] = math.Acos(x)
		t.cosLat[j] = x
		t.weights[j] = glWeights[nLat-1-j]
		t.plm[j] = legendreTable(lMax, mMax, x)
	}
	return t, nil
}

// Params returns the highest truncation that a field sampled on an
// nLon x nLat angular grid can carry without aliasing.
func Params(nLon, nLat int) (lMax, mMax int) {
	if nLat > 2 {
		lMax = (nLat - 2) / 2
	}
	if nLon > 2 {
		mMax = (nLon - 2) / 2
	}
	if mMax > lMax {
		mMax = lMax
	}
	return lMax, mMax
}

// NewForGrid constructs the anti-aliasing transform for a field sampled on
// an nLon x nLat angular grid.
func NewForGrid(nLon, nLat int) (*Transform, error) {
	lMax, mMax := Params(nLon, nLat)
	return New(lMax, mMax, nLon, nLat)
}

// LMax returns the maximum expansion degree.
func (t *Transform) LMax() int { return t.lMax }

// MMax returns the maximum expansion order.
func (t *Transform) MMax() int { return t.mMax }

// NLon returns the native longitude count.
func (t *Transform) NLon() int { return t.nLon }

// NLat returns the native latitude count.
func (t *Transform) NLat() int { return t.nLat }

// LonGrid returns the native longitude grid, uniform over [0, 2*pi).
func (t *Transform) LonGrid() grids.Grid { return t.lonGrid }

// LatGrid returns the native latitude grid, the arccosine of the
// Gauss-Legendre nodes in ascending zenith order.
func (t *Transform) LatGrid() grids.Grid { return t.latGrid }

// NumCoeffs returns the coefficient count of a real-field expansion, which
// stores orders 0..mMax only.
func (t *Transform) NumCoeffs() int {
	return (t.mMax+1)*(t.lMax+1) - t.mMax*(t.mMax+1)/2
}

// NumCoeffsCmplx returns the coefficient count of a complex-field
// expansion, which stores signed orders -mMax..mMax.
func (t *Transform) NumCoeffsCmplx() int {
	return (2*t.mMax+1)*(t.lMax+1) - t.mMax*(t.mMax+1)
}

// coeffIndex maps (l, m), 0 <= m <= l <= lMax, into the real layout:
// m-major with l ascending inside each order block. Index 0 is (0, 0).
func (t *Transform) coeffIndex(l, m int) int {
	return m*(t.lMax+1) - m*(m-1)/2 + (l - m)
}

// coeffIndexCmplx maps signed (l, m) into the complex layout: orders
// ascending from -mMax to mMax, l ascending inside each block.
func (t *Transform) coeffIndexCmplx(l, m int) int {
	off := 0
	for mu := -t.mMax; mu < m; mu++ {
		off += t.lMax - abs(mu) + 1
	}
	return off + (l - abs(m))
}

// CoeffIndex returns the position of degree l, order m in the real
// coefficient layout.
func (t *Transform) CoeffIndex(l, m int) int { return t.coeffIndex(l, m) }

// CoeffIndexCmplx returns the position of degree l, signed order m in the
// complex coefficient layout.
func (t *Transform) CoeffIndexCmplx(l, m int) int { return t.coeffIndexCmplx(l, m) }

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// SameTruncation reports whether two transforms share (lMax, mMax).
func (t *Transform) SameTruncation(other *Transform) bool {
	return t.lMax == other.lMax && t.mMax == other.mMax
}

// AddCoeffs sums two real-layout coefficient vectors with possibly
// different truncations. The result carries the truncation of ta: the
// coefficients of cb that ta can represent are accumulated onto a copy of
// ca, the rest are dropped; no aliasing is introduced.
func AddCoeffs(ta *Transform, ca []complex128, tb *Transform, cb []complex128) ([]complex128, error) {
	if len(ca) != ta.NumCoeffs() || len(cb) != tb.NumCoeffs() {
		return nil, fmt.Errorf("sht: coefficient lengths %d, %d do not match truncations (%d, %d)", len(ca), len(cb), ta.NumCoeffs(), tb.NumCoeffs())
	}
	out := append([]complex128(nil), ca...)
	mMax := min(ta.mMax, tb.mMax)
	lMax := min(ta.lMax, tb.lMax)
	for m := 0; m <= mMax; m++ {
		for l := m; l <= lMax; l++ {
			out[ta.coeffIndex(l, m)] += cb[tb.coeffIndex(l, m)]
		}
	}
	return out, nil
}

// AddCoeffsCmplx is AddCoeffs for complex-layout coefficient vectors.
func AddCoeffsCmplx(ta *Transform, ca []complex128, tb *Transform, cb []complex128) ([]complex128, error) {
	if len(ca) != ta.NumCoeffsCmplx() || len(cb) != tb.NumCoeffsCmplx() {
		return nil, fmt.Errorf("sht: coefficient lengths %d, %d do not match truncations (%d, %d)", len(ca), len(cb), ta.NumCoeffsCmplx(), tb.NumCoeffsCmplx())
	}
	out := append([]complex128(nil), ca...)
	mMax := min(ta.mMax, tb.mMax)
	lMax := min(ta.lMax, tb.lMax)
	for m := -mMax; m <= mMax; m++ {
		for l := abs(m); l <= lMax; l++ {
			out[ta.coeffIndexCmplx(l, m)] += cb[tb.coeffIndexCmplx(l, m)]
		}
	}
	return out, nil
}

// AddCoeffs2D sums two doubly-spectral coefficient matrices, rows indexed
// by the complex layout of the incoming-angle transform and columns by the
// real layout of the scattering-angle transform. As with AddCoeffs the
// result keeps the truncations of the first operand.
func AddCoeffs2D(aInc, aScat *Transform, ca *mat.CDense, bInc, bScat *Transform, cb *mat.CDense) (*mat.CDense, error) {
	ra, cca := ca.Dims()
	rb, ccb := cb.Dims()
	if ra != aInc.NumCoeffsCmplx() || cca != aScat.NumCoeffs() {
		return nil, fmt.Errorf("sht: matrix is %dx%d, truncations need %dx%d", ra, cca, aInc.NumCoeffsCmplx(), aScat.NumCoeffs())
	}
	if rb != bInc.NumCoeffsCmplx() || ccb != bScat.NumCoeffs() {
		return nil, fmt.Errorf("sht: matrix is %dx%d, truncations need %dx%d", rb, ccb, bInc.NumCoeffsCmplx(), bScat.NumCoeffs())
	}

	out := mat.NewCDense(ra, cca, nil)
	out.Copy(ca)
	mMaxI := min(aInc.mMax, bInc.mMax)
	lMaxI := min(aInc.lMax, bInc.lMax)
	mMaxS := min(aScat.mMax, bScat.mMax)
	lMaxS := min(aScat.lMax, bScat.lMax)
	for mi := -mMaxI; mi <= mMaxI; mi++ {
		for li := abs(mi); li <= lMaxI; li++ {
			ia := aInc.coeffIndexCmplx(li, mi)
			ib := bInc.coeffIndexCmplx(li, mi)
			for ms := 0; ms <= mMaxS; ms++ {
				for ls := ms; ls <= lMaxS; ls++ {
					ja := aScat.coeffIndex(ls, ms)
					jb := bScat.coeffIndex(ls, ms)
					out.Set(ia, ja, out.At(ia, ja)+cb.At(ib, jb))
				}
			}
		}
	}
	return out, nil
}

// legendreTable evaluates the fully normalized associated Legendre
// functions (Condon-Shortley phase) at x = cos(zenith) for every (l, m)
// with 0 <= m <= mMax, m <= l <= lMax, laid out like coeffIndex.
func legendreTable(lMax, mMax int, x float64) []float64 {
	n := (mMax+1)*(lMax+1) - mMax*(mMax+1)/2
	out := make([]float64, n)
	s := math.Sqrt(1 - x*x)

	idx := func(l, m int) int { return m*(lMax+1) - m*(m-1)/2 + (l - m) }

	pmm := 1.0 / math.Sqrt(4*math.Pi)
	for m := 0; m <= mMax; m++ {
		if m > 0 {
			pmm *= -math.Sqrt((2*float64(m)+1)/(2*float64(m))) * s
		}
		out[idx(m, m)] = pmm
		if m+1 <= lMax {
			out[idx(m+1, m)] = math.Sqrt(2*float64(m)+3) * x * pmm
		}
		for l := m + 2; l <= lMax; l++ {
			lf, mf := float64(l), float64(m)
			a := math.Sqrt((4*lf*lf - 1) / (lf*lf - mf*mf))
			b := math.Sqrt(((lf-1)*(lf-1) - mf*mf) / (4*(lf-1)*(lf-1) - 1))
			out[idx(l, m)] = a * (x*out[idx(l-1, m)] - b*out[idx(l-2, m)])
		}
	}
	return out
}
