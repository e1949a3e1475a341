package sht

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// Analyze expands a real field sampled on the native grid into spherical
// harmonics coefficients in the real layout. The field is an nLon x nLat
// matrix with longitude along rows.
func (t *Transform) Analyze(f mat.Matrix) ([]complex128, error) {
	r, c := f.Dims()
	if r != t.nLon || c != t.nLat {
		return nil, fmt.Errorf("sht: field is %dx%d, native grid is %dx%d", r, c, t.nLon, t.nLat)
	}

	// Azimuthal stage: Fourier coefficients per latitude ring. The FFT is
	// unnormalized, so the ring integral carries the 2*pi/nLon cell width.
	scale := 2 * math.Pi / float64(t.nLon)
	am := make([][]complex128, t.nLat)
	seq := make([]float64, t.nLon)
	for j := 0; j < t.nLat; j++ {
		for i := 0; i < t.nLon; i++ {
			seq[i] = f.At(i, j)
		}
		bins := t.fft.Coefficients(nil, seq)
		row := make([]complex128, t.mMax+1)
		for m := 0; m <= t.mMax; m++ {
			row[m] = bins[m] * complex(scale, 0)
		}
		am[j] = row
	}

	// Latitude stage: Gauss-Legendre projection onto the normalized
	// associated Legendre functions.
	out := make([]complex128, t.NumCoeffs())
	for j := 0; j < t.nLat; j++ {
		w := t.weights[j]
		plm := t.plm[j]
		for m := 0; m <= t.mMax; m++ {
			a := am[j][m] * complex(w, 0)
			for l := m; l <= t.lMax; l++ {
				k := t.coeffIndex(l, m)
				out[k] += complex(plm[k], 0) * a
			}
		}
	}
	return out, nil
}

// Synthesize evaluates a real-layout coefficient vector on the native
// grid, returning an nLon x nLat matrix.
func (t *Transform) Synthesize(coeffs []complex128) (*mat.Dense, error) {
	if len(coeffs) != t.NumCoeffs() {
		return nil, fmt.Errorf("sht: got %d coefficients, truncation needs %d", len(coeffs), t.NumCoeffs())
	}

	out := mat.NewDense(t.nLon, t.nLat, nil)
	spectrum := make([]complex128, t.nLon)
	for j := 0; j < t.nLat; j++ {
		plm := t.plm[j]
		for i := range spectrum {
			spectrum[i] = 0
		}
		for m := 0; m <= t.mMax; m++ {
			var g complex128
			for l := m; l <= t.lMax; l++ {
				k := t.coeffIndex(l, m)
				g += coeffs[k] * complex(plm[k], 0)
			}
			spectrum[m] = g
			if m > 0 {
				// Real fields store positive orders only; the negative
				// orders are their conjugates.
				spectrum[t.nLon-m] = cmplx.Conj(g)
			}
		}
		ring := t.cfft.Sequence(nil, spectrum)
		for i := 0; i < t.nLon; i++ {
			out.Set(i, j, real(ring[i]))
		}
	}
	return out, nil
}

// AnalyzeCmplx expands a complex field sampled on the native grid into the
// signed-order complex coefficient layout.
func (t *Transform) AnalyzeCmplx(f *mat.CDense) ([]complex128, error) {
	r, c := f.Dims()
	if r != t.nLon || c != t.nLat {
		return nil, fmt.Errorf("sht: field is %dx%d, native grid is %dx%d", r, c, t.nLon, t.nLat)
	}

	scale := complex(2*math.Pi/float64(t.nLon), 0)
	am := make([][]complex128, t.nLat)
	seq := make([]complex128, t.nLon)
	for j := 0; j < t.nLat; j++ {
		for i := 0; i < t.nLon; i++ {
			seq[i] = f.At(i, j)
		}
		bins := t.cfft.Coefficients(nil, seq)
		row := make([]complex128, 2*t.mMax+1)
		for m := -t.mMax; m <= t.mMax; m++ {
			row[m+t.mMax] = bins[(m+t.nLon)%t.nLon] * scale
		}
		am[j] = row
	}

	out := make([]complex128, t.NumCoeffsCmplx())
	for j := 0; j < t.nLat; j++ {
		w := t.weights[j]
		plm := t.plm[j]
		for m := -t.mMax; m <= t.mMax; m++ {
			a := am[j][m+t.mMax] * complex(w*legendreSign(m), 0)
			for l := abs(m); l <= t.lMax; l++ {
				out[t.coeffIndexCmplx(l, m)] += complex(plm[t.coeffIndex(l, abs(m))], 0) * a
			}
		}
	}
	return out, nil
}

// SynthesizeCmplx evaluates a complex-layout coefficient vector on the
// native grid.
func (t *Transform) SynthesizeCmplx(coeffs []complex128) (*mat.CDense, error) {
	if len(coeffs) != t.NumCoeffsCmplx() {
		return nil, fmt.Errorf("sht: got %d coefficients, truncation needs %d", len(coeffs), t.NumCoeffsCmplx())
	}

	out := mat.NewCDense(t.nLon, t.nLat, nil)
	spectrum := make([]complex128, t.nLon)
	for j := 0; j < t.nLat; j++ {
		plm := t.plm[j]
		for i := range spectrum {
			spectrum[i] = 0
		}
		for m := -t.mMax; m <= t.mMax; m++ {
			var g complex128
			for l := abs(m); l <= t.lMax; l++ {
				g += coeffs[t.coeffIndexCmplx(l, m)] * complex(plm[t.coeffIndex(l, abs(m))], 0)
			}
			spectrum[(m+t.nLon)%t.nLon] = g * complex(legendreSign(m), 0)
		}
		ring := t.cfft.Sequence(nil, spectrum)
		for i := 0; i < t.nLon; i++ {
			out.Set(i, j, ring[i])
		}
	}
	return out, nil
}

// legendreSign carries the (-1)^m relating negative-order harmonics to the
// stored positive-order Legendre values.
func legendreSign(m int) float64 {
	if m < 0 && m%2 != 0 {
		return -1
	}
	return 1
}
