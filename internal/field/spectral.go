package field

import (
	"fmt"
	"math"

	"github.com/banshee-data/scatfield/internal/grids"
	"github.com/banshee-data/scatfield/internal/regrid"
	"github.com/banshee-data/scatfield/internal/sht"
	"github.com/banshee-data/scatfield/internal/tensor"
)

// Axis order of the rank-6 spectral tensor. The leading four axes match
// the gridded layout; the scattering angles collapse into one coefficient
// axis.
const (
	axCoeffScat = 4
	axElemSpec  = 5
)

// Spectral holds the scattering-angle dependency as spherical harmonics
// coefficients tied to one transform; the incoming angles stay gridded.
// The data tensor is rank 6: frequency, temperature, incoming azimuth,
// incoming zenith, scattering coefficient, element.
type Spectral struct {
	freq      grids.Grid
	temp      grids.Grid
	lonInc    grids.Grid
	latInc    grids.Grid
	transform *sht.Transform
	data      *tensor.Dense[complex128]
}

// NewSpectral wraps grids, a transform, and coefficient data into a field.
func NewSpectral(freq, temp, lonInc, latInc grids.Grid, tr *sht.Transform, data *tensor.Dense[complex128]) (*Spectral, error) {
	if data.Rank() != 6 {
		return nil, fmt.Errorf("%w: spectral data must be rank 6, got %d", ErrDimensionMismatch, data.Rank())
	}
	for ax, g := range []grids.Grid{freq, temp, lonInc, latInc} {
		if data.Dim(ax) != g.Len() {
			return nil, fmt.Errorf("%w: axis %d has %d points, grid has %d", ErrDimensionMismatch, ax, data.Dim(ax), g.Len())
		}
	}
	if data.Dim(axCoeffScat) != tr.NumCoeffs() {
		return nil, fmt.Errorf("%w: coefficient axis has %d entries, transform needs %d", ErrDimensionMismatch, data.Dim(axCoeffScat), tr.NumCoeffs())
	}
	return &Spectral{freq, temp, lonInc, latInc, tr, data}, nil
}

// EmptySpectral allocates a zero-filled spectral field.
func EmptySpectral(freq, temp, lonInc, latInc grids.Grid, tr *sht.Transform, nElements int) *Spectral {
	data := tensor.New[complex128](freq.Len(), temp.Len(), lonInc.Len(), latInc.Len(), tr.NumCoeffs(), nElements)
	return &Spectral{freq, temp, lonInc, latInc, tr, data}
}

func (s *Spectral) Format() Format { return FormatSpectral }

func (s *Spectral) ParticleType() grids.ParticleType {
	return grids.Classify(s.lonInc.Len(), s.latInc.Len(), s.transform.NLon(), s.transform.NLat())
}

func (s *Spectral) FrequencyGrid() grids.Grid       { return s.freq }
func (s *Spectral) TemperatureGrid() grids.Grid     { return s.temp }
func (s *Spectral) LonIncGrid() grids.Grid          { return s.lonInc }
func (s *Spectral) LatIncGrid() grids.Grid          { return s.latInc }
func (s *Spectral) Transform() *sht.Transform       { return s.transform }
func (s *Spectral) NumElements() int                { return s.data.Dim(axElemSpec) }
func (s *Spectral) Data() *tensor.Dense[complex128] { return s.data }

// Copy returns a field with shared grids and transform and a private data
// tensor.
func (s *Spectral) Copy() *Spectral {
	c := *s
	c.data = s.data.Clone()
	return &c
}

func (s *Spectral) withData(d *tensor.Dense[complex128]) *Spectral {
	c := *s
	c.data = d
	return &c
}

// SetData regrids other's incoming angles onto this field's grids,
// re-expresses its coefficients in this field's truncation, and overwrites
// the slice at the given frequency and temperature index. Coefficients the
// target truncation cannot represent are dropped without aliasing.
func (s *Spectral) SetData(freqIdx, tempIdx int, other *Spectral) error {
	if other.freq.Len() != 1 || other.temp.Len() != 1 {
		return fmt.Errorf("%w: source must hold a single frequency and temperature, has %dx%d", ErrDimensionMismatch, other.freq.Len(), other.temp.Len())
	}
	if other.NumElements() != s.NumElements() {
		return fmt.Errorf("%w: element counts %d and %d differ", ErrDimensionMismatch, s.NumElements(), other.NumElements())
	}
	src, err := other.InterpolateAngles(s.lonInc, s.latInc)
	if err != nil {
		return err
	}
	zero := make([]complex128, s.transform.NumCoeffs())
	dstFixed := make([]int, 5)
	dstFixed[0], dstFixed[1] = freqIdx, tempIdx
	for it := tensor.Indices(s.lonInc.Len(), s.latInc.Len(), s.NumElements()); it.Next(); {
		c := it.Coords()
		srcFixed := []int{0, 0, c[0], c[1], c[2]}
		copy(dstFixed[2:], c)
		cb := tensor.VectorAt(src.data, axCoeffScat, srcFixed)
		sum, err := sht.AddCoeffs(s.transform, zero, src.transform, cb)
		if err != nil {
			return err
		}
		tensor.SetVectorAt(s.data, axCoeffScat, dstFixed, sum)
	}
	return nil
}

// InterpolateFrequency interpolates onto a new frequency grid.
func (s *Spectral) InterpolateFrequency(freq grids.Grid) (*Spectral, error) {
	d, err := regrid.Apply(s.data, []regrid.AxisSpec{{Axis: axFreq, Source: s.freq, Target: freq}}, false)
	if err != nil {
		return nil, err
	}
	c := s.withData(d)
	c.freq = freq
	return c, nil
}

// InterpolateTemperature interpolates onto a new temperature grid,
// optionally extrapolating beyond the stored one.
func (s *Spectral) InterpolateTemperature(temp grids.Grid, extrapolate bool) (*Spectral, error) {
	d, err := regrid.Apply(s.data, []regrid.AxisSpec{{Axis: axTemp, Source: s.temp, Target: temp}}, extrapolate)
	if err != nil {
		return nil, err
	}
	c := s.withData(d)
	c.temp = temp
	return c, nil
}

// InterpolateAngles jointly interpolates the incoming-angle axes; the
// scattering dependency is spectral and untouched.
func (s *Spectral) InterpolateAngles(lonInc, latInc grids.Grid) (*Spectral, error) {
	d, err := regrid.Apply(s.data, []regrid.AxisSpec{
		{Axis: axLonInc, Source: s.lonInc, Target: lonInc},
		{Axis: axLatInc, Source: s.latInc, Target: latInc},
	}, true)
	if err != nil {
		return nil, err
	}
	c := s.withData(d)
	c.lonInc, c.latInc = lonInc, latInc
	return c, nil
}

// Regrid interpolates frequency, temperature, and incoming angles at once.
func (s *Spectral) Regrid(freq, temp, lonInc, latInc grids.Grid) (*Spectral, error) {
	c, err := s.InterpolateFrequency(freq)
	if err != nil {
		return nil, err
	}
	c, err = c.InterpolateTemperature(temp, false)
	if err != nil {
		return nil, err
	}
	return c.InterpolateAngles(lonInc, latInc)
}

// IntegrateScatteringAngles integrates over the scattering solid angle.
// For an orthonormal expansion the integral is sqrt(4*pi) times the real
// part of the degree-0 coefficient, with no synthesis step.
func (s *Spectral) IntegrateScatteringAngles() *tensor.Dense[float64] {
	out := tensor.New[float64](s.freq.Len(), s.temp.Len(), s.lonInc.Len(), s.latInc.Len(), s.NumElements())
	idx := make([]int, 6)
	for it := tensor.Indices(out.Shape()...); it.Next(); {
		c := it.Coords()
		copy(idx, c[:4])
		idx[axCoeffScat], idx[axElemSpec] = 0, c[4]
		out.Set(math.Sqrt(4*math.Pi)*real(s.data.At(idx...)), c...)
	}
	return out
}

// Normalize rescales every (frequency, temperature, incoming-angle) slice
// so the scattering-angle integral of its first element equals value.
// Slices with a zero integral are left untouched.
func (s *Spectral) Normalize(value float64) {
	integrals := s.IntegrateScatteringAngles()
	idx := make([]int, 6)
	for it := tensor.Indices(s.freq.Len(), s.temp.Len(), s.lonInc.Len(), s.latInc.Len()); it.Next(); {
		outer := it.Coords()
		w := integrals.At(outer[0], outer[1], outer[2], outer[3], 0)
		if w == 0 {
			continue
		}
		scale := complex(value/w, 0)
		copy(idx, outer)
		for k := 0; k < s.transform.NumCoeffs(); k++ {
			for e := 0; e < s.NumElements(); e++ {
				idx[axCoeffScat], idx[axElemSpec] = k, e
				s.data.Set(s.data.At(idx...)*scale, idx...)
			}
		}
	}
}

// AddAssign regrids other onto this field's grids and accumulates its
// coefficients, combining the two truncations without aliasing.
func (s *Spectral) AddAssign(other *Spectral) error {
	if other.NumElements() != s.NumElements() {
		return fmt.Errorf("%w: element counts %d and %d differ", ErrDimensionMismatch, s.NumElements(), other.NumElements())
	}
	src, err := other.Regrid(s.freq, s.temp, s.lonInc, s.latInc)
	if err != nil {
		return err
	}
	if src.transform.SameTruncation(s.transform) {
		return s.data.AddInPlace(src.data)
	}
	fixed := make([]int, 5)
	for it := tensor.Indices(s.freq.Len(), s.temp.Len(), s.lonInc.Len(), s.latInc.Len(), s.NumElements()); it.Next(); {
		copy(fixed, it.Coords())
		ca := tensor.VectorAt(s.data, axCoeffScat, fixed)
		cb := tensor.VectorAt(src.data, axCoeffScat, fixed)
		sum, err := sht.AddCoeffs(s.transform, ca, src.transform, cb)
		if err != nil {
			return err
		}
		tensor.SetVectorAt(s.data, axCoeffScat, fixed, sum)
	}
	return nil
}

// Add returns the truncation-aware sum on this field's grids.
func (s *Spectral) Add(other *Spectral) (*Spectral, error) {
	c := s.Copy()
	if err := c.AddAssign(other); err != nil {
		return nil, err
	}
	return c, nil
}

// ScaleAssign multiplies the coefficients in place.
func (s *Spectral) ScaleAssign(c complex128) { s.data.Scale(c) }

// Scaled returns a scaled copy.
func (s *Spectral) Scaled(c complex128) *Spectral {
	out := s.Copy()
	out.ScaleAssign(c)
	return out
}

// SetNumScatteringCoeffs resizes the element axis in place.
func (s *Spectral) SetNumScatteringCoeffs(n int) {
	s.data = s.data.ResizeAxis(axElemSpec, n)
}

// ToGridded synthesizes the scattering-angle dependency onto the
// transform's native grids.
func (s *Spectral) ToGridded() (*Gridded, error) {
	lonScat, latScat := s.transform.LonGrid(), s.transform.LatGrid()
	out := tensor.New[float64](s.freq.Len(), s.temp.Len(), s.lonInc.Len(), s.latInc.Len(), lonScat.Len(), latScat.Len(), s.NumElements())
	for it := tensor.Indices(s.freq.Len(), s.temp.Len(), s.lonInc.Len(), s.latInc.Len(), s.NumElements()); it.Next(); {
		coeffs := tensor.VectorAt(s.data, axCoeffScat, it.Coords())
		m, err := s.transform.Synthesize(coeffs)
		if err != nil {
			return nil, err
		}
		tensor.SetMatrixAt(out, axLonScat, axLatScat, it.Coords(), m)
	}
	return &Gridded{
		freq:    s.freq,
		temp:    s.temp,
		lonInc:  s.lonInc,
		latInc:  s.latInc,
		lonScat: lonScat,
		latScat: latScat,
		data:    out,
	}, nil
}

// ToGriddedWith re-expresses the coefficients at the given truncation and
// synthesizes onto that transform's native grids, changing the scattering
// resolution in one step.
func (s *Spectral) ToGriddedWith(tr *sht.Transform) (*Gridded, error) {
	c, err := s.ToSpectral(tr)
	if err != nil {
		return nil, err
	}
	return c.ToGridded()
}

// ToSpectral re-expresses the coefficients at a different truncation by
// zero-padding or truncating in coefficient space.
func (s *Spectral) ToSpectral(tr *sht.Transform) (*Spectral, error) {
	out := EmptySpectral(s.freq, s.temp, s.lonInc, s.latInc, tr, s.NumElements())
	zero := make([]complex128, tr.NumCoeffs())
	fixed := make([]int, 5)
	for it := tensor.Indices(s.freq.Len(), s.temp.Len(), s.lonInc.Len(), s.latInc.Len(), s.NumElements()); it.Next(); {
		copy(fixed, it.Coords())
		cb := tensor.VectorAt(s.data, axCoeffScat, fixed)
		sum, err := sht.AddCoeffs(tr, zero, s.transform, cb)
		if err != nil {
			return nil, err
		}
		tensor.SetVectorAt(out.data, axCoeffScat, fixed, sum)
	}
	return out, nil
}

// ToFullySpectral expands the incoming-angle dependency at the
// anti-aliasing truncation of the incoming grids.
func (s *Spectral) ToFullySpectral() (*FullySpectral, error) {
	tr, err := sht.NewForGrid(s.lonInc.Len(), s.latInc.Len())
	if err != nil {
		return nil, err
	}
	return s.ToFullySpectralWith(tr)
}

// ToFullySpectralWith expands the incoming-angle dependency using the
// given transform. The incoming grids must be the transform's native
// grids.
func (s *Spectral) ToFullySpectralWith(tr *sht.Transform) (*FullySpectral, error) {
	if tr.NLon() != s.lonInc.Len() || tr.NLat() != s.latInc.Len() {
		return nil, fmt.Errorf("%w: incoming grids are %dx%d, transform wants %dx%d", ErrDimensionMismatch, s.lonInc.Len(), s.latInc.Len(), tr.NLon(), tr.NLat())
	}
	out := tensor.New[complex128](s.freq.Len(), s.temp.Len(), tr.NumCoeffsCmplx(), s.transform.NumCoeffs(), s.NumElements())
	for it := tensor.Indices(s.freq.Len(), s.temp.Len(), s.transform.NumCoeffs(), s.NumElements()); it.Next(); {
		m := tensor.CMatrixAt(s.data, axLonInc, axLatInc, it.Coords())
		coeffs, err := tr.AnalyzeCmplx(m)
		if err != nil {
			return nil, err
		}
		tensor.SetVectorAt(out, axCoeffInc, it.Coords(), coeffs)
	}
	return &FullySpectral{
		freq:          s.freq,
		temp:          s.temp,
		incTransform:  tr,
		scatTransform: s.transform,
		data:          out,
	}, nil
}
