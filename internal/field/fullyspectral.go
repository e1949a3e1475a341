package field

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/scatfield/internal/grids"
	"github.com/banshee-data/scatfield/internal/regrid"
	"github.com/banshee-data/scatfield/internal/sht"
	"github.com/banshee-data/scatfield/internal/tensor"
)

// Axis order of the rank-5 fully-spectral tensor.
const (
	axCoeffInc    = 2
	axCoeffScatFS = 3
	axElemFS      = 4
)

// FullySpectral holds both angle dependencies as spherical harmonics
// coefficients; only frequency and temperature remain gridded. The data
// tensor is rank 5: frequency, temperature, incoming coefficient
// (signed-order complex layout), scattering coefficient, element.
type FullySpectral struct {
	freq          grids.Grid
	temp          grids.Grid
	incTransform  *sht.Transform
	scatTransform *sht.Transform
	data          *tensor.Dense[complex128]
}

// NewFullySpectral wraps grids, the two transforms, and coefficient data
// into a field.
func NewFullySpectral(freq, temp grids.Grid, inc, scat *sht.Transform, data *tensor.Dense[complex128]) (*FullySpectral, error) {
	if data.Rank() != 5 {
		return nil, fmt.Errorf("%w: fully spectral data must be rank 5, got %d", ErrDimensionMismatch, data.Rank())
	}
	for ax, g := range []grids.Grid{freq, temp} {
		if data.Dim(ax) != g.Len() {
			return nil, fmt.Errorf("%w: axis %d has %d points, grid has %d", ErrDimensionMismatch, ax, data.Dim(ax), g.Len())
		}
	}
	if data.Dim(axCoeffInc) != inc.NumCoeffsCmplx() {
		return nil, fmt.Errorf("%w: incoming coefficient axis has %d entries, transform needs %d", ErrDimensionMismatch, data.Dim(axCoeffInc), inc.NumCoeffsCmplx())
	}
	if data.Dim(axCoeffScatFS) != scat.NumCoeffs() {
		return nil, fmt.Errorf("%w: scattering coefficient axis has %d entries, transform needs %d", ErrDimensionMismatch, data.Dim(axCoeffScatFS), scat.NumCoeffs())
	}
	return &FullySpectral{freq, temp, inc, scat, data}, nil
}

// EmptyFullySpectral allocates a zero-filled fully-spectral field.
func EmptyFullySpectral(freq, temp grids.Grid, inc, scat *sht.Transform, nElements int) *FullySpectral {
	data := tensor.New[complex128](freq.Len(), temp.Len(), inc.NumCoeffsCmplx(), scat.NumCoeffs(), nElements)
	return &FullySpectral{freq, temp, inc, scat, data}
}

func (f *FullySpectral) Format() Format { return FormatFullySpectral }

func (f *FullySpectral) ParticleType() grids.ParticleType {
	return grids.Classify(f.incTransform.NLon(), f.incTransform.NLat(), f.scatTransform.NLon(), f.scatTransform.NLat())
}

func (f *FullySpectral) FrequencyGrid() grids.Grid       { return f.freq }
func (f *FullySpectral) TemperatureGrid() grids.Grid     { return f.temp }
func (f *FullySpectral) IncTransform() *sht.Transform    { return f.incTransform }
func (f *FullySpectral) ScatTransform() *sht.Transform   { return f.scatTransform }
func (f *FullySpectral) NumElements() int                { return f.data.Dim(axElemFS) }
func (f *FullySpectral) Data() *tensor.Dense[complex128] { return f.data }

// Copy returns a field with shared grids and transforms and a private
// data tensor.
func (f *FullySpectral) Copy() *FullySpectral {
	c := *f
	c.data = f.data.Clone()
	return &c
}

func (f *FullySpectral) withData(d *tensor.Dense[complex128]) *FullySpectral {
	c := *f
	c.data = d
	return &c
}

// coeffMatrix extracts the (incoming x scattering) coefficient matrix at
// one frequency, temperature, and element index.
func (f *FullySpectral) coeffMatrix(freqIdx, tempIdx, elem int) *mat.CDense {
	return tensor.CMatrixAt(f.data, axCoeffInc, axCoeffScatFS, []int{freqIdx, tempIdx, elem})
}

// SetData re-expresses other's coefficients in this field's truncations
// and overwrites the slice at the given frequency and temperature index.
func (f *FullySpectral) SetData(freqIdx, tempIdx int, other *FullySpectral) error {
	if other.freq.Len() != 1 || other.temp.Len() != 1 {
		return fmt.Errorf("%w: source must hold a single frequency and temperature, has %dx%d", ErrDimensionMismatch, other.freq.Len(), other.temp.Len())
	}
	if other.NumElements() != f.NumElements() {
		return fmt.Errorf("%w: element counts %d and %d differ", ErrDimensionMismatch, f.NumElements(), other.NumElements())
	}
	zero := mat.NewCDense(f.incTransform.NumCoeffsCmplx(), f.scatTransform.NumCoeffs(), nil)
	for e := 0; e < f.NumElements(); e++ {
		sum, err := sht.AddCoeffs2D(f.incTransform, f.scatTransform, zero, other.incTransform, other.scatTransform, other.coeffMatrix(0, 0, e))
		if err != nil {
			return err
		}
		tensor.SetCMatrixAt(f.data, axCoeffInc, axCoeffScatFS, []int{freqIdx, tempIdx, e}, sum)
	}
	return nil
}

// InterpolateFrequency interpolates onto a new frequency grid.
func (f *FullySpectral) InterpolateFrequency(freq grids.Grid) (*FullySpectral, error) {
	d, err := regrid.Apply(f.data, []regrid.AxisSpec{{Axis: axFreq, Source: f.freq, Target: freq}}, false)
	if err != nil {
		return nil, err
	}
	c := f.withData(d)
	c.freq = freq
	return c, nil
}

// InterpolateTemperature interpolates onto a new temperature grid,
// optionally extrapolating beyond the stored one.
func (f *FullySpectral) InterpolateTemperature(temp grids.Grid, extrapolate bool) (*FullySpectral, error) {
	d, err := regrid.Apply(f.data, []regrid.AxisSpec{{Axis: axTemp, Source: f.temp, Target: temp}}, extrapolate)
	if err != nil {
		return nil, err
	}
	c := f.withData(d)
	c.temp = temp
	return c, nil
}

// Regrid interpolates frequency and temperature; the angle dependencies
// are spectral and untouched.
func (f *FullySpectral) Regrid(freq, temp grids.Grid) (*FullySpectral, error) {
	c, err := f.InterpolateFrequency(freq)
	if err != nil {
		return nil, err
	}
	return c.InterpolateTemperature(temp, false)
}

// IntegrateScatteringAngles integrates over the scattering solid angle.
// The incoming-angle dependency stays spectral, so the result is complex:
// a rank-4 tensor indexed by frequency, temperature, incoming coefficient,
// and element.
func (f *FullySpectral) IntegrateScatteringAngles() *tensor.Dense[complex128] {
	out := tensor.New[complex128](f.freq.Len(), f.temp.Len(), f.incTransform.NumCoeffsCmplx(), f.NumElements())
	idx := make([]int, 5)
	factor := complex(math.Sqrt(4*math.Pi), 0)
	for it := tensor.Indices(out.Shape()...); it.Next(); {
		c := it.Coords()
		copy(idx, c[:3])
		idx[axCoeffScatFS], idx[axElemFS] = 0, c[3]
		out.Set(factor*f.data.At(idx...), c...)
	}
	return out
}

// Normalize rescales so the scattering-angle integral of the first
// element equals value for every incoming direction. Normalization is per
// incoming direction, so the field round-trips through the spectral
// representation on the incoming transform's native grids.
func (f *FullySpectral) Normalize(value float64) error {
	s, err := f.ToSpectral()
	if err != nil {
		return err
	}
	s.Normalize(value)
	n, err := s.ToFullySpectralWith(f.incTransform)
	if err != nil {
		return err
	}
	f.data = n.data
	return nil
}

// AddAssign regrids other onto this field's frequency and temperature
// grids and accumulates its coefficients, combining the truncations of
// both angle expansions without aliasing.
func (f *FullySpectral) AddAssign(other *FullySpectral) error {
	if other.NumElements() != f.NumElements() {
		return fmt.Errorf("%w: element counts %d and %d differ", ErrDimensionMismatch, f.NumElements(), other.NumElements())
	}
	src, err := other.Regrid(f.freq, f.temp)
	if err != nil {
		return err
	}
	if src.incTransform.SameTruncation(f.incTransform) && src.scatTransform.SameTruncation(f.scatTransform) {
		return f.data.AddInPlace(src.data)
	}
	for it := tensor.Indices(f.freq.Len(), f.temp.Len(), f.NumElements()); it.Next(); {
		c := it.Coords()
		ca := tensor.CMatrixAt(f.data, axCoeffInc, axCoeffScatFS, c)
		cb := tensor.CMatrixAt(src.data, axCoeffInc, axCoeffScatFS, c)
		sum, err := sht.AddCoeffs2D(f.incTransform, f.scatTransform, ca, src.incTransform, src.scatTransform, cb)
		if err != nil {
			return err
		}
		tensor.SetCMatrixAt(f.data, axCoeffInc, axCoeffScatFS, c, sum)
	}
	return nil
}

// Add returns the truncation-aware sum on this field's grids.
func (f *FullySpectral) Add(other *FullySpectral) (*FullySpectral, error) {
	c := f.Copy()
	if err := c.AddAssign(other); err != nil {
		return nil, err
	}
	return c, nil
}

// ScaleAssign multiplies the coefficients in place.
func (f *FullySpectral) ScaleAssign(c complex128) { f.data.Scale(c) }

// Scaled returns a scaled copy.
func (f *FullySpectral) Scaled(c complex128) *FullySpectral {
	out := f.Copy()
	out.ScaleAssign(c)
	return out
}

// SetNumScatteringCoeffs resizes the element axis in place.
func (f *FullySpectral) SetNumScatteringCoeffs(n int) {
	f.data = f.data.ResizeAxis(axElemFS, n)
}

// ToSpectral synthesizes the incoming-angle dependency onto the incoming
// transform's native grids, keeping the scattering expansion.
func (f *FullySpectral) ToSpectral() (*Spectral, error) {
	lonInc, latInc := f.incTransform.LonGrid(), f.incTransform.LatGrid()
	out := tensor.New[complex128](f.freq.Len(), f.temp.Len(), lonInc.Len(), latInc.Len(), f.scatTransform.NumCoeffs(), f.NumElements())
	for it := tensor.Indices(f.freq.Len(), f.temp.Len(), f.scatTransform.NumCoeffs(), f.NumElements()); it.Next(); {
		coeffs := tensor.VectorAt(f.data, axCoeffInc, it.Coords())
		m, err := f.incTransform.SynthesizeCmplx(coeffs)
		if err != nil {
			return nil, err
		}
		tensor.SetCMatrixAt(out, axLonInc, axLatInc, it.Coords(), m)
	}
	return &Spectral{
		freq:      f.freq,
		temp:      f.temp,
		lonInc:    lonInc,
		latInc:    latInc,
		transform: f.scatTransform,
		data:      out,
	}, nil
}

// ToFullySpectral re-expresses both expansions at different truncations
// by zero-padding or truncating in coefficient space.
func (f *FullySpectral) ToFullySpectral(inc, scat *sht.Transform) (*FullySpectral, error) {
	out := EmptyFullySpectral(f.freq, f.temp, inc, scat, f.NumElements())
	if err := addAllSlices(out, f); err != nil {
		return nil, err
	}
	return out, nil
}

func addAllSlices(dst, src *FullySpectral) error {
	for it := tensor.Indices(dst.freq.Len(), dst.temp.Len(), dst.NumElements()); it.Next(); {
		c := it.Coords()
		sum, err := sht.AddCoeffs2D(dst.incTransform, dst.scatTransform, dst.coeffMatrix(c[0], c[1], c[2]), src.incTransform, src.scatTransform, src.coeffMatrix(c[0], c[1], c[2]))
		if err != nil {
			return err
		}
		tensor.SetCMatrixAt(dst.data, axCoeffInc, axCoeffScatFS, c, sum)
	}
	return nil
}
