package field

import (
	"fmt"
	"math"

	"github.com/banshee-data/scatfield/internal/grids"
	"github.com/banshee-data/scatfield/internal/quadrature"
	"github.com/banshee-data/scatfield/internal/regrid"
	"github.com/banshee-data/scatfield/internal/sht"
	"github.com/banshee-data/scatfield/internal/tensor"
)

// Axis order of the rank-7 gridded tensor.
const (
	axFreq = iota
	axTemp
	axLonInc
	axLatInc
	axLonScat
	axLatScat
	axElem
)

// Gridded holds scattering data sampled explicitly on all six grids. The
// data tensor is rank 7: frequency, temperature, incoming azimuth,
// incoming zenith, scattering azimuth, scattering zenith, element.
type Gridded struct {
	freq    grids.Grid
	temp    grids.Grid
	lonInc  grids.Grid
	latInc  grids.Grid
	lonScat grids.Grid
	latScat grids.Grid
	data    *tensor.Dense[float64]
}

// NewGridded wraps grids and data into a field. The tensor must be rank 7
// with the first six axis lengths matching the grids.
func NewGridded(freq, temp, lonInc, latInc, lonScat, latScat grids.Grid, data *tensor.Dense[float64]) (*Gridded, error) {
	if data.Rank() != 7 {
		return nil, fmt.Errorf("%w: gridded data must be rank 7, got %d", ErrDimensionMismatch, data.Rank())
	}
	for ax, g := range []grids.Grid{freq, temp, lonInc, latInc, lonScat, latScat} {
		if data.Dim(ax) != g.Len() {
			return nil, fmt.Errorf("%w: axis %d has %d points, grid has %d", ErrDimensionMismatch, ax, data.Dim(ax), g.Len())
		}
	}
	return &Gridded{freq, temp, lonInc, latInc, lonScat, latScat, data}, nil
}

// EmptyGridded allocates a zero-filled field on the given grids for
// incremental population via SetData.
func EmptyGridded(freq, temp, lonInc, latInc, lonScat, latScat grids.Grid, nElements int) *Gridded {
	data := tensor.New[float64](freq.Len(), temp.Len(), lonInc.Len(), latInc.Len(), lonScat.Len(), latScat.Len(), nElements)
	return &Gridded{freq, temp, lonInc, latInc, lonScat, latScat, data}
}

func (g *Gridded) Format() Format { return FormatGridded }

func (g *Gridded) ParticleType() grids.ParticleType {
	return grids.Classify(g.lonInc.Len(), g.latInc.Len(), g.lonScat.Len(), g.latScat.Len())
}

func (g *Gridded) FrequencyGrid() grids.Grid    { return g.freq }
func (g *Gridded) TemperatureGrid() grids.Grid  { return g.temp }
func (g *Gridded) LonIncGrid() grids.Grid       { return g.lonInc }
func (g *Gridded) LatIncGrid() grids.Grid       { return g.latInc }
func (g *Gridded) LonScatGrid() grids.Grid      { return g.lonScat }
func (g *Gridded) LatScatGrid() grids.Grid      { return g.latScat }
func (g *Gridded) NumElements() int             { return g.data.Dim(axElem) }
func (g *Gridded) Data() *tensor.Dense[float64] { return g.data }

// Copy returns a field with shared grids and a private data tensor.
func (g *Gridded) Copy() *Gridded {
	c := *g
	c.data = g.data.Clone()
	return &c
}

// withData returns a shallow copy carrying the given tensor.
func (g *Gridded) withData(d *tensor.Dense[float64]) *Gridded {
	c := *g
	c.data = d
	return &c
}

// SetData regrids other's angular dependency onto this field's grids and
// overwrites the slice at the given frequency and temperature index. The
// source must hold a single frequency and temperature and the same number
// of elements.
func (g *Gridded) SetData(freqIdx, tempIdx int, other *Gridded) error {
	if other.freq.Len() != 1 || other.temp.Len() != 1 {
		return fmt.Errorf("%w: source must hold a single frequency and temperature, has %dx%d", ErrDimensionMismatch, other.freq.Len(), other.temp.Len())
	}
	if other.NumElements() != g.NumElements() {
		return fmt.Errorf("%w: element counts %d and %d differ", ErrDimensionMismatch, g.NumElements(), other.NumElements())
	}
	src, err := other.InterpolateAngles(g.lonInc, g.latInc, g.lonScat, g.latScat)
	if err != nil {
		return err
	}
	dst := make([]int, 7)
	dst[axFreq], dst[axTemp] = freqIdx, tempIdx
	srcIdx := make([]int, 7)
	for it := tensor.Indices(g.lonInc.Len(), g.latInc.Len(), g.lonScat.Len(), g.latScat.Len(), g.NumElements()); it.Next(); {
		copy(dst[axLonInc:], it.Coords())
		copy(srcIdx[axLonInc:], it.Coords())
		g.data.Set(src.data.At(srcIdx...), dst...)
	}
	return nil
}

// InterpolateFrequency interpolates onto a new frequency grid. Targets
// outside the stored grid are an error.
func (g *Gridded) InterpolateFrequency(freq grids.Grid) (*Gridded, error) {
	d, err := regrid.Apply(g.data, []regrid.AxisSpec{{Axis: axFreq, Source: g.freq, Target: freq}}, false)
	if err != nil {
		return nil, err
	}
	c := g.withData(d)
	c.freq = freq
	return c, nil
}

// InterpolateTemperature interpolates onto a new temperature grid,
// optionally extending the boundary slope beyond the stored grid.
func (g *Gridded) InterpolateTemperature(temp grids.Grid, extrapolate bool) (*Gridded, error) {
	d, err := regrid.Apply(g.data, []regrid.AxisSpec{{Axis: axTemp, Source: g.temp, Target: temp}}, extrapolate)
	if err != nil {
		return nil, err
	}
	c := g.withData(d)
	c.temp = temp
	return c, nil
}

// InterpolateAngles jointly interpolates the four angle axes. Angular
// grids are bounded, so targets slightly outside the stored span (finer
// quadrature grids reach closer to the poles) are extended with the
// boundary slope rather than rejected.
func (g *Gridded) InterpolateAngles(lonInc, latInc, lonScat, latScat grids.Grid) (*Gridded, error) {
	d, err := regrid.Apply(g.data, []regrid.AxisSpec{
		{Axis: axLonInc, Source: g.lonInc, Target: lonInc},
		{Axis: axLatInc, Source: g.latInc, Target: latInc},
		{Axis: axLonScat, Source: g.lonScat, Target: lonScat},
		{Axis: axLatScat, Source: g.latScat, Target: latScat},
	}, true)
	if err != nil {
		return nil, err
	}
	c := g.withData(d)
	c.lonInc, c.latInc, c.lonScat, c.latScat = lonInc, latInc, lonScat, latScat
	return c, nil
}

// Regrid interpolates all six axes at once. Frequency and temperature
// targets must lie within the stored grids; angle targets follow the
// InterpolateAngles extension rule.
func (g *Gridded) Regrid(freq, temp, lonInc, latInc, lonScat, latScat grids.Grid) (*Gridded, error) {
	c, err := g.InterpolateFrequency(freq)
	if err != nil {
		return nil, err
	}
	d, err := regrid.Apply(c.data, []regrid.AxisSpec{{Axis: axTemp, Source: c.temp, Target: temp}}, false)
	if err != nil {
		return nil, err
	}
	c = c.withData(d)
	c.temp = temp
	return c.InterpolateAngles(lonInc, latInc, lonScat, latScat)
}

// DownsampleScatteringAngles reduces the scattering-angle resolution. The
// azimuth axis is redistributed conservatively over [0, 2*pi) so the
// azimuthal integral is preserved; the zenith axis follows the policy.
func (g *Gridded) DownsampleScatteringAngles(lonScat, latScat grids.Grid, policy ZenithPolicy) (*Gridded, error) {
	d, err := regrid.DownsampleAxis(g.data, axLonScat, g.lonScat, lonScat, 0, 2*math.Pi)
	if err != nil {
		return nil, err
	}
	switch policy {
	case ZenithConservative:
		// Conserve over the solid-angle measure: linear in -cos(zenith).
		srcX := grids.MustNew(quadrature.Colatitudes(g.latScat))
		dstX := grids.MustNew(quadrature.Colatitudes(latScat))
		d, err = regrid.DownsampleAxisBounded(d, axLatScat, srcX, dstX)
	default:
		d, err = regrid.Apply(d, []regrid.AxisSpec{{Axis: axLatScat, Source: g.latScat, Target: latScat}}, true)
	}
	if err != nil {
		return nil, err
	}
	c := g.withData(d)
	c.lonScat, c.latScat = lonScat, latScat
	return c, nil
}

// IntegrateScatteringAngles integrates the data over the scattering solid
// angle, producing a rank-5 tensor indexed by frequency, temperature,
// incoming azimuth, incoming zenith, and element.
func (g *Gridded) IntegrateScatteringAngles() *tensor.Dense[float64] {
	colat := quadrature.Colatitudes(g.latScat)
	out := tensor.New[float64](g.freq.Len(), g.temp.Len(), g.lonInc.Len(), g.latInc.Len(), g.NumElements())
	for it := tensor.Indices(out.Shape()...); it.Next(); {
		m := tensor.MatrixAt(g.data, axLonScat, axLatScat, it.Coords())
		out.Set(quadrature.AngularIntegral(m, g.lonScat, colat), it.Coords()...)
	}
	return out
}

// Normalize rescales every (frequency, temperature, incoming-angle) slice
// so the scattering-angle integral of its first element equals value.
// Slices whose integral is zero are left untouched.
func (g *Gridded) Normalize(value float64) {
	integrals := g.IntegrateScatteringAngles()
	idx := make([]int, 7)
	for it := tensor.Indices(g.freq.Len(), g.temp.Len(), g.lonInc.Len(), g.latInc.Len()); it.Next(); {
		outer := it.Coords()
		w := integrals.At(outer[0], outer[1], outer[2], outer[3], 0)
		if w == 0 {
			continue
		}
		scale := value / w
		copy(idx, outer)
		for ls := 0; ls < g.lonScat.Len(); ls++ {
			for la := 0; la < g.latScat.Len(); la++ {
				for e := 0; e < g.NumElements(); e++ {
					idx[axLonScat], idx[axLatScat], idx[axElem] = ls, la, e
					g.data.Set(g.data.At(idx...)*scale, idx...)
				}
			}
		}
	}
}

// AddAssign regrids other onto this field's grids and accumulates it
// elementwise.
func (g *Gridded) AddAssign(other *Gridded) error {
	if other.NumElements() != g.NumElements() {
		return fmt.Errorf("%w: element counts %d and %d differ", ErrDimensionMismatch, g.NumElements(), other.NumElements())
	}
	src, err := other.Regrid(g.freq, g.temp, g.lonInc, g.latInc, g.lonScat, g.latScat)
	if err != nil {
		return err
	}
	return g.data.AddInPlace(src.data)
}

// Add returns the elementwise sum on this field's grids.
func (g *Gridded) Add(other *Gridded) (*Gridded, error) {
	c := g.Copy()
	if err := c.AddAssign(other); err != nil {
		return nil, err
	}
	return c, nil
}

// ScaleAssign multiplies the data in place.
func (g *Gridded) ScaleAssign(c float64) { g.data.Scale(c) }

// Scaled returns a scaled copy.
func (g *Gridded) Scaled(c float64) *Gridded {
	out := g.Copy()
	out.ScaleAssign(c)
	return out
}

// SetNumScatteringCoeffs resizes the element axis in place. Grown elements
// are zero-filled; shrinking keeps the matching prefix.
func (g *Gridded) SetNumScatteringCoeffs(n int) {
	g.data = g.data.ResizeAxis(axElem, n)
}

// ToSpectral expands the scattering-angle dependency in spherical
// harmonics at the anti-aliasing truncation of the scattering grids.
func (g *Gridded) ToSpectral() (*Spectral, error) {
	tr, err := sht.NewForGrid(g.lonScat.Len(), g.latScat.Len())
	if err != nil {
		return nil, err
	}
	return g.ToSpectralWith(tr)
}

// ToSpectralWith expands the scattering-angle dependency using the given
// transform. The field's scattering grids must be the transform's native
// grids (size is checked; values are the caller's contract).
func (g *Gridded) ToSpectralWith(tr *sht.Transform) (*Spectral, error) {
	if tr.NLon() != g.lonScat.Len() || tr.NLat() != g.latScat.Len() {
		return nil, fmt.Errorf("%w: scattering grids are %dx%d, transform wants %dx%d", ErrDimensionMismatch, g.lonScat.Len(), g.latScat.Len(), tr.NLon(), tr.NLat())
	}
	out := tensor.New[complex128](g.freq.Len(), g.temp.Len(), g.lonInc.Len(), g.latInc.Len(), tr.NumCoeffs(), g.NumElements())
	for it := tensor.Indices(g.freq.Len(), g.temp.Len(), g.lonInc.Len(), g.latInc.Len(), g.NumElements()); it.Next(); {
		m := tensor.MatrixAt(g.data, axLonScat, axLatScat, it.Coords())
		coeffs, err := tr.Analyze(m)
		if err != nil {
			return nil, err
		}
		tensor.SetVectorAt(out, axCoeffScat, it.Coords(), coeffs)
	}
	return &Spectral{
		freq:      g.freq,
		temp:      g.temp,
		lonInc:    g.lonInc,
		latInc:    g.latInc,
		transform: tr,
		data:      out,
	}, nil
}
