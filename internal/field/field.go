// Package field implements the scattering data field abstraction: dense
// numeric fields of single-scattering properties indexed by frequency,
// temperature, incoming direction, and scattering direction, in three
// interchangeable representations of the angular dependency.
//
// Gridded fields sample both angle pairs explicitly (a rank-7 real
// tensor), Spectral fields expand the scattering-angle dependency in
// spherical harmonics (rank-6 complex), and FullySpectral fields expand
// both angle pairs (rank-5 complex). Conversions between the three go
// through the sht package and are lossless at or above the anti-aliasing
// truncation of the grids involved.
//
// Grids and transforms are shared by reference between fields; Copy and
// every derived-field operation allocate a private data tensor but never
// duplicate grids.
package field

import (
	"errors"

	"github.com/banshee-data/scatfield/internal/grids"
)

// ErrDimensionMismatch reports incompatible axis sizes or element counts
// between two fields or between grids and data.
var ErrDimensionMismatch = errors.New("field: dimension mismatch")

// Format identifies the angular representation of a field.
type Format int

const (
	FormatGridded Format = iota
	FormatSpectral
	FormatFullySpectral
)

func (f Format) String() string {
	switch f {
	case FormatGridded:
		return "gridded"
	case FormatSpectral:
		return "spectral"
	case FormatFullySpectral:
		return "fully spectral"
	default:
		return "unknown"
	}
}

// ZenithPolicy selects how DownsampleScatteringAngles treats the zenith
// axis. The azimuth axis is always downsampled conservatively over the
// full 2*pi range; the zenith axis is plain-interpolated by default, or
// conservatively redistributed over the solid-angle measure (linear in
// cos(zenith)) when energy conservation matters more than pointwise
// accuracy.
type ZenithPolicy int

const (
	ZenithInterpolate ZenithPolicy = iota
	ZenithConservative
)

// Field is the capability surface shared by the three representations.
type Field interface {
	Format() Format
	ParticleType() grids.ParticleType
	FrequencyGrid() grids.Grid
	TemperatureGrid() grids.Grid

	// NumElements returns the length of the element axis (phase matrix
	// components stored per direction pair).
	NumElements() int
}

var (
	_ Field = (*Gridded)(nil)
	_ Field = (*Spectral)(nil)
	_ Field = (*FullySpectral)(nil)
)
