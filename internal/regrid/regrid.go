// Package regrid transforms selected axes of a tensor from one coordinate
// grid to another by sequential 1-D linear interpolation, leaving all other
// axes untouched. It also provides conservative downsampling for periodic
// axes, which preserves the integral over the full period.
package regrid

import (
	"errors"
	"fmt"

	"github.com/banshee-data/scatfield/internal/grids"
	"github.com/banshee-data/scatfield/internal/tensor"
)

// ErrOutOfRange reports an interpolation target outside the source grid
// span while extrapolation is disabled.
var ErrOutOfRange = errors.New("regrid: interpolation target outside source grid")

// AxisSpec pairs a tensor axis with its source and target coordinate grids.
type AxisSpec struct {
	Axis   int
	Source grids.Grid
	Target grids.Grid
}

// Apply interpolates the tensor along every axis named in specs, in order.
// Target coordinates outside a source grid raise ErrOutOfRange unless
// extrapolate is set, in which case the boundary interval's slope is
// extended. Singleton source axes broadcast to the target grid.
func Apply[T tensor.Scalar](d *tensor.Dense[T], specs []AxisSpec, extrapolate bool) (*tensor.Dense[T], error) {
	out := d
	for _, spec := range specs {
		if out.Dim(spec.Axis) != spec.Source.Len() {
			return nil, fmt.Errorf("regrid: axis %d has length %d but source grid has %d points", spec.Axis, out.Dim(spec.Axis), spec.Source.Len())
		}
		if spec.Source.Equal(spec.Target) {
			continue
		}
		w, err := axisWeights(spec.Source, spec.Target, extrapolate)
		if err != nil {
			return nil, fmt.Errorf("axis %d: %w", spec.Axis, err)
		}
		out = applyAxis(out, spec.Axis, w)
	}
	if out == d {
		// No axis changed; still return a private copy so callers can
		// mutate the result freely.
		out = d.Clone()
	}
	return out, nil
}

// stencil holds, for one target point, the two bracketing source indices
// and the weight of the upper one.
type stencil struct {
	lo, hi int
	w      float64
}

func axisWeights(src, dst grids.Grid, extrapolate bool) ([]stencil, error) {
	out := make([]stencil, dst.Len())
	for i, x := range dst {
		if src.Len() == 1 {
			// Broadcast a degenerate axis.
			out[i] = stencil{0, 0, 0}
			continue
		}
		if !src.Contains(x) && !extrapolate {
			return nil, fmt.Errorf("%w: %g not in [%g, %g]", ErrOutOfRange, x, src.Min(), src.Max())
		}
		lo := src.Interval(x)
		hi := lo + 1
		w := (x - src[lo]) / (src[hi] - src[lo])
		out[i] = stencil{lo, hi, w}
	}
	return out, nil
}

func applyAxis[T tensor.Scalar](d *tensor.Dense[T], axis int, stencils []stencil) *tensor.Dense[T] {
	shape := d.Shape()
	shape[axis] = len(stencils)
	out := tensor.New[T](shape...)
	src := make([]int, d.Rank())
	for it := tensor.Indices(shape...); it.Next(); {
		idx := it.Coords()
		s := stencils[idx[axis]]
		copy(src, idx)
		src[axis] = s.lo
		a := d.At(src...)
		src[axis] = s.hi
		b := d.At(src...)
		out.Set(lerp(a, b, s.w), idx...)
	}
	return out
}

// lerp computes (1-w)*a + w*b with a real weight over either scalar type.
func lerp[T tensor.Scalar](a, b T, w float64) T {
	return a + (b-a)*scalarOf[T](w)
}

func scalarOf[T tensor.Scalar](w float64) T {
	var zero T
	if _, ok := any(zero).(complex128); ok {
		return any(complex(w, 0)).(T)
	}
	return any(w).(T)
}
