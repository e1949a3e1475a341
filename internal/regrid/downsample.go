package regrid

import (
	"fmt"
	"sort"

	"github.com/banshee-data/scatfield/internal/grids"
	"github.com/banshee-data/scatfield/internal/tensor"
)

// DownsampleAxis regrids one periodic axis to a coarser grid while
// preserving the integral of the piecewise-linear data over the full period
// [lo, hi). Each target point receives the mean of the source data over its
// midpoint-bounded cell, so summing value*cellwidth over the target grid
// reproduces the source integral; a constant field is reproduced exactly.
func DownsampleAxis[T tensor.Scalar](d *tensor.Dense[T], axis int, src, dst grids.Grid, lo, hi float64) (*tensor.Dense[T], error) {
	if d.Dim(axis) != src.Len() {
		return nil, fmt.Errorf("regrid: axis %d has length %d but source grid has %d points", axis, d.Dim(axis), src.Len())
	}
	if src.Min() < lo || src.Max() >= hi || dst.Min() < lo || dst.Max() >= hi {
		return nil, fmt.Errorf("regrid: downsample grids must lie within the period [%g, %g)", lo, hi)
	}
	weights := downsampleWeights(src, dst, hi-lo)

	shape := d.Shape()
	shape[axis] = dst.Len()
	out := tensor.New[T](shape...)
	srcIdx := make([]int, d.Rank())
	for it := tensor.Indices(shape...); it.Next(); {
		idx := it.Coords()
		copy(srcIdx, idx)
		var acc T
		for j, w := range weights[idx[axis]] {
			if w == 0 {
				continue
			}
			srcIdx[axis] = j
			acc += d.At(srcIdx...) * scalarOf[T](w)
		}
		out.Set(acc, idx...)
	}
	return out, nil
}

// DownsampleAxisBounded is the non-periodic counterpart of DownsampleAxis:
// the target cells partition the full source span, so the integral of the
// piecewise-linear data over [src.Min(), src.Max()] is preserved. The
// target grid must lie within the source span.
func DownsampleAxisBounded[T tensor.Scalar](d *tensor.Dense[T], axis int, src, dst grids.Grid) (*tensor.Dense[T], error) {
	if d.Dim(axis) != src.Len() {
		return nil, fmt.Errorf("regrid: axis %d has length %d but source grid has %d points", axis, d.Dim(axis), src.Len())
	}
	if dst.Min() < src.Min() || dst.Max() > src.Max() {
		return nil, fmt.Errorf("regrid: downsample target [%g, %g] outside source span [%g, %g]", dst.Min(), dst.Max(), src.Min(), src.Max())
	}
	weights := boundedWeights(src, dst)

	shape := d.Shape()
	shape[axis] = dst.Len()
	out := tensor.New[T](shape...)
	srcIdx := make([]int, d.Rank())
	for it := tensor.Indices(shape...); it.Next(); {
		idx := it.Coords()
		copy(srcIdx, idx)
		var acc T
		for j, w := range weights[idx[axis]] {
			if w == 0 {
				continue
			}
			srcIdx[axis] = j
			acc += d.At(srcIdx...) * scalarOf[T](w)
		}
		out.Set(acc, idx...)
	}
	return out, nil
}

func boundedWeights(src, dst grids.Grid) [][]float64 {
	n := src.Len()
	m := dst.Len()
	out := make([][]float64, m)

	if n == 1 || m == 1 {
		// A single sample, or a single cell spanning everything: the mean
		// of a piecewise-linear function is a convex nodal combination.
		if m == 1 && n > 1 {
			w := make([]float64, n)
			integratePiecewise(src, identity(n), src.Min(), src.Max(), w)
			width := src.Max() - src.Min()
			for j := range w {
				w[j] /= width
			}
			out[0] = w
			return out
		}
		for i := range out {
			out[i] = []float64{1}
		}
		return out
	}

	// Midpoint-bounded cells, end cells stretched to the source span.
	bounds := make([]float64, m+1)
	bounds[0] = src.Min()
	for i := 1; i < m; i++ {
		bounds[i] = 0.5 * (dst[i-1] + dst[i])
	}
	bounds[m] = src.Max()

	vi := identity(n)
	for i := 0; i < m; i++ {
		a, b := bounds[i], bounds[i+1]
		w := make([]float64, n)
		integratePiecewise(src, vi, a, b, w)
		width := b - a
		for j := range w {
			w[j] /= width
		}
		out[i] = w
	}
	return out
}

func identity(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// downsampleWeights computes, for every target cell, the linear weights of
// the source samples whose hat functions overlap the cell, normalized by
// the cell width. Rows sum to one.
func downsampleWeights(src, dst grids.Grid, period float64) [][]float64 {
	n := src.Len()
	m := dst.Len()
	out := make([][]float64, m)

	if n == 1 {
		// Constant source; every cell averages to the single sample.
		for i := range out {
			out[i] = []float64{1}
		}
		return out
	}

	// Nodes of the periodic piecewise-linear source, unrolled over two
	// periods so any cell window [a, a+width) fits without wrapping logic.
	xs := make([]float64, 2*n+1)
	vi := make([]int, 2*n+1)
	for k := 0; k <= 2*n; k++ {
		xs[k] = src[k%n] + float64(k/n)*period
		vi[k] = k % n
	}

	// Midpoint-bounded target cells, periodic at the seam.
	bounds := make([]float64, m+1)
	bounds[0] = 0.5 * (dst[m-1] - period + dst[0])
	for i := 1; i < m; i++ {
		bounds[i] = 0.5 * (dst[i-1] + dst[i])
	}
	bounds[m] = bounds[0] + period

	for i := 0; i < m; i++ {
		a, b := bounds[i], bounds[i+1]
		// Shift the cell into the unrolled node range.
		for a < xs[0] {
			a += period
			b += period
		}
		w := make([]float64, n)
		integratePiecewise(xs, vi, a, b, w)
		width := b - a
		for j := range w {
			w[j] /= width
		}
		out[i] = w
	}
	return out
}

// integratePiecewise accumulates into w the nodal weights of the integral
// of the piecewise-linear function with nodes (xs, value index vi) over
// [a, b], which must lie within [xs[0], xs[len-1]].
func integratePiecewise(xs []float64, vi []int, a, b float64, w []float64) {
	k := sort.SearchFloat64s(xs, a)
	if k > 0 {
		k--
	}
	for xs[k+1] <= a {
		k++
	}
	for a < b {
		q := xs[k+1]
		if q > b {
			q = b
		}
		h := xs[k+1] - xs[k]
		l := q - a
		// Trapezoid over [a, q] of the segment's linear interpolant,
		// expressed as weights on the two segment nodes.
		w[vi[k]] += l / 2 * ((xs[k+1]-a)/h + (xs[k+1]-q)/h)
		w[vi[k+1]] += l / 2 * ((a-xs[k])/h + (q-xs[k])/h)
		a = q
		k++
	}
}
