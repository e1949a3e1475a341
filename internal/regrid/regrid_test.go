package regrid

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/scatfield/internal/grids"
	"github.com/banshee-data/scatfield/internal/tensor"
)

func rampTensor(nx, ny int, f func(i, j int) float64) *tensor.Dense[float64] {
	d := tensor.New[float64](nx, ny)
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			d.Set(f(i, j), i, j)
		}
	}
	return d
}

func TestApplyIdentityGrid(t *testing.T) {
	t.Parallel()
	g := grids.MustNew([]float64{0, 1, 2})
	d := rampTensor(3, 2, func(i, j int) float64 { return float64(i*10 + j) })

	out, err := Apply(d, []AxisSpec{{Axis: 0, Source: g, Target: g}}, false)
	require.NoError(t, err)
	require.Equal(t, d.Shape(), out.Shape())
	for it := tensor.Indices(3, 2); it.Next(); {
		c := it.Coords()
		assert.Equal(t, d.At(c...), out.At(c...))
	}
	// The result is a private copy.
	out.Set(99, 0, 0)
	assert.Equal(t, 0.0, d.At(0, 0))
}

func TestApplyLinearFunctionIsExact(t *testing.T) {
	t.Parallel()
	src := grids.MustNew([]float64{0, 1, 3, 4})
	dst := grids.MustNew([]float64{0.5, 2, 3.5})
	d := tensor.New[float64](4)
	for i, x := range src {
		d.Set(3*x+1, i)
	}

	out, err := Apply(d, []AxisSpec{{Axis: 0, Source: src, Target: dst}}, false)
	require.NoError(t, err)
	for i, x := range dst {
		assert.InDeltaf(t, 3*x+1, out.At(i), 1e-14, "target point %g", x)
	}
}

func TestApplyMultiAxis(t *testing.T) {
	t.Parallel()
	sx := grids.MustNew([]float64{0, 1})
	sy := grids.MustNew([]float64{0, 2})
	dx := grids.MustNew([]float64{0.25, 0.75})
	dy := grids.MustNew([]float64{1})
	// Bilinear data f(x, y) = x + y stays exact under linear regridding.
	d := rampTensor(2, 2, func(i, j int) float64 { return sx[i] + sy[j] })

	out, err := Apply(d, []AxisSpec{
		{Axis: 0, Source: sx, Target: dx},
		{Axis: 1, Source: sy, Target: dy},
	}, false)
	require.NoError(t, err)
	require.Equal(t, []int{2, 1}, out.Shape())
	assert.InDelta(t, 1.25, out.At(0, 0), 1e-14)
	assert.InDelta(t, 1.75, out.At(1, 0), 1e-14)
}

func TestApplyOutOfRange(t *testing.T) {
	t.Parallel()
	src := grids.MustNew([]float64{0, 1})
	d := rampTensor(2, 1, func(i, j int) float64 { return float64(i) })

	_, err := Apply(d, []AxisSpec{{Axis: 0, Source: src, Target: grids.MustNew([]float64{1.5})}}, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOutOfRange))

	out, err := Apply(d, []AxisSpec{{Axis: 0, Source: src, Target: grids.MustNew([]float64{1.5})}}, true)
	require.NoError(t, err)
	// Boundary-interval slope extension: f(x) = x.
	assert.InDelta(t, 1.5, out.At(0, 0), 1e-14)
}

func TestApplySingletonBroadcast(t *testing.T) {
	t.Parallel()
	src := grids.MustNew([]float64{0.5})
	dst := grids.MustNew([]float64{0, 1, 2})
	d := rampTensor(1, 2, func(i, j int) float64 { return 7 + float64(j) })

	out, err := Apply(d, []AxisSpec{{Axis: 0, Source: src, Target: dst}}, false)
	require.NoError(t, err)
	require.Equal(t, []int{3, 2}, out.Shape())
	for i := 0; i < 3; i++ {
		assert.Equal(t, 7.0, out.At(i, 0))
		assert.Equal(t, 8.0, out.At(i, 1))
	}
}

func TestApplyComplex(t *testing.T) {
	t.Parallel()
	src := grids.MustNew([]float64{0, 1})
	dst := grids.MustNew([]float64{0.5})
	d := tensor.New[complex128](2)
	d.Set(1+1i, 0)
	d.Set(3+5i, 1)

	out, err := Apply(d, []AxisSpec{{Axis: 0, Source: src, Target: dst}}, false)
	require.NoError(t, err)
	assert.InDelta(t, 2, real(out.At(0)), 1e-14)
	assert.InDelta(t, 3, imag(out.At(0)), 1e-14)
}

func TestApplySourceLengthMismatch(t *testing.T) {
	t.Parallel()
	d := tensor.New[float64](3)
	_, err := Apply(d, []AxisSpec{{Axis: 0, Source: grids.MustNew([]float64{0, 1}), Target: grids.MustNew([]float64{0.5})}}, false)
	assert.Error(t, err)
}

func TestDownsampleConstantPreservesIntegral(t *testing.T) {
	t.Parallel()
	const period = 2 * math.Pi
	src := grids.Uniform(0, period, 32)
	for _, nDst := range []int{1, 2, 3, 7, 16} {
		dst := grids.Uniform(0, period, nDst)
		d := tensor.New[float64](32)
		for i := range src {
			d.Set(4.25, i)
		}
		out, err := DownsampleAxis(d, 0, src, dst, 0, period)
		require.NoError(t, err)
		for i := 0; i < nDst; i++ {
			assert.InDeltaf(t, 4.25, out.At(i), 1e-12, "target %d of %d", i, nDst)
		}
	}
}

func TestDownsamplePreservesPeriodicIntegral(t *testing.T) {
	t.Parallel()
	const period = 2 * math.Pi
	src := grids.Uniform(0, period, 48)
	dst := grids.Uniform(0, period, 6)
	d := tensor.New[float64](48)
	for i, x := range src {
		d.Set(2+math.Sin(x)+0.5*math.Cos(2*x), i)
	}

	out, err := DownsampleAxis(d, 0, src, dst, 0, period)
	require.NoError(t, err)

	// Integral of the piecewise-linear source over the period (uniform
	// periodic grid: Riemann sum is exact for the interpolant).
	var want float64
	for i := range src {
		want += d.At(i) * (period / 48)
	}
	var got float64
	for i := 0; i < 6; i++ {
		got += out.At(i) * (period / 6)
	}
	assert.InDelta(t, want, got, 1e-12)
}

func TestDownsampleBoundedPreservesIntegral(t *testing.T) {
	t.Parallel()
	src := grids.MustNew([]float64{-1, -0.6, -0.1, 0.3, 0.7, 1})
	d := tensor.New[float64](6)
	for i, x := range src {
		d.Set(1.5-0.8*x+0.3*x*x, i)
	}

	// Integral of the piecewise-linear source over the full span.
	var want float64
	for i := 1; i < src.Len(); i++ {
		want += 0.5 * (d.At(i) + d.At(i-1)) * (src[i] - src[i-1])
	}

	for _, dst := range []grids.Grid{
		grids.MustNew([]float64{0}),
		grids.MustNew([]float64{-0.5, 0.5}),
		grids.MustNew([]float64{-0.9, -0.2, 0.4, 0.9}),
	} {
		out, err := DownsampleAxisBounded(d, 0, src, dst)
		require.NoError(t, err)

		// Cells partition [src.Min(), src.Max()], so value*width sums to
		// the source integral.
		bounds := make([]float64, dst.Len()+1)
		bounds[0], bounds[dst.Len()] = src.Min(), src.Max()
		for i := 1; i < dst.Len(); i++ {
			bounds[i] = 0.5 * (dst[i-1] + dst[i])
		}
		var got float64
		for i := 0; i < dst.Len(); i++ {
			got += out.At(i) * (bounds[i+1] - bounds[i])
		}
		assert.InDeltaf(t, want, got, 1e-12, "%d targets", dst.Len())
	}
}

func TestDownsampleBoundedConstant(t *testing.T) {
	t.Parallel()
	src := grids.MustNew([]float64{0, 0.3, 1, 2, 3.5})
	d := tensor.New[float64](5)
	for i := range src {
		d.Set(-2.5, i)
	}
	out, err := DownsampleAxisBounded(d, 0, src, grids.MustNew([]float64{0.5, 2.5}))
	require.NoError(t, err)
	assert.InDelta(t, -2.5, out.At(0), 1e-12)
	assert.InDelta(t, -2.5, out.At(1), 1e-12)

	_, err = DownsampleAxisBounded(d, 0, src, grids.MustNew([]float64{-1, 2}))
	assert.Error(t, err, "target outside source span")
}

func TestDownsampleRejectsGridsOutsidePeriod(t *testing.T) {
	t.Parallel()
	d := tensor.New[float64](4)
	src := grids.Uniform(0, 2*math.Pi, 4)
	bad := grids.MustNew([]float64{0, 2 * math.Pi})
	_, err := DownsampleAxis(d, 0, src, bad, 0, 2*math.Pi)
	assert.Error(t, err)
}
