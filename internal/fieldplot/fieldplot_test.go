package fieldplot

import (
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/banshee-data/scatfield/internal/field"
	"github.com/banshee-data/scatfield/internal/grids"
	"github.com/banshee-data/scatfield/internal/tensor"
	"github.com/banshee-data/scatfield/internal/testutil"
)

func testField(t *testing.T) *field.Gridded {
	t.Helper()
	freq := grids.MustNew([]float64{89e9, 183e9})
	temp := grids.MustNew([]float64{250})
	one := grids.MustNew([]float64{0})
	lonScat := grids.Uniform(0, 2*math.Pi, 8)
	latScat := grids.Linspace(0, math.Pi, 16)

	data := tensor.New[float64](2, 1, 1, 1, 8, 16, 1)
	for it := tensor.Indices(data.Shape()...); it.Next(); {
		c := it.Coords()
		data.Set(1+0.5*math.Cos(latScat[c[5]]), c...)
	}
	g, err := field.NewGridded(freq, temp, one, one, lonScat, latScat, data)
	testutil.AssertNoError(t, err)
	return g
}

func TestPhaseFunctionWritesPNG(t *testing.T) {
	g := testField(t)
	path := filepath.Join(t.TempDir(), "phase.png")

	testutil.AssertNoError(t, PhaseFunction(g, 0, 0, 0, 0, path))

	info, err := os.Stat(path)
	testutil.AssertNoError(t, err)
	if info.Size() == 0 {
		t.Error("expected non-empty plot file")
	}
}

func TestSpectrumWritesPNG(t *testing.T) {
	g := testField(t)
	s, err := g.ToSpectral()
	testutil.AssertNoError(t, err)

	path := filepath.Join(t.TempDir(), "spectrum.png")
	testutil.AssertNoError(t, Spectrum(s, 0, 0, 0, 0, path))

	info, err := os.Stat(path)
	testutil.AssertNoError(t, err)
	if info.Size() == 0 {
		t.Error("expected non-empty plot file")
	}
}

func TestPhaseFunctionBadPath(t *testing.T) {
	g := testField(t)
	testutil.AssertError(t, PhaseFunction(g, 0, 0, 0, 0, filepath.Join(t.TempDir(), "missing", "phase.png")))
}

func TestGenerateColors(t *testing.T) {
	if got := generateColors(0); got != nil {
		t.Errorf("expected nil palette for n=0, got %v", got)
	}

	colors := generateColors(5)
	if len(colors) != 5 {
		t.Fatalf("expected 5 colors, got %d", len(colors))
	}
	seen := make(map[color.Color]bool)
	for _, c := range colors {
		if seen[c] {
			t.Errorf("duplicate color %v", c)
		}
		seen[c] = true
	}
}
