// Package fieldplot renders diagnostic plots of scattering data fields.
package fieldplot

import (
	"fmt"
	"image/color"
	"math/cmplx"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/scatfield/internal/field"
	"github.com/banshee-data/scatfield/internal/units"
)

// PhaseFunction plots the first element of a gridded field against the
// scattering zenith angle, one line per frequency, at the given
// temperature, incoming-direction, and scattering-azimuth indices.
func PhaseFunction(g *field.Gridded, tempIdx, lonIncIdx, latIncIdx, lonScatIdx int, path string) error {
	freq := g.FrequencyGrid()
	latScat := g.LatScatGrid()

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Phase Function (T = %.1f K)", g.TemperatureGrid()[tempIdx])
	p.X.Label.Text = "Scattering Zenith Angle (deg)"
	p.Y.Label.Text = "Phase Function"

	colors := generateColors(freq.Len())
	for fi := 0; fi < freq.Len(); fi++ {
		pts := make(plotter.XYs, 0, latScat.Len())
		for j := 0; j < latScat.Len(); j++ {
			pts = append(pts, plotter.XY{
				X: units.Degrees(latScat[j]),
				Y: g.Data().At(fi, tempIdx, lonIncIdx, latIncIdx, lonScatIdx, j, 0),
			})
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = colors[fi]
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("%.1f GHz", units.ConvertFrequency(freq[fi], units.GHz)), line)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save phase function plot: %w", err)
	}
	return nil
}

// Spectrum plots the magnitude of the order-0 spherical harmonics
// coefficients against degree, one line per element, at the given
// frequency, temperature, and incoming-direction indices.
func Spectrum(s *field.Spectral, freqIdx, tempIdx, lonIncIdx, latIncIdx int, path string) error {
	tr := s.Transform()

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Scattering Spectrum (%.1f GHz)", units.ConvertFrequency(s.FrequencyGrid()[freqIdx], units.GHz))
	p.X.Label.Text = "Degree"
	p.Y.Label.Text = "|c(l,0)|"

	colors := generateColors(s.NumElements())
	for e := 0; e < s.NumElements(); e++ {
		pts := make(plotter.XYs, 0, tr.LMax()+1)
		for l := 0; l <= tr.LMax(); l++ {
			c := s.Data().At(freqIdx, tempIdx, lonIncIdx, latIncIdx, tr.CoeffIndex(l, 0), e)
			pts = append(pts, plotter.XY{X: float64(l), Y: cmplx.Abs(c)})
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = colors[e]
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("element %d", e), line)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save spectrum plot: %w", err)
	}
	return nil
}

// generateColors creates a palette of distinct colors for plot lines
func generateColors(n int) []color.Color {
	if n <= 0 {
		return nil
	}

	colors := make([]color.Color, n)
	for i := 0; i < n; i++ {
		hue := float64(i) / float64(n)
		r, g, b := hslToRGB(hue, 0.7, 0.5)
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

// hslToRGB converts HSL to RGB (0-255 range)
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	var rf, gf, bf float64

	if s == 0 {
		rf, gf, bf = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q
		rf = hueToRGB(p, q, h+1.0/3.0)
		gf = hueToRGB(p, q, h)
		bf = hueToRGB(p, q, h-1.0/3.0)
	}

	return uint8(rf * 255), uint8(gf * 255), uint8(bf * 255)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	if t < 1.0/6.0 {
		return p + (q-p)*6*t
	}
	if t < 1.0/2.0 {
		return q
	}
	if t < 2.0/3.0 {
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
