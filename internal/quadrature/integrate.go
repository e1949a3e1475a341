package quadrature

import (
	"math"

	"github.com/banshee-data/scatfield/internal/grids"
	"gonum.org/v1/gonum/mat"
)

// Colatitudes maps a zenith-angle grid to the -cos(theta) variable the
// solid-angle measure integrates over. Ascending zenith grids map to
// ascending colatitudes.
func Colatitudes(lat grids.Grid) []float64 {
	out := make([]float64, lat.Len())
	for i, v := range lat {
		out[i] = -math.Cos(v)
	}
	return out
}

// AngularIntegral integrates a field sampled on an azimuth x zenith grid
// over the full solid angle. data holds one value per (azimuth, zenith)
// pair, colat the -cos(theta) coordinates of the zenith samples.
//
// The azimuth axis is treated as periodic over the full circle: the
// trapezoidal sum includes the closing segment from the last sample back to
// the first. A singleton azimuth axis stands for an azimuth-independent
// field and contributes a factor 2*pi.
func AngularIntegral(data mat.Matrix, lonScat grids.Grid, colat []float64) float64 {
	nLon, nLat := data.Dims()

	// Zenith integral per azimuth sample.
	zenith := make([]float64, nLon)
	for i := 0; i < nLon; i++ {
		var sum float64
		for j := 1; j < nLat; j++ {
			sum += 0.5 * (colat[j] - colat[j-1]) * (data.At(i, j) + data.At(i, j-1))
		}
		zenith[i] = sum
	}

	if nLon == 1 {
		return 2 * math.Pi * zenith[0]
	}

	var total float64
	for i := 1; i < nLon; i++ {
		total += 0.5 * (lonScat[i] - lonScat[i-1]) * (zenith[i] + zenith[i-1])
	}
	closing := 2*math.Pi - (lonScat[nLon-1] - lonScat[0])
	total += 0.5 * closing * (zenith[0] + zenith[nLon-1])
	return total
}
