// Package quadrature computes Gauss-Legendre nodes and weights and provides
// the angular integration primitive used to evaluate solid-angle integrals
// of scattering data.
package quadrature

import (
	"fmt"
	"math"
)

// Precision identifies the scalar precision a quadrature is computed for.
// The library works in float64 but the convergence threshold stays a lookup
// so other precisions keep their appropriate tolerance.
type Precision int

const (
	Single Precision = iota
	Double
	Extended
)

// tolerances maps each precision to its Newton convergence threshold.
var tolerances = map[Precision]float64{
	Single:   1e-6,
	Double:   1e-16,
	Extended: 1e-19,
}

// Tolerance returns the Newton convergence threshold for the given
// precision, defaulting to double precision for unknown values.
func Tolerance(p Precision) float64 {
	if tol, ok := tolerances[p]; ok {
		return tol
	}
	return tolerances[Double]
}

const maxNewtonIterations = 100

// GaussLegendre computes the n nodes and weights of the Gauss-Legendre
// quadrature on [-1, 1] at double precision. Nodes are returned in ascending
// order. The roots of the degree-n Legendre polynomial are located by Newton
// iteration on the three-term recurrence, starting from an asymptotic
// estimate of each root.
func GaussLegendre(n int) (nodes, weights []float64, err error) {
	return gaussLegendre(n, Tolerance(Double))
}

// GaussLegendreAt is GaussLegendre with the convergence threshold of the
// given precision.
func GaussLegendreAt(n int, p Precision) (nodes, weights []float64, err error) {
	return gaussLegendre(n, Tolerance(p))
}

func gaussLegendre(n int, tol float64) ([]float64, []float64, error) {
	if n < 1 {
		return nil, nil, fmt.Errorf("quadrature degree must be positive, got %d", n)
	}
	nodes := make([]float64, n)
	weights := make([]float64, n)
	nf := float64(n)

	// Roots come in +/- pairs; solve the negative half and mirror.
	half := (n + 1) / 2
	for i := 1; i <= half; i++ {
		// Asymptotic estimate of the i-th root.
		x := -(1.0 - (nf-1.0)/(8.0*nf*nf*nf)) *
			math.Cos(math.Pi*(4.0*float64(i)-1.0)/(4.0*nf+2.0))

		var pPrev float64
		for iter := 0; iter < maxNewtonIterations; iter++ {
			// Evaluate P_n(x) and P_{n-1}(x) via the recurrence
			// l*P_l = (2l-1)*x*P_{l-1} - (l-1)*P_{l-2}.
			p := x
			pPrev = 1.0
			for l := 2; l <= n; l++ {
				p, pPrev = ((2.0*float64(l)-1.0)*x*p-(float64(l)-1.0)*pPrev)/float64(l), p
			}
			dp := nf * (pPrev - x*p) / (1.0 - x*x)
			dx := p / dp
			x -= dx
			if math.Abs(dx) < tol {
				// One more recurrence pass below picks up the final x.
				break
			}
		}

		// Recompute P_{n-1} at the converged node for the weight formula
		// w = 2 / ((1 - x^2) * P'_n(x)^2).
		p := x
		pPrev = 1.0
		for l := 2; l <= n; l++ {
			p, pPrev = ((2.0*float64(l)-1.0)*x*p-(float64(l)-1.0)*pPrev)/float64(l), p
		}
		dp := nf * (pPrev - x*p) / (1.0 - x*x)
		w := 2.0 / ((1.0 - x*x) * dp * dp)

		nodes[i-1] = x
		weights[i-1] = w
		nodes[n-i] = -x
		weights[n-i] = w
	}
	if n%2 == 1 {
		// The middle root of an odd-degree polynomial is exactly zero.
		nodes[n/2] = 0
	}
	return nodes, weights, nil
}
