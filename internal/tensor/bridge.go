package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// fullIndex assembles a complete multi-index from the fixed coordinates of
// all axes except rowAxis and colAxis (in ascending axis order) and the
// running (r, c) plane coordinates.
func fullIndex(rank, rowAxis, colAxis int, fixed []int, r, c int) []int {
	if rowAxis == colAxis {
		panic("tensor: row and column axis must differ")
	}
	if len(fixed) != rank-2 {
		panic(fmt.Sprintf("tensor: got %d fixed coordinates for rank-%d plane view, want %d", len(fixed), rank, rank-2))
	}
	idx := make([]int, rank)
	k := 0
	for axis := 0; axis < rank; axis++ {
		switch axis {
		case rowAxis:
			idx[axis] = r
		case colAxis:
			idx[axis] = c
		default:
			idx[axis] = fixed[k]
			k++
		}
	}
	return idx
}

// MatrixAt copies the plane spanned by (rowAxis, colAxis) at the given fixed
// outer coordinates into a gonum matrix.
func MatrixAt(d *Dense[float64], rowAxis, colAxis int, fixed []int) *mat.Dense {
	rows, cols := d.shape[rowAxis], d.shape[colAxis]
	out := mat.NewDense(rows, cols, nil)
	idx := fullIndex(d.Rank(), rowAxis, colAxis, fixed, 0, 0)
	for r := 0; r < rows; r++ {
		idx[rowAxis] = r
		for c := 0; c < cols; c++ {
			idx[colAxis] = c
			out.Set(r, c, d.data[d.offset(idx)])
		}
	}
	return out
}

// SetMatrixAt writes a gonum matrix back into the plane spanned by
// (rowAxis, colAxis) at the given fixed outer coordinates.
func SetMatrixAt(d *Dense[float64], rowAxis, colAxis int, fixed []int, m mat.Matrix) {
	rows, cols := d.shape[rowAxis], d.shape[colAxis]
	mr, mc := m.Dims()
	if mr != rows || mc != cols {
		panic(fmt.Sprintf("tensor: matrix %dx%d does not fit plane %dx%d", mr, mc, rows, cols))
	}
	idx := fullIndex(d.Rank(), rowAxis, colAxis, fixed, 0, 0)
	for r := 0; r < rows; r++ {
		idx[rowAxis] = r
		for c := 0; c < cols; c++ {
			idx[colAxis] = c
			d.data[d.offset(idx)] = m.At(r, c)
		}
	}
}

// CMatrixAt is MatrixAt for complex tensors.
func CMatrixAt(d *Dense[complex128], rowAxis, colAxis int, fixed []int) *mat.CDense {
	rows, cols := d.shape[rowAxis], d.shape[colAxis]
	out := mat.NewCDense(rows, cols, nil)
	idx := fullIndex(d.Rank(), rowAxis, colAxis, fixed, 0, 0)
	for r := 0; r < rows; r++ {
		idx[rowAxis] = r
		for c := 0; c < cols; c++ {
			idx[colAxis] = c
			out.Set(r, c, d.data[d.offset(idx)])
		}
	}
	return out
}

// SetCMatrixAt is SetMatrixAt for complex tensors.
func SetCMatrixAt(d *Dense[complex128], rowAxis, colAxis int, fixed []int, m mat.CMatrix) {
	rows, cols := d.shape[rowAxis], d.shape[colAxis]
	mr, mc := m.Dims()
	if mr != rows || mc != cols {
		panic(fmt.Sprintf("tensor: matrix %dx%d does not fit plane %dx%d", mr, mc, rows, cols))
	}
	idx := fullIndex(d.Rank(), rowAxis, colAxis, fixed, 0, 0)
	for r := 0; r < rows; r++ {
		idx[rowAxis] = r
		for c := 0; c < cols; c++ {
			idx[colAxis] = c
			d.data[d.offset(idx)] = m.At(r, c)
		}
	}
}

// VectorAt copies the fiber along the given axis at fixed outer coordinates.
func VectorAt[T Scalar](d *Dense[T], axis int, fixed []int) []T {
	if len(fixed) != d.Rank()-1 {
		panic(fmt.Sprintf("tensor: got %d fixed coordinates for rank-%d fiber view, want %d", len(fixed), d.Rank(), d.Rank()-1))
	}
	idx := make([]int, d.Rank())
	k := 0
	for a := 0; a < d.Rank(); a++ {
		if a == axis {
			continue
		}
		idx[a] = fixed[k]
		k++
	}
	out := make([]T, d.shape[axis])
	for i := range out {
		idx[axis] = i
		out[i] = d.data[d.offset(idx)]
	}
	return out
}

// SetVectorAt writes a fiber along the given axis at fixed outer
// coordinates.
func SetVectorAt[T Scalar](d *Dense[T], axis int, fixed []int, v []T) {
	if len(v) != d.shape[axis] {
		panic(fmt.Sprintf("tensor: fiber length %d does not match axis length %d", len(v), d.shape[axis]))
	}
	if len(fixed) != d.Rank()-1 {
		panic(fmt.Sprintf("tensor: got %d fixed coordinates for rank-%d fiber view, want %d", len(fixed), d.Rank(), d.Rank()-1))
	}
	idx := make([]int, d.Rank())
	k := 0
	for a := 0; a < d.Rank(); a++ {
		if a == axis {
			continue
		}
		idx[a] = fixed[k]
		k++
	}
	for i, x := range v {
		idx[axis] = i
		d.data[d.offset(idx)] = x
	}
}
