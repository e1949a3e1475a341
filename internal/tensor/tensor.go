// Package tensor implements the dense multi-dimensional numeric container
// scattering data fields store their samples and spectral coefficients in.
// Data is kept row-major in a flat backing slice; views onto inner planes
// and vectors bridge to gonum matrices for the harmonics kernels.
package tensor

import "fmt"

// Scalar is the element type of a tensor: real for gridded data, complex
// for spectral coefficients.
type Scalar interface {
	float64 | complex128
}

// Dense is a dense row-major tensor of arbitrary rank.
type Dense[T Scalar] struct {
	shape   []int
	strides []int
	data    []T
}

// New allocates a zero-filled tensor with the given shape.
func New[T Scalar](shape ...int) *Dense[T] {
	n := 1
	for _, d := range shape {
		if d <= 0 {
			panic(fmt.Sprintf("tensor: non-positive dimension %d in shape %v", d, shape))
		}
		n *= d
	}
	return &Dense[T]{
		shape:   append([]int(nil), shape...),
		strides: rowMajorStrides(shape),
		data:    make([]T, n),
	}
}

// FromData wraps an existing backing slice in a tensor of the given shape.
// The slice is not copied.
func FromData[T Scalar](data []T, shape ...int) (*Dense[T], error) {
	n := 1
	for _, d := range shape {
		n *= d
	}
	if len(data) != n {
		return nil, fmt.Errorf("tensor: data length %d does not match shape %v (want %d)", len(data), shape, n)
	}
	return &Dense[T]{
		shape:   append([]int(nil), shape...),
		strides: rowMajorStrides(shape),
		data:    data,
	}, nil
}

func rowMajorStrides(shape []int) []int {
	strides := make([]int, len(shape))
	s := 1
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = s
		s *= shape[i]
	}
	return strides
}

// Rank returns the number of axes.
func (d *Dense[T]) Rank() int { return len(d.shape) }

// Dim returns the length of the given axis.
func (d *Dense[T]) Dim(axis int) int { return d.shape[axis] }

// Shape returns a copy of the full shape.
func (d *Dense[T]) Shape() []int { return append([]int(nil), d.shape...) }

// Len returns the total number of elements.
func (d *Dense[T]) Len() int { return len(d.data) }

// Data exposes the backing slice. Mutating it mutates the tensor.
func (d *Dense[T]) Data() []T { return d.data }

func (d *Dense[T]) offset(idx []int) int {
	if len(idx) != len(d.shape) {
		panic(fmt.Sprintf("tensor: index rank %d does not match tensor rank %d", len(idx), len(d.shape)))
	}
	off := 0
	for i, v := range idx {
		if v < 0 || v >= d.shape[i] {
			panic(fmt.Sprintf("tensor: index %d out of range [0,%d) on axis %d", v, d.shape[i], i))
		}
		off += v * d.strides[i]
	}
	return off
}

// At returns the element at the given multi-index.
func (d *Dense[T]) At(idx ...int) T { return d.data[d.offset(idx)] }

// Set stores v at the given multi-index.
func (d *Dense[T]) Set(v T, idx ...int) { d.data[d.offset(idx)] = v }

// Clone returns a deep copy.
func (d *Dense[T]) Clone() *Dense[T] {
	out := &Dense[T]{
		shape:   append([]int(nil), d.shape...),
		strides: append([]int(nil), d.strides...),
		data:    make([]T, len(d.data)),
	}
	copy(out.data, d.data)
	return out
}

// SameShape reports whether the two tensors have identical shapes.
func (d *Dense[T]) SameShape(other *Dense[T]) bool {
	if len(d.shape) != len(other.shape) {
		return false
	}
	for i := range d.shape {
		if d.shape[i] != other.shape[i] {
			return false
		}
	}
	return true
}

// Scale multiplies every element by c in place.
func (d *Dense[T]) Scale(c T) {
	for i := range d.data {
		d.data[i] *= c
	}
}

// AddInPlace accumulates other into d elementwise.
func (d *Dense[T]) AddInPlace(other *Dense[T]) error {
	if !d.SameShape(other) {
		return fmt.Errorf("tensor: shape mismatch %v vs %v", d.shape, other.shape)
	}
	for i, v := range other.data {
		d.data[i] += v
	}
	return nil
}

// ResizeAxis returns a new tensor whose given axis has length n. The common
// prefix along that axis is copied over; grown elements are zero.
func (d *Dense[T]) ResizeAxis(axis, n int) *Dense[T] {
	if d.shape[axis] == n {
		return d.Clone()
	}
	shape := d.Shape()
	shape[axis] = n
	out := New[T](shape...)
	keep := d.shape[axis]
	if n < keep {
		keep = n
	}
	for it := Indices(out.shape...); it.Next(); {
		idx := it.Coords()
		if idx[axis] >= keep {
			continue
		}
		out.data[out.offset(idx)] = d.data[d.offset(idx)]
	}
	return out
}

// MultiIndex iterates over every index combination of a shape in row-major
// order.
type MultiIndex struct {
	dims    []int
	coords  []int
	started bool
}

// Indices returns an iterator over all index tuples of the given dimensions.
func Indices(dims ...int) *MultiIndex {
	return &MultiIndex{dims: append([]int(nil), dims...), coords: make([]int, len(dims))}
}

// Next advances to the next index tuple, returning false once exhausted.
func (m *MultiIndex) Next() bool {
	if !m.started {
		m.started = true
		for _, d := range m.dims {
			if d <= 0 {
				return false
			}
		}
		return true
	}
	for i := len(m.coords) - 1; i >= 0; i-- {
		m.coords[i]++
		if m.coords[i] < m.dims[i] {
			return true
		}
		m.coords[i] = 0
	}
	return false
}

// Coords returns the current index tuple. The slice is reused between
// iterations; copy it if it must be retained.
func (m *MultiIndex) Coords() []int { return m.coords }
