// Package quant implements a labelled six-dimensional quantity
// (quant, year, unit, season, area, iter) whose elements are scalars of a
// backend.
//
// All arithmetic goes through the owning backend, so a quantity built from
// the independent inputs of a dual or autodiff backend carries derivatives.
// Binary operations are elementwise and require identical extents.
//
// Example:
//
//	dims, _ := quant.NewDims(1, 3)
//	catch, _ := quant.FromFloats(cpu.New(), dims, []float64{10, 12, 9})
//	total := catch.Sum() // 31
package quant

import (
	"errors"
	"fmt"

	"github.com/born-ml/fladiff/internal/scalar"
)

// ErrShapeMismatch is returned by binary operations on quantities with
// different extents.
var ErrShapeMismatch = errors.New("quant: shape mismatch")

// ErrBackendMismatch is returned by binary operations on quantities owned by
// different backends.
var ErrBackendMismatch = errors.New("quant: backend mismatch")

// Quant is a six-dimensional quantity of backend scalars, stored row-major.
type Quant struct {
	dims    Dims
	data    []scalar.Scalar
	backend scalar.Backend
	Units   string
}

// New creates a zero-filled quantity.
func New(b scalar.Backend, dims Dims) (*Quant, error) {
	if err := dims.Validate(); err != nil {
		return nil, err
	}
	data := make([]scalar.Scalar, dims.NumElements())
	zero := b.Const(0)
	for i := range data {
		data[i] = zero
	}
	return &Quant{dims: dims, data: data, backend: b}, nil
}

// FromFloats creates a quantity from row-major float64 values.
func FromFloats(b scalar.Backend, dims Dims, values []float64) (*Quant, error) {
	return FromScalars(b, dims, scalar.Consts(b, values))
}

// FromScalars creates a quantity over existing scalars of b, for example the
// independent inputs of an AD backend. The slice is copied.
func FromScalars(b scalar.Backend, dims Dims, values []scalar.Scalar) (*Quant, error) {
	if err := dims.Validate(); err != nil {
		return nil, err
	}
	if len(values) != dims.NumElements() {
		return nil, fmt.Errorf("%w: %d values for %s", ErrShapeMismatch, len(values), dims)
	}
	return &Quant{dims: dims, data: append([]scalar.Scalar(nil), values...), backend: b}, nil
}

// Dims returns the extents.
func (q *Quant) Dims() Dims {
	return q.dims
}

// Backend returns the owning backend.
func (q *Quant) Backend() scalar.Backend {
	return q.backend
}

// Len returns the number of elements.
func (q *Quant) Len() int {
	return len(q.data)
}

// At returns the element at idx.
func (q *Quant) At(idx [NumDims]int) (scalar.Scalar, error) {
	off, err := q.dims.Offset(idx)
	if err != nil {
		return nil, err
	}
	return q.data[off], nil
}

// Set replaces the element at idx.
func (q *Quant) Set(idx [NumDims]int, v scalar.Scalar) error {
	off, err := q.dims.Offset(idx)
	if err != nil {
		return err
	}
	q.data[off] = v
	return nil
}

// Scalars returns the elements in row-major order. The slice is a copy.
func (q *Quant) Scalars() []scalar.Scalar {
	return append([]scalar.Scalar(nil), q.data...)
}

// Floats returns the primal values in row-major order.
func (q *Quant) Floats() []float64 {
	return scalar.Floats(q.data)
}

// Add returns q + o elementwise.
func (q *Quant) Add(o *Quant) (*Quant, error) {
	return q.zip("add", o, q.backend.Add)
}

// Sub returns q - o elementwise.
func (q *Quant) Sub(o *Quant) (*Quant, error) {
	return q.zip("sub", o, q.backend.Sub)
}

// Mul returns q * o elementwise.
func (q *Quant) Mul(o *Quant) (*Quant, error) {
	return q.zip("mul", o, q.backend.Mul)
}

// Div returns q / o elementwise. Zero divisors follow the backend's
// division semantics.
func (q *Quant) Div(o *Quant) (*Quant, error) {
	return q.zip("div", o, q.backend.Div)
}

// Scale returns s * q.
func (q *Quant) Scale(s scalar.Scalar) *Quant {
	return q.Map(func(b scalar.Backend, x scalar.Scalar) scalar.Scalar {
		return b.Mul(s, x)
	})
}

// Map applies fn to every element.
func (q *Quant) Map(fn func(b scalar.Backend, x scalar.Scalar) scalar.Scalar) *Quant {
	out := &Quant{dims: q.dims, data: make([]scalar.Scalar, len(q.data)), backend: q.backend, Units: q.Units}
	for i, x := range q.data {
		out.data[i] = fn(q.backend, x)
	}
	return out
}

// Sum returns the sum of all elements.
func (q *Quant) Sum() scalar.Scalar {
	return scalar.Sum(q.backend, q.data)
}

// SumOver sums along dimension d; the result has extent 1 there.
func (q *Quant) SumOver(d int) (*Quant, error) {
	if d < 0 || d >= NumDims {
		return nil, fmt.Errorf("quant: dimension %d out of range [0, %d)", d, NumDims)
	}

	dims := q.dims
	dims[d] = 1
	out := &Quant{dims: dims, data: make([]scalar.Scalar, dims.NumElements()), backend: q.backend, Units: q.Units}

	strides := q.dims.Strides()
	outStrides := dims.Strides()
	for i, x := range q.data {
		// Drop the d-th coordinate from the flat index.
		target, rem := 0, i
		for k := 0; k < NumDims; k++ {
			coord := rem / strides[k]
			rem %= strides[k]
			if k != d {
				target += coord * outStrides[k]
			}
		}
		if out.data[target] == nil {
			out.data[target] = x
		} else {
			out.data[target] = q.backend.Add(out.data[target], x)
		}
	}
	return out, nil
}

func (q *Quant) zip(op string, o *Quant, fn func(a, b scalar.Scalar) scalar.Scalar) (*Quant, error) {
	if q.dims != o.dims {
		return nil, fmt.Errorf("%s: %w: %s vs %s", op, ErrShapeMismatch, q.dims, o.dims)
	}
	if q.backend != o.backend {
		return nil, fmt.Errorf("%s: %w: %s vs %s", op, ErrBackendMismatch, q.backend.Name(), o.backend.Name())
	}
	out := &Quant{dims: q.dims, data: make([]scalar.Scalar, len(q.data)), backend: q.backend, Units: q.Units}
	for i := range q.data {
		out.data[i] = fn(q.data[i], o.data[i])
	}
	return out, nil
}
