// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package quant provides labelled six-dimensional quantities over a scalar
// backend.
//
// The dimensions are quant, year, unit, season, area and iter. Elements are
// scalars of the owning backend, so a quantity built from the inputs of a
// dual or autodiff backend carries derivatives through its arithmetic.
//
// Example:
//
//	dims, _ := quant.NewDims(1, 3)
//	catch, _ := quant.FromFloats(cpu.New(), dims, []float64{10, 12, 9})
//	total := catch.Sum() // 31
package quant

import (
	"github.com/born-ml/fladiff/internal/quant"
	"github.com/born-ml/fladiff/scalar"
)

// Dimension indices.
const (
	DimQuant  = quant.DimQuant
	DimYear   = quant.DimYear
	DimUnit   = quant.DimUnit
	DimSeason = quant.DimSeason
	DimArea   = quant.DimArea
	DimIter   = quant.DimIter
	NumDims   = quant.NumDims
)

// Errors returned by quantity arithmetic.
var (
	ErrShapeMismatch   = quant.ErrShapeMismatch
	ErrBackendMismatch = quant.ErrBackendMismatch
)

// Dims holds the extent of each dimension.
type Dims = quant.Dims

// Quant is a six-dimensional quantity of scalars.
type Quant = quant.Quant

// NewDims builds Dims from up to six leading extents; missing ones are 1.
func NewDims(extents ...int) (Dims, error) {
	return quant.NewDims(extents...)
}

// DimName returns the name of dimension d.
func DimName(d int) string {
	return quant.DimName(d)
}

// New creates a zero-filled quantity over b.
func New(b scalar.Backend, dims Dims) (*Quant, error) {
	return quant.New(b, dims)
}

// FromFloats creates a quantity of constants.
func FromFloats(b scalar.Backend, dims Dims, values []float64) (*Quant, error) {
	return quant.FromFloats(b, dims, values)
}

// FromScalars creates a quantity from existing scalars of b.
func FromScalars(b scalar.Backend, dims Dims, values []scalar.Scalar) (*Quant, error) {
	return quant.FromScalars(b, dims, values)
}
