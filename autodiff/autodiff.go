// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides reverse-mode automatic differentiation.
//
// This package implements reverse-mode differentiation using a gradient tape.
// It wraps any scalar backend to add autodiff capabilities, and a finished
// tape can be kept as a Recording and replayed at other points.
//
// Example:
//
//	import (
//	    "github.com/born-ml/fladiff/autodiff"
//	    "github.com/born-ml/fladiff/backend/cpu"
//	    "github.com/born-ml/fladiff/scalar"
//	)
//
//	func main() {
//	    backend := autodiff.New(cpu.New())
//	    x := backend.BeginRecording(scalar.Consts(backend.Inner(), []float64{-1.2, 1}))
//	    rec, err := backend.EndRecording(scalar.Rosenbrock(backend, x))
//	    if err != nil {
//	        panic(err)
//	    }
//	    values, jac, err := rec.Jacobian([]float64{1, 1})
//	}
package autodiff

import (
	"github.com/born-ml/fladiff/internal/autodiff"
	"github.com/born-ml/fladiff/scalar"
)

// Backend is the autodiff-enabled backend.
type Backend[B scalar.Backend] = autodiff.AutodiffBackend[B]

// New creates a new autodiff backend wrapping the given backend.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
func New[B scalar.Backend](backend B) *Backend[B] {
	return autodiff.New(backend)
}

// GradientTape records operations for automatic differentiation.
type GradientTape = autodiff.GradientTape

// NewGradientTape creates a new gradient tape.
func NewGradientTape() *GradientTape {
	return autodiff.NewGradientTape()
}

// Recording is a finished tape that can be replayed at any point.
type Recording = autodiff.Recording

// ErrTapeStructure reports a variable that does not belong to the tape.
var ErrTapeStructure = autodiff.ErrTapeStructure

// Jacobian evaluates f at point and returns its values and Jacobian.
func Jacobian(leaf scalar.Backend, f scalar.Func, point []float64) ([]float64, [][]float64, error) {
	return autodiff.Jacobian(leaf, f, point)
}

// Hessian returns the value, gradient and Hessian of output k of f, using
// reverse mode over reverse mode.
func Hessian(leaf scalar.Backend, f scalar.Func, point []float64, k int) (float64, []float64, [][]float64, error) {
	return autodiff.Hessian(leaf, f, point, k)
}
