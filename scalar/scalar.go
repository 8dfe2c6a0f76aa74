// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package scalar defines the abstract scalar backend that target functions
// are written against.
//
// A target function is written once, as a Func, and then evaluated by the CPU
// backend, differentiated by the dual (forward-mode) or autodiff
// (reverse-mode) backends, or by a nesting of both for second derivatives.
//
// Example:
//
//	banana := scalar.Scalarize(func(b scalar.Backend, x []scalar.Scalar) scalar.Scalar {
//	    t := b.Sub(x[1], b.Mul(x[0], x[0]))
//	    u := b.Sub(b.Const(1), x[0])
//	    return b.Add(b.Mul(b.Const(100), scalar.Square(b, t)), scalar.Square(b, u))
//	})
package scalar

import (
	"github.com/born-ml/fladiff/internal/scalar"
)

// Scalar is an opaque value owned by a Backend.
type Scalar = scalar.Scalar

// Backend is the set of scalar operations a target function may use.
type Backend = scalar.Backend

// Func is a target function: n inputs to m outputs over any Backend.
type Func = scalar.Func

// Consts lifts host values into constants of b.
func Consts(b Backend, values []float64) []Scalar {
	return scalar.Consts(b, values)
}

// Floats extracts the host value of each scalar.
func Floats(xs []Scalar) []float64 {
	return scalar.Floats(xs)
}

// Sum adds xs through b. The sum of no terms is zero.
func Sum(b Backend, xs []Scalar) Scalar {
	return scalar.Sum(b, xs)
}

// Square returns x*x.
func Square(b Backend, x Scalar) Scalar {
	return scalar.Square(b, x)
}

// Dot returns the inner product of xs and ys.
func Dot(b Backend, xs, ys []Scalar) Scalar {
	return scalar.Dot(b, xs, ys)
}

// Scalarize turns a single-output function into a Func.
func Scalarize(f func(b Backend, x []Scalar) Scalar) Func {
	return scalar.Scalarize(f)
}

// Rosenbrock is the two-input banana function 100(x1-x0²)² + (1-x0)².
func Rosenbrock(b Backend, x []Scalar) []Scalar {
	return scalar.Rosenbrock(b, x)
}

// RosenbrockGrad writes the closed-form gradient of Rosenbrock at x to grad.
func RosenbrockGrad(grad, x []float64) {
	scalar.RosenbrockGrad(grad, x)
}
