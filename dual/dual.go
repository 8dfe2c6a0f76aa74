// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package dual provides forward-mode differentiation with dual numbers.
//
// A dual Backend wraps any scalar.Backend and carries, next to each value,
// its partial derivatives with respect to n independent inputs. Because the
// partials are scalars of the inner backend, dual.New(dual.New(cpu.New(), n), n)
// yields second derivatives.
//
// Example:
//
//	values, jac := dual.Jacobian(cpu.New(), scalar.Rosenbrock, []float64{-1.2, 1})
//	// values = [24.2], jac = [[-215.6, -88]]
package dual

import (
	"github.com/born-ml/fladiff/internal/dual"
	"github.com/born-ml/fladiff/scalar"
)

// Backend is the forward-mode backend over B.
type Backend[B scalar.Backend] = dual.Backend[B]

// Number is the scalar type of a dual Backend.
type Number = dual.Number

// New creates a dual backend with n independent inputs over inner.
func New[B scalar.Backend](inner B, n int) *Backend[B] {
	return dual.New(inner, n)
}

// Jacobian evaluates f at point and returns its values and Jacobian.
func Jacobian(leaf scalar.Backend, f scalar.Func, point []float64) ([]float64, [][]float64) {
	return dual.Jacobian(leaf, f, point)
}

// Hessian returns the value, gradient and Hessian of output k of f.
func Hessian(leaf scalar.Backend, f scalar.Func, point []float64, k int) (float64, []float64, [][]float64, error) {
	return dual.Hessian(leaf, f, point, k)
}
