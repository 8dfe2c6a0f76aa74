// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the float64 leaf backend.
//
// # Overview
//
// The CPU backend evaluates every scalar operation with the math package and
// holds no tape or partials. It is the innermost layer of every derivative
// computation:
//   - cpu.New() for plain evaluation
//   - dual.New(cpu.New(), n) for forward-mode gradients
//   - autodiff.New(cpu.New()) for reverse-mode gradients
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/fladiff/backend/cpu"
//	    "github.com/born-ml/fladiff/scalar"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    x := scalar.Consts(backend, []float64{-1.2, 1})
//	    y := scalar.Rosenbrock(backend, x) // [24.2]
//	}
//
// # Numerical Faults
//
// NewChecked returns a backend that panics with a fault on division by zero
// and on non-finite results. The evaluator recovers the fault and reports it
// as a NumericalError naming the operation.
//
// # Thread Safety
//
// The CPU backend has no mutable state and is safe for concurrent use.
package cpu
