// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/born-ml/fladiff/internal/backend/cpu"
	"github.com/born-ml/fladiff/scalar"
)

// Backend represents the CPU backend implementation.
type Backend = internalcpu.CPUBackend

// Real is the scalar type produced by the CPU backend.
type Real = internalcpu.Real

// Compile-time check that Backend implements scalar.Backend.
var _ scalar.Backend = (*Backend)(nil)

// New creates a new CPU backend.
//
// Example:
//
//	backend := cpu.New()
//	y := backend.Mul(backend.Const(3), backend.Const(4)) // 12
func New() *Backend {
	return internalcpu.New()
}

// NewChecked creates a CPU backend that faults on division by zero and
// non-finite results instead of propagating them.
func NewChecked() *Backend {
	return internalcpu.NewChecked()
}
