package optim

import (
	"fmt"
)

// SGD implements gradient descent with optional momentum.
//
// Update rule without momentum:
//
//	x = x - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	x = x - lr * velocity
//
// Example:
//
//	sgd := optim.NewSGD(optim.SGDConfig{LR: 0.001, Momentum: 0.9})
//	x, err := optim.Descend(ctx, sgd, grad, x0, 10000)
type SGD struct {
	lr       float64
	momentum float64
	velocity []float64
}

// SGDConfig holds configuration for SGD.
type SGDConfig struct {
	LR       float64 // Learning rate (default: 0.01)
	Momentum float64 // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates a new SGD stepper.
func NewSGD(config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}

	return &SGD{
		lr:       config.LR,
		momentum: config.Momentum,
	}
}

// Step performs a single update of x.
func (s *SGD) Step(x, grad []float64) {
	if s.momentum == 0 {
		for i, g := range grad {
			x[i] -= s.lr * g
		}
		return
	}

	if len(s.velocity) != len(x) {
		s.velocity = make([]float64, len(x))
	}
	for i, g := range grad {
		s.velocity[i] = s.momentum*s.velocity[i] + g
		x[i] -= s.lr * s.velocity[i]
	}
}

// Reset clears the velocity buffer.
func (s *SGD) Reset() {
	s.velocity = nil
}

// GetLR returns the current learning rate.
func (s *SGD) GetLR() float64 {
	return s.lr
}

// SetLR updates the learning rate.
func (s *SGD) SetLR(lr float64) {
	s.lr = lr
}

// StateDict returns the stepper state for persistence.
//
// With momentum, the velocity buffer is exported under "velocity".
// Without momentum, returns an empty map.
func (s *SGD) StateDict() map[string][]float64 {
	state := make(map[string][]float64)
	if s.momentum == 0 || s.velocity == nil {
		return state
	}
	state["velocity"] = append([]float64(nil), s.velocity...)
	return state
}

// LoadStateDict restores state exported by StateDict. n is the parameter
// count the velocity must match.
func (s *SGD) LoadStateDict(state map[string][]float64, n int) error {
	if s.momentum == 0 {
		return nil
	}

	s.velocity = nil
	v, ok := state["velocity"]
	if !ok {
		return nil
	}
	if len(v) != n {
		return fmt.Errorf("velocity length mismatch: expected %d, got %d", n, len(v))
	}
	s.velocity = append([]float64(nil), v...)
	return nil
}
