package scalar

// Rosenbrock is the banana function f(x1, x2) = 100·(x2 − x1²)² + (1 − x1)².
//
// It takes exactly two parameters and returns a single output.
func Rosenbrock(b Backend, x []Scalar) []Scalar {
	x1, x2 := x[0], x[1]
	t1 := b.Sub(x2, b.Mul(x1, x1))
	t2 := b.Sub(b.Const(1), x1)
	return []Scalar{b.Add(b.Mul(b.Const(100), b.Mul(t1, t1)), b.Mul(t2, t2))}
}

// RosenbrockGrad is the hand-derived gradient of Rosenbrock:
// (−400·x1·(x2 − x1²) − 2·(1 − x1), 200·(x2 − x1²)).
func RosenbrockGrad(grad, x []float64) {
	x1, x2 := x[0], x[1]
	grad[0] = -400*x1*(x2-x1*x1) - 2*(1-x1)
	grad[1] = 200 * (x2 - x1*x1)
}
