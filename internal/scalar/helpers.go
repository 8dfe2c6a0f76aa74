package scalar

// Consts lifts a float64 slice into backend constants.
func Consts(b Backend, values []float64) []Scalar {
	out := make([]Scalar, len(values))
	for i, v := range values {
		out[i] = b.Const(v)
	}
	return out
}

// Floats extracts primal values.
func Floats(xs []Scalar) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = x.Float()
	}
	return out
}

// Sum adds all scalars. The sum of an empty slice is b.Const(0).
func Sum(b Backend, xs []Scalar) Scalar {
	if len(xs) == 0 {
		return b.Const(0)
	}
	acc := xs[0]
	for _, x := range xs[1:] {
		acc = b.Add(acc, x)
	}
	return acc
}

// Square returns x * x.
func Square(b Backend, x Scalar) Scalar {
	return b.Mul(x, x)
}

// Dot returns the inner product of two equally sized vectors.
func Dot(b Backend, xs, ys []Scalar) Scalar {
	if len(xs) != len(ys) {
		panic("dot: length mismatch")
	}
	terms := make([]Scalar, len(xs))
	for i := range xs {
		terms[i] = b.Mul(xs[i], ys[i])
	}
	return Sum(b, terms)
}

// Scalarize wraps a function of a vector returning a single value as a Func.
func Scalarize(f func(b Backend, x []Scalar) Scalar) Func {
	return func(b Backend, x []Scalar) []Scalar {
		return []Scalar{f(b, x)}
	}
}
