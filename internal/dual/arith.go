package dual

import (
	"math"

	"github.com/born-ml/fladiff/internal/scalar"
)

// Add returns a + b: ∂(a+b) = ∂a + ∂b.
func (b *Backend[B]) Add(x, y scalar.Scalar) scalar.Scalar {
	p, q := number("add", x), number("add", y)
	return Number{
		Real:     b.inner.Add(p.Real, q.Real),
		Partials: b.linear(p.Partials, nil, q.Partials, nil, false),
	}
}

// Sub returns a - b: ∂(a−b) = ∂a − ∂b.
func (b *Backend[B]) Sub(x, y scalar.Scalar) scalar.Scalar {
	p, q := number("sub", x), number("sub", y)
	return Number{
		Real:     b.inner.Sub(p.Real, q.Real),
		Partials: b.linear(p.Partials, nil, q.Partials, nil, true),
	}
}

// Mul returns a * b: ∂(ab) = b·∂a + a·∂b.
func (b *Backend[B]) Mul(x, y scalar.Scalar) scalar.Scalar {
	p, q := number("mul", x), number("mul", y)
	return Number{
		Real:     b.inner.Mul(p.Real, q.Real),
		Partials: b.linear(p.Partials, q.Real, q.Partials, p.Real, false),
	}
}

// Div returns a / b: ∂(a/b) = (∂a − (a/b)·∂b) / b.
//
// A zero-valued divisor propagates ±Inf/NaN into the primal and the partials,
// matching float64 division.
func (b *Backend[B]) Div(x, y scalar.Scalar) scalar.Scalar {
	p, q := number("div", x), number("div", y)
	quo := b.inner.Div(p.Real, q.Real)
	inv := b.inner.Div(b.inner.Const(1), q.Real)
	return Number{
		Real:     quo,
		Partials: b.linear(p.Partials, inv, q.Partials, b.inner.Mul(quo, inv), true),
	}
}

// Pow returns a ** b.
//
// With a constant exponent this is PowReal-like (∂ = b·a^(b−1)·∂a); with a
// constant base ∂ = a^b·ln(a)·∂b; otherwise ∂ = a^b·(ln(a)·∂b + b·∂a/a).
func (b *Backend[B]) Pow(x, y scalar.Scalar) scalar.Scalar {
	p, q := number("pow", x), number("pow", y)
	r := b.inner.Pow(p.Real, q.Real)

	var da, db scalar.Scalar
	if p.Partials != nil {
		// b·a^(b−1)
		da = b.inner.Mul(q.Real, b.inner.Pow(p.Real, b.inner.Sub(q.Real, b.inner.Const(1))))
	}
	if q.Partials != nil {
		// a^b·ln(a)
		db = b.inner.Mul(r, b.inner.Log(p.Real))
	}
	return Number{Real: r, Partials: b.linear(p.Partials, da, q.Partials, db, false)}
}

// Neg returns -x.
func (b *Backend[B]) Neg(x scalar.Scalar) scalar.Scalar {
	p := number("neg", x)
	return Number{
		Real:     b.inner.Neg(p.Real),
		Partials: b.linear(nil, nil, p.Partials, nil, true),
	}
}

// PowReal returns x ** p: ∂ = p·x^(p−1)·∂x.
func (b *Backend[B]) PowReal(x scalar.Scalar, p float64) scalar.Scalar {
	d := number("powreal", x)
	if p == 0 {
		return Number{Real: b.inner.PowReal(d.Real, 0)}
	}
	deriv := b.inner.Mul(b.inner.Const(p), b.inner.PowReal(d.Real, p-1))
	return Number{
		Real:     b.inner.PowReal(d.Real, p),
		Partials: b.scale(d.Partials, deriv),
	}
}

// Exp returns e**x: ∂ = e^x·∂x.
func (b *Backend[B]) Exp(x scalar.Scalar) scalar.Scalar {
	d := number("exp", x)
	r := b.inner.Exp(d.Real)
	return Number{Real: r, Partials: b.scale(d.Partials, r)}
}

// Log returns ln(x): ∂ = ∂x/x.
func (b *Backend[B]) Log(x scalar.Scalar) scalar.Scalar {
	d := number("log", x)
	inv := b.inner.Div(b.inner.Const(1), d.Real)
	return Number{Real: b.inner.Log(d.Real), Partials: b.scale(d.Partials, inv)}
}

// Sqrt returns √x: ∂ = ∂x/(2√x).
func (b *Backend[B]) Sqrt(x scalar.Scalar) scalar.Scalar {
	d := number("sqrt", x)
	r := b.inner.Sqrt(d.Real)
	deriv := b.inner.Div(b.inner.Const(0.5), r)
	return Number{Real: r, Partials: b.scale(d.Partials, deriv)}
}

// Sin returns sin(x): ∂ = cos(x)·∂x.
func (b *Backend[B]) Sin(x scalar.Scalar) scalar.Scalar {
	d := number("sin", x)
	return Number{
		Real:     b.inner.Sin(d.Real),
		Partials: b.scale(d.Partials, b.inner.Cos(d.Real)),
	}
}

// Cos returns cos(x): ∂ = −sin(x)·∂x.
func (b *Backend[B]) Cos(x scalar.Scalar) scalar.Scalar {
	d := number("cos", x)
	return Number{
		Real:     b.inner.Cos(d.Real),
		Partials: b.scale(d.Partials, b.inner.Neg(b.inner.Sin(d.Real))),
	}
}

// Tan returns tan(x): ∂ = (1 + tan²x)·∂x.
func (b *Backend[B]) Tan(x scalar.Scalar) scalar.Scalar {
	d := number("tan", x)
	r := b.inner.Tan(d.Real)
	deriv := b.inner.Add(b.inner.Const(1), b.inner.Mul(r, r))
	return Number{Real: r, Partials: b.scale(d.Partials, deriv)}
}

// Tanh returns tanh(x): ∂ = (1 − tanh²x)·∂x.
func (b *Backend[B]) Tanh(x scalar.Scalar) scalar.Scalar {
	d := number("tanh", x)
	r := b.inner.Tanh(d.Real)
	deriv := b.inner.Sub(b.inner.Const(1), b.inner.Mul(r, r))
	return Number{Real: r, Partials: b.scale(d.Partials, deriv)}
}

// Abs returns |x|: ∂ = sign(x)·∂x, with sign(0) = 0.
func (b *Backend[B]) Abs(x scalar.Scalar) scalar.Scalar {
	d := number("abs", x)
	return Number{
		Real:     b.inner.Abs(d.Real),
		Partials: b.scale(d.Partials, b.inner.Const(sign(d.Float()))),
	}
}

// scale returns factor·ps, or nil if ps is nil.
func (b *Backend[B]) scale(ps []scalar.Scalar, factor scalar.Scalar) []scalar.Scalar {
	if ps == nil {
		return nil
	}
	out := make([]scalar.Scalar, len(ps))
	for i, p := range ps {
		out[i] = b.inner.Mul(factor, p)
	}
	return out
}

// linear returns fa·pa ± fb·pb, where a nil factor means 1 and a nil partial
// slice means zero. If both slices are nil the result is nil.
func (b *Backend[B]) linear(pa []scalar.Scalar, fa scalar.Scalar, pb []scalar.Scalar, fb scalar.Scalar, subtract bool) []scalar.Scalar {
	if pa == nil && pb == nil {
		return nil
	}
	out := make([]scalar.Scalar, b.n)
	for i := range out {
		var term scalar.Scalar
		if pa != nil {
			term = pa[i]
			if fa != nil {
				term = b.inner.Mul(fa, term)
			}
		}
		if pb != nil {
			other := pb[i]
			if fb != nil {
				other = b.inner.Mul(fb, other)
			}
			switch {
			case term == nil && subtract:
				term = b.inner.Neg(other)
			case term == nil:
				term = other
			case subtract:
				term = b.inner.Sub(term, other)
			default:
				term = b.inner.Add(term, other)
			}
		}
		out[i] = term
	}
	return out
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	case math.IsNaN(v):
		return math.NaN()
	default:
		return 0
	}
}
