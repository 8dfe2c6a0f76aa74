package quant_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/fladiff/internal/backend/cpu"
	"github.com/born-ml/fladiff/internal/eval"
	"github.com/born-ml/fladiff/internal/quant"
	"github.com/born-ml/fladiff/internal/scalar"
)

func mustDims(t *testing.T, extents ...int) quant.Dims {
	t.Helper()
	d, err := quant.NewDims(extents...)
	require.NoError(t, err)
	return d
}

func TestDims(t *testing.T) {
	d := mustDims(t, 1, 3, 1, 1, 1, 2)
	assert.Equal(t, 6, d.NumElements())
	assert.Equal(t, [quant.NumDims]int{6, 2, 2, 2, 2, 1}, d.Strides())
	assert.Equal(t, "quant=1 year=3 unit=1 season=1 area=1 iter=2", d.String())

	off, err := d.Offset([quant.NumDims]int{0, 2, 0, 0, 0, 1})
	require.NoError(t, err)
	assert.Equal(t, 5, off)

	_, err = d.Offset([quant.NumDims]int{0, 3, 0, 0, 0, 0})
	require.Error(t, err)

	_, err = quant.NewDims(1, 0)
	require.Error(t, err)
	_, err = quant.NewDims(1, 1, 1, 1, 1, 1, 1)
	require.Error(t, err)
}

func TestQuant_Arithmetic(t *testing.T) {
	b := cpu.New()
	d := mustDims(t, 1, 3)

	a, err := quant.FromFloats(b, d, []float64{1, 2, 3})
	require.NoError(t, err)
	c, err := quant.FromFloats(b, d, []float64{10, 20, 30})
	require.NoError(t, err)

	sum, err := a.Add(c)
	require.NoError(t, err)
	assert.Equal(t, []float64{11, 22, 33}, sum.Floats())

	diff, err := c.Sub(a)
	require.NoError(t, err)
	assert.Equal(t, []float64{9, 18, 27}, diff.Floats())

	prod, err := a.Mul(c)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 40, 90}, prod.Floats())

	quo, err := c.Div(a)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 10, 10}, quo.Floats())

	assert.Equal(t, []float64{2, 4, 6}, a.Scale(b.Const(2)).Floats())
	assert.Equal(t, 6.0, a.Sum().Float())
}

func TestQuant_AddCommutesAndAssociates(t *testing.T) {
	b := cpu.New()
	d := mustDims(t, 2, 2)
	x, _ := quant.FromFloats(b, d, []float64{1, 2, 3, 4})
	y, _ := quant.FromFloats(b, d, []float64{0.5, -1, 8, 2})
	z, _ := quant.FromFloats(b, d, []float64{-3, 7, 0, 1})

	xy, _ := x.Add(y)
	yx, _ := y.Add(x)
	assert.Equal(t, xy.Floats(), yx.Floats())

	left, _ := xy.Add(z)
	yz, _ := y.Add(z)
	right, _ := x.Add(yz)
	assert.Equal(t, left.Floats(), right.Floats())
}

func TestQuant_ShapeMismatch(t *testing.T) {
	b := cpu.New()
	a, _ := quant.New(b, mustDims(t, 1, 3))
	c, _ := quant.New(b, mustDims(t, 1, 4))

	_, err := a.Add(c)
	require.ErrorIs(t, err, quant.ErrShapeMismatch)

	_, err = quant.FromFloats(b, mustDims(t, 2), []float64{1})
	require.ErrorIs(t, err, quant.ErrShapeMismatch)

	other, _ := quant.New(cpu.New(), mustDims(t, 1, 3))
	_, err = a.Mul(other)
	require.ErrorIs(t, err, quant.ErrBackendMismatch)
}

func TestQuant_AtSet(t *testing.T) {
	b := cpu.New()
	q, err := quant.New(b, mustDims(t, 1, 2, 1, 1, 1, 2))
	require.NoError(t, err)

	idx := [quant.NumDims]int{0, 1, 0, 0, 0, 1}
	require.NoError(t, q.Set(idx, b.Const(7)))

	v, err := q.At(idx)
	require.NoError(t, err)
	assert.Equal(t, 7.0, v.Float())
	assert.Equal(t, []float64{0, 0, 0, 7}, q.Floats())

	_, err = q.At([quant.NumDims]int{1, 0, 0, 0, 0, 0})
	require.Error(t, err)
}

func TestQuant_SumOver(t *testing.T) {
	b := cpu.New()
	// 1 quant × 2 years × 3 iters
	q, err := quant.FromFloats(b, mustDims(t, 1, 2, 1, 1, 1, 3), []float64{1, 2, 3, 10, 20, 30})
	require.NoError(t, err)

	byYear, err := q.SumOver(quant.DimIter)
	require.NoError(t, err)
	assert.Equal(t, mustDims(t, 1, 2), byYear.Dims())
	assert.Equal(t, []float64{6, 60}, byYear.Floats())

	byIter, err := q.SumOver(quant.DimYear)
	require.NoError(t, err)
	assert.Equal(t, []float64{11, 22, 33}, byIter.Floats())

	_, err = q.SumOver(quant.NumDims)
	require.Error(t, err)
}

func TestQuant_FlowsThroughAD(t *testing.T) {
	// f(x) = sum(catch * x^2) with catch = (1, 2, 3): ∂f/∂x_i = 2·catch_i·x_i.
	f := scalar.Scalarize(func(b scalar.Backend, x []scalar.Scalar) scalar.Scalar {
		dims, _ := quant.NewDims(1, 3)
		catch, _ := quant.FromFloats(b, dims, []float64{1, 2, 3})
		effort, _ := quant.FromScalars(b, dims, x)
		sq, _ := effort.Mul(effort)
		total, _ := catch.Mul(sq)
		return total.Sum()
	})

	e := eval.New()
	for _, mode := range []eval.Mode{eval.Reverse, eval.Forward} {
		jac, err := eval.New(eval.WithJacobianMode(mode)).Gradient(f, []float64{1, 0.5, -2})
		require.NoError(t, err)
		assert.True(t, e.Agrees([]float64{jac.At(0, 0), jac.At(0, 1), jac.At(0, 2)}, []float64{2, 2, -12}), "mode %s", mode)
	}
}
