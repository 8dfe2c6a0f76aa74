package host_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/fladiff/internal/host"
)

func TestVector_Accepted(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []float64
	}{
		{"float64 slice", []float64{-1.2, 1}, []float64{-1.2, 1}},
		{"any slice", []any{-1.2, 1, "3.5"}, []float64{-1.2, 1, 3.5}},
		{"int slice", []int{1, 2, 3}, []float64{1, 2, 3}},
		{"string slice", []string{"0.5", "-2"}, []float64{0.5, -2}},
		{"array", [2]float32{1.5, 2}, []float64{1.5, 2}},
		{"scalar", 4, []float64{4}},
		{"r style", "c(-1.2, 1)", []float64{-1.2, 1}},
		{"json", "[-1.2, 1]", []float64{-1.2, 1}},
		{"spaces", " -1.2  1 ", []float64{-1.2, 1}},
		{"commas", "-1.2,1", []float64{-1.2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := host.Vector(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVector_Rejected(t *testing.T) {
	tests := []struct {
		name  string
		in    any
		index int
	}{
		{"nil", nil, -1},
		{"empty slice", []float64{}, -1},
		{"empty string", "c()", -1},
		{"word", []any{1.0, "banana"}, 1},
		{"nan string", "1, NaN", 1},
		{"map", map[string]int{"a": 1}, -1},
		{"bad token", "[1, 2, x]", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := host.Vector(tt.in)
			var convErr *host.ConversionError
			require.ErrorAs(t, err, &convErr)
			assert.Equal(t, tt.index, convErr.Index)
		})
	}
}

func TestVector_CopiesInput(t *testing.T) {
	in := []float64{1, 2}
	out, err := host.Vector(in)
	require.NoError(t, err)

	out[0] = 99
	assert.Equal(t, 1.0, in[0])
}

func TestParseMatrix(t *testing.T) {
	rows, err := host.ParseMatrix("-1.2 1; 1 1;c(0, 0)")
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{-1.2, 1}, {1, 1}, {0, 0}}, rows)

	_, err = host.ParseMatrix("1 2; 3")
	var convErr *host.ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, 1, convErr.Index)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "c(-1.2, 1)", host.FormatVector([]float64{-1.2, 1}))

	m := mat.NewDense(2, 2, []float64{1330, 480, 480, 200})
	out := host.FormatMatrix(m)
	assert.Contains(t, out, "1330")
	assert.Contains(t, out, "200")
	assert.Equal(t, [][]float64{{1330, 480}, {480, 200}}, host.Rows(m))
}
