// Package host converts values coming from an interactive session or a tool
// call into parameter vectors, and formats results back for display.
package host

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/evilsocket/islazy/str"
	"github.com/spf13/cast"
	"gonum.org/v1/gonum/mat"
)

// ConversionError reports a host value that cannot be mapped to a numeric
// vector. Index is the offending element, or -1 for the value as a whole.
type ConversionError struct {
	Index  int
	Value  any
	Reason string
}

func (e *ConversionError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("host: cannot convert %v to a numeric vector: %s", e.Value, e.Reason)
	}
	return fmt.Sprintf("host: element %d (%v): %s", e.Index, e.Value, e.Reason)
}

// Vector converts a host value to a parameter vector.
//
// Accepted values are slices and arrays of anything spf13/cast converts to
// float64, single numbers, and strings accepted by ParseVector. The result
// is never empty and contains only finite numbers.
func Vector(v any) ([]float64, error) {
	switch t := v.(type) {
	case nil:
		return nil, &ConversionError{Index: -1, Value: v, Reason: "no value"}
	case []float64:
		return finite(append([]float64(nil), t...))
	case string:
		return ParseVector(t)
	case json.RawMessage:
		return ParseVector(string(t))
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Len() == 0 {
			return nil, &ConversionError{Index: -1, Value: v, Reason: "empty vector"}
		}
		out := make([]float64, rv.Len())
		for i := range out {
			elem := rv.Index(i).Interface()
			f, err := cast.ToFloat64E(elem)
			if err != nil {
				return nil, &ConversionError{Index: i, Value: elem, Reason: "not a number"}
			}
			out[i] = f
		}
		return finite(out)
	default:
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, &ConversionError{Index: -1, Value: v, Reason: fmt.Sprintf("unsupported type %T", v)}
		}
		return finite([]float64{f})
	}
}

// ParseVector parses a textual vector. All of these are accepted:
//
//	c(-1.2, 1)
//	[-1.2, 1]
//	-1.2 1
//	-1.2,1
func ParseVector(s string) ([]float64, error) {
	body := str.Trim(s)
	switch {
	case strings.HasPrefix(body, "c(") && strings.HasSuffix(body, ")"):
		body = body[2 : len(body)-1]
	case strings.HasPrefix(body, "[") && strings.HasSuffix(body, "]"):
		body = body[1 : len(body)-1]
	}

	fields := strings.FieldsFunc(body, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(fields) == 0 {
		return nil, &ConversionError{Index: -1, Value: s, Reason: "empty vector"}
	}

	out := make([]float64, len(fields))
	for i, field := range fields {
		f, err := cast.ToFloat64E(field)
		if err != nil {
			return nil, &ConversionError{Index: i, Value: field, Reason: "not a number"}
		}
		out[i] = f
	}
	return finite(out)
}

// ParseMatrix parses rows separated by ';', each accepted by ParseVector,
// as in "-1.2 1; 1 1". All rows must have the same length.
func ParseMatrix(s string) ([][]float64, error) {
	parts := str.SplitBy(s, ";")
	if len(parts) == 0 {
		return nil, &ConversionError{Index: -1, Value: s, Reason: "no rows"}
	}
	rows := make([][]float64, len(parts))
	for i, part := range parts {
		row, err := ParseVector(part)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if i > 0 && len(row) != len(rows[0]) {
			return nil, &ConversionError{Index: i, Value: part, Reason: fmt.Sprintf("row has %d values, want %d", len(row), len(rows[0]))}
		}
		rows[i] = row
	}
	return rows, nil
}

func finite(xs []float64) ([]float64, error) {
	if len(xs) == 0 {
		return nil, &ConversionError{Index: -1, Value: xs, Reason: "empty vector"}
	}
	for i, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, &ConversionError{Index: i, Value: x, Reason: "not a finite number"}
		}
	}
	return xs, nil
}

// FormatVector formats xs as "c(-1.2, 1)".
func FormatVector(xs []float64) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprintf("%.10g", x)
	}
	return "c(" + strings.Join(parts, ", ") + ")"
}

// FormatMatrix formats m with one row per line.
func FormatMatrix(m mat.Matrix) string {
	return fmt.Sprintf("%.10g", mat.Formatted(m, mat.Squeeze()))
}

// Rows returns the rows of m as slices.
func Rows(m mat.Matrix) [][]float64 {
	r, c := m.Dims()
	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = make([]float64, c)
		for j := range rows[i] {
			rows[i][j] = m.At(i, j)
		}
	}
	return rows
}
