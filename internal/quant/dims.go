package quant

import (
	"fmt"
	"strings"
)

// Dimension indices of a quantity.
const (
	DimQuant = iota
	DimYear
	DimUnit
	DimSeason
	DimArea
	DimIter

	NumDims
)

var dimNames = [NumDims]string{"quant", "year", "unit", "season", "area", "iter"}

// DimName returns the name of dimension d ("quant", "year", ...).
func DimName(d int) string {
	if d < 0 || d >= NumDims {
		return fmt.Sprintf("dim%d", d)
	}
	return dimNames[d]
}

// Dims holds the extent of each of the six dimensions.
type Dims [NumDims]int

// NewDims builds Dims from up to six leading extents; missing ones are 1.
func NewDims(extents ...int) (Dims, error) {
	if len(extents) > NumDims {
		return Dims{}, fmt.Errorf("quant: %d extents, at most %d dimensions", len(extents), NumDims)
	}
	d := Dims{1, 1, 1, 1, 1, 1}
	copy(d[:], extents)
	return d, d.Validate()
}

// NumElements returns the total number of elements.
func (d Dims) NumElements() int {
	n := 1
	for _, dim := range d {
		n *= dim
	}
	return n
}

// Validate checks that all extents are positive.
func (d Dims) Validate() error {
	for i, dim := range d {
		if dim <= 0 {
			return fmt.Errorf("quant: invalid %s extent %d (must be > 0)", DimName(i), dim)
		}
	}
	return nil
}

// Strides returns row-major strides: stride[i] = product of all extents after i.
func (d Dims) Strides() [NumDims]int {
	var strides [NumDims]int
	strides[NumDims-1] = 1
	for i := NumDims - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * d[i+1]
	}
	return strides
}

// Offset returns the flat offset of idx, or an error if idx is out of range.
func (d Dims) Offset(idx [NumDims]int) (int, error) {
	strides := d.Strides()
	off := 0
	for i, v := range idx {
		if v < 0 || v >= d[i] {
			return 0, fmt.Errorf("quant: %s index %d out of range [0, %d)", DimName(i), v, d[i])
		}
		off += v * strides[i]
	}
	return off, nil
}

// String formats the extents as "quant=1 year=10 unit=1 season=1 area=1 iter=1".
func (d Dims) String() string {
	parts := make([]string, NumDims)
	for i, dim := range d {
		parts[i] = fmt.Sprintf("%s=%d", dimNames[i], dim)
	}
	return strings.Join(parts, " ")
}
