// Package wipe holds the wipe tower purge cost matrix.
//
// Entry (i, j) is the volume purged when the printer switches from extruder i
// to extruder j. Values are stored row-major in a flat slice, the same layout
// as the wiping_volumes_matrix config option.
package wipe

import (
	"fmt"
	"strconv"
	"strings"

	"filament-swap/pkg/errors"
	"filament-swap/pkg/extruder"
)

// SwapRowsCols relabels extruders a and b in a flat n×n matrix by swapping
// rows a and b, then columns a and b. The buffer is left untouched when
// a == b, when len(values) != n*n, or when either index is outside [0, n).
// It reports whether the buffer was modified.
func SwapRowsCols(values []float64, n, a, b int) bool {
	if a == b || !square(len(values), n) || a < 0 || b < 0 || a >= n || b >= n {
		return false
	}
	for col := 0; col < n; col++ {
		values[a*n+col], values[b*n+col] = values[b*n+col], values[a*n+col]
	}
	for row := 0; row < n; row++ {
		values[row*n+a], values[row*n+b] = values[row*n+b], values[row*n+a]
	}
	return true
}

// square reports whether length == n*n without computing n*n, which
// overflows for large n.
func square(length, n int) bool {
	if n <= 0 {
		return n == 0 && length == 0
	}
	return length%n == 0 && length/n == n
}

// Matrix is an N×N purge cost table.
type Matrix struct {
	n      int
	values []float64
}

// NewMatrix wraps values as an n×n matrix. The slice is used in place.
// A mismatched length is kept as-is so that stale config can still be
// loaded and reported; see Validate.
func NewMatrix(n int, values []float64) *Matrix {
	return &Matrix{n: n, values: values}
}

// Identity returns an n×n matrix with zero on the diagonal and cost
// everywhere else.
func Identity(n int, cost float64) *Matrix {
	values := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j {
				values[i*n+j] = cost
			}
		}
	}
	return &Matrix{n: n, values: values}
}

// Size returns the declared dimension N.
func (m *Matrix) Size() int {
	return m.n
}

// Values returns the backing row-major slice.
func (m *Matrix) Values() []float64 {
	return m.values
}

// At returns the cost of switching from extruder from to extruder to.
func (m *Matrix) At(from, to extruder.Index) (float64, bool) {
	if !m.Consistent() || !from.Valid(m.n) || !to.Valid(m.n) {
		return 0, false
	}
	return m.values[int(from)*m.n+int(to)], true
}

// Consistent reports whether the backing slice holds exactly N*N values.
func (m *Matrix) Consistent() bool {
	return square(len(m.values), m.n)
}

// Validate checks that the matrix matches an extruder count.
func (m *Matrix) Validate(count int) error {
	if !m.Consistent() {
		return errors.SwapMatrixError(fmt.Sprintf("%d values cannot form a %d×%d matrix", len(m.values), m.n, m.n)).
			SetContext("values", len(m.values))
	}
	if m.n != count {
		return errors.SwapMatrixError(fmt.Sprintf("matrix is %d×%d but printer has %d extruders", m.n, m.n, count)).
			SetContext("count", count)
	}
	return nil
}

// Swap exchanges extruders a and b in place. See SwapRowsCols for the
// conditions under which nothing happens.
func (m *Matrix) Swap(a, b extruder.Index) bool {
	return SwapRowsCols(m.values, m.n, int(a), int(b))
}

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	values := make([]float64, len(m.values))
	copy(values, m.values)
	return &Matrix{n: m.n, values: values}
}

// String renders the matrix one row per line.
func (m *Matrix) String() string {
	if !m.Consistent() {
		return fmt.Sprintf("<inconsistent %dx%d matrix with %d values>", m.n, m.n, len(m.values))
	}
	var sb strings.Builder
	for row := 0; row < m.n; row++ {
		for col := 0; col < m.n; col++ {
			if col > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(strconv.FormatFloat(m.values[row*m.n+col], 'f', -1, 64))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
