// Package vecmath provides the dense matrix and vector kernels used by the
// propagation models. Matrices are small (one row/column per brain region),
// so everything is plain float64 arithmetic over flat row-major storage.
package vecmath

import "fmt"

// Dense is a row-major matrix of float64 values.
type Dense struct {
	rows, cols int
	data       []float64
}

// NewDense creates a rows×cols matrix initialized to zero.
// It panics if either dimension is not positive; dimensions come from
// validated graph shapes, so a bad value is a programmer error.
func NewDense(rows, cols int) *Dense {
	if rows <= 0 || cols <= 0 {
		panic(fmt.Sprintf("vecmath: invalid dense shape %dx%d", rows, cols))
	}
	return &Dense{rows: rows, cols: cols, data: make([]float64, rows*cols)}
}

// Rows returns the number of rows.
func (m *Dense) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Dense) Cols() int { return m.cols }

// At returns the element at (i, j). Indices are not bounds-checked beyond
// the slice access itself.
func (m *Dense) At(i, j int) float64 { return m.data[i*m.cols+j] }

// Set assigns v to the element at (i, j).
func (m *Dense) Set(i, j int, v float64) { m.data[i*m.cols+j] = v }

// Clone returns a deep copy of the matrix.
func (m *Dense) Clone() *Dense {
	data := make([]float64, len(m.data))
	copy(data, m.data)
	return &Dense{rows: m.rows, cols: m.cols, data: data}
}

// MulVec computes dst = m · x. dst and x must have length m.Cols() and
// m.Rows() respectively; dst may not alias x.
func (m *Dense) MulVec(dst, x []float64) {
	if len(x) != m.cols || len(dst) != m.rows {
		panic(fmt.Sprintf("vecmath: MulVec shape mismatch: %dx%d by %d into %d", m.rows, m.cols, len(x), len(dst)))
	}
	for i := 0; i < m.rows; i++ {
		base := i * m.cols
		sum := 0.0
		for j := 0; j < m.cols; j++ {
			sum += m.data[base+j] * x[j]
		}
		dst[i] = sum
	}
}

// Apply replaces every element with f(i, j, v), iterating rows then columns.
func (m *Dense) Apply(f func(i, j int, v float64) float64) {
	for i := 0; i < m.rows; i++ {
		base := i * m.cols
		for j := 0; j < m.cols; j++ {
			m.data[base+j] = f(i, j, m.data[base+j])
		}
	}
}

// ClampMin floors every element at lo.
func (m *Dense) ClampMin(lo float64) {
	for k, v := range m.data {
		if v < lo {
			m.data[k] = lo
		}
	}
}

// Max returns the largest element value.
func (m *Dense) Max() float64 {
	max := m.data[0]
	for _, v := range m.data[1:] {
		if v > max {
			max = v
		}
	}
	return max
}
