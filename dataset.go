package entropyForest

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Dataset is the read-only numeric table a forest trains on.
// Column returns the values of one column ordered by row; callers must not
// modify the returned slice.
type Dataset interface {
	Rows() int
	Cols() int
	At(row, col int) float64
	Column(col int) []float64
}

// ColumnMajor is an immutable table stored column by column in one flat slice.
type ColumnMajor struct {
	rows, cols int
	data       []float64
}

var _ Dataset = (*ColumnMajor)(nil)

// NewColumnMajor wraps data, where column j occupies data[j*rows:(j+1)*rows].
// data is not copied. NaN values are rejected with ErrNaN.
func NewColumnMajor(rows, cols int, data []float64) (*ColumnMajor, error) {
	if rows <= 0 {
		return nil, ErrNoRows
	}
	if cols <= 0 {
		return nil, ErrNoColumns
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("%w: %d values for %dx%d", ErrShape, len(data), rows, cols)
	}
	return checked(&ColumnMajor{rows: rows, cols: cols, data: data})
}

// FromRows copies a row-major table into column-major storage.
// Every row must have the same length.
func FromRows(rows [][]float64) (*ColumnMajor, error) {
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	cols := len(rows[0])
	if cols == 0 {
		return nil, ErrNoColumns
	}
	n := len(rows)
	data := make([]float64, n*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrShape, i, len(row), cols)
		}
		for j, v := range row {
			data[j*n+i] = v
		}
	}
	return checked(&ColumnMajor{rows: n, cols: cols, data: data})
}

// FromMatrix copies a gonum matrix into column-major storage.
func FromMatrix(m mat.Matrix) (*ColumnMajor, error) {
	r, c := m.Dims()
	if r == 0 {
		return nil, ErrNoRows
	}
	if c == 0 {
		return nil, ErrNoColumns
	}
	data := make([]float64, r*c)
	for j := 0; j < c; j++ {
		mat.Col(data[j*r:(j+1)*r], j, m)
	}
	return checked(&ColumnMajor{rows: r, cols: c, data: data})
}

func checked(d *ColumnMajor) (*ColumnMajor, error) {
	if err := checkNaN(d); err != nil {
		return nil, err
	}
	return d, nil
}

// checkNaN rejects tables holding NaN: split search sorts NaN first but Vote
// sends it right.
func checkNaN(ds Dataset) error {
	for j := 0; j < ds.Cols(); j++ {
		if col := ds.Column(j); floats.HasNaN(col) {
			return fmt.Errorf("%w: column %d", ErrNaN, j)
		}
	}
	return nil
}

func (d *ColumnMajor) Rows() int { return d.rows }

func (d *ColumnMajor) Cols() int { return d.cols }

func (d *ColumnMajor) At(row, col int) float64 { return d.data[col*d.rows+row] }

func (d *ColumnMajor) Column(col int) []float64 {
	return d.data[col*d.rows : (col+1)*d.rows : (col+1)*d.rows]
}

// Row copies one row out of the table.
func (d *ColumnMajor) Row(row int) []float64 {
	return rowOf(d, row)
}

func rowOf(ds Dataset, row int) []float64 {
	out := make([]float64, ds.Cols())
	for j := range out {
		out[j] = ds.At(row, j)
	}
	return out
}
