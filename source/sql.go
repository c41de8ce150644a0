package source

import (
	"context"
	"database/sql"
	"fmt"

	ef "github.com/zeidlermicha/entropyForest"
)

// LoadSQL runs query and treats every result column as a feature except the
// last, which holds the integer label.
func LoadSQL[L ef.Label](ctx context.Context, db *sql.DB, query string, args ...any) (*ef.ColumnMajor, []L, error) {
	rs, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("query: %w", err)
	}
	defer rs.Close()

	cols, err := rs.Columns()
	if err != nil {
		return nil, nil, err
	}
	if len(cols) < 2 {
		return nil, nil, fmt.Errorf("%w: query returns %d columns, need features and a label", ef.ErrNoColumns, len(cols))
	}

	var rows [][]float64
	var labels []L
	dest := make([]any, len(cols))
	for rs.Next() {
		row := make([]float64, len(cols)-1)
		for i := range row {
			dest[i] = &row[i]
		}
		var label int64
		dest[len(cols)-1] = &label
		if err := rs.Scan(dest...); err != nil {
			return nil, nil, fmt.Errorf("scan row %d: %w", len(rows), err)
		}
		rows = append(rows, row)
		labels = append(labels, L(label))
	}
	if err := rs.Err(); err != nil {
		return nil, nil, err
	}
	ds, err := table(rows)
	if err != nil {
		return nil, nil, err
	}
	return ds, labels, nil
}
