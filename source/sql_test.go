package source_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	ef "github.com/zeidlermicha/entropyForest"
	"github.com/zeidlermicha/entropyForest/source"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE obs (snow REAL, wind REAL, avalanche INTEGER)`)
	require.NoError(t, err)
	for i := 0; i < 40; i++ {
		label := i % 2
		snow := 1.0 + float64(i%4)*0.25
		if label == 1 {
			snow = 9
		}
		_, err = db.Exec(`INSERT INTO obs VALUES (?, ?, ?)`, snow, float64(i%7), label)
		require.NoError(t, err)
	}
	return db
}

func TestLoadSQL(t *testing.T) {
	db := openDB(t)
	ds, labels, err := source.LoadSQL[int](context.Background(), db, `SELECT snow, wind, avalanche FROM obs ORDER BY rowid`)
	require.NoError(t, err)
	assert.Equal(t, 40, ds.Rows())
	assert.Equal(t, 2, ds.Cols())
	assert.Len(t, labels, 40)
	assert.Equal(t, 1, labels[1])
	assert.Equal(t, 9.0, ds.At(1, 0))
	assert.Equal(t, 6.0, ds.At(6, 1))

	f, err := ef.New[int](ef.WithTreeCount(10), ef.WithColumnFraction(1), ef.WithSeed(2))
	require.NoError(t, err)
	require.NoError(t, f.Train(context.Background(), ds, labels))
	assert.Equal(t, 0.0, f.OOBError())
}

func TestLoadSQL_Errors(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()

	_, _, err := source.LoadSQL[int](ctx, db, `SELECT avalanche FROM obs`)
	assert.ErrorIs(t, err, ef.ErrNoColumns)

	_, _, err = source.LoadSQL[int](ctx, db, `SELECT snow, avalanche FROM obs WHERE wind > ?`, 100)
	assert.ErrorIs(t, err, source.ErrNoData)

	_, _, err = source.LoadSQL[int](ctx, db, `SELECT nope FROM missing`)
	assert.Error(t, err)
}
