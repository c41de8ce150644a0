// Package source loads training tables for entropyForest from databases.
package source

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	ef "github.com/zeidlermicha/entropyForest"
)

var (
	ErrNoData     = errors.New("source: no rows returned")
	ErrRaggedRows = errors.New("source: rows have different widths")
)

// Record is one labelled row as stored in a collection.
type Record[L ef.Label] struct {
	Input []float64 `bson:"input"`
	Label L         `bson:"label"`
}

func getData(ctx context.Context, collection *mongo.Collection, count int) (*mongo.Cursor, error) {
	pipeline := mongo.Pipeline{{{Key: "$sample", Value: bson.D{{Key: "size", Value: count}}}}}
	return collection.Aggregate(ctx, pipeline)
}

// SampleMongo draws count random records from collection with $sample.
func SampleMongo[L ef.Label](ctx context.Context, collection *mongo.Collection, count int) (*ef.ColumnMajor, []L, error) {
	cursor, err := getData(ctx, collection, count)
	if err != nil {
		return nil, nil, fmt.Errorf("sample %s: %w", collection.Name(), err)
	}
	return decodeRecords[L](ctx, cursor, count)
}

// LoadMongo reads every record of collection matching filter.
func LoadMongo[L ef.Label](ctx context.Context, collection *mongo.Collection, filter any) (*ef.ColumnMajor, []L, error) {
	if filter == nil {
		filter = bson.D{}
	}
	cursor, err := collection.Find(ctx, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("find %s: %w", collection.Name(), err)
	}
	return decodeRecords[L](ctx, cursor, 0)
}

func decodeRecords[L ef.Label](ctx context.Context, cursor *mongo.Cursor, hint int) (*ef.ColumnMajor, []L, error) {
	defer cursor.Close(ctx)
	rows := make([][]float64, 0, hint)
	labels := make([]L, 0, hint)
	for cursor.Next(ctx) {
		var data Record[L]
		if err := cursor.Decode(&data); err != nil {
			return nil, nil, fmt.Errorf("decode record %d: %w", len(rows), err)
		}
		rows = append(rows, data.Input)
		labels = append(labels, data.Label)
	}
	if err := cursor.Err(); err != nil {
		return nil, nil, err
	}
	ds, err := table(rows)
	if err != nil {
		return nil, nil, err
	}
	return ds, labels, nil
}

func table(rows [][]float64) (*ef.ColumnMajor, error) {
	if len(rows) == 0 {
		return nil, ErrNoData
	}
	for i, row := range rows {
		if len(row) != len(rows[0]) {
			return nil, fmt.Errorf("%w: row %d has %d values, first row %d", ErrRaggedRows, i, len(row), len(rows[0]))
		}
	}
	return ef.FromRows(rows)
}
