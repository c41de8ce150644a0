package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	ef "github.com/zeidlermicha/entropyForest"
)

// readCSV parses a numeric CSV whose last column is an integer label.
func readCSV(path string) ([][]float64, []int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, err
	}

	inputs := make([][]float64, 0, len(records))
	targets := make([]int, 0, len(records))
	for i, rec := range records {
		if len(rec) < 2 {
			continue
		}
		x := make([]float64, len(rec)-1)
		for j := range x {
			if x[j], err = strconv.ParseFloat(rec[j], 64); err != nil {
				return nil, nil, fmt.Errorf("line %d column %d: %w", i+1, j+1, err)
			}
		}
		y, err := strconv.Atoi(rec[len(rec)-1])
		if err != nil {
			return nil, nil, fmt.Errorf("line %d label: %w", i+1, err)
		}
		inputs = append(inputs, x)
		targets = append(targets, y)
	}
	return inputs, targets, nil
}

func main() {
	path := flag.String("data", "data.csv", "numeric CSV, label in the last column")
	trees := flag.Int("trees", 100, "number of trees")
	workers := flag.Int("workers", 4, "trees grown concurrently")
	seed := flag.Uint64("seed", 0, "random seed, 0 for the clock")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	start := time.Now()

	inputs, targets, err := readCSV(*path)
	if err != nil {
		log.Fatal().Err(err).Str("path", *path).Msg("read data")
	}

	var trainInputs, testInputs [][]float64
	var trainTargets, testTargets []int
	for i := range inputs {
		if i%2 == 1 {
			testInputs = append(testInputs, inputs[i])
			testTargets = append(testTargets, targets[i])
		} else {
			trainInputs = append(trainInputs, inputs[i])
			trainTargets = append(trainTargets, targets[i])
		}
	}
	ds, err := ef.FromRows(trainInputs)
	if err != nil {
		log.Fatal().Err(err).Msg("build dataset")
	}

	forest, err := ef.New[int](
		ef.WithTreeCount(*trees),
		ef.WithWorkers(*workers),
		ef.WithSeed(*seed),
		ef.WithLogger(log.Logger),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("configure forest")
	}
	if err := forest.Train(context.Background(), ds, trainTargets); err != nil {
		log.Fatal().Err(err).Msg("train")
	}

	errCount := 0
	for i, x := range testInputs {
		output, err := forest.Predict(x)
		if err != nil {
			log.Fatal().Err(err).Int("row", i).Msg("predict")
		}
		if output != testTargets[i] {
			errCount++
		}
	}
	log.Info().
		Float64("success_rate", 1-float64(errCount)/float64(max(len(testInputs), 1))).
		Float64("oob_error", forest.OOBError()).
		Floats64("importance", forest.Importance()).
		Dur("elapsed", time.Since(start)).
		Msg("done")
}
