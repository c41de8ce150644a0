package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	ef "github.com/zeidlermicha/entropyForest"
	"github.com/zeidlermicha/entropyForest/source"
)

func main() {
	uri := flag.String("uri", "mongodb://localhost:27017", "MongoDB connection string")
	db := flag.String("db", "forest", "database")
	game := flag.String("game", "default", "reads from collection steps_<game>")
	samples := flag.Int("samples", 5000, "records drawn with $sample")
	trees := flag.Int("trees", 200, "number of trees")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	ctx := context.Background()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(*uri))
	if err != nil {
		log.Fatal().Err(err).Msg("connect")
	}
	defer client.Disconnect(ctx)

	coll := client.Database(*db).Collection("steps_" + *game)
	ds, labels, err := source.SampleMongo[int](ctx, coll, *samples)
	if err != nil {
		log.Fatal().Err(err).Str("collection", coll.Name()).Msg("load samples")
	}

	forest, err := ef.New[int](
		ef.WithTreeCount(*trees),
		ef.WithWorkers(4),
		ef.WithOOBMode(ef.EnsembleOOB),
		ef.WithLogger(log.Logger),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("configure forest")
	}
	if err := forest.Train(ctx, ds, labels); err != nil {
		log.Fatal().Err(err).Msg("train")
	}
	log.Info().
		Float64("oob_error", forest.OOBError()).
		Floats64("importance", forest.Importance()).
		Msg("done")
}
