package main

import (
	"context"
	"encoding/csv"
	"os"
	"time"

	"github.com/milkywaybrain/marketstream/internal/config"
	"github.com/milkywaybrain/marketstream/internal/snapshot"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// This function will query the backend for the symbols it publishes and store them in a csv file
// along with their latest price. Users can look up to this csv file to give symbols in the app configuration.
// CSV file created at ./examples/symbols.csv.
func main() {
	baseURL := config.DefaultRESTBaseURL
	if len(os.Args) > 1 {
		baseURL = os.Args[1]
	}
	src := snapshot.NewREST(&config.REST{BaseURL: baseURL, ReqTimeoutSec: config.DefaultReqTimeoutSec})

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	health, err := src.Health(ctx)
	if err != nil {
		log.Error().Err(err).Str("url", baseURL).Msg("backend health check")
		return
	}
	log.Info().Str("health", health).Msg("backend is up")

	symbols, err := src.Symbols(ctx)
	if err != nil {
		log.Error().Err(err).Msg("backend request for symbols")
		return
	}

	f, err := os.Create("./examples/symbols.csv")
	if err != nil {
		log.Error().Err(err).Msg("csv file create")
		return
	}
	w := csv.NewWriter(f)
	defer f.Close()
	defer w.Flush()

	if err = w.Write([]string{"symbol", "price", "timestamp"}); err != nil {
		log.Error().Err(err).Msg("writing symbols to csv")
		return
	}
	for _, symbol := range symbols {
		price, ts := "", ""
		record, err := src.One(ctx, symbol)
		switch {
		case err == nil:
			price = record.Price.StringFixed(2)
			if !record.Timestamp.IsZero() {
				ts = record.Timestamp.Format(time.RFC3339)
			}
		case errors.Is(err, snapshot.ErrNotFound):
		default:
			log.Error().Err(err).Str("symbol", symbol).Msg("backend request for snapshot")
			return
		}
		if err = w.Write([]string{symbol, price, ts}); err != nil {
			log.Error().Err(err).Str("symbol", symbol).Msg("writing symbols to csv")
			return
		}
	}
	log.Info().Int("symbols", len(symbols)).Msg("symbols written to ./examples/symbols.csv")
}
