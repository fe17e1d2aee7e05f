package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"github.com/robotrader-lab/robotrader/internal/logger"
	"github.com/robotrader-lab/robotrader/internal/market"
	"github.com/robotrader-lab/robotrader/internal/types"
)

// downloadAction fetches daily bars for each ticker from Polygon and stores
// them in the local DuckDB bar archive.
func downloadAction(ctx context.Context, cmd *cli.Command) error {
	tickers := cmd.StringSlice("ticker")
	start := cmd.Timestamp("start")
	end := cmd.Timestamp("end")
	dataPath := cmd.String("data")

	apiKey := os.Getenv("POLYGON_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("POLYGON_API_KEY environment variable is not set")
	}

	appLogger, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer appLogger.Sync()

	provider, err := market.NewPolygonProvider(apiKey, appLogger)
	if err != nil {
		return fmt.Errorf("failed to create market data provider: %w", err)
	}

	store, err := market.OpenBarStore(dataPath, appLogger)
	if err != nil {
		return fmt.Errorf("failed to open bar store: %w", err)
	}
	defer store.Close()

	bar := progressbar.Default(int64(len(tickers)), "downloading")

	for _, ticker := range tickers {
		series, err := provider.GetBars(ctx, ticker, start, end)
		if err != nil {
			return fmt.Errorf("failed to download %s: %w", ticker, err)
		}

		if err := store.WriteSeries(series); err != nil {
			return fmt.Errorf("failed to store %s: %w", ticker, err)
		}

		bar.Add(1)
	}

	log.Printf("Stored daily bars for %d tickers from %s to %s in %s",
		len(tickers), start.Format(types.DateLayout), end.Format(types.DateLayout), dataPath)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "download",
		Usage: "Download daily bars into the local bar store",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:     "ticker",
				Aliases:  []string{"t"},
				Usage:    "Ticker symbol, repeatable",
				Required: true,
			},
			&cli.TimestampFlag{
				Name:    "start",
				Aliases: []string{"s"},
				Usage:   "Start date in `YYYY-MM-DD` format",
				Config: cli.TimestampConfig{
					Layouts: []string{types.DateLayout},
				},
				Required: true,
			},
			&cli.TimestampFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "End date in `YYYY-MM-DD` format. Defaults to today.",
				Value:   time.Now(),
				Config: cli.TimestampConfig{
					Layouts: []string{types.DateLayout},
				},
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Path to the DuckDB bar store",
				Value:   "data/bars.duckdb",
			},
		},
		Action: downloadAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
