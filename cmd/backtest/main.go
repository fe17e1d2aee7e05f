package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"github.com/robotrader-lab/robotrader/internal/analysis"
	"github.com/robotrader-lab/robotrader/internal/backtest"
	"github.com/robotrader-lab/robotrader/internal/logger"
	"github.com/robotrader-lab/robotrader/internal/market"
	"github.com/robotrader-lab/robotrader/internal/types"
)

// backtestAction loads the run configuration, opens the local bar store,
// and executes the backtest with a progress bar over the trading days.
func backtestAction(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	dataPath := cmd.String("data")

	appLogger, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer appLogger.Sync()

	config, err := resolveConfig(configPath, cmd.String("start"), cmd.String("end"))
	if err != nil {
		return err
	}

	store, err := market.OpenBarStore(dataPath, appLogger)
	if err != nil {
		return fmt.Errorf("failed to open bar store: %w", err)
	}
	defer store.Close()

	var bar *progressbar.ProgressBar

	driver, err := backtest.NewDriver(config, store, store, appLogger,
		backtest.WithOnDay(func(day string, index, total int) {
			if bar == nil {
				bar = progressbar.Default(int64(total), "simulating")
			}

			bar.Add(1)
		}))
	if err != nil {
		return fmt.Errorf("failed to create backtest driver: %w", err)
	}

	result, err := driver.Run(ctx)
	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}

	fmt.Println(result.Summary)
	fmt.Printf("Transactions: %d\n", len(result.Transactions))

	printTickerStats(ctx, config, store)

	return nil
}

// resolveConfig builds the run configuration from a config file or, when
// no file is given, from the start/end flags over the defaults.
func resolveConfig(configPath, start, end string) (backtest.Config, error) {
	if configPath != "" {
		config, err := backtest.LoadConfig(configPath)
		if err != nil {
			return backtest.Config{}, fmt.Errorf("failed to load config: %w", err)
		}

		return config, nil
	}

	if start == "" || end == "" {
		return backtest.Config{}, fmt.Errorf("--start and --end are required when --config is not set")
	}

	config := backtest.DefaultConfig()
	config.StartDate = start
	config.EndDate = end

	return config, nil
}

// printTickerStats prints per-ticker volatility and period-high figures
// over the run window. Tickers without stored bars are skipped.
func printTickerStats(ctx context.Context, config backtest.Config, store *market.BarStore) {
	start, err := types.ParseDay(config.StartDate)
	if err != nil {
		return
	}

	end, err := types.ParseDay(config.EndDate)
	if err != nil {
		return
	}

	for _, ticker := range config.Tickers {
		series, err := store.GetBars(ctx, ticker, start, end)
		if err != nil {
			continue
		}

		vol, err := analysis.AnnualizedVolatility(series)
		if err != nil {
			continue
		}

		high, err := analysis.PeriodHigh(series)
		if err != nil {
			continue
		}

		fmt.Printf("%-8s annualized volatility %6.2f%%  period high $%.2f\n", ticker, vol, high)
	}
}

// schemaAction prints the JSON schema of the configuration file.
func schemaAction(_ context.Context, _ *cli.Command) error {
	schema, err := backtest.GenerateSchemaJSON()
	if err != nil {
		return err
	}

	fmt.Println(schema)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "backtest",
		Usage: "Run the trading strategy against stored daily bars",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML run configuration",
			},
			&cli.StringFlag{
				Name:    "start",
				Aliases: []string{"s"},
				Usage:   "Start date in `YYYY-MM-DD` format (ignored when --config is set)",
			},
			&cli.StringFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "End date in `YYYY-MM-DD` format (ignored when --config is set)",
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Path to the DuckDB bar store",
				Value:   "data/bars.duckdb",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "schema",
				Usage:  "Print the JSON schema of the run configuration",
				Action: schemaAction,
			},
		},
		Action: backtestAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
