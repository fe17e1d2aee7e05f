package backtest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/robotrader-lab/robotrader/internal/analysis"
	"github.com/robotrader-lab/robotrader/internal/indicator"
	"github.com/robotrader-lab/robotrader/internal/logger"
	"github.com/robotrader-lab/robotrader/internal/market"
	"github.com/robotrader-lab/robotrader/internal/simulator"
	"github.com/robotrader-lab/robotrader/internal/types"
	"github.com/robotrader-lab/robotrader/pkg/errors"
)

// OnDayCallback is invoked once per simulated trading day, before that day's
// trades execute. index counts from 1; total is the number of simulated days.
type OnDayCallback func(day string, index, total int)

// Result is the outcome of a completed (or aborted) run.
type Result struct {
	InitialBalance float64
	FinalBalance   float64
	ProfitPercent  float64
	Transactions   []types.TransactionRecord
	Summary        string
}

// Driver walks the trading calendar day by day, evaluates the previous
// day's signals for every ticker, and trades through the portfolio
// simulator. Exits always execute before entries so freed cash is available
// for the same day's buys.
type Driver struct {
	config   Config
	provider market.PriceSeriesProvider
	calendar market.TradingCalendar
	agg      *analysis.Aggregator
	lookup   simulator.PriceLookup
	log      *logger.Logger
	onDay    OnDayCallback
}

// Option configures a Driver.
type Option func(*Driver)

// WithOnDay registers a per-day progress callback.
func WithOnDay(callback OnDayCallback) Option {
	return func(d *Driver) {
		d.onDay = callback
	}
}

// NewDriver builds a driver for the given configuration. The provider
// serves bars and execution prices; the calendar enumerates trading days.
func NewDriver(config Config, provider market.PriceSeriesProvider, calendar market.TradingCalendar, log *logger.Logger, opts ...Option) (*Driver, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if provider == nil || calendar == nil {
		return nil, errors.New(errors.ErrCodeMissingParameter,
			"both a price series provider and a trading calendar are required")
	}

	ensemble, err := indicator.NewEnsemble(config.TrendParams)
	if err != nil {
		return nil, err
	}

	macd, err := indicator.NewMACD(config.MACD)
	if err != nil {
		return nil, err
	}

	agg, err := analysis.NewAggregator(provider, ensemble, macd, log)
	if err != nil {
		return nil, err
	}

	driver := &Driver{
		config:   config,
		provider: provider,
		calendar: calendar,
		agg:      agg,
		log:      log,
	}
	driver.lookup = driver.priceLookup()

	for _, opt := range opts {
		opt(driver)
	}

	return driver, nil
}

// priceLookup returns the execution-price strategy for the configured mode.
// It is resolved once at construction; both the simulator and the risk gate
// share the resolved strategy.
func (d *Driver) priceLookup() simulator.PriceLookup {
	if d.config.Mode == ModeLive {
		return func(ctx context.Context, ticker string, _ string) (float64, error) {
			return d.provider.GetCurrentPrice(ctx, ticker)
		}
	}

	return d.provider.GetOpeningPrice
}

// Run executes the backtest. Trading starts on the second session of the
// calendar because each day acts on the previous session's signals, and all
// remaining positions are liquidated on the final session. A malformed
// calendar date aborts the run; the returned Result then carries the state
// accumulated so far next to the error.
func (d *Driver) Run(ctx context.Context) (Result, error) {
	sessions, err := d.calendar.SessionDates(ctx, d.config.StartDate, d.config.EndDate)
	if err != nil {
		return Result{}, err
	}

	if len(sessions) < 2 {
		return Result{}, errors.Newf(errors.ErrCodeEmptyCalendar,
			"need at least two trading sessions between %s and %s, got %d",
			d.config.StartDate, d.config.EndDate, len(sessions))
	}

	sim, err := simulator.NewSimulator(d.lookup, d.log)
	if err != nil {
		return Result{}, err
	}

	balance := d.config.InitialBalance
	total := len(sessions) - 1

	for i := 1; i < len(sessions); i++ {
		day := sessions[i]
		prevDay := sessions[i-1]

		if d.onDay != nil {
			d.onDay(day, i, total)
		}

		dayTime, err := types.ParseDay(day)
		if err != nil {
			return d.result(balance, sim), err
		}

		buys, sells := d.decide(ctx, dayTime, day, prevDay, sim)

		for _, ticker := range sells {
			proceeds, err := sim.ExitPositions(ctx, ticker, day)
			if err != nil {
				d.log.Debug("exit failed, position kept",
					zap.String("ticker", ticker),
					zap.String("day", day),
					zap.Error(err),
				)

				continue
			}

			balance += proceeds
		}

		balance, err = sim.EnterPositions(ctx, balance, buys, day)
		if err != nil {
			return d.result(balance, sim), err
		}

		if i == len(sessions)-1 {
			proceeds, err := sim.ExitAllPositions(ctx, day)
			balance += proceeds

			if err != nil {
				return d.result(balance, sim), err
			}
		}
	}

	result := d.result(balance, sim)
	d.log.Info("backtest complete",
		zap.Float64("initial_balance", result.InitialBalance),
		zap.Float64("final_balance", result.FinalBalance),
		zap.Float64("profit_percent", result.ProfitPercent),
		zap.Int("transactions", len(result.Transactions)),
	)

	return result, nil
}

// decide evaluates every ticker's previous-day signals plus the risk gate
// and returns the tickers to buy and the tickers to sell today. A ticker
// flagged both ways buys, never sells: buys take precedence. Buy-flagged
// tickers are listed whether or not they are already held, so freed cash
// can redeploy into a holding as an additional lot.
func (d *Driver) decide(ctx context.Context, dayTime time.Time, day, prevDay string, sim *simulator.Simulator) (buys, sells []string) {
	windowStart := dayTime.AddDate(-d.config.LookbackYears, 0, 0)

	for _, ticker := range d.config.Tickers {
		trendAnalysis, err := d.agg.EvaluateTrends(ctx, ticker, windowStart, dayTime)
		if err != nil {
			d.log.Debug("skipping ticker, signals unavailable",
				zap.String("ticker", ticker),
				zap.String("day", day),
				zap.Error(err),
			)

			continue
		}

		if trendAnalysis.ShouldBuy(prevDay) {
			buys = append(buys, ticker)

			continue
		}

		if trendAnalysis.ShouldSell(prevDay) && sim.HasPosition(ticker) {
			sells = append(sells, ticker)
		}
	}

	if d.config.RiskRatio > 0 {
		buys, sells = d.applyRiskGate(ctx, day, sim, buys, sells)
	}

	return buys, sells
}

// applyRiskGate moves held tickers whose price fell below RiskRatio of
// their entry price to the sell list. The gate outranks a buy signal: a
// triggered ticker is dropped from the buy list so it is not re-entered on
// the same day it stops out.
func (d *Driver) applyRiskGate(ctx context.Context, day string, sim *simulator.Simulator, buys, sells []string) ([]string, []string) {
	selling := make(map[string]bool, len(sells))
	for _, ticker := range sells {
		selling[ticker] = true
	}

	for _, ticker := range sim.Holdings() {
		if selling[ticker] {
			continue
		}

		lots := sim.Positions(ticker)
		if len(lots) == 0 {
			continue
		}

		price, err := d.lookup(ctx, ticker, day)
		if err != nil {
			continue
		}

		if price < lots[0].Price*d.config.RiskRatio {
			d.log.Debug("risk gate triggered",
				zap.String("ticker", ticker),
				zap.String("day", day),
				zap.Float64("entry_price", lots[0].Price),
				zap.Float64("price", price),
			)

			sells = append(sells, ticker)
			buys = remove(buys, ticker)
		}
	}

	return buys, sells
}

func remove(tickers []string, ticker string) []string {
	out := tickers[:0]

	for _, t := range tickers {
		if t != ticker {
			out = append(out, t)
		}
	}

	return out
}

func (d *Driver) result(balance float64, sim *simulator.Simulator) Result {
	profit := (balance - d.config.InitialBalance) / d.config.InitialBalance * 100

	return Result{
		InitialBalance: d.config.InitialBalance,
		FinalBalance:   balance,
		ProfitPercent:  profit,
		Transactions:   sim.Transactions(),
		Summary: fmt.Sprintf("Invested $%.2f from %s to %s and finished with $%.2f, a return of %.2f%%",
			d.config.InitialBalance, d.config.StartDate, d.config.EndDate, balance, profit),
	}
}
