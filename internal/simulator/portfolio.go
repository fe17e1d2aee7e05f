package simulator

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/robotrader-lab/robotrader/internal/logger"
	"github.com/robotrader-lab/robotrader/internal/types"
	"github.com/robotrader-lab/robotrader/pkg/errors"
)

// PriceLookup resolves the execution price for a ticker on a given day.
// The backtest driver supplies a historical open-price lookup; a live run
// supplies a last-trade lookup.
type PriceLookup func(ctx context.Context, ticker string, day string) (float64, error)

// Simulator tracks cash-free position state and an append-only transaction
// log. Cash itself is owned by the caller and threaded through the enter and
// exit operations, which keeps a single simulator usable across backtest
// days without hidden balance state.
type Simulator struct {
	positions    map[string][]types.Position
	transactions []types.TransactionRecord
	lookup       PriceLookup
	log          *logger.Logger
}

// NewSimulator creates an empty simulator using lookup for execution prices.
func NewSimulator(lookup PriceLookup, log *logger.Logger) (*Simulator, error) {
	if lookup == nil {
		return nil, errors.New(errors.ErrCodeMissingParameter, "price lookup is required")
	}

	return &Simulator{
		positions: make(map[string][]types.Position),
		lookup:    lookup,
		log:       log,
	}, nil
}

// HasPosition reports whether any lots are held for ticker.
func (s *Simulator) HasPosition(ticker string) bool {
	return len(s.positions[ticker]) > 0
}

// Holdings returns the tickers with at least one open lot.
func (s *Simulator) Holdings() []string {
	tickers := make([]string, 0, len(s.positions))

	for ticker, lots := range s.positions {
		if len(lots) > 0 {
			tickers = append(tickers, ticker)
		}
	}

	return tickers
}

// Positions returns the open lots for ticker.
func (s *Simulator) Positions(ticker string) []types.Position {
	return s.positions[ticker]
}

// Transactions returns the full transaction log in execution order.
func (s *Simulator) Transactions() []types.TransactionRecord {
	return s.transactions
}

// EnterPositions splits balance evenly across tickers in whole dollars and
// buys the largest whole number of shares each slice affords at that day's
// execution price. Tickers whose price cannot be resolved, and tickers whose
// slice cannot afford a single share, are skipped. The returned balance is
// what remains after all fills.
func (s *Simulator) EnterPositions(ctx context.Context, balance float64, tickers []string, day string) (float64, error) {
	if len(tickers) == 0 {
		return balance, nil
	}

	if balance < 0 {
		return balance, errors.Newf(errors.ErrCodeInsufficientFunds,
			"cannot enter positions with negative balance %.2f", balance)
	}

	// Each ticker gets an equal whole-dollar slice. The decimal floor
	// matches allocating int(balance / n) dollars per ticker.
	allocated := decimal.NewFromFloat(balance).
		DivRound(decimal.NewFromInt(int64(len(tickers))), 16).
		Floor()

	remaining := decimal.NewFromFloat(balance)

	for _, ticker := range tickers {
		price, err := s.lookup(ctx, ticker, day)
		if err != nil {
			s.log.Debug("skipping ticker, price unavailable",
				zap.String("ticker", ticker),
				zap.String("day", day),
				zap.Error(err),
			)

			continue
		}

		if price <= 0 {
			s.log.Debug("skipping ticker, non-positive price",
				zap.String("ticker", ticker),
				zap.String("day", day),
				zap.Float64("price", price),
			)

			continue
		}

		priceDec := decimal.NewFromFloat(price)
		shares := allocated.DivRound(priceDec, 16).Floor()

		if shares.IsZero() {
			s.log.Debug("skipping ticker, slice cannot afford one share",
				zap.String("ticker", ticker),
				zap.String("day", day),
				zap.Float64("price", price),
			)

			continue
		}

		cost := shares.Mul(priceDec)
		remaining = remaining.Sub(cost)

		position := types.Position{
			ID:     uuid.New().String(),
			Ticker: ticker,
			Date:   day,
			Shares: shares.IntPart(),
			Price:  price,
		}
		s.positions[ticker] = append(s.positions[ticker], position)

		s.transactions = append(s.transactions, types.TransactionRecord{
			ID:     position.ID,
			Side:   types.TransactionSideBuy,
			Ticker: ticker,
			Date:   day,
			Shares: position.Shares,
			Price:  price,
		})

		s.log.Debug("entered position",
			zap.String("ticker", ticker),
			zap.String("day", day),
			zap.Int64("shares", position.Shares),
			zap.Float64("price", price),
		)
	}

	out, _ := remaining.Float64()

	return out, nil
}

// ExitPositions liquidates every open lot of ticker at that day's execution
// price, records one sell per lot, and returns the total proceeds. Exiting a
// ticker with no open lots returns zero without touching the log.
func (s *Simulator) ExitPositions(ctx context.Context, ticker string, day string) (float64, error) {
	lots := s.positions[ticker]
	if len(lots) == 0 {
		return 0, nil
	}

	price, err := s.lookup(ctx, ticker, day)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrCodePriceLookupFailed, err,
			"cannot resolve exit price for %s on %s", ticker, day)
	}

	proceeds := decimal.Zero
	priceDec := decimal.NewFromFloat(price)

	for _, lot := range lots {
		proceeds = proceeds.Add(priceDec.Mul(decimal.NewFromInt(lot.Shares)))

		s.transactions = append(s.transactions, types.TransactionRecord{
			ID:            uuid.New().String(),
			Side:          types.TransactionSideSell,
			Ticker:        ticker,
			Date:          day,
			Shares:        lot.Shares,
			Price:         price,
			BuyPrice:      lot.Price,
			ProfitPercent: profitPercent(lot.Price, price),
		})

		s.log.Debug("exited position",
			zap.String("ticker", ticker),
			zap.String("day", day),
			zap.Int64("shares", lot.Shares),
			zap.Float64("buy_price", lot.Price),
			zap.Float64("sell_price", price),
		)
	}

	delete(s.positions, ticker)

	out, _ := proceeds.Float64()

	return out, nil
}

// ExitAllPositions liquidates every held ticker and returns the combined
// proceeds. Tickers whose exit fails are skipped and the first failure is
// returned alongside the proceeds that did liquidate.
func (s *Simulator) ExitAllPositions(ctx context.Context, day string) (float64, error) {
	total := 0.0

	var firstErr error

	for _, ticker := range s.Holdings() {
		proceeds, err := s.ExitPositions(ctx, ticker, day)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}

			continue
		}

		total += proceeds
	}

	return total, firstErr
}

// profitPercent keeps the sign convention of the transaction log: a sell
// above the buy price yields a negative value. See the
// types.TransactionRecord documentation.
func profitPercent(buyPrice, sellPrice float64) float64 {
	if sellPrice == 0 {
		return 0
	}

	return (buyPrice - sellPrice) / sellPrice * 100
}
