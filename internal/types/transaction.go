package types

import (
	"github.com/go-playground/validator/v10"
	"github.com/robotrader-lab/robotrader/pkg/errors"
)

type TransactionSide string

const (
	TransactionSideBuy  TransactionSide = "BUY"
	TransactionSideSell TransactionSide = "SELL"
)

// Position is one discrete buy lot: it is created on a purchase, never
// mutated, and removed in full when its ticker is liquidated.
type Position struct {
	ID     string  `yaml:"id" json:"id" csv:"id" validate:"required,uuid"`
	Ticker string  `yaml:"ticker" json:"ticker" csv:"ticker" validate:"required"`
	Date   string  `yaml:"date" json:"date" csv:"date" validate:"required,datetime=2006-01-02"`
	Shares int64   `yaml:"shares" json:"shares" csv:"shares" validate:"required,gt=0"`
	Price  float64 `yaml:"price" json:"price" csv:"price" validate:"required,gt=0"`
}

// TransactionRecord is one entry in the append-only transaction log.
//
// For buys, Price is the purchase price and the sell-side fields are zero.
// For sells, Price is the sale price, BuyPrice is the lot's entry price and
// ProfitPercent is ((BuyPrice-Price)/Price)*100. Note the sign: that
// formula is positive when price fell and negative when it rose. It is the
// convention of the strategy this engine reproduces and is kept as is; see
// DESIGN.md before "fixing" it.
type TransactionRecord struct {
	ID            string          `yaml:"id" json:"id" csv:"id" validate:"required,uuid"`
	Side          TransactionSide `yaml:"side" json:"side" csv:"side" validate:"required,oneof=BUY SELL"`
	Ticker        string          `yaml:"ticker" json:"ticker" csv:"ticker" validate:"required"`
	Date          string          `yaml:"date" json:"date" csv:"date" validate:"required,datetime=2006-01-02"`
	Shares        int64           `yaml:"shares" json:"shares" csv:"shares" validate:"required,gt=0"`
	Price         float64         `yaml:"price" json:"price" csv:"price" validate:"required,gt=0"`
	BuyPrice      float64         `yaml:"buy_price,omitempty" json:"buy_price,omitempty" csv:"buy_price"`
	ProfitPercent float64         `yaml:"profit_percent,omitempty" json:"profit_percent,omitempty" csv:"profit_percent"`
}

// Validate validates the TransactionRecord struct.
func (r *TransactionRecord) Validate() error {
	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidParameter, "invalid transaction record", err)
	}

	if r.Side == TransactionSideSell && r.BuyPrice <= 0 {
		return errors.New(errors.ErrCodeInvalidParameter, "sell record requires a positive buy price")
	}

	return nil
}
