package backtest

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"

	"github.com/robotrader-lab/robotrader/internal/indicator"
	"github.com/robotrader-lab/robotrader/internal/types"
	"github.com/robotrader-lab/robotrader/pkg/errors"
)

// Mode selects where execution prices come from during a run.
type Mode string

const (
	// ModeHistorical resolves execution prices from stored daily opens.
	ModeHistorical Mode = "historical"
	// ModeLive resolves execution prices from the provider's last trade.
	ModeLive Mode = "live"
)

// Config describes one backtest run.
type Config struct {
	// InitialBalance is the starting cash in dollars.
	InitialBalance float64 `yaml:"initial_balance" json:"initial_balance" validate:"required,gt=0"`
	// Tickers is the universe the strategy trades.
	Tickers []string `yaml:"tickers" json:"tickers" validate:"required,min=1,dive,required"`
	// StartDate and EndDate bound the run, inclusive, as YYYY-MM-DD.
	StartDate string `yaml:"start_date" json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `yaml:"end_date" json:"end_date" validate:"required,datetime=2006-01-02"`
	// Mode selects historical or live execution pricing.
	Mode Mode `yaml:"mode" json:"mode" validate:"required,oneof=historical live"`
	// LookbackYears is how far back each day's signal window reaches.
	LookbackYears int `yaml:"lookback_years" json:"lookback_years" validate:"required,gt=0"`
	// RiskRatio forces an exit when a held ticker's price falls below
	// this fraction of its entry price. Zero disables the gate.
	RiskRatio float64 `yaml:"risk_ratio,omitempty" json:"risk_ratio,omitempty" validate:"omitempty,gt=0,lt=1"`
	// TrendParams are the ensemble's (period, multiplier) tuples.
	TrendParams []types.TrendParams `yaml:"trend_params" json:"trend_params" validate:"required,min=1,dive"`
	// MACD holds the crossover engine's windows.
	MACD types.MACDParams `yaml:"macd" json:"macd" validate:"required"`
}

// DefaultConfig returns the configuration the strategy ships with.
func DefaultConfig() Config {
	return Config{
		InitialBalance: 100000,
		Tickers:        []string{"AAPL", "^GSPC", "MSFT", "AMZN"},
		Mode:           ModeHistorical,
		LookbackYears:  2,
		RiskRatio:      0.95,
		TrendParams:    indicator.DefaultTrendParams(),
		MACD:           indicator.DefaultMACDParams(),
	}
}

// Validate checks tag constraints and the date ordering.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestConfigError, "invalid backtest configuration", err)
	}

	start, err := types.ParseDay(c.StartDate)
	if err != nil {
		return err
	}

	end, err := types.ParseDay(c.EndDate)
	if err != nil {
		return err
	}

	if end.Before(start) {
		return errors.Newf(errors.ErrCodeInvalidDateRange,
			"end date %s precedes start date %s", c.EndDate, c.StartDate)
	}

	return nil
}

// LoadConfig reads and validates a YAML configuration file. Fields the file
// omits keep their defaults.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err,
			"failed to read config file %s", path)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err,
			"failed to parse config file %s", path)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

// GenerateSchema returns the JSON schema of the configuration.
func GenerateSchema() *jsonschema.Schema {
	return jsonschema.Reflect(&Config{})
}

// GenerateSchemaJSON returns the JSON schema as an indented string.
func GenerateSchemaJSON() (string, error) {
	schema := GenerateSchema()

	data, err := schema.MarshalJSON()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeUnknown, "failed to marshal config schema", err)
	}

	return string(data), nil
}
