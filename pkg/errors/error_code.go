package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidPeriod        ErrorCode = 102
	ErrCodeInvalidMultiplier    ErrorCode = 103
	ErrCodeInvalidType          ErrorCode = 104
	ErrCodeMissingParameter     ErrorCode = 105
	ErrCodeMalformedDate        ErrorCode = 106
	ErrCodeInvalidDateRange     ErrorCode = 107

	// Data/Resource errors (200-299)
	ErrCodeDataUnavailable     ErrorCode = 200
	ErrCodeQueryFailed         ErrorCode = 201
	ErrCodeStoreUnavailable    ErrorCode = 202
	ErrCodePriceLookupFailed   ErrorCode = 203
	ErrCodeCalendarUnavailable ErrorCode = 204

	// Indicator errors (300-399)
	ErrCodeInsufficientData     ErrorCode = 300
	ErrCodeIndicatorCalculation ErrorCode = 301

	// Simulation errors (400-499)
	ErrCodeInsufficientFunds ErrorCode = 400
	ErrCodePositionNotFound  ErrorCode = 401

	// Backtest errors (500-599)
	ErrCodeBacktestConfigError ErrorCode = 500
	ErrCodeEmptyCalendar       ErrorCode = 501

	// Market data errors (600-699)
	ErrCodeMarketDataFetchFailed ErrorCode = 600
	ErrCodeMarketDataWriteFailed ErrorCode = 601
	ErrCodeMarketDataParseFailed ErrorCode = 602
)
