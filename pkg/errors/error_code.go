package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation and configuration errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeMissingParameter     ErrorCode = 102
	ErrCodeInvalidVersion       ErrorCode = 103
	ErrCodeMissingCredentials   ErrorCode = 104
	ErrCodeInvalidTimeframe     ErrorCode = 105
	ErrCodeInvalidWindow        ErrorCode = 106

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeInvalidBar            ErrorCode = 203
	ErrCodeArtifactWriteFailed   ErrorCode = 204

	// Indicator errors (300-399)
	ErrCodeInsufficientData     ErrorCode = 300
	ErrCodeIndicatorCalculation ErrorCode = 301

	// Strategy errors (400-499)
	ErrCodeStrategyConfigError  ErrorCode = 400
	ErrCodeStrategyRuntimeError ErrorCode = 401
	ErrCodeUnsupportedStrategy  ErrorCode = 402

	// Trading and ledger errors (500-599)
	ErrCodeOrderFailed       ErrorCode = 500
	ErrCodePositionNotFound  ErrorCode = 501
	ErrCodePositionExists    ErrorCode = 502
	ErrCodeInvalidStopLoss   ErrorCode = 503
	ErrCodeInvalidTakeProfit ErrorCode = 504
	ErrCodeInvalidQuantity   ErrorCode = 505
	ErrCodeInvalidPrice      ErrorCode = 506
	ErrCodeInsufficientCash  ErrorCode = 507
	ErrCodeBrokerUnavailable ErrorCode = 508
	ErrCodeReconcileFailed   ErrorCode = 509

	// Backtest errors (600-699)
	ErrCodeBacktestInitFailed  ErrorCode = 600
	ErrCodeBacktestConfigError ErrorCode = 601
	ErrCodeBacktestNoSymbols   ErrorCode = 602
	ErrCodeBacktestNoProvider  ErrorCode = 603

	// Market data errors (700-799)
	ErrCodeMarketDataFetchFailed ErrorCode = 700
	ErrCodeMarketDataWriteFailed ErrorCode = 701
	ErrCodeMarketDataParseFailed ErrorCode = 702
	ErrCodeStreamUnsupported     ErrorCode = 703
	ErrCodeInvalidProvider       ErrorCode = 704

	// Engine and control errors (800-899)
	ErrCodeCallbackFailed        ErrorCode = 800
	ErrCodeEngineInitFailed      ErrorCode = 801
	ErrCodeEngineAlreadyRunning  ErrorCode = 802
	ErrCodeEngineNotRunning      ErrorCode = 803
	ErrCodeWorkerCrashed         ErrorCode = 804
	ErrCodeLiveTradingNotConfirm ErrorCode = 805
)
