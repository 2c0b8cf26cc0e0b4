package mocks

//go:generate mockgen -destination=./mock_trading.go -package=mocks github.com/rxtech-lab/argo-intraday/internal/trading OrderExecutor
//go:generate mockgen -destination=./mock_broker.go -package=mocks github.com/rxtech-lab/argo-intraday/internal/trading/provider Broker
//go:generate mockgen -destination=./mock_provider.go -package=mocks github.com/rxtech-lab/argo-intraday/pkg/marketdata/provider Provider,Downloader
//go:generate mockgen -destination=./mock_strategy.go -package=mocks github.com/rxtech-lab/argo-intraday/internal/strategy Policy
