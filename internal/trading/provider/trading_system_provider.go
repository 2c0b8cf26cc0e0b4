package tradingprovider

import (
	"context"
	"fmt"
	"time"

	"github.com/rxtech-lab/argo-intraday/internal/types"
	"github.com/rxtech-lab/argo-intraday/pkg/schema"
)

// ForceMode selects the broker endpoint used by Connect.
type ForceMode string

const (
	// ForceModeAuto tries the paper endpoint first and falls back to live.
	ForceModeAuto  ForceMode = "auto"
	ForceModePaper ForceMode = "paper"
	ForceModeLive  ForceMode = "live"
)

// Connection modes reported by Connect.
const (
	ConnectionPaper = "paper"
	ConnectionLive  = "live"
)

// Clock is the broker's view of the trading calendar.
type Clock struct {
	Timestamp time.Time
	IsOpen    bool
	NextOpen  time.Time
	NextClose time.Time
}

// BrokerPosition is an open position as the broker reports it.
type BrokerPosition struct {
	Symbol        string
	Qty           float64
	Side          types.Side
	AvgEntryPrice float64
	UnrealizedPnL float64
}

// Broker is the order execution collaborator used by live runs.
type Broker interface {
	// Connect verifies credentials and returns the connection mode ("paper" or "live")
	Connect(ctx context.Context, mode ForceMode) (string, error)
	// IsMarketOpen reports whether the regular session is open right now
	IsMarketOpen(ctx context.Context) (bool, error)
	// Clock returns the market clock including the next open and close
	Clock(ctx context.Context) (Clock, error)
	// AccountEquity returns the account equity
	AccountEquity(ctx context.Context) (float64, error)
	// TodayPnL returns equity minus the previous session's closing equity
	TodayPnL(ctx context.Context) (float64, error)
	// UnrealizedPnL returns the sum of unrealized pnl over open positions
	UnrealizedPnL(ctx context.Context) (float64, error)
	// Positions returns the broker-side open positions
	Positions(ctx context.Context) ([]BrokerPosition, error)
	// SubmitMarketOrder submits a day market order
	SubmitMarketOrder(ctx context.Context, symbol string, qty float64, side types.OrderSide) error
	// FlattenAll cancels open orders and closes every position
	FlattenAll(ctx context.Context) error
}

type ProviderType string

const (
	ProviderAlpaca    ProviderType = "alpaca"
	ProviderSimulated ProviderType = "simulated"
)

type ProviderInfo struct {
	Name           string `json:"name"`
	DisplayName    string `json:"displayName"`
	Description    string `json:"description"`
	IsPaperTrading bool   `json:"isPaperTrading"`
}

var providerRegistry = map[ProviderType]ProviderInfo{
	ProviderAlpaca: {
		Name:           string(ProviderAlpaca),
		DisplayName:    "Alpaca",
		Description:    "Alpaca brokerage for US equities, paper or live depending on the force mode",
		IsPaperTrading: false,
	},
	ProviderSimulated: {
		Name:           string(ProviderSimulated),
		DisplayName:    "Simulated",
		Description:    "In-process broker that fills every market order immediately",
		IsPaperTrading: true,
	},
}

func GetSupportedProviders() []string {
	providers := make([]string, 0, len(providerRegistry))
	for providerType := range providerRegistry {
		providers = append(providers, string(providerType))
	}

	return providers
}

// GetProviderInfo returns metadata for a specific trading provider.
func GetProviderInfo(providerName string) (ProviderInfo, error) {
	info, exists := providerRegistry[ProviderType(providerName)]
	if !exists {
		return ProviderInfo{}, fmt.Errorf("unsupported trading provider: %s", providerName)
	}

	return info, nil
}

// GetProviderConfigSchema returns the JSON schema for a provider's configuration.
func GetProviderConfigSchema(providerName string) (string, error) {
	switch ProviderType(providerName) {
	case ProviderAlpaca:
		return schema.ToJSONSchema(AlpacaProviderConfig{
			APIKey:    "",
			APISecret: "",
			PaperURL:  "",
			LiveURL:   "",
		})
	case ProviderSimulated:
		return schema.ToJSONSchema(SimulatedBrokerConfig{
			StartingCash: 0,
		})
	default:
		return "", fmt.Errorf("unsupported trading provider: %s", providerName)
	}
}

// NewBroker creates a broker for the provider type.
func NewBroker(providerType ProviderType, config any) (Broker, error) {
	switch providerType {
	case ProviderAlpaca:
		cfg, ok := config.(*AlpacaProviderConfig)
		if !ok {
			return nil, fmt.Errorf("invalid config type for alpaca provider")
		}

		return NewAlpacaBroker(*cfg)

	case ProviderSimulated:
		cfg, ok := config.(*SimulatedBrokerConfig)
		if !ok {
			return nil, fmt.Errorf("invalid config type for simulated provider")
		}

		return NewSimulatedBroker(*cfg), nil

	default:
		return nil, fmt.Errorf("unsupported trading provider: %s", providerType)
	}
}
