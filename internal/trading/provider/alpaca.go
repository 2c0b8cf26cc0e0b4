package tradingprovider

import (
	"context"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/rxtech-lab/argo-intraday/internal/types"
	"github.com/rxtech-lab/argo-intraday/internal/utils"
	"github.com/rxtech-lab/argo-intraday/pkg/errors"
	"github.com/shopspring/decimal"
)

// AlpacaDecimalPrecision is the share precision used for order quantities.
// Intraday entries are whole shares, so fractional remainders are dropped.
const AlpacaDecimalPrecision = 0

// AlpacaClient abstracts the Alpaca trading client for testing.
// *alpaca.Client satisfies it.
type AlpacaClient interface {
	GetAccount() (*alpaca.Account, error)
	GetClock() (*alpaca.Clock, error)
	GetPositions() ([]alpaca.Position, error)
	PlaceOrder(req alpaca.PlaceOrderRequest) (*alpaca.Order, error)
	CloseAllPositions(req alpaca.CloseAllPositionsRequest) ([]alpaca.Order, error)
}

// AlpacaClientFactory builds a client bound to one endpoint.
type AlpacaClientFactory func(baseURL string) AlpacaClient

// AlpacaBroker implements Broker on top of the Alpaca trading API.
// It is stateless apart from the selected endpoint; everything is fetched from Alpaca.
type AlpacaBroker struct {
	config           AlpacaProviderConfig
	newClient        AlpacaClientFactory
	client           AlpacaClient
	mode             string
	decimalPrecision int
}

// NewAlpacaBroker creates a broker for the configured credentials. Connect must be
// called before any other method.
func NewAlpacaBroker(config AlpacaProviderConfig) (*AlpacaBroker, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	factory := func(baseURL string) AlpacaClient {
		return alpaca.NewClient(alpaca.ClientOpts{
			APIKey:    config.APIKey,
			APISecret: config.APISecret,
			BaseURL:   baseURL,
		})
	}

	return newAlpacaBrokerWithFactory(config, factory), nil
}

// newAlpacaBrokerWithFactory is used for testing with mock clients.
func newAlpacaBrokerWithFactory(config AlpacaProviderConfig, factory AlpacaClientFactory) *AlpacaBroker {
	return &AlpacaBroker{
		config:           config,
		newClient:        factory,
		client:           nil,
		mode:             "",
		decimalPrecision: AlpacaDecimalPrecision,
	}
}

type endpoint struct {
	mode string
	url  string
}

// Connect picks an endpoint and checks the credentials against it. In auto mode the
// paper endpoint is tried first and live is used only if paper rejects the keys.
func (b *AlpacaBroker) Connect(ctx context.Context, mode ForceMode) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var attempts []endpoint

	switch mode {
	case ForceModePaper:
		attempts = []endpoint{{ConnectionPaper, b.config.paperURL()}}
	case ForceModeLive:
		attempts = []endpoint{{ConnectionLive, b.config.liveURL()}}
	case ForceModeAuto, "":
		attempts = []endpoint{{ConnectionPaper, b.config.paperURL()}, {ConnectionLive, b.config.liveURL()}}
	default:
		return "", errors.Newf(errors.ErrCodeInvalidConfiguration, "unsupported force mode %q", mode)
	}

	var lastErr error

	for _, attempt := range attempts {
		client := b.newClient(attempt.url)

		if _, err := client.GetAccount(); err != nil {
			lastErr = err

			continue
		}

		b.client = client
		b.mode = attempt.mode

		return attempt.mode, nil
	}

	return "", errors.Wrap(errors.ErrCodeBrokerUnavailable, "failed to connect to alpaca", lastErr)
}

func (b *AlpacaBroker) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if b.client == nil {
		return errors.New(errors.ErrCodeBrokerUnavailable, "alpaca broker is not connected")
	}

	return nil
}

// IsMarketOpen implements Broker.
func (b *AlpacaBroker) IsMarketOpen(ctx context.Context) (bool, error) {
	clock, err := b.Clock(ctx)
	if err != nil {
		return false, err
	}

	return clock.IsOpen, nil
}

// Clock implements Broker.
func (b *AlpacaBroker) Clock(ctx context.Context) (Clock, error) {
	if err := b.ready(ctx); err != nil {
		return Clock{}, err
	}

	c, err := b.client.GetClock()
	if err != nil {
		return Clock{}, errors.Wrap(errors.ErrCodeBrokerUnavailable, "failed to get market clock", err)
	}

	return Clock{
		Timestamp: c.Timestamp,
		IsOpen:    c.IsOpen,
		NextOpen:  c.NextOpen,
		NextClose: c.NextClose,
	}, nil
}

func (b *AlpacaBroker) account(ctx context.Context) (*alpaca.Account, error) {
	if err := b.ready(ctx); err != nil {
		return nil, err
	}

	account, err := b.client.GetAccount()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeBrokerUnavailable, "failed to get account", err)
	}

	return account, nil
}

// AccountEquity implements Broker.
func (b *AlpacaBroker) AccountEquity(ctx context.Context) (float64, error) {
	account, err := b.account(ctx)
	if err != nil {
		return 0, err
	}

	return account.Equity.InexactFloat64(), nil
}

// TodayPnL implements Broker.
func (b *AlpacaBroker) TodayPnL(ctx context.Context) (float64, error) {
	account, err := b.account(ctx)
	if err != nil {
		return 0, err
	}

	return account.Equity.Sub(account.LastEquity).InexactFloat64(), nil
}

// UnrealizedPnL implements Broker.
func (b *AlpacaBroker) UnrealizedPnL(ctx context.Context) (float64, error) {
	positions, err := b.Positions(ctx)
	if err != nil {
		return 0, err
	}

	total := 0.0
	for _, position := range positions {
		total += position.UnrealizedPnL
	}

	return total, nil
}

// Positions implements Broker.
func (b *AlpacaBroker) Positions(ctx context.Context) ([]BrokerPosition, error) {
	if err := b.ready(ctx); err != nil {
		return nil, err
	}

	alpacaPositions, err := b.client.GetPositions()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeBrokerUnavailable, "failed to list positions", err)
	}

	result := make([]BrokerPosition, 0, len(alpacaPositions))

	for _, p := range alpacaPositions {
		unrealized := decimal.Zero
		if p.UnrealizedPL != nil {
			unrealized = *p.UnrealizedPL
		}

		side := types.SideLong
		if p.Side == "short" || p.Qty.IsNegative() {
			side = types.SideShort
		}

		result = append(result, BrokerPosition{
			Symbol:        p.Symbol,
			Qty:           p.Qty.Abs().InexactFloat64(),
			Side:          side,
			AvgEntryPrice: p.AvgEntryPrice.InexactFloat64(),
			UnrealizedPnL: unrealized.InexactFloat64(),
		})
	}

	return result, nil
}

// SubmitMarketOrder implements Broker.
func (b *AlpacaBroker) SubmitMarketOrder(ctx context.Context, symbol string, qty float64, side types.OrderSide) error {
	if err := b.ready(ctx); err != nil {
		return err
	}

	var alpacaSide alpaca.Side

	switch side {
	case types.OrderSideBuy:
		alpacaSide = alpaca.Buy
	case types.OrderSideSell:
		alpacaSide = alpaca.Sell
	default:
		return errors.Newf(errors.ErrCodeInvalidParameter, "unsupported order side: %s", side)
	}

	qty = utils.RoundToDecimalPrecision(qty, b.decimalPrecision)
	if qty <= 0 {
		return errors.New(errors.ErrCodeInvalidQuantity, "order quantity is zero after rounding to whole shares")
	}

	quantity := decimal.NewFromFloat(qty)

	_, err := b.client.PlaceOrder(alpaca.PlaceOrderRequest{
		Symbol:      symbol,
		Qty:         &quantity,
		Side:        alpacaSide,
		Type:        alpaca.Market,
		TimeInForce: alpaca.Day,
	})
	if err != nil {
		return errors.Wrapf(errors.ErrCodeOrderFailed, err, "failed to submit %s %v %s", side, qty, symbol)
	}

	return nil
}

// FlattenAll implements Broker.
func (b *AlpacaBroker) FlattenAll(ctx context.Context) error {
	if err := b.ready(ctx); err != nil {
		return err
	}

	if _, err := b.client.CloseAllPositions(alpaca.CloseAllPositionsRequest{CancelOrders: true}); err != nil {
		return errors.Wrap(errors.ErrCodeOrderFailed, "failed to close all positions", err)
	}

	return nil
}

// Mode returns the connection mode selected by Connect.
func (b *AlpacaBroker) Mode() string {
	return b.mode
}
