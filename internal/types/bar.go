package types

import (
	"time"

	"github.com/rxtech-lab/argo-intraday/pkg/errors"
)

// Bar is one OHLCV sample for a symbol. It is shared by historical replay and
// live streaming. Bid and Ask are zero when no quote accompanied the bar.
type Bar struct {
	Symbol string    `json:"symbol" yaml:"symbol"`
	Time   time.Time `json:"time" yaml:"time"`
	Open   float64   `json:"open" yaml:"open"`
	High   float64   `json:"high" yaml:"high"`
	Low    float64   `json:"low" yaml:"low"`
	Close  float64   `json:"close" yaml:"close"`
	Volume float64   `json:"volume" yaml:"volume"`
	Bid    float64   `json:"bid,omitempty" yaml:"bid,omitempty"`
	Ask    float64   `json:"ask,omitempty" yaml:"ask,omitempty"`
}

// Validate reports why a bar cannot be processed, or nil. Errors carry
// ErrCodeInvalidBar.
func (b Bar) Validate() error {
	if b.Time.IsZero() {
		return errors.Newf(errors.ErrCodeInvalidBar, "bar for %s has no timestamp", b.Symbol)
	}

	if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
		return errors.Newf(errors.ErrCodeInvalidBar, "bar for %s at %s has non-positive prices", b.Symbol, b.Time.Format(time.RFC3339))
	}

	if b.High < b.Low {
		return errors.Newf(errors.ErrCodeInvalidBar, "bar for %s at %s has high %.4f below low %.4f", b.Symbol, b.Time.Format(time.RFC3339), b.High, b.Low)
	}

	return nil
}

// Spread returns ask-bid when both sides of a quote are present.
func (b Bar) Spread() (float64, bool) {
	if b.Bid <= 0 || b.Ask <= 0 {
		return 0, false
	}

	return b.Ask - b.Bid, true
}

// TypicalPrice is (high+low+close)/3.
func (b Bar) TypicalPrice() float64 {
	return (b.High + b.Low + b.Close) / 3
}
