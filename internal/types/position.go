package types

import (
	"fmt"
	"time"
)

type Side string

const (
	SideLong  Side = "long"
	SideShort Side = "short"
)

// OrderSide is the broker order direction that opens this side.
func (s Side) OrderSide() OrderSide {
	if s == SideShort {
		return OrderSideSell
	}

	return OrderSideBuy
}

// CloseOrderSide is the broker order direction that closes this side.
func (s Side) CloseOrderSide() OrderSide {
	if s == SideShort {
		return OrderSideBuy
	}

	return OrderSideSell
}

// Sign is +1 for long and -1 for short.
func (s Side) Sign() float64 {
	if s == SideShort {
		return -1
	}

	return 1
}

type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// PositionKey identifies a position. At most one position exists per key.
type PositionKey struct {
	Symbol string `json:"symbol" yaml:"symbol"`
	Slot   string `json:"slot" yaml:"slot"`
}

func (k PositionKey) String() string {
	return fmt.Sprintf("%s/%s", k.Symbol, k.Slot)
}

// Position is one open exposure owned by a strategy slot.
type Position struct {
	Key        PositionKey `json:"key" yaml:"key"`
	Side       Side        `json:"side" yaml:"side"`
	EntryTime  time.Time   `json:"entry_time" yaml:"entry_time"`
	EntryPrice float64     `json:"entry_price" yaml:"entry_price"`
	Qty        float64     `json:"qty" yaml:"qty"`
	Stop       float64     `json:"stop" yaml:"stop"`
	Target     float64     `json:"target" yaml:"target"`
	// Policy is the name of the policy instance that owns the position.
	Policy string `json:"policy" yaml:"policy"`
	// Priority of the owning slot.
	Priority int `json:"priority" yaml:"priority"`

	// Display fields refreshed on every bar.
	CurrentPrice  float64 `json:"current_price" yaml:"current_price"`
	UnrealizedPnL float64 `json:"unrealized_pnl" yaml:"unrealized_pnl"`

	// EntryMeta is the metadata of the signal that opened the position.
	EntryMeta map[string]any `json:"entry_meta,omitempty" yaml:"entry_meta,omitempty"`
}

// MarketValue is the signed value of the position at its current price.
func (p Position) MarketValue() float64 {
	return p.Side.Sign() * p.Qty * p.CurrentPrice
}

// PnLAt is the pnl if the position were closed at price.
func (p Position) PnLAt(price float64) float64 {
	if p.Side == SideShort {
		return (p.EntryPrice - price) * p.Qty
	}

	return (price - p.EntryPrice) * p.Qty
}
