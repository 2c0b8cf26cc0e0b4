package types

import (
	"fmt"

	"github.com/moznion/go-optional"
	"gopkg.in/yaml.v3"
)

// StrategySlot configures one enabled policy instance. Lower priority values act first.
type StrategySlot struct {
	Enabled  bool   `yaml:"enabled" json:"enabled" jsonschema:"title=Enabled,description=Whether the slot participates in the run"`
	Name     string `yaml:"name" json:"name" validate:"required" jsonschema:"title=Policy,description=Registered policy name"`
	Priority int    `yaml:"priority" json:"priority" validate:"min=1" jsonschema:"title=Priority,description=Lower values act first,minimum=1"`
	// Start and End are HH:MM in the session timezone. A window with Start after End wraps past midnight.
	// Policies that read the premarket (gap_and_go, router) only see bars inside
	// the window, so their slots need Start at 04:00 to ever enter.
	Start     string `yaml:"start" json:"start" jsonschema:"title=Window Start,description=HH:MM session time. Use 04:00 for gap_and_go and router so they see the premarket,default=09:30"`
	End       string `yaml:"end" json:"end" jsonschema:"title=Window End,description=HH:MM session time,default=16:00"`
	Timeframe string `yaml:"timeframe" json:"timeframe" validate:"omitempty,oneof=1m 3m 5m" jsonschema:"title=Timeframe,enum=1m,enum=3m,enum=5m"`

	LunchSkip         optional.Option[bool]    `yaml:"lunch_skip" json:"lunch_skip" jsonschema:"title=Lunch Skip,description=Suppress entries during the noon hour"`
	RiskPercent       optional.Option[float64] `yaml:"risk_percent" json:"risk_percent" jsonschema:"title=Risk Percent"`
	StopLossPercent   optional.Option[float64] `yaml:"stop_loss_percent" json:"stop_loss_percent" jsonschema:"title=Stop Loss Percent"`
	TakeProfitPercent optional.Option[float64] `yaml:"take_profit_percent" json:"take_profit_percent" jsonschema:"title=Take Profit Percent"`
}

// ID is the identifier used as the slot half of a PositionKey.
func (s StrategySlot) ID() string {
	return fmt.Sprintf("%s_P%d", s.Name, s.Priority)
}

// slotYAML is the file form of a slot. Overrides are pointers so that an
// absent key stays unset.
type slotYAML struct {
	Enabled           bool     `yaml:"enabled"`
	Name              string   `yaml:"name"`
	Priority          int      `yaml:"priority"`
	Start             string   `yaml:"start,omitempty"`
	End               string   `yaml:"end,omitempty"`
	Timeframe         string   `yaml:"timeframe,omitempty"`
	LunchSkip         *bool    `yaml:"lunch_skip,omitempty"`
	RiskPercent       *float64 `yaml:"risk_percent,omitempty"`
	StopLossPercent   *float64 `yaml:"stop_loss_percent,omitempty"`
	TakeProfitPercent *float64 `yaml:"take_profit_percent,omitempty"`
}

// UnmarshalYAML decodes nullable overrides into options.
func (s *StrategySlot) UnmarshalYAML(value *yaml.Node) error {
	var raw slotYAML

	if err := value.Decode(&raw); err != nil {
		return err
	}

	*s = StrategySlot{
		Enabled:           raw.Enabled,
		Name:              raw.Name,
		Priority:          raw.Priority,
		Start:             raw.Start,
		End:               raw.End,
		Timeframe:         raw.Timeframe,
		LunchSkip:         optional.FromNillable(raw.LunchSkip),
		RiskPercent:       optional.FromNillable(raw.RiskPercent),
		StopLossPercent:   optional.FromNillable(raw.StopLossPercent),
		TakeProfitPercent: optional.FromNillable(raw.TakeProfitPercent),
	}

	return nil
}

// MarshalYAML writes unset overrides as absent keys.
func (s StrategySlot) MarshalYAML() (any, error) {
	return slotYAML{
		Enabled:           s.Enabled,
		Name:              s.Name,
		Priority:          s.Priority,
		Start:             s.Start,
		End:               s.End,
		Timeframe:         s.Timeframe,
		LunchSkip:         nillable(s.LunchSkip),
		RiskPercent:       nillable(s.RiskPercent),
		StopLossPercent:   nillable(s.StopLossPercent),
		TakeProfitPercent: nillable(s.TakeProfitPercent),
	}, nil
}

func nillable[T any](o optional.Option[T]) *T {
	v, err := o.Take()
	if err != nil {
		return nil
	}

	return &v
}

// RiskParams are the sizing and guardrail percentages applied to an entry.
type RiskParams struct {
	RiskPercent       float64 `yaml:"risk_percent" json:"risk_percent"`
	StopLossPercent   float64 `yaml:"stop_loss_percent" json:"stop_loss_percent"`
	TakeProfitPercent float64 `yaml:"take_profit_percent" json:"take_profit_percent"`
}

// Resolve fills missing slot overrides from the global parameters.
func (s StrategySlot) Resolve(global RiskParams) RiskParams {
	return RiskParams{
		RiskPercent:       s.RiskPercent.TakeOr(global.RiskPercent),
		StopLossPercent:   s.StopLossPercent.TakeOr(global.StopLossPercent),
		TakeProfitPercent: s.TakeProfitPercent.TakeOr(global.TakeProfitPercent),
	}
}
