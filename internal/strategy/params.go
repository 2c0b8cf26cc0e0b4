package strategy

// Direction limits which side GapAndGo may trade.
type Direction string

const (
	DirectionLongOnly  Direction = "long_only"
	DirectionShortOnly Direction = "short_only"
	DirectionBoth      Direction = "both"
)

// GapAndGoConfig holds the tunables of the gap-and-go policy.
type GapAndGoConfig struct {
	// Entry filters
	MinGapPct          float64 `yaml:"min_gap_pct" json:"min_gap_pct" validate:"gte=0" jsonschema:"title=Min Gap %,default=2"`
	MaxGapPct          float64 `yaml:"max_gap_pct" json:"max_gap_pct" validate:"gtefield=MinGapPct" jsonschema:"title=Max Gap %,default=35"`
	MinPrice           float64 `yaml:"min_price" json:"min_price" validate:"gte=0" jsonschema:"title=Min Price,default=2"`
	MaxPrice           float64 `yaml:"max_price" json:"max_price" validate:"gtefield=MinPrice" jsonschema:"title=Max Price,default=20"`
	MinPremarketVolume float64 `yaml:"min_premarket_volume" json:"min_premarket_volume" validate:"gte=0" jsonschema:"title=Min Premarket Volume,default=50000"`
	// MaxSpread is a fraction of price. Values below 0.015 are raised to 0.015.
	MaxSpread            float64 `yaml:"max_spread" json:"max_spread" validate:"gte=0" jsonschema:"title=Max Spread,default=0.08"`
	ConfirmBars          int     `yaml:"confirm_bars" json:"confirm_bars" validate:"min=1" jsonschema:"title=Confirm Bars,default=2"`
	VolumeSurge          float64 `yaml:"volume_surge" json:"volume_surge" validate:"gte=0" jsonschema:"title=Volume Surge Factor,default=1.2"`
	AllowMultipleEntries bool    `yaml:"allow_multiple_entries" json:"allow_multiple_entries" jsonschema:"title=Allow Multiple Entries,default=false"`
	TradeCutoffMinute    int     `yaml:"trade_cutoff_minute" json:"trade_cutoff_minute" validate:"gte=0" jsonschema:"title=Entry Cutoff (minutes after open),default=30"`

	// Exit management
	ATRLen         int     `yaml:"atr_len" json:"atr_len" validate:"min=1" jsonschema:"title=ATR Length,default=10"`
	ATRStopMult    float64 `yaml:"atr_stop_mult" json:"atr_stop_mult" validate:"gt=0" jsonschema:"title=ATR Stop Multiple,default=1.8"`
	TrailFloorMult float64 `yaml:"trail_floor_mult" json:"trail_floor_mult" validate:"gte=0" jsonschema:"title=Trail Floor Multiple,default=0.8"`
	VWAPCrackBars  int     `yaml:"vwap_crack_bars" json:"vwap_crack_bars" validate:"min=1" jsonschema:"title=VWAP Crack Bars,default=2"`
	// ExitTime is HH:MM in the session timezone.
	ExitTime string `yaml:"exit_time" json:"exit_time" jsonschema:"title=Forced Exit Time,default=10:00"`

	Direction Direction `yaml:"direction" json:"direction" validate:"omitempty,oneof=long_only short_only both" jsonschema:"title=Direction,enum=long_only,enum=short_only,enum=both,default=both"`
}

// DefaultGapAndGoConfig returns the tuned defaults for volatile small caps.
func DefaultGapAndGoConfig() GapAndGoConfig {
	return GapAndGoConfig{
		MinGapPct:            2.0,
		MaxGapPct:            35.0,
		MinPrice:             2.0,
		MaxPrice:             20.0,
		MinPremarketVolume:   50000,
		MaxSpread:            0.08,
		ConfirmBars:          2,
		VolumeSurge:          1.2,
		AllowMultipleEntries: false,
		TradeCutoffMinute:    30,
		ATRLen:               10,
		ATRStopMult:          1.8,
		TrailFloorMult:       0.8,
		VWAPCrackBars:        2,
		ExitTime:             "10:00",
		Direction:            DirectionBoth,
	}
}

// Params are the construction parameters of the built-in policies.
type Params struct {
	SMAWindow        int
	ORBWindowMinutes int
	GapAndGo         GapAndGoConfig
}

func DefaultParams() Params {
	return Params{
		SMAWindow:        20,
		ORBWindowMinutes: 5,
		GapAndGo:         DefaultGapAndGoConfig(),
	}
}
