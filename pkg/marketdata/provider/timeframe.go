package provider

import (
	"time"

	"github.com/polygon-io/client-go/rest/models"

	"github.com/rxtech-lab/argo-intraday/pkg/errors"
)

// Timeframe is the bar size of a run. Only intraday minute bars are supported.
type Timeframe string

const (
	TimeframeOneMinute    Timeframe = "1m"
	TimeframeThreeMinutes Timeframe = "3m"
	TimeframeFiveMinutes  Timeframe = "5m"
)

// ParseTimeframe validates a timeframe string.
func ParseTimeframe(value string) (Timeframe, error) {
	switch tf := Timeframe(value); tf {
	case TimeframeOneMinute, TimeframeThreeMinutes, TimeframeFiveMinutes:
		return tf, nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidTimeframe, "unsupported timeframe %q, expected one of 1m, 3m, 5m", value)
	}
}

// Multiplier is the number of minutes in one bar.
func (t Timeframe) Multiplier() int {
	switch t {
	case TimeframeThreeMinutes:
		return 3
	case TimeframeFiveMinutes:
		return 5
	default:
		return 1
	}
}

// Timespan is the polygon aggregate unit for the timeframe.
func (t Timeframe) Timespan() models.Timespan {
	return models.Minute
}

// Duration is the wall time covered by one bar.
func (t Timeframe) Duration() time.Duration {
	return time.Duration(t.Multiplier()) * time.Minute
}

func (t Timeframe) String() string {
	return string(t)
}
