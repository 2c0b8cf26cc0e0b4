package strategy

import (
	"time"

	"github.com/rxtech-lab/argo-intraday/internal/types"
	"github.com/rxtech-lab/argo-intraday/internal/utils"
)

// etTime returns a timestamp on 2025-03-(day) in the session timezone.
func etTime(day, hour, minute int) time.Time {
	return time.Date(2025, 3, day, hour, minute, 0, 0, utils.SessionLocation())
}

func ohlcv(symbol string, ts time.Time, open, high, low, close, volume float64) types.Bar {
	return types.Bar{
		Symbol: symbol,
		Time:   ts,
		Open:   open,
		High:   high,
		Low:    low,
		Close:  close,
		Volume: volume,
	}
}
