package indicator

import "math"

// ATR is the average true range over the last period bars.
// The first bar has no prior close, so its true range is high-low.
type ATR struct {
	window    *Rolling
	prevClose float64
	hasPrev   bool
	value     float64
}

func NewATR(period int) *ATR {
	return &ATR{
		window:    NewRolling(period),
		prevClose: 0,
		hasPrev:   false,
		value:     0,
	}
}

// TrueRange is max(high-low, |high-prevClose|, |low-prevClose|).
func TrueRange(high, low, prevClose float64) float64 {
	return math.Max(high-low, math.Max(math.Abs(high-prevClose), math.Abs(low-prevClose)))
}

// Update feeds one bar and returns the current average.
func (a *ATR) Update(high, low, close float64) float64 {
	prev := close
	if a.hasPrev {
		prev = a.prevClose
	}

	a.window.Add(TrueRange(high, low, prev))
	a.prevClose = close
	a.hasPrev = true
	a.value = a.window.Mean()

	return a.value
}

func (a *ATR) Value() float64 {
	return a.value
}

// Samples is the number of true ranges in the window.
func (a *ATR) Samples() int {
	return a.window.Len()
}

func (a *ATR) Ready() bool {
	return a.window.Ready()
}

func (a *ATR) Reset() {
	a.window.Reset()
	a.prevClose = 0
	a.hasPrev = false
	a.value = 0
}
