package indicator

// VWAP is the cumulative session volume-weighted average of the typical price.
type VWAP struct {
	sumPV float64
	sumV  float64
}

func NewVWAP() *VWAP {
	return &VWAP{sumPV: 0, sumV: 0}
}

// Update adds one bar's typical price and volume and returns the current value.
func (v *VWAP) Update(typicalPrice, volume float64) (float64, bool) {
	v.sumPV += typicalPrice * volume
	v.sumV += volume

	return v.Value()
}

// Value is zero and false until some volume has traded.
func (v *VWAP) Value() (float64, bool) {
	if v.sumV <= 0 {
		return 0, false
	}

	return v.sumPV / v.sumV, true
}

func (v *VWAP) Ready() bool {
	return v.sumV > 0
}

func (v *VWAP) Reset() {
	v.sumPV = 0
	v.sumV = 0
}
