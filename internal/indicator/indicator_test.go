package indicator

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type IndicatorInterfaceTestSuite struct {
	suite.Suite
}

func TestIndicatorInterfaceSuite(t *testing.T) {
	suite.Run(t, new(IndicatorInterfaceTestSuite))
}

func (suite *IndicatorInterfaceTestSuite) TestResetClearsEveryCalculator() {
	sma := NewSMA(2)
	atr := NewATR(2)
	vwap := NewVWAP()
	rolling := NewRolling(2)

	for _, price := range []float64{10, 11, 12} {
		sma.Update(price)
		atr.Update(price+1, price-1, price)
		vwap.Update(price, 100)
		rolling.Add(price)
	}

	calculators := []Indicator{sma, atr, vwap, rolling}
	for _, calculator := range calculators {
		suite.True(calculator.Ready())
		calculator.Reset()
		suite.False(calculator.Ready())
	}
}
