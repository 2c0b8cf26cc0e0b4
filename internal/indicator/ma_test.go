package indicator

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type MATestSuite struct {
	suite.Suite
}

func TestMASuite(t *testing.T) {
	suite.Run(t, new(MATestSuite))
}

func (suite *MATestSuite) TestRollingEvictsOldest() {
	r := NewRolling(3)
	suite.False(r.Ready())

	for _, v := range []float64{1, 2, 3, 4} {
		r.Add(v)
	}

	suite.True(r.Full())
	suite.Equal(3, r.Len())
	suite.Equal([]float64{2, 3, 4}, r.Values())
	suite.InDelta(3.0, r.Mean(), 1e-9)

	last, ok := r.Last()
	suite.True(ok)
	suite.InDelta(4.0, last, 1e-9)
}

func (suite *MATestSuite) TestRollingMinimumSize() {
	r := NewRolling(0)
	suite.Equal(1, r.Size())

	r.Add(5)
	r.Add(7)
	suite.Equal([]float64{7}, r.Values())
}

func (suite *MATestSuite) TestRollingEmpty() {
	r := NewRolling(4)
	suite.InDelta(0.0, r.Mean(), 1e-9)

	_, ok := r.Last()
	suite.False(ok)
	suite.Empty(r.Values())
}

func (suite *MATestSuite) TestSMA() {
	sma := NewSMA(3)

	_, ok := sma.Update(1)
	suite.False(ok)
	_, ok = sma.Update(2)
	suite.False(ok)

	value, ok := sma.Update(3)
	suite.True(ok)
	suite.InDelta(2.0, value, 1e-9)

	prev, ok := sma.Previous()
	suite.True(ok)
	suite.InDelta(2.0, prev, 1e-9)

	value, ok = sma.Update(6)
	suite.True(ok)
	suite.InDelta(11.0/3.0, value, 1e-9)
}

func (suite *MATestSuite) TestSMAReset() {
	sma := NewSMA(2)
	sma.Update(1)
	sma.Update(2)
	suite.True(sma.Ready())

	sma.Reset()
	suite.False(sma.Ready())

	_, ok := sma.Previous()
	suite.False(ok)
}
