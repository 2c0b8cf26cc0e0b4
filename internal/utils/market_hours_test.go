package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type MarketHoursTestSuite struct {
	suite.Suite
}

func TestMarketHoursTestSuite(t *testing.T) {
	suite.Run(t, new(MarketHoursTestSuite))
}

func (suite *MarketHoursTestSuite) et(hour, minute int) time.Time {
	return time.Date(2025, 3, 4, hour, minute, 0, 0, SessionLocation())
}

func (suite *MarketHoursTestSuite) TestSessionConversion() {
	// 14:30 UTC on a winter day is 09:30 ET
	ts := time.Date(2025, 1, 6, 14, 30, 0, 0, time.UTC)
	suite.Equal(0, MinutesSinceOpen(ts))
	suite.True(IsRegularSession(ts))
	suite.Equal("2025-01-06", SessionDate(ts))

	// 03:00 UTC belongs to the previous session date
	late := time.Date(2025, 1, 7, 3, 0, 0, 0, time.UTC)
	suite.Equal("2025-01-06", SessionDate(late))
}

func (suite *MarketHoursTestSuite) TestPhases() {
	suite.False(IsPremarket(suite.et(3, 59)))
	suite.True(IsPremarket(suite.et(4, 0)))
	suite.True(IsPremarket(suite.et(9, 29)))
	suite.False(IsPremarket(suite.et(9, 30)))

	suite.True(IsRegularSession(suite.et(9, 30)))
	suite.True(IsRegularSession(suite.et(16, 0)))
	suite.False(IsRegularSession(suite.et(16, 1)))
	suite.False(IsRegularSession(suite.et(9, 29)))
}

func (suite *MarketHoursTestSuite) TestLunchHour() {
	suite.False(IsLunchHour(suite.et(11, 59)))
	suite.True(IsLunchHour(suite.et(12, 0)))
	suite.True(IsLunchHour(suite.et(12, 59)))
	suite.False(IsLunchHour(suite.et(13, 0)))
}

func (suite *MarketHoursTestSuite) TestParseClock() {
	minutes, err := ParseClock("09:45")
	suite.Require().NoError(err)
	suite.Equal(585, minutes)

	_, err = ParseClock("9.45")
	suite.Error(err)

	_, err = ParseClock("25:00")
	suite.Error(err)
}

func (suite *MarketHoursTestSuite) TestWindowContains() {
	window, err := ParseWindow("09:30", "10:00")
	suite.Require().NoError(err)
	suite.True(window.Contains(suite.et(9, 30)))
	suite.True(window.Contains(suite.et(10, 0)))
	suite.False(window.Contains(suite.et(10, 1)))
	suite.Equal("09:30-10:00", window.String())
}

func (suite *MarketHoursTestSuite) TestWindowWrapsMidnight() {
	window, err := ParseWindow("22:00", "02:00")
	suite.Require().NoError(err)
	suite.True(window.Contains(suite.et(23, 0)))
	suite.True(window.Contains(suite.et(1, 30)))
	suite.False(window.Contains(suite.et(12, 0)))
}

func (suite *MarketHoursTestSuite) TestParseWindowInvalid() {
	_, err := ParseWindow("bad", "10:00")
	suite.Error(err)

	_, err = ParseWindow("09:30", "bad")
	suite.Error(err)
}
