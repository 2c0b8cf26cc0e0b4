package provider

import (
	"testing"
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-intraday/pkg/errors"
)

type TimeframeTestSuite struct {
	suite.Suite
}

func TestTimeframeSuite(t *testing.T) {
	suite.Run(t, new(TimeframeTestSuite))
}

func (suite *TimeframeTestSuite) TestParseTimeframe() {
	tests := []struct {
		input      string
		multiplier int
		duration   time.Duration
	}{
		{"1m", 1, time.Minute},
		{"3m", 3, 3 * time.Minute},
		{"5m", 5, 5 * time.Minute},
	}

	for _, tc := range tests {
		suite.Run(tc.input, func() {
			tf, err := ParseTimeframe(tc.input)
			suite.Require().NoError(err)
			suite.Equal(tc.multiplier, tf.Multiplier())
			suite.Equal(tc.duration, tf.Duration())
			suite.Equal(models.Minute, tf.Timespan())
			suite.Equal(tc.input, tf.String())
		})
	}
}

func (suite *TimeframeTestSuite) TestParseTimeframeRejectsOthers() {
	for _, input := range []string{"", "1h", "15m", "1d", "1M"} {
		_, err := ParseTimeframe(input)
		suite.Error(err, input)
	}
}

func (suite *TimeframeTestSuite) TestParseTimeframeErrorCode() {
	_, err := ParseTimeframe("1h")
	suite.Equal(errors.ErrCodeInvalidTimeframe, errors.GetCode(err))
}
