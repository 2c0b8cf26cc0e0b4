package provider

import (
	"os"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-intraday/internal/types"
	"github.com/rxtech-lab/argo-intraday/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type ProviderTestSuite struct {
	suite.Suite
}

func TestProviderSuite(t *testing.T) {
	suite.Run(t, new(ProviderTestSuite))
}

func (suite *ProviderTestSuite) TestDedupSorted() {
	t0 := time.Date(2025, 3, 3, 14, 30, 0, 0, time.UTC)
	input := []types.Bar{
		{Symbol: "AAPL", Time: t0.Add(2 * time.Minute), Close: 3},
		{Symbol: "AAPL", Time: t0, Close: 1},
		{Symbol: "AAPL", Time: t0.Add(time.Minute), Close: 2},
		{Symbol: "AAPL", Time: t0, Close: 99},
	}

	result := DedupSorted(input)
	suite.Require().Len(result, 3)
	suite.Equal([]float64{1, 2, 3}, []float64{result[0].Close, result[1].Close, result[2].Close})

	// input untouched
	suite.Equal(3.0, input[0].Close)
	suite.Empty(DedupSorted(nil))
}

func (suite *ProviderTestSuite) TestNewMarketDataProvider() {
	polygonProvider, err := NewMarketDataProvider(ProviderPolygon, &PolygonConfig{APIKey: "key"})
	suite.Require().NoError(err)
	suite.IsType(&PolygonClient{}, polygonProvider)

	alpacaProvider, err := NewMarketDataProvider(ProviderAlpaca, &AlpacaDataConfig{APIKey: "key", APISecret: "secret"})
	suite.Require().NoError(err)
	suite.IsType(&AlpacaBars{}, alpacaProvider)

	dir, err := os.MkdirTemp("", "provider-test")
	suite.Require().NoError(err)
	defer os.RemoveAll(dir)

	fileProvider, err := NewMarketDataProvider(ProviderFile, &FileConfig{DataPath: dir})
	suite.Require().NoError(err)
	suite.IsType(&FileProvider{}, fileProvider)
	fileProvider.(*FileProvider).Close()
}

func (suite *ProviderTestSuite) TestNewMarketDataProviderErrors() {
	_, err := NewMarketDataProvider(ProviderPolygon, "raw-key")
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidProvider))

	_, err = NewMarketDataProvider(ProviderPolygon, &PolygonConfig{})
	suite.Error(err)

	_, err = NewMarketDataProvider("binance", nil)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidProvider))
}
