package provider

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) TestParsePolygonConfig() {
	cfg, err := ParsePolygonConfig(`{"apiKey": "abc"}`)
	suite.Require().NoError(err)
	suite.Equal("abc", cfg.APIKey)

	_, err = ParsePolygonConfig(`{}`)
	suite.Error(err)

	_, err = ParsePolygonConfig(`{not json`)
	suite.Error(err)
	suite.Contains(err.Error(), "failed to parse JSON config")
}

func (suite *ConfigTestSuite) TestParseAlpacaDataConfig() {
	cfg, err := ParseAlpacaDataConfig(`{"apiKey": "id", "apiSecret": "secret", "feed": "sip"}`)
	suite.Require().NoError(err)
	suite.Equal("sip", cfg.Feed)

	_, err = ParseAlpacaDataConfig(`{"apiKey": "id", "apiSecret": "secret", "feed": "otc"}`)
	suite.Error(err)

	_, err = ParseAlpacaDataConfig(`{"apiKey": "id"}`)
	suite.Error(err)
}

func (suite *ConfigTestSuite) TestParseFileConfig() {
	cfg, err := ParseFileConfig(`{"dataPath": "./data"}`)
	suite.Require().NoError(err)
	suite.Equal("./data", cfg.DataPath)

	_, err = ParseFileConfig(`{"dataPath": ""}`)
	suite.Error(err)
}
