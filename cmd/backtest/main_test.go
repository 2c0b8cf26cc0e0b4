package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/urfave/cli/v3"

	"github.com/rxtech-lab/argo-intraday/internal/config"
	"github.com/rxtech-lab/argo-intraday/internal/logger"
	"github.com/rxtech-lab/argo-intraday/internal/strategy"
	"github.com/rxtech-lab/argo-intraday/internal/types"
)

type ProgressCallbacksTestSuite struct {
	suite.Suite
}

func TestProgressCallbacksSuite(t *testing.T) {
	suite.Run(t, new(ProgressCallbacksTestSuite))
}

func (suite *ProgressCallbacksTestSuite) TestAllPhasesAreHandled() {
	callbacks := progressCallbacks(logger.NewNopLogger())

	suite.Nil(callbacks.OnSymbolStart)
	suite.Nil(callbacks.OnSymbolEnd)
	suite.Require().NotNil(callbacks.OnBacktestStart)
	suite.Require().NotNil(callbacks.OnProcessData)
	suite.Require().NotNil(callbacks.OnTrade)
	suite.Require().NotNil(callbacks.OnBacktestEnd)

	suite.NoError((*callbacks.OnProcessData)(1, 10), "progress before the start is ignored")

	suite.NoError((*callbacks.OnBacktestStart)([]string{"AAPL", "TSLA"}, 10))
	suite.NoError((*callbacks.OnProcessData)(5, 10))
	(*callbacks.OnTrade)(types.Trade{Symbol: "AAPL", Slot: "orb_P1", PnL: 12.5})
	suite.NoError((*callbacks.OnProcessData)(10, 10))
	(*callbacks.OnBacktestEnd)(nil)
}

func (suite *ProgressCallbacksTestSuite) TestSchemaWritesSampleConfig() {
	output := filepath.Join(suite.T().TempDir(), "config")

	run := func() error {
		cmd := &cli.Command{
			Name:   "schema",
			Flags:  []cli.Flag{&cli.StringFlag{Name: "output"}},
			Action: schemaAction,
		}

		return cmd.Run(context.Background(), []string{"schema", "--output", output})
	}
	suite.Require().NoError(run())

	schema, err := os.ReadFile(filepath.Join(output, schemaFileName))
	suite.Require().NoError(err)
	suite.Contains(string(schema), "argo-intraday-config")

	sample, err := os.ReadFile(filepath.Join(output, sampleFileName))
	suite.Require().NoError(err)
	suite.Contains(string(sample), "# yaml-language-server: $schema="+schemaFileName)

	_, err = config.Parse(sample, strategy.NewDefaultRegistry(strategy.DefaultParams()))
	suite.NoError(err)

	// an edited sample survives a second run
	suite.Require().NoError(os.WriteFile(filepath.Join(output, sampleFileName), []byte("edited"), 0644))
	suite.Require().NoError(run())

	sample, err = os.ReadFile(filepath.Join(output, sampleFileName))
	suite.Require().NoError(err)
	suite.Equal("edited", string(sample))
}
