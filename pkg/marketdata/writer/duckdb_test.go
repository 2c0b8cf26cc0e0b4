package writer

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-intraday/internal/types"
	"github.com/stretchr/testify/suite"
)

type DuckDBWriterTestSuite struct {
	suite.Suite
	tempDir string
}

func TestDuckDBWriterSuite(t *testing.T) {
	suite.Run(t, new(DuckDBWriterTestSuite))
}

func (suite *DuckDBWriterTestSuite) SetupSuite() {
	tempDir, err := os.MkdirTemp("", "duckdb-writer-test")
	suite.Require().NoError(err)
	suite.tempDir = tempDir
}

func (suite *DuckDBWriterTestSuite) TearDownSuite() {
	if suite.tempDir != "" {
		os.RemoveAll(suite.tempDir)
	}
}

func testBar(symbol string, ts time.Time, price float64) types.Bar {
	return types.Bar{
		Symbol: symbol,
		Time:   ts,
		Open:   price,
		High:   price + 1,
		Low:    price - 1,
		Close:  price + 0.5,
		Volume: 1000,
	}
}

func countRows(path string) (int, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return 0, err
	}
	defer db.Close()

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM read_parquet('" + path + "')").Scan(&count)

	return count, err
}

func (suite *DuckDBWriterTestSuite) TestNewDuckDBWriter() {
	outputPath := filepath.Join(suite.tempDir, "new.parquet")
	writer := NewDuckDBWriter(outputPath)

	duckWriter, ok := writer.(*DuckDBWriter)
	suite.Require().True(ok)
	suite.Equal(outputPath, writer.GetOutputPath())
	suite.Nil(duckWriter.db)
	suite.Nil(duckWriter.tx)
	suite.Nil(duckWriter.stmt)
}

func (suite *DuckDBWriterTestSuite) TestWriteWithoutInitialize() {
	writer := NewDuckDBWriter(filepath.Join(suite.tempDir, "no_init.parquet"))

	err := writer.Write(testBar("AAPL", time.Now(), 150))
	suite.Error(err)
	suite.Contains(err.Error(), "not initialized")

	_, err = writer.Finalize()
	suite.Error(err)
}

func (suite *DuckDBWriterTestSuite) TestFullWorkflow() {
	outputPath := filepath.Join(suite.tempDir, "workflow.parquet")
	writer := NewDuckDBWriter(outputPath)
	suite.Require().NoError(writer.Initialize())
	defer writer.Close()

	start := time.Date(2025, 3, 3, 14, 30, 0, 0, time.UTC)
	for i := range 10 {
		suite.Require().NoError(writer.Write(testBar("AAPL", start.Add(time.Duration(i)*time.Minute), 150+float64(i))))
	}

	suite.Require().NoError(writer.Write(testBar("MSFT", start, 400)))

	path, err := writer.Finalize()
	suite.Require().NoError(err)
	suite.Equal(outputPath, path)

	count, err := countRows(outputPath)
	suite.Require().NoError(err)
	suite.Equal(11, count)

	_, err = writer.Finalize()
	suite.Error(err, "a finalized writer has no open transaction")
}

func (suite *DuckDBWriterTestSuite) TestCloseIsIdempotent() {
	writer := NewDuckDBWriter(filepath.Join(suite.tempDir, "close.parquet"))
	suite.Require().NoError(writer.Initialize())

	suite.NoError(writer.Close())
	suite.NoError(writer.Close())

	err := writer.Write(testBar("AAPL", time.Now(), 150))
	suite.Error(err)
}

func (suite *DuckDBWriterTestSuite) TestFinalizeExportError() {
	writer := NewDuckDBWriter(filepath.Join(suite.tempDir, "missing", "dir", "out.parquet"))
	suite.Require().NoError(writer.Initialize())
	defer writer.Close()

	suite.Require().NoError(writer.Write(testBar("AAPL", time.Now(), 150)))

	_, err := writer.Finalize()
	suite.Error(err)
	suite.Contains(err.Error(), "parquet")
}
