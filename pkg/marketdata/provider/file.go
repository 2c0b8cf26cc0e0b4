package provider

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"

	"github.com/rxtech-lab/argo-intraday/internal/types"
	"github.com/rxtech-lab/argo-intraday/pkg/errors"
)

const csvColumns = "{'time': 'TIMESTAMPTZ', 'open': 'DOUBLE', 'high': 'DOUBLE', 'low': 'DOUBLE', 'close': 'DOUBLE', 'volume': 'DOUBLE'}"

// FileProvider reads bars from files in a directory through DuckDB. For a symbol
// and timeframe it looks, in order, for SYMBOL_TF.parquet, SYMBOL_TF.csv and the
// files written by the downloader, SYMBOL_*_TF.parquet.
type FileProvider struct {
	dataPath string
	db       *sql.DB
	sq       squirrel.StatementBuilderType
}

// NewFileProvider opens an in-memory DuckDB over dataPath.
func NewFileProvider(dataPath string) (*FileProvider, error) {
	info, err := os.Stat(dataPath)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataNotFound, err, "data path %s is not readable", dataPath)
	}

	if !info.IsDir() {
		return nil, errors.Newf(errors.ErrCodeDataNotFound, "data path %s is not a directory", dataPath)
	}

	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open DuckDB connection", err)
	}

	return &FileProvider{
		dataPath: dataPath,
		db:       db,
		sq:       squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// Close releases the DuckDB connection.
func (f *FileProvider) Close() error {
	return f.db.Close()
}

// source returns the DuckDB table function reading the files of symbol.
func (f *FileProvider) source(symbol string, timeframe Timeframe) (string, error) {
	base := filepath.Join(f.dataPath, fmt.Sprintf("%s_%s", symbol, timeframe))

	if _, err := os.Stat(base + ".parquet"); err == nil {
		return fmt.Sprintf("read_parquet('%s')", base+".parquet"), nil
	}

	if _, err := os.Stat(base + ".csv"); err == nil {
		return fmt.Sprintf("read_csv('%s', header=true, columns=%s)", base+".csv", csvColumns), nil
	}

	matches, err := filepath.Glob(filepath.Join(f.dataPath, fmt.Sprintf("%s_*_%s.parquet", symbol, timeframe)))
	if err != nil || len(matches) == 0 {
		return "", errors.Newf(errors.ErrCodeDataNotFound, "no %s data for %s in %s", timeframe, symbol, f.dataPath)
	}

	quoted := make([]string, 0, len(matches))
	for _, match := range matches {
		quoted = append(quoted, fmt.Sprintf("'%s'", match))
	}

	return fmt.Sprintf("read_parquet([%s])", strings.Join(quoted, ", ")), nil
}

// HistoricalBars reads the bars of symbol in [start, end]. A zero start or end
// leaves that side open.
func (f *FileProvider) HistoricalBars(ctx context.Context, symbol string, timeframe Timeframe, start, end time.Time) ([]types.Bar, error) {
	source, err := f.source(symbol, timeframe)
	if err != nil {
		return nil, err
	}

	query := f.sq.Select("time", "open", "high", "low", "close", "volume").From(source).OrderBy("time ASC")

	if !start.IsZero() {
		query = query.Where(squirrel.GtOrEq{"time": start})
	}

	if !end.IsZero() {
		query = query.Where(squirrel.LtOrEq{"time": end})
	}

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build bar query", err)
	}

	rows, err := f.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to query %s bars", symbol)
	}
	defer rows.Close()

	bars := []types.Bar{}

	for rows.Next() {
		bar := types.Bar{Symbol: symbol}
		if err := rows.Scan(&bar.Time, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "failed to scan %s bar", symbol)
		}

		bars = append(bars, bar)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to read %s bars", symbol)
	}

	return DedupSorted(bars), nil
}

// Stream is not supported for files.
func (f *FileProvider) Stream(_ context.Context, _ []string, _ Timeframe) iter.Seq2[types.Bar, error] {
	return func(yield func(types.Bar, error) bool) {
		yield(types.Bar{}, errors.New(errors.ErrCodeStreamUnsupported, "the file provider cannot stream"))
	}
}
