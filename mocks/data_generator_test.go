package mocks

import (
	"testing"
	"time"

	"github.com/rxtech-lab/argo-intraday/internal/utils"
)

func TestDataGenerator_Generate(t *testing.T) {
	gen := NewDataGenerator(42) // Fixed seed for reproducibility
	config := DefaultConfig()
	config.Count = 100

	data := gen.Generate(config)

	if len(data) != 100 {
		t.Errorf("expected 100 bars, got %d", len(data))
	}

	for i := 1; i < len(data); i++ {
		if !data[i].Time.After(data[i-1].Time) {
			t.Errorf("bars not in chronological order at index %d", i)
		}

		if data[i].Time.Sub(data[i-1].Time) != config.Interval {
			t.Errorf("unexpected interval at index %d", i)
		}
	}

	for i, d := range data {
		if d.Symbol != config.Symbol {
			t.Errorf("expected symbol %s at index %d, got %s", config.Symbol, i, d.Symbol)
		}

		if err := d.Validate(); err != nil {
			t.Errorf("invalid bar at index %d: %v", i, err)
		}

		if d.Bid != 0 || d.Ask != 0 {
			t.Errorf("unexpected quote at index %d", i)
		}
	}
}

func TestDataGenerator_Reproducibility(t *testing.T) {
	gen1 := NewDataGenerator(42)
	gen2 := NewDataGenerator(42)

	config := DefaultConfig()
	config.Count = 10

	data1 := gen1.Generate(config)
	data2 := gen2.Generate(config)

	for i := range data1 {
		if data1[i].Close != data2[i].Close {
			t.Errorf("data not reproducible at index %d: got %f and %f",
				i, data1[i].Close, data2[i].Close)
		}
	}
}

func TestDataGenerator_Spread(t *testing.T) {
	config := DefaultConfig()
	config.Count = 5
	config.Spread = 0.02

	for i, d := range NewDataGenerator(1).Generate(config) {
		spread, ok := d.Spread()
		if !ok || spread < 0.0199 || spread > 0.0201 {
			t.Errorf("unexpected spread at index %d: %v %v", i, spread, ok)
		}
	}
}

func TestGenerateSessions_StaysInRegularHours(t *testing.T) {
	data := GenerateSessions("TEST", 2)

	if len(data) != 780 {
		t.Fatalf("expected 780 bars, got %d", len(data))
	}

	for i, d := range data {
		if !utils.IsRegularSession(d.Time) || utils.MinuteOfDay(d.Time) >= utils.RegularCloseMinute {
			t.Errorf("bar %d outside the regular session: %s", i, d.Time)
		}
	}

	if utils.SessionDate(data[389].Time) == utils.SessionDate(data[390].Time) {
		t.Error("second session should start on a new day")
	}

	if got := utils.MinuteOfDay(data[390].Time); got != utils.RegularOpenMinute {
		t.Errorf("second session should start at the open, got minute %d", got)
	}
}

func TestGenerateMultiSymbol(t *testing.T) {
	symbols := []string{"AAPL", "GOOG", "MSFT"}
	gen := NewDataGenerator(42)
	config := DefaultConfig()
	config.Count = 100

	data := gen.GenerateMultiSymbol(symbols, config)

	if len(data) != len(symbols)*config.Count {
		t.Errorf("expected %d bars, got %d", len(symbols)*config.Count, len(data))
	}

	symbolCounts := make(map[string]int)
	for _, d := range data {
		symbolCounts[d.Symbol]++
	}

	for _, symbol := range symbols {
		if symbolCounts[symbol] != config.Count {
			t.Errorf("expected %d bars for %s, got %d", config.Count, symbol, symbolCounts[symbol])
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Count != 390 {
		t.Errorf("expected default count 390, got %d", config.Count)
	}

	if config.Interval != time.Minute {
		t.Errorf("expected default interval 1m, got %v", config.Interval)
	}

	if utils.MinuteOfDay(config.StartTime) != utils.RegularOpenMinute {
		t.Errorf("expected default start at the open, got %s", config.StartTime)
	}
}
