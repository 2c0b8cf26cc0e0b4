package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/argo-intraday/internal/types"
	"github.com/rxtech-lab/argo-intraday/internal/utils"
)

// DataGenerator generates realistic intraday bars for testing.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how bars are generated.
type GeneratorConfig struct {
	// Symbol is the trading symbol (e.g., "AAPL", "SPY")
	Symbol string
	// StartTime is the timestamp of the first bar
	StartTime time.Time
	// Interval is the duration between each bar
	Interval time.Duration
	// Count is the number of bars to generate
	Count int
	// InitialPrice is the starting price
	InitialPrice float64
	// Volatility controls price movement per bar (0.002 = 0.2%)
	Volatility float64
	// Trend is the drift over the whole series (-0.01 to 0.01 for bearish to bullish)
	Trend float64
	// VolumeBase is the average volume per bar
	VolumeBase float64
	// VolumeVariance is the variance in volume (0.0 to 1.0)
	VolumeVariance float64
	// Spread adds a bid/ask quote of this width around the close when positive
	Spread float64
	// RegularSessionOnly skips timestamps outside 09:30-16:00 ET and weekends
	RegularSessionOnly bool
}

// DefaultConfig returns one regular session of one-minute bars.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Symbol:             "TEST",
		StartTime:          time.Date(2025, 3, 3, 9, 30, 0, 0, utils.SessionLocation()),
		Interval:           time.Minute,
		Count:              390,
		InitialPrice:       100.0,
		Volatility:         0.002, // 0.2% per bar
		Trend:              0.0,   // neutral
		VolumeBase:         10000,
		VolumeVariance:     0.3,
		Spread:             0,
		RegularSessionOnly: true,
	}
}

// Generate creates a slice of bars based on the configuration.
// Prices follow a geometric Brownian motion.
func (g *DataGenerator) Generate(config GeneratorConfig) []types.Bar {
	data := make([]types.Bar, config.Count)
	currentPrice := config.InitialPrice
	currentTime := config.StartTime

	for i := 0; i < config.Count; i++ {
		if config.RegularSessionOnly {
			currentTime = nextSessionTime(currentTime)
		}

		open := currentPrice

		// Box-Muller transform for a normal draw
		u1 := g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		priceChange := config.Volatility * z
		drift := config.Trend / float64(config.Count)

		close := open * (1 + priceChange + drift)
		if close <= 0 {
			close = open * 0.99
		}

		highExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)
		lowExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)

		high := math.Max(open, close) + highExtension
		low := math.Min(open, close) - lowExtension
		if low <= 0 {
			low = math.Min(open, close) * 0.99
		}

		volumeVariation := 1.0 + (g.rng.Float64()*2-1)*config.VolumeVariance
		volume := config.VolumeBase * volumeVariation
		if volume < 0 {
			volume = config.VolumeBase * 0.1
		}

		bar := types.Bar{
			Symbol: config.Symbol,
			Time:   currentTime,
			Open:   roundToDecimals(open, 4),
			High:   roundToDecimals(high, 4),
			Low:    roundToDecimals(low, 4),
			Close:  roundToDecimals(close, 4),
			Volume: math.Round(volume),
		}

		if config.Spread > 0 {
			bar.Bid = roundToDecimals(bar.Close-config.Spread/2, 4)
			bar.Ask = roundToDecimals(bar.Close+config.Spread/2, 4)
		}

		data[i] = bar

		currentPrice = close
		currentTime = currentTime.Add(config.Interval)
	}

	return data
}

// nextSessionTime moves t forward to the next regular-session minute.
func nextSessionTime(t time.Time) time.Time {
	local := utils.ToSessionTime(t)

	for {
		weekday := local.Weekday()
		minute := utils.MinuteOfDay(local)

		switch {
		case weekday == time.Saturday || weekday == time.Sunday || minute >= utils.RegularCloseMinute:
			local = time.Date(local.Year(), local.Month(), local.Day()+1, 9, 30, 0, 0, local.Location())
		case minute < utils.RegularOpenMinute:
			local = time.Date(local.Year(), local.Month(), local.Day(), 9, 30, 0, 0, local.Location())
		default:
			return local
		}
	}
}

// GenerateMultiSymbol generates data for multiple symbols.
func (g *DataGenerator) GenerateMultiSymbol(symbols []string, baseConfig GeneratorConfig) []types.Bar {
	var allData []types.Bar

	for _, symbol := range symbols {
		config := baseConfig
		config.Symbol = symbol
		// Vary initial price and volatility slightly per symbol
		config.InitialPrice = baseConfig.InitialPrice * (0.8 + g.rng.Float64()*0.4)
		config.Volatility = baseConfig.Volatility * (0.8 + g.rng.Float64()*0.4)

		allData = append(allData, g.Generate(config)...)
	}

	return allData
}

// GenerateSessions generates days full regular sessions of one-minute bars.
func GenerateSessions(symbol string, days int) []types.Bar {
	gen := NewDataGenerator(42)
	config := DefaultConfig()
	config.Symbol = symbol
	config.Count = 390 * days

	return gen.Generate(config)
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))

	return math.Round(val*pow) / pow
}
