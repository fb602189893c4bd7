package features

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantlab-io/scorecast/internal/contracts"
)

// makeBars builds an ascending daily bar series with closes from fn
func makeBars(n int, fn func(i int) float64) []contracts.Bar {
	bars := make([]contracts.Bar, n)
	start := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		c := fn(i)
		bars[i] = contracts.Bar{
			Timestamp: start.AddDate(0, 0, i),
			Open:      c * 0.995,
			High:      c * 1.01,
			Low:       c * 0.99,
			Close:     c,
			Volume:    1_000_000,
		}
	}
	return bars
}

func TestCompute_ShortHistoryReturnsEmpty(t *testing.T) {
	bars := makeBars(contracts.MinHistoryBars-1, func(i int) float64 { return 100 })

	v := Compute(bars)
	assert.Empty(t, v)

	assert.Empty(t, Compute(nil))
}

func TestCompute_ExactKeySet(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	price := 100.0
	bars := makeBars(250, func(i int) float64 {
		price *= 1 + (rng.Float64()-0.5)*0.04
		return price
	})

	v := Compute(bars)
	require.Len(t, v, len(Names))
	for _, name := range Names {
		_, ok := v[name]
		assert.True(t, ok, "missing feature %s", name)
	}
	assert.True(t, v.IsFinite())
}

func TestCompute_RSIBounds(t *testing.T) {
	up := Compute(makeBars(220, func(i int) float64 { return 100 + float64(i) }))
	assert.Equal(t, 100.0, up["rsi_14"], "all-gains series must yield RSI 100")

	// The symmetric case has no special branch: avg_gain==0 gives rs=0
	// and the division naturally yields 0.
	down := Compute(makeBars(220, func(i int) float64 { return 500 - float64(i) }))
	assert.InDelta(t, 0.0, down["rsi_14"], 1e-9, "all-losses series must yield RSI 0")

	rng := rand.New(rand.NewSource(3))
	price := 50.0
	noisy := Compute(makeBars(300, func(i int) float64 {
		price *= 1 + (rng.Float64()-0.5)*0.06
		return price
	}))
	assert.GreaterOrEqual(t, noisy["rsi_14"], 0.0)
	assert.LessOrEqual(t, noisy["rsi_14"], 100.0)
}

func TestCompute_FlatSeriesDefaults(t *testing.T) {
	bars := makeBars(210, func(i int) float64 { return 100 })
	// Flat volume of zero exercises the volume-ratio default.
	for i := range bars {
		bars[i].Volume = 0
	}

	v := Compute(bars)

	assert.Equal(t, 0.5, v["bb_position"], "degenerate band centers the price")
	assert.Equal(t, 0.0, v["bb_width"])
	assert.Equal(t, 1.0, v["volume_ratio"], "zero average volume defaults to 1")
	assert.Equal(t, 0.0, v["ma20_ratio"])
	assert.Equal(t, 0.0, v["momentum_20d"])
	assert.Equal(t, 0.0, v["volatility_20d"])
	assert.True(t, v.IsFinite())
}

func TestCompute_TrendDirection(t *testing.T) {
	up := Compute(makeBars(260, func(i int) float64 { return 100 * math.Pow(1.002, float64(i)) }))

	assert.Greater(t, up["ma20_slope"], 0.0)
	assert.Greater(t, up["ma50_slope"], 0.0)
	assert.Greater(t, up["ma200_ratio"], 0.0, "price sits above its long MA in an uptrend")
	assert.Greater(t, up["momentum_60d"], 0.0)
	assert.Greater(t, up["macd"], 0.0)

	down := Compute(makeBars(260, func(i int) float64 { return 100 * math.Pow(0.998, float64(i)) }))
	assert.Less(t, down["ma20_slope"], 0.0)
	assert.Less(t, down["ma200_ratio"], 0.0)
	assert.Less(t, down["macd"], 0.0)
}

func TestCompute_MomentumMatchesCloses(t *testing.T) {
	bars := makeBars(250, func(i int) float64 { return 100 + float64(i) })
	closes := contracts.Closes(bars)
	last := len(closes) - 1

	v := Compute(bars)

	assert.InDelta(t, closes[last]/closes[last-5]-1, v["momentum_5d"], 1e-12)
	assert.InDelta(t, closes[last]/closes[last-60]-1, v["momentum_60d"], 1e-12)
}

func TestEMASeries_FullSeries(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	series := emaSeries(values, 3)

	require.Len(t, series, len(values))
	assert.Equal(t, 1.0, series[0])

	// Hand-rolled recurrence with k = 2/(3+1) = 0.5
	want := 1.0
	for i := 1; i < len(values); i++ {
		want = values[i]*0.5 + want*0.5
		assert.InDelta(t, want, series[i], 1e-12)
	}
}

func TestATR_UsesTrueRange(t *testing.T) {
	// A gap day makes |high - prevClose| the dominant term.
	bars := makeBars(220, func(i int) float64 { return 100 })
	gapIdx := len(bars) - 3
	bars[gapIdx].Open = 120
	bars[gapIdx].High = 125
	bars[gapIdx].Low = 118
	bars[gapIdx].Close = 120

	v := Compute(bars)
	assert.Greater(t, v["atr_14"], bars[0].High-bars[0].Low)
}
