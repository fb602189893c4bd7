// Package features turns raw bar history into the fixed feature vector
// consumed by training and serving.
package features

import (
	"github.com/quantlab-io/scorecast/internal/contracts"
)

// Names lists every feature the engineer emits, in a stable order. For
// any bar sequence of sufficient length the computed vector has exactly
// this key set.
var Names = []string{
	"ma20_ratio",
	"ma50_ratio",
	"ma200_ratio",
	"ma20_slope",
	"ma50_slope",
	"rsi_14",
	"macd",
	"macd_signal",
	"macd_hist",
	"bb_position",
	"bb_width",
	"volume_ratio",
	"momentum_1d",
	"momentum_5d",
	"momentum_20d",
	"momentum_60d",
	"volatility_20d",
	"atr_14",
}

// Compute builds the feature vector for an ascending-time bar sequence.
// Fewer than contracts.MinHistoryBars bars yields an empty vector,
// which callers must treat as insufficient data rather than an error.
// The result never contains NaN or infinite values.
func Compute(bars []contracts.Bar) contracts.FeatureVector {
	if len(bars) < contracts.MinHistoryBars {
		return contracts.FeatureVector{}
	}

	closes := contracts.Closes(bars)
	last := closes[len(closes)-1]

	v := make(contracts.FeatureVector, len(Names))

	v["ma20_ratio"] = priceToMA(last, sma(closes, 20))
	v["ma50_ratio"] = priceToMA(last, sma(closes, 50))
	v["ma200_ratio"] = priceToMA(last, sma(closes, 200))

	v["ma20_slope"] = maSlope(closes, 20, 5)
	v["ma50_slope"] = maSlope(closes, 50, 10)

	v["rsi_14"] = rsi(closes, 14)

	line, signal, hist := macd(closes)
	v["macd"] = line
	v["macd_signal"] = signal
	v["macd_hist"] = hist

	position, width := bollinger(closes, 20)
	v["bb_position"] = position
	v["bb_width"] = width

	v["volume_ratio"] = volumeRatio(bars, 20)

	v["momentum_1d"] = momentum(closes, 1)
	v["momentum_5d"] = momentum(closes, 5)
	v["momentum_20d"] = momentum(closes, 20)
	v["momentum_60d"] = momentum(closes, 60)

	v["volatility_20d"] = annualizedVolatility(closes, 20)
	v["atr_14"] = atr(bars, 14)

	return v
}

// priceToMA is the unitless distance of price from its moving average:
// (price / ma) - 1, neutral at 0.
func priceToMA(price, ma float64) float64 {
	if ma == 0 {
		return 0
	}
	return price/ma - 1
}

// volumeRatio is the last bar's volume over the trailing period average,
// defaulting to 1 when the average is zero.
func volumeRatio(bars []contracts.Bar, period int) float64 {
	if len(bars) < period {
		return 1
	}

	var sum float64
	for _, b := range bars[len(bars)-period:] {
		sum += b.Volume
	}
	avg := sum / float64(period)
	if avg == 0 {
		return 1
	}
	return bars[len(bars)-1].Volume / avg
}
