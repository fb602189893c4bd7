package features

import (
	"math"

	"github.com/quantlab-io/scorecast/internal/contracts"
)

// Pure indicator kernels over close/bar series. Every function is total:
// unattainable inputs return the documented neutral default instead of
// failing, so the engineer never propagates an error.

// sma returns the simple moving average of the last period values
func sma(values []float64, period int) float64 {
	if period <= 0 || len(values) < period {
		return 0
	}

	var sum float64
	for _, v := range values[len(values)-period:] {
		sum += v
	}
	return sum / float64(period)
}

// smaLagged returns the simple moving average of the period values
// ending lag positions before the end of the series.
func smaLagged(values []float64, period, lag int) float64 {
	if period <= 0 || lag < 0 || len(values) < period+lag {
		return 0
	}

	end := len(values) - lag
	var sum float64
	for _, v := range values[end-period : end] {
		sum += v
	}
	return sum / float64(period)
}

// maSlope compares the current period-MA to the MA over a window lagged
// by lag bars and normalizes by the lagged MA, yielding a unitless slope.
func maSlope(values []float64, period, lag int) float64 {
	lagged := smaLagged(values, period, lag)
	if lagged == 0 {
		return 0
	}
	return (sma(values, period) - lagged) / lagged
}

// rsi computes the Relative Strength Index over the last period
// bar-to-bar changes using simple averages. A pure up-series (zero
// average loss) yields 100; a pure down-series decays to 0 through the
// natural rs=0 division.
func rsi(closes []float64, period int) float64 {
	if len(closes) < period+1 {
		return 50.0 // Neutral
	}

	var gains, losses float64
	start := len(closes) - period
	for i := start; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains += change
		} else {
			losses += -change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	if avgLoss == 0 {
		return 100.0
	}

	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// emaSeries computes the full exponential moving-average series, seeded
// with the first value. Returning the whole series rather than a
// recursively-seeded last value keeps the MACD signal line numerically
// correct.
func emaSeries(values []float64, period int) []float64 {
	if len(values) == 0 {
		return nil
	}

	k := 2.0 / (float64(period) + 1.0)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = values[i]*k + out[i-1]*(1-k)
	}
	return out
}

// macd returns the last MACD value, signal value and histogram from the
// full 12/26 EMA series with a 9-period signal line.
func macd(closes []float64) (line, signal, hist float64) {
	if len(closes) < 26 {
		return 0, 0, 0
	}

	fast := emaSeries(closes, 12)
	slow := emaSeries(closes, 26)

	macdSeries := make([]float64, len(closes))
	for i := range closes {
		macdSeries[i] = fast[i] - slow[i]
	}

	signalSeries := emaSeries(macdSeries, 9)

	last := len(closes) - 1
	line = macdSeries[last]
	signal = signalSeries[last]
	return line, signal, line - signal
}

// bollinger computes the 20-period 2-sigma band position and width.
// A degenerate band (upper == lower) positions the price at 0.5.
func bollinger(closes []float64, period int) (position, width float64) {
	if len(closes) < period {
		return 0.5, 0
	}

	middle := sma(closes, period)
	sd := stddev(closes[len(closes)-period:])

	upper := middle + 2*sd
	lower := middle - 2*sd

	price := closes[len(closes)-1]
	if upper == lower {
		position = 0.5
	} else {
		position = (price - lower) / (upper - lower)
	}

	if middle != 0 {
		width = (upper - lower) / middle
	}
	return position, width
}

// stddev returns the population standard deviation
func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)))
}

// momentum returns the lookback-bar return, or 0 when the window does
// not exist.
func momentum(closes []float64, lookback int) float64 {
	if len(closes) <= lookback {
		return 0
	}

	base := closes[len(closes)-1-lookback]
	if base == 0 {
		return 0
	}
	return closes[len(closes)-1]/base - 1
}

// annualizedVolatility computes the standard deviation of daily returns
// over the trailing window+1 closes, scaled by sqrt(252).
func annualizedVolatility(closes []float64, window int) float64 {
	if len(closes) < window+1 {
		return 0
	}

	tail := closes[len(closes)-window-1:]
	returns := make([]float64, 0, window)
	for i := 1; i < len(tail); i++ {
		if tail[i-1] == 0 {
			continue
		}
		returns = append(returns, tail[i]/tail[i-1]-1)
	}

	return stddev(returns) * math.Sqrt(252)
}

// atr computes the average true range over the last period bars
func atr(bars []contracts.Bar, period int) float64 {
	if len(bars) < period+1 {
		return 0
	}

	var sum float64
	start := len(bars) - period
	for i := start; i < len(bars); i++ {
		prevClose := bars[i-1].Close
		tr := bars[i].High - bars[i].Low
		if hc := math.Abs(bars[i].High - prevClose); hc > tr {
			tr = hc
		}
		if lc := math.Abs(bars[i].Low - prevClose); lc > tr {
			tr = lc
		}
		sum += tr
	}
	return sum / float64(period)
}
