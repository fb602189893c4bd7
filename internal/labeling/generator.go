// Package labeling builds supervised training samples from bar history.
package labeling

import (
	"github.com/quantlab-io/scorecast/internal/contracts"
	"github.com/quantlab-io/scorecast/internal/features"
)

// Generate produces one training sample per index that has at least
// contracts.MinHistoryBars bars of history and horizon bars of future
// data. The forward return is close[i+horizon]/close[i] - 1 and the
// label follows the five-class taxonomy. Samples are horizon-specific
// and never shared across horizons because the label differs.
func Generate(symbol string, bars []contracts.Bar, horizon contracts.Horizon) []contracts.TrainingSample {
	days := horizon.Days()
	if days <= 0 || len(bars) < contracts.MinHistoryBars+days {
		return nil
	}

	var samples []contracts.TrainingSample
	for i := contracts.MinHistoryBars - 1; i+days < len(bars); i++ {
		base := bars[i].Close
		if base == 0 {
			continue
		}

		vector := features.Compute(bars[:i+1])
		if len(vector) == 0 || !vector.IsFinite() {
			continue
		}

		forward := bars[i+days].Close/base - 1
		samples = append(samples, contracts.TrainingSample{
			Symbol:        symbol,
			AsOf:          bars[i].Timestamp,
			Features:      vector,
			ForwardReturn: forward,
			Label:         contracts.LabelForReturn(forward),
		})
	}

	return samples
}
