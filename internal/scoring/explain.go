package scoring

import "github.com/quantlab-io/scorecast/internal/contracts"

// Explain builds the rule-based explanation map: factor name to signed
// score contribution, plus the base entry. It mirrors the additive
// intuition behind the served score so a reader can see which inputs
// pushed it where. This is a documented approximation for
// explainability, not a game-theoretic attribution of the model output.
func Explain(v contracts.FeatureVector) map[string]float64 {
	out := map[string]float64{"base": 50}

	if rsi, ok := v["rsi_14"]; ok {
		switch {
		case rsi < 30:
			out["rsi_oversold"] = 10
		case rsi > 70:
			out["rsi_overbought"] = -10
		}
	}

	if macd, ok := v["macd"]; ok {
		switch {
		case macd > 0:
			out["macd_positive"] = 10
		case macd < 0:
			out["macd_negative"] = -10
		}
	}

	if ratio, ok := v["price_to_ma50"]; ok {
		switch {
		case ratio > 1.02:
			out["above_ma50"] = 5
		case ratio < 0.98:
			out["below_ma50"] = -5
		}
	}

	if pe, ok := v["pe_ratio"]; ok {
		switch {
		case pe > 0 && pe <= 25:
			out["reasonable_pe"] = 10
		case pe > 50 || pe <= 0:
			out["expensive_or_unprofitable"] = -10
		}
	}

	if eps, ok := v["eps_growth"]; ok {
		switch {
		case eps >= 0.15:
			out["strong_eps_growth"] = 10
		case eps < 0:
			out["shrinking_eps"] = -10
		}
	}

	if sentiment, ok := v["news_sentiment_7d"]; ok {
		out["news_sentiment"] = (sentiment - neutralSentiment) * 30
	}

	return out
}

// RuleScore collapses an explanation map into its clipped 0-100 total
func RuleScore(explanation map[string]float64) int {
	var total float64
	for _, contribution := range explanation {
		total += contribution
	}

	score := int(total + 0.5)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}
