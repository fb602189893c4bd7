package scoring

import (
	"math"
	"strconv"

	"github.com/quantlab-io/scorecast/internal/contracts"
)

// Documented defaults substituted whenever a provider fails or a field
// is missing or unparseable. The serving path always degrades to these
// rather than surfacing an error.

// technicalDefaults stands in for the whole technical slice when bar
// history is unavailable or too short.
func technicalDefaults() contracts.FeatureVector {
	return contracts.FeatureVector{
		"rsi_14":         50,
		"macd":           0,
		"price_to_ma50":  1.0,
		"price_to_ma200": 1.0,
	}
}

const (
	defaultMarketCapLog  = 9.0
	defaultPERatio       = 20.0
	defaultPBRatio       = 3.0
	defaultEPSGrowth     = 0.10
	defaultRevenueGrowth = 0.15

	// neutralSentiment is served when no recent articles exist
	neutralSentiment = 0.5

	// sentimentWindowDays is the trailing article window
	sentimentWindowDays = 7
)

// fundamentalDefaults returns the documented fundamental fallbacks
func fundamentalDefaults() contracts.FeatureVector {
	return contracts.FeatureVector{
		"market_cap_log": defaultMarketCapLog,
		"pe_ratio":       defaultPERatio,
		"pb_ratio":       defaultPBRatio,
		"eps_growth":     defaultEPSGrowth,
		"revenue_growth": defaultRevenueGrowth,
	}
}

// fundamentalFeatures coerces a string-or-missing record into numeric
// features, falling back per field. Market cap is stored as log10 so
// its scale is comparable to the other features.
func fundamentalFeatures(rec *contracts.FundamentalRecord) contracts.FeatureVector {
	v := fundamentalDefaults()
	if rec == nil {
		return v
	}

	if mc, ok := parsePositive(rec.MarketCap); ok {
		v["market_cap_log"] = math.Log10(mc)
	}
	if pe, ok := parseFinite(rec.PERatio); ok {
		v["pe_ratio"] = pe
	}
	if pb, ok := parseFinite(rec.PBRatio); ok {
		v["pb_ratio"] = pb
	}
	if eps, ok := parseFinite(rec.EPSGrowth); ok {
		v["eps_growth"] = eps
	}
	if rev, ok := parseFinite(rec.RevenueGrowth); ok {
		v["revenue_growth"] = rev
	}
	return v
}

// sentimentFeature averages article ratings (scaled to [0,1]) over the
// trailing window; an empty set is the neutral default.
func sentimentFeature(articles []contracts.NewsArticle) float64 {
	if len(articles) == 0 {
		return neutralSentiment
	}

	var sum float64
	for _, a := range articles {
		sum += float64(a.Rating) / 5.0
	}
	return sum / float64(len(articles))
}

func parseFinite(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parsePositive(s string) (float64, bool) {
	f, ok := parseFinite(s)
	if !ok || f <= 0 {
		return 0, false
	}
	return f, true
}
