package contracts

import "time"

// Rating is the discrete call derived from a 0-100 score.
type Rating string

const (
	RatingStrongBuy  Rating = "Strong Buy"
	RatingBuy        Rating = "Buy"
	RatingHold       Rating = "Hold"
	RatingSell       Rating = "Sell"
	RatingStrongSell Rating = "Strong Sell"
)

// ClassScores maps each label class to its score value. The expected
// score served at prediction time is the probability-weighted sum over
// this table.
var ClassScores = [5]float64{0, 25, 50, 75, 100}

// NumClasses is the size of the label taxonomy
const NumClasses = 5

// NeutralScore is served for a horizon whose model is not yet trained
const NeutralScore = 50

// RatingForScore converts a score into a rating. This is the single
// source of truth for the thresholds; labeling and serving both use it.
func RatingForScore(score int) Rating {
	switch {
	case score >= 75:
		return RatingStrongBuy
	case score >= 60:
		return RatingBuy
	case score >= 40:
		return RatingHold
	case score >= 25:
		return RatingSell
	default:
		return RatingStrongSell
	}
}

// LabelForReturn converts a forward return into a label class:
// r > 0.10 is Strong Buy (4) down to r <= -0.10 Strong Sell (0).
func LabelForReturn(r float64) int {
	switch {
	case r > 0.10:
		return 4
	case r > 0.05:
		return 3
	case r > -0.05:
		return 2
	case r > -0.10:
		return 1
	default:
		return 0
	}
}

// HorizonScore is one horizon's serving result
type HorizonScore struct {
	Score  int    `json:"score"`
	Rating Rating `json:"rating"`
	// Trained is false when the neutral default was served because no
	// model artifact exists for the horizon.
	Trained bool `json:"trained"`
}

// DataStatus records, per provider, whether real data or the documented
// default was used to build the feature vector.
type DataStatus string

const (
	DataStatusOK      DataStatus = "ok"
	DataStatusDefault DataStatus = "default"
)

// Score is the full serving result for one ticker. Features is the
// snapshot of the composed vector the models saw. Explanation maps
// factor names to signed score contributions; it mirrors the additive
// serving intuition and is an approximation for explainability, not a
// true attribution.
type Score struct {
	Ticker      string                   `json:"ticker"`
	Horizons    map[Horizon]HorizonScore `json:"horizons"`
	Features    FeatureVector            `json:"features"`
	Explanation map[string]float64       `json:"explanation"`
	Sources     map[string]DataStatus    `json:"sources"`
	ComputedAt  time.Time                `json:"computed_at"`
}
