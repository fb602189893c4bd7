package contracts

import (
	"math"
	"testing"
)

func TestRatingForScore_Boundaries(t *testing.T) {
	tests := []struct {
		score int
		want  Rating
	}{
		{100, RatingStrongBuy},
		{75, RatingStrongBuy},
		{74, RatingBuy},
		{60, RatingBuy},
		{59, RatingHold},
		{40, RatingHold},
		{39, RatingSell},
		{25, RatingSell},
		{24, RatingStrongSell},
		{0, RatingStrongSell},
	}

	for _, tt := range tests {
		if got := RatingForScore(tt.score); got != tt.want {
			t.Errorf("RatingForScore(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestRatingForScore_Monotonic(t *testing.T) {
	order := map[Rating]int{
		RatingStrongSell: 0,
		RatingSell:       1,
		RatingHold:       2,
		RatingBuy:        3,
		RatingStrongBuy:  4,
	}

	prev := order[RatingForScore(0)]
	for score := 1; score <= 100; score++ {
		cur := order[RatingForScore(score)]
		if cur < prev {
			t.Fatalf("rating decreased at score %d", score)
		}
		prev = cur
	}
}

func TestLabelForReturn(t *testing.T) {
	tests := []struct {
		r    float64
		want int
	}{
		{0.25, 4},
		{0.101, 4},
		{0.10, 3},
		{0.051, 3},
		{0.05, 2},
		{0.0, 2},
		{-0.05, 2},
		{-0.051, 1},
		{-0.10, 1},
		{-0.101, 0},
		{-0.50, 0},
	}

	for _, tt := range tests {
		if got := LabelForReturn(tt.r); got != tt.want {
			t.Errorf("LabelForReturn(%v) = %d, want %d", tt.r, got, tt.want)
		}
	}
}

func TestClassScores_AlignWithRatings(t *testing.T) {
	// Each class score maps back onto its own rating band.
	wants := []Rating{RatingStrongSell, RatingSell, RatingHold, RatingBuy, RatingStrongBuy}
	for class, score := range ClassScores {
		if got := RatingForScore(int(score)); got != wants[class] {
			t.Errorf("class %d (score %v) rated %q, want %q", class, score, got, wants[class])
		}
	}
}

func TestFeatureVector_IsFinite(t *testing.T) {
	v := FeatureVector{"a": 1.0, "b": -2.5}
	if !v.IsFinite() {
		t.Error("finite vector reported as non-finite")
	}

	v["c"] = math.NaN()
	if v.IsFinite() {
		t.Error("NaN not detected")
	}

	v["c"] = math.Inf(1)
	if v.IsFinite() {
		t.Error("Inf not detected")
	}
}

func TestFeatureVector_Ordered(t *testing.T) {
	v := FeatureVector{"rsi_14": 55, "macd": 1.2}

	got := v.Ordered([]string{"macd", "missing", "rsi_14"})
	want := []float64{1.2, 0, 55}

	if len(got) != len(want) {
		t.Fatalf("got %d values, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Ordered()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
