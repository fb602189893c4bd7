package contracts

import (
	"math"
	"sort"
	"time"
)

// FeatureVector maps fixed feature names to values. Vectors submitted
// for training or scoring must never contain NaN or infinite values.
type FeatureVector map[string]float64

// IsFinite reports whether every value in the vector is a finite number
func (v FeatureVector) IsFinite() bool {
	for _, value := range v {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return false
		}
	}
	return true
}

// Names returns the feature names in sorted order
func (v FeatureVector) Names() []string {
	names := make([]string, 0, len(v))
	for name := range v {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Ordered re-orders the vector into the given name order. Missing keys
// are zero-filled, never dropped; the output always has len(names)
// entries in exactly that order.
func (v FeatureVector) Ordered(names []string) []float64 {
	values := make([]float64, len(names))
	for i, name := range names {
		values[i] = v[name]
	}
	return values
}

// Merge copies all entries of other into v, overwriting duplicates
func (v FeatureVector) Merge(other FeatureVector) {
	for name, value := range other {
		v[name] = value
	}
}

// TrainingSample is one supervised observation: the features known at
// AsOf and the realized forward return over the horizon window.
type TrainingSample struct {
	Symbol        string        `json:"symbol"`
	AsOf          time.Time     `json:"as_of"`
	Features      FeatureVector `json:"features"`
	ForwardReturn float64       `json:"forward_return"`
	Label         int           `json:"label"` // 0-4, see LabelForReturn
}
