// Package ml holds the learned-model primitives: a standard feature
// scaler and a gradient-boosted tree classifier. Both serialize to JSON
// so artifacts survive process and version boundaries.
package ml

import "math"

// StandardScaler standardizes features to zero mean and unit variance.
// Constant features scale by 1 so transformed values stay finite.
type StandardScaler struct {
	Means []float64 `json:"means"`
	Stds  []float64 `json:"stds"`
}

// Fit computes per-column means and standard deviations from rows
func (s *StandardScaler) Fit(rows [][]float64) {
	if len(rows) == 0 {
		s.Means, s.Stds = nil, nil
		return
	}

	cols := len(rows[0])
	s.Means = make([]float64, cols)
	s.Stds = make([]float64, cols)

	for _, row := range rows {
		for j, v := range row {
			s.Means[j] += v
		}
	}
	n := float64(len(rows))
	for j := range s.Means {
		s.Means[j] /= n
	}

	for _, row := range rows {
		for j, v := range row {
			d := v - s.Means[j]
			s.Stds[j] += d * d
		}
	}
	for j := range s.Stds {
		s.Stds[j] = math.Sqrt(s.Stds[j] / n)
		if s.Stds[j] == 0 {
			s.Stds[j] = 1
		}
	}
}

// Transform standardizes a single row. Rows wider than the fitted
// schema are truncated; the caller guarantees column order.
func (s *StandardScaler) Transform(row []float64) []float64 {
	out := make([]float64, len(s.Means))
	for j := range s.Means {
		if j < len(row) {
			out[j] = (row[j] - s.Means[j]) / s.Stds[j]
		}
	}
	return out
}

// TransformAll standardizes every row
func (s *StandardScaler) TransformAll(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = s.Transform(row)
	}
	return out
}
