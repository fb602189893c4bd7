package training

import "github.com/quantlab-io/scorecast/internal/contracts"

// evaluate computes held-out metrics from predicted and true labels.
// The weighted F1 averages per-class F1 scores weighted by class
// support, which is what promotion arbitrates on.
func evaluate(predicted, actual []int) contracts.EvaluationMetrics {
	m := contracts.EvaluationMetrics{
		Support: make(map[int]int),
	}
	if len(actual) == 0 {
		return m
	}

	correct := 0
	tp := make(map[int]int)
	fp := make(map[int]int)
	fn := make(map[int]int)

	for i, a := range actual {
		p := predicted[i]
		m.Support[a]++
		if p == a {
			correct++
			tp[a]++
		} else {
			fp[p]++
			fn[a]++
		}
	}

	m.Accuracy = float64(correct) / float64(len(actual))

	var weightedF1 float64
	for class, support := range m.Support {
		precisionDen := tp[class] + fp[class]
		recallDen := tp[class] + fn[class]
		if precisionDen == 0 || recallDen == 0 {
			continue
		}

		precision := float64(tp[class]) / float64(precisionDen)
		recall := float64(tp[class]) / float64(recallDen)
		if precision+recall == 0 {
			continue
		}

		f1 := 2 * precision * recall / (precision + recall)
		weightedF1 += f1 * float64(support)
	}
	m.F1Weighted = weightedF1 / float64(len(actual))

	return m
}
