package contracts

// EvaluationMetrics summarizes held-out classification quality. The
// weighted F1 is the sole promotion criterion.
type EvaluationMetrics struct {
	Accuracy   float64     `json:"accuracy"`
	F1Weighted float64     `json:"f1_weighted"`
	Support    map[int]int `json:"support"` // held-out sample count per class
}
