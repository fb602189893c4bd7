package training

import (
	"math/rand"

	"github.com/quantlab-io/scorecast/internal/contracts"
)

// stratifiedSplit shuffles samples within each label class and assigns
// the first trainFrac of every class to the training set. Stratifying
// by label keeps horizon-specific class imbalance from skewing the
// held-out set. The split is deterministic for a given seed.
func stratifiedSplit(samples []contracts.TrainingSample, trainFrac float64, seed int64) (train, test []contracts.TrainingSample) {
	byLabel := make(map[int][]contracts.TrainingSample)
	for _, s := range samples {
		byLabel[s.Label] = append(byLabel[s.Label], s)
	}

	rng := rand.New(rand.NewSource(seed))

	for label := 0; label < contracts.NumClasses; label++ {
		group := byLabel[label]
		if len(group) == 0 {
			continue
		}

		rng.Shuffle(len(group), func(i, j int) {
			group[i], group[j] = group[j], group[i]
		})

		cut := int(float64(len(group)) * trainFrac)
		// A class with at least two members contributes to both sides.
		if cut == len(group) && len(group) > 1 {
			cut = len(group) - 1
		}
		if cut == 0 && len(group) > 1 {
			cut = 1
		}

		train = append(train, group[:cut]...)
		test = append(test, group[cut:]...)
	}

	return train, test
}
