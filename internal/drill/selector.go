package drill

import (
	"math/rand"
	"time"
)

// maxWeight is the weight of a symbol at 0% accuracy; a symbol at 100% weighs 1.
const maxWeight = 101

// Selector draws a symbol from the active sequence, favouring low accuracy.
type Selector struct {
	rnd *rand.Rand
}

// NewSelector wraps rnd. A nil rnd is seeded from the current time.
func NewSelector(rnd *rand.Rand) *Selector {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Selector{rnd: rnd}
}

// Weights returns the selection weight of each candidate. With emphasize set,
// half of the smallest weight is taken off every candidate, which shrinks the
// share of the strongest symbols.
func Weights(active []Candidate, emphasize bool) []float64 {
	weights := make([]float64, len(active))
	if len(active) == 0 {
		return weights
	}
	minWeight := float64(maxWeight)
	for i, c := range active {
		w := float64(maxWeight - clampAccuracy(c.Accuracy))
		weights[i] = w
		if w < minWeight {
			minWeight = w
		}
	}
	if emphasize {
		sub := minWeight / 2
		for i := range weights {
			weights[i] -= sub
		}
	}
	return weights
}

// Pick returns one symbol from active. It returns NoSymbol when active is empty.
func (s *Selector) Pick(active []Candidate, emphasize bool) Symbol {
	if len(active) == 0 {
		return NoSymbol
	}
	weights := Weights(active, emphasize)
	total := 0.0
	for _, w := range weights {
		total += w
	}
	threshold := s.rnd.Float64() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if acc > threshold {
			return active[i].Symbol
		}
	}
	// Float rounding can leave the threshold at the very top of the range.
	return active[len(active)-1].Symbol
}

func clampAccuracy(acc int) int {
	if acc < 0 {
		return 0
	}
	if acc > 100 {
		return 100
	}
	return acc
}
