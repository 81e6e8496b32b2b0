package stats

import (
	"sort"

	"github.com/verte-zerg/morsedrill/internal/model"
)

// SelectWeakSymbols returns up to top symbols with the lowest accuracy.
func SelectWeakSymbols(aggs []model.SymbolAggregate, top int) []string {
	if len(aggs) == 0 {
		return nil
	}
	candidates := make([]model.SymbolAggregate, len(aggs))
	copy(candidates, aggs)
	sort.Slice(candidates, func(i, j int) bool {
		ai := accuracy(candidates[i])
		aj := accuracy(candidates[j])
		if ai == aj {
			return candidates[i].Symbol < candidates[j].Symbol
		}
		return ai < aj
	})
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	out := make([]string, 0, top)
	for _, c := range candidates[:top] {
		out = append(out, c.Symbol)
	}
	return out
}

func accuracy(agg model.SymbolAggregate) float64 {
	total := agg.Correct + agg.Incorrect
	if total == 0 {
		return 1.0
	}
	return float64(agg.Correct) / float64(total)
}
