package drill

import "time"

// DefaultTimeliness is how long a learner has to key a symbol.
const DefaultTimeliness = 500 * time.Millisecond

// Evaluator turns a keyed answer and its response time into a training outcome.
type Evaluator struct {
	Timeliness time.Duration
}

// WasTimely reports whether elapsed is within the response window.
func (e Evaluator) WasTimely(elapsed time.Duration) bool {
	limit := e.Timeliness
	if limit <= 0 {
		limit = DefaultTimeliness
	}
	return elapsed <= limit
}

// Score reports a success only when the right symbol was keyed in time.
func (e Evaluator) Score(expected, keyed Symbol, elapsed time.Duration) bool {
	return keyed != NoSymbol && keyed == expected && e.WasTimely(elapsed)
}

// Record scores the response and stores the outcome for expected.
func (e Evaluator) Record(reg *Registry, expected, keyed Symbol, elapsed time.Duration) (bool, SymbolStat) {
	success := e.Score(expected, keyed, elapsed)
	return success, reg.RecordOutcome(expected, success)
}
