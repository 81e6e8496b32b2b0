package drill

import "math"

// SymbolStat is the running performance record of one symbol.
type SymbolStat struct {
	Attempts  uint32
	Successes uint32
}

// Accuracy returns the success percentage rounded to an integer in [0,100].
// A symbol that was never attempted reports 0; use Attempted to tell the two apart.
func (s SymbolStat) Accuracy() int {
	if s.Attempts == 0 {
		return 0
	}
	return int(math.Round(100 * float64(s.Successes) / float64(s.Attempts)))
}

// Attempted reports whether the symbol has been scored at least once.
func (s SymbolStat) Attempted() bool {
	return s.Attempts > 0
}

func (s *SymbolStat) record(success bool) {
	s.Attempts++
	if success {
		s.Successes++
	}
}

// Registry owns one SymbolStat per referenced symbol.
type Registry struct {
	stats map[Symbol]*SymbolStat
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{stats: map[Symbol]*SymbolStat{}}
}

// GetOrCreate returns the record for sym, inserting a zeroed one if needed.
func (r *Registry) GetOrCreate(sym Symbol) *SymbolStat {
	entry, ok := r.stats[sym]
	if !ok {
		entry = &SymbolStat{}
		r.stats[sym] = entry
	}
	return entry
}

// Stat returns a copy of the record for sym without creating one.
func (r *Registry) Stat(sym Symbol) SymbolStat {
	if entry, ok := r.stats[sym]; ok {
		return *entry
	}
	return SymbolStat{}
}

// RecordOutcome counts one attempt for sym and, if success, one success.
func (r *Registry) RecordOutcome(sym Symbol, success bool) SymbolStat {
	entry := r.GetOrCreate(sym)
	entry.record(success)
	return *entry
}

// Clear zeroes every record.
func (r *Registry) Clear() {
	for _, entry := range r.stats {
		*entry = SymbolStat{}
	}
}

// Snapshot copies all records, e.g. for persistence.
func (r *Registry) Snapshot() map[Symbol]SymbolStat {
	out := make(map[Symbol]SymbolStat, len(r.stats))
	for sym, entry := range r.stats {
		out[sym] = *entry
	}
	return out
}

// Load replaces the records of the given symbols. Successes are clamped to attempts.
func (r *Registry) Load(stats map[Symbol]SymbolStat) {
	for sym, st := range stats {
		if st.Successes > st.Attempts {
			st.Successes = st.Attempts
		}
		*r.GetOrCreate(sym) = st
	}
}
