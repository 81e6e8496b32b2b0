package drill

// Defaults used when a PlanConfig leaves every threshold at zero.
const (
	DefaultMastery  = 90
	DefaultMinTries = 5
	DefaultMaxWeak  = 4

	// neutralAccuracy stands in for symbols that were never attempted when the
	// whole known set is drilled.
	neutralAccuracy = 50
)

// PlanConfig holds the thresholds that gate curriculum progression. A config
// with Mastery, MinTries and MaxWeak all zero uses the defaults; otherwise
// Mastery and MinTries are taken as given, zero included, and only a zero
// MaxWeak falls back to DefaultMaxWeak.
type PlanConfig struct {
	Mastery        int  // accuracy percentage at or below which a symbol is weak
	MinTries       int  // attempts at or below which a symbol is weak and ends the walk
	MaxWeak        int  // weak symbols allowed at once before the walk stops
	DrillEntireSet bool // fold untried symbols in at neutral accuracy instead of introducing them
}

// DefaultPlanConfig returns the stock thresholds.
func DefaultPlanConfig() PlanConfig {
	return PlanConfig{Mastery: DefaultMastery, MinTries: DefaultMinTries, MaxWeak: DefaultMaxWeak}
}

func (c PlanConfig) withDefaults() PlanConfig {
	if c.Mastery == 0 && c.MinTries == 0 && c.MaxWeak == 0 {
		d := DefaultPlanConfig()
		d.DrillEntireSet = c.DrillEntireSet
		return d
	}
	if c.MaxWeak == 0 {
		c.MaxWeak = DefaultMaxWeak
	}
	return c
}

func (c PlanConfig) validate() bool {
	return c.Mastery >= 0 && c.Mastery <= 100 && c.MinTries >= 0 && c.MaxWeak > 0
}

// PlanKind tells how the next symbol must be chosen.
type PlanKind int

const (
	// PlanIntroduce presents a never-attempted symbol directly.
	PlanIntroduce PlanKind = iota
	// PlanWeighted draws from the active sequence with the Selector.
	PlanWeighted
)

func (k PlanKind) String() string {
	switch k {
	case PlanIntroduce:
		return "introduce"
	case PlanWeighted:
		return "weighted"
	default:
		return "unknown"
	}
}

// Candidate is one entry of the active sequence.
type Candidate struct {
	Symbol    Symbol
	Accuracy  int
	Attempted bool
}

// Plan is the outcome of one walk over the curriculum.
type Plan struct {
	Kind   PlanKind
	Symbol Symbol      // set for PlanIntroduce
	Active []Candidate // symbols accumulated before the walk stopped
	Cursor int         // number of unlocked symbols in curriculum order
}

// Average returns the mean accuracy of the active sequence.
func (p Plan) Average() int {
	if len(p.Active) == 0 {
		return 0
	}
	total := 0
	for _, c := range p.Active {
		total += c.Accuracy
	}
	return total / len(p.Active)
}

// BuildPlan walks the alphabet in curriculum order and decides which symbols are
// currently eligible for drilling.
func BuildPlan(alphabet Alphabet, reg *Registry, cfg PlanConfig) Plan {
	cfg = cfg.withDefaults()
	active := make([]Candidate, 0, alphabet.Len())
	weak := 0
	for i, sym := range alphabet.symbols {
		st := reg.Stat(sym)
		acc := st.Accuracy()
		if !st.Attempted() {
			if !cfg.DrillEntireSet {
				return Plan{
					Kind:   PlanIntroduce,
					Symbol: sym,
					Active: active,
					Cursor: i + 1,
				}
			}
			acc = neutralAccuracy
		}
		active = append(active, Candidate{Symbol: sym, Accuracy: acc, Attempted: st.Attempted()})

		underTried := int(st.Attempts) <= cfg.MinTries
		if acc <= cfg.Mastery || underTried {
			weak++
			if weak >= cfg.MaxWeak || underTried {
				break
			}
		}
	}
	return Plan{Kind: PlanWeighted, Active: active, Cursor: len(active)}
}
