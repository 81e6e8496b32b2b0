package drill

import (
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// Presenter renders or plays a symbol and returns the moment the learner can
// start responding. The call must not block on the learner.
type Presenter interface {
	Present(sym Symbol) time.Time
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(sym Symbol) time.Time

// Present implements Presenter.
func (f PresenterFunc) Present(sym Symbol) time.Time {
	return f(sym)
}

// Canceler is implemented by presenters that can abort a presentation in flight.
type Canceler interface {
	Cancel()
}

// StatEvent is emitted after every recorded outcome, and once per symbol when
// statistics are reset.
type StatEvent struct {
	Symbol  Symbol
	Stat    SymbolStat
	Success bool
	Elapsed time.Duration
	Reset   bool
}

// Observer receives stat events, e.g. to refresh progress bars.
type Observer func(StatEvent)

// State is the scheduler lifecycle state.
type State int

const (
	StateIdle State = iota
	StateRunning
)

func (s State) String() string {
	if s == StateRunning {
		return "running"
	}
	return "idle"
}

// Config configures a Scheduler. Zero values fall back to package defaults.
type Config struct {
	PlanConfig
	EmphasizeWeak bool
	Timeliness    time.Duration
}

// Selection is the symbol presented to the learner.
type Selection struct {
	Symbol      Symbol
	Kind        PlanKind
	Cursor      int
	Average     int
	PresentedAt time.Time
}

// ResponseStatus tells what Submit did with a response.
type ResponseStatus int

const (
	// ResponseIdle means nothing was pending; nothing changed.
	ResponseIdle ResponseStatus = iota
	// ResponseIgnored means the keyed symbol is not in the alphabet; the pending symbol stays.
	ResponseIgnored
	// ResponseScored means the outcome was recorded and Next is already presented.
	ResponseScored
)

// Response is the result of Submit.
type Response struct {
	Status   ResponseStatus
	Expected Symbol
	Keyed    Symbol
	Success  bool
	Elapsed  time.Duration
	Stat     SymbolStat
	Next     Selection
}

// Option customizes a Scheduler.
type Option func(*Scheduler)

// WithRand sets the random source used for weighted selection.
func WithRand(rnd *rand.Rand) Option {
	return func(s *Scheduler) {
		s.selector = NewSelector(rnd)
	}
}

// WithSeed seeds the weighted selection deterministically.
func WithSeed(seed int64) Option {
	return WithRand(rand.New(rand.NewSource(seed)))
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver registers an observer for stat events.
func WithObserver(obs Observer) Option {
	return func(s *Scheduler) {
		if obs != nil {
			s.observers = append(s.observers, obs)
		}
	}
}

// WithRegistry makes the scheduler use reg, e.g. one loaded from storage.
func WithRegistry(reg *Registry) Option {
	return func(s *Scheduler) {
		if reg != nil {
			s.registry = reg
		}
	}
}

// WithClock sets the clock used by SubmitAt callers that need "now".
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// Scheduler drives the present/respond cycle. It is not safe for concurrent
// use; callers serialize access.
type Scheduler struct {
	alphabet  Alphabet
	cfg       Config
	presenter Presenter
	registry  *Registry
	selector  *Selector
	evaluator Evaluator
	logger    *zap.Logger
	observers []Observer
	now       func() time.Time

	state       State
	pending     Symbol
	presentedAt time.Time
	history     []Symbol
	lastPlan    Plan
}

// New builds an idle scheduler for alphabet.
func New(alphabet Alphabet, cfg Config, presenter Presenter, opts ...Option) (*Scheduler, error) {
	if alphabet.Len() == 0 {
		return nil, ErrEmptyAlphabet
	}
	cfg.PlanConfig = cfg.PlanConfig.withDefaults()
	if !cfg.PlanConfig.validate() {
		return nil, fmt.Errorf("%w: mastery %d, min tries %d, max weak %d",
			ErrInvalidConfig, cfg.Mastery, cfg.MinTries, cfg.MaxWeak)
	}
	if cfg.Timeliness < 0 {
		return nil, fmt.Errorf("%w: timeliness %s", ErrInvalidConfig, cfg.Timeliness)
	}
	if cfg.Timeliness == 0 {
		cfg.Timeliness = DefaultTimeliness
	}
	if presenter == nil {
		presenter = PresenterFunc(func(Symbol) time.Time { return time.Now() })
	}
	s := &Scheduler{
		alphabet:  alphabet,
		cfg:       cfg,
		presenter: presenter,
		registry:  NewRegistry(),
		evaluator: Evaluator{Timeliness: cfg.Timeliness},
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.selector == nil {
		s.selector = NewSelector(nil)
	}
	return s, nil
}

// State returns the lifecycle state.
func (s *Scheduler) State() State {
	return s.state
}

// Alphabet returns the current curriculum.
func (s *Scheduler) Alphabet() Alphabet {
	return s.alphabet
}

// Registry exposes the statistics owned by the scheduler.
func (s *Scheduler) Registry() *Registry {
	return s.registry
}

// Plan returns the plan behind the latest selection.
func (s *Scheduler) Plan() Plan {
	return s.lastPlan
}

// Pending returns the symbol awaiting a response, if any.
func (s *Scheduler) Pending() (Symbol, bool) {
	if s.state != StateRunning || s.pending == NoSymbol {
		return NoSymbol, false
	}
	return s.pending, true
}

// History returns the symbols presented since the cycle was started.
func (s *Scheduler) History() []Symbol {
	out := make([]Symbol, len(s.history))
	copy(out, s.history)
	return out
}

// Start moves to running and presents the next symbol.
func (s *Scheduler) Start() Selection {
	s.state = StateRunning
	return s.next()
}

func (s *Scheduler) next() Selection {
	plan := BuildPlan(s.alphabet, s.registry, s.cfg.PlanConfig)
	s.lastPlan = plan

	sym := plan.Symbol
	if plan.Kind == PlanWeighted {
		sym = s.selector.Pick(plan.Active, s.cfg.EmphasizeWeak)
	}
	s.logger.Debug("next symbol",
		zap.String("symbol", sym.String()),
		zap.Stringer("kind", plan.Kind),
		zap.Int("cursor", plan.Cursor),
		zap.Int("active", len(plan.Active)),
		zap.Int("average", plan.Average()))

	s.pending = sym
	s.history = append(s.history, sym)
	s.presentedAt = s.presenter.Present(sym)
	return Selection{
		Symbol:      sym,
		Kind:        plan.Kind,
		Cursor:      plan.Cursor,
		Average:     plan.Average(),
		PresentedAt: s.presentedAt,
	}
}

// Replay presents the pending symbol again and restarts its response timer.
func (s *Scheduler) Replay() (Selection, bool) {
	sym, ok := s.Pending()
	if !ok {
		return Selection{}, false
	}
	s.history = append(s.history, sym)
	s.presentedAt = s.presenter.Present(sym)
	return Selection{
		Symbol:      sym,
		Kind:        s.lastPlan.Kind,
		Cursor:      s.lastPlan.Cursor,
		Average:     s.lastPlan.Average(),
		PresentedAt: s.presentedAt,
	}, true
}

// SubmitAt scores a response keyed at the given time.
func (s *Scheduler) SubmitAt(keyed Symbol, at time.Time) Response {
	return s.Submit(keyed, at.Sub(s.presentedAt))
}

// SubmitNow scores a response keyed at the scheduler clock's current time.
func (s *Scheduler) SubmitNow(keyed Symbol) Response {
	return s.SubmitAt(keyed, s.now())
}

// Submit scores the pending symbol and immediately presents the next one.
// It is a no-op while idle and ignores symbols outside the alphabet.
func (s *Scheduler) Submit(keyed Symbol, elapsed time.Duration) Response {
	expected, ok := s.Pending()
	if !ok {
		return Response{Status: ResponseIdle}
	}
	if keyed != NoSymbol {
		keyed = ParseSymbol(rune(keyed))
		if !s.alphabet.Contains(keyed) {
			s.logger.Debug("ignoring stray symbol", zap.String("symbol", keyed.String()))
			return Response{Status: ResponseIgnored, Expected: expected, Keyed: keyed}
		}
	}

	success, stat := s.evaluator.Record(s.registry, expected, keyed, elapsed)
	s.logger.Debug("scored response",
		zap.String("expected", expected.String()),
		zap.String("keyed", keyed.String()),
		zap.Duration("elapsed", elapsed),
		zap.Bool("success", success),
		zap.Int("accuracy", stat.Accuracy()))
	s.emit(StatEvent{Symbol: expected, Stat: stat, Success: success, Elapsed: elapsed})

	return Response{
		Status:   ResponseScored,
		Expected: expected,
		Keyed:    keyed,
		Success:  success,
		Elapsed:  elapsed,
		Stat:     stat,
		Next:     s.next(),
	}
}

// Stop returns to idle, cancelling any presentation in flight. Recorded
// statistics are kept.
func (s *Scheduler) Stop() {
	if c, ok := s.presenter.(Canceler); ok && s.state == StateRunning {
		c.Cancel()
	}
	s.state = StateIdle
	s.pending = NoSymbol
	s.presentedAt = time.Time{}
	s.history = nil
}

// SetAlphabet switches the curriculum and stops the cycle.
func (s *Scheduler) SetAlphabet(alphabet Alphabet) error {
	if alphabet.Len() == 0 {
		return ErrEmptyAlphabet
	}
	s.Stop()
	s.alphabet = alphabet
	s.lastPlan = Plan{}
	return nil
}

// SetRegistry swaps the statistics, e.g. when switching courses, and stops
// the cycle. A nil registry starts from scratch.
func (s *Scheduler) SetRegistry(reg *Registry) {
	s.Stop()
	if reg == nil {
		reg = NewRegistry()
	}
	s.registry = reg
	s.lastPlan = Plan{}
}

// Stats returns a read-only copy of the record for sym.
func (s *Scheduler) Stats(sym Symbol) SymbolStat {
	return s.registry.Stat(ParseSymbol(rune(sym)))
}

// ResetStats zeroes every record and notifies observers of each cleared symbol.
func (s *Scheduler) ResetStats() {
	cleared := s.registry.Snapshot()
	n := len(cleared)
	s.registry.Clear()
	for _, sym := range s.alphabet.Symbols() {
		if _, ok := cleared[sym]; ok {
			s.emit(StatEvent{Symbol: sym, Reset: true})
			delete(cleared, sym)
		}
	}
	for sym := range cleared {
		s.emit(StatEvent{Symbol: sym, Reset: true})
	}
	s.logger.Info("statistics cleared", zap.Int("symbols", n))
}

func (s *Scheduler) emit(ev StatEvent) {
	for _, obs := range s.observers {
		obs(ev)
	}
}
