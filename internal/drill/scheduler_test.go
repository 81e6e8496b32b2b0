package drill

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePresenter struct {
	at        time.Time
	presented []Symbol
	cancels   int
}

func (p *fakePresenter) Present(sym Symbol) time.Time {
	p.presented = append(p.presented, sym)
	return p.at
}

func (p *fakePresenter) Cancel() {
	p.cancels++
}

func newTestScheduler(t *testing.T, alphabet string, cfg Config, opts ...Option) (*Scheduler, *fakePresenter) {
	t.Helper()
	p := &fakePresenter{at: time.Unix(1000, 0)}
	opts = append([]Option{WithSeed(42), WithLogger(zap.NewNop())}, opts...)
	s, err := New(mustAlphabet(t, alphabet), cfg, p, opts...)
	require.NoError(t, err)
	return s, p
}

func TestNewRejectsEmptyAlphabet(t *testing.T) {
	_, err := New(Alphabet{}, Config{}, nil)
	assert.True(t, errors.Is(err, ErrEmptyAlphabet))
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	a := mustAlphabet(t, "AB")
	for _, cfg := range []Config{
		{PlanConfig: PlanConfig{MaxWeak: -1}},
		{PlanConfig: PlanConfig{Mastery: 120}},
		{Timeliness: -time.Second},
	} {
		_, err := New(a, cfg, nil)
		assert.ErrorIs(t, err, ErrInvalidConfig, "config %+v", cfg)
	}
}

func TestSubmitWhileIdleIsNoop(t *testing.T) {
	s, p := newTestScheduler(t, "KM", Config{})

	resp := s.Submit('K', 100*time.Millisecond)
	assert.Equal(t, ResponseIdle, resp.Status)
	assert.Empty(t, s.Registry().Snapshot())
	assert.Empty(t, p.presented)

	s.Start()
	s.Stop()
	resp = s.Submit('K', 100*time.Millisecond)
	assert.Equal(t, ResponseIdle, resp.Status)
	assert.Empty(t, s.Registry().Snapshot())
	assert.Equal(t, StateIdle, s.State())
}

func TestStartIntroducesNewSymbolFirst(t *testing.T) {
	reg := registryWith(map[Symbol]SymbolStat{
		'K': {Attempts: 30, Successes: 3},
		'M': {Attempts: 30, Successes: 30},
	})
	for seed := int64(0); seed < 20; seed++ {
		s, _ := newTestScheduler(t, "KMR", Config{}, WithRegistry(reg), WithSeed(seed))
		sel := s.Start()
		assert.Equal(t, Symbol('R'), sel.Symbol)
		assert.Equal(t, PlanIntroduce, sel.Kind)
		assert.Equal(t, 3, sel.Cursor)
	}
}

func TestSubmitScoresAndPresentsNext(t *testing.T) {
	s, p := newTestScheduler(t, "KM", Config{})

	sel := s.Start()
	require.Equal(t, Symbol('K'), sel.Symbol)
	assert.Equal(t, StateRunning, s.State())

	resp := s.Submit(ParseSymbol('k'), 200*time.Millisecond)
	require.Equal(t, ResponseScored, resp.Status)
	assert.True(t, resp.Success)
	assert.Equal(t, Symbol('K'), resp.Expected)
	assert.Equal(t, SymbolStat{Attempts: 1, Successes: 1}, s.Stats('k'))
	assert.Len(t, p.presented, 2, "next symbol must be presented immediately")
	assert.Equal(t, resp.Next.Symbol, p.presented[1])

	pending, ok := s.Pending()
	require.True(t, ok)
	assert.Equal(t, resp.Next.Symbol, pending)
}

func TestSubmitLateResponseIsFailure(t *testing.T) {
	s, _ := newTestScheduler(t, "K", Config{Timeliness: 500 * time.Millisecond})
	s.Start()

	resp := s.Submit('K', 600*time.Millisecond)
	require.Equal(t, ResponseScored, resp.Status)
	assert.False(t, resp.Success)
	assert.Equal(t, SymbolStat{Attempts: 1, Successes: 0}, s.Stats('K'))
}

func TestSubmitAtMeasuresFromPresentation(t *testing.T) {
	s, p := newTestScheduler(t, "K", Config{})
	s.Start()

	resp := s.SubmitAt('K', p.at.Add(600*time.Millisecond))
	assert.Equal(t, 600*time.Millisecond, resp.Elapsed)
	assert.False(t, resp.Success)

	resp = s.SubmitAt('K', p.at.Add(300*time.Millisecond))
	assert.True(t, resp.Success)
}

func TestSubmitNowUsesClock(t *testing.T) {
	p := &fakePresenter{at: time.Unix(50, 0)}
	s, err := New(mustAlphabet(t, "K"), Config{}, p, WithClock(func() time.Time {
		return time.Unix(50, 0).Add(250 * time.Millisecond)
	}))
	require.NoError(t, err)
	s.Start()

	resp := s.SubmitNow('K')
	assert.Equal(t, 250*time.Millisecond, resp.Elapsed)
	assert.True(t, resp.Success)
}

func TestSubmitIgnoresStraySymbols(t *testing.T) {
	s, p := newTestScheduler(t, "KM", Config{})
	s.Start()

	resp := s.Submit('Z', 100*time.Millisecond)
	assert.Equal(t, ResponseIgnored, resp.Status)
	assert.Empty(t, s.Registry().Snapshot())
	assert.Len(t, p.presented, 1)

	pending, ok := s.Pending()
	require.True(t, ok)
	assert.Equal(t, Symbol('K'), pending)
}

func TestSubmitWithoutAnswerIsFailure(t *testing.T) {
	s, _ := newTestScheduler(t, "K", Config{})
	s.Start()

	resp := s.Submit(NoSymbol, 100*time.Millisecond)
	require.Equal(t, ResponseScored, resp.Status)
	assert.False(t, resp.Success)
	assert.Equal(t, uint32(1), s.Stats('K').Attempts)
}

func TestObserverReceivesEvents(t *testing.T) {
	var events []StatEvent
	s, _ := newTestScheduler(t, "K", Config{}, WithObserver(func(ev StatEvent) {
		events = append(events, ev)
	}))
	s.Start()
	s.Submit('K', 10*time.Millisecond)
	s.Submit(NoSymbol, 10*time.Millisecond)

	require.Len(t, events, 2)
	assert.True(t, events[0].Success)
	assert.Equal(t, Symbol('K'), events[1].Symbol)
	assert.False(t, events[1].Success)
	assert.Equal(t, 50, events[1].Stat.Accuracy())
}

func TestStopCancelsAndKeepsStats(t *testing.T) {
	s, p := newTestScheduler(t, "K", Config{})
	s.Start()
	s.Submit('K', 10*time.Millisecond)
	require.Len(t, s.History(), 2)

	s.Stop()
	assert.Equal(t, 1, p.cancels)
	assert.Empty(t, s.History())
	assert.Equal(t, uint32(1), s.Stats('K').Successes)

	s.Stop()
	assert.Equal(t, 1, p.cancels, "stopping an idle scheduler cancels nothing")
}

func TestReplayRepresentsPending(t *testing.T) {
	s, p := newTestScheduler(t, "K", Config{})
	_, ok := s.Replay()
	assert.False(t, ok)

	s.Start()
	sel, ok := s.Replay()
	require.True(t, ok)
	assert.Equal(t, Symbol('K'), sel.Symbol)
	assert.Equal(t, []Symbol{'K', 'K'}, p.presented)
}

func TestSetAlphabetStopsCycle(t *testing.T) {
	s, _ := newTestScheduler(t, "K", Config{})
	s.Start()

	require.NoError(t, s.SetAlphabet(mustAlphabet(t, "0123")))
	assert.Equal(t, StateIdle, s.State())
	assert.ErrorIs(t, s.SetAlphabet(Alphabet{}), ErrEmptyAlphabet)

	sel := s.Start()
	assert.Equal(t, Symbol('0'), sel.Symbol)
}

func TestResetStatsNotifiesObservers(t *testing.T) {
	var events []StatEvent
	s, _ := newTestScheduler(t, "KM", Config{}, WithObserver(func(ev StatEvent) {
		events = append(events, ev)
	}))
	s.Start()
	s.Submit('K', 10*time.Millisecond)
	events = nil

	s.ResetStats()
	assert.Equal(t, SymbolStat{}, s.Stats('K'))
	require.Len(t, events, 1)
	assert.Equal(t, StatEvent{Symbol: 'K', Reset: true}, events[0])
	assert.Equal(t, 0, events[0].Stat.Accuracy())
}

func TestSetRegistrySwapsStats(t *testing.T) {
	s, p := newTestScheduler(t, "KM", Config{})
	s.Start()
	s.Submit('K', 10*time.Millisecond)

	other := registryWith(map[Symbol]SymbolStat{'K': {Attempts: 9, Successes: 3}})
	s.SetRegistry(other)
	assert.Equal(t, StateIdle, s.State())
	assert.Equal(t, 1, p.cancels, "running cycle is cancelled")
	assert.Equal(t, SymbolStat{Attempts: 9, Successes: 3}, s.Stats('K'))
	assert.Same(t, other, s.Registry())

	s.SetRegistry(nil)
	assert.Empty(t, s.Registry().Snapshot())
}

func TestDeterministicUnderFixedSeed(t *testing.T) {
	stats := map[Symbol]SymbolStat{
		'K': {Attempts: 40, Successes: 30},
		'M': {Attempts: 40, Successes: 36},
		'R': {Attempts: 40, Successes: 20},
		'S': {Attempts: 40, Successes: 39},
		'U': {Attempts: 40, Successes: 10},
	}
	run := func() []Symbol {
		s, p := newTestScheduler(t, "KMRSU", Config{EmphasizeWeak: true},
			WithRegistry(registryWith(stats)), WithSeed(99))
		s.Start()
		for i := 0; i < 50; i++ {
			keyed := NoSymbol
			if i%3 != 0 {
				pending, _ := s.Pending()
				keyed = pending
			}
			s.Submit(keyed, 100*time.Millisecond)
		}
		return p.presented
	}
	first := run()
	second := run()
	assert.Len(t, first, 51)
	assert.Equal(t, first, second)
}
