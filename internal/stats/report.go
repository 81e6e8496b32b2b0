package stats

import (
	"context"

	"github.com/verte-zerg/morsedrill/internal/model"
	"github.com/verte-zerg/morsedrill/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Sessions         []model.SessionAggregate
	WindowSessionIDs []string
	SymbolAggsWindow []model.SymbolAggregate
	Totals           []model.SymbolTotals
	Weakest          []string
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig, weakTop int) (Report, error) {
	sessions, err := st.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}

	windowIDs := lastSessionIDs(sessions, cfg.CurveWindow)
	aggs, err := st.ListSymbolAggregatesForSessions(ctx, windowIDs)
	if err != nil {
		return Report{}, err
	}
	totals, err := st.LoadTotals(ctx, cfg.Course)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Sessions:         sessions,
		WindowSessionIDs: windowIDs,
		SymbolAggsWindow: aggs,
		Totals:           totals,
		Weakest:          SelectWeakSymbols(aggs, weakTop),
	}, nil
}

func lastSessionIDs(sessions []model.SessionAggregate, window int) []string {
	if window > 0 && len(sessions) > window {
		sessions = sessions[len(sessions)-window:]
	}
	ids := make([]string, len(sessions))
	for i, s := range sessions {
		ids[i] = s.SessionID
	}
	return ids
}
