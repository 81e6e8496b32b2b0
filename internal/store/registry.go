package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/verte-zerg/morsedrill/internal/drill"
	"github.com/verte-zerg/morsedrill/internal/model"
)

// LoadRegistry restores the drill statistics of a course.
func (s *Store) LoadRegistry(ctx context.Context, course string) (*drill.Registry, error) {
	totals, err := s.LoadTotals(ctx, course)
	if err != nil {
		return nil, fmt.Errorf("failed to load symbol totals: %w", err)
	}
	stats := make(map[drill.Symbol]drill.SymbolStat, len(totals))
	for _, t := range totals {
		runes := []rune(t.Symbol)
		if len(runes) != 1 || t.Attempts < 0 || t.Successes < 0 {
			continue
		}
		stats[drill.ParseSymbol(runes[0])] = drill.SymbolStat{
			Attempts:  uint32(t.Attempts),
			Successes: uint32(t.Successes),
		}
	}
	reg := drill.NewRegistry()
	reg.Load(stats)
	return reg, nil
}

// SaveRegistry persists the drill statistics of a course.
func (s *Store) SaveRegistry(ctx context.Context, course string, reg *drill.Registry) error {
	snap := reg.Snapshot()
	totals := make([]model.SymbolTotals, 0, len(snap))
	for sym, st := range snap {
		totals = append(totals, model.SymbolTotals{
			Symbol:    sym.String(),
			Attempts:  int(st.Attempts),
			Successes: int(st.Successes),
		})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Symbol < totals[j].Symbol })
	if err := s.SaveTotals(ctx, course, totals); err != nil {
		return fmt.Errorf("failed to save symbol totals: %w", err)
	}
	return nil
}
