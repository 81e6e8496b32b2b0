// Package model defines shared data structures.
package model

import "time"

// Config defines drill settings.
type Config struct {
	Course        string
	Alphabet      string
	Mastery       int
	MinTries      int
	MaxWeak       int
	EntireSet     bool
	EmphasizeWeak bool
	TimelyMs      int
	Seed          int64
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Course      string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// SessionStats captures a completed drill session.
type SessionStats struct {
	ID         string
	StartedAt  time.Time
	EndedAt    time.Time
	Course     string
	Alphabet   string
	Unlocked   int
	Correct    int
	Incorrect  int
	DurationMs int64
}

// SymbolStats stores per-symbol results for a session.
type SymbolStats struct {
	Symbol       string
	Correct      int
	Incorrect    int
	LatencySumMs int64
	LatencyCount int64
}

// SymbolTotals is the long-running attempt record of a symbol within a course.
type SymbolTotals struct {
	Symbol    string
	Attempts  int
	Successes int
}

// SymbolAggregate aggregates symbol stats across sessions.
type SymbolAggregate struct {
	Symbol       string
	Correct      int
	Incorrect    int
	LatencySumMs int64
	LatencyCount int64
}

// SessionAggregate summarizes a session for reporting.
type SessionAggregate struct {
	SessionID  string
	EndedAt    time.Time
	Correct    int
	Incorrect  int
	Unlocked   int
	DurationMs int64
}
