package tui

import (
	"time"

	"github.com/verte-zerg/morsedrill/internal/drill"
	"github.com/verte-zerg/morsedrill/internal/morse"
)

// Presenter shows the Morse pattern of the current symbol. It stands in for
// audio playback: the pattern is visible from the moment it is presented.
type Presenter struct {
	now         func() time.Time
	symbol      drill.Symbol
	pattern     string
	presentedAt time.Time
}

// NewPresenter returns a presenter using now as its clock; nil means time.Now.
func NewPresenter(now func() time.Time) *Presenter {
	if now == nil {
		now = time.Now
	}
	return &Presenter{now: now}
}

// Present implements drill.Presenter.
func (p *Presenter) Present(sym drill.Symbol) time.Time {
	p.symbol = sym
	p.pattern = morse.Pattern(sym)
	p.presentedAt = p.now()
	return p.presentedAt
}

// Cancel implements drill.Canceler by blanking the pattern.
func (p *Presenter) Cancel() {
	p.symbol = drill.NoSymbol
	p.pattern = ""
}

// Pattern returns what is currently shown, or "" when nothing is.
func (p *Presenter) Pattern() string {
	return p.pattern
}
