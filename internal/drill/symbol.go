// Package drill implements the adaptive symbol drill: per-symbol statistics,
// the curriculum working set, weighted selection and the request/response cycle.
package drill

import (
	"strings"
	"unicode"
)

// Symbol is one trainable character, always stored in upper case.
type Symbol rune

// NoSymbol marks a response where nothing was keyed.
const NoSymbol Symbol = 0

// ParseSymbol canonicalizes r into a Symbol.
func ParseSymbol(r rune) Symbol {
	return Symbol(unicode.ToUpper(r))
}

// String implements fmt.Stringer.
func (s Symbol) String() string {
	if s == NoSymbol {
		return ""
	}
	return string(rune(s))
}

// Alphabet is the ordered curriculum of symbols. The order is the unlock order.
type Alphabet struct {
	symbols []Symbol
	index   map[Symbol]int
}

// NewAlphabet builds an alphabet from s, keeping the first occurrence of each
// symbol and skipping whitespace.
func NewAlphabet(s string) (Alphabet, error) {
	a := Alphabet{index: map[Symbol]int{}}
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		sym := ParseSymbol(r)
		if _, ok := a.index[sym]; ok {
			continue
		}
		a.index[sym] = len(a.symbols)
		a.symbols = append(a.symbols, sym)
	}
	if len(a.symbols) == 0 {
		return Alphabet{}, ErrEmptyAlphabet
	}
	return a, nil
}

// Len returns the number of symbols.
func (a Alphabet) Len() int {
	return len(a.symbols)
}

// Symbols returns a copy of the symbols in curriculum order.
func (a Alphabet) Symbols() []Symbol {
	out := make([]Symbol, len(a.symbols))
	copy(out, a.symbols)
	return out
}

// Contains reports whether sym is part of the alphabet.
func (a Alphabet) Contains(sym Symbol) bool {
	_, ok := a.index[sym]
	return ok
}

// Index returns the curriculum position of sym, or -1.
func (a Alphabet) Index(sym Symbol) int {
	if i, ok := a.index[sym]; ok {
		return i
	}
	return -1
}

func (a Alphabet) String() string {
	var b strings.Builder
	for _, sym := range a.symbols {
		b.WriteRune(rune(sym))
	}
	return b.String()
}
