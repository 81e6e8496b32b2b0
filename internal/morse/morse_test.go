package morse

import (
	"testing"

	"github.com/verte-zerg/morsedrill/internal/drill"
)

func TestCoursesHaveCodes(t *testing.T) {
	for _, name := range Courses() {
		order, ok := Course(name)
		if !ok {
			t.Fatalf("course %q not found", name)
		}
		alphabet, err := drill.NewAlphabet(order)
		if err != nil {
			t.Fatalf("course %q: %v", name, err)
		}
		if alphabet.Len() != len([]rune(order)) {
			t.Fatalf("course %q has duplicate symbols", name)
		}
		if missing := Validate(alphabet); len(missing) > 0 {
			t.Fatalf("course %q has symbols without code: %v", name, missing)
		}
	}
}

func TestPattern(t *testing.T) {
	if got := Pattern(drill.ParseSymbol('k')); got != "— · —" {
		t.Fatalf("unexpected pattern for K: %q", got)
	}
	if got := Pattern('#'); got != "?" {
		t.Fatalf("unexpected pattern for unknown symbol: %q", got)
	}
}

func TestCourseLookupIsCaseInsensitive(t *testing.T) {
	if order, ok := Course(" Koch "); !ok || order != KochOrder {
		t.Fatalf("expected koch course, got %q %v", order, ok)
	}
	if _, ok := Course("runes"); ok {
		t.Fatalf("unexpected course")
	}
}
