// Package morse holds the International Morse code table and the built-in courses.
package morse

import (
	"sort"
	"strings"

	"github.com/verte-zerg/morsedrill/internal/drill"
)

// KochOrder is the classic Koch method curriculum, easiest to learn first.
const KochOrder = "KMRSUAPTLOWI.NJEF0Y,VG5/Q9ZH38B?427C1D6X"

var codes = map[rune]string{
	'A': ".-", 'B': "-...", 'C': "-.-.", 'D': "-..", 'E': ".", 'F': "..-.",
	'G': "--.", 'H': "....", 'I': "..", 'J': ".---", 'K': "-.-", 'L': ".-..",
	'M': "--", 'N': "-.", 'O': "---", 'P': ".--.", 'Q': "--.-", 'R': ".-.",
	'S': "...", 'T': "-", 'U': "..-", 'V': "...-", 'W': ".--", 'X': "-..-",
	'Y': "-.--", 'Z': "--..",
	'0': "-----", '1': ".----", '2': "..---", '3': "...--", '4': "....-",
	'5': ".....", '6': "-....", '7': "--...", '8': "---..", '9': "----.",
	'.': ".-.-.-", ',': "--..--", '?': "..--..", '/': "-..-.", '=': "-...-",
}

var courses = map[string]string{
	"koch":    KochOrder,
	"letters": "ETIANMSURWDKGOHVFLPJBXCYZQ",
	"digits":  "0123456789",
}

// Code returns the dot/dash pattern for sym.
func Code(sym drill.Symbol) (string, bool) {
	code, ok := codes[rune(sym)]
	return code, ok
}

// Pattern renders sym as spaced dots and dashes, e.g. "- · -".
func Pattern(sym drill.Symbol) string {
	code, ok := Code(sym)
	if !ok {
		return "?"
	}
	parts := make([]string, 0, len(code))
	for _, r := range code {
		if r == '.' {
			parts = append(parts, "·")
		} else {
			parts = append(parts, "—")
		}
	}
	return strings.Join(parts, " ")
}

// Course returns the curriculum of a built-in course by name.
func Course(name string) (string, bool) {
	order, ok := courses[strings.ToLower(strings.TrimSpace(name))]
	return order, ok
}

// Courses lists the built-in course names.
func Courses() []string {
	names := make([]string, 0, len(courses))
	for name := range courses {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate reports the symbols of alphabet that have no Morse code.
func Validate(alphabet drill.Alphabet) []drill.Symbol {
	var missing []drill.Symbol
	for _, sym := range alphabet.Symbols() {
		if _, ok := Code(sym); !ok {
			missing = append(missing, sym)
		}
	}
	return missing
}
