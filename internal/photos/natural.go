package photos

import (
	"sort"
	"strings"
	"unicode"
)

// chunk is a run of digits or non-digits from a file name
type chunk struct {
	text    string
	digits  bool
	trimmed string // digits without leading zeros
}

func chunks(s string) []chunk {
	var out []chunk
	start := 0
	runes := []rune(s)
	for i := 1; i <= len(runes); i++ {
		if i == len(runes) || unicode.IsDigit(runes[i]) != unicode.IsDigit(runes[start]) {
			text := string(runes[start:i])
			c := chunk{text: text, digits: unicode.IsDigit(runes[start])}
			if c.digits {
				c.trimmed = strings.TrimLeft(text, "0")
			}
			out = append(out, c)
			start = i
		}
	}
	return out
}

// NaturalLess orders names so that embedded numbers compare by value:
// "img2.jpg" sorts before "img10.jpg".
func NaturalLess(a, b string) bool {
	ca, cb := chunks(a), chunks(b)
	for i := 0; i < len(ca) && i < len(cb); i++ {
		x, y := ca[i], cb[i]
		switch {
		case x.digits && y.digits:
			if len(x.trimmed) != len(y.trimmed) {
				return len(x.trimmed) < len(y.trimmed)
			}
			if x.trimmed != y.trimmed {
				return x.trimmed < y.trimmed
			}
			// Same value, fewer leading zeros first
			if len(x.text) != len(y.text) {
				return len(x.text) < len(y.text)
			}
		case x.digits != y.digits:
			// Digits sort before letters
			return x.digits
		default:
			if x.text != y.text {
				return x.text < y.text
			}
		}
	}
	return len(ca) < len(cb)
}

// SortNatural sorts names in place with NaturalLess
func SortNatural(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		return NaturalLess(names[i], names[j])
	})
}
