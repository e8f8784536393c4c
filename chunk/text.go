package chunk

import (
	"strings"
	"unicode"
)

// Sentence-ending runes preferred as cut points when a single line
// exceeds the span budget.
var sentenceEnders = map[rune]bool{
	'。': true, '！': true, '？': true,
	'.': true, '!': true, '?': true,
	'\n': true,
}

// normalizeText collapses whitespace runs to single spaces and trims the ends.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// splitOversized cuts text into pieces that each fit the budget under the
// given measure. Cuts prefer the last sentence boundary in the fitting
// window, falling back to a hard cut when no boundary lands in the window's
// second half.
func splitOversized(text string, budget int, measure func(string) int) []string {
	if budget <= 0 {
		budget = 1
	}
	if measure(text) <= budget {
		return []string{text}
	}

	runes := []rune(text)
	var pieces []string
	for len(runes) > 0 {
		window := fitWindow(runes, budget, measure)
		if window >= len(runes) {
			if piece := strings.TrimSpace(string(runes)); piece != "" {
				pieces = append(pieces, piece)
			}
			break
		}

		cut := window
		if idx := lastBoundary(runes[:window]); idx >= window/2 {
			cut = idx + 1
		}

		if piece := strings.TrimSpace(string(runes[:cut])); piece != "" {
			pieces = append(pieces, piece)
		}
		runes = runes[cut:]
		for len(runes) > 0 && unicode.IsSpace(runes[0]) {
			runes = runes[1:]
		}
	}
	return pieces
}

// fitWindow returns the largest rune count whose prefix fits the budget.
// Always at least 1 so splitting makes progress.
func fitWindow(runes []rune, budget int, measure func(string) int) int {
	lo, hi := 1, len(runes)
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if measure(string(runes[:mid])) <= budget {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// lastBoundary returns the index of the last sentence-ending rune, or -1.
func lastBoundary(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if sentenceEnders[runes[i]] {
			return i
		}
	}
	return -1
}
