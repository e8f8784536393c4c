package openai

import "strings"

// asciiPunct and cjkPunct cover the punctuation seen in the bilingual
// dialogue corpus. Stripping both keeps prompts consistent regardless of
// which script the turn was written in.
const (
	asciiPunct = ".,!?;:\"'()[]{}—–-"
	cjkPunct   = "。，！？；：、「」『』（）【】《》…·"
)

// scrubString removes punctuation and collapses runs of whitespace so label
// prompts see clean span text.
func scrubString(s string) string {
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(asciiPunct, r) || strings.ContainsRune(cjkPunct, r) {
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// isLetter returns true if the rune is an ASCII letter.
func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
