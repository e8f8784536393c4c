// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import "strings"

// repairJSON fixes the malformations small chat models produce most often:
// object keys missing their opening quote (`, label":` instead of
// `, "label":`), and a trailing comma before a closing brace or bracket.
func repairJSON(s string) string {
	runes := []rune(s)
	var out strings.Builder
	out.Grow(len(s) + 16)

	for i := 0; i < len(runes); {
		ch := runes[i]
		if ch == ',' && danglingComma(runes, i) {
			i++
			continue
		}
		out.WriteRune(ch)
		i++
		if ch == '{' || ch == ',' {
			i = emitKey(runes, i, &out)
		}
	}
	return out.String()
}

// danglingComma reports whether only whitespace separates the comma at i
// from a closing brace or bracket.
func danglingComma(runes []rune, i int) bool {
	for j := i + 1; j < len(runes); j++ {
		switch runes[j] {
		case ' ', '\t', '\n', '\r':
		case '}', ']':
			return true
		default:
			return false
		}
	}
	return false
}

// emitKey copies the whitespace after an opening brace or comma and, when the
// next token is an identifier followed by `":`, restores the key's missing
// opening quote.
func emitKey(runes []rune, i int, out *strings.Builder) int {
	for i < len(runes) && isSpace(runes[i]) {
		out.WriteRune(runes[i])
		i++
	}
	if i >= len(runes) || !isLetter(runes[i]) {
		return i
	}

	end := i
	for end < len(runes) && (isLetter(runes[end]) || runes[end] == '_') {
		end++
	}
	if end+1 < len(runes) && runes[end] == '"' && runes[end+1] == ':' {
		out.WriteRune('"')
	}
	out.WriteString(string(runes[i:end]))
	return end
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
