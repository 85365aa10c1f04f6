// Package words applies configured custom-word corrections to recognized text.
package words

import (
	"strings"
	"unicode"
)

// Correct replaces tokens that closely match a configured custom word,
// preserving surrounding punctuation. threshold is the minimum normalized
// similarity in [0,1]; a non-positive threshold disables correction.
func Correct(text string, custom []string, threshold float64) string {
	if text == "" || len(custom) == 0 || threshold <= 0 {
		return text
	}

	fields := strings.Fields(text)
	for i, field := range fields {
		prefix, core, suffix := splitPunctuation(field)
		if core == "" {
			continue
		}
		if replacement, ok := bestMatch(core, custom, threshold); ok {
			fields[i] = prefix + replacement + suffix
		}
	}
	return strings.Join(fields, " ")
}

// bestMatch returns the custom word with the highest similarity to token
// at or above threshold. Exact case-insensitive matches are corrected too,
// so configured casing wins (e.g. "github" -> "GitHub").
func bestMatch(token string, custom []string, threshold float64) (string, bool) {
	lowered := strings.ToLower(token)
	best := ""
	bestScore := 0.0
	for _, word := range custom {
		candidate := strings.TrimSpace(word)
		if candidate == "" {
			continue
		}
		score := similarity(lowered, strings.ToLower(candidate))
		if score >= threshold && score > bestScore {
			best = candidate
			bestScore = score
		}
	}
	if best == "" || best == token {
		return "", false
	}
	return best, true
}

// similarity is 1 - levenshtein(a,b)/max(len(a),len(b)) over runes.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	ra := []rune(a)
	rb := []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein(ra, rb))/float64(longest)
}

func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// splitPunctuation separates leading and trailing punctuation from a token.
func splitPunctuation(token string) (prefix, core, suffix string) {
	runes := []rune(token)
	start := 0
	for start < len(runes) && !unicode.IsLetter(runes[start]) && !unicode.IsDigit(runes[start]) {
		start++
	}
	end := len(runes)
	for end > start && !unicode.IsLetter(runes[end-1]) && !unicode.IsDigit(runes[end-1]) {
		end--
	}
	return string(runes[:start]), string(runes[start:end]), string(runes[end:])
}
