// apps/go-server/internal/words/words.go
//
// Word handling shared by the room and daily modes.
//
// Responsibilities:
//   - Fold player names to a canonical, case-insensitive key.
//   - Lowercase word tokens without changing their letter count.
//   - Parse the comma-separated word lists clients submit.
//   - Score a single word with the classic length-based payout table.
//
// Scoring table (effective length after collapsing every "qu" to one unit):
//   ≤2 → 0, 3–4 → 1, 5 → 2, 6 → 3, 7 → 5, ≥8 → 11
//
// Notes:
//   • Word validity (is it on the board, is it in the dictionary) is checked
//     client-side; the server trusts the submitted tokens.
//   • Names use Unicode case folding, so "STRASSE" and "straße" are one player.
//     Words are only lowercased: folding "ß" to "ss" would add a letter.

package words

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// Separator splits a submitted word list.
const Separator = ","

// Fold returns the canonical key for a name or word: trimmed and case-folded.
// A new Caser is built per call; Casers are not safe for concurrent use.
func Fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// Lower returns a word token trimmed and lowercased.
func Lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ParseList splits a comma-separated submission into lowercased tokens.
//
// Rules:
//   - Each token is trimmed and lowercased.
//   - Empty tokens ("cat,,dog", "cat,") are dropped.
//   - A token repeated within the same list keeps only its first occurrence.
//   - An empty input yields an empty (non-nil) slice.
func ParseList(csv string) []string {
	out := []string{}
	if strings.TrimSpace(csv) == "" {
		return out
	}
	seen := make(map[string]struct{})
	for _, raw := range strings.Split(csv, Separator) {
		w := Lower(raw)
		if w == "" {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// EffectiveLength counts letters with every "qu" collapsed to a single unit,
// matching a board where Qu occupies one die face.
func EffectiveLength(word string) int {
	w := strings.ReplaceAll(Lower(word), "qu", "q")
	return utf8.RuneCountInString(w)
}

// Score returns the points a word is worth on its own.
func Score(word string) int {
	switch n := EffectiveLength(word); {
	case n <= 2:
		return 0
	case n <= 4:
		return 1
	case n == 5:
		return 2
	case n == 6:
		return 3
	case n == 7:
		return 5
	default:
		return 11
	}
}

// Total sums Score over a list of words.
func Total(list []string) int {
	total := 0
	for _, w := range list {
		total += Score(w)
	}
	return total
}
