// Package romaji provides tolerant comparison helpers for romanized Japanese.
//
// Learners type romaji inconsistently: Hepburn long vowels ("toukyou"),
// collapsed vowels ("tokyo"), stray hyphens and apostrophes ("jun'ichi").
// Normalize maps these variants onto a single canonical form so the grading
// tier can compare them with plain string equality.
package romaji

import "strings"

var longVowels = strings.NewReplacer(
	"ou", "o",
	"oo", "o",
	"uu", "u",
)

var separators = strings.NewReplacer(
	" ", "",
	"\t", "",
	"-", "",
	"'", "",
	"’", "",
)

// Normalize lowercases the input, strips whitespace, hyphens and apostrophes,
// and collapses long-vowel spellings (ou→o, oo→o, uu→u).
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = separators.Replace(s)
	// Replace repeatedly so collapsed pairs created by a prior pass
	// ("oou" -> "oo") are folded as well.
	for {
		next := longVowels.Replace(s)
		if next == s {
			return s
		}
		s = next
	}
}

// Equivalent reports whether two romaji strings normalize to the same form.
func Equivalent(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
