package entity

import "strings"

// ContentType identifies which curriculum section an item belongs to.
type ContentType string

const (
	ContentVocabulary ContentType = "vocabulary"
	ContentGrammar    ContentType = "grammar"
	ContentKanji      ContentType = "kanji"
)

// ParseContentType converts an arbitrary string into a supported ContentType.
func ParseContentType(s string) ContentType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vocabulary", "vocab":
		return ContentVocabulary
	case "grammar":
		return ContentGrammar
	case "kanji":
		return ContentKanji
	default:
		return ""
	}
}

// ItemRef is a lightweight (id, type) handle to a curriculum item.
type ItemRef struct {
	ID   string      `json:"id"`
	Type ContentType `json:"type"`
}

// NormalizeAnswer prepares free-text input for comparison: trim + lowercase.
func NormalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
