package entity

import "strings"

// VocabularyItem is one word or phrase taught on a lesson day.
type VocabularyItem struct {
	ID       string `json:"id" yaml:"id"`
	Japanese string `json:"japanese" yaml:"japanese"`
	Romaji   string `json:"romaji" yaml:"romaji"`
	English  string `json:"english" yaml:"english"`
	Category string `json:"category,omitempty" yaml:"category,omitempty"`
}

// GrammarPattern is one grammar point taught on a lesson day.
type GrammarPattern struct {
	ID      string `json:"id" yaml:"id"`
	Pattern string `json:"pattern" yaml:"pattern"`
	Meaning string `json:"meaning" yaml:"meaning"`
	Usage   string `json:"usage,omitempty" yaml:"usage,omitempty"`
	Example string `json:"example,omitempty" yaml:"example,omitempty"`
}

// KanjiItem is one character taught on a lesson day.
type KanjiItem struct {
	ID       string   `json:"id" yaml:"id"`
	Kanji    string   `json:"kanji" yaml:"kanji"`
	Onyomi   []string `json:"onyomi,omitempty" yaml:"onyomi,omitempty"`
	Kunyomi  []string `json:"kunyomi,omitempty" yaml:"kunyomi,omitempty"`
	Meanings []string `json:"meanings" yaml:"meanings"`
}

// DayContent is the immutable curriculum content for a single lesson day.
type DayContent struct {
	DayNumber  int              `json:"day_number" yaml:"day"`
	Title      string           `json:"title" yaml:"title"`
	Vocabulary []VocabularyItem `json:"vocabulary" yaml:"vocabulary"`
	Grammar    []GrammarPattern `json:"grammar" yaml:"grammar"`
	Kanji      []KanjiItem      `json:"kanji" yaml:"kanji"`
}

// LessonDefinition is the prerequisite-graph variant of a curriculum unit.
type LessonDefinition struct {
	LessonNumber  int    `json:"lesson_number" yaml:"lesson"`
	Title         string `json:"title" yaml:"title"`
	DayNumbers    []int  `json:"day_numbers" yaml:"days"`
	Prerequisites []int  `json:"prerequisites,omitempty" yaml:"prerequisites,omitempty"`
}

// RankedWord is one entry of the frequency-ranked word list used by the
// vocabulary-level spaced repetition scheduler.
type RankedWord struct {
	Rank    int    `json:"rank" yaml:"rank"`
	Word    string `json:"word" yaml:"word"`
	Reading string `json:"reading,omitempty" yaml:"reading,omitempty"`
	Meaning string `json:"meaning" yaml:"meaning"`
}

// ItemContent is a resolved curriculum item. Exactly one of the content
// pointers is set for vocabulary/grammar/kanji items; all are nil for
// structural checklist items (practice markers, clarifications).
type ItemContent struct {
	Ref        ItemRef
	Vocabulary *VocabularyItem
	Grammar    *GrammarPattern
	Kanji      *KanjiItem
}

// DisplayText returns a short human-readable label for the item.
func (c *ItemContent) DisplayText() string {
	switch {
	case c.Vocabulary != nil:
		return c.Vocabulary.Japanese + " (" + c.Vocabulary.English + ")"
	case c.Grammar != nil:
		return c.Grammar.Pattern
	case c.Kanji != nil:
		return c.Kanji.Kanji + " (" + strings.Join(c.Kanji.Meanings, ", ") + ")"
	default:
		return string(c.Ref.Type)
	}
}

// ItemRefs returns (id, type) handles for every item of the day, vocabulary
// first, then grammar, then kanji.
func (d *DayContent) ItemRefs() []ItemRef {
	refs := make([]ItemRef, 0, len(d.Vocabulary)+len(d.Grammar)+len(d.Kanji))
	for _, v := range d.Vocabulary {
		refs = append(refs, ItemRef{ID: v.ID, Type: ContentVocabulary})
	}
	for _, g := range d.Grammar {
		refs = append(refs, ItemRef{ID: g.ID, Type: ContentGrammar})
	}
	for _, k := range d.Kanji {
		refs = append(refs, ItemRef{ID: k.ID, Type: ContentKanji})
	}
	return refs
}

// RefsOf returns the handles for one section of the day.
func (d *DayContent) RefsOf(t ContentType) []ItemRef {
	var refs []ItemRef
	switch t {
	case ContentVocabulary:
		for _, v := range d.Vocabulary {
			refs = append(refs, ItemRef{ID: v.ID, Type: ContentVocabulary})
		}
	case ContentGrammar:
		for _, g := range d.Grammar {
			refs = append(refs, ItemRef{ID: g.ID, Type: ContentGrammar})
		}
	case ContentKanji:
		for _, k := range d.Kanji {
			refs = append(refs, ItemRef{ID: k.ID, Type: ContentKanji})
		}
	}
	return refs
}

// Resolve looks up the full content behind a handle. It returns nil when the
// id does not exist on this day; callers treat that as a stale reference and
// skip the item rather than failing.
func (d *DayContent) Resolve(ref ItemRef) *ItemContent {
	switch ref.Type {
	case ContentVocabulary:
		for i := range d.Vocabulary {
			if d.Vocabulary[i].ID == ref.ID {
				return &ItemContent{Ref: ref, Vocabulary: &d.Vocabulary[i]}
			}
		}
	case ContentGrammar:
		for i := range d.Grammar {
			if d.Grammar[i].ID == ref.ID {
				return &ItemContent{Ref: ref, Grammar: &d.Grammar[i]}
			}
		}
	case ContentKanji:
		for i := range d.Kanji {
			if d.Kanji[i].ID == ref.ID {
				return &ItemContent{Ref: ref, Kanji: &d.Kanji[i]}
			}
		}
	}
	return nil
}
