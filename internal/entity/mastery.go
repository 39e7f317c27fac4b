package entity

import "time"

// MasteryLevelMax bounds the 0..5 mastery scale.
const MasteryLevelMax = 5

// ItemMastery is the per-item correctness history for one learner. It is
// mutated only by the evaluator's outcome handler.
type ItemMastery struct {
	ItemID         string      `json:"item_id"`
	ItemType       ContentType `json:"item_type"`
	CorrectCount   int         `json:"correct_count"`
	IncorrectCount int         `json:"incorrect_count"`
	MasteryLevel   int         `json:"mastery_level"`
	LastSeen       time.Time   `json:"last_seen"`
	LastCorrect    *time.Time  `json:"last_correct,omitempty"`
	NeedsReview    bool        `json:"needs_review"`
	DayIntroduced  int         `json:"day_introduced"`
}

// Ref returns the (id, type) handle of the tracked item.
func (m *ItemMastery) Ref() ItemRef {
	return ItemRef{ID: m.ItemID, Type: m.ItemType}
}
