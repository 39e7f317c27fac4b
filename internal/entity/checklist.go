package entity

// ChecklistItemType distinguishes the kinds of steps in a lesson plan.
type ChecklistItemType string

const (
	ChecklistTeach    ChecklistItemType = "teach"
	ChecklistPractice ChecklistItemType = "practice"
	ChecklistClarify  ChecklistItemType = "clarify"
	ChecklistReview   ChecklistItemType = "review"
)

// ChecklistItemStatus tracks a step through the lesson.
type ChecklistItemStatus string

const (
	StatusPending  ChecklistItemStatus = "pending"
	StatusCurrent  ChecklistItemStatus = "current"
	StatusComplete ChecklistItemStatus = "complete"
)

// ChecklistItem is one ordered step of a lesson day's plan.
type ChecklistItem struct {
	ID              string              `json:"id"`
	Type            ChecklistItemType   `json:"type"`
	Status          ChecklistItemStatus `json:"status"`
	ContentType     ContentType         `json:"content_type,omitempty"`
	ContentID       string              `json:"content_id,omitempty"`
	DisplayText     string              `json:"display_text"`
	SourceDayNumber int                 `json:"source_day_number,omitempty"`
	IsInserted      bool                `json:"is_inserted,omitempty"`
	InsertedContent string              `json:"inserted_content,omitempty"`
}

// Checklist is the ordered plan for one lesson day.
//
// Invariants: exactly one item has StatusCurrent unless the checklist is
// complete (CurrentIndex >= len(Items)); CompletedCount equals the number of
// StatusComplete items; TotalCount always equals len(Items) and is recomputed
// after insertion.
type Checklist struct {
	ChatID         string          `json:"chat_id"`
	DayNumber      int             `json:"day_number"`
	Title          string          `json:"title"`
	Items          []ChecklistItem `json:"items"`
	CurrentIndex   int             `json:"current_index"`
	CompletedCount int             `json:"completed_count"`
	TotalCount     int             `json:"total_count"`
}

// IsComplete reports whether every step has been worked through.
func (c *Checklist) IsComplete() bool {
	return c.CurrentIndex >= len(c.Items)
}

// CurrentItem returns the in-progress step, or nil once complete.
func (c *Checklist) CurrentItem() *ChecklistItem {
	if c.IsComplete() {
		return nil
	}
	return &c.Items[c.CurrentIndex]
}

// Clone returns a deep copy so transition functions can operate on an
// isolated snapshot (persistence of the result is the caller's step).
func (c *Checklist) Clone() *Checklist {
	cp := *c
	cp.Items = make([]ChecklistItem, len(c.Items))
	copy(cp.Items, c.Items)
	return &cp
}
