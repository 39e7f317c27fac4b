package usecase

import (
	"context"

	"github.com/eslsoft/kyoshi/internal/entity"
)

// ChecklistAction is the structural instruction a content generator attaches
// to its reply. The checklist engine reacts to the action alone; it performs
// no semantic evaluation of the conversation itself.
type ChecklistAction string

const (
	ActionNone     ChecklistAction = "none"
	ActionComplete ChecklistAction = "complete"
	ActionInsert   ChecklistAction = "insert"
)

// InsertItem describes a clarification step the generator wants added right
// after the current one.
type InsertItem struct {
	DisplayText string `json:"display_text"`
	Content     string `json:"content"`
}

// GeneratorInput carries everything the generator may condition on for one
// turn. ChecklistText is the rendered plain-text status block; it is LLM
// context only and never shown to the learner.
type GeneratorInput struct {
	Checklist      *entity.Checklist
	ChecklistText  string
	RecentMessages []entity.ChatMessage
	StudentInput   string
	CurrentContent *entity.ItemContent
}

// GeneratorReply is the generator's natural-language message plus the
// structural action the engine should apply.
type GeneratorReply struct {
	Message    string          `json:"message"`
	Action     ChecklistAction `json:"checklist_action"`
	InsertItem *InsertItem     `json:"insert_item,omitempty"`
}

// ContentGenerator is the LLM-backed collaborator that phrases tutoring
// replies and decides checklist actions.
type ContentGenerator interface {
	Respond(ctx context.Context, in GeneratorInput) (*GeneratorReply, error)
}
