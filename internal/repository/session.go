package repository

import (
	"context"

	"github.com/eslsoft/kyoshi/internal/entity"
)

// SessionRepository stores per-chat conversational state: the active lesson
// snapshot, the day's checklist, and recent messages. Absent state is
// reported as (nil, nil), never as an error; core operations translate it
// into their idle sentinel.
type SessionRepository interface {
	LessonState(ctx context.Context, chatID string) (*entity.LessonState, error)
	SaveLessonState(ctx context.Context, state *entity.LessonState) error
	ClearLessonState(ctx context.Context, chatID string) error

	Checklist(ctx context.Context, chatID string) (*entity.Checklist, error)
	SaveChecklist(ctx context.Context, checklist *entity.Checklist) error
	ClearChecklist(ctx context.Context, chatID string) error

	AppendMessage(ctx context.Context, chatID string, msg entity.ChatMessage) error
	RecentMessages(ctx context.Context, chatID string, limit int) ([]entity.ChatMessage, error)

	// MarkTurn records a turn id and reports whether it was already seen,
	// backing the at-least-once delivery guard in front of the core.
	MarkTurn(ctx context.Context, chatID, turnID string) (seen bool, err error)
}
