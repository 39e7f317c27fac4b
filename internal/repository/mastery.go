package repository

import (
	"context"

	"github.com/eslsoft/kyoshi/internal/entity"
)

// MasteryRepository persists per-item correctness history.
type MasteryRepository interface {
	Get(ctx context.Context, chatID, itemID string) (*entity.ItemMastery, error)
	Upsert(ctx context.Context, chatID string, m *entity.ItemMastery) error
	List(ctx context.Context, chatID string, page Pagination) ([]entity.ItemMastery, error)
	// ListNeedingReview returns items introduced before targetDay that are
	// flagged for review or sit below the given mastery level.
	ListNeedingReview(ctx context.Context, chatID string, targetDay, belowLevel int) ([]entity.ItemMastery, error)
}

// WordProgressRepository persists exposure history for ranked catalog words.
type WordProgressRepository interface {
	Get(ctx context.Context, chatID, word string) (*entity.WordProgress, error)
	Upsert(ctx context.Context, chatID string, p *entity.WordProgress) error
	ListByStatus(ctx context.Context, chatID string, status entity.WordStatus) ([]entity.WordProgress, error)
	ListAll(ctx context.Context, chatID string) ([]entity.WordProgress, error)
}
