package repository

import (
	"context"

	"github.com/eslsoft/kyoshi/internal/entity"
)

// LearnerRepository persists durable curriculum position and completions.
type LearnerRepository interface {
	// Profile returns (nil, nil) for chats that have never started a lesson.
	Profile(ctx context.Context, chatID string) (*entity.LearnerProfile, error)
	SaveProfile(ctx context.Context, profile *entity.LearnerProfile) error

	RecordCompletion(ctx context.Context, completion *entity.LessonCompletion) error
	Completions(ctx context.Context, chatID string, page Pagination) ([]entity.LessonCompletion, error)
}
