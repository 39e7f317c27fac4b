package repository

import (
	"context"

	"github.com/eslsoft/kyoshi/internal/entity"
)

// Catalog is the read-only curriculum lookup every engine component consumes.
// Day and Lesson return (nil, nil) for unknown numbers; callers surface an
// apology rather than failing.
type Catalog interface {
	Day(ctx context.Context, dayNumber int) (*entity.DayContent, error)
	Lesson(ctx context.Context, lessonNumber int) (*entity.LessonDefinition, error)
	// WordList returns the frequency-ranked word list in rank order.
	WordList(ctx context.Context) ([]entity.RankedWord, error)
	// MaxDay is the highest day number present in the curriculum.
	MaxDay(ctx context.Context) (int, error)
}
