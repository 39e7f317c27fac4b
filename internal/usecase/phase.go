package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/eslsoft/kyoshi/internal/entity"
	"github.com/eslsoft/kyoshi/internal/repository"
)

// PhaseUsecase is the legacy lesson-sequencing strategy: a fixed-order walk
// through intro, teaching and practice phases ending in an assessment.
//
// Operations mutate the supplied state snapshot in place and never persist
// it; saving (or clearing) the snapshot afterwards is the caller's explicit
// step. Operations on an idle or missing state return ErrNoActiveLesson as a
// sentinel instead of failing.
type PhaseUsecase interface {
	StartLesson(ctx context.Context, chatID string, dayNumber int) (*entity.LessonState, error)
	AdvancePhase(ctx context.Context, state *entity.LessonState) error
	// CurrentTeachingItem returns the item under the cursor, advancing
	// through empty phases until an item is found or the lesson completes
	// (nil, nil).
	CurrentTeachingItem(ctx context.Context, state *entity.LessonState) (*entity.ItemContent, error)
	AdvanceToNextItem(ctx context.Context, state *entity.LessonState) (*entity.ItemContent, error)
}

// NewPhaseUsecase wires the catalog and review selector.
func NewPhaseUsecase(catalog repository.Catalog, mastery MasteryUsecase) PhaseUsecase {
	return &phaseUsecase{catalog: catalog, mastery: mastery, clock: time.Now}
}

type phaseUsecase struct {
	catalog repository.Catalog
	mastery MasteryUsecase
	clock   func() time.Time
}

func (u *phaseUsecase) StartLesson(ctx context.Context, chatID string, dayNumber int) (*entity.LessonState, error) {
	if chatID == "" {
		return nil, entity.ErrInvalidChatID
	}
	day, err := u.catalog.Day(ctx, dayNumber)
	if err != nil {
		return nil, fmt.Errorf("load day %d: %w", dayNumber, err)
	}
	if day == nil {
		return nil, entity.ErrDayNotFound
	}

	now := u.clock()
	state := &entity.LessonState{
		ChatID:    chatID,
		DayNumber: dayNumber,
		Phase:     entity.PhaseIntro,
		StartedAt: now,
		UpdatedAt: now,
	}

	// Weak items from earlier days are mixed into practice turns and drive
	// the post-assessment review phase.
	candidates, err := u.mastery.ReviewCandidates(ctx, chatID, dayNumber, maxPendingReviewItems)
	if err != nil {
		return nil, fmt.Errorf("select review candidates: %w", err)
	}
	for _, c := range candidates {
		if c.DayIntroduced == dayNumber {
			continue
		}
		state.PendingReviewItems = append(state.PendingReviewItems, c.Ref())
	}
	return state, nil
}

// maxPendingReviewItems caps how many weak items a session drags along.
const maxPendingReviewItems = 5

func (u *phaseUsecase) AdvancePhase(ctx context.Context, state *entity.LessonState) error {
	if !state.Active() {
		return entity.ErrNoActiveLesson
	}
	day, err := u.catalog.Day(ctx, state.DayNumber)
	if err != nil {
		return fmt.Errorf("load day %d: %w", state.DayNumber, err)
	}
	if day == nil {
		return entity.ErrDayNotFound
	}

	next, _ := state.Phase.Next()
	if next.IsKanji() && len(day.Kanji) == 0 {
		next = entity.PhaseAssessment
	}

	state.Phase = next
	// The cursor restarts for every phase; item lists differ in length
	// across phases and a carried-over index would silently skip items.
	// Attempt counters restart too: each practice phase grades against its
	// own target, and the assessment score counts assessment answers only.
	state.CurrentItemIndex = 0
	state.CorrectThisSession = 0
	state.IncorrectThisSession = 0
	state.CurrentItems = u.itemsForPhase(day, next, state)
	state.UpdatedAt = u.clock()
	return nil
}

func (u *phaseUsecase) itemsForPhase(day *entity.DayContent, phase entity.Phase, state *entity.LessonState) []entity.ItemRef {
	switch {
	case phase == entity.PhaseReview:
		return state.PendingReviewItems
	case phase == entity.PhaseAssessment:
		return day.ItemRefs()
	case phase.ContentType() != "":
		return day.RefsOf(phase.ContentType())
	default:
		return nil
	}
}

func (u *phaseUsecase) CurrentTeachingItem(ctx context.Context, state *entity.LessonState) (*entity.ItemContent, error) {
	if state == nil || state.Phase == entity.PhaseIdle {
		return nil, entity.ErrNoActiveLesson
	}

	for {
		if state.Phase == entity.PhaseComplete {
			return nil, nil
		}
		day, err := u.catalog.Day(ctx, state.DayNumber)
		if err != nil {
			return nil, fmt.Errorf("load day %d: %w", state.DayNumber, err)
		}
		if day == nil {
			return nil, entity.ErrDayNotFound
		}

		for state.CurrentItemIndex < len(state.CurrentItems) {
			ref := state.CurrentItems[state.CurrentItemIndex]
			if content := day.Resolve(ref); content != nil {
				return content, nil
			}
			// Stale reference; skip rather than fail.
			state.CurrentItemIndex++
		}

		if err := u.AdvancePhase(ctx, state); err != nil {
			return nil, err
		}
	}
}

func (u *phaseUsecase) AdvanceToNextItem(ctx context.Context, state *entity.LessonState) (*entity.ItemContent, error) {
	if !state.Active() {
		return nil, entity.ErrNoActiveLesson
	}
	state.CurrentItemIndex++
	state.UpdatedAt = u.clock()
	return u.CurrentTeachingItem(ctx, state)
}
