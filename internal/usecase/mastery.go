package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/eslsoft/kyoshi/internal/entity"
	"github.com/eslsoft/kyoshi/internal/repository"
)

// reviewLevelThreshold is the mastery level below which an item is flagged
// for re-exposure in future checklists.
const reviewLevelThreshold = 3

// MasteryUsecase tracks per-item correctness history and selects
// spaced-repetition review candidates for future lesson days.
type MasteryUsecase interface {
	// RecordOutcome folds one graded answer into the item's history.
	RecordOutcome(ctx context.Context, chatID string, item entity.ItemRef, wasCorrect bool, dayIntroduced int) (*entity.ItemMastery, error)
	// ReviewCandidates returns up to maxCount items introduced before
	// targetDay that need review, weakest first. Each carries its original
	// DayIntroduced so callers can resolve content from the right source day.
	ReviewCandidates(ctx context.Context, chatID string, targetDay, maxCount int) ([]entity.ItemMastery, error)
	List(ctx context.Context, chatID string, page repository.Pagination) ([]entity.ItemMastery, error)
}

// NewMasteryUsecase wires the repository with default behaviour.
func NewMasteryUsecase(repo repository.MasteryRepository) MasteryUsecase {
	return &masteryUsecase{repo: repo, clock: time.Now}
}

type masteryUsecase struct {
	repo  repository.MasteryRepository
	clock func() time.Time
}

func (u *masteryUsecase) RecordOutcome(ctx context.Context, chatID string, item entity.ItemRef, wasCorrect bool, dayIntroduced int) (*entity.ItemMastery, error) {
	if chatID == "" {
		return nil, entity.ErrInvalidChatID
	}

	m, err := u.repo.Get(ctx, chatID, item.ID)
	if err != nil {
		return nil, err
	}
	now := u.clock()
	if m == nil {
		m = &entity.ItemMastery{
			ItemID:        item.ID,
			ItemType:      item.Type,
			DayIntroduced: dayIntroduced,
		}
	}

	if wasCorrect {
		m.CorrectCount++
		if m.MasteryLevel < entity.MasteryLevelMax {
			m.MasteryLevel++
		}
		m.LastCorrect = &now
	} else {
		m.IncorrectCount++
		if m.MasteryLevel > 0 {
			m.MasteryLevel--
		}
	}
	m.LastSeen = now
	m.NeedsReview = m.MasteryLevel < reviewLevelThreshold

	if err := u.repo.Upsert(ctx, chatID, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (u *masteryUsecase) ReviewCandidates(ctx context.Context, chatID string, targetDay, maxCount int) ([]entity.ItemMastery, error) {
	if maxCount <= 0 {
		return nil, nil
	}
	items, err := u.repo.ListNeedingReview(ctx, chatID, targetDay, reviewLevelThreshold)
	if err != nil {
		return nil, err
	}

	// Weakest mastery first; among equals, the one not seen for longest.
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].MasteryLevel != items[j].MasteryLevel {
			return items[i].MasteryLevel < items[j].MasteryLevel
		}
		return items[i].LastSeen.Before(items[j].LastSeen)
	})

	if len(items) > maxCount {
		items = items[:maxCount]
	}
	return items, nil
}

func (u *masteryUsecase) List(ctx context.Context, chatID string, page repository.Pagination) ([]entity.ItemMastery, error) {
	return u.repo.List(ctx, chatID, page)
}
