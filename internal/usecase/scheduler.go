package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/eslsoft/kyoshi/internal/entity"
	"github.com/eslsoft/kyoshi/internal/repository"
)

// Review priority weights. These are contractual: changing them changes
// which words surface for review, so they are fixed constants rather than
// configuration.
const (
	priorityAccuracyWeight  = 5.0
	priorityStalenessPerDay = 0.5
)

// SchedulerUsecase runs vocabulary-level spaced repetition over the
// frequency-ranked catalog word list, independent of per-day item mastery.
type SchedulerUsecase interface {
	// NextWords selects the next n words to teach: unseen words in rank
	// order, then low-seen words by ascending exposure count (rank as
	// tie-break), then learning words in rank order.
	NextWords(ctx context.Context, chatID string, n int) ([]entity.RankedWord, error)
	// ReviewWords selects the n learning-status words with the highest
	// priority = (1 - accuracy) * 5 + daysSinceLastSeen * 0.5.
	ReviewWords(ctx context.Context, chatID string, n int) ([]entity.WordProgress, error)
	// RecordExposure folds one exposure of a word into its progress record.
	RecordExposure(ctx context.Context, chatID, word string, correct bool) error
}

// NewSchedulerUsecase wires the catalog and progress repository.
func NewSchedulerUsecase(catalog repository.Catalog, repo repository.WordProgressRepository) SchedulerUsecase {
	return &schedulerUsecase{catalog: catalog, repo: repo, clock: time.Now}
}

type schedulerUsecase struct {
	catalog repository.Catalog
	repo    repository.WordProgressRepository
	clock   func() time.Time
}

func (u *schedulerUsecase) NextWords(ctx context.Context, chatID string, n int) ([]entity.RankedWord, error) {
	if n <= 0 {
		return nil, nil
	}
	ranked, err := u.catalog.WordList(ctx)
	if err != nil {
		return nil, err
	}
	records, err := u.repo.ListAll(ctx, chatID)
	if err != nil {
		return nil, err
	}
	byWord := lo.KeyBy(records, func(p entity.WordProgress) string { return p.Word })

	picked := make([]entity.RankedWord, 0, n)

	// Unseen words first, in catalog rank order.
	for _, w := range ranked {
		if len(picked) >= n {
			return picked, nil
		}
		if _, seen := byWord[w.Word]; !seen {
			picked = append(picked, w)
		}
	}

	rankOf := lo.KeyBy(ranked, func(w entity.RankedWord) string { return w.Word })

	// Then barely exposed words, least exposed first.
	lowSeen := lo.Filter(records, func(p entity.WordProgress, _ int) bool { return p.LowSeen() })
	sort.SliceStable(lowSeen, func(i, j int) bool {
		if lowSeen[i].TimesSeen != lowSeen[j].TimesSeen {
			return lowSeen[i].TimesSeen < lowSeen[j].TimesSeen
		}
		return lowSeen[i].Rank < lowSeen[j].Rank
	})
	for _, p := range lowSeen {
		if len(picked) >= n {
			return picked, nil
		}
		if w, ok := rankOf[p.Word]; ok {
			picked = append(picked, w)
		}
	}

	// Finally properly practiced learning words, in rank order.
	learning := lo.Filter(records, func(p entity.WordProgress, _ int) bool {
		return p.Status == entity.WordLearning && !p.LowSeen()
	})
	sort.SliceStable(learning, func(i, j int) bool { return learning[i].Rank < learning[j].Rank })
	for _, p := range learning {
		if len(picked) >= n {
			break
		}
		if w, ok := rankOf[p.Word]; ok {
			picked = append(picked, w)
		}
	}
	return picked, nil
}

func (u *schedulerUsecase) ReviewWords(ctx context.Context, chatID string, n int) ([]entity.WordProgress, error) {
	if n <= 0 {
		return nil, nil
	}
	records, err := u.repo.ListByStatus(ctx, chatID, entity.WordLearning)
	if err != nil {
		return nil, err
	}
	now := u.clock()

	type scored struct {
		p        entity.WordProgress
		priority float64
	}
	candidates := lo.Map(records, func(p entity.WordProgress, _ int) scored {
		return scored{p: p, priority: reviewPriority(&p, now)}
	})
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].priority > candidates[j].priority })

	if len(candidates) > n {
		candidates = candidates[:n]
	}
	return lo.Map(candidates, func(s scored, _ int) entity.WordProgress { return s.p }), nil
}

func (u *schedulerUsecase) RecordExposure(ctx context.Context, chatID, word string, correct bool) error {
	p, err := u.repo.Get(ctx, chatID, word)
	if err != nil {
		return err
	}
	if p == nil {
		p = &entity.WordProgress{Word: word, Status: entity.WordLearning}
		if ranked, err := u.catalog.WordList(ctx); err == nil {
			for _, w := range ranked {
				if w.Word == word {
					p.Rank = w.Rank
					break
				}
			}
		}
	}
	p.TimesSeen++
	if correct {
		p.TimesCorrect++
	}
	p.LastSeen = u.clock()
	return u.repo.Upsert(ctx, chatID, p)
}

// reviewPriority implements the contractual formula: low accuracy and long
// absence both raise a word's urgency.
func reviewPriority(p *entity.WordProgress, now time.Time) float64 {
	days := now.Sub(p.LastSeen).Hours() / 24
	if days < 0 {
		days = 0
	}
	return (1-p.Accuracy())*priorityAccuracyWeight + days*priorityStalenessPerDay
}
