package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/eslsoft/kyoshi/internal/entity"
	"github.com/eslsoft/kyoshi/internal/repository"
)

const checklistItemIDPrefix = "item_"

// ChecklistUsecase is the current lesson-sequencing strategy: it builds the
// ordered plan for one lesson day and applies structural transitions to it.
// All transitions operate on a cloned snapshot and return the new value;
// persisting the result is the caller's explicit step.
type ChecklistUsecase interface {
	Generate(ctx context.Context, chatID string, dayNumber int) (*entity.Checklist, error)
	// Advance marks the current item complete and moves to the next one.
	// It returns the new snapshot, the new current item (nil when the
	// checklist just completed) and whether the checklist is complete.
	Advance(checklist *entity.Checklist) (*entity.Checklist, *entity.ChecklistItem, bool)
	// InsertClarification adds a clarify item immediately after the current
	// one without touching CurrentIndex or any status.
	InsertClarification(checklist *entity.Checklist, displayText, content string) (*entity.Checklist, entity.ChecklistItem)
	// CurrentItemContent resolves the current item's curriculum payload.
	// Practice and clarify items, and stale references, resolve to a nil
	// payload alongside the item itself.
	CurrentItemContent(ctx context.Context, checklist *entity.Checklist) (*entity.ItemContent, *entity.ChecklistItem, error)
	IsComplete(checklist *entity.Checklist) bool
	// RenderForLLM produces the plain-text status block handed to the
	// content generator. It is model context only, never shown to learners.
	RenderForLLM(checklist *entity.Checklist) string
}

// NewChecklistUsecase wires the catalog and review selector.
// maxReviewItems caps how many review steps open a day's checklist.
func NewChecklistUsecase(catalog repository.Catalog, mastery MasteryUsecase, maxReviewItems int) ChecklistUsecase {
	if maxReviewItems < 0 {
		maxReviewItems = 0
	}
	return &checklistUsecase{catalog: catalog, mastery: mastery, maxReviewItems: maxReviewItems}
}

type checklistUsecase struct {
	catalog        repository.Catalog
	mastery        MasteryUsecase
	maxReviewItems int
}

func (u *checklistUsecase) Generate(ctx context.Context, chatID string, dayNumber int) (*entity.Checklist, error) {
	if strings.TrimSpace(chatID) == "" {
		return nil, entity.ErrInvalidChatID
	}
	day, err := u.catalog.Day(ctx, dayNumber)
	if err != nil {
		return nil, fmt.Errorf("load day %d: %w", dayNumber, err)
	}
	if day == nil {
		return nil, entity.ErrDayNotFound
	}

	var items []entity.ChecklistItem
	nextID := func() string {
		return fmt.Sprintf("%s%03d", checklistItemIDPrefix, len(items)+1)
	}

	// Review steps open the day, except on day one.
	if dayNumber > 1 && u.maxReviewItems > 0 {
		candidates, err := u.mastery.ReviewCandidates(ctx, chatID, dayNumber, u.maxReviewItems)
		if err != nil {
			return nil, fmt.Errorf("select review candidates: %w", err)
		}
		for _, c := range candidates {
			sourceDay, err := u.catalog.Day(ctx, c.DayIntroduced)
			if err != nil {
				return nil, fmt.Errorf("load source day %d: %w", c.DayIntroduced, err)
			}
			if sourceDay == nil {
				continue
			}
			content := sourceDay.Resolve(c.Ref())
			if content == nil {
				// Stale reference after a content edit; skip, never fail.
				continue
			}
			items = append(items, entity.ChecklistItem{
				ID:              nextID(),
				Type:            entity.ChecklistReview,
				Status:          entity.StatusPending,
				ContentType:     c.ItemType,
				ContentID:       c.ItemID,
				DisplayText:     "Review: " + content.DisplayText(),
				SourceDayNumber: c.DayIntroduced,
			})
		}
	}

	appendSection := func(t entity.ContentType, refs []entity.ItemRef) {
		for _, ref := range refs {
			content := day.Resolve(ref)
			if content == nil {
				continue
			}
			items = append(items, entity.ChecklistItem{
				ID:          nextID(),
				Type:        entity.ChecklistTeach,
				Status:      entity.StatusPending,
				ContentType: t,
				ContentID:   ref.ID,
				DisplayText: content.DisplayText(),
			})
		}
		if len(refs) > 0 {
			items = append(items, entity.ChecklistItem{
				ID:          nextID(),
				Type:        entity.ChecklistPractice,
				Status:      entity.StatusPending,
				ContentType: t,
				DisplayText: "Practice: " + string(t),
			})
		}
	}
	appendSection(entity.ContentVocabulary, day.RefsOf(entity.ContentVocabulary))
	appendSection(entity.ContentGrammar, day.RefsOf(entity.ContentGrammar))
	appendSection(entity.ContentKanji, day.RefsOf(entity.ContentKanji))

	if len(items) > 0 {
		items[0].Status = entity.StatusCurrent
	}
	return &entity.Checklist{
		ChatID:       chatID,
		DayNumber:    dayNumber,
		Title:        day.Title,
		Items:        items,
		CurrentIndex: 0,
		TotalCount:   len(items),
	}, nil
}

func (u *checklistUsecase) Advance(checklist *entity.Checklist) (*entity.Checklist, *entity.ChecklistItem, bool) {
	next := checklist.Clone()
	if next.IsComplete() {
		return next, nil, true
	}

	next.Items[next.CurrentIndex].Status = entity.StatusComplete
	next.CompletedCount++
	next.CurrentIndex++

	if next.IsComplete() {
		return next, nil, true
	}
	next.Items[next.CurrentIndex].Status = entity.StatusCurrent
	return next, &next.Items[next.CurrentIndex], false
}

func (u *checklistUsecase) InsertClarification(checklist *entity.Checklist, displayText, content string) (*entity.Checklist, entity.ChecklistItem) {
	next := checklist.Clone()

	wasComplete := next.IsComplete()
	pos := next.CurrentIndex + 1
	if pos > len(next.Items) {
		pos = len(next.Items)
	}

	item := entity.ChecklistItem{
		ID:              u.nextInsertedID(next.Items),
		Type:            entity.ChecklistClarify,
		Status:          entity.StatusPending,
		DisplayText:     displayText,
		IsInserted:      true,
		InsertedContent: content,
	}
	if wasComplete {
		// Inserting into a finished checklist reopens it; the new item
		// becomes current to keep the single-current invariant.
		item.Status = entity.StatusCurrent
	}

	next.Items = append(next.Items, entity.ChecklistItem{})
	copy(next.Items[pos+1:], next.Items[pos:])
	next.Items[pos] = item
	next.TotalCount = len(next.Items)
	return next, item
}

// nextInsertedID keeps ids unique across insertions: one past the highest
// numeric suffix present, not one past the item count.
func (u *checklistUsecase) nextInsertedID(items []entity.ChecklistItem) string {
	highest := 0
	for _, it := range items {
		suffix := strings.TrimPrefix(it.ID, checklistItemIDPrefix)
		if n, err := strconv.Atoi(suffix); err == nil && n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s%03d", checklistItemIDPrefix, highest+1)
}

func (u *checklistUsecase) CurrentItemContent(ctx context.Context, checklist *entity.Checklist) (*entity.ItemContent, *entity.ChecklistItem, error) {
	item := checklist.CurrentItem()
	if item == nil {
		return nil, nil, nil
	}

	switch item.Type {
	case entity.ChecklistTeach, entity.ChecklistReview:
		sourceDay := checklist.DayNumber
		if item.Type == entity.ChecklistReview && item.SourceDayNumber > 0 {
			sourceDay = item.SourceDayNumber
		}
		day, err := u.catalog.Day(ctx, sourceDay)
		if err != nil {
			return nil, item, fmt.Errorf("load day %d: %w", sourceDay, err)
		}
		if day == nil {
			return nil, item, nil
		}
		content := day.Resolve(entity.ItemRef{ID: item.ContentID, Type: item.ContentType})
		return content, item, nil
	default:
		// Practice markers and clarifications carry no curriculum payload.
		return nil, item, nil
	}
}

func (u *checklistUsecase) IsComplete(checklist *entity.Checklist) bool {
	return checklist.IsComplete()
}

func (u *checklistUsecase) RenderForLLM(checklist *entity.Checklist) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Lesson day %d: %s\n", checklist.DayNumber, checklist.Title)
	fmt.Fprintf(&b, "Progress: %d of %d steps complete\n", checklist.CompletedCount, checklist.TotalCount)
	for _, item := range checklist.Items {
		marker := "[ ]"
		switch item.Status {
		case entity.StatusComplete:
			marker = "[x]"
		case entity.StatusCurrent:
			marker = "[>]"
		}
		fmt.Fprintf(&b, "%s %s (%s) %s\n", marker, item.ID, item.Type, item.DisplayText)
	}
	if current := checklist.CurrentItem(); current != nil {
		fmt.Fprintf(&b, "Current step: %s (%s)\n", current.ID, current.Type)
	} else {
		b.WriteString("All steps complete.\n")
	}
	return b.String()
}
