package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/eslsoft/kyoshi/internal/entity"
	"github.com/eslsoft/kyoshi/internal/repository"
)

// recentMessageWindow is how much conversation context the generator sees.
const recentMessageWindow = 10

// NewChecklistStrategy returns the current progression strategy: the content
// generator decides each turn's action and the engine applies it
// structurally.
func NewChecklistStrategy(
	sessions repository.SessionRepository,
	learners repository.LearnerRepository,
	checklists ChecklistUsecase,
	generator ContentGenerator,
) ProgressionStrategy {
	return &checklistStrategy{
		sessions:   sessions,
		learners:   learners,
		checklists: checklists,
		generator:  generator,
		clock:      time.Now,
	}
}

type checklistStrategy struct {
	sessions   repository.SessionRepository
	learners   repository.LearnerRepository
	checklists ChecklistUsecase
	generator  ContentGenerator
	clock      func() time.Time
}

func (s *checklistStrategy) Begin(ctx context.Context, chatID string, dayNumber int) (*TurnResult, error) {
	checklist, err := s.checklists.Generate(ctx, chatID, dayNumber)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.SaveChecklist(ctx, checklist); err != nil {
		return nil, fmt.Errorf("save checklist: %w", err)
	}

	reply := fmt.Sprintf("Day %d: %s. Today's plan has %d steps.", dayNumber, checklist.Title, checklist.TotalCount)
	if current := checklist.CurrentItem(); current != nil {
		reply += " First up: " + current.DisplayText
	}
	return &TurnResult{Reply: reply, LessonComplete: checklist.IsComplete()}, nil
}

func (s *checklistStrategy) HandleTurn(ctx context.Context, chatID, input string, synthetic bool) (*TurnResult, error) {
	checklist, err := s.sessions.Checklist(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if checklist == nil {
		return nil, entity.ErrNoChecklist
	}

	content, _, err := s.checklists.CurrentItemContent(ctx, checklist)
	if err != nil {
		return nil, err
	}
	recent, err := s.sessions.RecentMessages(ctx, chatID, recentMessageWindow)
	if err != nil {
		return nil, err
	}

	reply, err := s.generator.Respond(ctx, GeneratorInput{
		Checklist:      checklist,
		ChecklistText:  s.checklists.RenderForLLM(checklist),
		RecentMessages: recent,
		StudentInput:   input,
		CurrentContent: content,
	})
	if err != nil {
		return nil, fmt.Errorf("generate response: %w", err)
	}

	result := &TurnResult{Reply: reply.Message}
	next := checklist

	switch reply.Action {
	case ActionComplete:
		// A synthetic nudge must never complete a step on the learner's
		// behalf; only real input can advance the plan.
		if synthetic {
			break
		}
		advanced, _, done := s.checklists.Advance(checklist)
		next = advanced
		if done {
			result.LessonComplete = true
			if err := s.finishDay(ctx, next); err != nil {
				return nil, err
			}
		}
	case ActionInsert:
		if reply.InsertItem != nil {
			next, _ = s.checklists.InsertClarification(checklist, reply.InsertItem.DisplayText, reply.InsertItem.Content)
		}
	}

	if err := s.sessions.SaveChecklist(ctx, next); err != nil {
		return nil, fmt.Errorf("save checklist: %w", err)
	}

	if !synthetic {
		if err := s.sessions.AppendMessage(ctx, chatID, entity.ChatMessage{Role: entity.RoleStudent, Text: input, At: s.clock()}); err != nil {
			return nil, err
		}
	}
	if err := s.sessions.AppendMessage(ctx, chatID, entity.ChatMessage{Role: entity.RoleTutor, Text: reply.Message, At: s.clock()}); err != nil {
		return nil, err
	}
	return result, nil
}

// finishDay records the completed checklist day and moves the learner's
// curriculum position forward. Checklist days carry no assessment score.
func (s *checklistStrategy) finishDay(ctx context.Context, checklist *entity.Checklist) error {
	now := s.clock()
	if err := s.learners.RecordCompletion(ctx, &entity.LessonCompletion{
		ChatID:      checklist.ChatID,
		DayNumber:   checklist.DayNumber,
		Passed:      true,
		CompletedAt: now,
	}); err != nil {
		return fmt.Errorf("record completion: %w", err)
	}

	profile, err := s.learners.Profile(ctx, checklist.ChatID)
	if err != nil {
		return err
	}
	if profile == nil {
		profile = &entity.LearnerProfile{ChatID: checklist.ChatID}
	}
	if checklist.DayNumber >= profile.CurrentDay {
		profile.CurrentDay = checklist.DayNumber + 1
	}
	profile.Normalize(now)
	if err := s.learners.SaveProfile(ctx, profile); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}
