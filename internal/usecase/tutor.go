package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/kyoshi/internal/entity"
	"github.com/eslsoft/kyoshi/internal/repository"
)

// TutorUsecase is the turn orchestrator: it owns the learner's curriculum
// position, delegates sequencing to the configured progression strategy and
// translates engine sentinels into recoverable replies.
type TutorUsecase interface {
	// StartLesson opens the learner's current curriculum day.
	StartLesson(ctx context.Context, chatID string) (*TurnResult, error)
	// HandleMessage processes one inbound chat turn.
	HandleMessage(ctx context.Context, chatID, input string) (*TurnResult, error)
	Checklist(ctx context.Context, chatID string) (*entity.Checklist, error)
	MasteryOverview(ctx context.Context, chatID string, page repository.Pagination) ([]entity.ItemMastery, error)
}

// NewTutorUsecase wires the orchestrator.
func NewTutorUsecase(
	strategy ProgressionStrategy,
	catalog repository.Catalog,
	learners repository.LearnerRepository,
	sessions repository.SessionRepository,
	mastery MasteryUsecase,
	logger *logrus.Logger,
) TutorUsecase {
	return &tutorUsecase{
		strategy: strategy,
		catalog:  catalog,
		learners: learners,
		sessions: sessions,
		mastery:  mastery,
		logger:   logger,
	}
}

type tutorUsecase struct {
	strategy ProgressionStrategy
	catalog  repository.Catalog
	learners repository.LearnerRepository
	sessions repository.SessionRepository
	mastery  MasteryUsecase
	logger   *logrus.Logger
}

func (u *tutorUsecase) StartLesson(ctx context.Context, chatID string) (*TurnResult, error) {
	if strings.TrimSpace(chatID) == "" {
		return nil, entity.ErrInvalidChatID
	}
	profile, err := u.learners.Profile(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		profile = &entity.LearnerProfile{ChatID: chatID, CurrentDay: 1}
	}

	maxDay, err := u.catalog.MaxDay(ctx)
	if err != nil {
		return nil, err
	}
	if maxDay > 0 && profile.CurrentDay > maxDay {
		return &TurnResult{Reply: "You've completed every lesson in the course. おめでとうございます！ Come back for a review session any time."}, nil
	}

	result, err := u.strategy.Begin(ctx, chatID, profile.CurrentDay)
	if errors.Is(err, entity.ErrDayNotFound) {
		u.logger.WithFields(logrus.Fields{"chat_id": chatID, "day": profile.CurrentDay}).
			Warn("curriculum day missing")
		return &TurnResult{Reply: "Sorry, I can't find today's lesson content right now. Please try again later."}, nil
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (u *tutorUsecase) HandleMessage(ctx context.Context, chatID, input string) (*TurnResult, error) {
	if strings.TrimSpace(chatID) == "" {
		return nil, entity.ErrInvalidChatID
	}
	if strings.TrimSpace(input) == "" {
		return nil, entity.ErrEmptyStudentInput
	}
	synthetic := input == entity.ContinuePlaceholder

	result, err := u.strategy.HandleTurn(ctx, chatID, input, synthetic)
	switch {
	case errors.Is(err, entity.ErrNoChecklist), errors.Is(err, entity.ErrNoActiveLesson):
		return &TurnResult{Reply: "No lesson is running. Say \"start\" whenever you want to begin today's lesson."}, nil
	case errors.Is(err, entity.ErrDayNotFound):
		u.logger.WithField("chat_id", chatID).Warn("curriculum day missing mid-lesson")
		return &TurnResult{Reply: "Sorry, I lost track of today's lesson content. Please try again later."}, nil
	case err != nil:
		return nil, err
	}
	return result, nil
}

func (u *tutorUsecase) Checklist(ctx context.Context, chatID string) (*entity.Checklist, error) {
	checklist, err := u.sessions.Checklist(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if checklist == nil {
		return nil, entity.ErrNoChecklist
	}
	return checklist, nil
}

func (u *tutorUsecase) MasteryOverview(ctx context.Context, chatID string, page repository.Pagination) ([]entity.ItemMastery, error) {
	return u.mastery.List(ctx, chatID, page)
}
