package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/eslsoft/kyoshi/internal/entity"
	"github.com/eslsoft/kyoshi/internal/repository"
)

// Strategy names a lesson-sequencing implementation. Exactly one is active
// per deployment; the checklist strategy supersedes the phase machine.
type Strategy string

const (
	StrategyChecklist Strategy = "checklist"
	StrategyPhases    Strategy = "phases"
)

// TurnResult is what a progression strategy hands back for one turn.
type TurnResult struct {
	Reply          string
	LessonComplete bool
}

// ProgressionStrategy sequences one learner through a lesson day. Begin
// opens the day; HandleTurn processes one inbound message. synthetic marks
// inputs the orchestrator injected itself (nudges), which must never be
// treated as learner progress.
type ProgressionStrategy interface {
	Begin(ctx context.Context, chatID string, dayNumber int) (*TurnResult, error)
	HandleTurn(ctx context.Context, chatID, input string, synthetic bool) (*TurnResult, error)
}

// NewProgressionStrategy selects the configured implementation.
func NewProgressionStrategy(
	name string,
	sessions repository.SessionRepository,
	learners repository.LearnerRepository,
	checklists ChecklistUsecase,
	generator ContentGenerator,
	phases PhaseUsecase,
	exercises ExerciseUsecase,
) (ProgressionStrategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(name))) {
	case StrategyChecklist, "":
		return NewChecklistStrategy(sessions, learners, checklists, generator), nil
	case StrategyPhases:
		return NewPhasesStrategy(sessions, phases, exercises), nil
	default:
		return nil, fmt.Errorf("%w: %q", entity.ErrUnknownStrategy, name)
	}
}
