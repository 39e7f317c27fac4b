package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/eslsoft/kyoshi/internal/entity"
	"github.com/eslsoft/kyoshi/internal/repository"
)

// Chat keywords the legacy strategy understands during practice turns.
const (
	keywordHint = "hint"
	keywordSkip = "skip"
)

// NewPhasesStrategy returns the legacy progression strategy backed by the
// phase state machine and the exercise evaluator. Kept selectable until the
// checklist rollout retires it.
func NewPhasesStrategy(
	sessions repository.SessionRepository,
	phases PhaseUsecase,
	exercises ExerciseUsecase,
) ProgressionStrategy {
	return &phasesStrategy{sessions: sessions, phases: phases, exercises: exercises}
}

type phasesStrategy struct {
	sessions  repository.SessionRepository
	phases    PhaseUsecase
	exercises ExerciseUsecase
}

func (s *phasesStrategy) Begin(ctx context.Context, chatID string, dayNumber int) (*TurnResult, error) {
	existing, err := s.sessions.LessonState(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if existing.Active() {
		return nil, entity.ErrLessonActive
	}

	state, err := s.phases.StartLesson(ctx, chatID, dayNumber)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.SaveLessonState(ctx, state); err != nil {
		return nil, fmt.Errorf("save lesson state: %w", err)
	}
	reply := fmt.Sprintf("Starting day %d. Say anything when you're ready for the first word.", dayNumber)
	return &TurnResult{Reply: reply}, nil
}

func (s *phasesStrategy) HandleTurn(ctx context.Context, chatID, input string, synthetic bool) (*TurnResult, error) {
	state, err := s.sessions.LessonState(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !state.Active() {
		return nil, entity.ErrNoActiveLesson
	}

	result, err := s.dispatch(ctx, state, input)
	if err != nil {
		return nil, err
	}

	if state.Phase == entity.PhaseComplete {
		if err := s.sessions.ClearLessonState(ctx, chatID); err != nil {
			return nil, fmt.Errorf("clear lesson state: %w", err)
		}
		result.LessonComplete = true
		return result, nil
	}
	if err := s.sessions.SaveLessonState(ctx, state); err != nil {
		return nil, fmt.Errorf("save lesson state: %w", err)
	}
	return result, nil
}

func (s *phasesStrategy) dispatch(ctx context.Context, state *entity.LessonState, input string) (*TurnResult, error) {
	if state.CurrentExercise != nil {
		return s.practiceTurn(ctx, state, input)
	}

	switch {
	case state.Phase == entity.PhaseIntro:
		if err := s.phases.AdvancePhase(ctx, state); err != nil {
			return nil, err
		}
		return s.presentCurrentItem(ctx, state)
	case state.Phase.IsTeaching():
		return s.teachingTurn(ctx, state)
	default:
		// Practice, assessment or review without an open exercise: draw one.
		return s.nextExercise(ctx, state)
	}
}

func (s *phasesStrategy) teachingTurn(ctx context.Context, state *entity.LessonState) (*TurnResult, error) {
	if _, err := s.phases.AdvanceToNextItem(ctx, state); err != nil {
		return nil, err
	}
	return s.presentCurrentItem(ctx, state)
}

func (s *phasesStrategy) presentCurrentItem(ctx context.Context, state *entity.LessonState) (*TurnResult, error) {
	content, err := s.phases.CurrentTeachingItem(ctx, state)
	if err != nil {
		return nil, err
	}
	if content == nil {
		return &TurnResult{Reply: "That's everything for today."}, nil
	}
	if state.Phase.IsTeaching() {
		return &TurnResult{Reply: presentItem(content)}, nil
	}
	// Resolution rolled into a practice phase.
	return s.nextExercise(ctx, state)
}

func (s *phasesStrategy) practiceTurn(ctx context.Context, state *entity.LessonState, input string) (*TurnResult, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case keywordHint:
		hint, err := s.exercises.Hint(state)
		if err != nil {
			return nil, err
		}
		return &TurnResult{Reply: hint}, nil
	case keywordSkip:
		if err := s.exercises.Skip(ctx, state); err != nil {
			return nil, err
		}
		next, err := s.nextExercise(ctx, state)
		if err != nil {
			return nil, err
		}
		next.Reply = "Skipped. " + next.Reply
		return next, nil
	}

	eval, err := s.exercises.Evaluate(ctx, state, input)
	if err != nil {
		return nil, err
	}
	if !eval.ShouldAdvance {
		return &TurnResult{Reply: eval.Feedback}, nil
	}
	next, err := s.nextExercise(ctx, state)
	if err != nil {
		return nil, err
	}
	next.Reply = eval.Feedback + " " + next.Reply
	return next, nil
}

func (s *phasesStrategy) nextExercise(ctx context.Context, state *entity.LessonState) (*TurnResult, error) {
	for {
		outcome, err := s.exercises.Generate(ctx, state)
		if err != nil {
			return nil, err
		}
		switch {
		case outcome.Exercise != nil:
			return &TurnResult{Reply: outcome.Exercise.Prompt}, nil
		case outcome.Assessment != nil:
			return &TurnResult{Reply: assessmentSummary(outcome.Assessment)}, nil
		}

		// Phase advanced. Teaching phases present instead of asking.
		if state.Phase.IsTeaching() || state.Phase == entity.PhaseComplete {
			content, err := s.phases.CurrentTeachingItem(ctx, state)
			if err != nil {
				return nil, err
			}
			if content == nil {
				return &TurnResult{Reply: "That's everything for today."}, nil
			}
			return &TurnResult{Reply: presentItem(content)}, nil
		}
	}
}

func presentItem(content *entity.ItemContent) string {
	switch {
	case content.Vocabulary != nil:
		v := content.Vocabulary
		return fmt.Sprintf("New word: %s (%s) — %s", v.Japanese, v.Romaji, v.English)
	case content.Grammar != nil:
		g := content.Grammar
		text := fmt.Sprintf("Pattern: %s — %s", g.Pattern, g.Meaning)
		if g.Example != "" {
			text += " Example: " + g.Example
		}
		return text
	case content.Kanji != nil:
		k := content.Kanji
		return fmt.Sprintf("Kanji: %s — %s", k.Kanji, strings.Join(k.Meanings, ", "))
	default:
		return ""
	}
}

func assessmentSummary(result *entity.AssessmentResult) string {
	if result.Passed {
		return fmt.Sprintf("Assessment passed with %d%% (%d/%d). Day %d unlocked!",
			result.Score, result.Correct, result.Correct+result.Incorrect, result.NextDay)
	}
	return fmt.Sprintf("Assessment score %d%% — below the %d%% pass mark. Let's review the tricky ones.",
		result.Score, passThreshold)
}
