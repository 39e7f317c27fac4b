package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eslsoft/kyoshi/internal/entity"
)

type phasesStrategyFixture struct {
	strategy *phasesStrategy
	sessions *fakeSessionRepo
	learners *fakeLearnerRepo
}

func newPhasesStrategyFixture(t *testing.T, rng Rand, days ...*entity.DayContent) *phasesStrategyFixture {
	t.Helper()
	catalog := newFakeCatalog(days...)
	mastery := &masteryUsecase{repo: newFakeMasteryRepo(), clock: testClock}
	phases := &phaseUsecase{catalog: catalog, mastery: mastery, clock: testClock}
	sessions := newFakeSessionRepo()
	learners := newFakeLearnerRepo()
	exercises := &exerciseUsecase{
		catalog:  catalog,
		phases:   phases,
		mastery:  mastery,
		learners: learners,
		rng:      rng,
		clock:    testClock,
	}
	return &phasesStrategyFixture{
		strategy: &phasesStrategy{sessions: sessions, phases: phases, exercises: exercises},
		sessions: sessions,
		learners: learners,
	}
}

func TestPhasesStrategyBegin(t *testing.T) {
	fix := newPhasesStrategyFixture(t, &scriptedRand{}, testDay(1))
	ctx := context.Background()

	result, err := fix.strategy.Begin(ctx, "chat-1", 1)
	require.NoError(t, err)
	assert.Contains(t, result.Reply, "Starting day 1")

	state, err := fix.sessions.LessonState(ctx, "chat-1")
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, entity.PhaseIntro, state.Phase)
}

func TestPhasesStrategyBeginWhileActive(t *testing.T) {
	fix := newPhasesStrategyFixture(t, &scriptedRand{}, testDay(1))
	ctx := context.Background()

	_, err := fix.strategy.Begin(ctx, "chat-1", 1)
	require.NoError(t, err)

	_, err = fix.strategy.Begin(ctx, "chat-1", 1)
	assert.ErrorIs(t, err, entity.ErrLessonActive)
}

func TestPhasesStrategyHandleTurnNoLesson(t *testing.T) {
	fix := newPhasesStrategyFixture(t, &scriptedRand{}, testDay(1))

	_, err := fix.strategy.HandleTurn(context.Background(), "chat-1", "hello", false)
	assert.ErrorIs(t, err, entity.ErrNoActiveLesson)
}

func TestPhasesStrategyIntroTurnPresentsFirstWord(t *testing.T) {
	fix := newPhasesStrategyFixture(t, &scriptedRand{}, testDay(1))
	ctx := context.Background()

	_, err := fix.strategy.Begin(ctx, "chat-1", 1)
	require.NoError(t, err)

	result, err := fix.strategy.HandleTurn(ctx, "chat-1", "ready", false)
	require.NoError(t, err)
	assert.Contains(t, result.Reply, "New word: こんにちは (konnichiwa)")

	state, err := fix.sessions.LessonState(ctx, "chat-1")
	require.NoError(t, err)
	assert.Equal(t, entity.PhaseVocabularyTeaching, state.Phase)
}

func TestPhasesStrategyTeachingWalkIntoPractice(t *testing.T) {
	fix := newPhasesStrategyFixture(t, &scriptedRand{}, testDay(1))
	ctx := context.Background()

	_, err := fix.strategy.Begin(ctx, "chat-1", 1)
	require.NoError(t, err)

	replies := make([]string, 0, 4)
	for i := 0; i < 4; i++ {
		result, err := fix.strategy.HandleTurn(ctx, "chat-1", "ok", false)
		require.NoError(t, err)
		replies = append(replies, result.Reply)
	}

	assert.Contains(t, replies[0], "こんにちは")
	assert.Contains(t, replies[1], "ありがとう")
	assert.Contains(t, replies[2], "東京")
	// The fourth turn rolls into vocabulary practice and asks a question.
	assert.Contains(t, replies[3], "Translate to English")

	state, err := fix.sessions.LessonState(ctx, "chat-1")
	require.NoError(t, err)
	assert.Equal(t, entity.PhaseVocabularyPractice, state.Phase)
	assert.NotNil(t, state.CurrentExercise)
}

func practiceFixture(t *testing.T) (*phasesStrategyFixture, context.Context) {
	t.Helper()
	fix := newPhasesStrategyFixture(t, &scriptedRand{}, testDay(1))
	ctx := context.Background()

	_, err := fix.strategy.Begin(ctx, "chat-1", 1)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		_, err := fix.strategy.HandleTurn(ctx, "chat-1", "ok", false)
		require.NoError(t, err)
	}
	return fix, ctx
}

func TestPhasesStrategyHintKeyword(t *testing.T) {
	fix, ctx := practiceFixture(t)

	result, err := fix.strategy.HandleTurn(ctx, "chat-1", "Hint", false)
	require.NoError(t, err)
	assert.Contains(t, result.Reply, "greetings")

	state, err := fix.sessions.LessonState(ctx, "chat-1")
	require.NoError(t, err)
	assert.Equal(t, 1, state.HintsUsedThisSession)
	require.NotNil(t, state.CurrentExercise, "a hint leaves the exercise open")
}

func TestPhasesStrategySkipKeyword(t *testing.T) {
	fix, ctx := practiceFixture(t)

	result, err := fix.strategy.HandleTurn(ctx, "chat-1", "skip", false)
	require.NoError(t, err)
	assert.Contains(t, result.Reply, "Skipped.")

	state, err := fix.sessions.LessonState(ctx, "chat-1")
	require.NoError(t, err)
	assert.Equal(t, 1, state.IncorrectThisSession)
	require.NotNil(t, state.CurrentExercise, "the next exercise is drawn immediately")
}

func TestPhasesStrategyCorrectAnswerMovesOn(t *testing.T) {
	fix, ctx := practiceFixture(t)

	state, err := fix.sessions.LessonState(ctx, "chat-1")
	require.NoError(t, err)
	answer := state.CurrentExercise.ExpectedAnswers[0]

	result, err := fix.strategy.HandleTurn(ctx, "chat-1", answer, false)
	require.NoError(t, err)
	assert.Contains(t, result.Reply, "Correct!")

	state, err = fix.sessions.LessonState(ctx, "chat-1")
	require.NoError(t, err)
	assert.Equal(t, 1, state.CorrectThisSession)
}

func TestPhasesStrategyClearsStateOnCompletion(t *testing.T) {
	fix := newPhasesStrategyFixture(t, &scriptedRand{}, testDay(1))
	ctx := context.Background()

	_, err := fix.strategy.Begin(ctx, "chat-1", 1)
	require.NoError(t, err)

	// Drive the whole lesson by always answering with the expected answer.
	var result *TurnResult
	for i := 0; i < 60; i++ {
		state, err := fix.sessions.LessonState(ctx, "chat-1")
		require.NoError(t, err)
		if state == nil {
			break
		}
		input := "ok"
		if state.CurrentExercise != nil {
			input = state.CurrentExercise.ExpectedAnswers[0]
		}
		result, err = fix.strategy.HandleTurn(ctx, "chat-1", input, false)
		require.NoError(t, err)
	}

	require.NotNil(t, result)
	assert.True(t, result.LessonComplete)
	assert.Contains(t, result.Reply, "Assessment passed")

	state, err := fix.sessions.LessonState(ctx, "chat-1")
	require.NoError(t, err)
	assert.Nil(t, state, "completed lessons leave no session state behind")

	profile, err := fix.learners.Profile(ctx, "chat-1")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, 2, profile.CurrentDay)
}
