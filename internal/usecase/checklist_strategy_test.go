package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eslsoft/kyoshi/internal/entity"
	"github.com/eslsoft/kyoshi/internal/repository"
)

type checklistStrategyFixture struct {
	strategy  *checklistStrategy
	sessions  *fakeSessionRepo
	learners  *fakeLearnerRepo
	generator *fakeGenerator
}

func newChecklistStrategyFixture(t *testing.T, days ...*entity.DayContent) *checklistStrategyFixture {
	t.Helper()
	mastery := &masteryUsecase{repo: newFakeMasteryRepo(), clock: testClock}
	sessions := newFakeSessionRepo()
	learners := newFakeLearnerRepo()
	generator := &fakeGenerator{}
	return &checklistStrategyFixture{
		strategy: &checklistStrategy{
			sessions:   sessions,
			learners:   learners,
			checklists: NewChecklistUsecase(newFakeCatalog(days...), mastery, 3),
			generator:  generator,
			clock:      testClock,
		},
		sessions:  sessions,
		learners:  learners,
		generator: generator,
	}
}

func TestChecklistStrategyBegin(t *testing.T) {
	fix := newChecklistStrategyFixture(t, testDay(1))
	ctx := context.Background()

	result, err := fix.strategy.Begin(ctx, "chat-1", 1)
	require.NoError(t, err)
	assert.Contains(t, result.Reply, "Day 1: Greetings")
	assert.Contains(t, result.Reply, "7 steps")
	assert.False(t, result.LessonComplete)

	saved, err := fix.sessions.Checklist(ctx, "chat-1")
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, 7, saved.TotalCount)
}

func TestChecklistStrategyBeginUnknownDay(t *testing.T) {
	fix := newChecklistStrategyFixture(t, testDay(1))

	_, err := fix.strategy.Begin(context.Background(), "chat-1", 9)
	assert.ErrorIs(t, err, entity.ErrDayNotFound)
}

func TestChecklistStrategyHandleTurnNoChecklist(t *testing.T) {
	fix := newChecklistStrategyFixture(t, testDay(1))

	_, err := fix.strategy.HandleTurn(context.Background(), "chat-1", "hi", false)
	assert.ErrorIs(t, err, entity.ErrNoChecklist)
}

func TestChecklistStrategyCompleteAdvancesStep(t *testing.T) {
	fix := newChecklistStrategyFixture(t, testDay(1))
	ctx := context.Background()

	_, err := fix.strategy.Begin(ctx, "chat-1", 1)
	require.NoError(t, err)

	fix.generator.replies = []GeneratorReply{{Message: "Nice, on to the next word.", Action: ActionComplete}}
	result, err := fix.strategy.HandleTurn(ctx, "chat-1", "konnichiwa means hello", false)
	require.NoError(t, err)
	assert.Equal(t, "Nice, on to the next word.", result.Reply)
	assert.False(t, result.LessonComplete)

	saved, err := fix.sessions.Checklist(ctx, "chat-1")
	require.NoError(t, err)
	assert.Equal(t, 1, saved.CompletedCount)
	assert.Equal(t, 1, saved.CurrentIndex)

	msgs, err := fix.sessions.RecentMessages(ctx, "chat-1", 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, entity.RoleStudent, msgs[0].Role)
	assert.Equal(t, "konnichiwa means hello", msgs[0].Text)
	assert.Equal(t, entity.RoleTutor, msgs[1].Role)
}

func TestChecklistStrategySyntheticNeverCompletes(t *testing.T) {
	fix := newChecklistStrategyFixture(t, testDay(1))
	ctx := context.Background()

	_, err := fix.strategy.Begin(ctx, "chat-1", 1)
	require.NoError(t, err)

	fix.generator.replies = []GeneratorReply{{Message: "Let's keep going.", Action: ActionComplete}}
	result, err := fix.strategy.HandleTurn(ctx, "chat-1", entity.ContinuePlaceholder, true)
	require.NoError(t, err)
	assert.False(t, result.LessonComplete)

	saved, err := fix.sessions.Checklist(ctx, "chat-1")
	require.NoError(t, err)
	assert.Zero(t, saved.CompletedCount, "a synthetic nudge must not advance the plan")

	msgs, err := fix.sessions.RecentMessages(ctx, "chat-1", 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1, "synthetic input is not recorded as a student message")
	assert.Equal(t, entity.RoleTutor, msgs[0].Role)
}

func TestChecklistStrategyInsertAction(t *testing.T) {
	fix := newChecklistStrategyFixture(t, testDay(1))
	ctx := context.Background()

	_, err := fix.strategy.Begin(ctx, "chat-1", 1)
	require.NoError(t, err)

	fix.generator.replies = []GeneratorReply{{
		Message:    "Good question, let's dig into that.",
		Action:     ActionInsert,
		InsertItem: &InsertItem{DisplayText: "Clarify: konnichiwa vs konbanwa", Content: "Time-of-day greetings."},
	}}
	_, err = fix.strategy.HandleTurn(ctx, "chat-1", "what about evenings?", false)
	require.NoError(t, err)

	saved, err := fix.sessions.Checklist(ctx, "chat-1")
	require.NoError(t, err)
	assert.Equal(t, 8, saved.TotalCount)
	inserted := saved.Items[saved.CurrentIndex+1]
	assert.True(t, inserted.IsInserted)
	assert.Equal(t, "Clarify: konnichiwa vs konbanwa", inserted.DisplayText)
}

func TestChecklistStrategyFinishDay(t *testing.T) {
	fix := newChecklistStrategyFixture(t, testDay(1))
	ctx := context.Background()

	_, err := fix.strategy.Begin(ctx, "chat-1", 1)
	require.NoError(t, err)

	var result *TurnResult
	for i := 0; i < 7; i++ {
		fix.generator.replies = []GeneratorReply{{Message: "ok", Action: ActionComplete}}
		result, err = fix.strategy.HandleTurn(ctx, "chat-1", "done", false)
		require.NoError(t, err)
	}
	assert.True(t, result.LessonComplete)

	completions, err := fix.learners.Completions(ctx, "chat-1", repository.Pagination{})
	require.NoError(t, err)
	require.Len(t, completions, 1)
	assert.Equal(t, 1, completions[0].DayNumber)
	assert.True(t, completions[0].Passed)
	assert.Zero(t, completions[0].Score, "checklist days carry no assessment score")

	profile, err := fix.learners.Profile(ctx, "chat-1")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, 2, profile.CurrentDay)
}

func TestChecklistStrategyGeneratorSeesContext(t *testing.T) {
	fix := newChecklistStrategyFixture(t, testDay(1))
	ctx := context.Background()

	_, err := fix.strategy.Begin(ctx, "chat-1", 1)
	require.NoError(t, err)

	_, err = fix.strategy.HandleTurn(ctx, "chat-1", "hello!", false)
	require.NoError(t, err)

	require.Len(t, fix.generator.inputs, 1)
	in := fix.generator.inputs[0]
	assert.Equal(t, "hello!", in.StudentInput)
	assert.Contains(t, in.ChecklistText, "Current step: item_001")
	require.NotNil(t, in.CurrentContent)
	require.NotNil(t, in.CurrentContent.Vocabulary)
	assert.Equal(t, "v1", in.CurrentContent.Vocabulary.ID)
}
