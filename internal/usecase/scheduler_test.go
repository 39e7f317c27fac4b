package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eslsoft/kyoshi/internal/entity"
)

func newSchedulerFixture(t *testing.T, words ...entity.RankedWord) (*schedulerUsecase, *fakeWordProgressRepo) {
	t.Helper()
	catalog := newFakeCatalog()
	catalog.words = words
	repo := newFakeWordProgressRepo()
	return &schedulerUsecase{catalog: catalog, repo: repo, clock: testClock}, repo
}

func rankedWords(words ...string) []entity.RankedWord {
	out := make([]entity.RankedWord, 0, len(words))
	for i, w := range words {
		out = append(out, entity.RankedWord{Rank: i + 1, Word: w, Meaning: "meaning of " + w})
	}
	return out
}

func TestNextWordsTiering(t *testing.T) {
	uc, repo := newSchedulerFixture(t, rankedWords("wa", "desu", "kore", "sore", "are")...)
	ctx := context.Background()

	// "wa" is well practiced, "desu" and "kore" are barely exposed,
	// "sore" and "are" are unseen.
	seed := []entity.WordProgress{
		{Word: "wa", Rank: 1, Status: entity.WordLearning, TimesSeen: 10, TimesCorrect: 8},
		{Word: "desu", Rank: 2, Status: entity.WordLearning, TimesSeen: 3, TimesCorrect: 2},
		{Word: "kore", Rank: 3, Status: entity.WordLearning, TimesSeen: 1, TimesCorrect: 0},
	}
	for i := range seed {
		require.NoError(t, repo.Upsert(ctx, "chat-1", &seed[i]))
	}

	got, err := uc.NextWords(ctx, "chat-1", 5)
	require.NoError(t, err)

	words := make([]string, 0, len(got))
	for _, w := range got {
		words = append(words, w.Word)
	}
	assert.Equal(t, []string{"sore", "are", "kore", "desu", "wa"}, words)
}

func TestNextWordsHonorsLimit(t *testing.T) {
	uc, _ := newSchedulerFixture(t, rankedWords("wa", "desu", "kore")...)

	got, err := uc.NextWords(context.Background(), "chat-1", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "wa", got[0].Word)
	assert.Equal(t, "desu", got[1].Word)

	got, err = uc.NextWords(context.Background(), "chat-1", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNextWordsSkipsKnownAndIgnored(t *testing.T) {
	uc, repo := newSchedulerFixture(t, rankedWords("wa", "desu")...)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, "chat-1", &entity.WordProgress{
		Word: "wa", Rank: 1, Status: entity.WordKnown, TimesSeen: 20, TimesCorrect: 20,
	}))

	got, err := uc.NextWords(ctx, "chat-1", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "desu", got[0].Word)
}

func TestReviewWordsPriorityOrdering(t *testing.T) {
	uc, repo := newSchedulerFixture(t, rankedWords("wa", "desu")...)
	ctx := context.Background()
	now := testClock()

	// Perfect accuracy but 11 days stale: priority 0*5 + 11*0.5 = 5.5.
	require.NoError(t, repo.Upsert(ctx, "chat-1", &entity.WordProgress{
		Word: "desu", Rank: 2, Status: entity.WordLearning,
		TimesSeen: 10, TimesCorrect: 10, LastSeen: now.Add(-11 * 24 * time.Hour),
	}))
	// 30% accuracy seen today: priority 0.7*5 + 0 = 3.5.
	require.NoError(t, repo.Upsert(ctx, "chat-1", &entity.WordProgress{
		Word: "wa", Rank: 1, Status: entity.WordLearning,
		TimesSeen: 10, TimesCorrect: 3, LastSeen: now,
	}))

	got, err := uc.ReviewWords(ctx, "chat-1", 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "desu", got[0].Word)
	assert.Equal(t, "wa", got[1].Word)

	got, err = uc.ReviewWords(ctx, "chat-1", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "desu", got[0].Word)
}

func TestReviewWordsIgnoresNonLearning(t *testing.T) {
	uc, repo := newSchedulerFixture(t, rankedWords("wa")...)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, "chat-1", &entity.WordProgress{
		Word: "wa", Rank: 1, Status: entity.WordKnown, TimesSeen: 10, TimesCorrect: 10,
	}))

	got, err := uc.ReviewWords(ctx, "chat-1", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRecordExposure(t *testing.T) {
	uc, repo := newSchedulerFixture(t, rankedWords("wa", "desu")...)
	ctx := context.Background()

	require.NoError(t, uc.RecordExposure(ctx, "chat-1", "desu", true))

	p, err := repo.Get(ctx, "chat-1", "desu")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, entity.WordLearning, p.Status)
	assert.Equal(t, 2, p.Rank, "rank is filled in from the catalog")
	assert.Equal(t, 1, p.TimesSeen)
	assert.Equal(t, 1, p.TimesCorrect)
	assert.Equal(t, testClock(), p.LastSeen)

	require.NoError(t, uc.RecordExposure(ctx, "chat-1", "desu", false))
	p, err = repo.Get(ctx, "chat-1", "desu")
	require.NoError(t, err)
	assert.Equal(t, 2, p.TimesSeen)
	assert.Equal(t, 1, p.TimesCorrect)
}
