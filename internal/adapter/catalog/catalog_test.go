package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileCatalog(t *testing.T) {
	c, err := NewFileCatalog("testdata")
	require.NoError(t, err)
	ctx := context.Background()

	day, err := c.Day(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, day)
	assert.Equal(t, "Greetings", day.Title)
	require.Len(t, day.Vocabulary, 2)
	assert.Equal(t, "konnichiwa", day.Vocabulary[0].Romaji)
	require.Len(t, day.Grammar, 1)
	assert.Empty(t, day.Kanji)

	day, err = c.Day(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, day)
	require.Len(t, day.Kanji, 1)
	assert.Equal(t, []string{"ichi"}, day.Kanji[0].Onyomi)

	missing, err := c.Day(ctx, 9)
	require.NoError(t, err)
	assert.Nil(t, missing, "unknown days resolve to nil, not an error")

	maxDay, err := c.MaxDay(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, maxDay)
}

func TestFileCatalogLessons(t *testing.T) {
	c, err := NewFileCatalog("testdata")
	require.NoError(t, err)
	ctx := context.Background()

	lesson, err := c.Lesson(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, lesson)
	assert.Equal(t, "Getting Around", lesson.Title)
	assert.Equal(t, []int{1}, lesson.Prerequisites)

	missing, err := c.Lesson(ctx, 9)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFileCatalogWordListSortedByRank(t *testing.T) {
	c, err := NewFileCatalog("testdata")
	require.NoError(t, err)

	words, err := c.WordList(context.Background())
	require.NoError(t, err)
	require.Len(t, words, 2)
	assert.Equal(t, "は", words[0].Word)
	assert.Equal(t, "です", words[1].Word)
}

func TestFileCatalogEmptyDirectory(t *testing.T) {
	c, err := NewFileCatalog(t.TempDir())
	require.NoError(t, err)

	maxDay, err := c.MaxDay(context.Background())
	require.NoError(t, err)
	assert.Zero(t, maxDay)
	assert.Empty(t, c.Days())
}

func TestFileCatalogRejectsDuplicateDays(t *testing.T) {
	dir := t.TempDir()
	content := []byte("day: 1\ntitle: A\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "day_001.yaml"), content, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "day_001_copy.yaml"), content, 0o644))

	_, err := NewFileCatalog(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate day")
}

func TestFileCatalogRejectsInvalidDayNumber(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "day_bad.yaml"), []byte("title: no number\n"), 0o644))

	_, err := NewFileCatalog(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid day number")
}

func TestFileCatalogDaysOrdered(t *testing.T) {
	c, err := NewFileCatalog("testdata")
	require.NoError(t, err)

	days := c.Days()
	require.Len(t, days, 2)
	assert.Equal(t, 1, days[0].DayNumber)
	assert.Equal(t, 2, days[1].DayNumber)
}
