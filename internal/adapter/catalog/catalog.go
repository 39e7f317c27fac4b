package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/eslsoft/kyoshi/internal/entity"
	"github.com/eslsoft/kyoshi/internal/repository"
)

const (
	dayFilePattern  = "day_*.yaml"
	lessonsFileName = "lessons.yaml"
	wordsFileName   = "words.yaml"
)

// FileCatalog serves curriculum content from a directory of YAML files:
// one day_NNN.yaml per lesson day, an optional lessons.yaml with the
// prerequisite graph and an optional words.yaml frequency-ranked word list.
// Everything is loaded once at construction; the catalog is immutable after
// that and safe for concurrent use.
type FileCatalog struct {
	days    map[int]*entity.DayContent
	lessons map[int]*entity.LessonDefinition
	words   []entity.RankedWord
	maxDay  int
}

var _ repository.Catalog = (*FileCatalog)(nil)

// NewFileCatalog loads the curriculum from dir.
func NewFileCatalog(dir string) (*FileCatalog, error) {
	c := &FileCatalog{
		days:    make(map[int]*entity.DayContent),
		lessons: make(map[int]*entity.LessonDefinition),
	}

	dayFiles, err := filepath.Glob(filepath.Join(dir, dayFilePattern))
	if err != nil {
		return nil, fmt.Errorf("list day files: %w", err)
	}
	sort.Strings(dayFiles)
	for _, path := range dayFiles {
		day, err := loadDayFile(path)
		if err != nil {
			return nil, err
		}
		if _, dup := c.days[day.DayNumber]; dup {
			return nil, fmt.Errorf("duplicate day %d in %s", day.DayNumber, path)
		}
		c.days[day.DayNumber] = day
		if day.DayNumber > c.maxDay {
			c.maxDay = day.DayNumber
		}
	}

	if err := c.loadLessons(filepath.Join(dir, lessonsFileName)); err != nil {
		return nil, err
	}
	if err := c.loadWords(filepath.Join(dir, wordsFileName)); err != nil {
		return nil, err
	}
	return c, nil
}

func loadDayFile(path string) (*entity.DayContent, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var day entity.DayContent
	if err := yaml.Unmarshal(raw, &day); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if day.DayNumber <= 0 {
		return nil, fmt.Errorf("%s: missing or invalid day number", path)
	}
	return &day, nil
}

func (c *FileCatalog) loadLessons(path string) error {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	var lessons []entity.LessonDefinition
	if err := yaml.Unmarshal(raw, &lessons); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	for i := range lessons {
		c.lessons[lessons[i].LessonNumber] = &lessons[i]
	}
	return nil
}

func (c *FileCatalog) loadWords(path string) error {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &c.words); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	sort.SliceStable(c.words, func(i, j int) bool { return c.words[i].Rank < c.words[j].Rank })
	return nil
}

func (c *FileCatalog) Day(_ context.Context, dayNumber int) (*entity.DayContent, error) {
	return c.days[dayNumber], nil
}

func (c *FileCatalog) Lesson(_ context.Context, lessonNumber int) (*entity.LessonDefinition, error) {
	return c.lessons[lessonNumber], nil
}

func (c *FileCatalog) WordList(_ context.Context) ([]entity.RankedWord, error) {
	return c.words, nil
}

func (c *FileCatalog) MaxDay(_ context.Context) (int, error) {
	return c.maxDay, nil
}

// Days returns every loaded day in ascending order. The export command uses
// it to round-trip a curriculum directory.
func (c *FileCatalog) Days() []*entity.DayContent {
	out := make([]*entity.DayContent, 0, len(c.days))
	for _, d := range c.days {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DayNumber < out[j].DayNumber })
	return out
}
