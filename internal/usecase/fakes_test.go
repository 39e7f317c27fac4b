package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/eslsoft/kyoshi/internal/entity"
	"github.com/eslsoft/kyoshi/internal/repository"
)

var testClock = func() time.Time {
	return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
}

func testDay(day int) *entity.DayContent {
	return &entity.DayContent{
		DayNumber: day,
		Title:     "Greetings",
		Vocabulary: []entity.VocabularyItem{
			{ID: "v1", Japanese: "こんにちは", Romaji: "konnichiwa", English: "hello", Category: "greetings"},
			{ID: "v2", Japanese: "ありがとう", Romaji: "arigatou", English: "thank you", Category: "greetings"},
			{ID: "v3", Japanese: "東京", Romaji: "toukyou", English: "tokyo", Category: "places"},
		},
		Grammar: []entity.GrammarPattern{
			{ID: "g1", Pattern: "〜です", Meaning: "to be (polite)", Usage: "Ends polite statements.", Example: "学生です。"},
			{ID: "g2", Pattern: "〜ます", Meaning: "polite verb ending", Usage: "Polite non-past verbs.", Example: "行きます。"},
		},
	}
}

func testDayWithKanji(day int) *entity.DayContent {
	d := testDay(day)
	d.Kanji = []entity.KanjiItem{
		{ID: "k1", Kanji: "日", Onyomi: []string{"nichi"}, Kunyomi: []string{"hi"}, Meanings: []string{"sun", "day"}},
	}
	return d
}

type fakeCatalog struct {
	days  map[int]*entity.DayContent
	words []entity.RankedWord
}

func newFakeCatalog(days ...*entity.DayContent) *fakeCatalog {
	c := &fakeCatalog{days: make(map[int]*entity.DayContent)}
	for _, d := range days {
		c.days[d.DayNumber] = d
	}
	return c
}

func (c *fakeCatalog) Day(_ context.Context, day int) (*entity.DayContent, error) {
	return c.days[day], nil
}

func (c *fakeCatalog) Lesson(_ context.Context, _ int) (*entity.LessonDefinition, error) {
	return nil, nil
}

func (c *fakeCatalog) WordList(_ context.Context) ([]entity.RankedWord, error) {
	return c.words, nil
}

func (c *fakeCatalog) MaxDay(_ context.Context) (int, error) {
	maxDay := 0
	for n := range c.days {
		if n > maxDay {
			maxDay = n
		}
	}
	return maxDay, nil
}

type fakeMasteryRepo struct {
	mu    sync.RWMutex
	items map[string]map[string]*entity.ItemMastery
}

func newFakeMasteryRepo() *fakeMasteryRepo {
	return &fakeMasteryRepo{items: make(map[string]map[string]*entity.ItemMastery)}
}

func (r *fakeMasteryRepo) Get(_ context.Context, chatID, itemID string) (*entity.ItemMastery, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if m, ok := r.items[chatID][itemID]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeMasteryRepo) Upsert(_ context.Context, chatID string, m *entity.ItemMastery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.items[chatID] == nil {
		r.items[chatID] = make(map[string]*entity.ItemMastery)
	}
	cp := *m
	r.items[chatID][m.ItemID] = &cp
	return nil
}

func (r *fakeMasteryRepo) List(_ context.Context, chatID string, page repository.Pagination) ([]entity.ItemMastery, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []entity.ItemMastery
	for _, m := range r.items[chatID] {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return pageSlice(out, page), nil
}

func pageSlice[T any](items []T, page repository.Pagination) []T {
	page.Normalize()
	start := int(page.Offset())
	if start >= len(items) {
		return nil
	}
	end := start + int(page.PageSize)
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func (r *fakeMasteryRepo) ListNeedingReview(_ context.Context, chatID string, targetDay, belowLevel int) ([]entity.ItemMastery, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []entity.ItemMastery
	for _, m := range r.items[chatID] {
		if m.DayIntroduced >= targetDay {
			continue
		}
		if m.NeedsReview || m.MasteryLevel < belowLevel {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out, nil
}

type fakeWordProgressRepo struct {
	mu      sync.RWMutex
	records map[string]map[string]*entity.WordProgress
}

func newFakeWordProgressRepo() *fakeWordProgressRepo {
	return &fakeWordProgressRepo{records: make(map[string]map[string]*entity.WordProgress)}
}

func (r *fakeWordProgressRepo) Get(_ context.Context, chatID, word string) (*entity.WordProgress, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.records[chatID][word]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeWordProgressRepo) Upsert(_ context.Context, chatID string, p *entity.WordProgress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.records[chatID] == nil {
		r.records[chatID] = make(map[string]*entity.WordProgress)
	}
	cp := *p
	r.records[chatID][p.Word] = &cp
	return nil
}

func (r *fakeWordProgressRepo) ListByStatus(_ context.Context, chatID string, status entity.WordStatus) ([]entity.WordProgress, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []entity.WordProgress
	for _, p := range r.records[chatID] {
		if p.Status == status {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Word < out[j].Word })
	return out, nil
}

func (r *fakeWordProgressRepo) ListAll(_ context.Context, chatID string) ([]entity.WordProgress, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []entity.WordProgress
	for _, p := range r.records[chatID] {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Word < out[j].Word })
	return out, nil
}

type fakeLearnerRepo struct {
	mu          sync.RWMutex
	profiles    map[string]*entity.LearnerProfile
	completions []entity.LessonCompletion
}

func newFakeLearnerRepo() *fakeLearnerRepo {
	return &fakeLearnerRepo{profiles: make(map[string]*entity.LearnerProfile)}
}

func (r *fakeLearnerRepo) Profile(_ context.Context, chatID string) (*entity.LearnerProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.profiles[chatID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeLearnerRepo) SaveProfile(_ context.Context, profile *entity.LearnerProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *profile
	r.profiles[profile.ChatID] = &cp
	return nil
}

func (r *fakeLearnerRepo) RecordCompletion(_ context.Context, completion *entity.LessonCompletion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completions = append(r.completions, *completion)
	return nil
}

func (r *fakeLearnerRepo) Completions(_ context.Context, chatID string, page repository.Pagination) ([]entity.LessonCompletion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []entity.LessonCompletion
	for _, c := range r.completions {
		if c.ChatID == chatID {
			out = append(out, c)
		}
	}
	return pageSlice(out, page), nil
}

type fakeSessionRepo struct {
	mu         sync.RWMutex
	states     map[string]*entity.LessonState
	checklists map[string]*entity.Checklist
	messages   map[string][]entity.ChatMessage
	turns      map[string]struct{}
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{
		states:     make(map[string]*entity.LessonState),
		checklists: make(map[string]*entity.Checklist),
		messages:   make(map[string][]entity.ChatMessage),
		turns:      make(map[string]struct{}),
	}
}

func (r *fakeSessionRepo) LessonState(_ context.Context, chatID string) (*entity.LessonState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.states[chatID], nil
}

func (r *fakeSessionRepo) SaveLessonState(_ context.Context, state *entity.LessonState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[state.ChatID] = state
	return nil
}

func (r *fakeSessionRepo) ClearLessonState(_ context.Context, chatID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, chatID)
	return nil
}

func (r *fakeSessionRepo) Checklist(_ context.Context, chatID string) (*entity.Checklist, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.checklists[chatID], nil
}

func (r *fakeSessionRepo) SaveChecklist(_ context.Context, checklist *entity.Checklist) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checklists[checklist.ChatID] = checklist
	return nil
}

func (r *fakeSessionRepo) ClearChecklist(_ context.Context, chatID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.checklists, chatID)
	return nil
}

func (r *fakeSessionRepo) AppendMessage(_ context.Context, chatID string, msg entity.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages[chatID] = append(r.messages[chatID], msg)
	return nil
}

func (r *fakeSessionRepo) RecentMessages(_ context.Context, chatID string, limit int) ([]entity.ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	msgs := r.messages[chatID]
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return append([]entity.ChatMessage(nil), msgs...), nil
}

func (r *fakeSessionRepo) MarkTurn(_ context.Context, chatID, turnID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := chatID + "/" + turnID
	if _, ok := r.turns[key]; ok {
		return true, nil
	}
	r.turns[key] = struct{}{}
	return false, nil
}

// scriptedRand replays queued values; exhausted queues fall back to zero so
// selections become deterministic "first item" picks.
type scriptedRand struct {
	ints   []int
	floats []float64
}

func (r *scriptedRand) Intn(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v % n
}

func (r *scriptedRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0.99
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

type fakeGenerator struct {
	replies []GeneratorReply
	inputs  []GeneratorInput
}

func (g *fakeGenerator) Respond(_ context.Context, in GeneratorInput) (*GeneratorReply, error) {
	g.inputs = append(g.inputs, in)
	if len(g.replies) == 0 {
		return &GeneratorReply{Message: "ok", Action: ActionNone}, nil
	}
	reply := g.replies[0]
	g.replies = g.replies[1:]
	return &reply, nil
}
