package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/eslsoft/kyoshi/internal/entity"
	"github.com/eslsoft/kyoshi/internal/repository"
	"github.com/eslsoft/kyoshi/pkg/romaji"
)

const (
	// practiceTargetCap bounds the number of graded turns per practice phase.
	practiceTargetCap = 10
	// reviewMixProbability is the chance a practice turn draws from the
	// pending review items instead of the phase's own candidate set.
	reviewMixProbability = 0.3
	// passThreshold is the inclusive assessment pass mark.
	passThreshold = 70
	// maxAttemptsPerExercise resolves a turn as incorrect once reached.
	maxAttemptsPerExercise = 2
)

// ExerciseOutcome is the result of asking for the next practice turn: either
// a fresh exercise, a phase advance (target reached), or, in assessment,
// the computed score.
type ExerciseOutcome struct {
	Exercise      *entity.Exercise
	PhaseAdvanced bool
	Assessment    *entity.AssessmentResult
}

// ExerciseUsecase builds practice prompts from catalog items and grades
// free-text answers. Like PhaseUsecase it mutates state snapshots in place
// and leaves session persistence to the caller; durable writes (mastery
// history, lesson completions) happen inline through the injected stores.
type ExerciseUsecase interface {
	Generate(ctx context.Context, state *entity.LessonState) (*ExerciseOutcome, error)
	Evaluate(ctx context.Context, state *entity.LessonState, answer string) (*entity.Evaluation, error)
	Hint(state *entity.LessonState) (string, error)
	AssessmentScore(ctx context.Context, state *entity.LessonState) (*entity.AssessmentResult, error)
	Skip(ctx context.Context, state *entity.LessonState) error
}

// NewExerciseUsecase wires the collaborating engines and stores.
func NewExerciseUsecase(
	catalog repository.Catalog,
	phases PhaseUsecase,
	mastery MasteryUsecase,
	learners repository.LearnerRepository,
	rng Rand,
) ExerciseUsecase {
	return &exerciseUsecase{
		catalog:  catalog,
		phases:   phases,
		mastery:  mastery,
		learners: learners,
		rng:      rng,
		clock:    time.Now,
	}
}

type exerciseUsecase struct {
	catalog  repository.Catalog
	phases   PhaseUsecase
	mastery  MasteryUsecase
	learners repository.LearnerRepository
	rng      Rand
	clock    func() time.Time
}

func (u *exerciseUsecase) Generate(ctx context.Context, state *entity.LessonState) (*ExerciseOutcome, error) {
	if !state.Active() {
		return nil, entity.ErrNoActiveLesson
	}
	day, err := u.catalog.Day(ctx, state.DayNumber)
	if err != nil {
		return nil, fmt.Errorf("load day %d: %w", state.DayNumber, err)
	}
	if day == nil {
		return nil, entity.ErrDayNotFound
	}

	candidates := u.candidateItems(day, state)
	// Drop stale references up front so selection only sees gradable items.
	candidates = lo.Filter(candidates, func(ref entity.ItemRef, _ int) bool {
		return day.Resolve(ref) != nil
	})
	if len(candidates) == 0 {
		if err := u.phases.AdvancePhase(ctx, state); err != nil {
			return nil, err
		}
		return &ExerciseOutcome{PhaseAdvanced: true}, nil
	}

	target := len(candidates)
	if state.Phase != entity.PhaseAssessment {
		target = len(candidates) * 2
		if target > practiceTargetCap {
			target = practiceTargetCap
		}
	}

	if state.SessionAttempts() >= target {
		if state.Phase == entity.PhaseAssessment {
			result, err := u.AssessmentScore(ctx, state)
			if err != nil {
				return nil, err
			}
			return &ExerciseOutcome{Assessment: result}, nil
		}
		if err := u.phases.AdvancePhase(ctx, state); err != nil {
			return nil, err
		}
		return &ExerciseOutcome{PhaseAdvanced: true}, nil
	}

	ref := u.pickItemForPractice(day, state, candidates)
	exercise := u.createExerciseForItem(day.Resolve(ref))
	state.CurrentExercise = exercise
	state.UpdatedAt = u.clock()
	return &ExerciseOutcome{Exercise: exercise}, nil
}

func (u *exerciseUsecase) candidateItems(day *entity.DayContent, state *entity.LessonState) []entity.ItemRef {
	switch {
	case state.Phase == entity.PhaseReview:
		return state.PendingReviewItems
	case state.Phase == entity.PhaseAssessment:
		return day.ItemRefs()
	case state.Phase.IsPractice():
		return day.RefsOf(state.Phase.ContentType())
	default:
		return nil
	}
}

func (u *exerciseUsecase) pickItemForPractice(day *entity.DayContent, state *entity.LessonState, candidates []entity.ItemRef) entity.ItemRef {
	if len(state.PendingReviewItems) > 0 && u.rng.Float64() < reviewMixProbability {
		reviewable := lo.Filter(state.PendingReviewItems, func(ref entity.ItemRef, _ int) bool {
			return day.Resolve(ref) != nil
		})
		if len(reviewable) > 0 {
			return reviewable[u.rng.Intn(len(reviewable))]
		}
	}
	return candidates[u.rng.Intn(len(candidates))]
}

func (u *exerciseUsecase) createExerciseForItem(content *entity.ItemContent) *entity.Exercise {
	switch {
	case content.Vocabulary != nil:
		return u.vocabularyExercise(content.Vocabulary)
	case content.Grammar != nil:
		return u.grammarExercise(content.Grammar)
	default:
		return u.kanjiExercise(content.Kanji)
	}
}

func (u *exerciseUsecase) vocabularyExercise(v *entity.VocabularyItem) *entity.Exercise {
	kinds := []entity.ExerciseType{
		entity.ExerciseTranslationToEnglish,
		entity.ExerciseTranslationToJapanese,
		entity.ExerciseReadingPractice,
	}
	kind := kinds[u.rng.Intn(len(kinds))]

	categoryHint := "Think back to what we just covered."
	if v.Category != "" {
		categoryHint = fmt.Sprintf("It's a word about %s.", v.Category)
	}

	switch kind {
	case entity.ExerciseTranslationToEnglish:
		answers := answerVariants(v.English)
		return &entity.Exercise{
			Type:            kind,
			Prompt:          fmt.Sprintf("Translate to English: %s (%s)", v.Japanese, v.Romaji),
			ExpectedAnswers: answers,
			Hints: []string{
				categoryHint,
				partialReveal(answers[0]),
				"The answer is: " + answers[0],
			},
			ItemID:   v.ID,
			ItemType: entity.ContentVocabulary,
		}
	case entity.ExerciseTranslationToJapanese:
		answers := dedupeAnswers([]string{v.Japanese, v.Romaji})
		return &entity.Exercise{
			Type:            kind,
			Prompt:          fmt.Sprintf("How do you say %q in Japanese?", v.English),
			ExpectedAnswers: answers,
			Hints: []string{
				categoryHint,
				partialReveal(entity.NormalizeAnswer(v.Romaji)),
				fmt.Sprintf("The answer is: %s (%s)", v.Japanese, v.Romaji),
			},
			ItemID:   v.ID,
			ItemType: entity.ContentVocabulary,
		}
	default:
		answers := dedupeAnswers([]string{v.Romaji})
		return &entity.Exercise{
			Type:            entity.ExerciseReadingPractice,
			Prompt:          fmt.Sprintf("How do you read %s?", v.Japanese),
			ExpectedAnswers: answers,
			Hints: []string{
				categoryHint,
				partialReveal(answers[0]),
				"The reading is: " + answers[0],
			},
			ItemID:   v.ID,
			ItemType: entity.ContentVocabulary,
		}
	}
}

func (u *exerciseUsecase) grammarExercise(g *entity.GrammarPattern) *entity.Exercise {
	usage := g.Usage
	if usage == "" {
		usage = "Think about when this pattern is used."
	}
	example := g.Example
	if example == "" {
		example = "Try forming a short sentence with it."
	} else {
		example = "For example: " + example
	}
	return &entity.Exercise{
		Type:            entity.ExerciseGrammarFormation,
		Prompt:          fmt.Sprintf("What does the pattern %s express?", g.Pattern),
		ExpectedAnswers: answerVariants(g.Meaning),
		Hints: []string{
			usage,
			example,
			"It means: " + g.Meaning,
		},
		ItemID:   g.ID,
		ItemType: entity.ContentGrammar,
	}
}

func (u *exerciseUsecase) kanjiExercise(k *entity.KanjiItem) *entity.Exercise {
	kind := entity.ExerciseKanjiReading
	if u.rng.Intn(2) == 1 {
		kind = entity.ExerciseKanjiMeaning
	}

	if kind == entity.ExerciseKanjiReading {
		readings := dedupeAnswers(append(append([]string{}, k.Onyomi...), k.Kunyomi...))
		if len(readings) == 0 {
			kind = entity.ExerciseKanjiMeaning
		} else {
			return &entity.Exercise{
				Type:            kind,
				Prompt:          fmt.Sprintf("What is a reading of %s?", k.Kanji),
				ExpectedAnswers: readings,
				Hints: []string{
					fmt.Sprintf("This kanji has %d reading(s).", len(readings)),
					partialReveal(readings[0]),
					"Readings: " + strings.Join(readings, ", "),
				},
				ItemID:   k.ID,
				ItemType: entity.ContentKanji,
			}
		}
	}

	meanings := dedupeAnswers(k.Meanings)
	return &entity.Exercise{
		Type:            entity.ExerciseKanjiMeaning,
		Prompt:          fmt.Sprintf("What does %s mean?", k.Kanji),
		ExpectedAnswers: meanings,
		Hints: []string{
			fmt.Sprintf("It has %d accepted meaning(s).", len(meanings)),
			partialReveal(first(meanings)),
			"Meanings: " + strings.Join(meanings, ", "),
		},
		ItemID:   k.ID,
		ItemType: entity.ContentKanji,
	}
}

func (u *exerciseUsecase) Evaluate(ctx context.Context, state *entity.LessonState, answer string) (*entity.Evaluation, error) {
	if !state.Active() {
		return nil, entity.ErrNoActiveLesson
	}
	ex := state.CurrentExercise
	if ex == nil {
		return nil, entity.ErrNoActiveExercise
	}

	ex.Attempts++
	input := entity.NormalizeAnswer(answer)
	now := u.clock()

	// Tier 1: exact match.
	for _, expected := range ex.ExpectedAnswers {
		if entity.NormalizeAnswer(expected) == input && input != "" {
			state.CorrectThisSession++
			state.Results = append(state.Results, entity.ExerciseResult{
				Item: ex.Ref(), Correct: true, AnswerGiven: answer, At: now,
			})
			if _, err := u.mastery.RecordOutcome(ctx, state.ChatID, ex.Ref(), true, state.DayNumber); err != nil {
				return nil, fmt.Errorf("record mastery: %w", err)
			}
			state.CurrentExercise = nil
			state.UpdatedAt = now
			return &entity.Evaluation{Correct: true, ShouldAdvance: true, Feedback: "Correct!"}, nil
		}
	}

	// Tier 2: near miss, first attempt only.
	if ex.Attempts == 1 && input != "" && u.partialMatch(ex, input) {
		return &entity.Evaluation{Feedback: "Almost! Try to be more precise."}, nil
	}

	// Tier 3: failure.
	reveal := "Not quite. The answer is: " + primaryAnswer(ex)
	if ex.Attempts >= maxAttemptsPerExercise {
		state.IncorrectThisSession++
		state.Results = append(state.Results, entity.ExerciseResult{
			Item: ex.Ref(), Correct: false, AnswerGiven: answer, At: now,
		})
		if _, err := u.mastery.RecordOutcome(ctx, state.ChatID, ex.Ref(), false, state.DayNumber); err != nil {
			return nil, fmt.Errorf("record mastery: %w", err)
		}
		u.appendPendingReview(state, ex.Ref())
		state.CurrentExercise = nil
		state.UpdatedAt = now
		return &entity.Evaluation{ShouldAdvance: true, Feedback: reveal}, nil
	}
	return &entity.Evaluation{Feedback: reveal}, nil
}

func (u *exerciseUsecase) partialMatch(ex *entity.Exercise, input string) bool {
	for _, expected := range ex.ExpectedAnswers {
		want := entity.NormalizeAnswer(expected)
		if want == "" {
			continue
		}
		if strings.Contains(input, want) || strings.Contains(want, input) {
			return true
		}
		if romaji.Equivalent(input, want) {
			return true
		}
	}
	return false
}

func (u *exerciseUsecase) Hint(state *entity.LessonState) (string, error) {
	if !state.Active() {
		return "", entity.ErrNoActiveLesson
	}
	ex := state.CurrentExercise
	if ex == nil {
		return "", entity.ErrNoActiveExercise
	}
	if len(ex.Hints) == 0 {
		return "No hint available for this one.", nil
	}

	idx := ex.HintsGiven
	if idx >= len(ex.Hints) {
		idx = len(ex.Hints) - 1
	}
	ex.HintsGiven++
	state.HintsUsedThisSession++
	return ex.Hints[idx], nil
}

func (u *exerciseUsecase) AssessmentScore(ctx context.Context, state *entity.LessonState) (*entity.AssessmentResult, error) {
	if !state.Active() {
		return nil, entity.ErrNoActiveLesson
	}

	total := state.SessionAttempts()
	score := 0
	if total > 0 {
		score = int(math.Round(float64(state.CorrectThisSession) / float64(total) * 100))
	}
	result := &entity.AssessmentResult{
		Score:     score,
		Correct:   state.CorrectThisSession,
		Incorrect: state.IncorrectThisSession,
		Passed:    score >= passThreshold,
	}
	now := u.clock()

	if result.Passed {
		if err := u.learners.RecordCompletion(ctx, &entity.LessonCompletion{
			ChatID:      state.ChatID,
			DayNumber:   state.DayNumber,
			Score:       score,
			Passed:      true,
			CompletedAt: now,
		}); err != nil {
			return nil, fmt.Errorf("record completion: %w", err)
		}
		profile, err := u.learners.Profile(ctx, state.ChatID)
		if err != nil {
			return nil, err
		}
		if profile == nil {
			profile = &entity.LearnerProfile{ChatID: state.ChatID}
		}
		profile.CurrentDay = state.DayNumber + 1
		profile.Normalize(now)
		if err := u.learners.SaveProfile(ctx, profile); err != nil {
			return nil, fmt.Errorf("save profile: %w", err)
		}

		result.NextDay = profile.CurrentDay
		state.Phase = entity.PhaseComplete
		state.CurrentItems = nil
		state.CurrentExercise = nil
		state.UpdatedAt = now
		return result, nil
	}

	// Failed: re-drill the weak items, then the caller runs assessment again.
	state.Phase = entity.PhaseReview
	state.CurrentItems = state.PendingReviewItems
	state.CurrentItemIndex = 0
	state.CurrentExercise = nil
	state.CorrectThisSession = 0
	state.IncorrectThisSession = 0
	state.UpdatedAt = now
	return result, nil
}

func (u *exerciseUsecase) Skip(ctx context.Context, state *entity.LessonState) error {
	if !state.Active() {
		return entity.ErrNoActiveLesson
	}
	ex := state.CurrentExercise
	if ex == nil {
		return entity.ErrNoActiveExercise
	}

	// A skip counts as an incorrect result but deliberately bypasses the
	// mastery history used by graded failures.
	state.IncorrectThisSession++
	state.Results = append(state.Results, entity.ExerciseResult{
		Item: ex.Ref(), Correct: false, Skipped: true, At: u.clock(),
	})
	state.CurrentExercise = nil
	state.UpdatedAt = u.clock()
	return nil
}

func (u *exerciseUsecase) appendPendingReview(state *entity.LessonState, ref entity.ItemRef) {
	for _, existing := range state.PendingReviewItems {
		if existing == ref {
			return
		}
	}
	state.PendingReviewItems = append(state.PendingReviewItems, ref)
}

// answerVariants splits an English gloss like "hello / good day" into the
// individually accepted answers.
func answerVariants(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '/' || r == ';' })
	variants := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := entity.NormalizeAnswer(p); v != "" {
			variants = append(variants, v)
		}
	}
	if len(variants) == 0 {
		variants = append(variants, entity.NormalizeAnswer(s))
	}
	return variants
}

func dedupeAnswers(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	var out []string
	for _, s := range in {
		v := entity.NormalizeAnswer(s)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func primaryAnswer(ex *entity.Exercise) string {
	if len(ex.ExpectedAnswers) == 0 {
		return ""
	}
	return ex.ExpectedAnswers[0]
}

func partialReveal(answer string) string {
	r := []rune(answer)
	if len(r) == 0 {
		return "..."
	}
	return fmt.Sprintf("It starts with %q...", string(r[0]))
}

func first(ss []string) string {
	if len(ss) == 0 {
		return ""
	}
	return ss[0]
}
