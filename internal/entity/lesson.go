package entity

import "time"

// Phase is a stage of the legacy linear lesson state machine.
type Phase string

const (
	PhaseIdle               Phase = "idle"
	PhaseIntro              Phase = "intro"
	PhaseVocabularyTeaching Phase = "vocabulary_teaching"
	PhaseVocabularyPractice Phase = "vocabulary_practice"
	PhaseGrammarTeaching    Phase = "grammar_teaching"
	PhaseGrammarPractice    Phase = "grammar_practice"
	PhaseKanjiTeaching      Phase = "kanji_teaching"
	PhaseKanjiPractice      Phase = "kanji_practice"
	PhaseAssessment         Phase = "assessment"
	PhaseReview             Phase = "review"
	PhaseComplete           Phase = "complete"
)

// phaseOrder is the fixed forward sequence. PhaseReview sits outside it and
// is reachable only from PhaseAssessment on a failed score.
var phaseOrder = []Phase{
	PhaseIdle,
	PhaseIntro,
	PhaseVocabularyTeaching,
	PhaseVocabularyPractice,
	PhaseGrammarTeaching,
	PhaseGrammarPractice,
	PhaseKanjiTeaching,
	PhaseKanjiPractice,
	PhaseAssessment,
	PhaseComplete,
}

// Next returns the phase following p in the fixed order. The second return is
// false for terminal phases and for PhaseReview, which has no ordered
// successor (a failed review loops back through assessment explicitly).
func (p Phase) Next() (Phase, bool) {
	if p == PhaseReview {
		return PhaseAssessment, true
	}
	for i, cur := range phaseOrder {
		if cur == p && i+1 < len(phaseOrder) {
			return phaseOrder[i+1], true
		}
	}
	return PhaseComplete, false
}

// IsKanji reports whether p is one of the kanji phases, which are skipped
// entirely on days without kanji content.
func (p Phase) IsKanji() bool {
	return p == PhaseKanjiTeaching || p == PhaseKanjiPractice
}

// IsPractice reports whether p is an ordinary practice phase.
func (p Phase) IsPractice() bool {
	return p == PhaseVocabularyPractice || p == PhaseGrammarPractice || p == PhaseKanjiPractice
}

// IsTeaching reports whether p presents items without grading.
func (p Phase) IsTeaching() bool {
	return p == PhaseVocabularyTeaching || p == PhaseGrammarTeaching || p == PhaseKanjiTeaching
}

// ContentType maps a vocabulary/grammar/kanji phase to its section.
func (p Phase) ContentType() ContentType {
	switch p {
	case PhaseVocabularyTeaching, PhaseVocabularyPractice:
		return ContentVocabulary
	case PhaseGrammarTeaching, PhaseGrammarPractice:
		return ContentGrammar
	case PhaseKanjiTeaching, PhaseKanjiPractice:
		return ContentKanji
	default:
		return ""
	}
}

// ExerciseResult records the resolution of one practice turn.
type ExerciseResult struct {
	Item        ItemRef   `json:"item"`
	Correct     bool      `json:"correct"`
	AnswerGiven string    `json:"answer_given,omitempty"`
	Skipped     bool      `json:"skipped,omitempty"`
	At          time.Time `json:"at"`
}

// LessonState is the mutable per-chat state of a phase-driven lesson.
// Operations mutate a loaded snapshot; persisting the snapshot afterwards is
// the caller's explicit, separate step.
type LessonState struct {
	ChatID               string           `json:"chat_id"`
	DayNumber            int              `json:"day_number"`
	Phase                Phase            `json:"phase"`
	CurrentItemIndex     int              `json:"current_item_index"`
	CurrentItems         []ItemRef        `json:"current_items,omitempty"`
	CurrentExercise      *Exercise        `json:"current_exercise,omitempty"`
	CorrectThisSession   int              `json:"correct_this_session"`
	IncorrectThisSession int              `json:"incorrect_this_session"`
	HintsUsedThisSession int              `json:"hints_used_this_session"`
	PendingReviewItems   []ItemRef        `json:"pending_review_items,omitempty"`
	Results              []ExerciseResult `json:"results,omitempty"`
	StartedAt            time.Time        `json:"started_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}

// Active reports whether the state represents a lesson in progress.
func (s *LessonState) Active() bool {
	return s != nil && s.Phase != PhaseIdle && s.Phase != PhaseComplete
}

// SessionAttempts is the number of resolved practice turns so far.
func (s *LessonState) SessionAttempts() int {
	return s.CorrectThisSession + s.IncorrectThisSession
}
