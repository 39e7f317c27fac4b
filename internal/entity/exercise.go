package entity

// ExerciseType names the kind of question generated for a practice turn.
type ExerciseType string

const (
	ExerciseTranslationToEnglish  ExerciseType = "translation_to_english"
	ExerciseTranslationToJapanese ExerciseType = "translation_to_japanese"
	ExerciseReadingPractice       ExerciseType = "reading_practice"
	ExerciseGrammarFormation      ExerciseType = "grammar_formation"
	ExerciseKanjiReading          ExerciseType = "kanji_reading"
	ExerciseKanjiMeaning          ExerciseType = "kanji_meaning"
)

// Exercise is one generated question with its expected answers and escalating
// hints. It lives on the lesson state from generation until the turn resolves
// (correct answer, exhausted attempts, or skip).
type Exercise struct {
	Type            ExerciseType `json:"type"`
	Prompt          string       `json:"prompt"`
	ExpectedAnswers []string     `json:"expected_answers"`
	Hints           []string     `json:"hints"`
	HintsGiven      int          `json:"hints_given"`
	Attempts        int          `json:"attempts"`
	ItemID          string       `json:"item_id"`
	ItemType        ContentType  `json:"item_type"`
}

// Ref returns the (id, type) handle of the item being practiced.
func (e *Exercise) Ref() ItemRef {
	return ItemRef{ID: e.ItemID, Type: e.ItemType}
}

// Evaluation is the outcome of grading one answer.
type Evaluation struct {
	Correct       bool   `json:"correct"`
	ShouldAdvance bool   `json:"should_advance"`
	Feedback      string `json:"feedback"`
}

// AssessmentResult is the outcome of scoring a completed assessment phase.
type AssessmentResult struct {
	Score     int  `json:"score"`
	Correct   int  `json:"correct"`
	Incorrect int  `json:"incorrect"`
	Passed    bool `json:"passed"`
	NextDay   int  `json:"next_day,omitempty"`
}
