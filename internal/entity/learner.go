package entity

import "time"

// LearnerProfile is the durable per-chat record of curriculum position.
type LearnerProfile struct {
	ChatID     string    `json:"chat_id"`
	CurrentDay int       `json:"current_day"`
	StartedAt  time.Time `json:"started_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Normalize ensures defaults before persistence.
func (p *LearnerProfile) Normalize(now time.Time) {
	if p.CurrentDay < 1 {
		p.CurrentDay = 1
	}
	if p.StartedAt.IsZero() {
		p.StartedAt = now
	}
	p.UpdatedAt = now
}

// LessonCompletion records one finished lesson day and its assessment score.
type LessonCompletion struct {
	ChatID      string    `json:"chat_id"`
	DayNumber   int       `json:"day_number"`
	Score       int       `json:"score"`
	Passed      bool      `json:"passed"`
	CompletedAt time.Time `json:"completed_at"`
}

// ChatMessage is one line of recent conversation context handed to the
// content generator.
type ChatMessage struct {
	Role string    `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

const (
	RoleStudent = "student"
	RoleTutor   = "tutor"
)

// ContinuePlaceholder is the synthetic input an orchestrator substitutes when
// nudging a stalled conversation. Checklist completion must never be applied
// on its behalf.
const ContinuePlaceholder = "[continue]"
