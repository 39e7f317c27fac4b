package entity

import "time"

// WordStatus is the lifecycle state of a frequency-ranked catalog word for
// one learner. Words without a WordProgress record are unseen.
type WordStatus string

const (
	WordLearning WordStatus = "learning"
	WordKnown    WordStatus = "known"
	WordIgnored  WordStatus = "ignored"
)

// LowSeenThreshold separates barely exposed words from properly practiced
// ones when scheduling new material.
const LowSeenThreshold = 5

// WordProgress tracks exposure history for one ranked catalog word.
type WordProgress struct {
	Word         string     `json:"word"`
	Rank         int        `json:"rank"`
	Status       WordStatus `json:"status"`
	TimesSeen    int        `json:"times_seen"`
	TimesCorrect int        `json:"times_correct"`
	LastSeen     time.Time  `json:"last_seen"`
}

// Accuracy is the fraction of exposures answered correctly; zero exposures
// count as zero accuracy.
func (p *WordProgress) Accuracy() float64 {
	if p.TimesSeen == 0 {
		return 0
	}
	return float64(p.TimesCorrect) / float64(p.TimesSeen)
}

// LowSeen reports whether the word is still in its first few exposures.
func (p *WordProgress) LowSeen() bool {
	return p.Status == WordLearning && p.TimesSeen < LowSeenThreshold
}
