// Package emotion tracks Carl's mood from keyword sentiment.
package emotion

import "strings"

// DefaultPositive and DefaultNegative are the built-in sentiment keywords.
var (
	DefaultPositive = []string{"great", "good", "love", "like", "awesome", "nice", "wonderful"}
	DefaultNegative = []string{"bad", "hate", "terrible", "awful", "horrible"}
)

const stripChars = ".,!?\n"

// Tracker keeps a bounded mood score for one conversation.
type Tracker struct {
	positive map[string]struct{}
	negative map[string]struct{}
	mood     int
}

// NewTracker returns a Tracker at neutral mood.
func NewTracker(positive, negative []string) *Tracker {
	return &Tracker{
		positive: wordSet(positive),
		negative: wordSet(negative),
	}
}

// Update scores the distinct words of message and returns the new mood.
// Each distinct positive keyword adds one, each negative keyword subtracts one.
func (t *Tracker) Update(message string) int {
	seen := make(map[string]struct{})
	for _, field := range strings.Fields(message) {
		seen[strings.ToLower(strings.Trim(field, stripChars))] = struct{}{}
	}

	score := t.mood
	for word := range seen {
		if _, ok := t.positive[word]; ok {
			score++
		}
		if _, ok := t.negative[word]; ok {
			score--
		}
	}
	t.mood = ClampMood(score)
	return t.mood
}

// Mood returns the current score.
func (t *Tracker) Mood() int {
	return t.mood
}

// Label returns the label for the current score.
func (t *Tracker) Label() EmotionLabel {
	return LabelFor(t.mood)
}

// Suffix returns the emoticon for the current score.
func (t *Tracker) Suffix() string {
	return MoodSuffix(t.Label())
}

func wordSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}
