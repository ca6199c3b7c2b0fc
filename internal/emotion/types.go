package emotion

// EmotionLabel is a sentiment label.
type EmotionLabel string

const (
	EmotionPositive EmotionLabel = "Positive"
	EmotionNegative EmotionLabel = "Negative"
	EmotionNeutral  EmotionLabel = "Neutral"
)

const (
	// MinMood and MaxMood bound the mood score.
	MinMood = -5
	MaxMood = 5

	// moodThreshold is the distance from zero at which mood colours replies.
	moodThreshold = 2
)

// ClampMood bounds mood to [MinMood, MaxMood].
func ClampMood(score int) int {
	switch {
	case score < MinMood:
		return MinMood
	case score > MaxMood:
		return MaxMood
	default:
		return score
	}
}

// LabelFor returns the label for a mood score.
func LabelFor(mood int) EmotionLabel {
	switch {
	case mood >= moodThreshold:
		return EmotionPositive
	case mood <= -moodThreshold:
		return EmotionNegative
	default:
		return EmotionNeutral
	}
}
