package emotion

// MoodSuffix returns the emoticon appended to generated replies for label.
func MoodSuffix(label EmotionLabel) string {
	switch label {
	case EmotionPositive:
		return " :)"
	case EmotionNegative:
		return " :("
	default:
		return ""
	}
}
