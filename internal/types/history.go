package types

import (
	"fmt"
	"strings"
)

// Speaker tags a transcript line.
type Speaker string

const (
	SpeakerUser Speaker = "User"
	SpeakerBot  Speaker = "Carl"
)

// HistoryLine formats a transcript line as "<speaker>: <text>".
func HistoryLine(speaker Speaker, text string) string {
	return fmt.Sprintf("%s: %s", speaker, text)
}

// SplitHistoryLine returns the speaker and text of a transcript line.
// ok is false when the line carries no known speaker tag.
func SplitHistoryLine(line string) (Speaker, string, bool) {
	for _, speaker := range []Speaker{SpeakerUser, SpeakerBot} {
		prefix := string(speaker) + ": "
		if strings.HasPrefix(line, prefix) {
			return speaker, strings.TrimPrefix(line, prefix), true
		}
	}
	return "", line, false
}
