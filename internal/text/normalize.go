// Package text normalizes inbound messages before rule matching and scoring.
package text

import "strings"

// Punctuation is stripped from both ends of every token.
const Punctuation = ".,!?"

// DefaultSynonyms maps common variants onto the words the rule table expects.
var DefaultSynonyms = map[string]string{
	"hey":       "hello",
	"hi":        "hello",
	"greetings": "hello",
	"thanks":    "thank you",
	"bye":       "goodbye",
}

// Normalizer lower-cases, strips punctuation and substitutes synonyms.
type Normalizer struct {
	synonyms map[string]string
}

// NewNormalizer returns a Normalizer using synonyms. A nil map disables substitution.
func NewNormalizer(synonyms map[string]string) *Normalizer {
	table := make(map[string]string, len(synonyms))
	for from, to := range synonyms {
		table[strings.ToLower(from)] = to
	}
	return &Normalizer{synonyms: table}
}

// Normalize rewrites message token by token and rejoins with single spaces.
func (n *Normalizer) Normalize(message string) string {
	fields := strings.Fields(message)
	words := make([]string, 0, len(fields))
	for _, field := range fields {
		key := CleanToken(field)
		if sub, ok := n.synonyms[key]; ok {
			key = sub
		}
		words = append(words, key)
	}
	return strings.Join(words, " ")
}

// CleanToken lower-cases a token and trims surrounding punctuation.
func CleanToken(token string) string {
	return strings.Trim(strings.ToLower(token), Punctuation)
}

// FirstTokens returns the first n whitespace-delimited tokens of s, or nil
// when s holds fewer than n tokens.
func FirstTokens(s string, n int) []string {
	fields := strings.Fields(s)
	if n <= 0 || len(fields) < n {
		return nil
	}
	return fields[:n]
}
