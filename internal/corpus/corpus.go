// Package corpus embeds the sentences Carl's Markov chain is trained on.
package corpus

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
)

//go:embed corpus.txt
var builtin string

// Text returns the built-in corpus with one space between sentences.
func Text() string {
	return join(builtin)
}

// Load returns the corpus at path, or the built-in corpus when path is empty.
func Load(path string) (string, error) {
	if path == "" {
		return Text(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read corpus: %w", err)
	}
	return join(string(data)), nil
}

func join(raw string) string {
	lines := strings.Split(raw, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, " ")
}
