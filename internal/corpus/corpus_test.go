package corpus

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextIsSingleLine(t *testing.T) {
	text := Text()
	require.NotEmpty(t, text)
	assert.NotContains(t, text, "\n")
	assert.True(t, strings.HasPrefix(text, "Hello there I am Carl"))
	assert.Greater(t, len(strings.Fields(text)), 100)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.txt")
	require.NoError(t, os.WriteFile(path, []byte("first line.\n\n  second line.\n"), 0o644))

	text, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "first line. second line.", text)
}

func TestLoadDefaultsToBuiltin(t *testing.T) {
	text, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Text(), text)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
