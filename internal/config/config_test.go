package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easeaico/carl-bot/internal/storage"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CARL_HISTORY_BACKEND", "CARL_HISTORY_FILE", "CARL_SQLITE_PATH", "DATABASE_URL",
		"REDIS_ADDR", "CARL_SESSION_ID", "CARL_PERSONA_FILE", "CARL_CORPUS_FILE",
		"CARL_MARKOV_ORDER", "CARL_REPLY_LENGTH",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "file", cfg.HistoryBackend)
	assert.Equal(t, "history.json", cfg.HistoryFile)
	assert.Equal(t, 2, cfg.MarkovOrder)
	assert.Equal(t, 15, cfg.ReplyLength)
	assert.Equal(t, DefaultGreeting, cfg.Persona.Greeting)
	assert.Equal(t, "hello", cfg.Persona.Synonyms["hey"])
	assert.Len(t, cfg.Persona.Rules, 7)
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("CARL_HISTORY_BACKEND", "sqlite")
	t.Setenv("CARL_SQLITE_PATH", "/tmp/carl.db")
	t.Setenv("CARL_MARKOV_ORDER", "3")
	t.Setenv("CARL_REPLY_LENGTH", "not-a-number")
	t.Setenv("CARL_SESSION_ID", "abc")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MarkovOrder)
	assert.Equal(t, DefaultReplyLength, cfg.ReplyLength)

	opts := cfg.StorageOptions()
	assert.Equal(t, storage.BackendSQLite, opts.Backend)
	assert.Equal(t, "/tmp/carl.db", opts.SQLitePath)
	assert.Equal(t, "abc", opts.SessionID)
}

func TestLoadValidation(t *testing.T) {
	cases := map[string]map[string]string{
		"postgres without url": {"CARL_HISTORY_BACKEND": "postgres"},
		"unknown backend":      {"CARL_HISTORY_BACKEND": "floppy"},
		"zero order":           {"CARL_MARKOV_ORDER": "0"},
		"negative length":      {"CARL_REPLY_LENGTH": "-1"},
		"missing persona":      {"CARL_PERSONA_FILE": "/does/not/exist.yaml"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadPersonaFileOverridesDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "persona.yaml")
	persona := `
greeting: "Ahoy!"
rules:
  - name: pirate
    pattern: '\barr\b'
    responses: ["Arr, matey!"]
positive: [treasure]
`
	require.NoError(t, os.WriteFile(path, []byte(persona), 0o644))
	t.Setenv("CARL_PERSONA_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "Ahoy!", cfg.Persona.Greeting)
	assert.Equal(t, DefaultFarewell, cfg.Persona.Farewell)
	require.Len(t, cfg.Persona.Rules, 1)
	assert.Equal(t, "pirate", cfg.Persona.Rules[0].Name)
	assert.Equal(t, []string{"treasure"}, cfg.Persona.Positive)
	assert.Contains(t, cfg.Persona.Negative, "awful")
	assert.Equal(t, "hello", cfg.Persona.Synonyms["hi"])
}

func TestLoadPersonaInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persona.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules: [: bad"), 0o644))

	_, err := LoadPersona(path)
	assert.Error(t, err)
}

func TestDefaultPersonaIsACopy(t *testing.T) {
	p := DefaultPersona()
	p.Synonyms["hey"] = "yo"
	p.Positive[0] = "changed"

	fresh := DefaultPersona()
	assert.Equal(t, "hello", fresh.Synonyms["hey"])
	assert.Equal(t, "great", fresh.Positive[0])
}
