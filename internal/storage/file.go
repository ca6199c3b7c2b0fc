package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/google/jsonschema-go/jsonschema"
)

// DefaultHistoryFile is used when no path is configured.
const DefaultHistoryFile = "history.json"

// historySchema accepts a JSON array of strings.
var historySchema = &jsonschema.Schema{
	Type:  "array",
	Items: &jsonschema.Schema{Type: "string"},
}

// FileStore keeps the transcript as an indented JSON array.
type FileStore struct {
	path   string
	schema *jsonschema.Resolved
}

// NewFileStore returns a FileStore writing to path.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultHistoryFile
	}
	resolved, err := historySchema.Resolve(nil)
	if err != nil {
		panic(fmt.Sprintf("invalid history schema: %v", err))
	}
	return &FileStore{path: path, schema: resolved}
}

// Path returns the file the store reads and writes.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(ctx context.Context) ([]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return []string{}, fmt.Errorf("failed to read history file: %w", err)
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return []string{}, fmt.Errorf("%w: %v", ErrMalformedHistory, err)
	}
	if err := s.schema.Validate(raw); err != nil {
		return []string{}, fmt.Errorf("%w: %v", ErrMalformedHistory, err)
	}

	items, _ := raw.([]any)
	lines := make([]string, 0, len(items))
	for _, item := range items {
		line, _ := item.(string)
		lines = append(lines, line)
	}
	return lines, nil
}

func (s *FileStore) Save(ctx context.Context, lines []string) error {
	if lines == nil {
		lines = []string{}
	}
	data, err := json.MarshalIndent(lines, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}
