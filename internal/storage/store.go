// Package storage persists Carl's conversation transcript.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Backend names a HistoryStore implementation.
type Backend string

const (
	BackendFile     Backend = "file"
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
	BackendRedis    Backend = "redis"
	BackendMemory   Backend = "memory"
)

var (
	// ErrUnknownBackend is returned by Open for an unrecognised backend name.
	ErrUnknownBackend = errors.New("unknown history backend")
	// ErrMalformedHistory marks persisted content that is not a list of strings.
	ErrMalformedHistory = errors.New("malformed history")
)

// HistoryStore loads and saves the full transcript of one conversation.
type HistoryStore interface {
	// Load returns the saved transcript, oldest first. A missing transcript is
	// not an error and yields an empty slice.
	Load(ctx context.Context) ([]string, error)
	// Save replaces the saved transcript with lines.
	Save(ctx context.Context, lines []string) error
	Close() error
}

// DefaultSession is the session database backends use when none is given, so
// that consecutive runs continue the same conversation.
const DefaultSession = "default"

// NewSessionID returns a fresh random session id.
func NewSessionID() string {
	return uuid.NewString()
}

// Options selects and configures a backend.
type Options struct {
	Backend     Backend
	FilePath    string
	SQLitePath  string
	DatabaseURL string
	RedisAddr   string
	SessionID   string
}

// Open returns the store selected by opts.
func Open(ctx context.Context, opts Options, logger *zap.Logger) (HistoryStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	backend := opts.Backend
	if backend == "" {
		backend = BackendFile
	}
	session := opts.SessionID
	if session == "" {
		session = DefaultSession
	}
	if backend != BackendFile && backend != BackendMemory {
		logger.Debug("using history session", zap.String("backend", string(backend)), zap.String("session", session))
	}

	switch backend {
	case BackendFile:
		return NewFileStore(opts.FilePath), nil
	case BackendMemory:
		return NewMemoryStore(nil), nil
	case BackendSQLite:
		return NewSQLiteStore(ctx, opts.SQLitePath, session)
	case BackendPostgres:
		return NewPostgresStore(ctx, opts.DatabaseURL, session)
	case BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: opts.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to ping redis: %w", err)
		}
		return NewRedisStore(client, session), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
