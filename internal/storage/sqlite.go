package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS chat_history (
	session  TEXT    NOT NULL,
	position INTEGER NOT NULL,
	line     TEXT    NOT NULL,
	PRIMARY KEY (session, position)
)`

// SQLiteStore keeps transcripts in a local SQLite database, one row per line.
type SQLiteStore struct {
	db      *sql.DB
	session string
}

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(ctx context.Context, path, session string) (*SQLiteStore, error) {
	if path == "" {
		path = "history.db"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// A single connection keeps :memory: databases consistent across calls.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history table: %w", err)
	}
	return &SQLiteStore{db: db, session: session}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT line FROM chat_history WHERE session = ? ORDER BY position ASC`, s.session)
	if err != nil {
		return []string{}, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	lines := []string{}
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return []string{}, fmt.Errorf("failed to scan history line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return []string{}, fmt.Errorf("failed to read history: %w", err)
	}
	return lines, nil
}

func (s *SQLiteStore) Save(ctx context.Context, lines []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin history transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chat_history WHERE session = ?`, s.session); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO chat_history (session, position, line) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare history insert: %w", err)
	}
	defer stmt.Close()
	for i, line := range lines {
		if _, err := stmt.ExecContext(ctx, s.session, i, line); err != nil {
			return fmt.Errorf("failed to insert history line: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit history: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
