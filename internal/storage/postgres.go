package storage

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// historyLineModel maps to the carl_history table.
type historyLineModel struct {
	ID        int
	SessionID string `gorm:"index:idx_carl_history_session_position,priority:1"`
	Position  int    `gorm:"index:idx_carl_history_session_position,priority:2"`
	Line      string
	CreatedAt time.Time
}

func (historyLineModel) TableName() string {
	return "carl_history"
}

// PostgresStore keeps transcripts in PostgreSQL through gorm.
type PostgresStore struct {
	db      *gorm.DB
	session string
}

// NewPostgresStore connects to databaseURL and migrates the history table.
func NewPostgresStore(ctx context.Context, databaseURL, session string) (*PostgresStore, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database url is required for the postgres backend")
	}
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := db.WithContext(ctx).AutoMigrate(&historyLineModel{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate history table: %w", err)
	}
	return &PostgresStore{db: db, session: session}, nil
}

func (s *PostgresStore) Load(ctx context.Context) ([]string, error) {
	var records []historyLineModel
	if err := s.db.WithContext(ctx).
		Where("session_id = ?", s.session).
		Order("position ASC").
		Find(&records).Error; err != nil {
		return []string{}, fmt.Errorf("failed to query history: %w", err)
	}
	return linesFromModels(records), nil
}

func (s *PostgresStore) Save(ctx context.Context, lines []string) error {
	records := modelsFromLines(s.session, lines)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", s.session).Delete(&historyLineModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(records, 100).Error; err != nil {
			return fmt.Errorf("failed to insert history: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func modelsFromLines(session string, lines []string) []historyLineModel {
	records := make([]historyLineModel, 0, len(lines))
	for i, line := range lines {
		records = append(records, historyLineModel{
			SessionID: session,
			Position:  i,
			Line:      line,
		})
	}
	return records
}

func linesFromModels(records []historyLineModel) []string {
	lines := make([]string, 0, len(records))
	for _, record := range records {
		lines = append(lines, record.Line)
	}
	return lines
}
