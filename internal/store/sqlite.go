package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"tablelab/internal/models"
)

// SQLiteStore persists results in a single append-only table, one row per
// participant.
type SQLiteStore struct {
	db     *sql.DB
	logger *zerolog.Logger
}

func NewSQLiteStore(path string, logger *zerolog.Logger) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS results (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        timestamp TEXT NOT NULL,
        first_system TEXT NOT NULL,
        trial1_system TEXT NOT NULL,
        trial1_prompt TEXT NOT NULL,
        trial1_duration_ms INTEGER NOT NULL,
        trial2_system TEXT NOT NULL,
        trial2_prompt TEXT NOT NULL,
        trial2_duration_ms INTEGER NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    )`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create results table: %w", err)
	}

	if logger != nil {
		logger.Info().Str("path", path).Msg("results database initialized")
	}
	return &SQLiteStore{db: db, logger: logger}, nil
}

func (s *SQLiteStore) Append(ctx context.Context, result models.ExperimentResult) error {
	if err := result.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO results
        (timestamp, first_system,
         trial1_system, trial1_prompt, trial1_duration_ms,
         trial2_system, trial2_prompt, trial2_duration_ms)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		result.Timestamp, string(result.FirstSystem),
		string(result.Trial1.System), result.Trial1.Prompt, result.Trial1.Duration,
		string(result.Trial2.System), result.Trial2.Prompt, result.Trial2.Duration,
	)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]models.ExperimentResult, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT timestamp, first_system,
        trial1_system, trial1_prompt, trial1_duration_ms,
        trial2_system, trial2_prompt, trial2_duration_ms
        FROM results ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	results := []models.ExperimentResult{}
	for rows.Next() {
		var r models.ExperimentResult
		var first, t1sys, t2sys string
		if err := rows.Scan(&r.Timestamp, &first,
			&t1sys, &r.Trial1.Prompt, &r.Trial1.Duration,
			&t2sys, &r.Trial2.Prompt, &r.Trial2.Duration); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.FirstSystem = models.DisplayMode(first)
		r.Trial1.System = models.DisplayMode(t1sys)
		r.Trial2.System = models.DisplayMode(t2sys)
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
