package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"tablelab/internal/models"
)

// FileStore keeps the result sequence as one JSON array on disk. Appending
// reads the existing sequence, pushes the new record, and rewrites the whole
// file, creating it if absent.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("results file path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create results directory: %w", err)
		}
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Append(ctx context.Context, result models.ExperimentResult) error {
	if err := result.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	results, err := s.readAll()
	if err != nil {
		return err
	}

	results = append(results, result)

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write results file: %w", err)
	}
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]models.ExperimentResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAll()
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) readAll() ([]models.ExperimentResult, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return []models.ExperimentResult{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read results file: %w", err)
	}
	if len(data) == 0 {
		return []models.ExperimentResult{}, nil
	}

	var results []models.ExperimentResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("parse results file: %w", err)
	}
	return results, nil
}
