package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xhad/sitekb/internal/models"
)

// Save writes records to path as a JSON array. The file is written to a
// temporary sibling and renamed into place, so readers see either the old
// artifact or the new one.
func Save(path string, records []models.EmbeddingRecord) error {
	if records == nil {
		records = []models.EmbeddingRecord{}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := json.NewEncoder(tmp).Encode(records); err != nil {
		tmp.Close()
		return fmt.Errorf("encode store: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace store: %w", err)
	}
	return nil
}

// Load reads the artifact at path.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var records []models.EmbeddingRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse store %s: %w", path, err)
	}
	return New(records)
}

// LoadOrEmpty is Load for the server: a missing or unreadable artifact
// yields an empty Store and a logged warning instead of an error.
func LoadOrEmpty(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	s, err := Load(path)
	switch {
	case err == nil:
		logger.Info("loaded embeddings", "path", path, "records", s.Len(), "dimension", s.Dimension())
		return s
	case os.IsNotExist(err):
		logger.Warn("no embeddings file; answering without website context", "path", path)
	default:
		logger.Warn("failed to load embeddings; answering without website context", "path", path, "error", err)
	}
	return Empty()
}
