package store

import (
	"errors"
	"fmt"

	"github.com/xhad/sitekb/internal/models"
)

// ErrDimensionMismatch is returned when records carry vectors of different lengths.
var ErrDimensionMismatch = errors.New("embedding dimensions differ")

// Store is the in-memory, read-only set of embedding records the server ranks
// against. Every query scans all records, which is fine for the few thousand
// chunks a single site produces but will not scale much past that.
type Store struct {
	records   []models.EmbeddingRecord
	dimension int
}

// New builds a Store, checking that every record has a vector of the same
// non-zero length.
func New(records []models.EmbeddingRecord) (*Store, error) {
	dim := 0
	for i, r := range records {
		if len(r.Embedding) == 0 {
			return nil, fmt.Errorf("record %d (%s) has no embedding", i, r.URL)
		}
		if dim == 0 {
			dim = len(r.Embedding)
			continue
		}
		if len(r.Embedding) != dim {
			return nil, fmt.Errorf("record %d (%s): got %d, want %d: %w", i, r.URL, len(r.Embedding), dim, ErrDimensionMismatch)
		}
	}
	return &Store{records: records, dimension: dim}, nil
}

// Empty returns a Store with no records.
func Empty() *Store {
	return &Store{}
}

// Records returns the records in their persisted order. Callers must not modify them.
func (s *Store) Records() []models.EmbeddingRecord {
	return s.records
}

func (s *Store) Len() int {
	return len(s.records)
}

// Dimension is the common vector length, 0 for an empty store.
func (s *Store) Dimension() int {
	return s.dimension
}
