package retriever

import (
	"cmp"
	"math"
	"slices"

	"github.com/xhad/sitekb/internal/models"
)

// DefaultTopK is used when a non-positive k is passed to Rank.
const DefaultTopK = 6

// Scored is a record with its similarity to a query.
type Scored struct {
	Record models.EmbeddingRecord
	Score  float64
}

// Cosine returns the cosine similarity of a and b. A small epsilon in the
// denominator keeps zero vectors at 0 instead of NaN. Vectors of different
// lengths score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	return dot / (math.Sqrt(normA)*math.Sqrt(normB) + 1e-8)
}

// Rank scores every record against query and returns the best k in
// descending order. Equal scores keep their store order. When minScore is
// positive, records scoring below it are dropped.
func Rank(query []float32, records []models.EmbeddingRecord, k int, minScore float64) []Scored {
	if k <= 0 {
		k = DefaultTopK
	}

	scored := make([]Scored, 0, len(records))
	for _, r := range records {
		s := Cosine(query, r.Embedding)
		if minScore > 0 && s < minScore {
			continue
		}
		scored = append(scored, Scored{Record: r, Score: s})
	}

	slices.SortStableFunc(scored, func(a, b Scored) int {
		return cmp.Compare(b.Score, a.Score)
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}
