package retriever

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xhad/sitekb/internal/models"
)

func TestCosine(t *testing.T) {
	a := []float32{0.3, -1.2, 4.5, 0}
	b := []float32{2, 0.5, -0.25, 1}

	assert.InDelta(t, 1.0, Cosine(a, a), 1e-6)
	assert.Equal(t, Cosine(a, b), Cosine(b, a))
	assert.InDelta(t, -1.0, Cosine([]float32{1, 0}, []float32{-2, 0}), 1e-6)
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 3}), 1e-9)

	assert.Zero(t, Cosine([]float32{0, 0}, []float32{0, 0}))
	assert.False(t, math.IsNaN(Cosine([]float32{0, 0}, []float32{1, 1})))
	assert.Zero(t, Cosine([]float32{1, 2, 3}, []float32{1, 2}))
	assert.Zero(t, Cosine(nil, nil))
}

// recordScoring returns a record whose cosine with [1, 0] is score.
func recordScoring(url string, score float64) models.EmbeddingRecord {
	return models.EmbeddingRecord{
		URL:       url,
		Content:   "content of " + url,
		Embedding: []float32{float32(score), float32(math.Sqrt(1 - score*score))},
	}
}

func TestRank(t *testing.T) {
	query := []float32{1, 0}
	records := []models.EmbeddingRecord{
		recordScoring("first", 0.9),
		recordScoring("second", 0.95),
		recordScoring("third", 0.2),
	}

	got := Rank(query, records, 2, 0)
	assert.Len(t, got, 2)
	assert.Equal(t, "second", got[0].Record.URL)
	assert.Equal(t, "first", got[1].Record.URL)
	assert.InDelta(t, 0.95, got[0].Score, 1e-6)
}

func TestRankTiesKeepStoreOrder(t *testing.T) {
	query := []float32{1, 0}
	records := []models.EmbeddingRecord{
		recordScoring("a", 0.5),
		recordScoring("b", 0.8),
		recordScoring("c", 0.5),
		recordScoring("d", 0.5),
	}

	got := Rank(query, records, 10, 0)
	var urls []string
	for _, s := range got {
		urls = append(urls, s.Record.URL)
	}
	assert.Equal(t, []string{"b", "a", "c", "d"}, urls)
}

func TestRankDefaultsAndCutoff(t *testing.T) {
	query := []float32{1, 0}
	var records []models.EmbeddingRecord
	for i := 0; i < 10; i++ {
		records = append(records, recordScoring(strings.Repeat("x", i+1), float64(i)/10))
	}

	assert.Len(t, Rank(query, records, 0, 0), DefaultTopK)
	assert.Len(t, Rank(query, records, -3, 0), DefaultTopK)
	assert.Len(t, Rank(query, records, 20, 0), 10)

	got := Rank(query, records, 20, 0.65)
	assert.Len(t, got, 3)
	for _, s := range got {
		assert.GreaterOrEqual(t, s.Score, 0.65)
	}

	// A non-positive cutoff keeps negative scores too.
	neg := []models.EmbeddingRecord{{URL: "opposite", Embedding: []float32{-1, 0}}}
	assert.Len(t, Rank(query, neg, 6, -0.5), 1)

	assert.Empty(t, Rank(query, nil, 6, 0))
}
