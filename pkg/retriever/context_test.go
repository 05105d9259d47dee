package retriever

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xhad/sitekb/internal/models"
)

func TestAssembleContext(t *testing.T) {
	matches := []Scored{
		{Record: models.EmbeddingRecord{URL: "https://example.com/about", Content: "We build boats."}, Score: 0.9},
		{Record: models.EmbeddingRecord{URL: "https://example.com/contact", Content: "Call us."}, Score: 0.7},
	}

	want := "Source 1 (https://example.com/about):\nWe build boats." +
		"\n\n---\n\n" +
		"Source 2 (https://example.com/contact):\nCall us."
	assert.Equal(t, want, AssembleContext(matches))

	assert.Equal(t, "Source 1 (https://example.com/about):\nWe build boats.", AssembleContext(matches[:1]))
	assert.Equal(t, "", AssembleContext(nil))
}

func TestSources(t *testing.T) {
	matches := []Scored{
		{Record: models.EmbeddingRecord{URL: "https://example.com/a"}},
		{Record: models.EmbeddingRecord{URL: "https://example.com/b"}},
		{Record: models.EmbeddingRecord{URL: "https://example.com/a"}},
	}
	assert.Equal(t, []string{"https://example.com/a", "https://example.com/b"}, Sources(matches))
	assert.Nil(t, Sources(nil))
}
