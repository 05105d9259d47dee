package processor_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/sitekb/internal/models"
	"github.com/xhad/sitekb/pkg/processor"
)

func TestProcessor_Split(t *testing.T) {
	p := processor.NewWithConfig(processor.ProcessorConfig{})

	tests := []struct {
		name    string
		length  int
		wantLen []int
	}{
		{"empty", 0, nil},
		{"below minimum", 99, nil},
		{"exactly minimum", 100, []int{100}},
		{"single full chunk", 1500, []int{1500}},
		{"short trailing chunk dropped", 1580, []int{1500}},
		{"long trailing chunk kept", 1600, []int{1500, 100}},
		{"several chunks", 4000, []int{1500, 1500, 1000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := p.Split(strings.Repeat("a", tt.length))
			var got []int
			for _, c := range chunks {
				got = append(got, len(c))
			}
			assert.Equal(t, tt.wantLen, got)
		})
	}
}

func TestProcessor_SplitKeepsFullChunkUnmodified(t *testing.T) {
	p := processor.NewWithConfig(processor.ProcessorConfig{})

	var b strings.Builder
	for b.Len() < 1500 {
		b.WriteString("word ")
	}
	full := b.String()[:1500]
	tail := strings.Repeat("z", 80)

	chunks := p.Split(full + tail)

	require.Len(t, chunks, 1)
	assert.Equal(t, full, chunks[0])
}

func TestProcessor_SplitCountsRunes(t *testing.T) {
	p := processor.NewWithConfig(processor.ProcessorConfig{ChunkSize: 150, MinChunkLength: 100})

	chunks := p.Split(strings.Repeat("é", 300))

	require.Len(t, chunks, 2)
	for _, c := range chunks {
		assert.True(t, utf8.ValidString(c))
		assert.Equal(t, 150, utf8.RuneCountInString(c))
	}
}

func TestProcessor_SplitInvariants(t *testing.T) {
	p := processor.NewWithConfig(processor.ProcessorConfig{ChunkSize: 120, MinChunkLength: 100})

	for n := 0; n < 1000; n += 37 {
		text := strings.Repeat("x", n)
		chunks := p.Split(text)
		for i, c := range chunks {
			assert.GreaterOrEqual(t, len(c), 100)
			if i < len(chunks)-1 {
				assert.Equal(t, 120, len(c))
			}
		}
		assert.Equal(t, chunks, p.Split(text), "splitting is deterministic")
	}
}

func TestProcessor_Process(t *testing.T) {
	p := processor.NewWithConfig(processor.ProcessorConfig{ChunkSize: 200, MinChunkLength: 100})

	pages := []models.Page{
		{URL: "https://example.com/", Text: strings.Repeat("a", 450)},
		{URL: "https://example.com/about", Text: strings.Repeat("b", 250)},
	}

	chunks := p.Process(pages)

	require.Len(t, chunks, 3)
	assert.Equal(t, models.Chunk{SourceURL: "https://example.com/", Content: strings.Repeat("a", 200), Index: 0}, chunks[0])
	assert.Equal(t, models.Chunk{SourceURL: "https://example.com/", Content: strings.Repeat("a", 200), Index: 1}, chunks[1])
	assert.Equal(t, models.Chunk{SourceURL: "https://example.com/about", Content: strings.Repeat("b", 200), Index: 0}, chunks[2])
}
