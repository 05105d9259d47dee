package processor

import (
	"github.com/xhad/sitekb/internal/models"
)

// ProcessorConfig controls chunking. Sizes are counted in characters (runes).
type ProcessorConfig struct {
	ChunkSize      int
	MinChunkLength int
}

// Processor splits page text into fixed-size, non-overlapping chunks.
// Windows ignore word and sentence boundaries, so a chunk may end mid-word.
type Processor struct {
	config ProcessorConfig
}

func NewWithConfig(config ProcessorConfig) Processor {
	if config.ChunkSize <= 0 {
		config.ChunkSize = 1500
	}
	if config.MinChunkLength <= 0 {
		config.MinChunkLength = 100
	}

	return Processor{
		config: config,
	}
}

// Process chunks every page in order.
func (p *Processor) Process(pages []models.Page) []models.Chunk {
	var chunks []models.Chunk

	for _, page := range pages {
		for i, content := range p.Split(page.Text) {
			chunks = append(chunks, models.Chunk{
				SourceURL: page.URL,
				Content:   content,
				Index:     i,
			})
		}
	}

	return chunks
}

// Split cuts text into windows of ChunkSize runes, left to right. A trailing
// window shorter than MinChunkLength is dropped.
func (p *Processor) Split(text string) []string {
	runes := []rune(text)
	var chunks []string

	for start := 0; start < len(runes); start += p.config.ChunkSize {
		end := min(start+p.config.ChunkSize, len(runes))
		if end-start < p.config.MinChunkLength {
			break
		}
		chunks = append(chunks, string(runes[start:end]))
	}

	return chunks
}
