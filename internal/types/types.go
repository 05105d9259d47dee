package types

import (
	"context"

	"github.com/xhad/sitekb/internal/models"
)

// Core interfaces

// Fetcher retrieves the raw markup of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Embedder maps text to a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Completer produces a reply for an ordered list of messages.
type Completer interface {
	Complete(ctx context.Context, messages []models.Message, temperature float64) (string, error)
}

// Extractor converts raw markup into plain text.
type Extractor func(html string) string
