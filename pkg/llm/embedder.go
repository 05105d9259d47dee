package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/xhad/sitekb/internal/types"
)

var _ types.Embedder = (*Embedder)(nil)

// EmbedderConfig represents the configuration for an embedding client.
type EmbedderConfig struct {
	Provider string // "openai" or "ollama"
	BaseURL  string
	Model    string
	APIKey   string
}

// Embedder turns text into a vector through an embedding model.
type Embedder struct {
	config   EmbedderConfig
	embedder embeddings.Embedder
}

func NewEmbedderWithConfig(config EmbedderConfig) (*Embedder, error) {
	config = withEmbedderDefaults(config)

	var client embeddings.EmbedderClient
	switch config.Provider {
	case "ollama":
		opts := []ollama.Option{ollama.WithModel(config.Model)}
		if config.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(config.BaseURL))
		}
		c, err := ollama.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize embedder: %w", err)
		}
		client = c
	case "openai":
		opts := []openai.Option{
			openai.WithToken(config.APIKey),
			openai.WithEmbeddingModel(config.Model),
		}
		if config.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(config.BaseURL))
		}
		c, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize embedder: %w", err)
		}
		client = c
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", config.Provider)
	}

	return NewEmbedderFromClient(config, client)
}

// NewEmbedderFromClient wraps an existing langchaingo embedding client.
func NewEmbedderFromClient(config EmbedderConfig, client embeddings.EmbedderClient) (*Embedder, error) {
	e, err := embeddings.NewEmbedder(client)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	return &Embedder{config: withEmbedderDefaults(config), embedder: e}, nil
}

func withEmbedderDefaults(config EmbedderConfig) EmbedderConfig {
	if config.Provider == "" {
		config.Provider = "openai"
	}
	if config.Model == "" {
		if config.Provider == "ollama" {
			config.Model = "nomic-embed-text"
		} else {
			config.Model = "text-embedding-3-small"
		}
	}
	return config
}

// Embed returns the embedding of text. An empty vector is an error.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed with %s/%s: %w", e.config.Provider, e.config.Model, err)
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("embed with %s/%s: empty embedding", e.config.Provider, e.config.Model)
	}
	return vec, nil
}

// Model reports the embedding model in use.
func (e *Embedder) Model() string {
	return e.config.Model
}
