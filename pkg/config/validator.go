package config

import (
	"fmt"
	"net/url"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var providers = map[string]bool{"openai": true, "ollama": true}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate site config
	if c.Site.RootURL == "" {
		errors = append(errors, ValidationError{
			Field:   "site.root_url",
			Message: "root URL is required",
		})
	} else if u, err := url.Parse(c.Site.RootURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errors = append(errors, ValidationError{
			Field:   "site.root_url",
			Message: "root URL must be an absolute http(s) URL",
		})
	}

	if c.Site.MaxDepth < 0 {
		errors = append(errors, ValidationError{
			Field:   "site.max_depth",
			Message: "max_depth must not be negative",
		})
	}

	if c.Site.MaxPages < 1 {
		errors = append(errors, ValidationError{
			Field:   "site.max_pages",
			Message: "max_pages must be positive",
		})
	}

	if c.Site.MinPageChars < 1 {
		errors = append(errors, ValidationError{
			Field:   "site.min_page_chars",
			Message: "min_page_chars must be positive",
		})
	}

	if c.Site.RateLimit <= 0 {
		errors = append(errors, ValidationError{
			Field:   "site.rate_limit",
			Message: "rate_limit must be positive",
		})
	}

	// Validate processor config
	if c.Processor.ChunkSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "processor.chunk_size",
			Message: "chunk_size must be positive",
		})
	}

	if c.Processor.MinChunkLength < 1 || c.Processor.MinChunkLength > c.Processor.ChunkSize {
		errors = append(errors, ValidationError{
			Field:   "processor.min_chunk_length",
			Message: "min_chunk_length must be positive and not exceed chunk_size",
		})
	}

	// Validate embedder config
	if !providers[c.Embedder.Provider] {
		errors = append(errors, ValidationError{
			Field:   "embedder.provider",
			Message: fmt.Sprintf("unknown provider: %s", c.Embedder.Provider),
		})
	} else if c.Embedder.Provider == "openai" && c.Embedder.APIKey == "" {
		errors = append(errors, ValidationError{
			Field:   "embedder.api_key",
			Message: "API key is required for the openai provider",
		})
	}

	if c.Embedder.MaxRetries < 0 {
		errors = append(errors, ValidationError{
			Field:   "embedder.max_retries",
			Message: "max_retries must not be negative",
		})
	}

	if c.Embedder.Concurrency < 1 {
		errors = append(errors, ValidationError{
			Field:   "embedder.concurrency",
			Message: "concurrency must be positive",
		})
	}

	// Validate LLM config
	if !providers[c.LLM.Provider] {
		errors = append(errors, ValidationError{
			Field:   "llm.provider",
			Message: fmt.Sprintf("unknown provider: %s", c.LLM.Provider),
		})
	}

	if c.LLM.MaxTokens < 1 || c.LLM.MaxTokens > 4096 {
		errors = append(errors, ValidationError{
			Field:   "llm.max_tokens",
			Message: "max_tokens must be between 1 and 4096",
		})
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errors = append(errors, ValidationError{
			Field:   "llm.temperature",
			Message: "temperature must be between 0 and 2",
		})
	}

	// Validate store config
	if c.Store.Path == "" {
		errors = append(errors, ValidationError{
			Field:   "store.path",
			Message: "store path is required",
		})
	}

	if c.Store.DatabaseURL != "" {
		if _, err := url.Parse(c.Store.DatabaseURL); err != nil {
			errors = append(errors, ValidationError{
				Field:   "store.database_url",
				Message: "invalid database URL",
			})
		}
	}

	// Validate retrieval config
	if c.Retrieval.TopK < 1 {
		errors = append(errors, ValidationError{
			Field:   "retrieval.top_k",
			Message: "top_k must be positive",
		})
	}

	if c.Retrieval.HistoryWindowTurns < 0 {
		errors = append(errors, ValidationError{
			Field:   "retrieval.history_window_turns",
			Message: "history_window_turns must not be negative",
		})
	}

	if c.Retrieval.MinScore < -1 || c.Retrieval.MinScore > 1 {
		errors = append(errors, ValidationError{
			Field:   "retrieval.min_score",
			Message: "min_score must be between -1 and 1",
		})
	}

	return errors
}

// ValidateForServe checks only what the server needs; the crawl settings are irrelevant there.
func (c *Config) ValidateForServe() []ValidationError {
	var out []ValidationError
	for _, e := range c.Validate() {
		if strings.HasPrefix(e.Field, "site.") {
			continue
		}
		out = append(out, e)
	}
	return out
}
