package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Site struct {
		RootURL      string        `yaml:"root_url"`
		MaxDepth     int           `yaml:"max_depth"`
		MaxPages     int           `yaml:"max_pages"`
		MinPageChars int           `yaml:"min_page_chars"`
		RateLimit    float64       `yaml:"rate_limit"`
		Timeout      time.Duration `yaml:"timeout"`
		MaxDuration  time.Duration `yaml:"max_duration"`
	} `yaml:"site"`

	Processor struct {
		ChunkSize      int `yaml:"chunk_size"`
		MinChunkLength int `yaml:"min_chunk_length"`
	} `yaml:"processor"`

	Embedder struct {
		Provider    string  `yaml:"provider"`
		BaseURL     string  `yaml:"base_url"`
		Model       string  `yaml:"model"`
		APIKey      string  `yaml:"api_key"`
		Concurrency int     `yaml:"concurrency"`
		MaxRetries  int     `yaml:"max_retries"`
		RateLimit   float64 `yaml:"rate_limit"`
	} `yaml:"embedder"`

	LLM struct {
		Provider     string  `yaml:"provider"`
		BaseURL      string  `yaml:"base_url"`
		Model        string  `yaml:"model"`
		APIKey       string  `yaml:"api_key"`
		MaxTokens    int     `yaml:"max_tokens"`
		Temperature  float64 `yaml:"temperature"`
		SystemPrompt string  `yaml:"system_prompt"`
	} `yaml:"llm"`

	Store struct {
		Path        string `yaml:"path"`
		DatabaseURL string `yaml:"database_url"`
		TableName   string `yaml:"table_name"`
	} `yaml:"store"`

	Retrieval struct {
		TopK               int           `yaml:"top_k"`
		HistoryWindowTurns int           `yaml:"history_window_turns"`
		MinScore           float64       `yaml:"min_score"`
		RequestTimeout     time.Duration `yaml:"request_timeout"`
	} `yaml:"retrieval"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
}

// envOverrides holds the settings that may come from the process environment.
type envOverrides struct {
	RootURL       string `env:"BASE_URL"`
	OpenAIKey     string `env:"OPENAI_API_KEY"`
	OllamaBaseURL string `env:"OLLAMA_BASE_URL"`
	DatabaseURL   string `env:"DATABASE_URL"`
	StorePath     string `env:"STORE_PATH"`
	Port          string `env:"PORT"`
}

// LoadConfig reads the YAML file at path, or the first file found in the
// default locations, over the built-in defaults. Settings the file does not
// mention keep their default, while an explicit value (including 0) is kept
// as written. Environment overrides are applied last.
func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/sitekb/config.yaml"),
			"/etc/sitekb/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	config := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	if err := mergeWithEnv(config); err != nil {
		return nil, err
	}

	applyProviderDefaults(config)

	return config, nil
}

func defaultConfig() *Config {
	config := &Config{}

	config.Site.MaxDepth = 3
	config.Site.MaxPages = 30
	config.Site.MinPageChars = 200
	config.Site.RateLimit = 2.0
	config.Site.Timeout = 30 * time.Second
	config.Site.MaxDuration = 5 * time.Minute

	config.Processor.ChunkSize = 1500
	config.Processor.MinChunkLength = 100

	config.Embedder.Provider = "openai"
	config.Embedder.Concurrency = 4
	config.Embedder.MaxRetries = 3
	config.Embedder.RateLimit = 10

	config.LLM.Provider = "openai"
	config.LLM.MaxTokens = 1000
	config.LLM.Temperature = 0.4

	config.Store.Path = "data/embeddings.json"
	config.Store.TableName = "site_chunks"

	config.Retrieval.TopK = 6
	config.Retrieval.HistoryWindowTurns = 6
	config.Retrieval.RequestTimeout = 30 * time.Second

	config.Server.Addr = ":3000"

	return config
}

// applyProviderDefaults fills the model names, which depend on the provider
// chosen after the file and environment are read.
func applyProviderDefaults(config *Config) {
	if config.Embedder.Model == "" {
		config.Embedder.Model = defaultEmbeddingModel(config.Embedder.Provider)
	}
	if config.LLM.Model == "" {
		config.LLM.Model = defaultChatModel(config.LLM.Provider)
	}
}

func defaultEmbeddingModel(provider string) string {
	if provider == "ollama" {
		return "nomic-embed-text"
	}
	return "text-embedding-3-small"
}

func defaultChatModel(provider string) string {
	if provider == "ollama" {
		return "mistral"
	}
	return "gpt-4.1-mini"
}

func mergeWithEnv(config *Config) error {
	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return fmt.Errorf("error parsing environment: %w", err)
	}

	if overrides.RootURL != "" {
		config.Site.RootURL = overrides.RootURL
	}
	if overrides.OpenAIKey != "" {
		if config.Embedder.APIKey == "" {
			config.Embedder.APIKey = overrides.OpenAIKey
		}
		if config.LLM.APIKey == "" {
			config.LLM.APIKey = overrides.OpenAIKey
		}
	}
	if overrides.OllamaBaseURL != "" {
		if config.Embedder.Provider == "ollama" {
			config.Embedder.BaseURL = overrides.OllamaBaseURL
		}
		if config.LLM.Provider == "ollama" {
			config.LLM.BaseURL = overrides.OllamaBaseURL
		}
	}
	if overrides.DatabaseURL != "" {
		config.Store.DatabaseURL = overrides.DatabaseURL
	}
	if overrides.StorePath != "" {
		config.Store.Path = overrides.StorePath
	}
	if overrides.Port != "" {
		config.Server.Addr = ":" + overrides.Port
	}
	return nil
}
