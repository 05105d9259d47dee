package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/xhad/sitekb/internal/types"
	"github.com/xhad/sitekb/pkg/config"
	"github.com/xhad/sitekb/pkg/llm"
	"github.com/xhad/sitekb/pkg/logging"
	"github.com/xhad/sitekb/pkg/retriever"
	"github.com/xhad/sitekb/pkg/store"
)

var (
	errorColor   = color.New(color.FgRed)
	successColor = color.New(color.FgGreen)
	infoColor    = color.New(color.FgBlue)
	userColor    = color.New(color.FgGreen, color.Bold)
	replyColor   = color.New(color.FgCyan)
)

// checkConfig prints every validation problem and fails if there are any.
func checkConfig(w io.Writer, errs []config.ValidationError) error {
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		errorColor.Fprintf(w, "config: %s\n", e.Error())
		msgs = append(msgs, e.Error())
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func embedder(deps *Dependencies) (types.Embedder, error) {
	if deps.Embedder != nil {
		return logging.NewLoggingEmbedder(deps.Embedder, deps.Logger), nil
	}
	cfg := deps.Config.Embedder
	e, err := llm.NewEmbedderWithConfig(llm.EmbedderConfig{
		Provider: cfg.Provider,
		BaseURL:  cfg.BaseURL,
		Model:    cfg.Model,
		APIKey:   cfg.APIKey,
	})
	if err != nil {
		return nil, err
	}
	return logging.NewLoggingEmbedder(e, deps.Logger), nil
}

func completer(deps *Dependencies) (types.Completer, error) {
	if deps.Completer != nil {
		return deps.Completer, nil
	}
	cfg := deps.Config.LLM
	engine, err := llm.NewWithConfig(llm.ChatConfig{
		Provider:  cfg.Provider,
		BaseURL:   cfg.BaseURL,
		Model:     cfg.Model,
		APIKey:    cfg.APIKey,
		MaxTokens: cfg.MaxTokens,
	})
	if err != nil {
		return nil, err
	}
	return engine, nil
}

// loadStore reads the embeddings the retriever ranks against. Failures degrade
// to an empty store so the assistant can still answer without site context.
func loadStore(ctx context.Context, deps *Dependencies, fromDB bool) *store.Store {
	cfg := deps.Config.Store
	if !fromDB {
		return store.LoadOrEmpty(cfg.Path, deps.Logger)
	}

	pg, err := store.NewPGVector(ctx, store.PGVectorConfig{
		ConnString: cfg.DatabaseURL,
		TableName:  cfg.TableName,
	})
	if err != nil {
		deps.Logger.Warn("failed to connect to database; answering without website context", "error", err)
		return store.Empty()
	}
	defer pg.Close()

	records, err := pg.LoadAll(ctx)
	if err != nil {
		deps.Logger.Warn("failed to load embeddings from database; answering without website context", "error", err)
		return store.Empty()
	}
	s, err := store.New(records)
	if err != nil {
		deps.Logger.Warn("embeddings in database are inconsistent; answering without website context", "error", err)
		return store.Empty()
	}
	deps.Logger.Info("loaded embeddings", "table", cfg.TableName, "records", s.Len(), "dimension", s.Dimension())
	return s
}

func retrieverOptions(cfg *config.Config) retriever.Options {
	temperature := cfg.LLM.Temperature
	return retriever.Options{
		TopK:               cfg.Retrieval.TopK,
		HistoryWindowTurns: cfg.Retrieval.HistoryWindowTurns,
		Temperature:        &temperature,
		MinScore:           cfg.Retrieval.MinScore,
		SystemPrompt:       cfg.LLM.SystemPrompt,
		RequestTimeout:     cfg.Retrieval.RequestTimeout,
	}
}

// newRetriever wires the embedding and completion services to the store.
// Completion is optional for commands that only retrieve.
func newRetriever(deps *Dependencies, s *store.Store, withCompletion bool) (*retriever.Retriever, error) {
	e, err := embedder(deps)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	var c types.Completer
	if withCompletion {
		c, err = completer(deps)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize chat engine: %w", err)
		}
	}

	return retriever.New(e, c, s, retrieverOptions(deps.Config), deps.Logger), nil
}
