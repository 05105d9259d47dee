// Package logging decorates collaborators with structured log output.
package logging

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/xhad/sitekb/internal/types"
)

var (
	_ types.Fetcher  = (*LoggingFetcher)(nil)
	_ types.Embedder = (*LoggingEmbedder)(nil)
)

// LoggingFetcher logs every fetch with its size and duration.
type LoggingFetcher struct {
	inner  types.Fetcher
	logger *slog.Logger
}

func NewLoggingFetcher(inner types.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{inner: inner, logger: logger}
}

func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (string, error) {
	start := time.Now()
	html, err := f.inner.Fetch(ctx, url)
	if err != nil {
		f.logger.Debug("fetch", "url", url, "duration", time.Since(start), "err", err)
		return "", err
	}
	f.logger.Debug("fetch", "url", url, "bytes", len(html), "duration", time.Since(start))
	return html, nil
}

// LoggingEmbedder logs every embedding call with its input size and duration.
type LoggingEmbedder struct {
	inner  types.Embedder
	logger *slog.Logger
}

func NewLoggingEmbedder(inner types.Embedder, logger *slog.Logger) *LoggingEmbedder {
	return &LoggingEmbedder{inner: inner, logger: logger}
}

func (e *LoggingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()
	vec, err := e.inner.Embed(ctx, text)
	if err != nil {
		e.logger.Debug("embed", "chars", len([]rune(text)), "duration", time.Since(start), "err", err)
		return nil, err
	}
	e.logger.Debug("embed", "chars", len([]rune(text)), "dimension", len(vec), "duration", time.Since(start))
	return vec, nil
}

// New returns a text logger writing to w. Debug records are kept only when verbose is set.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
