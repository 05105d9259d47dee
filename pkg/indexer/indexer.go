package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xhad/sitekb/internal/models"
	"github.com/xhad/sitekb/internal/types"
	"github.com/xhad/sitekb/pkg/store"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// ErrEmptyIndex is returned when a build produced nothing to persist. The
// previous artifact is left untouched.
var ErrEmptyIndex = errors.New("no chunks could be embedded")

// Crawler produces the pages of one site.
type Crawler interface {
	Scrape(ctx context.Context) ([]models.Page, error)
}

// Chunker splits pages into chunks.
type Chunker interface {
	Process(pages []models.Page) []models.Chunk
}

// Publisher mirrors a finished build somewhere besides the artifact file.
type Publisher interface {
	Publish(ctx context.Context, records []models.EmbeddingRecord) error
}

type Config struct {
	Crawler   Crawler
	Chunker   Chunker
	Embedder  types.Embedder
	Publisher Publisher // optional
	StorePath string

	Concurrency int     // embedding workers, default 4
	RateLimit   float64 // embedding calls per second, 0 for unlimited
	RetryDelays []time.Duration

	Logger     *slog.Logger
	OnProgress func(ProgressEvent)
}

// ProgressEventType identifies the kind of progress event.
type ProgressEventType int

const (
	ProgressCrawled ProgressEventType = iota
	ProgressChunked
	ProgressEmbedded
	ProgressSkipped
	ProgressSaved
)

// ProgressEvent reports build progress. Completed and Total count chunks
// during embedding, pages for ProgressCrawled and records for ProgressSaved.
type ProgressEvent struct {
	Type      ProgressEventType
	Completed int
	Total     int
	URL       string
	Error     error
}

// Result summarizes one build.
type Result struct {
	Pages     int
	Chunks    int
	Records   int
	Skipped   int // chunks whose embedding failed after all retries
	Dropped   int // vectors with a dimension different from the first
	Dimension int
	Published bool
}

// Indexer runs the offline build: crawl, chunk, embed, persist.
type Indexer struct {
	config  Config
	limiter *rate.Limiter
	logger  *slog.Logger
}

func New(config Config) (*Indexer, error) {
	if config.Crawler == nil || config.Chunker == nil || config.Embedder == nil {
		return nil, fmt.Errorf("indexer needs a crawler, a chunker and an embedder")
	}
	if config.StorePath == "" {
		return nil, fmt.Errorf("store path is required")
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 4
	}
	if config.RetryDelays == nil {
		config.RetryDelays = DefaultRetryDelays()
	}

	limit := rate.Inf
	if config.RateLimit > 0 {
		limit = rate.Limit(config.RateLimit)
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Indexer{
		config:  config,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}, nil
}

type embedResult struct {
	index  int
	vector []float32
	err    error
}

// Build crawls the site to completion, embeds every chunk and atomically
// replaces the artifact. Chunks that cannot be embedded are skipped; the build
// fails only when nothing could be embedded or ctx is canceled.
func (ix *Indexer) Build(ctx context.Context) (*Result, error) {
	start := time.Now()

	pages, err := ix.config.Crawler.Scrape(ctx)
	if err != nil {
		return nil, fmt.Errorf("crawl: %w", err)
	}
	ix.logger.Info("crawl finished", "pages", len(pages), "elapsed", time.Since(start).Round(time.Millisecond))
	ix.progress(ProgressEvent{Type: ProgressCrawled, Completed: len(pages), Total: len(pages)})

	chunks := ix.config.Chunker.Process(pages)
	ix.logger.Info("chunked pages", "chunks", len(chunks))
	ix.progress(ProgressEvent{Type: ProgressChunked, Total: len(chunks)})

	result := &Result{Pages: len(pages), Chunks: len(chunks)}
	if len(chunks) == 0 {
		return result, ErrEmptyIndex
	}

	vectors, err := ix.embedAll(ctx, chunks, result)
	if err != nil {
		return result, err
	}

	records := make([]models.EmbeddingRecord, 0, len(chunks))
	for i, vec := range vectors {
		if vec == nil {
			continue
		}
		if result.Dimension == 0 {
			result.Dimension = len(vec)
		}
		if len(vec) != result.Dimension {
			result.Dropped++
			ix.logger.Warn("dropping embedding with unexpected dimension",
				"url", chunks[i].SourceURL,
				"chunk", chunks[i].Index,
				"got", len(vec),
				"want", result.Dimension,
			)
			continue
		}
		records = append(records, models.EmbeddingRecord{
			URL:       chunks[i].SourceURL,
			Content:   chunks[i].Content,
			Embedding: vec,
		})
	}
	result.Records = len(records)

	if len(records) == 0 {
		return result, ErrEmptyIndex
	}

	if err := store.Save(ix.config.StorePath, records); err != nil {
		return result, fmt.Errorf("save store: %w", err)
	}
	ix.logger.Info("saved embeddings",
		"path", ix.config.StorePath,
		"records", len(records),
		"dimension", result.Dimension,
		"skipped", result.Skipped,
		"dropped", result.Dropped,
	)
	ix.progress(ProgressEvent{Type: ProgressSaved, Completed: len(records), Total: len(chunks)})

	if ix.config.Publisher != nil {
		if err := ix.config.Publisher.Publish(ctx, records); err != nil {
			return result, fmt.Errorf("publish: %w", err)
		}
		result.Published = true
		ix.logger.Info("published embeddings", "records", len(records))
	}

	return result, nil
}

// embedAll embeds chunks on a bounded worker pool. The returned slice is
// indexed like chunks; skipped chunks leave a nil entry.
func (ix *Indexer) embedAll(ctx context.Context, chunks []models.Chunk, result *Result) ([][]float32, error) {
	resultCh := make(chan embedResult, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.config.Concurrency)

	var waitErr error
	go func() {
		for i, chunk := range chunks {
			i, chunk := i, chunk
			g.Go(func() error {
				vec, err := EmbedWithRetry(gctx, chunk.Content, ix.embed, ix.logger, ix.config.RetryDelays)
				if err != nil && gctx.Err() != nil {
					return gctx.Err()
				}
				resultCh <- embedResult{index: i, vector: vec, err: err}
				return nil
			})
		}
		waitErr = g.Wait()
		close(resultCh)
	}()

	vectors := make([][]float32, len(chunks))
	completed := 0
	for res := range resultCh {
		completed++
		chunk := chunks[res.index]

		if res.err != nil {
			result.Skipped++
			ix.logger.Warn("skipping chunk after failed embedding",
				"url", chunk.SourceURL,
				"chunk", chunk.Index,
				"error", res.err,
			)
			ix.progress(ProgressEvent{
				Type:      ProgressSkipped,
				Completed: completed,
				Total:     len(chunks),
				URL:       chunk.SourceURL,
				Error:     res.err,
			})
			continue
		}

		vectors[res.index] = res.vector
		ix.progress(ProgressEvent{
			Type:      ProgressEmbedded,
			Completed: completed,
			Total:     len(chunks),
			URL:       chunk.SourceURL,
		})
	}

	if waitErr != nil {
		return nil, fmt.Errorf("embed chunks: %w", waitErr)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return vectors, nil
}

func (ix *Indexer) embed(ctx context.Context, text string) ([]float32, error) {
	if err := ix.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	vec, err := ix.config.Embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("empty embedding")
	}
	return vec, nil
}

func (ix *Indexer) progress(ev ProgressEvent) {
	if ix.config.OnProgress != nil {
		ix.config.OnProgress(ev)
	}
}
