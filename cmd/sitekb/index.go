package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/xhad/sitekb/pkg/indexer"
	"github.com/xhad/sitekb/pkg/logging"
	"github.com/xhad/sitekb/pkg/processor"
	"github.com/xhad/sitekb/pkg/scraper"
	"github.com/xhad/sitekb/pkg/store"
)

// Run executes the index command.
func (c *IndexCmd) Run(deps *Dependencies) error {
	cfg := deps.Config
	if c.URL != "" {
		cfg.Site.RootURL = c.URL
	}
	if c.MaxDepth >= 0 {
		cfg.Site.MaxDepth = c.MaxDepth
	}
	if c.MaxPages > 0 {
		cfg.Site.MaxPages = c.MaxPages
	}
	if c.Output != "" {
		cfg.Store.Path = c.Output
	}
	if c.Concurrency > 0 {
		cfg.Embedder.Concurrency = c.Concurrency
	}
	if err := checkConfig(deps.Stderr, cfg.Validate()); err != nil {
		return err
	}
	if c.Publish && cfg.Store.DatabaseURL == "" {
		return fmt.Errorf("--publish needs store.database_url or DATABASE_URL")
	}

	emb, err := embedder(deps)
	if err != nil {
		return fmt.Errorf("failed to initialize embedder: %w", err)
	}

	infoColor.Fprintf(deps.Stdout, "\nBuilding knowledge base for %s\n", cfg.Site.RootURL)

	spinner := getSpinner(deps.Stderr, "Crawling site...")
	fetcher := logging.NewLoggingFetcher(scraper.NewHTTPFetcher(cfg.Site.Timeout, cfg.Site.RateLimit), deps.Logger)
	visited := 0
	crawler, err := scraper.NewWithConfig(scraper.ScraperConfig{
		BaseURL:      cfg.Site.RootURL,
		MaxDepth:     cfg.Site.MaxDepth,
		MaxPages:     cfg.Site.MaxPages,
		MinPageChars: cfg.Site.MinPageChars,
		MaxDuration:  cfg.Site.MaxDuration,
		Fetcher:      fetcher,
		Logger:       deps.Logger,
		OnProgress: func(url string) {
			visited++
			spinner.Describe(fmt.Sprintf("Crawling site... (%d visited)", visited))
			spinner.Add(1)
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize scraper: %w", err)
	}

	chunker := processor.NewWithConfig(processor.ProcessorConfig{
		ChunkSize:      cfg.Processor.ChunkSize,
		MinChunkLength: cfg.Processor.MinChunkLength,
	})

	var publisher indexer.Publisher
	if c.Publish {
		pg, err := store.NewPGVector(deps.Ctx, store.PGVectorConfig{
			ConnString: cfg.Store.DatabaseURL,
			TableName:  cfg.Store.TableName,
		})
		if err != nil {
			return err
		}
		defer pg.Close()
		publisher = pg
	}

	var bar *progressbar.ProgressBar
	ix, err := indexer.New(indexer.Config{
		Crawler:     crawler,
		Chunker:     &chunker,
		Embedder:    emb,
		Publisher:   publisher,
		StorePath:   cfg.Store.Path,
		Concurrency: cfg.Embedder.Concurrency,
		RateLimit:   cfg.Embedder.RateLimit,
		RetryDelays: indexer.BackoffDelays(cfg.Embedder.MaxRetries),
		Logger:      deps.Logger,
		OnProgress: func(ev indexer.ProgressEvent) {
			switch ev.Type {
			case indexer.ProgressCrawled:
				spinner.Finish()
				successColor.Fprintf(deps.Stdout, "\n✓ Crawled %d pages\n", ev.Total)
			case indexer.ProgressChunked:
				successColor.Fprintf(deps.Stdout, "✓ Split into %d chunks\n", ev.Total)
				if ev.Total > 0 {
					bar = getProgressBar(deps.Stderr, ev.Total, "Embedding chunks...")
				}
			case indexer.ProgressEmbedded, indexer.ProgressSkipped:
				if bar != nil {
					bar.Add(1)
				}
			case indexer.ProgressSaved:
				if bar != nil {
					bar.Finish()
				}
			}
		},
	})
	if err != nil {
		return err
	}

	start := time.Now()
	result, err := ix.Build(deps.Ctx)
	if errors.Is(err, indexer.ErrEmptyIndex) {
		errorColor.Fprintf(deps.Stderr, "\nNothing was indexed; %s was left unchanged\n", cfg.Store.Path)
	}
	if err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}

	successColor.Fprintf(deps.Stdout, "\n✓ Saved %d embeddings (dimension %d) to %s in %s\n",
		result.Records, result.Dimension, cfg.Store.Path, time.Since(start).Round(time.Millisecond))
	if result.Skipped > 0 || result.Dropped > 0 {
		errorColor.Fprintf(deps.Stdout, "  %d chunks skipped after failed embedding, %d dropped for dimension mismatch\n",
			result.Skipped, result.Dropped)
	}
	if result.Published {
		successColor.Fprintf(deps.Stdout, "✓ Published to table %s\n", cfg.Store.TableName)
	}
	return nil
}
