package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/xhad/sitekb/internal/models"
	"github.com/xhad/sitekb/internal/types"
	"github.com/xhad/sitekb/pkg/extractor"
)

type ScraperConfig struct {
	BaseURL      string
	MaxDepth     int
	MaxPages     int
	MinPageChars int           // pages with this many characters or fewer are discarded
	RateLimit    float64       // requests per second, used when Fetcher is nil
	Timeout      time.Duration // per request, used when Fetcher is nil
	MaxDuration  time.Duration // wall-clock budget for one crawl, 0 for none
	Fetcher      types.Fetcher
	Extractor    types.Extractor
	Logger       *slog.Logger
	OnProgress   func(url string)
}

// Scraper crawls one site depth-first from its root, bounded by depth and page count.
type Scraper struct {
	config     ScraperConfig
	normalizer *Normalizer
	fetcher    types.Fetcher
	extract    types.Extractor
	logger     *slog.Logger
}

// frame is a pending visit on the crawl work-list.
type frame struct {
	url   string
	base  string
	depth int
}

func NewWithConfig(config ScraperConfig) (*Scraper, error) {
	if config.MaxDepth < 0 {
		return nil, fmt.Errorf("max depth must not be negative")
	}
	if config.MaxPages == 0 {
		config.MaxPages = 30
	}
	if config.MinPageChars == 0 {
		config.MinPageChars = 200
	}

	normalizer, err := NewNormalizer(config.BaseURL)
	if err != nil {
		return nil, err
	}

	fetcher := config.Fetcher
	if fetcher == nil {
		fetcher = NewHTTPFetcher(config.Timeout, config.RateLimit)
	}
	extract := config.Extractor
	if extract == nil {
		extract = extractor.Extract
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scraper{
		config:     config,
		normalizer: normalizer,
		fetcher:    fetcher,
		extract:    extract,
		logger:     logger,
	}, nil
}

// New creates a Scraper for baseURL with default limits (depth 3, 30 pages).
func New(baseURL string) (*Scraper, error) {
	return NewWithConfig(ScraperConfig{
		BaseURL:  baseURL,
		MaxDepth: 3,
	})
}

// Scrape crawls from the root URL and returns the retained pages in visit order.
//
// The work-list is a stack and links are pushed in reverse document order, so
// pages are visited in the same pre-order a recursive depth-first walk would
// produce. When MaxPages truncates the crawl this order decides which pages
// are kept. If MaxDuration elapses the pages collected so far are returned.
func (s *Scraper) Scrape(ctx context.Context) ([]models.Page, error) {
	crawlCtx := ctx
	if s.config.MaxDuration > 0 {
		var cancel context.CancelFunc
		crawlCtx, cancel = context.WithTimeout(ctx, s.config.MaxDuration)
		defer cancel()
	}

	var pages []models.Page
	visited := make(map[string]bool)
	stack := []frame{{url: s.config.BaseURL, depth: 0}}

	for len(stack) > 0 && len(pages) < s.config.MaxPages {
		if err := crawlCtx.Err(); err != nil {
			if ctx.Err() != nil {
				return pages, ctx.Err()
			}
			s.logger.Warn("crawl time budget exhausted",
				"budget", s.config.MaxDuration,
				"pages", len(pages),
			)
			return pages, nil
		}

		next := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		norm, ok := s.normalizer.Normalize(next.url, next.base)
		if !ok || visited[norm] || next.depth > s.config.MaxDepth {
			continue
		}
		visited[norm] = true

		if s.config.OnProgress != nil {
			s.config.OnProgress(norm)
		}

		html, err := s.fetcher.Fetch(crawlCtx, norm)
		if err != nil {
			if errors.Is(err, context.Canceled) && ctx.Err() != nil {
				return pages, ctx.Err()
			}
			s.logger.Warn("fetch failed", "url", norm, "error", err)
			continue
		}

		text := s.extract(html)
		if utf8.RuneCountInString(text) > s.config.MinPageChars {
			pages = append(pages, models.Page{URL: norm, Text: text, Depth: next.depth})
		} else {
			s.logger.Debug("page below content threshold", "url", norm, "chars", utf8.RuneCountInString(text))
		}

		if next.depth == s.config.MaxDepth {
			continue
		}

		links := s.extractLinks(norm, html)
		for i := len(links) - 1; i >= 0; i-- {
			stack = append(stack, frame{url: links[i], base: norm, depth: next.depth + 1})
		}
	}

	return pages, nil
}

// extractLinks returns the same-origin links of a page in document order.
func (s *Scraper) extractLinks(pageURL, html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		s.logger.Warn("parse links failed", "url", pageURL, "error", err)
		return nil
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, selection *goquery.Selection) {
		href, exists := selection.Attr("href")
		if !exists {
			return
		}
		if link, ok := s.normalizer.Normalize(href, pageURL); ok {
			links = append(links, link)
		}
	})
	return links
}
