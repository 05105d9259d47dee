package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/xhad/sitekb/internal/types"
	"golang.org/x/time/rate"
)

var _ types.Fetcher = (*HTTPFetcher)(nil)

// MaxBodyBytes caps how much of one response is read.
const MaxBodyBytes = 5 << 20

var (
	// ErrUnsupportedContentType is returned for responses that are not text,
	// such as PDFs or images linked from a page.
	ErrUnsupportedContentType = errors.New("unsupported content type")
	// ErrBodyTooLarge is returned when a response exceeds MaxBodyBytes.
	ErrBodyTooLarge = errors.New("response body too large")
)

// HTTPFetcher fetches static pages over HTTP, one request at a time under a rate limit.
type HTTPFetcher struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewHTTPFetcher creates a fetcher with the given per-request timeout and
// requests-per-second limit.
func NewHTTPFetcher(timeout time.Duration, rps float64) *HTTPFetcher {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if rps <= 0 {
		rps = 2
	}
	return &HTTPFetcher{
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Fetch returns the body of url. Any non-2xx status, a non-text content type
// or a body over MaxBodyBytes is an error.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("received status code %d for URL: %s", resp.StatusCode, url)
	}

	if ct := resp.Header.Get("Content-Type"); !isTextContent(ct) {
		return "", fmt.Errorf("%w %q for URL: %s", ErrUnsupportedContentType, ct, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes+1))
	if err != nil {
		return "", fmt.Errorf("read body of %s: %w", url, err)
	}
	if len(body) > MaxBodyBytes {
		return "", fmt.Errorf("%w: %s", ErrBodyTooLarge, url)
	}
	return string(body), nil
}

// isTextContent accepts text/* and XHTML. A missing header is treated as text.
func isTextContent(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "text/") || mediaType == "application/xhtml+xml"
}
