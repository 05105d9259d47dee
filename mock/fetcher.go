package mock

import (
	"context"

	"github.com/xhad/sitekb/internal/types"
)

var _ types.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of types.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}
