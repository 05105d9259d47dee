package mock

import (
	"context"

	"github.com/xhad/sitekb/internal/models"
	"github.com/xhad/sitekb/internal/types"
)

var _ types.Completer = (*Completer)(nil)

// Completer is a mock implementation of types.Completer.
type Completer struct {
	CompleteFn func(ctx context.Context, messages []models.Message, temperature float64) (string, error)
}

func (c *Completer) Complete(ctx context.Context, messages []models.Message, temperature float64) (string, error) {
	return c.CompleteFn(ctx, messages, temperature)
}
