package retriever

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xhad/sitekb/internal/models"
	"github.com/xhad/sitekb/internal/types"
	"github.com/xhad/sitekb/pkg/store"
)

var (
	// ErrRetrieval wraps failures to embed the query or to compare it with
	// the store.
	ErrRetrieval = errors.New("retrieval failed")
	// ErrCompletion wraps failures of the completion service.
	ErrCompletion = errors.New("completion failed")
)

// DefaultSystemPrompt keeps the assistant on the indexed site.
const DefaultSystemPrompt = `You are a guide to the website whose content is provided below. Answer questions ONLY about this website and what it describes.

You must base your answers ONLY on the website context provided. If the answer is not clearly supported by the context, say you are not sure and suggest where on the site the user could look.

Be concise and specific.`

const contextPrefix = "Website context:\n\n"

type Options struct {
	TopK               int
	HistoryWindowTurns int
	Temperature        *float64 // nil uses 0.4; 0 is a valid setting
	MinScore           float64
	SystemPrompt       string
	RequestTimeout     time.Duration
}

// DefaultOptions returns the options used for zero-valued fields.
func DefaultOptions() Options {
	temperature := 0.4
	return Options{
		TopK:               DefaultTopK,
		HistoryWindowTurns: 6,
		Temperature:        &temperature,
		SystemPrompt:       DefaultSystemPrompt,
		RequestTimeout:     30 * time.Second,
	}
}

// Retriever answers questions from a loaded store. It holds no mutable state
// and is safe for concurrent use.
type Retriever struct {
	embedder  types.Embedder
	completer types.Completer
	store     *store.Store
	opts      Options
	logger    *slog.Logger
}

func New(embedder types.Embedder, completer types.Completer, s *store.Store, opts Options, logger *slog.Logger) *Retriever {
	def := DefaultOptions()
	if opts.TopK <= 0 {
		opts.TopK = def.TopK
	}
	if opts.HistoryWindowTurns < 0 {
		opts.HistoryWindowTurns = 0
	}
	if opts.Temperature == nil {
		opts.Temperature = def.Temperature
	}
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = def.SystemPrompt
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = def.RequestTimeout
	}
	if s == nil {
		s = store.Empty()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{
		embedder:  embedder,
		completer: completer,
		store:     s,
		opts:      opts,
		logger:    logger,
	}
}

// Search returns the stored chunks most similar to query. An empty store
// returns no matches without calling the embedder. A query embedding whose
// length differs from the store's dimension is an ErrRetrieval wrapping
// store.ErrDimensionMismatch.
func (r *Retriever) Search(ctx context.Context, query string) ([]Scored, error) {
	if r.store.Len() == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.opts.RequestTimeout)
	defer cancel()

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRetrieval, err)
	}
	if len(vec) != r.store.Dimension() {
		return nil, fmt.Errorf("%w: %w: query has %d, store has %d",
			ErrRetrieval, store.ErrDimensionMismatch, len(vec), r.store.Dimension())
	}

	return Rank(vec, r.store.Records(), r.opts.TopK, r.opts.MinScore), nil
}

// Context returns the assembled context block for query.
func (r *Retriever) Context(ctx context.Context, query string) (string, error) {
	matches, err := r.Search(ctx, query)
	if err != nil {
		return "", err
	}
	return AssembleContext(matches), nil
}

// Messages builds the ordered message list for the completion service.
func (r *Retriever) Messages(req models.ChatRequest, websiteContext string) []models.Message {
	history := req.History
	if len(history) > r.opts.HistoryWindowTurns {
		history = history[len(history)-r.opts.HistoryWindowTurns:]
	}

	messages := make([]models.Message, 0, 3+2*len(history))
	messages = append(messages,
		models.Message{Role: models.RoleSystem, Content: r.opts.SystemPrompt},
		models.Message{Role: models.RoleSystem, Content: contextPrefix + websiteContext},
	)
	for _, turn := range history {
		messages = append(messages,
			models.Message{Role: models.RoleUser, Content: turn.User},
			models.Message{Role: models.RoleAssistant, Content: turn.Assistant},
		)
	}
	return append(messages, models.Message{Role: models.RoleUser, Content: req.Message})
}

// Answer retrieves context for the request's message and asks the completion
// service for a reply. Nothing is retried.
func (r *Retriever) Answer(ctx context.Context, req models.ChatRequest) (string, error) {
	websiteContext, err := r.Context(ctx, req.Message)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, r.opts.RequestTimeout)
	defer cancel()

	reply, err := r.completer.Complete(ctx, r.Messages(req, websiteContext), *r.opts.Temperature)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCompletion, err)
	}
	return reply, nil
}

// StoreSize reports how many records the retriever ranks against.
func (r *Retriever) StoreSize() int {
	return r.store.Len()
}
