// Package pipeline wires retrieval, reranking, prompt composition and the
// answering model into a single question-to-answer flow.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"lorebot/internal/composer"
	"lorebot/internal/reranking"
	"lorebot/internal/retrieval"
)

// Searcher finds lore chunks for a question. An empty category searches every
// loaded index.
type Searcher interface {
	Search(ctx context.Context, category, query string) ([]retrieval.Chunk, error)
}

// Completer produces the final answer text from a composed prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Answerer runs the full flow for one question.
type Answerer struct {
	search   Searcher
	reranker reranking.Reranker
	composer *composer.Composer
	complete Completer
	logger   *slog.Logger
}

func New(search Searcher, reranker reranking.Reranker, comp *composer.Composer, complete Completer, logger *slog.Logger) *Answerer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Answerer{
		search:   search,
		reranker: reranker,
		composer: comp,
		complete: complete,
		logger:   logger,
	}
}

// Answer is the result delivered back to the chat layer.
type Answer struct {
	Text     string
	Sources  []string
	Mode     string // category searched, or "all"
	NotFound bool
}

// Ask resolves an explicit "category:" prefix from the raw input, falling
// back to the caller's sticky category when the input carries none.
func (a *Answerer) Ask(ctx context.Context, input, sessionCategory string) (Answer, error) {
	category, query := retrieval.Resolve(input)
	if category == "" {
		category = sessionCategory
	}
	return a.Answer(ctx, category, query)
}

// Answer retrieves context for the question, optionally reranks it, and asks
// the model for a grounded answer. An empty category searches all categories.
// A failed rerank never fails the question: the retrieval order is used
// instead.
func (a *Answerer) Answer(ctx context.Context, category, question string) (Answer, error) {
	mode := category
	if mode == "" {
		mode = "all"
	}

	chunks, err := a.search.Search(ctx, category, question)
	if err != nil {
		return Answer{}, fmt.Errorf("searching %s: %w", mode, err)
	}

	ranked, err := a.reranker.Rerank(ctx, question, chunks)
	if err != nil {
		a.logger.Warn("rerank failed, using retrieval order", "error", err)
		ranked = chunks
	}

	prompt := a.composer.Compose(question, ranked)
	if prompt.Empty {
		return Answer{Text: composer.NotFound, Mode: mode, NotFound: true}, nil
	}

	text, err := a.complete.Complete(ctx, prompt.Text)
	if err != nil {
		return Answer{}, fmt.Errorf("answering: %w", err)
	}

	return Answer{
		Text:     text,
		Sources:  prompt.Sources,
		Mode:     mode,
		NotFound: text == composer.NotFound,
	}, nil
}
