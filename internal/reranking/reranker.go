// Package reranking re-scores retrieved lore chunks with a second, faster
// model pass. Any failure degrades silently to the original retrieval order.
package reranking

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"lorebot/internal/retrieval"
)

const scoreConcurrency = 3

// Completer issues a single completion on a caller-chosen model.
type Completer interface {
	CompleteWithModel(ctx context.Context, model, prompt string) (string, error)
}

// Reranker re-scores retrieved context chunks by query relevance.
type Reranker interface {
	Rerank(ctx context.Context, query string, chunks []retrieval.Chunk) ([]retrieval.Chunk, error)
}

// NewReranker returns an LLMReranker if enabled, NoOpReranker otherwise.
// topN caps how many chunks survive a successful rerank; 0 keeps all.
func NewReranker(client Completer, model string, enabled bool, timeout time.Duration, topN int) Reranker {
	if !enabled || client == nil {
		return &NoOpReranker{}
	}
	return &LLMReranker{
		client:  client,
		model:   model,
		timeout: timeout,
		topN:    topN,
	}
}

// LLMReranker scores (query, chunk) relevance pairs on the rerank model.
// Scoring runs concurrently, bounded to scoreConcurrency goroutines.
type LLMReranker struct {
	client  Completer
	model   string
	timeout time.Duration
	topN    int
}

// Rerank scores each chunk against the query and returns the chunks sorted by
// score descending, truncated to topN. If the timeout fires before scoring
// completes, the original chunk order is returned unchanged.
func (r *LLMReranker) Rerank(ctx context.Context, query string, chunks []retrieval.Chunk) ([]retrieval.Chunk, error) {
	if len(chunks) == 0 {
		return chunks, nil
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// Buffered so goroutines never block on send after we stop reading.
	results := make(chan retrieval.Chunk, len(chunks))
	sem := make(chan struct{}, scoreConcurrency)

	var wg sync.WaitGroup
	for _, ch := range chunks {
		wg.Add(1)
		go func(chunk retrieval.Chunk) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-timeoutCtx.Done():
				return
			}
			defer func() { <-sem }()

			score, err := r.scoreChunk(timeoutCtx, query, chunk)
			if err != nil {
				if timeoutCtx.Err() != nil {
					return
				}
				slog.Debug("reranker: score failed, retaining original", "error", err)
				results <- chunk // original score preserved
				return
			}
			chunk.Score = float32(score)
			results <- chunk
		}(ch)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	scored := make([]retrieval.Chunk, 0, len(chunks))
collect:
	for {
		select {
		case ch, ok := <-results:
			if !ok {
				break collect
			}
			scored = append(scored, ch)
		case <-timeoutCtx.Done():
			// Timeout before scoring finished: degrade to retrieval order.
			return chunks, nil
		}
	}

	if len(scored) == 0 {
		return chunks, nil
	}

	sort.Slice(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if r.topN > 0 && len(scored) > r.topN {
		scored = scored[:r.topN]
	}
	return scored, nil
}

func (r *LLMReranker) scoreChunk(ctx context.Context, query string, chunk retrieval.Chunk) (float64, error) {
	prompt := "Rate the relevance of the following text to the query on a scale of 0.0 to 1.0.\n" +
		"Query: " + query + "\n" +
		"Text: " + chunk.Text + "\n" +
		`Respond with only a JSON object: {"score": <float>}`

	resp, err := r.client.CompleteWithModel(ctx, r.model, prompt)
	if err != nil {
		return float64(chunk.Score), err
	}

	score, parseErr := parseScore(resp, chunk.Score)
	if parseErr != nil {
		slog.Debug("reranker: parse failed, using original score", "resp", resp, "error", parseErr)
		return float64(chunk.Score), nil
	}
	return score, nil
}

// parseScore extracts a relevance score float from an LLM response. Small
// models frequently wrap JSON in markdown code fences or prepend
// conversational filler, so the parser strips fences, cuts the substring
// between the first { and last }, and only then unmarshals. On failure the
// original score is returned so the chunk is not penalised.
func parseScore(resp string, originalScore float32) (float64, error) {
	s := strings.TrimSpace(resp)

	if idx := strings.Index(s, "```"); idx != -1 {
		s = s[idx+3:]
		if strings.HasPrefix(s, "json") {
			s = s[4:]
		}
		if end := strings.Index(s, "```"); end != -1 {
			s = s[:end]
		}
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return float64(originalScore), fmt.Errorf("no JSON object in response")
	}

	var obj struct {
		Score float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(s[start:end+1]), &obj); err != nil {
		return float64(originalScore), fmt.Errorf("unmarshal score: %w", err)
	}
	return obj.Score, nil
}

// NoOpReranker passes chunks through unchanged. Used when reranking is disabled.
type NoOpReranker struct{}

func (n *NoOpReranker) Rerank(_ context.Context, _ string, chunks []retrieval.Chunk) ([]retrieval.Chunk, error) {
	return chunks, nil
}
