package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/philippgille/chromem-go"

	"lorebot/internal/index"
)

// Chunk is a retrieved lore fragment with its similarity score.
type Chunk struct {
	Text     string
	Source   string // originating filename
	Category string
	Score    float32
}

// NotIndexedError reports a category that has no loaded index. It is a
// configuration problem (the builder has not run for that category), not a
// retrieval miss, and callers surface it instead of degrading to search-all.
type NotIndexedError struct {
	Category string
}

func (e *NotIndexedError) Error() string {
	return fmt.Sprintf("category %q is not indexed; run `lorebot index` first", e.Category)
}

// Retriever answers top-K similarity queries against one category's index.
type Retriever struct {
	category string
	col      *chromem.Collection
	topK     int
}

// NewRetriever wraps an opened collection. topK defaults to 8 when <= 0.
func NewRetriever(category string, col *chromem.Collection, topK int) *Retriever {
	if topK <= 0 {
		topK = 8
	}
	return &Retriever{category: category, col: col, topK: topK}
}

// Retrieve returns the top-K chunks most similar to the query. An empty
// collection yields no chunks, not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]Chunk, error) {
	n := r.topK
	count := r.col.Count()
	if count == 0 {
		return nil, nil
	}
	if n > count {
		n = count
	}

	results, err := r.col.Query(ctx, query, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying %s index: %w", r.category, err)
	}

	chunks := make([]Chunk, len(results))
	for i, res := range results {
		chunks[i] = Chunk{
			Text:     res.Content,
			Source:   res.Metadata["filename"],
			Category: r.category,
			Score:    res.Similarity,
		}
	}
	return chunks, nil
}

// Count returns the number of chunks in the category's index.
func (r *Retriever) Count() int {
	return r.col.Count()
}

// Set is the immutable per-category retriever map. It is built once at
// startup and shared read-only across concurrent request handlers; rebuilding
// an index requires a restart.
type Set struct {
	retrievers    map[string]*Retriever
	minSimilarity float32
}

// NewSet builds a Set from already-opened retrievers. minSimilarity < or = 0
// disables the cross-category relevance floor on search-all.
func NewSet(retrievers map[string]*Retriever, minSimilarity float64) *Set {
	return &Set{retrievers: retrievers, minSimilarity: float32(minSimilarity)}
}

// LoadSet opens every category's persisted index under indexDir. A missing
// indexDir is fatal: the builder has never run. A missing single category is
// a warning, and that category simply stays unloaded.
func LoadSet(indexDir string, categories []string, embed chromem.EmbeddingFunc, topK int, minSimilarity float64) (*Set, error) {
	if _, err := os.Stat(indexDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("index root %s does not exist; run `lorebot index` first", indexDir)
	} else if err != nil {
		return nil, fmt.Errorf("checking index root: %w", err)
	}

	retrievers := make(map[string]*Retriever, len(categories))
	for _, cat := range categories {
		catDir := filepath.Join(indexDir, cat)
		if _, err := os.Stat(catDir); os.IsNotExist(err) {
			slog.Warn("category index missing, skipping", "category", cat, "dir", catDir)
			continue
		} else if err != nil {
			return nil, fmt.Errorf("checking %s: %w", catDir, err)
		}

		col, err := index.OpenCollection(indexDir, cat, embed)
		if err != nil {
			return nil, err
		}
		retrievers[cat] = NewRetriever(cat, col, topK)
	}

	slog.Info("retrievers loaded", "categories", sortedKeys(retrievers))
	return NewSet(retrievers, minSimilarity), nil
}

// Has reports whether the category has a loaded index.
func (s *Set) Has(category string) bool {
	_, ok := s.retrievers[category]
	return ok
}

// Categories returns the loaded category names, sorted.
func (s *Set) Categories() []string {
	return sortedKeys(s.retrievers)
}

// ChunkCount returns the number of indexed chunks for a loaded category.
func (s *Set) ChunkCount(category string) int {
	r, ok := s.retrievers[category]
	if !ok {
		return 0
	}
	return r.Count()
}

// Search retrieves chunks for the query. A non-empty category must name a
// loaded index or a NotIndexedError is returned. An empty category queries
// every loaded index independently and concatenates the results in category
// order, with no cross-category score normalization; the optional minimum
// similarity floor drops low-relevance chunks from unrelated categories.
func (s *Set) Search(ctx context.Context, category, query string) ([]Chunk, error) {
	if category != "" {
		r, ok := s.retrievers[category]
		if !ok {
			return nil, &NotIndexedError{Category: category}
		}
		return r.Retrieve(ctx, query)
	}

	var all []Chunk
	for _, cat := range s.Categories() {
		chunks, err := s.retrievers[cat].Retrieve(ctx, query)
		if err != nil {
			return nil, err
		}
		for _, ch := range chunks {
			if s.minSimilarity > 0 && ch.Score < s.minSimilarity {
				continue
			}
			all = append(all, ch)
		}
	}
	return all, nil
}

func sortedKeys(m map[string]*Retriever) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
