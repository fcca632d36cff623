package index

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"
	"golang.org/x/sync/errgroup"
)

// CollectionName is the chromem collection holding a category's chunks.
// One persistent DB per category, one collection per DB.
const CollectionName = "chunks"

// buildConcurrency bounds how many categories are built in parallel.
// Category directories are independent, so builds never contend on disk state.
const buildConcurrency = 2

// Stats summarizes one category build.
type Stats struct {
	Documents int
	Chunks    int
	Skipped   bool
}

// Builder rebuilds per-category vector indexes from lore files. Every run is
// a full rebuild: the category's persisted state is deleted before writing.
type Builder struct {
	dataDir  string
	indexDir string
	chunker  *Chunker
	embed    chromem.EmbeddingFunc
	logger   *slog.Logger
}

// NewBuilder creates a Builder reading from dataDir/<category> and persisting
// to indexDir/<category>, embedding chunks with embed.
func NewBuilder(dataDir, indexDir string, chunker *Chunker, embed chromem.EmbeddingFunc) *Builder {
	return &Builder{
		dataDir:  dataDir,
		indexDir: indexDir,
		chunker:  chunker,
		embed:    embed,
		logger:   slog.Default(),
	}
}

// BuildAll rebuilds the index of every category that has source documents.
// Categories with no documents are skipped with a warning; that is not an
// error. Returns per-category stats keyed by category name.
func (b *Builder) BuildAll(ctx context.Context, categories []string) (map[string]Stats, error) {
	if err := os.MkdirAll(b.indexDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index root: %w", err)
	}

	var mu sync.Mutex
	stats := make(map[string]Stats, len(categories))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(buildConcurrency)
	for _, cat := range categories {
		g.Go(func() error {
			st, err := b.BuildCategory(gCtx, cat)
			if err != nil {
				return fmt.Errorf("building %s: %w", cat, err)
			}
			mu.Lock()
			stats[cat] = st
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

// BuildCategory rebuilds one category's index. The previously persisted state
// is removed only after at least one source document is found, so a run
// against an empty source directory never destroys an existing index.
func (b *Builder) BuildCategory(ctx context.Context, category string) (Stats, error) {
	srcDir := filepath.Join(b.dataDir, category)
	files, err := listDocuments(srcDir)
	if err != nil {
		return Stats{}, err
	}
	if len(files) == 0 {
		b.logger.Warn("no source documents, skipping category", "category", category, "dir", srcDir)
		return Stats{Skipped: true}, nil
	}

	persistDir := filepath.Join(b.indexDir, category)
	if err := os.RemoveAll(persistDir); err != nil {
		return Stats{}, fmt.Errorf("clearing stale index: %w", err)
	}

	db, err := chromem.NewPersistentDB(persistDir, false)
	if err != nil {
		return Stats{}, fmt.Errorf("creating index db: %w", err)
	}
	col, err := db.GetOrCreateCollection(CollectionName, map[string]string{"category": category}, b.embed)
	if err != nil {
		return Stats{}, fmt.Errorf("creating collection: %w", err)
	}

	var docs []chromem.Document
	for _, path := range files {
		text, err := readDocument(path)
		if err != nil {
			return Stats{}, err
		}
		filename := filepath.Base(path)
		for i, chunk := range b.chunker.Split(text) {
			docs = append(docs, chromem.Document{
				ID:      uuid.New().String(),
				Content: chunk,
				Metadata: map[string]string{
					"filename": filename,
					"category": category,
					"chunk":    strconv.Itoa(i),
				},
			})
		}
	}

	if len(docs) > 0 {
		if err := col.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
			return Stats{}, fmt.Errorf("embedding chunks: %w", err)
		}
	}

	b.logger.Info("category indexed",
		"category", category,
		"documents", len(files),
		"chunks", len(docs),
	)
	return Stats{Documents: len(files), Chunks: len(docs)}, nil
}

// OpenCollection opens one category's persisted index for querying. The
// caller is expected to have verified that indexDir/<category> exists.
func OpenCollection(indexDir, category string, embed chromem.EmbeddingFunc) (*chromem.Collection, error) {
	db, err := chromem.NewPersistentDB(filepath.Join(indexDir, category), false)
	if err != nil {
		return nil, fmt.Errorf("opening index for %s: %w", category, err)
	}
	col, err := db.GetOrCreateCollection(CollectionName, map[string]string{"category": category}, embed)
	if err != nil {
		return nil, fmt.Errorf("opening collection for %s: %w", category, err)
	}
	return col, nil
}
