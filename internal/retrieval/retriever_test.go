package retrieval

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"

	"lorebot/internal/index"
)

// axisEmbed maps marker words to orthogonal unit vectors so similarity is
// fully controlled: text sharing a marker with the query scores 1, anything
// else scores 0.
func axisEmbed(_ context.Context, text string) ([]float32, error) {
	switch {
	case strings.Contains(text, "alpha"):
		return []float32{1, 0, 0}, nil
	case strings.Contains(text, "beta"):
		return []float32{0, 1, 0}, nil
	default:
		return []float32{0, 0, 1}, nil
	}
}

func memCollection(t *testing.T, docs map[string]string) *chromem.Collection {
	t.Helper()
	db := chromem.NewDB()
	col, err := db.GetOrCreateCollection(index.CollectionName, nil, axisEmbed)
	if err != nil {
		t.Fatal(err)
	}
	var cd []chromem.Document
	for filename, text := range docs {
		cd = append(cd, chromem.Document{
			ID:       uuid.New().String(),
			Content:  text,
			Metadata: map[string]string{"filename": filename},
		})
	}
	if len(cd) > 0 {
		if err := col.AddDocuments(context.Background(), cd, 1); err != nil {
			t.Fatal(err)
		}
	}
	return col
}

func TestRetriever_OrdersBySimilarity(t *testing.T) {
	col := memCollection(t, map[string]string{
		"a.md": "alpha sword lore",
		"b.md": "beta shield lore",
	})
	r := NewRetriever("items", col, 8)

	chunks, err := r.Retrieve(context.Background(), "alpha")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if chunks[0].Source != "a.md" {
		t.Errorf("top chunk source = %q, want a.md", chunks[0].Source)
	}
	if chunks[0].Score <= chunks[1].Score {
		t.Errorf("scores not descending: %g then %g", chunks[0].Score, chunks[1].Score)
	}
	if chunks[0].Category != "items" {
		t.Errorf("category = %q, want items", chunks[0].Category)
	}
}

func TestRetriever_EmptyCollection(t *testing.T) {
	col := memCollection(t, nil)
	r := NewRetriever("items", col, 8)

	chunks, err := r.Retrieve(context.Background(), "alpha")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chunks != nil {
		t.Errorf("got %v, want nil from empty index", chunks)
	}
}

func TestRetriever_ClampsTopK(t *testing.T) {
	// topK larger than the collection must not error.
	col := memCollection(t, map[string]string{"a.md": "alpha"})
	r := NewRetriever("items", col, 50)

	chunks, err := r.Retrieve(context.Background(), "alpha")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Errorf("got %d chunks, want 1", len(chunks))
	}
}

func TestSet_NotIndexed(t *testing.T) {
	set := NewSet(map[string]*Retriever{
		"items": NewRetriever("items", memCollection(t, map[string]string{"a.md": "alpha"}), 8),
	}, 0)

	_, err := set.Search(context.Background(), "npc", "alpha")
	var nie *NotIndexedError
	if !errors.As(err, &nie) {
		t.Fatalf("got %v, want NotIndexedError", err)
	}
	if nie.Category != "npc" {
		t.Errorf("error category = %q, want npc", nie.Category)
	}
	if !strings.Contains(nie.Error(), "npc") {
		t.Errorf("error message %q does not name the category", nie.Error())
	}
}

func TestSet_SearchAllConcatenates(t *testing.T) {
	set := NewSet(map[string]*Retriever{
		"items": NewRetriever("items", memCollection(t, map[string]string{"a.md": "alpha sword"}), 8),
		"maps":  NewRetriever("maps", memCollection(t, map[string]string{"m.md": "beta marsh"}), 8),
	}, 0)

	chunks, err := set.Search(context.Background(), "", "alpha")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want one from each category", len(chunks))
	}
	cats := map[string]bool{}
	for _, ch := range chunks {
		cats[ch.Category] = true
	}
	if !cats["items"] || !cats["maps"] {
		t.Errorf("categories in results = %v, want items and maps", cats)
	}
}

func TestSet_MinSimilarityFiltersSearchAll(t *testing.T) {
	set := NewSet(map[string]*Retriever{
		"items": NewRetriever("items", memCollection(t, map[string]string{"a.md": "alpha sword"}), 8),
		"maps":  NewRetriever("maps", memCollection(t, map[string]string{"m.md": "beta marsh"}), 8),
	}, 0.5)

	chunks, err := set.Search(context.Background(), "", "alpha")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1 (orthogonal chunk filtered)", len(chunks))
	}
	if chunks[0].Category != "items" {
		t.Errorf("surviving chunk category = %q, want items", chunks[0].Category)
	}
}

func TestLoadSet_MissingRootIsFatal(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "storage")
	if _, err := LoadSet(missing, []string{"items"}, axisEmbed, 8, 0); err == nil {
		t.Fatal("expected error for missing index root")
	}
}

func TestLoadSet_MissingCategoryIsSkipped(t *testing.T) {
	indexDir := t.TempDir()

	// Persist one category directly through the index layer.
	col, err := index.OpenCollection(indexDir, "items", axisEmbed)
	if err != nil {
		t.Fatal(err)
	}
	err = col.AddDocuments(context.Background(), []chromem.Document{{
		ID:       uuid.New().String(),
		Content:  "alpha sword",
		Metadata: map[string]string{"filename": "a.md"},
	}}, 1)
	if err != nil {
		t.Fatal(err)
	}

	set, err := LoadSet(indexDir, []string{"items", "maps"}, axisEmbed, 8, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !set.Has("items") {
		t.Error("items index was not loaded")
	}
	if set.Has("maps") {
		t.Error("maps reported as loaded without on-disk state")
	}
	if got := set.Categories(); len(got) != 1 || got[0] != "items" {
		t.Errorf("Categories() = %v, want [items]", got)
	}
	if set.ChunkCount("items") != 1 {
		t.Errorf("ChunkCount(items) = %d, want 1", set.ChunkCount("items"))
	}
}
