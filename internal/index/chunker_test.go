package index

import (
	"fmt"
	"strings"
	"testing"
)

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(parts, " ")
}

func TestChunkerSplit_Empty(t *testing.T) {
	c := NewChunker(10, 2)
	if got := c.Split(""); got != nil {
		t.Errorf("Split(\"\") = %v, want nil", got)
	}
	if got := c.Split("   \n\t "); got != nil {
		t.Errorf("Split(whitespace) = %v, want nil", got)
	}
}

func TestChunkerSplit_SingleChunk(t *testing.T) {
	c := NewChunker(10, 2)
	got := c.Split(words(7))
	if len(got) != 1 {
		t.Fatalf("got %d chunks, want 1", len(got))
	}
	if got[0] != words(7) {
		t.Errorf("chunk = %q, want full text", got[0])
	}
}

func TestChunkerSplit_MaxLength(t *testing.T) {
	c := NewChunker(10, 3)
	for i, chunk := range c.Split(words(95)) {
		if n := len(strings.Fields(chunk)); n > 10 {
			t.Errorf("chunk %d has %d words, want <= 10", i, n)
		}
	}
}

func TestChunkerSplit_ExactOverlap(t *testing.T) {
	const size, overlap = 10, 3
	c := NewChunker(size, overlap)
	chunks := c.Split(words(95))
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want several", len(chunks))
	}

	for i := 0; i < len(chunks)-1; i++ {
		cur := strings.Fields(chunks[i])
		next := strings.Fields(chunks[i+1])
		tail := cur[len(cur)-overlap:]
		head := next[:overlap]
		for j := range tail {
			if tail[j] != head[j] {
				t.Fatalf("chunks %d/%d overlap mismatch: tail %v, head %v", i, i+1, tail, head)
			}
		}
	}
}

func TestChunkerSplit_FinalChunkNotDuplicated(t *testing.T) {
	// 12 words, size 10, overlap 3: two chunks, second covers the remainder.
	c := NewChunker(10, 3)
	chunks := c.Split(words(12))
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if n := len(strings.Fields(chunks[1])); n != 5 {
		t.Errorf("final chunk has %d words, want 5 (overlap 3 + remainder 2)", n)
	}
}

func TestNewChunker_ClampsOverlap(t *testing.T) {
	// overlap >= size must still advance the window.
	c := NewChunker(5, 9)
	chunks := c.Split(words(20))
	if len(chunks) == 0 {
		t.Fatal("got no chunks")
	}
	// With step forced to 1 the chunker terminates; sanity-check coverage.
	last := strings.Fields(chunks[len(chunks)-1])
	if last[len(last)-1] != "w19" {
		t.Errorf("last word = %q, want w19", last[len(last)-1])
	}
}
