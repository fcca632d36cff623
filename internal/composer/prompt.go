// Package composer assembles the grounded prompt sent to the answering model
// from retrieved lore chunks and the user question.
package composer

import (
	"strings"

	"lorebot/internal/retrieval"
)

// NotFound is the exact sentence returned to the user when the index holds
// nothing relevant. The prompt also instructs the model to emit this literal
// when the supplied content cannot answer the question.
const NotFound = "No relevant information found in the knowledge base."

const (
	defaultMaxChunks  = 12
	defaultMaxSources = 5
)

const chunkSeparator = "\n\n---\n\n"

// Composer builds prompts with a bounded context window: at most maxChunks
// chunk texts are injected, and at most maxSources filenames are cited.
type Composer struct {
	maxChunks  int
	maxSources int
}

// New creates a Composer. Non-positive limits fall back to defaults.
func New(maxChunks, maxSources int) *Composer {
	if maxChunks <= 0 {
		maxChunks = defaultMaxChunks
	}
	if maxSources <= 0 {
		maxSources = defaultMaxSources
	}
	return &Composer{maxChunks: maxChunks, maxSources: maxSources}
}

// Prompt is a composed model request plus the citation metadata derived from
// the chunks that made it into the context window.
type Prompt struct {
	Text    string
	Sources []string
	Empty   bool // no usable context; skip the model call
}

// Compose builds the grounded prompt for a question. Chunks beyond maxChunks
// are dropped in the order given, so callers decide ranking before composing.
// Sources are collected from the full chunk list, so a file can be cited even
// when its chunks fell past the context cutoff. When every chunk is blank the
// prompt is marked Empty and Text is unset.
func (c *Composer) Compose(query string, chunks []retrieval.Chunk) Prompt {
	sources := c.collectSources(chunks)
	if len(chunks) > c.maxChunks {
		chunks = chunks[:c.maxChunks]
	}

	texts := make([]string, 0, len(chunks))
	for _, ch := range chunks {
		if strings.TrimSpace(ch.Text) == "" {
			continue
		}
		texts = append(texts, strings.TrimSpace(ch.Text))
	}
	if len(texts) == 0 {
		return Prompt{Empty: true}
	}

	content := strings.Join(texts, chunkSeparator)

	var sb strings.Builder
	sb.WriteString("You are a lore assistant for a fictional game world. ")
	sb.WriteString("Answer the question using ONLY the CONTENT below. ")
	sb.WriteString("You may summarise and connect facts from the CONTENT, but never invent facts that are not in it. ")
	sb.WriteString("If the CONTENT does not contain the answer, reply exactly: \"")
	sb.WriteString(NotFound)
	sb.WriteString("\"\n\nCONTENT:\n")
	sb.WriteString(content)
	sb.WriteString("\n\nQUESTION:\n")
	sb.WriteString(query)
	sb.WriteString("\n\nANSWER:")

	return Prompt{
		Text:    sb.String(),
		Sources: sources,
	}
}

// collectSources dedups filenames in first-seen order, capped at maxSources.
func (c *Composer) collectSources(chunks []retrieval.Chunk) []string {
	seen := make(map[string]bool, len(chunks))
	var sources []string
	for _, ch := range chunks {
		if ch.Source == "" || seen[ch.Source] {
			continue
		}
		seen[ch.Source] = true
		sources = append(sources, ch.Source)
		if len(sources) == c.maxSources {
			break
		}
	}
	return sources
}
