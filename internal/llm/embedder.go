package llm

import (
	"fmt"

	"github.com/philippgille/chromem-go"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"lorebot/internal/config"
)

// NewEmbeddingFunc builds the chromem embedding function from the configured
// OpenAI-compatible embeddings endpoint. The same function is injected into
// the index builder and the query-time retrievers so both sides of the
// persisted index share one embedding space.
func NewEmbeddingFunc(cfg config.EmbeddingConfig) (chromem.EmbeddingFunc, error) {
	token := cfg.APIKey
	if token == "" {
		// Local endpoints (Ollama) ignore the bearer token, but the client
		// refuses to construct without one.
		token = "unused"
	}

	client, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(token),
		openai.WithEmbeddingModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("initializing embedding client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(client)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	return embedder.EmbedQuery, nil
}
