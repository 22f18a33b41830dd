package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"chat-rag/internal/config"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// ErrNoEmbedding means the provider answered without a usable vector. An empty
// vector written into the index would corrupt every later query for the
// conversation, so this always propagates.
var ErrNoEmbedding = errors.New("embedding provider returned no vector")

const DefaultTimeout = 30 * time.Second

// Embedder turns text into a fixed-length vector. Documents and queries go
// through the same operation.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// NewEmbedder creates an embedder for the configured provider.
func NewEmbedder(cfg *config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	if cfg.Provider == "ollama" {
		return NewOllamaEmbedder(cfg)
	}
	return NewOpenAIEmbedder(cfg)
}

// NewOpenAIEmbedder targets any openai-compatible embedding endpoint
// (OpenAI, OpenRouter, ...).
func NewOpenAIEmbedder(cfg *config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	llm, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
		openai.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("init embedding llm: %w", err)
	}
	return embeddings.NewEmbedder(llm)
}

func NewOllamaEmbedder(cfg *config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	llm, err := ollama.New(
		ollama.WithServerURL(cfg.BaseURL),
		ollama.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("init embedding llm: %w", err)
	}
	return embeddings.NewEmbedder(llm)
}

// EmbedText embeds one chunk or query under a bounded timeout. No caching:
// repeated text is re-embedded every time.
func EmbedText(ctx context.Context, embedder Embedder, text string, timeout time.Duration) ([]float32, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	vector, err := embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed text: %w", err)
	}
	if len(vector) == 0 {
		return nil, ErrNoEmbedding
	}
	return vector, nil
}
