package ai

import (
	"context"
	"fmt"
	"time"

	"catalog-agent/internal/core"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// embeddingTimeout bounds a single embedding RPC (spec §5: 10s per call).
const embeddingTimeout = 10 * time.Second

// embeddingModel is fixed for the lifetime of a build; swapping it requires
// a full Product Index rebuild (spec §9).
const embeddingModel = openai.EmbeddingModelTextEmbedding3Small

// Embedder is the production core.Embedder: it calls the OpenAI embeddings
// endpoint and shares the Client's rate limiter.
type Embedder struct {
	openai  *openai.Client
	limiter *Client // reused only for its rate limiter and waitForToken
}

// NewEmbedder constructs an Embedder against apiKey, sharing rate limiting
// with rateLimiter (pass the same *Client used for completions so both
// draw from one process-wide token bucket, or a dedicated one).
func NewEmbedder(apiKey string, rateLimiter *Client) *Embedder {
	c := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(3),
	)
	return &Embedder{openai: &c, limiter: rateLimiter}
}

// Embed returns a single dense vector for text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float64, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embedding response contained no vectors")
	}
	return vectors[0], nil
}

// EmbedBatch returns one vector per input text, same order, in one API call.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := e.limiter.waitForToken(ctx); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, embeddingTimeout)
	defer cancel()

	inputs := make(openai.EmbeddingNewParamsInputArrayOfStrings, len(texts))
	copy(inputs, texts)

	resp, err := e.openai.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: embeddingModel,
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: inputs},
	})
	if err != nil {
		return nil, wrapOpenAIErr(err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding response returned %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	out := make([][]float64, len(resp.Data))
	for i, d := range resp.Data {
		out[i] = d.Embedding
	}
	return out, nil
}

var _ core.Embedder = (*Embedder)(nil)
