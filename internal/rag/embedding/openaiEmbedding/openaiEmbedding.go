package openaiEmbedding

import (
	"context"
	"errors"
	"net"

	"github.com/akolanti/docmind/internal/config"
	"github.com/akolanti/docmind/internal/customHttpClient"
	"github.com/akolanti/docmind/internal/domain/ragerrors"
	"github.com/akolanti/docmind/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Client is the raw OpenAI embedding backend. Retries live in the
// gateway, so the SDK's built-in retries are disabled here.
type Client struct {
	api    openai.Client
	model  openai.EmbeddingModel
	logger *logger_i.Logger
}

func NewClient(apiKey string, model string) (*Client, error) {
	if apiKey == "" {
		return nil, ragerrors.New(ragerrors.KindValidation, "OpenAI API key not configured")
	}
	return &Client{
		api: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithMaxRetries(0),
			option.WithHTTPClient(customHttpClient.Pooled()),
		),
		model:  openai.EmbeddingModel(model),
		logger: logger_i.NewLogger("openai_embedding"),
	}, nil
}

func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input:      openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model:      c.model,
		Dimensions: openai.Int(int64(config.EmbeddingOutputDimensionality)),
	})
	if err != nil {
		return nil, classify(err)
	}

	vectors := make([][]float32, len(texts))
	for _, data := range resp.Data {
		vec := make([]float32, len(data.Embedding))
		for j, v := range data.Embedding {
			vec[j] = float32(v)
		}
		if data.Index < 0 || int(data.Index) >= len(vectors) {
			return nil, ragerrors.New(ragerrors.KindEmbedding, "backend returned out-of-range embedding index")
		}
		vectors[data.Index] = vec
	}
	return vectors, nil
}

// classify maps backend failures onto the retryable taxonomy: rate limits,
// timeouts, connection faults and 5xx responses are transient; everything
// else (bad request, auth) fails immediately.
func classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == 429:
			return ragerrors.Wrap(ragerrors.KindRateLimit, "embedding rate limited", err)
		case apiErr.StatusCode == 408 || apiErr.StatusCode == 504:
			return ragerrors.Wrap(ragerrors.KindTimeout, "embedding request timed out", err)
		case apiErr.StatusCode >= 500:
			return ragerrors.Wrap(ragerrors.KindBackend, "embedding backend error", err)
		default:
			return ragerrors.Wrap(ragerrors.KindEmbedding, "embedding request rejected", err)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ragerrors.Wrap(ragerrors.KindTimeout, "embedding request timed out", err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ragerrors.Wrap(ragerrors.KindTimeout, "embedding request timed out", err)
		}
		return ragerrors.Wrap(ragerrors.KindConnection, "embedding connection failed", err)
	}

	return ragerrors.Wrap(ragerrors.KindConnection, "embedding transport failure", err)
}
