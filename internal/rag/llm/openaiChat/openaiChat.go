package openaiChat

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

// Client talks to the OpenAI chat completions API. Retries are left to the
// caller, so the SDK's own retry loop is disabled.
type Client struct {
	api    openai.Client
	model  openai.ChatModel
	logger *logger_i.Logger
}

func NewClient(apiKey string, model string) (*Client, error) {
	if apiKey == "" {
		return nil, ragerrors.New(ragerrors.KindValidation, "missing OpenAI API key")
	}
	return &Client{
		api: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithMaxRetries(0),
			option.WithHTTPClient(customHttpClient.Pooled()),
		),
		model:  openai.ChatModel(model),
		logger: logger_i.NewLogger("llm_openai"),
	}, nil
}

func (c *Client) Name() string { return "openai" }

func (c *Client) Generate(ctx context.Context, systemInstruction string, prompt string) (string, error) {
	loggr := c.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	completion, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemInstruction),
			openai.UserMessage(prompt),
		},
		MaxTokens:   openai.Int(config.ModelMaxTokens),
		Temperature: openai.Float(config.ModelTemperature),
	})
	if err != nil {
		loggr.Error("Chat completion failed", "error", err)
		return "", classify(err)
	}
	if len(completion.Choices) == 0 {
		return "", ragerrors.New(ragerrors.KindRAG, "model returned no choices")
	}

	loggr.Debug("Chat completion done", "model", c.model, "tokens", completion.Usage.TotalTokens)
	return completion.Choices[0].Message.Content, nil
}

func (c *Client) Ping(ctx context.Context) error {
	_, err := c.api.Models.List(ctx)
	if err != nil {
		return classify(err)
	}
	return nil
}

func classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == 429:
			return ragerrors.Wrap(ragerrors.KindRateLimit, "openai rate limited", err)
		case apiErr.StatusCode == 408 || apiErr.StatusCode == 504:
			return ragerrors.Wrap(ragerrors.KindTimeout, "openai timed out", err)
		case apiErr.StatusCode >= 500:
			return ragerrors.Wrap(ragerrors.KindBackend, "openai unavailable", err)
		default:
			return ragerrors.Wrap(ragerrors.KindRAG, "openai rejected request", err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ragerrors.Wrap(ragerrors.KindTimeout, "openai request timed out", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ragerrors.Wrap(ragerrors.KindTimeout, "openai request timed out", err)
	}
	return ragerrors.Wrap(ragerrors.KindConnection, "openai unreachable", err)
}
