package gemini

import (
	"context"
	"errors"

	"github.com/akolanti/docmind/internal/config"
	"github.com/akolanti/docmind/internal/domain/ragerrors"
	"github.com/akolanti/docmind/pkg/logger_i"
	"google.golang.org/genai"
)

type Client struct {
	client *genai.Client
	model  string
	logger *logger_i.Logger
}

func NewClient(ctx context.Context, apiKey string, model string) (*Client, error) {
	if apiKey == "" {
		return nil, ragerrors.New(ragerrors.KindValidation, "missing Gemini API key")
	}

	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, ragerrors.Wrap(ragerrors.KindConnection, "could not create Gemini client", err)
	}
	return &Client{
		client: c,
		model:  model,
		logger: logger_i.NewLogger("llm_gemini"),
	}, nil
}

func (c *Client) Name() string { return "gemini" }

func (c *Client) Generate(ctx context.Context, systemInstruction string, prompt string) (string, error) {
	loggr := c.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	contentConfig := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		},
		Temperature:     genai.Ptr(float32(config.ModelTemperature)),
		MaxOutputTokens: int32(config.ModelMaxTokens),
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), contentConfig)
	if err != nil {
		loggr.Error("Content generation failed", "error", err)
		return "", classify(err)
	}

	text := result.Text()
	if text == "" {
		return "", ragerrors.New(ragerrors.KindRAG, "model returned no text")
	}
	loggr.Debug("Content generation done", "model", c.model)
	return text, nil
}

func (c *Client) Ping(ctx context.Context) error {
	_, err := c.client.Models.List(ctx, &genai.ListModelsConfig{PageSize: 1})
	if err != nil {
		return classify(err)
	}
	return nil
}

func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 429:
			return ragerrors.Wrap(ragerrors.KindRateLimit, "gemini rate limited", err)
		case apiErr.Code == 408 || apiErr.Code == 504:
			return ragerrors.Wrap(ragerrors.KindTimeout, "gemini timed out", err)
		case apiErr.Code >= 500:
			return ragerrors.Wrap(ragerrors.KindBackend, "gemini unavailable", err)
		default:
			return ragerrors.Wrap(ragerrors.KindRAG, "gemini rejected request", err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ragerrors.Wrap(ragerrors.KindTimeout, "gemini request timed out", err)
	}
	return ragerrors.Wrap(ragerrors.KindConnection, "gemini unreachable", err)
}
