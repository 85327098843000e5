package embedding

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/akolanti/docmind/internal/config"
	"github.com/akolanti/docmind/internal/domain/ragerrors"
	"github.com/akolanti/docmind/pkg/logger_i"
	"golang.org/x/sync/errgroup"
)

// Gateway implements Embedder on top of a raw Backend: it batches inputs
// under token and item caps, retries transient failures with exponential
// backoff, and reassembles vectors in input order.
type Gateway struct {
	backend       Backend
	tok           *Tokenizer
	limits        batchLimits
	baseDelay     time.Duration
	jitterMin     float64
	jitterMax     float64
	maxAttempts   int
	backoffBase   time.Duration
	backoffCap    time.Duration
	maxConcurrent int
	logger        *logger_i.Logger
}

func NewGateway(backend Backend) *Gateway {
	return &Gateway{
		backend: backend,
		tok:     NewTokenizer(config.EmbeddingModel),
		limits: batchLimits{
			maxTokensPerBatch: config.EmbeddingMaxTokensPerBatch,
			maxBatchSize:      config.EmbeddingMaxBatchSize,
			maxTextTokens:     config.EmbeddingMaxTextTokens,
		},
		baseDelay:     config.EmbeddingBatchBaseDelay,
		jitterMin:     config.EmbeddingBatchJitterMin,
		jitterMax:     config.EmbeddingBatchJitterMax,
		maxAttempts:   config.EmbeddingMaxAttempts,
		backoffBase:   config.EmbeddingBackoffBase,
		backoffCap:    config.EmbeddingBackoffCap,
		maxConcurrent: config.MaxConcurrentBatches,
		logger:        logger_i.NewLogger("EmbeddingGateway"),
	}
}

func (g *Gateway) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	vectors, err := g.BatchEmbedding(ctx, []string{query}, false)
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (g *Gateway) BatchEmbedding(ctx context.Context, texts []string, concurrent bool) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	batches := buildBatches(texts, g.tok, g.limits)
	g.logger.Debug("Built smart batches", "texts", len(texts), "batches", len(batches))

	var vectors [][]float32
	var err error
	if concurrent && g.maxConcurrent > 1 {
		vectors, err = g.embedConcurrent(ctx, batches)
	} else {
		vectors, err = g.embedSequential(ctx, batches)
	}
	if err != nil {
		if ragerrors.KindOf(err) == ragerrors.KindEmbedding {
			return nil, err
		}
		return nil, ragerrors.Wrap(ragerrors.KindEmbedding, "embedding generation failed", err)
	}
	return vectors, nil
}

// embedSequential processes one batch at a time, pacing the backend with
// an adaptive delay scaled by the batch's token volume plus jitter.
func (g *Gateway) embedSequential(ctx context.Context, batches []textBatch) ([][]float32, error) {
	var all [][]float32
	for i, batch := range batches {
		g.logger.Debug("Processing batch", "batch", i+1, "of", len(batches), "texts", len(batch.items), "tokens", batch.tokens)

		vectors, err := g.embedBatch(ctx, batch)
		if err != nil {
			return nil, err
		}
		all = append(all, vectors...)

		if i+1 < len(batches) {
			delay := g.interBatchDelay(batch.tokens)
			g.logger.Debug("Waiting before next batch", "delay", delay)
			select {
			case <-ctx.Done():
				return nil, ragerrors.Wrap(ragerrors.KindEmbedding, "cancelled between batches", ctx.Err())
			case <-time.After(delay):
			}
		}
	}
	return all, nil
}

// embedConcurrent runs up to maxConcurrent batches in parallel. Results
// land in per-batch slots so the flattened output keeps input order; any
// single batch failure fails the whole call, because partial embeddings
// are not meaningful to the caller.
func (g *Gateway) embedConcurrent(ctx context.Context, batches []textBatch) ([][]float32, error) {
	results := make([][][]float32, len(batches))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(g.maxConcurrent)
	for i, batch := range batches {
		group.Go(func() error {
			vectors, err := g.embedBatch(groupCtx, batch)
			if err != nil {
				return err
			}
			results[i] = vectors
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	var all [][]float32
	for _, vectors := range results {
		all = append(all, vectors...)
	}
	return all, nil
}

func (g *Gateway) embedBatch(ctx context.Context, batch textBatch) ([][]float32, error) {
	texts := batch.texts()
	var vectors [][]float32

	err := doWithRetry(ctx, g.maxAttempts, g.backoffBase, g.backoffCap, func() error {
		reqCtx, cancel := context.WithTimeout(ctx, config.EmbeddingRequestTimeout)
		defer cancel()

		result, err := g.backend.Embed(reqCtx, texts)
		if err != nil {
			g.logger.Warn("Embedding request failed", "kind", ragerrors.KindOf(err), "error", err)
			return err
		}
		if len(result) != len(texts) {
			return ragerrors.New(ragerrors.KindEmbedding, "backend returned wrong vector count")
		}
		vectors = result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vectors, nil
}

func (g *Gateway) interBatchDelay(batchTokens int) time.Duration {
	tokenFactor := float64(batchTokens) / 1000
	jitter := g.jitterMin + rand.Float64()*(g.jitterMax-g.jitterMin)
	return time.Duration(float64(g.baseDelay) * (1 + tokenFactor) * jitter)
}
