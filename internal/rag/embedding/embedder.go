package embedding

import "context"

// Embedder turns text into fixed-dimension vectors. BatchEmbedding is
// order-preserving and length-preserving regardless of how the gateway
// batches the texts internally; concurrent selects the bounded-parallel
// execution mode over the sequential paced one.
type Embedder interface {
	GetEmbedding(ctx context.Context, query string) ([]float32, error)
	BatchEmbedding(ctx context.Context, texts []string, concurrent bool) ([][]float32, error)
}

// Backend is a single raw embedding request against the remote service.
// Implementations classify their failures with ragerrors kinds so the
// gateway can decide what is retryable.
type Backend interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
