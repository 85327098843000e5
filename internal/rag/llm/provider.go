package llm

import "context"

// Provider generates answers from one upstream model API.
type Provider interface {
	Generate(ctx context.Context, systemInstruction string, prompt string) (string, error)

	// Ping Cheap reachability probe for health checks
	Ping(ctx context.Context) error
	Name() string
}
