// Package llm provides the language-model collaborator boundary: a minimal
// completion interface consumed by the workflow's classify, grade, rewrite,
// and generate roles, plus a concrete OpenAI-compatible REST client.
package llm

import "context"

// Provider generates a completion for a prompt. Implementations must be
// stateless and reentrant; the workflow issues calls concurrently.
type Provider interface {
	// Complete generates a completion for the given prompt.
	Complete(ctx context.Context, prompt string) (string, error)

	// Name returns the provider's identifier, used in logs and metrics.
	Name() string
}

// Embedder converts text into an embedding vector. How the vector is
// computed is the embedding service's concern; the retrieval adapter only
// consumes the result.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}
