package service

import (
	"context"
)

// Embedder turns texts into embedding vectors, one per input, in order.
type Embedder interface {
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// ChatCompleter drafts a chat completion.
type ChatCompleter interface {
	ChatCompletion(ctx context.Context, req ChatCompletionRequest) (*ChatCompletionResponse, error)
	IsEnabled() bool
}

// Ensure OpenAIClient implements both
var (
	_ Embedder      = (*OpenAIClient)(nil)
	_ ChatCompleter = (*OpenAIClient)(nil)
)
