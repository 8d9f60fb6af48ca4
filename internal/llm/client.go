package llm

import (
	"context"
)

// Client is the transport contract for the generation oracle. Every provider
// is a blocking prompt-in / text-out call; structured parsing happens upstream.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
