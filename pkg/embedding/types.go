package embedding

import "context"

// Embedder describes a service that maps text to a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
