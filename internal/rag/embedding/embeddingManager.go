package embedding

import "context"

// Embedder turns text into fixed-dimension vectors. The provider, model and
// output dimension form one configuration triple - mixing vectors from
// different triples in a single collection is refused at the index layer.
type Embedder interface {
	GetEmbedding(ctx context.Context, query string) ([]float32, error)
	BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error)
}
