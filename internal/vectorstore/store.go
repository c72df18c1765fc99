// Package vectorstore abstracts the nearest-neighbor index that serves
// semantic search. Backends embed chunk text themselves, so callers hand over
// plain chunks and queries.
package vectorstore

import (
	"context"

	"github.com/construdata/precobase/internal/domain"
)

// Match is one ranked result of a semantic query. Distance is the backend's
// cosine distance; callers derive relevance as 1 - distance.
type Match struct {
	Chunk    domain.Chunk
	Distance float64
}

// Store persists chunk embeddings and answers nearest-neighbor queries.
// Upsert is keyed by chunk id, so re-ingesting an unchanged file replaces
// rather than duplicates.
type Store interface {
	Upsert(ctx context.Context, chunks []domain.Chunk) error
	Query(ctx context.Context, text string, k int) ([]Match, error)
	DeleteByFile(ctx context.Context, file string) error
	Reset(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
}

// Embedder turns text into vectors. The OpenAI client satisfies this.
// Backends embed whole chunk batches through GenerateEmbeddings so one
// ingestion batch costs one API call, and single queries through
// GenerateEmbedding.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}
