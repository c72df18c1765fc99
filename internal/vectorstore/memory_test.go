package vectorstore

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/construdata/precobase/internal/domain"
)

// wordEmbedder produces tiny deterministic vectors keyed on a few known
// words, enough to make nearest-neighbor ordering observable.
type wordEmbedder struct{}

func (wordEmbedder) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	text = strings.ToLower(text)
	vec := make([]float32, 4)
	for i, word := range []string{"alvenaria", "chapisco", "concreto", "terraplenagem"} {
		vec[i] = float32(strings.Count(text, word))
	}
	// Bias keeps zero-vectors out of cosine distance.
	vec = append(vec, 0.01)
	return vec, nil
}

func (e wordEmbedder) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := e.GenerateEmbedding(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func chunk(id, document, file string) domain.Chunk {
	return domain.Chunk{ID: id, Document: document, File: file, Sheet: "Planilha1", RowIndex: 1}
}

func TestMemoryQueryRanksByDistance(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(wordEmbedder{})

	require.NoError(t, s.Upsert(ctx, []domain.Chunk{
		chunk("a", "alvenaria de vedacao", "a.xlsx"),
		chunk("b", "chapisco aplicado", "a.xlsx"),
		chunk("c", "terraplenagem mecanizada", "b.xlsx"),
	}))

	matches, err := s.Query(ctx, "alvenaria", 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "a", matches[0].Chunk.ID)
	assert.Less(t, matches[0].Distance, matches[1].Distance)
}

// countingEmbedder wraps wordEmbedder and records batch calls.
type countingEmbedder struct {
	wordEmbedder
	batchCalls int
}

func (e *countingEmbedder) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	e.batchCalls++
	return e.wordEmbedder.GenerateEmbeddings(ctx, texts)
}

func TestMemoryUpsertEmbedsBatchInOneCall(t *testing.T) {
	ctx := context.Background()
	embedder := &countingEmbedder{}
	s := NewMemory(embedder)

	require.NoError(t, s.Upsert(ctx, []domain.Chunk{
		chunk("a", "alvenaria de vedacao", "a.xlsx"),
		chunk("b", "chapisco aplicado", "a.xlsx"),
		chunk("c", "concreto usinado", "a.xlsx"),
	}))

	assert.Equal(t, 1, embedder.batchCalls)
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestMemoryUpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(wordEmbedder{})

	c := chunk("a", "alvenaria de vedacao", "a.xlsx")
	require.NoError(t, s.Upsert(ctx, []domain.Chunk{c}))
	require.NoError(t, s.Upsert(ctx, []domain.Chunk{c}))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMemoryDeleteByFile(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(wordEmbedder{})

	require.NoError(t, s.Upsert(ctx, []domain.Chunk{
		chunk("a", "alvenaria", "a.xlsx"),
		chunk("b", "chapisco", "b.xlsx"),
	}))
	require.NoError(t, s.DeleteByFile(ctx, "a.xlsx"))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	matches, err := s.Query(ctx, "alvenaria", 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "b", matches[0].Chunk.ID)
}

func TestMemoryReset(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(wordEmbedder{})

	require.NoError(t, s.Upsert(ctx, []domain.Chunk{chunk("a", "alvenaria", "a.xlsx")}))
	require.NoError(t, s.Reset(ctx))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	matches, err := s.Query(ctx, "alvenaria", 5)
	require.NoError(t, err)
	assert.Empty(t, matches)
}
