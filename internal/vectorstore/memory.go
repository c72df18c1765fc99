package vectorstore

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/construdata/precobase/internal/domain"
)

// Memory is an in-process store used in tests and for small local corpora.
// It keeps vectors in a map and scans linearly with cosine distance.
type Memory struct {
	embedder Embedder

	mu     sync.RWMutex
	points map[string]memoryPoint
}

type memoryPoint struct {
	chunk  domain.Chunk
	vector []float32
}

func NewMemory(embedder Embedder) *Memory {
	return &Memory{
		embedder: embedder,
		points:   make(map[string]memoryPoint),
	}
}

func (s *Memory) Upsert(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	documents := make([]string, len(chunks))
	for i, c := range chunks {
		documents[i] = c.Document
	}
	vecs, err := s.embedder.GenerateEmbeddings(ctx, documents)
	if err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeStore, "embedding failed", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range chunks {
		s.points[c.ID] = memoryPoint{chunk: c, vector: vecs[i]}
	}
	return nil
}

func (s *Memory) Query(ctx context.Context, text string, k int) ([]Match, error) {
	if k <= 0 {
		k = 5
	}
	vec, err := s.embedder.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeStore, "embedding failed", err)
	}

	s.mu.RLock()
	matches := make([]Match, 0, len(s.points))
	for _, p := range s.points {
		matches = append(matches, Match{Chunk: p.chunk, Distance: cosineDistance(vec, p.vector)})
	}
	s.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].Chunk.ID < matches[j].Chunk.ID
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

func (s *Memory) DeleteByFile(ctx context.Context, file string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.points {
		if p.chunk.File == file {
			delete(s.points, id)
		}
	}
	return nil
}

func (s *Memory) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points = make(map[string]memoryPoint)
	return nil
}

func (s *Memory) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.points)), nil
}

func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 1
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}
