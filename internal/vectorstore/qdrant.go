package vectorstore

import (
	"context"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/construdata/precobase/internal/domain"
)

// Qdrant is the external-index backend for deployments that keep embeddings
// out of the primary database. Collections use cosine distance; point ids
// derive from the deterministic chunk ids so upserts stay idempotent.
type Qdrant struct {
	client     *qdrant.Client
	collection string
	dimensions uint64
	embedder   Embedder
}

type QdrantConfig struct {
	Host       string
	Port       int
	UseTLS     bool
	Collection string
	Dimensions int
}

func NewQdrant(cfg QdrantConfig, embedder Embedder) (*Qdrant, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeStore, "qdrant client init failed", err)
	}
	return &Qdrant{
		client:     client,
		collection: cfg.Collection,
		dimensions: uint64(cfg.Dimensions),
		embedder:   embedder,
	}, nil
}

// EnsureCollection creates the collection when it does not exist yet.
func (s *Qdrant) EnsureCollection(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.dimensions,
			Distance: qdrant.Distance_Cosine,
		}),
	})
}

func (s *Qdrant) Upsert(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	documents := make([]string, len(chunks))
	for i, c := range chunks {
		documents[i] = c.Document
	}
	embeddings, err := s.embedder.GenerateEmbeddings(ctx, documents)
	if err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeStore, "embedding failed", err)
	}

	points := make([]*qdrant.PointStruct, 0, len(chunks))
	for i, c := range chunks {
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(pointID(c.ID)),
			Vectors: qdrant.NewVectors(embeddings[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"chunk_id":       c.ID,
				"document":       c.Document,
				"file":           c.File,
				"sheet":          c.Sheet,
				"row_index":      int64(c.RowIndex),
				"classification": string(c.Classification),
			}),
		})
	}
	_, err = s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeStore, "qdrant upsert failed", err)
	}
	return nil
}

func (s *Qdrant) Query(ctx context.Context, text string, k int) ([]Match, error) {
	if k <= 0 {
		k = 5
	}
	embedding, err := s.embedder.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeStore, "embedding failed", err)
	}

	hits, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(embedding...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeStore, "qdrant query failed", err)
	}

	matches := make([]Match, 0, len(hits))
	for _, hit := range hits {
		c := domain.Chunk{
			ID:             hit.Payload["chunk_id"].GetStringValue(),
			Document:       hit.Payload["document"].GetStringValue(),
			File:           hit.Payload["file"].GetStringValue(),
			Sheet:          hit.Payload["sheet"].GetStringValue(),
			RowIndex:       int(hit.Payload["row_index"].GetIntegerValue()),
			Classification: domain.Source(hit.Payload["classification"].GetStringValue()),
		}
		// Qdrant reports cosine similarity; the caller-facing contract is
		// a distance.
		matches = append(matches, Match{Chunk: c, Distance: 1 - float64(hit.GetScore())})
	}
	return matches, nil
}

func (s *Qdrant) DeleteByFile(ctx context.Context, file string) error {
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("file", file),
			},
		}),
		Wait: qdrant.PtrOf(true),
	})
	return err
}

func (s *Qdrant) Reset(ctx context.Context) error {
	if err := s.client.DeleteCollection(ctx, s.collection); err != nil {
		return err
	}
	return s.EnsureCollection(ctx)
}

func (s *Qdrant) Count(ctx context.Context) (int64, error) {
	n, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.collection,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, err
	}
	return int64(n), nil
}

// pointID renders the 32-hex chunk id in the UUID form qdrant requires.
func pointID(chunkID string) string {
	if id, err := uuid.Parse(chunkID); err == nil {
		return id.String()
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(chunkID)).String()
}
