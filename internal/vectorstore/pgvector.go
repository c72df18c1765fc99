package vectorstore

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/construdata/precobase/internal/domain"
)

// Pgvector stores chunk embeddings in the service_chunks table next to the
// relational data, using the pgvector cosine operator for ranking. This is
// the default backend: one database to run, one to back up.
type Pgvector struct {
	pool     *pgxpool.Pool
	embedder Embedder
}

func NewPgvector(pool *pgxpool.Pool, embedder Embedder) *Pgvector {
	return &Pgvector{pool: pool, embedder: embedder}
}

// Upsert embeds the batch in one API call and writes it in one transaction.
// Concurrent files never interleave rows inside each other's batches, and a
// mid-batch failure rolls the whole batch back.
func (s *Pgvector) Upsert(ctx context.Context, chunks []domain.Chunk) error {
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

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeStore, "chunk upsert failed", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for i, c := range chunks {
		batch.Queue(
			`INSERT INTO service_chunks (id, document, file, sheet, row_index, classification, embedding)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (id) DO UPDATE SET
				document = EXCLUDED.document,
				file = EXCLUDED.file,
				sheet = EXCLUDED.sheet,
				row_index = EXCLUDED.row_index,
				classification = EXCLUDED.classification,
				embedding = EXCLUDED.embedding`,
			c.ID, c.Document, c.File, c.Sheet, c.RowIndex, c.Classification,
			pgvector.NewVector(embeddings[i]),
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeStore, "chunk upsert failed", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeStore, "chunk upsert failed", err)
	}
	return nil
}

func (s *Pgvector) Query(ctx context.Context, text string, k int) ([]Match, error) {
	if k <= 0 {
		k = 5
	}
	embedding, err := s.embedder.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeStore, "embedding failed", err)
	}
	vec := pgvector.NewVector(embedding)

	rows, err := s.pool.Query(ctx,
		`SELECT id, document, file, sheet, row_index, classification, embedding <=> $1 AS distance
		 FROM service_chunks
		 ORDER BY embedding <=> $1
		 LIMIT $2`,
		vec, k,
	)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeStore, "semantic query failed", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.Chunk.ID, &m.Chunk.Document, &m.Chunk.File, &m.Chunk.Sheet,
			&m.Chunk.RowIndex, &m.Chunk.Classification, &m.Distance); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (s *Pgvector) DeleteByFile(ctx context.Context, file string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM service_chunks WHERE file = $1`, file)
	return err
}

func (s *Pgvector) Reset(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `TRUNCATE service_chunks`)
	return err
}

func (s *Pgvector) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM service_chunks`).Scan(&n)
	return n, err
}
