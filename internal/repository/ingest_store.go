package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/construdata/precobase/internal/domain"
)

// IngestStore bundles the per-file relational writes into one transaction:
// old rows for the origin file go out, the fresh batch goes in. Re-ingesting
// an unchanged file therefore never accumulates duplicates.
type IngestStore struct {
	runner *TxRunner
}

func NewIngestStore(pool *pgxpool.Pool) *IngestStore {
	return &IngestStore{runner: NewTxRunner(pool)}
}

func (s *IngestStore) ReplaceForFile(ctx context.Context, originFile string, services []domain.Service) error {
	return s.runner.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.Services().DeleteByOriginFile(ctx, originFile); err != nil {
			return err
		}
		return repos.Services().InsertBatch(ctx, services)
	})
}

// DeleteAll wipes the services table for a full rebuild.
func (s *IngestStore) DeleteAll(ctx context.Context) error {
	return s.runner.WithTx(ctx, func(repos TxRepositories) error {
		return repos.Services().DeleteAll(ctx)
	})
}
