package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TxRepositories exposes the repositories bound to one transaction. The
// ingestion pipeline writes a file's service rows and its audit record
// atomically through this.
type TxRepositories interface {
	Services() *ServiceRepository
	Files() *ProcessedFileRepository
}

// TxRunner provides transactional repositories using a pgx pool.
type TxRunner struct {
	pool *pgxpool.Pool
}

func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

func (r *TxRunner) WithTx(ctx context.Context, fn func(repos TxRepositories) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}

	repos := &txRepos{tx: tx}
	if err := fn(repos); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	return tx.Commit(ctx)
}

type txRepos struct {
	tx pgx.Tx
}

func (r *txRepos) Services() *ServiceRepository {
	return NewServiceRepositoryWithTx(r.tx)
}

func (r *txRepos) Files() *ProcessedFileRepository {
	return NewProcessedFileRepositoryWithTx(r.tx)
}
