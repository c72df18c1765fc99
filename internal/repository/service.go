package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/construdata/precobase/internal/domain"
)

// ServiceRepository persists canonical service rows.
type ServiceRepository struct {
	db dbtx
}

func NewServiceRepository(pool *pgxpool.Pool) *ServiceRepository {
	return &ServiceRepository{db: pool}
}

func NewServiceRepositoryWithTx(tx pgx.Tx) *ServiceRepository {
	return &ServiceRepository{db: tx}
}

// InsertBatch writes a batch of service rows. Callers batch per file so one
// file's rows are never interleaved with another's.
func (r *ServiceRepository) InsertBatch(ctx context.Context, services []domain.Service) error {
	for _, s := range services {
		createdAt := s.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		_, err := r.db.Exec(ctx,
			`INSERT INTO services (source, origin_file, service_code, base_date, description, unit, is_loaded, value, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			s.Source, s.OriginFile, s.ServiceCode, s.BaseDate, s.Description, nullableString(s.Unit), s.IsLoaded, s.Value, createdAt,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// DeleteByOriginFile drops every row extracted from one file. Re-ingestion
// deletes then re-inserts so an unchanged file never accumulates duplicates.
func (r *ServiceRepository) DeleteByOriginFile(ctx context.Context, originFile string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM services WHERE origin_file = $1`, originFile)
	return err
}

// DeleteAll wipes the services table. Only the full rebuild uses this.
func (r *ServiceRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `DELETE FROM services`)
	return err
}

// Search runs a structured query. Every term must match the description or
// the code, case-insensitively; source filters exactly; the code filter is a
// substring match after stripping the punctuation of printed codes. Results
// order by (source, service_code) so output is stable across runs.
func (r *ServiceRepository) Search(ctx context.Context, q domain.ServiceQuery) ([]*domain.Service, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	for _, term := range q.Terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		p := arg("%" + term + "%")
		conds = append(conds, fmt.Sprintf("(description ILIKE %s OR service_code ILIKE %s)", p, p))
	}
	if q.Source != "" {
		conds = append(conds, "source = "+arg(string(q.Source)))
	}
	if q.Code != "" {
		p := arg("%" + domain.NormalizeCode(q.Code) + "%")
		conds = append(conds, "replace(replace(service_code, '.', ''), '-', '') ILIKE "+p)
	}

	query := `SELECT id, source, origin_file, service_code, base_date, description, unit, is_loaded, value, created_at
		 FROM services`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY source, service_code"

	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	query += " LIMIT " + arg(limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanServiceRows(rows)
}

// GetByID fetches one service row.
func (r *ServiceRepository) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, source, origin_file, service_code, base_date, description, unit, is_loaded, value, created_at
		 FROM services WHERE id = $1`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanServiceRows(rows)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.ErrServiceNotFound
	}
	return items[0], nil
}

// CountBySource returns the number of service rows per source label.
func (r *ServiceRepository) CountBySource(ctx context.Context) (map[domain.Source]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT source, count(*) FROM services GROUP BY source`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.Source]int64)
	for rows.Next() {
		var source domain.Source
		var n int64
		if err := rows.Scan(&source, &n); err != nil {
			return nil, err
		}
		counts[source] = n
	}
	return counts, rows.Err()
}

// Count returns the total number of service rows.
func (r *ServiceRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM services`).Scan(&n)
	return n, err
}

func scanServiceRows(rows pgx.Rows) ([]*domain.Service, error) {
	var results []*domain.Service
	for rows.Next() {
		var s domain.Service
		var unit *string
		if err := rows.Scan(&s.ID, &s.Source, &s.OriginFile, &s.ServiceCode, &s.BaseDate, &s.Description, &unit, &s.IsLoaded, &s.Value, &s.CreatedAt); err != nil {
			return nil, err
		}
		if unit != nil {
			s.Unit = *unit
		}
		results = append(results, &s)
	}
	return results, rows.Err()
}
