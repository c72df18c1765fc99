package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/construdata/precobase/internal/domain"
	"github.com/construdata/precobase/internal/pagination"
)

// ProcessedFileRepository persists the per-file audit trail.
type ProcessedFileRepository struct {
	db dbtx
}

func NewProcessedFileRepository(pool *pgxpool.Pool) *ProcessedFileRepository {
	return &ProcessedFileRepository{db: pool}
}

func NewProcessedFileRepositoryWithTx(tx pgx.Tx) *ProcessedFileRepository {
	return &ProcessedFileRepository{db: tx}
}

const processedFileColumns = `id, file_path, file_name, file_size, file_type, status, classification, confidence, priced, services_count, reason, processed_at, created_at`

// Upsert inserts the record or, when the path was seen before, refreshes the
// mutable fields. file_path is the natural key; the audit row survives
// re-ingestion.
func (r *ProcessedFileRepository) Upsert(ctx context.Context, f *domain.ProcessedFile) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO processed_files (`+processedFileColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 ON CONFLICT (file_path) DO UPDATE SET
			file_name = EXCLUDED.file_name,
			file_size = EXCLUDED.file_size,
			file_type = EXCLUDED.file_type,
			status = EXCLUDED.status,
			classification = EXCLUDED.classification,
			confidence = EXCLUDED.confidence,
			priced = EXCLUDED.priced,
			services_count = EXCLUDED.services_count,
			reason = EXCLUDED.reason,
			processed_at = EXCLUDED.processed_at`,
		f.ID, f.FilePath, f.FileName, f.FileSize, f.FileType, f.Status,
		f.Classification, f.Confidence, f.Priced, f.ServicesCount,
		nullableString(f.Reason), nullableTime(f.ProcessedAt), f.CreatedAt,
	)
	return err
}

// SetStatus advances the lifecycle state of one record.
func (r *ProcessedFileRepository) SetStatus(ctx context.Context, id string, status domain.FileStatus, reason string) error {
	if !domain.ValidFileStatus(status) {
		return domain.ErrInvalidFileStatus
	}
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE processed_files SET status = $1, reason = $2, processed_at = $3 WHERE id = $4`,
		status, nullableString(reason), time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrFileRecordNotFound
	}
	return nil
}

// GetByPath fetches the record for one file path.
func (r *ProcessedFileRepository) GetByPath(ctx context.Context, path string) (*domain.ProcessedFile, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+processedFileColumns+` FROM processed_files WHERE file_path = $1`,
		path,
	)
	f, err := scanProcessedFile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFileRecordNotFound
		}
		return nil, err
	}
	return f, nil
}

// SeenUnchanged reports whether path already terminated with the same size,
// which suppresses duplicate processing of unchanged files.
func (r *ProcessedFileRepository) SeenUnchanged(ctx context.Context, path string, size int64) (bool, error) {
	var n int64
	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM processed_files
		 WHERE file_path = $1 AND file_size = $2 AND status IN ($3, $4)`,
		path, size, domain.FileStatusProcessed, domain.FileStatusDiscarded,
	).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListWithCursor pages the audit trail newest first.
func (r *ProcessedFileRepository) ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*pagination.PageResult[*domain.ProcessedFile], error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT `+processedFileColumns+` FROM processed_files
			 WHERE (created_at, id) < ($1, $2)
			 ORDER BY created_at DESC, id DESC
			 LIMIT $3`,
			cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT `+processedFileColumns+` FROM processed_files
			 ORDER BY created_at DESC, id DESC
			 LIMIT $1`,
			limit+1,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanProcessedFileRows(rows)
	if err != nil {
		return nil, err
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	var nextCursor string
	if hasMore && len(items) > 0 {
		last := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(last.ID, last.CreatedAt)
	}

	return &pagination.PageResult[*domain.ProcessedFile]{
		Items:   items,
		Cursor:  nextCursor,
		HasMore: hasMore,
	}, nil
}

// CountByStatus returns the number of audit records per lifecycle state.
func (r *ProcessedFileRepository) CountByStatus(ctx context.Context) (map[domain.FileStatus]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT status, count(*) FROM processed_files GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.FileStatus]int64)
	for rows.Next() {
		var status domain.FileStatus
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// ResetAll returns every record to pending. A full rebuild starts here so the
// rescan loop picks all files up again.
func (r *ProcessedFileRepository) ResetAll(ctx context.Context) error {
	_, err := r.db.Exec(ctx,
		`UPDATE processed_files SET status = $1, services_count = 0, reason = NULL, processed_at = NULL`,
		domain.FileStatusPending,
	)
	return err
}

func scanProcessedFile(row pgx.Row) (*domain.ProcessedFile, error) {
	var f domain.ProcessedFile
	var reason *string
	var processedAt *time.Time
	err := row.Scan(&f.ID, &f.FilePath, &f.FileName, &f.FileSize, &f.FileType,
		&f.Status, &f.Classification, &f.Confidence, &f.Priced, &f.ServicesCount,
		&reason, &processedAt, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	if reason != nil {
		f.Reason = *reason
	}
	if processedAt != nil {
		f.ProcessedAt = *processedAt
	}
	return &f, nil
}

func scanProcessedFileRows(rows pgx.Rows) ([]*domain.ProcessedFile, error) {
	var results []*domain.ProcessedFile
	for rows.Next() {
		f, err := scanProcessedFile(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, f)
	}
	return results, rows.Err()
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
