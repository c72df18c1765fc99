// Package ingest drives files through the discovered → processing →
// processed/discarded/failed lifecycle: read, classify, extract, then dual
// write to the relational and vector stores.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/construdata/precobase/internal/classify"
	"github.com/construdata/precobase/internal/domain"
	"github.com/construdata/precobase/internal/extract"
	"github.com/construdata/precobase/internal/pagination"
	"github.com/construdata/precobase/internal/spreadsheet"
	"github.com/construdata/precobase/internal/telemetry"
	"github.com/construdata/precobase/internal/vectorstore"
)

const (
	// DefaultBatchSize caps how many chunks go to the vector store per call.
	DefaultBatchSize = 1000
	// DefaultWorkers caps concurrent file processing.
	DefaultWorkers = 4
)

// Options tunes the orchestrator. Empty ProcessedDir/DiscardDir leave files
// in place after processing.
type Options struct {
	WatchDir     string
	ProcessedDir string
	DiscardDir   string
	BatchSize    int
	Workers      int
}

// Summary is the outcome of one batch run. Batch operations always return a
// summary instead of failing on the first bad file.
type Summary struct {
	Processed   int   `json:"processed"`
	Discarded   int   `json:"discarded"`
	Failed      int   `json:"failed"`
	Skipped     int   `json:"skipped"`
	Services    int   `json:"services"`
	TotalChunks int64 `json:"total_chunks"`
}

// FileRepo is the audit-trail surface the orchestrator needs.
type FileRepo interface {
	Upsert(ctx context.Context, f *domain.ProcessedFile) error
	SetStatus(ctx context.Context, id string, status domain.FileStatus, reason string) error
	GetByPath(ctx context.Context, path string) (*domain.ProcessedFile, error)
	SeenUnchanged(ctx context.Context, path string, size int64) (bool, error)
	ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*pagination.PageResult[*domain.ProcessedFile], error)
	ResetAll(ctx context.Context) error
}

// ServiceWriter is the relational write surface the orchestrator needs.
// repository.IngestStore implements it with per-file transactions.
type ServiceWriter interface {
	ReplaceForFile(ctx context.Context, originFile string, services []domain.Service) error
	DeleteAll(ctx context.Context) error
}

type Orchestrator struct {
	opts       Options
	services   ServiceWriter
	files      FileRepo
	vectors    vectorstore.Store
	classifier *classify.Classifier
	extractor  *extract.Extractor

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewOrchestrator(opts Options, services ServiceWriter, files FileRepo, vectors vectorstore.Store) *Orchestrator {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	return &Orchestrator{
		opts:       opts,
		services:   services,
		files:      files,
		vectors:    vectors,
		classifier: classify.New(),
		extractor:  extract.New(),
		inFlight:   make(map[string]struct{}),
	}
}

// ProcessFile runs one file through the whole lifecycle. A file already in
// flight is skipped, so concurrent watcher events for the same path cannot
// double-process it. The returned record reflects the terminal state.
func (o *Orchestrator) ProcessFile(ctx context.Context, path string) (*domain.ProcessedFile, error) {
	if !o.acquire(path) {
		return nil, nil
	}
	defer o.release(path)

	ctx, span := telemetry.StartSpan(ctx, "ingest.process_file", telemetry.SpanAttributes{
		File:      filepath.Base(path),
		Operation: "process_file",
	})
	defer span.End()

	info, err := os.Stat(path)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeFormat, "cannot stat file", err)
	}

	seen, err := o.files.SeenUnchanged(ctx, path, info.Size())
	if err != nil {
		return nil, err
	}
	if seen {
		return nil, nil
	}

	record := &domain.ProcessedFile{
		FilePath: path,
		FileName: filepath.Base(path),
		FileSize: info.Size(),
		FileType: strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."),
		Status:   domain.FileStatusProcessing,
	}
	if err := o.files.Upsert(ctx, record); err != nil {
		return nil, err
	}

	if !spreadsheet.Supported(path) {
		return o.finish(ctx, record, domain.FileStatusDiscarded, "unsupported file type")
	}

	wb, err := spreadsheet.Read(path)
	if err != nil {
		return o.finish(ctx, record, domain.FileStatusFailed, err.Error())
	}

	classifications := o.classifier.ClassifyWorkbook(wb)
	record.Classification = o.classifier.IdentifySystem(wb)
	for _, cl := range classifications {
		if cl.Confidence > record.Confidence {
			record.Confidence = cl.Confidence
		}
		if cl.IsPricedTable {
			record.Priced = true
		}
	}

	result := o.extractor.Workbook(wb, classifications)
	if len(result.Chunks) == 0 {
		return o.finish(ctx, record, domain.FileStatusDiscarded, "no priced rows found")
	}

	// Relational write first, atomically per file. Idempotent: old rows
	// for the same origin are replaced, never duplicated.
	if err := o.services.ReplaceForFile(ctx, path, result.Services); err != nil {
		return o.finish(ctx, record, domain.FileStatusFailed, fmt.Sprintf("relational write failed: %v", err))
	}

	// Vector write second. A partial failure leaves the file failed; the
	// deterministic chunk ids make a re-run converge.
	if err := o.upsertChunks(ctx, result.Chunks); err != nil {
		return o.finish(ctx, record, domain.FileStatusFailed, fmt.Sprintf("vector write failed: %v", err))
	}

	record.ServicesCount = len(result.Services)
	if result.Rejected > 0 {
		record.Reason = fmt.Sprintf("%d rows failed validation", result.Rejected)
	}
	return o.finish(ctx, record, domain.FileStatusProcessed, record.Reason)
}

func (o *Orchestrator) upsertChunks(ctx context.Context, chunks []domain.Chunk) error {
	for start := 0; start < len(chunks); start += o.opts.BatchSize {
		end := start + o.opts.BatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		if err := o.vectors.Upsert(ctx, chunks[start:end]); err != nil {
			return err
		}
	}
	return nil
}

// finish records the terminal state and relocates the file.
func (o *Orchestrator) finish(ctx context.Context, record *domain.ProcessedFile, status domain.FileStatus, reason string) (*domain.ProcessedFile, error) {
	record.Status = status
	record.Reason = reason
	record.ProcessedAt = time.Now().UTC()
	if err := o.files.Upsert(ctx, record); err != nil {
		return nil, err
	}
	o.moveFile(record.FilePath, status)
	return record, nil
}

// moveFile relocates terminal files into the processed or discard area. A
// failed move is logged, never fatal: the audit record already holds the
// outcome.
func (o *Orchestrator) moveFile(path string, status domain.FileStatus) {
	var dest string
	switch status {
	case domain.FileStatusProcessed:
		dest = o.opts.ProcessedDir
	case domain.FileStatusDiscarded, domain.FileStatusFailed:
		dest = o.opts.DiscardDir
	}
	if dest == "" {
		return
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		log.Printf("cannot create %s: %v", dest, err)
		return
	}
	target := filepath.Join(dest, filepath.Base(path))
	if err := os.Rename(path, target); err != nil {
		log.Printf("cannot move %s to %s: %v", path, target, err)
	}
}

// Rescan walks the watch directory and processes every supported file with a
// bounded worker pool. One bad file never aborts the run; its failure lands
// in the summary.
func (o *Orchestrator) Rescan(ctx context.Context) (*Summary, error) {
	paths, err := Discover(o.opts.WatchDir)
	if err != nil {
		return nil, err
	}
	return o.processAll(ctx, paths)
}

// Rebuild clears both stores and re-ingests the whole corpus from scratch.
// Cancellation between files leaves each already-written file consistent.
func (o *Orchestrator) Rebuild(ctx context.Context) (*Summary, error) {
	if err := o.vectors.Reset(ctx); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeStore, "vector store reset failed", err)
	}
	if err := o.services.DeleteAll(ctx); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeStore, "services wipe failed", err)
	}
	if err := o.files.ResetAll(ctx); err != nil {
		return nil, err
	}
	return o.Rescan(ctx)
}

func (o *Orchestrator) processAll(ctx context.Context, paths []string) (*Summary, error) {
	var (
		mu      sync.Mutex
		summary Summary
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.Workers)
	for _, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			record, err := o.ProcessFile(ctx, path)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				log.Printf("ingest %s: %v", path, err)
				summary.Failed++
			case record == nil:
				summary.Skipped++
			case record.Status == domain.FileStatusProcessed:
				summary.Processed++
				summary.Services += record.ServicesCount
			case record.Status == domain.FileStatusFailed:
				summary.Failed++
			default:
				summary.Discarded++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return nil, err
	}

	if n, err := o.vectors.Count(ctx); err != nil {
		log.Printf("vector count: %v", err)
	} else {
		summary.TotalChunks = n
	}
	return &summary, nil
}

func (o *Orchestrator) acquire(path string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, busy := o.inFlight[path]; busy {
		return false
	}
	o.inFlight[path] = struct{}{}
	return true
}

func (o *Orchestrator) release(path string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inFlight, path)
}
