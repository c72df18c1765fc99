package service

import (
	"context"

	"github.com/construdata/precobase/internal/domain"
	"github.com/construdata/precobase/internal/vectorstore"
)

// FileCounter is the audit-trail read surface the stats endpoint needs.
type FileCounter interface {
	CountByStatus(ctx context.Context) (map[domain.FileStatus]int64, error)
}

// Stats summarizes the corpus: rows per source, files per lifecycle state,
// and the size of the vector index.
type Stats struct {
	TotalServices    int64                       `json:"total_services"`
	ServicesBySource map[domain.Source]int64     `json:"services_by_source"`
	FilesByStatus    map[domain.FileStatus]int64 `json:"files_by_status"`
	TotalChunks      int64                       `json:"total_chunks"`
}

type StatsService struct {
	services ServiceSearcher
	files    FileCounter
	vectors  vectorstore.Store
}

func NewStatsService(services ServiceSearcher, files FileCounter, vectors vectorstore.Store) *StatsService {
	return &StatsService{services: services, files: files, vectors: vectors}
}

func (s *StatsService) Collect(ctx context.Context) (*Stats, error) {
	total, err := s.services.Count(ctx)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeStore, "counting services failed", err)
	}
	bySource, err := s.services.CountBySource(ctx)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeStore, "counting services by source failed", err)
	}
	byStatus, err := s.files.CountByStatus(ctx)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeStore, "counting files failed", err)
	}
	chunks, err := s.vectors.Count(ctx)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeStore, "counting chunks failed", err)
	}

	return &Stats{
		TotalServices:    total,
		ServicesBySource: bySource,
		FilesByStatus:    byStatus,
		TotalChunks:      chunks,
	}, nil
}
