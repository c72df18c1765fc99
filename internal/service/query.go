// Package service holds the query layer: structured search against the
// relational store and semantic search against the vector store.
package service

import (
	"context"
	"strings"

	"github.com/construdata/precobase/internal/domain"
	"github.com/construdata/precobase/internal/vectorstore"
)

// ReferenceCUBFactor is the baseline cost-index factor structured results
// are quoted against.
const ReferenceCUBFactor = 1.0

// ServiceSearcher is the relational read surface the query engine needs.
// repository.ServiceRepository implements it.
type ServiceSearcher interface {
	Search(ctx context.Context, q domain.ServiceQuery) ([]*domain.Service, error)
	Count(ctx context.Context) (int64, error)
	CountBySource(ctx context.Context) (map[domain.Source]int64, error)
}

// StructuredSearchInput carries the structured query mode's parameters.
// Terms apply with AND semantics; callers expand OR variants themselves
// before calling.
type StructuredSearchInput struct {
	Terms        []string
	Source       domain.Source
	Code         string
	Limit        int
	TargetFactor float64
}

// SemanticResult is one ranked semantic match. Relevance is 1 - distance, so
// 1.0 means an identical embedding; it is not clamped at zero.
type SemanticResult struct {
	ID             string        `json:"id"`
	Text           string        `json:"text"`
	File           string        `json:"file"`
	Sheet          string        `json:"sheet"`
	RowIndex       int           `json:"row_index"`
	Classification domain.Source `json:"classification"`
	Relevance      float64       `json:"relevance"`
}

// QueryService answers both query modes. An empty result set is a valid
// outcome for either; store errors surface to the caller.
type QueryService struct {
	services ServiceSearcher
	vectors  vectorstore.Store
}

func NewQueryService(services ServiceSearcher, vectors vectorstore.Store) *QueryService {
	return &QueryService{services: services, vectors: vectors}
}

// StructuredSearch runs an AND-term query with optional source and code
// filters. Results come back ordered by (source, service_code); when a
// target factor is supplied every price goes through the CUB conversion.
func (s *QueryService) StructuredSearch(ctx context.Context, input StructuredSearchInput) ([]*domain.Service, error) {
	terms := make([]string, 0, len(input.Terms))
	for _, t := range input.Terms {
		if t = strings.TrimSpace(t); t != "" {
			terms = append(terms, t)
		}
	}

	results, err := s.services.Search(ctx, domain.ServiceQuery{
		Terms:  terms,
		Source: input.Source,
		Code:   input.Code,
		Limit:  input.Limit,
	})
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeStore, "structured search failed", err)
	}

	if input.TargetFactor > 0 {
		for _, r := range results {
			r.Value = ConvertCUB(r.Value, input.TargetFactor)
		}
	}
	return results, nil
}

// SemanticSearch delegates to the vector store and converts distances to
// relevance scores.
func (s *QueryService) SemanticSearch(ctx context.Context, query string, k int) ([]*SemanticResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*SemanticResult{}, nil
	}

	matches, err := s.vectors.Query(ctx, query, k)
	if err != nil {
		return nil, err
	}

	results := make([]*SemanticResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, &SemanticResult{
			ID:             m.Chunk.ID,
			Text:           m.Chunk.Document,
			File:           m.Chunk.File,
			Sheet:          m.Chunk.Sheet,
			RowIndex:       m.Chunk.RowIndex,
			Classification: m.Chunk.Classification,
			Relevance:      1 - m.Distance,
		})
	}
	return results, nil
}

// ConvertCUB rescales a price to a target cost-index factor. The reference
// table that would make target/reference a real ratio is not wired in yet,
// so for now the conversion is an identity passthrough. Callers can already
// pass a factor; behavior changes only when the table lands.
func ConvertCUB(value, targetFactor float64) float64 {
	return value
}
