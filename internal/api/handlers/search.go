package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/construdata/precobase/internal/api"
	"github.com/construdata/precobase/internal/domain"
	"github.com/construdata/precobase/internal/service"
)

type QueryService interface {
	StructuredSearch(ctx context.Context, input service.StructuredSearchInput) ([]*domain.Service, error)
	SemanticSearch(ctx context.Context, query string, k int) ([]*service.SemanticResult, error)
}

type SearchHandler struct {
	svc QueryService
}

func NewSearchHandler(svc QueryService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

type ServiceResponse struct {
	ID          int64   `json:"id"`
	Source      string  `json:"source"`
	OriginFile  string  `json:"origin_file"`
	ServiceCode string  `json:"service_code"`
	BaseDate    string  `json:"base_date"`
	Description string  `json:"description"`
	Unit        string  `json:"unit,omitempty"`
	IsLoaded    bool    `json:"is_loaded"`
	Value       float64 `json:"value"`
}

func serviceToResponse(s *domain.Service) *ServiceResponse {
	return &ServiceResponse{
		ID:          s.ID,
		Source:      string(s.Source),
		OriginFile:  s.OriginFile,
		ServiceCode: s.ServiceCode,
		BaseDate:    s.BaseDate.Format("2006-01-02"),
		Description: s.Description,
		Unit:        s.Unit,
		IsLoaded:    s.IsLoaded,
		Value:       s.Value,
	}
}

type ServiceListResponse struct {
	Items []*ServiceResponse `json:"items"`
	Total int                `json:"total"`
}

// Structured answers GET /services. Terms come from the q parameter split on
// whitespace and combine with AND semantics.
func (h *SearchHandler) Structured(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	terms := strings.Fields(q.Get("q"))
	source := domain.Source(strings.ToLower(strings.TrimSpace(q.Get("source"))))
	code := strings.TrimSpace(q.Get("code"))

	if len(terms) == 0 && source == "" && code == "" {
		api.Error(w, http.StatusBadRequest, "at least one of q, source or code is required")
		return
	}
	if source != "" && !domain.ValidSource(source) {
		api.Error(w, http.StatusBadRequest, "unknown source")
		return
	}

	limit := 0
	if limitStr := q.Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			api.Error(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	var targetFactor float64
	if factorStr := q.Get("cub_factor"); factorStr != "" {
		parsed, err := strconv.ParseFloat(factorStr, 64)
		if err != nil || parsed <= 0 {
			api.Error(w, http.StatusBadRequest, "cub_factor must be a positive number")
			return
		}
		targetFactor = parsed
	}

	results, err := h.svc.StructuredSearch(r.Context(), service.StructuredSearchInput{
		Terms:        terms,
		Source:       source,
		Code:         code,
		Limit:        limit,
		TargetFactor: targetFactor,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*ServiceResponse, len(results))
	for i, s := range results {
		responses[i] = serviceToResponse(s)
	}

	api.Success(w, http.StatusOK, ServiceListResponse{
		Items: responses,
		Total: len(responses),
	})
}

type SemanticSearchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type SemanticSearchResponse struct {
	Results []*service.SemanticResult `json:"results"`
}

const defaultTopK = 5

// Semantic answers POST /search.
func (h *SearchHandler) Semantic(w http.ResponseWriter, r *http.Request) {
	var req SemanticSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		api.Error(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.TopK <= 0 {
		req.TopK = defaultTopK
	}

	results, err := h.svc.SemanticSearch(r.Context(), req.Query, req.TopK)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, SemanticSearchResponse{Results: results})
}
