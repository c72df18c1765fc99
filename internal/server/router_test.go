package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/construdata/precobase/internal/api/handlers"
	"github.com/construdata/precobase/internal/domain"
	"github.com/construdata/precobase/internal/ingest"
	"github.com/construdata/precobase/internal/pagination"
	"github.com/construdata/precobase/internal/service"
)

type MockQueryService struct {
	mock.Mock
}

func (m *MockQueryService) StructuredSearch(ctx context.Context, input service.StructuredSearchInput) ([]*domain.Service, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Service), args.Error(1)
}

func (m *MockQueryService) SemanticSearch(ctx context.Context, query string, k int) ([]*service.SemanticResult, error) {
	args := m.Called(ctx, query, k)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*service.SemanticResult), args.Error(1)
}

type MockFileLister struct {
	mock.Mock
}

func (m *MockFileLister) ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*pagination.PageResult[*domain.ProcessedFile], error) {
	args := m.Called(ctx, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pagination.PageResult[*domain.ProcessedFile]), args.Error(1)
}

func (m *MockFileLister) GetByPath(ctx context.Context, path string) (*domain.ProcessedFile, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProcessedFile), args.Error(1)
}

type MockStatsCollector struct {
	mock.Mock
}

func (m *MockStatsCollector) Collect(ctx context.Context) (*service.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Stats), args.Error(1)
}

type MockIngester struct {
	mock.Mock
}

func (m *MockIngester) Rescan(ctx context.Context) (*ingest.Summary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ingest.Summary), args.Error(1)
}

func (m *MockIngester) Rebuild(ctx context.Context) (*ingest.Summary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ingest.Summary), args.Error(1)
}

func setupRouter() (http.Handler, *MockQueryService, *MockFileLister, *MockStatsCollector, *MockIngester) {
	querySvc := new(MockQueryService)
	fileLister := new(MockFileLister)
	statsCollector := new(MockStatsCollector)
	ingester := new(MockIngester)

	cfg := RouterConfig{
		SearchHandler: handlers.NewSearchHandler(querySvc),
		FileHandler:   handlers.NewFileHandler(fileLister),
		StatsHandler:  handlers.NewStatsHandler(statsCollector),
		IngestHandler: handlers.NewIngestHandler(ingester),
	}

	router := NewRouter(cfg)
	return router, querySvc, fileLister, statsCollector, ingester
}

func TestRouter_HealthEndpoint(t *testing.T) {
	router, _, _, _, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "ok", data["status"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_StructuredSearchRoute(t *testing.T) {
	router, querySvc, _, _, _ := setupRouter()

	querySvc.On("StructuredSearch", mock.Anything, mock.Anything).
		Return([]*domain.Service{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/services?q=alvenaria", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	querySvc.AssertExpectations(t)
}

func TestRouter_SemanticSearchRoute(t *testing.T) {
	router, querySvc, _, _, _ := setupRouter()

	querySvc.On("SemanticSearch", mock.Anything, "concreto usinado", 5).
		Return([]*service.SemanticResult{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{"query":"concreto usinado"}`))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	querySvc.AssertExpectations(t)
}

func TestRouter_FilesRoute(t *testing.T) {
	router, _, fileLister, _, _ := setupRouter()

	fileLister.On("ListWithCursor", mock.Anything, (*pagination.Cursor)(nil), 20).
		Return(&pagination.PageResult[*domain.ProcessedFile]{Items: []*domain.ProcessedFile{}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/files", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	fileLister.AssertExpectations(t)
}

func TestRouter_StatsRoute(t *testing.T) {
	router, _, _, statsCollector, _ := setupRouter()

	statsCollector.On("Collect", mock.Anything).
		Return(&service.Stats{TotalServices: 10}, nil)

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	statsCollector.AssertExpectations(t)
}

func TestRouter_AdminRoutes(t *testing.T) {
	router, _, _, _, ingester := setupRouter()

	ingester.On("Rescan", mock.Anything).Return(&ingest.Summary{}, nil)
	ingester.On("Rebuild", mock.Anything).Return(&ingest.Summary{}, nil)

	for _, path := range []string{"/admin/rescan", "/admin/rebuild"} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, path)
	}
	ingester.AssertExpectations(t)
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	router, _, _, _, _ := setupRouter()

	req := httptest.NewRequest(http.MethodDelete, "/services", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
