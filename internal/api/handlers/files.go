package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/construdata/precobase/internal/api"
	"github.com/construdata/precobase/internal/domain"
	"github.com/construdata/precobase/internal/pagination"
)

type FileLister interface {
	ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*pagination.PageResult[*domain.ProcessedFile], error)
	GetByPath(ctx context.Context, path string) (*domain.ProcessedFile, error)
}

type FileHandler struct {
	files FileLister
}

func NewFileHandler(files FileLister) *FileHandler {
	return &FileHandler{files: files}
}

type ProcessedFileResponse struct {
	ID             string  `json:"id"`
	FilePath       string  `json:"file_path"`
	FileName       string  `json:"file_name"`
	FileSize       int64   `json:"file_size"`
	FileType       string  `json:"file_type"`
	Status         string  `json:"status"`
	Classification string  `json:"classification,omitempty"`
	Confidence     float64 `json:"confidence"`
	Priced         bool    `json:"priced"`
	ServicesCount  int     `json:"services_count"`
	Reason         string  `json:"reason,omitempty"`
	ProcessedAt    string  `json:"processed_at,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

func processedFileToResponse(f *domain.ProcessedFile) *ProcessedFileResponse {
	resp := &ProcessedFileResponse{
		ID:             f.ID,
		FilePath:       f.FilePath,
		FileName:       f.FileName,
		FileSize:       f.FileSize,
		FileType:       f.FileType,
		Status:         string(f.Status),
		Classification: string(f.Classification),
		Confidence:     f.Confidence,
		Priced:         f.Priced,
		ServicesCount:  f.ServicesCount,
		Reason:         f.Reason,
		CreatedAt:      f.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if !f.ProcessedAt.IsZero() {
		resp.ProcessedAt = f.ProcessedAt.Format("2006-01-02T15:04:05Z")
	}
	return resp
}

type FileListResponse struct {
	Items   []*ProcessedFileResponse `json:"items"`
	Cursor  string                   `json:"cursor,omitempty"`
	HasMore bool                     `json:"has_more"`
}

// List answers GET /files with cursor pagination.
func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	cursor, err := pagination.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid cursor")
		return
	}

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	page, err := h.files.ListWithCursor(r.Context(), cursor, limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*ProcessedFileResponse, len(page.Items))
	for i, f := range page.Items {
		responses[i] = processedFileToResponse(f)
	}

	api.Success(w, http.StatusOK, FileListResponse{
		Items:   responses,
		Cursor:  page.Cursor,
		HasMore: page.HasMore,
	})
}

// Get answers GET /files/status?path=... with the audit record for one file.
func (h *FileHandler) Get(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		api.Error(w, http.StatusBadRequest, "path is required")
		return
	}

	record, err := h.files.GetByPath(r.Context(), path)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, processedFileToResponse(record))
}
