package handlers

import (
	"context"
	"net/http"

	"github.com/construdata/precobase/internal/api"
	"github.com/construdata/precobase/internal/ingest"
)

type Ingester interface {
	Rescan(ctx context.Context) (*ingest.Summary, error)
	Rebuild(ctx context.Context) (*ingest.Summary, error)
}

type IngestHandler struct {
	ingester Ingester
}

func NewIngestHandler(ingester Ingester) *IngestHandler {
	return &IngestHandler{ingester: ingester}
}

type IngestRunResponse struct {
	Message string          `json:"message"`
	Summary *ingest.Summary `json:"summary"`
}

// Rescan answers POST /admin/rescan: walk the watch directory and ingest
// anything new or changed.
func (h *IngestHandler) Rescan(w http.ResponseWriter, r *http.Request) {
	summary, err := h.ingester.Rescan(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, IngestRunResponse{
		Message: "rescan complete",
		Summary: summary,
	})
}

// Rebuild answers POST /admin/rebuild: wipe both stores and re-ingest the
// watch directory from scratch.
func (h *IngestHandler) Rebuild(w http.ResponseWriter, r *http.Request) {
	summary, err := h.ingester.Rebuild(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, IngestRunResponse{
		Message: "rebuild complete",
		Summary: summary,
	})
}
