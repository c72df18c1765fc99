package handlers

import (
	"context"
	"net/http"

	"github.com/construdata/precobase/internal/api"
	"github.com/construdata/precobase/internal/service"
)

type StatsCollector interface {
	Collect(ctx context.Context) (*service.Stats, error)
}

type StatsHandler struct {
	svc StatsCollector
}

func NewStatsHandler(svc StatsCollector) *StatsHandler {
	return &StatsHandler{svc: svc}
}

// Get answers GET /stats.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Collect(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, stats)
}
