package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/construdata/precobase/internal/api"
	"github.com/construdata/precobase/internal/api/handlers"
	"github.com/construdata/precobase/internal/api/middleware"
)

type RouterConfig struct {
	SearchHandler *handlers.SearchHandler
	FileHandler   *handlers.FileHandler
	StatsHandler  *handlers.StatsHandler
	IngestHandler *handlers.IngestHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/services", cfg.SearchHandler.Structured)
	r.Post("/search", cfg.SearchHandler.Semantic)

	r.Route("/files", func(r chi.Router) {
		r.Get("/", cfg.FileHandler.List)
		r.Get("/status", cfg.FileHandler.Get)
	})

	r.Get("/stats", cfg.StatsHandler.Get)

	r.Route("/admin", func(r chi.Router) {
		r.Post("/rescan", cfg.IngestHandler.Rescan)
		r.Post("/rebuild", cfg.IngestHandler.Rebuild)
	})

	return r
}
