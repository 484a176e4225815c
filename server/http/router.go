package serverhttp

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"machinery-service/internal/machinery/handler"
	"machinery-service/internal/middleware"
	"machinery-service/server/http/handlers"
)

func NewRouter(svc *handler.Service, logger zerolog.Logger) *chi.Mux {
	cfg := svc.Cfg
	r := chi.NewRouter()

	// порядок важен: recover -> requestID -> logging -> metrics -> cors -> limit
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics(svc.Metrics))
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.LimitBytes(int64(cfg.MaxUploadMB) * 1024 * 1024))

	r.Get("/health", handlers.Health)
	if svc.Metrics != nil {
		r.Handle("/metrics", svc.Metrics.Handler())
	}

	r.Route("/machinery", func(r chi.Router) {
		r.Post("/canonicalize", handler.Canonicalize(svc))
		r.Post("/reconcile", handler.Reconcile(svc))
		r.Get("/aliases", handler.Aliases(svc))
		r.Get("/subsystems", handler.Subsystems(svc))
	})
	r.Post("/dashboard/overview", handler.Overview(svc))

	return r
}
