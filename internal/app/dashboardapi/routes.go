// Package dashboardapi собирает HTTP-сервер дашборда.
package dashboardapi

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/church-dashboard/internal/config"
	"github.com/magabrotheeeer/church-dashboard/internal/http/handlers/attendance/attendancebatch"
	"github.com/magabrotheeeer/church-dashboard/internal/http/handlers/dashboard/dashboardstats"
	"github.com/magabrotheeeer/church-dashboard/internal/http/handlers/dashboard/snapshotlatest"
	"github.com/magabrotheeeer/church-dashboard/internal/http/handlers/dashboard/snapshotlist"
	"github.com/magabrotheeeer/church-dashboard/internal/http/handlers/health"
	"github.com/magabrotheeeer/church-dashboard/internal/http/middlewarectx"
)

// SnapshotRepository — чтение сохранённых снимков.
type SnapshotRepository interface {
	snapshotlist.Repository
	snapshotlatest.Repository
}

// Services — зависимости обработчиков.
type Services struct {
	Stats      dashboardstats.Service
	Snapshots  SnapshotRepository
	Attendance attendancebatch.Service
	Checks     map[string]health.Check
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg config.HTTPServer, svc Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(logger, cfg.RateLimit, cfg.RateBurst))
		r.Get("/dashboard/stats", dashboardstats.New(logger, svc.Stats).ServeHTTP)
		r.Get("/dashboard/snapshots", snapshotlist.New(logger, svc.Snapshots).ServeHTTP)
		r.Get("/dashboard/snapshots/latest", snapshotlatest.New(logger, svc.Snapshots).ServeHTTP)
		r.Post("/attendance/batch", attendancebatch.New(logger, svc.Attendance).ServeHTTP)
	})

	r.Get("/health", health.New(logger, svc.Checks).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
