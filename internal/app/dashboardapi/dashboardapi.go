package dashboardapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/magabrotheeeer/church-dashboard/internal/cache"
	"github.com/magabrotheeeer/church-dashboard/internal/churchapi"
	"github.com/magabrotheeeer/church-dashboard/internal/config"
	"github.com/magabrotheeeer/church-dashboard/internal/http/handlers/health"
	"github.com/magabrotheeeer/church-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/church-dashboard/internal/metrics"
	"github.com/magabrotheeeer/church-dashboard/internal/migrations"
	"github.com/magabrotheeeer/church-dashboard/internal/services/attendance"
	"github.com/magabrotheeeer/church-dashboard/internal/services/dashboard"
	"github.com/magabrotheeeer/church-dashboard/internal/storage"
)

const shutdownTimeout = 15 * time.Second

// App — HTTP-сервер дашборда со своими подключениями.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
	cache  *cache.Cache
}

// New подключается к PostgreSQL и Redis, применяет миграции и собирает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.dashboardapi.New"

	db, err := storage.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	client := churchapi.NewClient(cfg.ChurchAPI)

	dashboardService := dashboard.NewService(client, cacheRedis, m, logger, dashboard.Options{
		CacheTTL:                  cfg.CacheTTL,
		LegacyPreviousDenominator: cfg.LegacyPreviousDenominator,
	})
	attendanceService := attendance.NewService(client, m, logger, cfg.SubmitConcurrency)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg.HTTPServer, Services{
		Stats:      dashboardService,
		Snapshots:  db,
		Attendance: attendanceService,
		Checks: map[string]health.Check{
			"postgres": db.DB.PingContext,
			"redis": func(ctx context.Context) error {
				return cacheRedis.Db.Ping(ctx).Err()
			},
		},
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}, nil
}

// Run обслуживает запросы до отмены ctx, затем мягко останавливает сервер.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close redis", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
}
