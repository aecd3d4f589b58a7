// Package snapshotter собирает процесс, который по расписанию сохраняет
// снимки статистики дашборда и публикует их в RabbitMQ.
package snapshotter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/church-dashboard/internal/cache"
	"github.com/magabrotheeeer/church-dashboard/internal/churchapi"
	"github.com/magabrotheeeer/church-dashboard/internal/config"
	"github.com/magabrotheeeer/church-dashboard/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/church-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/church-dashboard/internal/metrics"
	"github.com/magabrotheeeer/church-dashboard/internal/services/dashboard"
	"github.com/magabrotheeeer/church-dashboard/internal/services/snapshot"
	"github.com/magabrotheeeer/church-dashboard/internal/storage"
)

// App представляет приложение снимков.
type App struct {
	job      *snapshot.Job
	schedule string
	db       *storage.Storage
	cache    *cache.Cache
	conn     *amqp.Connection
	ch       *amqp.Channel
	logger   *slog.Logger
}

func waitForDB(ctx context.Context, db *storage.Storage) error {
	for range 10 {
		err := storage.CheckDatabaseReady(ctx, db)
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(3 * time.Second):
		}
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает новый экземпляр приложения снимков. Таблицы создаёт
// HTTP-сервис при старте, поэтому здесь только ожидание готовности базы.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(ctx, cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.Exchange, rabbitmq.DashboardQueues())
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	db, err := storage.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	if err := waitForDB(ctx, db); err != nil {
		_ = db.Close()
		closeResources(ch, conn, logger)
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("cache not initialized: %w", err)
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	dashboardService := dashboard.NewService(churchapi.NewClient(cfg.ChurchAPI), cacheRedis, m, logger, dashboard.Options{
		CacheTTL:                  cfg.CacheTTL,
		LegacyPreviousDenominator: cfg.LegacyPreviousDenominator,
	})

	return &App{
		job:      snapshot.NewJob(dashboardService, db, ch, m, logger),
		schedule: cfg.SnapshotSchedule,
		db:       db,
		cache:    cacheRedis,
		conn:     conn,
		ch:       ch,
		logger:   logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", sl.Err(err))
		}
	}
}

// Run запускает расписание и блокируется до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	err := a.job.Schedule(ctx, a.schedule)

	a.logger.Info("shutting down snapshotter")
	closeResources(a.ch, a.conn, a.logger)
	if cerr := a.cache.Close(); cerr != nil {
		a.logger.Error("failed to close redis", sl.Err(cerr))
	}
	if cerr := a.db.Close(); cerr != nil {
		a.logger.Error("failed to close database", sl.Err(cerr))
	}
	return err
}

// RunOnce делает один снимок без расписания.
func (a *App) RunOnce(ctx context.Context) error {
	defer func() {
		closeResources(a.ch, a.conn, a.logger)
		_ = a.cache.Close()
		_ = a.db.Close()
	}()
	snap, err := a.job.Run(ctx)
	if err != nil {
		return err
	}
	a.logger.Info("snapshot taken", slog.String("snapshot_id", snap.ID))
	return nil
}
