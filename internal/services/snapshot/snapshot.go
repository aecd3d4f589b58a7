// Package snapshot периодически сохраняет статистику дашборда
// и сообщает о новых снимках через RabbitMQ.
package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/magabrotheeeer/church-dashboard/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/church-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/church-dashboard/internal/metrics"
	"github.com/magabrotheeeer/church-dashboard/internal/models"
	"github.com/magabrotheeeer/church-dashboard/internal/services/dashboard"
)

// StatsProvider считает статистику дашборда.
type StatsProvider interface {
	Stats(ctx context.Context, at time.Time, refresh bool) (*dashboard.Result, error)
}

// Repository сохраняет снимки.
type Repository interface {
	SaveSnapshot(ctx context.Context, snap models.Snapshot) error
}

// Job снимает, сохраняет и публикует статистику.
type Job struct {
	stats   StatsProvider
	repo    Repository
	channel rabbitmq.Channel
	metrics *metrics.Metrics
	log     *slog.Logger
	now     func() time.Time
}

// NewJob создает новый экземпляр Job.
func NewJob(stats StatsProvider, repo Repository, channel rabbitmq.Channel, m *metrics.Metrics, log *slog.Logger) *Job {
	return &Job{
		stats:   stats,
		repo:    repo,
		channel: channel,
		metrics: m,
		log:     log,
		now:     time.Now,
	}
}

// Run делает один снимок. Снимок с отказавшими источниками тоже сохраняется.
// Если публикация не удалась, снимок уже сохранён и возвращается вместе с ошибкой.
func (j *Job) Run(ctx context.Context) (*models.Snapshot, error) {
	const op = "services.snapshot.Run"
	log := j.log.With(slog.String("op", op))

	at := j.now().UTC()
	res, err := j.stats.Stats(ctx, at, true)
	if err != nil {
		j.metrics.Snapshots.WithLabelValues("compute_failed").Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	snap := models.Snapshot{
		ID:       uuid.NewString(),
		TakenAt:  at,
		Stats:    res.Stats,
		Failures: res.FailedSources(),
	}
	if len(snap.Failures) == 0 {
		snap.Failures = nil
	}

	if err := j.repo.SaveSnapshot(ctx, snap); err != nil {
		j.metrics.Snapshots.WithLabelValues("store_failed").Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := rabbitmq.PublishMessage(j.channel, rabbitmq.Exchange, rabbitmq.RoutingSnapshotCreated, snap); err != nil {
		j.metrics.Snapshots.WithLabelValues("publish_failed").Inc()
		return &snap, fmt.Errorf("%s: %w", op, err)
	}

	j.metrics.Snapshots.WithLabelValues("ok").Inc()
	log.Info("snapshot stored",
		slog.String("snapshot_id", snap.ID),
		slog.Int("failures", len(snap.Failures)),
	)
	return &snap, nil
}

// Schedule запускает Run по расписанию schedule (формат cron или дескрипторы
// вида @daily) и блокируется до отмены ctx.
func (j *Job) Schedule(ctx context.Context, schedule string) error {
	const op = "services.snapshot.Schedule"

	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cronLogger{log: j.log}),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{log: j.log})),
	)
	_, err := c.AddFunc(schedule, func() {
		if _, err := j.Run(ctx); err != nil {
			j.log.Error("snapshot run failed", sl.Err(err))
		}
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	j.log.Info("snapshot schedule started", slog.String("schedule", schedule))
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	j.log.Info("snapshot schedule stopped")
	return nil
}

// cronLogger передаёт сообщения cron в slog.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append([]any{sl.Err(err)}, keysAndValues...)...)
}
