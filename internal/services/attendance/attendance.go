// Package attendance отправляет отметки посещения во внешний API пакетами.
package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/magabrotheeeer/church-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/church-dashboard/internal/metrics"
	"github.com/magabrotheeeer/church-dashboard/internal/models"
	"github.com/magabrotheeeer/church-dashboard/internal/stats"
)

// ErrInvalidBatch возвращается, если пакет нельзя отправить целиком.
var ErrInvalidBatch = errors.New("invalid attendance batch")

const defaultConcurrency = 8

// Writer создаёт одну отметку посещения во внешнем API.
type Writer interface {
	CreateAttendance(ctx context.Context, req models.AttendanceRequest) error
}

// RecordError — отметка, которую не удалось создать.
type RecordError struct {
	MemberID string `json:"member_id,omitempty"`
	Visitor  string `json:"visitor,omitempty"`
	Error    string `json:"error"`
}

// BatchResult — итог отправки пакета.
type BatchResult struct {
	ID        uuid.UUID     `json:"id"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Errors    []RecordError `json:"errors,omitempty"`
}

// Service отправляет пакеты отметок.
type Service struct {
	writer      Writer
	metrics     *metrics.Metrics
	log         *slog.Logger
	validate    *validator.Validate
	concurrency int
}

// NewService создает новый экземпляр Service. concurrency ограничивает
// число одновременных запросов к API.
func NewService(writer Writer, m *metrics.Metrics, log *slog.Logger, concurrency int) *Service {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Service{
		writer:      writer,
		metrics:     m,
		log:         log,
		validate:    validator.New(),
		concurrency: concurrency,
	}
}

func requests(batch models.AttendanceBatch) []models.AttendanceRequest {
	reqs := make([]models.AttendanceRequest, 0, len(batch.MemberIDs)+len(batch.Visitors))
	for _, id := range batch.MemberIDs {
		memberID := id
		reqs = append(reqs, models.AttendanceRequest{
			Date:        batch.Date,
			ServiceType: batch.ServiceType,
			MemberID:    &memberID,
			Notes:       batch.Notes,
		})
	}
	for _, name := range batch.Visitors {
		reqs = append(reqs, models.AttendanceRequest{
			Date:        batch.Date,
			ServiceType: batch.ServiceType,
			IsVisitor:   true,
			VisitorName: name,
			Notes:       batch.Notes,
		})
	}
	return reqs
}

// Submit создаёт по одной отметке на каждого члена общины и гостя.
// Ошибка отдельной отметки не прерывает остальные и попадает в BatchResult.
func (s *Service) Submit(ctx context.Context, batch models.AttendanceBatch) (*BatchResult, error) {
	const op = "services.attendance.Submit"
	log := s.log.With(slog.String("op", op))

	if err := s.validate.Struct(batch); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidBatch, err)
	}
	if _, err := stats.ParseTime(batch.Date); err != nil {
		return nil, fmt.Errorf("%s: %w: date %q", op, ErrInvalidBatch, batch.Date)
	}
	reqs := requests(batch)
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%s: %w: no members or visitors", op, ErrInvalidBatch)
	}

	errs := make([]error, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, req := range reqs {
		g.Go(func() error {
			if err := s.validate.Struct(req); err != nil {
				errs[i] = err
				return nil
			}
			errs[i] = s.writer.CreateAttendance(gctx, req)
			return nil
		})
	}
	_ = g.Wait()

	res := &BatchResult{ID: uuid.New()}
	for i, err := range errs {
		if err == nil {
			res.Succeeded++
			s.metrics.SubmittedRecords.WithLabelValues("ok").Inc()
			continue
		}
		res.Failed++
		log.Debug("failed to create attendance record", slog.Int("index", i), sl.Err(err))
		s.metrics.SubmittedRecords.WithLabelValues("failed").Inc()
		re := RecordError{Error: err.Error()}
		if reqs[i].IsVisitor {
			re.Visitor = reqs[i].VisitorName
		} else {
			re.MemberID = *reqs[i].MemberID
		}
		res.Errors = append(res.Errors, re)
	}

	if res.Failed > 0 {
		log.Warn("attendance batch partially failed",
			slog.String("batch_id", res.ID.String()),
			slog.Int("failed", res.Failed),
			slog.Int("succeeded", res.Succeeded),
		)
	} else {
		log.Info("attendance batch submitted", slog.String("batch_id", res.ID.String()), slog.Int("count", res.Succeeded))
	}
	return res, nil
}
