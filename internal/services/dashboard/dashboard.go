// Package dashboard собирает данные для дашборда из внешнего API,
// параллельно запрашивая все источники, и считает по ним статистику.
// Отказ одного источника не прерывает расчёт: метрики, которые можно
// посчитать по остальным, возвращаются вместе со списком отказов.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/magabrotheeeer/church-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/church-dashboard/internal/metrics"
	"github.com/magabrotheeeer/church-dashboard/internal/models"
	"github.com/magabrotheeeer/church-dashboard/internal/stats"
)

// Имена источников и разделов в списке отказов.
const (
	SourceAttendance      = "attendance"
	SourceTithes          = "tithes"
	SourceUpcomingEvents  = "upcoming_events"
	SourceCompletedEvents = "completed_events"
	SourceMembers         = "members"
)

// SectionEvents — раздел событий: запись с ошибкой может прийти
// из любого из двух списков событий.
const SectionEvents = "events"

var sources = []string{SourceAttendance, SourceTithes, SourceUpcomingEvents, SourceCompletedEvents, SourceMembers}

// ErrAllSourcesFailed возвращается, когда не удалось получить ни одного источника.
var ErrAllSourcesFailed = errors.New("all dashboard sources failed")

// Source описывает методы внешнего API, из которых берутся записи.
type Source interface {
	ListAttendance(ctx context.Context, from, to time.Time) ([]models.AttendanceRecord, error)
	ListTithes(ctx context.Context, from, to time.Time) ([]models.TitheRecord, error)
	ListUpcomingEvents(ctx context.Context) ([]models.EventRecord, error)
	ListEvents(ctx context.Context, status models.EventStatus, from, to time.Time) ([]models.EventRecord, error)
	MemberCount(ctx context.Context) (models.MemberCount, error)
}

// Cache описывает методы для кэширования рассчитанной статистики.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// SourceFailure — источник или раздел, который не удалось получить или посчитать.
type SourceFailure struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// Result — статистика дашборда и отказавшие источники.
type Result struct {
	Stats       models.DashboardStats `json:"stats"`
	Failures    []SourceFailure       `json:"failures,omitempty"`
	GeneratedAt time.Time             `json:"generated_at"`
}

// FailedSources возвращает имена отказавших источников.
func (r *Result) FailedSources() []string {
	out := make([]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		out = append(out, f.Source)
	}
	return out
}

// Options — настройки расчёта.
type Options struct {
	CacheTTL time.Duration
	// LegacyPreviousDenominator: посещаемость и пропуски прошлого периода
	// считаются от текущего числа членов общины.
	LegacyPreviousDenominator bool
}

// Service считает статистику дашборда.
type Service struct {
	source  Source
	cache   Cache
	metrics *metrics.Metrics
	log     *slog.Logger
	opts    Options
	now     func() time.Time
}

// NewService создает новый экземпляр Service. cache может быть nil.
func NewService(source Source, cache Cache, m *metrics.Metrics, log *slog.Logger, opts Options) *Service {
	return &Service{
		source:  source,
		cache:   cache,
		metrics: m,
		log:     log,
		opts:    opts,
		now:     time.Now,
	}
}

type fetched struct {
	attendance     []models.AttendanceRecord
	currentTithes  []models.TitheRecord
	previousTithes []models.TitheRecord
	upcoming       []models.EventRecord
	completed      []models.EventRecord
	members        models.MemberCount
}

// cacheKey: запросы на текущий момент делят одну запись в пределах CacheTTL,
// запрос на явный момент кэшируется под своим точным временем.
func (s *Service) cacheKey(at time.Time, current bool) string {
	if current {
		return "dashboard:stats:now:" + strconv.FormatInt(at.Truncate(s.opts.CacheTTL).Unix(), 10)
	}
	return "dashboard:stats:at:" + at.UTC().Format(time.RFC3339Nano)
}

func (s *Service) cacheEnabled() bool {
	return s.cache != nil && s.opts.CacheTTL > 0
}

// Stats считает статистику на момент at; нулевой at означает текущий момент.
// При refresh == false сначала проверяется кэш, при refresh == true запись
// удаляется из кэша. В кэш попадают только результаты без отказов.
func (s *Service) Stats(ctx context.Context, at time.Time, refresh bool) (*Result, error) {
	const op = "services.dashboard.Stats"
	log := s.log.With(slog.String("op", op))

	current := at.IsZero()
	if current {
		at = s.now()
	}
	key := s.cacheKey(at, current)

	if s.cacheEnabled() && refresh {
		if err := s.cache.Invalidate(ctx, key); err != nil {
			log.Warn("failed to invalidate cached stats", sl.Err(err))
		}
	}
	if s.cacheEnabled() && !refresh {
		var cached Result
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			log.Warn("failed to read stats from cache", sl.Err(err))
		}
		if found {
			s.metrics.CacheHits.Inc()
			return &cached, nil
		}
	}

	start := time.Now()
	defer s.metrics.ObserveSince(start)

	data, errs := s.fetch(ctx, at)
	if len(errs) == len(sources) {
		joined := make([]error, 0, len(errs))
		for _, name := range sources {
			joined = append(joined, errs[name])
		}
		return nil, fmt.Errorf("%s: %w: %w", op, ErrAllSourcesFailed, errors.Join(joined...))
	}

	res := &Result{GeneratedAt: at}
	fail := func(source string, err error) {
		s.metrics.SourceFailures.WithLabelValues(source).Inc()
		log.Warn("dashboard source failed", slog.String("source", source), sl.Err(err), sl.Record(err))
		res.Failures = append(res.Failures, SourceFailure{Source: source, Error: err.Error()})
	}
	for _, name := range sources {
		if err, ok := errs[name]; ok {
			fail(name, err)
		}
	}
	ok := func(names ...string) bool {
		for _, n := range names {
			if _, failed := errs[n]; failed {
				return false
			}
		}
		return true
	}

	if ok(SourceAttendance) {
		if err := stats.ApplyWeekly(&res.Stats, data.attendance, at); err != nil {
			fail(SourceAttendance, err)
		} else if ok(SourceMembers) {
			if err := stats.ApplyRates(&res.Stats, data.attendance, s.denominators(data.members), at); err != nil {
				fail(SourceAttendance, err)
			}
		}
	}
	if ok(SourceTithes) {
		if err := stats.ApplyTithes(&res.Stats, data.currentTithes, data.previousTithes); err != nil {
			fail(SourceTithes, err)
		}
	}
	if ok(SourceUpcomingEvents, SourceCompletedEvents) {
		if err := stats.ApplyEvents(&res.Stats, data.upcoming, data.completed, at); err != nil {
			fail(SectionEvents, err)
		}
	}
	if ok(SourceMembers) {
		stats.ApplyMembers(&res.Stats, data.members)
	}

	if len(res.Failures) == 0 && s.cacheEnabled() {
		if err := s.cache.Set(ctx, key, res, s.opts.CacheTTL); err != nil {
			log.Warn("failed to cache stats", sl.Err(err))
		}
	}
	return res, nil
}

func (s *Service) denominators(mc models.MemberCount) models.MemberCount {
	if s.opts.LegacyPreviousDenominator {
		mc.PreviousTotal = mc.CurrentTotal
	}
	return mc
}

// fetch параллельно запрашивает все источники. Ошибка одного источника
// не отменяет остальные запросы.
func (s *Service) fetch(ctx context.Context, at time.Time) (fetched, map[string]error) {
	var (
		data fetched
		mu   sync.Mutex
		errs = make(map[string]error)
		g    errgroup.Group
	)
	run := func(source string, fn func() error) {
		g.Go(func() error {
			if err := fn(); err != nil {
				mu.Lock()
				if _, exists := errs[source]; !exists {
					errs[source] = err
				}
				mu.Unlock()
			}
			return nil
		})
	}

	monthStart, nextMonth, prevMonth := stats.MonthBounds(at)

	run(SourceAttendance, func() error {
		records, err := s.source.ListAttendance(ctx, at.AddDate(0, 0, -2*stats.MonthDays), at)
		data.attendance = records
		return err
	})
	run(SourceTithes, func() error {
		records, err := s.source.ListTithes(ctx, monthStart, at)
		data.currentTithes = withinMonth(records, monthStart, nextMonth)
		return err
	})
	run(SourceTithes, func() error {
		records, err := s.source.ListTithes(ctx, prevMonth, monthStart)
		data.previousTithes = withinMonth(records, prevMonth, monthStart)
		return err
	})
	run(SourceUpcomingEvents, func() error {
		records, err := s.source.ListUpcomingEvents(ctx)
		data.upcoming = records
		return err
	})
	run(SourceCompletedEvents, func() error {
		records, err := s.source.ListEvents(ctx, models.EventCompleted, at.AddDate(0, 0, -stats.MonthDays), at)
		data.completed = records
		return err
	})
	run(SourceMembers, func() error {
		mc, err := s.source.MemberCount(ctx)
		data.members = mc
		return err
	})

	_ = g.Wait()
	return data, errs
}

// withinMonth оставляет записи с датой платежа в [from, to): API может
// включать границу периода в обе выборки.
func withinMonth(records []models.TitheRecord, from, to time.Time) []models.TitheRecord {
	out := records[:0:0]
	for _, r := range records {
		if r.PaymentDate.IsZero() || (!r.PaymentDate.Before(from) && r.PaymentDate.Before(to)) {
			out = append(out, r)
		}
	}
	return out
}
