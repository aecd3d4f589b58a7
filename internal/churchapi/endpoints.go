package churchapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/magabrotheeeer/church-dashboard/internal/models"
	"github.com/magabrotheeeer/church-dashboard/internal/stats"
)

// ListAttendance возвращает отметки посещения за период.
func (c *Client) ListAttendance(ctx context.Context, from, to time.Time) ([]models.AttendanceRecord, error) {
	const op = "churchapi.ListAttendance"
	raws, err := listAll[models.RawAttendance](ctx, c, "/attendance", rangeQuery(from, to))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	records, err := stats.ParseAttendanceList(raws)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return records, nil
}

// ListTithes возвращает пожертвования за период.
func (c *Client) ListTithes(ctx context.Context, from, to time.Time) ([]models.TitheRecord, error) {
	const op = "churchapi.ListTithes"
	raws, err := listAll[models.RawTithe](ctx, c, "/tithes", rangeQuery(from, to))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	records, err := stats.ParseTitheList(raws)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return records, nil
}

// ListUpcomingEvents возвращает предстоящие мероприятия.
func (c *Client) ListUpcomingEvents(ctx context.Context) ([]models.EventRecord, error) {
	const op = "churchapi.ListUpcomingEvents"
	raws, err := listAll[models.RawEvent](ctx, c, "/events/upcoming", nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	records, err := stats.ParseEventList(raws)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return records, nil
}

// ListEvents возвращает мероприятия с заданным статусом за период.
func (c *Client) ListEvents(ctx context.Context, status models.EventStatus, from, to time.Time) ([]models.EventRecord, error) {
	const op = "churchapi.ListEvents"
	q := rangeQuery(from, to)
	q.Set("status", string(status))
	raws, err := listAll[models.RawEvent](ctx, c, "/events", q)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	records, err := stats.ParseEventList(raws)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return records, nil
}

// MemberCount возвращает текущее и прошлое число членов общины.
func (c *Client) MemberCount(ctx context.Context) (models.MemberCount, error) {
	const op = "churchapi.MemberCount"
	var mc models.MemberCount
	if err := c.do(ctx, http.MethodGet, "/members/count", nil, nil, &mc); err != nil {
		return models.MemberCount{}, fmt.Errorf("%s: %w", op, err)
	}
	return mc, nil
}

// CreateAttendance создаёт одну отметку посещения.
func (c *Client) CreateAttendance(ctx context.Context, req models.AttendanceRequest) error {
	const op = "churchapi.CreateAttendance"
	if err := c.do(ctx, http.MethodPost, "/attendance", nil, req, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
