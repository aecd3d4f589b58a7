package stats

import (
	"time"

	"github.com/magabrotheeeer/church-dashboard/internal/models"
)

// Events — мероприятия на ближайшие 30 дней против завершённых за прошедшие 30.
type Events struct {
	Upcoming      int
	Past          int
	ChangePercent int
}

func checkEvents(events []models.EventRecord) error {
	for _, e := range events {
		if e.StartTime.IsZero() {
			return &ParseError{RecordID: e.ID, Field: "startTime"}
		}
	}
	return nil
}

func between(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}

// UpcomingEvents считает мероприятия с now <= startTime <= now+30d и
// завершённые мероприятия с now-30d <= startTime <= now.
func UpcomingEvents(upcoming, completed []models.EventRecord, now time.Time) (Events, error) {
	if err := checkEvents(upcoming); err != nil {
		return Events{}, err
	}
	if err := checkEvents(completed); err != nil {
		return Events{}, err
	}

	var e Events
	horizon := now.AddDate(0, 0, MonthDays)
	for _, ev := range upcoming {
		if between(ev.StartTime, now, horizon) {
			e.Upcoming++
		}
	}
	monthAgo := daysAgo(now, MonthDays)
	for _, ev := range completed {
		if ev.Status == models.EventCompleted && between(ev.StartTime, monthAgo, now) {
			e.Past++
		}
	}
	e.ChangePercent = changePercent(e.Upcoming, e.Past)
	return e, nil
}
