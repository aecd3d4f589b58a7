package stats

import (
	"time"

	"github.com/magabrotheeeer/church-dashboard/internal/models"
)

// Input — все данные, нужные для полного пересчёта дашборда.
type Input struct {
	Now             time.Time
	Attendance      []models.AttendanceRecord // записи за последние 60 дней
	Members         models.MemberCount
	CurrentTithes   []models.TitheRecord
	PreviousTithes  []models.TitheRecord
	UpcomingEvents  []models.EventRecord
	CompletedEvents []models.EventRecord
}

// ApplyWeekly заполняет недельные окна и месячный рост: им не нужно число членов общины.
func ApplyWeekly(s *models.DashboardStats, records []models.AttendanceRecord, now time.Time) error {
	weekly, err := WeeklyAttendance(records, now)
	if err != nil {
		return err
	}
	s.WeeklyAttendance = weekly.Current
	s.PreviousWeekAttendance = weekly.Previous
	ApplyGrowth(s, records, now)
	return nil
}

// ApplyRates заполняет посещаемость и пропуски, для которых нужно число членов общины.
func ApplyRates(s *models.DashboardStats, records []models.AttendanceRecord, members models.MemberCount, now time.Time) error {
	rates, err := AttendanceRates(records, members, now)
	if err != nil {
		return err
	}
	absence, err := AbsenteeRates(records, members, now)
	if err != nil {
		return err
	}
	s.AttendanceRate = rates.Current
	s.PreviousAttendanceRate = rates.Previous
	s.AbsenteesCount = absence.Current.Count
	s.AbsenteesPercentage = absence.Current.Percentage
	s.PreviousAbsenteesCount = absence.Previous.Count
	s.PreviousAbsenteesPercent = absence.Previous.Percentage
	return nil
}

// ApplyGrowth заполняет MonthlyGrowth по 30-дневным окнам.
func ApplyGrowth(s *models.DashboardStats, records []models.AttendanceRecord, now time.Time) {
	current, previous := SplitWindow(records, now, MonthDays)
	s.MonthlyGrowth = MonthlyGrowth(current, previous)
}

// ApplyTithes заполняет поля десятин.
func ApplyTithes(s *models.DashboardStats, current, previous []models.TitheRecord) error {
	t, err := TithesSummary(current, previous)
	if err != nil {
		return err
	}
	s.MonthlyTithes = t.Current
	s.PreviousMonthlyTithes = t.Previous
	s.MonthlyTithesChange = t.ChangePercent
	return nil
}

// ApplyEvents заполняет поля мероприятий.
func ApplyEvents(s *models.DashboardStats, upcoming, completed []models.EventRecord, now time.Time) error {
	e, err := UpcomingEvents(upcoming, completed, now)
	if err != nil {
		return err
	}
	s.UpcomingEvents = e.Upcoming
	s.UpcomingEventsChange = e.ChangePercent
	return nil
}

// ApplyMembers заполняет поля численности общины.
func ApplyMembers(s *models.DashboardStats, mc models.MemberCount) {
	m := MemberChange(mc)
	s.MemberChangePercent = m.ChangePercent
	s.NewMembersThisMonth = m.NewMembers
}

// Compute пересчитывает все метрики и возвращает первую встреченную ошибку.
func Compute(in Input) (models.DashboardStats, error) {
	var s models.DashboardStats
	if err := ApplyWeekly(&s, in.Attendance, in.Now); err != nil {
		return models.DashboardStats{}, err
	}
	if err := ApplyRates(&s, in.Attendance, in.Members, in.Now); err != nil {
		return models.DashboardStats{}, err
	}
	if err := ApplyTithes(&s, in.CurrentTithes, in.PreviousTithes); err != nil {
		return models.DashboardStats{}, err
	}
	if err := ApplyEvents(&s, in.UpcomingEvents, in.CompletedEvents, in.Now); err != nil {
		return models.DashboardStats{}, err
	}
	ApplyMembers(&s, in.Members)
	return s, nil
}
