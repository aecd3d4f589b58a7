package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardStats — итоговые метрики дашборда. Значение пересчитывается
// целиком при каждом запросе и не имеет собственной идентичности.
type DashboardStats struct {
	WeeklyAttendance         int `json:"weeklyAttendance"`
	PreviousWeekAttendance   int `json:"previousWeekAttendance"`
	AttendanceRate           int `json:"attendanceRate"`
	PreviousAttendanceRate   int `json:"previousAttendanceRate"`
	MonthlyGrowth            int `json:"monthlyGrowth"`
	AbsenteesCount           int `json:"absenteesCount"`
	AbsenteesPercentage      int `json:"absenteesPercentage"`
	PreviousAbsenteesCount   int `json:"previousAbsenteesCount"`
	PreviousAbsenteesPercent int `json:"previousAbsenteesPercentage"`

	MonthlyTithes         decimal.Decimal `json:"monthlyTithes"`
	PreviousMonthlyTithes decimal.Decimal `json:"previousMonthlyTithes"`
	MonthlyTithesChange   float64         `json:"monthlyTithesChange"` // один знак после запятой

	UpcomingEvents       int `json:"upcomingEvents"`
	UpcomingEventsChange int `json:"upcomingEventsChange"`

	MemberChangePercent float64 `json:"memberChangePercent"` // один знак после запятой
	NewMembersThisMonth int     `json:"newMembersThisMonth"`
}

// Snapshot — сохранённый срез статистики дашборда.
type Snapshot struct {
	ID       string         `json:"id"`
	TakenAt  time.Time      `json:"taken_at"`
	Stats    DashboardStats `json:"stats"`
	Failures []string       `json:"failures,omitempty"` // источники, которые не удалось получить
}
