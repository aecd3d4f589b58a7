// Package stats вычисляет метрики дашборда из уже полученных записей
// посещаемости, пожертвований и мероприятий.
//
// Все функции пакета чистые: не делают ввода-вывода, не хранят состояния
// между вызовами и могут вызываться параллельно. Некорректные записи
// (нулевая дата, отрицательная сумма) сразу возвращаются как ошибка,
// а каждое деление проверяет знаменатель и подставляет документированное
// запасное значение вместо Inf/NaN.
package stats

import (
	"time"

	"github.com/magabrotheeeer/church-dashboard/internal/models"
)

// Длины окон в днях.
const (
	WeekDays  = 7
	MonthDays = 30
)

// Weekly — число отметок за последние 7 дней и за 7 дней до них.
type Weekly struct {
	Current  int
	Previous int
}

// Rates — доля уникальных членов общины, посетивших служения, в процентах.
type Rates struct {
	Current  int
	Previous int
}

// Absence — расчёт пропусков за одно окно.
type Absence struct {
	Services   int // число различных пар (дата, тип служения)
	Possible   int // Services * totalMembers
	Present    int // сумма уникальных членов по каждому служению
	Count      int // max(0, Possible-Present)
	Percentage int
}

// AbsenteeSummary — пропуски за текущее и предыдущее 30-дневные окна.
type AbsenteeSummary struct {
	Current  Absence
	Previous Absence
}

func inWindow(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

func daysAgo(now time.Time, days int) time.Time {
	return now.AddDate(0, 0, -days)
}

func checkAttendance(records []models.AttendanceRecord) error {
	for _, r := range records {
		if r.Date.IsZero() {
			return &ParseError{RecordID: r.ID, Field: "date"}
		}
	}
	return nil
}

// WeeklyAttendance делит записи на окна [now-7d, now) и [now-14d, now-7d).
func WeeklyAttendance(records []models.AttendanceRecord, now time.Time) (Weekly, error) {
	if err := checkAttendance(records); err != nil {
		return Weekly{}, err
	}
	weekAgo := daysAgo(now, WeekDays)
	twoWeeksAgo := daysAgo(now, 2*WeekDays)

	var w Weekly
	for _, r := range records {
		switch {
		case inWindow(r.Date, weekAgo, now):
			w.Current++
		case inWindow(r.Date, twoWeeksAgo, weekAgo):
			w.Previous++
		}
	}
	return w, nil
}

// AttendanceRate возвращает round(уникальные члены в [from, to) / totalMembers * 100).
// Гости и записи без ссылки на члена общины не учитываются. При totalMembers <= 0 — 0.
func AttendanceRate(records []models.AttendanceRecord, totalMembers int, from, to time.Time) (int, error) {
	if err := checkAttendance(records); err != nil {
		return 0, err
	}
	seen := make(map[string]struct{})
	for _, r := range records {
		if !inWindow(r.Date, from, to) {
			continue
		}
		if id, ok := r.Member(); ok {
			seen[id] = struct{}{}
		}
	}
	return ratioPercent(len(seen), totalMembers), nil
}

// AttendanceRates считает посещаемость за [now-30d, now) относительно
// members.CurrentTotal и за [now-60d, now-30d) относительно members.PreviousTotal.
func AttendanceRates(records []models.AttendanceRecord, members models.MemberCount, now time.Time) (Rates, error) {
	monthAgo := daysAgo(now, MonthDays)
	current, err := AttendanceRate(records, members.CurrentTotal, monthAgo, now)
	if err != nil {
		return Rates{}, err
	}
	previous, err := AttendanceRate(records, members.PreviousTotal, daysAgo(now, 2*MonthDays), monthAgo)
	if err != nil {
		return Rates{}, err
	}
	return Rates{Current: current, Previous: previous}, nil
}

// SplitWindow отбирает записи окна [now-days, now) и предшествующего ему окна той же длины.
func SplitWindow(records []models.AttendanceRecord, now time.Time, days int) (current, previous []models.AttendanceRecord) {
	start := daysAgo(now, days)
	prevStart := daysAgo(now, 2*days)
	for _, r := range records {
		switch {
		case inWindow(r.Date, start, now):
			current = append(current, r)
		case inWindow(r.Date, prevStart, start):
			previous = append(previous, r)
		}
	}
	return current, previous
}

// MonthlyGrowth — процентное изменение числа отметок между двумя окнами.
// Без истории (previous пуст) рост равен 100, если текущих записей больше нуля, иначе 0.
func MonthlyGrowth(current, previous []models.AttendanceRecord) int {
	return changePercent(len(current), len(previous))
}

type serviceKey struct {
	year    int
	month   time.Month
	day     int
	service models.ServiceType
}

func keyOf(r models.AttendanceRecord) serviceKey {
	y, m, d := r.Date.Date()
	return serviceKey{year: y, month: m, day: d, service: r.ServiceType}
}

// Absentees группирует отметки членов общины в [from, to) по паре
// (календарная дата, тип служения) и сравнивает фактическое присутствие
// с возможным: число служений * totalMembers.
func Absentees(records []models.AttendanceRecord, totalMembers int, from, to time.Time) (Absence, error) {
	if err := checkAttendance(records); err != nil {
		return Absence{}, err
	}
	groups := make(map[serviceKey]map[string]struct{})
	for _, r := range records {
		if r.IsVisitor || !inWindow(r.Date, from, to) {
			continue
		}
		k := keyOf(r)
		present, ok := groups[k]
		if !ok {
			present = make(map[string]struct{})
			groups[k] = present
		}
		if id, ok := r.Member(); ok {
			present[id] = struct{}{}
		}
	}

	a := Absence{Services: len(groups)}
	if totalMembers > 0 {
		a.Possible = a.Services * totalMembers
	}
	for _, present := range groups {
		a.Present += len(present)
	}
	a.Count = max(0, a.Possible-a.Present)
	a.Percentage = ratioPercent(a.Count, a.Possible)
	return a, nil
}

// AbsenteeRates считает пропуски за текущее и предыдущее 30-дневные окна.
func AbsenteeRates(records []models.AttendanceRecord, members models.MemberCount, now time.Time) (AbsenteeSummary, error) {
	monthAgo := daysAgo(now, MonthDays)
	current, err := Absentees(records, members.CurrentTotal, monthAgo, now)
	if err != nil {
		return AbsenteeSummary{}, err
	}
	previous, err := Absentees(records, members.PreviousTotal, daysAgo(now, 2*MonthDays), monthAgo)
	if err != nil {
		return AbsenteeSummary{}, err
	}
	return AbsenteeSummary{Current: current, Previous: previous}, nil
}
