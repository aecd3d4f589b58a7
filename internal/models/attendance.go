// Package models содержит доменные структуры дашборда церкви: записи посещаемости,
// десятин и мероприятий, счётчик членов общины и итоговую статистику дашборда,
// а также «сырые» DTO, в которых записи приходят из внешнего REST API.
package models

import "time"

// ServiceType — тип богослужения или собрания, к которому относится отметка посещения.
type ServiceType string

// Допустимые типы служений.
const (
	SundayService   ServiceType = "SUNDAY_SERVICE"
	BibleStudy      ServiceType = "BIBLE_STUDY"
	PrayerMeeting   ServiceType = "PRAYER_MEETING"
	YouthService    ServiceType = "YOUTH_SERVICE"
	ChildrenService ServiceType = "CHILDREN_SERVICE"
	SpecialEvent    ServiceType = "SPECIAL_EVENT"
	OtherService    ServiceType = "OTHER"
)

// Valid сообщает, входит ли значение в перечень известных типов служений.
func (s ServiceType) Valid() bool {
	switch s {
	case SundayService, BibleStudy, PrayerMeeting, YouthService,
		ChildrenService, SpecialEvent, OtherService:
		return true
	}
	return false
}

// AttendanceRecord — одна отметка посещения служения.
// MemberRef заполняется только для членов общины (IsVisitor == false)
// и используется исключительно для подсчёта уникальных посетителей.
type AttendanceRecord struct {
	ID          string      `json:"id"`
	Date        time.Time   `json:"date"`
	ServiceType ServiceType `json:"service_type"`
	IsVisitor   bool        `json:"is_visitor"`
	MemberRef   *string     `json:"member_ref,omitempty"`
}

// Member возвращает идентификатор члена общины, если запись его содержит.
// Для гостей и записей без ссылки возвращается ok == false.
func (r AttendanceRecord) Member() (string, bool) {
	if r.IsVisitor || r.MemberRef == nil || *r.MemberRef == "" {
		return "", false
	}
	return *r.MemberRef, true
}
