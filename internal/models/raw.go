package models

import "encoding/json"

// RawAttendance — запись посещаемости в том виде, в каком её отдаёт REST API.
// Даты приходят строками ISO-8601 и разбираются отдельно.
type RawAttendance struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	ServiceType string  `json:"serviceType"`
	IsVisitor   bool    `json:"isVisitor"`
	MemberID    *string `json:"memberId,omitempty"`
}

// RawTithe — запись о пожертвовании из REST API. Сумма может прийти
// как числом, так и строкой, поэтому хранится как json.Number.
type RawTithe struct {
	ID          string      `json:"id"`
	Amount      json.Number `json:"amount"`
	PaymentType string      `json:"paymentType"`
	PaymentDate string      `json:"paymentDate"`
}

// RawEvent — мероприятие из REST API.
type RawEvent struct {
	ID        string `json:"id"`
	StartTime string `json:"startTime"`
	Status    string `json:"status"`
}

// AttendanceRequest — тело запроса на создание отметки посещения во внешнем API.
type AttendanceRequest struct {
	Date        string  `json:"date" validate:"required"`
	ServiceType string  `json:"serviceType" validate:"required,oneof=SUNDAY_SERVICE BIBLE_STUDY PRAYER_MEETING YOUTH_SERVICE CHILDREN_SERVICE SPECIAL_EVENT OTHER"`
	IsVisitor   bool    `json:"isVisitor"`
	MemberID    *string `json:"memberId,omitempty"`
	VisitorName string  `json:"visitorName,omitempty"`
	Notes       string  `json:"notes,omitempty"`
}

// AttendanceBatch — пакет отметок посещения одного служения:
// члены общины и гости отправляются во внешний API независимо.
type AttendanceBatch struct {
	Date        string   `json:"date" validate:"required"`
	ServiceType string   `json:"service_type" validate:"required,oneof=SUNDAY_SERVICE BIBLE_STUDY PRAYER_MEETING YOUTH_SERVICE CHILDREN_SERVICE SPECIAL_EVENT OTHER"`
	MemberIDs   []string `json:"member_ids" validate:"dive,required"`
	Visitors    []string `json:"visitors" validate:"dive,required"`
	Notes       string   `json:"notes,omitempty"`
}
