package stats

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/church-dashboard/internal/models"
)

var errUnknownTag = errors.New("unknown value")

// Форматы ISO-8601, которые встречаются в ответах API.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// ParseTime разбирает строку ISO-8601. Строки без зоны считаются UTC.
func ParseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	var err error
	for _, layout := range timeLayouts {
		var t time.Time
		t, err = time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

func parseField(id, field, value string) (time.Time, error) {
	t, err := ParseTime(value)
	if err != nil {
		return time.Time{}, &ParseError{RecordID: id, Field: field, Value: value, Err: err}
	}
	return t, nil
}

// ParseAttendance превращает запись API в AttendanceRecord.
func ParseAttendance(raw models.RawAttendance) (models.AttendanceRecord, error) {
	date, err := parseField(raw.ID, "date", raw.Date)
	if err != nil {
		return models.AttendanceRecord{}, err
	}
	st := models.ServiceType(raw.ServiceType)
	if !st.Valid() {
		return models.AttendanceRecord{}, &ParseError{RecordID: raw.ID, Field: "serviceType", Value: raw.ServiceType, Err: errUnknownTag}
	}

	rec := models.AttendanceRecord{
		ID:          raw.ID,
		Date:        date,
		ServiceType: st,
		IsVisitor:   raw.IsVisitor,
	}
	if !raw.IsVisitor && raw.MemberID != nil && *raw.MemberID != "" {
		ref := *raw.MemberID
		rec.MemberRef = &ref
	}
	return rec, nil
}

// ParseTithe превращает запись API в TitheRecord. Отрицательная или
// нечисловая сумма даёт InvalidQuantityError.
func ParseTithe(raw models.RawTithe) (models.TitheRecord, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw.Amount.String()))
	if err != nil || amount.IsNegative() {
		return models.TitheRecord{}, &InvalidQuantityError{RecordID: raw.ID, Field: "amount", Value: raw.Amount.String()}
	}
	pt := models.PaymentType(raw.PaymentType)
	if !pt.Valid() {
		return models.TitheRecord{}, &ParseError{RecordID: raw.ID, Field: "paymentType", Value: raw.PaymentType, Err: errUnknownTag}
	}
	date, err := parseField(raw.ID, "paymentDate", raw.PaymentDate)
	if err != nil {
		return models.TitheRecord{}, err
	}
	return models.TitheRecord{
		ID:          raw.ID,
		Amount:      amount,
		PaymentType: pt,
		PaymentDate: date,
	}, nil
}

// ParseEvent превращает запись API в EventRecord.
func ParseEvent(raw models.RawEvent) (models.EventRecord, error) {
	start, err := parseField(raw.ID, "startTime", raw.StartTime)
	if err != nil {
		return models.EventRecord{}, err
	}
	status := models.EventStatus(raw.Status)
	if !status.Valid() {
		return models.EventRecord{}, &ParseError{RecordID: raw.ID, Field: "status", Value: raw.Status, Err: errUnknownTag}
	}
	return models.EventRecord{ID: raw.ID, StartTime: start, Status: status}, nil
}

// ParseAttendanceList разбирает все записи и останавливается на первой ошибке.
func ParseAttendanceList(raws []models.RawAttendance) ([]models.AttendanceRecord, error) {
	out := make([]models.AttendanceRecord, 0, len(raws))
	for _, raw := range raws {
		rec, err := ParseAttendance(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// ParseTitheList разбирает все записи и останавливается на первой ошибке.
func ParseTitheList(raws []models.RawTithe) ([]models.TitheRecord, error) {
	out := make([]models.TitheRecord, 0, len(raws))
	for _, raw := range raws {
		rec, err := ParseTithe(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// ParseEventList разбирает все записи и останавливается на первой ошибке.
func ParseEventList(raws []models.RawEvent) ([]models.EventRecord, error) {
	out := make([]models.EventRecord, 0, len(raws))
	for _, raw := range raws {
		rec, err := ParseEvent(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
