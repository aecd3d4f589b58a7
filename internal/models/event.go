package models

import "time"

// EventStatus — статус церковного мероприятия.
type EventStatus string

// Допустимые статусы мероприятий.
const (
	EventDraft     EventStatus = "DRAFT"
	EventPublished EventStatus = "PUBLISHED"
	EventCancelled EventStatus = "CANCELLED"
	EventCompleted EventStatus = "COMPLETED"
)

// Valid сообщает, входит ли значение в перечень известных статусов.
func (s EventStatus) Valid() bool {
	switch s {
	case EventDraft, EventPublished, EventCancelled, EventCompleted:
		return true
	}
	return false
}

// EventRecord — мероприятие в календаре церкви.
type EventRecord struct {
	ID        string      `json:"id"`
	StartTime time.Time   `json:"start_time"`
	Status    EventStatus `json:"status"`
}
