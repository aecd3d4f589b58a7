package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentType — вид пожертвования.
type PaymentType string

// Допустимые виды пожертвований.
const (
	Tithe        PaymentType = "TITHE"
	Offering     PaymentType = "OFFERING"
	Donation     PaymentType = "DONATION"
	OtherPayment PaymentType = "OTHER"
)

// Valid сообщает, входит ли значение в перечень известных видов пожертвований.
func (p PaymentType) Valid() bool {
	switch p {
	case Tithe, Offering, Donation, OtherPayment:
		return true
	}
	return false
}

// TitheRecord — одна запись о пожертвовании.
type TitheRecord struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"` // неотрицательная сумма
	PaymentType PaymentType     `json:"payment_type"`
	PaymentDate time.Time       `json:"payment_date"`
}
