package stats

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/church-dashboard/internal/models"
)

// Tithes — сумма десятин за текущий и прошлый календарный месяц.
type Tithes struct {
	Current       decimal.Decimal
	Previous      decimal.Decimal
	ChangePercent float64 // один знак после запятой
}

// MonthBounds возвращает начало текущего месяца, начало следующего
// и начало предыдущего в зоне now.
func MonthBounds(now time.Time) (start, next, previous time.Time) {
	y, m, _ := now.Date()
	start = time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 1, 0), start.AddDate(0, -1, 0)
}

func sumTithes(records []models.TitheRecord) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, r := range records {
		if r.PaymentDate.IsZero() {
			return decimal.Zero, &ParseError{RecordID: r.ID, Field: "paymentDate"}
		}
		if r.Amount.IsNegative() {
			return decimal.Zero, &InvalidQuantityError{RecordID: r.ID, Field: "amount", Value: r.Amount.String()}
		}
		// пожертвования и прочие взносы в сумму десятин не входят
		if r.PaymentType != models.Tithe {
			continue
		}
		total = total.Add(r.Amount)
	}
	return total, nil
}

// TithesSummary суммирует записи с PaymentType == TITHE за каждый месяц
// и считает изменение в процентах с точностью до десятой.
func TithesSummary(current, previous []models.TitheRecord) (Tithes, error) {
	cur, err := sumTithes(current)
	if err != nil {
		return Tithes{}, err
	}
	prev, err := sumTithes(previous)
	if err != nil {
		return Tithes{}, err
	}
	return Tithes{
		Current:       cur,
		Previous:      prev,
		ChangePercent: decimalChangePercent1(cur, prev),
	}, nil
}
