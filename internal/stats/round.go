package stats

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// floorDiv делит с округлением к минус бесконечности.
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// halfUp возвращает num/den*scale, округлённое по правилу half-up: 12.5 -> 13, -12.5 -> -12.
// Считается в целых числах, den > 0.
func halfUp(num, den, scale int64) int64 {
	return floorDiv(2*num*scale+den, 2*den)
}

// ratioPercent возвращает round(num/den*100), при нулевом знаменателе — 0.
func ratioPercent(num, den int) int {
	if den <= 0 {
		return 0
	}
	return int(halfUp(int64(num), int64(den), 100))
}

// changePercent — процентное изменение current относительно previous, до целого.
func changePercent(current, previous int) int {
	if previous <= 0 {
		return fallback(current > 0)
	}
	return int(halfUp(int64(current-previous), int64(previous), 100))
}

// changePercent1 — процентное изменение с одним знаком после запятой.
func changePercent1(current, previous int) float64 {
	if previous <= 0 {
		return float64(fallback(current > 0))
	}
	return float64(halfUp(int64(current-previous), int64(previous), 1000)) / 10
}

// decimalChangePercent1 считает изменение денежных сумм в десятичной арифметике,
// чтобы 110 против 100 давало ровно 10.0.
func decimalChangePercent1(current, previous decimal.Decimal) float64 {
	if !previous.IsPositive() {
		return float64(fallback(current.IsPositive()))
	}
	pct := current.Sub(previous).Mul(hundred).DivRound(previous, 8)
	rounded := pct.Shift(1).Add(decimal.NewFromFloat(0.5)).Floor().Shift(-1)
	return rounded.InexactFloat64()
}

func fallback(positive bool) int {
	if positive {
		return 100
	}
	return 0
}
