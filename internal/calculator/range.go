package calculator

import (
	"errors"

	"github.com/shopspring/decimal"

	"KursPajak/internal/model"
)

// ErrNoRecords is returned when a statistic needs at least one rate.
var ErrNoRecords = errors.New("no rate records provided")

// RateRange returns the lowest and highest rate in records.
func RateRange(records []model.RateRecord) (low, high decimal.Decimal, err error) {
	if len(records) == 0 {
		return decimal.Zero, decimal.Zero, ErrNoRecords
	}
	low, high = records[0].Rate, records[0].Rate
	for _, r := range records[1:] {
		low = decimal.Min(low, r.Rate)
		high = decimal.Max(high, r.Rate)
	}
	return low, high, nil
}

// RangePosition returns where current sits within [low, high] (0.0~1.0).
func RangePosition(current, low, high decimal.Decimal) (float64, error) {
	if high.Equal(low) {
		return 0.5, nil
	}
	if high.LessThan(low) {
		return 0, errors.New("high must be >= low")
	}
	pos := current.Sub(low).Div(high.Sub(low)).InexactFloat64()
	return min(max(pos, 0), 1), nil
}

// WeeklyChange returns the percentage change of the latest rate against the one
// published the week before. records must be in chronological order.
func WeeklyChange(records []model.RateRecord) (decimal.Decimal, error) {
	if len(records) < 2 {
		return decimal.Zero, errors.New("need two weeks for a change")
	}
	prev, last := records[len(records)-2].Rate, records[len(records)-1].Rate
	if prev.IsZero() {
		return decimal.Zero, errors.New("previous rate is zero")
	}
	return last.Sub(prev).Div(prev).Mul(decimal.NewFromInt(100)).Round(2), nil
}
