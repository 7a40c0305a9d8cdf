package calculator

import (
	"errors"

	"github.com/shopspring/decimal"

	"KursPajak/internal/model"
)

// SMA computes the simple moving average of the last period rates.
func SMA(rates []decimal.Decimal, period int) (decimal.Decimal, error) {
	if period <= 0 {
		return decimal.Zero, errors.New("period must be positive")
	}
	if len(rates) < period {
		return decimal.Zero, errors.New("not enough data for SMA calculation")
	}
	return decimal.Avg(rates[len(rates)-period], rates[len(rates)-period+1:]...), nil
}

// AverageRate returns the mean rate of the last weeks records, or of all records
// when fewer are available.
func AverageRate(records []model.RateRecord, weeks int) (decimal.Decimal, error) {
	if len(records) == 0 {
		return decimal.Zero, ErrNoRecords
	}
	return SMA(rates(records), min(weeks, len(records)))
}

func rates(records []model.RateRecord) []decimal.Decimal {
	out := make([]decimal.Decimal, len(records))
	for i, r := range records {
		out[i] = r.Rate
	}
	return out
}
