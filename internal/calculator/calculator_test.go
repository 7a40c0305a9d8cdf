package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"KursPajak/internal/model"
)

func makeRecords(values ...string) []model.RateRecord {
	out := make([]model.RateRecord, len(values))
	for i, v := range values {
		out[i] = model.RateRecord{Rate: decimal.RequireFromString(v)}
	}
	return out
}

func TestSMA(t *testing.T) {
	rates := []decimal.Decimal{decimal.NewFromInt(10), decimal.NewFromInt(20), decimal.NewFromInt(30)}

	got, err := SMA(rates, 2)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(25)), got.String())

	_, err = SMA(rates, 4)
	assert.Error(t, err)
	_, err = SMA(rates, 0)
	assert.Error(t, err)
}

func TestAverageRate(t *testing.T) {
	records := makeRecords("15000", "15600", "15900")

	got, err := AverageRate(records, 2)
	require.NoError(t, err)
	assert.Equal(t, "15750", got.String())

	got, err = AverageRate(records, 10)
	require.NoError(t, err)
	assert.Equal(t, "15500", got.String())

	_, err = AverageRate(nil, 4)
	assert.ErrorIs(t, err, ErrNoRecords)
}

func TestRateRange(t *testing.T) {
	low, high, err := RateRange(makeRecords("15655.5", "15123.45", "16001"))
	require.NoError(t, err)
	assert.Equal(t, "15123.45", low.String())
	assert.Equal(t, "16001", high.String())

	_, _, err = RateRange(nil)
	assert.ErrorIs(t, err, ErrNoRecords)
}

func TestRangePosition(t *testing.T) {
	d := decimal.NewFromInt
	pos, err := RangePosition(d(15), d(10), d(20))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, pos, 1e-9)

	pos, err = RangePosition(d(25), d(10), d(20))
	require.NoError(t, err)
	assert.Equal(t, 1.0, pos)

	pos, err = RangePosition(d(10), d(10), d(10))
	require.NoError(t, err)
	assert.Equal(t, 0.5, pos)

	_, err = RangePosition(d(10), d(20), d(10))
	assert.Error(t, err)
}

func TestWeeklyChange(t *testing.T) {
	got, err := WeeklyChange(makeRecords("15000", "16000", "15200"))
	require.NoError(t, err)
	assert.Equal(t, "-5", got.String())

	_, err = WeeklyChange(makeRecords("15000"))
	assert.Error(t, err)
}
