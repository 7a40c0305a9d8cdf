package model

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the only currency code extracted unless configured otherwise.
const DefaultCurrency = "USD"

// RateRecord is one normalized tax-conversion rate for a publication week.
type RateRecord struct {
	StartDate civil.Date
	EndDate   civil.Date
	WeekCode  string
	Currency  string
	Rate      decimal.Decimal
}

// Columns is the fixed column order used by every export format.
var Columns = []string{"START_DATE", "END_DATE", "WEEK_CODE", "CURRENCY", "KURS_PAJAK"}
