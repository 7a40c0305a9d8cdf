/*
Package extractor turns kurs pajak pages into rate records.
*/
package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/net/html"

	"KursPajak/internal/model"
)

// ErrNoDataForWeek is returned when a page contains no rate rows at all.
var ErrNoDataForWeek = errors.New("no rate rows for week")

// Extractor pulls the configured currency out of a page.
type Extractor struct {
	Locator  Locator
	Currency string
	Logger   *slog.Logger
}

// New creates an Extractor for currency using the Kemenkeu page layout.
func New(currency string, logger *slog.Logger) *Extractor {
	if currency == "" {
		currency = model.DefaultCurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{Locator: KemenkeuLocator, Currency: currency, Logger: logger}
}

// Extract parses body and returns the accepted records for w together with the
// number of matching rows dropped because their value was malformed.
// A page without rows yields ErrNoDataForWeek.
func (e *Extractor) Extract(w model.WeekWindow, body []byte) ([]model.RateRecord, int, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("parse page for week %s: %w", w.Code, err)
	}

	rows := e.Locator.Rows(doc)
	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("%w %s", ErrNoDataForWeek, w.Code)
	}

	var records []model.RateRecord
	dropped := 0
	for _, row := range rows {
		label, ok := e.Locator.CurrencyLabel(row)
		if !ok || !strings.Contains(label, e.Currency) {
			continue
		}

		valueText, ok := e.Locator.Value(row)
		if !ok {
			valueText = NotAvailable
		}

		rate, err := ParseLocaleDecimal(valueText)
		if err != nil {
			dropped++
			e.Logger.Warn("dropping row with malformed value",
				slog.String("week", w.Code),
				slog.String("currency", e.Currency),
				slog.String("value", valueText),
				slog.Any("error", err))
			continue
		}

		records = append(records, model.RateRecord{
			StartDate: w.Start,
			EndDate:   w.End,
			WeekCode:  w.Code,
			Currency:  e.Currency,
			Rate:      rate,
		})
	}
	return records, dropped, nil
}
