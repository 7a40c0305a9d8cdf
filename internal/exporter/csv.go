package exporter

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"KursPajak/internal/model"
)

// CSVStrategy is the plain-text fallback.
type CSVStrategy struct{}

func (CSVStrategy) Name() string      { return "csv" }
func (CSVStrategy) Format() Format    { return FormatFallback }
func (CSVStrategy) Extension() string { return ".csv" }
func (CSVStrategy) MIMEType() string  { return "text/csv" }

func (CSVStrategy) Encode(records []model.RateRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(model.Columns); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, r := range records {
		if err := w.Write([]string{
			r.StartDate.String(),
			r.EndDate.String(),
			r.WeekCode,
			r.Currency,
			exportRate(r).String(),
		}); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
