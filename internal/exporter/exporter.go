/*
Package exporter serializes rate records into a downloadable spreadsheet.
Serialization strategies are tried in order and the first success wins.
*/
package exporter

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"KursPajak/internal/model"
)

// Format tells the caller which kind of payload was produced.
type Format string

const (
	FormatPrimary  Format = "primary"
	FormatFallback Format = "fallback"
)

// DefaultFilename is used when no filename hint is given.
const DefaultFilename = "kurs_pajak_records"

// ErrSerialization is returned when every strategy failed.
var ErrSerialization = errors.New("serialization failed")

// Payload is a serialized record set ready to be saved or sent.
type Payload struct {
	Data     []byte
	Format   Format
	Engine   string
	MIMEType string
	Filename string
	Rows     int
}

// Strategy encodes records into one file format.
type Strategy interface {
	Name() string
	Format() Format
	Extension() string
	MIMEType() string
	Encode(records []model.RateRecord) ([]byte, error)
}

// Exporter runs a chain of strategies.
type Exporter struct {
	Strategies []Strategy
	Logger     *slog.Logger
}

// New returns the default chain: XLSX via the cell API, XLSX via the stream
// writer, then CSV.
func New(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		Strategies: []Strategy{WorkbookStrategy{}, StreamStrategy{}, CSVStrategy{}},
		Logger:     logger,
	}
}

// Export serializes records with the first strategy that succeeds. filenameHint
// may carry any extension; the extension of the format actually used replaces it.
func (e *Exporter) Export(records []model.RateRecord, filenameHint string) (*Payload, error) {
	var errs []error
	for i, s := range e.Strategies {
		data, err := s.Encode(records)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			if i < len(e.Strategies)-1 {
				e.Logger.Warn("export strategy failed, trying next",
					slog.String("strategy", s.Name()),
					slog.String("next", e.Strategies[i+1].Name()),
					slog.Any("error", err))
			}
			continue
		}

		if s.Format() == FormatFallback {
			e.Logger.Warn("falling back to delimited text export", slog.String("strategy", s.Name()))
		}
		return &Payload{
			Data:     data,
			Format:   s.Format(),
			Engine:   s.Name(),
			MIMEType: s.MIMEType(),
			Filename: filename(filenameHint, s.Extension()),
			Rows:     len(records),
		}, nil
	}
	return nil, errors.Join(append([]error{ErrSerialization}, errs...)...)
}

func filename(hint, ext string) string {
	base := strings.TrimSpace(filepath.Base(hint))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = DefaultFilename
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return base + ext
}

// RateScale is the number of decimal places every format keeps for a rate.
// At this scale a float64 cell and the decimal text read back identically.
const RateScale = 4

func exportRate(r model.RateRecord) decimal.Decimal {
	return r.Rate.Round(RateScale)
}

// row renders a record in column order. Rates stay numeric for spreadsheets.
func row(r model.RateRecord) []interface{} {
	return []interface{}{
		r.StartDate.String(),
		r.EndDate.String(),
		r.WeekCode,
		r.Currency,
		exportRate(r).InexactFloat64(),
	}
}

func header() []interface{} {
	h := make([]interface{}, len(model.Columns))
	for i, c := range model.Columns {
		h[i] = c
	}
	return h
}
