package extractor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// NotAvailable is the value used when a row has no value element.
const NotAvailable = "N/A"

// ErrMalformedValue marks a row value that cannot become a rate.
var ErrMalformedValue = errors.New("malformed value")

// ParseLocaleDecimal parses numbers written with "." as thousands separator and
// "," as decimal separator, e.g. "16.123,45". The result must be positive.
//
// The rule mirrors how the source page formats numbers today; a page switching
// to "1,234.56" would be misread, not rejected.
func ParseLocaleDecimal(raw string) (decimal.Decimal, error) {
	text := strings.TrimSpace(raw)
	if text == "" || strings.EqualFold(text, NotAvailable) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrMalformedValue, raw)
	}

	normalized := strings.ReplaceAll(text, ".", "")
	normalized = strings.ReplaceAll(normalized, ",", ".")

	value, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q: %v", ErrMalformedValue, raw, err)
	}
	if !value.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %q is not positive", ErrMalformedValue, raw)
	}
	return value, nil
}
