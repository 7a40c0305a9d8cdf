package extractor

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"KursPajak/internal/model"
)

var testWindow = model.WeekWindow{
	Start: civil.Date{Year: 2024, Month: time.February, Day: 7},
	End:   civil.Date{Year: 2024, Month: time.February, Day: 13},
	Code:  "062024",
}

func row(label, value string) string {
	valueDiv := ""
	if value != "" {
		valueDiv = fmt.Sprintf(`<div class="m-l-5">%s</div>`, value)
	}
	return fmt.Sprintf(`<tr class="table-bordered text-center">
  <td>1</td>
  <td><img src="flag.png"><span class="hidden-xs">%s</span></td>
  <td><div class="pull-left">%s</div></td>
</tr>`, label, valueDiv)
}

func page(rows ...string) []byte {
	return []byte(`<html><body><table class="table"><tbody>` + strings.Join(rows, "\n") + `</tbody></table></body></html>`)
}

func newTestExtractor(buf *bytes.Buffer) *Extractor {
	return New("USD", slog.New(slog.NewTextHandler(buf, nil)))
}

func TestExtract_FiltersCurrency(t *testing.T) {
	var logs bytes.Buffer
	e := newTestExtractor(&logs)

	body := page(
		row("Dolar Amerika Serikat (USD)", "16.123,45"),
		row("Euro (EUR)", "17.001,10"),
	)
	records, dropped, err := e.Extract(testWindow, body)
	require.NoError(t, err)
	assert.Zero(t, dropped)
	require.Len(t, records, 1)

	r := records[0]
	assert.True(t, decimal.RequireFromString("16123.45").Equal(r.Rate), "got %s", r.Rate)
	assert.Equal(t, "USD", r.Currency)
	assert.Equal(t, testWindow.Start, r.StartDate)
	assert.Equal(t, testWindow.End, r.EndDate)
	assert.Equal(t, "062024", r.WeekCode)
	assert.Empty(t, logs.String())
}

func TestExtract_NoRows(t *testing.T) {
	e := newTestExtractor(&bytes.Buffer{})
	records, dropped, err := e.Extract(testWindow, []byte(`<html><body><p>Data tidak ditemukan</p></body></html>`))
	assert.ErrorIs(t, err, ErrNoDataForWeek)
	assert.Empty(t, records)
	assert.Zero(t, dropped)
}

func TestExtract_MalformedRowsAreDropped(t *testing.T) {
	var logs bytes.Buffer
	e := newTestExtractor(&logs)

	body := page(
		row("USD", "N/A"),
		row("USD", "n/a"),
		row("USD", ""), // no value element
		row("USD", "abc"),
		row("USD", "15.900,00"),
	)
	records, dropped, err := e.Extract(testWindow, body)
	require.NoError(t, err)
	assert.Equal(t, 4, dropped)
	require.Len(t, records, 1)
	assert.Equal(t, "15900", records[0].Rate.String())
	assert.Equal(t, 4, strings.Count(logs.String(), "msg=\"dropping row with malformed value\""))
}

func TestExtract_RowsWithoutLabelAreSkipped(t *testing.T) {
	e := newTestExtractor(&bytes.Buffer{})
	body := page(`<tr class="table-bordered"><td><div class="m-l-5">1,00</div></td></tr>`)

	records, dropped, err := e.Extract(testWindow, body)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Zero(t, dropped)
}

func TestExtract_OtherCurrency(t *testing.T) {
	e := New("JPY", nil)
	body := page(row("USD", "16.000,00"), row("Yen Jepang (JPY)", "104,12"))

	records, _, err := e.Extract(testWindow, body)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "JPY", records[0].Currency)
	assert.Equal(t, "104.12", records[0].Rate.String())
}

func TestClassLocator_MatchesClassTokens(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(`<table>
<tr class="table-bordered-x"><td>no</td></tr>
<tr class="a table-bordered b"><td>yes</td></tr>
</table>`))
	require.NoError(t, err)

	rows := KemenkeuLocator.Rows(doc)
	require.Len(t, rows, 1)
	assert.Equal(t, "yes", strings.TrimSpace(extractText(rows[0])))
}

type fixedLocator struct{ label, value string }

func (l fixedLocator) Rows(doc *html.Node) []*html.Node         { return []*html.Node{doc} }
func (l fixedLocator) CurrencyLabel(*html.Node) (string, bool) { return l.label, true }
func (l fixedLocator) Value(*html.Node) (string, bool)         { return l.value, true }

func TestExtract_CustomLocator(t *testing.T) {
	e := New("USD", nil)
	e.Locator = fixedLocator{label: "USD", value: "1.000,5"}

	records, _, err := e.Extract(testWindow, []byte("<p>anything</p>"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "1000.5", records[0].Rate.String())
}
