package notifier

import (
	"fmt"
	"html"
	"strings"

	"KursPajak/internal/calculator"
	"KursPajak/internal/exporter"
	"KursPajak/internal/model"
)

// FormatRunSummary formats a finished run for Telegram (HTML parse mode).
// An empty result and a run with failed weeks are reported differently.
func FormatRunSummary(result *model.PipelineResult, payload *exporter.Payload) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>Kurs Pajak</b> | %s\n\n", result.StartedAt.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Minggu diproses: %d\n", result.WindowCount))
	b.WriteString(fmt.Sprintf("Data kurs: %d\n", len(result.Records)))

	if n := len(result.Records); n > 0 {
		first, last := result.Records[0], result.Records[n-1]
		b.WriteString(fmt.Sprintf("Periode: %s s.d. %s\n", first.StartDate, last.EndDate))
		b.WriteString(fmt.Sprintf("Kurs terbaru (%s, minggu %s): %s\n",
			last.Currency, last.WeekCode, last.Rate.StringFixed(2)))
		writeTrend(&b, result.Records)
	}
	if len(result.EmptyWeeks) > 0 {
		b.WriteString(fmt.Sprintf("Tanpa data: %s\n", strings.Join(result.EmptyWeeks, ", ")))
	}
	if result.DroppedRows > 0 {
		b.WriteString(fmt.Sprintf("Baris tidak valid: %d\n", result.DroppedRows))
	}
	b.WriteString("\n")

	switch result.Status() {
	case model.RunEmpty:
		b.WriteString("❌ No data was scraped. Ensure the source website is accessible.")
		if len(result.FailedWeeks) > 0 {
			b.WriteString(fmt.Sprintf("\nFailed to fetch data for %d weeks.", len(result.FailedWeeks)))
		}
		return b.String()
	case model.RunPartial:
		b.WriteString(fmt.Sprintf("⚠️ Failed to fetch data for %d weeks: %s\n",
			len(result.FailedWeeks), strings.Join(result.FailedWeeks, ", ")))
	default:
		b.WriteString("✅ Scraping complete with no errors.\n")
	}

	if payload != nil {
		b.WriteString(fmt.Sprintf("📎 %s\n", html.EscapeString(FormatLabel(payload))))
	}
	return strings.TrimRight(b.String(), "\n")
}

// trendWeeks is the moving-average window shown in summaries.
const trendWeeks = 4

func writeTrend(b *strings.Builder, records []model.RateRecord) {
	if low, high, err := calculator.RateRange(records); err == nil && len(records) > 1 {
		pos, _ := calculator.RangePosition(records[len(records)-1].Rate, low, high)
		b.WriteString(fmt.Sprintf("Rentang: %s s.d. %s (posisi %.0f%%)\n", low.StringFixed(2), high.StringFixed(2), pos*100))
	}
	if avg, err := calculator.AverageRate(records, trendWeeks); err == nil && len(records) >= trendWeeks {
		b.WriteString(fmt.Sprintf("Rata-rata %d minggu: %s\n", trendWeeks, avg.StringFixed(2)))
	}
	if change, err := calculator.WeeklyChange(records); err == nil {
		b.WriteString(fmt.Sprintf("Perubahan mingguan: %s%%\n", signed(change.StringFixed(2))))
	}
}

func signed(s string) string {
	if strings.HasPrefix(s, "-") {
		return s
	}
	return "+" + s
}

// FormatLabel names the export the way a download button would.
func FormatLabel(p *exporter.Payload) string {
	if p.Format == exporter.FormatFallback {
		return fmt.Sprintf("%s (CSV, Excel format unavailable)", p.Filename)
	}
	return fmt.Sprintf("%s (Excel)", p.Filename)
}

// FormatPlainSummary is the e-mail body version of FormatRunSummary.
func FormatPlainSummary(result *model.PipelineResult, payload *exporter.Payload) string {
	replacer := strings.NewReplacer("<b>", "", "</b>", "")
	return html.UnescapeString(replacer.Replace(FormatRunSummary(result, payload)))
}
