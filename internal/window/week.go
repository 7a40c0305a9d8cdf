package window

import (
	"fmt"
	"iter"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"KursPajak/internal/model"
)

// DefaultAnchor is the weekday on which a tax-rate week starts.
const DefaultAnchor = time.Wednesday

// DefaultLookbackWeeks is the trailing period covered by a run.
const DefaultLookbackWeeks = 13

// Weeks yields one window per 7-day step from today-lookbackWeeks*7 up to today.
// Each raw date is moved forward (0..6 days) onto the anchor weekday, so a window
// may start after today. The sequence is lazy and can be ranged over repeatedly.
func Weeks(today civil.Date, lookbackWeeks int, anchor time.Weekday) iter.Seq[model.WeekWindow] {
	return func(yield func(model.WeekWindow) bool) {
		for d := today.AddDays(-7 * lookbackWeeks); !d.After(today); d = d.AddDays(7) {
			if !yield(Align(d, anchor)) {
				return
			}
		}
	}
}

// Count returns how many windows Weeks yields for the given lookback.
func Count(lookbackWeeks int) int {
	if lookbackWeeks < 0 {
		return 0
	}
	return lookbackWeeks + 1
}

// Align builds the window that starts on the first anchor weekday on or after d.
func Align(d civil.Date, anchor time.Weekday) model.WeekWindow {
	start := d.AddDays(offset(weekday(d), anchor))
	return model.WeekWindow{
		Start: start,
		End:   start.AddDays(6),
		Code:  CodeOf(start),
	}
}

// CodeOf formats the ISO week of d as "WWYYYY".
func CodeOf(d civil.Date) string {
	year, week := d.In(time.UTC).ISOWeek()
	return fmt.Sprintf("%02d%d", week, year)
}

func weekday(d civil.Date) time.Weekday {
	return d.In(time.UTC).Weekday()
}

func offset(from, to time.Weekday) int {
	return ((int(to)-int(from))%7 + 7) % 7
}

// ParseWeekday accepts English weekday names such as "wednesday" or "Wed".
func ParseWeekday(name string) (time.Weekday, error) {
	if len(name) >= 3 {
		prefix := strings.ToLower(name[:3])
		for d := time.Sunday; d <= time.Saturday; d++ {
			full := strings.ToLower(d.String())
			if prefix == full[:3] && strings.HasPrefix(full, strings.ToLower(name)) {
				return d, nil
			}
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", name)
}
