package collector

import (
	"context"
	"fmt"

	"KursPajak/internal/model"
)

// Fetcher retrieves the raw rate page for one week.
type Fetcher interface {
	Fetch(ctx context.Context, w model.WeekWindow) ([]byte, error)
	Name() string
}

// FetchFailure reports that a week's page could not be retrieved.
// StatusCode is zero for transport errors.
type FetchFailure struct {
	WeekCode   string
	StatusCode int
	Err        error
}

func (f *FetchFailure) Error() string {
	if f.StatusCode != 0 {
		return fmt.Sprintf("fetch week %s: status %d", f.WeekCode, f.StatusCode)
	}
	return fmt.Sprintf("fetch week %s: %v", f.WeekCode, f.Err)
}

func (f *FetchFailure) Unwrap() error { return f.Err }
