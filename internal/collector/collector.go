package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"KursPajak/internal/extractor"
	"KursPajak/internal/model"
	"KursPajak/internal/window"
)

// MaxLookbackWeeks bounds the trailing period a single run may cover.
const MaxLookbackWeeks = 52

// ErrInvalidLookback is returned before any request is made when the lookback
// is outside [0, MaxLookbackWeeks].
var ErrInvalidLookback = errors.New("invalid lookback")

// RecordExtractor turns one week's page into rate records.
type RecordExtractor interface {
	Extract(w model.WeekWindow, body []byte) ([]model.RateRecord, int, error)
}

// ProgressFunc receives a progress event after every processed window.
type ProgressFunc func(model.Progress)

// Collector runs the week-by-week scraping pipeline.
type Collector struct {
	Fetcher   Fetcher
	Extractor RecordExtractor
	Anchor    time.Weekday
	Location  *time.Location
	Clock     func() time.Time
	Logger    *slog.Logger
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, ext RecordExtractor, anchor time.Weekday, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{
		Fetcher:   fetcher,
		Extractor: ext,
		Anchor:    anchor,
		Location:  time.Local,
		Clock:     time.Now,
		Logger:    logger,
	}
}

// Run processes every window of the trailing lookback period in chronological
// order, one request at a time. Per-week problems are recorded in the result and
// never abort the run. The only errors are ErrInvalidLookback and, when ctx is
// cancelled between windows or during a fetch, ctx.Err() alongside the partial result.
func (c *Collector) Run(ctx context.Context, lookbackWeeks int, progress ProgressFunc) (*model.PipelineResult, error) {
	if lookbackWeeks < 0 || lookbackWeeks > MaxLookbackWeeks {
		return nil, fmt.Errorf("%w: %d weeks (allowed 0..%d)", ErrInvalidLookback, lookbackWeeks, MaxLookbackWeeks)
	}

	now := c.Clock().In(c.Location)
	total := window.Count(lookbackWeeks)
	result := &model.PipelineResult{
		RunID:       uuid.NewString(),
		StartedAt:   now,
		WindowCount: total,
	}
	log := c.Logger.With(slog.String("run_id", result.RunID))
	log.Info("pipeline started",
		slog.String("source", c.Fetcher.Name()),
		slog.Int("lookback_weeks", lookbackWeeks),
		slog.Int("windows", total))

	processed := 0
	for w := range window.Weeks(civil.DateOf(now), lookbackWeeks, c.Anchor) {
		if err := ctx.Err(); err != nil {
			return c.cancelled(log, result, processed, err)
		}

		outcome, err := c.processWeek(ctx, w)
		if err != nil {
			return c.cancelled(log, result, processed, err)
		}
		switch outcome.Status {
		case model.OutcomeFetchFailed:
			result.FailedWeeks = append(result.FailedWeeks, w.Code)
			log.Warn("week fetch failed", slog.String("week", w.Code), slog.Any("error", outcome.Err))
		case model.OutcomeNoData:
			result.EmptyWeeks = append(result.EmptyWeeks, w.Code)
			log.Warn("no currency data found for week, skipping", slog.String("week", w.Code))
		case model.OutcomeSuccess:
			result.Records = append(result.Records, outcome.Records...)
		}
		result.DroppedRows += outcome.Dropped

		processed++
		if progress != nil {
			progress(model.Progress{
				Processed: processed,
				Total:     total,
				Fraction:  fraction(processed, total),
				WeekCode:  w.Code,
			})
		}
	}

	result.FinishedAt = c.Clock()
	log.Info("pipeline finished",
		slog.Int("records", len(result.Records)),
		slog.Int("failed_weeks", len(result.FailedWeeks)),
		slog.Int("empty_weeks", len(result.EmptyWeeks)),
		slog.Int("dropped_rows", result.DroppedRows))
	return result, nil
}

func (c *Collector) cancelled(log *slog.Logger, result *model.PipelineResult, processed int, err error) (*model.PipelineResult, error) {
	result.FinishedAt = c.Clock()
	log.Warn("pipeline cancelled", slog.Int("processed", processed), slog.Any("error", err))
	return result, err
}

// processWeek returns an error only when ctx ended while the week was in flight;
// the week is then neither a failure nor a success.
func (c *Collector) processWeek(ctx context.Context, w model.WeekWindow) (model.WeekOutcome, error) {
	body, err := c.Fetcher.Fetch(ctx, w)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return model.WeekOutcome{}, ctxErr
		}
		return model.WeekOutcome{Window: w, Status: model.OutcomeFetchFailed, Err: err}, nil
	}

	records, dropped, err := c.Extractor.Extract(w, body)
	switch {
	case errors.Is(err, extractor.ErrNoDataForWeek):
		return model.WeekOutcome{Window: w, Status: model.OutcomeNoData, Err: err}, nil
	case err != nil:
		return model.WeekOutcome{Window: w, Status: model.OutcomeFetchFailed, Err: err}, nil
	}
	return model.WeekOutcome{Window: w, Status: model.OutcomeSuccess, Records: records, Dropped: dropped}, nil
}

func fraction(processed, total int) float64 {
	if total <= 0 {
		return 1
	}
	f := float64(processed) / float64(total)
	return min(max(f, 0), 1)
}
