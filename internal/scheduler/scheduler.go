package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"KursPajak/internal/collector"
	"KursPajak/internal/exporter"
	"KursPajak/internal/model"
	"KursPajak/internal/notifier"
	"KursPajak/internal/recorder"
)

// ErrBusy is returned by RunNow while another run is in progress.
var ErrBusy = errors.New("a run is already in progress")

const sendRetries = 3

var specParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ValidateSpec checks a cron expression (5 or 6 fields, or a descriptor such as @weekly).
func ValidateSpec(spec string) error {
	_, err := specParser.Parse(spec)
	return err
}

// Messenger delivers chat messages and files.
type Messenger interface {
	Enabled() bool
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
	SendDocumentWithRetry(ctx context.Context, filename string, data []byte, caption string, maxRetries int) error
}

// Mailer delivers a summary with the export attached.
type Mailer interface {
	Enabled() bool
	Send(subject, body string, attachment *exporter.Payload) error
}

// Report is the outcome of one scheduled or manual run.
type Report struct {
	Result  *model.PipelineResult
	Payload *exporter.Payload
	Path    string
	Summary string
}

// Scheduler runs the scrape-export-deliver job on a cron schedule and on demand.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Exporter  *exporter.Exporter
	Recorder  recorder.Recorder
	Notifier  Messenger
	Mailer    Mailer
	Lookback  int
	Filename  string
	Logger    *slog.Logger

	runMu  sync.Mutex
	mu     sync.RWMutex
	last   *Report
	lastAt time.Time
}

// New creates a Scheduler whose cron entries fire in loc.
func New(col *collector.Collector, exp *exporter.Exporter, rec recorder.Recorder, msg Messenger, mail Mailer,
	lookback int, filename string, loc *time.Location, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.Local
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithParser(specParser), cron.WithLocation(loc)),
		Collector: col,
		Exporter:  exp,
		Recorder:  rec,
		Notifier:  msg,
		Mailer:    mail,
		Lookback:  lookback,
		Filename:  filename,
		Logger:    logger,
	}
}

// Register schedules the job. The job runs with ctx, so cancelling ctx aborts a
// scheduled run between weeks.
func (s *Scheduler) Register(ctx context.Context, spec string) error {
	if _, err := s.Cron.AddFunc(spec, func() {
		_, err := s.RunNow(ctx)
		s.logRunError("scheduled run", err)
	}); err != nil {
		return fmt.Errorf("register scrape task: %w", err)
	}
	s.Logger.Info("scrape task registered", slog.String("cron", spec))
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Logger.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Logger.Info("scheduler stopped")
}

// RunNow executes the whole job once: scrape, export, store and deliver.
// Delivery failures are logged and do not fail the run.
func (s *Scheduler) RunNow(ctx context.Context) (*Report, error) {
	if !s.runMu.TryLock() {
		return nil, ErrBusy
	}
	defer s.runMu.Unlock()
	return s.run(ctx)
}

// run does the work of RunNow; the caller holds runMu.
func (s *Scheduler) run(ctx context.Context) (*Report, error) {
	result, err := s.Collector.Run(ctx, s.Lookback, s.logProgress)
	if err != nil && result == nil {
		return nil, err
	}
	if err != nil {
		s.Logger.Warn("run interrupted, delivering partial result", slog.Any("error", err))
	}

	report := &Report{Result: result}
	if len(result.Records) > 0 {
		payload, expErr := s.Exporter.Export(result.Records, s.Filename)
		if expErr != nil {
			s.Logger.Error("export failed", slog.Any("error", expErr))
			err = errors.Join(err, expErr)
		} else {
			report.Payload = payload
			path, recErr := s.Recorder.RecordExport(payload)
			if recErr != nil {
				s.Logger.Error("store export", slog.Any("error", recErr))
			}
			report.Path = path
		}
	}
	report.Summary = notifier.FormatRunSummary(result, report.Payload)

	s.deliver(ctx, report)

	s.mu.Lock()
	s.last = report
	s.lastAt = time.Now()
	s.mu.Unlock()
	return report, err
}

func (s *Scheduler) deliver(ctx context.Context, r *Report) {
	if s.Notifier != nil && s.Notifier.Enabled() {
		if err := s.Notifier.SendWithRetry(ctx, r.Summary, sendRetries); err != nil {
			s.Logger.Error("send summary", slog.Any("error", err))
		}
		if r.Payload != nil {
			if err := s.Notifier.SendDocumentWithRetry(ctx, r.Payload.Filename, r.Payload.Data,
				notifier.FormatLabel(r.Payload), sendRetries); err != nil {
				s.Logger.Error("send export document", slog.Any("error", err))
			}
		}
	}
	if s.Mailer != nil && s.Mailer.Enabled() {
		subject := fmt.Sprintf("Kurs Pajak %s: %d records", r.Result.StartedAt.Format("2006-01-02"), len(r.Result.Records))
		if err := s.Mailer.Send(subject, notifier.FormatPlainSummary(r.Result, r.Payload), r.Payload); err != nil {
			s.Logger.Error("send email", slog.Any("error", err))
		}
	}
}

func (s *Scheduler) logRunError(what string, err error) {
	switch {
	case err == nil:
	case errors.Is(err, ErrBusy):
		s.Logger.Info(what+" skipped, previous run still in progress")
	default:
		s.Logger.Error(what+" failed", slog.Any("error", err))
	}
}

func (s *Scheduler) logProgress(p model.Progress) {
	s.Logger.Info("progress",
		slog.String("week", p.WeekCode),
		slog.Int("processed", p.Processed),
		slog.Int("total", p.Total),
		slog.String("percent", fmt.Sprintf("%.0f%%", p.Fraction*100)))
}

// LastReport returns the most recent report, or nil before the first run.
func (s *Scheduler) LastReport() *Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// HandleCommand processes a chat command and returns a reply.
// /run starts a run in the background; its summary is delivered when it finishes.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	var cmd string
	if fields := strings.Fields(command); len(fields) > 0 {
		cmd = strings.ToLower(fields[0])
	}
	if i := strings.IndexByte(cmd, '@'); i > 0 {
		cmd = cmd[:i]
	}

	switch cmd {
	case "/run":
		if !s.runMu.TryLock() {
			return "⏳ A run is already in progress."
		}
		go func() {
			defer s.runMu.Unlock()
			_, err := s.run(ctx)
			s.logRunError("manual run", err)
		}()
		return fmt.Sprintf("🚀 Scraping the last %d weeks...", s.Lookback)
	case "/status":
		s.mu.RLock()
		last, at := s.last, s.lastAt
		s.mu.RUnlock()
		if last == nil {
			return "No run has finished yet."
		}
		return fmt.Sprintf("Last run finished %s\n\n%s", at.Format("2006-01-02 15:04"), last.Summary)
	default:
		return "Available commands:\n• /run - scrape and export now\n• /status - last run summary"
	}
}
