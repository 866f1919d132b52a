package worker

import (
	"context"
	"time"

	"github.com/google/uuid"

	"sjsage522/pricechecker/internal"
	"sjsage522/pricechecker/internal/pricing"
	"sjsage522/pricechecker/logger"
	"sjsage522/pricechecker/pkg/errors"
	"sjsage522/pricechecker/services/metrics"
)

// ConfigSource provides the entries to check
type ConfigSource interface {
	EligibleEntries(ctx context.Context) ([]internal.ConfigEntry, error)
}

// Checker looks up the price of one URL; it never fails
type Checker interface {
	Check(ctx context.Context, url string) internal.PriceResult
}

// Sink receives the rows of a run in one batch
type Sink interface {
	EnsureHeader(ctx context.Context) error
	AppendRows(ctx context.Context, rows []internal.ResultRow) error
}

// Recorder gets a copy of the rows once the sink accepted them.
// Recorder failures are logged and never fail the run.
type Recorder interface {
	Name() string
	Record(ctx context.Context, runID string, rows []internal.ResultRow) error
}

// Summary describes a finished run
type Summary struct {
	RunID        string
	Date         string
	Eligible     int
	Rows         int
	Priced       int
	NotAvailable int
	FetchErrors  int
	Duration     time.Duration
}

// Worker runs one price check over all eligible config entries
type Worker struct {
	source    ConfigSource
	checker   Checker
	sink      Sink
	recorders []Recorder
	metrics   *metrics.Metrics
	log       *logger.Logger
	now       func() time.Time
}

// NewWorker creates a new worker. m may be nil.
func NewWorker(
	source ConfigSource,
	checker Checker,
	sink Sink,
	m *metrics.Metrics,
	recorders ...Recorder,
) *Worker {
	return &Worker{
		source:    source,
		checker:   checker,
		sink:      sink,
		recorders: recorders,
		metrics:   m,
		log:       logger.ForWorker(),
		now:       time.Now,
	}
}

// Run checks every eligible entry sequentially and appends the rows in input order.
// Only config and sink failures abort the run; nothing is written in that case.
func (w *Worker) Run(ctx context.Context) (summary *Summary, err error) {
	began := time.Now()
	summary = &Summary{
		RunID: uuid.NewString(),
		Date:  w.now().Format(pricing.DateLayout),
	}
	log := w.log.WithStr("run_id", summary.RunID)

	defer func() {
		summary.Duration = time.Since(began)
		if w.metrics != nil {
			w.metrics.ObserveRun(summary.Duration, err == nil)
		}
	}()

	log.Info().Msg("Starting price check")

	entries, err := w.source.EligibleEntries(ctx)
	if err != nil {
		if !errors.IsFatal(err) {
			err = errors.NewConfiguration("failed to load config entries", err)
		}
		return summary, err
	}
	summary.Eligible = len(entries)

	rows := make([]internal.ResultRow, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		result := w.checker.Check(ctx, entry.URL)
		row := pricing.BuildRow(summary.Date, entry.URL, result.Price, entry.ProductID, result.Domain)
		rows = append(rows, row)

		fetchFailed := pricing.IsFetchError(result.Price)
		w.count(summary, row, fetchFailed)

		event := log.Info()
		if fetchFailed {
			event = log.Warn().Str("error", result.Price)
		}
		event.
			Str("url", row.URL).
			Str("price", row.Price.String()).
			Str("product_id", row.ProductID).
			Str("domain", row.Domain).
			Msg("Checked price")
	}
	summary.Rows = len(rows)

	if err := ctx.Err(); err != nil {
		return summary, err
	}

	if err := w.sink.EnsureHeader(ctx); err != nil {
		return summary, wrapSink(err, "failed to prepare sink")
	}

	if len(rows) == 0 {
		log.Info().Msg("No data to write")
		return summary, nil
	}

	if err := w.sink.AppendRows(ctx, rows); err != nil {
		return summary, wrapSink(err, "failed to append rows")
	}

	w.record(ctx, summary.RunID, rows)

	log.Info().
		Int("rows", summary.Rows).
		Int("priced", summary.Priced).
		Int("not_available", summary.NotAvailable).
		Int("fetch_errors", summary.FetchErrors).
		Msg("Price check finished")

	return summary, nil
}

func (w *Worker) count(summary *Summary, row internal.ResultRow, fetchFailed bool) {
	if row.Price.Available {
		summary.Priced++
	} else {
		summary.NotAvailable++
	}
	if fetchFailed {
		summary.FetchErrors++
	}
	if w.metrics != nil {
		w.metrics.ObserveRow(row.Domain, row.Price.Available, fetchFailed)
	}
}

// record hands rows to every recorder; failures are only logged
func (w *Worker) record(ctx context.Context, runID string, rows []internal.ResultRow) {
	for _, r := range w.recorders {
		if err := r.Record(ctx, runID, rows); err != nil {
			logger.ForRecorder(r.Name()).Error().
				Err(errors.NewRecorder(r.Name(), "failed to record rows", err)).
				Str("run_id", runID).
				Msg("Recording failed")
			if w.metrics != nil {
				w.metrics.ObserveRecorderError(r.Name())
			}
		}
	}
}

func wrapSink(err error, message string) error {
	if errors.IsFatal(err) {
		return err
	}
	return errors.NewSheet("", message, err)
}
