// Package pipeline wires one forecast run together: fetch the page, extract
// a document, export it and record the outcome.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmylchreest/wxscrape/internal/history"
	"github.com/jmylchreest/wxscrape/internal/logger"
	"github.com/jmylchreest/wxscrape/pkg/export"
	"github.com/jmylchreest/wxscrape/pkg/forecast"
)

// ErrNotConfigured is returned by New when a required stage is missing.
var ErrNotConfigured = errors.New("pipeline not configured")

// Result describes one run.
type Result struct {
	RunID    string
	URL      string
	Status   history.Status
	Document *forecast.Document
	Paths    export.Paths
	Counts   forecast.Counts

	FetchDuration   time.Duration
	ExtractDuration time.Duration

	// Err holds the fetch failure for fetch_failed runs. It is not returned
	// from Run.
	Err error
}

// Runner executes runs. A Runner is used by one goroutine at a time.
type Runner struct {
	fetcher   Fetcher
	extractor Extractor
	exporter  Exporter
	recorder  Recorder
	now       func() time.Time
	log       *slog.Logger
}

// New creates a Runner. Fetcher, extractor and exporter are required.
func New(opts ...Option) (*Runner, error) {
	r := &Runner{now: time.Now}
	for _, opt := range opts {
		opt(r)
	}

	switch {
	case r.fetcher == nil:
		return nil, fmt.Errorf("%w: no fetcher", ErrNotConfigured)
	case r.extractor == nil:
		return nil, fmt.Errorf("%w: no extractor", ErrNotConfigured)
	case r.exporter == nil:
		return nil, fmt.Errorf("%w: no exporter", ErrNotConfigured)
	}

	r.log = logger.Component("pipeline")
	return r, nil
}

// Run processes url once. Fetch failures and empty extractions are logged,
// recorded and reported through Result with a nil error. Only export
// failures and a cancelled context are returned as errors.
func (r *Runner) Run(ctx context.Context, url string) (Result, error) {
	started := r.now()
	res := Result{URL: url}

	r.log.Info("run started", "url", url)

	page, err := r.fetcher.FetchPageText(ctx, url)
	res.FetchDuration = r.now().Sub(started)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, ctxErr
		}
		r.log.Error("fetch failed, skipping extraction", "url", url, "error", err)
		res.Status = history.StatusFetchFailed
		res.Err = err
		r.record(ctx, &res, started, err.Error())
		return res, nil
	}

	extractStart := r.now()
	doc := r.extractor.Extract(ctx, page.Text, url)
	res.ExtractDuration = r.now().Sub(extractStart)
	res.Document = doc
	res.Counts = doc.Counts()

	if doc.Empty() {
		r.log.Warn("no usable forecast data extracted, nothing exported", "url", url)
		res.Status = history.StatusNoData
		r.record(ctx, &res, started, "")
		return res, nil
	}

	paths, err := r.exporter.Export(doc)
	res.Paths = paths
	if err != nil {
		res.Status = history.StatusExportFailed
		r.record(ctx, &res, started, err.Error())
		return res, fmt.Errorf("export: %w", err)
	}

	res.Status = history.StatusOK
	r.record(ctx, &res, started, "")

	r.log.Info("run complete",
		"url", url,
		"preview", Preview(res.Counts),
		"files", len(paths.All()),
		"duration", r.now().Sub(started).Round(time.Millisecond))
	return res, nil
}

// record writes the run to the ledger, if any. Ledger errors are logged
// only; they never fail a run.
func (r *Runner) record(ctx context.Context, res *Result, started time.Time, errText string) {
	if r.recorder == nil {
		return
	}

	id, err := r.recorder.Record(context.WithoutCancel(ctx), history.Run{
		URL:        res.URL,
		StartedAt:  started,
		FinishedAt: r.now(),
		Status:     res.Status,
		Counts:     res.Counts,
		JSONPath:   res.Paths.JSON,
		Error:      errText,
	})
	if err != nil {
		r.log.Warn("failed to record run", "url", res.URL, "error", err)
		return
	}
	res.RunID = id
}

// Preview summarizes counts as a one-line string.
func Preview(c forecast.Counts) string {
	return fmt.Sprintf("%d locations, %d hourly groups, %d monthly entries",
		c.Locations, c.HourlyGroups, c.MonthlyEntries)
}
