package pipeline

import (
	"context"
	"time"

	"github.com/jmylchreest/wxscrape/internal/history"
	"github.com/jmylchreest/wxscrape/pkg/browser"
	"github.com/jmylchreest/wxscrape/pkg/export"
	"github.com/jmylchreest/wxscrape/pkg/forecast"
)

// Fetcher captures the visible text of a page.
type Fetcher interface {
	FetchPageText(ctx context.Context, url string) (browser.PageContent, error)
}

// Extractor turns page text into a document. It must not fail.
type Extractor interface {
	Extract(ctx context.Context, pageText, sourceURL string) *forecast.Document
}

// Exporter writes a document to disk.
type Exporter interface {
	Export(doc *forecast.Document) (export.Paths, error)
}

// Recorder stores the outcome of a run.
type Recorder interface {
	Record(ctx context.Context, run history.Run) (string, error)
}

// Option configures a Runner.
type Option func(*Runner)

// WithFetcher sets the page fetcher.
func WithFetcher(f Fetcher) Option {
	return func(r *Runner) {
		r.fetcher = f
	}
}

// WithExtractor sets the extraction client.
func WithExtractor(e Extractor) Option {
	return func(r *Runner) {
		r.extractor = e
	}
}

// WithExporter sets the exporter.
func WithExporter(e Exporter) Option {
	return func(r *Runner) {
		r.exporter = e
	}
}

// WithRecorder sets the run ledger. Without one, runs are not recorded.
func WithRecorder(rec Recorder) Option {
	return func(r *Runner) {
		r.recorder = rec
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}
