package bmkg

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/jmylchreest/wxscrape/internal/logger"
)

// DefaultURL is the Central Kalimantan province forecast page.
const DefaultURL = "https://www.bmkg.go.id/cuaca/prakiraan-cuaca/62"

// FetchConfig holds configuration for the static fetcher.
type FetchConfig struct {
	UserAgent string
	Timeout   time.Duration
}

// Desktop Chrome user agent; the site rejects the default Go one.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DefaultFetchConfig returns sensible defaults.
func DefaultFetchConfig() FetchConfig {
	return FetchConfig{
		UserAgent: defaultUserAgent,
		Timeout:   30 * time.Second,
	}
}

// Fetch downloads url with Colly and parses it into a goquery document.
func Fetch(ctx context.Context, url string, cfg FetchConfig) (*goquery.Document, error) {
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultFetchConfig().Timeout
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger.Debug("static fetch starting", "url", url)

	// Create a new collector for each request
	c := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(cfg.Timeout)

	var (
		body     []byte
		fetchErr error
	)

	c.OnResponse(func(r *colly.Response) {
		body = r.Body
		logger.Debug("static fetch response received",
			"status", r.StatusCode,
			"content_type", r.Headers.Get("Content-Type"),
			"body_size", len(r.Body))
	})

	c.OnError(func(r *colly.Response, err error) {
		statusCode := 0
		if r != nil {
			statusCode = r.StatusCode
		}
		fetchErr = fmt.Errorf("fetch error (status %d): %w", statusCode, err)
	})

	if err := c.Visit(url); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("failed to visit URL: %w", err)
	}
	if fetchErr != nil {
		return nil, fetchErr
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse content: %w", err)
	}
	return doc, nil
}
