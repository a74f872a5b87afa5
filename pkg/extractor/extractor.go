// Package extractor turns captured page text into a validated forecast
// document with a single schema-constrained model call.
package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sony/gobreaker"

	"github.com/jmylchreest/wxscrape/internal/logger"
	"github.com/jmylchreest/wxscrape/pkg/forecast"
	"github.com/jmylchreest/wxscrape/pkg/llm"
)

// Client runs extractions against one provider. It is safe for sequential
// reuse across scheduled runs; the circuit breaker state carries over.
type Client struct {
	provider llm.Provider
	config   Config
	breaker  *gobreaker.CircuitBreaker
	log      *slog.Logger
}

// New creates a Client for provider. Zero fields in cfg take their defaults.
func New(provider llm.Provider, cfg Config) *Client {
	cfg = cfg.withDefaults()

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "llm-" + provider.Name(),
		MaxRequests: 1,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		provider: provider,
		config:   cfg,
		breaker:  cb,
		log:      logger.Component("extractor"),
	}
}

// Extract never fails: any TryExtract error is logged and replaced by
// forecast.Default(sourceURL). This is the only place extraction failures
// are absorbed.
func (c *Client) Extract(ctx context.Context, pageText, sourceURL string) *forecast.Document {
	doc, err := c.TryExtract(ctx, pageText, sourceURL)
	if err != nil {
		c.log.Error("extraction failed, using default document",
			"url", sourceURL,
			"kind", string(KindOf(err)),
			"error", err)
		return forecast.Default(sourceURL)
	}
	return doc
}

// TryExtract performs one model call and returns the normalized, validated
// document or an *Error tagged with the failure kind.
func (c *Client) TryExtract(ctx context.Context, pageText, sourceURL string) (*forecast.Document, error) {
	prompt := BuildPrompt(pageText, sourceURL, c.config.MaxContentSize)

	c.log.Info("sending page text to model",
		"provider", c.provider.Name(),
		"model", c.provider.Model(),
		"chars", len(pageText),
		"prompt_size", humanize.Bytes(uint64(len(prompt))))

	resp, err := c.call(ctx, prompt)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Err: err}
	}

	c.log.Debug("model response received",
		"finish_reason", resp.FinishReason,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
		"duration", resp.Duration)

	doc, err := documentSchema.Decode([]byte(StripMarkdownCodeBlock(resp.Content)))
	if err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &Error{Kind: KindSchema, Err: err}
		}
		return nil, &Error{Kind: KindMalformedJSON, Err: err}
	}

	doc.Normalize(sourceURL)

	if errs := documentSchema.Validate(doc); len(errs) > 0 {
		return nil, &Error{Kind: KindSchema, Err: errs}
	}

	counts := doc.Counts()
	c.log.Info("extraction succeeded",
		"locations", counts.Locations,
		"hourly_groups", counts.HourlyGroups,
		"monthly_entries", counts.MonthlyEntries)

	return doc, nil
}

// call sends the request through the circuit breaker with the client-side
// timeout applied.
func (c *Client) call(ctx context.Context, prompt string) (*llm.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req := llm.Request{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
		JSONSchema:  documentSchema.ToJSONSchema(),
		StrictMode:  c.config.StrictMode,
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.provider.Execute(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%s: %w", c.provider.Name(), err)
		}
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() != nil {
			return nil, fmt.Errorf("model call exceeded %s: %w", c.config.Timeout.Round(time.Second), err)
		}
		return nil, err
	}

	resp, ok := result.(*llm.Response)
	if !ok || resp == nil {
		return nil, fmt.Errorf("empty response from %s", c.provider.Name())
	}
	return resp, nil
}
