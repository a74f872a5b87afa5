package browser

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/jmylchreest/wxscrape/internal/logger"
)

// Common Chrome/Chromium binary names across different systems
var chromeBinaryNames = []string{
	"google-chrome-stable",
	"google-chrome",
	"chromium",
	"chromium-browser",
	"chrome",
	"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	"/Applications/Chromium.app/Contents/MacOS/Chromium",
	"/usr/bin/google-chrome-stable",
	"/usr/bin/chromium",
	"/snap/bin/chromium",
	`C:\Program Files\Google\Chrome\Application\chrome.exe`,
	`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
}

// FindChromePath searches PATH and the common install locations for a
// Chrome/Chromium binary. Returns empty string if none is found, in which
// case chromedp falls back to its own lookup.
func FindChromePath() string {
	for _, name := range chromeBinaryNames {
		if path, err := exec.LookPath(name); err == nil {
			logger.Debug("found Chrome binary", "name", name, "path", path)
			return path
		}
	}
	logger.Warn("no Chrome binary found, relying on chromedp default lookup")
	return ""
}

// allocatorOptions returns the Chrome flags for a scraping session.
func allocatorOptions(cfg Config) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-http2", true),

		// Anti-detection flags
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("enable-automation", false),
		chromedp.Flag("disable-infobars", true),

		chromedp.WindowSize(1920, 1080),
		chromedp.Flag("lang", "en-US,en"),
		chromedp.UserAgent(cfg.UserAgent),
	)

	chromePath := cfg.ChromePath
	if chromePath == "" {
		chromePath = FindChromePath()
	}
	if chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}
	return opts
}

// chromeTab is a tab backed by a chromedp browser context. Closing it
// cancels both the tab and its allocator, which kills the browser process.
type chromeTab struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// launchChrome starts a browser with one blank tab.
func launchChrome(cfg Config) func(ctx context.Context) (tab, error) {
	return func(ctx context.Context) (tab, error) {
		allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocatorOptions(cfg)...)
		tabCtx, cancelTab := chromedp.NewContext(allocCtx,
			chromedp.WithLogf(func(format string, args ...interface{}) {
				logger.Debug("chromedp", "msg", fmt.Sprintf(format, args...))
			}),
		)
		cancel := func() {
			cancelTab()
			cancelAlloc()
		}

		// the first Run starts the browser
		if err := chromedp.Run(tabCtx); err != nil {
			cancel()
			return nil, err
		}

		return &chromeTab{ctx: tabCtx, cancel: cancel}, nil
	}
}

// run executes actions on the tab, bounded by ctx's deadline and
// cancellation. Ending the run does not close the tab.
func (t *chromeTab) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(t.ctx)
	defer cancel()

	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return fmt.Errorf("%w: %v", ctx.Err(), err)
	}
	return err
}

func (t *chromeTab) AddScript(ctx context.Context, script string) error {
	return t.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(script).Do(ctx)
		return err
	}))
}

func (t *chromeTab) SetCookies(ctx context.Context, cookies []*network.CookieParam) error {
	if len(cookies) == 0 {
		return nil
	}
	return t.run(ctx, network.SetCookies(cookies))
}

func (t *chromeTab) Cookies(ctx context.Context) ([]*network.Cookie, error) {
	var cookies []*network.Cookie
	err := t.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		cookies, err = network.GetCookies().Do(ctx)
		return err
	}))
	return cookies, err
}

// Navigate issues Page.navigate and returns once the browser has committed
// to the new document. It does not wait for any load event.
func (t *chromeTab) Navigate(ctx context.Context, url string) error {
	return t.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var res page.NavigateReturns
		if err := cdp.Execute(ctx, page.CommandNavigate, page.Navigate(url), &res); err != nil {
			return err
		}
		if res.ErrorText != "" {
			return errors.New(res.ErrorText)
		}
		return nil
	}))
}

func (t *chromeTab) Eval(ctx context.Context, js string, out any) error {
	return t.run(ctx, chromedp.Evaluate(js, out))
}

func (t *chromeTab) WaitXPath(ctx context.Context, xpath string) error {
	return t.run(ctx, chromedp.WaitReady(xpath, chromedp.BySearch))
}

func (t *chromeTab) Close() {
	t.cancel()
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
