package browser

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/chromedp/cdproto/network"

	"github.com/jmylchreest/wxscrape/internal/logger"
)

var (
	// ErrBrowserLaunch means Chrome could not be started.
	ErrBrowserLaunch = errors.New("browser launch failed")
	// ErrNavigation means the page did not reach DOM-ready in time or the
	// browser reported a navigation error.
	ErrNavigation = errors.New("navigation failed")
	// ErrCapture means the page loaded but its text could not be read.
	ErrCapture = errors.New("text capture failed")
	// ErrContentTooShort means the captured text is below the minimum
	// length, which usually indicates a block or challenge page.
	ErrContentTooShort = errors.New("page content too short")
)

// readyPollInterval is how often document.readyState is checked.
const readyPollInterval = 100 * time.Millisecond

// PageContent is the normalized text of one fetched page.
type PageContent struct {
	URL       string
	Title     string
	Text      string
	FetchedAt time.Time
}

// tab is the subset of browser operations the driver needs.
type tab interface {
	AddScript(ctx context.Context, script string) error
	SetCookies(ctx context.Context, cookies []*network.CookieParam) error
	Cookies(ctx context.Context) ([]*network.Cookie, error)
	Navigate(ctx context.Context, url string) error
	Eval(ctx context.Context, js string, out any) error
	WaitXPath(ctx context.Context, xpath string) error
	Close()
}

// Driver fetches page text with a fresh browser per call. It holds no
// browser between calls, so it is safe to keep for the life of a
// scheduler.
type Driver struct {
	cfg    Config
	launch func(ctx context.Context) (tab, error)
	sleep  func(ctx context.Context, d time.Duration) error
	now    func() time.Time
	log    *slog.Logger
}

// New creates a Driver. Zero fields in cfg take their defaults.
func New(cfg Config) *Driver {
	cfg = cfg.withDefaults()
	return &Driver{
		cfg:    cfg,
		launch: launchChrome(cfg),
		sleep:  sleepCtx,
		now:    time.Now,
		log:    logger.Component("browser"),
	}
}

// FetchPageText launches a browser, loads url and returns its visible text.
// The browser is released on every return path.
func (d *Driver) FetchPageText(ctx context.Context, url string) (PageContent, error) {
	result := PageContent{URL: url, FetchedAt: d.now()}

	d.log.Info("launching browser", "url", url, "headless", d.cfg.Headless)
	t, err := d.launch(ctx)
	if err != nil {
		return result, fmt.Errorf("%w: %v", ErrBrowserLaunch, err)
	}
	defer t.Close()

	state := d.loadSession(ctx, t)

	if d.cfg.Stealth {
		if err := t.AddScript(ctx, StealthScript); err != nil {
			d.log.Warn("stealth script injection failed", "error", err)
		}
	}

	if err := d.navigate(ctx, t, url); err != nil {
		return result, fmt.Errorf("%w: %s: %v", ErrNavigation, url, err)
	}

	d.interact(ctx, t)
	d.waitForMarker(ctx, t)

	var raw string
	if err := t.Eval(ctx, "document.body ? document.body.innerText : ''", &raw); err != nil {
		return result, fmt.Errorf("%w: %v", ErrCapture, err)
	}
	result.Text = NormalizeText(raw)
	if err := t.Eval(ctx, "document.title", &result.Title); err != nil {
		d.log.Debug("could not read page title", "error", err)
	}

	if challenge := detectChallengePage(result.Title, result.Text); challenge != "" {
		d.log.Warn("challenge page suspected", "url", url, "type", challenge)
	}

	chars := utf8.RuneCountInString(result.Text)
	if chars < d.cfg.MinTextLength {
		d.log.Warn("page text too short, possible block", "url", url, "chars", chars, "min", d.cfg.MinTextLength)
		return result, fmt.Errorf("%w: %d chars (min %d)", ErrContentTooShort, chars, d.cfg.MinTextLength)
	}

	if d.cfg.SaveSession && d.cfg.SessionStatePath != "" {
		d.saveSession(ctx, t, state)
	}

	d.log.Info("page text captured", "url", url, "title", result.Title, "chars", chars)
	return result, nil
}

// loadSession applies the state file to the tab. Problems with the file are
// logged and the run continues with a fresh session.
func (d *Driver) loadSession(ctx context.Context, t tab) *SessionState {
	if d.cfg.SessionStatePath == "" {
		return &SessionState{}
	}

	state, err := LoadSessionState(d.cfg.SessionStatePath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		d.log.Info("no session state file, starting fresh session", "path", d.cfg.SessionStatePath)
		return &SessionState{}
	case err != nil:
		d.log.Warn("unreadable session state, starting fresh session", "path", d.cfg.SessionStatePath, "error", err)
		return &SessionState{}
	}

	d.log.Info("using persisted session", "path", d.cfg.SessionStatePath, "cookies", len(state.Cookies), "origins", len(state.Origins))

	if err := t.SetCookies(ctx, state.cookieParams()); err != nil {
		d.log.Warn("could not restore cookies", "error", err)
	}
	if script := state.localStorageScript(); script != "" {
		if err := t.AddScript(ctx, script); err != nil {
			d.log.Warn("could not restore localStorage", "error", err)
		}
	}
	return state
}

// navigate loads url and waits until the DOM is ready, all within
// NavigationTimeout.
func (d *Driver) navigate(ctx context.Context, t tab, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, d.cfg.NavigationTimeout)
	defer cancel()

	d.log.Debug("navigating", "url", url, "timeout", d.cfg.NavigationTimeout)
	if err := t.Navigate(navCtx, url); err != nil {
		return err
	}

	// a redirect during load destroys the execution context, so a failed
	// readyState check only means not ready yet
	var lastErr error
	for {
		var state string
		err := t.Eval(navCtx, "document.readyState", &state)
		switch {
		case err == nil && (state == "interactive" || state == "complete"):
			return nil
		case err != nil && navCtx.Err() == nil:
			lastErr = err
			d.log.Debug("readyState check failed, retrying", "url", url, "error", err)
		}
		if err := d.sleep(navCtx, readyPollInterval); err != nil {
			if lastErr != nil {
				return fmt.Errorf("document not ready: %w (last error: %v)", err, lastErr)
			}
			return fmt.Errorf("document not ready (state %q): %w", state, err)
		}
	}
}

// interact scrolls down in growing steps, then back to the top, to trigger
// lazy loading. Failures are logged and ignored.
func (d *Driver) interact(ctx context.Context, t tab) {
	if d.cfg.ScrollSteps == 0 {
		return
	}
	d.log.Debug("simulating scroll interaction", "steps", d.cfg.ScrollSteps)

	for i := 0; i < d.cfg.ScrollSteps; i++ {
		if err := t.Eval(ctx, fmt.Sprintf("window.scrollBy(0, %d)", 500*i), nil); err != nil {
			d.log.Warn("scroll interaction failed, continuing", "error", err)
			return
		}
		if err := d.sleep(ctx, d.cfg.ScrollPause); err != nil {
			return
		}
	}
	if err := t.Eval(ctx, "window.scrollTo(0, 0)", nil); err != nil {
		d.log.Warn("scroll interaction failed, continuing", "error", err)
		return
	}
	_ = d.sleep(ctx, d.cfg.SettlePause)
}

// waitForMarker waits for a known forecast container. Timing out is not an
// error; the text is captured either way.
func (d *Driver) waitForMarker(ctx context.Context, t tab) {
	waitCtx, cancel := context.WithTimeout(ctx, d.cfg.SelectorTimeout)
	defer cancel()

	if err := t.WaitXPath(waitCtx, d.cfg.MarkerXPath); err != nil {
		d.log.Warn("forecast container not found, continuing with full page", "timeout", d.cfg.SelectorTimeout, "error", err)
	}
}

// saveSession writes the tab's cookies and the current origin's
// localStorage back to the state file.
func (d *Driver) saveSession(ctx context.Context, t tab, state *SessionState) {
	cookies, err := t.Cookies(ctx)
	if err != nil {
		d.log.Warn("could not read cookies for session save", "error", err)
		return
	}
	state.Cookies = storedCookies(cookies)

	var origin string
	var entries []StorageEntry
	if err := t.Eval(ctx, "location.origin", &origin); err == nil {
		if err := t.Eval(ctx, "Object.entries(localStorage).map(([name, value]) => ({name, value}))", &entries); err == nil {
			state.mergeOrigin(origin, entries)
		}
	}

	if err := SaveSessionState(d.cfg.SessionStatePath, state); err != nil {
		d.log.Warn("could not save session state", "error", err)
		return
	}
	d.log.Debug("session state saved", "path", d.cfg.SessionStatePath, "cookies", len(state.Cookies))
}
