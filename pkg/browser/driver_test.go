package browser

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTab scripts a page: readyState answers, body text and failures.
type fakeTab struct {
	readyStates []string // consumed in order; last one repeats
	readyErrs   []error  // returned by the first readyState checks
	body        string
	title       string

	navigateErr error
	bodyErr     error
	scrollErr   error
	waitErr     error

	scripts    []string
	cookiesSet []*network.CookieParam
	liveCookie []*network.Cookie
	evals      []string
	waited     []string
	navigated  []string
	closed     int
}

func (f *fakeTab) AddScript(_ context.Context, script string) error {
	f.scripts = append(f.scripts, script)
	return nil
}

func (f *fakeTab) SetCookies(_ context.Context, cookies []*network.CookieParam) error {
	f.cookiesSet = append(f.cookiesSet, cookies...)
	return nil
}

func (f *fakeTab) Cookies(context.Context) ([]*network.Cookie, error) {
	return f.liveCookie, nil
}

func (f *fakeTab) Navigate(_ context.Context, url string) error {
	f.navigated = append(f.navigated, url)
	return f.navigateErr
}

func (f *fakeTab) Eval(ctx context.Context, js string, out any) error {
	f.evals = append(f.evals, js)
	if err := ctx.Err(); err != nil {
		return err
	}
	switch {
	case js == "document.readyState":
		if len(f.readyErrs) > 0 {
			err := f.readyErrs[0]
			f.readyErrs = f.readyErrs[1:]
			return err
		}
		state := "complete"
		if len(f.readyStates) > 0 {
			state = f.readyStates[0]
			if len(f.readyStates) > 1 {
				f.readyStates = f.readyStates[1:]
			}
		}
		*out.(*string) = state
	case strings.Contains(js, "innerText"):
		if f.bodyErr != nil {
			return f.bodyErr
		}
		*out.(*string) = f.body
	case js == "document.title":
		*out.(*string) = f.title
	case js == "location.origin":
		*out.(*string) = "https://example.com"
	case strings.Contains(js, "localStorage"):
		return json.Unmarshal([]byte(`[{"name":"units","value":"metric"}]`), out)
	case strings.HasPrefix(js, "window.scroll"):
		return f.scrollErr
	}
	return nil
}

func (f *fakeTab) WaitXPath(_ context.Context, xpath string) error {
	f.waited = append(f.waited, xpath)
	return f.waitErr
}

func (f *fakeTab) Close() { f.closed++ }

func newTestDriver(t *testing.T, cfg Config, ft *fakeTab) *Driver {
	t.Helper()
	d := New(cfg)
	d.launch = func(context.Context) (tab, error) { return ft, nil }
	d.sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	return d
}

func testConfig(t *testing.T) Config {
	cfg := DefaultConfig()
	cfg.SessionStatePath = filepath.Join(t.TempDir(), "browser_state.json")
	return cfg
}

func longText() string {
	return strings.Repeat("Sampit  31°C\n\tHujan Ringan ", 40)
}

func TestFetchPageText_Success(t *testing.T) {
	ft := &fakeTab{readyStates: []string{"loading", "loading", "interactive"}, body: longText(), title: "Prakiraan Cuaca"}
	d := newTestDriver(t, testConfig(t), ft)

	page, err := d.FetchPageText(context.Background(), "https://example.com/62")
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/62", page.URL)
	assert.Equal(t, "Prakiraan Cuaca", page.Title)
	assert.NotContains(t, page.Text, "  ")
	assert.NotContains(t, page.Text, "\n")
	assert.True(t, strings.HasPrefix(page.Text, "Sampit 31°C Hujan Ringan Sampit"))
	assert.False(t, page.FetchedAt.IsZero())

	assert.Equal(t, []string{"https://example.com/62"}, ft.navigated)
	assert.Equal(t, []string{DefaultMarkerXPath}, ft.waited)
	assert.Equal(t, 1, ft.closed)
	require.Len(t, ft.scripts, 1, "stealth script only, no session file")
	assert.Equal(t, StealthScript, ft.scripts[0])
}

func TestFetchPageText_ScrollSequence(t *testing.T) {
	ft := &fakeTab{body: longText()}
	d := newTestDriver(t, testConfig(t), ft)

	_, err := d.FetchPageText(context.Background(), "https://example.com/")
	require.NoError(t, err)

	var scrolls []string
	for _, js := range ft.evals {
		if strings.HasPrefix(js, "window.scroll") {
			scrolls = append(scrolls, js)
		}
	}
	assert.Equal(t, []string{
		"window.scrollBy(0, 0)",
		"window.scrollBy(0, 500)",
		"window.scrollBy(0, 1000)",
		"window.scrollBy(0, 1500)",
		"window.scrollBy(0, 2000)",
		"window.scrollTo(0, 0)",
	}, scrolls)
}

func TestFetchPageText_ContentTooShort(t *testing.T) {
	ft := &fakeTab{body: strings.Repeat("x", 200)}
	d := newTestDriver(t, testConfig(t), ft)

	page, err := d.FetchPageText(context.Background(), "https://example.com/")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrContentTooShort)
	assert.Len(t, page.Text, 200)
	assert.Equal(t, 1, ft.closed, "browser must be released")
}

func TestFetchPageText_ContentTooShortCountsCharacters(t *testing.T) {
	// 300 characters but 600 bytes
	ft := &fakeTab{body: strings.Repeat("°", 300)}
	d := newTestDriver(t, testConfig(t), ft)

	_, err := d.FetchPageText(context.Background(), "https://example.com/")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrContentTooShort)
	assert.Contains(t, err.Error(), "300 chars")
}

func TestFetchPageText_ExactlyMinLengthPasses(t *testing.T) {
	ft := &fakeTab{body: strings.Repeat("y", 500)}
	d := newTestDriver(t, testConfig(t), ft)

	_, err := d.FetchPageText(context.Background(), "https://example.com/")
	require.NoError(t, err)
}

func TestFetchPageText_NavigationError(t *testing.T) {
	ft := &fakeTab{navigateErr: errors.New("net::ERR_NAME_NOT_RESOLVED")}
	d := newTestDriver(t, testConfig(t), ft)

	_, err := d.FetchPageText(context.Background(), "https://nowhere.invalid/")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNavigation)
	assert.Contains(t, err.Error(), "ERR_NAME_NOT_RESOLVED")
	assert.Equal(t, 1, ft.closed)
	assert.Empty(t, ft.waited, "no marker wait after failed navigation")
}

func TestFetchPageText_NavigationTimeout(t *testing.T) {
	ft := &fakeTab{readyStates: []string{"loading"}}
	cfg := testConfig(t)
	cfg.NavigationTimeout = 30 * time.Millisecond
	d := newTestDriver(t, cfg, ft)

	_, err := d.FetchPageText(context.Background(), "https://slow.example/")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNavigation)
	assert.Equal(t, 1, ft.closed)
}

func TestFetchPageText_ReadyStateErrorIsRetried(t *testing.T) {
	ft := &fakeTab{
		readyErrs:   []error{errors.New("Execution context was destroyed.")},
		readyStates: []string{"loading", "complete"},
		body:        longText(),
	}
	d := newTestDriver(t, testConfig(t), ft)

	_, err := d.FetchPageText(context.Background(), "https://example.com/")
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultMarkerXPath}, ft.waited)
}

func TestFetchPageText_ReadyStateErrorsUntilTimeout(t *testing.T) {
	destroyed := errors.New("Execution context was destroyed.")
	ft := &fakeTab{readyErrs: []error{destroyed, destroyed, destroyed}, readyStates: []string{"loading"}}
	cfg := testConfig(t)
	cfg.NavigationTimeout = 30 * time.Millisecond
	d := newTestDriver(t, cfg, ft)

	_, err := d.FetchPageText(context.Background(), "https://example.com/")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNavigation)
	assert.Contains(t, err.Error(), "Execution context was destroyed")
	assert.Equal(t, 1, ft.closed)
}

func TestFetchPageText_MarkerAndScrollFailuresAreNonFatal(t *testing.T) {
	ft := &fakeTab{
		body:      longText(),
		scrollErr: errors.New("execution context was destroyed"),
		waitErr:   context.DeadlineExceeded,
	}
	d := newTestDriver(t, testConfig(t), ft)

	page, err := d.FetchPageText(context.Background(), "https://example.com/")
	require.NoError(t, err)
	assert.NotEmpty(t, page.Text)
}

func TestFetchPageText_CaptureError(t *testing.T) {
	ft := &fakeTab{bodyErr: errors.New("target closed")}
	d := newTestDriver(t, testConfig(t), ft)

	_, err := d.FetchPageText(context.Background(), "https://example.com/")
	assert.ErrorIs(t, err, ErrCapture)
	assert.Equal(t, 1, ft.closed)
}

func TestFetchPageText_LaunchError(t *testing.T) {
	d := New(testConfig(t))
	d.launch = func(context.Context) (tab, error) { return nil, errors.New("chrome not found") }

	_, err := d.FetchPageText(context.Background(), "https://example.com/")
	assert.ErrorIs(t, err, ErrBrowserLaunch)
}

func TestFetchPageText_AppliesSessionState(t *testing.T) {
	cfg := testConfig(t)
	state := &SessionState{
		Cookies: []StoredCookie{{Name: "cf_clearance", Value: "abc", Domain: ".example.com", Path: "/", Expires: 1893456000, Secure: true, SameSite: "Lax"}},
		Origins: []OriginState{{Origin: "https://example.com", LocalStorage: []StorageEntry{{Name: "units", Value: "metric"}}}},
	}
	require.NoError(t, SaveSessionState(cfg.SessionStatePath, state))

	ft := &fakeTab{body: longText()}
	d := newTestDriver(t, cfg, ft)

	_, err := d.FetchPageText(context.Background(), "https://example.com/")
	require.NoError(t, err)

	require.Len(t, ft.cookiesSet, 1)
	assert.Equal(t, "cf_clearance", ft.cookiesSet[0].Name)
	assert.Equal(t, network.CookieSameSiteLax, ft.cookiesSet[0].SameSite)
	require.Len(t, ft.scripts, 2, "localStorage seed + stealth")
	assert.Contains(t, ft.scripts[0], `localStorage.setItem("units", "metric")`)
}

func TestFetchPageText_CorruptSessionStartsFresh(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.SessionStatePath, []byte("{not json"), 0o644))

	ft := &fakeTab{body: longText()}
	d := newTestDriver(t, cfg, ft)

	_, err := d.FetchPageText(context.Background(), "https://example.com/")
	require.NoError(t, err)
	assert.Empty(t, ft.cookiesSet)
}

func TestFetchPageText_SaveSession(t *testing.T) {
	cfg := testConfig(t)
	cfg.SaveSession = true

	ft := &fakeTab{
		body:       longText(),
		liveCookie: []*network.Cookie{{Name: "sid", Value: "42", Domain: "example.com", Path: "/", Expires: -1}},
	}
	d := newTestDriver(t, cfg, ft)

	_, err := d.FetchPageText(context.Background(), "https://example.com/")
	require.NoError(t, err)

	saved, err := LoadSessionState(cfg.SessionStatePath)
	require.NoError(t, err)
	require.Len(t, saved.Cookies, 1)
	assert.Equal(t, "sid", saved.Cookies[0].Name)
	require.Len(t, saved.Origins, 1)
	assert.Equal(t, "https://example.com", saved.Origins[0].Origin)
	assert.Equal(t, []StorageEntry{{Name: "units", Value: "metric"}}, saved.Origins[0].LocalStorage)
}

func TestFetchPageText_SessionNotSavedByDefault(t *testing.T) {
	cfg := testConfig(t)
	ft := &fakeTab{body: longText()}
	d := newTestDriver(t, cfg, ft)

	_, err := d.FetchPageText(context.Background(), "https://example.com/")
	require.NoError(t, err)

	_, err = os.Stat(cfg.SessionStatePath)
	assert.True(t, os.IsNotExist(err))
}
