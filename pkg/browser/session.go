package browser

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
)

// SessionState is the persisted browser session: cookies plus per-origin
// localStorage. The layout matches the storage-state files written by
// Playwright, so existing state files can be reused as is.
type SessionState struct {
	Cookies []StoredCookie `json:"cookies"`
	Origins []OriginState  `json:"origins"`
}

// StoredCookie is one cookie. Expires is seconds since the epoch; -1 or 0
// means a session cookie.
type StoredCookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite,omitempty"`
}

// OriginState is the localStorage of one origin.
type OriginState struct {
	Origin       string         `json:"origin"`
	LocalStorage []StorageEntry `json:"localStorage"`
}

// StorageEntry is a localStorage key/value pair.
type StorageEntry struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// LoadSessionState reads a state file. A missing file returns an error
// satisfying errors.Is(err, fs.ErrNotExist).
func LoadSessionState(path string) (*SessionState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var state SessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode session state %s: %w", path, err)
	}
	return &state, nil
}

// SaveSessionState writes state to path, replacing it atomically.
func SaveSessionState(path string, state *SessionState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session state: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".session-*.json")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write session state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write session state: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace session state %s: %w", path, err)
	}
	return nil
}

// cookieParams converts stored cookies into Network.setCookies params.
func (s *SessionState) cookieParams() []*network.CookieParam {
	params := make([]*network.CookieParam, 0, len(s.Cookies))
	for _, c := range s.Cookies {
		p := &network.CookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
		}
		if p.Path == "" {
			p.Path = "/"
		}
		if c.Expires > 0 {
			sec, frac := math.Modf(c.Expires)
			exp := cdp.TimeSinceEpoch(time.Unix(int64(sec), int64(frac*1e9)))
			p.Expires = &exp
		}
		switch strings.ToLower(c.SameSite) {
		case "strict":
			p.SameSite = network.CookieSameSiteStrict
		case "lax":
			p.SameSite = network.CookieSameSiteLax
		case "none":
			p.SameSite = network.CookieSameSiteNone
		}
		params = append(params, p)
	}
	return params
}

// localStorageScript returns a script that seeds localStorage for the
// matching origin on every new document, or "" when there is nothing to
// seed.
func (s *SessionState) localStorageScript() string {
	var sb strings.Builder
	for _, o := range s.Origins {
		if len(o.LocalStorage) == 0 {
			continue
		}
		origin, _ := json.Marshal(o.Origin)
		fmt.Fprintf(&sb, "if (location.origin === %s) {\n", origin)
		for _, e := range o.LocalStorage {
			k, _ := json.Marshal(e.Name)
			v, _ := json.Marshal(e.Value)
			fmt.Fprintf(&sb, "  try { localStorage.setItem(%s, %s); } catch (e) {}\n", k, v)
		}
		sb.WriteString("}\n")
	}
	return sb.String()
}

// storedCookies converts live browser cookies back into the file format.
func storedCookies(cookies []*network.Cookie) []StoredCookie {
	out := make([]StoredCookie, 0, len(cookies))
	for _, c := range cookies {
		out = append(out, StoredCookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: string(c.SameSite),
		})
	}
	return out
}

// mergeOrigin replaces the localStorage of origin in s with entries.
func (s *SessionState) mergeOrigin(origin string, entries []StorageEntry) {
	if origin == "" || origin == "null" {
		return
	}
	for i := range s.Origins {
		if s.Origins[i].Origin == origin {
			s.Origins[i].LocalStorage = entries
			return
		}
	}
	s.Origins = append(s.Origins, OriginState{Origin: origin, LocalStorage: entries})
}
