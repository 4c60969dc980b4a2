// Package proxy picks the outbound proxy for the portal browser and the times.json fetcher.
package proxy

import (
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strings"

	"github.com/chromedp/chromedp"
	"github.com/williampepple1/swimtimes/internal/config"
)

// Manager hands out proxies from the configured list
type Manager struct {
	Config *config.ProxyConfig
}

func NewManager(cfg *config.ProxyConfig) *Manager {
	return &Manager{Config: cfg}
}

// pick returns the raw list entry to use next, or "" when proxying is off
func (m *Manager) pick() string {
	if m.Config == nil || !m.Config.Enabled {
		return ""
	}
	var list []string
	for _, entry := range m.Config.List {
		if entry = strings.TrimSpace(entry); entry != "" {
			list = append(list, entry)
		}
	}
	switch {
	case len(list) == 0:
		return ""
	case m.Config.Rotate:
		return list[rand.Intn(len(list))]
	default:
		return list[0]
	}
}

// Next returns the proxy for the next connection with credentials attached.
// A nil URL means connect directly.
func (m *Manager) Next() (*url.URL, error) {
	raw := m.pick()
	if raw == "" {
		return nil, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("proxy %q: %w", raw, err)
	}
	if auth := m.Config.Auth; auth.Username != "" && auth.Password != "" {
		u.User = url.UserPassword(auth.Username, auth.Password)
	}
	return u, nil
}

// Route points transport at the next proxy and returns it with the password masked
func (m *Manager) Route(transport *http.Transport) (string, error) {
	u, err := m.Next()
	if err != nil || u == nil {
		return "", err
	}
	transport.Proxy = http.ProxyURL(u)
	return u.Redacted(), nil
}

// BrowserOption returns the --proxy-server flag for the browser and the server it names.
// Chrome ignores credentials in that flag, so only scheme and host are passed.
func (m *Manager) BrowserOption() (chromedp.ExecAllocatorOption, string, error) {
	u, err := m.Next()
	if err != nil || u == nil {
		return nil, "", err
	}
	server := u.Scheme + "://" + u.Host
	return chromedp.ProxyServer(server), server, nil
}
