package proxy

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/williampepple1/swimtimes/internal/config"
)

func TestNextDisabled(t *testing.T) {
	m := NewManager(&config.ProxyConfig{List: []string{"http://proxy:8080"}})

	u, err := m.Next()
	require.NoError(t, err)
	require.Nil(t, u)

	opt, server, err := m.BrowserOption()
	require.NoError(t, err)
	require.Nil(t, opt)
	require.Empty(t, server)

	transport := &http.Transport{}
	used, err := m.Route(transport)
	require.NoError(t, err)
	require.Empty(t, used)
	require.Nil(t, transport.Proxy)
}

func TestNextWithAuth(t *testing.T) {
	cfg := &config.ProxyConfig{Enabled: true, List: []string{"http://proxy:8080"}}
	cfg.Auth.Username = "swim"
	cfg.Auth.Password = "secret"
	m := NewManager(cfg)

	u, err := m.Next()
	require.NoError(t, err)
	require.Equal(t, "proxy:8080", u.Host)
	require.Equal(t, "swim", u.User.Username())

	transport := &http.Transport{}
	used, err := m.Route(transport)
	require.NoError(t, err)
	require.NotNil(t, transport.Proxy)
	require.Contains(t, used, "swim")
	require.NotContains(t, used, "secret")
}

func TestBrowserOptionDropsCredentials(t *testing.T) {
	cfg := &config.ProxyConfig{Enabled: true, List: []string{"socks5://proxy:1080"}}
	cfg.Auth.Username = "swim"
	cfg.Auth.Password = "secret"

	opt, server, err := NewManager(cfg).BrowserOption()
	require.NoError(t, err)
	require.NotNil(t, opt)
	require.Equal(t, "socks5://proxy:1080", server)
}

func TestNextRotatesWithinList(t *testing.T) {
	list := []string{"http://a:1", "http://b:2", "http://c:3"}
	m := NewManager(&config.ProxyConfig{Enabled: true, Rotate: true, List: list})

	for i := 0; i < 20; i++ {
		u, err := m.Next()
		require.NoError(t, err)
		require.Contains(t, list, u.String())
	}
}

func TestNextSkipsBlankEntries(t *testing.T) {
	m := NewManager(&config.ProxyConfig{Enabled: true, List: []string{"  ", "http://b:2"}})

	u, err := m.Next()
	require.NoError(t, err)
	require.Equal(t, "http://b:2", u.String())

	u, err = NewManager(&config.ProxyConfig{Enabled: true, List: []string{""}}).Next()
	require.NoError(t, err)
	require.Nil(t, u)
}

func TestNextInvalid(t *testing.T) {
	m := NewManager(&config.ProxyConfig{Enabled: true, List: []string{"http://[::1"}})

	_, err := m.Next()
	require.Error(t, err)
	require.Contains(t, err.Error(), "http://[::1")
}
