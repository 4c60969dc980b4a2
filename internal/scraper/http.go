package scraper

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/williampepple1/swimtimes/internal/config"
	"github.com/williampepple1/swimtimes/internal/logger"
	"github.com/williampepple1/swimtimes/internal/proxy"
)

// maxDocumentSize caps how much of a published document is read
const maxDocumentSize = 32 << 20

// HTTPFetcher downloads published result documents such as a hosted times.json
type HTTPFetcher struct {
	Config *config.ScraperConfig
	Proxy  *proxy.Manager
	client *http.Client
	sleep  func(time.Duration)
}

// FetchInfo describes how a download went
type FetchInfo struct {
	StatusCode int
	Retries    int
	ProxyUsed  string
	Duration   time.Duration
}

// NewHTTPFetcher creates a fetcher honoring the scraper and proxy configuration
func NewHTTPFetcher(cfg *config.AppConfig) (*HTTPFetcher, error) {
	transport := &http.Transport{}
	proxyManager := proxy.NewManager(&cfg.Proxies)
	if _, err := proxyManager.Route(transport); err != nil {
		return nil, fmt.Errorf("applying proxy: %w", err)
	}

	return &HTTPFetcher{
		Config: &cfg.Scraper,
		Proxy:  proxyManager,
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Scraper.Timeout,
		},
		sleep: time.Sleep,
	}, nil
}

// Fetch downloads url, retrying transport errors and non-200 responses
// with a linearly growing delay
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, FetchInfo, error) {
	start := time.Now()
	var info FetchInfo
	var lastErr error

	for info.Retries <= f.Config.MaxRetries {
		if info.Retries > 0 {
			wait := f.Config.RetryDelay * time.Duration(info.Retries)
			logger.Warn("Retrying download", logger.Fields{
				"url":     url,
				"attempt": info.Retries,
				"max":     f.Config.MaxRetries,
				"wait":    wait.String(),
			})
			f.sleep(wait)

			if f.Proxy.Config.Enabled && f.Proxy.Config.Rotate && len(f.Proxy.Config.List) > 1 {
				if transport, ok := f.client.Transport.(*http.Transport); ok {
					info.ProxyUsed, _ = f.Proxy.Route(transport)
				}
			}
		}

		body, status, err := f.attempt(ctx, url)
		info.StatusCode = status
		if err == nil {
			info.Duration = time.Since(start)
			return body, info, nil
		}
		if ctx.Err() != nil {
			return nil, info, ctx.Err()
		}
		lastErr = err
		info.Retries++
	}

	info.Duration = time.Since(start)
	return nil, info, fmt.Errorf("fetching %s: %w", url, lastErr)
}

func (f *HTTPFetcher) attempt(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	if len(f.Config.UserAgents) > 0 {
		req.Header.Set("User-Agent", f.Config.UserAgents[rand.Intn(len(f.Config.UserAgents))])
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}
