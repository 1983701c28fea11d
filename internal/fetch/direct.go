// Package fetch obtains dashboard markup, either over plain HTTP or by
// delegating to the headless renderer, with retries and fallback.
package fetch

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/JeanCarlos070456/web-scraping-upa/internal/dashboard"
)

// DirectConfig controls the plain-HTTP fetch strategy.
type DirectConfig struct {
	UserAgent   string
	VerifySSL   bool
	Timeout     time.Duration
	MaxRetries  int
	BackoffBase time.Duration
}

// DirectFetcher retrieves pages over HTTP with a browser-like header
// set. It cannot see anything rendered client-side, which is exactly
// why it is the fast path and not the only one.
type DirectFetcher struct {
	base   *colly.Collector
	retry  *RetryPolicy
	logger *zap.Logger
}

// NewDirectFetcher constructs a configured colly-based fetcher.
func NewDirectFetcher(cfg DirectConfig, logger *zap.Logger) (*DirectFetcher, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user agent is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	base := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.IgnoreRobotsTxt(),
	)
	// The same dashboards are polled run after run.
	base.AllowURLRevisit = true
	base.WithTransport(&http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        32,
		MaxIdleConnsPerHost: 8,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		ForceAttemptHTTP2:   true,
		TLSClientConfig: &tls.Config{
			// Verification is only skipped when the operator flips the
			// config toggle; the default stays on.
			InsecureSkipVerify: !cfg.VerifySSL, // #nosec G402
			MinVersion:         tls.VersionTLS12,
		},
	})
	base.SetRequestTimeout(cfg.Timeout)

	base.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "pt-BR,pt;q=0.9,en;q=0.7")
		r.Headers.Set("Connection", "keep-alive")
	})

	return &DirectFetcher{
		base:   base,
		retry:  NewRetryPolicy(cfg.MaxRetries, cfg.BackoffBase),
		logger: logger,
	}, nil
}

// Fetch issues the GET with retries. Statuses 429/502/503/504 and
// transport errors are retried with backoff; any other non-2xx status
// or an exhausted budget is a terminal FetchError carrying the last
// status and error text.
func (f *DirectFetcher) Fetch(ctx context.Context, rawURL string) (dashboard.FetchResult, error) {
	var (
		lastStatus int
		lastErr    error
	)

	for attempt := 0; attempt < f.retry.MaxAttempts(); attempt++ {
		if attempt > 0 {
			wait := f.retry.Backoff(attempt - 1)
			f.logger.Debug("retrying direct fetch",
				zap.String("url", rawURL), zap.Int("attempt", attempt), zap.Duration("backoff", wait))
			select {
			case <-ctx.Done():
				return dashboard.FetchResult{}, &dashboard.FetchError{
					URL: rawURL, Step: "direct-http", StatusCode: lastStatus, Err: ctx.Err(),
				}
			case <-time.After(wait):
			}
		}

		result, status, err := f.attempt(rawURL)
		if err == nil {
			return result, nil
		}
		lastStatus, lastErr = status, err

		if status != 0 && !RetryableStatus(status) {
			break
		}
	}

	return dashboard.FetchResult{}, &dashboard.FetchError{
		URL: rawURL, Step: "direct-http", StatusCode: lastStatus, Err: lastErr,
	}
}

func (f *DirectFetcher) attempt(rawURL string) (dashboard.FetchResult, int, error) {
	collector := f.base.Clone()
	resultCh := make(chan directResult, 1)
	var once sync.Once
	send := func(res directResult) {
		once.Do(func() { resultCh <- res })
	}

	collector.OnResponse(func(r *colly.Response) {
		send(directResult{
			result: dashboard.FetchResult{
				URL:        rawURL,
				StatusCode: r.StatusCode,
				HTML:       string(r.Body),
				Strategy:   dashboard.StrategyDirectHTTP,
			},
		})
	})
	collector.OnError(func(r *colly.Response, err error) {
		if err == nil {
			err = errors.New("unknown colly error")
		}
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		send(directResult{status: status, err: err})
	})

	if err := collector.Visit(rawURL); err != nil {
		return dashboard.FetchResult{}, 0, err
	}
	collector.Wait()

	select {
	case res := <-resultCh:
		return res.result, res.status, res.err
	default:
		return dashboard.FetchResult{}, 0, errors.New("fetch produced no result")
	}
}

type directResult struct {
	result dashboard.FetchResult
	status int
	err    error
}
