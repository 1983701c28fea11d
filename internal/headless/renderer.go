// Package headless renders dashboard pages with chromedp and extracts
// their markup once the embedded report has painted.
package headless

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/JeanCarlos070456/web-scraping-upa/internal/dashboard"
	"github.com/JeanCarlos070456/web-scraping-upa/internal/headless/readiness"
)

// Config controls the headless rendering subsystem.
type Config struct {
	Headless       bool
	VerifySSL      bool
	UserAgent      string
	NavTimeout     time.Duration // budget for one whole rendered fetch
	ShellTimeout   time.Duration // wait for the report shell
	MetricsTimeout time.Duration // wait for metric labels (non-fatal)
	FrameTimeout   time.Duration // wait for iframes to appear
	PollInterval   time.Duration
	HostQPS        float64
}

func (c *Config) applyDefaults() {
	if c.NavTimeout <= 0 {
		c.NavTimeout = 70 * time.Second
	}
	if c.ShellTimeout <= 0 {
		c.ShellTimeout = 45 * time.Second
	}
	if c.MetricsTimeout <= 0 {
		c.MetricsTimeout = 35 * time.Second
	}
	if c.FrameTimeout <= 0 {
		c.FrameTimeout = 25 * time.Second
	}
}

// Renderer drives headless Chrome. One browser process is shared; each
// Render call gets its own tab, torn down on every exit path, so a
// worker's browsing session is never visible to another worker.
type Renderer struct {
	cfg             Config
	allocatorCancel context.CancelFunc
	browserCtx      context.Context
	browserCancel   context.CancelFunc
	detector        *readiness.Detector
	logger          *zap.Logger
	hostLimiters    sync.Map
}

// NewRenderer starts the shared browser process.
func NewRenderer(cfg Config, logger *zap.Logger) (*Renderer, error) {
	cfg.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("window-size", "1400,900"),
		chromedp.Flag("lang", "pt-BR"),
		// Embeds misbehave when they detect automation.
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		// Dashboards are text-heavy; skipping images keeps tabs light.
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
	)
	if !cfg.VerifySSL {
		opts = append(opts,
			chromedp.Flag("ignore-certificate-errors", true),
			chromedp.Flag("allow-insecure-localhost", true),
		)
	}
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}

	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocatorCancel()
		return nil, fmt.Errorf("chromedp warmup: %w", err)
	}

	return &Renderer{
		cfg:             cfg,
		allocatorCancel: allocatorCancel,
		browserCtx:      browserCtx,
		browserCancel:   browserCancel,
		detector:        readiness.NewDetector(cfg.PollInterval, logger),
		logger:          logger,
	}, nil
}

// Close tears down the browser and allocator contexts.
func (r *Renderer) Close() {
	if r == nil {
		return
	}
	r.browserCancel()
	r.allocatorCancel()
}

// Render fetches the fully-rendered markup for rawURL.
func (r *Renderer) Render(ctx context.Context, rawURL string) (dashboard.FetchResult, error) {
	return r.render(ctx, rawURL, nil)
}

// Dump behaves like Render but also captures a screenshot of the page
// for debug artifacts. A failed capture yields nil bytes, not an error.
func (r *Renderer) Dump(ctx context.Context, rawURL string) (dashboard.FetchResult, []byte, error) {
	var shot []byte
	result, err := r.render(ctx, rawURL, &shot)
	return result, shot, err
}

func (r *Renderer) render(ctx context.Context, rawURL string, shot *[]byte) (dashboard.FetchResult, error) {
	if err := r.waitHostBudget(ctx, rawURL); err != nil {
		return dashboard.FetchResult{}, &dashboard.FetchError{URL: rawURL, Step: "rate-limit", Err: err}
	}

	tabCtx, cancelTab := chromedp.NewContext(r.browserCtx)
	defer cancelTab()

	taskCtx, cancelTask := context.WithTimeout(tabCtx, r.cfg.NavTimeout)
	defer cancelTask()

	stopForward := forwardCancel(ctx, cancelTask)
	defer stopForward()

	return r.run(taskCtx, rawURL, shot)
}

func (r *Renderer) waitHostBudget(ctx context.Context, rawURL string) error {
	if r.cfg.HostQPS <= 0 {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse render url: %w", err)
	}
	host := strings.ToLower(parsed.Host)
	val, _ := r.hostLimiters.LoadOrStore(host, rate.NewLimiter(rate.Limit(r.cfg.HostQPS), 1))
	limiter, ok := val.(*rate.Limiter)
	if !ok {
		return fmt.Errorf("unexpected limiter type %T", val)
	}
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait limiter: %w", err)
	}
	return nil
}

// domSource serializes the current document of a chromedp context.
type domSource struct{}

func (domSource) Markup(ctx context.Context) (string, error) {
	var markup string
	if err := chromedp.Run(ctx, chromedp.OuterHTML("html", &markup, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("outer html: %w", err)
	}
	return markup, nil
}

func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	if parent == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}
