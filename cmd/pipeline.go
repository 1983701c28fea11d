package cmd

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JeanCarlos070456/web-scraping-upa/internal/cache"
	"github.com/JeanCarlos070456/web-scraping-upa/internal/config"
	"github.com/JeanCarlos070456/web-scraping-upa/internal/coordinator"
	"github.com/JeanCarlos070456/web-scraping-upa/internal/fetch"
	"github.com/JeanCarlos070456/web-scraping-upa/internal/headless"
	"github.com/JeanCarlos070456/web-scraping-upa/internal/metrics"
	"github.com/JeanCarlos070456/web-scraping-upa/internal/parser"
)

// pipeline bundles the long-lived pieces a command needs to scrape.
type pipeline struct {
	coordinator *coordinator.Coordinator
	renderer    *headless.Renderer
	metrics     *metrics.Metrics
}

// close releases the shared browser, if one was started.
func (p *pipeline) close() {
	p.renderer.Close()
}

// buildPipeline wires cache, fetch strategies and the coordinator from
// config. The browser only starts when the mode can reach it.
func buildPipeline(cfg config.Config, logger *zap.Logger) (*pipeline, error) {
	mode, err := fetch.ParseMode(cfg.Scrape.Mode)
	if err != nil {
		return nil, err
	}

	direct, err := fetch.NewDirectFetcher(fetch.DirectConfig{
		UserAgent:   cfg.HTTP.UserAgent,
		VerifySSL:   cfg.HTTP.VerifySSL,
		Timeout:     cfg.HTTPTimeout(),
		MaxRetries:  cfg.HTTP.MaxRetries,
		BackoffBase: cfg.BackoffBase(),
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("init direct fetcher: %w", err)
	}

	renderer, err := buildRenderer(cfg, mode, logger)
	if err != nil {
		return nil, err
	}

	orchestrator := fetch.NewOrchestrator(direct, rendererOrNil(renderer), mode, logger)
	store := cache.New(cfg.Cache.Path)
	m := metrics.New()

	coord := coordinator.New(coordinator.Config{
		TTL:         cfg.TTL(),
		Concurrency: cfg.Scrape.Concurrency,
	}, store, orchestrator, parser.Parse, logger, m)

	return &pipeline{coordinator: coord, renderer: renderer, metrics: m}, nil
}

func buildRenderer(cfg config.Config, mode fetch.Mode, logger *zap.Logger) (*headless.Renderer, error) {
	if !cfg.Headless.Enabled || mode == fetch.ModeDirect {
		return nil, nil
	}
	renderer, err := headless.NewRenderer(headlessConfig(cfg), logger)
	if err != nil {
		return nil, fmt.Errorf("init renderer: %w", err)
	}
	return renderer, nil
}

func headlessConfig(cfg config.Config) headless.Config {
	return headless.Config{
		Headless:       !cfg.Headless.Visible,
		VerifySSL:      cfg.HTTP.VerifySSL,
		UserAgent:      cfg.HTTP.UserAgent,
		NavTimeout:     time.Duration(cfg.Headless.NavTimeoutSec) * time.Second,
		ShellTimeout:   time.Duration(cfg.Headless.ShellTimeoutSec) * time.Second,
		MetricsTimeout: time.Duration(cfg.Headless.MetricsTimeoutSec) * time.Second,
		FrameTimeout:   time.Duration(cfg.Headless.FrameTimeoutSec) * time.Second,
		PollInterval:   time.Duration(cfg.Headless.PollIntervalMs) * time.Millisecond,
		HostQPS:        float64(cfg.Headless.PerHostQPS),
	}
}

// rendererOrNil keeps a typed nil *Renderer out of the interface.
func rendererOrNil(r *headless.Renderer) fetch.Renderer {
	if r == nil {
		return nil
	}
	return r
}
