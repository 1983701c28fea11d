// Package coordinator fans the target registry out across a bounded
// worker pool and aggregates one flat row per target.
package coordinator

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JeanCarlos070456/web-scraping-upa/internal/dashboard"
	"github.com/JeanCarlos070456/web-scraping-upa/internal/metrics"
)

// Config controls one coordinator run.
type Config struct {
	TTL         time.Duration
	Concurrency int
}

// Coordinator drives the cache -> fetch -> parse -> cache pipeline for
// every registered target. Each unit of work is independent; the cache
// store is the only shared resource.
type Coordinator struct {
	cfg     Config
	cache   dashboard.Cache
	fetcher dashboard.Fetcher
	parse   func(string) dashboard.ParsedMetrics
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// New constructs a Coordinator.
func New(
	cfg Config,
	cache dashboard.Cache,
	fetcher dashboard.Fetcher,
	parse func(string) dashboard.ParsedMetrics,
	logger *zap.Logger,
	m *metrics.Metrics,
) *Coordinator {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 6
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 2 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		cfg:     cfg,
		cache:   cache,
		fetcher: fetcher,
		parse:   parse,
		logger:  logger,
		metrics: m,
	}
}

// RunAll scrapes every target and returns exactly one row each, sorted
// by target name. A failing target yields an error-bearing row; it
// never aborts the batch.
func (c *Coordinator) RunAll(ctx context.Context, targets []dashboard.Target) []dashboard.Row {
	runID := uuid.NewString()
	logger := c.logger.With(zap.String("run_id", runID))
	logger.Info("scrape run started", zap.Int("targets", len(targets)))

	workers := c.cfg.Concurrency
	if workers > len(targets) {
		workers = len(targets)
	}

	jobs := make(chan dashboard.Target)
	rows := make([]dashboard.Row, 0, len(targets))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for target := range jobs {
				row := c.collectOne(ctx, logger, target)
				mu.Lock()
				rows = append(rows, row)
				mu.Unlock()
			}
		}()
	}

	for _, target := range targets {
		jobs <- target
	}
	close(jobs)
	wg.Wait()

	sort.Slice(rows, func(i, j int) bool { return rows[i].Target < rows[j].Target })

	failed := 0
	for _, row := range rows {
		if row.Error != "" {
			failed++
		}
	}
	c.metrics.SetRowErrors(failed)
	logger.Info("scrape run finished", zap.Int("rows", len(rows)), zap.Int("failed", failed))
	return rows
}

// collectOne runs a single target end to end. Every error is captured
// here and converted into row data.
func (c *Coordinator) collectOne(ctx context.Context, logger *zap.Logger, target dashboard.Target) dashboard.Row {
	start := time.Now()

	if cached, ok := c.cache.Get(target.URL, c.cfg.TTL); ok {
		c.metrics.IncCacheHit()
		c.metrics.ObserveScrape(target.Name, "cache", time.Since(start))
		logger.Debug("cache hit", zap.String("target", target.Name))
		return dashboard.FlattenRow(target, cached)
	}

	result, err := c.fetcher.Fetch(ctx, target.URL)
	if err != nil {
		c.metrics.ObserveScrape(target.Name, "error", time.Since(start))
		logger.Warn("target scrape failed",
			zap.String("target", target.Name), zap.String("url", target.URL), zap.Error(err))
		return dashboard.ErrorRow(target, err)
	}

	parsed := c.parse(result.HTML)

	// A write failure leaves the row intact; the operator just loses
	// freshness for the next run, which is worth a warning.
	if err := c.cache.Set(target.URL, parsed); err != nil {
		logger.Warn("cache write failed", zap.String("target", target.Name), zap.Error(err))
	}

	c.metrics.ObserveScrape(target.Name, "ok", time.Since(start))
	logger.Debug("target scraped",
		zap.String("target", target.Name),
		zap.String("strategy", string(result.Strategy)),
		zap.Duration("elapsed", time.Since(start)))
	return dashboard.FlattenRow(target, parsed)
}
