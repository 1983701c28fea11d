// Package readiness decides when a dynamically-rendered dashboard view
// has actually populated, by matching marker substrings against the
// session's current serialized markup. No DOM diffing is involved.
package readiness

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
)

// shellMarkers appear as soon as the Power BI report shell has painted,
// well before any numeric content exists.
var shellMarkers = []string{
	"visualcontainerhost",
	"visual-container",
	"visualcontainer",
	"powerbireport",
	"relatório do power bi",
	"reportembed",
	"app.powerbi.com",
}

// metricPatterns match the textual labels that carry the numbers. Only
// once one of these shows up is the view worth parsing.
var metricPatterns = []*regexp.Regexp{
	regexp.MustCompile(`PACIENTES\s+NA\s+UNIDADE`),
	regexp.MustCompile(`AGUARDANDO\s+REGULA`),
	regexp.MustCompile(`ATENDIMENTO`),
	regexp.MustCompile(`CLASSIF`),
	regexp.MustCompile(`\bAZUL\b|\bVERDE\b|\bAMARELO\b|\bLARANJA\b|\bVERMELHO\b`),
}

// ShellReady reports whether the rendering framework's container
// elements exist in the markup at all.
func ShellReady(markup string) bool {
	lower := strings.ToLower(markup)
	for _, marker := range shellMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// MetricsReady reports whether the field labels carrying numeric data
// have appeared in the markup.
func MetricsReady(markup string) bool {
	upper := strings.ToUpper(markup)
	for _, pattern := range metricPatterns {
		if pattern.MatchString(upper) {
			return true
		}
	}
	return false
}

// MarkupSource yields the current serialized markup of a live
// browsing context.
type MarkupSource interface {
	Markup(ctx context.Context) (string, error)
}

// Detector polls a MarkupSource until a readiness predicate holds or a
// timeout elapses. Timeouts are reported, never raised: the caller
// proceeds with whatever markup is available.
type Detector struct {
	interval time.Duration
	logger   *zap.Logger
}

// NewDetector builds a Detector; interval defaults to 500ms.
func NewDetector(interval time.Duration, logger *zap.Logger) *Detector {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{interval: interval, logger: logger}
}

// WaitShell polls until the report shell exists.
func (d *Detector) WaitShell(ctx context.Context, src MarkupSource, timeout time.Duration) (bool, error) {
	return d.poll(ctx, src, timeout, ShellReady)
}

// WaitMetrics polls until the metric labels have painted.
func (d *Detector) WaitMetrics(ctx context.Context, src MarkupSource, timeout time.Duration) (bool, error) {
	return d.poll(ctx, src, timeout, MetricsReady)
}

func (d *Detector) poll(
	ctx context.Context,
	src MarkupSource,
	timeout time.Duration,
	ready func(string) bool,
) (bool, error) {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		markup, err := src.Markup(ctx)
		if err != nil {
			return false, err
		}
		if ready(markup) {
			return true, nil
		}
		if time.Now().After(deadline) {
			d.logger.Debug("readiness wait timed out", zap.Duration("timeout", timeout))
			return false, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-ticker.C:
		}
	}
}
