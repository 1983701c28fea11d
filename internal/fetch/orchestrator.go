package fetch

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/JeanCarlos070456/web-scraping-upa/internal/dashboard"
	"github.com/JeanCarlos070456/web-scraping-upa/internal/headless/readiness"
)

// Mode selects the fetch strategy.
type Mode string

// Fetch modes. Auto tries the fast path first and promotes to headless
// rendering when the raw markup shows no report shell.
const (
	ModeDirect   Mode = "direct"
	ModeRendered Mode = "rendered"
	ModeAuto     Mode = "auto"
)

// ParseMode validates a mode string from config or flags.
func ParseMode(raw string) (Mode, error) {
	switch Mode(raw) {
	case ModeDirect, ModeRendered, ModeAuto:
		return Mode(raw), nil
	case "":
		return ModeRendered, nil
	default:
		return "", fmt.Errorf("unknown fetch mode %q", raw)
	}
}

// Renderer is the headless strategy consumed by the orchestrator.
type Renderer interface {
	Render(ctx context.Context, url string) (dashboard.FetchResult, error)
}

// Orchestrator picks and runs a fetch strategy per URL.
type Orchestrator struct {
	direct   dashboard.Fetcher
	renderer Renderer
	mode     Mode
	logger   *zap.Logger
}

// NewOrchestrator wires the strategies. renderer may be nil when
// headless rendering is disabled; rendered fetches then fail cleanly.
func NewOrchestrator(direct dashboard.Fetcher, renderer Renderer, mode Mode, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{direct: direct, renderer: renderer, mode: mode, logger: logger}
}

// Fetch obtains markup for url according to the configured mode.
func (o *Orchestrator) Fetch(ctx context.Context, url string) (dashboard.FetchResult, error) {
	switch o.mode {
	case ModeDirect:
		return o.direct.Fetch(ctx, url)
	case ModeRendered:
		return o.render(ctx, url)
	default: // ModeAuto
		result, err := o.direct.Fetch(ctx, url)
		if err == nil && readiness.ShellReady(result.HTML) {
			// The rare page that arrives pre-rendered.
			return result, nil
		}
		if err != nil {
			o.logger.Debug("direct fetch failed, promoting to rendered",
				zap.String("url", url), zap.Error(err))
		}
		return o.render(ctx, url)
	}
}

func (o *Orchestrator) render(ctx context.Context, url string) (dashboard.FetchResult, error) {
	if o.renderer == nil {
		return dashboard.FetchResult{}, &dashboard.FetchError{
			URL: url, Step: "rendered", Err: errors.New("headless rendering disabled"),
		}
	}
	return o.renderer.Render(ctx, url)
}
