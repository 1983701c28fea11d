package headless

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/JeanCarlos070456/web-scraping-upa/internal/dashboard"
	"github.com/JeanCarlos070456/web-scraping-upa/internal/headless/readiness"
)

// acceptCookieJS clicks the consent banner when one is present. The
// OneTrust id and the "aceitar" text cover every banner seen so far.
const acceptCookieJS = `(() => {
	const direct = document.querySelector('#onetrust-accept-btn-handler, button.cookie-accept');
	if (direct) { direct.click(); return true; }
	for (const el of document.querySelectorAll('button, a')) {
		if ((el.innerText || '').toLowerCase().includes('aceitar')) { el.click(); return true; }
	}
	return false;
})()`

// run walks the rendered-fetch state machine: open, settle, check the
// top-level document, then probe nested frames, then fall back to
// navigating straight to the most specific frame address.
func (r *Renderer) run(taskCtx context.Context, rawURL string, shot *[]byte) (dashboard.FetchResult, error) {
	if err := chromedp.Run(taskCtx,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(1200*time.Millisecond),
	); err != nil {
		return dashboard.FetchResult{}, &dashboard.FetchError{URL: rawURL, Step: "open", Err: err}
	}

	// Consent banners block iframe lazy-loading, so settle first.
	r.dismissCookieBanner(taskCtx)
	r.scrollSequence(taskCtx)

	src := domSource{}
	markup, err := src.Markup(taskCtx)
	if err != nil {
		return dashboard.FetchResult{}, &dashboard.FetchError{URL: rawURL, Step: "check-top", Err: err}
	}
	if readiness.ShellReady(markup) {
		result, err := r.finishView(taskCtx, rawURL, dashboard.StrategyRenderedTop, "")
		if err != nil {
			return dashboard.FetchResult{}, err
		}
		r.capture(taskCtx, shot)
		return result, nil
	}

	frameSrcs, err := r.discoverFrames(taskCtx)
	if err != nil {
		return dashboard.FetchResult{}, &dashboard.FetchError{URL: rawURL, Step: "discover-frames", Err: err}
	}
	frameURLs := resolveFrameSources(rawURL, frameSrcs)

	if result, ok := r.probeFrames(taskCtx, rawURL, frameURLs, shot); ok {
		return result, nil
	}

	return r.directFrameFallback(taskCtx, rawURL, frameURLs, shot)
}

// finishView waits (best effort) for the metric labels, then returns
// the context's current markup as the fetch result.
func (r *Renderer) finishView(
	viewCtx context.Context,
	rawURL string,
	strategy dashboard.Strategy,
	frameSource string,
) (dashboard.FetchResult, error) {
	src := domSource{}
	if ok, err := r.detector.WaitMetrics(viewCtx, src, r.cfg.MetricsTimeout); err != nil || !ok {
		r.logger.Debug("metric labels never painted, using current markup",
			zap.String("url", rawURL), zap.Error(err))
	}
	markup, err := src.Markup(viewCtx)
	if err != nil {
		return dashboard.FetchResult{}, &dashboard.FetchError{URL: rawURL, Step: "serialize", Err: err}
	}
	return dashboard.FetchResult{
		URL:         rawURL,
		StatusCode:  200,
		HTML:        markup,
		Strategy:    strategy,
		FrameSource: frameSource,
	}, nil
}

func (r *Renderer) dismissCookieBanner(taskCtx context.Context) {
	var clicked bool
	if err := chromedp.Run(taskCtx, chromedp.Evaluate(acceptCookieJS, &clicked)); err != nil {
		r.logger.Debug("cookie banner probe failed", zap.Error(err))
		return
	}
	if clicked {
		_ = chromedp.Run(taskCtx, chromedp.Sleep(300*time.Millisecond))
	}
}

// scrollSequence nudges lazy-loaded embeds into existence. Best effort.
func (r *Renderer) scrollSequence(taskCtx context.Context) {
	err := chromedp.Run(taskCtx,
		chromedp.Evaluate(`window.scrollTo(0, 600)`, nil),
		chromedp.Sleep(800*time.Millisecond),
		chromedp.Evaluate(`window.scrollTo(0, 1200)`, nil),
		chromedp.Sleep(800*time.Millisecond),
		chromedp.Evaluate(`window.scrollTo(0, 0)`, nil),
		chromedp.Sleep(500*time.Millisecond),
	)
	if err != nil {
		r.logger.Debug("scroll sequence failed", zap.Error(err))
	}
}

// discoverFrames waits for at least one iframe element and returns the
// resolved src (or data-src) of each, in document order.
func (r *Renderer) discoverFrames(taskCtx context.Context) ([]string, error) {
	deadline := time.Now().Add(r.cfg.FrameTimeout)
	var nodes []*cdp.Node
	for {
		if err := chromedp.Run(taskCtx,
			chromedp.Nodes("iframe", &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)),
		); err != nil {
			return nil, fmt.Errorf("enumerate iframes: %w", err)
		}
		if len(nodes) > 0 {
			break
		}
		if time.Now().After(deadline) {
			return nil, dashboard.ErrNoFrame
		}
		select {
		case <-taskCtx.Done():
			return nil, taskCtx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}

	srcs := make([]string, 0, len(nodes))
	for _, node := range nodes {
		src := node.AttributeValue("src")
		if src == "" {
			src = node.AttributeValue("data-src")
		}
		srcs = append(srcs, src)
	}
	return srcs, nil
}

// probeFrames attaches to each of this tab's nested browsing contexts
// in discovery order and checks whether it hosts the report. The
// browser-wide target list is filtered down to the frame addresses
// discovered in this tab's document, so concurrent tabs rendering
// other dashboards are never probed. Attachment is scoped: the frame
// context is always canceled before moving on, so a failed probe can
// never leave the session stuck inside a frame.
func (r *Renderer) probeFrames(taskCtx context.Context, rawURL string, frameURLs []string, shot *[]byte) (dashboard.FetchResult, bool) {
	infos, err := chromedp.Targets(taskCtx)
	if err != nil {
		r.logger.Warn("list frame targets failed", zap.String("url", rawURL), zap.Error(err))
		return dashboard.FetchResult{}, false
	}
	for _, info := range matchFrameTargets(frameURLs, infos) {
		result, ok := r.probeFrame(taskCtx, rawURL, info)
		if ok {
			r.capture(taskCtx, shot)
			return result, true
		}
	}
	return dashboard.FetchResult{}, false
}

func (r *Renderer) probeFrame(taskCtx context.Context, rawURL string, info *target.Info) (dashboard.FetchResult, bool) {
	frameCtx, cancelFrame := chromedp.NewContext(taskCtx, chromedp.WithTargetID(info.TargetID))
	defer cancelFrame()

	src := domSource{}
	shellOK, err := r.detector.WaitShell(frameCtx, src, r.cfg.ShellTimeout)
	if err != nil || !shellOK {
		r.logger.Debug("frame shell never appeared",
			zap.String("url", rawURL), zap.String("frame", info.URL), zap.Error(err))
		return dashboard.FetchResult{}, false
	}

	result, err := r.finishView(frameCtx, rawURL, dashboard.StrategyRenderedFrame, info.URL)
	if err != nil {
		r.logger.Debug("frame serialize failed",
			zap.String("url", rawURL), zap.String("frame", info.URL), zap.Error(err))
		return dashboard.FetchResult{}, false
	}
	if !readiness.ShellReady(result.HTML) {
		return dashboard.FetchResult{}, false
	}
	return result, true
}

// directFrameFallback navigates the top-level session straight to the
// most promising frame address, per bestFrameSource.
func (r *Renderer) directFrameFallback(
	taskCtx context.Context,
	rawURL string,
	frameURLs []string,
	shot *[]byte,
) (dashboard.FetchResult, error) {
	best := bestFrameSource(frameURLs)
	if best == "" {
		return dashboard.FetchResult{}, &dashboard.FetchError{
			URL: rawURL, Step: "frame-fallback", Err: dashboard.ErrNoUsableFrame,
		}
	}

	r.logger.Debug("navigating directly to frame source",
		zap.String("url", rawURL), zap.String("frame", best))
	if err := chromedp.Run(taskCtx, chromedp.Navigate(best), chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return dashboard.FetchResult{}, &dashboard.FetchError{URL: rawURL, Step: "frame-fallback", Err: err}
	}

	src := domSource{}
	shellOK, err := r.detector.WaitShell(taskCtx, src, r.cfg.ShellTimeout)
	if err != nil {
		return dashboard.FetchResult{}, &dashboard.FetchError{URL: rawURL, Step: "frame-fallback", Err: err}
	}
	if !shellOK {
		return dashboard.FetchResult{}, &dashboard.FetchError{
			URL: rawURL, Step: "frame-fallback",
			Err: fmt.Errorf("report shell never appeared at %s", best),
		}
	}

	result, err := r.finishView(taskCtx, rawURL, dashboard.StrategyRenderedFrame, best)
	if err != nil {
		return dashboard.FetchResult{}, err
	}
	r.capture(taskCtx, shot)
	return result, nil
}

func (r *Renderer) capture(taskCtx context.Context, shot *[]byte) {
	if shot == nil {
		return
	}
	var buf []byte
	if err := chromedp.Run(taskCtx, chromedp.CaptureScreenshot(&buf)); err != nil {
		r.logger.Debug("screenshot capture failed", zap.Error(err))
		return
	}
	*shot = buf
}
