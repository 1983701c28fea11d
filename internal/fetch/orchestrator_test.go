package fetch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JeanCarlos070456/web-scraping-upa/internal/dashboard"
)

const shellMarkup = `<html><div class="visualContainerHost">Pacientes na Unidade 3</div></html>`

type stubFetcher struct {
	result dashboard.FetchResult
	err    error
	calls  int
}

func (s *stubFetcher) Fetch(context.Context, string) (dashboard.FetchResult, error) {
	s.calls++
	return s.result, s.err
}

type stubRenderer struct {
	result dashboard.FetchResult
	err    error
	calls  int
}

func (s *stubRenderer) Render(context.Context, string) (dashboard.FetchResult, error) {
	s.calls++
	return s.result, s.err
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		raw     string
		want    Mode
		wantErr bool
	}{
		{raw: "direct", want: ModeDirect},
		{raw: "rendered", want: ModeRendered},
		{raw: "auto", want: ModeAuto},
		{raw: "", want: ModeRendered},
		{raw: "turbo", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.raw)
		if tt.wantErr {
			assert.Error(t, err, "mode %q", tt.raw)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestOrchestratorDirectMode(t *testing.T) {
	direct := &stubFetcher{result: dashboard.FetchResult{HTML: "<html></html>", Strategy: dashboard.StrategyDirectHTTP}}
	renderer := &stubRenderer{}
	o := NewOrchestrator(direct, renderer, ModeDirect, nil)

	result, err := o.Fetch(context.Background(), "http://upa.test")
	require.NoError(t, err)
	assert.Equal(t, dashboard.StrategyDirectHTTP, result.Strategy)
	assert.Equal(t, 1, direct.calls)
	assert.Equal(t, 0, renderer.calls)
}

func TestOrchestratorRenderedMode(t *testing.T) {
	direct := &stubFetcher{}
	renderer := &stubRenderer{result: dashboard.FetchResult{HTML: shellMarkup, Strategy: dashboard.StrategyRenderedTop}}
	o := NewOrchestrator(direct, renderer, ModeRendered, nil)

	result, err := o.Fetch(context.Background(), "http://upa.test")
	require.NoError(t, err)
	assert.Equal(t, dashboard.StrategyRenderedTop, result.Strategy)
	assert.Equal(t, 0, direct.calls)
	assert.Equal(t, 1, renderer.calls)
}

func TestOrchestratorAutoKeepsPreRenderedPage(t *testing.T) {
	direct := &stubFetcher{result: dashboard.FetchResult{HTML: shellMarkup, Strategy: dashboard.StrategyDirectHTTP}}
	renderer := &stubRenderer{}
	o := NewOrchestrator(direct, renderer, ModeAuto, nil)

	result, err := o.Fetch(context.Background(), "http://upa.test")
	require.NoError(t, err)
	assert.Equal(t, dashboard.StrategyDirectHTTP, result.Strategy)
	assert.Equal(t, 0, renderer.calls)
}

func TestOrchestratorAutoPromotesEmptyShell(t *testing.T) {
	direct := &stubFetcher{result: dashboard.FetchResult{HTML: "<html><body>shell-less</body></html>"}}
	renderer := &stubRenderer{result: dashboard.FetchResult{HTML: shellMarkup, Strategy: dashboard.StrategyRenderedFrame}}
	o := NewOrchestrator(direct, renderer, ModeAuto, nil)

	result, err := o.Fetch(context.Background(), "http://upa.test")
	require.NoError(t, err)
	assert.Equal(t, dashboard.StrategyRenderedFrame, result.Strategy)
	assert.Equal(t, 1, direct.calls)
	assert.Equal(t, 1, renderer.calls)
}

func TestOrchestratorAutoPromotesOnDirectError(t *testing.T) {
	direct := &stubFetcher{err: errors.New("boom")}
	renderer := &stubRenderer{result: dashboard.FetchResult{HTML: shellMarkup, Strategy: dashboard.StrategyRenderedTop}}
	o := NewOrchestrator(direct, renderer, ModeAuto, nil)

	result, err := o.Fetch(context.Background(), "http://upa.test")
	require.NoError(t, err)
	assert.Equal(t, dashboard.StrategyRenderedTop, result.Strategy)
}

func TestOrchestratorRenderedWithoutRendererFailsCleanly(t *testing.T) {
	direct := &stubFetcher{}
	o := NewOrchestrator(direct, nil, ModeRendered, nil)

	_, err := o.Fetch(context.Background(), "http://upa.test")
	require.Error(t, err)

	var fetchErr *dashboard.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "rendered", fetchErr.Step)
}
