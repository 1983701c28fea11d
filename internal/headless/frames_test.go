package headless

import (
	"testing"

	"github.com/chromedp/cdproto/target"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveFrameSources(t *testing.T) {
	got := resolveFrameSources("https://upa.test/unidades/upa-gama/", []string{
		"https://app.powerbi.com/view?r=abc",
		"/embed/relatorio",
		"",
		"relativo.html",
	})

	assert.Equal(t, []string{
		"https://app.powerbi.com/view?r=abc",
		"https://upa.test/embed/relatorio",
		"https://upa.test/unidades/upa-gama/relativo.html",
	}, got)
}

func TestMatchFrameTargetsKeepsDiscoveryOrder(t *testing.T) {
	infos := []*target.Info{
		{TargetID: "t-b", Type: "iframe", URL: "https://app.powerbi.com/view?r=bbb"},
		{TargetID: "t-a", Type: "iframe", URL: "https://app.powerbi.com/view?r=aaa"},
	}
	frameURLs := []string{
		"https://app.powerbi.com/view?r=aaa",
		"https://app.powerbi.com/view?r=bbb",
	}

	matched := matchFrameTargets(frameURLs, infos)

	require.Len(t, matched, 2)
	assert.Equal(t, target.ID("t-a"), matched[0].TargetID)
	assert.Equal(t, target.ID("t-b"), matched[1].TargetID)
}

func TestMatchFrameTargetsIgnoresOtherTabsFrames(t *testing.T) {
	// Two tabs render different dashboards at once; the browser reports
	// both embeds as iframe targets. Only the frame discovered in this
	// tab's document may be attached.
	infos := []*target.Info{
		{TargetID: "mine", Type: "iframe", URL: "https://app.powerbi.com/view?r=gama"},
		{TargetID: "theirs", Type: "iframe", URL: "https://app.powerbi.com/view?r=ceilandia"},
	}

	matched := matchFrameTargets([]string{"https://app.powerbi.com/view?r=gama"}, infos)

	require.Len(t, matched, 1)
	assert.Equal(t, target.ID("mine"), matched[0].TargetID)
}

func TestMatchFrameTargetsFiltersTypeAndFragment(t *testing.T) {
	infos := []*target.Info{
		{TargetID: "page", Type: "page", URL: "https://app.powerbi.com/view?r=abc"},
		{TargetID: "frame", Type: "iframe", URL: "https://app.powerbi.com/view?r=abc#report"},
	}

	matched := matchFrameTargets([]string{"https://app.powerbi.com/view?r=abc"}, infos)

	require.Len(t, matched, 1, "page targets must not match; fragments must not block a match")
	assert.Equal(t, target.ID("frame"), matched[0].TargetID)
}

func TestMatchFrameTargetsNeverReusesATarget(t *testing.T) {
	infos := []*target.Info{
		{TargetID: "only", Type: "iframe", URL: "https://app.powerbi.com/view?r=abc"},
	}
	frameURLs := []string{
		"https://app.powerbi.com/view?r=abc",
		"https://app.powerbi.com/view?r=abc",
	}

	matched := matchFrameTargets(frameURLs, infos)
	require.Len(t, matched, 1)
}

func TestBestFrameSource(t *testing.T) {
	tests := []struct {
		name string
		srcs []string
		want string
	}{
		{name: "empty list", srcs: nil, want: ""},
		{name: "all empty", srcs: []string{"", ""}, want: ""},
		{
			name: "longest wins",
			srcs: []string{
				"https://t.co/x",
				"https://app.powerbi.com/view?r=eyJrIjoiLongParameterizedEmbed",
				"https://upa.test/ad",
			},
			want: "https://app.powerbi.com/view?r=eyJrIjoiLongParameterizedEmbed",
		},
		{
			name: "equal lengths keep first",
			srcs: []string{"https://upa.test/aa", "https://upa.test/bb"},
			want: "https://upa.test/aa",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, bestFrameSource(tt.srcs))
		})
	}
}
