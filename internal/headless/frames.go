package headless

import (
	"net/url"
	"strings"

	"github.com/chromedp/cdproto/target"
)

// resolveFrameSources converts discovered iframe src values to absolute
// URLs against the page address, preserving document order. Empty and
// unparseable entries are dropped.
func resolveFrameSources(pageURL string, srcs []string) []string {
	base, baseErr := url.Parse(pageURL)
	out := make([]string, 0, len(srcs))
	for _, src := range srcs {
		if src == "" {
			continue
		}
		if baseErr != nil {
			out = append(out, src)
			continue
		}
		ref, err := url.Parse(src)
		if err != nil {
			continue
		}
		out = append(out, base.ResolveReference(ref).String())
	}
	return out
}

// matchFrameTargets returns the iframe targets that belong to this
// tab's discovered frames, in discovery order. The browser reports
// cross-origin frames as browser-wide targets, so with several tabs
// rendering different dashboards at once the target list contains
// other tabs' embeds too; attaching to one of those would hand this
// fetch another page's markup. Matching against the frame addresses
// collected from this tab's own document keeps the probe inside it.
func matchFrameTargets(frameURLs []string, infos []*target.Info) []*target.Info {
	used := make(map[target.ID]struct{}, len(infos))
	matched := make([]*target.Info, 0, len(frameURLs))
	for _, frameURL := range frameURLs {
		for _, info := range infos {
			if info.Type != "iframe" {
				continue
			}
			if _, taken := used[info.TargetID]; taken {
				continue
			}
			if !sameFrameURL(info.URL, frameURL) {
				continue
			}
			used[info.TargetID] = struct{}{}
			matched = append(matched, info)
			break
		}
	}
	return matched
}

// sameFrameURL compares frame addresses ignoring the fragment, which
// embeds rewrite after navigation.
func sameFrameURL(a, b string) bool {
	return stripFragment(a) == stripFragment(b)
}

func stripFragment(raw string) string {
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		return raw[:i]
	}
	return raw
}

// bestFrameSource picks the fallback navigation address: the longest
// non-empty src. A deliberate, reproducible tie-break that favors the
// fully-parameterized embed URL over tracker stubs; it carries no
// semantic meaning beyond that.
func bestFrameSource(srcs []string) string {
	best := ""
	for _, src := range srcs {
		if src != "" && len(src) > len(best) {
			best = src
		}
	}
	return best
}
