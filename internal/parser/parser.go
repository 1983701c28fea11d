// Package parser converts raw dashboard markup into typed queue metrics.
//
// The dashboards are rendered by Power BI, so there is no stable DOM to
// select against. The parser leans on aria-label attributes as the
// primary field signal and degrades to a raw-text window scan when the
// labels come back truncated. It never fails: malformed input yields a
// fully-shaped result with nil fields.
package parser

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/JeanCarlos070456/web-scraping-upa/internal/dashboard"
)

var (
	updatedAtRe = regexp.MustCompile(`ATUALIZADO EM\s+(\d{2}/\d{2}/\d{4}\s+\d{2}:\d{2}:\d{2})`)
	timeRe      = regexp.MustCompile(`\b(\d{2}:\d{2}:\d{2})\b`)
	clockRe     = regexp.MustCompile(`\d{2}:\d{2}:\d{2}`)
	intRe       = regexp.MustCompile(`\b\d+\b`)
	wsRe        = regexp.MustCompile(`\s+`)
)

// Recent calendar years are dropped by the count heuristic: a card that
// renders "ATUALIZADO EM 05/01/2025" must not parse 2025 as a queue.
var yearBlocklist = map[int]struct{}{
	2020: {}, 2021: {}, 2022: {}, 2023: {}, 2024: {}, 2025: {}, 2026: {},
}

// Raw-text window taken around a color-name match in the fallback pass.
// Tuned against the live dashboards; the asymmetry is intentional since
// figures render after the label.
const (
	windowBefore = 120
	windowAfter  = 220
)

// Normalize decomposes accents to their base letters, uppercases, and
// collapses whitespace. All keyword matching happens on this form.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.TrimSpace(wsRe.ReplaceAllString(strings.ToUpper(out), " "))
}

// Parse extracts queue metrics from dashboard markup. It always returns
// a result with every classification color present.
func Parse(markup string) dashboard.ParsedMetrics {
	out := dashboard.NewParsedMetrics()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return out
	}

	rawText := documentText(doc)
	normText := Normalize(rawText)

	if m := updatedAtRe.FindStringSubmatch(normText); m != nil {
		out.UpdatedAt = &m[1]
	}

	doc.Find("[aria-label]").Each(func(_ int, sel *goquery.Selection) {
		ariaRaw := strings.TrimSpace(sel.AttrOr("aria-label", ""))
		if ariaRaw == "" {
			return
		}
		aria := Normalize(ariaRaw)
		text := strings.TrimSpace(sel.Text())
		textNorm := Normalize(text)

		switch {
		case containsEither(aria, textNorm, "PACIENTES NA UNIDADE"):
			setIfNil(&out.PatientsInUnit, pickPatientCount(ariaRaw, text))
		case containsEither(aria, textNorm, "AGUARDANDO REGULACAO"):
			setIfNil(&out.PatientsAwaitingRegulation, pickPatientCount(ariaRaw, text))
		case physicianQueueNode(aria, textNorm):
			setIfNil(&out.PatientsAwaitingPhysician, pickPatientCount(ariaRaw, text))
		default:
			applyClassification(out.Classifications, ariaRaw, aria, text, textNorm)
		}
	})

	// Fallback for colors whose aria-labels came back truncated: scan a
	// raw-text window around the color name instead.
	for _, color := range dashboard.Colors {
		cls := out.Classifications[color]
		if cls.Patients != nil {
			continue
		}
		idx := strings.Index(normText, string(color))
		if idx < 0 {
			continue
		}
		window := sliceWindow(rawText, idx)
		windowNorm := Normalize(window)
		if !containsAny(windowNorm, "CLASSIF", "RISCO", "TEMPO") {
			continue
		}
		cls.Patients = pickPatientCount(window)
		if cls.AverageWait == nil {
			cls.AverageWait = extractTime(window)
		}
		out.Classifications[color] = cls
	}

	return out
}

// applyClassification handles one aria-labeled node that may carry a
// triage color's figures. First non-nil value per field wins; a later
// node never overwrites an earlier extraction.
func applyClassification(
	classifications map[dashboard.TriageColor]dashboard.Classification,
	ariaRaw, aria, text, textNorm string,
) {
	var color dashboard.TriageColor
	for _, c := range dashboard.Colors {
		if containsEither(aria, textNorm, string(c)) {
			color = c
			break
		}
	}
	if color == "" {
		return
	}
	gate := containsAny(aria, "CLASSIF", "RISCO", "TEMPO", "PACIENT") ||
		containsAny(textNorm, "CLASSIF", "RISCO", "TEMPO", "PACIENT")
	if !gate {
		return
	}

	wait := extractTime(ariaRaw, text, aria, textNorm)
	patients := pickPatientCount(ariaRaw, text)

	cls := classifications[color]
	if cls.Patients == nil && patients != nil {
		cls.Patients = patients
	}
	if cls.AverageWait == nil && wait != nil {
		cls.AverageWait = wait
	}
	classifications[color] = cls
}

// physicianQueueNode matches the "aguardando atendimento médico" card,
// whose wording varies between units. Requiring a patient/queue word
// filters out unrelated "atendimento" labels.
func physicianQueueNode(aria, textNorm string) bool {
	if !containsEither(aria, textNorm, "ATENDIMENTO") || !containsEither(aria, textNorm, "MEDICO") {
		return false
	}
	return containsAny(aria, "PACIENT", "AGUARD") || containsAny(textNorm, "PACIENT", "AGUARD")
}

// pickPatientCount extracts the first plausible patient count from the
// candidate texts in order. Clock-shaped substrings are stripped first
// so "03 00:10:00" yields 3, never 10; integers outside 0..9999 and
// recent calendar years are discarded.
func pickPatientCount(texts ...string) *int {
	for _, text := range texts {
		if text == "" {
			continue
		}
		stripped := clockRe.ReplaceAllString(text, " ")
		for _, token := range intRe.FindAllString(stripped, -1) {
			n, err := strconv.Atoi(token)
			if err != nil {
				continue
			}
			if n < 0 || n > 9999 {
				continue
			}
			if _, blocked := yearBlocklist[n]; blocked {
				continue
			}
			return &n
		}
	}
	return nil
}

// extractTime returns the first HH:MM:SS found in the candidate texts,
// or the literal "IMEDIATO" when the dashboard shows no wait at all.
func extractTime(texts ...string) *string {
	for _, text := range texts {
		if text == "" {
			continue
		}
		if m := timeRe.FindStringSubmatch(text); m != nil {
			return &m[1]
		}
		if strings.Contains(Normalize(text), "IMEDIATO") {
			v := "IMEDIATO"
			return &v
		}
	}
	return nil
}

// documentText joins every text node with single spaces, the way a
// human reads the page top to bottom.
func documentText(doc *goquery.Document) string {
	var parts []string
	for _, root := range doc.Selection.Nodes {
		collectText(root, &parts)
	}
	return strings.Join(parts, " ")
}

func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return
	}
	if n.Type == html.TextNode {
		if trimmed := strings.TrimSpace(n.Data); trimmed != "" {
			*parts = append(*parts, trimmed)
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		collectText(child, parts)
	}
}

func sliceWindow(raw string, idx int) string {
	lo := idx - windowBefore
	if lo < 0 {
		lo = 0
	}
	if lo > len(raw) {
		lo = len(raw)
	}
	hi := idx + windowAfter
	if hi > len(raw) {
		hi = len(raw)
	}
	return raw[lo:hi]
}

func containsEither(a, b, needle string) bool {
	return strings.Contains(a, needle) || strings.Contains(b, needle)
}

func containsAny(haystack string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}

func setIfNil(dst **int, value *int) {
	if *dst == nil && value != nil {
		*dst = value
	}
}
