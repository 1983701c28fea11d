// Package dashboard defines the core types shared across the scrape pipeline.
package dashboard

import (
	"context"
	"time"
)

// Strategy identifies how a page's markup was obtained.
type Strategy string

// Fetch strategies recorded on every FetchResult.
const (
	StrategyDirectHTTP    Strategy = "direct-http"
	StrategyRenderedTop   Strategy = "rendered-top"
	StrategyRenderedFrame Strategy = "rendered-frame"
)

// FetchResult is the immutable outcome of one successful fetch attempt.
type FetchResult struct {
	URL         string
	StatusCode  int
	HTML        string
	Strategy    Strategy
	FrameSource string
}

// TriageColor is one of the five risk-classification colors used by the
// dashboards. Values are the uppercase Portuguese names as they appear
// in the rendered markup.
type TriageColor string

// Classification colors in document/priority order.
const (
	ColorBlue   TriageColor = "AZUL"
	ColorGreen  TriageColor = "VERDE"
	ColorYellow TriageColor = "AMARELO"
	ColorOrange TriageColor = "LARANJA"
	ColorRed    TriageColor = "VERMELHO"
)

// Colors lists every triage color. Iteration order matters for the
// parser fallback pass and for the flattened row columns.
var Colors = []TriageColor{ColorBlue, ColorGreen, ColorYellow, ColorOrange, ColorRed}

// Classification carries the per-color queue figures. Nil fields mean
// the value could not be extracted from the markup.
type Classification struct {
	Patients    *int    `json:"pacientes"`
	AverageWait *string `json:"tempo_medio"`
}

// ParsedMetrics is the structured result of parsing one dashboard.
// Classifications always contains an entry for every triage color;
// missing data is expressed through nil fields, never a missing key.
type ParsedMetrics struct {
	UpdatedAt                  *string                        `json:"updated_at"`
	PatientsInUnit             *int                           `json:"pacientes_unidade"`
	PatientsAwaitingRegulation *int                           `json:"pacientes_regulacao"`
	PatientsAwaitingPhysician  *int                           `json:"pacientes_at_medico"`
	Classifications            map[TriageColor]Classification `json:"classificacoes"`
}

// NewParsedMetrics returns an empty result with every color key present.
func NewParsedMetrics() ParsedMetrics {
	classifications := make(map[TriageColor]Classification, len(Colors))
	for _, color := range Colors {
		classifications[color] = Classification{}
	}
	return ParsedMetrics{Classifications: classifications}
}

// Target is one named dashboard endpoint from the registry.
type Target struct {
	Name string `json:"name" mapstructure:"name"`
	URL  string `json:"url" mapstructure:"url"`
}

// Fetcher produces the markup for a target URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (FetchResult, error)
}

// Cache is the disk-backed TTL store for parsed results. Get fails
// soft: any read problem is reported as a miss.
type Cache interface {
	Get(key string, ttl time.Duration) (ParsedMetrics, bool)
	Set(key string, value ParsedMetrics) error
}
