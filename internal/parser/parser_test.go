package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JeanCarlos070456/web-scraping-upa/internal/dashboard"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "accents stripped", in: "Classificação de risco", want: "CLASSIFICACAO DE RISCO"},
		{name: "whitespace collapsed", in: "  pacientes \n\t na   unidade ", want: "PACIENTES NA UNIDADE"},
		{name: "already normalized", in: "VERMELHO", want: "VERMELHO"},
		{name: "empty", in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestPickPatientCount(t *testing.T) {
	tests := []struct {
		name  string
		texts []string
		want  *int
	}{
		{name: "plain count", texts: []string{"Pacientes na Unidade: 12"}, want: intPtr(12)},
		{name: "clock stripped before count", texts: []string{"03 00:10:00"}, want: intPtr(3)},
		{name: "zero is valid", texts: []string{"0 pacientes"}, want: intPtr(0)},
		{name: "upper bound", texts: []string{"9999"}, want: intPtr(9999)},
		{name: "out of range", texts: []string{"12345"}, want: nil},
		{name: "recent year skipped", texts: []string{"2025"}, want: nil},
		{name: "year then count", texts: []string{"2024 7"}, want: intPtr(7)},
		{name: "no digits", texts: []string{"sem dados"}, want: nil},
		{name: "first candidate wins", texts: []string{"", "5", "9"}, want: intPtr(5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pickPatientCount(tt.texts...))
		})
	}
}

func TestExtractTime(t *testing.T) {
	tests := []struct {
		name  string
		texts []string
		want  *string
	}{
		{name: "clock", texts: []string{"tempo médio 00:45:12"}, want: strPtr("00:45:12")},
		{name: "imediato", texts: []string{"Atendimento Imediato"}, want: strPtr("IMEDIATO")},
		{name: "clock beats imediato in same text", texts: []string{"imediato 00:01:02"}, want: strPtr("00:01:02")},
		{name: "nothing", texts: []string{"7 pacientes"}, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractTime(tt.texts...))
		})
	}
}

func TestParseEmptyMarkupKeepsFullShape(t *testing.T) {
	got := Parse("")

	assert.Nil(t, got.UpdatedAt)
	assert.Nil(t, got.PatientsInUnit)
	assert.Nil(t, got.PatientsAwaitingRegulation)
	assert.Nil(t, got.PatientsAwaitingPhysician)
	require.Len(t, got.Classifications, len(dashboard.Colors))
	for _, color := range dashboard.Colors {
		cls, ok := got.Classifications[color]
		require.True(t, ok, "color %s missing", color)
		assert.Nil(t, cls.Patients)
		assert.Nil(t, cls.AverageWait)
	}
}

func TestParseCardinalCounts(t *testing.T) {
	markup := `<html><body>
		<div aria-label="Pacientes na Unidade: 12"></div>
		<div aria-label="Pacientes Aguardando Regulação 4"></div>
		<div aria-label="Pacientes aguardando atendimento médico 5"></div>
	</body></html>`

	got := Parse(markup)

	require.NotNil(t, got.PatientsInUnit)
	assert.Equal(t, 12, *got.PatientsInUnit)
	require.NotNil(t, got.PatientsAwaitingRegulation)
	assert.Equal(t, 4, *got.PatientsAwaitingRegulation)
	require.NotNil(t, got.PatientsAwaitingPhysician)
	assert.Equal(t, 5, *got.PatientsAwaitingPhysician)
}

func TestParseClassificationFromAriaLabel(t *testing.T) {
	markup := `<html><body>
		<div aria-label="Classificação AZUL. 3 00:10:00"></div>
		<div aria-label="Classificação VERMELHO. Atendimento Imediato. 2 pacientes"></div>
	</body></html>`

	got := Parse(markup)

	blue := got.Classifications[dashboard.ColorBlue]
	require.NotNil(t, blue.Patients)
	assert.Equal(t, 3, *blue.Patients)
	require.NotNil(t, blue.AverageWait)
	assert.Equal(t, "00:10:00", *blue.AverageWait)

	red := got.Classifications[dashboard.ColorRed]
	require.NotNil(t, red.Patients)
	assert.Equal(t, 2, *red.Patients)
	require.NotNil(t, red.AverageWait)
	assert.Equal(t, "IMEDIATO", *red.AverageWait)

	green := got.Classifications[dashboard.ColorGreen]
	assert.Nil(t, green.Patients)
	assert.Nil(t, green.AverageWait)
}

func TestParseClassificationLabelWithTextFigures(t *testing.T) {
	// Some cards carry the color in the aria-label and the figures only
	// in the node text.
	markup := `<html><body>
		<div aria-label="Classificação AZUL">3 00:10:00</div>
	</body></html>`

	got := Parse(markup)

	blue := got.Classifications[dashboard.ColorBlue]
	require.NotNil(t, blue.Patients)
	assert.Equal(t, 3, *blue.Patients)
	require.NotNil(t, blue.AverageWait)
	assert.Equal(t, "00:10:00", *blue.AverageWait)
}

func TestParseFirstExtractionWins(t *testing.T) {
	markup := `<html><body>
		<div aria-label="Pacientes na Unidade: 12"></div>
		<div aria-label="Pacientes na Unidade: 99"></div>
		<div aria-label="Classificação AMARELO. 6 pacientes 00:20:00"></div>
		<div aria-label="Classificação AMARELO. 8 pacientes 01:00:00"></div>
	</body></html>`

	got := Parse(markup)

	require.NotNil(t, got.PatientsInUnit)
	assert.Equal(t, 12, *got.PatientsInUnit)

	yellow := got.Classifications[dashboard.ColorYellow]
	require.NotNil(t, yellow.Patients)
	assert.Equal(t, 6, *yellow.Patients)
	require.NotNil(t, yellow.AverageWait)
	assert.Equal(t, "00:20:00", *yellow.AverageWait)
}

func TestParseColorWithoutGateIsIgnored(t *testing.T) {
	// A bare color mention with no classification context must not
	// produce figures.
	markup := `<html><body>
		<div aria-label="Fachada VERDE do prédio 77"></div>
	</body></html>`

	got := Parse(markup)

	green := got.Classifications[dashboard.ColorGreen]
	assert.Nil(t, green.Patients)
	assert.Nil(t, green.AverageWait)
}

func TestParseUpdatedAt(t *testing.T) {
	markup := `<html><body>
		<span>Atualizado em 05/01/2025 14:32:10</span>
	</body></html>`

	got := Parse(markup)

	require.NotNil(t, got.UpdatedAt)
	assert.Equal(t, "05/01/2025 14:32:10", *got.UpdatedAt)
}

func TestParseFallbackWindowScan(t *testing.T) {
	// No aria-labels at all: the raw-text window around the color name
	// must still be mined, gated on classification context words.
	markup := `<html><body>
		<span>VERMELHO</span>
		<span>Classificação de risco</span>
		<span>7</span>
		<span>00:45:12</span>
	</body></html>`

	got := Parse(markup)

	red := got.Classifications[dashboard.ColorRed]
	require.NotNil(t, red.Patients)
	assert.Equal(t, 7, *red.Patients)
	require.NotNil(t, red.AverageWait)
	assert.Equal(t, "00:45:12", *red.AverageWait)
}

func TestParseFallbackRequiresContext(t *testing.T) {
	markup := `<html><body>
		<span>AZUL</span>
		<span>cor preferida 9</span>
	</body></html>`

	got := Parse(markup)

	blue := got.Classifications[dashboard.ColorBlue]
	assert.Nil(t, blue.Patients)
	assert.Nil(t, blue.AverageWait)
}

func TestParseSkipsScriptAndStyleText(t *testing.T) {
	markup := `<html><body>
		<script>var x = "Pacientes na Unidade: 42";</script>
		<style>.vermelho { color: red; }</style>
	</body></html>`

	got := Parse(markup)

	assert.Nil(t, got.PatientsInUnit)
	red := got.Classifications[dashboard.ColorRed]
	assert.Nil(t, red.Patients)
}

func TestParseIsIdempotent(t *testing.T) {
	markup := `<html><body>
		<div aria-label="Pacientes na Unidade: 12"></div>
		<div aria-label="Classificação LARANJA. 1 paciente 00:05:00"></div>
		<span>Atualizado em 10/02/2025 08:00:00</span>
	</body></html>`

	first := Parse(markup)
	second := Parse(markup)
	assert.Equal(t, first, second)
}

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }
