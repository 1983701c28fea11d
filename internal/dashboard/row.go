package dashboard

import "strconv"

// Row is the flat per-target record handed to the presentation layer.
// Column names mirror the exported CSV so the two stay in sync.
type Row struct {
	Target                     string  `json:"upa"`
	URL                        string  `json:"url"`
	UpdatedAt                  *string `json:"updated_at"`
	PatientsInUnit             *int    `json:"pacientes_unidade"`
	PatientsAwaitingRegulation *int    `json:"pacientes_regulacao"`
	PatientsAwaitingPhysician  *int    `json:"pacientes_at_medico"`
	BluePatients               *int    `json:"azul_pacientes"`
	BlueAverageWait            *string `json:"azul_tempo_medio"`
	GreenPatients              *int    `json:"verde_pacientes"`
	GreenAverageWait           *string `json:"verde_tempo_medio"`
	YellowPatients             *int    `json:"amarelo_pacientes"`
	YellowAverageWait          *string `json:"amarelo_tempo_medio"`
	OrangePatients             *int    `json:"laranja_pacientes"`
	OrangeAverageWait          *string `json:"laranja_tempo_medio"`
	RedPatients                *int    `json:"vermelho_pacientes"`
	RedAverageWait             *string `json:"vermelho_tempo_medio"`
	Error                      string  `json:"erro,omitempty"`
}

// FlattenRow folds one target's parsed metrics into a Row.
func FlattenRow(target Target, metrics ParsedMetrics) Row {
	row := Row{
		Target:                     target.Name,
		URL:                        target.URL,
		UpdatedAt:                  metrics.UpdatedAt,
		PatientsInUnit:             metrics.PatientsInUnit,
		PatientsAwaitingRegulation: metrics.PatientsAwaitingRegulation,
		PatientsAwaitingPhysician:  metrics.PatientsAwaitingPhysician,
	}
	blue := metrics.Classifications[ColorBlue]
	green := metrics.Classifications[ColorGreen]
	yellow := metrics.Classifications[ColorYellow]
	orange := metrics.Classifications[ColorOrange]
	red := metrics.Classifications[ColorRed]

	row.BluePatients, row.BlueAverageWait = blue.Patients, blue.AverageWait
	row.GreenPatients, row.GreenAverageWait = green.Patients, green.AverageWait
	row.YellowPatients, row.YellowAverageWait = yellow.Patients, yellow.AverageWait
	row.OrangePatients, row.OrangeAverageWait = orange.Patients, orange.AverageWait
	row.RedPatients, row.RedAverageWait = red.Patients, red.AverageWait
	return row
}

// ErrorRow builds an all-null Row annotated with the failure message.
func ErrorRow(target Target, err error) Row {
	row := Row{Target: target.Name, URL: target.URL}
	if err != nil {
		row.Error = err.Error()
	}
	return row
}

// RowColumns is the stable CSV column order.
func RowColumns() []string {
	return []string{
		"upa", "url", "updated_at",
		"pacientes_unidade", "pacientes_regulacao", "pacientes_at_medico",
		"azul_pacientes", "azul_tempo_medio",
		"verde_pacientes", "verde_tempo_medio",
		"amarelo_pacientes", "amarelo_tempo_medio",
		"laranja_pacientes", "laranja_tempo_medio",
		"vermelho_pacientes", "vermelho_tempo_medio",
		"erro",
	}
}

// Record serializes the row in RowColumns order, with empty strings
// for nil fields.
func (r Row) Record() []string {
	return []string{
		r.Target, r.URL, strOrEmpty(r.UpdatedAt),
		intOrEmpty(r.PatientsInUnit), intOrEmpty(r.PatientsAwaitingRegulation), intOrEmpty(r.PatientsAwaitingPhysician),
		intOrEmpty(r.BluePatients), strOrEmpty(r.BlueAverageWait),
		intOrEmpty(r.GreenPatients), strOrEmpty(r.GreenAverageWait),
		intOrEmpty(r.YellowPatients), strOrEmpty(r.YellowAverageWait),
		intOrEmpty(r.OrangePatients), strOrEmpty(r.OrangeAverageWait),
		intOrEmpty(r.RedPatients), strOrEmpty(r.RedAverageWait),
		r.Error,
	}
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intOrEmpty(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}
