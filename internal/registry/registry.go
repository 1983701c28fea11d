// Package registry holds the static name -> URL mapping of monitored
// dashboards.
package registry

import (
	"fmt"
	"sort"

	"github.com/JeanCarlos070456/web-scraping-upa/internal/dashboard"
)

// Defaults returns the built-in UPA registry, sorted by name. Operators
// can replace it entirely via configuration.
func Defaults() []dashboard.Target {
	targets := []dashboard.Target{
		{Name: "UPA Brazlândia", URL: "https://igesdf.org.br/unidades/upa-brazlandia/"},
		{Name: "UPA Ceilândia", URL: "https://igesdf.org.br/unidades/upa-ceilandia/"},
		{Name: "UPA Gama", URL: "https://igesdf.org.br/unidades/upa-gama/"},
		{Name: "UPA Núcleo Bandeirante", URL: "https://igesdf.org.br/unidades/upa-nucleo-bandeirante/"},
		{Name: "UPA Paranoá", URL: "https://igesdf.org.br/unidades/upa-paranoa/"},
		{Name: "UPA Planaltina", URL: "https://igesdf.org.br/unidades/upa-planaltina/"},
		{Name: "UPA Recanto das Emas", URL: "https://igesdf.org.br/unidades/upa-recanto-das-emas/"},
		{Name: "UPA Riacho Fundo II", URL: "https://igesdf.org.br/unidades/upa-riacho-fundo-ii/"},
		{Name: "UPA Samambaia", URL: "https://igesdf.org.br/unidades/upa-samambaia/"},
		{Name: "UPA São Sebastião", URL: "https://igesdf.org.br/unidades/upa-sao-sebastiao/"},
		{Name: "UPA Sobradinho", URL: "https://igesdf.org.br/unidades/upa-sobradinho/"},
		{Name: "UPA Vicente Pires", URL: "https://igesdf.org.br/unidades/upa-vicente-pires/"},
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].Name < targets[j].Name })
	return targets
}

// Validate rejects registries with blank or duplicate names/URLs.
func Validate(targets []dashboard.Target) error {
	if len(targets) == 0 {
		return fmt.Errorf("registry must contain at least one target")
	}
	seenNames := make(map[string]struct{}, len(targets))
	seenURLs := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		if t.Name == "" || t.URL == "" {
			return fmt.Errorf("registry entries need both name and url (got name=%q url=%q)", t.Name, t.URL)
		}
		if _, dup := seenNames[t.Name]; dup {
			return fmt.Errorf("duplicate target name %q", t.Name)
		}
		if _, dup := seenURLs[t.URL]; dup {
			return fmt.Errorf("duplicate target url %q", t.URL)
		}
		seenNames[t.Name] = struct{}{}
		seenURLs[t.URL] = struct{}{}
	}
	return nil
}

// Find returns the target with the given name.
func Find(targets []dashboard.Target, name string) (dashboard.Target, bool) {
	for _, t := range targets {
		if t.Name == name {
			return t, true
		}
	}
	return dashboard.Target{}, false
}
