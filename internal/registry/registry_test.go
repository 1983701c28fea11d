package registry

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JeanCarlos070456/web-scraping-upa/internal/dashboard"
)

func TestDefaultsAreValidAndSorted(t *testing.T) {
	targets := Defaults()
	require.NotEmpty(t, targets)
	require.NoError(t, Validate(targets))

	assert.True(t, sort.SliceIsSorted(targets, func(i, j int) bool {
		return targets[i].Name < targets[j].Name
	}))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		targets []dashboard.Target
		wantErr bool
	}{
		{name: "empty", targets: nil, wantErr: true},
		{name: "blank name", targets: []dashboard.Target{{URL: "http://x"}}, wantErr: true},
		{name: "blank url", targets: []dashboard.Target{{Name: "X"}}, wantErr: true},
		{
			name: "duplicate name",
			targets: []dashboard.Target{
				{Name: "X", URL: "http://a"},
				{Name: "X", URL: "http://b"},
			},
			wantErr: true,
		},
		{
			name: "duplicate url",
			targets: []dashboard.Target{
				{Name: "X", URL: "http://a"},
				{Name: "Y", URL: "http://a"},
			},
			wantErr: true,
		},
		{
			name: "valid",
			targets: []dashboard.Target{
				{Name: "X", URL: "http://a"},
				{Name: "Y", URL: "http://b"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.targets)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFind(t *testing.T) {
	targets := Defaults()

	got, ok := Find(targets, targets[0].Name)
	require.True(t, ok)
	assert.Equal(t, targets[0], got)

	_, ok = Find(targets, "UPA Inexistente")
	assert.False(t, ok)
}
