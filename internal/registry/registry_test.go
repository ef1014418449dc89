package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/tsunami-risk-service/internal/domain"
)

func TestLoad_Embedded(t *testing.T) {
	r, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, []string{"atlantic", "indian", "mediterranean", "pacific"}, r.Regions())

	stations, err := r.Stations("pacific")
	require.NoError(t, err)
	require.NotEmpty(t, stations)
	assert.Equal(t, "hilo", stations[0].ID)
	for _, st := range stations {
		assert.Equal(t, "pacific", st.Region)
		assert.NotEmpty(t, st.ProviderCode)
	}
}

func TestSecondaryFor(t *testing.T) {
	r, err := Load("")
	require.NoError(t, err)

	buoy, ok := r.SecondaryFor("pacific")
	assert.True(t, ok)
	assert.Equal(t, "51001", buoy)

	_, ok = r.SecondaryFor("indian")
	assert.False(t, ok, "indian has no buoy mapping")

	_, ok = r.SecondaryFor("arctic")
	assert.False(t, ok)
}

func TestRegion_Unknown(t *testing.T) {
	r, err := Load("")
	require.NoError(t, err)

	_, err = r.Region("arctic")
	require.ErrorIs(t, err, domain.ErrUnknownRegion)

	_, err = r.Stations("arctic")
	require.ErrorIs(t, err, domain.ErrUnknownRegion)

	assert.Equal(t, domain.DefaultTideProfile, r.TideFor("arctic"))
}

func TestStations_ReturnsCopy(t *testing.T) {
	r, err := Load("")
	require.NoError(t, err)

	first, err := r.Stations("atlantic")
	require.NoError(t, err)
	first[0].DisplayName = "mutated"

	second, err := r.Stations("atlantic")
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", second[0].DisplayName)
}

func TestParse_AppliesDefaults(t *testing.T) {
	r, err := Parse([]byte(`
regions:
  test:
    tide:
      tide_amplitude: 0.9
    stations:
      - {id: a, name: A, latitude: 1, longitude: 2}
`))
	require.NoError(t, err)

	tide := r.TideFor("test")
	assert.InDelta(t, 5.0, tide.Baseline, 1e-9)
	assert.InDelta(t, 0.9, tide.TideAmplitude, 1e-9)
	assert.InDelta(t, 0.2, tide.WaveAmplitude, 1e-9)

	stations, err := r.Stations("test")
	require.NoError(t, err)
	assert.Equal(t, "a", stations[0].ProviderCode, "provider code defaults to the station id")
}

func TestParse_KeepsExplicitZeroAmplitudes(t *testing.T) {
	r, err := Parse([]byte(`
regions:
  calm:
    tide:
      tide_amplitude: 0
      wave_amplitude: 0
    stations:
      - {id: a, name: A, latitude: 1, longitude: 2}
`))
	require.NoError(t, err)

	tide := r.TideFor("calm")
	assert.InDelta(t, 5.0, tide.Baseline, 1e-9)
	assert.InDelta(t, 0, tide.TideAmplitude, 0)
	assert.InDelta(t, 0, tide.WaveAmplitude, 0)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"not yaml", "regions: [", "parse station registry"},
		{"no regions", "regions: {}", "no regions"},
		{"no stations", "regions:\n  x:\n    stations: []", "no stations"},
		{"missing id", "regions:\n  x:\n    stations:\n      - {name: A}", "without id"},
		{"bad latitude", "regions:\n  x:\n    stations:\n      - {id: a, latitude: 91}", "latitude"},
		{"bad longitude", "regions:\n  x:\n    stations:\n      - {id: a, longitude: -181}", "longitude"},
		{"duplicate id", "regions:\n  x:\n    stations:\n      - {id: a}\n  y:\n    stations:\n      - {id: a}", "defined in both"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stations.yaml")
	require.NoError(t, os.WriteFile(path, []byte("regions:\n  only:\n    stations:\n      - {id: s1}\n"), 0o600))

	r, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"only"}, r.Regions())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
