// Package registry holds the static region → station mapping and the
// per-region constants the telemetry chain needs. The registry is loaded once
// at startup and is read-only afterwards, so it is safe for concurrent use.
package registry

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/tsunami-risk-service/internal/domain"
)

//go:embed stations.yaml
var embeddedStations []byte

// Region is the static configuration of one ocean region.
type Region struct {
	Key           string
	SecondaryBuoy string
	Tide          domain.TideProfile
	BBox          domain.BoundingBox
	Stations      []domain.Station
}

type file struct {
	Regions map[string]*regionFile `yaml:"regions"`
}

type regionFile struct {
	SecondaryBuoy string             `yaml:"secondary_buoy"`
	Tide          tideFile           `yaml:"tide"`
	BBox          domain.BoundingBox `yaml:"bbox"`
	Stations      []domain.Station   `yaml:"stations"`
}

// tideFile uses pointers so an explicit 0 is kept; only absent keys take
// the default.
type tideFile struct {
	Baseline      *float64 `yaml:"baseline" default:"5.0"`
	TideAmplitude *float64 `yaml:"tide_amplitude" default:"0.5"`
	WaveAmplitude *float64 `yaml:"wave_amplitude" default:"0.2"`
}

func (t tideFile) profile() domain.TideProfile {
	return domain.TideProfile{
		Baseline:      *t.Baseline,
		TideAmplitude: *t.TideAmplitude,
		WaveAmplitude: *t.WaveAmplitude,
	}
}

// Registry is an immutable region lookup.
type Registry struct {
	regions map[string]Region
	keys    []string
}

// Load reads the registry from path, or from the embedded station list when
// path is empty.
func Load(path string) (*Registry, error) {
	data := embeddedStations
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read station registry: %w", err)
		}
		data = b
	}
	return Parse(data)
}

// Parse decodes and validates a YAML station registry.
func Parse(data []byte) (*Registry, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse station registry: %w", err)
	}
	if len(f.Regions) == 0 {
		return nil, errors.New("station registry has no regions")
	}

	r := &Registry{regions: make(map[string]Region, len(f.Regions))}
	seen := make(map[string]string)

	for key, region := range f.Regions {
		if region == nil {
			return nil, fmt.Errorf("region %q: empty definition", key)
		}
		if err := defaults.Set(&region.Tide); err != nil {
			return nil, fmt.Errorf("region %q: apply defaults: %w", key, err)
		}
		if len(region.Stations) == 0 {
			return nil, fmt.Errorf("region %q: no stations", key)
		}
		for i := range region.Stations {
			st := &region.Stations[i]
			if err := validateStation(*st); err != nil {
				return nil, fmt.Errorf("region %q: %w", key, err)
			}
			if other, dup := seen[st.ID]; dup {
				return nil, fmt.Errorf("station %q defined in both %q and %q", st.ID, other, key)
			}
			seen[st.ID] = key
			st.Region = key
			if st.ProviderCode == "" {
				st.ProviderCode = st.ID
			}
		}
		r.regions[key] = Region{
			Key:           key,
			SecondaryBuoy: region.SecondaryBuoy,
			Tide:          region.Tide.profile(),
			BBox:          region.BBox,
			Stations:      region.Stations,
		}
		r.keys = append(r.keys, key)
	}
	sort.Strings(r.keys)
	return r, nil
}

func validateStation(st domain.Station) error {
	if st.ID == "" {
		return errors.New("station without id")
	}
	if st.Latitude < -90 || st.Latitude > 90 {
		return fmt.Errorf("station %q: latitude %g out of range", st.ID, st.Latitude)
	}
	if st.Longitude < -180 || st.Longitude > 180 {
		return fmt.Errorf("station %q: longitude %g out of range", st.ID, st.Longitude)
	}
	return nil
}

// Regions returns the sorted region keys.
func (r *Registry) Regions() []string {
	return append([]string(nil), r.keys...)
}

// Region returns the configuration for key.
func (r *Registry) Region(key string) (Region, error) {
	region, ok := r.regions[key]
	if !ok {
		return Region{}, fmt.Errorf("%w: %q", domain.ErrUnknownRegion, key)
	}
	return region, nil
}

// Stations returns the ordered stations of a region.
func (r *Registry) Stations(key string) ([]domain.Station, error) {
	region, err := r.Region(key)
	if err != nil {
		return nil, err
	}
	return append([]domain.Station(nil), region.Stations...), nil
}

// SecondaryFor returns the NDBC buoy mapped to a region, if any.
func (r *Registry) SecondaryFor(key string) (string, bool) {
	region, ok := r.regions[key]
	if !ok || region.SecondaryBuoy == "" {
		return "", false
	}
	return region.SecondaryBuoy, true
}

// TideFor returns the fallback constants of a region, or the defaults for an
// unknown region.
func (r *Registry) TideFor(key string) domain.TideProfile {
	region, ok := r.regions[key]
	if !ok {
		return domain.DefaultTideProfile
	}
	return region.Tide
}
