// Package domain implements the process-wide registry of NWP model
// sources described in spec.md §3 ("Domain") and §9 ("Global
// registries... become process-wide singletons with explicit
// construction"). A Registry is built once from a TOML configuration
// file at process start and is read-only afterward.
package domain

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/metio-grid/wxreader/grid"
	"github.com/metio-grid/wxreader/timerange"
)

// Domain is an immutable, process-wide registration of one NWP model
// source: its grid, native time step, update cadence, chunk length,
// and static-file locations (spec.md §3).
type Domain struct {
	// Key is the stable, snake_case registry name, also the first path
	// segment under the archive root (spec.md §6).
	Key string

	Grid grid.Grid

	// Dt is the domain's native time step in seconds.
	Dt int64

	// ChunkLength is the time-axis span, in seconds, of one physical
	// chunk file (spec.md §4.2's "L").
	ChunkLength int64

	// UpdateCadence is how often a new model run lands, in seconds. It
	// does not gate reads; it documents the expected freshness.
	UpdateCadence int64

	// ElevationFile and SoilTypeFile are the static-file keys under
	// <root>/<domain-key>/static/ (spec.md §6).
	ElevationFile string
	SoilTypeFile  string

	// MasterFileRange, when non-nil, marks this domain as exposing one
	// monolithic file spanning the given timestamp range; reads fully
	// inside it bypass chunk-index math (spec.md §4.2 "Master files").
	MasterFileRange *timerange.TimeRange

	// EnsembleMemberCount is 0 for deterministic domains, and > 0 for
	// ensemble domains (spec.md §4.5's ensembleMember/ensembleMemberLevel
	// distinction is driven by EnsemblePacked).
	EnsembleMemberCount int

	// EnsemblePacked is true when ensemble members share one file family
	// distinguished by sub-dimension index (ensembleMemberLevel),
	// false when each member routes to a disjoint file family
	// (ensembleMember), per spec.md §4.5.
	EnsemblePacked bool
}

// Registry is the read-only, process-wide set of registered domains.
type Registry struct {
	byKey map[string]*Domain
}

// NewRegistry builds a Registry from an explicit domain list, the way
// a caller that doesn't want TOML (e.g. tests) would.
func NewRegistry(domains []*Domain) *Registry {
	r := &Registry{byKey: make(map[string]*Domain, len(domains))}
	for _, d := range domains {
		r.byKey[d.Key] = d
	}
	return r
}

// Lookup returns the domain registered under key.
func (r *Registry) Lookup(key string) (*Domain, bool) {
	d, ok := r.byKey[key]
	return d, ok
}

// All returns every registered domain, in no particular order.
func (r *Registry) All() []*Domain {
	out := make([]*Domain, 0, len(r.byKey))
	for _, d := range r.byKey {
		out = append(out, d)
	}
	return out
}

// config mirrors the on-disk TOML shape, following the pattern of the
// teacher's VarGridConfig (inmaputil/inmap.go): a plain struct decoded
// directly by BurntSushi/toml, then translated into the richer runtime
// types (grid.Grid implementations aren't themselves TOML-friendly).
type config struct {
	Domains []domainConfig `toml:"domain"`
}

type domainConfig struct {
	Key                 string  `toml:"key"`
	GridType            string  `toml:"grid_type"`
	Dt                  int64   `toml:"dt"`
	ChunkLength         int64   `toml:"chunk_length"`
	UpdateCadence       int64   `toml:"update_cadence"`
	ElevationFile       string  `toml:"elevation_file"`
	SoilTypeFile        string  `toml:"soil_type_file"`
	EnsembleMemberCount int     `toml:"ensemble_member_count"`
	EnsemblePacked      bool    `toml:"ensemble_packed"`
	MasterFileStart     int64   `toml:"master_file_start"`
	MasterFileEnd       int64   `toml:"master_file_end"`

	// Grid parameters; which ones apply depends on GridType.
	NX, NY               int
	LatMin, LonMin       float64
	Dx, Dy               float64
	PoleLat, PoleLon     float64
	Lon0, Lat0, Lat1, Lat2 float64
	Radius               float64
	Hemisphere           string
}

// LoadRegistry decodes a TOML domain-registry file the way
// inmaputil.ReadConfigFile decodes VarGridConfig, then builds the grid
// for each entry via buildGrid.
func LoadRegistry(path string) (*Registry, error) {
	var cfg config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("domain: reading registry %s: %w", path, err)
	}
	domains := make([]*Domain, 0, len(cfg.Domains))
	for _, dc := range cfg.Domains {
		g, err := buildGrid(dc)
		if err != nil {
			return nil, fmt.Errorf("domain: building grid for %s: %w", dc.Key, err)
		}
		d := &Domain{
			Key:                 dc.Key,
			Grid:                g,
			Dt:                  dc.Dt,
			ChunkLength:         dc.ChunkLength,
			UpdateCadence:       dc.UpdateCadence,
			ElevationFile:       dc.ElevationFile,
			SoilTypeFile:        dc.SoilTypeFile,
			EnsembleMemberCount: dc.EnsembleMemberCount,
			EnsemblePacked:      dc.EnsemblePacked,
		}
		if dc.MasterFileEnd > dc.MasterFileStart {
			tr := timerange.New(dc.MasterFileStart, dc.MasterFileEnd, dc.Dt)
			d.MasterFileRange = &tr
		}
		domains = append(domains, d)
	}
	return NewRegistry(domains), nil
}

func buildGrid(dc domainConfig) (grid.Grid, error) {
	switch dc.GridType {
	case "regular_latlon":
		return grid.RegularLatLon{
			LatMin: dc.LatMin, LonMin: dc.LonMin, Dx: dc.Dx, Dy: dc.Dy, Nx: dc.NX, Ny: dc.NY,
		}, nil
	case "rotated_latlon":
		return grid.RotatedLatLon{
			PoleLat: dc.PoleLat, PoleLon: dc.PoleLon,
			LatMin: dc.LatMin, LonMin: dc.LonMin, Dx: dc.Dx, Dy: dc.Dy, Nx: dc.NX, Ny: dc.NY,
		}, nil
	case "lambert_conformal":
		return grid.NewLambertConformal(dc.Lon0, dc.Lat0, dc.Lat1, dc.Lat2, dc.Radius, dc.NX, dc.NY, dc.Dx, dc.Dy, 0, 0)
	case "lambert_azimuthal":
		return grid.LambertAzimuthalEqualArea{
			CenterLon: dc.Lon0, CenterLat: dc.Lat0, Radius: dc.Radius, Nx: dc.NX, Ny: dc.NY, Dx: dc.Dx, Dy: dc.Dy,
		}, nil
	case "polar_stereographic":
		hemisphere := 1
		if dc.Hemisphere == "south" {
			hemisphere = -1
		}
		return grid.PolarStereographic{
			CenterLon: dc.Lon0, StandardParallel: dc.Lat1, Hemisphere: hemisphere,
			Radius: dc.Radius, Nx: dc.NX, Ny: dc.NY, Dx: dc.Dx, Dy: dc.Dy,
		}, nil
	case "reduced_gaussian_o1280":
		return grid.NewO1280(), nil
	default:
		return nil, fmt.Errorf("unknown grid_type %q", dc.GridType)
	}
}
