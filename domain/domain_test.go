package domain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/metio-grid/wxreader/grid"
)

func TestNewRegistryLookup(t *testing.T) {
	d := &Domain{Key: "gfs_global", Grid: grid.RegularLatLon{LatMin: -90, LonMin: -180, Dx: 0.25, Dy: 0.25, Nx: 1440, Ny: 721}, Dt: 3600}
	r := NewRegistry([]*Domain{d})

	got, ok := r.Lookup("gfs_global")
	if !ok || got != d {
		t.Fatalf("Lookup(gfs_global) = (%v, %v), want (%v, true)", got, ok, d)
	}
	if _, ok := r.Lookup("missing"); ok {
		t.Error("Lookup(missing) returned ok=true")
	}
	if len(r.All()) != 1 {
		t.Errorf("All() = %d domains, want 1", len(r.All()))
	}
}

func TestLoadRegistryBuildsEveryGridType(t *testing.T) {
	toml := `
[[domain]]
key = "global"
grid_type = "regular_latlon"
dt = 3600
chunk_length = 86400
update_cadence = 21600
elevation_file = "HSURF.dat"
soil_type_file = "soil_type.dat"
LatMin = -90
LonMin = -180
Dx = 0.25
Dy = 0.25
NX = 1440
NY = 721

[[domain]]
key = "d2"
grid_type = "rotated_latlon"
dt = 900
chunk_length = 86400
update_cadence = 10800
PoleLat = -40.0
PoleLon = -170.0
LatMin = -10
LonMin = -15
Dx = 0.02
Dy = 0.02
NX = 1200
NY = 1100

[[domain]]
key = "conus"
grid_type = "lambert_conformal"
dt = 3600
chunk_length = 86400
update_cadence = 21600
Lon0 = -97.5
Lat0 = 38.5
Lat1 = 38.5
Lat2 = 38.5
Radius = 6371229
NX = 100
NY = 100
Dx = 3000
Dy = 3000

[[domain]]
key = "polar"
grid_type = "polar_stereographic"
dt = 3600
chunk_length = 86400
update_cadence = 21600
Lon0 = 0
Lat1 = 60
Hemisphere = "north"
Radius = 6371229
NX = 50
NY = 50
Dx = 10000
Dy = 10000

[[domain]]
key = "gaussian"
grid_type = "reduced_gaussian_o1280"
dt = 10800
chunk_length = 604800
update_cadence = 43200

[[domain]]
key = "master"
grid_type = "regular_latlon"
dt = 3600
chunk_length = 86400
update_cadence = 21600
LatMin = -90
LonMin = -180
Dx = 1
Dy = 1
NX = 360
NY = 180
master_file_start = 0
master_file_end = 360000
`
	dir := t.TempDir()
	path := filepath.Join(dir, "registry.toml")
	if err := os.WriteFile(path, []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	for _, key := range []string{"global", "d2", "conus", "polar", "gaussian", "master"} {
		if _, ok := r.Lookup(key); !ok {
			t.Errorf("registry missing domain %q", key)
		}
	}
	master, _ := r.Lookup("master")
	if master.MasterFileRange == nil {
		t.Error("master domain has nil MasterFileRange")
	}
}

func TestLoadRegistryUnknownGridType(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	os.WriteFile(path, []byte("[[domain]]\nkey=\"x\"\ngrid_type=\"nonsense\"\ndt=3600\n"), 0o644)
	if _, err := LoadRegistry(path); err == nil {
		t.Error("LoadRegistry with unknown grid_type: want error, got nil")
	}
}
