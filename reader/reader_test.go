package reader

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"

	"github.com/metio-grid/wxreader/archive"
	"github.com/metio-grid/wxreader/domain"
	"github.com/metio-grid/wxreader/grid"
	"github.com/metio-grid/wxreader/timerange"
	"github.com/metio-grid/wxreader/variable"
)

// buildFixture writes one chunk covering the whole requested window, a
// flat elevation raster, and opens a Reader at (lat, lon) against it.
func buildFixture(t *testing.T, nx, ny int, elevation []float32, tempValues []int16) (*archive.ChunkReader, *archive.StaticCache, *domain.Domain) {
	t.Helper()
	root := t.TempDir()
	d := &domain.Domain{
		Key:           "testdom",
		Grid:          grid.RegularLatLon{LatMin: 0, LonMin: 0, Dx: 1, Dy: 1, Nx: nx, Ny: ny},
		Dt:            3600,
		ChunkLength:   int64(len(tempValues)) * 3600,
		ElevationFile: "HSURF.dat",
	}

	body := make([]byte, nx*ny*len(tempValues)*2)
	for loc := 0; loc < nx*ny; loc++ {
		for s, v := range tempValues {
			off := (loc*len(tempValues) + s) * 2
			binary.LittleEndian.PutUint16(body[off:off+2], uint16(v))
		}
	}
	enc, _ := zstd.NewWriter(nil)
	compressed := enc.EncodeAll(body, nil)
	enc.Close()
	dir := filepath.Join(root, d.Key, "temperature_2m")
	os.MkdirAll(dir, 0o755)
	os.WriteFile(filepath.Join(dir, "chunk_0.dat"), compressed, 0o644)

	elevBody := make([]byte, len(elevation)*4)
	for i, v := range elevation {
		binary.LittleEndian.PutUint32(elevBody[i*4:i*4+4], math.Float32bits(v))
	}
	staticDir := filepath.Join(root, d.Key, "static")
	os.MkdirAll(staticDir, 0o755)
	os.WriteFile(filepath.Join(staticDir, "HSURF.dat"), elevBody, 0o644)

	store, err := archive.OpenStore(context.Background(), "file://"+root)
	if err != nil {
		t.Fatal(err)
	}
	return archive.NewChunkReader(store, 16), archive.NewStaticCache(store, 16), d
}

// writeChunk zstd-encodes a flat int16 body (one sample per location,
// row-major) and writes it under root/domainKey/variableKey/chunk_0.dat.
func writeChunk(t *testing.T, root, domainKey, variableKey string, nx, ny int, value int16) {
	t.Helper()
	body := make([]byte, nx*ny*2)
	for loc := 0; loc < nx*ny; loc++ {
		binary.LittleEndian.PutUint16(body[loc*2:loc*2+2], uint16(value))
	}
	enc, _ := zstd.NewWriter(nil)
	compressed := enc.EncodeAll(body, nil)
	enc.Close()
	dir := filepath.Join(root, domainKey, variableKey)
	os.MkdirAll(dir, 0o755)
	os.WriteFile(filepath.Join(dir, "chunk_0.dat"), compressed, 0o644)
}

// buildEnsembleFixture writes one single-step chunk per member (packed:
// "<canonical>_<member>"; disjoint: "member_<n>/<canonical>") and opens
// a Reader against a domain declaring ensembleMemberCount members.
func buildEnsembleFixture(t *testing.T, canonical string, packed bool, memberValues []int16) (*Reader, *domain.Domain) {
	t.Helper()
	root := t.TempDir()
	d := &domain.Domain{
		Key:                 "ensdom",
		Grid:                grid.RegularLatLon{LatMin: 0, LonMin: 0, Dx: 1, Dy: 1, Nx: 1, Ny: 1},
		Dt:                  3600,
		ChunkLength:         3600,
		EnsembleMemberCount: len(memberValues),
		EnsemblePacked:      packed,
	}
	for m, v := range memberValues {
		variableKey := variable.Variable{Canonical: canonical, SubLevel: m}.Key()
		if !packed {
			variableKey = fmt.Sprintf("member_%d/%s", m, canonical)
		}
		writeChunk(t, root, d.Key, variableKey, 1, 1, v)
	}
	store, err := archive.OpenStore(context.Background(), "file://"+root)
	if err != nil {
		t.Fatal(err)
	}
	chunks := archive.NewChunkReader(store, 16)
	static := archive.NewStaticCache(store, 16)
	r := Open(context.Background(), d, chunks, static, 0, 0, nil, Nearest)
	if r == nil {
		t.Fatal("Open() = nil, want a Reader")
	}
	return r, d
}

func TestGetEnsembleMedianPacked(t *testing.T) {
	r, _ := buildEnsembleFixture(t, "temperature_2m", true, []int16{100, 200, 300})
	v := variable.Variable{Canonical: "temperature_2m", Interpolation: variable.Linear, ScaleFactor: 20, Unit: variable.UnitCelsius}
	out, _, err := r.Get(context.Background(), v, timerange.New(0, 3600, 3600))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(out[0]-10) > 1e-9 {
		t.Errorf("Get() ensemble median = %v, want [10] (median raw 200 / scale 20)", out)
	}
}

func TestGetEnsembleProbabilityDisjoint(t *testing.T) {
	r, _ := buildEnsembleFixture(t, "precipitation_probability", false, []int16{5, 0, 2})
	v, ok := variable.Parse("precipitation_probability")
	if !ok {
		t.Fatal("precipitation_probability not in catalog")
	}
	out, _, err := r.Get(context.Background(), v, timerange.New(0, 3600, 3600))
	if err != nil {
		t.Fatal(err)
	}
	want := 200.0 / 3.0 // 2 of 3 members exceed the threshold of 1
	if math.Abs(out[0]-want) > 1e-6 {
		t.Errorf("Get() exceedance fraction = %v, want %v", out[0], want)
	}
}

func TestOpenAndGetAppliesScaling(t *testing.T) {
	flat := make([]float32, 9)
	chunks, static, d := buildFixture(t, 3, 3, flat, []int16{200, 220})

	r := Open(context.Background(), d, chunks, static, 1, 1, nil, Nearest)
	if r == nil {
		t.Fatal("Open() = nil, want a Reader")
	}

	v := variable.Variable{Canonical: "temperature_2m", ScaleFactor: 20, Unit: variable.UnitCelsius}
	tr := timerange.New(0, 2*3600, 3600)
	out, unit, err := r.Get(context.Background(), v, tr)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(out[0]-10) > 1e-9 || math.Abs(out[1]-11) > 1e-9 {
		t.Errorf("Get() = %v, want [10 11] (raw/scaleFactor)", out)
	}
	if unit.Label != variable.UnitCelsius.Label {
		t.Errorf("unit = %v, want Celsius", unit)
	}
}

func TestGetInterpolatedPathScalesOnce(t *testing.T) {
	// Native samples 100 and 200 at domain.Dt=3600, ScaleFactor=10 ->
	// physical 10 and 20 m/s. Requesting at half the native step
	// exercises readAndInterpolate (tr.Dt != Domain.Dt); scaling must
	// happen exactly once, after interpolation, not before it too.
	flat := make([]float32, 9)
	chunks, static, d := buildFixture(t, 3, 3, flat, []int16{100, 200})

	r := Open(context.Background(), d, chunks, static, 1, 1, nil, Nearest)
	if r == nil {
		t.Fatal("Open() = nil, want a Reader")
	}

	v := variable.Variable{Canonical: "wind_u_component_10m", Interpolation: variable.Linear, ScaleFactor: 10, Unit: variable.UnitMetersPerSec}
	// End=3601 (not a multiple of the domain's 3600s step) keeps both
	// requested samples inside the first native bucket, bracketed by
	// the two fetched native points.
	tr := timerange.New(0, 3601, 1800)
	out, _, err := r.Get(context.Background(), v, tr)
	if err != nil {
		t.Fatal(err)
	}
	// midpoint between 10 and 20 physical m/s is 15, not 1.5.
	want := []float64{10, 15}
	for i := range want {
		if math.Abs(out[i]-want[i]) > 1e-9 {
			t.Errorf("Get() = %v, want %v", out, want)
		}
	}
}

func TestOpenOutsideGridReturnsNil(t *testing.T) {
	flat := make([]float32, 9)
	chunks, static, d := buildFixture(t, 3, 3, flat, []int16{0})

	r := Open(context.Background(), d, chunks, static, 500, 500, nil, Nearest)
	if r != nil {
		t.Error("Open() outside grid = non-nil, want nil")
	}
}

func TestElevationCorrectionAppliedWhenTargetDiffers(t *testing.T) {
	elev := []float32{100, 100, 100, 100, 100, 100, 100, 100, 100}
	chunks, static, d := buildFixture(t, 3, 3, elev, []int16{200})

	target := 1100.0 // 1000 m higher than the model gridpoint
	r := Open(context.Background(), d, chunks, static, 1, 1, &target, Nearest)
	if r == nil {
		t.Fatal("Open() = nil")
	}
	v := variable.Variable{Canonical: "temperature_2m", ScaleFactor: 20, Unit: variable.UnitCelsius, IsElevationCorrectable: true}
	tr := timerange.New(0, 3600, 3600)
	out, _, err := r.Get(context.Background(), v, tr)
	if err != nil {
		t.Fatal(err)
	}
	// model value is 10C at 100m; target is 1000m higher, so the
	// lapse-rate correction subtracts 1000*0.0065 = 6.5C.
	want := 10 - 1000*0.0065
	if math.Abs(out[0]-want) > 1e-6 {
		t.Errorf("Get() with elevation correction = %v, want %v", out[0], want)
	}
}

func TestElevationCorrectionNoopWhenTargetEqualsModel(t *testing.T) {
	elev := []float32{100, 100, 100, 100, 100, 100, 100, 100, 100}
	chunks, static, d := buildFixture(t, 3, 3, elev, []int16{200})

	target := 100.0
	r := Open(context.Background(), d, chunks, static, 1, 1, &target, Nearest)
	v := variable.Variable{Canonical: "temperature_2m", ScaleFactor: 20, Unit: variable.UnitCelsius, IsElevationCorrectable: true}
	tr := timerange.New(0, 3600, 3600)
	out, _, _ := r.Get(context.Background(), v, tr)
	if math.Abs(out[0]-10) > 1e-9 {
		t.Errorf("Get() with equal elevations = %v, want 10 (no correction)", out[0])
	}
}

func TestStaticLookupElevation(t *testing.T) {
	elev := []float32{0, 10, 20, 30, 40, 50, 60, 70, 80}
	chunks, static, d := buildFixture(t, 3, 3, elev, []int16{0})

	r := Open(context.Background(), d, chunks, static, 1, 1, nil, Nearest)
	v, ok := r.StaticLookup(context.Background(), "elevation")
	if !ok || v != 40 {
		t.Errorf("StaticLookup(elevation) = (%v, %v), want (40, true)", v, ok)
	}
}

func TestServiceOpenDelegatesToOpen(t *testing.T) {
	flat := make([]float32, 9)
	chunks, static, d := buildFixture(t, 3, 3, flat, []int16{0})
	svc := &Service{Chunks: chunks, Static: static}
	r := svc.Open(context.Background(), d, 1, 1, nil, Nearest)
	if r == nil {
		t.Fatal("Service.Open() = nil")
	}
}
