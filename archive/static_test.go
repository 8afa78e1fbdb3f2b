package archive

import (
	"context"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/metio-grid/wxreader/domain"
	"github.com/metio-grid/wxreader/grid"
)

func writeStaticFixture(t *testing.T, root, domainKey, file string, values []float32) {
	t.Helper()
	dir := filepath.Join(root, domainKey, "static")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	body := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(body[i*4:i*4+4], math.Float32bits(v))
	}
	if err := os.WriteFile(filepath.Join(dir, file), body, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestStaticCacheElevationRoundTrip(t *testing.T) {
	root := t.TempDir()
	d := &domain.Domain{Key: "gfs_global", ElevationFile: "HSURF.dat"}
	writeStaticFixture(t, root, d.Key, d.ElevationFile, []float32{0, 100.5, 2000})

	store, err := OpenStore(context.Background(), "file://"+root)
	if err != nil {
		t.Fatal(err)
	}
	cache := NewStaticCache(store, 8)

	values, ok := cache.Elevation(context.Background(), d)
	if !ok {
		t.Fatal("Elevation() ok = false")
	}
	want := []float64{0, 100.5, 2000}
	for i := range want {
		if math.Abs(values[i]-want[i]) > 1e-3 {
			t.Errorf("Elevation()[%d] = %v, want %v", i, values[i], want[i])
		}
	}
}

func TestStaticCacheMissingFileNotError(t *testing.T) {
	root := t.TempDir()
	d := &domain.Domain{Key: "gfs_global", ElevationFile: "HSURF.dat"}

	store, err := OpenStore(context.Background(), "file://"+root)
	if err != nil {
		t.Fatal(err)
	}
	cache := NewStaticCache(store, 8)

	if _, ok := cache.Elevation(context.Background(), d); ok {
		t.Error("Elevation() on missing file ok = true, want false")
	}
}

func TestStaticCacheNoFileConfigured(t *testing.T) {
	root := t.TempDir()
	d := &domain.Domain{Key: "gfs_global"}
	store, _ := OpenStore(context.Background(), "file://"+root)
	cache := NewStaticCache(store, 8)
	if _, ok := cache.SoilType(context.Background(), d); ok {
		t.Error("SoilType() with no file configured ok = true, want false")
	}
}

func TestElevationLookupAdaptsGridInterface(t *testing.T) {
	root := t.TempDir()
	d := &domain.Domain{Key: "gfs_global", ElevationFile: "HSURF.dat"}
	writeStaticFixture(t, root, d.Key, d.ElevationFile, []float32{10, 20, 30})

	store, _ := OpenStore(context.Background(), "file://"+root)
	cache := NewStaticCache(store, 8)
	lookup := NewElevationLookup(context.Background(), cache, d)

	var _ grid.ElevationLookup = lookup

	v, ok := lookup.At(1)
	if !ok || v != 20 {
		t.Errorf("At(1) = (%v, %v), want (20, true)", v, ok)
	}
	if _, ok := lookup.At(99); ok {
		t.Error("At(out of range) ok = true, want false")
	}
}
