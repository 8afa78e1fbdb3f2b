package service

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"

	"github.com/metio-grid/wxreader/archive"
	"github.com/metio-grid/wxreader/domain"
	"github.com/metio-grid/wxreader/grid"
	"github.com/metio-grid/wxreader/reader"
	"github.com/metio-grid/wxreader/seamless"
	"github.com/metio-grid/wxreader/timerange"
)

func writeChunk(t *testing.T, root, domainKey, varKey string, locations int, values []int16) {
	t.Helper()
	body := make([]byte, locations*len(values)*2)
	for loc := 0; loc < locations; loc++ {
		for s, v := range values {
			off := (loc*len(values) + s) * 2
			binary.LittleEndian.PutUint16(body[off:off+2], uint16(v))
		}
	}
	enc, _ := zstd.NewWriter(nil)
	compressed := enc.EncodeAll(body, nil)
	enc.Close()
	dir := filepath.Join(root, domainKey, varKey)
	os.MkdirAll(dir, 0o755)
	os.WriteFile(filepath.Join(dir, "chunk_0.dat"), compressed, 0o644)
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	root := t.TempDir()
	d := &domain.Domain{
		Key:         "gfs_global",
		Grid:        grid.RegularLatLon{LatMin: 0, LonMin: 0, Dx: 1, Dy: 1, Nx: 3, Ny: 3},
		Dt:          3600,
		ChunkLength: 3600,
	}
	writeChunk(t, root, d.Key, "temperature_2m", 9, []int16{200})
	writeChunk(t, root, d.Key, "wind_u_component_10m", 9, []int16{30})
	writeChunk(t, root, d.Key, "wind_v_component_10m", 9, []int16{40})

	store, err := archive.OpenStore(context.Background(), "file://"+root)
	if err != nil {
		t.Fatal(err)
	}
	chunks := archive.NewChunkReader(store, 16)
	static := archive.NewStaticCache(store, 16)
	registry := domain.NewRegistry([]*domain.Domain{d})
	return New(registry, chunks, static)
}

func TestServiceGetRawVariable(t *testing.T) {
	svc := newTestService(t)
	r, err := svc.OpenReader(context.Background(), "gfs_global", 1, 1, nil, reader.Nearest)
	if err != nil {
		t.Fatal(err)
	}
	tr := timerange.New(0, 3600, 3600)
	out, unit, err := r.Get(context.Background(), "temperature_2m", tr)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(out[0]-10) > 1e-9 {
		t.Errorf("Get(temperature_2m) = %v, want [10]", out)
	}
	if unit.Label != "°C" {
		t.Errorf("unit = %v, want Celsius", unit)
	}
}

func TestServiceGetDerivedVariable(t *testing.T) {
	svc := newTestService(t)
	r, err := svc.OpenReader(context.Background(), "gfs_global", 1, 1, nil, reader.Nearest)
	if err != nil {
		t.Fatal(err)
	}
	tr := timerange.New(0, 3600, 3600)
	out, _, err := r.Get(context.Background(), "wind_speed_10m", tr)
	if err != nil {
		t.Fatal(err)
	}
	// raw u=30/10=3, v=40/10=4 -> speed=5.
	if math.Abs(out[0]-5) > 1e-9 {
		t.Errorf("Get(wind_speed_10m) = %v, want [5]", out)
	}
}

func TestServiceOpenReaderUnknownVariable(t *testing.T) {
	svc := newTestService(t)
	r, err := svc.OpenReader(context.Background(), "gfs_global", 1, 1, nil, reader.Nearest)
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = r.Get(context.Background(), "not_a_variable", timerange.New(0, 3600, 3600))
	if err == nil {
		t.Error("Get(unknown variable) err = nil, want error")
	}
}

func TestServiceOpenReaderNoDataPropagates(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.OpenReader(context.Background(), "gfs_global", 500, 500, nil, reader.Nearest)
	if !errors.Is(err, ErrNoData) && !errors.Is(err, seamless.ErrNoData) {
		t.Errorf("OpenReader(outside grid) err = %v, want ErrNoData", err)
	}
}
