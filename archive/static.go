package archive

import (
	"context"
	"fmt"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/metio-grid/wxreader/domain"
)

// StaticCache caches decoded static files (elevation, soil-type) by
// (domain key, file key). Unlike the chunk cache, this is a plain LRU
// by handle count — no byte accounting — because static files are few
// and reused across many requests, per spec.md §3 "Lifecycles" and
// SPEC_FULL.md §4.2.
type StaticCache struct {
	store *Store
	lru   *lru.Cache[string, []float64]
}

// NewStaticCache builds a StaticCache holding up to maxEntries decoded
// static files.
func NewStaticCache(store *Store, maxEntries int) *StaticCache {
	c, err := lru.New[string, []float64](maxEntries)
	if err != nil {
		// maxEntries <= 0 is a programmer error, not a runtime condition.
		panic(fmt.Sprintf("archive: invalid static cache size %d: %v", maxEntries, err))
	}
	return &StaticCache{store: store, lru: c}
}

// Elevation returns the decoded HSURF.dat static elevation file for d,
// or (nil, false) if the file is missing — spec.md §7's
// StaticFileMissing is signaled here, not as an error.
func (c *StaticCache) Elevation(ctx context.Context, d *domain.Domain) ([]float64, bool) {
	return c.lookup(ctx, d, d.ElevationFile)
}

// SoilType returns the decoded soil_type.dat static file for d, or
// (nil, false) if missing.
func (c *StaticCache) SoilType(ctx context.Context, d *domain.Domain) ([]float64, bool) {
	return c.lookup(ctx, d, d.SoilTypeFile)
}

func (c *StaticCache) lookup(ctx context.Context, d *domain.Domain, file string) ([]float64, bool) {
	if file == "" {
		return nil, false
	}
	cacheKey := d.Key + "/static/" + file
	if v, ok := c.lru.Get(cacheKey); ok {
		return v, true
	}
	key := fmt.Sprintf("%s/static/%s", d.Key, file)
	exists, err := c.store.Exists(ctx, key)
	if err != nil || !exists {
		return nil, false
	}
	raw, err := c.store.Read(ctx, key)
	if err != nil {
		return nil, false
	}
	values, err := decodeStaticFloat32(raw)
	if err != nil {
		return nil, false
	}
	c.lru.Add(cacheKey, values)
	return values, true
}

// decodeStaticFloat32 decodes a raw little-endian float32 array; static
// files are small and uncompressed, unlike chunk bodies.
func decodeStaticFloat32(raw []byte) ([]float64, error) {
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("static file length %d not a multiple of 4", len(raw))
	}
	n := len(raw) / 4
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		bits := uint32(raw[i*4]) | uint32(raw[i*4+1])<<8 | uint32(raw[i*4+2])<<16 | uint32(raw[i*4+3])<<24
		out[i] = float64(math.Float32frombits(bits))
	}
	return out, nil
}

// ElevationLookup adapts StaticCache to grid.ElevationLookup for one
// domain, bridging C2's static-file reads to C1's terrain-optimised
// point lookup without giving grid geometry any knowledge of I/O.
type ElevationLookup struct {
	cache  *StaticCache
	ctx    context.Context
	domain *domain.Domain
	values []float64
	loaded bool
}

// NewElevationLookup builds the adapter; the underlying file is read
// lazily on first At call.
func NewElevationLookup(ctx context.Context, cache *StaticCache, d *domain.Domain) *ElevationLookup {
	return &ElevationLookup{cache: cache, ctx: ctx, domain: d}
}

func (e *ElevationLookup) At(gridpoint int) (float64, bool) {
	if !e.loaded {
		e.values, _ = e.cache.Elevation(e.ctx, e.domain)
		e.loaded = true
	}
	if e.values == nil || gridpoint < 0 || gridpoint >= len(e.values) {
		return 0, false
	}
	return e.values[gridpoint], true
}
