// Package service wires the eight core components into the four
// operations spec.md §6 exposes: open_reader, prefetch, get, and
// static_lookup. It owns no algorithms of its own — it is the
// composition root a long-running process (or the wxreader CLI)
// builds once at startup and then calls per request.
package service

import (
	"context"
	"fmt"

	"github.com/metio-grid/wxreader/archive"
	"github.com/metio-grid/wxreader/derived"
	"github.com/metio-grid/wxreader/domain"
	"github.com/metio-grid/wxreader/mixer"
	"github.com/metio-grid/wxreader/reader"
	"github.com/metio-grid/wxreader/seamless"
	"github.com/metio-grid/wxreader/timerange"
	"github.com/metio-grid/wxreader/variable"
)

// Service holds the process-wide singletons: the domain registry and
// the archive caches, per spec.md §9.
type Service struct {
	registry      *domain.Registry
	opener        *reader.Service
	pressureTable derived.Table
}

// New builds a Service over a domain registry and the shared chunk
// and static-file caches.
func New(registry *domain.Registry, chunks *archive.ChunkReader, static *archive.StaticCache) *Service {
	return &Service{
		registry:      registry,
		opener:        &reader.Service{Chunks: chunks, Static: static},
		pressureTable: derived.NewPressure(),
	}
}

// Reader is the resolved handle spec.md §6 calls `Reader`: a coordinate
// already pinned to a seamless model composition, ready for repeated
// get/prefetch/static_lookup calls.
type Reader struct {
	mixed          *mixer.Mixer
	surfaceEngine  *derived.Engine
	pressureEngine *derived.Engine
}

// OpenReader resolves (modelToken, lat, lon) into a Reader, or
// seamless.ErrNoData if no domain in the token's stack covers the
// coordinate (spec.md §6 `open_reader`).
func (s *Service) OpenReader(ctx context.Context, modelToken string, lat, lon float64, elevation *float64, selection reader.Selection) (*Reader, error) {
	m, err := seamless.Select(ctx, s.registry, s.opener, seamless.Token(modelToken), lat, lon, elevation, selection)
	if err != nil {
		return nil, err
	}
	stationElevation := 0.0
	if elevation != nil {
		stationElevation = *elevation
	}
	return &Reader{
		mixed:          m,
		surfaceEngine:  derived.NewEngine(derived.NewSurface(lat, lon, stationElevation)),
		pressureEngine: derived.NewEngine(s.pressureTable),
	}, nil
}

// engineFor routes a derived variable to the table that can compute it;
// pressure-level derivations share one stateless table across every
// reader, surface derivations carry this reader's coordinate and
// station elevation for solar-position and pressure-reduction terms.
func (r *Reader) engineFor(v variable.Variable) *derived.Engine {
	if v.Family == variable.PressureLevel {
		return r.pressureEngine
	}
	return r.surfaceEngine
}

// Get resolves name against the variable catalog and reads it over tr,
// routing through the derived-variable engine when the variable is
// computed rather than archived (spec.md §6 `get`).
func (r *Reader) Get(ctx context.Context, name string, tr timerange.TimeRange) ([]float64, variable.Unit, error) {
	v, ok := variable.Parse(name)
	if !ok {
		return nil, variable.Unit{}, fmt.Errorf("service: unknown variable %q", name)
	}
	if v.Derived {
		return r.engineFor(v).Get(ctx, r.mixed, v.Canonical, tr)
	}
	return r.mixed.Get(ctx, v, tr)
}

// Prefetch issues the willNeed hints name's read over tr would trigger,
// without waiting for or returning data (spec.md §6 `prefetch`).
func (r *Reader) Prefetch(ctx context.Context, name string, tr timerange.TimeRange) {
	v, ok := variable.Parse(name)
	if !ok {
		return
	}
	if v.Derived {
		r.engineFor(v).Prefetch(ctx, r.mixed, v.Canonical, tr)
		return
	}
	r.mixed.Prefetch(ctx, v, tr)
}

// StaticLookup returns the elevation or soil-type value at this
// reader's resolved gridpoint (spec.md §6 `static_lookup`).
func (r *Reader) StaticLookup(ctx context.Context, kind string) (float64, bool) {
	return r.mixed.StaticLookup(ctx, kind)
}

// ErrNoData re-exports seamless.ErrNoData so callers of this package
// never need to import seamless directly.
var ErrNoData = seamless.ErrNoData
