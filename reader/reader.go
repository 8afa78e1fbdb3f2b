// Package reader implements the single-domain reader of spec.md §4.5
// (C5): resolving a coordinate on one domain, reading and scaling one
// variable for a time window, and applying elevation correction.
package reader

import (
	"context"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/metio-grid/wxreader/archive"
	"github.com/metio-grid/wxreader/domain"
	"github.com/metio-grid/wxreader/interp"
	"github.com/metio-grid/wxreader/timerange"
	"github.com/metio-grid/wxreader/variable"
)

// DataReader is the trait spec.md §9 calls for: "a Reader
// trait/interface whose methods are get, prefetch, getStatic". A
// single-domain *Reader satisfies it directly; mixer.Mixer implements
// the same trait and delegates across an ordered reader list, so
// callers (and the derived-variable engine) never need to know whether
// they're holding one domain or a seamless composition of several.
type DataReader interface {
	Get(ctx context.Context, v variable.Variable, tr timerange.TimeRange) ([]float64, variable.Unit, error)
	Prefetch(ctx context.Context, v variable.Variable, tr timerange.TimeRange)
	StaticLookup(ctx context.Context, kind string) (float64, bool)
}

var _ DataReader = (*Reader)(nil)

// Selection chooses how a coordinate is resolved onto a domain's grid
// (spec.md §4.5 init's `selection` parameter).
type Selection int

const (
	Nearest Selection = iota
	TerrainOptimised
)

// Elevation mirrors spec.md §3's Reader.modelElevation tri-state: a
// numeric metres value, sea level, or no data at all.
type Elevation struct {
	Value  float64
	IsSea  bool
	NoData bool
}

// Finite reports whether e carries a usable numeric value.
func (e Elevation) Finite() bool {
	return !e.NoData && !e.IsSea
}

// Reader is the resolved view (Domain, gridpoint, modelLat, modelLon,
// modelElevation, targetElevation) of spec.md §3.
type Reader struct {
	Domain         *domain.Domain
	Gridpoint      int
	Lat, Lon       float64 // requested coordinate
	ModelLat       float64
	ModelLon       float64
	ModelElevation Elevation
	TargetElevation Elevation

	chunks *archive.ChunkReader
	static *archive.StaticCache
}

// Service binds a ChunkReader and StaticCache so callers (e.g.
// seamless.Select) can open readers without threading both caches
// through every call site.
type Service struct {
	Chunks *archive.ChunkReader
	Static *archive.StaticCache
}

// Open implements the seamless.Opener contract.
func (s *Service) Open(ctx context.Context, d *domain.Domain, lat, lon float64, targetElevation *float64, selection Selection) *Reader {
	return Open(ctx, d, s.Chunks, s.Static, lat, lon, targetElevation, selection)
}

// Open resolves (lat, lon) onto d's grid per selection, returning nil
// if the coordinate falls outside the grid (spec.md §4.5: "If
// findPoint returns none, the reader is none").
func Open(ctx context.Context, d *domain.Domain, chunks *archive.ChunkReader, static *archive.StaticCache, lat, lon float64, targetElevation *float64, selection Selection) *Reader {
	elevLookup := archive.NewElevationLookup(ctx, static, d)

	var gridpoint int
	var modelElev float64
	var ok bool
	switch selection {
	case TerrainOptimised:
		target := 0.0
		if targetElevation != nil {
			target = *targetElevation
		}
		gridpoint, modelElev, ok = d.Grid.FindPointTerrainOptimised(lat, lon, target, elevLookup)
	default:
		gridpoint, ok = d.Grid.FindPoint(lat, lon)
		if ok {
			modelElev, _ = elevLookup.At(gridpoint)
		}
	}
	if !ok {
		return nil
	}

	modelLat, modelLon := d.Grid.GetCoordinates(gridpoint)

	me := classifyElevation(modelElev, elevLookup, gridpoint)
	te := me
	if targetElevation != nil {
		te = Elevation{Value: *targetElevation}
	}

	return &Reader{
		Domain:          d,
		Gridpoint:       gridpoint,
		Lat:             lat,
		Lon:             lon,
		ModelLat:        modelLat,
		ModelLon:        modelLon,
		ModelElevation:  me,
		TargetElevation: te,
		chunks:          chunks,
		static:          static,
	}
}

// classifyElevation reports Nearest-selection elevation (looked up
// fresh since Nearest never calls FindPointTerrainOptimised) or
// TerrainOptimised's already-resolved value directly, tagging sea
// level and no-data per spec.md §3.
func classifyElevation(value float64, lookup *archive.ElevationLookup, gridpoint int) Elevation {
	if _, ok := lookup.At(gridpoint); !ok {
		return Elevation{NoData: true}
	}
	if value <= 0 {
		return Elevation{IsSea: true, Value: 0}
	}
	return Elevation{Value: value}
}

// Get reads variable v over timeRange, applying interpolation (if
// timeRange.Dt != Domain.Dt), scaling, and elevation correction, per
// spec.md §4.5.
func (r *Reader) Get(ctx context.Context, v variable.Variable, tr timerange.TimeRange) ([]float64, variable.Unit, error) {
	var raw []float64
	var err error
	if r.Domain.EnsembleMemberCount > 0 {
		raw, err = r.getEnsembleRaw(ctx, v, tr)
	} else {
		raw, err = r.readRaw(ctx, v, tr)
	}
	if err != nil {
		return nil, variable.Unit{}, err
	}

	out := make([]float64, len(raw))
	for i, x := range raw {
		out[i] = scale(v, x)
	}
	if v.IsElevationCorrectable && v.Unit.Label == variable.UnitCelsius.Label {
		applyElevationCorrection(out, r.ModelElevation, r.TargetElevation)
	}
	return out, v.Unit, nil
}

// readRaw returns v's native-scale samples over tr, direct-reading
// when tr already matches the domain's native step and interpolating
// otherwise (spec.md §4.5 C5).
func (r *Reader) readRaw(ctx context.Context, v variable.Variable, tr timerange.TimeRange) ([]float64, error) {
	if tr.Dt == r.Domain.Dt {
		return r.chunks.Read(ctx, r.Domain, v, r.Gridpoint, tr)
	}
	return r.readAndInterpolate(ctx, v, tr)
}

// getEnsembleRaw reads every ensemble member's native-scale series for
// v and reduces them to a single series: an exceedance-fraction
// percentage for probability variables (spec.md §4.5 C8), or the
// ensemble median otherwise.
func (r *Reader) getEnsembleRaw(ctx context.Context, v variable.Variable, tr timerange.TimeRange) ([]float64, error) {
	n := r.Domain.EnsembleMemberCount
	members := make([][]float64, n)
	for m := 0; m < n; m++ {
		raw, err := r.readRaw(ctx, memberVariable(r.Domain, v, m), tr)
		if err != nil {
			return nil, err
		}
		members[m] = raw
	}
	if v.IsEnsembleProbability {
		return exceedanceFraction(members, v.EnsembleThreshold), nil
	}
	return memberMedian(members), nil
}

// memberVariable tags v with member's index, using the sub-level
// sub-dimension for a packed ensemble domain (one file family per
// variable, members distinguished in-file) or the EnsembleMember field
// for a disjoint domain (one file family per member), per spec.md
// §4.5's ensembleMemberLevel/ensembleMember distinction.
func memberVariable(d *domain.Domain, v variable.Variable, member int) variable.Variable {
	mv := v
	if d.EnsemblePacked {
		mv.SubLevel = member
	} else {
		mv.EnsembleMember = member
	}
	return mv
}

// exceedanceFraction computes, for each timestep, the percentage of
// members whose native-scale value exceeds threshold (spec.md §4.5
// C8, e.g. precipitation_probability). A NaN in any member at a
// timestep propagates to that timestep's result rather than being
// silently excluded from the count.
func exceedanceFraction(members [][]float64, threshold float64) []float64 {
	steps := len(members[0])
	out := make([]float64, steps)
	indicator := make([]float64, len(members))
	for i := 0; i < steps; i++ {
		nan := false
		for m, series := range members {
			if math.IsNaN(series[i]) {
				nan = true
				break
			}
			if series[i] > threshold {
				indicator[m] = 1
			} else {
				indicator[m] = 0
			}
		}
		if nan {
			out[i] = math.NaN()
			continue
		}
		out[i] = stat.Mean(indicator, nil) * 100
	}
	return out
}

// memberMedian computes the per-timestep median across members'
// native-scale series, the general-purpose ensemble aggregation for
// any variable that isn't a probability (spec.md §4.5).
func memberMedian(members [][]float64) []float64 {
	steps := len(members[0])
	out := make([]float64, steps)
	sample := make([]float64, len(members))
	for i := 0; i < steps; i++ {
		nan := false
		for m, series := range members {
			if math.IsNaN(series[i]) {
				nan = true
				break
			}
			sample[m] = series[i]
		}
		if nan {
			out[i] = math.NaN()
			continue
		}
		sorted := append([]float64(nil), sample...)
		sort.Float64s(sorted)
		out[i] = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	}
	return out
}

func (r *Reader) readAndInterpolate(ctx context.Context, v variable.Variable, tr timerange.TimeRange) ([]float64, error) {
	var expanded timerange.TimeRange
	if v.Interpolation.IsAggregating() {
		expanded = tr.ForAggregationTo(r.Domain.Dt, true)
	} else {
		expanded = tr.ForInterpolationTo(r.Domain.Dt, v.Interpolation.Padding())
	}
	native, err := r.chunks.Read(ctx, r.Domain, v, r.Gridpoint, expanded)
	if err != nil {
		return nil, err
	}
	bounds := boundsFor(v)
	return interp.Interpolate(v.Interpolation, native, expanded.Start, expanded.Dt, tr, bounds, r.ModelLat, r.ModelLon), nil
}

// scale converts a compressed int16-scaled float to physical units
// (spec.md §4.4). Values stored as NaN (missing chunk) pass through.
func scale(v variable.Variable, x float64) float64 {
	if math.IsNaN(x) || v.ScaleFactor == 0 {
		return x
	}
	return x / v.ScaleFactor
}

func boundsFor(v variable.Variable) interp.Bounds {
	if v.Unit.Label == variable.UnitPercent.Label {
		return interp.Bounds{Min: 0, Max: 100, Set: true}
	}
	return interp.Bounds{}
}

// applyElevationCorrection adds (modelElevation-targetElevation)*0.0065
// K to every sample when both elevations are finite and differ (spec.md
// §4.4). Setting targetElevation == modelElevation makes this a no-op,
// which is the reversibility property of spec.md §8 invariant 5.
func applyElevationCorrection(data []float64, model, target Elevation) {
	if !model.Finite() || !target.Finite() {
		return
	}
	delta := (model.Value - target.Value) * 0.0065
	if delta == 0 {
		return
	}
	for i := range data {
		if !math.IsNaN(data[i]) {
			data[i] += delta
		}
	}
}

// Prefetch issues a willNeed hint for v over the expanded window v's
// interpolation kind requires (spec.md §4.5).
func (r *Reader) Prefetch(ctx context.Context, v variable.Variable, tr timerange.TimeRange) {
	expanded := tr
	if tr.Dt != r.Domain.Dt {
		if v.Interpolation.IsAggregating() {
			expanded = tr.ForAggregationTo(r.Domain.Dt, true)
		} else {
			expanded = tr.ForInterpolationTo(r.Domain.Dt, v.Interpolation.Padding())
		}
	}
	if r.Domain.EnsembleMemberCount > 0 {
		for m := 0; m < r.Domain.EnsembleMemberCount; m++ {
			r.chunks.WillNeed(ctx, r.Domain, memberVariable(r.Domain, v, m), r.Gridpoint, expanded)
		}
		return
	}
	r.chunks.WillNeed(ctx, r.Domain, v, r.Gridpoint, expanded)
}

// StaticLookup returns the elevation or soil-type value at this
// reader's gridpoint, or (0, false) if the static file is unavailable
// (spec.md §6 static_lookup, §7 StaticFileMissing).
func (r *Reader) StaticLookup(ctx context.Context, kind string) (float64, bool) {
	switch kind {
	case "elevation":
		values, ok := r.static.Elevation(ctx, r.Domain)
		if !ok || r.Gridpoint >= len(values) {
			return 0, false
		}
		return values[r.Gridpoint], true
	case "soil_type":
		values, ok := r.static.SoilType(ctx, r.Domain)
		if !ok || r.Gridpoint >= len(values) {
			return 0, false
		}
		return values[r.Gridpoint], true
	default:
		return 0, false
	}
}
