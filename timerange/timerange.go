// Package timerange implements the time-range algebra of spec.md §4.3:
// windows expressed as (start, end, dt) aligned to a model's native
// step, with interpolation- and aggregation-aware expansion.
//
// All arithmetic is integer seconds since epoch, UTC only — no
// calendar or DST logic belongs at this layer (spec.md §4.3).
package timerange

import "fmt"

// TimeRange is a half-open [Start, End) window aligned to Dt.
type TimeRange struct {
	Start int64 // seconds since epoch, inclusive
	End   int64 // seconds since epoch, exclusive
	Dt    int64 // seconds
}

// New builds a TimeRange, panicking on a non-positive dt or an end
// before start (alignment of start/end to dt is not checked) the way the teacher's framework.go panics on programmer errors
// (unknown variables) rather than returning an error for a contract
// violation.
func New(start, end, dt int64) TimeRange {
	if dt <= 0 {
		panic(fmt.Sprintf("timerange: non-positive dt %d", dt))
	}
	if end < start {
		panic(fmt.Sprintf("timerange: end %d before start %d", end, start))
	}
	return TimeRange{Start: start, End: end, Dt: dt}
}

// Count returns the number of samples covered, i.e. (End-Start)/Dt.
func (t TimeRange) Count() int {
	return int((t.End - t.Start) / t.Dt)
}

// At returns the timestamp of sample i.
func (t TimeRange) At(i int) int64 {
	return t.Start + int64(i)*t.Dt
}

// floorTo snaps v down to the nearest multiple of d.
func floorTo(v, d int64) int64 {
	if v >= 0 {
		return v - v%d
	}
	m := v % d
	if m == 0 {
		return v
	}
	return v - m - d
}

// ceilTo snaps v up to the nearest multiple of d.
func ceilTo(v, d int64) int64 {
	f := floorTo(v, d)
	if f == v {
		return v
	}
	return f + d
}

// forInterpolationTo expands t to cover every native-dt sample the
// interpolation kernel needs to produce t's requested-dt samples:
// snap the window to modelDt boundaries, then pad both ends by
// modelDt*(padding-1), per spec.md §4.3.
func (t TimeRange) ForInterpolationTo(modelDt int64, padding int) TimeRange {
	start := floorTo(t.Start, modelDt)
	end := ceilTo(t.End, modelDt)
	pad := modelDt * int64(padding-1)
	return TimeRange{Start: start - pad, End: end + pad, Dt: modelDt}
}

// forAggregationTo expands t for a summing/averaging interpolation
// kind by extending the start backward by modelDt*(steps-1), where
// steps = t.Dt/modelDt; point-sampling kinds return t unchanged
// (spec.md §4.3).
func (t TimeRange) ForAggregationTo(modelDt int64, aggregating bool) TimeRange {
	if !aggregating {
		return t
	}
	steps := t.Dt / modelDt
	if steps < 1 {
		steps = 1
	}
	start := floorTo(t.Start, modelDt) - modelDt*(steps-1)
	end := ceilTo(t.End, modelDt)
	return TimeRange{Start: start, End: end, Dt: modelDt}
}

// Contains reports whether the half-open range fully covers other.
func (t TimeRange) Contains(other TimeRange) bool {
	return t.Start <= other.Start && t.End >= other.End
}

// String renders the range for logging and cache keys.
func (t TimeRange) String() string {
	return fmt.Sprintf("[%d,%d)/%d", t.Start, t.End, t.Dt)
}
