// Package interp implements the per-variable interpolation semantics
// of spec.md §4.4 (C4): converting a native-dt sequence to a
// requested-dt sequence according to a variable's interpolation kind.
package interp

import (
	"math"

	"github.com/metio-grid/wxreader/timerange"
	"github.com/metio-grid/wxreader/variable"
)

// Bounds optionally clamps hermite interpolation output, e.g. [0,100]
// for relative humidity (spec.md §4.4).
type Bounds struct {
	Min, Max float64
	Set      bool
}

// Interpolate converts native, a sequence sampled at native.Dt covering
// at least the padded window forInterpolationTo/forAggregationTo
// produced, into exactly target.Count() samples at target.Dt,
// according to kind. native must start at a native.Dt-aligned
// timestamp at or before the first requested sample's left padding.
func Interpolate(kind variable.Interpolation, native []float64, nativeStart, nativeDt int64, target timerange.TimeRange, bounds Bounds, lat, lon float64) []float64 {
	switch kind {
	case variable.Linear:
		return linear(native, nativeStart, nativeDt, target)
	case variable.LinearDegrees:
		return linearDegrees(native, nativeStart, nativeDt, target)
	case variable.Hermite:
		return hermite(native, nativeStart, nativeDt, target, bounds)
	case variable.SolarBackwardsAveraged:
		return solarBackwardsAveraged(native, nativeStart, nativeDt, target, lat, lon, true)
	case variable.SolarBackwardsMissingNotAveraged:
		return solarBackwardsAveraged(native, nativeStart, nativeDt, target, lat, lon, false)
	case variable.BackwardsSum:
		return backwardsSum(native, nativeStart, nativeDt, target)
	case variable.Backwards:
		return backwardsReplicate(native, nativeStart, nativeDt, target)
	default:
		return linear(native, nativeStart, nativeDt, target)
	}
}

// bracket returns the index of the native sample at or before
// timestamp t and the fractional position between it and the next one.
func bracket(nativeStart, nativeDt int64, t int64) (loIdx int, frac float64) {
	offset := t - nativeStart
	loIdx = int(offset / nativeDt)
	rem := offset - int64(loIdx)*nativeDt
	if rem < 0 {
		loIdx--
		rem += nativeDt
	}
	frac = float64(rem) / float64(nativeDt)
	return loIdx, frac
}

func at(native []float64, i int) float64 {
	if i < 0 || i >= len(native) {
		return math.NaN()
	}
	return native[i]
}

func linear(native []float64, nativeStart, nativeDt int64, target timerange.TimeRange) []float64 {
	out := make([]float64, target.Count())
	for i := range out {
		t := target.At(i)
		lo, frac := bracket(nativeStart, nativeDt, t)
		a, b := at(native, lo), at(native, lo+1)
		out[i] = a + frac*(b-a)
	}
	return out
}

// linearDegrees interpolates on a circular 0-360 domain via the
// shortest-arc rule (spec.md §4.4).
func linearDegrees(native []float64, nativeStart, nativeDt int64, target timerange.TimeRange) []float64 {
	out := make([]float64, target.Count())
	for i := range out {
		t := target.At(i)
		lo, frac := bracket(nativeStart, nativeDt, t)
		a, b := at(native, lo), at(native, lo+1)
		d := math.Mod(b-a+540, 360) - 180 // shortest signed arc a->b
		v := math.Mod(a+frac*d+360, 360)
		out[i] = v
	}
	return out
}

// hermite performs cubic Hermite interpolation on four consecutive
// samples (Catmull-Rom tangents), clamped to bounds if set (spec.md
// §4.4).
func hermite(native []float64, nativeStart, nativeDt int64, target timerange.TimeRange, bounds Bounds) []float64 {
	out := make([]float64, target.Count())
	for i := range out {
		t := target.At(i)
		lo, frac := bracket(nativeStart, nativeDt, t)
		p0, p1, p2, p3 := at(native, lo-1), at(native, lo), at(native, lo+1), at(native, lo+2)
		v := catmullRom(p0, p1, p2, p3, frac)
		if bounds.Set {
			v = math.Max(bounds.Min, math.Min(bounds.Max, v))
		}
		out[i] = v
	}
	return out
}

func catmullRom(p0, p1, p2, p3, t float64) float64 {
	t2 := t * t
	t3 := t2 * t
	m1 := (p2 - p0) / 2
	m2 := (p3 - p1) / 2
	h00 := 2*t3 - 3*t2 + 1
	h10 := t3 - 2*t2 + t
	h01 := -2*t3 + 3*t2
	h11 := t3 - t2
	return h00*p1 + h10*m1 + h01*p2 + h11*m2
}

// backwardsSum distributes each native-dt sum uniformly across
// requested sub-steps when refining, or sums member steps when
// aggregating to a coarser dt (spec.md §4.4).
func backwardsSum(native []float64, nativeStart, nativeDt int64, target timerange.TimeRange) []float64 {
	out := make([]float64, target.Count())
	if target.Dt <= nativeDt {
		subSteps := nativeDt / target.Dt
		if subSteps < 1 {
			subSteps = 1
		}
		for i := range out {
			t := target.At(i)
			nativeIdx := int((t - nativeStart) / nativeDt)
			out[i] = at(native, nativeIdx) / float64(subSteps)
		}
		return out
	}
	// aggregating: sum member native steps per requested step.
	members := int(target.Dt / nativeDt)
	if members < 1 {
		members = 1
	}
	for i := range out {
		t := target.At(i)
		sum := 0.0
		for m := 0; m < members; m++ {
			nativeIdx := int((t+int64(m)*nativeDt-nativeStart)/nativeDt)
			v := at(native, nativeIdx)
			if !math.IsNaN(v) {
				sum += v
			}
		}
		out[i] = sum
	}
	return out
}

// backwardsReplicate replicates the value of the covering native-dt
// step into every sub-step (spec.md §4.4, kind "backwards").
func backwardsReplicate(native []float64, nativeStart, nativeDt int64, target timerange.TimeRange) []float64 {
	out := make([]float64, target.Count())
	for i := range out {
		t := target.At(i)
		nativeIdx := int((t - nativeStart) / nativeDt)
		out[i] = at(native, nativeIdx)
	}
	return out
}
