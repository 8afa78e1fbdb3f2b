package interp

import (
	"math"
	"time"

	"github.com/metio-grid/wxreader/timerange"
)

// cosZenith returns the cosine of the solar zenith angle at UTC
// timestamp t (seconds since epoch) for the given geographic
// coordinate, using the standard low-precision solar-position formulas
// (declination from day-of-year, equation of time, hour angle from
// longitude) — the "Zensun" integral spec.md §4.4 names for
// disaggregating backward-averaged radiation into instantaneous
// values.
func cosZenith(t int64, lat, lon float64) float64 {
	const secPerDay = 86400.0
	dayOfYear := float64(time.Unix(t, 0).UTC().YearDay())
	secOfDay := float64(((t % secPerDay) + secPerDay) % secPerDay)

	const d2r = math.Pi / 180
	gamma := 2 * math.Pi / 365 * (dayOfYear - 1 + (secOfDay/3600-12)/24)

	// Equation of time (minutes) and declination (radians), Spencer's
	// Fourier approximation — the standard low-order formula used by
	// Zensun-style disaggregation models.
	eqTime := 229.18 * (0.000075 + 0.001868*math.Cos(gamma) - 0.032077*math.Sin(gamma) -
		0.014615*math.Cos(2*gamma) - 0.040849*math.Sin(2*gamma))
	decl := 0.006918 - 0.399912*math.Cos(gamma) + 0.070257*math.Sin(gamma) -
		0.006758*math.Cos(2*gamma) + 0.000907*math.Sin(2*gamma) -
		0.002697*math.Cos(3*gamma) + 0.00148*math.Sin(3*gamma)

	timeOffset := eqTime + 4*lon
	trueSolarTime := secOfDay/60 + timeOffset
	hourAngle := (trueSolarTime/4 - 180) * d2r

	latR := lat * d2r
	cosZ := math.Sin(latR)*math.Sin(decl) + math.Cos(latR)*math.Cos(decl)*math.Cos(hourAngle)
	return cosZ
}

// IsDaylight reports whether the sun is above the horizon at t for the
// given coordinate — used by the derived `is_day` variable.
func IsDaylight(t int64, lat, lon float64) bool {
	return cosZenith(t, lat, lon) > 0
}

// CosZenith exposes cosZenith for the derived-variable engine's solar
// projections (direct normal irradiance, global tilted irradiance).
func CosZenith(t int64, lat, lon float64) float64 {
	return cosZenith(t, lat, lon)
}

// solarBackwardsAveraged disaggregates each native backward-average
// sample into instantaneous W/m^2 values weighted by the clear-sky
// cosine-zenith curve (preserving the native window's mean), then
// re-integrates (averages) over each requested window, per spec.md
// §4.4. When averaged is false (solar-backwards-missing-not-averaged),
// native samples are treated as already instantaneous rather than
// disaggregated.
func solarBackwardsAveraged(native []float64, nativeStart, nativeDt int64, target timerange.TimeRange, lat, lon float64, averaged bool) []float64 {
	// fineDt is the disaggregation granularity: the finer of the
	// native step and the requested step.
	fineDt := target.Dt
	if nativeDt < fineDt {
		fineDt = nativeDt
	}
	if fineDt <= 0 {
		fineDt = nativeDt
	}
	nSteps := len(native)

	instant := make(map[int64]float64)
	for j := 0; j < nSteps; j++ {
		avg := native[j]
		winStart := nativeStart + int64(j)*nativeDt
		winEnd := winStart + nativeDt
		if math.IsNaN(avg) {
			for t := winStart; t < winEnd; t += fineDt {
				instant[t] = math.NaN()
			}
			continue
		}
		if !averaged {
			for t := winStart; t < winEnd; t += fineDt {
				instant[t] = avg
			}
			continue
		}
		var weights []float64
		var times []int64
		sumW := 0.0
		for t := winStart; t < winEnd; t += fineDt {
			w := math.Max(cosZenith(t, lat, lon), 0)
			weights = append(weights, w)
			times = append(times, t)
			sumW += w
		}
		meanW := sumW / float64(len(weights))
		for i, t := range times {
			if meanW <= 0 {
				instant[t] = 0
			} else {
				instant[t] = avg * weights[i] / meanW
			}
		}
	}

	out := make([]float64, target.Count())
	for i := range out {
		winStart := target.At(i)
		winEnd := winStart + target.Dt
		sum := 0.0
		n := 0
		nanSeen := false
		for t := winStart; t < winEnd; t += fineDt {
			v, ok := instant[t]
			if !ok {
				continue
			}
			if math.IsNaN(v) {
				nanSeen = true
				continue
			}
			sum += v
			n++
		}
		if n == 0 {
			if nanSeen {
				out[i] = math.NaN()
			}
			continue
		}
		out[i] = sum / float64(n)
	}
	return out
}
