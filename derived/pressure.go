package derived

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/metio-grid/wxreader/timerange"
	"github.com/metio-grid/wxreader/variable"
)

// NewPressure covers the derived pressure-level variables of
// SPEC_FULL.md §4.6: cloud_cover_pressure (Slingo's relation),
// geopotential_height (unit conversion, spec.md §4.4), and
// wind_speed/wind_direction at pressure levels (same formulas as the
// 10 m surface case, parameterized by level via the caller's variable
// selection rather than by this table, since a pressure-level table
// entry is shared across every level a caller requests).
func NewPressure() Table {
	t := Table{}

	t["cloud_cover_pressure"] = funcDerivation{
		prereqs: []variable.Variable{must("relative_humidity")},
		unit:    variable.UnitPercent,
		compute: func(tr timerange.TimeRange, in map[string][]float64) ([]float64, error) {
			rh := in["relative_humidity"]
			return elementwise(len(rh), func(i int) float64 { return slingoCloudCover(rh[i]) }), nil
		},
	}

	t["geopotential_height"] = funcDerivation{
		prereqs: []variable.Variable{must("geopotential_height_raw")},
		unit:    variable.UnitMeters,
		compute: func(tr timerange.TimeRange, in map[string][]float64) ([]float64, error) {
			gp := in["geopotential_height_raw"]
			const g = 9.80665
			out := make([]float64, len(gp))
			copy(out, gp)
			floats.Scale(1/g, out)
			return out, nil
		},
	}

	t["wind_speed"] = funcDerivation{
		prereqs: []variable.Variable{must("wind_u_component"), must("wind_v_component")},
		unit:    variable.UnitMetersPerSec,
		compute: func(tr timerange.TimeRange, in map[string][]float64) ([]float64, error) {
			u, v := in["wind_u_component"], in["wind_v_component"]
			return elementwise(len(u), func(i int) float64 { return math.Hypot(u[i], v[i]) }), nil
		},
	}

	t["wind_direction"] = funcDerivation{
		prereqs: []variable.Variable{must("wind_u_component"), must("wind_v_component")},
		unit:    variable.UnitDegrees,
		compute: func(tr timerange.TimeRange, in map[string][]float64) ([]float64, error) {
			u, v := in["wind_u_component"], in["wind_v_component"]
			return elementwise(len(u), func(i int) float64 { return windDirectionFromNorth(u[i], v[i]) }), nil
		},
	}

	return t
}

// slingoCloudCover implements Slingo's empirical relation between
// relative humidity and fractional cloud cover at a pressure level
// (spec.md §4.6: "Pressure-level cloud_cover = f(relative_humidity,
// pressure_hPa) with Slingo's relation"), using the mid-level
// coefficients of the scheme (cloud cover rises sharply above an 80%
// RH critical threshold).
func slingoCloudCover(rh float64) float64 {
	const rhCrit = 80.0
	if rh <= rhCrit {
		return 0
	}
	frac := (rh - rhCrit) / (100 - rhCrit)
	return math.Min(100, 100*frac*frac)
}
