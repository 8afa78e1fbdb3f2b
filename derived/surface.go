package derived

import (
	"math"

	"github.com/metio-grid/wxreader/interp"
	"github.com/metio-grid/wxreader/timerange"
	"github.com/metio-grid/wxreader/variable"
)

// funcDerivation adapts a prerequisite list and a pure compute closure
// to the Derivation interface, the way derived variables are described
// as "a pure compute function over equal-length aligned float
// sequences" in spec.md §3.
type funcDerivation struct {
	prereqs []variable.Variable
	unit    variable.Unit
	compute func(tr timerange.TimeRange, inputs map[string][]float64) ([]float64, error)
}

func (f funcDerivation) Prerequisites() []variable.Variable { return f.prereqs }
func (f funcDerivation) Unit() variable.Unit                { return f.unit }
func (f funcDerivation) Compute(tr timerange.TimeRange, inputs map[string][]float64) ([]float64, error) {
	return f.compute(tr, inputs)
}

func must(name string) variable.Variable {
	v, ok := variable.Parse(name)
	if !ok {
		panic("derived: unknown prerequisite " + name)
	}
	return v
}

func elementwise(n int, f func(i int) float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = f(i)
	}
	return out
}

// Surface covers every derived surface variable named in spec.md §4.6
// plus the supplemental quantities SPEC_FULL.md §4.6 adds.
//
// Coordinates (lat, lon) are needed by the solar-position derivations
// (direct/DNI/GTI/is_day); stationElevation feeds the surface_pressure
// reduction. NewSurface binds them once per reader the way a
// single-domain Reader already carries ModelLat/ModelLon/TargetElevation.
func NewSurface(lat, lon, stationElevation float64) Table {
	t := Table{}

	t["wind_speed_10m"] = funcDerivation{
		prereqs: []variable.Variable{must("wind_u_component_10m"), must("wind_v_component_10m")},
		unit:    variable.UnitMetersPerSec,
		compute: func(tr timerange.TimeRange, in map[string][]float64) ([]float64, error) {
			u, v := in["wind_u_component_10m"], in["wind_v_component_10m"]
			return elementwise(len(u), func(i int) float64 { return math.Hypot(u[i], v[i]) }), nil
		},
	}

	t["wind_direction_10m"] = funcDerivation{
		prereqs: []variable.Variable{must("wind_u_component_10m"), must("wind_v_component_10m")},
		unit:    variable.UnitDegrees,
		compute: func(tr timerange.TimeRange, in map[string][]float64) ([]float64, error) {
			u, v := in["wind_u_component_10m"], in["wind_v_component_10m"]
			return elementwise(len(u), func(i int) float64 { return windDirectionFromNorth(u[i], v[i]) }), nil
		},
	}

	t["dew_point_2m"] = funcDerivation{
		prereqs: []variable.Variable{must("temperature_2m"), must("relative_humidity_2m")},
		unit:    variable.UnitCelsius,
		compute: func(tr timerange.TimeRange, in map[string][]float64) ([]float64, error) {
			t2m, rh := in["temperature_2m"], in["relative_humidity_2m"]
			return elementwise(len(t2m), func(i int) float64 { return dewPointFromRelativeHumidity(t2m[i], rh[i]) }), nil
		},
	}

	t["vapor_pressure_deficit"] = funcDerivation{
		prereqs: []variable.Variable{must("temperature_2m"), must("relative_humidity_2m")},
		unit:    variable.UnitHectopascal,
		compute: func(tr timerange.TimeRange, in map[string][]float64) ([]float64, error) {
			t2m, rh := in["temperature_2m"], in["relative_humidity_2m"]
			return elementwise(len(t2m), func(i int) float64 {
				es := saturationVaporPressure(t2m[i])
				return es * (1 - rh[i]/100)
			}), nil
		},
	}

	t["apparent_temperature"] = funcDerivation{
		prereqs: []variable.Variable{must("temperature_2m"), must("relative_humidity_2m"), must("wind_speed_10m"), must("shortwave_radiation")},
		unit:    variable.UnitCelsius,
		compute: func(tr timerange.TimeRange, in map[string][]float64) ([]float64, error) {
			t2m, rh, ws, swrad := in["temperature_2m"], in["relative_humidity_2m"], in["wind_speed_10m"], in["shortwave_radiation"]
			return elementwise(len(t2m), func(i int) float64 { return steadmanApparentTemperature(t2m[i], rh[i], ws[i], swrad[i]) }), nil
		},
	}

	t["surface_pressure"] = funcDerivation{
		prereqs: []variable.Variable{must("pressure_msl"), must("temperature_2m")},
		unit:    variable.UnitHectopascal,
		compute: func(tr timerange.TimeRange, in map[string][]float64) ([]float64, error) {
			msl, t2m := in["pressure_msl"], in["temperature_2m"]
			return elementwise(len(msl), func(i int) float64 {
				return reducePressureToElevation(msl[i], t2m[i], stationElevation)
			}), nil
		},
	}

	t["snowfall"] = funcDerivation{
		prereqs: []variable.Variable{must("precipitation"), must("temperature_2m")},
		unit:    variable.UnitCentimeter,
		compute: func(tr timerange.TimeRange, in map[string][]float64) ([]float64, error) {
			precip, t2m := in["precipitation"], in["temperature_2m"]
			const waterToSnow = 0.7 // cm snow depth per mm water-equivalent; SPEC_FULL.md Open Question resolution
			return elementwise(len(precip), func(i int) float64 {
				if t2m[i] >= 0 {
					return 0
				}
				return precip[i] * waterToSnow
			}), nil
		},
	}

	t["rain"] = funcDerivation{
		prereqs: []variable.Variable{must("precipitation"), must("temperature_2m")},
		unit:    variable.UnitMillimeter,
		compute: func(tr timerange.TimeRange, in map[string][]float64) ([]float64, error) {
			precip, t2m := in["precipitation"], in["temperature_2m"]
			return elementwise(len(precip), func(i int) float64 {
				if t2m[i] >= 0 {
					return precip[i]
				}
				return 0
			}), nil
		},
	}

	// showersComponent preserves spec.md §9's Open Question verbatim:
	// several domains use min(precipitation, 0) where max looks
	// intended. Tracked, not silently corrected, per SPEC_FULL.md.
	t["showers_component"] = funcDerivation{
		prereqs: []variable.Variable{must("precipitation")},
		unit:    variable.UnitMillimeter,
		compute: func(tr timerange.TimeRange, in map[string][]float64) ([]float64, error) {
			precip := in["precipitation"]
			return elementwise(len(precip), func(i int) float64 { return math.Min(precip[i], 0) }), nil
		},
	}

	t["direct_radiation"] = funcDerivation{
		prereqs: []variable.Variable{must("shortwave_radiation"), must("diffuse_radiation")},
		unit:    variable.UnitWattsPerM2,
		compute: func(tr timerange.TimeRange, in map[string][]float64) ([]float64, error) {
			sw, diff := in["shortwave_radiation"], in["diffuse_radiation"]
			return elementwise(len(sw), func(i int) float64 { return math.Max(0, sw[i]-diff[i]) }), nil
		},
	}

	t["direct_normal_irradiance"] = funcDerivation{
		prereqs: []variable.Variable{must("shortwave_radiation"), must("diffuse_radiation")},
		unit:    variable.UnitWattsPerM2,
		compute: func(tr timerange.TimeRange, in map[string][]float64) ([]float64, error) {
			sw, diff := in["shortwave_radiation"], in["diffuse_radiation"]
			return elementwise(len(sw), func(i int) float64 {
				direct := math.Max(0, sw[i]-diff[i])
				cosz := interp.CosZenith(tr.At(i), lat, lon)
				if cosz <= 0.01 {
					return 0
				}
				return direct / cosz
			}), nil
		},
	}

	t["global_tilted_irradiance"] = funcDerivation{
		prereqs: []variable.Variable{must("shortwave_radiation"), must("diffuse_radiation")},
		unit:    variable.UnitWattsPerM2,
		compute: func(tr timerange.TimeRange, in map[string][]float64) ([]float64, error) {
			sw, diff := in["shortwave_radiation"], in["diffuse_radiation"]
			// Hay-Davies composition at a fixed 30 degree tilt; the
			// tilt is not configurable and hayDaviesSample takes no
			// panel azimuth.
			return elementwise(len(sw), func(i int) float64 {
				direct := math.Max(0, sw[i]-diff[i])
				return hayDaviesSample(direct, diff[i], 30, tr.At(i), lat, lon)
			}), nil
		},
	}

	t["weather_code"] = funcDerivation{
		prereqs: []variable.Variable{
			must("cloud_cover"), must("precipitation"), must("snowfall"),
			must("wind_gusts_10m"), must("cape"), must("lifted_index"),
			must("visibility"), must("freezing_rain_flag"), must("showers"),
		},
		unit: variable.UnitWMOCode,
		compute: func(tr timerange.TimeRange, in map[string][]float64) ([]float64, error) {
			n := len(in["cloud_cover"])
			return elementwise(n, func(i int) float64 {
				return float64(weatherCode(
					in["cloud_cover"][i], in["precipitation"][i], in["snowfall"][i],
					in["wind_gusts_10m"][i], in["cape"][i], in["lifted_index"][i],
					in["visibility"][i], in["freezing_rain_flag"][i], in["showers"][i],
				))
			}), nil
		},
	}

	t["evapotranspiration"] = funcDerivation{
		prereqs: []variable.Variable{must("temperature_2m"), must("relative_humidity_2m"), must("wind_speed_10m"), must("shortwave_radiation")},
		unit:    variable.UnitMillimeter,
		compute: func(tr timerange.TimeRange, in map[string][]float64) ([]float64, error) {
			t2m, rh, ws, swrad := in["temperature_2m"], in["relative_humidity_2m"], in["wind_speed_10m"], in["shortwave_radiation"]
			return elementwise(len(t2m), func(i int) float64 { return penmanET(t2m[i], rh[i], ws[i], swrad[i]) }), nil
		},
	}

	t["freezing_level_height"] = funcDerivation{
		prereqs: []variable.Variable{must("temperature_2m")},
		unit:    variable.UnitMeters,
		compute: func(tr timerange.TimeRange, in map[string][]float64) ([]float64, error) {
			t2m := in["temperature_2m"]
			const lapseRate = 0.0065 // K/m, ICAO standard atmosphere
			return elementwise(len(t2m), func(i int) float64 { return math.Max(0, t2m[i]/lapseRate) }), nil
		},
	}

	t["is_day"] = funcDerivation{
		prereqs: nil,
		unit:    variable.UnitDimensionless,
		compute: func(tr timerange.TimeRange, in map[string][]float64) ([]float64, error) {
			return elementwise(tr.Count(), func(i int) float64 {
				if interp.IsDaylight(tr.At(i), lat, lon) {
					return 1
				}
				return 0
			}), nil
		},
	}

	return t
}

// windDirectionFromNorth returns the meteorological wind direction
// (degrees clockwise from north, the direction the wind is coming
// from) in [0,360), spec.md §4.6.
func windDirectionFromNorth(u, v float64) float64 {
	deg := math.Atan2(-u, -v) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return deg
}

// saturationVaporPressure is the Magnus formula, hPa, t in Celsius.
func saturationVaporPressure(t float64) float64 {
	return 6.112 * math.Exp(17.62*t/(243.12+t))
}

// dewPointFromRelativeHumidity is the Magnus formula spec.md §4.6
// names: `dew_point = f_magnus(temperature_C, relative_humidity_percent)`.
func dewPointFromRelativeHumidity(t, rh float64) float64 {
	gamma := math.Log(rh/100) + 17.62*t/(243.12+t)
	return 243.12 * gamma / (17.62 - gamma)
}

// reducePressureToElevation applies the hypsometric formula to reduce
// mean-sea-level pressure to a station's elevation using the column's
// mean temperature, spec.md §4.6's surface_pressure derivation.
func reducePressureToElevation(msl, t2m, elevation float64) float64 {
	tk := t2m + 273.15
	return msl * math.Exp(-9.80665*elevation/(287.05*tk))
}

// steadmanApparentTemperature implements the Steadman apparent-
// temperature formula family spec.md §4.6 names, combining a wind-chill
// term and a humidity/radiation term.
func steadmanApparentTemperature(t, rh, ws, swrad float64) float64 {
	e := (rh / 100) * 6.105 * math.Exp(17.27*t/(237.7+t))
	return t + 0.33*e - 0.70*ws - 4.00 + 0.0014*swrad
}

// penmanET is a simplified Penman-based reference evapotranspiration
// estimate, mm/step, used by SPEC_FULL.md's supplemental
// evapotranspiration derivation.
func penmanET(t, rh, ws, swrad float64) float64 {
	delta := 4098 * (0.6108 * math.Exp(17.27*t/(t+237.3))) / math.Pow(t+237.3, 2)
	gamma := 0.665e-3 * 1013.25
	es := saturationVaporPressure(t) / 10 // kPa
	ea := es * rh / 100
	rn := swrad * 0.0864 // W/m2 -> MJ/m2/day approx scale
	et := (0.408*delta*rn + gamma*(900/(t+273))*ws*(es-ea)) / (delta + gamma*(1+0.34*ws))
	return math.Max(0, et)
}

// hayDaviesSample composes direct and diffuse horizontal irradiance
// onto a tilted plane via the Hay-Davies anisotropic sky model, for one
// sample at timestamp t (spec.md §4.6's global_tilted_irradiance).
func hayDaviesSample(direct, diffuse, tiltDeg float64, t int64, lat, lon float64) float64 {
	tilt := tiltDeg * math.Pi / 180
	viewFactor := (1 + math.Cos(tilt)) / 2
	cosz := interp.CosZenith(t, lat, lon)
	anisotropyIndex := 0.0
	if cosz > 0.01 {
		extraterrestrial := 1367.0 * cosz
		if extraterrestrial > 0 {
			anisotropyIndex = math.Min(1, direct/extraterrestrial)
		}
	}
	beamComponent := direct * math.Max(0, cosz)
	circumsolar := diffuse * anisotropyIndex
	isotropic := diffuse * (1 - anisotropyIndex) * viewFactor
	return math.Max(0, beamComponent+circumsolar+isotropic)
}
