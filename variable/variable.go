// Package variable describes the tagged raw and derived quantities the
// reader and mixer operate over: storage keys, interpolation semantics,
// units, and the elevation/offset-correction flags that drive C4 and C7.
package variable

import (
	"strconv"
	"strings"
)

// Family partitions variables by the kind of vertical level they live on.
type Family int

const (
	Surface Family = iota
	PressureLevel
	HeightLevel
)

func (f Family) String() string {
	switch f {
	case Surface:
		return "surface"
	case PressureLevel:
		return "pressure"
	case HeightLevel:
		return "height"
	default:
		return "unknown"
	}
}

// Interpolation identifies how a native-dt sequence is converted to a
// requested-dt sequence (C4).
type Interpolation int

const (
	Linear Interpolation = iota
	LinearDegrees
	Hermite
	SolarBackwardsAveraged
	SolarBackwardsMissingNotAveraged
	BackwardsSum
	Backwards
)

// Padding returns the left/right sample count the interpolation kernel
// needs, per spec.md's table in §4.4/§4.3.
func (k Interpolation) Padding() int {
	switch k {
	case Hermite, SolarBackwardsAveraged, SolarBackwardsMissingNotAveraged:
		return 2
	default:
		return 1
	}
}

// IsAggregating reports whether the interpolation kind sums/averages
// member steps when the requested dt is coarser than the model's native
// dt (spec.md §4.3 forAggregationTo), as opposed to point-sampling kinds.
func (k Interpolation) IsAggregating() bool {
	switch k {
	case BackwardsSum, SolarBackwardsAveraged, SolarBackwardsMissingNotAveraged:
		return true
	default:
		return false
	}
}

// Variable is the tagged identifier carrying everything §3 of the spec
// requires: storage key, compression scale, interpolation kind, unit,
// and the two mixing-relevant boolean flags.
type Variable struct {
	// Canonical is the stable snake_case tag used as the storage-key
	// stem and as the map key everywhere else in the core.
	Canonical string

	// SubLevel is the optional integer sub-dimension (pressure level in
	// hPa, or ensemble member index for a packed ensemble domain) that,
	// together with Canonical, forms the full storage key. Zero means
	// "no sub-dimension".
	SubLevel int

	// EnsembleMember selects one member's file family on a disjoint
	// (non-packed) ensemble domain. Zero on every non-ensemble domain
	// and on packed ensemble domains, where SubLevel carries the member
	// index instead.
	EnsembleMember int

	Family        Family
	Interpolation Interpolation

	// ScaleFactor converts between the compressed int16 on-disk
	// representation and the floating-point physical value:
	// int16 = round(float * ScaleFactor).
	ScaleFactor float64

	Unit Unit

	// IsElevationCorrectable is true only for Celsius temperature-like
	// variables (spec.md §4.4).
	IsElevationCorrectable bool

	// RequiresOffsetCorrectionForMixing is true for cumulative process
	// variables (soil moisture buckets, snow depth) that need the
	// mixer's C0-continuity correction at domain boundaries (spec.md
	// §4.7).
	RequiresOffsetCorrectionForMixing bool

	// Derived is true for variables computed by the derived-variable
	// engine (C6) rather than read directly from the archive.
	Derived bool

	// IsEnsembleProbability marks a variable that, on an ensemble
	// domain, is computed as the fraction of members exceeding
	// EnsembleThreshold rather than averaged/medianed across members.
	IsEnsembleProbability bool

	// EnsembleThreshold is the exceedance threshold (in the variable's
	// native int16-scaled units) used when IsEnsembleProbability is set.
	EnsembleThreshold float64
}

// Key returns the storage-key fragment used to resolve archive file
// paths: the canonical name, plus "_<sublevel>" when a sub-dimension is
// present.
func (v Variable) Key() string {
	if v.SubLevel == 0 {
		return v.Canonical
	}
	return v.Canonical + "_" + strconv.Itoa(v.SubLevel)
}

// aliases maps alternate spellings to a variable's canonical tag, so the
// core only ever sees canonical tags (spec.md §4.6, §9).
var aliases = map[string]string{
	"windspeed_10m":    "wind_speed_10m",
	"winddirection":    "wind_direction_10m",
	"dewpoint_2m":      "dew_point_2m",
	"cloudcover":       "cloud_cover",
	"relativehumidity": "relative_humidity_2m",
}

// Canonicalize resolves an alias spelling to its canonical tag. Names
// not present in the alias table are returned unchanged.
func Canonicalize(name string) string {
	name = strings.ToLower(name)
	if c, ok := aliases[name]; ok {
		return c
	}
	return name
}
