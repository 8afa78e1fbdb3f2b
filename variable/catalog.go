package variable

// Catalog is a registry of canonical-tag to Variable, built once at
// package init the way the teacher builds its static PopIndices map
// (sr/srreader.go), and never mutated afterward.
type Catalog struct {
	byName map[string]Variable
}

// Default is the built-in catalog covering every raw and derived
// variable spec.md names in §3, §4.6, and §6.
var Default = newDefaultCatalog()

func newDefaultCatalog() *Catalog {
	c := &Catalog{byName: make(map[string]Variable)}
	for _, v := range rawSurfaceVariables {
		c.add(v)
	}
	for _, v := range rawPressureVariables {
		c.add(v)
	}
	for _, v := range derivedSurfaceVariables {
		c.add(v)
	}
	for _, v := range derivedPressureVariables {
		c.add(v)
	}
	return c
}

func (c *Catalog) add(v Variable) {
	c.byName[v.Canonical] = v
}

// Lookup resolves name (possibly an alias spelling) to its Variable.
func (c *Catalog) Lookup(name string) (Variable, bool) {
	v, ok := c.byName[Canonicalize(name)]
	return v, ok
}

// Parse resolves name against the default catalog.
func Parse(name string) (Variable, bool) {
	return Default.Lookup(name)
}

// rawSurfaceVariables lists the raw surface variables the reader and
// derived-variable engine read directly from the archive.
var rawSurfaceVariables = []Variable{
	{Canonical: "temperature_2m", Family: Surface, Interpolation: Hermite, ScaleFactor: 20, Unit: UnitCelsius, IsElevationCorrectable: true},
	{Canonical: "relative_humidity_2m", Family: Surface, Interpolation: Hermite, ScaleFactor: 1, Unit: UnitPercent},
	{Canonical: "wind_u_component_10m", Family: Surface, Interpolation: Linear, ScaleFactor: 10, Unit: UnitMetersPerSec},
	{Canonical: "wind_v_component_10m", Family: Surface, Interpolation: Linear, ScaleFactor: 10, Unit: UnitMetersPerSec},
	{Canonical: "wind_gusts_10m", Family: Surface, Interpolation: Backwards, ScaleFactor: 10, Unit: UnitMetersPerSec},
	{Canonical: "pressure_msl", Family: Surface, Interpolation: Linear, ScaleFactor: 10, Unit: UnitHectopascal},
	{Canonical: "shortwave_radiation", Family: Surface, Interpolation: SolarBackwardsAveraged, ScaleFactor: 1, Unit: UnitWattsPerM2},
	{Canonical: "diffuse_radiation", Family: Surface, Interpolation: SolarBackwardsAveraged, ScaleFactor: 1, Unit: UnitWattsPerM2},
	{Canonical: "precipitation", Family: Surface, Interpolation: BackwardsSum, ScaleFactor: 10, Unit: UnitMillimeter},
	{Canonical: "showers", Family: Surface, Interpolation: BackwardsSum, ScaleFactor: 10, Unit: UnitMillimeter},
	{Canonical: "cloud_cover", Family: Surface, Interpolation: Linear, ScaleFactor: 1, Unit: UnitPercent},
	{Canonical: "cape", Family: Surface, Interpolation: Linear, ScaleFactor: 1, Unit: UnitDimensionless},
	{Canonical: "lifted_index", Family: Surface, Interpolation: Linear, ScaleFactor: 10, Unit: UnitDimensionless},
	{Canonical: "visibility", Family: Surface, Interpolation: Linear, ScaleFactor: 1, Unit: UnitMeters},
	{Canonical: "freezing_rain_flag", Family: Surface, Interpolation: Backwards, ScaleFactor: 1, Unit: UnitDimensionless},
	{Canonical: "soil_moisture_0_1cm", Family: Surface, Interpolation: Linear, ScaleFactor: 1000, Unit: UnitDimensionless, RequiresOffsetCorrectionForMixing: true},
	{Canonical: "snow_depth", Family: Surface, Interpolation: Linear, ScaleFactor: 100, Unit: UnitCentimeter, RequiresOffsetCorrectionForMixing: true},
	// precipitation_probability only resolves on an ensemble domain
	// (spec.md §4.5 C8): the reader computes it as the percentage of
	// members whose raw precipitation exceeds the 0.1mm cutoff
	// (precipitation's own ScaleFactor of 10 makes that raw value 1),
	// already a physical percentage, so this variable's own
	// ScaleFactor is 1.
	{Canonical: "precipitation_probability", Family: Surface, Interpolation: Backwards, ScaleFactor: 1, Unit: UnitPercent, IsEnsembleProbability: true, EnsembleThreshold: 1},
}

var rawPressureVariables = []Variable{
	{Canonical: "temperature", Family: PressureLevel, Interpolation: Hermite, ScaleFactor: 20, Unit: UnitCelsius},
	{Canonical: "relative_humidity", Family: PressureLevel, Interpolation: Hermite, ScaleFactor: 1, Unit: UnitPercent},
	{Canonical: "wind_u_component", Family: PressureLevel, Interpolation: Linear, ScaleFactor: 10, Unit: UnitMetersPerSec},
	{Canonical: "wind_v_component", Family: PressureLevel, Interpolation: Linear, ScaleFactor: 10, Unit: UnitMetersPerSec},
	{Canonical: "geopotential_height_raw", Family: PressureLevel, Interpolation: Linear, ScaleFactor: 1, Unit: UnitMeters},
}

var derivedSurfaceVariables = []Variable{
	{Canonical: "dew_point_2m", Family: Surface, Interpolation: Hermite, Unit: UnitCelsius, IsElevationCorrectable: true, Derived: true},
	{Canonical: "wind_speed_10m", Family: Surface, Interpolation: Linear, Unit: UnitMetersPerSec, Derived: true},
	{Canonical: "wind_direction_10m", Family: Surface, Interpolation: LinearDegrees, Unit: UnitDegrees, Derived: true},
	{Canonical: "apparent_temperature", Family: Surface, Interpolation: Hermite, Unit: UnitCelsius, IsElevationCorrectable: true, Derived: true},
	{Canonical: "surface_pressure", Family: Surface, Interpolation: Linear, Unit: UnitHectopascal, Derived: true},
	{Canonical: "snowfall", Family: Surface, Interpolation: BackwardsSum, Unit: UnitCentimeter, Derived: true},
	{Canonical: "rain", Family: Surface, Interpolation: BackwardsSum, Unit: UnitMillimeter, Derived: true},
	{Canonical: "direct_radiation", Family: Surface, Interpolation: SolarBackwardsAveraged, Unit: UnitWattsPerM2, Derived: true},
	{Canonical: "direct_normal_irradiance", Family: Surface, Interpolation: SolarBackwardsAveraged, Unit: UnitWattsPerM2, Derived: true},
	{Canonical: "global_tilted_irradiance", Family: Surface, Interpolation: SolarBackwardsAveraged, Unit: UnitWattsPerM2, Derived: true},
	{Canonical: "weather_code", Family: Surface, Interpolation: Backwards, Unit: UnitWMOCode, Derived: true},
	{Canonical: "vapor_pressure_deficit", Family: Surface, Interpolation: Hermite, Unit: UnitHectopascal, Derived: true},
	{Canonical: "evapotranspiration", Family: Surface, Interpolation: BackwardsSum, Unit: UnitMillimeter, Derived: true},
	{Canonical: "freezing_level_height", Family: Surface, Interpolation: Linear, Unit: UnitMeters, Derived: true},
	{Canonical: "is_day", Family: Surface, Interpolation: Backwards, Unit: UnitDimensionless, Derived: true},
	{Canonical: "showers_component", Family: Surface, Interpolation: BackwardsSum, Unit: UnitMillimeter, Derived: true},
}

var derivedPressureVariables = []Variable{
	{Canonical: "wind_speed", Family: PressureLevel, Interpolation: Linear, Unit: UnitMetersPerSec, Derived: true},
	{Canonical: "wind_direction", Family: PressureLevel, Interpolation: LinearDegrees, Unit: UnitDegrees, Derived: true},
	{Canonical: "cloud_cover_pressure", Family: PressureLevel, Interpolation: Linear, Unit: UnitPercent, Derived: true},
	{Canonical: "geopotential_height", Family: PressureLevel, Interpolation: Linear, Unit: UnitMeters, Derived: true},
}
