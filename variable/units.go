package variable

import "github.com/ctessum/unit"

// Unit tags a variable's physical dimension using the teacher's
// dimensional-analysis library, the way badunit.go builds named units on
// top of unit.Dimensions, plus the short display label the response
// assembler (outside this core) shows to callers.
type Unit struct {
	Label      string
	Dimensions unit.Dimensions
}

// these are the SI base dimensions this core actually needs; built the
// same way badunit.go composes its constructors from unit.Dimensions.
var (
	dimensionless = unit.Dimensions{}
	dimTemp       = unit.Dimensions{unit.TemperatureDim: 1}
	dimLength     = unit.Dimensions{unit.LengthDim: 1}
	dimSpeed      = unit.Dimensions{unit.LengthDim: 1, unit.TimeDim: -1}
	dimPressure   = unit.Dimensions{unit.MassDim: 1, unit.LengthDim: -1, unit.TimeDim: -2}
	dimIrradiance = unit.Dimensions{unit.MassDim: 1, unit.TimeDim: -3}
)

// Predeclared units used across the variable catalog (§4.2, §4.4, §4.6).
var (
	UnitCelsius      = Unit{Label: "°C", Dimensions: dimTemp}
	UnitPercent      = Unit{Label: "%", Dimensions: dimensionless}
	UnitMetersPerSec = Unit{Label: "m/s", Dimensions: dimSpeed}
	UnitDegrees      = Unit{Label: "°", Dimensions: dimensionless}
	UnitHectopascal  = Unit{Label: "hPa", Dimensions: dimPressure}
	UnitMeters       = Unit{Label: "m", Dimensions: dimLength}
	UnitMillimeter   = Unit{Label: "mm", Dimensions: dimLength}
	UnitCentimeter   = Unit{Label: "cm", Dimensions: dimLength}
	UnitWattsPerM2   = Unit{Label: "W/m²", Dimensions: dimIrradiance}
	UnitDimensionless = Unit{Label: "", Dimensions: dimensionless}
	UnitWMOCode      = Unit{Label: "wmo_code", Dimensions: dimensionless}
)

// New builds a *unit.Unit carrying value in this Unit's dimensions, the
// same pattern badunit.go uses for e.g. Fahrenheit.
func (u Unit) New(value float64) *unit.Unit {
	return unit.New(value, u.Dimensions)
}
