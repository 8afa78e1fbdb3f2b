package interp

import (
	"math"
	"testing"

	"github.com/metio-grid/wxreader/timerange"
	"github.com/metio-grid/wxreader/variable"
)

func TestLinearMidpoint(t *testing.T) {
	native := []float64{0, 10, 20}
	target := timerange.New(1800, 1800+3600, 3600)
	out := Interpolate(variable.Linear, native, 0, 3600, target, Bounds{}, 0, 0)
	if len(out) != 1 || math.Abs(out[0]-5) > 1e-9 {
		t.Errorf("Interpolate(linear) = %v, want [5]", out)
	}
}

func TestLinearDegreesWrap(t *testing.T) {
	native := []float64{350, 10}
	target := timerange.New(1800, 1800+3600, 3600)
	out := Interpolate(variable.LinearDegrees, native, 0, 3600, target, Bounds{}, 0, 0)
	if len(out) != 1 || math.Abs(out[0]-0) > 1e-6 {
		t.Errorf("Interpolate(linearDegrees) across 350->10 = %v, want [0]", out)
	}
}

func TestHermiteClampsToBounds(t *testing.T) {
	native := []float64{0, 0, 120, 0}
	target := timerange.New(3600, 2*3600, 3600)
	out := Interpolate(variable.Hermite, native, 0, 3600, target, Bounds{Min: 0, Max: 100, Set: true}, 0, 0)
	if len(out) != 1 || out[0] > 100 {
		t.Errorf("Interpolate(hermite) = %v, want clamped to <=100", out)
	}
}

func TestBackwardsSumRefiningDistributesEvenly(t *testing.T) {
	native := []float64{12}
	target := timerange.New(0, 3600, 900)
	out := Interpolate(variable.BackwardsSum, native, 0, 3600, target, Bounds{}, 0, 0)
	if len(out) != 4 {
		t.Fatalf("len(out) = %d, want 4", len(out))
	}
	for _, v := range out {
		if math.Abs(v-3) > 1e-9 {
			t.Errorf("Interpolate(backwardsSum refine) = %v, want all 3", out)
		}
	}
}

func TestBackwardsSumAggregatingSums(t *testing.T) {
	native := []float64{1, 2, 3, 4}
	target := timerange.New(0, 3600, 3600)
	out := Interpolate(variable.BackwardsSum, native, 0, 900, target, Bounds{}, 0, 0)
	if len(out) != 1 || math.Abs(out[0]-10) > 1e-9 {
		t.Errorf("Interpolate(backwardsSum aggregate) = %v, want [10]", out)
	}
}

func TestBackwardsReplicateHoldsValue(t *testing.T) {
	native := []float64{7, 9}
	target := timerange.New(0, 3600, 1800)
	out := Interpolate(variable.Backwards, native, 0, 3600, target, Bounds{}, 0, 0)
	if len(out) != 2 || out[0] != 7 || out[1] != 7 {
		t.Errorf("Interpolate(backwards) = %v, want [7 7]", out)
	}
}

func TestIsDaylightNoonEquator(t *testing.T) {
	// 2024-06-20 12:00 UTC at the equator, prime meridian: sun should
	// be well above the horizon.
	noon := int64(1718884800)
	if !IsDaylight(noon, 0, 0) {
		t.Error("IsDaylight(noon, equator) = false, want true")
	}
}

func TestIsDaylightMidnight(t *testing.T) {
	midnight := int64(1718841600) // 2024-06-20 00:00 UTC
	if IsDaylight(midnight, 0, 0) {
		t.Error("IsDaylight(midnight, equator) = true, want false")
	}
}

func TestSolarBackwardsAveragedPreservesMean(t *testing.T) {
	// A flat native window's disaggregated-then-reintegrated mean must
	// reproduce the original average when the target window matches the
	// native window exactly.
	native := []float64{400}
	target := timerange.New(1718870400, 1718870400+3600, 3600) // 2024-06-20 08:00 UTC
	out := solarBackwardsAveraged(native, 1718870400, 3600, target, 45, 0, true)
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
	if math.Abs(out[0]-400) > 1e-6 {
		t.Errorf("solarBackwardsAveraged same-window mean = %v, want 400", out[0])
	}
}

func TestSolarBackwardsAveragedZeroStaysZero(t *testing.T) {
	native := []float64{0}
	target := timerange.New(0, 3600, 3600)
	out := solarBackwardsAveraged(native, 0, 3600, target, 45, 0, true)
	if len(out) != 1 || out[0] != 0 {
		t.Errorf("solarBackwardsAveraged(0) = %v, want [0]", out)
	}
}
