package timerange

import "testing"

func TestCount(t *testing.T) {
	tr := New(0, 6*3600, 3600)
	if got := tr.Count(); got != 6 {
		t.Errorf("Count() = %d, want 6", got)
	}
}

func TestForInterpolationToLinear(t *testing.T) {
	// requesting hourly samples over a 6h window from a 6h-native model,
	// linear interpolation (padding 1) only snaps the window to native
	// steps and adds no extra native sample on either side.
	tr := New(0, 6*3600, 3600)
	exp := tr.ForInterpolationTo(6*3600, 1)
	if exp.Start != 0 || exp.End != 6*3600 || exp.Dt != 6*3600 {
		t.Errorf("ForInterpolationTo(linear) = %+v", exp)
	}
}

func TestForInterpolationToHermite(t *testing.T) {
	tr := New(0, 6*3600, 3600)
	exp := tr.ForInterpolationTo(6*3600, 2)
	if exp.Start != -6*3600 || exp.End != 12*3600 {
		t.Errorf("ForInterpolationTo(hermite) = %+v", exp)
	}
}

func TestForAggregationToSum(t *testing.T) {
	// requesting 3-hourly backward sums from an hourly model: 3 member
	// steps must be pulled in starting 2 steps before the window.
	tr := New(3*3600, 6*3600, 3*3600)
	exp := tr.ForAggregationTo(3600, true)
	if exp.Start != 3600 || exp.End != 6*3600 || exp.Dt != 3600 {
		t.Errorf("ForAggregationTo(sum) = %+v", exp)
	}
}

func TestForAggregationToPointSampling(t *testing.T) {
	tr := New(0, 6*3600, 3600)
	exp := tr.ForAggregationTo(3600, false)
	if exp != (TimeRange{Start: 0, End: 6 * 3600, Dt: 3600}) {
		t.Errorf("ForAggregationTo(point) = %+v", exp)
	}
}

func TestFloorCeilNegative(t *testing.T) {
	if got := floorTo(-3601, 3600); got != -7200 {
		t.Errorf("floorTo(-3601,3600) = %d, want -7200", got)
	}
	if got := ceilTo(-3601, 3600); got != -3600 {
		t.Errorf("ceilTo(-3601,3600) = %d, want -3600", got)
	}
}
