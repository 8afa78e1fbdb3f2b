package mixer

import (
	"context"
	"math"
	"testing"

	"github.com/metio-grid/wxreader/reader"
	"github.com/metio-grid/wxreader/timerange"
	"github.com/metio-grid/wxreader/variable"
)

// fakeReader is a minimal reader.DataReader stub for mixer tests.
type fakeReader struct {
	values  []float64
	unit    variable.Unit
	static  map[string]float64
	prefetched bool
}

func (f *fakeReader) Get(ctx context.Context, v variable.Variable, tr timerange.TimeRange) ([]float64, variable.Unit, error) {
	return f.values, f.unit, nil
}

func (f *fakeReader) Prefetch(ctx context.Context, v variable.Variable, tr timerange.TimeRange) {
	f.prefetched = true
}

func (f *fakeReader) StaticLookup(ctx context.Context, kind string) (float64, bool) {
	v, ok := f.static[kind]
	return v, ok
}

var _ reader.DataReader = (*fakeReader)(nil)

func nan() float64 { return math.NaN() }

func TestGetHighestPriorityWins(t *testing.T) {
	coarse := &fakeReader{values: []float64{1, 1, 1}}
	fine := &fakeReader{values: []float64{nan(), 9, nan()}}
	m := New(coarse, fine)

	v := variable.Variable{Canonical: "temperature_2m"}
	tr := timerange.New(0, 3*3600, 3600)
	out, _, err := m.Get(context.Background(), v, tr)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{1, 9, 1}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("Get()[%d] = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestGetEmptyMixerReturnsNaN(t *testing.T) {
	m := New()
	v := variable.Variable{Canonical: "temperature_2m"}
	tr := timerange.New(0, 2*3600, 3600)
	out, _, err := m.Get(context.Background(), v, tr)
	if err != nil {
		t.Fatal(err)
	}
	for _, x := range out {
		if !math.IsNaN(x) {
			t.Errorf("Get() on empty mixer = %v, want all NaN", out)
		}
	}
}

func TestOffsetCorrectionShiftsToMatchCrossover(t *testing.T) {
	// coarse reader reports a monotonic accumulator 10,20,30,40; fine
	// reader only starts reporting at t=2 with its own, different
	// accumulator baseline 100,102. The offset correction should shift
	// the fine reader's contribution so the transition is continuous.
	coarse := &fakeReader{values: []float64{10, 20, 30, 40}}
	fine := &fakeReader{values: []float64{nan(), nan(), 100, 102}}
	m := New(coarse, fine)

	v := variable.Variable{Canonical: "snow_depth", RequiresOffsetCorrectionForMixing: true}
	tr := timerange.New(0, 4*3600, 3600)
	out, _, err := m.Get(context.Background(), v, tr)
	if err != nil {
		t.Fatal(err)
	}
	// at the crossover (t=2) the corrected value must equal the coarse
	// reader's value at that same step (continuity).
	if math.Abs(out[2]-30) > 1e-9 {
		t.Errorf("Get()[2] = %v, want 30 (continuous with coarse reader)", out[2])
	}
	// the step after the crossover carries the same shift forward.
	if math.Abs(out[3]-32) > 1e-9 {
		t.Errorf("Get()[3] = %v, want 32 (30 + (102-100))", out[3])
	}
}

func TestPrefetchForwardsToEveryReader(t *testing.T) {
	a := &fakeReader{}
	b := &fakeReader{}
	m := New(a, b)
	m.Prefetch(context.Background(), variable.Variable{}, timerange.New(0, 3600, 3600))
	if !a.prefetched || !b.prefetched {
		t.Error("Prefetch did not reach every reader")
	}
}

func TestStaticLookupFallsBackDownPriority(t *testing.T) {
	low := &fakeReader{static: map[string]float64{"elevation": 10}}
	high := &fakeReader{static: map[string]float64{}}
	m := New(low, high)

	v, ok := m.StaticLookup(context.Background(), "elevation")
	if !ok || v != 10 {
		t.Errorf("StaticLookup() = (%v, %v), want (10, true) via fallback", v, ok)
	}
	if _, ok := m.StaticLookup(context.Background(), "soil_type"); ok {
		t.Error("StaticLookup(soil_type) ok = true, want false")
	}
}
