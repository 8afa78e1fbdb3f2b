// Package mixer implements the multi-domain mixer of spec.md §4.7
// (C7): composing an ordered list of single-domain readers into one
// "seamless" reader that fuses coarse global with fine regional
// forecasts, last-reader-wins.
package mixer

import (
	"context"
	"math"

	"github.com/metio-grid/wxreader/reader"
	"github.com/metio-grid/wxreader/timerange"
	"github.com/metio-grid/wxreader/variable"
)

// Mixer is an ordered tuple of readers, readers[0] coarsest/least
// preferred, readers[len-1] overriding everything before it (spec.md
// §3 "Mixer state"). It implements reader.DataReader so it composes
// recursively and can itself be layered into another Mixer.
type Mixer struct {
	readers []reader.DataReader
}

var _ reader.DataReader = (*Mixer)(nil)

// New builds a Mixer from readers ordered lowest-to-highest priority.
// Per spec.md §4.8, probability readers are always prepended so they
// only fill variables the main deterministic readers don't supply.
func New(readers ...reader.DataReader) *Mixer {
	return &Mixer{readers: readers}
}

// Get returns, for each requested sample, the value from the
// highest-priority reader whose data is non-NaN at that timestamp
// (spec.md §4.7 rule 1), with offset correction applied across mixer
// boundaries for cumulative variables (rule 2).
func (m *Mixer) Get(ctx context.Context, v variable.Variable, tr timerange.TimeRange) ([]float64, variable.Unit, error) {
	n := len(m.readers)
	if n == 0 {
		out := make([]float64, tr.Count())
		for i := range out {
			out[i] = math.NaN()
		}
		return out, v.Unit, nil
	}

	perReader := make([][]float64, n)
	var unit variable.Unit
	for i, r := range m.readers {
		data, u, err := r.Get(ctx, v, tr)
		if err != nil {
			return nil, variable.Unit{}, err
		}
		perReader[i] = data
		unit = u
	}

	count := tr.Count()
	out := make([]float64, count)
	winner := make([]int, count) // index into m.readers of the contributing reader, -1 if none

	for t := 0; t < count; t++ {
		out[t] = math.NaN()
		winner[t] = -1
		for i := n - 1; i >= 0; i-- {
			sample := perReader[i][t]
			if !math.IsNaN(sample) {
				out[t] = sample
				winner[t] = i
				break
			}
		}
	}

	if v.RequiresOffsetCorrectionForMixing {
		applyOffsetCorrection(out, winner, perReader)
	}

	return out, unit, nil
}

// applyOffsetCorrection implements spec.md §4.7 rule 2: when the
// winning reader changes between consecutive samples, shift every
// subsequent sample from the new winner by
// (value_prev_winner - value_new_winner) at the crossover step, so the
// transition is C0-continuous, until the new winner's own data ends
// (i.e. until the winner changes again).
func applyOffsetCorrection(out []float64, winner []int, perReader [][]float64) {
	shift := 0.0
	for t := 1; t < len(out); t++ {
		if winner[t] == -1 || winner[t-1] == -1 {
			continue
		}
		if winner[t] != winner[t-1] {
			prevWinnerValueAtCrossover := perReader[winner[t-1]][t]
			newWinnerValueAtCrossover := perReader[winner[t]][t]
			if !math.IsNaN(prevWinnerValueAtCrossover) && !math.IsNaN(newWinnerValueAtCrossover) {
				shift = prevWinnerValueAtCrossover - newWinnerValueAtCrossover
			} else {
				shift = 0
			}
		}
		if shift != 0 && !math.IsNaN(out[t]) {
			out[t] += shift
		}
	}
}

// Prefetch forwards the prefetch hint to every reader in the mix;
// readers whose data doesn't cover tr simply won't satisfy the
// subsequent Get and contribute NaN for those samples.
func (m *Mixer) Prefetch(ctx context.Context, v variable.Variable, tr timerange.TimeRange) {
	for _, r := range m.readers {
		r.Prefetch(ctx, v, tr)
	}
}

// StaticLookup returns the highest-priority reader's static value,
// falling back down the priority list if unavailable.
func (m *Mixer) StaticLookup(ctx context.Context, kind string) (float64, bool) {
	for i := len(m.readers) - 1; i >= 0; i-- {
		if v, ok := m.readers[i].StaticLookup(ctx, kind); ok {
			return v, true
		}
	}
	return 0, false
}
