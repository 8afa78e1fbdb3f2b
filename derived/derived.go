// Package derived implements the derived-variable engine of spec.md
// §4.6 (C6): per-domain-family declarative tables mapping derived
// variables to their raw prerequisites and a pure compute function,
// with dependency-directed prefetching.
package derived

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/metio-grid/wxreader/reader"
	"github.com/metio-grid/wxreader/timerange"
	"github.com/metio-grid/wxreader/variable"
)

// Derivation is the common shape of every derived variable:
// SPEC_FULL.md §4.6's Derivation interface.
type Derivation interface {
	Prerequisites() []variable.Variable
	// Compute evaluates the derivation over aligned prerequisite
	// sequences. tr is the same window those sequences were read over,
	// supplied so solar-position derivations (direct/DNI/GTI/is_day)
	// can recover each sample's timestamp via tr.At(i).
	Compute(tr timerange.TimeRange, inputs map[string][]float64) ([]float64, error)
	Unit() variable.Unit
}

// Table maps a derived variable's canonical tag to its Derivation.
type Table map[string]Derivation

// Engine evaluates derived variables against a reader.DataReader
// (a single domain reader or a mixer), recursing through derived
// prerequisites, per spec.md §4.6.
type Engine struct {
	table Table
}

// NewEngine builds an Engine over table.
func NewEngine(table Table) *Engine {
	return &Engine{table: table}
}

// Prefetch enumerates derived's static prerequisite set and forwards
// prefetches to r, recursing for prerequisites that are themselves
// derived (spec.md §4.6).
func (e *Engine) Prefetch(ctx context.Context, r reader.DataReader, derivedName string, tr timerange.TimeRange) {
	d, ok := e.table[derivedName]
	if !ok {
		return
	}
	for _, prereq := range d.Prerequisites() {
		if prereq.Derived {
			e.Prefetch(ctx, r, prereq.Canonical, tr)
			continue
		}
		r.Prefetch(ctx, prereq, tr)
	}
}

// Get reads each prerequisite of derivedName (recursing through
// derived prerequisites via Get, concurrently fetching raw ones),
// applies the compute function element-wise, and attaches the
// declared output unit (spec.md §4.6).
func (e *Engine) Get(ctx context.Context, r reader.DataReader, derivedName string, tr timerange.TimeRange) ([]float64, variable.Unit, error) {
	d, ok := e.table[derivedName]
	if !ok {
		return nil, variable.Unit{}, fmt.Errorf("derived: unknown variable %q", derivedName)
	}

	// All raw prerequisites are fetched concurrently via an errgroup
	// bound to the request context (SPEC_FULL.md's concurrency model,
	// spec.md §5); the compute function below only runs once every
	// fetch has completed, so it sees aligned arrays.
	inputs := make(map[string][]float64, len(d.Prerequisites()))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, prereq := range d.Prerequisites() {
		prereq := prereq
		g.Go(func() error {
			var data []float64
			var err error
			if prereq.Derived {
				data, _, err = e.Get(gctx, r, prereq.Canonical, tr)
			} else {
				data, _, err = r.Get(gctx, prereq, tr)
			}
			if err != nil {
				return fmt.Errorf("derived: prerequisite %s for %s: %w", prereq.Canonical, derivedName, err)
			}
			mu.Lock()
			inputs[prereq.Canonical] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, variable.Unit{}, err
	}

	out, err := d.Compute(tr, inputs)
	if err != nil {
		return nil, variable.Unit{}, fmt.Errorf("derived: computing %s: %w", derivedName, err)
	}
	return out, d.Unit(), nil
}
