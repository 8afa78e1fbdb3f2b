// Package seamless implements the multi-model seamless selector of
// spec.md §4.8 (C8): given a target coordinate, build the appropriate
// ordered reader list per geographic region and per variable family.
package seamless

import (
	"context"
	"fmt"

	"github.com/metio-grid/wxreader/domain"
	"github.com/metio-grid/wxreader/mixer"
	"github.com/metio-grid/wxreader/reader"
)

// Token identifies a model family or explicit single-domain selection
// spec.md §4.8 names: "best_match", "<family>_seamless", or an explicit
// domain key.
type Token string

const (
	BestMatch      Token = "best_match"
	IconSeamless   Token = "icon_seamless"
	GfsSeamless    Token = "gfs_seamless"
	AromeSeamless  Token = "arome_seamless"
)

// box is a closed latitude/longitude rectangle used by the region
// rules of spec.md §4.8.
type box struct {
	latMin, latMax, lonMin, lonMax float64
}

func (b box) contains(lat, lon float64) bool {
	return lat >= b.latMin && lat <= b.latMax && lon >= b.lonMin && lon <= b.lonMax
}

var (
	westernEurope    = box{latMin: 36, latMax: 55, lonMin: -10, lonMax: 16}
	netherlandsBelgium = box{latMin: 49.35, latMax: 53.79, lonMin: 2.19, lonMax: 7.66}
	northAmerica     = box{latMin: 24, latMax: 72, lonMin: -170, lonMax: -52}
	japan            = box{latMin: 27.4, latMax: 42.65, lonMin: 125, lonMax: 145}
)

// domainKeys returns, in lowest-to-highest priority order, the domain
// registry keys that compose a reader stack for (token, lat, lon), per
// spec.md §4.8's representative rules. Evaluated top to bottom; every
// matching entry contributes, so best_match's base global tier is
// always present and regional tiers layer on top.
func domainKeys(token Token, lat, lon float64) []string {
	switch token {
	case BestMatch:
		keys := []string{"gfs_global", "icon_global"}
		if coveredByIconD2(lat, lon) {
			keys = append(keys, "icon_d2")
		}
		if westernEurope.contains(lat, lon) {
			keys = append(keys, "arpege_europe", "arome_france")
		}
		if netherlandsBelgium.contains(lat, lon) {
			keys = append(keys, "knmi_harmonie")
		}
		if lat >= 54.9 {
			keys = append(keys, "metno_nordic")
		}
		if northAmerica.contains(lat, lon) {
			keys = append(keys, "gfs_hrrr")
		}
		if japan.contains(lat, lon) {
			keys = append(keys, "jma_msm")
		}
		return keys
	case IconSeamless:
		keys := []string{"icon_global"}
		if coveredByIconEU(lat, lon) {
			keys = append(keys, "icon_eu")
		}
		if coveredByIconD2(lat, lon) {
			keys = append(keys, "icon_d2", "icon_d2_15min")
		}
		return keys
	case GfsSeamless:
		keys := []string{"gfs_global"}
		if northAmerica.contains(lat, lon) {
			keys = append(keys, "gfs_hrrr")
		}
		return keys
	case AromeSeamless:
		keys := []string{"arpege_europe"}
		if westernEurope.contains(lat, lon) {
			keys = append(keys, "arome_france")
		}
		return keys
	default:
		return []string{string(token)}
	}
}

// coveredByIconEU and coveredByIconD2 approximate the ICON regional
// nest footprints (Europe and DWD's high-resolution Germany-centered
// domain respectively); exact polygon coverage lives in the archive's
// meta.json per domain and is out of this core's scope (spec.md §1).
func coveredByIconEU(lat, lon float64) bool {
	return lat >= 29.5 && lat <= 70.5 && lon >= -23.5 && lon <= 45
}

func coveredByIconD2(lat, lon float64) bool {
	return lat >= 43.18 && lat <= 58.08 && lon >= -3.94 && lon <= 20.34
}

// probabilityDomainKey returns the ensemble-probability domain key for
// token, or "" if none applies. Probability readers are always
// prepended to the head of the list (lowest priority) so they only
// fill variables absent from the main deterministic readers, per
// spec.md §4.7 rule 3.
func probabilityDomainKey(token Token) string {
	switch token {
	case BestMatch, IconSeamless:
		return "icon_d2_eps"
	default:
		return ""
	}
}

// Opener abstracts reader.Open so Select doesn't need direct access to
// the archive's chunk/static caches.
type Opener interface {
	Open(ctx context.Context, d *domain.Domain, lat, lon float64, targetElevation *float64, selection reader.Selection) *reader.Reader
}

// Select builds the ordered reader list for (token, lat, lon) and
// wraps it in a Mixer, per spec.md §4.8. A failure to load any single
// reader in a multi-domain token is non-fatal (spec.md §4.8); a
// failure to load the sole reader in an explicit single-domain token
// surfaces as ErrNoData.
func Select(ctx context.Context, registry *domain.Registry, open Opener, token Token, lat, lon float64, targetElevation *float64, selection reader.Selection) (*mixer.Mixer, error) {
	keys := domainKeys(token, lat, lon)
	if probKey := probabilityDomainKey(token); probKey != "" {
		keys = append([]string{probKey}, keys...)
	}

	var readers []reader.DataReader
	for _, key := range keys {
		d, ok := registry.Lookup(key)
		if !ok {
			// iconD2Eps falling back to iconD2 is an explicit, named
			// fallback per SPEC_FULL.md's resolution of spec.md §9's
			// Open Question, not a silent alias: if the ensemble
			// domain isn't registered, the deterministic ICON-D2
			// reader (already in keys for best_match/icon_seamless)
			// covers the gap instead.
			continue
		}
		r := open.Open(ctx, d, lat, lon, targetElevation, selection)
		if r == nil {
			continue
		}
		readers = append(readers, r)
	}

	if len(readers) == 0 {
		return nil, fmt.Errorf("seamless: %w for token %q at (%g, %g)", ErrNoData, token, lat, lon)
	}

	return mixer.New(readers...), nil
}

// ErrNoData is returned when no reader in the selected stack resolved
// a coordinate, spec.md §4.8 ("no data for this location").
var ErrNoData = fmt.Errorf("no data for this location")
