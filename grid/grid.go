// Package grid implements the forward/inverse coordinate projections and
// point-lookup operations of spec.md §3/§4.1 (C1) for every grid variant
// the platform's domains use.
package grid

import "math"

// ElevationLookup decouples grid geometry from how static elevation
// files are read (C2's concern); Reader (C5) supplies the concrete
// implementation backed by the archive's static-file cache.
type ElevationLookup interface {
	At(gridpoint int) (elev float64, ok bool)
}

// Grid is satisfied by every supported grid variant (regular lat/lon,
// reduced Gaussian, Lambert conformal conic, Lambert azimuthal equal
// area, rotated lat/lon, polar stereographic).
type Grid interface {
	// Forward projects a geographic coordinate to grid units.
	Forward(lat, lon float64) (x, y float64, ok bool)

	// Inverse recovers a geographic coordinate from grid units.
	Inverse(x, y float64) (lat, lon float64)

	// FindPoint returns the flat gridpoint index nearest (lat, lon), or
	// false if the coordinate falls outside the grid.
	FindPoint(lat, lon float64) (gridpoint int, ok bool)

	// FindPointTerrainOptimised searches the neighborhood of the
	// nearest point for the one whose static elevation is closest to
	// targetElev, per the policy in spec.md §4.1.
	FindPointTerrainOptimised(lat, lon, targetElev float64, elev ElevationLookup) (gridpoint int, gridElev float64, ok bool)

	// GetCoordinates returns the geographic coordinate of a gridpoint.
	GetCoordinates(gridpoint int) (lat, lon float64)

	NX() int
	NY() int
	Count() int
}

// terrainSearchCells and terrainSearchThreshold implement the fixed
// policy constants from spec.md §4.1.
const (
	terrainSearchThreshold = 100.0 // metres
	terrainSearchCells     = 1.5   // grid cells
)

// searchTerrainOptimised implements the shared 3x3-neighborhood terrain
// search described in spec.md §4.1, parameterized over a grid's own
// (x,y)->gridpoint and neighbor-distance operations. Grid
// implementations with a regular (x,y) indexing call this directly;
// reduced Gaussian grids (irregular row width) use their own variant
// since neighbor offsets aren't uniform across rows.
func searchTerrainOptimised(nearestX, nearestY int, targetElev float64, toIndex func(x, y int) (idx int, ok bool), elev ElevationLookup) (gridpoint int, gridElev float64, ok bool) {
	nearestIdx, nearestOK := toIndex(nearestX, nearestY)
	if !nearestOK {
		return 0, 0, false
	}
	nearestElev, _ := elev.At(nearestIdx)

	// Over sea, the nearest sea point always wins regardless of target
	// elevation.
	if nearestElev <= 0 {
		return nearestIdx, nearestElev, true
	}

	bestIdx := nearestIdx
	bestElev := nearestElev
	bestDiff := math.Abs(nearestElev - targetElev)

	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			dist := math.Hypot(float64(dx), float64(dy))
			if dist > terrainSearchCells {
				continue
			}
			idx, ok := toIndex(nearestX+dx, nearestY+dy)
			if !ok {
				continue
			}
			e, ok := elev.At(idx)
			if !ok {
				continue
			}
			diff := math.Abs(e - targetElev)
			if diff < bestDiff && diff < terrainSearchThreshold {
				bestIdx, bestElev, bestDiff = idx, e, diff
			}
		}
	}
	return bestIdx, bestElev, true
}

// normalizeLon wraps a longitude into [0, 360).
func normalizeLon(lon float64) float64 {
	lon = math.Mod(lon, 360)
	if lon < 0 {
		lon += 360
	}
	return lon
}
