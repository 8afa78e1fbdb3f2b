package grid

import "math"

// RegularLatLon is a uniformly spaced latitude/longitude grid, the
// simplest of the variants in spec.md §4.1: (latMin, lonMin, dx, dy)
// with longitude wrapping and out-of-range latitude rejected.
type RegularLatLon struct {
	LatMin, LonMin float64
	Dx, Dy         float64
	Nx, Ny         int
}

var _ Grid = RegularLatLon{}

func (g RegularLatLon) NX() int    { return g.Nx }
func (g RegularLatLon) NY() int    { return g.Ny }
func (g RegularLatLon) Count() int { return g.Nx * g.Ny }

func (g RegularLatLon) Forward(lat, lon float64) (x, y float64, ok bool) {
	latMax := g.LatMin + g.Dy*float64(g.Ny-1)
	if lat < g.LatMin || lat > latMax {
		return 0, 0, false
	}
	lon = normalizeLon(lon)
	lonMin := normalizeLon(g.LonMin)
	dlon := lon - lonMin
	if dlon < 0 {
		dlon += 360
	}
	x = dlon / g.Dx
	y = (lat - g.LatMin) / g.Dy
	return x, y, true
}

func (g RegularLatLon) Inverse(x, y float64) (lat, lon float64) {
	lat = g.LatMin + y*g.Dy
	lon = normalizeLon(g.LonMin + x*g.Dx)
	return lat, lon
}

func (g RegularLatLon) index(ix, iy int) (int, bool) {
	if ix < 0 || ix >= g.Nx || iy < 0 || iy >= g.Ny {
		return 0, false
	}
	return iy*g.Nx + ix, true
}

func (g RegularLatLon) FindPoint(lat, lon float64) (int, bool) {
	x, y, ok := g.Forward(lat, lon)
	if !ok {
		return 0, false
	}
	return g.index(int(math.Round(x)), int(math.Round(y)))
}

func (g RegularLatLon) FindPointTerrainOptimised(lat, lon, targetElev float64, elev ElevationLookup) (int, float64, bool) {
	x, y, ok := g.Forward(lat, lon)
	if !ok {
		return 0, 0, false
	}
	nx, ny := int(math.Round(x)), int(math.Round(y))
	return searchTerrainOptimised(nx, ny, targetElev, g.index, elev)
}

func (g RegularLatLon) GetCoordinates(gridpoint int) (lat, lon float64) {
	ix := gridpoint % g.Nx
	iy := gridpoint / g.Nx
	return g.Inverse(float64(ix), float64(iy))
}
