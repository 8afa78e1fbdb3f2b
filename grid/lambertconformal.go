package grid

import (
	"math"

	"github.com/ctessum/geom/proj"
)

// LambertConformal is a Lambert conformal conic grid, the projection
// used by domains like HRRR's CONUS parent (AROME/ARPEGE-style NWP
// grids). Rather than re-deriving the projection math, this builds a
// proj.SR and asks the teacher's vendored proj.LCC for the forward and
// inverse Transformers, exactly as vargrid.go's GridProj handling drives
// proj for CTM grids.
type LambertConformal struct {
	CenterLon, CenterLat       float64 // λ0, ϕ0
	StandardParallel1          float64 // ϕ1
	StandardParallel2          float64 // ϕ2
	Radius                     float64 // metres; defaults to the grid's declared value
	Nx, Ny                     int
	Dx, Dy                     float64 // metres
	OriginX, OriginY           float64 // grid-unit offset of (0,0) from the LCC projected origin

	forward, inverse proj.Transformer
}

var _ Grid = (*LambertConformal)(nil)

// NewLambertConformal builds the projection's forward/inverse closures
// once via proj.LCC.
func NewLambertConformal(centerLon, centerLat, stdParallel1, stdParallel2, radius float64, nx, ny int, dx, dy, originX, originY float64) (*LambertConformal, error) {
	const d2r = math.Pi / 180
	sr := proj.NewSR()
	sr.Long0 = centerLon * d2r
	sr.Lat0 = centerLat * d2r
	sr.Lat1 = stdParallel1 * d2r
	sr.Lat2 = stdParallel2 * d2r
	sr.A = radius
	sr.B = radius // spherical earth: declared radius used for both axes

	fwd, inv, err := proj.LCC(sr)
	if err != nil {
		return nil, err
	}
	return &LambertConformal{
		CenterLon: centerLon, CenterLat: centerLat,
		StandardParallel1: stdParallel1, StandardParallel2: stdParallel2,
		Radius: radius, Nx: nx, Ny: ny, Dx: dx, Dy: dy,
		OriginX: originX, OriginY: originY,
		forward: fwd, inverse: inv,
	}, nil
}

func (g *LambertConformal) NX() int    { return g.Nx }
func (g *LambertConformal) NY() int    { return g.Ny }
func (g *LambertConformal) Count() int { return g.Nx * g.Ny }

func (g *LambertConformal) Forward(lat, lon float64) (x, y float64, ok bool) {
	const d2r = math.Pi / 180
	px, py, err := g.forward(lon*d2r, lat*d2r)
	if err != nil {
		return 0, 0, false
	}
	x = px/g.Dx + g.OriginX
	y = py/g.Dy + g.OriginY
	if x < 0 || x > float64(g.Nx-1) || y < 0 || y > float64(g.Ny-1) {
		return x, y, false
	}
	return x, y, true
}

func (g *LambertConformal) Inverse(x, y float64) (lat, lon float64) {
	const r2d = 180 / math.Pi
	px := (x - g.OriginX) * g.Dx
	py := (y - g.OriginY) * g.Dy
	lonR, latR, err := g.inverse(px, py)
	if err != nil {
		return 0, 0
	}
	return latR * r2d, normalizeLon(lonR * r2d)
}

func (g *LambertConformal) index(ix, iy int) (int, bool) {
	if ix < 0 || ix >= g.Nx || iy < 0 || iy >= g.Ny {
		return 0, false
	}
	return iy*g.Nx + ix, true
}

func (g *LambertConformal) FindPoint(lat, lon float64) (int, bool) {
	x, y, ok := g.Forward(lat, lon)
	if !ok {
		return 0, false
	}
	return g.index(int(math.Round(x)), int(math.Round(y)))
}

func (g *LambertConformal) FindPointTerrainOptimised(lat, lon, targetElev float64, elev ElevationLookup) (int, float64, bool) {
	x, y, ok := g.Forward(lat, lon)
	if !ok {
		return 0, 0, false
	}
	return searchTerrainOptimised(int(math.Round(x)), int(math.Round(y)), targetElev, g.index, elev)
}

func (g *LambertConformal) GetCoordinates(gridpoint int) (lat, lon float64) {
	ix := gridpoint % g.Nx
	iy := gridpoint / g.Nx
	return g.Inverse(float64(ix), float64(iy))
}
