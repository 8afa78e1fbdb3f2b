package grid

import "math"

// PolarStereographic is a polar stereographic projection grid, used for
// high-latitude limited-area domains. Like LambertAzimuthalEqualArea,
// the corpus carries no implementation of this projection, so it is
// hand-derived from the standard spherical polar-stereographic formulas.
type PolarStereographic struct {
	CenterLon        float64 // λ0, degrees: orientation longitude
	StandardParallel float64 // ϕ1, degrees: latitude of true scale
	Hemisphere       int     // +1 north, -1 south
	Radius           float64 // metres
	Nx, Ny           int
	Dx, Dy           float64 // metres
	OriginX, OriginY float64
}

var _ Grid = PolarStereographic{}

func (g PolarStereographic) NX() int    { return g.Nx }
func (g PolarStereographic) NY() int    { return g.Ny }
func (g PolarStereographic) Count() int { return g.Nx * g.Ny }

func (g PolarStereographic) Forward(lat, lon float64) (x, y float64, ok bool) {
	const d2r = math.Pi / 180
	h := float64(g.Hemisphere)
	if h != 1 && h != -1 {
		h = 1
	}

	phi := h * lat * d2r
	phi1 := h * g.StandardParallel * d2r
	lambda := h * lon * d2r
	lambda0 := h * g.CenterLon * d2r

	if phi <= -math.Pi/2+1e-9 {
		// point at the opposite pole: undefined projection
		return 0, 0, false
	}

	k := (1 + math.Sin(phi1)) / (1 + math.Sin(phi))
	rho := g.Radius * k * math.Cos(phi)

	px := h * rho * math.Sin(lambda-lambda0)
	py := -h * rho * math.Cos(lambda-lambda0)

	x = px/g.Dx + g.OriginX
	y = py/g.Dy + g.OriginY
	if x < 0 || x > float64(g.Nx-1) || y < 0 || y > float64(g.Ny-1) {
		return x, y, false
	}
	return x, y, true
}

func (g PolarStereographic) Inverse(x, y float64) (lat, lon float64) {
	const d2r = math.Pi / 180
	const r2d = 180 / math.Pi
	h := float64(g.Hemisphere)
	if h != 1 && h != -1 {
		h = 1
	}

	px := (x - g.OriginX) * g.Dx
	py := (y - g.OriginY) * g.Dy

	rho := math.Hypot(px, py)
	phi1 := h * g.StandardParallel * d2r
	lambda0 := h * g.CenterLon * d2r

	if rho < 1e-9 {
		return h * 90, g.CenterLon
	}

	// Standard inverse polar-stereographic (spherical).
	t := rho / (g.Radius * (1 + math.Sin(phi1)))
	phi := h * (math.Pi/2 - 2*math.Atan(t))
	lambda := lambda0 + h*math.Atan2(px, -py)

	lat = phi * r2d
	lon = normalizeLon(lambda * r2d)
	return lat, lon
}

func (g PolarStereographic) index(ix, iy int) (int, bool) {
	if ix < 0 || ix >= g.Nx || iy < 0 || iy >= g.Ny {
		return 0, false
	}
	return iy*g.Nx + ix, true
}

func (g PolarStereographic) FindPoint(lat, lon float64) (int, bool) {
	x, y, ok := g.Forward(lat, lon)
	if !ok {
		return 0, false
	}
	return g.index(int(math.Round(x)), int(math.Round(y)))
}

func (g PolarStereographic) FindPointTerrainOptimised(lat, lon, targetElev float64, elev ElevationLookup) (int, float64, bool) {
	x, y, ok := g.Forward(lat, lon)
	if !ok {
		return 0, 0, false
	}
	return searchTerrainOptimised(int(math.Round(x)), int(math.Round(y)), targetElev, g.index, elev)
}

func (g PolarStereographic) GetCoordinates(gridpoint int) (lat, lon float64) {
	ix := gridpoint % g.Nx
	iy := gridpoint / g.Nx
	return g.Inverse(float64(ix), float64(iy))
}
