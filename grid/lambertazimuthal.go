package grid

import "math"

// LambertAzimuthalEqualArea implements the Lambert azimuthal equal-area
// projection, used by the JMA MSM domain (spec.md §4.8's Japan box).
// ctessum/geom/proj has no implementation of this projection, so it is
// hand-derived here following the same closure-based forward/inverse
// shape as proj.LCC (see DESIGN.md).
type LambertAzimuthalEqualArea struct {
	CenterLon, CenterLat float64 // λ0, ϕ0, degrees
	Radius               float64 // metres
	Nx, Ny               int
	Dx, Dy               float64 // metres
	OriginX, OriginY     float64
}

var _ Grid = LambertAzimuthalEqualArea{}

func (g LambertAzimuthalEqualArea) NX() int    { return g.Nx }
func (g LambertAzimuthalEqualArea) NY() int    { return g.Ny }
func (g LambertAzimuthalEqualArea) Count() int { return g.Nx * g.Ny }

func (g LambertAzimuthalEqualArea) Forward(lat, lon float64) (x, y float64, ok bool) {
	const d2r = math.Pi / 180
	phi0 := g.CenterLat * d2r
	lambda0 := g.CenterLon * d2r
	phi := lat * d2r
	lambda := lon * d2r

	sinPhi0, cosPhi0 := math.Sin(phi0), math.Cos(phi0)
	sinPhi, cosPhi := math.Sin(phi), math.Cos(phi)
	dLambda := lambda - lambda0
	cosDLambda := math.Cos(dLambda)

	cosC := sinPhi0*sinPhi + cosPhi0*cosPhi*cosDLambda
	if cosC <= -1 {
		return 0, 0, false // antipodal point, undefined
	}
	k := math.Sqrt(2 / (1 + cosC))

	px := g.Radius * k * cosPhi * math.Sin(dLambda)
	py := g.Radius * k * (cosPhi0*sinPhi - sinPhi0*cosPhi*cosDLambda)

	x = px/g.Dx + g.OriginX
	y = py/g.Dy + g.OriginY
	if x < 0 || x > float64(g.Nx-1) || y < 0 || y > float64(g.Ny-1) {
		return x, y, false
	}
	return x, y, true
}

func (g LambertAzimuthalEqualArea) Inverse(x, y float64) (lat, lon float64) {
	const d2r = math.Pi / 180
	const r2d = 180 / math.Pi
	px := (x - g.OriginX) * g.Dx
	py := (y - g.OriginY) * g.Dy

	rho := math.Hypot(px, py)
	if rho < 1e-9 {
		return g.CenterLat, g.CenterLon
	}
	c := 2 * math.Asin(rho/(2*g.Radius))
	phi0 := g.CenterLat * d2r
	lambda0 := g.CenterLon * d2r

	sinC, cosC := math.Sin(c), math.Cos(c)
	sinPhi0, cosPhi0 := math.Sin(phi0), math.Cos(phi0)

	phi := math.Asin(cosC*sinPhi0 + (py*sinC*cosPhi0)/rho)
	lambda := lambda0 + math.Atan2(px*sinC, rho*cosPhi0*cosC-py*sinPhi0*sinC)

	return phi * r2d, normalizeLon(lambda * r2d)
}

func (g LambertAzimuthalEqualArea) index(ix, iy int) (int, bool) {
	if ix < 0 || ix >= g.Nx || iy < 0 || iy >= g.Ny {
		return 0, false
	}
	return iy*g.Nx + ix, true
}

func (g LambertAzimuthalEqualArea) FindPoint(lat, lon float64) (int, bool) {
	x, y, ok := g.Forward(lat, lon)
	if !ok {
		return 0, false
	}
	return g.index(int(math.Round(x)), int(math.Round(y)))
}

func (g LambertAzimuthalEqualArea) FindPointTerrainOptimised(lat, lon, targetElev float64, elev ElevationLookup) (int, float64, bool) {
	x, y, ok := g.Forward(lat, lon)
	if !ok {
		return 0, 0, false
	}
	return searchTerrainOptimised(int(math.Round(x)), int(math.Round(y)), targetElev, g.index, elev)
}

func (g LambertAzimuthalEqualArea) GetCoordinates(gridpoint int) (lat, lon float64) {
	ix := gridpoint % g.Nx
	iy := gridpoint / g.Nx
	return g.Inverse(float64(ix), float64(iy))
}
