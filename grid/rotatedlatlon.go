package grid

import "math"

// RotatedLatLon is a regular grid in rotated-pole coordinates, used by
// regional limited-area models (e.g. ICON-D2, ICON-EU) to keep grid
// cells roughly square near the area of interest. Forward/inverse
// compose the standard two rotations about the z- and y-axes, per
// spec.md §4.1.
type RotatedLatLon struct {
	PoleLat, PoleLon float64 // geographic coordinates of the rotated pole
	LatMin, LonMin   float64 // in rotated-pole degrees
	Dx, Dy           float64
	Nx, Ny           int
}

var _ Grid = RotatedLatLon{}

func (g RotatedLatLon) NX() int    { return g.Nx }
func (g RotatedLatLon) NY() int    { return g.Ny }
func (g RotatedLatLon) Count() int { return g.Nx * g.Ny }

// toRotated transforms a geographic (lat,lon) into rotated-pole
// coordinates.
func (g RotatedLatLon) toRotated(lat, lon float64) (rlat, rlon float64) {
	const d2r = math.Pi / 180
	theta := (90 + g.PoleLat) * d2r // angle of rotation about y-axis
	phi := g.PoleLon * d2r          // angle of rotation about z-axis

	sinTheta, cosTheta := math.Sin(theta), math.Cos(theta)

	latR, lonR := lat*d2r, lon*d2r

	x := math.Cos(lonR-phi) * math.Cos(latR)
	y := math.Sin(lonR-phi) * math.Cos(latR)
	z := math.Sin(latR)

	xr := cosTheta*x + sinTheta*z
	yr := y
	zr := -sinTheta*x + cosTheta*z

	rlat = math.Asin(zr) / d2r
	rlon = math.Atan2(yr, xr) / d2r
	return rlat, rlon
}

// fromRotated is the inverse rotation.
func (g RotatedLatLon) fromRotated(rlat, rlon float64) (lat, lon float64) {
	const d2r = math.Pi / 180
	theta := (90 + g.PoleLat) * d2r
	phi := g.PoleLon * d2r

	sinTheta, cosTheta := math.Sin(theta), math.Cos(theta)

	rlatR, rlonR := rlat*d2r, rlon*d2r

	xr := math.Cos(rlonR) * math.Cos(rlatR)
	yr := math.Sin(rlonR) * math.Cos(rlatR)
	zr := math.Sin(rlatR)

	x := cosTheta*xr - sinTheta*zr
	y := yr
	z := sinTheta*xr + cosTheta*zr

	lat = math.Asin(z) / d2r
	lon = (math.Atan2(y, x) + phi) / d2r
	return lat, normalizeLon(lon)
}

func (g RotatedLatLon) Forward(lat, lon float64) (x, y float64, ok bool) {
	rlat, rlon := g.toRotated(lat, lon)
	latMax := g.LatMin + g.Dy*float64(g.Ny-1)
	if rlat < g.LatMin-1e-6 || rlat > latMax+1e-6 {
		return 0, 0, false
	}
	dlon := rlon - g.LonMin
	for dlon < -180 {
		dlon += 360
	}
	for dlon > 180 {
		dlon -= 360
	}
	x = dlon / g.Dx
	y = (rlat - g.LatMin) / g.Dy
	return x, y, true
}

func (g RotatedLatLon) Inverse(x, y float64) (lat, lon float64) {
	rlat := g.LatMin + y*g.Dy
	rlon := g.LonMin + x*g.Dx
	return g.fromRotated(rlat, rlon)
}

func (g RotatedLatLon) index(ix, iy int) (int, bool) {
	if ix < 0 || ix >= g.Nx || iy < 0 || iy >= g.Ny {
		return 0, false
	}
	return iy*g.Nx + ix, true
}

func (g RotatedLatLon) FindPoint(lat, lon float64) (int, bool) {
	x, y, ok := g.Forward(lat, lon)
	if !ok {
		return 0, false
	}
	return g.index(int(math.Round(x)), int(math.Round(y)))
}

func (g RotatedLatLon) FindPointTerrainOptimised(lat, lon, targetElev float64, elev ElevationLookup) (int, float64, bool) {
	x, y, ok := g.Forward(lat, lon)
	if !ok {
		return 0, 0, false
	}
	return searchTerrainOptimised(int(math.Round(x)), int(math.Round(y)), targetElev, g.index, elev)
}

func (g RotatedLatLon) GetCoordinates(gridpoint int) (lat, lon float64) {
	ix := gridpoint % g.Nx
	iy := gridpoint / g.Nx
	return g.Inverse(float64(ix), float64(iy))
}
