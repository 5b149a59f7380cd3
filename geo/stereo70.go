package geo

import "math"

// stereo70 is the EPSG:3844 "Pulkovo 1942(58) / Stereo70" double (oblique)
// stereographic projection: Krasovsky 1940 ellipsoid, origin at 46N/25E,
// scale factor 0.99975, false easting/northing 500000/500000. Romania's
// national projected CRS for cadastral and urban-planning data.
//
// The forward/inverse formulas follow the EPSG Guidance Note 7-2 (method
// 9809, "Oblique Stereographic"). Precision is sufficient for the
// tolerance-based geometry checks this package supports (sub-metre for
// areas spanning a single administrative unit); it is not a substitute for
// a surveying-grade geodesy library.
type stereo70Params struct {
	a, f       float64
	phi0, lam0 float64
	k0         float64
	fe, fn     float64
}

var stereo70 = stereo70Params{
	a:    6378245.0,
	f:    1.0 / 298.3,
	phi0: deg2rad(46.0),
	lam0: deg2rad(25.0),
	k0:   0.99975,
	fe:   500000.0,
	fn:   500000.0,
}

func deg2rad(d float64) float64 { return d * math.Pi / 180 }
func rad2deg(r float64) float64 { return r * 180 / math.Pi }

type conformalConstants struct {
	e2, e  float64
	n      float64
	c      float64
	chi0   float64
	r2k0   float64
}

func (p stereo70Params) constants() conformalConstants {
	e2 := p.f * (2 - p.f)
	e := math.Sqrt(e2)

	sinPhi0 := math.Sin(p.phi0)
	rho0 := p.a * (1 - e2) / math.Pow(1-e2*sinPhi0*sinPhi0, 1.5)
	nu0 := p.a / math.Sqrt(1-e2*sinPhi0*sinPhi0)
	r := math.Sqrt(rho0 * nu0)

	n := math.Sqrt(1 + (e2*math.Pow(math.Cos(p.phi0), 4))/(1-e2))
	s1 := (1 + sinPhi0) / (1 - sinPhi0)
	s2 := (1 - e*sinPhi0) / (1 + e*sinPhi0)
	w1 := math.Pow(s1*math.Pow(s2, e), n)
	sinChi0 := (w1 - 1) / (w1 + 1)
	c := (n+sinPhi0)*(1-sinChi0) / ((n-sinPhi0)*(1+sinChi0))
	w2 := c * w1

	return conformalConstants{
		e2: e2, e: e,
		n: n, c: c,
		chi0: math.Asin((w2 - 1) / (w2 + 1)),
		r2k0: 2 * r * p.k0,
	}
}

// stereo70Forward converts geodetic latitude/longitude (radians, Krasovsky
// 1940 datum) to Stereo70 easting/northing in metres.
func stereo70Forward(phi, lam float64) (easting, northing float64) {
	p := stereo70
	k := p.constants()

	sinPhi := math.Sin(phi)
	sa := (1 + sinPhi) / (1 - sinPhi)
	sb := (1 - k.e*sinPhi) / (1 + k.e*sinPhi)
	w := k.c * math.Pow(sa*math.Pow(sb, k.e), k.n)
	sinChi := (w - 1) / (w + 1)
	chi := math.Asin(sinChi)

	lamPrime := k.n * (lam - p.lam0)

	b := 1 + sinChi*math.Sin(k.chi0) + math.Cos(chi)*math.Cos(k.chi0)*math.Cos(lamPrime)

	easting = p.fe + k.r2k0*math.Cos(chi)*math.Sin(lamPrime)/b
	northing = p.fn + k.r2k0*(sinChi*math.Cos(k.chi0)-math.Cos(chi)*math.Sin(k.chi0)*math.Cos(lamPrime))/b
	return
}

// stereo70Inverse converts Stereo70 easting/northing (metres) back to
// geodetic latitude/longitude in radians, via fixed-point iteration on the
// conformal latitude.
func stereo70Inverse(easting, northing float64) (phi, lam float64) {
	p := stereo70
	k := p.constants()

	x := easting - p.fe
	y := northing - p.fn

	rho := math.Hypot(x, y)
	if rho == 0 {
		return p.phi0, p.lam0
	}
	c2 := 2 * math.Atan2(rho, k.r2k0)

	chi := math.Asin(math.Cos(c2)*math.Sin(k.chi0) + y*math.Sin(c2)*math.Cos(k.chi0)/rho)
	lamPrime := math.Atan2(x*math.Sin(c2), rho*math.Cos(k.chi0)*math.Cos(c2)-y*math.Sin(k.chi0)*math.Sin(c2))
	lam = lamPrime/k.n + p.lam0

	// Fixed-point iteration: chi (conformal latitude) -> phi (geodetic).
	phi = chi
	for i := 0; i < 10; i++ {
		sinPhi := math.Sin(phi)
		psi := (math.Log(math.Tan(math.Pi/4+chi/2)) - 0.5*math.Log(k.c)) / k.n
		phi = 2*math.Atan(math.Exp(psi)*math.Pow((1+k.e*sinPhi)/(1-k.e*sinPhi), k.e/2)) - math.Pi/2
	}
	return phi, lam
}
