package provider

import (
	"fmt"
	"math"
	"time"

	"muhurta/internal/domain"
)

// MeanEphemeris is a self-contained, deterministic ephemeris good to
// roughly a degree for the classical planets. Longitudes are sidereal
// (Lahiri-style ayanamsa) at the fixed reference instant of 12:00 UTC,
// which keeps every (date, body) query reproducible without external
// data files. Swap in a Swiss-Ephemeris-backed source for production
// accuracy; the interface is the same.
type MeanEphemeris struct{}

func NewMeanEphemeris() *MeanEphemeris {
	return &MeanEphemeris{}
}

const j2000 = 2451545.0

// orbital mean elements at J2000: semi-major axis (AU), eccentricity,
// mean longitude (deg), daily motion (deg/day), longitude of perihelion.
type elements struct {
	a, e, l0, n, peri float64
}

var planetElements = map[domain.Planet]elements{
	domain.PlanetMercury: {0.387098, 0.205630, 252.25084, 4.09233445, 77.45645},
	domain.PlanetVenus:   {0.723332, 0.006773, 181.97973, 1.60213034, 131.53298},
	domain.PlanetMars:    {1.523688, 0.093405, 355.45332, 0.52402068, 336.04084},
	domain.PlanetJupiter: {5.202561, 0.048498, 34.40438, 0.08308529, 14.75385},
	domain.PlanetSaturn:  {9.554747, 0.055546, 49.94432, 0.03344414, 92.43194},
}

var earthElements = elements{1.000000, 0.016709, 100.46435, 0.98560912, 102.94719}

// LongitudeAndSpeed returns the sidereal ecliptic longitude (degrees) and
// longitudinal speed (degrees/day, negative while retrograde) for the
// body at 12:00 UTC on the given date.
func (m *MeanEphemeris) LongitudeAndSpeed(date time.Time, body domain.Planet) (float64, float64, error) {
	if _, known := planetElements[body]; !known && body != domain.PlanetSun && body != domain.PlanetMoon {
		return 0, 0, fmt.Errorf("ephemeris does not track %s", body)
	}

	d := daysSinceJ2000(date)
	lon := m.siderealLongitude(d, body)
	before := m.siderealLongitude(d-0.5, body)
	after := m.siderealLongitude(d+0.5, body)
	return lon, wrapDelta(after - before), nil
}

func daysSinceJ2000(date time.Time) float64 {
	noon := time.Date(date.Year(), date.Month(), date.Day(), 12, 0, 0, 0, time.UTC)
	jd := float64(noon.Unix())/86400.0 + 2440587.5
	return jd - j2000
}

func (m *MeanEphemeris) siderealLongitude(d float64, body domain.Planet) float64 {
	return norm360(m.tropicalLongitude(d, body) - ayanamsa(d))
}

func (m *MeanEphemeris) tropicalLongitude(d float64, body domain.Planet) float64 {
	switch body {
	case domain.PlanetSun:
		return solarLongitude(d)
	case domain.PlanetMoon:
		return lunarLongitude(d)
	}

	el, ok := planetElements[body]
	if !ok {
		return 0
	}
	lp, rp := heliocentric(el, d)
	le, re := heliocentric(earthElements, d)

	// geocentric reduction: planet position relative to Earth
	x := rp*cosd(lp) - re*cosd(le)
	y := rp*sind(lp) - re*sind(le)
	return norm360(atan2d(y, x))
}

// heliocentric returns ecliptic longitude and radius from low-precision
// mean elements with a second-order equation of centre.
func heliocentric(el elements, d float64) (lon, r float64) {
	meanLon := el.l0 + el.n*d
	ma := meanLon - el.peri // mean anomaly, degrees
	c := (2*el.e-el.e*el.e*el.e/4)*sind(ma) + 1.25*el.e*el.e*sind(2*ma)
	lon = norm360(meanLon + radToDeg(c))
	r = el.a * (1 - el.e*cosd(ma))
	return lon, r
}

func solarLongitude(d float64) float64 {
	l := 280.460 + 0.9856474*d
	g := 357.528 + 0.9856003*d
	return norm360(l + 1.915*sind(g) + 0.020*sind(2*g))
}

func lunarLongitude(d float64) float64 {
	l := 218.316 + 13.176396*d
	mp := 134.963 + 13.064993*d
	dd := 297.850 + 12.190749*d // mean elongation
	lon := l + 6.289*sind(mp) + 1.274*sind(2*dd-mp) + 0.658*sind(2*dd) - 0.186*sind(357.529+0.98560028*d) - 0.059*sind(2*mp-2*dd)
	return norm360(lon)
}

// ayanamsa approximates the Lahiri sidereal offset: about 23.86 degrees
// at J2000 drifting ~50.29 arcseconds per year.
func ayanamsa(d float64) float64 {
	return 23.85675 + (50.2888/3600.0)*(d/365.25)
}

func wrapDelta(deg float64) float64 {
	d := math.Mod(deg+180, 360)
	if d < 0 {
		d += 360
	}
	return d - 180
}

func norm360(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	return d
}

func sind(deg float64) float64    { return math.Sin(deg * math.Pi / 180) }
func cosd(deg float64) float64    { return math.Cos(deg * math.Pi / 180) }
func atan2d(y, x float64) float64 { return math.Atan2(y, x) * 180 / math.Pi }
func radToDeg(r float64) float64  { return r * 180 / math.Pi }
