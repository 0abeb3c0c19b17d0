package features

import (
	"fmt"
	"math"
	"time"

	"muhurta/internal/domain"
)

// The zodiac divisions are defined here and nowhere else: 12 signs of 30
// degrees and 27 mansions of 13 degrees 20 minutes. House arithmetic in
// the rest of the system relies on the same constants.
const (
	RasiArcDegrees      = 30.0
	NakshatraArcDegrees = 360.0 / 27.0
	TithiArcDegrees     = 12.0
)

// EphemerisSource supplies sidereal ecliptic longitude and longitudinal
// speed for one body at the fixed daily reference instant.
type EphemerisSource interface {
	LongitudeAndSpeed(date time.Time, body domain.Planet) (longitude, speed float64, err error)
}

// Resolve derives the daily domain facts for one date. It performs no I/O
// of its own; it is a pure transform over the supplied longitudes.
func Resolve(date time.Time, src EphemerisSource) (*domain.DailyFeatures, error) {
	sunLon, _, err := src.LongitudeAndSpeed(date, domain.PlanetSun)
	if err != nil {
		return nil, fmt.Errorf("ephemeris Sun: %w", err)
	}
	moonLon, _, err := src.LongitudeAndSpeed(date, domain.PlanetMoon)
	if err != nil {
		return nil, fmt.Errorf("ephemeris Moon: %w", err)
	}

	feat := &domain.DailyFeatures{
		Date:          date,
		MoonRasi:      RasiOf(moonLon),
		MoonNakshatra: NakshatraOf(moonLon),
		Tithi:         Tithi(sunLon, moonLon),
		PlanetRasi:    make(map[domain.Planet]domain.Rasi, len(domain.TransitPlanets)),
		Retrograde:    make(map[domain.Planet]bool, len(domain.TransitPlanets)),
	}

	for _, p := range domain.TransitPlanets {
		lon, speed, err := src.LongitudeAndSpeed(date, p)
		if err != nil {
			return nil, fmt.Errorf("ephemeris %s: %w", p, err)
		}
		feat.PlanetRasi[p] = RasiOf(lon)
		feat.Retrograde[p] = speed < 0
	}

	return feat, nil
}

// RasiOf maps an ecliptic longitude to its sign.
func RasiOf(longitude float64) domain.Rasi {
	return domain.RasiAt(int(math.Floor(normalize(longitude) / RasiArcDegrees)))
}

// NakshatraOf maps an ecliptic longitude to its lunar mansion.
func NakshatraOf(longitude float64) domain.Nakshatra {
	return domain.NakshatraAt(int(math.Floor(normalize(longitude) / NakshatraArcDegrees)))
}

// Tithi returns the lunar-day index 1-30 from the Sun/Moon elongation.
func Tithi(sunLongitude, moonLongitude float64) int {
	diff := normalize(moonLongitude - sunLongitude)
	return int(math.Floor(diff/TithiArcDegrees)) + 1
}

func normalize(deg float64) float64 {
	d := math.Mod(deg, 360.0)
	if d < 0 {
		d += 360.0
	}
	return d
}
