package provider

import (
	"testing"
	"time"

	"muhurta/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestLongitudeAndSpeedDeterministic(t *testing.T) {
	eph := NewMeanEphemeris()
	day := date(2024, time.March, 5)
	lon1, spd1, err := eph.LongitudeAndSpeed(day, domain.PlanetJupiter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lon2, spd2, err := eph.LongitudeAndSpeed(day.Add(6*time.Hour), domain.PlanetJupiter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lon1 != lon2 || spd1 != spd2 {
		t.Fatalf("same calendar day gave different results: (%f,%f) vs (%f,%f)", lon1, spd1, lon2, spd2)
	}
}

func TestLongitudesNormalized(t *testing.T) {
	eph := NewMeanEphemeris()
	day := date(2023, time.November, 11)
	for _, p := range domain.TransitPlanets {
		lon, _, err := eph.LongitudeAndSpeed(day, p)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", p, err)
		}
		if lon < 0 || lon >= 360 {
			t.Fatalf("%s: longitude %f out of range", p, lon)
		}
	}
}

func TestSunSpeedDirect(t *testing.T) {
	eph := NewMeanEphemeris()
	for m := time.January; m <= time.December; m++ {
		_, spd, err := eph.LongitudeAndSpeed(date(2024, m, 15), domain.PlanetSun)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if spd < 0.90 || spd > 1.10 {
			t.Fatalf("month %s: sun speed %f outside daily motion band", m, spd)
		}
	}
}

func TestMoonSpeedBand(t *testing.T) {
	eph := NewMeanEphemeris()
	_, spd, err := eph.LongitudeAndSpeed(date(2024, time.June, 1), domain.PlanetMoon)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spd < 11.0 || spd > 16.0 {
		t.Fatalf("moon speed %f outside expected band", spd)
	}
}

func TestSunSiderealAriesInLateApril(t *testing.T) {
	// the sidereal sun sits in Aries from mid April to mid May
	eph := NewMeanEphemeris()
	lon, _, err := eph.LongitudeAndSpeed(date(2024, time.April, 25), domain.PlanetSun)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lon < 0 || lon >= 30 {
		t.Fatalf("sidereal sun longitude %f, want within Aries [0,30)", lon)
	}
}

func TestMercuryRetrogradesWithinYear(t *testing.T) {
	eph := NewMeanEphemeris()
	direct, retro := false, false
	for d := 0; d < 365; d += 5 {
		_, spd, err := eph.LongitudeAndSpeed(date(2024, time.January, 1).AddDate(0, 0, d), domain.PlanetMercury)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if spd > 0 {
			direct = true
		}
		if spd < 0 {
			retro = true
		}
	}
	if !direct || !retro {
		t.Fatalf("mercury never changed direction over a year: direct=%v retro=%v", direct, retro)
	}
}

func TestSaturnMovesSlowly(t *testing.T) {
	eph := NewMeanEphemeris()
	_, spd, err := eph.LongitudeAndSpeed(date(2024, time.August, 10), domain.PlanetSaturn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spd > 0.20 || spd < -0.20 {
		t.Fatalf("saturn speed %f implausibly fast", spd)
	}
}

func TestNodesRejected(t *testing.T) {
	eph := NewMeanEphemeris()
	if _, _, err := eph.LongitudeAndSpeed(date(2024, time.May, 5), domain.PlanetRahu); err == nil {
		t.Fatal("expected error for Rahu")
	}
	if _, _, err := eph.LongitudeAndSpeed(date(2024, time.May, 5), domain.PlanetKetu); err == nil {
		t.Fatal("expected error for Ketu")
	}
}

func TestWrapDelta(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{1.0, 1.0},
		{-1.0, -1.0},
		{359.5, -0.5},
		{-359.5, 0.5},
		{180.0, -180.0},
	}
	for _, c := range cases {
		if got := wrapDelta(c.in); got != c.want {
			t.Fatalf("wrapDelta(%f) = %f, want %f", c.in, got, c.want)
		}
	}
}
