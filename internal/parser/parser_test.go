package parser

import (
	"errors"
	"strings"
	"testing"
	"time"

	"muhurta/internal/domain"
)

const sampleReport = `Jagannatha Hora chart export

Date:          May 7, 2001
Time:          19:01:46
Time Zone:     8:00:00 (East of GMT)
Place:         113 E 15' 00", 23 N 07' 00"
Nakshatra:     Visakha (Ju)

Body Positions:
Lagna                   20 Sc 20' 42.50"
Sun - AK                24 Ar 13' 05.22"
Moon - AmK              27 Li 50' 11.91"
Mars - BK               17 Sg 30' 44.01"
Mercury - PK             9 Ta 38' 48.48"
Jupiter - MK            12 Ge 02' 33.27"
Venus - DK               1 Ar 55' 17.02"
Saturn - GK             10 Ta 38' 07.71"
Rahu                    16 Ge 15' 53.05"
Ketu                    16 Sg 15' 53.05"

Ashtakavarga of Rasi Chart:
Su   3*  2   2   4   5   5   5   2   4   6   5   5
Mo   4   3   5   3*  4   4   5   4   4   5   3   5
Ma   3   2   3   3   4   2   4   3*  4   3   3   5
Me   5   4   4   3   6   4   5   4   4*  4   5   6
Ju   5   4*  5   6   5   4   4   5   5   4   5   4
Ve   4   5   3   4   4   5   4   5   4   4   5   5
Sa   3   2   3   2   4   3   4   3   3   3*  4   5
Sodhya Pinda and other totals follow here

Vimsottari Dasa:
 Jup  Jup 1998-02-01  Sat 2000-03-20  Merc 2002-10-06
      Ket 2005-01-08  Ven 2005-12-16  Sun 2008-08-17
      Moon 2009-06-03  Mars 2010-10-06  Rah 2011-09-11
 Sat  Sat 2014-02-01  Merc 2017-02-03  Ket 2019-10-14

Moola Dasa: (ignored section)
 Jup  Jup 1998-02-01
`

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("bad date %s: %v", s, err)
	}
	return d
}

func TestParseFullReport(t *testing.T) {
	chart, err := Parse(sampleReport, day(t, "2016-06-01"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if chart.BirthDate != "2001-05-07" || chart.BirthTime != "19:01:46" {
		t.Fatalf("birth date/time: %q %q", chart.BirthDate, chart.BirthTime)
	}
	if chart.UTCOffsetMinutes != 480 {
		t.Fatalf("utc offset: %d, want 480", chart.UTCOffsetMinutes)
	}
	if chart.NatalNakshatra != "Visa" {
		t.Fatalf("natal nakshatra: %s", chart.NatalNakshatra)
	}
	if chart.Lagna != "Sc" {
		t.Fatalf("lagna: %s", chart.Lagna)
	}
	if chart.NatalMoonRasi != "Li" {
		t.Fatalf("natal moon rasi: %s", chart.NatalMoonRasi)
	}

	wantRasi := map[domain.Planet]domain.Rasi{
		domain.PlanetSun:     "Ar",
		domain.PlanetMoon:    "Li",
		domain.PlanetMars:    "Sg",
		domain.PlanetMercury: "Ta",
		domain.PlanetJupiter: "Ge",
		domain.PlanetVenus:   "Ar",
		domain.PlanetSaturn:  "Ta",
		domain.PlanetRahu:    "Ge",
		domain.PlanetKetu:    "Sg",
	}
	for p, want := range wantRasi {
		if got := chart.PlanetRasi[p]; got != want {
			t.Fatalf("planet %s rasi = %s, want %s", p, got, want)
		}
	}

	// Houses counted from Scorpio lagna.
	if got := chart.PlanetHouses[domain.PlanetSun]; got != 6 {
		t.Fatalf("Sun house = %d, want 6", got)
	}
	if got := chart.PlanetHouses[domain.PlanetMoon]; got != 12 {
		t.Fatalf("Moon house = %d, want 12", got)
	}
	if got := chart.PlanetHouses[domain.PlanetSaturn]; got != 7 {
		t.Fatalf("Saturn house = %d, want 7", got)
	}

	// 2016-06-01 falls in Sat/Sat starting 2014-02-01.
	if chart.DashaMajor != "Sat" || chart.DashaSub != "Sat" {
		t.Fatalf("active period = %s/%s, want Sat/Sat", chart.DashaMajor, chart.DashaSub)
	}
	if chart.DashaMajorHouse == nil || *chart.DashaMajorHouse != 7 {
		t.Fatalf("major house = %v, want 7", chart.DashaMajorHouse)
	}

	if len(chart.Timeline) != 12 {
		t.Fatalf("timeline length = %d, want 12", len(chart.Timeline))
	}
	for i := 1; i < len(chart.Timeline); i++ {
		if chart.Timeline[i].Start.Before(chart.Timeline[i-1].Start) {
			t.Fatal("timeline must be sorted ascending")
		}
	}

	if chart.Ashtakavarga == nil {
		t.Fatal("expected ashtakavarga matrix")
	}
	if got := chart.Ashtakavarga[domain.PlanetSun]["Ar"]; got != 3 {
		t.Fatalf("Su Ar strength = %d, want 3 (emphasis marker stripped)", got)
	}
	if got := chart.Ashtakavarga[domain.PlanetJupiter]["Ta"]; got != 4 {
		t.Fatalf("Ju Ta strength = %d, want 4", got)
	}
}

func TestParseReferenceDateBeforeTimeline(t *testing.T) {
	chart, err := Parse(sampleReport, day(t, "1990-01-01"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if chart.DashaMajor != "Jup" || chart.DashaSub != "Jup" {
		t.Fatalf("expected first-entry fallback Jup/Jup, got %s/%s", chart.DashaMajor, chart.DashaSub)
	}
}

func TestParseUTCOffsetWest(t *testing.T) {
	text := strings.Replace(sampleReport,
		"Time Zone:     8:00:00 (East of GMT)",
		"Time Zone:     19:30:35 (West of GMT)", 1)
	chart, err := Parse(text, day(t, "2016-06-01"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if chart.UTCOffsetMinutes != -1171 {
		t.Fatalf("utc offset = %d, want -1171", chart.UTCOffsetMinutes)
	}
}

func TestParseMissingTimeZone(t *testing.T) {
	text := strings.Replace(sampleReport, "Time Zone:     8:00:00 (East of GMT)\n", "", 1)
	_, err := Parse(text, day(t, "2016-06-01"))
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Kind != MissingField {
		t.Fatalf("expected MissingField, got %v", err)
	}
}

func TestParseMalformedTimeZone(t *testing.T) {
	text := strings.Replace(sampleReport,
		"Time Zone:     8:00:00 (East of GMT)",
		"Time Zone:     whenever", 1)
	_, err := Parse(text, day(t, "2016-06-01"))
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Kind != MalformedTimeZone {
		t.Fatalf("expected MalformedTimeZone, got %v", err)
	}
}

func TestParseUnknownNakshatra(t *testing.T) {
	text := strings.Replace(sampleReport, "Visakha (Ju)", "Borealis (Xx)", 1)
	_, err := Parse(text, day(t, "2016-06-01"))
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Kind != UnknownNakshatra {
		t.Fatalf("expected UnknownNakshatra, got %v", err)
	}
	if pe.Token != "Borealis (Xx)" {
		t.Fatalf("error should carry the offending token, got %q", pe.Token)
	}
}

func TestParseUnknownLagnaRasi(t *testing.T) {
	text := strings.Replace(sampleReport,
		"Lagna                   20 Sc 20' 42.50\"",
		"Lagna                   20 Zz 20' 42.50\"", 1)
	_, err := Parse(text, day(t, "2016-06-01"))
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Kind != UnknownRasi {
		t.Fatalf("expected UnknownRasi, got %v", err)
	}
}

func TestParseMissingVimsottariSection(t *testing.T) {
	text := strings.Replace(sampleReport, "Vimsottari Dasa:", "Something Else:", 1)
	_, err := Parse(text, day(t, "2016-06-01"))
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Kind != MissingSection {
		t.Fatalf("expected MissingSection, got %v", err)
	}
}

func TestParseEmptyTimelineBlock(t *testing.T) {
	idx := strings.Index(sampleReport, "Vimsottari Dasa:")
	text := sampleReport[:idx] + "Vimsottari Dasa:\n\nMoola Dasa: none\n"
	_, err := Parse(text, day(t, "2016-06-01"))
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Kind != EmptyTimelineBlock {
		t.Fatalf("expected EmptyTimelineBlock, got %v", err)
	}
}

func TestParseSkipsMalformedBodyRows(t *testing.T) {
	text := strings.Replace(sampleReport,
		"Venus - DK               1 Ar 55' 17.02\"",
		"Venus - DK               somewhere unknown", 1)
	chart, err := Parse(text, day(t, "2016-06-01"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, ok := chart.PlanetRasi[domain.PlanetVenus]; ok {
		t.Fatal("malformed Venus row should simply be omitted")
	}
	if _, ok := chart.PlanetRasi[domain.PlanetSun]; !ok {
		t.Fatal("other rows must survive")
	}
}

func TestParseWithoutAshtakavargaBlock(t *testing.T) {
	start := strings.Index(sampleReport, "Ashtakavarga of Rasi Chart:")
	end := strings.Index(sampleReport, "Vimsottari Dasa:")
	text := sampleReport[:start] + sampleReport[end:]
	chart, err := Parse(text, day(t, "2016-06-01"))
	if err != nil {
		t.Fatalf("absent matrix must not fail the parse: %v", err)
	}
	if chart.Ashtakavarga != nil {
		t.Fatal("expected nil ashtakavarga")
	}
}

func TestTimelineDedup(t *testing.T) {
	block := "Jup  Jup 1998-02-01  Sat 2000-03-20\n     Sat 2000-03-20  Merc 2002-10-06"
	timeline, err := parseVimsottariTimeline(block)
	if err != nil {
		t.Fatalf("parse timeline: %v", err)
	}
	if len(timeline) != 3 {
		t.Fatalf("expected 3 entries after dedup, got %d", len(timeline))
	}
}

func TestTimelineStopsPairScanOnBadToken(t *testing.T) {
	block := "Jup  Jup 1998-02-01  Sat 2000-03-20  (contd)  Merc 2002-10-06"
	timeline, err := parseVimsottariTimeline(block)
	if err != nil {
		t.Fatalf("parse timeline: %v", err)
	}
	if len(timeline) != 2 {
		t.Fatalf("pair scan should stop at the first bad token, got %d entries", len(timeline))
	}
}
