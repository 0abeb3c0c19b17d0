package parser

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"muhurta/internal/domain"
)

// ErrorKind classifies why a report could not be parsed.
type ErrorKind string

const (
	MissingSection     ErrorKind = "missing_section"
	MissingField       ErrorKind = "missing_field"
	MalformedTimeZone  ErrorKind = "malformed_time_zone"
	EmptyTimelineBlock ErrorKind = "empty_timeline_block"
	UnknownNakshatra   ErrorKind = "unknown_nakshatra"
	UnknownRasi        ErrorKind = "unknown_rasi"
)

// ParseError is fatal: no partial chart is ever returned alongside one.
type ParseError struct {
	Kind  ErrorKind
	Field string
	Token string
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case UnknownNakshatra:
		return fmt.Sprintf("unknown nakshatra token %q", e.Token)
	case UnknownRasi:
		return fmt.Sprintf("unknown rasi token %q", e.Token)
	case MalformedTimeZone:
		return fmt.Sprintf("malformed time zone line %q", e.Token)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Field)
	}
}

var (
	dateLineRe = regexp.MustCompile(`(?m)^Date:\s*(\w+)\s+(\d+),\s*(\d{4})`)
	timeLineRe = regexp.MustCompile(`(?m)^Time:\s*(\d{1,2}):(\d{2}):(\d{2})`)
	tzLineRe   = regexp.MustCompile(`Time Zone:\s*([+-]?\d+):(\d+):(\d+)\s*\((East|West) of GMT\)`)
	nakLineRe  = regexp.MustCompile(`(?m)^Nakshatra:\s*([^\r\n]+)`)
	lagnaRowRe = regexp.MustCompile(`(?m)^Lagna\s+\d+\s+([A-Za-z]{2})\s+\d+'`)
	bodyRowRe  = regexp.MustCompile(`(?m)^(Sun|Moon|Mars|Mercury|Jupiter|Venus|Saturn|Rahu|Ketu)\b.*?\s(\d+)\s+([A-Za-z]{2})\s+\d+'`)
	bavRowRe   = regexp.MustCompile(`^(Su|Mo|Ma|Me|Ju|Ve|Sa)\s+(.+)$`)
	bavCellRe  = regexp.MustCompile(`\d+\*?`)
	isoDateRe  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dashaEndRe = regexp.MustCompile(`^(Moola Dasa|Ashtottari Dasa|Kalachakra Dasa|Narayana Dasa)\b`)
)

var monthNumbers = map[string]string{
	"January": "01", "February": "02", "March": "03", "April": "04",
	"May": "05", "June": "06", "July": "07", "August": "08",
	"September": "09", "October": "10", "November": "11", "December": "12",
	"Jan": "01", "Feb": "02", "Mar": "03", "Apr": "04", "Jun": "06",
	"Jul": "07", "Aug": "08", "Sep": "09", "Oct": "10", "Nov": "11", "Dec": "12",
}

var bavRowPlanet = map[string]domain.Planet{
	"Su": domain.PlanetSun,
	"Mo": domain.PlanetMoon,
	"Ma": domain.PlanetMars,
	"Me": domain.PlanetMercury,
	"Ju": domain.PlanetJupiter,
	"Ve": domain.PlanetVenus,
	"Sa": domain.PlanetSaturn,
}

// Parse extracts a natal chart from one report. The reference date selects
// which major/sub period is active "today".
func Parse(text string, referenceDate time.Time) (*domain.ParsedChart, error) {
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "�")
	}

	nak, err := parseNakshatra(text)
	if err != nil {
		return nil, err
	}
	offset, err := parseUTCOffsetMinutes(text)
	if err != nil {
		return nil, err
	}
	lagna, err := parseLagna(text)
	if err != nil {
		return nil, err
	}

	block, err := extractVimsottariBlock(text)
	if err != nil {
		return nil, err
	}
	timeline, err := parseVimsottariTimeline(block)
	if err != nil {
		return nil, err
	}

	birthDate, birthTime := parseBirthDateTime(text)
	planetRasi := parsePlanetRasi(text)
	bav := parseAshtakavarga(text)

	chart := &domain.ParsedChart{
		BirthDate:        birthDate,
		BirthTime:        birthTime,
		UTCOffsetMinutes: offset,
		NatalNakshatra:   nak,
		Lagna:            lagna,
		NatalMoonRasi:    planetRasi[domain.PlanetMoon],
		PlanetRasi:       planetRasi,
		Timeline:         timeline,
		Ashtakavarga:     bav,
	}

	if len(planetRasi) > 0 {
		houses := make(map[domain.Planet]int, len(planetRasi))
		for p, r := range planetRasi {
			houses[p] = domain.House(lagna, r)
		}
		chart.PlanetHouses = houses
	}

	period, _ := chart.PeriodAt(referenceDate)
	chart.DashaMajor = period.Major
	chart.DashaSub = period.Sub
	if h, ok := chart.PlanetHouses[period.Major]; ok {
		chart.DashaMajorHouse = &h
	}
	if h, ok := chart.PlanetHouses[period.Sub]; ok {
		chart.DashaSubHouse = &h
	}

	return chart, nil
}

// parseBirthDateTime pulls the display-only birth date and time. Both are
// optional; absence is not an error.
func parseBirthDateTime(text string) (string, string) {
	var date, clock string
	if m := dateLineRe.FindStringSubmatch(text); m != nil {
		month, ok := monthNumbers[m[1]]
		if ok {
			day := m[2]
			if len(day) == 1 {
				day = "0" + day
			}
			date = fmt.Sprintf("%s-%s-%s", m[3], month, day)
		}
	}
	if m := timeLineRe.FindStringSubmatch(text); m != nil {
		hour := m[1]
		if len(hour) == 1 {
			hour = "0" + hour
		}
		clock = fmt.Sprintf("%s:%s:%s", hour, m[2], m[3])
	}
	return date, clock
}

// parseUTCOffsetMinutes converts the "Time Zone: 8:00:00 (East of GMT)"
// line to signed minutes, East positive, seconds >= 30 rounding up.
func parseUTCOffsetMinutes(text string) (int, error) {
	m := tzLineRe.FindStringSubmatch(text)
	if m == nil {
		for _, line := range strings.Split(text, "\n") {
			if strings.Contains(line, "Time Zone:") {
				return 0, &ParseError{Kind: MalformedTimeZone, Token: strings.TrimSpace(line)}
			}
		}
		return 0, &ParseError{Kind: MissingField, Field: "Time Zone"}
	}

	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	seconds, _ := strconv.Atoi(m[3])
	if hours < 0 {
		hours = -hours
	}

	total := hours*60 + minutes
	if seconds >= 30 {
		total++
	}
	if m[4] == "West" {
		total = -total
	}
	return total, nil
}

func parseNakshatra(text string) (domain.Nakshatra, error) {
	m := nakLineRe.FindStringSubmatch(text)
	if m == nil {
		return "", &ParseError{Kind: MissingField, Field: "Nakshatra"}
	}
	token := strings.TrimSpace(m[1])
	nak, ok := domain.ParseNakshatra(token)
	if !ok {
		return "", &ParseError{Kind: UnknownNakshatra, Token: token}
	}
	return nak, nil
}

func parseLagna(text string) (domain.Rasi, error) {
	m := lagnaRowRe.FindStringSubmatch(text)
	if m == nil {
		return "", &ParseError{Kind: MissingField, Field: "Lagna"}
	}
	rasi, ok := domain.ParseRasi(m[1])
	if !ok {
		return "", &ParseError{Kind: UnknownRasi, Token: m[1]}
	}
	return rasi, nil
}

// parsePlanetRasi scans the body table. Rows that fail to match, or whose
// sign token does not resolve, are skipped rather than failing the parse.
func parsePlanetRasi(text string) map[domain.Planet]domain.Rasi {
	out := make(map[domain.Planet]domain.Rasi)
	for _, m := range bodyRowRe.FindAllStringSubmatch(text, -1) {
		planet, ok := domain.BodyNameToPlanet[m[1]]
		if !ok {
			continue
		}
		rasi, ok := domain.ParseRasi(m[3])
		if !ok {
			continue
		}
		if _, seen := out[planet]; !seen {
			out[planet] = rasi
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// parseAshtakavarga reads the optional 7x12 strength matrix. An absent
// block yields nil, not an error; malformed rows are skipped.
func parseAshtakavarga(text string) map[domain.Planet]map[domain.Rasi]int {
	lines := strings.Split(text, "\n")
	start := -1
	for i, line := range lines {
		if strings.Contains(line, "Ashtakavarga of Rasi Chart") {
			start = i
			break
		}
	}
	if start < 0 {
		return nil
	}

	out := make(map[domain.Planet]map[domain.Rasi]int)
	for _, line := range lines[start+1:] {
		s := strings.TrimSpace(line)
		if s == "" {
			continue
		}
		if strings.HasPrefix(s, "Sodhya Pinda") {
			break
		}
		m := bavRowRe.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		cells := bavCellRe.FindAllString(m[2], -1)
		if len(cells) < 12 {
			continue
		}
		row := make(map[domain.Rasi]int, 12)
		for i := 0; i < 12; i++ {
			n, err := strconv.Atoi(strings.TrimSuffix(cells[i], "*"))
			if err != nil {
				continue
			}
			row[domain.RasiAt(i)] = n
		}
		out[bavRowPlanet[m[1]]] = row
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// extractVimsottariBlock cuts the timeline section between its header and
// the next known dasha section header.
func extractVimsottariBlock(text string) (string, error) {
	lines := strings.Split(text, "\n")

	header := -1
	for i, line := range lines {
		if strings.Contains(line, "Vimsottari Dasa") {
			header = i
			break
		}
	}
	if header < 0 {
		return "", &ParseError{Kind: MissingSection, Field: "Vimsottari Dasa"}
	}

	end := len(lines)
	for j := header + 1; j < len(lines); j++ {
		if dashaEndRe.MatchString(strings.TrimSpace(lines[j])) {
			end = j
			break
		}
	}

	block := strings.TrimSpace(strings.Join(lines[header+1:end], "\n"))
	if block == "" {
		return "", &ParseError{Kind: EmptyTimelineBlock, Field: "Vimsottari Dasa"}
	}
	return block, nil
}

// parseVimsottariTimeline reads primary rows (major, sub, date, more
// pairs...) and continuation rows (pairs only) under the current major
// planet. The pair scan of a row stops at the first token that is not a
// known planet followed by an ISO date. Triples are sorted by date and
// deduplicated by exact equality.
func parseVimsottariTimeline(block string) ([]domain.DashaPeriod, error) {
	var items []domain.DashaPeriod
	var currentMajor domain.Planet

	for _, raw := range strings.Split(block, "\n") {
		tokens := strings.Fields(raw)
		if len(tokens) == 0 {
			continue
		}

		start := 0
		if len(tokens) >= 3 && domain.IsDashaPlanet(tokens[0]) &&
			domain.IsDashaPlanet(tokens[1]) && isoDateRe.MatchString(tokens[2]) {
			currentMajor = domain.Planet(tokens[0])
			start = 1
		} else if currentMajor == "" {
			continue
		}

		for i := start; i+1 < len(tokens); i += 2 {
			if !domain.IsDashaPlanet(tokens[i]) || !isoDateRe.MatchString(tokens[i+1]) {
				break
			}
			d, err := time.Parse("2006-01-02", tokens[i+1])
			if err != nil {
				break
			}
			items = append(items, domain.DashaPeriod{
				Major: currentMajor,
				Sub:   domain.Planet(tokens[i]),
				Start: d,
			})
		}
	}

	if len(items) == 0 {
		return nil, &ParseError{Kind: EmptyTimelineBlock, Field: "Vimsottari Dasa"}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Start.Before(items[j].Start)
	})

	deduped := items[:0]
	seen := make(map[domain.DashaPeriod]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		deduped = append(deduped, it)
	}
	return deduped, nil
}
