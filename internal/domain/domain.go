package domain

import (
	"sort"
	"time"
)

// Planet identifies a graha by its Vimsottari abbreviation.
type Planet string

const (
	PlanetSun     Planet = "Sun"
	PlanetMoon    Planet = "Moon"
	PlanetMars    Planet = "Mars"
	PlanetMercury Planet = "Merc"
	PlanetJupiter Planet = "Jup"
	PlanetVenus   Planet = "Ven"
	PlanetSaturn  Planet = "Sat"
	PlanetRahu    Planet = "Rah"
	PlanetKetu    Planet = "Ket"
)

// DashaPlanets are all planets that can appear in a Vimsottari timeline.
var DashaPlanets = []Planet{
	PlanetSun, PlanetMoon, PlanetMars, PlanetMercury,
	PlanetJupiter, PlanetVenus, PlanetSaturn, PlanetRahu, PlanetKetu,
}

// TransitPlanets are the bodies tracked for daily features: Sun, Moon and
// the five visible classical planets. Nodes are excluded from transits.
var TransitPlanets = []Planet{
	PlanetSun, PlanetMoon, PlanetMars, PlanetMercury,
	PlanetJupiter, PlanetVenus, PlanetSaturn,
}

// BodyNameToPlanet maps the full body names used in report tables to
// timeline abbreviations.
var BodyNameToPlanet = map[string]Planet{
	"Sun":     PlanetSun,
	"Moon":    PlanetMoon,
	"Mars":    PlanetMars,
	"Mercury": PlanetMercury,
	"Jupiter": PlanetJupiter,
	"Venus":   PlanetVenus,
	"Saturn":  PlanetSaturn,
	"Rahu":    PlanetRahu,
	"Ketu":    PlanetKetu,
}

func (p Planet) IsNode() bool {
	return p == PlanetRahu || p == PlanetKetu
}

// IsDashaPlanet reports whether the token is a known timeline abbreviation.
func IsDashaPlanet(token string) bool {
	for _, p := range DashaPlanets {
		if string(p) == token {
			return true
		}
	}
	return false
}

// Dimension is one axis of the daily outlook.
type Dimension string

const (
	DimensionEmotion  Dimension = "emotion"
	DimensionWealth   Dimension = "wealth"
	DimensionCareer   Dimension = "career"
	DimensionSocial   Dimension = "social"
	DimensionVitality Dimension = "vitality"
)

// Dimensions is the fixed evaluation order for all per-dimension tables
// and for obstruction narrative selection.
var Dimensions = []Dimension{
	DimensionEmotion, DimensionWealth, DimensionCareer,
	DimensionSocial, DimensionVitality,
}

// Signal is the traffic-light classification of a day.
type Signal string

const (
	SignalGreen  Signal = "green"
	SignalYellow Signal = "yellow"
	SignalRed    Signal = "red"
)

// TaraLabel is one step of the nine-fold lunar-mansion cycle.
type TaraLabel string

const (
	TaraJanma       TaraLabel = "Janma"
	TaraSampat      TaraLabel = "Sampat"
	TaraVipat       TaraLabel = "Vipat"
	TaraKshem       TaraLabel = "Kshem"
	TaraPratyari    TaraLabel = "Pratyari"
	TaraSadhana     TaraLabel = "Sadhana"
	TaraNaidhana    TaraLabel = "Naidhana"
	TaraMitra       TaraLabel = "Mitra"
	TaraParamaMitra TaraLabel = "ParamaMitra"
)

var taraCycle = []TaraLabel{
	TaraJanma, TaraSampat, TaraVipat, TaraKshem, TaraPratyari,
	TaraSadhana, TaraNaidhana, TaraMitra, TaraParamaMitra,
}

// TaraLabelForCycle maps a 1-9 cycle index to its label.
func TaraLabelForCycle(idx int) TaraLabel {
	if idx < 1 || idx > 9 {
		return TaraJanma
	}
	return taraCycle[idx-1]
}

// TaraBala computes the cycle label between a natal and a transiting
// nakshatra. Counting is inclusive from natal to transit, so
// TaraBala(n, n) is always Janma.
func TaraBala(natal, transit Nakshatra) TaraLabel {
	count := ((transit.Index()-natal.Index())%27+27)%27 + 1
	return TaraLabelForCycle((count-1)%9 + 1)
}

// House returns the house (1-12) of target counted from reference, with
// the reference sign itself as house 1.
func House(reference, target Rasi) int {
	return ((target.Index()-reference.Index())%12+12)%12 + 1
}

// DashaPeriod is one (major, sub, start) triple of the Vimsottari timeline.
type DashaPeriod struct {
	Major Planet    `json:"major"`
	Sub   Planet    `json:"sub"`
	Start time.Time `json:"start"`
}

// ParsedChart is the immutable result of parsing one natal chart report.
type ParsedChart struct {
	BirthDate        string `json:"birth_date,omitempty"`
	BirthTime        string `json:"birth_time,omitempty"`
	UTCOffsetMinutes int    `json:"utc_offset_minutes"`

	NatalNakshatra Nakshatra `json:"natal_nakshatra"`
	Lagna          Rasi      `json:"lagna"`
	NatalMoonRasi  Rasi      `json:"natal_moon_rasi"`

	PlanetRasi   map[Planet]Rasi `json:"planet_rasi,omitempty"`
	PlanetHouses map[Planet]int  `json:"planet_houses,omitempty"`

	Timeline []DashaPeriod `json:"timeline"`

	DashaMajor      Planet `json:"dasha_major"`
	DashaSub        Planet `json:"dasha_sub"`
	DashaMajorHouse *int   `json:"dasha_major_house,omitempty"`
	DashaSubHouse   *int   `json:"dasha_sub_house,omitempty"`

	Ashtakavarga map[Planet]map[Rasi]int `json:"ashtakavarga,omitempty"`
}

// PeriodAt selects the timeline entry active on the given date: the last
// entry whose start is on or before it, or the first entry when the date
// precedes the whole timeline.
func (c *ParsedChart) PeriodAt(d time.Time) (DashaPeriod, bool) {
	if len(c.Timeline) == 0 {
		return DashaPeriod{}, false
	}
	i := sort.Search(len(c.Timeline), func(i int) bool {
		return c.Timeline[i].Start.After(d)
	})
	if i == 0 {
		return c.Timeline[0], true
	}
	return c.Timeline[i-1], true
}

// DailyFeatures are the derived astronomical facts for one date. They are
// recomputed per query and never persisted.
type DailyFeatures struct {
	Date          time.Time       `json:"date"`
	MoonRasi      Rasi            `json:"moon_rasi"`
	MoonNakshatra Nakshatra       `json:"moon_nakshatra"`
	Tithi         int             `json:"tithi"`
	PlanetRasi    map[Planet]Rasi `json:"planet_rasi"`
	Retrograde    map[Planet]bool `json:"retrograde"`
}

// DominantTransit is the heaviest-weighted planet diagnostic for one
// dimension. Every dimension produces exactly zero or one of these.
type DominantTransit struct {
	Dimension   Dimension `json:"dimension"`
	Planet      Planet    `json:"planet"`
	Weight      float64   `json:"weight"`
	TransitRasi Rasi      `json:"transit_rasi"`
	LagnaHouse  int       `json:"lagna_house"`
	MoonHouse   int       `json:"moon_house"`
	LagnaScore  float64   `json:"lagna_score"`
	MoonScore   float64   `json:"moon_score"`
	Blended     float64   `json:"blended"`
	Final       float64   `json:"final"`
	Dignity     string    `json:"dignity,omitempty"`
	Retrograde  bool      `json:"retrograde"`
	Obstruction string    `json:"obstruction,omitempty"`
	Obstructor  Planet    `json:"obstructor,omitempty"`
}

// ObstructionNote is the surfaced narrative for the first strong vedha
// found across all dimensions.
type ObstructionNote struct {
	Target     Planet `json:"target"`
	Obstructor Planet `json:"obstructor"`
	House      int    `json:"house"`
	Strength   string `json:"strength"`
	Message    string `json:"message"`
}

// DimensionBreakdown carries the raw components behind one dimension score.
type DimensionBreakdown struct {
	Base           float64 `json:"base"`
	TaraMultiplier float64 `json:"tara_multiplier"`
	Gochara        float64 `json:"gochara"`
	Daily          float64 `json:"daily"`
	Raw            float64 `json:"raw"`
	Score          int     `json:"score"`
}

// DayScore is the full outlook for one (chart, date) pair. It is created
// fresh per query and never mutated after construction.
type DayScore struct {
	Date       string            `json:"date"`
	Dimensions map[Dimension]int `json:"dimensions"`
	TotalIndex int               `json:"total_index"`
	Signal     Signal            `json:"signal"`

	TaraLabel        TaraLabel `json:"tara_label"`
	DashaMajor       Planet    `json:"dasha_major"`
	DashaSub         Planet    `json:"dasha_sub"`
	DashaRelation    string    `json:"dasha_relation"`
	MoonRasi         Rasi      `json:"moon_rasi"`
	TransitNakshatra Nakshatra `json:"transit_nakshatra"`
	Tithi            int       `json:"tithi"`

	Breakdown        map[Dimension]DimensionBreakdown `json:"breakdown"`
	DominantTransits []DominantTransit                `json:"dominant_transits"`
	Obstruction      *ObstructionNote                 `json:"obstruction,omitempty"`
	SpecialFlags     []string                         `json:"special_flags,omitempty"`

	ActionTags []string `json:"action_tags"`
	Do         []string `json:"do"`
	Avoid      []string `json:"avoid"`

	Deltas  map[Dimension]int `json:"deltas,omitempty"`
	Unusual bool              `json:"unusual,omitempty"`
}

// ChartRecord is a persisted chart with its storage identity.
type ChartRecord struct {
	ID        string      `json:"id"`
	Label     string      `json:"label,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	Chart     ParsedChart `json:"chart"`
}
