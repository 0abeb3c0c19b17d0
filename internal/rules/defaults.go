package rules

import "muhurta/internal/domain"

const defaultRelationScore = 70

// Default builds the compiled-in rule catalog. Every call returns a fresh
// instance so callers can never alias a shared mutable map.
func Default() *Catalog {
	return &Catalog{
		Version: "builtin-1",

		DashaRelationScores: map[string]float64{
			"1/1":  75,
			"2/12": 40,
			"3/11": 85,
			"4/10": 80,
			"5/9":  95,
			"6/8":  35,
			"7/7":  70,
		},

		TaraModifiers: map[domain.TaraLabel]map[domain.Dimension]float64{
			domain.TaraJanma:       {"emotion": 0.9, "wealth": 1.0, "career": 1.0, "social": 1.0, "vitality": 0.8},
			domain.TaraSampat:      {"emotion": 1.1, "wealth": 1.3, "career": 1.2, "social": 1.1, "vitality": 1.0},
			domain.TaraVipat:       {"emotion": 0.8, "wealth": 0.9, "career": 0.7, "social": 0.8, "vitality": 0.9},
			domain.TaraKshem:       {"emotion": 1.2, "wealth": 1.1, "career": 1.1, "social": 1.0, "vitality": 1.2},
			domain.TaraPratyari:    {"emotion": 0.7, "wealth": 1.0, "career": 0.8, "social": 0.6, "vitality": 0.9},
			domain.TaraSadhana:     {"emotion": 1.1, "wealth": 1.2, "career": 1.3, "social": 1.1, "vitality": 1.0},
			domain.TaraNaidhana:    {"emotion": 0.5, "wealth": 0.8, "career": 0.9, "social": 0.7, "vitality": 0.5},
			domain.TaraMitra:       {"emotion": 1.2, "wealth": 1.1, "career": 1.1, "social": 1.3, "vitality": 1.1},
			domain.TaraParamaMitra: {"emotion": 1.3, "wealth": 1.2, "career": 1.2, "social": 1.3, "vitality": 1.2},
		},

		ReferenceWeights: map[domain.Dimension]ReferenceWeights{
			"emotion":  {Lagna: 0.5, Moon: 0.5},
			"wealth":   {Lagna: 0.5, Moon: 0.5},
			"career":   {Lagna: 0.5, Moon: 0.5},
			"social":   {Lagna: 0.5, Moon: 0.5},
			"vitality": {Lagna: 0.5, Moon: 0.5},
		},

		PlanetWeights: map[domain.Dimension]map[domain.Planet]float64{
			"emotion":  {domain.PlanetMoon: 0.60, domain.PlanetVenus: 0.25, domain.PlanetMercury: 0.15},
			"wealth":   {domain.PlanetJupiter: 0.40, domain.PlanetVenus: 0.30, domain.PlanetMercury: 0.20, domain.PlanetMoon: 0.10},
			"career":   {domain.PlanetSun: 0.35, domain.PlanetSaturn: 0.30, domain.PlanetMars: 0.20, domain.PlanetJupiter: 0.15},
			"social":   {domain.PlanetMercury: 0.35, domain.PlanetVenus: 0.35, domain.PlanetMoon: 0.20, domain.PlanetSun: 0.10},
			"vitality": {domain.PlanetSun: 0.40, domain.PlanetMars: 0.30, domain.PlanetMoon: 0.30},
		},

		HouseScores: map[int]float64{
			2:  0.05,
			3:  0.10,
			5:  0.05,
			6:  0.10,
			8:  -0.15,
			9:  0.05,
			10: 0.15,
			11: 0.20,
			12: -0.10,
		},

		// Classical gochara vedha pairs. Sun/Saturn and Moon/Mercury never
		// obstruct each other.
		VedhaRules: map[int]VedhaRule{
			1:  {ObstructingHouse: 5, Planet: domain.PlanetMoon, Exceptions: defaultVedhaExceptions()},
			3:  {ObstructingHouse: 12, Exceptions: defaultVedhaExceptions()},
			6:  {ObstructingHouse: 9, Exceptions: defaultVedhaExceptions()},
			7:  {ObstructingHouse: 2, Planet: domain.PlanetMoon, Exceptions: defaultVedhaExceptions()},
			10: {ObstructingHouse: 4, Exceptions: defaultVedhaExceptions()},
			11: {ObstructingHouse: 8, Exceptions: defaultVedhaExceptions()},
		},

		Dignity: Dignity{
			Exaltation: map[domain.Planet]domain.Rasi{
				domain.PlanetSun:     "Ar",
				domain.PlanetMoon:    "Ta",
				domain.PlanetMars:    "Cp",
				domain.PlanetMercury: "Vi",
				domain.PlanetJupiter: "Cn",
				domain.PlanetVenus:   "Pi",
				domain.PlanetSaturn:  "Li",
			},
			Debilitation: map[domain.Planet]domain.Rasi{
				domain.PlanetSun:     "Li",
				domain.PlanetMoon:    "Sc",
				domain.PlanetMars:    "Cn",
				domain.PlanetMercury: "Pi",
				domain.PlanetJupiter: "Cp",
				domain.PlanetVenus:   "Vi",
				domain.PlanetSaturn:  "Ar",
			},
			OwnSigns: map[domain.Planet][]domain.Rasi{
				domain.PlanetSun:     {"Le"},
				domain.PlanetMoon:    {"Cn"},
				domain.PlanetMars:    {"Ar", "Sc"},
				domain.PlanetMercury: {"Ge", "Vi"},
				domain.PlanetJupiter: {"Sg", "Pi"},
				domain.PlanetVenus:   {"Ta", "Li"},
				domain.PlanetSaturn:  {"Cp", "Aq"},
			},
			DebilitationFactor: 0.60,
			ExaltationFactor:   1.25,
			OwnSignFactor:      1.10,
			RetrogradeBenefic:  0.8,
			RetrogradeMalefic:  1.2,
			Benefics:           []domain.Planet{domain.PlanetMoon, domain.PlanetMercury, domain.PlanetJupiter, domain.PlanetVenus},
			Malefics:           []domain.Planet{domain.PlanetSun, domain.PlanetMars, domain.PlanetSaturn},
		},

		Thresholds: SignalThresholds{Green: 75, Yellow: 60, ForceGreen: 85},
		Clamp:      ClampBounds{Min: 5, Max: 99},
		Blend:      BlendWeights{Dasha: 0.4, Daily: 0.6},
		Baseline:   70,
		Amplifier:  2.0,

		VedhaMessages: map[string]string{
			"generic":     "A transiting planet is obstructed today; its usual support is suspended.",
			"Sat/strong":  "Saturn's favorable transit is blocked from the Moon; expect delayed returns on disciplined effort.",
			"Jup/strong":  "Jupiter's support is obstructed from the Moon; postpone expansion and major commitments.",
			"Ven/strong":  "Venus is obstructed from the Moon; comfort and social ease run thinner than the chart suggests.",
			"Merc/strong": "Mercury is obstructed from the Moon; double-check messages, contracts and travel plans.",
			"Mars/strong": "Mars is obstructed from the Moon; drive is blunted, avoid forcing outcomes.",
			"Sun/strong":  "The Sun's transit is obstructed from the Moon; visibility and recognition stall today.",
		},
	}
}

func defaultVedhaExceptions() []VedhaException {
	return []VedhaException{
		{Target: domain.PlanetSun, Obstructor: domain.PlanetSaturn},
		{Target: domain.PlanetSaturn, Obstructor: domain.PlanetSun},
		{Target: domain.PlanetMoon, Obstructor: domain.PlanetMercury},
		{Target: domain.PlanetMercury, Obstructor: domain.PlanetMoon},
	}
}
