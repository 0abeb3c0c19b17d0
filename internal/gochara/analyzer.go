package gochara

import (
	"muhurta/internal/domain"
	"muhurta/internal/rules"
)

// Obstruction strength classes. A vedha seen from the natal Moon is
// strong; one seen only from the lagna is weak.
const (
	StrengthStrong = "strong"
	StrengthWeak   = "weak"
)

// Result is the transit analysis for one day: a gochara modifier per
// dimension, the dominant-transit diagnostic per dimension, and at most
// one surfaced obstruction narrative.
type Result struct {
	Modifiers   map[domain.Dimension]float64
	Dominant    []domain.DominantTransit
	Obstruction *domain.ObstructionNote
}

// planetTransit is the per-planet working state for one dimension pass.
type planetTransit struct {
	planet     domain.Planet
	rasi       domain.Rasi
	lagnaHouse int
	moonHouse  int
	lagnaScore float64
	moonScore  float64
	blended    float64
	final      float64
	dignity    string
	retrograde bool

	obstruction string
	obstructor  domain.Planet
	obsHouse    int
}

// Analyze evaluates every tracked transiting planet against both natal
// reference signs and folds the results into per-dimension modifiers.
// It is a pure function of its inputs.
func Analyze(chart *domain.ParsedChart, feats *domain.DailyFeatures, cat *rules.Catalog) Result {
	res := Result{
		Modifiers: make(map[domain.Dimension]float64, len(domain.Dimensions)),
		Dominant:  make([]domain.DominantTransit, 0, len(domain.Dimensions)),
	}

	moonRef := chart.NatalMoonRasi
	if moonRef == "" {
		// charts parsed without a Moon row still score, lagna-only
		moonRef = chart.Lagna
	}

	for _, dim := range domain.Dimensions {
		weights := cat.PlanetWeights[dim]
		if len(weights) == 0 {
			res.Modifiers[dim] = 0
			continue
		}
		rw, ok := cat.ReferenceWeights[dim]
		if !ok {
			rw = rules.ReferenceWeights{Lagna: 0.5, Moon: 0.5}
		}

		var sum float64
		var top *planetTransit
		var topWeight float64

		for _, p := range domain.TransitPlanets {
			w, tracked := weights[p]
			if !tracked {
				continue
			}
			rasi, known := feats.PlanetRasi[p]
			if !known {
				continue
			}

			pt := planetTransit{
				planet:     p,
				rasi:       rasi,
				lagnaHouse: domain.House(chart.Lagna, rasi),
				moonHouse:  domain.House(moonRef, rasi),
				retrograde: feats.Retrograde[p],
			}
			pt.lagnaScore = cat.HouseScore(pt.lagnaHouse)
			pt.moonScore = cat.HouseScore(pt.moonHouse)

			applyVedha(&pt, chart.Lagna, moonRef, feats, cat)

			pt.blended = pt.lagnaScore*rw.Lagna + pt.moonScore*rw.Moon
			pt.final = pt.blended * dignityFactor(&pt, cat)

			sum += w * pt.final
			if top == nil || w > topWeight {
				copied := pt
				top = &copied
				topWeight = w
			}

			if pt.obstruction == StrengthStrong && res.Obstruction == nil {
				res.Obstruction = &domain.ObstructionNote{
					Target:     p,
					Obstructor: pt.obstructor,
					House:      pt.obsHouse,
					Strength:   StrengthStrong,
					Message:    cat.VedhaMessage(p, StrengthStrong),
				}
			}
		}

		res.Modifiers[dim] = sum
		if top != nil {
			res.Dominant = append(res.Dominant, domain.DominantTransit{
				Dimension:   dim,
				Planet:      top.planet,
				Weight:      topWeight,
				TransitRasi: top.rasi,
				LagnaHouse:  top.lagnaHouse,
				MoonHouse:   top.moonHouse,
				LagnaScore:  top.lagnaScore,
				MoonScore:   top.moonScore,
				Blended:     top.blended,
				Final:       top.final,
				Dignity:     top.dignity,
				Retrograde:  top.retrograde,
				Obstruction: top.obstruction,
				Obstructor:  top.obstructor,
			})
		}
	}

	return res
}

// applyVedha zeroes a positive view score when an eligible obstructing
// planet stands in the rule's obstructing house for that view. The Moon
// view decides strength: strong through the Moon, weak through the lagna
// alone.
func applyVedha(pt *planetTransit, lagna, moonRef domain.Rasi, feats *domain.DailyFeatures, cat *rules.Catalog) {
	if obs, h := findObstructor(pt.planet, pt.moonHouse, moonRef, feats, cat); obs != "" {
		if pt.moonScore > 0 {
			pt.moonScore = 0
		}
		pt.obstruction = StrengthStrong
		pt.obstructor = obs
		pt.obsHouse = h
	}
	if obs, h := findObstructor(pt.planet, pt.lagnaHouse, lagna, feats, cat); obs != "" {
		if pt.lagnaScore > 0 {
			pt.lagnaScore = 0
		}
		if pt.obstruction == "" {
			pt.obstruction = StrengthWeak
			pt.obstructor = obs
			pt.obsHouse = h
		}
	}
}

// findObstructor scans the other tracked planets, skipping the Moon and
// the shadow nodes, for one occupying the obstructing house registered
// for the target's house in the given reference view.
func findObstructor(target domain.Planet, house int, ref domain.Rasi, feats *domain.DailyFeatures, cat *rules.Catalog) (domain.Planet, int) {
	rule, ok := cat.VedhaRules[house]
	if !ok {
		return "", 0
	}
	if rule.Planet != "" && rule.Planet != target {
		return "", 0
	}
	for _, q := range domain.TransitPlanets {
		if q == target || q == domain.PlanetMoon || q.IsNode() {
			continue
		}
		rasi, known := feats.PlanetRasi[q]
		if !known {
			continue
		}
		if domain.House(ref, rasi) != rule.ObstructingHouse {
			continue
		}
		if rule.Excepted(target, q) {
			continue
		}
		return q, house
	}
	return "", 0
}

// dignityFactor applies the sign-dignity multiplier, debilitation taking
// precedence over exaltation over own sign, then the retrograde class
// multiplier.
func dignityFactor(pt *planetTransit, cat *rules.Catalog) float64 {
	d := cat.Dignity
	factor := 1.0
	switch {
	case d.Debilitation[pt.planet] == pt.rasi:
		factor = d.DebilitationFactor
		pt.dignity = "debilitated"
	case d.Exaltation[pt.planet] == pt.rasi:
		factor = d.ExaltationFactor
		pt.dignity = "exalted"
	case ownSign(d, pt.planet, pt.rasi):
		factor = d.OwnSignFactor
		pt.dignity = "own"
	}
	if pt.retrograde {
		if d.IsBenefic(pt.planet) {
			factor *= d.RetrogradeBenefic
		} else if d.IsMalefic(pt.planet) {
			factor *= d.RetrogradeMalefic
		}
	}
	return factor
}

func ownSign(d rules.Dignity, p domain.Planet, r domain.Rasi) bool {
	for _, s := range d.OwnSigns[p] {
		if s == r {
			return true
		}
	}
	return false
}
