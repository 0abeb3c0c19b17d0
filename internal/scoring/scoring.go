package scoring

import (
	"math"
	"time"

	"muhurta/internal/domain"
	"muhurta/internal/gochara"
	"muhurta/internal/rules"
)

// relationCodes folds a (subHouse - majorHouse) mod 12 offset into one of
// the seven classical relationship codes; opposite offsets share a code.
var relationCodes = [12]string{
	"1/1", "2/12", "3/11", "4/10", "5/9", "6/8",
	"7/7", "6/8", "5/9", "4/10", "3/11", "2/12",
}

// RelationCode resolves the major/sub relationship for the period active
// on the date. Without natal houses for both lords it falls back to
// "1/1" for a lord running its own sub-period, "7/7" otherwise.
func RelationCode(chart *domain.ParsedChart, period domain.DashaPeriod) string {
	majorHouse, okMajor := chart.PlanetHouses[period.Major]
	subHouse, okSub := chart.PlanetHouses[period.Sub]
	if !okMajor || !okSub {
		if period.Major == period.Sub {
			return "1/1"
		}
		return "7/7"
	}
	diff := ((subHouse-majorHouse)%12 + 12) % 12
	return relationCodes[diff]
}

// Synthesize produces the DayScore for one (chart, date) pair from the
// resolved daily features. Pure: same inputs, same output.
func Synthesize(chart *domain.ParsedChart, date time.Time, feats *domain.DailyFeatures, cat *rules.Catalog) domain.DayScore {
	period, _ := chart.PeriodAt(date)
	relation := RelationCode(chart, period)
	base := cat.DashaRelationScore(relation)

	label := domain.TaraBala(chart.NatalNakshatra, feats.MoonNakshatra)

	transit := gochara.Analyze(chart, feats, cat)

	dashaW, dailyW := normalizedBlend(cat.Blend)

	scores := make(map[domain.Dimension]int, len(domain.Dimensions))
	breakdown := make(map[domain.Dimension]domain.DimensionBreakdown, len(domain.Dimensions))
	for _, dim := range domain.Dimensions {
		taraMult := cat.TaraModifier(label, dim)
		mod := transit.Modifiers[dim]
		daily := cat.Baseline * taraMult * (1 + mod*cat.Amplifier)
		raw := base*dashaW + daily*dailyW
		score := int(math.Round(clamp(raw, cat.Clamp)))
		scores[dim] = score
		breakdown[dim] = domain.DimensionBreakdown{
			Base:           base,
			TaraMultiplier: taraMult,
			Gochara:        mod,
			Daily:          daily,
			Raw:            raw,
			Score:          score,
		}
	}

	total := totalIndex(scores, cat.Clamp)
	signal := Classify(total, label, cat.Thresholds)
	do, avoid, tags := actionTemplates(signal)

	return domain.DayScore{
		Date:       date.Format("2006-01-02"),
		Dimensions: scores,
		TotalIndex: total,
		Signal:     signal,

		TaraLabel:        label,
		DashaMajor:       period.Major,
		DashaSub:         period.Sub,
		DashaRelation:    relation,
		MoonRasi:         feats.MoonRasi,
		TransitNakshatra: feats.MoonNakshatra,
		Tithi:            feats.Tithi,

		Breakdown:        breakdown,
		DominantTransits: transit.Dominant,
		Obstruction:      transit.Obstruction,
		SpecialFlags:     specialFlags(chart, feats),

		ActionTags: tags,
		Do:         do,
		Avoid:      avoid,
	}
}

// totalIndex leans on the best dimension while anchoring on the mean.
func totalIndex(scores map[domain.Dimension]int, bounds rules.ClampBounds) int {
	if len(scores) == 0 {
		return int(math.Round(bounds.Min))
	}
	maxScore := math.Inf(-1)
	var sum float64
	for _, s := range scores {
		v := float64(s)
		if v > maxScore {
			maxScore = v
		}
		sum += v
	}
	mean := sum / float64(len(scores))
	return int(math.Round(clamp(maxScore*0.3+mean*0.7, bounds)))
}

// Classify maps a total index and tara label to the traffic-light signal.
// Naidhana days are always red; Vipat and Pratyari days need a wider
// margin before they read green.
func Classify(index int, label domain.TaraLabel, th rules.SignalThresholds) domain.Signal {
	if label == domain.TaraNaidhana {
		return domain.SignalRed
	}
	idx := float64(index)
	if idx >= th.Green {
		if (label == domain.TaraVipat || label == domain.TaraPratyari) && idx < th.ForceGreen {
			return domain.SignalYellow
		}
		return domain.SignalGreen
	}
	if idx >= th.Yellow {
		return domain.SignalYellow
	}
	return domain.SignalRed
}

func normalizedBlend(b rules.BlendWeights) (dasha, daily float64) {
	sum := b.Dasha + b.Daily
	if sum <= 0 {
		return 0.4, 0.6
	}
	return b.Dasha / sum, b.Daily / sum
}

func clamp(x float64, b rules.ClampBounds) float64 {
	if x < b.Min {
		return b.Min
	}
	if x > b.Max {
		return b.Max
	}
	return x
}

var (
	greenDo    = []string{"start new ventures", "sign agreements", "make key asks"}
	greenAvoid = []string{"overcommitting the calendar"}
	greenTags  = []string{"launch", "negotiate", "connect"}

	yellowDo    = []string{"advance routine work", "prepare and review"}
	yellowAvoid = []string{"irreversible decisions", "large purchases"}
	yellowTags  = []string{"maintain", "review"}

	redDo    = []string{"rest", "complete unfinished tasks", "plan quietly"}
	redAvoid = []string{"launches", "confrontations", "major commitments"}
	redTags  = []string{"hold", "recover"}
)

func actionTemplates(s domain.Signal) (do, avoid, tags []string) {
	switch s {
	case domain.SignalGreen:
		return greenDo, greenAvoid, greenTags
	case domain.SignalYellow:
		return yellowDo, yellowAvoid, yellowTags
	default:
		return redDo, redAvoid, redTags
	}
}

// specialFlags marks well-known calendar conditions. They annotate the
// day only; the signal never changes because of a flag.
func specialFlags(chart *domain.ParsedChart, feats *domain.DailyFeatures) []string {
	var flags []string
	switch feats.Tithi {
	case 15:
		flags = append(flags, "purnima")
	case 30:
		flags = append(flags, "amavasya")
	}
	if chart.NatalMoonRasi != "" {
		if h := domain.House(chart.NatalMoonRasi, feats.MoonRasi); h == 8 {
			flags = append(flags, "chandrashtama")
		}
		if satRasi, ok := feats.PlanetRasi[domain.PlanetSaturn]; ok {
			switch domain.House(chart.NatalMoonRasi, satRasi) {
			case 12, 1, 2:
				flags = append(flags, "sade-sati")
			case 4, 8:
				flags = append(flags, "kantaka-shani")
			}
		}
	}
	return flags
}
