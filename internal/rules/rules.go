package rules

import (
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"muhurta/internal/domain"
)

// VedhaException names a (target, obstructor) pair for which the
// obstruction does not apply.
type VedhaException struct {
	Target     domain.Planet `yaml:"target" json:"target"`
	Obstructor domain.Planet `yaml:"obstructor" json:"obstructor"`
}

// VedhaRule declares which house obstructs a given transit house. An empty
// Planet applies the rule to every transiting planet; otherwise only to the
// named one.
type VedhaRule struct {
	ObstructingHouse int              `yaml:"obstructing_house" json:"obstructing_house"`
	Planet           domain.Planet    `yaml:"planet,omitempty" json:"planet,omitempty"`
	Exceptions       []VedhaException `yaml:"exceptions,omitempty" json:"exceptions,omitempty"`
}

// Excepted reports whether the pair is listed as a vedha exception.
func (r VedhaRule) Excepted(target, obstructor domain.Planet) bool {
	for _, e := range r.Exceptions {
		if e.Target == target && e.Obstructor == obstructor {
			return true
		}
	}
	return false
}

// ReferenceWeights blends the lagna-based and moon-based house views for
// one dimension. The pair is used as configured, without normalization.
type ReferenceWeights struct {
	Lagna float64 `yaml:"lagna" json:"lagna"`
	Moon  float64 `yaml:"moon" json:"moon"`
}

// BlendWeights mixes the dasha base component with the daily component.
type BlendWeights struct {
	Dasha float64 `yaml:"dasha" json:"dasha"`
	Daily float64 `yaml:"daily" json:"daily"`
}

// SignalThresholds hold the traffic-light cutoffs on the total index.
type SignalThresholds struct {
	Green      float64 `yaml:"green" json:"green"`
	Yellow     float64 `yaml:"yellow" json:"yellow"`
	ForceGreen float64 `yaml:"force_green" json:"force_green"`
}

// ClampBounds bound every emitted score.
type ClampBounds struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Dignity holds the planetary dignity tables and retrograde multipliers.
type Dignity struct {
	Exaltation   map[domain.Planet]domain.Rasi   `yaml:"exaltation" json:"exaltation"`
	Debilitation map[domain.Planet]domain.Rasi   `yaml:"debilitation" json:"debilitation"`
	OwnSigns     map[domain.Planet][]domain.Rasi `yaml:"own_signs" json:"own_signs"`

	DebilitationFactor float64 `yaml:"debilitation_factor" json:"debilitation_factor"`
	ExaltationFactor   float64 `yaml:"exaltation_factor" json:"exaltation_factor"`
	OwnSignFactor      float64 `yaml:"own_sign_factor" json:"own_sign_factor"`

	RetrogradeBenefic float64 `yaml:"retrograde_benefic" json:"retrograde_benefic"`
	RetrogradeMalefic float64 `yaml:"retrograde_malefic" json:"retrograde_malefic"`

	Benefics []domain.Planet `yaml:"benefics" json:"benefics"`
	Malefics []domain.Planet `yaml:"malefics" json:"malefics"`
}

// IsBenefic reports membership in the benefic class.
func (d Dignity) IsBenefic(p domain.Planet) bool { return containsPlanet(d.Benefics, p) }

// IsMalefic reports membership in the malefic class.
func (d Dignity) IsMalefic(p domain.Planet) bool { return containsPlanet(d.Malefics, p) }

func containsPlanet(list []domain.Planet, p domain.Planet) bool {
	for _, v := range list {
		if v == p {
			return true
		}
	}
	return false
}

// Catalog is one immutable, versioned rule set. All scoring stages read
// from it; it is never mutated after construction.
type Catalog struct {
	Version string `yaml:"version" json:"version"`

	DashaRelationScores map[string]float64 `yaml:"dasha_relation_scores" json:"dasha_relation_scores"`

	TaraModifiers map[domain.TaraLabel]map[domain.Dimension]float64 `yaml:"tara_modifiers" json:"tara_modifiers"`

	ReferenceWeights map[domain.Dimension]ReferenceWeights `yaml:"reference_weights" json:"reference_weights"`

	PlanetWeights map[domain.Dimension]map[domain.Planet]float64 `yaml:"planet_weights" json:"planet_weights"`

	HouseScores map[int]float64 `yaml:"house_scores" json:"house_scores"`

	VedhaRules map[int]VedhaRule `yaml:"vedha_rules" json:"vedha_rules"`

	Dignity Dignity `yaml:"dignity" json:"dignity"`

	Thresholds SignalThresholds `yaml:"thresholds" json:"thresholds"`
	Clamp      ClampBounds      `yaml:"clamp" json:"clamp"`
	Blend      BlendWeights     `yaml:"blend" json:"blend"`

	Baseline  float64 `yaml:"baseline" json:"baseline"`
	Amplifier float64 `yaml:"amplifier" json:"amplifier"`

	// VedhaMessages are narrative templates keyed "<planet>/<strength>",
	// with a "generic" fallback.
	VedhaMessages map[string]string `yaml:"vedha_messages" json:"vedha_messages"`
}

// DashaRelationScore looks up a relationship code, falling back to the
// neutral default for unknown codes.
func (c *Catalog) DashaRelationScore(code string) float64 {
	if v, ok := c.DashaRelationScores[code]; ok {
		return v
	}
	return defaultRelationScore
}

// TaraModifier returns the per-dimension multiplier for a label, 1.0 when
// the label or dimension is not configured.
func (c *Catalog) TaraModifier(label domain.TaraLabel, dim domain.Dimension) float64 {
	mods, ok := c.TaraModifiers[label]
	if !ok {
		return 1.0
	}
	if v, ok := mods[dim]; ok {
		return v
	}
	return 1.0
}

// HouseScore returns the transit score for a house, 0 when unconfigured.
func (c *Catalog) HouseScore(house int) float64 {
	return c.HouseScores[house]
}

// VedhaMessage selects the narrative template for an obstruction.
func (c *Catalog) VedhaMessage(target domain.Planet, strength string) string {
	if msg, ok := c.VedhaMessages[fmt.Sprintf("%s/%s", target, strength)]; ok {
		return msg
	}
	return c.VedhaMessages["generic"]
}

// override mirrors Catalog with presence-detectable fields. A key present
// in the external document replaces the whole default value for that key;
// absent keys keep the compiled default (shallow merge, no deep merge).
type override struct {
	Version             *string                                           `yaml:"version"`
	DashaRelationScores map[string]float64                                `yaml:"dasha_relation_scores"`
	TaraModifiers       map[domain.TaraLabel]map[domain.Dimension]float64 `yaml:"tara_modifiers"`
	ReferenceWeights    map[domain.Dimension]ReferenceWeights             `yaml:"reference_weights"`
	PlanetWeights       map[domain.Dimension]map[domain.Planet]float64    `yaml:"planet_weights"`
	HouseScores         map[int]float64                                   `yaml:"house_scores"`
	VedhaRules          map[int]VedhaRule                                 `yaml:"vedha_rules"`
	Dignity             *Dignity                                          `yaml:"dignity"`
	Thresholds          *SignalThresholds                                 `yaml:"thresholds"`
	Clamp               *ClampBounds                                      `yaml:"clamp"`
	Blend               *BlendWeights                                     `yaml:"blend"`
	Baseline            *float64                                          `yaml:"baseline"`
	Amplifier           *float64                                          `yaml:"amplifier"`
	VedhaMessages       map[string]string                                 `yaml:"vedha_messages"`
}

func merge(base *Catalog, o *override) *Catalog {
	out := *base
	if o.Version != nil {
		out.Version = *o.Version
	}
	if o.DashaRelationScores != nil {
		out.DashaRelationScores = o.DashaRelationScores
	}
	if o.TaraModifiers != nil {
		out.TaraModifiers = o.TaraModifiers
	}
	if o.ReferenceWeights != nil {
		out.ReferenceWeights = o.ReferenceWeights
	}
	if o.PlanetWeights != nil {
		out.PlanetWeights = o.PlanetWeights
	}
	if o.HouseScores != nil {
		out.HouseScores = o.HouseScores
	}
	if o.VedhaRules != nil {
		out.VedhaRules = o.VedhaRules
	}
	if o.Dignity != nil {
		out.Dignity = *o.Dignity
	}
	if o.Thresholds != nil {
		out.Thresholds = *o.Thresholds
	}
	if o.Clamp != nil {
		out.Clamp = *o.Clamp
	}
	if o.Blend != nil {
		out.Blend = *o.Blend
	}
	if o.Baseline != nil {
		out.Baseline = *o.Baseline
	}
	if o.Amplifier != nil {
		out.Amplifier = *o.Amplifier
	}
	if o.VedhaMessages != nil {
		out.VedhaMessages = o.VedhaMessages
	}
	return &out
}

// Load reads an optional YAML override file and merges it over the
// compiled defaults. A missing or unreadable file is not an error: the
// defaults apply silently.
func Load(path string) (*Catalog, error) {
	base := Default()
	if path == "" {
		return base, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return base, nil
		}
		return base, err
	}
	var o override
	if err := yaml.Unmarshal(raw, &o); err != nil {
		return base, fmt.Errorf("parse rule overrides %s: %w", path, err)
	}
	return merge(base, &o), nil
}

// Loader caches one immutable Catalog per configuration path. The catalog
// is populated at most once; Reload swaps in a freshly built instance and
// never mutates the old one, so concurrent readers are always safe.
type Loader struct {
	path    string
	once    sync.Once
	current atomic.Pointer[Catalog]
}

func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Catalog returns the effective rule set, loading it on first use. Load
// failures degrade to the compiled defaults.
func (l *Loader) Catalog() *Catalog {
	l.once.Do(func() {
		l.current.Store(l.load())
	})
	return l.current.Load()
}

// Reload re-reads the override file and publishes a new immutable catalog.
// The catalog is stored before the once is consumed so a racing first
// Catalog call can never observe a consumed once with nothing published.
func (l *Loader) Reload() *Catalog {
	cat := l.load()
	l.current.Store(cat)
	l.once.Do(func() {})
	return cat
}

func (l *Loader) load() *Catalog {
	cat, err := Load(l.path)
	if err != nil {
		log.Printf("rule overrides ignored: %v", err)
	}
	return cat
}
